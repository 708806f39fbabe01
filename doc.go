/*

Package ipf is a reader and writer for a ZIP-derived archive container used
by a game client to pack many compressed, optionally encrypted sub-files
into one file, grouped by logical "pack name".

An archive ends in a fixed 24-byte footer locating an entry table; each
entry records a pack name, a relative path, an offset/size pair into the
payload region, and a CRC-32 checksum of its stored bytes. Stored bytes are
either the raw file (for a handful of extensions that are never compressed
or encrypted: .jpg, .jpeg, .fsb, .mp3) or raw DEFLATE output, optionally
wrapped in a classic PKWARE traditional stream cipher whose keystream is
gated by the archive's version fields.

The companion package ipf/ies reads and writes the tabular data format
(IES) commonly stored as entries inside these archives.

Saving is always a whole-archive rewrite to a temp file followed by an
atomic rename; there is no partial-archive streaming write and no support
for concurrent writers on the same archive.

*/
package ipf

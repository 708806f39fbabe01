package ipf

import "strings"

// Entry represents one archived file. Its content is either backed by a
// range in the archive's source (an unmodified entry) or held in memory
// (a modified or newly added entry); see DESIGN.md for why this stays a
// flag-plus-buffer rather than a modeled sum type.
type Entry struct {
	// PackName is the logical sub-archive ("pack") this entry belongs to.
	PackName string
	// Path is the entry's path relative to its pack, forward-slash
	// separated.
	Path string

	offset           uint32
	sizeCompressed   uint32
	sizeUncompressed uint32
	checksum         uint32

	modified bool
	content  []byte // set when modified or newly added

	arc *Archive // backing archive for lazy reads of unmodified entries
}

// FullPath returns PackName + "/" + Path, the identity that must be unique
// within an archive.
func (e *Entry) FullPath() string {
	return e.PackName + "/" + e.Path
}

// SizeCompressed returns the stored (on-disk) size of the entry.
func (e *Entry) SizeCompressed() uint32 { return e.sizeCompressed }

// SizeUncompressed returns the decompressed size of the entry's content.
func (e *Entry) SizeUncompressed() uint32 { return e.sizeUncompressed }

// Checksum returns the CRC-32 of the entry's stored bytes.
func (e *Entry) Checksum() uint32 { return e.checksum }

// Modified reports whether the entry's content has been replaced in memory
// since it was opened (or that it was newly added).
func (e *Entry) Modified() bool { return e.modified }

// GetData returns the entry's decoded content: the in-memory buffer for a
// modified entry, or the decoded bytes read from the backing archive for an
// unmodified one (§4.4 extract algorithm).
func (e *Entry) GetData() ([]byte, error) {
	if e.modified {
		out := make([]byte, len(e.content))
		copy(out, e.content)
		return out, nil
	}
	if e.arc == nil {
		return nil, ErrClosed
	}
	return e.arc.extract(e)
}

// SetContent replaces the entry's content and marks it modified. Offset,
// sizes and checksum are recomputed on the next Save.
func (e *Entry) SetContent(data []byte) {
	buf := make([]byte, len(data))
	copy(buf, data)
	e.content = buf
	e.modified = true
}

// normalizePath converts backslashes to forward slashes, matching the
// on-disk path normalization applied by the reader and folder ingest.
func normalizePath(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

package ipf

import "errors"

// Error kinds raised by the archive codec (see §7 of the format notes).
var (
	// ErrInvalidArchive indicates the footer signature, an entry table
	// offset, or a size field could not be parsed as a valid IPF archive.
	ErrInvalidArchive = errors.New("ipf: invalid archive")

	// ErrEncryptionMismatch indicates a decrypted stream did not inflate as
	// valid DEFLATE data; the entry is unreadable.
	ErrEncryptionMismatch = errors.New("ipf: decrypted stream is not valid deflate data")

	// ErrDuplicateEntry indicates an add would collide with an existing
	// entry's full path.
	ErrDuplicateEntry = errors.New("ipf: duplicate entry path")

	// ErrClosed indicates an operation was attempted on a reader whose
	// backing source has already been closed.
	ErrClosed = errors.New("ipf: archive is closed")
)

package ipf

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/icza/ipf/binutil"
)

// Archive is an opened or newly constructed IPF archive: an ordered list of
// entries, a footer, and an optional backing byte source. Entries preserve
// insertion order across save/load (§3.1); that order is also the on-disk
// iteration order.
type Archive struct {
	// mu guards seek+read as one critical section over source — the only
	// shared mutable resource between concurrent extraction workers (§5).
	mu     sync.Mutex
	source io.ReadSeeker
	closer io.Closer // non-nil when Archive owns an *os.File
	path   string    // path the archive was opened from, if any

	footer  footer
	entries []*Entry
	byPath  map[string]int // full path -> index into entries

	closed bool
}

// Open opens an archive backed by the named file. The returned Archive must
// be closed with Close.
func Open(path string) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	a, err := openFrom(f, path)
	if err != nil {
		f.Close()
		return nil, err
	}
	a.closer = f
	return a, nil
}

// OpenBytes opens an archive backed by an in-memory buffer.
func OpenBytes(data []byte) (*Archive, error) {
	return openFrom(bytes.NewReader(data), "")
}

// NewArchive creates an empty, synthetic archive with no backing source.
// oldVersion and newVersion become the footer's version fields, which gate
// the PKWARE cipher layer on save (new_version > 11000 or new_version == 0).
func NewArchive(oldVersion, newVersion uint32) *Archive {
	return &Archive{
		footer: footer{
			signature:  defaultSignature,
			oldVersion: oldVersion,
			newVersion: newVersion,
		},
		byPath: make(map[string]int),
	}
}

func openFrom(src io.ReadSeeker, path string) (*Archive, error) {
	length, err := src.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("%w: seeking to end: %v", ErrInvalidArchive, err)
	}
	if length < footerSize {
		return nil, fmt.Errorf("%w: file too small for footer", ErrInvalidArchive)
	}

	if _, err := src.Seek(length-footerSize, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: seeking to footer: %v", ErrInvalidArchive, err)
	}
	ft, err := parseFooter(src)
	if err != nil {
		return nil, err
	}

	if _, err := src.Seek(int64(ft.fileTableOffset), io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: seeking to file table: %v", ErrInvalidArchive, err)
	}

	a := &Archive{
		source:  src,
		path:    path,
		footer:  ft,
		entries: make([]*Entry, 0, ft.fileCount),
		byPath:  make(map[string]int, ft.fileCount),
	}

	for i := uint16(0); i < ft.fileCount; i++ {
		e, err := readEntryRecord(src)
		if err != nil {
			return nil, fmt.Errorf("%w: reading entry %d: %v", ErrInvalidArchive, i, err)
		}
		e.arc = a
		a.addEntryUnchecked(e)
	}

	return a, nil
}

// readEntryRecord reads one on-disk entry record (§4.4). Note the layout
// reads path_length before pack_name_length even though pack_name is
// written (and read) before path; this matches the archive's wire format.
func readEntryRecord(r io.Reader) (*Entry, error) {
	pathLen, err := binutil.ReadUint16(r)
	if err != nil {
		return nil, err
	}
	checksum, err := binutil.ReadUint32(r)
	if err != nil {
		return nil, err
	}
	sizeCompressed, err := binutil.ReadUint32(r)
	if err != nil {
		return nil, err
	}
	sizeUncompressed, err := binutil.ReadUint32(r)
	if err != nil {
		return nil, err
	}
	offset, err := binutil.ReadUint32(r)
	if err != nil {
		return nil, err
	}
	packNameLen, err := binutil.ReadUint16(r)
	if err != nil {
		return nil, err
	}
	packName := make([]byte, packNameLen)
	if _, err := io.ReadFull(r, packName); err != nil {
		return nil, err
	}
	path := make([]byte, pathLen)
	if _, err := io.ReadFull(r, path); err != nil {
		return nil, err
	}

	return &Entry{
		PackName:         string(packName),
		Path:             normalizePath(string(path)),
		offset:           offset,
		sizeCompressed:   sizeCompressed,
		sizeUncompressed: sizeUncompressed,
		checksum:         checksum,
	}, nil
}

// writeEntryRecord writes one on-disk entry record using the same field
// order readEntryRecord parses.
func writeEntryRecord(w io.Writer, e *Entry) error {
	pathBytes := []byte(e.Path)
	packBytes := []byte(e.PackName)

	if err := binutil.WriteUint16(w, uint16(len(pathBytes))); err != nil {
		return err
	}
	if err := binutil.WriteUint32(w, e.checksum); err != nil {
		return err
	}
	if err := binutil.WriteUint32(w, e.sizeCompressed); err != nil {
		return err
	}
	if err := binutil.WriteUint32(w, e.sizeUncompressed); err != nil {
		return err
	}
	if err := binutil.WriteUint32(w, e.offset); err != nil {
		return err
	}
	if err := binutil.WriteUint16(w, uint16(len(packBytes))); err != nil {
		return err
	}
	if _, err := w.Write(packBytes); err != nil {
		return err
	}
	if _, err := w.Write(pathBytes); err != nil {
		return err
	}
	return nil
}

// addEntryUnchecked appends e to the entry list and index, without checking
// for a duplicate full path. Used while parsing a trusted on-disk table.
func (a *Archive) addEntryUnchecked(e *Entry) {
	a.byPath[e.FullPath()] = len(a.entries)
	a.entries = append(a.entries, e)
}

// Entries returns the archive's entries in on-disk/insertion order. The
// returned slice must not be mutated.
func (a *Archive) Entries() []*Entry {
	return a.entries
}

// Lookup returns the entry with the given full path ("pack/path"), or nil
// if none exists.
func (a *Archive) Lookup(fullPath string) *Entry {
	if i, ok := a.byPath[fullPath]; ok {
		return a.entries[i]
	}
	return nil
}

// AddFile adds a new entry with the given content, or overwrites the
// existing entry at that full path in place (§7 DuplicateEntry policy: the
// in-memory API overwrites).
func (a *Archive) AddFile(packName, path string, data []byte) *Entry {
	path = normalizePath(path)
	full := packName + "/" + path
	if i, ok := a.byPath[full]; ok {
		a.entries[i].SetContent(data)
		return a.entries[i]
	}

	e := &Entry{PackName: packName, Path: path, arc: a}
	e.SetContent(data)
	a.addEntryUnchecked(e)
	return e
}

// Remove deletes e from the archive. It is a no-op if e does not belong to
// this archive's current entry list.
func (a *Archive) Remove(e *Entry) {
	i, ok := a.byPath[e.FullPath()]
	if !ok || a.entries[i] != e {
		return
	}
	a.entries = append(a.entries[:i], a.entries[i+1:]...)
	delete(a.byPath, e.FullPath())
	for j := i; j < len(a.entries); j++ {
		a.byPath[a.entries[j].FullPath()] = j
	}
}

// readRaw reads n bytes at offset from the backing source, serialized by a
// mutex encompassing the seek and the read as one critical section — the
// one concurrency primitive this codec needs (§5).
func (a *Archive) readRaw(offset int64, n uint32) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil, ErrClosed
	}
	if a.source == nil {
		return nil, ErrClosed
	}
	if _, err := a.source.Seek(offset, io.SeekStart); err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(a.source, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// extract implements the §4.4 decode algorithm for an unmodified entry.
func (a *Archive) extract(e *Entry) ([]byte, error) {
	stored, err := a.readRaw(int64(e.offset), e.sizeCompressed)
	if err != nil {
		return nil, err
	}

	if skipsCodec(e.Path) {
		return stored, nil
	}

	if a.footer.versionGated() {
		stored = pkDecrypt(stored)
	}

	return deflateDecompress(stored)
}

// Close releases the archive's backing byte source. After Close, GetData on
// an unmodified entry fails with ErrClosed.
func (a *Archive) Close() error {
	a.mu.Lock()
	a.closed = true
	a.source = nil
	closer := a.closer
	a.closer = nil
	a.mu.Unlock()

	if closer != nil {
		return closer.Close()
	}
	return nil
}

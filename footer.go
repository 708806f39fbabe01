package ipf

import (
	"bytes"
	"fmt"
	"io"

	"github.com/icza/ipf/binutil"
)

// footerSize is the fixed on-disk size of the archive footer (§3.1, §6.1).
const footerSize = 0x18

// defaultSignature is the footer signature written by new archives and
// validated on open.
var defaultSignature = [4]byte{0x50, 0x4B, 0x05, 0x06}

// footer is the 24-byte trailer locating the entry table and carrying
// version metadata. The removed-file fields are round-tripped verbatim;
// this codec never populates or interprets the removed table (see
// DESIGN.md's open-question note).
type footer struct {
	fileCount         uint16
	fileTableOffset   uint32
	removedCount      uint16
	removedTableOffset uint32
	signature         [4]byte
	oldVersion        uint32
	newVersion        uint32
}

// versionGated reports whether the PKWARE cipher layer is active for this
// footer's new version: new_version > 11000 or new_version == 0.
func (f footer) versionGated() bool {
	return f.newVersion > 11000 || f.newVersion == 0
}

// parseFooter reads the fixed 24-byte footer layout.
func parseFooter(r io.Reader) (footer, error) {
	var f footer
	var err error
	read32 := func() uint32 {
		if err != nil {
			return 0
		}
		var v uint32
		v, err = binutil.ReadUint32(r)
		return v
	}
	read16 := func() uint16 {
		if err != nil {
			return 0
		}
		var v uint16
		v, err = binutil.ReadUint16(r)
		return v
	}

	f.fileCount = read16()
	f.fileTableOffset = read32()
	f.removedCount = read16()
	f.removedTableOffset = read32()
	if err != nil {
		return footer{}, fmt.Errorf("%w: reading footer: %v", ErrInvalidArchive, err)
	}
	if _, err = io.ReadFull(r, f.signature[:]); err != nil {
		return footer{}, fmt.Errorf("%w: reading footer signature: %v", ErrInvalidArchive, err)
	}
	f.oldVersion = read32()
	f.newVersion = read32()
	if err != nil {
		return footer{}, fmt.Errorf("%w: reading footer: %v", ErrInvalidArchive, err)
	}
	if f.signature != defaultSignature {
		return footer{}, fmt.Errorf("%w: bad footer signature %x", ErrInvalidArchive, f.signature)
	}
	return f, nil
}

// writeFooter writes the 24-byte footer layout.
func writeFooter(w io.Writer, f footer) error {
	var buf bytes.Buffer
	if err := binutil.WriteUint16(&buf, f.fileCount); err != nil {
		return err
	}
	if err := binutil.WriteUint32(&buf, f.fileTableOffset); err != nil {
		return err
	}
	if err := binutil.WriteUint16(&buf, f.removedCount); err != nil {
		return err
	}
	if err := binutil.WriteUint32(&buf, f.removedTableOffset); err != nil {
		return err
	}
	if _, err := buf.Write(f.signature[:]); err != nil {
		return err
	}
	if err := binutil.WriteUint32(&buf, f.oldVersion); err != nil {
		return err
	}
	if err := binutil.WriteUint32(&buf, f.newVersion); err != nil {
		return err
	}
	if buf.Len() != footerSize {
		return fmt.Errorf("ipf: internal error: footer encoded to %d bytes, want %d", buf.Len(), footerSize)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

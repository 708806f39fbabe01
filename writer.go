package ipf

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Save rewrites the archive as a whole to filePath (§4.5). It writes to a
// temp file named "~<basename>" in the destination directory and renames it
// into place, so a failure never corrupts an existing file at filePath.
//
// Save returns true if filePath is the archive's own backing source — the
// reader was closed to allow the rename, and the caller must reopen the
// archive before using it further. A failed save may have mutated entries'
// offsets/sizes in memory; treat a failed save as requiring a reload too.
func (a *Archive) Save(filePath string) (reopenRequired bool, err error) {
	dir := filepath.Dir(filePath)
	tmpPath := filepath.Join(dir, "~"+filepath.Base(filePath))

	tmpFile, err := os.Create(tmpPath)
	if err != nil {
		return false, fmt.Errorf("ipf: create temp file: %w", err)
	}

	ok := false
	defer func() {
		if !ok {
			tmpFile.Close()
			os.Remove(tmpPath)
		}
	}()

	bw := bufio.NewWriter(tmpFile)

	gated := a.footer.versionGated()
	var pos uint32

	for _, e := range a.entries {
		if e.modified {
			compressed, cerr := compressEntryForSave(e, gated)
			if cerr != nil {
				return false, fmt.Errorf("ipf: compressing %q: %w", e.FullPath(), cerr)
			}
			e.sizeUncompressed = uint32(len(e.content))
			e.sizeCompressed = uint32(len(compressed))
			e.checksum = crc32Checksum(0, compressed)
			if _, werr := bw.Write(compressed); werr != nil {
				return false, fmt.Errorf("ipf: writing %q: %w", e.FullPath(), werr)
			}
			e.offset = pos
			pos += e.sizeCompressed
			continue
		}

		stored, rerr := a.readRaw(int64(e.offset), e.sizeCompressed)
		if rerr != nil {
			return false, fmt.Errorf("ipf: copying %q: %w", e.FullPath(), rerr)
		}
		if _, werr := bw.Write(stored); werr != nil {
			return false, fmt.Errorf("ipf: writing %q: %w", e.FullPath(), werr)
		}
		e.offset = pos
		pos += e.sizeCompressed
	}

	fileTableOffset := pos
	for _, e := range a.entries {
		if err := writeEntryRecord(bw, e); err != nil {
			return false, fmt.Errorf("ipf: writing entry table: %w", err)
		}
	}

	newFooter := a.footer
	newFooter.fileCount = uint16(len(a.entries))
	newFooter.fileTableOffset = fileTableOffset
	if err := writeFooter(bw, newFooter); err != nil {
		return false, fmt.Errorf("ipf: writing footer: %w", err)
	}

	if err := bw.Flush(); err != nil {
		return false, fmt.Errorf("ipf: flushing temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return false, fmt.Errorf("ipf: closing temp file: %w", err)
	}
	ok = true

	reopenRequired = a.path != "" && a.path == filePath
	if reopenRequired {
		if cerr := a.Close(); cerr != nil {
			os.Remove(tmpPath)
			return false, fmt.Errorf("ipf: closing archive before overwrite: %w", cerr)
		}
	}

	if err := os.Remove(filePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		os.Remove(tmpPath)
		return false, fmt.Errorf("ipf: removing existing target: %w", err)
	}
	if err := os.Rename(tmpPath, filePath); err != nil {
		os.Remove(tmpPath)
		return false, fmt.Errorf("ipf: renaming temp file into place: %w", err)
	}

	a.footer = newFooter
	return reopenRequired, nil
}

// compressEntryForSave produces the stored bytes for a modified entry: raw
// content for no-compression extensions (never encrypted either way),
// otherwise DEFLATE output optionally wrapped in the PKWARE cipher when the
// archive's version gate is open.
func compressEntryForSave(e *Entry, gated bool) ([]byte, error) {
	if skipsCodec(e.Path) {
		out := make([]byte, len(e.content))
		copy(out, e.content)
		return out, nil
	}

	compressed, err := deflateCompress(e.content)
	if err != nil {
		return nil, err
	}
	if gated {
		compressed = pkEncrypt(compressed)
	}
	return compressed, nil
}

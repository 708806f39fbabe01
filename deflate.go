package ipf

import (
	"bytes"
	"compress/flate"
	"fmt"
	"io"
	"strings"
)

// noCompressExtensions lists entry path extensions that bypass both
// compression and encryption entirely (see §4.3). Matching is
// case-insensitive and based on the entry's path, not its pack name.
var noCompressExtensions = []string{".jpg", ".jpeg", ".fsb", ".mp3"}

// skipsCodec reports whether path's extension exempts it from DEFLATE and
// the PKWARE cipher.
func skipsCodec(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range noCompressExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// deflateCompress produces a raw DEFLATE stream (no zlib/gzip wrapper).
// compress/flate is used directly rather than through compress/zlib or
// archive/zip precisely because those wrap the stream in a header/trailer
// this format must not have.
func deflateCompress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return nil, fmt.Errorf("ipf: create deflate writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("ipf: deflate write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("ipf: deflate close: %w", err)
	}
	return buf.Bytes(), nil
}

// deflateDecompress inflates a raw DEFLATE stream produced by
// deflateCompress.
func deflateDecompress(data []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncryptionMismatch, err)
	}
	return out, nil
}

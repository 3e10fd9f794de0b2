package utils

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ralt/yumupload/internal/scanner"
	"github.com/ulikunitz/xz"
)

// GzipCompress compresses data using gzip
func GzipCompress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)

	if _, err := w.Write(data); err != nil {
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// GzipDecompress decompresses gzip data
func GzipDecompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return io.ReadAll(r)
}

// NewDecompressReader wraps r with a decoder for the given compression
func NewDecompressReader(c scanner.Compression, r io.Reader) (io.ReadCloser, error) {
	switch c {
	case scanner.CompressionNone:
		return io.NopCloser(r), nil
	case scanner.CompressionGzip:
		return gzip.NewReader(r)
	case scanner.CompressionXz:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(xr), nil
	case scanner.CompressionZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zr.IOReadCloser(), nil
	default:
		return nil, fmt.Errorf("unsupported compression %s", c)
	}
}

// OpenChecksum digests the decompressed content of a compressed file and
// returns the digest and uncompressed size
func OpenChecksum(checksumType, path string, c scanner.Compression) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	r, err := NewDecompressReader(c, f)
	if err != nil {
		return "", 0, err
	}
	defer r.Close()

	return ChecksumReader(checksumType, r)
}

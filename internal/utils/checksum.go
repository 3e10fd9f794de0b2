package utils

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
)

// ChecksumReadBufferSize bounds the memory used while digesting a file
const ChecksumReadBufferSize = 64 * 1024

// DefaultChecksumType is the algorithm used for package identities
const DefaultChecksumType = "sha256"

// NewHash returns a hash for the named algorithm
func NewHash(checksumType string) (hash.Hash, error) {
	switch checksumType {
	case "md5":
		return md5.New(), nil
	case "sha1", "sha":
		return sha1.New(), nil
	case "sha224":
		return sha256.New224(), nil
	case "sha256":
		return sha256.New(), nil
	case "sha384":
		return sha512.New384(), nil
	case "sha512":
		return sha512.New(), nil
	default:
		return nil, fmt.Errorf("unsupported checksum type %q", checksumType)
	}
}

// CalculateChecksum digests the full content of a file in fixed-size chunks
func CalculateChecksum(checksumType, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	sum, _, err := ChecksumReader(checksumType, f)
	return sum, err
}

// ChecksumReader digests r until EOF and returns the hex digest and the
// number of bytes read
func ChecksumReader(checksumType string, r io.Reader) (string, int64, error) {
	h, err := NewHash(checksumType)
	if err != nil {
		return "", 0, err
	}

	// Fixed-size reads; the reader is never drained through WriteTo
	buf := make([]byte, ChecksumReadBufferSize)
	var n int64
	for {
		read, err := r.Read(buf)
		if read > 0 {
			h.Write(buf[:read])
			n += int64(read)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", n, err
		}
	}

	return hex.EncodeToString(h.Sum(nil)), n, nil
}

package scanner

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Magic bytes for file detection
var (
	// RPM packages start with 0xED 0xAB 0xEE 0xDB
	rpmMagic = []byte{0xED, 0xAB, 0xEE, 0xDB}

	gzipMagic = []byte{0x1F, 0x8B}

	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

	xzMagic = []byte{0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00}
)

// rpmLeadTypeSource is the lead type of source packages
const rpmLeadTypeSource = 1

// Compression identifies how a metadata file is compressed
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionXz
	CompressionZstd
)

// String returns the string representation of Compression
func (c Compression) String() string {
	switch c {
	case CompressionGzip:
		return "gzip"
	case CompressionXz:
		return "xz"
	case CompressionZstd:
		return "zstd"
	default:
		return "none"
	}
}

func readHead(path string, n int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	header := make([]byte, n)
	read, err := io.ReadFull(f, header)
	if err != nil && read == 0 {
		return nil, err
	}
	return header[:read], nil
}

// DetectPackageType determines the package type based on the RPM lead and
// file extension
func DetectPackageType(path string) (PackageType, error) {
	// The lead is 96 bytes; the type field sits at offset 6
	header, err := readHead(path, 96)
	if err != nil {
		return TypeUnknown, err
	}

	if bytes.HasPrefix(header, rpmMagic) && len(header) >= 8 {
		if binary.BigEndian.Uint16(header[6:8]) == rpmLeadTypeSource {
			return TypeSrpm, nil
		}
		return TypeRpm, nil
	}

	name := filepath.Base(path)
	if strings.HasSuffix(name, ".src.rpm") || strings.HasSuffix(name, ".nosrc.rpm") {
		return TypeSrpm, nil
	}
	if filepath.Ext(name) == ".rpm" {
		return TypeRpm, nil
	}

	return TypeUnknown, nil
}

// DetectCompression determines the compression of a file from its magic bytes
func DetectCompression(path string) (Compression, error) {
	header, err := readHead(path, len(xzMagic))
	if err != nil {
		if err == io.EOF {
			return CompressionNone, nil
		}
		return CompressionNone, err
	}

	switch {
	case bytes.HasPrefix(header, gzipMagic):
		return CompressionGzip, nil
	case bytes.HasPrefix(header, xzMagic):
		return CompressionXz, nil
	case bytes.HasPrefix(header, zstdMagic):
		return CompressionZstd, nil
	default:
		return CompressionNone, nil
	}
}

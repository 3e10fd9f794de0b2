package repodata

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Encodings chosen for snippet text
const (
	EncodingUTF8   = "UTF-8"
	EncodingLatin1 = "ISO-8859-1"
)

// DetectEncoding guesses the encoding of snippet text. Text that is not
// valid UTF-8 is treated as ISO-8859-1, which accepts every byte sequence;
// the guess can still be wrong for text in other single-byte encodings.
func DetectEncoding(text []byte) string {
	if utf8.Valid(text) {
		return EncodingUTF8
	}
	return EncodingLatin1
}

// toUTF8 converts text from the detected encoding
func toUTF8(text []byte) ([]byte, string, error) {
	enc := DetectEncoding(text)
	if enc == EncodingUTF8 {
		return text, enc, nil
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(text)
	return out, enc, err
}

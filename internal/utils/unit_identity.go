package utils

import (
	"encoding/hex"
	"slices"
	"strings"

	"github.com/zeebo/blake3"
)

// UnitID returns a stable identifier for a unit key within its type. Field
// order does not affect the result.
func UnitID(typeID string, key map[string]string) string {
	var b strings.Builder
	b.WriteString(typeID)
	var names []string
	for name := range key {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		b.WriteByte(0)
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(key[name])
	}
	sum := blake3.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

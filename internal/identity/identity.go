// Package identity derives the unit key and descriptive metadata of a
// package from its header.
package identity

import (
	"fmt"
	"maps"
	"path/filepath"
	"strconv"

	"github.com/ralt/yumupload/internal/rpmheader"
	"github.com/ralt/yumupload/internal/utils"
)

// Architectures assigned to source packages
const (
	ArchSource   = "src"
	ArchNoSource = "nosrc"
)

// DefaultEpoch is used when a package declares no epoch
const DefaultEpoch = "0"

// GenerateRPMData reads the package at path and returns its unit key and
// metadata. The checksum always covers the full file content.
func GenerateRPMData(path string) (key map[string]any, metadata map[string]any, err error) {
	h, err := rpmheader.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	checksum, err := utils.CalculateChecksum(utils.DefaultChecksumType, path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to calculate checksum: %w", err)
	}

	return Key(h, utils.DefaultChecksumType, checksum), Metadata(h, path), nil
}

// Key builds the unit key of a package from its header
func Key(h *rpmheader.Header, checksumType, checksum string) map[string]any {
	return map[string]any{
		"name":         h.Name,
		"epoch":        Epoch(h.Epoch),
		"version":      h.Version,
		"release":      h.Release,
		"arch":         Arch(h),
		"checksumtype": checksumType,
		"checksum":     checksum,
	}
}

// Metadata builds the descriptive metadata of a package from its header
func Metadata(h *rpmheader.Header, path string) map[string]any {
	base := filepath.Base(path)
	md := map[string]any{
		"relativepath": base,
		"filename":     base,
		"vendor":       h.Vendor,
		"license":      h.License,
		"buildhost":    h.BuildHost,
		"description":  h.Description,
	}
	if h.SigningKey != "" {
		md["signing_key"] = h.SigningKey
	}
	return md
}

// Epoch renders a header epoch, defaulting to "0" when absent
func Epoch(e *uint32) string {
	if e == nil {
		return DefaultEpoch
	}
	return strconv.FormatUint(uint64(*e), 10)
}

// Arch returns "nosrc" or "src" for source packages and the declared
// architecture otherwise
func Arch(h *rpmheader.Header) string {
	if !h.IsSource {
		return h.Arch
	}
	if h.NoSource {
		return ArchNoSource
	}
	return ArchSource
}

// Merge returns extracted overlaid with user; user values win field by field
func Merge(extracted, user map[string]any) map[string]any {
	out := make(map[string]any, len(extracted)+len(user))
	maps.Copy(out, extracted)
	maps.Copy(out, user)
	return out
}

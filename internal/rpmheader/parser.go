// Package rpmheader reads the metadata section of RPM packages.
package rpmheader

import (
	"fmt"
	"os"
	"strings"

	"github.com/sassoftware/go-rpmutils"
)

// Tags not named by go-rpmutils
const (
	TagNoSource      = 1051
	TagSourcePackage = 1106
)

// Dependency is one entry of a provides or requires list as stored in the
// header's parallel name/flags/version arrays
type Dependency struct {
	Name    string
	Flags   uint32
	Version string
}

// Header holds the fields of an RPM header used during ingestion
type Header struct {
	Name    string
	Version string
	Release string

	// Epoch is nil when the package declares none
	Epoch *uint32

	Arch     string
	IsSource bool

	// NoSource is set when the no-source marker tag is present
	NoSource bool

	Vendor      string
	License     string
	BuildHost   string
	Description string
	Summary     string
	URL         string
	Group       string
	Packager    string
	SourceRPM   string

	BuildTime     int64
	InstalledSize int64
	ArchiveSize   int64

	Provides []Dependency
	Requires []Dependency
	Files    []string

	// SigningKey is the short key id of the header signature, empty when
	// the package is unsigned
	SigningKey string
}

// ReadFile parses the header of the RPM at path. Signatures are not
// verified; only the metadata is read.
func ReadFile(path string) (*Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// Read RPM header
	hdr, err := rpmutils.ReadHeader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read RPM header: %w", err)
	}

	return fromRpmHeader(hdr)
}

func fromRpmHeader(hdr *rpmutils.RpmHeader) (*Header, error) {
	h := &Header{
		Name:        getStringTag(hdr, rpmutils.NAME),
		Version:     getStringTag(hdr, rpmutils.VERSION),
		Release:     getStringTag(hdr, rpmutils.RELEASE),
		Arch:        getStringTag(hdr, rpmutils.ARCH),
		Vendor:      getStringTag(hdr, rpmutils.VENDOR),
		License:     getStringTag(hdr, rpmutils.LICENSE),
		BuildHost:   getStringTag(hdr, rpmutils.BUILDHOST),
		Description: getStringTag(hdr, rpmutils.DESCRIPTION),
		Summary:     getStringTag(hdr, rpmutils.SUMMARY),
		URL:         getStringTag(hdr, rpmutils.URL),
		Group:       getStringTag(hdr, rpmutils.GROUP),
		Packager:    getStringTag(hdr, rpmutils.PACKAGER),
		SourceRPM:   getStringTag(hdr, rpmutils.SOURCERPM),
		BuildTime:   getIntTag(hdr, rpmutils.BUILDTIME),
		ArchiveSize: getIntTag(hdr, rpmutils.ARCHIVESIZE),
	}

	if h.Name == "" || h.Version == "" || h.Release == "" {
		return nil, fmt.Errorf("header is missing name, version or release")
	}

	if hdr.HasTag(rpmutils.EPOCH) {
		vals, err := hdr.GetUint32s(rpmutils.EPOCH)
		if err != nil {
			return nil, fmt.Errorf("failed to read epoch: %w", err)
		}
		if len(vals) > 0 {
			epoch := vals[0]
			h.Epoch = &epoch
		}
	}

	// Binary packages always name the source package they were built from
	h.IsSource = hdr.HasTag(TagSourcePackage) || !hdr.HasTag(rpmutils.SOURCERPM)
	h.NoSource = hdr.HasTag(TagNoSource)

	if size, err := hdr.InstalledSize(); err == nil {
		h.InstalledSize = size
	}

	var err error
	h.Provides, err = getDependencies(hdr, rpmutils.PROVIDENAME, rpmutils.PROVIDEFLAGS, rpmutils.PROVIDEVERSION)
	if err != nil {
		return nil, fmt.Errorf("failed to read provides: %w", err)
	}
	h.Requires, err = getDependencies(hdr, rpmutils.REQUIRENAME, rpmutils.REQUIREFLAGS, rpmutils.REQUIREVERSION)
	if err != nil {
		return nil, fmt.Errorf("failed to read requires: %w", err)
	}

	if files, err := hdr.GetStrings(rpmutils.OLDFILENAMES); err == nil {
		h.Files = files
	}

	h.SigningKey = signingKey(hdr)

	return h, nil
}

// getStringTag safely gets a string tag from RPM
func getStringTag(hdr *rpmutils.RpmHeader, tag int) string {
	vals, err := hdr.GetStrings(tag)
	if err != nil || len(vals) == 0 {
		return ""
	}
	return vals[0]
}

// getIntTag safely gets an integer tag from RPM
func getIntTag(hdr *rpmutils.RpmHeader, tag int) int64 {
	vals, err := hdr.GetUint64s(tag)
	if err != nil || len(vals) == 0 {
		return 0
	}
	return int64(vals[0])
}

func getDependencies(hdr *rpmutils.RpmHeader, nameTag, flagsTag, versionTag int) ([]Dependency, error) {
	if !hdr.HasTag(nameTag) {
		return nil, nil
	}
	names, err := hdr.GetStrings(nameTag)
	if err != nil {
		return nil, err
	}

	var flags []uint32
	if hdr.HasTag(flagsTag) {
		if flags, err = hdr.GetUint32s(flagsTag); err != nil {
			return nil, err
		}
	}
	var versions []string
	if hdr.HasTag(versionTag) {
		if versions, err = hdr.GetStrings(versionTag); err != nil {
			return nil, err
		}
	}

	deps := make([]Dependency, 0, len(names))
	for i, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		d := Dependency{Name: name}
		if i < len(flags) {
			d.Flags = flags[i]
		}
		if i < len(versions) {
			d.Version = versions[i]
		}
		deps = append(deps, d)
	}
	return deps, nil
}

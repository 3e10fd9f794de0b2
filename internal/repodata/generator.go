// Package repodata renders and reads the per-package XML snippets of yum
// repository metadata.
package repodata

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"

	"github.com/ralt/yumupload/internal/models"
	"github.com/ralt/yumupload/internal/rpmheader"
)

// Dependency sense bits
const (
	senseLess       = 0x02
	senseGreater    = 0x04
	senseEqual      = 0x08
	sensePrereq     = 0x40
	senseScriptPre  = 0x200
	senseScriptPost = 0x400
)

// Snippet names stored under the unit's "repodata" metadata
const (
	SnippetPrimary   = "primary"
	SnippetFilelists = "filelists"
)

// XML structures for the primary snippet. Format children carry the rpm:
// prefix without declaring it, which is how the snippets have always been
// stored.

type xmlPkg struct {
	XMLName  xml.Name    `xml:"package"`
	Type     string      `xml:"type,attr"`
	Name     string      `xml:"name"`
	Arch     string      `xml:"arch"`
	Version  xmlVersion  `xml:"version"`
	Checksum xmlChecksum `xml:"checksum"`
	Summary  string      `xml:"summary"`
	Desc     string      `xml:"description"`
	Packager string      `xml:"packager"`
	URL      string      `xml:"url"`
	Time     xmlTime     `xml:"time"`
	Size     xmlSize     `xml:"size"`
	Location xmlLocation `xml:"location"`
	Format   xmlFormat   `xml:"format"`
}

type xmlVersion struct {
	Epoch string `xml:"epoch,attr"`
	Ver   string `xml:"ver,attr"`
	Rel   string `xml:"rel,attr"`
}

type xmlChecksum struct {
	Type  string `xml:"type,attr"`
	Pkgid string `xml:"pkgid,attr"`
	Value string `xml:",chardata"`
}

type xmlTime struct {
	File  int64 `xml:"file,attr"`
	Build int64 `xml:"build,attr"`
}

type xmlSize struct {
	Package   int64 `xml:"package,attr"`
	Installed int64 `xml:"installed,attr"`
	Archive   int64 `xml:"archive,attr"`
}

type xmlLocation struct {
	Href string `xml:"href,attr"`
}

type xmlFormat struct {
	License   string       `xml:"rpm:license"`
	Vendor    string       `xml:"rpm:vendor"`
	Group     string       `xml:"rpm:group"`
	BuildHost string       `xml:"rpm:buildhost"`
	SourceRPM string       `xml:"rpm:sourcerpm"`
	Provides  *xmlEntryset `xml:"rpm:provides,omitempty"`
	Requires  *xmlEntryset `xml:"rpm:requires,omitempty"`
	Files     []string     `xml:"file"`
}

type xmlEntryset struct {
	Entries []xmlEntry `xml:"rpm:entry"`
}

type xmlEntry struct {
	Name  string `xml:"name,attr"`
	Flags string `xml:"flags,attr,omitempty"`
	Epoch string `xml:"epoch,attr,omitempty"`
	Ver   string `xml:"ver,attr,omitempty"`
	Rel   string `xml:"rel,attr,omitempty"`
	Pre   string `xml:"pre,attr,omitempty"`
}

type xmlFilelistsPkg struct {
	XMLName xml.Name   `xml:"package"`
	PkgID   string     `xml:"pkgid,attr"`
	Name    string     `xml:"name,attr"`
	Arch    string     `xml:"arch,attr"`
	Version xmlVersion `xml:"version"`
	Files   []string   `xml:"file"`
}

// GeneratePackageXML renders the primary and filelists snippets of the
// package stored at path. Identity fields come from the unit so user
// overrides are reflected.
func GeneratePackageXML(path string, unit *models.Unit) (map[string]any, error) {
	h, err := rpmheader.ReadFile(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	key := unit.Key
	version := xmlVersion{Epoch: key["epoch"], Ver: key["version"], Rel: key["release"]}

	href := unit.Metadata.String("relativepath")
	if href == "" {
		href = unit.Metadata.String("filename")
	}

	pkg := xmlPkg{
		Type:    "rpm",
		Name:    key["name"],
		Arch:    key["arch"],
		Version: version,
		Checksum: xmlChecksum{
			Type:  key["checksumtype"],
			Pkgid: "YES",
			Value: key["checksum"],
		},
		Summary:  h.Summary,
		Desc:     h.Description,
		Packager: h.Packager,
		URL:      h.URL,
		Time: xmlTime{
			File:  info.ModTime().Unix(),
			Build: h.BuildTime,
		},
		Size: xmlSize{
			Package:   info.Size(),
			Installed: h.InstalledSize,
			Archive:   h.ArchiveSize,
		},
		Location: xmlLocation{Href: href},
		Format: xmlFormat{
			License:   h.License,
			Vendor:    h.Vendor,
			Group:     h.Group,
			BuildHost: h.BuildHost,
			SourceRPM: h.SourceRPM,
			Provides:  entryset(h.Provides, false),
			Requires:  entryset(h.Requires, true),
			Files:     h.Files,
		},
	}

	primary, err := xml.MarshalIndent(pkg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to render primary snippet: %w", err)
	}

	filelists, err := xml.MarshalIndent(xmlFilelistsPkg{
		PkgID:   key["checksum"],
		Name:    key["name"],
		Arch:    key["arch"],
		Version: version,
		Files:   h.Files,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to render filelists snippet: %w", err)
	}

	return map[string]any{
		SnippetPrimary:   string(primary),
		SnippetFilelists: string(filelists),
	}, nil
}

func entryset(deps []rpmheader.Dependency, requires bool) *xmlEntryset {
	var entries []xmlEntry
	for _, d := range deps {
		// rpmlib() requirements are satisfied by rpm itself
		if requires && strings.HasPrefix(d.Name, "rpmlib(") {
			continue
		}
		e := xmlEntry{Name: d.Name, Flags: senseFlags(d.Flags)}
		if d.Version != "" {
			e.Epoch, e.Ver, e.Rel = splitEVR(d.Version)
		}
		if requires && d.Flags&(sensePrereq|senseScriptPre|senseScriptPost) != 0 {
			e.Pre = "1"
		}
		entries = append(entries, e)
	}
	if len(entries) == 0 {
		return nil
	}
	return &xmlEntryset{Entries: entries}
}

func senseFlags(flags uint32) string {
	switch flags & (senseLess | senseGreater | senseEqual) {
	case senseEqual:
		return "EQ"
	case senseLess:
		return "LT"
	case senseLess | senseEqual:
		return "LE"
	case senseGreater:
		return "GT"
	case senseGreater | senseEqual:
		return "GE"
	default:
		return ""
	}
}

// splitEVR splits "[epoch:]version[-release]"; a missing epoch is "0"
func splitEVR(evr string) (epoch, version, release string) {
	epoch = "0"
	if i := strings.IndexByte(evr, ':'); i >= 0 {
		if i > 0 {
			epoch = evr[:i]
		}
		evr = evr[i+1:]
	}
	version = evr
	if i := strings.LastIndexByte(evr, '-'); i >= 0 {
		version, release = evr[:i], evr[i+1:]
	}
	return epoch, version, release
}

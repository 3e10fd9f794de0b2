package repodata

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"github.com/ralt/yumupload/internal/models"
)

// Namespaces the stored snippets refer to. Snippets usually use the rpm:
// prefix without declaring it.
const (
	NamespaceCommon = "http://linux.duke.edu/metadata/common"
	NamespaceRPM    = "http://linux.duke.edu/metadata/rpm"
)

// ErrNoPackage is returned when a snippet has no package element
var ErrNoPackage = errors.New("snippet contains no package element")

// Tags without a namespace match any namespace, so prefixed and unprefixed
// elements are read alike.
type snippetPackage struct {
	Format *snippetFormat `xml:"format"`
}

type snippetFormat struct {
	Provides *snippetEntries `xml:"provides"`
	Requires *snippetEntries `xml:"requires"`
}

type snippetEntries struct {
	Entries []xmlEntry `xml:"entry"`
}

// ExtractCapabilities reads the provides and requires entries of a primary
// snippet. A missing provides or requires element yields an empty list.
func ExtractCapabilities(snippet []byte) (provides, requires []models.CapabilityEntry, err error) {
	text, _, err := toUTF8(snippet)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode snippet: %w", err)
	}

	d := xml.NewDecoder(bytes.NewReader(text))
	d.DefaultSpace = NamespaceCommon
	// Text is already UTF-8 whatever the declaration says
	d.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}

	start, err := findPackage(d)
	if err != nil {
		return nil, nil, err
	}

	var pkg snippetPackage
	if err := d.DecodeElement(&pkg, start); err != nil {
		return nil, nil, fmt.Errorf("failed to parse snippet: %w", err)
	}

	provides = []models.CapabilityEntry{}
	requires = []models.CapabilityEntry{}
	if pkg.Format == nil {
		return provides, requires, nil
	}
	if pkg.Format.Provides != nil {
		provides = capabilities(pkg.Format.Provides.Entries)
	}
	if pkg.Format.Requires != nil {
		requires = capabilities(pkg.Format.Requires.Entries)
	}
	return provides, requires, nil
}

func findPackage(d *xml.Decoder) (*xml.StartElement, error) {
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return nil, ErrNoPackage
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse snippet: %w", err)
		}
		if se, ok := tok.(xml.StartElement); ok && se.Name.Local == "package" {
			return &se, nil
		}
	}
}

func capabilities(entries []xmlEntry) []models.CapabilityEntry {
	out := make([]models.CapabilityEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, models.CapabilityEntry{
			Name:    e.Name,
			Flags:   e.Flags,
			Epoch:   e.Epoch,
			Version: e.Ver,
			Release: e.Rel,
			Pre:     e.Pre != "" && e.Pre != "0",
		})
	}
	return out
}

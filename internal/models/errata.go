package models

import (
	"fmt"
	"strconv"
)

// ErrataKeyFields are the unit key fields of errata
var ErrataKeyFields = []string{"id"}

// ErratumPackage is one package referenced by an erratum's pkglist
type ErratumPackage struct {
	Name         string
	Epoch        string
	Version      string
	Release      string
	Arch         string
	Filename     string
	ChecksumType string
	Checksum     string
}

// Errata is an advisory describing an update; it has no file of its own
type Errata struct {
	key      UnitKey
	metadata Metadata
	packages []ErratumPackage
}

// NewErrata validates an erratum unit. The pkglist, when present, must be a
// list of collections each holding a "packages" list of package mappings.
func NewErrata(key map[string]any, metadata map[string]any) (*Errata, error) {
	k, err := buildKey(key, ErrataKeyFields)
	if err != nil {
		return nil, err
	}

	md := Metadata(metadata).Clone()
	for _, name := range []string{"title", "description", "version", "release", "type", "status", "updated", "issued", "severity"} {
		if _, err := optionalString(md, name); err != nil {
			return nil, err
		}
	}

	pkgs, err := parsePkglist(md["pkglist"])
	if err != nil {
		return nil, err
	}

	return &Errata{key: k, metadata: md, packages: pkgs}, nil
}

func (e *Errata) TypeID() TypeID       { return TypeErratum }
func (e *Errata) UnitKey() UnitKey     { return e.key.Clone() }
func (e *Errata) Metadata() Metadata   { return e.metadata }
func (e *Errata) RelativePath() string { return "" }

// Packages returns the packages named by the pkglist in document order
func (e *Errata) Packages() []ErratumPackage {
	return e.packages
}

// RPMSearchDicts returns one equality predicate per referenced package.
// A package matches the erratum when any predicate matches all of its
// fields. Checksum fields are only included when the pkglist carries them.
func (e *Errata) RPMSearchDicts() []map[string]string {
	ret := make([]map[string]string, 0, len(e.packages))
	for _, p := range e.packages {
		d := map[string]string{
			"name":    p.Name,
			"epoch":   p.Epoch,
			"version": p.Version,
			"release": p.Release,
			"arch":    p.Arch,
		}
		if p.Checksum != "" && p.ChecksumType != "" {
			d["checksum"] = p.Checksum
			d["checksumtype"] = p.ChecksumType
		}
		ret = append(ret, d)
	}
	return ret
}

func parsePkglist(v any) ([]ErratumPackage, error) {
	if v == nil {
		return nil, nil
	}
	collections, err := asList(v, "pkglist")
	if err != nil {
		return nil, err
	}

	var pkgs []ErratumPackage
	for i, c := range collections {
		coll, ok := c.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: pkglist[%d] must be a mapping, got %T", ErrFieldType, i, c)
		}
		if coll["packages"] == nil {
			continue
		}
		entries, err := asList(coll["packages"], fmt.Sprintf("pkglist[%d].packages", i))
		if err != nil {
			return nil, err
		}
		for j, raw := range entries {
			m, ok := raw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: pkglist[%d].packages[%d] must be a mapping, got %T", ErrFieldType, i, j, raw)
			}
			p, err := parseErratumPackage(m)
			if err != nil {
				return nil, fmt.Errorf("pkglist[%d].packages[%d]: %w", i, j, err)
			}
			pkgs = append(pkgs, p)
		}
	}
	return pkgs, nil
}

func parseErratumPackage(m map[string]any) (ErratumPackage, error) {
	var p ErratumPackage
	var err error

	if p.Name, err = requireString(m, "name"); err != nil {
		return p, err
	}
	for _, f := range []struct {
		name string
		dst  *string
	}{
		{"version", &p.Version},
		{"release", &p.Release},
		{"arch", &p.Arch},
		{"filename", &p.Filename},
	} {
		if *f.dst, err = optionalString(m, f.name); err != nil {
			return p, err
		}
	}

	p.Epoch, err = scalarString(m["epoch"])
	if err != nil {
		return p, fmt.Errorf("epoch: %w", err)
	}
	if p.Epoch == "" {
		p.Epoch = "0"
	}

	switch {
	case m["sum"] != nil:
		sum, err := asList(m["sum"], "sum")
		if err != nil {
			return p, err
		}
		if len(sum) == 2 {
			t, _ := sum[0].(string)
			c, _ := sum[1].(string)
			p.ChecksumType, p.Checksum = SanitizeChecksumType(t), c
		}
	case m["sums"] != nil && m["type"] != nil:
		c, _ := m["sums"].(string)
		t, _ := m["type"].(string)
		p.ChecksumType, p.Checksum = SanitizeChecksumType(t), c
	}

	return p, nil
}

func asList(v any, name string) ([]any, error) {
	switch l := v.(type) {
	case []any:
		return l, nil
	case []map[string]any:
		out := make([]any, len(l))
		for i := range l {
			out[i] = l[i]
		}
		return out, nil
	case []string:
		out := make([]any, len(l))
		for i := range l {
			out[i] = l[i]
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %s must be a list, got %T", ErrFieldType, name, v)
	}
}

// scalarString stringifies values that decoders may produce for numeric
// fields such as epoch.
func scalarString(v any) (string, error) {
	switch s := v.(type) {
	case nil:
		return "", nil
	case string:
		return s, nil
	case int:
		return strconv.Itoa(s), nil
	case int64:
		return strconv.FormatInt(s, 10), nil
	case uint64:
		return strconv.FormatUint(s, 10), nil
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("%w: expected scalar, got %T", ErrFieldType, v)
	}
}

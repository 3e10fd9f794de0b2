package models

import (
	"fmt"
	"path"
)

// RPMKeyFields are the unit key fields of rpm and srpm units
var RPMKeyFields = []string{"name", "epoch", "version", "release", "arch", "checksumtype", "checksum"}

// RPM is a binary or source package unit
type RPM struct {
	typeID   TypeID
	key      UnitKey
	metadata Metadata
}

// NewRPM validates key and metadata for an rpm or srpm unit.
func NewRPM(typeID TypeID, key map[string]any, metadata map[string]any) (*RPM, error) {
	if !typeID.IsPackage() {
		return nil, fmt.Errorf("%w: %s is not a package type", ErrFieldType, typeID)
	}

	k, err := buildKey(key, RPMKeyFields)
	if err != nil {
		return nil, err
	}

	md := Metadata(metadata).Clone()
	if _, err := requireString(md, "filename"); err != nil {
		return nil, err
	}
	for _, name := range []string{"relativepath", "vendor", "license", "buildhost", "description"} {
		if _, err := optionalString(md, name); err != nil {
			return nil, err
		}
	}

	return &RPM{typeID: typeID, key: k, metadata: md}, nil
}

func (r *RPM) TypeID() TypeID     { return r.typeID }
func (r *RPM) UnitKey() UnitKey   { return r.key.Clone() }
func (r *RPM) Metadata() Metadata { return r.metadata }

// RelativePath places the file under name/version/release/arch/checksum so
// that two builds sharing a file name never collide.
func (r *RPM) RelativePath() string {
	return path.Join(r.key["name"], r.key["version"], r.key["release"], r.key["arch"],
		r.key["checksum"], r.metadata.String("filename"))
}

// NEVRA renders the package identity the way rpm prints it
func (r *RPM) NEVRA() string {
	return fmt.Sprintf("%s-%s:%s-%s.%s", r.key["name"], r.key["epoch"], r.key["version"], r.key["release"], r.key["arch"])
}

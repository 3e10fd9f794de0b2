package models

import (
	"maps"
	"slices"
)

// UnitKey is the minimal set of fields identifying a unit within its type.
// A key handed out by a model constructor is always complete.
type UnitKey map[string]string

// Clone returns an independent copy of the key
func (k UnitKey) Clone() UnitKey {
	return maps.Clone(k)
}

// Fields returns the key's field names in sorted order
func (k UnitKey) Fields() []string {
	var fields []string
	for name := range k {
		fields = append(fields, name)
	}
	slices.Sort(fields)
	return fields
}

// Metadata holds the descriptive, type-specific fields of a unit
type Metadata map[string]any

// Clone returns a shallow copy of the metadata
func (m Metadata) Clone() Metadata {
	if m == nil {
		return Metadata{}
	}
	return maps.Clone(m)
}

// String returns the named field when it holds a string
func (m Metadata) String(name string) string {
	s, _ := m[name].(string)
	return s
}

// Unit is one piece of content tracked by the catalog
type Unit struct {
	// ID is derived from TypeID and Key by the catalog
	ID       string
	TypeID   TypeID
	Key      UnitKey
	Metadata Metadata

	// StoragePath is empty for metadata-only types
	StoragePath string
}

// Ref returns a lightweight reference to the unit
func (u *Unit) Ref() UnitRef {
	return UnitRef{TypeID: u.TypeID, ID: u.ID, Key: u.Key.Clone()}
}

// UnitRef identifies a unit without carrying its metadata
type UnitRef struct {
	TypeID TypeID
	ID     string
	Key    UnitKey
}

// CapabilityEntry is one provides or requires entry of a package
type CapabilityEntry struct {
	Name    string `json:"name" cbor:"name"`
	Flags   string `json:"flags,omitempty" cbor:"flags,omitempty"`
	Epoch   string `json:"epoch,omitempty" cbor:"epoch,omitempty"`
	Version string `json:"version,omitempty" cbor:"version,omitempty"`
	Release string `json:"release,omitempty" cbor:"release,omitempty"`
	Pre     bool   `json:"pre,omitempty" cbor:"pre,omitempty"`
}

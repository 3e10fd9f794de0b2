package models

import "fmt"

// GroupKeyFields are the unit key fields of package groups and categories
var GroupKeyFields = []string{"id", "repo_id"}

// PackageGroup is a comps group or category; both share the same shape
type PackageGroup struct {
	typeID   TypeID
	key      UnitKey
	metadata Metadata
}

// NewPackageGroup validates a package_group or package_category unit.
func NewPackageGroup(typeID TypeID, key map[string]any, metadata map[string]any) (*PackageGroup, error) {
	if typeID != TypePackageGroup && typeID != TypePackageCategory {
		return nil, fmt.Errorf("%w: %s is not a group type", ErrFieldType, typeID)
	}
	k, err := buildKey(key, GroupKeyFields)
	if err != nil {
		return nil, err
	}
	return &PackageGroup{typeID: typeID, key: k, metadata: Metadata(metadata).Clone()}, nil
}

func (g *PackageGroup) TypeID() TypeID       { return g.typeID }
func (g *PackageGroup) UnitKey() UnitKey     { return g.key.Clone() }
func (g *PackageGroup) Metadata() Metadata   { return g.metadata }
func (g *PackageGroup) RelativePath() string { return "" }

// NewPackageCategory validates a package_category unit.
func NewPackageCategory(key map[string]any, metadata map[string]any) (*PackageGroup, error) {
	return NewPackageGroup(TypePackageCategory, key, metadata)
}

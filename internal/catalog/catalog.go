// Package catalog records units, their storage locations and the links
// between them.
package catalog

import (
	"context"
	"errors"

	"github.com/ralt/yumupload/internal/models"
)

var (
	// ErrNotFound is returned when a unit does not exist
	ErrNotFound = errors.New("unit not found")

	// ErrClosed is returned by operations on a closed catalog
	ErrClosed = errors.New("catalog is closed")
)

// Catalog is the content catalog the upload pipeline commits into. Units of
// different ids may be saved concurrently; saving the same unit twice keeps
// the last write.
type Catalog interface {
	// InitUnit builds an unsaved unit and assigns its storage path. An empty
	// relative path means the unit has no file.
	InitUnit(typeID models.TypeID, key models.UnitKey, metadata models.Metadata, relativePath string) *models.Unit

	// SaveUnit inserts or replaces the unit
	SaveUnit(ctx context.Context, unit *models.Unit) error

	GetUnit(ctx context.Context, typeID models.TypeID, key models.UnitKey) (*models.Unit, error)

	QueryUnits(ctx context.Context, criteria Criteria) ([]*models.Unit, error)

	// LinkUnits associates a with b, and b with a when bidirectional is set
	LinkUnits(ctx context.Context, a, b *models.Unit, bidirectional bool) error

	// LinkedUnits lists the units the given unit is associated with
	LinkedUnits(ctx context.Context, unit *models.Unit) ([]models.UnitRef, error)

	Close() error
}

// Criteria selects units in QueryUnits.
type Criteria struct {
	// TypeIDs restricts the search; empty means every type
	TypeIDs []models.TypeID

	// Fields limits the returned metadata to the named fields. Keys are
	// always returned whole.
	Fields []string

	// Filters are OR-ed together, each one an AND of equality constraints
	// on key fields or string metadata fields. A nil slice matches every
	// unit, an empty one matches none.
	Filters []map[string]string
}

func (c Criteria) matches(u *models.Unit) bool {
	if c.Filters == nil {
		return true
	}
	for _, f := range c.Filters {
		if matchFilter(u, f) {
			return true
		}
	}
	return false
}

func matchFilter(u *models.Unit, filter map[string]string) bool {
	for field, want := range filter {
		got, ok := u.Key[field]
		if !ok {
			got, ok = u.Metadata[field].(string)
		}
		if !ok || got != want {
			return false
		}
	}
	return true
}

func (c Criteria) project(u *models.Unit) {
	if len(c.Fields) == 0 {
		return
	}
	md := make(models.Metadata, len(c.Fields))
	for _, f := range c.Fields {
		if v, ok := u.Metadata[f]; ok {
			md[f] = v
		}
	}
	u.Metadata = md
}

package upload

import (
	"context"
	"fmt"

	"github.com/ralt/yumupload/internal/catalog"
	"github.com/ralt/yumupload/internal/models"
)

// erratumHandler creates an erratum and links it to the packages it names
// unless linking is disabled for the upload.
type erratumHandler struct{}

func (erratumHandler) handle(ctx context.Context, c *call) error {
	model, err := models.NewErrata(c.key, c.metadata)
	if err != nil {
		return models.NewUploadError(models.ErrModelInstantiation, c.typeID.String(), err)
	}

	unit := c.catalog.InitUnit(models.TypeErratum, model.UnitKey(), model.Metadata(), "")

	// Links only need the unit id; the erratum is saved once they exist
	if c.opts.SkipErratumLink {
		c.log.Debug("Skipping erratum linking")
	} else if err := linkErratum(ctx, c, unit, model); err != nil {
		return err
	}

	if err := c.catalog.SaveUnit(ctx, unit); err != nil {
		return fmt.Errorf("failed to save unit: %w", err)
	}
	return nil
}

// linkErratum associates the erratum with every known rpm or srpm matching
// one of its package predicates. Finding none is not an error.
func linkErratum(ctx context.Context, c *call, erratum *models.Unit, model *models.Errata) error {
	c.log.Debugf("Erratum references %d packages", len(model.Packages()))
	filters := model.RPMSearchDicts()
	if len(filters) == 0 {
		return nil
	}

	packages, err := c.catalog.QueryUnits(ctx, catalog.Criteria{
		TypeIDs: []models.TypeID{models.TypeRPM, models.TypeSRPM},
		Fields:  []string{"filename"},
		Filters: filters,
	})
	if err != nil {
		return fmt.Errorf("failed to find erratum packages: %w", err)
	}

	for _, pkg := range packages {
		if err := c.catalog.LinkUnits(ctx, erratum, pkg, true); err != nil {
			return fmt.Errorf("failed to link %s: %w", pkg.Metadata.String("filename"), err)
		}
	}
	c.log.Infof("Linked erratum to %d packages", len(packages))
	return nil
}

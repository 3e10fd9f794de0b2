package upload

import (
	"context"
	"fmt"

	"github.com/ralt/yumupload/internal/identity"
	"github.com/ralt/yumupload/internal/models"
)

// groupHandler creates package groups and categories. There is no file.
type groupHandler struct{}

func (groupHandler) handle(ctx context.Context, c *call) error {
	key := identity.Merge(map[string]any{"repo_id": c.repo.ID}, c.key)

	var (
		model models.Model
		err   error
	)
	if c.typeID == models.TypePackageCategory {
		model, err = models.NewPackageCategory(key, c.metadata)
	} else {
		model, err = models.NewPackageGroup(c.typeID, key, c.metadata)
	}
	if err != nil {
		return models.NewUploadError(models.ErrModelInstantiation, c.typeID.String(), err)
	}

	unit := c.catalog.InitUnit(c.typeID, model.UnitKey(), model.Metadata(), "")
	if err := c.catalog.SaveUnit(ctx, unit); err != nil {
		return fmt.Errorf("failed to save unit: %w", err)
	}
	return nil
}

package upload

import (
	"context"
	"fmt"
	"os"

	"github.com/ralt/yumupload/internal/identity"
	"github.com/ralt/yumupload/internal/models"
	"github.com/ralt/yumupload/internal/repodata"
	"github.com/ralt/yumupload/internal/utils"
)

// packageHandler imports rpm and srpm files. Identity and metadata are
// read from the file; user-supplied fields take precedence.
type packageHandler struct{}

func (packageHandler) handle(ctx context.Context, c *call) error {
	key, metadata, err := identity.GenerateRPMData(c.filePath)
	if err != nil {
		return models.NewUploadError(models.ErrPackageMetadata, c.typeID.String(), err)
	}
	key = identity.Merge(key, c.key)
	metadata = identity.Merge(metadata, c.metadata)

	model, err := models.NewRPM(c.typeID, key, metadata)
	if err != nil {
		return models.NewUploadError(models.ErrModelInstantiation, c.typeID.String(), err)
	}
	c.log = c.log.WithField("package", model.NEVRA())

	unit := c.catalog.InitUnit(c.typeID, model.UnitKey(), model.Metadata(), model.RelativePath())
	if err := utils.MoveFile(c.filePath, unit.StoragePath); err != nil {
		return models.NewUploadError(models.ErrStoreFile, c.typeID.String(), err)
	}
	c.log.Debugf("Stored package at %s", unit.StoragePath)

	if err := addRepodata(unit); err != nil {
		discard(c, unit.StoragePath)
		return err
	}

	if err := c.catalog.SaveUnit(ctx, unit); err != nil {
		discard(c, unit.StoragePath)
		return fmt.Errorf("failed to save unit: %w", err)
	}
	return nil
}

// addRepodata renders the package's repodata snippets from the stored file
// and records its capabilities.
func addRepodata(unit *models.Unit) error {
	snippets, err := repodata.GeneratePackageXML(unit.StoragePath, unit)
	if err != nil {
		return fmt.Errorf("failed to generate repodata: %w", err)
	}
	primary, _ := snippets[repodata.SnippetPrimary].(string)
	provides, requires, err := repodata.ExtractCapabilities([]byte(primary))
	if err != nil {
		return fmt.Errorf("failed to extract capabilities: %w", err)
	}

	unit.Metadata["repodata"] = snippets
	unit.Metadata["provides"] = provides
	unit.Metadata["requires"] = requires
	return nil
}

// discard removes a stored file whose unit could not be saved
func discard(c *call, path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		c.log.WithError(err).Warnf("Failed to remove %s", path)
	}
}

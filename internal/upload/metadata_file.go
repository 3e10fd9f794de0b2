package upload

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/ralt/yumupload/internal/identity"
	"github.com/ralt/yumupload/internal/models"
	"github.com/ralt/yumupload/internal/scanner"
	"github.com/ralt/yumupload/internal/utils"
)

// metadataFileHandler stores an extra repository metadata file. Checksums
// are always computed from the staged file.
type metadataFileHandler struct{}

func (metadataFileHandler) handle(ctx context.Context, c *call) error {
	typeID := c.typeID.String()
	if c.filePath == "" {
		return models.NewUploadError(models.ErrStoreFile, typeID, fmt.Errorf("no file uploaded"))
	}

	sums, err := fileChecksums(c.filePath)
	if err != nil {
		return models.NewUploadError(models.ErrStoreFile, typeID, err)
	}

	key := identity.Merge(map[string]any{"repo_id": c.repo.ID}, c.key)
	metadata := identity.Merge(map[string]any{"filename": filepath.Base(c.filePath)}, c.metadata)
	metadata = identity.Merge(metadata, sums)

	model, err := models.NewYumMetadataFile(key, metadata)
	if err != nil {
		return models.NewUploadError(models.ErrModelInstantiation, typeID, err)
	}

	unit := c.catalog.InitUnit(models.TypeYumMetadataFile, model.UnitKey(), model.Metadata(), model.RelativePath())
	if err := utils.MoveFile(c.filePath, unit.StoragePath); err != nil {
		return models.NewUploadError(models.ErrStoreFile, typeID, err)
	}
	if err := c.catalog.SaveUnit(ctx, unit); err != nil {
		discard(c, unit.StoragePath)
		return fmt.Errorf("failed to save unit: %w", err)
	}
	return nil
}

// fileChecksums digests the file and, when it is compressed, its content.
func fileChecksums(path string) (map[string]any, error) {
	sum, err := utils.CalculateChecksum(utils.DefaultChecksumType, path)
	if err != nil {
		return nil, err
	}
	sums := map[string]any{
		"checksum":      sum,
		"checksum_type": utils.DefaultChecksumType,
	}

	compression, err := scanner.DetectCompression(path)
	if err != nil {
		return nil, err
	}
	if compression == scanner.CompressionNone {
		return sums, nil
	}
	openSum, openSize, err := utils.OpenChecksum(utils.DefaultChecksumType, path, compression)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s content: %w", compression, err)
	}
	sums["open_checksum"] = openSum
	sums["open_size"] = openSize
	return sums, nil
}

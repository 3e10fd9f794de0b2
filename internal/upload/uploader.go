// Package upload ingests one uploaded unit into the catalog and reports the
// outcome.
package upload

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ralt/yumupload/internal/catalog"
	"github.com/ralt/yumupload/internal/models"
)

// Request describes a single upload.
type Request struct {
	// TypeID is the declared type; anything outside the supported set is
	// rejected before a handler runs
	TypeID string

	// UnitKey and Metadata are the user-supplied fields. For packages they
	// override the values read from the file.
	UnitKey  map[string]any
	Metadata map[string]any

	// FilePath is the staged file, empty for metadata-only types
	FilePath string

	Repository models.Repository
	Options    models.UploadOptions
}

// Uploader runs uploads against a catalog. It holds no per-upload state and
// may be used from several goroutines.
type Uploader struct {
	catalog catalog.Catalog
	log     *logrus.Logger
}

// New creates an Uploader. A nil logger means the standard logrus logger.
func New(cat catalog.Catalog, logger *logrus.Logger) *Uploader {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Uploader{catalog: cat, log: logger}
}

// call is the state of one upload shared with its handler
type call struct {
	typeID   models.TypeID
	key      map[string]any
	metadata map[string]any
	filePath string
	repo     models.Repository
	opts     models.UploadOptions
	catalog  catalog.Catalog
	log      *logrus.Entry
}

// handler imports one unit of the type it was selected for
type handler interface {
	handle(ctx context.Context, c *call) error
}

func handlerFor(t models.TypeID) (handler, bool) {
	switch t {
	case models.TypeRPM, models.TypeSRPM:
		return packageHandler{}, true
	case models.TypePackageGroup, models.TypePackageCategory:
		return groupHandler{}, true
	case models.TypeErratum:
		return erratumHandler{}, true
	case models.TypeYumMetadataFile:
		return metadataFileHandler{}, true
	default:
		return nil, false
	}
}

// Upload imports the unit described by req. It never returns without a
// report: every failure, including a panic in a handler, is turned into a
// failure report carrying a short category message while the full error is
// logged.
func (u *Uploader) Upload(ctx context.Context, req Request) (report models.Report) {
	log := u.log.WithFields(logrus.Fields{
		"upload_id": uuid.NewString(),
		"type_id":   req.TypeID,
		"repo_id":   req.Repository.ID,
	})

	typeID, err := models.ParseTypeID(req.TypeID)
	if err != nil {
		return failure(log, req.TypeID, err)
	}
	h, ok := handlerFor(typeID)
	if !ok {
		return failure(log, req.TypeID, models.NewUploadError(models.ErrUnsupportedType, req.TypeID,
			fmt.Errorf("no handler for type %q", req.TypeID)))
	}

	defer func() {
		if r := recover(); r != nil {
			report = failure(log, req.TypeID, fmt.Errorf("panic during upload: %v", r))
		}
	}()

	log.Debug("Starting upload")
	err = h.handle(ctx, &call{
		typeID:   typeID,
		key:      req.UnitKey,
		metadata: req.Metadata,
		filePath: req.FilePath,
		repo:     req.Repository,
		opts:     req.Options,
		catalog:  u.catalog,
		log:      log,
	})
	if err != nil {
		return failure(log, req.TypeID, err)
	}

	log.Info("Upload completed")
	return models.SuccessReport()
}

func failure(log *logrus.Entry, typeID string, err error) models.Report {
	kind := models.ErrorTypeOf(err)
	log.WithError(err).WithField("error_type", kind).Error("Upload failed")
	return models.FailureReport(kind.Message(typeID))
}

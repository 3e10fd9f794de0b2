package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/sirupsen/logrus"

	"github.com/ralt/yumupload/internal/models"
	"github.com/ralt/yumupload/internal/utils"
)

// Backend is a Catalog stored in BadgerDB. Unit files live under the
// storage root, one directory per type.
type Backend struct {
	db          *badger.DB
	storageRoot string
	log         *logrus.Entry
}

var _ Catalog = (*Backend)(nil)

// badgerLoggerAdapter adapts logrus to the badger.Logger interface.
// Badger's info chatter is demoted to debug.
type badgerLoggerAdapter struct {
	log *logrus.Entry
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.log.Errorf(msg, items...)
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.log.Warnf(msg, items...)
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.log.Debugf(msg, items...)
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.log.Tracef(msg, items...)
}

// Options configures OpenBackend.
type Options struct {
	// Path is the database directory, ignored when InMemory is set
	Path     string
	InMemory bool

	StorageRoot string

	// Logger defaults to the standard logrus logger
	Logger *logrus.Logger
}

// OpenBackend opens the catalog database, creating its directory if needed.
func OpenBackend(opts Options) (*Backend, error) {
	if opts.StorageRoot == "" {
		return nil, fmt.Errorf("storage root is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	log := logger.WithField("component", "catalog")

	var bopts badger.Options
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := ensureDirectory(opts.Path); err != nil {
			return nil, err
		}
		bopts = badger.DefaultOptions(opts.Path)
	}

	bopts.Logger = &badgerLoggerAdapter{log: log}
	// Large records are compressed by the codec
	bopts.Compression = options.None

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}

	return &Backend{db: db, storageRoot: opts.StorageRoot, log: log}, nil
}

func ensureDirectory(path string) error {
	if path == "" {
		return fmt.Errorf("catalog path is required")
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return utils.EnsureDir(path)
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}

// Close closes the database.
func (b *Backend) Close() error {
	return b.db.Close()
}

// IsClosed returns true if the database is closed.
func (b *Backend) IsClosed() bool {
	return b.db.IsClosed()
}

// StorageRoot returns the directory unit files are stored under
func (b *Backend) StorageRoot() string {
	return b.storageRoot
}

func (b *Backend) check(ctx context.Context) error {
	if b.db.IsClosed() {
		return ErrClosed
	}
	return ctx.Err()
}

// InitUnit builds an unsaved unit with its id and storage path assigned.
func (b *Backend) InitUnit(typeID models.TypeID, key models.UnitKey, metadata models.Metadata, relativePath string) *models.Unit {
	unit := &models.Unit{
		ID:       utils.UnitID(typeID.String(), key),
		TypeID:   typeID,
		Key:      key.Clone(),
		Metadata: metadata.Clone(),
	}
	if relativePath != "" {
		unit.StoragePath = filepath.Join(b.storageRoot, typeID.String(), relativePath)
	}
	return unit
}

// SaveUnit inserts or replaces the unit record.
func (b *Backend) SaveUnit(ctx context.Context, unit *models.Unit) error {
	if err := b.check(ctx); err != nil {
		return err
	}
	if unit.ID == "" {
		unit.ID = utils.UnitID(unit.TypeID.String(), unit.Key)
	}
	data, err := marshalUnit(unit)
	if err != nil {
		return fmt.Errorf("failed to encode unit: %w", err)
	}
	err = b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(makeUnitKey(unit.TypeID, unit.ID), data)
	})
	if err != nil {
		return err
	}
	b.log.WithFields(logrus.Fields{"type_id": unit.TypeID, "unit_id": unit.ID}).Debug("Saved unit")
	return nil
}

// GetUnit loads the unit of the given type and key.
func (b *Backend) GetUnit(ctx context.Context, typeID models.TypeID, key models.UnitKey) (*models.Unit, error) {
	if err := b.check(ctx); err != nil {
		return nil, err
	}
	var unit *models.Unit
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(makeUnitKey(typeID, utils.UnitID(typeID.String(), key)))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			unit, err = unmarshalUnit(val)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return unit, nil
}

// QueryUnits returns the units matching the criteria, ordered by type then id.
func (b *Backend) QueryUnits(ctx context.Context, criteria Criteria) ([]*models.Unit, error) {
	if err := b.check(ctx); err != nil {
		return nil, err
	}
	if criteria.Filters != nil && len(criteria.Filters) == 0 {
		return nil, nil
	}

	prefixes := [][]byte{[]byte(unitPrefix + ":")}
	if len(criteria.TypeIDs) > 0 {
		prefixes = prefixes[:0]
		for _, t := range criteria.TypeIDs {
			prefixes = append(prefixes, makeUnitTypePrefix(t))
		}
	}

	var units []*models.Unit
	err := b.db.View(func(txn *badger.Txn) error {
		for _, prefix := range prefixes {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = prefix
			iter := txn.NewIterator(opts)

			for iter.Rewind(); iter.Valid(); iter.Next() {
				if err := ctx.Err(); err != nil {
					iter.Close()
					return err
				}
				var unit *models.Unit
				err := iter.Item().Value(func(val []byte) error {
					var err error
					unit, err = unmarshalUnit(val)
					return err
				})
				if err != nil {
					iter.Close()
					return err
				}
				if criteria.matches(unit) {
					criteria.project(unit)
					units = append(units, unit)
				}
			}
			iter.Close()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return units, nil
}

// LinkUnits records an association between two units, in both directions when
// bidirectional. Both units must have ids.
func (b *Backend) LinkUnits(ctx context.Context, from, to *models.Unit, bidirectional bool) error {
	if err := b.check(ctx); err != nil {
		return err
	}
	if from.ID == "" || to.ID == "" {
		return fmt.Errorf("cannot link units without ids")
	}
	forward, err := marshalLink(to)
	if err != nil {
		return err
	}
	backward, err := marshalLink(from)
	if err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(makeLinkKey(from, to), forward); err != nil {
			return err
		}
		if bidirectional {
			return txn.Set(makeLinkKey(to, from), backward)
		}
		return nil
	})
}

// LinkedUnits lists the units the given unit links to.
func (b *Backend) LinkedUnits(ctx context.Context, unit *models.Unit) ([]models.UnitRef, error) {
	if err := b.check(ctx); err != nil {
		return nil, err
	}
	var refs []models.UnitRef
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeLinkPrefix(unit)
		iter := txn.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				ref, err := unmarshalLink(val)
				if err != nil {
					return err
				}
				refs = append(refs, ref)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return refs, nil
}

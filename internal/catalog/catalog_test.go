package catalog

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ralt/yumupload/internal/models"
)

func newTestCatalog(t *testing.T) *Backend {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	b, err := NewMemory(t.TempDir(), logger)
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })
	return b
}

func rpmUnit(b *Backend, name, arch string) *models.Unit {
	key := models.UnitKey{
		"name": name, "epoch": "0", "version": "1.0", "release": "1", "arch": arch,
		"checksumtype": "sha256", "checksum": "abc" + name + arch,
	}
	return b.InitUnit(models.TypeRPM, key, models.Metadata{"filename": name + ".rpm", "vendor": "Pulp Team"}, name+"/"+name+".rpm")
}

func TestOpenBackend_FileSystem(t *testing.T) {
	dir := t.TempDir()
	b, err := OpenBackend(Options{Path: filepath.Join(dir, "db"), StorageRoot: filepath.Join(dir, "content")})
	require.NoError(t, err)
	assert.False(t, b.IsClosed())
	require.NoError(t, b.Close())
	assert.True(t, b.IsClosed())
}

func TestOpenBackend_RequiresStorageRoot(t *testing.T) {
	_, err := OpenBackend(Options{InMemory: true})
	assert.Error(t, err)
}

func TestInitUnit(t *testing.T) {
	b := newTestCatalog(t)

	unit := rpmUnit(b, "walrus", "noarch")
	assert.Len(t, unit.ID, 64)
	assert.Equal(t, filepath.Join(b.StorageRoot(), "rpm", "walrus", "walrus.rpm"), unit.StoragePath)

	again := rpmUnit(b, "walrus", "noarch")
	assert.Equal(t, unit.ID, again.ID)

	erratum := b.InitUnit(models.TypeErratum, models.UnitKey{"id": "RHSA-1"}, nil, "")
	assert.Empty(t, erratum.StoragePath)
	assert.NotNil(t, erratum.Metadata)
}

func TestSaveAndGetUnit(t *testing.T) {
	b := newTestCatalog(t)
	ctx := context.Background()

	unit := rpmUnit(b, "walrus", "noarch")
	unit.Metadata["provides"] = []models.CapabilityEntry{{Name: "walrus", Flags: "EQ"}}
	require.NoError(t, b.SaveUnit(ctx, unit))

	got, err := b.GetUnit(ctx, models.TypeRPM, unit.Key)
	require.NoError(t, err)
	assert.Equal(t, unit.ID, got.ID)
	assert.Equal(t, unit.Key, got.Key)
	assert.Equal(t, unit.StoragePath, got.StoragePath)
	assert.Equal(t, "Pulp Team", got.Metadata.String("vendor"))

	provides, ok := got.Metadata["provides"].([]any)
	require.True(t, ok)
	require.Len(t, provides, 1)
	assert.Equal(t, "walrus", provides[0].(map[string]any)["name"])
}

func TestGetUnitNotFound(t *testing.T) {
	b := newTestCatalog(t)
	_, err := b.GetUnit(context.Background(), models.TypeErratum, models.UnitKey{"id": "missing"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveUnitReplaces(t *testing.T) {
	b := newTestCatalog(t)
	ctx := context.Background()

	unit := rpmUnit(b, "walrus", "noarch")
	require.NoError(t, b.SaveUnit(ctx, unit))
	unit.Metadata["vendor"] = "Someone Else"
	require.NoError(t, b.SaveUnit(ctx, unit))

	units, err := b.QueryUnits(ctx, Criteria{TypeIDs: []models.TypeID{models.TypeRPM}})
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, "Someone Else", units[0].Metadata.String("vendor"))
}

func TestLargeRecordsRoundTrip(t *testing.T) {
	b := newTestCatalog(t)
	ctx := context.Background()

	unit := rpmUnit(b, "walrus", "noarch")
	unit.Metadata["description"] = strings.Repeat("walrus ", 2000)
	require.NoError(t, b.SaveUnit(ctx, unit))

	got, err := b.GetUnit(ctx, models.TypeRPM, unit.Key)
	require.NoError(t, err)
	assert.Equal(t, unit.Metadata["description"], got.Metadata["description"])
}

func TestQueryUnits(t *testing.T) {
	b := newTestCatalog(t)
	ctx := context.Background()

	for _, u := range []*models.Unit{
		rpmUnit(b, "walrus", "noarch"),
		rpmUnit(b, "penguin", "x86_64"),
		rpmUnit(b, "shark", "noarch"),
	} {
		require.NoError(t, b.SaveUnit(ctx, u))
	}
	srpm := b.InitUnit(models.TypeSRPM, models.UnitKey{
		"name": "walrus", "epoch": "0", "version": "1.0", "release": "1", "arch": "src",
		"checksumtype": "sha256", "checksum": "def",
	}, models.Metadata{}, "walrus/walrus.src.rpm")
	require.NoError(t, b.SaveUnit(ctx, srpm))

	all, err := b.QueryUnits(ctx, Criteria{})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	none, err := b.QueryUnits(ctx, Criteria{Filters: []map[string]string{}})
	require.NoError(t, err)
	assert.Empty(t, none)

	noarch, err := b.QueryUnits(ctx, Criteria{
		TypeIDs: []models.TypeID{models.TypeRPM},
		Filters: []map[string]string{{"arch": "noarch"}},
	})
	require.NoError(t, err)
	assert.Len(t, noarch, 2)

	either, err := b.QueryUnits(ctx, Criteria{
		TypeIDs: []models.TypeID{models.TypeRPM, models.TypeSRPM},
		Filters: []map[string]string{
			{"name": "walrus", "arch": "src"},
			{"name": "penguin", "arch": "x86_64"},
			{"name": "shark", "arch": "x86_64"},
		},
	})
	require.NoError(t, err)
	require.Len(t, either, 2)
	assert.Equal(t, models.TypeRPM, either[0].TypeID)
	assert.Equal(t, "penguin", either[0].Key["name"])
	assert.Equal(t, models.TypeSRPM, either[1].TypeID)

	byMetadata, err := b.QueryUnits(ctx, Criteria{Filters: []map[string]string{{"vendor": "Pulp Team"}}})
	require.NoError(t, err)
	assert.Len(t, byMetadata, 3)
}

func TestQueryUnitsProjectsFields(t *testing.T) {
	b := newTestCatalog(t)
	ctx := context.Background()

	require.NoError(t, b.SaveUnit(ctx, rpmUnit(b, "walrus", "noarch")))

	units, err := b.QueryUnits(ctx, Criteria{Fields: []string{"vendor"}})
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, models.Metadata{"vendor": "Pulp Team"}, units[0].Metadata)
	assert.Len(t, units[0].Key, 7)
}

func TestLinkUnits(t *testing.T) {
	b := newTestCatalog(t)
	ctx := context.Background()

	pkg := rpmUnit(b, "walrus", "noarch")
	other := rpmUnit(b, "shark", "noarch")
	erratum := b.InitUnit(models.TypeErratum, models.UnitKey{"id": "RHEA-2012:0001"}, nil, "")

	require.NoError(t, b.LinkUnits(ctx, erratum, pkg, true))
	require.NoError(t, b.LinkUnits(ctx, erratum, other, false))

	fromErratum, err := b.LinkedUnits(ctx, erratum)
	require.NoError(t, err)
	assert.Len(t, fromErratum, 2)

	fromPkg, err := b.LinkedUnits(ctx, pkg)
	require.NoError(t, err)
	require.Len(t, fromPkg, 1)
	assert.Equal(t, erratum.Ref(), fromPkg[0])

	fromOther, err := b.LinkedUnits(ctx, other)
	require.NoError(t, err)
	assert.Empty(t, fromOther)
}

func TestLinkUnitsRequiresIDs(t *testing.T) {
	b := newTestCatalog(t)
	err := b.LinkUnits(context.Background(), &models.Unit{TypeID: models.TypeErratum}, rpmUnit(b, "walrus", "noarch"), true)
	assert.Error(t, err)
}

func TestClosedCatalog(t *testing.T) {
	b, err := NewMemory(t.TempDir(), nil)
	require.NoError(t, err)
	require.NoError(t, b.Close())

	err = b.SaveUnit(context.Background(), rpmUnit(b, "walrus", "noarch"))
	assert.ErrorIs(t, err, ErrClosed)
	_, err = b.QueryUnits(context.Background(), Criteria{})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestCanceledContext(t *testing.T) {
	b := newTestCatalog(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, b.SaveUnit(ctx, rpmUnit(b, "walrus", "noarch")), context.Canceled)
}

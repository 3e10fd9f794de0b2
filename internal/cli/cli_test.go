package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ralt/yumupload/internal/config"
	"github.com/ralt/yumupload/internal/models"
	"github.com/ralt/yumupload/internal/rpmtest"
)

type env struct {
	storage string
	catalog string
	staging string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	t.Setenv(config.EnvVar, "")
	dir := t.TempDir()
	e := &env{
		storage: filepath.Join(dir, "content"),
		catalog: filepath.Join(dir, "catalog"),
		staging: filepath.Join(dir, "staging"),
	}
	require.NoError(t, os.MkdirAll(e.staging, 0755))
	return e
}

// run executes the root command and returns what it printed
func (e *env) run(t *testing.T, args ...string) (*bytes.Buffer, error) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	cmd := NewRootCmd(logger)

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--storage-root", e.storage, "--catalog", e.catalog}, args...))
	err := cmd.Execute()
	return &out, err
}

func decodeAll[T any](t *testing.T, r io.Reader) []T {
	t.Helper()
	var values []T
	dec := json.NewDecoder(r)
	for dec.More() {
		var v T
		require.NoError(t, dec.Decode(&v))
		values = append(values, v)
	}
	return values
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestUploadFile(t *testing.T) {
	e := newEnv(t)
	staged := rpmtest.Walrus().WriteFile(t, e.staging, "walrus-5.21-1.noarch.rpm")

	out, err := e.run(t, "upload", "--type", "rpm", "--repo-id", "zoo", "--file", staged)
	require.NoError(t, err)

	reports := decodeAll[models.Report](t, out)
	require.Len(t, reports, 1)
	assert.True(t, reports[0].Success)
	assert.Equal(t, 1, reports[0].UnitsProcessed)

	out, err = e.run(t, "units", "--type", "rpm", "--fields", "filename,vendor")
	require.NoError(t, err)

	units := decodeAll[unitOutput](t, out)
	require.Len(t, units, 1)
	assert.Equal(t, "rpm", units[0].TypeID)
	assert.Equal(t, "walrus", units[0].Key["name"])
	assert.Equal(t, models.Metadata{"filename": "walrus-5.21-1.noarch.rpm", "vendor": "Pulp Team"}, units[0].Metadata)
	assert.FileExists(t, units[0].StoragePath)
}

func TestUploadReportsFailure(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "upload", "--type", "widget", "--repo-id", "zoo")
	assert.ErrorIs(t, err, ErrUploadFailed)

	reports := decodeAll[models.Report](t, out)
	require.Len(t, reports, 1)
	assert.False(t, reports[0].Success)
	assert.Equal(t, []string{"widget is not a supported type for upload"}, reports[0].Details.Errors)
}

func TestUploadDir(t *testing.T) {
	e := newEnv(t)
	rpmtest.Walrus().WriteFile(t, e.staging, "walrus-5.21-1.noarch.rpm")
	penguin := rpmtest.Walrus()
	penguin.Name = "penguin"
	penguin.WriteFile(t, e.staging, "penguin-5.21-1.noarch.rpm")
	source := rpmtest.Walrus()
	source.Source = true
	source.WriteFile(t, e.staging, "walrus-5.21-1.src.rpm")
	writeFile(t, filepath.Join(e.staging, "README"), "not a package")

	out, err := e.run(t, "upload", "--repo-id", "zoo", "--dir", e.staging, "--workers", "2")
	require.NoError(t, err)

	reports := decodeAll[fileReport](t, out)
	require.Len(t, reports, 3)
	for _, r := range reports {
		assert.True(t, r.Report.Success, r.File)
	}

	out, err = e.run(t, "units", "--type", "srpm")
	require.NoError(t, err)
	units := decodeAll[unitOutput](t, out)
	require.Len(t, units, 1)
	assert.Equal(t, "src", units[0].Key["arch"])
}

func TestUploadDirTypeFilter(t *testing.T) {
	e := newEnv(t)
	rpmtest.Walrus().WriteFile(t, e.staging, "walrus-5.21-1.noarch.rpm")
	source := rpmtest.Walrus()
	source.Source = true
	source.WriteFile(t, e.staging, "walrus-5.21-1.src.rpm")

	out, err := e.run(t, "upload", "--repo-id", "zoo", "--dir", e.staging, "--type", "srpm")
	require.NoError(t, err)

	reports := decodeAll[fileReport](t, out)
	require.Len(t, reports, 1)
	assert.Equal(t, filepath.Join(e.staging, "walrus-5.21-1.src.rpm"), reports[0].File)
	assert.FileExists(t, filepath.Join(e.staging, "walrus-5.21-1.noarch.rpm"))
}

func TestErratumLinks(t *testing.T) {
	e := newEnv(t)
	staged := rpmtest.Walrus().WriteFile(t, e.staging, "walrus-5.21-1.noarch.rpm")
	_, err := e.run(t, "upload", "--type", "rpm", "--repo-id", "zoo", "--file", staged)
	require.NoError(t, err)

	key := writeFile(t, filepath.Join(e.staging, "key.json"), `{
		// advisory id
		"id": "RHEA-2012:0001",
	}`)
	metadata := writeFile(t, filepath.Join(e.staging, "metadata.json"), `{
		"title": "walrus enhancement",
		"pkglist": [
			{"name": "zoo", "packages": [
				{"name": "walrus", "epoch": 0, "version": "5.21", "release": "1", "arch": "noarch"},
			]},
		],
	}`)

	out, err := e.run(t, "upload", "--type", "erratum", "--repo-id", "zoo", "--unit-key", key, "--metadata", metadata)
	require.NoError(t, err)
	reports := decodeAll[models.Report](t, out)
	require.Len(t, reports, 1)
	require.True(t, reports[0].Success, reports[0].Details.Errors)

	out, err = e.run(t, "links", "--type", "erratum", "--key", "id=RHEA-2012:0001")
	require.NoError(t, err)
	refs := decodeAll[refOutput](t, out)
	require.Len(t, refs, 1)
	assert.Equal(t, "rpm", refs[0].TypeID)
	assert.Equal(t, "walrus", refs[0].Key["name"])

	out, err = e.run(t, "units", "--filter", "name=walrus", "--fields", "filename")
	require.NoError(t, err)
	units := decodeAll[unitOutput](t, out)
	require.Len(t, units, 1)

	out, err = e.run(t, "links", "--type", "rpm",
		"--key", "name="+units[0].Key["name"],
		"--key", "epoch=0,version=5.21,release=1,arch=noarch",
		"--key", "checksumtype=sha256,checksum="+units[0].Key["checksum"])
	require.NoError(t, err)
	refs = decodeAll[refOutput](t, out)
	require.Len(t, refs, 1)
	assert.Equal(t, "erratum", refs[0].TypeID)
}

func TestUploadFlagValidation(t *testing.T) {
	e := newEnv(t)

	_, err := e.run(t, "upload", "--type", "rpm")
	assert.ErrorContains(t, err, "--repo-id")

	_, err = e.run(t, "upload", "--repo-id", "zoo")
	assert.ErrorContains(t, err, "--type")

	_, err = e.run(t, "upload", "--repo-id", "zoo", "--type", "rpm", "--file", "a", "--dir", "b")
	assert.ErrorContains(t, err, "mutually exclusive")
}

func TestBadFieldsFile(t *testing.T) {
	e := newEnv(t)
	bad := writeFile(t, filepath.Join(e.staging, "bad.json"), `{"id": `)

	_, err := e.run(t, "upload", "--type", "erratum", "--repo-id", "zoo", "--unit-key", bad)
	assert.ErrorContains(t, err, "failed to parse")
}

func TestLinksUnknownUnit(t *testing.T) {
	e := newEnv(t)

	_, err := e.run(t, "links", "--type", "erratum", "--key", "id=missing")
	assert.Error(t, err)
}

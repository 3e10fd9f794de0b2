package repodata

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ralt/yumupload/internal/identity"
	"github.com/ralt/yumupload/internal/models"
	"github.com/ralt/yumupload/internal/rpmtest"
)

func walrusUnit(t *testing.T) (string, *models.Unit) {
	t.Helper()
	path := rpmtest.Walrus().WriteFile(t, t.TempDir(), "walrus-5.21-1.noarch.rpm")
	key, md, err := identity.GenerateRPMData(path)
	require.NoError(t, err)

	unitKey := models.UnitKey{}
	for k, v := range key {
		unitKey[k] = v.(string)
	}
	return path, &models.Unit{TypeID: models.TypeRPM, Key: unitKey, Metadata: md}
}

func TestGeneratePackageXML(t *testing.T) {
	path, unit := walrusUnit(t)

	snippets, err := GeneratePackageXML(path, unit)
	require.NoError(t, err)

	primary := snippets[SnippetPrimary].(string)
	assert.True(t, strings.HasPrefix(primary, `<package type="rpm">`))
	assert.Contains(t, primary, `<name>walrus</name>`)
	assert.Contains(t, primary, `<version epoch="0" ver="5.21" rel="1"></version>`)
	assert.Contains(t, primary, `<checksum type="sha256" pkgid="YES">`+unit.Key["checksum"]+`</checksum>`)
	assert.Contains(t, primary, `<location href="walrus-5.21-1.noarch.rpm"></location>`)
	assert.Contains(t, primary, `<rpm:vendor>Pulp Team</rpm:vendor>`)
	assert.NotContains(t, primary, "xmlns")
	assert.NotContains(t, primary, "rpmlib(")

	filelists := snippets[SnippetFilelists].(string)
	assert.Contains(t, filelists, `pkgid="`+unit.Key["checksum"]+`"`)
	assert.Contains(t, filelists, `<file>/usr/share/walrus/walrus.txt</file>`)
}

func TestGenerateThenExtract(t *testing.T) {
	path, unit := walrusUnit(t)

	snippets, err := GeneratePackageXML(path, unit)
	require.NoError(t, err)

	provides, requires, err := ExtractCapabilities([]byte(snippets[SnippetPrimary].(string)))
	require.NoError(t, err)

	assert.Equal(t, []models.CapabilityEntry{
		{Name: "walrus", Flags: "EQ", Epoch: "0", Version: "5.21", Release: "1"},
	}, provides)
	assert.Equal(t, []models.CapabilityEntry{
		{Name: "whale", Flags: "GE", Epoch: "0", Version: "0.2"},
		{Name: "/bin/sh", Pre: true},
	}, requires)
}

func TestGenerateMissingFile(t *testing.T) {
	_, unit := walrusUnit(t)
	_, err := GeneratePackageXML(t.TempDir()+"/missing.rpm", unit)
	assert.Error(t, err)
}

const undeclaredSnippet = `<package type="rpm">
  <name>shark</name>
  <format>
    <rpm:license>MIT</rpm:license>
    <rpm:provides>
      <rpm:entry name="shark" flags="EQ" epoch="0" ver="0.1" rel="1"/>
      <rpm:entry name="fish"/>
    </rpm:provides>
    <rpm:requires>
      <rpm:entry name="ocean" flags="GT" epoch="1" ver="2.0"/>
    </rpm:requires>
  </format>
</package>`

func TestExtractUndeclaredPrefix(t *testing.T) {
	provides, requires, err := ExtractCapabilities([]byte(undeclaredSnippet))
	require.NoError(t, err)

	assert.Equal(t, []models.CapabilityEntry{
		{Name: "shark", Flags: "EQ", Epoch: "0", Version: "0.1", Release: "1"},
		{Name: "fish"},
	}, provides)
	assert.Equal(t, []models.CapabilityEntry{
		{Name: "ocean", Flags: "GT", Epoch: "1", Version: "2.0"},
	}, requires)
}

func TestExtractDeclaredNamespaces(t *testing.T) {
	snippet := `<metadata xmlns="` + NamespaceCommon + `" xmlns:rpm="` + NamespaceRPM + `">` +
		`<package type="rpm"><format><rpm:provides><rpm:entry name="a"/></rpm:provides></format></package>` +
		`</metadata>`

	provides, requires, err := ExtractCapabilities([]byte(snippet))
	require.NoError(t, err)
	assert.Equal(t, []models.CapabilityEntry{{Name: "a"}}, provides)
	assert.Empty(t, requires)
	assert.NotNil(t, requires)
}

func TestExtractMissingSections(t *testing.T) {
	provides, requires, err := ExtractCapabilities([]byte(`<package><format></format></package>`))
	require.NoError(t, err)
	assert.Equal(t, []models.CapabilityEntry{}, provides)
	assert.Equal(t, []models.CapabilityEntry{}, requires)

	provides, requires, err = ExtractCapabilities([]byte(`<package/>`))
	require.NoError(t, err)
	assert.Empty(t, provides)
	assert.Empty(t, requires)
}

func TestExtractNoPackage(t *testing.T) {
	_, _, err := ExtractCapabilities([]byte(`<something/>`))
	assert.ErrorIs(t, err, ErrNoPackage)
}

func TestExtractMalformed(t *testing.T) {
	_, _, err := ExtractCapabilities([]byte(`<package><format>`))
	assert.Error(t, err)
}

func TestExtractLatin1(t *testing.T) {
	// "caf\xe9" is café in ISO-8859-1 and invalid UTF-8
	snippet := []byte("<package><format><rpm:provides><rpm:entry name=\"caf\xe9\"/></rpm:provides></format></package>")
	assert.Equal(t, EncodingLatin1, DetectEncoding(snippet))

	provides, _, err := ExtractCapabilities(snippet)
	require.NoError(t, err)
	require.Len(t, provides, 1)
	assert.Equal(t, "café", provides[0].Name)
}

func TestExtractEncodingDeclaration(t *testing.T) {
	snippet := []byte("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n" + undeclaredSnippet)
	provides, _, err := ExtractCapabilities(snippet)
	require.NoError(t, err)
	assert.Len(t, provides, 2)
}

func TestDetectEncoding(t *testing.T) {
	assert.Equal(t, EncodingUTF8, DetectEncoding([]byte("plain")))
	assert.Equal(t, EncodingUTF8, DetectEncoding([]byte("café")))
	assert.Equal(t, EncodingLatin1, DetectEncoding([]byte{0xff, 0xfe}))
}

func TestSplitEVR(t *testing.T) {
	tests := []struct {
		in              string
		epoch, ver, rel string
	}{
		{"1.0", "0", "1.0", ""},
		{"1.0-2", "0", "1.0", "2"},
		{"3:1.0-2", "3", "1.0", "2"},
		{":1.0", "0", "1.0", ""},
	}
	for _, tt := range tests {
		e, v, r := splitEVR(tt.in)
		assert.Equal(t, tt.epoch, e, tt.in)
		assert.Equal(t, tt.ver, v, tt.in)
		assert.Equal(t, tt.rel, r, tt.in)
	}
}

func TestSenseFlags(t *testing.T) {
	assert.Equal(t, "EQ", senseFlags(senseEqual))
	assert.Equal(t, "LE", senseFlags(senseLess|senseEqual))
	assert.Equal(t, "GT", senseFlags(senseGreater))
	assert.Equal(t, "", senseFlags(sensePrereq))
}

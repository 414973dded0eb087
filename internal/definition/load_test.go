package definition_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comalice/fsmx"
	"github.com/comalice/fsmx/internal/definition"
)

func TestLoadFormatsAgree(t *testing.T) {
	t.Parallel()

	yamlDoc, err := definition.Load("testdata/traffic.yaml")
	require.NoError(t, err)
	tomlDoc, err := definition.Load("testdata/traffic.toml")
	require.NoError(t, err)
	jsonDoc, err := definition.Load("testdata/traffic.json")
	require.NoError(t, err)

	assert.Equal(t, yamlDoc, tomlDoc)
	assert.Equal(t, yamlDoc, jsonDoc)

	assert.Equal(t, "traffic", yamlDoc.Name)
	assert.Equal(t, fsmx.StorageTemp, yamlDoc.Capacity.Storage)
	assert.False(t, yamlDoc.Capacity.Expandable)
	assert.Equal(t, fsmx.DefaultConfig().InstanceHint, yamlDoc.Capacity.InstanceHint)
	require.Len(t, yamlDoc.States, 3)
	require.NotNil(t, yamlDoc.States[2].ID)
	assert.Equal(t, fsmx.StateID(7), *yamlDoc.States[2].ID)
	assert.Equal(t, 3, yamlDoc.LinkCount())
}

func TestParseKeepsDefaults(t *testing.T) {
	t.Parallel()

	doc, err := definition.Parse([]byte("name: tiny\nstates:\n  - name: only\n"), definition.FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, fsmx.DefaultConfig(), doc.Capacity)
	assert.Equal(t, "only", doc.InitialState())
	require.NoError(t, doc.Validate())
}

func TestParseRejectsUnknownFields(t *testing.T) {
	t.Parallel()

	_, err := definition.Parse([]byte("name: x\nstaets: []\n"), definition.FormatYAML)
	assert.Error(t, err)
	_, err = definition.Parse([]byte(`{"name":"x","staets":[]}`), definition.FormatJSON)
	assert.Error(t, err)
	_, err = definition.Parse([]byte("name = \"x\"\nstaets = []\n"), definition.FormatTOML)
	assert.Error(t, err)
	_, err = definition.Parse([]byte("name: x\ncapacity:\n  storage: disk\n"), definition.FormatYAML)
	assert.Error(t, err)
	_, err = definition.Parse(nil, definition.Format("xml"))
	assert.Error(t, err)
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := definition.Load(filepath.Join(dir, "machine.xml"))
	assert.ErrorContains(t, err, "unsupported extension")

	_, err = definition.Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("name: bad\nstates:\n  - name: a\n    links: [{to: b}]\n"), 0o644))
	_, err = definition.Load(bad)
	assert.True(t, definition.IsValidationError(err))
}

func TestFormatFromPath(t *testing.T) {
	t.Parallel()

	for path, want := range map[string]definition.Format{
		"a.yaml": definition.FormatYAML,
		"a.YML":  definition.FormatYAML,
		"a.toml": definition.FormatTOML,
		"a.json": definition.FormatJSON,
	} {
		got, err := definition.FormatFromPath(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}
	_, err := definition.FormatFromPath("noext")
	assert.Error(t, err)
}

func TestEncodeRoundTrip(t *testing.T) {
	t.Parallel()

	doc, err := definition.Load("testdata/traffic.yaml")
	require.NoError(t, err)

	for _, format := range []definition.Format{definition.FormatYAML, definition.FormatTOML, definition.FormatJSON} {
		t.Run(string(format), func(t *testing.T) {
			data, err := definition.Encode(doc, format)
			require.NoError(t, err)
			back, err := definition.Parse(data, format)
			require.NoError(t, err)
			assert.Equal(t, doc, back)
		})
	}
}

func TestComputeVersion(t *testing.T) {
	t.Parallel()

	a, err := definition.Load("testdata/traffic.yaml")
	require.NoError(t, err)
	b, err := definition.Load("testdata/traffic.json")
	require.NoError(t, err)

	assert.Len(t, definition.ComputeVersion(a), 16)
	assert.Equal(t, definition.ComputeVersion(a), definition.ComputeVersion(b))

	b.States[0].Name = "crimson"
	assert.NotEqual(t, definition.ComputeVersion(a), definition.ComputeVersion(b))

	b.Version = "v2"
	assert.Equal(t, "v2", definition.ComputeVersion(b))
}

package loadlist

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadListTemplateImports(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLoadListTemplate(&buf))

	rows, err := ReadXLSXBytes(buf.Bytes())
	require.NoError(t, err)
	require.NotEmpty(t, rows)

	specs, errs, err := ParseLoadList(rows)
	require.NoError(t, err)
	assert.Empty(t, errs)
	require.Len(t, specs, 1)

	assert.Equal(t, "C-001", specs[0].CableNumber)
	assert.Equal(t, 55.0, specs[0].LoadKW)
	assert.Equal(t, 415.0, specs[0].Voltage)
	assert.Equal(t, "feeder", specs[0].FeederType)
}

func TestCatalogTemplateImports(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCatalogTemplate(&buf))

	rows, err := ReadXLSXBytes(buf.Bytes())
	require.NoError(t, err)

	entries, errs, err := ParseCatalog(rows)
	require.NoError(t, err)
	assert.Empty(t, errs)
	require.Len(t, entries, 2)

	assert.Equal(t, 10.0, entries[0].SizeMM2)
	assert.Equal(t, 50.0, entries[0].AmpacityAir)
	assert.Equal(t, "3C", entries[0].Formation)
}

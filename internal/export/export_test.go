package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sceap-org/sceap/internal/model"
)

func sampleResults() []model.SizingResult {
	return []model.SizingResult{
		{
			CableNumber:     "C-001",
			Description:     "Boiler feed pump",
			FullLoadCurrent: 94.96,
			DeratedCurrent:  124.95,
			SelectedSize:    50,
			Configuration:   "3C x 50 mm2",
			VoltageDrop:     2.11,
			VDLimit:         5,
			VDPass:          true,
			SCCheck:         model.SCCheckIndeterminate,
			Cores:           3,
			Ampacity:        125,
			Runs:            1,
			Standard:        "IEC 60287",
			Approved:        true,
			Status:          model.StatusPending,
		},
		{
			CableNumber:  "C-002",
			SelectedSize: 25,
			Cores:        3,
			Runs:         2,
			Status:       model.StatusHold,
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleResults()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, resultColumns, rows[0])
	assert.Equal(t, "C-001", rows[1][0])
	assert.Equal(t, "3C x 50 mm2", rows[1][5])
	assert.Equal(t, "true", rows[1][8])
	assert.Equal(t, "hold", rows[2][19])
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1) // header only
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleResults()))

	var decoded []model.SizingResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "C-001", decoded[0].CableNumber)
	assert.Equal(t, 124.95, decoded[0].DeratedCurrent)
	assert.Equal(t, model.StatusHold, decoded[1].Status)
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleResults()))
	assert.NotZero(t, buf.Len())
	// zip local file header signature
	assert.Equal(t, []byte{'P', 'K'}, buf.Bytes()[:2])
}

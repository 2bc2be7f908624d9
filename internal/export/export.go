// Package export serializes sizing results to delimited text, JSON, and
// XLSX workbooks. It produces the canonical field set; file handling is
// the caller's concern.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sceap-org/sceap/internal/model"
)

var resultColumns = []string{
	"cable_number", "description", "full_load_current", "derated_current",
	"selected_size", "configuration", "voltage_drop", "vd_limit", "vd_pass",
	"sc_check", "short_circuit_pass", "grouping_factor", "cores",
	"outer_diameter", "ampacity", "ampacity_margin", "runs", "standard",
	"approved", "status",
}

func resultRecord(r model.SizingResult) []string {
	return []string{
		r.CableNumber,
		r.Description,
		formatFloat(r.FullLoadCurrent),
		formatFloat(r.DeratedCurrent),
		formatFloat(r.SelectedSize),
		r.Configuration,
		formatFloat(r.VoltageDrop),
		formatFloat(r.VDLimit),
		strconv.FormatBool(r.VDPass),
		string(r.SCCheck),
		strconv.FormatBool(r.ShortCircuitPass),
		formatFloat(r.GroupingFactor),
		strconv.Itoa(r.Cores),
		formatFloat(r.OuterDiameter),
		formatFloat(r.Ampacity),
		formatFloat(r.AmpacityMargin),
		strconv.Itoa(r.Runs),
		r.Standard,
		strconv.FormatBool(r.Approved),
		string(r.Status),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteCSV writes results as comma-delimited text with a header row.
func WriteCSV(w io.Writer, results []model.SizingResult) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(resultColumns); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	for _, r := range results {
		if err := cw.Write(resultRecord(r)); err != nil {
			return eris.Wrapf(err, "export: write csv row %s", r.CableNumber)
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush csv")
}

// WriteJSON writes results as an indented JSON array.
func WriteJSON(w io.Writer, results []model.SizingResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(results), "export: write json")
}

// WriteXLSX writes results as a single-sheet workbook.
func WriteXLSX(w io.Writer, results []model.SizingResult) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Sizing Results")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range resultColumns {
		header.AddCell().SetString(col)
	}
	for _, r := range results {
		row := sheet.AddRow()
		for _, v := range resultRecord(r) {
			row.AddCell().SetString(v)
		}
	}

	return eris.Wrap(f.Write(w), "export: write xlsx")
}

package loadlist

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// loadListColumns is the canonical 12-column import schema, followed by the
// optional columns the importer understands.
var loadListColumns = []string{
	"cable_number", "description", "load_kw", "load_kva", "voltage",
	"power_factor", "efficiency", "length", "runs", "cable_type",
	"from_equipment", "to_equipment",
	"breaker_type", "feeder_type", "cores", "quantity", "installation",
	"prospective_sc", "phase_type", "ambient_temp",
}

var catalogColumns = []string{
	"size_mm2", "cores", "ampacity_air", "ampacity_ground",
	"resistance_ohm_per_km", "reactance_ohm_per_km", "cable_dia_mm", "formation",
}

// WriteLoadListTemplate writes an XLSX load-list template with headers and
// one sample row.
func WriteLoadListTemplate(w io.Writer) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Load List")
	if err != nil {
		return eris.Wrap(err, "loadlist: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range loadListColumns {
		header.AddCell().SetString(col)
	}

	sample := sheet.AddRow()
	for _, v := range []any{
		"C-001", "Boiler feed pump motor", 55.0, 60.0, 415.0,
		0.9, 0.95, 120.0, 1, "C",
		"MCC-01", "Motor M1",
		"MCCB", "feeder", 3, 1, "air",
		0.0, "three", 30.0,
	} {
		sample.AddCell().SetValue(v)
	}

	return eris.Wrap(f.Write(w), "loadlist: write template")
}

// WriteCatalogTemplate writes an XLSX catalog template with headers and
// two sample rows.
func WriteCatalogTemplate(w io.Writer) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Catalog")
	if err != nil {
		return eris.Wrap(err, "loadlist: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range catalogColumns {
		header.AddCell().SetString(col)
	}

	for _, sample := range [][]any{
		{10.0, 3, 50.0, 55.0, 1.83, 0.065, 9.0, "3C"},
		{16.0, 3, 63.0, 67.0, 1.15, 0.058, 10.5, "3C"},
	} {
		row := sheet.AddRow()
		for _, v := range sample {
			row.AddCell().SetValue(v)
		}
	}

	return eris.Wrap(f.Write(w), "loadlist: write template")
}

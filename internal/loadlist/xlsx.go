// Package loadlist parses tabular cable load lists and size catalogs from
// XLSX and CSV sources into engine inputs.
package loadlist

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// ReadXLSX reads the first sheet of an XLSX file and returns all rows,
// header included, as string slices.
func ReadXLSX(path string) ([][]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "loadlist: open xlsx")
	}
	return sheetRows(f)
}

// ReadXLSXBytes parses in-memory XLSX content, as received from an upload.
func ReadXLSXBytes(data []byte) ([][]string, error) {
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, eris.Wrap(err, "loadlist: open xlsx data")
	}
	return sheetRows(f)
}

func sheetRows(f *xlsx.File) ([][]string, error) {
	if len(f.Sheets) == 0 {
		return nil, eris.New("loadlist: workbook has no sheets")
	}
	sheet := f.Sheets[0]

	var rows [][]string
	for _, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

// ReadCSV reads delimited rows, header included.
func ReadCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // allow variable fields

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "loadlist: read csv")
		}
		rows = append(rows, record)
	}
	return rows, nil
}

// ReadFile reads a tabular file by extension: .xlsx workbooks or .csv text.
func ReadFile(path string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return ReadXLSX(path)
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "loadlist: open %s", path)
		}
		defer f.Close()
		return ReadCSV(f)
	default:
		return nil, eris.Errorf("loadlist: unsupported file type %q (want .xlsx or .csv)", filepath.Ext(path))
	}
}

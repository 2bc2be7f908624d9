package loadlist

import (
	"github.com/rotisserie/eris"

	"github.com/sceap-org/sceap/internal/sizing"
)

var catalogAliases = map[string][]string{
	"size_mm2":          {"size_mm2", "size"},
	"cores":             {"cores", "no_of_cores"},
	"ampacity_air":      {"ampacity_air", "air", "ampacity"},
	"ampacity_ground":   {"ampacity_ground", "ground"},
	"resistance_per_km": {"resistance_ohm_per_km", "resistance_per_km", "resistance"},
	"reactance_per_km":  {"reactance_ohm_per_km", "reactance_per_km", "reactance"},
	"od_mm":             {"cable_dia_mm", "cable_dia", "od_mm"},
	"formation":         {"formation"},
}

// ParseCatalog converts tabular catalog rows (header in row 1) into
// catalog entries. Row failures are collected, not fatal.
func ParseCatalog(rows [][]string) ([]sizing.CatalogEntry, []RowError, error) {
	if len(rows) == 0 {
		return nil, nil, eris.New("loadlist: empty catalog sheet")
	}

	byName := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		byName[normalizeHeader(h)] = i
	}
	idx := make(map[string]int)
	for canonical, aliases := range catalogAliases {
		for _, a := range aliases {
			if i, ok := byName[a]; ok {
				idx[canonical] = i
				break
			}
		}
	}
	if _, ok := idx["size_mm2"]; !ok {
		return nil, nil, eris.New("loadlist: missing key column size_mm2 (or size)")
	}

	var entries []sizing.CatalogEntry
	var errs []RowError

	for i, row := range rows[1:] {
		rowNum := i + 2

		if blankRow(row) {
			continue
		}

		entry, err := parseCatalogRow(row, idx)
		if err != nil {
			errs = append(errs, RowError{Row: rowNum, Reason: err.Error()})
			continue
		}
		entries = append(entries, entry)
	}

	return entries, errs, nil
}

func parseCatalogRow(row []string, idx map[string]int) (sizing.CatalogEntry, error) {
	cell := func(name string) string {
		i, ok := idx[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var entry sizing.CatalogEntry
	var err error

	if entry.SizeMM2, err = floatCell(cell("size_mm2"), 0); err != nil {
		return entry, eris.Wrap(err, "size_mm2")
	}
	if entry.SizeMM2 <= 0 {
		return entry, eris.New("size_mm2 must be positive")
	}
	if entry.Cores, err = intCell(cell("cores"), 3); err != nil {
		return entry, eris.Wrap(err, "cores")
	}
	if entry.AmpacityAir, err = floatCell(cell("ampacity_air"), 0); err != nil {
		return entry, eris.Wrap(err, "ampacity_air")
	}
	if entry.AmpacityGround, err = floatCell(cell("ampacity_ground"), 0); err != nil {
		return entry, eris.Wrap(err, "ampacity_ground")
	}
	if entry.AmpacityAir == 0 && entry.AmpacityGround == 0 {
		return entry, eris.New("entry has no ampacity")
	}
	if entry.ResistancePerKM, err = floatCell(cell("resistance_per_km"), 0); err != nil {
		return entry, eris.Wrap(err, "resistance_per_km")
	}
	if entry.ReactancePerKM, err = floatCell(cell("reactance_per_km"), 0); err != nil {
		return entry, eris.Wrap(err, "reactance_per_km")
	}
	if entry.ODmm, err = floatCell(cell("od_mm"), 0); err != nil {
		return entry, eris.Wrap(err, "od_mm")
	}
	entry.Formation = cell("formation")

	return entry, nil
}

package loadlist

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sceap-org/sceap/internal/model"
)

// RowError reports a malformed row. Import never aborts on a bad row; each
// failure is collected alongside the rows that parsed.
type RowError struct {
	Row         int    `json:"row"` // 1-based sheet row number
	CableNumber string `json:"cable_number,omitempty"`
	Reason      string `json:"reason"`
}

func (e RowError) Error() string {
	if e.CableNumber != "" {
		return fmt.Sprintf("row %d (cable %s): %s", e.Row, e.CableNumber, e.Reason)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

// Row defaults applied when an optional cell is blank. An explicit zero in
// a cell is kept as zero so validation can reject it downstream.
const (
	defaultVoltage    = 415.0
	defaultPF         = 0.9
	defaultEfficiency = 0.95
	defaultRuns       = 1
	defaultCableType  = "C"
)

// headerAliases maps each canonical column to the header spellings
// accepted for it, after normalization.
var headerAliases = map[string][]string{
	"cable_number":   {"cable_number", "cable_no", "cable"},
	"description":    {"description", "desc"},
	"load_kw":        {"load_kw", "kw", "load"},
	"load_kva":       {"load_kva", "kva"},
	"voltage":        {"voltage", "v"},
	"power_factor":   {"power_factor", "pf"},
	"efficiency":     {"efficiency"},
	"length":         {"length"},
	"runs":           {"runs"},
	"cable_type":     {"cable_type"},
	"from_equipment": {"from_equipment", "from"},
	"to_equipment":   {"to_equipment", "to"},
	"breaker_type":   {"breaker_type", "breaker"},
	"feeder_type":    {"feeder_type"},
	"cores":          {"cores", "no_of_cores"},
	"quantity":       {"quantity"},
	"installation":   {"installation"},
	"prospective_sc": {"prospective_sc", "prospective_sc_a"},
	"phase_type":     {"phase_type", "phase"},
	"ambient_temp":   {"ambient_temp", "ambient_temperature"},
}

// normalizeHeader lowers and underscores a header cell so that
// "Power Factor", "power.factor" and "power-factor" all match.
func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, " ", "_")
	h = strings.ReplaceAll(h, ".", "")
	h = strings.ReplaceAll(h, "-", "_")
	return h
}

// columnIndex resolves canonical column -> cell index from the header row.
func columnIndex(header []string) map[string]int {
	byName := make(map[string]int, len(header))
	for i, h := range header {
		byName[normalizeHeader(h)] = i
	}

	idx := make(map[string]int)
	for canonical, aliases := range headerAliases {
		for _, a := range aliases {
			if i, ok := byName[a]; ok {
				idx[canonical] = i
				break
			}
		}
	}
	return idx
}

// ParseLoadList converts tabular rows (header in row 1, data from row 2)
// into cable specs. Malformed rows yield RowErrors without aborting the
// batch.
func ParseLoadList(rows [][]string) ([]model.CableSpec, []RowError, error) {
	if len(rows) == 0 {
		return nil, nil, eris.New("loadlist: empty sheet")
	}

	idx := columnIndex(rows[0])
	if _, ok := idx["cable_number"]; !ok {
		return nil, nil, eris.New("loadlist: missing key column cable_number (or cable_no/cable)")
	}

	var specs []model.CableSpec
	var errs []RowError

	for i, row := range rows[1:] {
		rowNum := i + 2 // sheet numbering: header is row 1

		if blankRow(row) {
			continue
		}

		spec, err := parseRow(row, idx)
		if err != nil {
			errs = append(errs, RowError{Row: rowNum, CableNumber: spec.CableNumber, Reason: err.Error()})
			continue
		}
		specs = append(specs, spec)
	}

	return specs, errs, nil
}

func parseRow(row []string, idx map[string]int) (model.CableSpec, error) {
	cell := func(name string) string {
		i, ok := idx[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	spec := model.CableSpec{
		CableNumber:   cell("cable_number"),
		Description:   cell("description"),
		CableType:     defaultCableType,
		FromEquipment: cell("from_equipment"),
		ToEquipment:   cell("to_equipment"),
		BreakerType:   cell("breaker_type"),
		FeederType:    cell("feeder_type"),
		Installation:  cell("installation"),
	}
	if spec.CableNumber == "" {
		return spec, eris.New("missing cable number")
	}
	if ct := cell("cable_type"); ct != "" {
		spec.CableType = ct
	}
	if pt := cell("phase_type"); pt != "" {
		switch strings.ToLower(pt) {
		case "single", "1", "1p", "1ph":
			spec.PhaseType = model.PhaseSingle
		default:
			spec.PhaseType = model.PhaseThree
		}
	}

	var err error
	if spec.LoadKW, err = floatCell(cell("load_kw"), 0); err != nil {
		return spec, eris.Wrap(err, "load_kw")
	}
	if spec.LoadKVA, err = floatCell(cell("load_kva"), 0); err != nil {
		return spec, eris.Wrap(err, "load_kva")
	}
	if spec.Voltage, err = floatCell(cell("voltage"), defaultVoltage); err != nil {
		return spec, eris.Wrap(err, "voltage")
	}
	if spec.PowerFactor, err = floatCell(cell("power_factor"), defaultPF); err != nil {
		return spec, eris.Wrap(err, "power_factor")
	}
	if spec.Efficiency, err = floatCell(cell("efficiency"), defaultEfficiency); err != nil {
		return spec, eris.Wrap(err, "efficiency")
	}
	if spec.Length, err = floatCell(cell("length"), 0); err != nil {
		return spec, eris.Wrap(err, "length")
	}
	if spec.Runs, err = intCell(cell("runs"), defaultRuns); err != nil {
		return spec, eris.Wrap(err, "runs")
	}
	if spec.Cores, err = intCell(cell("cores"), 0); err != nil {
		return spec, eris.Wrap(err, "cores")
	}
	if spec.Quantity, err = intCell(cell("quantity"), 0); err != nil {
		return spec, eris.Wrap(err, "quantity")
	}
	if spec.ProspectiveSC, err = floatCell(cell("prospective_sc"), 0); err != nil {
		return spec, eris.Wrap(err, "prospective_sc")
	}
	if spec.AmbientTemp, err = floatCell(cell("ambient_temp"), 0); err != nil {
		return spec, eris.Wrap(err, "ambient_temp")
	}

	return spec, nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func floatCell(s string, def float64) (float64, error) {
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, eris.Errorf("not a number: %q", s)
	}
	return v, nil
}

func intCell(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	// Spreadsheet integers often come back as "2.0".
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, eris.Errorf("not a number: %q", s)
	}
	return int(v), nil
}

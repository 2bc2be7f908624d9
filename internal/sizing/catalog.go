package sizing

import (
	"sort"

	"github.com/rotisserie/eris"
)

// CatalogEntry describes one standard cable construction.
type CatalogEntry struct {
	SizeMM2         float64 `json:"size_mm2"`
	Cores           int     `json:"cores"`
	Formation       string  `json:"formation,omitempty"` // e.g. "3C", "1C"
	AmpacityAir     float64 `json:"ampacity_air"`        // amperes, installed in air
	AmpacityGround  float64 `json:"ampacity_ground"`     // amperes, buried
	ResistancePerKM float64 `json:"resistance_per_km"`   // ohm/km
	ReactancePerKM  float64 `json:"reactance_per_km"`    // ohm/km
	ODmm            float64 `json:"od_mm"`               // overall diameter
}

// Catalog is an immutable ascending table of standard cable sizes. It is
// built once and shared read-only across concurrent sizing calls.
type Catalog struct {
	entries []CatalogEntry
}

// NewCatalog validates and sorts entries into a Catalog.
func NewCatalog(entries []CatalogEntry) (Catalog, error) {
	if len(entries) == 0 {
		return Catalog{}, eris.New("catalog: no entries")
	}

	sorted := make([]CatalogEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].SizeMM2 != sorted[j].SizeMM2 {
			return sorted[i].SizeMM2 < sorted[j].SizeMM2
		}
		return sorted[i].AmpacityAir < sorted[j].AmpacityAir
	})

	for _, e := range sorted {
		if e.SizeMM2 <= 0 {
			return Catalog{}, eris.Errorf("catalog: entry with non-positive size %v", e.SizeMM2)
		}
		if e.AmpacityAir <= 0 && e.AmpacityGround <= 0 {
			return Catalog{}, eris.Errorf("catalog: entry %v mm2 has no ampacity", e.SizeMM2)
		}
	}

	return Catalog{entries: sorted}, nil
}

// Entries returns a copy of the catalog rows in ascending size order.
func (c Catalog) Entries() []CatalogEntry {
	out := make([]CatalogEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of catalog rows.
func (c Catalog) Len() int { return len(c.entries) }

// BySize returns the first entry of the given cross-section, if present.
func (c Catalog) BySize(sizeMM2 float64) (CatalogEntry, bool) {
	for _, e := range c.entries {
		if e.SizeMM2 == sizeMM2 {
			return e, true
		}
	}
	return CatalogEntry{}, false
}

// DefaultCatalog returns the built-in IEC-style 3-core XLPE table covering
// the standard sizes 1.5 through 240 mm2.
func DefaultCatalog() Catalog {
	c, err := NewCatalog(defaultEntries)
	if err != nil {
		// defaultEntries is a compile-time constant table; this cannot
		// fail unless the table itself is edited into an invalid state.
		panic(err)
	}
	return c
}

var defaultEntries = []CatalogEntry{
	{SizeMM2: 1.5, Cores: 3, Formation: "3C", AmpacityAir: 10, AmpacityGround: 12, ResistancePerKM: 12.1, ReactancePerKM: 0.110, ODmm: 4.5},
	{SizeMM2: 2.5, Cores: 3, Formation: "3C", AmpacityAir: 16, AmpacityGround: 18, ResistancePerKM: 7.41, ReactancePerKM: 0.090, ODmm: 5.0},
	{SizeMM2: 4, Cores: 3, Formation: "3C", AmpacityAir: 25, AmpacityGround: 27, ResistancePerKM: 4.61, ReactancePerKM: 0.080, ODmm: 6.0},
	{SizeMM2: 6, Cores: 3, Formation: "3C", AmpacityAir: 35, AmpacityGround: 37, ResistancePerKM: 3.08, ReactancePerKM: 0.075, ODmm: 7.0},
	{SizeMM2: 10, Cores: 3, Formation: "3C", AmpacityAir: 50, AmpacityGround: 55, ResistancePerKM: 1.83, ReactancePerKM: 0.065, ODmm: 9.0},
	{SizeMM2: 16, Cores: 3, Formation: "3C", AmpacityAir: 63, AmpacityGround: 67, ResistancePerKM: 1.15, ReactancePerKM: 0.058, ODmm: 10.5},
	{SizeMM2: 25, Cores: 3, Formation: "3C", AmpacityAir: 80, AmpacityGround: 85, ResistancePerKM: 0.727, ReactancePerKM: 0.052, ODmm: 12.0},
	{SizeMM2: 35, Cores: 3, Formation: "3C", AmpacityAir: 100, AmpacityGround: 104, ResistancePerKM: 0.524, ReactancePerKM: 0.047, ODmm: 14.0},
	{SizeMM2: 50, Cores: 3, Formation: "3C", AmpacityAir: 125, AmpacityGround: 130, ResistancePerKM: 0.387, ReactancePerKM: 0.042, ODmm: 16.0},
	{SizeMM2: 70, Cores: 3, Formation: "3C", AmpacityAir: 160, AmpacityGround: 165, ResistancePerKM: 0.268, ReactancePerKM: 0.038, ODmm: 18.0},
	{SizeMM2: 95, Cores: 3, Formation: "3C", AmpacityAir: 200, AmpacityGround: 205, ResistancePerKM: 0.193, ReactancePerKM: 0.035, ODmm: 21.0},
	{SizeMM2: 120, Cores: 3, Formation: "3C", AmpacityAir: 250, AmpacityGround: 255, ResistancePerKM: 0.153, ReactancePerKM: 0.033, ODmm: 23.0},
	{SizeMM2: 150, Cores: 3, Formation: "3C", AmpacityAir: 315, AmpacityGround: 320, ResistancePerKM: 0.124, ReactancePerKM: 0.030, ODmm: 27.0},
	{SizeMM2: 185, Cores: 3, Formation: "3C", AmpacityAir: 400, AmpacityGround: 405, ResistancePerKM: 0.101, ReactancePerKM: 0.028, ODmm: 30.0},
	{SizeMM2: 240, Cores: 3, Formation: "3C", AmpacityAir: 500, AmpacityGround: 505, ResistancePerKM: 0.075, ReactancePerKM: 0.025, ODmm: 34.0},
}

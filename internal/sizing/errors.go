package sizing

import "fmt"

// ValidationError reports a rejected input value on a single cable. Batch
// operations collect these per cable instead of aborting.
type ValidationError struct {
	CableNumber string
	Field       string
	Reason      string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("cable %s: invalid %s: %s", e.CableNumber, e.Field, e.Reason)
}

// SizingCode identifies a sizing failure class.
type SizingCode string

const (
	// SizingOverCatalogRange means no catalog entry's rating meets the
	// required ampacity. Reported, never silently clipped to the largest
	// size.
	SizingOverCatalogRange SizingCode = "over_catalog_range"
)

// SizingError reports a sizing failure for a single cable.
type SizingError struct {
	CableNumber string
	Code        SizingCode
	Reason      string
	// RecommendedRuns is the parallel run count of the largest catalog
	// entry that would satisfy the required ampacity. Zero when not
	// applicable.
	RecommendedRuns int
}

func (e *SizingError) Error() string {
	if e.RecommendedRuns > 0 {
		return fmt.Sprintf("cable %s: %s: %s (consider %d parallel runs)",
			e.CableNumber, e.Code, e.Reason, e.RecommendedRuns)
	}
	return fmt.Sprintf("cable %s: %s: %s", e.CableNumber, e.Code, e.Reason)
}

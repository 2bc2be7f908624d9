// Package sizing implements the cable sizing engine: a deterministic, pure
// transformation from a cable specification to a sizing result under a
// selected standard profile.
package sizing

import (
	"fmt"
	"math"
	"strconv"

	"github.com/sceap-org/sceap/internal/model"
)

const sqrt3 = 1.7320508075688772

// Engine sizes cables against an immutable catalog and coefficient profile.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	catalog      Catalog
	profile      Profile
	clearingTime float64 // seconds, for the adiabatic check
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClearingTime overrides the assumed fault clearing time in seconds.
func WithClearingTime(secs float64) Option {
	return func(e *Engine) {
		if secs > 0 {
			e.clearingTime = secs
		}
	}
}

// New creates a sizing engine over the given catalog and profile.
func New(catalog Catalog, profile Profile, opts ...Option) *Engine {
	e := &Engine{
		catalog:      catalog,
		profile:      profile,
		clearingTime: 1.0,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Profile returns the engine's coefficient profile.
func (e *Engine) Profile() Profile { return e.profile }

// Catalog returns the engine's size catalog.
func (e *Engine) Catalog() Catalog { return e.catalog }

// Size computes a SizingResult for one cable. Errors are *ValidationError
// for rejected inputs and *SizingError when no catalog size suffices.
//
// Load source of truth: load_kw when supplied; load_kva is consulted only
// when load_kw is absent. The two are never averaged.
//
// Derating direction: the engine computes the required ampacity
// FLC / (grouping x temperature x installation) and selects the smallest
// catalog entry whose base rating meets or exceeds it.
func (e *Engine) Size(spec model.CableSpec) (*model.SizingResult, error) {
	if err := validate(spec); err != nil {
		return nil, err
	}

	phase := spec.Phase()
	runs := spec.Runs
	if runs < 1 {
		runs = 1
	}

	flc := fullLoadCurrent(spec, phase)

	gf := e.profile.GroupingFactor(runs, spec.FeederType, phase)
	tf := e.profile.TempFactor(spec.AmbientTemp)
	inf := e.profile.InstallationFactor(spec.Installation)
	required := flc / (gf * tf * inf)

	entry, err := e.selectSize(spec, required)
	if err != nil {
		return nil, err
	}

	rating := e.rating(entry, spec.Installation)

	vdLimit := e.profile.VDLimit(spec.Voltage)
	vd := voltageDrop(entry, required, spec.Length, spec.Voltage, runs, phase)
	vdPass := vd <= vdLimit

	scCheck := model.SCCheckIndeterminate
	scPass := false
	if spec.ProspectiveSC > 0 {
		if e.profile.Withstand(entry.SizeMM2, e.clearingTime) >= spec.ProspectiveSC {
			scCheck = model.SCCheckPass
			scPass = true
		} else {
			scCheck = model.SCCheckFail
		}
	}

	cores := spec.Cores
	if cores == 0 {
		if phase == model.PhaseSingle {
			cores = 2
		} else {
			cores = 3
		}
	}

	od := entry.ODmm
	if od == 0 {
		od = estimateOD(cores, entry.SizeMM2)
	}

	margin := rating - required
	marginPct := 0.0
	if rating != 0 {
		marginPct = margin / rating * 100
	}

	return &model.SizingResult{
		CableNumber:        spec.CableNumber,
		Description:        spec.Description,
		FullLoadCurrent:    round2(flc),
		DeratedCurrent:     round2(required),
		SelectedSize:       entry.SizeMM2,
		Configuration:      configuration(cores, entry.SizeMM2),
		VoltageDrop:        round2(vd),
		VDLimit:            vdLimit,
		VDPass:             vdPass,
		SCCheck:            scCheck,
		ShortCircuitPass:   scPass,
		GroupingFactor:     gf,
		TempFactor:         tf,
		InstallationFactor: inf,
		Cores:              cores,
		OuterDiameter:      od,
		Ampacity:           rating,
		AmpacityMargin:     round2(margin),
		AmpacityMarginPct:  round2(marginPct),
		ResistancePerKM:    entry.ResistancePerKM,
		ReactancePerKM:     entry.ReactancePerKM,
		Runs:               runs,
		Standard:           e.profile.Reference,
		Approved:           margin >= 0 && vdPass && scCheck != model.SCCheckFail,
		Status:             model.StatusPending,
	}, nil
}

// fullLoadCurrent computes FLC in amperes. kW is canonical; kVA is the
// fallback when kW is absent.
func fullLoadCurrent(spec model.CableSpec, phase model.PhaseType) float64 {
	if spec.LoadKW > 0 {
		den := spec.Voltage * spec.PowerFactor * spec.Efficiency
		if phase == model.PhaseThree {
			den *= sqrt3
		}
		return spec.LoadKW * 1000 / den
	}

	den := spec.Voltage
	if phase == model.PhaseThree {
		den *= sqrt3
	}
	return spec.LoadKVA * 1000 / den
}

// selectSize scans the ascending catalog for the smallest entry whose
// adjusted rating meets the required ampacity.
func (e *Engine) selectSize(spec model.CableSpec, required float64) (CatalogEntry, error) {
	var largest CatalogEntry
	var largestRating float64

	for _, entry := range e.catalog.entries {
		rating := e.rating(entry, spec.Installation)
		if rating <= 0 {
			continue
		}
		if rating >= required {
			return entry, nil
		}
		largest = entry
		largestRating = rating
	}

	recommended := 0
	if largestRating > 0 {
		recommended = int(math.Ceil(required / largestRating))
	}
	return CatalogEntry{}, &SizingError{
		CableNumber:     spec.CableNumber,
		Code:            SizingOverCatalogRange,
		Reason:          reasonOverRange(required, largest.SizeMM2),
		RecommendedRuns: recommended,
	}
}

// rating returns the applicable base ampacity for an entry under the given
// installation method, adjusted per the profile's standard correction.
func (e *Engine) rating(entry CatalogEntry, installation string) float64 {
	amp := entry.AmpacityAir
	if e.profile.GroundRated(installation) && entry.AmpacityGround > 0 {
		amp = entry.AmpacityGround
	}
	if amp == 0 {
		amp = entry.AmpacityGround
	}
	return amp * e.profile.RatingAdjust
}

// voltageDrop computes the percentage voltage drop across the run using the
// impedance magnitude when reactance is tabulated, falling back to
// resistance only. Three-phase drops carry the sqrt(3) factor; single-phase
// omits it.
func voltageDrop(entry CatalogEntry, current, lengthM, voltage float64, runs int, phase model.PhaseType) float64 {
	if voltage == 0 || lengthM == 0 {
		return 0
	}

	zPerM := entry.ResistancePerKM / 1000
	if entry.ReactancePerKM > 0 {
		r := entry.ResistancePerKM / 1000
		x := entry.ReactancePerKM / 1000
		zPerM = math.Sqrt(r*r + x*x)
	}

	perRun := current / float64(runs)
	factor := 1.0
	if phase == model.PhaseThree {
		factor = sqrt3
	}

	return factor * perRun * lengthM * zPerM / voltage * 100
}

func validate(spec model.CableSpec) error {
	fail := func(field, reason string) error {
		return &ValidationError{CableNumber: spec.CableNumber, Field: field, Reason: reason}
	}

	if spec.CableNumber == "" {
		return fail("cable_number", "required")
	}
	if spec.Voltage <= 0 {
		return fail("voltage", "must be positive")
	}
	if spec.PowerFactor <= 0 || spec.PowerFactor > 1 {
		return fail("power_factor", "must be in (0, 1]")
	}
	if spec.Efficiency <= 0 || spec.Efficiency > 1 {
		return fail("efficiency", "must be in (0, 1]")
	}
	if spec.LoadKW < 0 {
		return fail("load_kw", "must not be negative")
	}
	if spec.LoadKVA < 0 {
		return fail("load_kva", "must not be negative")
	}
	if spec.LoadKW == 0 && spec.LoadKVA == 0 {
		return fail("load_kw", "either load_kw or load_kva is required")
	}
	if spec.Length < 0 {
		return fail("length", "must not be negative")
	}
	if spec.Runs < 0 {
		return fail("runs", "must not be negative")
	}
	return nil
}

func estimateOD(cores int, sizeMM2 float64) float64 {
	return math.Round(math.Sqrt(float64(cores)*sizeMM2)*1.5*10) / 10
}

func configuration(cores int, sizeMM2 float64) string {
	return fmt.Sprintf("%dC x %s mm2", cores, strconv.FormatFloat(sizeMM2, 'f', -1, 64))
}

func reasonOverRange(required, largestSize float64) string {
	return fmt.Sprintf("required ampacity %.1f A exceeds the largest catalog size (%s mm2)",
		required, strconv.FormatFloat(largestSize, 'f', -1, 64))
}

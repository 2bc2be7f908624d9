package sizing

import (
	"math"
	"strings"

	"github.com/sceap-org/sceap/internal/model"
)

// Profile holds the standard-specific coefficient tables injected into the
// engine. Swapping standards is a configuration change, not a code branch.
type Profile struct {
	Name      string // "IEC" or "IS"
	Reference string // e.g. "IEC 60287"

	// Ambient temperature derating: factors apply per full step above the
	// base temperature. DefaultTempFactor is used when the ambient is not
	// supplied.
	AmbientBaseC      float64
	AmbientStepC      float64
	AmbientStepFactor float64
	DefaultTempFactor float64

	// Grouping derating by parallel runs, starting from a per-phase base.
	GroupingBase map[model.PhaseType]float64
	RunsFactors  []RunsFactor
	FeederFactor float64 // extra factor for feeder circuits
	GroupingMin  float64 // floor applied after all adjustments

	// Installation method factors keyed by normalized method name.
	Installation       map[string]float64
	DefaultInstall     string
	GroundRatedMethods map[string]bool // methods rated from the buried column

	// RatingAdjust scales catalog base ratings before comparison; IS
	// applies a stricter 0.95.
	RatingAdjust float64

	// Voltage-drop limits in percent.
	VDLimitLV    float64
	VDLimitHV    float64
	HVThresholdV float64

	// Adiabatic short-circuit constant (copper conductors).
	AdiabaticK float64
}

// RunsFactor maps a parallel run count band to its grouping multiplier.
type RunsFactor struct {
	MaxRuns int // band applies while runs <= MaxRuns; last band is open-ended
	Factor  float64
}

// IEC60287 returns the IEC 60287 coefficient profile.
func IEC60287() Profile {
	return Profile{
		Name:              "IEC",
		Reference:         "IEC 60287",
		AmbientBaseC:      30,
		AmbientStepC:      10,
		AmbientStepFactor: 0.95,
		DefaultTempFactor: 0.95,
		GroupingBase: map[model.PhaseType]float64{
			model.PhaseThree:  0.80,
			model.PhaseSingle: 0.90,
		},
		RunsFactors: []RunsFactor{
			{MaxRuns: 1, Factor: 1.0},
			{MaxRuns: 2, Factor: 0.90},
			{MaxRuns: 3, Factor: 0.85},
			{MaxRuns: 0, Factor: 0.80},
		},
		FeederFactor: 0.95,
		GroupingMin:  0.50,
		Installation: map[string]float64{
			"air":    1.00,
			"duct":   0.95,
			"buried": 0.90,
		},
		DefaultInstall:     "air",
		GroundRatedMethods: map[string]bool{"buried": true},
		RatingAdjust:       1.0,
		VDLimitLV:          5.0,
		VDLimitHV:          3.0,
		HVThresholdV:       1000,
		AdiabaticK:         115,
	}
}

// IS1554 returns the IS 1554 coefficient profile. It shares the IEC table
// shape with stricter derating and rating corrections.
func IS1554() Profile {
	p := IEC60287()
	p.Name = "IS"
	p.Reference = "IS 1554"
	p.RatingAdjust = 0.95
	return p
}

// ProfileFor maps a configured standard name to its profile. Unrecognized
// names fall back to IEC.
func ProfileFor(standard string) Profile {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(standard)), "is") {
		return IS1554()
	}
	return IEC60287()
}

// TempFactor returns the ambient temperature derating factor. Zero ambient
// means "not supplied" and yields the profile default.
func (p Profile) TempFactor(ambientC float64) float64 {
	if ambientC == 0 {
		return p.DefaultTempFactor
	}
	steps := int((ambientC - p.AmbientBaseC) / p.AmbientStepC)
	f := 1.0
	for i := 0; i < steps; i++ {
		f *= p.AmbientStepFactor
	}
	return round3(f)
}

// GroupingFactor returns the grouping/proximity derating factor for the
// given run count, feeder type, and phase arrangement.
func (p Profile) GroupingFactor(runs int, feederType string, phase model.PhaseType) float64 {
	gf := p.GroupingBase[phase]
	if gf == 0 {
		gf = p.GroupingBase[model.PhaseThree]
	}

	if runs < 1 {
		runs = 1
	}
	rf := p.RunsFactors[len(p.RunsFactors)-1].Factor
	for _, b := range p.RunsFactors {
		if b.MaxRuns != 0 && runs <= b.MaxRuns {
			rf = b.Factor
			break
		}
	}
	gf *= rf

	if ft := strings.ToLower(strings.TrimSpace(feederType)); strings.HasPrefix(ft, "f") {
		gf *= p.FeederFactor
	}

	return math.Max(p.GroupingMin, round2(gf))
}

// InstallationFactor returns the installation-method derating factor.
func (p Profile) InstallationFactor(method string) float64 {
	f, ok := p.Installation[normalizeInstall(method, p.DefaultInstall)]
	if !ok {
		return p.Installation[p.DefaultInstall]
	}
	return f
}

// GroundRated reports whether the installation method draws its rating from
// the buried ampacity column instead of the air column.
func (p Profile) GroundRated(method string) bool {
	return p.GroundRatedMethods[normalizeInstall(method, p.DefaultInstall)]
}

// VDLimit returns the voltage-drop limit in percent for the given system
// voltage.
func (p Profile) VDLimit(voltage float64) float64 {
	if voltage > p.HVThresholdV {
		return p.VDLimitHV
	}
	return p.VDLimitLV
}

// Withstand returns the adiabatic short-circuit withstand current in
// amperes for a conductor cross-section and fault clearing time.
func (p Profile) Withstand(sizeMM2, clearingTimeSecs float64) float64 {
	t := clearingTimeSecs
	if t <= 0 {
		t = 1.0
	}
	return p.AdiabaticK * math.Sqrt(sizeMM2/t)
}

func normalizeInstall(method, def string) string {
	m := strings.ToLower(strings.TrimSpace(method))
	if m == "" {
		return def
	}
	return m
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }

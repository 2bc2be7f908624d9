package model

// PhaseType identifies the supply phase arrangement for a load.
type PhaseType string

const (
	PhaseSingle PhaseType = "single"
	PhaseThree  PhaseType = "three"
)

// Status is the client-managed workflow state of a sizing result. It is
// never set by the engine beyond the initial StatusPending.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusModified Status = "modified"
	StatusHold     Status = "hold"
	StatusHidden   Status = "hidden"
)

// SCCheck is the outcome of the short-circuit adequacy check.
type SCCheck string

const (
	SCCheckPass SCCheck = "pass"
	SCCheckFail SCCheck = "fail"
	// SCCheckIndeterminate is reported when no prospective short-circuit
	// current was supplied; the check is skipped, never assumed to pass.
	SCCheckIndeterminate SCCheck = "indeterminate"
)

// CableSpec is the input to a sizing calculation.
type CableSpec struct {
	CableNumber   string    `json:"cable_number"`
	Description   string    `json:"description,omitempty"`
	LoadKW        float64   `json:"load_kw"`
	LoadKVA       float64   `json:"load_kva,omitempty"`
	Voltage       float64   `json:"voltage"` // line-to-line, volts
	PowerFactor   float64   `json:"power_factor"`
	Efficiency    float64   `json:"efficiency"`
	Length        float64   `json:"length"` // meters
	Runs          int       `json:"runs"`   // parallel runs, >= 1
	CableType     string    `json:"cable_type,omitempty"`
	FromEquipment string    `json:"from_equipment,omitempty"`
	ToEquipment   string    `json:"to_equipment,omitempty"`
	BreakerType   string    `json:"breaker_type,omitempty"`
	FeederType    string    `json:"feeder_type,omitempty"`
	Cores         int       `json:"cores,omitempty"`    // 0 = default by phase type
	Quantity      int       `json:"quantity,omitempty"` // 0 treated as 1
	Installation  string    `json:"installation,omitempty"`
	ProspectiveSC float64   `json:"prospective_sc,omitempty"` // amperes, 0 = not supplied
	PhaseType     PhaseType `json:"phase_type,omitempty"`     // empty = three
	AmbientTemp   float64   `json:"ambient_temp,omitempty"`   // degC, 0 = not supplied
}

// Phase returns the effective phase type, defaulting to three-phase.
func (c CableSpec) Phase() PhaseType {
	if c.PhaseType == PhaseSingle {
		return PhaseSingle
	}
	return PhaseThree
}

// SizingResult is the output of a sizing calculation. The engine computes
// every field except Status, which the calling application owns.
type SizingResult struct {
	CableNumber     string  `json:"cable_number"`
	Description     string  `json:"description,omitempty"`
	FullLoadCurrent float64 `json:"full_load_current"` // amperes
	DeratedCurrent  float64 `json:"derated_current"`   // required ampacity after derating
	SelectedSize    float64 `json:"selected_size"`     // mm2
	Configuration   string  `json:"configuration"`     // e.g. "3C x 95 mm2"
	VoltageDrop     float64 `json:"voltage_drop"`      // percent
	VDLimit         float64 `json:"vd_limit"`          // percent
	VDPass          bool    `json:"vd_pass"`

	SCCheck          SCCheck `json:"sc_check"`
	ShortCircuitPass bool    `json:"short_circuit_pass"`

	GroupingFactor     float64 `json:"grouping_factor"`
	TempFactor         float64 `json:"temp_factor"`
	InstallationFactor float64 `json:"installation_factor"`

	Cores         int     `json:"cores"`
	OuterDiameter float64 `json:"outer_diameter"` // mm

	Ampacity          float64 `json:"ampacity"`            // base rating of selected entry
	AmpacityMargin    float64 `json:"ampacity_margin"`     // ampacity - derated current
	AmpacityMarginPct float64 `json:"ampacity_margin_pct"` // margin / ampacity * 100

	ResistancePerKM float64 `json:"resistance_per_km"` // ohm/km
	ReactancePerKM  float64 `json:"reactance_per_km"`  // ohm/km

	Runs     int    `json:"runs"`
	Standard string `json:"standard"` // e.g. "IEC 60287"

	// Approved is true when the cable clears every applicable check.
	Approved bool `json:"approved"`

	Status Status `json:"status"`
}

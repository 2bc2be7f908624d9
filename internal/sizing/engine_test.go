package sizing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sceap-org/sceap/internal/model"
)

func newTestEngine() *Engine {
	return New(DefaultCatalog(), IEC60287())
}

func validSpec() model.CableSpec {
	return model.CableSpec{
		CableNumber: "C-001",
		LoadKW:      50,
		Voltage:     400,
		PowerFactor: 0.8,
		Efficiency:  0.95,
		Length:      100,
		Runs:        1,
	}
}

func TestSizeReferenceExample(t *testing.T) {
	result, err := newTestEngine().Size(validSpec())
	require.NoError(t, err)

	// 50000 / (1.732 x 400 x 0.8 x 0.95)
	assert.InDelta(t, 94.96, result.FullLoadCurrent, 0.05)
	assert.InDelta(t, 124.95, result.DeratedCurrent, 0.05)
	assert.Equal(t, 50.0, result.SelectedSize)
	assert.Equal(t, "3C x 50 mm2", result.Configuration)
	assert.Equal(t, 125.0, result.Ampacity)
	assert.InDelta(t, 2.11, result.VoltageDrop, 0.05)
	assert.Equal(t, 5.0, result.VDLimit)
	assert.True(t, result.VDPass)
	assert.Equal(t, model.SCCheckIndeterminate, result.SCCheck)
	assert.True(t, result.Approved)
	assert.Equal(t, model.StatusPending, result.Status)
}

func TestSizeNeverUnderSized(t *testing.T) {
	engine := newTestEngine()
	for _, kw := range []float64{1, 5, 15, 30, 55, 90, 150, 190} {
		spec := validSpec()
		spec.LoadKW = kw

		result, err := engine.Size(spec)
		require.NoError(t, err, "kw=%v", kw)
		assert.GreaterOrEqual(t, result.Ampacity, result.DeratedCurrent, "kw=%v", kw)
	}
}

func TestSizeVoltageDropMonotoneInLength(t *testing.T) {
	engine := newTestEngine()
	prev := -1.0
	for _, length := range []float64{10, 50, 100, 200, 400} {
		spec := validSpec()
		spec.Length = length

		result, err := engine.Size(spec)
		require.NoError(t, err)
		assert.Greater(t, result.VoltageDrop, prev, "length=%v", length)
		prev = result.VoltageDrop
	}
}

func TestSizeDeterministic(t *testing.T) {
	engine := newTestEngine()
	spec := validSpec()

	first, err := engine.Size(spec)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := engine.Size(spec)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestSizeOverCatalogRange(t *testing.T) {
	spec := validSpec()
	spec.LoadKW = 500

	_, err := newTestEngine().Size(spec)
	require.Error(t, err)

	var serr *SizingError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, SizingOverCatalogRange, serr.Code)
	assert.Equal(t, "C-001", serr.CableNumber)
	assert.Greater(t, serr.RecommendedRuns, 1)
}

func TestSizeKVAFallback(t *testing.T) {
	spec := validSpec()
	spec.LoadKW = 0
	spec.LoadKVA = 50

	result, err := newTestEngine().Size(spec)
	require.NoError(t, err)

	// 50000 / (1.732 x 400), no pf or efficiency in the kVA path
	assert.InDelta(t, 72.17, result.FullLoadCurrent, 0.05)
}

func TestSizeSinglePhase(t *testing.T) {
	spec := validSpec()
	spec.PhaseType = model.PhaseSingle
	spec.Voltage = 230
	spec.LoadKW = 3

	result, err := newTestEngine().Size(spec)
	require.NoError(t, err)

	// 3000 / (230 x 0.8 x 0.95), no sqrt(3) for single phase
	assert.InDelta(t, 17.16, result.FullLoadCurrent, 0.05)
	assert.Equal(t, 2, result.Cores)
}

func TestSizeShortCircuitCheck(t *testing.T) {
	tests := []struct {
		name     string
		sc       float64
		want     model.SCCheck
		approved bool
	}{
		{name: "not supplied", sc: 0, want: model.SCCheckIndeterminate, approved: true},
		{name: "within withstand", sc: 1000, want: model.SCCheckPass, approved: true},
		{name: "exceeds withstand", sc: 50000, want: model.SCCheckFail, approved: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := validSpec()
			spec.ProspectiveSC = tt.sc

			result, err := newTestEngine().Size(spec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.SCCheck)
			assert.Equal(t, tt.approved, result.Approved)
		})
	}
}

func TestSizeISStricterThanIEC(t *testing.T) {
	spec := validSpec()

	iec, err := New(DefaultCatalog(), IEC60287()).Size(spec)
	require.NoError(t, err)
	is, err := New(DefaultCatalog(), IS1554()).Size(spec)
	require.NoError(t, err)

	assert.Equal(t, "IS 1554", is.Standard)
	assert.GreaterOrEqual(t, is.SelectedSize, iec.SelectedSize)
}

func TestSizeBuriedUsesGroundRating(t *testing.T) {
	spec := validSpec()
	spec.Installation = "buried"

	result, err := newTestEngine().Size(spec)
	require.NoError(t, err)

	entry, ok := DefaultCatalog().BySize(result.SelectedSize)
	require.True(t, ok)
	assert.Equal(t, entry.AmpacityGround, result.Ampacity)
	assert.Equal(t, 0.9, result.InstallationFactor)
}

func TestSizeHighVoltageDropLimit(t *testing.T) {
	spec := validSpec()
	spec.Voltage = 6600
	spec.LoadKW = 300

	result, err := newTestEngine().Size(spec)
	require.NoError(t, err)
	assert.Equal(t, 3.0, result.VDLimit)
}

func TestSizeValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.CableSpec)
		field  string
	}{
		{name: "missing cable number", mutate: func(s *model.CableSpec) { s.CableNumber = "" }, field: "cable_number"},
		{name: "zero voltage", mutate: func(s *model.CableSpec) { s.Voltage = 0 }, field: "voltage"},
		{name: "negative voltage", mutate: func(s *model.CableSpec) { s.Voltage = -415 }, field: "voltage"},
		{name: "power factor above one", mutate: func(s *model.CableSpec) { s.PowerFactor = 1.2 }, field: "power_factor"},
		{name: "zero efficiency", mutate: func(s *model.CableSpec) { s.Efficiency = 0 }, field: "efficiency"},
		{name: "negative load", mutate: func(s *model.CableSpec) { s.LoadKW = -10 }, field: "load_kw"},
		{name: "no load at all", mutate: func(s *model.CableSpec) { s.LoadKW = 0; s.LoadKVA = 0 }, field: "load_kw"},
		{name: "negative length", mutate: func(s *model.CableSpec) { s.Length = -5 }, field: "length"},
		{name: "negative runs", mutate: func(s *model.CableSpec) { s.Runs = -1 }, field: "runs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := validSpec()
			tt.mutate(&spec)

			_, err := newTestEngine().Size(spec)
			require.Error(t, err)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestSizeZeroRunsDefaultsToOne(t *testing.T) {
	engine := newTestEngine()

	spec := validSpec()
	spec.Runs = 0
	result, err := engine.Size(spec)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Runs)

	spec.Runs = -1
	_, err = engine.Size(spec)
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "runs", verr.Field)
	assert.Equal(t, "must not be negative", verr.Reason)
}

func TestSizeParallelRunsShareVoltageDrop(t *testing.T) {
	engine := newTestEngine()

	single := validSpec()
	single.Runs = 1
	double := validSpec()
	double.Runs = 2

	one, err := engine.Size(single)
	require.NoError(t, err)
	two, err := engine.Size(double)
	require.NoError(t, err)

	// grouping derates harder but each run carries half the current
	assert.Equal(t, 2, two.Runs)
	assert.Less(t, two.VoltageDrop, one.VoltageDrop)
}

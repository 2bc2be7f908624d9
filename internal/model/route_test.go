package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyFill(t *testing.T) {
	tests := []struct {
		fill float64
		want FillLevel
	}{
		{fill: 0, want: FillNormal},
		{fill: 45, want: FillNormal},
		{fill: 69.9, want: FillNormal},
		{fill: 70, want: FillElevated},
		{fill: 89.9, want: FillElevated},
		{fill: 90, want: FillCritical},
		{fill: 100, want: FillCritical},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyFill(tt.fill), "fill=%v", tt.fill)
	}
}

func TestCableSpecPhaseDefault(t *testing.T) {
	assert.Equal(t, PhaseThree, CableSpec{}.Phase())
	assert.Equal(t, PhaseThree, CableSpec{PhaseType: "weird"}.Phase())
	assert.Equal(t, PhaseSingle, CableSpec{PhaseType: PhaseSingle}.Phase())
}

package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercent(t *testing.T) {
	tests := []struct {
		name       string
		reference  float64
		comparison float64
		want       float64
	}{
		{name: "positive spread", reference: 100, comparison: 101, want: 1},
		{name: "negative spread", reference: 100, comparison: 99, want: -1},
		{name: "equal prices", reference: 250000, comparison: 250000, want: 0},
		{name: "zero comparison", reference: 100, comparison: 0, want: -100},
		{name: "fractional spread", reference: 242000, comparison: 242024.2, want: 0.01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Percent(tt.reference, tt.comparison), 1e-9)
		})
	}
}

func TestPercent_ZeroReference(t *testing.T) {
	// A degenerate reference price must surface as a non-finite value,
	// never a silent clamp.
	assert.True(t, math.IsInf(Percent(0, 100), 1))
	assert.True(t, math.IsNaN(Percent(0, 0)))
}

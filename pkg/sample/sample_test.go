package sample

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
)

func TestSmooth(t *testing.T) {
	tests := []struct {
		name     string
		newValue float32
		previous float32
		alpha    float32
		want     float32
	}{
		{name: "default alpha", newValue: 30, previous: 20, alpha: DefaultAlpha, want: 22},
		{name: "from zero", newValue: 100, previous: 0, alpha: DefaultAlpha, want: 20},
		{name: "steady state", newValue: 25, previous: 25, alpha: DefaultAlpha, want: 25},
		{name: "half alpha", newValue: 10, previous: 0, alpha: 0.5, want: 5},
		{name: "falling value", newValue: 0, previous: 50, alpha: DefaultAlpha, want: 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Smooth(tt.newValue, tt.previous, tt.alpha), 1e-4)
		})
	}
}

func TestReading_StartsAtZero(t *testing.T) {
	r := NewReading(DefaultAlpha)

	assert.Equal(t, float32(0), r.Value())
	assert.Equal(t, DefaultAlpha, r.Alpha())
}

func TestReading_Update(t *testing.T) {
	r := NewReading(DefaultAlpha)

	assert.InDelta(t, 4.0, r.Update(20), 1e-4)
	assert.InDelta(t, 7.2, r.Update(20), 1e-4)
	assert.InDelta(t, 7.2, r.Value(), 1e-4)

	// Converges to a constant input
	for range 100 {
		r.Update(20)
	}
	assert.InDelta(t, 20.0, r.Value(), 1e-3)
}

func TestNewReading_InvalidAlpha(t *testing.T) {
	for _, alpha := range []float32{0, 1, -0.5, 2} {
		r := NewReading(alpha)
		assert.Equal(t, DefaultAlpha, r.Alpha(), "alpha %v", alpha)
	}
}

func TestValid(t *testing.T) {
	assert.True(t, Valid(21.5))
	assert.True(t, Valid(0))
	assert.False(t, Valid(math32.NaN()))
	assert.False(t, Valid(math32.Inf(1)))
	assert.False(t, Valid(math32.Inf(-1)))
}

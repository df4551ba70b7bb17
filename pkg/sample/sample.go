package sample

import "github.com/chewxy/math32"

// DefaultAlpha is the smoothing factor applied to the continuous channels.
const DefaultAlpha float32 = 0.2

// Smooth performs one exponential smoothing step.
// Formula: alpha*newValue + (1-alpha)*previous
func Smooth(newValue, previous, alpha float32) float32 {
	return alpha*newValue + (1-alpha)*previous
}

// Valid reports whether v is a usable measurement (not NaN and not infinite).
func Valid(v float32) bool {
	return !math32.IsNaN(v) && !math32.IsInf(v, 0)
}

// Reading is an exponentially smoothed scalar.
// Value starts at 0 and is only ever changed by Update.
type Reading struct {
	value float32
	alpha float32
}

// NewReading creates a Reading with the given smoothing factor.
// Factors outside (0,1) fall back to DefaultAlpha.
func NewReading(alpha float32) Reading {
	if alpha <= 0 || alpha >= 1 {
		alpha = DefaultAlpha
	}
	return Reading{alpha: alpha}
}

// Update folds a new measurement into the reading and returns the smoothed value.
func (r *Reading) Update(v float32) float32 {
	r.value = Smooth(v, r.value, r.alpha)
	return r.value
}

// Value returns the current smoothed value.
func (r Reading) Value() float32 {
	return r.value
}

// Alpha returns the smoothing factor.
func (r Reading) Alpha() float32 {
	return r.alpha
}

package scope

import "time"

// Point is one plotted value.
type Point struct {
	Time  time.Time
	Value float32
}

// Series keeps the points of a rolling time window.
type Series struct {
	window time.Duration
	points []Point
}

// NewSeries creates a series holding window worth of points. A zero window keeps everything.
func NewSeries(window time.Duration) *Series {
	return &Series{window: window}
}

// Add appends p and drops points older than the window relative to p.
func (s *Series) Add(p Point) {
	s.points = append(s.points, p)
	if s.window <= 0 {
		return
	}

	cutoff := p.Time.Add(-s.window)
	drop := 0
	for drop < len(s.points) && s.points[drop].Time.Before(cutoff) {
		drop++
	}
	if drop > 0 {
		s.points = append(s.points[:0], s.points[drop:]...)
	}
}

// Points returns the stored points, oldest first. The slice is reused by Add.
func (s *Series) Points() []Point {
	return s.points
}

// Len returns the number of stored points.
func (s *Series) Len() int {
	return len(s.points)
}

// Bounds returns the value range of the series widened by a 10% margin.
// A flat series gets a span of at least 1. Extra values (e.g. a reference
// line) are included in the range.
func (s *Series) Bounds(extra ...float32) (lo, hi float32) {
	if len(s.points) == 0 && len(extra) == 0 {
		return 0, 1
	}

	first := true
	include := func(v float32) {
		if first {
			lo, hi, first = v, v, false
			return
		}
		lo = min(lo, v)
		hi = max(hi, v)
	}
	for _, p := range s.points {
		include(p.Value)
	}
	for _, v := range extra {
		include(v)
	}

	span := hi - lo
	if span == 0 {
		span = 1
	}
	margin := span * 0.1
	return lo - margin, hi + margin
}

package board

import "time"

// DigitalReader reads a digital input pin.
type DigitalReader interface {
	DigitalRead(pin string) (int, error)
}

// PulseTimer measures pulse widths by polling a digital input.
type PulseTimer struct {
	in  DigitalReader
	now func() time.Time
}

// NewPulseTimer creates a PulseTimer over in.
func NewPulseTimer(in DigitalReader) *PulseTimer {
	return &PulseTimer{in: in, now: time.Now}
}

// PulseIn waits for pin to reach level, then returns how long it stays there
// in microseconds. A pulse already in progress is skipped. It returns 0 on a
// read error or when no complete pulse ends before timeout.
func (p *PulseTimer) PulseIn(pin string, level byte, timeout time.Duration) int {
	deadline := p.now().Add(timeout)

	if !p.waitWhile(pin, level, true, deadline) {
		return 0
	}
	if !p.waitWhile(pin, level, false, deadline) {
		return 0
	}
	start := p.now()
	if !p.waitWhile(pin, level, true, deadline) {
		return 0
	}
	return int(p.now().Sub(start) / time.Microsecond)
}

// waitWhile polls until (pin == level) != at. It reports false on error or deadline.
func (p *PulseTimer) waitWhile(pin string, level byte, at bool, deadline time.Time) bool {
	for {
		v, err := p.in.DigitalRead(pin)
		if err != nil {
			return false
		}
		if (byte(v) == level) != at {
			return true
		}
		if p.now().After(deadline) {
			return false
		}
	}
}

package sensor

import (
	"fmt"
	"time"
)

const (
	// DefaultSettleDelay is the wait after switching photodiode filters.
	DefaultSettleDelay = 10 * time.Millisecond
	// DefaultPulseTimeout bounds a single pulse measurement.
	DefaultPulseTimeout = time.Second
)

// TCS3200Pins names the control and output pins of a TCS3200 colour sensor.
type TCS3200Pins struct {
	S0  string
	S1  string
	S2  string
	S3  string
	Out string
}

// TCS3200 reads reflected colour by timing the output pulse width for each
// photodiode filter in turn.
type TCS3200 struct {
	pins    TCS3200Pins
	out     DigitalWriter
	in      PulseReader
	settle  time.Duration
	timeout time.Duration
	sleep   func(time.Duration)
}

// NewTCS3200 creates a colour sensor driver. Zero durations use the defaults.
func NewTCS3200(out DigitalWriter, in PulseReader, pins TCS3200Pins, settle, timeout time.Duration) *TCS3200 {
	if settle == 0 {
		settle = DefaultSettleDelay
	}
	if timeout == 0 {
		timeout = DefaultPulseTimeout
	}
	return &TCS3200{
		pins:    pins,
		out:     out,
		in:      in,
		settle:  settle,
		timeout: timeout,
		sleep:   time.Sleep,
	}
}

// Init selects 20% output frequency scaling (S0 high, S1 low).
func (t *TCS3200) Init() error {
	if err := t.out.DigitalWrite(t.pins.S0, 1); err != nil {
		return fmt.Errorf("failed to set S0: %w", err)
	}
	if err := t.out.DigitalWrite(t.pins.S1, 0); err != nil {
		return fmt.Errorf("failed to set S1: %w", err)
	}
	return nil
}

// ReadColor measures red, green and blue in that order.
// Filter selection (S2,S3): red LL, green HH, blue LH.
func (t *TCS3200) ReadColor() ColorSample {
	return ColorSample{
		Red:   t.measure(0, 0),
		Green: t.measure(1, 1),
		Blue:  t.measure(0, 1),
	}
}

// measure selects a filter and times one LOW pulse. Pin errors read as a timeout.
func (t *TCS3200) measure(s2, s3 byte) int {
	if err := t.out.DigitalWrite(t.pins.S2, s2); err != nil {
		return 0
	}
	if err := t.out.DigitalWrite(t.pins.S3, s3); err != nil {
		return 0
	}
	t.sleep(t.settle)
	return t.in.PulseIn(t.pins.Out, 0, t.timeout)
}

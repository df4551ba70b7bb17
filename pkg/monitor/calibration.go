package monitor

import "time"

// DefaultCalibrationWindow is how long the gas baseline is tracked after boot.
const DefaultCalibrationWindow = 60 * time.Second

// Phase is the calibration state.
type Phase int

const (
	Calibrating Phase = iota
	Ready
)

func (p Phase) String() string {
	switch p {
	case Calibrating:
		return "calibrating"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}

// CalibrationStep is the outcome of one Calibration.Update.
type CalibrationStep struct {
	Phase     Phase
	Remaining int  // whole seconds left, while calibrating
	JustReady bool // true only on the update that completed calibration
}

// Calibration tracks the gas baseline for a fixed window after start, then
// freezes it. Ready is terminal.
type Calibration struct {
	window   time.Duration
	start    time.Time
	phase    Phase
	baseline float32
}

// NewCalibration starts a calibration window at start.
func NewCalibration(start time.Time, window time.Duration) *Calibration {
	if window <= 0 {
		window = DefaultCalibrationWindow
	}
	return &Calibration{window: window, start: start}
}

// Update advances calibration to now with the latest filtered gas value.
func (c *Calibration) Update(now time.Time, gas float32) CalibrationStep {
	if c.phase == Ready {
		return CalibrationStep{Phase: Ready}
	}

	elapsed := now.Sub(c.start)
	if elapsed >= c.window {
		c.phase = Ready
		return CalibrationStep{Phase: Ready, JustReady: true}
	}

	c.baseline = gas
	return CalibrationStep{
		Phase:     Calibrating,
		Remaining: int(c.window/time.Second) - int(elapsed/time.Second),
	}
}

func (c *Calibration) Phase() Phase      { return c.phase }
func (c *Calibration) Ready() bool       { return c.phase == Ready }
func (c *Calibration) Baseline() float32 { return c.baseline }

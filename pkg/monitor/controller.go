// Package monitor implements the sensing and activation control loop: signal
// filtering, gas baseline calibration, colour classification, the remotely
// driven active/inactive state and the periodic report to a collector.
package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/itohio/envmon/pkg/display"
	"github.com/itohio/envmon/pkg/sample"
	"github.com/itohio/envmon/pkg/sensor"
	"go.uber.org/zap"
)

const (
	DefaultRefreshInterval  = time.Second
	DefaultActiveInterval   = 3 * time.Second
	DefaultInactiveInterval = 5 * time.Second
	// DefaultStatus is shown until the collector sends a status.
	DefaultStatus = "Init..."
)

// Transport delivers a serialized report and returns the raw response body.
// Implementations return an error for unreachable endpoints and non-success replies.
type Transport interface {
	Send(ctx context.Context, payload []byte) ([]byte, error)
}

// Snapshot is a copy of the controller state.
type Snapshot struct {
	DeviceID    string
	Temperature float32
	Humidity    float32
	Gas         float32
	Color       sensor.ColorSample
	Dominant    Color
	Phase       Phase
	Baseline    float32
	Active      bool
	Status      string
}

// Controller owns all monitoring state. It is driven from a single goroutine
// through Tick or Run and is not safe for concurrent use.
type Controller struct {
	deviceID  string
	sensors   sensor.Sensors
	display   display.Display
	transport Transport
	clock     Clock
	log       *zap.Logger
	observer  Observer

	alpha             float32
	calibrationWindow time.Duration
	refreshInterval   time.Duration
	activeInterval    time.Duration
	inactiveInterval  time.Duration
	reportTimeout     time.Duration
	loopDelay         time.Duration
	width             int

	temperature sample.Reading
	humidity    sample.Reading
	gas         sample.Reading
	color       sensor.ColorSample
	calibration *Calibration
	active      bool
	status      string

	refreshTimer Timer
	reportTimer  Timer
}

// New creates a Controller. Calibration and both timers start at the clock's
// current time.
func New(deviceID string, sensors sensor.Sensors, disp display.Display, transport Transport, opts ...Option) *Controller {
	c := &Controller{
		deviceID:          deviceID,
		sensors:           sensors,
		display:           disp,
		transport:         transport,
		clock:             SystemClock{},
		log:               zap.L(),
		observer:          NopObserver{},
		alpha:             sample.DefaultAlpha,
		calibrationWindow: DefaultCalibrationWindow,
		refreshInterval:   DefaultRefreshInterval,
		activeInterval:    DefaultActiveInterval,
		inactiveInterval:  DefaultInactiveInterval,
		width:             display.DefaultWidth,
		active:            true,
		status:            DefaultStatus,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.display == nil {
		c.display = display.Nop{}
	}
	c.log = c.log.Named("monitor").With(zap.String("device_id", deviceID))

	now := c.clock.Now()
	c.temperature = sample.NewReading(c.alpha)
	c.humidity = sample.NewReading(c.alpha)
	c.gas = sample.NewReading(c.alpha)
	c.calibration = NewCalibration(now, c.calibrationWindow)
	c.refreshTimer = NewTimer(now)
	c.reportTimer = NewTimer(now)
	return c
}

// Run ticks until ctx is cancelled, pausing the loop delay between ticks.
func (c *Controller) Run(ctx context.Context) error {
	c.log.Info("controller started",
		zap.Duration("calibration_window", c.calibrationWindow),
		zap.Float32("alpha", c.temperature.Alpha()))
	defer c.log.Info("controller stopped")

	var tick <-chan time.Time
	if c.loopDelay > 0 {
		ticker := time.NewTicker(c.loopDelay)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		c.Tick(ctx)

		if tick != nil {
			select {
			case <-ctx.Done():
				return nil
			case <-tick:
			}
		}
	}
}

// Tick runs one loop iteration: sense, then the display and report timers.
func (c *Controller) Tick(ctx context.Context) {
	now := c.clock.Now()
	_ = c.sense(now)

	if c.refreshTimer.Fire(now, c.refreshInterval) {
		c.RefreshDisplay()
	}

	if c.reportTimer.Fire(now, c.ReportInterval()) && c.calibration.Ready() {
		_ = c.Report(ctx)
	}
}

// Sense reads all sensors, updates the filtered readings and advances calibration.
// It returns ErrSensorInvalid when the filter update was skipped.
func (c *Controller) Sense() error {
	return c.sense(c.clock.Now())
}

func (c *Controller) sense(now time.Time) error {
	var err error

	climate := c.sensors.ReadClimate()
	gas, gasErr := c.sensors.ReadGas()
	switch {
	case !climate.Valid():
		err = ErrSensorInvalid
	case gasErr != nil:
		err = fmt.Errorf("%w: %w", ErrSensorInvalid, gasErr)
	default:
		c.temperature.Update(climate.Temperature)
		c.humidity.Update(climate.Humidity)
		c.gas.Update(float32(gas))
	}
	if err != nil {
		c.log.Debug("skipping filter update", zap.Error(err))
		c.observer.SensorInvalid()
	}

	c.color = c.sensors.ReadColor()

	step := c.calibration.Update(now, c.gas.Value())
	switch {
	case step.Phase == Calibrating:
		c.display.Show(calibrationScreen(step.Remaining))
	case step.JustReady:
		c.log.Info("calibration complete", zap.Float32("baseline", c.calibration.Baseline()))
		c.display.Show(readyScreen())
		c.refreshTimer = NewTimer(now)
	}

	c.observer.Sensed(c.Snapshot())
	return err
}

// RefreshDisplay draws the running screen. Nothing is drawn while calibrating
// or inactive.
func (c *Controller) RefreshDisplay() {
	if !c.calibration.Ready() || !c.active {
		return
	}
	line1, line2 := runningScreen(c.Snapshot())
	c.display.Show(display.Fit(line1, c.width), display.Fit(line2, c.width))
}

// ReportInterval is the report period for the current activation state.
func (c *Controller) ReportInterval() time.Duration {
	if c.active {
		return c.activeInterval
	}
	return c.inactiveInterval
}

// BuildReport snapshots the readings for the collector. All numeric fields are
// zero while inactive.
func (c *Controller) BuildReport() Report {
	if !c.active {
		return Report{DeviceID: c.deviceID}
	}
	return Report{
		DeviceID:    c.deviceID,
		Gas:         c.gas.Value(),
		Temperature: c.temperature.Value(),
		Humidity:    c.humidity.Value(),
		Red:         c.color.Red,
		Green:       c.color.Green,
		Blue:        c.color.Blue,
	}
}

// Report sends one report and applies the response. A transport failure or an
// unparseable response leaves all state unchanged. Invalid response fields are
// skipped individually and returned as *FieldError; such a report still counts
// as sent.
func (c *Controller) Report(ctx context.Context) error {
	report := c.BuildReport()

	payload, err := json.Marshal(report)
	if err != nil {
		return c.reportFailed(fmt.Errorf("failed to encode report: %w", err))
	}

	if c.reportTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.reportTimeout)
		defer cancel()
	}

	body, err := c.transport.Send(ctx, payload)
	if err != nil {
		return c.reportFailed(fmt.Errorf("%w: %w", ErrTransport, err))
	}

	resp, err := DecodeResponse(body)
	if err != nil {
		return c.reportFailed(err)
	}

	c.apply(resp)
	c.observer.ReportSent(report)

	if err := resp.Err(); err != nil {
		c.log.Warn("collector response partially invalid", zap.String("kind", Kind(err)), zap.Error(err))
		return err
	}
	return nil
}

func (c *Controller) reportFailed(err error) error {
	kind := Kind(err)
	c.log.Warn("report failed", zap.String("kind", kind), zap.Error(err))
	c.observer.ReportFailed(kind)
	return err
}

func (c *Controller) apply(resp Response) {
	switch resp.Directive {
	case DirectiveOff:
		c.deactivate()
	case DirectiveOn:
		c.activate()
	}
	if resp.Status != nil {
		c.status = *resp.Status
	}
}

func (c *Controller) deactivate() {
	if !c.active {
		return
	}
	c.active = false
	c.display.Clear()
	c.display.SetBacklight(false)
	c.log.Info("device deactivated by collector")
}

func (c *Controller) activate() {
	if c.active {
		return
	}
	c.active = true
	c.display.SetBacklight(true)
	c.log.Info("device activated by collector")
}

// Active reports whether the device is active.
func (c *Controller) Active() bool { return c.active }

// Status returns the last status text received from the collector.
func (c *Controller) Status() string { return c.status }

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	return Snapshot{
		DeviceID:    c.deviceID,
		Temperature: c.temperature.Value(),
		Humidity:    c.humidity.Value(),
		Gas:         c.gas.Value(),
		Color:       c.color,
		Dominant:    Classify(c.color.Red, c.color.Green, c.color.Blue),
		Phase:       c.calibration.Phase(),
		Baseline:    c.calibration.Baseline(),
		Active:      c.active,
		Status:      c.status,
	}
}

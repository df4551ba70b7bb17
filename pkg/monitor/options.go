package monitor

import (
	"time"

	"github.com/itohio/envmon/pkg/config"
	"go.uber.org/zap"
)

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Controller) {
		if log != nil {
			c.log = log
		}
	}
}

// WithClock sets the time source.
func WithClock(clock Clock) Option {
	return func(c *Controller) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithObserver sets the event observer.
func WithObserver(o Observer) Option {
	return func(c *Controller) {
		if o != nil {
			c.observer = o
		}
	}
}

// WithAlpha sets the smoothing factor of all continuous channels.
func WithAlpha(alpha float32) Option {
	return func(c *Controller) { c.alpha = alpha }
}

// WithCalibrationWindow sets how long the gas baseline is tracked.
func WithCalibrationWindow(d time.Duration) Option {
	return func(c *Controller) { c.calibrationWindow = d }
}

// WithRefreshInterval sets the display refresh period.
func WithRefreshInterval(d time.Duration) Option {
	return func(c *Controller) { c.refreshInterval = d }
}

// WithReportIntervals sets the report periods while active and inactive.
func WithReportIntervals(active, inactive time.Duration) Option {
	return func(c *Controller) {
		c.activeInterval = active
		c.inactiveInterval = inactive
	}
}

// WithReportTimeout bounds each report round trip.
func WithReportTimeout(d time.Duration) Option {
	return func(c *Controller) { c.reportTimeout = d }
}

// WithLoopDelay sets the pause between Run iterations.
func WithLoopDelay(d time.Duration) Option {
	return func(c *Controller) { c.loopDelay = d }
}

// WithDisplayWidth sets the display line width.
func WithDisplayWidth(w int) Option {
	return func(c *Controller) { c.width = w }
}

// ConfigOptions maps configuration onto controller options.
func ConfigOptions(cfg *config.Config) []Option {
	return []Option{
		WithAlpha(cfg.Sensing.Alpha),
		WithCalibrationWindow(cfg.Sensing.CalibrationWindow),
		WithLoopDelay(cfg.Sensing.LoopDelay),
		WithRefreshInterval(cfg.Display.RefreshInterval),
		WithDisplayWidth(cfg.Display.Width),
		WithReportIntervals(cfg.Reporting.ActiveInterval, cfg.Reporting.InactiveInterval),
		WithReportTimeout(cfg.Reporting.Timeout),
	}
}

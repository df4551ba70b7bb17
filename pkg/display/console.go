package display

import (
	"sync"

	"go.uber.org/zap"
)

// Console renders display frames as log entries. Repeated identical frames
// are logged once.
type Console struct {
	log   *zap.Logger
	width int

	mu        sync.Mutex
	last      [2]string
	shown     bool
	backlight bool
}

// NewConsole creates a console display. A nil logger falls back to zap.L().
func NewConsole(log *zap.Logger, width int) *Console {
	if log == nil {
		log = zap.L()
	}
	if width <= 0 {
		width = DefaultWidth
	}
	return &Console{
		log:       log.Named("display"),
		width:     width,
		backlight: true,
	}
}

func (c *Console) Show(line1, line2 string) {
	frame := [2]string{Fit(line1, c.width), Fit(line2, c.width)}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.shown && frame == c.last {
		return
	}
	c.last = frame
	c.shown = true
	c.log.Info("display", zap.String("line1", frame[0]), zap.String("line2", frame[1]))
}

func (c *Console) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = [2]string{}
	c.shown = false
	c.log.Info("display cleared")
}

func (c *Console) SetBacklight(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.backlight == on {
		return
	}
	c.backlight = on
	c.log.Info("display backlight", zap.Bool("on", on))
}

package board

import (
	"sync"

	"github.com/itohio/envmon/pkg/display"
	"go.uber.org/zap"
)

const lcdRowOffset = 16

// LCDDriver is the subset of a character LCD driver used for output.
type LCDDriver interface {
	Clear() error
	SetPosition(pos int) error
	Write(message string) error
	SetRGB(r, g, b int) error
}

// LCD renders display frames on a 16x2 RGB-backlit character LCD.
type LCD struct {
	drv   LCDDriver
	width int
	log   *zap.Logger
	mu    sync.Mutex
}

var _ display.Display = (*LCD)(nil)

// NewLCD creates an LCD display.
func NewLCD(drv LCDDriver, width int, log *zap.Logger) *LCD {
	if width <= 0 || width > lcdRowOffset {
		width = display.DefaultWidth
	}
	if log == nil {
		log = zap.L()
	}
	return &LCD{drv: drv, width: width, log: log.Named("lcd")}
}

// Show overwrites both rows, padding each to the display width.
func (l *LCD) Show(line1, line2 string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.check(l.drv.SetPosition(0))
	l.check(l.drv.Write(display.Pad(line1, l.width)))
	l.check(l.drv.SetPosition(lcdRowOffset))
	l.check(l.drv.Write(display.Pad(line2, l.width)))
}

func (l *LCD) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.check(l.drv.Clear())
}

// SetBacklight switches the RGB backlight between white and off.
func (l *LCD) SetBacklight(on bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if on {
		l.check(l.drv.SetRGB(255, 255, 255))
		return
	}
	l.check(l.drv.SetRGB(0, 0, 0))
}

func (l *LCD) check(err error) {
	if err != nil {
		l.log.Warn("lcd write failed", zap.Error(err))
	}
}

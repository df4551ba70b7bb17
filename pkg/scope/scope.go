// Package scope provides a rolling trend chart widget.
package scope

import (
	"image/color"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/envmon/pkg/sample"
)

// DefaultMaxPoints limits how many points are drawn.
const DefaultMaxPoints = 500

// Trend is a Fyne widget plotting one value over a rolling time window with
// an optional horizontal reference line.
type Trend struct {
	widget.BaseWidget

	title string
	unit  string
	color color.Color

	// Data (protected by mu)
	mu           sync.RWMutex
	series       *Series
	display      []Point
	reference    float32
	hasReference bool

	// Auto-scaling
	yMin, yMax float32
	xMin, xMax time.Time
	window     time.Duration

	maxDisplayPoints int
}

// New creates a trend chart over window.
func New(title, unit string, window time.Duration, c color.Color) *Trend {
	t := &Trend{
		title:            title,
		unit:             unit,
		color:            c,
		series:           NewSeries(window),
		display:          make([]Point, 0, DefaultMaxPoints),
		window:           window,
		maxDisplayPoints: DefaultMaxPoints,
	}
	t.ExtendBaseWidget(t)
	t.updateScale()
	return t
}

// Add appends a value. Call from the Fyne main thread.
func (t *Trend) Add(at time.Time, v float32) {
	t.mu.Lock()
	t.series.Add(Point{Time: at, Value: v})
	t.display = sample.Downsample(t.display, t.series.Points(), t.maxDisplayPoints)
	t.updateScale()
	t.mu.Unlock()

	t.Refresh()
}

// SetReference draws a horizontal line at v.
func (t *Trend) SetReference(v float32) {
	t.mu.Lock()
	t.reference, t.hasReference = v, true
	t.updateScale()
	t.mu.Unlock()

	t.Refresh()
}

// ClearReference removes the reference line.
func (t *Trend) ClearReference() {
	t.mu.Lock()
	t.hasReference = false
	t.updateScale()
	t.mu.Unlock()

	t.Refresh()
}

// Reset drops all points.
func (t *Trend) Reset() {
	t.mu.Lock()
	t.series = NewSeries(t.window)
	t.display = t.display[:0]
	t.hasReference = false
	t.updateScale()
	t.mu.Unlock()

	t.Refresh()
}

// updateScale recalculates axis ranges. Caller holds mu.
func (t *Trend) updateScale() {
	if t.hasReference {
		t.yMin, t.yMax = t.series.Bounds(t.reference)
	} else {
		t.yMin, t.yMax = t.series.Bounds()
	}

	if len(t.display) == 0 {
		t.xMin = time.Now()
		t.xMax = t.xMin.Add(t.window)
		return
	}
	t.xMin = t.display[0].Time
	t.xMax = t.display[len(t.display)-1].Time
	if t.xMax.Sub(t.xMin) < t.window {
		t.xMax = t.xMin.Add(t.window)
	}
}

// CreateRenderer creates the widget renderer.
func (t *Trend) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(color.RGBA{R: 20, G: 20, B: 20, A: 255})
	return &trendRenderer{
		trend:   t,
		bg:      bg,
		objects: []fyne.CanvasObject{bg},
	}
}

package scope

import (
	"fmt"
	"image/color"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
)

var (
	gridColor      = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	labelColor     = color.RGBA{R: 150, G: 150, B: 150, A: 255}
	referenceColor = color.RGBA{R: 100, G: 200, B: 255, A: 255}
)

// trendRenderer renders the trend widget.
type trendRenderer struct {
	trend *Trend

	bg      *canvas.Rectangle
	objects []fyne.CanvasObject

	// Track last size to detect changes
	lastSize fyne.Size
}

// MinSize returns the minimum size of the widget.
func (r *trendRenderer) MinSize() fyne.Size {
	return fyne.NewSize(300, 160)
}

// Layout arranges the widget components.
func (r *trendRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	if r.lastSize != size {
		r.lastSize = size
		r.trend.BaseWidget.Refresh()
	}
}

// Refresh redraws the plot from the current data.
func (r *trendRenderer) Refresh() {
	t := r.trend
	t.mu.RLock()
	points := append([]Point(nil), t.display...)
	reference, hasReference := t.reference, t.hasReference
	yMin, yMax := t.yMin, t.yMax
	xMin, xMax := t.xMin, t.xMax
	t.mu.RUnlock()

	size := t.Size()
	if size.Width == 0 || size.Height == 0 {
		return
	}

	r.objects = []fyne.CanvasObject{r.bg}

	const (
		marginLeft   = float32(50)
		marginRight  = float32(10)
		marginTop    = float32(22)
		marginBottom = float32(20)
	)
	plot := plotArea{
		x:    marginLeft,
		y:    marginTop,
		w:    size.Width - marginLeft - marginRight,
		h:    size.Height - marginTop - marginBottom,
		yMin: yMin,
		yMax: yMax,
		xMin: xMin,
		xMax: xMax,
	}

	r.drawTitle(points)
	r.drawGrid(plot)
	if hasReference {
		r.drawReference(plot, reference)
	}
	r.drawLine(plot, points)
}

func (r *trendRenderer) drawTitle(points []Point) {
	title := r.trend.title
	if len(points) > 0 {
		title = fmt.Sprintf("%s  %.1f %s", title, points[len(points)-1].Value, r.trend.unit)
	}
	text := canvas.NewText(title, color.White)
	text.TextSize = 12
	text.TextStyle = fyne.TextStyle{Bold: true}
	text.Move(fyne.NewPos(6, 3))
	r.objects = append(r.objects, text)
}

func (r *trendRenderer) drawGrid(p plotArea) {
	const hLines = 4
	for i := range hLines + 1 {
		y := p.y + float32(i)*p.h/hLines
		r.addLine(gridColor, 1, fyne.NewPos(p.x, y), fyne.NewPos(p.x+p.w, y))

		value := p.yMax - float32(i)*(p.yMax-p.yMin)/hLines
		text := canvas.NewText(fmt.Sprintf("%.0f", value), labelColor)
		text.TextSize = 10
		text.Alignment = fyne.TextAlignTrailing
		text.Move(fyne.NewPos(p.x-5, y-6))
		r.objects = append(r.objects, text)
	}

	const vLines = 6
	span := p.xMax.Sub(p.xMin)
	for i := range vLines + 1 {
		x := p.x + float32(i)*p.w/vLines
		r.addLine(gridColor, 1, fyne.NewPos(x, p.y), fyne.NewPos(x, p.y+p.h))

		offset := span * time.Duration(i) / vLines
		text := canvas.NewText(fmt.Sprintf("%.0fs", offset.Seconds()), labelColor)
		text.TextSize = 10
		text.Alignment = fyne.TextAlignCenter
		text.Move(fyne.NewPos(x-10, p.y+p.h+3))
		r.objects = append(r.objects, text)
	}
}

func (r *trendRenderer) drawReference(p plotArea, v float32) {
	y := p.yPos(v)
	r.addLine(referenceColor, 1, fyne.NewPos(p.x, y), fyne.NewPos(p.x+p.w, y))
}

func (r *trendRenderer) drawLine(p plotArea, points []Point) {
	if len(points) < 2 {
		return
	}
	prev := fyne.NewPos(p.xPos(points[0].Time), p.yPos(points[0].Value))
	for _, pt := range points[1:] {
		next := fyne.NewPos(p.xPos(pt.Time), p.yPos(pt.Value))
		r.addLine(r.trend.color, 1.5, prev, next)
		prev = next
	}
}

func (r *trendRenderer) addLine(c color.Color, width float32, from, to fyne.Position) {
	line := canvas.NewLine(c)
	line.Position1 = from
	line.Position2 = to
	line.StrokeWidth = width
	r.objects = append(r.objects, line)
}

// Objects returns all canvas objects for rendering.
func (r *trendRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

// Destroy cleans up resources.
func (r *trendRenderer) Destroy() {}

// plotArea maps data coordinates onto the drawing area.
type plotArea struct {
	x, y, w, h float32
	yMin, yMax float32
	xMin, xMax time.Time
}

func (p plotArea) xPos(t time.Time) float32 {
	span := p.xMax.Sub(p.xMin).Seconds()
	if span <= 0 {
		return p.x
	}
	return p.x + float32(t.Sub(p.xMin).Seconds()/span)*p.w
}

func (p plotArea) yPos(v float32) float32 {
	if p.yMax == p.yMin {
		return p.y + p.h/2
	}
	return p.y + p.h - (v-p.yMin)/(p.yMax-p.yMin)*p.h
}

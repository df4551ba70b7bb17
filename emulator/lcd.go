package main

import (
	"image/color"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"github.com/itohio/envmon/pkg/display"
)

var (
	backlightOn  = color.RGBA{R: 40, G: 110, B: 220, A: 255}
	backlightOff = color.RGBA{R: 15, G: 25, B: 45, A: 255}
	lcdInk       = color.RGBA{R: 235, G: 240, B: 255, A: 255}
)

// lcdPanel draws a character LCD in the window. It is driven from the
// control loop goroutine, so every widget change goes through fyne.Do.
type lcdPanel struct {
	width   int
	bg      *canvas.Rectangle
	lines   [2]*canvas.Text
	content fyne.CanvasObject
}

var _ display.Display = (*lcdPanel)(nil)

func newLCDPanel(width int) *lcdPanel {
	if width <= 0 {
		width = display.DefaultWidth
	}
	p := &lcdPanel{
		width: width,
		bg:    canvas.NewRectangle(backlightOn),
	}
	for i := range p.lines {
		text := canvas.NewText(strings.Repeat(" ", width), lcdInk)
		text.TextStyle = fyne.TextStyle{Monospace: true}
		text.TextSize = 28
		p.lines[i] = text
	}
	p.bg.CornerRadius = 6
	p.content = container.NewStack(p.bg, container.NewPadded(container.NewVBox(p.lines[0], p.lines[1])))
	return p
}

func (p *lcdPanel) Show(line1, line2 string) {
	l1 := display.Pad(display.Fit(line1, p.width), p.width)
	l2 := display.Pad(display.Fit(line2, p.width), p.width)
	fyne.Do(func() {
		p.lines[0].Text = l1
		p.lines[1].Text = l2
		p.lines[0].Refresh()
		p.lines[1].Refresh()
	})
}

func (p *lcdPanel) Clear() {
	p.Show("", "")
}

func (p *lcdPanel) SetBacklight(on bool) {
	fill := backlightOff
	if on {
		fill = backlightOn
	}
	fyne.Do(func() {
		p.bg.FillColor = fill
		p.bg.Refresh()
	})
}

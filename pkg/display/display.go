// Package display provides the two-line text display used by the controller
// and its console, no-op and recording backends.
package display

import (
	"strings"
	"unicode/utf8"
)

// DefaultWidth is the character width of a 16x2 LCD.
const DefaultWidth = 16

// Display accepts two short text lines and a backlight state.
type Display interface {
	Show(line1, line2 string)
	Clear()
	SetBacklight(on bool)
}

// Fit truncates s to at most width characters.
func Fit(s string, width int) string {
	if width <= 0 || utf8.RuneCountInString(s) <= width {
		return s
	}
	r := []rune(s)
	return string(r[:width])
}

// Pad truncates s to width characters and right-pads it with spaces to width.
func Pad(s string, width int) string {
	s = Fit(s, width)
	if n := utf8.RuneCountInString(s); n < width {
		s += strings.Repeat(" ", width-n)
	}
	return s
}

// Nop discards everything.
type Nop struct{}

func (Nop) Show(string, string) {}
func (Nop) Clear()              {}
func (Nop) SetBacklight(bool)   {}

var (
	_ Display = Nop{}
	_ Display = (*Console)(nil)
	_ Display = (*Recorder)(nil)
)

package monitor

// Color is the dominant colour of a pulse-width triple.
type Color int

const (
	ColorUndefined Color = iota
	ColorRed
	ColorGreen
	ColorBlue
	ColorUnknown
)

func (c Color) String() string {
	switch c {
	case ColorUndefined:
		return "UNDEFINED"
	case ColorRed:
		return "RED"
	case ColorGreen:
		return "GREEN"
	case ColorBlue:
		return "BLUE"
	default:
		return "UNKNOWN"
	}
}

// Code is the three-character label shown on the display.
func (c Color) Code() string {
	switch c {
	case ColorUndefined:
		return "-"
	case ColorRed:
		return "RED"
	case ColorGreen:
		return "GRN"
	case ColorBlue:
		return "BLU"
	default:
		return "UNK"
	}
}

// Classify picks the channel with the strictly smallest pulse width.
// A zero channel is a missed read and yields ColorUndefined; ties yield ColorUnknown.
func Classify(r, g, b int) Color {
	if r == 0 || g == 0 || b == 0 {
		return ColorUndefined
	}
	switch {
	case r < g && r < b:
		return ColorRed
	case g < r && g < b:
		return ColorGreen
	case b < r && b < g:
		return ColorBlue
	default:
		return ColorUnknown
	}
}

package monitor

import (
	"fmt"

	"github.com/itohio/envmon/pkg/display"
)

const (
	statusWidth = 9
	statusField = 10
)

func calibrationScreen(remaining int) (string, string) {
	return "Calibrating air", fmt.Sprintf("Wait: %2d s", remaining)
}

func readyScreen() (string, string) {
	return "Ready!", ""
}

// runningScreen renders readings on line 1 and status plus colour on line 2.
func runningScreen(s Snapshot) (string, string) {
	line1 := fmt.Sprintf("T:%.0f H:%.0f G:%.0f", s.Temperature, s.Humidity, s.Gas)
	line2 := display.Pad(display.Fit(s.Status, statusWidth), statusField) + " W:" + s.Dominant.Code()
	return line1, line2
}

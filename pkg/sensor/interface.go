package sensor

import (
	"time"

	"github.com/itohio/envmon/pkg/sample"
)

// ClimateSample holds one temperature (°C) and relative humidity (%RH) read.
// A failed read is reported as NaN.
type ClimateSample struct {
	Temperature float32
	Humidity    float32
}

// Valid reports whether both values are usable.
func (c ClimateSample) Valid() bool {
	return sample.Valid(c.Temperature) && sample.Valid(c.Humidity)
}

// ColorSample holds raw photodiode pulse widths in microseconds.
// Smaller widths mean stronger reflection; 0 means the read timed out.
type ColorSample struct {
	Red   int
	Green int
	Blue  int
}

// Sensors is the raw acquisition surface used by the control loop.
type Sensors interface {
	ReadClimate() ClimateSample
	ReadGas() (int, error)
	ReadColor() ColorSample
}

// Device defines the interface for sensor rigs with a connection lifecycle (real or mocked).
type Device interface {
	Sensors
	Connect() error
	Close() error
	IsConnected() bool
}

// Climate is a temperature/humidity sensor such as an SHT2x or DHT22.
type Climate interface {
	Temperature() (float32, error)
	Humidity() (float32, error)
}

// AnalogReader reads a raw ADC value from a pin.
type AnalogReader interface {
	AnalogRead(pin string) (int, error)
}

// DigitalWriter drives a digital output pin.
type DigitalWriter interface {
	DigitalWrite(pin string, level byte) error
}

// PulseReader measures how long a pin stays at level, in microseconds.
// It returns 0 when no complete pulse is seen before timeout.
type PulseReader interface {
	PulseIn(pin string, level byte, timeout time.Duration) int
}

// ColorReader acquires one ColorSample.
type ColorReader interface {
	ReadColor() ColorSample
}

var (
	_ Sensors = (*Rig)(nil)
	_ Device  = (*Serial)(nil)
	_ Device  = (*Mock)(nil)

	_ ColorReader = (*TCS3200)(nil)
)

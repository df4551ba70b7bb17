package sensor

import (
	"fmt"

	"github.com/chewxy/math32"
	"go.uber.org/zap"
)

// Rig composes individual hardware drivers into Sensors.
type Rig struct {
	climate Climate
	gas     AnalogReader
	gasPin  string
	color   ColorReader
	log     *zap.Logger
}

// NewRig creates a Rig. A nil logger falls back to zap.L().
func NewRig(climate Climate, gas AnalogReader, gasPin string, color ColorReader, log *zap.Logger) *Rig {
	if log == nil {
		log = zap.L()
	}
	return &Rig{
		climate: climate,
		gas:     gas,
		gasPin:  gasPin,
		color:   color,
		log:     log.Named("rig"),
	}
}

// ReadClimate reads temperature then humidity. Failed reads become NaN.
func (r *Rig) ReadClimate() ClimateSample {
	s := ClimateSample{Temperature: math32.NaN(), Humidity: math32.NaN()}

	t, err := r.climate.Temperature()
	if err != nil {
		r.log.Debug("temperature read failed", zap.Error(err))
	} else {
		s.Temperature = t
	}

	h, err := r.climate.Humidity()
	if err != nil {
		r.log.Debug("humidity read failed", zap.Error(err))
	} else {
		s.Humidity = h
	}

	return s
}

// ReadGas reads the raw gas sensor ADC value.
func (r *Rig) ReadGas() (int, error) {
	v, err := r.gas.AnalogRead(r.gasPin)
	if err != nil {
		return 0, fmt.Errorf("failed to read gas on pin %s: %w", r.gasPin, err)
	}
	return v, nil
}

// ReadColor delegates to the colour reader.
func (r *Rig) ReadColor() ColorSample {
	return r.color.ReadColor()
}

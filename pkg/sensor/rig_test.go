package sensor

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeClimate struct {
	temp, hum       float32
	tempErr, humErr error
}

func (f *fakeClimate) Temperature() (float32, error) { return f.temp, f.tempErr }
func (f *fakeClimate) Humidity() (float32, error)    { return f.hum, f.humErr }

type fakeADC struct {
	values map[string]int
	err    error
}

func (f *fakeADC) AnalogRead(pin string) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.values[pin], nil
}

type fixedColor ColorSample

func (f fixedColor) ReadColor() ColorSample { return ColorSample(f) }

func TestRig_Reads(t *testing.T) {
	climate := &fakeClimate{temp: 27.5, hum: 70}
	adc := &fakeADC{values: map[string]int{"0": 321}}
	r := NewRig(climate, adc, "0", fixedColor{Red: 1, Green: 2, Blue: 3}, zaptest.NewLogger(t))

	c := r.ReadClimate()
	require.True(t, c.Valid())
	assert.Equal(t, float32(27.5), c.Temperature)
	assert.Equal(t, float32(70), c.Humidity)

	gas, err := r.ReadGas()
	require.NoError(t, err)
	assert.Equal(t, 321, gas)
	assert.Equal(t, ColorSample{Red: 1, Green: 2, Blue: 3}, r.ReadColor())
}

func TestRig_ClimateErrorsBecomeInvalid(t *testing.T) {
	tests := []struct {
		name    string
		climate *fakeClimate
	}{
		{name: "temperature fails", climate: &fakeClimate{hum: 50, tempErr: errors.New("crc")}},
		{name: "humidity fails", climate: &fakeClimate{temp: 20, humErr: errors.New("timeout")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRig(tt.climate, &fakeADC{}, "0", fixedColor{}, nil)
			assert.False(t, r.ReadClimate().Valid())
		})
	}
}

func TestRig_GasError(t *testing.T) {
	r := NewRig(&fakeClimate{}, &fakeADC{err: errors.New("i2c nack")}, "2", fixedColor{}, nil)
	_, err := r.ReadGas()
	assert.ErrorContains(t, err, "pin 2")
}

type pinLog struct {
	writes []string
	fail   string
	pulses map[[2]byte]int
	s2, s3 byte
}

func (p *pinLog) DigitalWrite(pin string, level byte) error {
	if pin == p.fail {
		return errors.New("write failed")
	}
	p.writes = append(p.writes, pin+"="+string('0'+level))
	switch pin {
	case "s2":
		p.s2 = level
	case "s3":
		p.s3 = level
	}
	return nil
}

func (p *pinLog) PulseIn(pin string, level byte, timeout time.Duration) int {
	return p.pulses[[2]byte{p.s2, p.s3}]
}

func TestTCS3200_FilterSequence(t *testing.T) {
	pins := &pinLog{pulses: map[[2]byte]int{
		{0, 0}: 11, // red
		{1, 1}: 22, // green
		{0, 1}: 33, // blue
	}}
	tcs := NewTCS3200(pins, pins, TCS3200Pins{S0: "s0", S1: "s1", S2: "s2", S3: "s3", Out: "out"}, 0, 0)
	var slept []time.Duration
	tcs.sleep = func(d time.Duration) { slept = append(slept, d) }

	require.NoError(t, tcs.Init())
	got := tcs.ReadColor()

	assert.Equal(t, ColorSample{Red: 11, Green: 22, Blue: 33}, got)
	assert.Equal(t, []string{"s0=1", "s1=0", "s2=0", "s3=0", "s2=1", "s3=1", "s2=0", "s3=1"}, pins.writes)
	assert.Equal(t, []time.Duration{DefaultSettleDelay, DefaultSettleDelay, DefaultSettleDelay}, slept)
}

func TestTCS3200_WriteErrorReadsAsTimeout(t *testing.T) {
	pins := &pinLog{fail: "s3", pulses: map[[2]byte]int{{0, 0}: 11}}
	tcs := NewTCS3200(pins, pins, TCS3200Pins{S0: "s0", S1: "s1", S2: "s2", S3: "s3", Out: "out"}, time.Millisecond, time.Millisecond)
	tcs.sleep = func(time.Duration) {}

	assert.Equal(t, ColorSample{}, tcs.ReadColor())
	assert.Error(t, NewTCS3200(&pinLog{fail: "s0"}, pins, TCS3200Pins{S0: "s0"}, 0, 0).Init())
}

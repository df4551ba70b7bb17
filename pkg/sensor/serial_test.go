package sensor

import (
	"strings"
	"testing"
	"time"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestParseFrame(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    Frame
		wantErr bool
	}{
		{
			name: "valid line",
			line: "1234567890123,28.5,61,412,35,80,72",
			want: Frame{
				Timestamp:   time.UnixMicro(1234567890123),
				Temperature: 28.5,
				Humidity:    61,
				Gas:         412,
				Red:         35,
				Green:       80,
				Blue:        72,
			},
		},
		{
			name: "max ADC gas and timed out colour",
			line: "1,20,40,4095,0,0,0",
			want: Frame{
				Timestamp:   time.UnixMicro(1),
				Temperature: 20,
				Humidity:    40,
				Gas:         4095,
			},
		},
		{name: "too few fields", line: "1,20,40,100,1,2", wantErr: true},
		{name: "too many fields", line: "1,20,40,100,1,2,3,4", wantErr: true},
		{name: "bad timestamp", line: "abc,20,40,100,1,2,3", wantErr: true},
		{name: "bad temperature", line: "1,hot,40,100,1,2,3", wantErr: true},
		{name: "bad humidity", line: "1,20,wet,100,1,2,3", wantErr: true},
		{name: "gas out of range", line: "1,20,40,4096,1,2,3", wantErr: true},
		{name: "negative gas", line: "1,20,40,-1,1,2,3", wantErr: true},
		{name: "negative colour", line: "1,20,40,100,-1,2,3", wantErr: true},
		{name: "bad blue", line: "1,20,40,100,1,2,x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFrame(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFrame_NaNClimate(t *testing.T) {
	got, err := parseFrame("1,nan,NaN,100,1,2,3")
	require.NoError(t, err)
	assert.True(t, math32.IsNaN(got.Temperature))
	assert.True(t, math32.IsNaN(got.Humidity))
	assert.Equal(t, 100, got.Gas)
}

func TestNewSerial_Defaults(t *testing.T) {
	d := NewSerial("/dev/ttyUSB0", 0, nil)
	assert.Equal(t, DefaultBaudRate, d.baudRate)
	assert.Equal(t, DefaultMaxAge, d.maxAge)
	assert.False(t, d.IsConnected())
	assert.NoError(t, d.Close())
}

func TestSerial_ReadsWithoutFrame(t *testing.T) {
	d := NewSerial("test", 0, zaptest.NewLogger(t))

	c := d.ReadClimate()
	assert.False(t, c.Valid())

	_, err := d.ReadGas()
	assert.ErrorIs(t, err, ErrNoFrame)
	assert.Equal(t, ColorSample{}, d.ReadColor())
}

func TestSerial_KeepsLatestValidFrame(t *testing.T) {
	now := time.Unix(1000, 0)
	d := NewSerial("test", 0, zaptest.NewLogger(t))
	d.now = func() time.Time { return now }

	input := strings.Join([]string{
		"1,20,40,100,10,20,30",
		"",
		"garbage",
		"2,21.5,45,110,11,21,31",
		"3,20,40,9999,1,1,1",
	}, "\n")
	d.readFrames(strings.NewReader(input))

	c := d.ReadClimate()
	require.True(t, c.Valid())
	assert.Equal(t, float32(21.5), c.Temperature)
	assert.Equal(t, float32(45), c.Humidity)

	gas, err := d.ReadGas()
	require.NoError(t, err)
	assert.Equal(t, 110, gas)
	assert.Equal(t, ColorSample{Red: 11, Green: 21, Blue: 31}, d.ReadColor())
}

func TestSerial_StaleFrame(t *testing.T) {
	now := time.Unix(1000, 0)
	d := NewSerial("test", 0, zaptest.NewLogger(t))
	d.now = func() time.Time { return now }

	d.readFrames(strings.NewReader("1,20,40,100,10,20,30\n"))
	_, ok := d.Latest()
	assert.True(t, ok)

	now = now.Add(DefaultMaxAge + time.Millisecond)
	_, ok = d.Latest()
	assert.False(t, ok)
	assert.False(t, d.ReadClimate().Valid())

	_, err := d.ReadGas()
	assert.ErrorIs(t, err, ErrNoFrame)
}

package sensor

import (
	"testing"

	"github.com/itohio/envmon/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietMock() *config.MockConfig {
	return &config.MockConfig{
		Seed:        7,
		Temperature: 28,
		Humidity:    60,
		Gas:         120,
		Red:         40,
		Green:       60,
		Blue:        55,
	}
}

func TestMock_Lifecycle(t *testing.T) {
	m := NewMock(nil)
	assert.False(t, m.IsConnected())
	require.NoError(t, m.Connect())
	assert.True(t, m.IsConnected())
	assert.Error(t, m.Connect())
	require.NoError(t, m.Close())
	assert.False(t, m.IsConnected())
}

func TestMock_NoiselessValues(t *testing.T) {
	m := NewMock(quietMock())

	c := m.ReadClimate()
	require.True(t, c.Valid())
	assert.Equal(t, float32(28), c.Temperature)
	assert.Equal(t, float32(60), c.Humidity)

	gas, err := m.ReadGas()
	require.NoError(t, err)
	assert.Equal(t, 120, gas)

	assert.Equal(t, ColorSample{Red: 40, Green: 60, Blue: 55}, m.ReadColor())
}

func TestMock_GasDrift(t *testing.T) {
	cfg := quietMock()
	cfg.GasDrift = 10
	m := NewMock(cfg)

	first, _ := m.ReadGas()
	second, _ := m.ReadGas()
	assert.Equal(t, 130, first)
	assert.Equal(t, 140, second)

	m.SetGas(5000)
	clamped, _ := m.ReadGas()
	assert.Equal(t, maxADC, clamped)
}

func TestMock_Fault(t *testing.T) {
	m := NewMock(quietMock())

	m.SetFault(true)
	assert.False(t, m.ReadClimate().Valid())

	m.SetFault(false)
	assert.True(t, m.ReadClimate().Valid())

	cfg := quietMock()
	cfg.FaultRate = 1
	assert.False(t, NewMock(cfg).ReadClimate().Valid())
}

func TestMock_ColorOverride(t *testing.T) {
	m := NewMock(quietMock())

	m.SetColor(&ColorSample{Red: 5, Green: 90, Blue: 90})
	assert.Equal(t, ColorSample{Red: 5, Green: 90, Blue: 90}, m.ReadColor())

	m.SetColor(nil)
	assert.Equal(t, ColorSample{Red: 40, Green: 60, Blue: 55}, m.ReadColor())
}

func TestMock_DeterministicForSeed(t *testing.T) {
	cfg := quietMock()
	cfg.NoiseLevel = 0.1

	a, b := NewMock(cfg), NewMock(cfg)
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.ReadClimate(), b.ReadClimate())
		ga, _ := a.ReadGas()
		gb, _ := b.ReadGas()
		assert.Equal(t, ga, gb)

		c := a.ReadColor()
		assert.Equal(t, c, b.ReadColor())
		assert.Positive(t, c.Red)
	}
}

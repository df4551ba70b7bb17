package sensor

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/chewxy/math32"
	"github.com/itohio/envmon/pkg/config"
)

// Mock simulates a sensor rig for testing and development.
// Values are deterministic for a given seed.
type Mock struct {
	cfg *config.MockConfig

	mu        sync.Mutex
	rng       *rand.Rand
	connected bool
	gas       float32
	fault     bool
	color     *ColorSample
}

// NewMock creates a new simulated rig.
func NewMock(cfg *config.MockConfig) *Mock {
	if cfg == nil {
		def := config.Default().Hardware.Mock
		cfg = &def
	}

	return &Mock{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
		gas: float32(cfg.Gas),
	}
}

// Connect simulates connecting to the rig.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return fmt.Errorf("already connected")
	}
	m.connected = true
	return nil
}

// Close simulates disconnecting.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = false
	return nil
}

// IsConnected returns whether the rig is connected.
func (m *Mock) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// SetFault forces every climate read to fail until cleared.
func (m *Mock) SetFault(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fault = on
}

// SetColor overrides the simulated colour reading. nil restores the configured one.
func (m *Mock) SetColor(c *ColorSample) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.color = c
}

// SetGas moves the simulated gas level, e.g. to emulate spoilage.
func (m *Mock) SetGas(v int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gas = float32(v)
}

// ReadClimate returns noisy temperature and humidity, or NaN on a simulated fault.
func (m *Mock) ReadClimate() ClimateSample {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fault || (m.cfg.FaultRate > 0 && m.rng.Float32() < m.cfg.FaultRate) {
		return ClimateSample{Temperature: math32.NaN(), Humidity: math32.NaN()}
	}

	return ClimateSample{
		Temperature: m.cfg.Temperature * (1 + m.noise()),
		Humidity:    m.cfg.Humidity * (1 + m.noise()),
	}
}

// ReadGas returns the drifting gas level with noise, clamped to the ADC range.
func (m *Mock) ReadGas() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gas += m.cfg.GasDrift
	v := int(math32.Round(m.gas * (1 + m.noise())))
	return clamp(v, 0, maxADC), nil
}

// ReadColor returns the configured pulse widths with noise.
func (m *Mock) ReadColor() ColorSample {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.color != nil {
		return *m.color
	}

	jitter := func(v int) int {
		if v <= 0 {
			return 0
		}
		return max(1, int(math32.Round(float32(v)*(1+m.noise()))))
	}
	return ColorSample{
		Red:   jitter(m.cfg.Red),
		Green: jitter(m.cfg.Green),
		Blue:  jitter(m.cfg.Blue),
	}
}

// noise returns a value in [-NoiseLevel, NoiseLevel). Caller holds mu.
func (m *Mock) noise() float32 {
	if m.cfg.NoiseLevel == 0 {
		return 0
	}
	return (m.rng.Float32()*2 - 1) * m.cfg.NoiseLevel
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

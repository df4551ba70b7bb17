package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Device    DeviceConfig    `yaml:"device"`
	Sensing   SensingConfig   `yaml:"sensing"`
	Display   DisplayConfig   `yaml:"display"`
	Reporting ReportingConfig `yaml:"reporting"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	Hardware  HardwareConfig  `yaml:"hardware"`
	Log       LogConfig       `yaml:"log"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Collector CollectorConfig `yaml:"collector"`
}

// DeviceConfig identifies this controller to the collector.
type DeviceConfig struct {
	ID string `yaml:"id"`
}

// SensingConfig contains filter and calibration parameters.
type SensingConfig struct {
	Alpha             float32       `yaml:"alpha"`              // Exponential smoothing factor (0,1)
	CalibrationWindow time.Duration `yaml:"calibration_window"` // Gas baseline window after boot
	LoopDelay         time.Duration `yaml:"loop_delay"`         // Pause between control loop iterations
}

// DisplayConfig selects and tunes the display backend.
type DisplayConfig struct {
	Backend         string        `yaml:"backend"` // console, lcd or none
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	Width           int           `yaml:"width"`
}

// ReportingConfig contains report transport and cadence.
type ReportingConfig struct {
	Transport        string        `yaml:"transport"` // http or mqtt
	Endpoint         string        `yaml:"endpoint"`
	Timeout          time.Duration `yaml:"timeout"`
	ActiveInterval   time.Duration `yaml:"active_interval"`
	InactiveInterval time.Duration `yaml:"inactive_interval"`
}

// MQTTConfig holds the configuration for the MQTT client.
type MQTTConfig struct {
	Broker          string        `yaml:"broker"`
	ClientID        string        `yaml:"client_id"`
	Username        string        `yaml:"username"`
	Password        string        `yaml:"password"`
	TopicPrefix     string        `yaml:"topic_prefix"`
	QoS             byte          `yaml:"qos"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout"`
	ResponseTimeout time.Duration `yaml:"response_timeout"`
}

// HardwareConfig selects where raw samples come from.
type HardwareConfig struct {
	Backend string       `yaml:"backend"` // mock, serial or raspi
	Serial  SerialConfig `yaml:"serial"`
	Raspi   RaspiConfig  `yaml:"raspi"`
	Mock    MockConfig   `yaml:"mock"`
}

// SerialConfig contains serial port configuration of the MCU bridge.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// RaspiConfig contains Raspberry Pi pin and bus assignments.
type RaspiConfig struct {
	GasChannel   string        `yaml:"gas_channel"` // ADS1115 input, "0".."3"
	S0           string        `yaml:"s0"`
	S1           string        `yaml:"s1"`
	S2           string        `yaml:"s2"`
	S3           string        `yaml:"s3"`
	Out          string        `yaml:"out"`
	PulseTimeout time.Duration `yaml:"pulse_timeout"`
	SettleDelay  time.Duration `yaml:"settle_delay"`
	LCD          bool          `yaml:"lcd"`
}

// MockConfig contains simulated rig parameters.
type MockConfig struct {
	Seed        int64   `yaml:"seed"`
	Temperature float32 `yaml:"temperature"` // °C
	Humidity    float32 `yaml:"humidity"`    // %RH
	Gas         int     `yaml:"gas"`         // Raw ADC counts
	GasDrift    float32 `yaml:"gas_drift"`   // Counts per read
	NoiseLevel  float32 `yaml:"noise_level"` // Relative noise amplitude
	FaultRate   float32 `yaml:"fault_rate"`  // Probability of an invalid climate read
	Red         int     `yaml:"red"`
	Green       int     `yaml:"green"`
	Blue        int     `yaml:"blue"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level      string `yaml:"level"`
	Encoding   string `yaml:"encoding"` // console or json
	File       string `yaml:"file"`     // Optional rotating log file
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// MetricsConfig configures the Prometheus endpoint. Empty listen disables it.
type MetricsConfig struct {
	Listen string `yaml:"listen"`
}

// CollectorConfig configures the collector service.
type CollectorConfig struct {
	Listen       string        `yaml:"listen"`
	Database     string        `yaml:"database"`
	IngestEvery  time.Duration `yaml:"ingest_every"` // Minimum spacing of readings per device
	IngestBurst  int           `yaml:"ingest_burst"`
	HistoryLimit int           `yaml:"history_limit"`
	MQTTBridge   bool          `yaml:"mqtt_bridge"`
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Device: DeviceConfig{
			ID: "ESP32_REAL_01",
		},
		Sensing: SensingConfig{
			Alpha:             0.2,
			CalibrationWindow: 60 * time.Second,
			LoopDelay:         10 * time.Millisecond,
		},
		Display: DisplayConfig{
			Backend:         "console",
			RefreshInterval: time.Second,
			Width:           16,
		},
		Reporting: ReportingConfig{
			Transport:        "http",
			Endpoint:         "http://192.168.1.50:5000/api/readings",
			Timeout:          5 * time.Second,
			ActiveInterval:   3 * time.Second,
			InactiveInterval: 5 * time.Second,
		},
		MQTT: MQTTConfig{
			Broker:          "tcp://localhost:1883",
			ClientID:        "envmon",
			TopicPrefix:     "envmon",
			QoS:             1,
			ConnectTimeout:  10 * time.Second,
			ResponseTimeout: 2 * time.Second,
		},
		Hardware: HardwareConfig{
			Backend: "mock",
			Serial: SerialConfig{
				Port:     "/dev/ttyUSB0",
				BaudRate: 115200,
			},
			Raspi: RaspiConfig{
				GasChannel:   "0",
				S0:           "37",
				S1:           "35",
				S2:           "33",
				S3:           "31",
				Out:          "29",
				PulseTimeout: time.Second,
				SettleDelay:  10 * time.Millisecond,
				LCD:          true,
			},
			Mock: MockConfig{
				Seed:        1,
				Temperature: 28,
				Humidity:    60,
				Gas:         120,
				GasDrift:    0.05,
				NoiseLevel:  0.02,
				FaultRate:   0,
				Red:         40,
				Green:       60,
				Blue:        55,
			},
		},
		Log: LogConfig{
			Level:      "info",
			Encoding:   "console",
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 28,
		},
		Collector: CollectorConfig{
			Listen:       ":5000",
			Database:     "envmon.db",
			IngestEvery:  time.Second,
			IngestBurst:  3,
			HistoryLimit: 50,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate rejects values the control loop cannot run with.
func (c *Config) Validate() error {
	if c.Sensing.Alpha <= 0 || c.Sensing.Alpha >= 1 {
		return fmt.Errorf("sensing.alpha must be in (0,1), got %v", c.Sensing.Alpha)
	}
	if c.Display.RefreshInterval <= 0 {
		return fmt.Errorf("display.refresh_interval must be positive, got %v", c.Display.RefreshInterval)
	}
	if c.Reporting.ActiveInterval <= 0 {
		return fmt.Errorf("reporting.active_interval must be positive, got %v", c.Reporting.ActiveInterval)
	}
	if c.Reporting.InactiveInterval <= 0 {
		return fmt.Errorf("reporting.inactive_interval must be positive, got %v", c.Reporting.InactiveInterval)
	}
	switch c.Reporting.Transport {
	case "http", "mqtt":
	default:
		return fmt.Errorf("unknown reporting.transport %q", c.Reporting.Transport)
	}
	switch c.Hardware.Backend {
	case "mock", "serial", "raspi":
	default:
		return fmt.Errorf("unknown hardware.backend %q", c.Hardware.Backend)
	}
	switch c.Display.Backend {
	case "console", "lcd", "none":
	default:
		return fmt.Errorf("unknown display.backend %q", c.Display.Backend)
	}
	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Device.ID == "" {
		c.Device.ID = def.Device.ID
	}

	if c.Sensing.Alpha == 0 {
		c.Sensing.Alpha = def.Sensing.Alpha
	}
	if c.Sensing.CalibrationWindow == 0 {
		c.Sensing.CalibrationWindow = def.Sensing.CalibrationWindow
	}
	if c.Sensing.LoopDelay == 0 {
		c.Sensing.LoopDelay = def.Sensing.LoopDelay
	}

	if c.Display.Backend == "" {
		c.Display.Backend = def.Display.Backend
	}
	if c.Display.RefreshInterval == 0 {
		c.Display.RefreshInterval = def.Display.RefreshInterval
	}
	if c.Display.Width == 0 {
		c.Display.Width = def.Display.Width
	}

	if c.Reporting.Transport == "" {
		c.Reporting.Transport = def.Reporting.Transport
	}
	if c.Reporting.Endpoint == "" {
		c.Reporting.Endpoint = def.Reporting.Endpoint
	}
	if c.Reporting.Timeout == 0 {
		c.Reporting.Timeout = def.Reporting.Timeout
	}
	if c.Reporting.ActiveInterval == 0 {
		c.Reporting.ActiveInterval = def.Reporting.ActiveInterval
	}
	if c.Reporting.InactiveInterval == 0 {
		c.Reporting.InactiveInterval = def.Reporting.InactiveInterval
	}

	if c.MQTT.Broker == "" {
		c.MQTT.Broker = def.MQTT.Broker
	}
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = def.MQTT.ClientID
	}
	if c.MQTT.TopicPrefix == "" {
		c.MQTT.TopicPrefix = def.MQTT.TopicPrefix
	}
	if c.MQTT.ConnectTimeout == 0 {
		c.MQTT.ConnectTimeout = def.MQTT.ConnectTimeout
	}
	if c.MQTT.ResponseTimeout == 0 {
		c.MQTT.ResponseTimeout = def.MQTT.ResponseTimeout
	}

	if c.Hardware.Backend == "" {
		c.Hardware.Backend = def.Hardware.Backend
	}
	if c.Hardware.Serial.Port == "" {
		c.Hardware.Serial.Port = def.Hardware.Serial.Port
	}
	if c.Hardware.Serial.BaudRate == 0 {
		c.Hardware.Serial.BaudRate = def.Hardware.Serial.BaudRate
	}
	if c.Hardware.Raspi.GasChannel == "" {
		c.Hardware.Raspi.GasChannel = def.Hardware.Raspi.GasChannel
	}
	if c.Hardware.Raspi.PulseTimeout == 0 {
		c.Hardware.Raspi.PulseTimeout = def.Hardware.Raspi.PulseTimeout
	}
	if c.Hardware.Raspi.SettleDelay == 0 {
		c.Hardware.Raspi.SettleDelay = def.Hardware.Raspi.SettleDelay
	}

	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.Encoding == "" {
		c.Log.Encoding = def.Log.Encoding
	}

	if c.Collector.Listen == "" {
		c.Collector.Listen = def.Collector.Listen
	}
	if c.Collector.Database == "" {
		c.Collector.Database = def.Collector.Database
	}
	if c.Collector.IngestEvery == 0 {
		c.Collector.IngestEvery = def.Collector.IngestEvery
	}
	if c.Collector.IngestBurst == 0 {
		c.Collector.IngestBurst = def.Collector.IngestBurst
	}
	if c.Collector.HistoryLimit == 0 {
		c.Collector.HistoryLimit = def.Collector.HistoryLimit
	}
}

package sensor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chewxy/math32"
	"go.bug.st/serial"
	"go.uber.org/zap"
)

const (
	// DefaultBaudRate is the bridge firmware's UART speed.
	DefaultBaudRate = 115200
	// DefaultMaxAge is how long a frame stays current before reads treat it as missing.
	DefaultMaxAge = 2 * time.Second
	// maxADC is the largest 12-bit ADC reading.
	maxADC = 4095
)

// ErrNoFrame is returned when no current frame has been received from the bridge.
var ErrNoFrame = errors.New("no current frame from bridge")

// Frame is one line of sensor values sent by the MCU bridge.
type Frame struct {
	Timestamp   time.Time
	Temperature float32 // °C, NaN when the MCU read failed
	Humidity    float32 // %RH, NaN when the MCU read failed
	Gas         int     // 12-bit ADC reading (0-4095)
	Red         int     // Pulse width, µs
	Green       int
	Blue        int
}

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Serial reads sensor frames from an MCU bridge over a serial port and
// serves the latest one to the control loop.
type Serial struct {
	port     string
	baudRate int
	maxAge   time.Duration
	log      *zap.Logger
	now      func() time.Time

	conn      serial.Port
	mu        sync.RWMutex
	latest    Frame
	received  time.Time
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool
}

// NewSerial creates a new Serial instance with the specified port and baud rate.
func NewSerial(port string, baudRate int, log *zap.Logger) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if log == nil {
		log = zap.L()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Serial{
		port:     port,
		baudRate: baudRate,
		maxAge:   DefaultMaxAge,
		log:      log.Named("serial").With(zap.String("port", port)),
		now:      time.Now,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(ports))
	for _, name := range ports {
		result = append(result, Port{Name: name, Description: name})
	}
	return result, nil
}

// Connect opens the serial port and starts reading frames.
func (d *Serial) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return fmt.Errorf("already connected")
	}

	port, err := serial.Open(d.port, &serial.Mode{BaudRate: d.baudRate})
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", d.port, err)
	}

	d.conn = port
	d.connected = true

	go d.readFrames(port)

	return nil
}

// Close closes the connection and stops reading frames.
func (d *Serial) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return nil
	}

	d.cancel()

	if d.conn != nil {
		if err := d.conn.Close(); err != nil {
			d.log.Warn("error closing serial port", zap.Error(err))
		}
		d.conn = nil
	}

	d.connected = false
	return nil
}

// IsConnected returns whether the device is currently connected.
func (d *Serial) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}

// Latest returns the most recent frame and whether it is still current.
func (d *Serial) Latest() (Frame, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.received.IsZero() || d.now().Sub(d.received) > d.maxAge {
		return d.latest, false
	}
	return d.latest, true
}

// ReadClimate returns the latest climate values, or NaN when no current frame exists.
func (d *Serial) ReadClimate() ClimateSample {
	f, ok := d.Latest()
	if !ok {
		return ClimateSample{Temperature: math32.NaN(), Humidity: math32.NaN()}
	}
	return ClimateSample{Temperature: f.Temperature, Humidity: f.Humidity}
}

// ReadGas returns the latest gas reading.
func (d *Serial) ReadGas() (int, error) {
	f, ok := d.Latest()
	if !ok {
		return 0, ErrNoFrame
	}
	return f.Gas, nil
}

// ReadColor returns the latest colour pulse widths, zero when no current frame exists.
func (d *Serial) ReadColor() ColorSample {
	f, ok := d.Latest()
	if !ok {
		return ColorSample{}
	}
	return ColorSample{Red: f.Red, Green: f.Green, Blue: f.Blue}
}

// readFrames reads lines from r and keeps the latest valid frame.
func (d *Serial) readFrames(r io.Reader) {
	defer func() {
		if p := recover(); p != nil {
			d.log.Error("panic in readFrames", zap.Any("panic", p))
		}
	}()

	scanner := bufio.NewScanner(r)
	for {
		select {
		case <-d.ctx.Done():
			return
		default:
		}

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				d.log.Warn("error reading from serial port", zap.Error(err))
			}
			return
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		frame, err := parseFrame(line)
		if err != nil {
			d.log.Debug("failed to parse line", zap.String("line", line), zap.Error(err))
			continue
		}

		d.mu.Lock()
		d.latest = frame
		d.received = d.now()
		d.mu.Unlock()
	}
}

// parseFrame parses a line from the MCU into a Frame.
// Format: unix_micros,temperature,humidity,gas,red,green,blue
// Example: 1234567890123,28.5,61.0,412,35,80,72
// Temperature and humidity may be "nan" when the MCU read failed.
func parseFrame(line string) (Frame, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 7 {
		return Frame{}, fmt.Errorf("invalid line format: expected 7 comma-separated values, got %d", len(parts))
	}

	timestampMicros, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return Frame{}, fmt.Errorf("invalid timestamp: %w", err)
	}

	temperature, err := strconv.ParseFloat(parts[1], 32)
	if err != nil {
		return Frame{}, fmt.Errorf("invalid temperature: %w", err)
	}

	humidity, err := strconv.ParseFloat(parts[2], 32)
	if err != nil {
		return Frame{}, fmt.Errorf("invalid humidity: %w", err)
	}

	gas, err := strconv.ParseUint(parts[3], 10, 16)
	if err != nil {
		return Frame{}, fmt.Errorf("invalid gas: %w", err)
	}
	if gas > maxADC {
		return Frame{}, fmt.Errorf("gas out of range: %d (max %d)", gas, maxADC)
	}

	var rgb [3]int
	for i, name := range []string{"red", "green", "blue"} {
		v, err := strconv.ParseUint(parts[4+i], 10, 31)
		if err != nil {
			return Frame{}, fmt.Errorf("invalid %s: %w", name, err)
		}
		rgb[i] = int(v)
	}

	return Frame{
		Timestamp:   time.UnixMicro(timestampMicros),
		Temperature: float32(temperature),
		Humidity:    float32(humidity),
		Gas:         int(gas),
		Red:         rgb[0],
		Green:       rgb[1],
		Blue:        rgb[2],
	}, nil
}

// Package board wires the sensor rig and LCD to Raspberry Pi peripherals.
package board

import (
	"errors"
	"fmt"
	"sync"

	"github.com/itohio/envmon/pkg/config"
	"github.com/itohio/envmon/pkg/display"
	"github.com/itohio/envmon/pkg/sensor"
	"go.uber.org/zap"
	"gobot.io/x/gobot/v2/drivers/i2c"
	"gobot.io/x/gobot/v2/platforms/raspi"
)

// Raspi is a sensor rig on a Raspberry Pi: an SHT2x for climate, an ADS1115
// channel for the gas sensor, a TCS3200 on GPIO and an optional JHD1313M1 LCD.
type Raspi struct {
	*sensor.Rig

	adaptor *raspi.Adaptor
	climate *i2c.SHT2xDriver
	adc     *i2c.ADS1x15Driver
	lcd     *i2c.JHD1313M1Driver
	tcs     *sensor.TCS3200
	log     *zap.Logger

	mu        sync.Mutex
	connected bool
}

var _ sensor.Device = (*Raspi)(nil)

// NewRaspi creates the drivers. Nothing touches the hardware until Connect.
func NewRaspi(cfg config.RaspiConfig, log *zap.Logger) *Raspi {
	if log == nil {
		log = zap.L()
	}
	log = log.Named("raspi")

	r := raspi.NewAdaptor()
	b := &Raspi{
		adaptor: r,
		climate: i2c.NewSHT2xDriver(r),
		adc:     i2c.NewADS1115Driver(r),
		log:     log,
	}
	if cfg.LCD {
		b.lcd = i2c.NewJHD1313M1Driver(r)
	}

	pins := sensor.TCS3200Pins{S0: cfg.S0, S1: cfg.S1, S2: cfg.S2, S3: cfg.S3, Out: cfg.Out}
	b.tcs = sensor.NewTCS3200(r, NewPulseTimer(r), pins, cfg.SettleDelay, cfg.PulseTimeout)
	b.Rig = sensor.NewRig(b.climate, b.adc, cfg.GasChannel, b.tcs, log)
	return b
}

// Connect opens the GPIO/I2C adaptor and starts all drivers.
func (b *Raspi) Connect() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.connected {
		return fmt.Errorf("already connected")
	}
	if err := b.adaptor.Connect(); err != nil {
		return fmt.Errorf("failed to connect raspi adaptor: %w", err)
	}
	if err := b.climate.Start(); err != nil {
		return fmt.Errorf("failed to start SHT2x: %w", err)
	}
	if err := b.adc.Start(); err != nil {
		return fmt.Errorf("failed to start ADS1115: %w", err)
	}
	if b.lcd != nil {
		if err := b.lcd.Start(); err != nil {
			return fmt.Errorf("failed to start LCD: %w", err)
		}
	}
	if err := b.tcs.Init(); err != nil {
		return fmt.Errorf("failed to init TCS3200: %w", err)
	}

	b.connected = true
	b.log.Info("raspi rig connected", zap.Bool("lcd", b.lcd != nil))
	return nil
}

// Close halts the drivers and releases the adaptor.
func (b *Raspi) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.connected {
		return nil
	}
	b.connected = false

	var errs []error
	if b.lcd != nil {
		errs = append(errs, b.lcd.Halt())
	}
	errs = append(errs, b.adc.Halt(), b.climate.Halt(), b.adaptor.Finalize())
	return errors.Join(errs...)
}

// IsConnected returns whether the rig is connected.
func (b *Raspi) IsConnected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.connected
}

// Display returns the LCD, or nil when the LCD is disabled.
func (b *Raspi) Display(width int) display.Display {
	if b.lcd == nil {
		return nil
	}
	return NewLCD(b.lcd, width, b.log)
}

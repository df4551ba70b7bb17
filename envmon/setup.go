package main

import (
	"errors"
	"fmt"

	"github.com/itohio/envmon/pkg/board"
	"github.com/itohio/envmon/pkg/config"
	"github.com/itohio/envmon/pkg/display"
	"github.com/itohio/envmon/pkg/monitor"
	"github.com/itohio/envmon/pkg/sensor"
	"github.com/itohio/envmon/pkg/transport"
	"go.uber.org/zap"
)

func newDevice(cfg *config.Config, log *zap.Logger) (sensor.Device, error) {
	switch cfg.Hardware.Backend {
	case "mock":
		return sensor.NewMock(&cfg.Hardware.Mock), nil
	case "serial":
		if cfg.Hardware.Serial.Port == "" {
			return nil, errors.New("hardware.serial.port is required for the serial backend")
		}
		return sensor.NewSerial(cfg.Hardware.Serial.Port, cfg.Hardware.Serial.BaudRate, log), nil
	case "raspi":
		return board.NewRaspi(cfg.Hardware.Raspi, log), nil
	default:
		return nil, fmt.Errorf("unknown hardware backend %q", cfg.Hardware.Backend)
	}
}

func newDisplay(cfg *config.Config, dev sensor.Device, log *zap.Logger) (display.Display, error) {
	switch cfg.Display.Backend {
	case "console":
		return display.NewConsole(log, cfg.Display.Width), nil
	case "lcd":
		pi, ok := dev.(*board.Raspi)
		if !ok {
			return nil, fmt.Errorf("lcd display requires the raspi backend, got %q", cfg.Hardware.Backend)
		}
		d := pi.Display(cfg.Display.Width)
		if d == nil {
			return nil, errors.New("lcd display requires hardware.raspi.lcd")
		}
		return d, nil
	case "none":
		return display.Nop{}, nil
	default:
		return nil, fmt.Errorf("unknown display backend %q", cfg.Display.Backend)
	}
}

// newTransport returns the report transport and a function releasing it.
func newTransport(cfg *config.Config, log *zap.Logger) (monitor.Transport, func(), error) {
	switch cfg.Reporting.Transport {
	case "http":
		return transport.NewHTTP(cfg.Reporting.Endpoint, cfg.Reporting.Timeout, log), func() {}, nil
	case "mqtt":
		client, err := transport.Connect(cfg.MQTT, log)
		if err != nil {
			return nil, nil, err
		}
		m, err := transport.NewMQTT(client, cfg.MQTT.TopicPrefix, cfg.Device.ID, cfg.MQTT.QoS, cfg.MQTT.ResponseTimeout, log)
		if err != nil {
			client.Disconnect(250)
			return nil, nil, err
		}
		return m, func() {
			if err := m.Close(); err != nil {
				log.Warn("failed to unsubscribe", zap.Error(err))
			}
			client.Disconnect(250)
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown reporting transport %q", cfg.Reporting.Transport)
	}
}

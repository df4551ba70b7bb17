package transport

import (
	"context"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/itohio/envmon/pkg/config"
	"go.uber.org/zap"
)

// ErrNoResponse is returned when the collector did not answer in time.
var ErrNoResponse = errors.New("no response from collector")

// ReadingsTopic is where a device publishes reports.
func ReadingsTopic(prefix, deviceID string) string {
	return prefix + "/" + deviceID + "/readings"
}

// ResponseTopic is where the collector answers a device.
func ResponseTopic(prefix, deviceID string) string {
	return prefix + "/" + deviceID + "/response"
}

// Connect creates an MQTT client and connects it to the configured broker.
func Connect(cfg config.MQTTConfig, log *zap.Logger) (mqtt.Client, error) {
	if log == nil {
		log = zap.L()
	}

	opts := mqtt.NewClientOptions().AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Warn("mqtt connection lost", zap.Error(err))
	})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(cfg.ConnectTimeout) {
		return nil, fmt.Errorf("connect to %s: timed out after %s", cfg.Broker, cfg.ConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.Broker, err)
	}

	log.Info("connected to MQTT broker", zap.String("broker", cfg.Broker))
	return client, nil
}

// MQTT publishes reports and waits for the collector's reply on the device's
// response topic.
type MQTT struct {
	client    mqtt.Client
	qos       byte
	readings  string
	response  string
	timeout   time.Duration
	log       *zap.Logger
	responses chan []byte
}

// NewMQTT subscribes to the device's response topic and returns the transport.
func NewMQTT(client mqtt.Client, prefix, deviceID string, qos byte, timeout time.Duration, log *zap.Logger) (*MQTT, error) {
	if log == nil {
		log = zap.L()
	}
	m := &MQTT{
		client:    client,
		qos:       qos,
		readings:  ReadingsTopic(prefix, deviceID),
		response:  ResponseTopic(prefix, deviceID),
		timeout:   timeout,
		log:       log.Named("mqtt"),
		responses: make(chan []byte, 1),
	}

	token := client.Subscribe(m.response, qos, m.onResponse)
	token.Wait()
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", m.response, err)
	}
	return m, nil
}

func (m *MQTT) onResponse(_ mqtt.Client, msg mqtt.Message) {
	select {
	case m.responses <- msg.Payload():
	default:
		m.log.Debug("dropping unsolicited response", zap.String("topic", msg.Topic()))
	}
}

// Send publishes payload and returns the next response.
func (m *MQTT) Send(ctx context.Context, payload []byte) ([]byte, error) {
	if !m.client.IsConnected() {
		return nil, errors.New("mqtt client not connected")
	}

	// A late reply to an earlier report must not answer this one.
	select {
	case <-m.responses:
	default:
	}

	token := m.client.Publish(m.readings, m.qos, false, payload)
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return nil, fmt.Errorf("publish %s: %w", m.readings, err)
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	var timeout <-chan time.Time
	if m.timeout > 0 {
		t := time.NewTimer(m.timeout)
		defer t.Stop()
		timeout = t.C
	}

	select {
	case body := <-m.responses:
		return body, nil
	case <-timeout:
		return nil, ErrNoResponse
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close unsubscribes from the response topic.
func (m *MQTT) Close() error {
	token := m.client.Unsubscribe(m.response)
	token.Wait()
	return token.Error()
}

package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/itohio/envmon/pkg/transport"
	"go.uber.org/zap"
)

const bridgeIngestTimeout = 5 * time.Second

// Bridge ingests reports published over MQTT and publishes each reply on the
// device's response topic. Failed reports get no reply.
type Bridge struct {
	client mqtt.Client
	svc    *Service
	prefix string
	qos    byte
	log    *zap.Logger
	ctx    context.Context
}

// NewBridge creates a bridge for topics under prefix.
func NewBridge(client mqtt.Client, svc *Service, prefix string, qos byte, log *zap.Logger) *Bridge {
	if log == nil {
		log = zap.L()
	}
	return &Bridge{
		client: client,
		svc:    svc,
		prefix: prefix,
		qos:    qos,
		log:    log.Named("bridge"),
		ctx:    context.Background(),
	}
}

func (b *Bridge) filter() string {
	return transport.ReadingsTopic(b.prefix, "+")
}

// Start subscribes to the readings of every device. ctx bounds ingestion.
func (b *Bridge) Start(ctx context.Context) error {
	b.ctx = ctx
	token := b.client.Subscribe(b.filter(), b.qos, b.onReading)
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe %s: %w", b.filter(), err)
	}
	b.log.Info("bridge subscribed", zap.String("topic", b.filter()))
	return nil
}

// Stop unsubscribes.
func (b *Bridge) Stop() error {
	token := b.client.Unsubscribe(b.filter())
	token.Wait()
	return token.Error()
}

func (b *Bridge) onReading(_ mqtt.Client, msg mqtt.Message) {
	deviceID, ok := b.deviceID(msg.Topic())
	if !ok {
		b.log.Warn("unexpected topic", zap.String("topic", msg.Topic()))
		return
	}
	log := b.log.With(zap.String("device_id", deviceID))

	var req IngestRequest
	if err := json.Unmarshal(msg.Payload(), &req); err != nil {
		log.Warn("malformed report", zap.Error(err))
		return
	}
	if req.DeviceID != "" && req.DeviceID != deviceID {
		log.Warn("report device id does not match topic", zap.String("payload_device_id", req.DeviceID))
	}
	req.DeviceID = deviceID

	ctx, cancel := context.WithTimeout(b.ctx, bridgeIngestTimeout)
	defer cancel()
	resp, err := b.svc.Ingest(ctx, req)
	if err != nil {
		log.Warn("report rejected", zap.Error(err))
		return
	}

	payload, err := json.Marshal(resp)
	if err != nil {
		log.Error("failed to encode response", zap.Error(err))
		return
	}

	topic := transport.ResponseTopic(b.prefix, deviceID)
	token := b.client.Publish(topic, b.qos, false, payload)
	// Message handlers must not block on tokens.
	go func() {
		<-token.Done()
		if err := token.Error(); err != nil {
			log.Warn("failed to publish response", zap.String("topic", topic), zap.Error(err))
		}
	}()
}

// deviceID extracts the device from <prefix>/<device>/readings.
func (b *Bridge) deviceID(topic string) (string, bool) {
	rest, ok := strings.CutPrefix(topic, b.prefix+"/")
	if !ok {
		return "", false
	}
	id, ok := strings.CutSuffix(rest, "/readings")
	if !ok || id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}

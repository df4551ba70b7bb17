package collector

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/itohio/envmon/pkg/monitor"
	"github.com/itohio/envmon/pkg/mqtttest"
	"github.com/itohio/envmon/pkg/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newBridge(t *testing.T) (*Bridge, *mqtttest.Client, *Service) {
	t.Helper()
	svc, _, _ := newService(t)
	client := mqtttest.New()
	b := NewBridge(client, svc, "envmon", 1, zaptest.NewLogger(t))
	require.NoError(t, b.Start(context.Background()))
	return b, client, svc
}

func report(t *testing.T, deviceID string) []byte {
	t.Helper()
	body, err := json.Marshal(monitor.Report{DeviceID: deviceID, Gas: 50, Temperature: 20, Humidity: 50, Red: 100, Green: 100, Blue: 100})
	require.NoError(t, err)
	return body
}

func TestBridge_AnswersDeviceTransport(t *testing.T) {
	_, client, svc := newBridge(t)
	assert.True(t, client.Subscribed("envmon/+/readings"))

	dev, err := transport.NewMQTT(client, "envmon", "ESP32_01", 1, time.Second, zaptest.NewLogger(t))
	require.NoError(t, err)

	body, err := dev.Send(context.Background(), report(t, "ESP32_01"))
	require.NoError(t, err)

	resp, err := monitor.DecodeResponse(body)
	require.NoError(t, err)
	assert.Equal(t, monitor.DirectiveOn, resp.Directive)
	require.NotNil(t, resp.Status)
	assert.Equal(t, StatusFresh, *resp.Status)

	r, err := svc.Store().Latest(context.Background(), "ESP32_01")
	require.NoError(t, err)
	assert.Equal(t, 100, r.FQI)
}

func TestBridge_InactiveDeviceIsToldOff(t *testing.T) {
	_, client, svc := newBridge(t)
	ctx := context.Background()

	_, err := svc.Store().EnsureDevice(ctx, "ESP32_01")
	require.NoError(t, err)
	_, err = svc.Store().Toggle(ctx, "ESP32_01")
	require.NoError(t, err)

	dev, err := transport.NewMQTT(client, "envmon", "ESP32_01", 1, time.Second, zaptest.NewLogger(t))
	require.NoError(t, err)

	body, err := dev.Send(ctx, report(t, "ESP32_01"))
	require.NoError(t, err)
	resp, err := monitor.DecodeResponse(body)
	require.NoError(t, err)
	assert.Equal(t, monitor.DirectiveOff, resp.Directive)
	require.NotNil(t, resp.Status)
	assert.Equal(t, StatusOffline, *resp.Status)
}

func TestBridge_TopicIdentifiesDevice(t *testing.T) {
	_, client, svc := newBridge(t)

	client.Publish("envmon/pantry/readings", 1, false, report(t, "someone-else"))

	_, err := svc.Store().Latest(context.Background(), "pantry")
	require.NoError(t, err)
	_, err = svc.Store().Device(context.Background(), "someone-else")
	assert.ErrorIs(t, err, ErrNotFound)

	published := client.Published()
	require.Len(t, published, 2)
	assert.Equal(t, "envmon/pantry/response", published[1].Topic)
}

func TestBridge_NoReplyOnFailure(t *testing.T) {
	_, client, _ := newBridge(t)

	client.Publish("envmon/pantry/readings", 1, false, []byte("{not json"))
	client.Publish("envmon/pantry/readings", 1, false, []byte(`{"mq135":1}`))

	published := client.Published()
	require.Len(t, published, 2)
	for _, p := range published {
		assert.Equal(t, "envmon/pantry/readings", p.Topic)
	}
}

func TestBridge_Stop(t *testing.T) {
	b, client, _ := newBridge(t)
	require.NoError(t, b.Stop())
	assert.False(t, client.Subscribed("envmon/+/readings"))
}

func TestBridge_DeviceID(t *testing.T) {
	b := &Bridge{prefix: "envmon"}

	tests := []struct {
		topic  string
		want   string
		wantOK bool
	}{
		{"envmon/ESP32_01/readings", "ESP32_01", true},
		{"envmon//readings", "", false},
		{"envmon/a/b/readings", "", false},
		{"other/ESP32_01/readings", "", false},
		{"envmon/ESP32_01/response", "", false},
	}
	for _, tt := range tests {
		got, ok := b.deviceID(tt.topic)
		assert.Equal(t, tt.wantOK, ok, tt.topic)
		assert.Equal(t, tt.want, got, tt.topic)
	}
}

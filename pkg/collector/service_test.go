package collector

import (
	"context"
	"testing"
	"time"

	"github.com/itohio/envmon/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type recorded struct {
	ingested []string
	rejected []string
}

func (r *recorded) Ingested(deviceID, status string, _ float64) {
	r.ingested = append(r.ingested, deviceID+":"+status)
}

func (r *recorded) Rejected(reason string) { r.rejected = append(r.rejected, reason) }

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time          { return c.now }
func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newService(t *testing.T) (*Service, *recorded, *testClock) {
	t.Helper()
	rec := &recorded{}
	clock := &testClock{now: time.Unix(1700000000, 0)}
	svc := NewService(openStore(t), config.CollectorConfig{IngestEvery: time.Second, IngestBurst: 1}, rec, zaptest.NewLogger(t))
	svc.now = clock.Now
	return svc, rec, clock
}

func ptr(v float64) *float64 { return &v }

func freshReport(deviceID string) IngestRequest {
	return IngestRequest{
		DeviceID:    deviceID,
		Gas:         ptr(50),
		Temperature: ptr(20),
		Humidity:    ptr(50),
		Red:         100,
		Green:       100,
		Blue:        100,
	}
}

func TestService_IngestStoresGradedReading(t *testing.T) {
	ctx := context.Background()
	svc, rec, clock := newService(t)

	resp, err := svc.Ingest(ctx, freshReport("dev"))
	require.NoError(t, err)
	assert.True(t, resp.Stored)
	assert.Equal(t, "Saved", resp.Message)
	assert.Equal(t, StatusFresh, resp.Status)
	assert.Equal(t, CommandOn, resp.Command)
	require.NotNil(t, resp.FQI)
	assert.Equal(t, 100, *resp.FQI)
	assert.Equal(t, "± 33.3 h", resp.EstimatedLife)

	r, err := svc.Store().Latest(ctx, "dev")
	require.NoError(t, err)
	assert.Equal(t, "White rice", r.FoodName)
	assert.Equal(t, 100, r.FQI)
	assert.True(t, r.Timestamp.Equal(clock.now))
	assert.Equal(t, []string{"dev:Fresh"}, rec.ingested)
}

func TestService_IngestUsesDeviceProfile(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	_, err := svc.Store().EnsureDevice(ctx, "fridge")
	require.NoError(t, err)
	ps, err := svc.Store().Profiles(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.Store().SetProfile(ctx, "fridge", ps[1].ID))

	// Close to critical for rice, fine for meat.
	req := freshReport("fridge")
	req.Gas = ptr(230)
	resp, err := svc.Ingest(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, StatusFresh, resp.Status)

	r, err := svc.Store().Latest(ctx, "fridge")
	require.NoError(t, err)
	assert.Equal(t, "Beef/Chicken", r.FoodName)
}

func TestService_InactiveDeviceIsToldOff(t *testing.T) {
	ctx := context.Background()
	svc, rec, _ := newService(t)

	_, err := svc.Store().EnsureDevice(ctx, "dev")
	require.NoError(t, err)
	_, err = svc.Store().Toggle(ctx, "dev")
	require.NoError(t, err)

	// Required fields are not checked for inactive devices.
	resp, err := svc.Ingest(ctx, IngestRequest{DeviceID: "dev"})
	require.NoError(t, err)
	assert.False(t, resp.Stored)
	assert.Equal(t, IngestResponse{Message: "Device OFF", Status: StatusOffline, Command: CommandOff}, resp)

	_, err = svc.Store().Latest(ctx, "dev")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, []string{"inactive"}, rec.rejected)
}

func TestService_RejectsIncompleteReports(t *testing.T) {
	ctx := context.Background()
	svc, rec, _ := newService(t)

	_, err := svc.Ingest(ctx, IngestRequest{Gas: ptr(1), Temperature: ptr(1), Humidity: ptr(1)})
	assert.ErrorIs(t, err, ErrInvalidReading)

	req := freshReport("dev")
	req.Humidity = nil
	_, err = svc.Ingest(ctx, req)
	assert.ErrorIs(t, err, ErrInvalidReading)

	assert.Equal(t, []string{"invalid", "invalid"}, rec.rejected)
	assert.Empty(t, rec.ingested)
}

func TestService_RateLimitsPerDevice(t *testing.T) {
	ctx := context.Background()
	svc, rec, clock := newService(t)

	_, err := svc.Ingest(ctx, freshReport("a"))
	require.NoError(t, err)

	_, err = svc.Ingest(ctx, freshReport("a"))
	assert.ErrorIs(t, err, ErrRateLimited)

	// Other devices have their own budget.
	_, err = svc.Ingest(ctx, freshReport("b"))
	require.NoError(t, err)

	clock.Advance(time.Second)
	_, err = svc.Ingest(ctx, freshReport("a"))
	require.NoError(t, err)

	assert.Equal(t, []string{"rate_limited"}, rec.rejected)
	assert.Len(t, rec.ingested, 3)
}

package collector

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "envmon.db"), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_SeedsProfiles(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "envmon.db")

	s, err := Open(ctx, path, zaptest.NewLogger(t))
	require.NoError(t, err)
	ps, err := s.Profiles(ctx)
	require.NoError(t, err)
	require.Len(t, ps, len(DefaultProfiles))
	assert.Equal(t, "White rice", ps[0].Name)
	assert.Equal(t, KindRice, ps[0].Kind)
	assert.Equal(t, 250.0, ps[0].GasCritical)
	require.NoError(t, s.Close())

	// Reopening must not duplicate profiles.
	s, err = Open(ctx, path, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer s.Close()
	again, err := s.Profiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, ps, again)

	p, err := s.Profile(ctx, ps[2].ID)
	require.NoError(t, err)
	assert.Equal(t, "Tofu", p.Name)

	_, err = s.Profile(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Devices(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	_, err := s.Device(ctx, "ESP32_01")
	assert.ErrorIs(t, err, ErrNotFound)

	d, err := s.EnsureDevice(ctx, "ESP32_01")
	require.NoError(t, err)
	assert.Equal(t, "ESP32_01", d.ID)
	assert.True(t, d.Active)
	ps, err := s.Profiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, ps[0].ID, d.ProfileID)

	// Registering again keeps the existing row.
	require.NoError(t, s.SetProfile(ctx, "ESP32_01", ps[3].ID))
	d, err = s.EnsureDevice(ctx, "ESP32_01")
	require.NoError(t, err)
	assert.Equal(t, ps[3].ID, d.ProfileID)

	assert.ErrorIs(t, s.SetProfile(ctx, "ESP32_01", 999), ErrNotFound)
	assert.ErrorIs(t, s.SetProfile(ctx, "ghost", ps[0].ID), ErrNotFound)

	active, err := s.Toggle(ctx, "ESP32_01")
	require.NoError(t, err)
	assert.False(t, active)
	d, err = s.Device(ctx, "ESP32_01")
	require.NoError(t, err)
	assert.False(t, d.Active)

	active, err = s.Toggle(ctx, "ESP32_01")
	require.NoError(t, err)
	assert.True(t, active)

	_, err = s.Toggle(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Readings(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	_, err := s.EnsureDevice(ctx, "dev")
	require.NoError(t, err)

	_, err = s.Latest(ctx, "dev")
	assert.ErrorIs(t, err, ErrNotFound)

	start := time.Unix(1700000000, 0)
	for i := range 3 {
		id, err := s.AddReading(ctx, Reading{
			DeviceID:      "dev",
			Timestamp:     start.Add(time.Duration(i) * time.Second),
			FoodName:      "White rice",
			Gas:           100 + float64(i),
			Temperature:   20.5,
			Humidity:      60,
			Red:           1,
			Green:         2,
			Blue:          3,
			FQI:           90 - i,
			Status:        StatusFresh,
			EstimatedLife: "± 26.7 h",
		})
		require.NoError(t, err)
		assert.Positive(t, id)
	}

	latest, err := s.Latest(ctx, "dev")
	require.NoError(t, err)
	assert.Equal(t, 102.0, latest.Gas)
	assert.Equal(t, 88, latest.FQI)
	assert.True(t, latest.Timestamp.Equal(start.Add(2*time.Second)))
	assert.Equal(t, "± 26.7 h", latest.EstimatedLife)
	assert.Equal(t, 2, latest.Green)

	history, err := s.History(ctx, "dev", 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 102.0, history[0].Gas)
	assert.Equal(t, 101.0, history[1].Gas)

	all, err := s.Readings(ctx, "dev")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 100.0, all[0].Gas)
	assert.Equal(t, 102.0, all[2].Gas)

	none, err := s.History(ctx, "other", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/itohio/envmon/pkg/monitor"
	"github.com/itohio/envmon/pkg/sensor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Events(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewController(reg)

	m.SensorInvalid()
	m.SensorInvalid()
	m.ReportSent(monitor.Report{})
	m.ReportFailed("transport")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.sensorInvalid))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reportsSent))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reportsFailed.WithLabelValues("transport")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.reportsFailed.WithLabelValues("protocol")))
}

func TestController_Sensed(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewController(reg)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.active))

	m.Sensed(monitor.Snapshot{
		Temperature: 28.5,
		Humidity:    60,
		Gas:         120,
		Color:       sensor.ColorSample{Red: 10, Green: 20, Blue: 30},
		Phase:       monitor.Ready,
		Baseline:    118,
		Active:      false,
	})

	assert.Equal(t, 0.0, testutil.ToFloat64(m.active))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.calibrated))
	assert.Equal(t, 118.0, testutil.ToFloat64(m.baseline))
	assert.Equal(t, 28.5, testutil.ToFloat64(m.reading.WithLabelValues("temperature")))
	assert.Equal(t, 120.0, testutil.ToFloat64(m.reading.WithLabelValues("gas")))
	assert.Equal(t, 20.0, testutil.ToFloat64(m.color.WithLabelValues("green")))
}

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCollector(reg)

	m.Ingested("DEV", "Fresh", 98)
	m.Ingested("DEV", "Fresh", 97)
	m.Rejected("rate_limited")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ingested.WithLabelValues("Fresh")))
	assert.Equal(t, 97.0, testutil.ToFloat64(m.fqi.WithLabelValues("DEV")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rejected.WithLabelValues("rate_limited")))
}

func TestHandler(t *testing.T) {
	reg := NewRegistry()
	m := NewController(reg)
	m.ReportSent(monitor.Report{})

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "envmon_reports_sent_total 1")
	assert.Contains(t, string(body), "go_goroutines")
}

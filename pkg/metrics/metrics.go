// Package metrics exposes controller and collector state to Prometheus.
package metrics

import (
	"net/http"

	"github.com/itohio/envmon/pkg/monitor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "envmon"

// NewRegistry returns a registry with Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler serves the registry in the Prometheus text format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// Controller records control loop events. It implements monitor.Observer.
type Controller struct {
	reportsSent   prometheus.Counter
	reportsFailed *prometheus.CounterVec
	sensorInvalid prometheus.Counter
	active        prometheus.Gauge
	calibrated    prometheus.Gauge
	baseline      prometheus.Gauge
	reading       *prometheus.GaugeVec
	color         *prometheus.GaugeVec
}

var _ monitor.Observer = (*Controller)(nil)

// NewController creates and registers the control loop metrics.
func NewController(reg prometheus.Registerer) *Controller {
	m := &Controller{
		reportsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_sent_total",
			Help:      "Reports delivered to the collector.",
		}),
		reportsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_failed_total",
			Help:      "Reports that failed, by failure kind.",
		}, []string{"kind"}),
		sensorInvalid: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sensor_invalid_total",
			Help:      "Sensing cycles whose filter update was skipped.",
		}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active",
			Help:      "1 while the device is active.",
		}),
		calibrated: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "calibrated",
			Help:      "1 once gas calibration has completed.",
		}),
		baseline: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "gas_baseline",
			Help:      "Gas baseline established during calibration, raw ADC counts.",
		}),
		reading: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reading",
			Help:      "Filtered sensor readings.",
		}, []string{"channel"}),
		color: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "color_pulse_microseconds",
			Help:      "Raw colour sensor pulse widths.",
		}, []string{"channel"}),
	}

	reg.MustRegister(
		m.reportsSent,
		m.reportsFailed,
		m.sensorInvalid,
		m.active,
		m.calibrated,
		m.baseline,
		m.reading,
		m.color,
	)

	for _, kind := range []string{"transport", "protocol"} {
		m.reportsFailed.WithLabelValues(kind)
	}
	m.active.Set(1)

	return m
}

func (m *Controller) Sensed(s monitor.Snapshot) {
	m.active.Set(boolGauge(s.Active))
	m.calibrated.Set(boolGauge(s.Phase == monitor.Ready))
	m.baseline.Set(float64(s.Baseline))
	m.reading.WithLabelValues("temperature").Set(float64(s.Temperature))
	m.reading.WithLabelValues("humidity").Set(float64(s.Humidity))
	m.reading.WithLabelValues("gas").Set(float64(s.Gas))
	m.color.WithLabelValues("red").Set(float64(s.Color.Red))
	m.color.WithLabelValues("green").Set(float64(s.Color.Green))
	m.color.WithLabelValues("blue").Set(float64(s.Color.Blue))
}

func (m *Controller) SensorInvalid()            { m.sensorInvalid.Inc() }
func (m *Controller) ReportSent(monitor.Report) { m.reportsSent.Inc() }
func (m *Controller) ReportFailed(kind string)  { m.reportsFailed.WithLabelValues(kind).Inc() }

// Collector records collector service events.
type Collector struct {
	ingested *prometheus.CounterVec
	rejected *prometheus.CounterVec
	fqi      *prometheus.GaugeVec
}

// NewCollector creates and registers the collector metrics.
func NewCollector(reg prometheus.Registerer) *Collector {
	m := &Collector{
		ingested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "collector",
			Name:      "readings_ingested_total",
			Help:      "Readings stored, by freshness status.",
		}, []string{"status"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "collector",
			Name:      "readings_rejected_total",
			Help:      "Readings not stored, by reason.",
		}, []string{"reason"}),
		fqi: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "collector",
			Name:      "food_quality_index",
			Help:      "Latest food quality index per device.",
		}, []string{"device_id"}),
	}

	reg.MustRegister(m.ingested, m.rejected, m.fqi)
	return m
}

// Ingested counts a stored reading and records its quality index.
func (m *Collector) Ingested(deviceID, status string, fqi float64) {
	m.ingested.WithLabelValues(status).Inc()
	m.fqi.WithLabelValues(deviceID).Set(fqi)
}

// Rejected counts a reading that was not stored.
func (m *Collector) Rejected(reason string) {
	m.rejected.WithLabelValues(reason).Inc()
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

package collector

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/itohio/envmon/pkg/config"
	"github.com/itohio/envmon/pkg/monitor"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Commands returned to devices.
const (
	CommandOn  = "ON"
	CommandOff = monitor.CommandOff
)

var (
	// ErrInvalidReading is returned when a report misses required fields.
	ErrInvalidReading = errors.New("invalid reading")
	// ErrRateLimited is returned when a device reports faster than allowed.
	ErrRateLimited = errors.New("too many readings")
)

// Recorder observes ingestion outcomes.
type Recorder interface {
	Ingested(deviceID, status string, fqi float64)
	Rejected(reason string)
}

type nopRecorder struct{}

func (nopRecorder) Ingested(string, string, float64) {}
func (nopRecorder) Rejected(string)                  {}

// IngestRequest is a device report.
type IngestRequest struct {
	DeviceID    string   `json:"device_id"`
	Gas         *float64 `json:"mq135"`
	Temperature *float64 `json:"temp"`
	Humidity    *float64 `json:"humidity"`
	Red         int      `json:"r"`
	Green       int      `json:"g"`
	Blue        int      `json:"b"`
}

// IngestResponse is the reply to a device report.
type IngestResponse struct {
	Message       string `json:"message"`
	Status        string `json:"status"`
	FQI           *int   `json:"fqi,omitempty"`
	EstimatedLife string `json:"est_time,omitempty"`
	Command       string `json:"command"`

	// Stored is set when the reading was persisted.
	Stored bool `json:"-"`
}

// Service grades and stores device reports.
type Service struct {
	store *Store
	rec   Recorder
	log   *zap.Logger
	now   func() time.Time

	every rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewService creates a service on top of store. rec may be nil.
func NewService(store *Store, cfg config.CollectorConfig, rec Recorder, log *zap.Logger) *Service {
	if rec == nil {
		rec = nopRecorder{}
	}
	if log == nil {
		log = zap.L()
	}

	every := rate.Inf
	if cfg.IngestEvery > 0 {
		every = rate.Every(cfg.IngestEvery)
	}
	burst := cfg.IngestBurst
	if burst <= 0 {
		burst = 1
	}

	return &Service{
		store:    store,
		rec:      rec,
		log:      log.Named("collector"),
		now:      time.Now,
		every:    every,
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Store returns the underlying store.
func (s *Service) Store() *Store { return s.store }

// Ingest grades and stores a report. Reports of inactive devices are not
// stored and are answered with CommandOff.
func (s *Service) Ingest(ctx context.Context, req IngestRequest) (IngestResponse, error) {
	if req.DeviceID == "" {
		s.rec.Rejected("invalid")
		return IngestResponse{}, fmt.Errorf("%w: device_id is required", ErrInvalidReading)
	}

	dev, err := s.store.EnsureDevice(ctx, req.DeviceID)
	if err != nil {
		return IngestResponse{}, err
	}
	if !dev.Active {
		s.rec.Rejected("inactive")
		return IngestResponse{Message: "Device OFF", Status: StatusOffline, Command: CommandOff}, nil
	}

	if req.Gas == nil || req.Temperature == nil || req.Humidity == nil {
		s.rec.Rejected("invalid")
		return IngestResponse{}, fmt.Errorf("%w: mq135, temp and humidity are required", ErrInvalidReading)
	}

	now := s.now()
	if !s.limiter(dev.ID).AllowN(now, 1) {
		s.rec.Rejected("rate_limited")
		return IngestResponse{}, fmt.Errorf("device %q: %w", dev.ID, ErrRateLimited)
	}

	profile, err := s.store.Profile(ctx, dev.ProfileID)
	if err != nil {
		return IngestResponse{}, err
	}

	a := Assess(Sample{
		Gas:         *req.Gas,
		Temperature: *req.Temperature,
		Humidity:    *req.Humidity,
		Red:         req.Red,
		Green:       req.Green,
		Blue:        req.Blue,
	}, profile)

	_, err = s.store.AddReading(ctx, Reading{
		DeviceID:      dev.ID,
		Timestamp:     now,
		FoodName:      profile.Name,
		Gas:           *req.Gas,
		Temperature:   *req.Temperature,
		Humidity:      *req.Humidity,
		Red:           req.Red,
		Green:         req.Green,
		Blue:          req.Blue,
		FQI:           a.FQI,
		Status:        a.Status,
		EstimatedLife: a.EstimatedLife,
	})
	if err != nil {
		return IngestResponse{}, err
	}

	s.rec.Ingested(dev.ID, a.Status, float64(a.FQI))
	s.log.Debug("reading stored",
		zap.String("device_id", dev.ID),
		zap.String("food", profile.Name),
		zap.Int("fqi", a.FQI),
		zap.String("status", a.Status),
	)

	fqi := a.FQI
	return IngestResponse{
		Message:       "Saved",
		Status:        a.Status,
		FQI:           &fqi,
		EstimatedLife: a.EstimatedLife,
		Command:       CommandOn,
		Stored:        true,
	}, nil
}

func (s *Service) limiter(deviceID string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.limiters[deviceID]
	if !ok {
		l = rate.NewLimiter(s.every, s.burst)
		s.limiters[deviceID] = l
	}
	return l
}

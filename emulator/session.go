package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/envmon/pkg/collector"
	"github.com/itohio/envmon/pkg/config"
	"github.com/itohio/envmon/pkg/monitor"
	"github.com/itohio/envmon/pkg/scope"
	"github.com/itohio/envmon/pkg/sensor"
	"github.com/itohio/envmon/pkg/transport"
	"go.uber.org/zap"
)

// uiUpdateInterval throttles trend updates.
const uiUpdateInterval = 250 * time.Millisecond

// appState holds the application state.
type appState struct {
	cfg        *config.Config
	configPath string
	log        *zap.Logger
	local      *collector.Service // nil when reporting to a remote collector

	window      fyne.Window
	lcd         *lcdPanel
	gasTrend    *scope.Trend
	tempTrend   *scope.Trend
	humTrend    *scope.Trend
	statusLabel *widget.Label
	startBtn    *widget.Button
	faultBtn    *widget.Button
	powerBtn    *widget.Button

	session *session
	fault   bool
}

// session is one running controller and its mock rig.
type session struct {
	mock   *sensor.Mock
	cancel context.CancelFunc
	done   chan struct{}
}

func (s *appState) running() bool {
	return s.session != nil
}

// handleStart starts or stops the controller.
func handleStart(state *appState) {
	if state.running() {
		state.stop()
		state.startBtn.SetText("Start")
		state.startBtn.SetIcon(theme.MediaPlayIcon())
		state.faultBtn.Disable()
		state.statusLabel.SetText("Stopped")
		return
	}

	if err := state.start(); err != nil {
		dialog.ShowError(err, state.window)
		return
	}
	state.startBtn.SetText("Stop")
	state.startBtn.SetIcon(theme.MediaStopIcon())
	state.faultBtn.Enable()
}

func (s *appState) start() error {
	tr, err := s.transport()
	if err != nil {
		return err
	}

	mock := sensor.NewMock(&s.cfg.Hardware.Mock)
	if err := mock.Connect(); err != nil {
		return fmt.Errorf("failed to connect mock rig: %w", err)
	}
	mock.SetFault(s.fault)

	s.gasTrend.Reset()
	s.tempTrend.Reset()
	s.humTrend.Reset()
	s.lcd.SetBacklight(true)

	opts := append(monitor.ConfigOptions(s.cfg),
		monitor.WithLogger(s.log),
		monitor.WithObserver(&uiObserver{state: s}),
	)
	controller := monitor.New(s.cfg.Device.ID, mock, s.lcd, tr, opts...)

	ctx, cancel := context.WithCancel(context.Background())
	sess := &session{mock: mock, cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(sess.done)
		if err := controller.Run(ctx); err != nil {
			s.log.Error("controller failed", zap.Error(err))
		}
	}()
	s.session = sess
	return nil
}

// stop cancels the controller and waits for its loop to exit.
func (s *appState) stop() {
	if s.session == nil {
		return
	}
	s.session.cancel()
	<-s.session.done
	s.session.mock.Close()
	s.session = nil
}

func (s *appState) transport() (monitor.Transport, error) {
	if s.local != nil {
		return localTransport{svc: s.local}, nil
	}
	if s.cfg.Reporting.Transport != "http" {
		return nil, fmt.Errorf("the emulator reports over http only, got %q", s.cfg.Reporting.Transport)
	}
	return transport.NewHTTP(s.cfg.Reporting.Endpoint, s.cfg.Reporting.Timeout, s.log), nil
}

// handleFaultToggle switches simulated climate read failures on or off.
func handleFaultToggle(state *appState) {
	state.fault = !state.fault
	if state.session != nil {
		state.session.mock.SetFault(state.fault)
	}
	if state.fault {
		state.faultBtn.Importance = widget.DangerImportance
	} else {
		state.faultBtn.Importance = widget.MediumImportance
	}
	state.faultBtn.Refresh()
}

// handlePowerToggle flips the device's active flag in the in-process collector.
// The controller follows on its next report.
func handlePowerToggle(state *appState) {
	if state.local == nil {
		return
	}
	ctx := context.Background()
	store := state.local.Store()
	if _, err := store.EnsureDevice(ctx, state.cfg.Device.ID); err != nil {
		dialog.ShowError(err, state.window)
		return
	}
	active, err := store.Toggle(ctx, state.cfg.Device.ID)
	if err != nil {
		dialog.ShowError(err, state.window)
		return
	}

	if active {
		state.powerBtn.SetText("Collector: ON")
		state.powerBtn.SetIcon(theme.ConfirmIcon())
	} else {
		state.powerBtn.SetText("Collector: OFF")
		state.powerBtn.SetIcon(theme.CancelIcon())
	}
}

// uiObserver forwards controller events to the window.
type uiObserver struct {
	state *appState

	mu         sync.Mutex
	lastUpdate time.Time
	lastReport string
}

func (o *uiObserver) Sensed(s monitor.Snapshot) {
	o.mu.Lock()
	now := time.Now()
	if now.Sub(o.lastUpdate) < uiUpdateInterval {
		o.mu.Unlock()
		return
	}
	o.lastUpdate = now
	report := o.lastReport
	o.mu.Unlock()

	status := fmt.Sprintf("%s | %s | active: %t | status: %s | colour: %s",
		s.DeviceID, phaseText(s), s.Active, s.Status, s.Dominant)
	if report != "" {
		status += " | " + report
	}

	fyne.Do(func() {
		o.state.gasTrend.Add(now, s.Gas)
		o.state.tempTrend.Add(now, s.Temperature)
		o.state.humTrend.Add(now, s.Humidity)
		if s.Phase == monitor.Ready {
			o.state.gasTrend.SetReference(s.Baseline)
		}
		o.state.statusLabel.SetText(status)
	})
}

func (o *uiObserver) SensorInvalid() {}

func (o *uiObserver) ReportSent(monitor.Report) {
	o.setReport("last report ok at " + time.Now().Format(time.TimeOnly))
}

func (o *uiObserver) ReportFailed(kind string) {
	o.setReport("last report failed (" + kind + ")")
}

func (o *uiObserver) setReport(s string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lastReport = s
}

func phaseText(s monitor.Snapshot) string {
	if s.Phase == monitor.Ready {
		return fmt.Sprintf("baseline %.0f", s.Baseline)
	}
	return "calibrating"
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/itohio/envmon/pkg/config"
	"github.com/itohio/envmon/pkg/logging"
	"github.com/itohio/envmon/pkg/metrics"
	"github.com/itohio/envmon/pkg/monitor"
	"github.com/itohio/envmon/pkg/sensor"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	var (
		configFlag    = pflag.StringP("config", "c", "config.yaml", "Configuration file path")
		backendFlag   = pflag.StringP("backend", "b", "", "Hardware backend override (mock, serial, raspi)")
		portFlag      = pflag.StringP("port", "p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		endpointFlag  = pflag.String("endpoint", "", "Collector endpoint override")
		deviceFlag    = pflag.String("device-id", "", "Device id override")
		transportFlag = pflag.String("transport", "", "Report transport override (http, mqtt)")
		displayFlag   = pflag.String("display", "", "Display backend override (console, lcd, none)")
		logLevelFlag  = pflag.String("log-level", "", "Log level override")
		listPortsFlag = pflag.Bool("list-ports", false, "List serial ports and exit")
	)
	pflag.Parse()

	if *listPortsFlag {
		ports, err := sensor.Ports()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		for _, p := range ports {
			fmt.Println(p.Name)
		}
		return
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	override(&cfg.Hardware.Backend, *backendFlag)
	override(&cfg.Hardware.Serial.Port, *portFlag)
	override(&cfg.Reporting.Endpoint, *endpointFlag)
	override(&cfg.Device.ID, *deviceFlag)
	override(&cfg.Reporting.Transport, *transportFlag)
	override(&cfg.Display.Backend, *displayFlag)
	override(&cfg.Log.Level, *logLevelFlag)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	zap.ReplaceGlobals(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("envmon exiting", zap.Error(err))
		os.Exit(1)
	}
	log.Info("envmon exiting")
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	dev, err := newDevice(cfg, log)
	if err != nil {
		return err
	}
	if err := dev.Connect(); err != nil {
		return fmt.Errorf("failed to connect %s backend: %w", cfg.Hardware.Backend, err)
	}
	defer func() {
		if err := dev.Close(); err != nil {
			log.Warn("failed to close device", zap.Error(err))
		}
	}()

	disp, err := newDisplay(cfg, dev, log)
	if err != nil {
		return err
	}

	tr, closeTransport, err := newTransport(cfg, log)
	if err != nil {
		return err
	}
	defer closeTransport()

	reg := metrics.NewRegistry()
	opts := append(monitor.ConfigOptions(cfg),
		monitor.WithLogger(log),
		monitor.WithObserver(metrics.NewController(reg)),
	)
	controller := monitor.New(cfg.Device.ID, dev, disp, tr, opts...)

	if cfg.Metrics.Listen != "" {
		srv := &http.Server{Addr: cfg.Metrics.Listen, Handler: metrics.Handler(reg)}
		go func() {
			log.Info("serving metrics", zap.String("listen", cfg.Metrics.Listen))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server failed", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	log.Info("controller started",
		zap.String("device_id", cfg.Device.ID),
		zap.String("backend", cfg.Hardware.Backend),
		zap.String("transport", cfg.Reporting.Transport),
	)
	return controller.Run(ctx)
}

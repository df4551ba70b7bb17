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

	"github.com/gin-gonic/gin"
	"github.com/itohio/envmon/pkg/collector"
	"github.com/itohio/envmon/pkg/config"
	"github.com/itohio/envmon/pkg/logging"
	"github.com/itohio/envmon/pkg/metrics"
	"github.com/itohio/envmon/pkg/transport"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	var (
		configFlag   = pflag.StringP("config", "c", "config.yaml", "Configuration file path")
		listenFlag   = pflag.StringP("listen", "l", "", "HTTP listen address override")
		databaseFlag = pflag.String("database", "", "SQLite database path override")
		bridgeFlag   = pflag.Bool("mqtt-bridge", false, "Also accept reports over MQTT")
		logLevelFlag = pflag.String("log-level", "", "Log level override")
	)
	pflag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *listenFlag != "" {
		cfg.Collector.Listen = *listenFlag
	}
	if *databaseFlag != "" {
		cfg.Collector.Database = *databaseFlag
	}
	if *bridgeFlag {
		cfg.Collector.MQTTBridge = true
	}
	if *logLevelFlag != "" {
		cfg.Log.Level = *logLevelFlag
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
		log.Error("collector stopped", zap.Error(err))
		os.Exit(1)
	}
	log.Info("collector stopped")
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	store, err := collector.Open(ctx, cfg.Collector.Database, log)
	if err != nil {
		return err
	}
	defer store.Close()

	reg := metrics.NewRegistry()
	svc := collector.NewService(store, cfg.Collector, metrics.NewCollector(reg), log)

	if cfg.Collector.MQTTBridge {
		mqttCfg := cfg.MQTT
		mqttCfg.ClientID += "-collector"
		client, err := transport.Connect(mqttCfg, log)
		if err != nil {
			return err
		}
		defer client.Disconnect(250)

		bridge := collector.NewBridge(client, svc, cfg.MQTT.TopicPrefix, cfg.MQTT.QoS, log)
		if err := bridge.Start(ctx); err != nil {
			return err
		}
		defer bridge.Stop()
	}

	gin.SetMode(gin.ReleaseMode)
	api := collector.NewServer(svc, cfg.Collector.HistoryLimit, metrics.Handler(reg), log)
	srv := &http.Server{
		Addr:              cfg.Collector.Listen,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("collector listening", zap.String("listen", cfg.Collector.Listen), zap.String("database", cfg.Collector.Database))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

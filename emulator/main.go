package main

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/envmon/pkg/collector"
	"github.com/itohio/envmon/pkg/config"
	"github.com/itohio/envmon/pkg/logging"
	"github.com/itohio/envmon/pkg/scope"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const trendWindow = 5 * time.Minute

func main() {
	var (
		configFlag = pflag.StringP("config", "c", "config.yaml", "Configuration file path")
		remoteFlag = pflag.Bool("remote", false, "Report to the configured collector instead of an in-process one")
		seedFlag   = pflag.Int64("seed", -1, "Mock random seed override")
	)
	pflag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *seedFlag >= 0 {
		cfg.Hardware.Mock.Seed = *seedFlag
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	state := &appState{
		cfg:        cfg,
		configPath: *configFlag,
		log:        log,
	}

	if !*remoteFlag {
		path := filepath.Join(os.TempDir(), "envmon-emulator.db")
		store, err := collector.Open(context.Background(), path, log)
		if err != nil {
			log.Fatal("failed to open local collector", zap.Error(err))
		}
		defer store.Close()
		state.local = collector.NewService(store, cfg.Collector, nil, log)
		log.Info("using in-process collector", zap.String("database", path))
	}

	application := app.NewWithID("com.itohio.envmon")
	window := application.NewWindow("Environment Monitor")
	window.Resize(fyne.NewSize(900, 640))
	window.CenterOnScreen()
	state.window = window

	state.lcd = newLCDPanel(cfg.Display.Width)
	state.gasTrend = scope.New("Gas", "", trendWindow, color.RGBA{R: 255, G: 165, B: 0, A: 255})
	state.tempTrend = scope.New("Temperature", "°C", trendWindow, color.RGBA{R: 240, G: 80, B: 80, A: 255})
	state.humTrend = scope.New("Humidity", "%", trendWindow, color.RGBA{R: 90, G: 200, B: 120, A: 255})
	state.statusLabel = widget.NewLabel("Stopped")

	trends := container.NewGridWithRows(3, state.gasTrend, state.tempTrend, state.humTrend)
	top := container.NewVBox(createToolbar(state), container.NewCenter(state.lcd.content), state.statusLabel)

	window.SetContent(container.NewBorder(top, nil, nil, nil, trends))
	window.SetOnClosed(func() { state.stop() })
	window.ShowAndRun()
}

// createToolbar creates the Start, Settings, Fault and Power buttons.
func createToolbar(state *appState) fyne.CanvasObject {
	state.startBtn = widget.NewButtonWithIcon("Start", theme.MediaPlayIcon(), func() {
		handleStart(state)
	})

	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(state)
	})

	state.faultBtn = widget.NewButtonWithIcon("Climate fault", theme.WarningIcon(), func() {
		handleFaultToggle(state)
	})
	state.faultBtn.Disable()

	state.powerBtn = widget.NewButtonWithIcon("Collector: ON", theme.ConfirmIcon(), func() {
		handlePowerToggle(state)
	})
	if state.local == nil {
		state.powerBtn.Disable()
	}

	return container.NewBorder(
		nil,
		nil,
		container.NewHBox(state.startBtn, settingsBtn),
		container.NewHBox(state.faultBtn, state.powerBtn),
		nil,
	)
}

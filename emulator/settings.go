package main

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// showSettingsDialog displays a settings dialog with tabs for the emulator configuration.
func showSettingsDialog(state *appState) {
	tabs := container.NewAppTabs(
		createDeviceTab(state),
		createReportingTab(state),
		createMockTab(state),
	)

	content := container.NewBorder(nil, nil, nil, nil, tabs)
	d := dialog.NewCustom("Settings", "Close", content, state.window)
	d.Resize(fyne.NewSize(520, 420))
	d.Show()
}

// saveConfig validates and stores the configuration. A running controller is
// restarted so it picks up the new values.
func saveConfig(state *appState) {
	if err := state.cfg.Validate(); err != nil {
		dialog.ShowError(err, state.window)
		return
	}
	if err := state.cfg.Save(state.configPath); err != nil {
		dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
		return
	}
	if state.running() {
		state.stop()
		if err := state.start(); err != nil {
			dialog.ShowError(err, state.window)
		}
	}
}

// createDeviceTab creates the Device configuration tab.
func createDeviceTab(state *appState) *container.TabItem {
	idEntry := widget.NewEntry()
	idEntry.SetText(state.cfg.Device.ID)

	alphaEntry := widget.NewEntry()
	alphaEntry.SetText(fmt.Sprintf("%.2f", state.cfg.Sensing.Alpha))

	calibrationEntry := widget.NewEntry()
	calibrationEntry.SetText(state.cfg.Sensing.CalibrationWindow.String())

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Device ID", Widget: idEntry},
			{Text: "Smoothing (alpha)", Widget: alphaEntry},
			{Text: "Calibration window", Widget: calibrationEntry},
		},
		OnSubmit: func() {
			if idEntry.Text != "" {
				state.cfg.Device.ID = idEntry.Text
			}
			if a, err := strconv.ParseFloat(alphaEntry.Text, 32); err == nil {
				state.cfg.Sensing.Alpha = float32(a)
			}
			if d, err := time.ParseDuration(calibrationEntry.Text); err == nil {
				state.cfg.Sensing.CalibrationWindow = d
			}
			saveConfig(state)
		},
	}

	return container.NewTabItem("Device", form)
}

// createReportingTab creates the Reporting configuration tab.
func createReportingTab(state *appState) *container.TabItem {
	endpointEntry := widget.NewEntry()
	endpointEntry.SetText(state.cfg.Reporting.Endpoint)

	activeEntry := widget.NewEntry()
	activeEntry.SetText(state.cfg.Reporting.ActiveInterval.String())

	inactiveEntry := widget.NewEntry()
	inactiveEntry.SetText(state.cfg.Reporting.InactiveInterval.String())

	timeoutEntry := widget.NewEntry()
	timeoutEntry.SetText(state.cfg.Reporting.Timeout.String())

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Endpoint", Widget: endpointEntry},
			{Text: "Active interval", Widget: activeEntry},
			{Text: "Inactive interval", Widget: inactiveEntry},
			{Text: "Timeout", Widget: timeoutEntry},
		},
		OnSubmit: func() {
			if endpointEntry.Text != "" {
				state.cfg.Reporting.Endpoint = endpointEntry.Text
			}
			if d, err := time.ParseDuration(activeEntry.Text); err == nil && d > 0 {
				state.cfg.Reporting.ActiveInterval = d
			}
			if d, err := time.ParseDuration(inactiveEntry.Text); err == nil && d > 0 {
				state.cfg.Reporting.InactiveInterval = d
			}
			if d, err := time.ParseDuration(timeoutEntry.Text); err == nil {
				state.cfg.Reporting.Timeout = d
			}
			saveConfig(state)
		},
	}

	return container.NewTabItem("Reporting", form)
}

// createMockTab creates the simulated rig configuration tab.
func createMockTab(state *appState) *container.TabItem {
	mock := &state.cfg.Hardware.Mock

	temperatureEntry := widget.NewEntry()
	temperatureEntry.SetText(fmt.Sprintf("%.1f", mock.Temperature))

	humidityEntry := widget.NewEntry()
	humidityEntry.SetText(fmt.Sprintf("%.1f", mock.Humidity))

	gasEntry := widget.NewEntry()
	gasEntry.SetText(strconv.Itoa(mock.Gas))

	driftEntry := widget.NewEntry()
	driftEntry.SetText(fmt.Sprintf("%.2f", mock.GasDrift))

	noiseEntry := widget.NewEntry()
	noiseEntry.SetText(fmt.Sprintf("%.3f", mock.NoiseLevel))

	faultRateEntry := widget.NewEntry()
	faultRateEntry.SetText(fmt.Sprintf("%.3f", mock.FaultRate))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Temperature (°C)", Widget: temperatureEntry},
			{Text: "Humidity (%RH)", Widget: humidityEntry},
			{Text: "Gas (ADC counts)", Widget: gasEntry},
			{Text: "Gas drift (counts/read)", Widget: driftEntry},
			{Text: "Noise level", Widget: noiseEntry},
			{Text: "Fault rate", Widget: faultRateEntry},
		},
		OnSubmit: func() {
			if v, err := strconv.ParseFloat(temperatureEntry.Text, 32); err == nil {
				mock.Temperature = float32(v)
			}
			if v, err := strconv.ParseFloat(humidityEntry.Text, 32); err == nil {
				mock.Humidity = float32(v)
			}
			if v, err := strconv.Atoi(gasEntry.Text); err == nil {
				mock.Gas = v
			}
			if v, err := strconv.ParseFloat(driftEntry.Text, 32); err == nil {
				mock.GasDrift = float32(v)
			}
			if v, err := strconv.ParseFloat(noiseEntry.Text, 32); err == nil {
				mock.NoiseLevel = float32(v)
			}
			if v, err := strconv.ParseFloat(faultRateEntry.Text, 32); err == nil {
				mock.FaultRate = float32(v)
			}
			saveConfig(state)
		},
	}

	return container.NewTabItem("Mock", form)
}

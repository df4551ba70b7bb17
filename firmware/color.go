//go:build tinygo

package main

import (
	"machine"
	"time"
)

func configureColor() {
	for _, pin := range []machine.Pin{PIN_S0, PIN_S1, PIN_S2, PIN_S3} {
		pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	}
	PIN_OUT.Configure(machine.PinConfig{Mode: machine.PinInput})

	// 20% output frequency scaling
	PIN_S0.High()
	PIN_S1.Low()
}

// readColor returns the LOW pulse width in µs behind the red, green and blue filters.
func readColor() (r, g, b uint32) {
	r = measureColor(false, false)
	g = measureColor(true, true)
	b = measureColor(false, true)
	return r, g, b
}

func measureColor(s2, s3 bool) uint32 {
	PIN_S2.Set(s2)
	PIN_S3.Set(s3)
	time.Sleep(COLOR_SETTLE_MS * time.Millisecond)
	return pulseLow(PIN_OUT, COLOR_TIMEOUT_US)
}

// pulseLow times the next LOW pulse on pin. 0 means timeout.
func pulseLow(pin machine.Pin, timeoutUS int64) uint32 {
	start := time.Now()
	expired := func() bool { return time.Since(start).Microseconds() > timeoutUS }

	// Finish any pulse in progress, then wait for the falling edge
	for !pin.Get() {
		if expired() {
			return 0
		}
	}
	for pin.Get() {
		if expired() {
			return 0
		}
	}

	begin := time.Now()
	for !pin.Get() {
		if expired() {
			return 0
		}
	}
	return uint32(time.Since(begin).Microseconds())
}

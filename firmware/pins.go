//go:build tinygo

package main

import "machine"

const (
	// Sampling configuration
	FRAME_INTERVAL_MS = 250  // Frame output interval in milliseconds
	DHT_INTERVAL_MS   = 2000 // DHT22 needs at least 2 s between reads
	GAS_SAMPLES       = 16   // Gas ADC readings averaged per frame

	// ADC configuration
	ADC_REFERENCE_MV = 3300 // Reference voltage in millivolts (3.3V)
	ADC_RESOLUTION   = 12   // ADC resolution in bits (12-bit = 0-4095)

	// TCS3200 timing
	COLOR_SETTLE_MS  = 10     // Filter settle time after switching S2/S3
	COLOR_TIMEOUT_US = 100000 // Pulse timeout, reported as 0

	// DHT22 timing
	DHT_START_LOW_MS     = 2   // Host start signal
	DHT_BIT_TIMEOUT_US   = 200 // Longest expected level while clocking bits
	DHT_ONE_THRESHOLD_US = 40  // High time separating a 0 bit from a 1 bit

	// Gas sensor (MQ135 analog output)
	PIN_GAS = machine.A0

	// DHT22 data line
	PIN_DHT = machine.D1

	// TCS3200 colour sensor
	PIN_S0  = machine.D2
	PIN_S1  = machine.D3
	PIN_S2  = machine.D4
	PIN_S3  = machine.D5
	PIN_OUT = machine.D6

	// Serial configuration
	// Format "unix_micros,temp,humidity,gas,r,g,b\n", e.g.
	// "1234567890123456,28.5,61.0,412,35,80,72\n" is ~45 bytes.
	// 4 frames/sec * 45 bytes = 180 bytes/sec, far below 115200 baud.
	UART_BAUD_RATE = 115200
)

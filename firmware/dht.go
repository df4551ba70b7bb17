//go:build tinygo

package main

import (
	"machine"
	"time"
)

type dhtReading struct {
	temperature int16 // tenths of °C
	humidity    int16 // tenths of %RH
	ok          bool
}

// readDHT bit-bangs one DHT22 transaction.
func readDHT() dhtReading {
	// Host start signal: pull low, then release
	PIN_DHT.Configure(machine.PinConfig{Mode: machine.PinOutput})
	PIN_DHT.Low()
	time.Sleep(DHT_START_LOW_MS * time.Millisecond)
	PIN_DHT.Configure(machine.PinConfig{Mode: machine.PinInputPullup})

	// Sensor answers with ~80 µs low, ~80 µs high, then the first bit's low
	if _, ok := waitWhile(PIN_DHT, true, DHT_BIT_TIMEOUT_US); !ok {
		return dhtReading{}
	}
	if _, ok := waitWhile(PIN_DHT, false, DHT_BIT_TIMEOUT_US); !ok {
		return dhtReading{}
	}
	if _, ok := waitWhile(PIN_DHT, true, DHT_BIT_TIMEOUT_US); !ok {
		return dhtReading{}
	}

	var data [5]byte
	for i := range 40 {
		if _, ok := waitWhile(PIN_DHT, false, DHT_BIT_TIMEOUT_US); !ok {
			return dhtReading{}
		}
		high, ok := waitWhile(PIN_DHT, true, DHT_BIT_TIMEOUT_US)
		if !ok {
			return dhtReading{}
		}
		data[i/8] <<= 1
		if high > DHT_ONE_THRESHOLD_US {
			data[i/8] |= 1
		}
	}

	if data[0]+data[1]+data[2]+data[3] != data[4] {
		return dhtReading{}
	}

	temperature := int16(data[2]&0x7f)<<8 | int16(data[3])
	if data[2]&0x80 != 0 {
		temperature = -temperature
	}
	return dhtReading{
		temperature: temperature,
		humidity:    int16(data[0])<<8 | int16(data[1]),
		ok:          true,
	}
}

// waitWhile waits until pin leaves level and returns how long that took in µs.
func waitWhile(pin machine.Pin, level bool, timeoutUS int64) (int64, bool) {
	start := time.Now()
	for pin.Get() == level {
		if time.Since(start).Microseconds() > timeoutUS {
			return 0, false
		}
	}
	return time.Since(start).Microseconds(), true
}

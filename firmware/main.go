//go:build tinygo

//go:generate tinygo flash -target=xiao

package main

import (
	"machine"
	"time"
)

var (
	adcGas machine.ADC
	uart   = machine.UART0

	// Last DHT22 result, in tenths of °C and %RH
	climate     dhtReading
	lastDHTRead time.Time

	lastFrame time.Time
)

func main() {
	PIN_GAS.Configure(machine.PinConfig{Mode: machine.PinInput})
	adcGas = machine.ADC{Pin: PIN_GAS}
	adcGas.Configure(machine.ADCConfig{
		Reference:  ADC_REFERENCE_MV,
		Resolution: ADC_RESOLUTION,
	})

	configureColor()

	uart.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})

	// Let the DHT22 settle after power up
	time.Sleep(time.Second)
	climate = readDHT()
	lastDHTRead = time.Now()
	lastFrame = time.Now()

	for {
		now := time.Now()

		if now.Sub(lastDHTRead) >= DHT_INTERVAL_MS*time.Millisecond {
			climate = readDHT()
			lastDHTRead = now
		}

		if now.Sub(lastFrame) >= FRAME_INTERVAL_MS*time.Millisecond {
			gas := readGas()
			r, g, b := readColor()
			outputFrame(now, gas, r, g, b)
			lastFrame = now
		}

		time.Sleep(time.Millisecond)
	}
}

// readGas averages GAS_SAMPLES readings and scales them to 12 bits.
func readGas() uint16 {
	var sum uint32
	for range GAS_SAMPLES {
		// Get always returns a 16-bit scaled value
		sum += uint32(adcGas.Get() >> 4)
	}
	return uint16(sum / GAS_SAMPLES)
}

// outputFrame prints "unix_micros,temp,humidity,gas,r,g,b\n".
// Temperature and humidity are "nan" when the last DHT22 read failed.
func outputFrame(now time.Time, gas uint16, r, g, b uint32) {
	print(now.UnixNano() / 1000)
	print(",")
	if climate.ok {
		printTenths(climate.temperature)
		print(",")
		printTenths(climate.humidity)
	} else {
		print("nan,nan")
	}
	print(",")
	print(gas)
	print(",")
	print(r)
	print(",")
	print(g)
	print(",")
	print(b)
	print("\n")
}

// printTenths prints v/10 with one decimal without pulling in fmt.
func printTenths(v int16) {
	if v < 0 {
		print("-")
		v = -v
	}
	print(v / 10)
	print(".")
	print(v % 10)
}

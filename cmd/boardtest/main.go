// cmd/boardtest/main.go
//
// On-device smoke test for a freshly wired board: sweeps the buzzer through
// the full scale, then streams light readings to the console. No WiFi, no
// bus; the adaptors are driven directly so a wiring fault is easy to isolate.
package main

import (
	"time"

	"lightorchestra-go/services/player"
	"lightorchestra-go/services/sensor"
	"lightorchestra-go/types"
)

const (
	sensorPin = 28
	buzzerPin = 16

	noteMs       = 300
	readInterval = 250 * time.Millisecond
)

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("[boardtest] sensor pin:", sensorPin, "buzzer pin:", buzzerPin)

	out := player.NewBuzzer(buzzerPin)
	if err := out.Configure(); err != nil {
		park("buzzer configure: " + err.Error())
	}

	adc := sensor.NewADC(sensorPin)
	if err := adc.Configure(); err != nil {
		park("adc configure: " + err.Error())
	}

	println("[boardtest] sweeping scale ...")
	for _, n := range player.DefaultNotes() {
		println("[boardtest] note:", n.Name, n.FreqHz, "Hz")
		if err := out.SetTone(n.FreqHz, types.DefaultDuty); err != nil {
			park("set tone: " + err.Error())
		}
		time.Sleep(noteMs * time.Millisecond)
	}
	out.Stop()
	println("[boardtest] sweep done, streaming light readings")

	cal := types.DefaultCalibration()
	for {
		raw, err := adc.Read()
		if err != nil {
			println("[boardtest] read error:", err.Error())
		} else {
			r := types.ReadingFrom(raw, cal, time.Now().UnixMilli())
			println("[boardtest] raw:", raw, "norm(x1000):", int(r.Norm*1000), "lux:", int(r.Lux))
		}
		time.Sleep(readInterval)
	}
}

func park(msg string) {
	for {
		println("[boardtest] fatal:", msg)
		time.Sleep(5 * time.Second)
	}
}

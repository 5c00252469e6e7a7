// Command simdevice runs the full device stack on the host: real bus, real
// services, simulated ADC and buzzer. The HTTP API comes up on -addr, so the
// conductor and dashboard can be developed without hardware.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"math"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lightorchestra-go/bus"
	"lightorchestra-go/services/api"
	"lightorchestra-go/services/config"
	"lightorchestra-go/services/player"
	"lightorchestra-go/services/sensor"
	"lightorchestra-go/services/sysinfo"
	"lightorchestra-go/types"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	addr := flag.String("addr", ":8080", "API listen address")
	deviceID := flag.String("id", "sim-pico", "device ID reported by /health")
	period := flag.Duration("light-period", 10*time.Second, "period of the simulated light wave")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = context.WithValue(ctx, config.CtxDeviceKey, "sim")

	// Synthesize a device config so the embedded one cannot override the
	// flags through the retained config sections.
	simCfg, err := json.Marshal(map[string]any{
		"sensor":  types.SensorConfig{Pin: 28, IntervalMs: 50, RawMin: 600, RawMax: 65338},
		"player":  types.PlayerConfig{Pin: 16, Follow: true},
		"sysinfo": types.SysInfoConfig{DeviceID: *deviceID},
	})
	if err != nil {
		return err
	}
	config.EmbeddedConfigLookup = func(string) ([]byte, bool) { return simCfg, true }

	b := bus.NewBus(8)
	config.NewConfigService().Start(ctx, b.NewConnection("config"))

	var sensorCfg types.SensorConfig
	if err := config.Load("sim", "sensor", &sensorCfg); err != nil {
		return err
	}
	adc := sensor.NewADC(sensorCfg.Pin).(*sensor.SimADC)
	sensorSvc := sensor.New(b.NewConnection("sensor"), adc, sensorCfg)
	if err := sensorSvc.Start(ctx); err != nil {
		return err
	}

	cal := types.Calibration{RawMin: sensorCfg.RawMin, RawMax: sensorCfg.RawMax}
	playerSvc := player.New(b.NewConnection("player"), player.NewBuzzer(16),
		types.PlayerConfig{Pin: 16, Follow: true}, player.NewScale(cal, nil))
	if err := playerSvc.Start(ctx); err != nil {
		return err
	}

	sysinfo.New(b.NewConnection("sysinfo"), types.SysInfoConfig{DeviceID: *deviceID}).Start(ctx)

	// Sweep the simulated light level up and down so the follow loop walks
	// the scale and the dashboard bar moves.
	go func() {
		mid := (float64(cal.RawMin) + float64(cal.RawMax)) / 2
		amp := (float64(cal.RawMax) - float64(cal.RawMin)) / 2
		tick := time.NewTicker(100 * time.Millisecond)
		defer tick.Stop()
		start := time.Now()
		for {
			select {
			case <-ctx.Done():
				return
			case <-tick.C:
				phase := 2 * math.Pi * float64(time.Since(start)) / float64(*period)
				adc.Set(uint16(mid + amp*math.Sin(phase)))
			}
		}
	}()

	srv := api.New(b.NewConnection("api"))
	srv.Start(ctx)

	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		return err
	}
	log.Printf("simdevice %s serving on %s", *deviceID, *addr)
	return srv.Serve(ctx, ln)
}

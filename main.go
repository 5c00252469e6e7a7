package main

import (
	"context"
	"time"

	"lightorchestra-go/bus"
	"lightorchestra-go/services/api"
	"lightorchestra-go/services/config"
	"lightorchestra-go/services/player"
	"lightorchestra-go/services/sensor"
	"lightorchestra-go/services/sysinfo"
	"lightorchestra-go/types"
	"lightorchestra-go/x/strx"
)

const deviceID = "pico-2w"

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("[main] boot, device:", deviceID)

	ctx := context.WithValue(context.Background(), config.CtxDeviceKey, deviceID)

	// Pin and network values are needed before the bus is live, so load the
	// sections directly; the config service republishes them on the bus for
	// runtime re-apply.
	var (
		sensorCfg types.SensorConfig
		playerCfg types.PlayerConfig
		apiCfg    types.APIConfig
		netCfg    types.NetConfig
		sysCfg    types.SysInfoConfig
	)
	mustLoad(ctx, "sensor", &sensorCfg)
	mustLoad(ctx, "player", &playerCfg)
	mustLoad(ctx, "api", &apiCfg)
	mustLoad(ctx, "net", &netCfg)
	mustLoad(ctx, "sysinfo", &sysCfg)

	b := bus.NewBus(8)
	config.NewConfigService().Start(ctx, b.NewConnection("config"))

	println("[main] starting sensor on pin", sensorCfg.Pin)
	sensorSvc := sensor.New(b.NewConnection("sensor"), sensor.NewADC(sensorCfg.Pin), sensorCfg)
	if err := sensorSvc.Start(ctx); err != nil {
		fatal("sensor: " + err.Error())
	}

	println("[main] starting player on pin", playerCfg.Pin)
	cal := types.Calibration{RawMin: sensorCfg.RawMin, RawMax: sensorCfg.RawMax}
	if cal.RawMax <= cal.RawMin {
		cal = types.DefaultCalibration()
	}
	scale := player.NewScale(cal, nil)
	playerSvc := player.New(b.NewConnection("player"), player.NewBuzzer(playerCfg.Pin), playerCfg, scale)
	if err := playerSvc.Start(ctx); err != nil {
		fatal("player: " + err.Error())
	}

	sysinfo.New(b.NewConnection("sysinfo"), sysCfg).Start(ctx)

	srv := api.New(b.NewConnection("api"))
	srv.Start(ctx)

	addr := strx.Coalesce(apiCfg.Addr, ":80")
	ln, err := listen(netCfg, addr)
	if err != nil {
		fatal("listen: " + err.Error())
	}
	println("[main] serving on", addr)
	if err := srv.Serve(ctx, ln); err != nil {
		fatal("serve: " + err.Error())
	}
}

func mustLoad(ctx context.Context, section string, dst any) {
	device, _ := ctx.Value(config.CtxDeviceKey).(string)
	if err := config.Load(device, section, dst); err != nil {
		fatal("config " + section + ": " + err.Error())
	}
}

// fatal parks the firmware with a visible message instead of panicking, so
// the fault stays readable over the serial console.
func fatal(msg string) {
	for {
		println("[main] fatal:", msg)
		time.Sleep(5 * time.Second)
	}
}

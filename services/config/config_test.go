package config

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"lightorchestra-go/bus"
	"lightorchestra-go/types"
)

const testConfig = `{
  "sensor": {"pin": 28, "interval_ms": 25, "raw_min": 600, "raw_max": 65338},
  "player": {"pin": 16, "follow": true}
}`

func withTestConfig(t *testing.T, device string, raw string) {
	t.Helper()
	prev := EmbeddedConfigLookup
	EmbeddedConfigLookup = func(d string) ([]byte, bool) {
		if d == device {
			return []byte(raw), true
		}
		return nil, false
	}
	t.Cleanup(func() { EmbeddedConfigLookup = prev })
}

func TestConfig_PublishesRetainedPerSection(t *testing.T) {
	withTestConfig(t, "unit-dev", testConfig)

	b := bus.NewBus(16)
	svcConn := b.NewConnection("config")
	defer svcConn.Disconnect()

	ctx := context.WithValue(context.Background(), CtxDeviceKey, "unit-dev")
	NewConfigService().Start(ctx, svcConn)

	// Late subscriber still sees every section via retained delivery.
	sub := b.NewConnection("probe")
	defer sub.Disconnect()
	s := sub.Subscribe(bus.Topic{"config", "#"})

	got := map[string][]byte{}
	deadline := time.After(time.Second)
	for len(got) < 2 {
		select {
		case msg := <-s.Channel():
			got[msg.Topic.String()] = msg.Payload.([]byte)
		case <-deadline:
			t.Fatalf("timed out, sections seen: %v", got)
		}
	}

	var sc types.SensorConfig
	if err := json.Unmarshal(got["config/sensor"], &sc); err != nil {
		t.Fatalf("decode sensor section: %v", err)
	}
	if sc.Pin != 28 || sc.IntervalMs != 25 || sc.RawMin != 600 || sc.RawMax != 65338 {
		t.Fatalf("unexpected sensor config: %+v", sc)
	}

	var pc types.PlayerConfig
	if err := json.Unmarshal(got["config/player"], &pc); err != nil {
		t.Fatalf("decode player section: %v", err)
	}
	if pc.Pin != 16 || !pc.Follow {
		t.Fatalf("unexpected player config: %+v", pc)
	}
}

func TestConfig_MissingDevice(t *testing.T) {
	withTestConfig(t, "unit-dev", testConfig)

	b := bus.NewBus(4)
	conn := b.NewConnection("config")
	defer conn.Disconnect()

	svc := NewConfigService()
	err := svc.publishConfig(context.Background(), conn)
	if err == nil {
		t.Fatal("expected error without device ID in context")
	}

	ctx := context.WithValue(context.Background(), CtxDeviceKey, "no-such-device")
	if err := svc.publishConfig(ctx, conn); err == nil {
		t.Fatal("expected error for unknown device")
	}
}

func TestLoad_Section(t *testing.T) {
	withTestConfig(t, "unit-dev", testConfig)

	var pc types.PlayerConfig
	if err := Load("unit-dev", "player", &pc); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if pc.Pin != 16 || !pc.Follow {
		t.Fatalf("unexpected player config: %+v", pc)
	}

	if err := Load("unit-dev", "absent", &pc); err == nil {
		t.Fatal("expected error for missing section")
	}
}

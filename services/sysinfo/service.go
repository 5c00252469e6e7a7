// services/sysinfo/service.go
package sysinfo

import (
	"context"
	"runtime"
	"time"

	"lightorchestra-go/bus"
	"lightorchestra-go/types"
	"lightorchestra-go/x/strx"
)

// TopicHealth carries the retained device health snapshot.
var TopicHealth = bus.Topic{"system", "health"}

var topicConfig = bus.Topic{"config", "sysinfo"}

const defaultIntervalMs = 1000

// Service publishes uptime, free heap and the device identity on a fixed
// cadence. The API mirrors the retained snapshot into /health.
type Service struct {
	conn     *bus.Connection
	deviceID string
	interval time.Duration
	started  time.Time
}

func New(conn *bus.Connection, cfg types.SysInfoConfig) *Service {
	s := &Service{conn: conn, started: time.Now()}
	s.apply(cfg)
	return s
}

func (s *Service) apply(cfg types.SysInfoConfig) {
	s.deviceID = strx.Coalesce(cfg.DeviceID, strx.Coalesce(s.deviceID, "pico-unknown"))
	if cfg.IntervalMs == 0 {
		cfg.IntervalMs = defaultIntervalMs
	}
	s.interval = time.Duration(cfg.IntervalMs) * time.Millisecond
}

// Start launches the publisher loop.
func (s *Service) Start(ctx context.Context) {
	go s.loop(ctx)
}

func (s *Service) loop(ctx context.Context) {
	cfgSub := s.conn.Subscribe(topicConfig)
	defer s.conn.Unsubscribe(cfgSub)

	s.publish()

	tick := time.NewTicker(s.interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			println("[sysinfo] stopping")
			return
		case <-tick.C:
			s.publish()
		case msg := <-cfgSub.Channel():
			var cfg types.SysInfoConfig
			if err := types.Decode(msg.Payload, &cfg); err != nil {
				println("[sysinfo] bad config:", err.Error())
				continue
			}
			s.apply(cfg)
			tick.Reset(s.interval)
		}
	}
}

func (s *Service) publish() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	s.conn.Publish(s.conn.NewMessage(TopicHealth, types.HealthInfo{
		DeviceID: s.deviceID,
		UptimeMs: time.Since(s.started).Milliseconds(),
		HeapFree: ms.HeapSys - ms.HeapInuse,
	}, true))
}

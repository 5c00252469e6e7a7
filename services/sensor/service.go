// services/sensor/service.go
package sensor

import (
	"context"
	"time"

	"lightorchestra-go/bus"
	"lightorchestra-go/errcode"
	"lightorchestra-go/types"
	"lightorchestra-go/x/timex"
)

// Bus topics owned by this service.
var (
	TopicValue  = bus.Topic{"sensor", "light", "value"}
	TopicStatus = bus.Topic{"sensor", "light", "status"}

	topicConfig = bus.Topic{"config", "sensor"}
)

const defaultIntervalMs = 50

// Service samples the light channel on a fixed cadence and publishes the
// latest reading as a retained bus value. A failed conversion substitutes a
// zero raw reading for that cycle; the loop itself never stops on error.
type Service struct {
	conn     *bus.Connection
	adc      ADC
	cal      types.Calibration
	interval time.Duration
}

func New(conn *bus.Connection, adc ADC, cfg types.SensorConfig) *Service {
	s := &Service{conn: conn, adc: adc}
	s.apply(cfg)
	return s
}

func (s *Service) apply(cfg types.SensorConfig) {
	if cfg.IntervalMs == 0 {
		cfg.IntervalMs = defaultIntervalMs
	}
	s.interval = time.Duration(cfg.IntervalMs) * time.Millisecond
	if cfg.RawMax > cfg.RawMin {
		s.cal = types.Calibration{RawMin: cfg.RawMin, RawMax: cfg.RawMax}
	} else {
		s.cal = types.DefaultCalibration()
	}
}

// Start launches the sample loop.
func (s *Service) Start(ctx context.Context) error {
	if err := s.adc.Configure(); err != nil {
		return &errcode.E{C: errcode.PinUnavailable, Op: "sensor.configure", Err: err}
	}
	go s.loop(ctx)
	return nil
}

func (s *Service) loop(ctx context.Context) {
	cfgSub := s.conn.Subscribe(topicConfig)
	defer s.conn.Unsubscribe(cfgSub)

	tick := time.NewTicker(s.interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			println("[sensor] stopping")
			return
		case <-tick.C:
			s.sample()
		case msg := <-cfgSub.Channel():
			var cfg types.SensorConfig
			if err := types.Decode(msg.Payload, &cfg); err != nil {
				println("[sensor] bad config:", err.Error())
				continue
			}
			s.apply(cfg)
			tick.Reset(s.interval)
			println("[sensor] reconfigured, interval ms:", int(s.interval/time.Millisecond))
		}
	}
}

// sample performs one cycle: read, clamp/normalise, publish.
func (s *Service) sample() {
	raw, err := s.adc.Read()
	degraded := err != nil
	if degraded {
		// Fail-soft: one zeroed cycle, loop continues.
		println("[sensor] read failed:", err.Error())
		raw = 0
		s.conn.Publish(s.conn.NewMessage(TopicStatus,
			types.ErrorReply{OK: false, Error: string(errcode.SensorFault)}, false))
	}

	reading := types.ReadingFrom(raw, s.cal, timex.NowMs())
	reading.Degraded = degraded
	s.conn.Publish(s.conn.NewMessage(TopicValue, reading, true))
}

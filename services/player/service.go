// services/player/service.go
package player

import (
	"context"
	"time"

	"lightorchestra-go/bus"
	"lightorchestra-go/errcode"
	"lightorchestra-go/services/sensor"
	"lightorchestra-go/types"
	"lightorchestra-go/x/mathx"
	"lightorchestra-go/x/timex"
)

// Bus topics owned by this service.
var (
	TopicState = bus.Topic{"player", "state"}

	// player/control/<verb>: tone, melody, cancel, mode. Request/reply.
	TopicControl = bus.Topic{"player", "control"}

	topicCtrlWild = bus.Topic{"player", "control", "+"}
	topicConfig   = bus.Topic{"config", "player"}
)

const jobDoneQueueLen = 4

// Service owns the buzzer. It runs the light-follow loop (latest reading →
// scale note → drive) and the single playback slot (tone / melody / cancel).
// An active playback job preempts the follow loop; follow resumes when the
// job ends.
type Service struct {
	conn  *bus.Connection
	out   ToneOutput
	scale Scale

	follow   bool
	playing  bool
	lastFreq uint32

	gen       uint32
	cancelJob context.CancelFunc
	jobDone   chan uint32
	runCtx    context.Context
}

func New(conn *bus.Connection, out ToneOutput, cfg types.PlayerConfig, scale Scale) *Service {
	return &Service{
		conn:    conn,
		out:     out,
		scale:   scale,
		follow:  cfg.Follow,
		jobDone: make(chan uint32, jobDoneQueueLen),
	}
}

// Start claims the output pin and launches the service loop.
func (s *Service) Start(ctx context.Context) error {
	if err := s.out.Configure(); err != nil {
		return err
	}
	s.runCtx = ctx
	go s.loop(ctx)
	return nil
}

func (s *Service) loop(ctx context.Context) {
	ctrlSub := s.conn.Subscribe(topicCtrlWild)
	defer s.conn.Unsubscribe(ctrlSub)
	valSub := s.conn.Subscribe(sensor.TopicValue)
	defer s.conn.Unsubscribe(valSub)
	cfgSub := s.conn.Subscribe(topicConfig)
	defer s.conn.Unsubscribe(cfgSub)

	s.publishState()

	for {
		select {
		case <-ctx.Done():
			s.stopJob()
			s.out.Stop()
			println("[player] stopping")
			return
		case m := <-ctrlSub.Channel():
			s.handleControl(m)
		case m := <-valSub.Channel():
			s.onReading(m)
		case m := <-cfgSub.Channel():
			var cfg types.PlayerConfig
			if err := types.Decode(m.Payload, &cfg); err != nil {
				println("[player] bad config:", err.Error())
				continue
			}
			s.setFollow(cfg.Follow)
		case gen := <-s.jobDone:
			if gen != s.gen {
				continue // stale job, already superseded
			}
			s.playing = false
			s.publishState()
		}
	}
}

// -----------------------------------------------------------------------------
// Follow loop
// -----------------------------------------------------------------------------

func (s *Service) onReading(m *bus.Message) {
	if !s.follow || s.playing {
		return
	}
	var r types.LightReading
	if err := types.Decode(m.Payload, &r); err != nil {
		return
	}
	if r.Degraded {
		// One skipped cycle; the output keeps its last tone.
		return
	}
	note := s.scale.NoteFor(r.Raw)
	if err := s.out.SetTone(note.FreqHz, types.DefaultDuty); err != nil {
		println("[player] drive failed:", err.Error())
		return
	}
	if note.FreqHz != s.lastFreq {
		s.lastFreq = note.FreqHz
		s.publishState()
	}
}

func (s *Service) setFollow(on bool) {
	if s.follow == on {
		return
	}
	s.follow = on
	if !on && !s.playing {
		s.out.Stop()
		s.lastFreq = 0
	}
	s.publishState()
}

// -----------------------------------------------------------------------------
// Control verbs
// -----------------------------------------------------------------------------

func (s *Service) handleControl(m *bus.Message) {
	if len(m.Topic) < 3 {
		s.conn.Reply(m, types.ErrorReply{Error: string(errcode.InvalidTopic)}, false)
		return
	}
	switch verb := m.Topic[len(m.Topic)-1]; verb {
	case "tone":
		s.ctrlTone(m)
	case "melody":
		s.ctrlMelody(m)
	case "cancel":
		s.stopJob()
		s.publishState()
		s.conn.Reply(m, types.OKReply{OK: true}, false)
	case "mode":
		var req types.ModeRequest
		if err := types.Decode(m.Payload, &req); err != nil {
			s.conn.Reply(m, types.ErrorReply{Error: string(errcode.InvalidPayload)}, false)
			return
		}
		s.setFollow(req.Follow)
		s.conn.Reply(m, types.OKReply{OK: true}, false)
	default:
		s.conn.Reply(m, types.ErrorReply{Error: string(errcode.UnknownVerb)}, false)
	}
}

func (s *Service) ctrlTone(m *bus.Message) {
	var req types.ToneRequest
	if err := types.Decode(m.Payload, &req); err != nil {
		s.conn.Reply(m, types.ErrorReply{Error: string(errcode.InvalidPayload)}, false)
		return
	}
	if req.Ms == 0 {
		req.Ms = types.DefaultToneMs
	}
	req.Duty = mathx.Clamp(req.Duty, 0, 1)

	s.startJob(func(ctx context.Context, gen uint32) {
		defer s.finishJob(gen)
		if err := s.out.SetTone(req.FreqHz, req.Duty); err != nil {
			println("[player] tone failed:", err.Error())
			return
		}
		timex.Sleep(ctx, time.Duration(req.Ms)*time.Millisecond)
	})
	s.conn.Reply(m, types.OKReply{OK: true}, false)
}

func (s *Service) ctrlMelody(m *bus.Message) {
	var req types.MelodyRequest
	if err := types.Decode(m.Payload, &req); err != nil {
		s.conn.Reply(m, types.ErrorReply{Error: string(errcode.InvalidPayload)}, false)
		return
	}
	if len(req.Notes) == 0 || len(req.Notes) > types.MaxMelodyNotes {
		s.conn.Reply(m, types.ErrorReply{Error: string(errcode.InvalidPayload)}, false)
		return
	}
	// GapMs 0 is honored as a gapless melody; the API layer fills the
	// default when the field is absent.
	req.Duty = mathx.Clamp(req.Duty, 0, 1)

	notes := make([]types.MelodyNote, len(req.Notes))
	copy(notes, req.Notes)

	s.startJob(func(ctx context.Context, gen uint32) {
		defer s.finishJob(gen)
		gap := time.Duration(req.GapMs) * time.Millisecond
		for _, n := range notes {
			if err := s.out.SetTone(n.FreqHz, req.Duty); err != nil {
				println("[player] melody note failed:", err.Error())
				return
			}
			if !timex.Sleep(ctx, time.Duration(n.Ms)*time.Millisecond) {
				return
			}
			s.out.Stop()
			if !timex.Sleep(ctx, gap) {
				return
			}
		}
	})
	s.conn.Reply(m, types.MelodyReply{OK: true, Queued: len(notes)}, false)
}

// -----------------------------------------------------------------------------
// Playback slot
// -----------------------------------------------------------------------------

// startJob cancels any active job and launches a new one. Exactly one job
// can hold the output at a time.
func (s *Service) startJob(run func(context.Context, uint32)) {
	s.stopJob()
	s.gen++
	s.playing = true
	ctx, cancel := context.WithCancel(s.runCtx)
	s.cancelJob = cancel
	go run(ctx, s.gen)
	s.publishState()
}

// stopJob cancels the active job and waits until it has released the output,
// so a successor can never be silenced by the predecessor's teardown.
func (s *Service) stopJob() {
	if s.cancelJob == nil {
		return
	}
	s.cancelJob()
	s.cancelJob = nil
	if !s.playing {
		return
	}
	for gen := range s.jobDone {
		if gen == s.gen {
			break
		}
	}
	s.playing = false
}

// finishJob runs in the job goroutine: silence the output and hand the slot
// back to the service loop.
func (s *Service) finishJob(gen uint32) {
	s.out.Stop()
	s.jobDone <- gen
}

func (s *Service) publishState() {
	s.conn.Publish(s.conn.NewMessage(TopicState, types.PlayerState{
		Follow:  s.follow,
		Playing: s.playing,
		FreqHz:  s.lastFreq,
		TSms:    timex.NowMs(),
	}, true))
}

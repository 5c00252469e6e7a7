package orchestra

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"lightorchestra-go/types"
)

// Conductor broadcasts playback to a fleet of devices. Every send is
// best-effort: a device that is slow or offline is logged and skipped so the
// rest of the orchestra stays in time.
type Conductor struct {
	clients []*Client
}

// NewConductor builds one client per host.
func NewConductor(hosts []string, timeout time.Duration) *Conductor {
	c := &Conductor{}
	for _, h := range hosts {
		c.clients = append(c.clients, NewClient(h, timeout))
	}
	return c
}

// Size returns the number of devices in the orchestra.
func (c *Conductor) Size() int { return len(c.clients) }

// broadcast runs fn against every device concurrently and waits for all of
// them. Errors are logged per device, never returned.
func (c *Conductor) broadcast(what string, fn func(*Client) error) {
	var wg sync.WaitGroup
	for _, cl := range c.clients {
		wg.Add(1)
		go func(cl *Client) {
			defer wg.Done()
			if err := fn(cl); err != nil {
				slog.Warn("device unreachable", "what", what, "host", cl.Host(), "err", err)
			}
		}(cl)
	}
	wg.Wait()
}

// PlayNote sends one tone to every device.
func (c *Conductor) PlayNote(ctx context.Context, freqHz, ms uint32, duty float64) {
	c.broadcast("tone", func(cl *Client) error {
		return cl.Tone(ctx, freqHz, ms, duty)
	})
}

// PlayMelody queues a full melody on every device; the devices pace
// themselves from there.
func (c *Conductor) PlayMelody(ctx context.Context, req types.MelodyRequest) {
	c.broadcast("melody", func(cl *Client) error {
		return cl.Melody(ctx, req)
	})
}

// Cancel silences every device.
func (c *Conductor) Cancel(ctx context.Context) {
	c.broadcast("cancel", func(cl *Client) error {
		return cl.Cancel(ctx)
	})
}

// SetFollow flips the light-follow loop across the fleet.
func (c *Conductor) SetFollow(ctx context.Context, follow bool) {
	c.broadcast("mode", func(cl *Client) error {
		return cl.SetFollow(ctx, follow)
	})
}

// PlaySong broadcasts the song note by note, pacing locally. The sleep is
// stretched by the song's gap factor so devices finish each note before the
// next one lands.
func (c *Conductor) PlaySong(ctx context.Context, song Song) error {
	if err := song.Validate(); err != nil {
		return err
	}
	slog.Info("starting song", "song", song.Name, "notes", len(song.Notes), "devices", len(c.clients))

	for i, n := range song.Notes {
		freq, err := n.FreqHz()
		if err != nil {
			return err
		}
		slog.Info("note", "idx", i+1, "total", len(song.Notes), "freq", freq, "ms", n.Ms)
		c.PlayNote(ctx, freq, n.Ms, n.Duty)

		pause := time.Duration(float64(n.Ms)*song.GapFactor) * time.Millisecond
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pause):
		}
	}
	slog.Info("song finished", "song", song.Name)
	return nil
}

package types

import (
	"errors"
	"math"

	"lightorchestra-go/x/conv"
)

// ------------------------
// Tone / melody control
// ------------------------

// Playback defaults shared by the device API and the host tools.
const (
	DefaultDuty    = 0.5
	DefaultToneMs  = 250
	DefaultGapMs   = 50
	MaxMelodyNotes = 256
)

// ToneRequest plays a single tone for a bounded duration.
// FreqHz 0 silences the buzzer for the duration.
type ToneRequest struct {
	FreqHz uint32  `json:"freq"`
	Ms     uint32  `json:"ms"`
	Duty   float64 `json:"duty"`
}

// MelodyNote is one (freq, ms) step. On the wire it is the two-element
// array [freq, ms].
type MelodyNote struct {
	FreqHz uint32
	Ms     uint32
}

func (n MelodyNote) MarshalJSON() ([]byte, error) {
	var buf [24]byte
	out := append(buf[:0], '[')
	out = append(out, conv.Utoa(make([]byte, 10), uint64(n.FreqHz))...)
	out = append(out, ',')
	out = append(out, conv.Utoa(make([]byte, 10), uint64(n.Ms))...)
	return append(out, ']'), nil
}

func (n *MelodyNote) UnmarshalJSON(b []byte) error {
	var pair []int64
	if err := Decode(b, &pair); err != nil || len(pair) != 2 {
		return errors.New("note must be [freq, ms]")
	}
	if pair[0] < 0 || pair[1] < 0 {
		return errors.New("note values must be non-negative")
	}
	if pair[0] > math.MaxUint32 || pair[1] > math.MaxUint32 {
		return errors.New("note values out of range")
	}
	n.FreqHz = uint32(pair[0])
	n.Ms = uint32(pair[1])
	return nil
}

// MelodyRequest queues a note sequence with a silent gap between notes.
type MelodyRequest struct {
	Notes []MelodyNote `json:"notes"`
	GapMs uint32       `json:"gap_ms"`
	Duty  float64      `json:"duty"`
}

// ModeRequest toggles the light-follow loop.
type ModeRequest struct {
	Follow bool `json:"follow"`
}

// PlayerState is the retained view of the buzzer service.
type PlayerState struct {
	Follow  bool   `json:"follow"`
	Playing bool   `json:"playing"`
	FreqHz  uint32 `json:"freq"`
	TSms    int64  `json:"ts_ms"`
}

// MelodyReply reports how many notes were queued.
type MelodyReply struct {
	OK     bool `json:"ok"`
	Queued int  `json:"queued"`
}

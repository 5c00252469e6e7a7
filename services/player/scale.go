// services/player/scale.go
package player

import (
	"lightorchestra-go/types"
	"lightorchestra-go/x/mathx"
)

// Note is one named step of the follow-mode scale.
type Note struct {
	Name   string
	FreqHz uint32
}

// DefaultNotes is the C-major octave the orchestra kit tunes to.
func DefaultNotes() []Note {
	return []Note{
		{"C4", 262},
		{"D4", 294},
		{"E4", 330},
		{"F4", 349},
		{"G4", 392},
		{"A4", 440},
		{"B4", 494},
		{"C5", 523},
	}
}

// Scale is a stepped, monotonic mapping from a raw light reading to a note.
// It is total: readings at or below the calibrated minimum map to the first
// note, at or above the maximum to the last, everything else to one of the
// steps in between. Constant after construction.
type Scale struct {
	cal   types.Calibration
	notes []Note
}

func NewScale(cal types.Calibration, notes []Note) Scale {
	if len(notes) == 0 {
		notes = DefaultNotes()
	}
	if cal.RawMax <= cal.RawMin {
		cal = types.DefaultCalibration()
	}
	return Scale{cal: cal, notes: notes}
}

// NoteFor maps a raw reading to its note. Pure.
func (s Scale) NoteFor(raw uint16) Note {
	idx := mathx.MapU16(raw, s.cal.RawMin, s.cal.RawMax, 0, uint16(len(s.notes)-1))
	return s.notes[idx]
}

// Notes returns the scale's note table.
func (s Scale) Notes() []Note { return s.notes }

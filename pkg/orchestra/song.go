package orchestra

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"lightorchestra-go/types"
)

// noteFreqs maps note names to frequencies in Hz, one octave from middle C.
var noteFreqs = map[string]uint32{
	"C4": 262,
	"D4": 294,
	"E4": 330,
	"F4": 349,
	"G4": 392,
	"A4": 440,
	"B4": 494,
	"C5": 523,
}

// NoteFreq resolves a note name like "G4".
func NoteFreq(name string) (uint32, bool) {
	f, ok := noteFreqs[name]
	return f, ok
}

// SongNote is one step of a song. Either Note (a name like "C4") or Freq must
// be set; Note wins when both are present.
type SongNote struct {
	Note string  `yaml:"note,omitempty"`
	Freq uint32  `yaml:"freq,omitempty"`
	Ms   uint32  `yaml:"ms"`
	Duty float64 `yaml:"duty,omitempty"`
}

// FreqHz resolves the note to a frequency.
func (n SongNote) FreqHz() (uint32, error) {
	if n.Note != "" {
		f, ok := NoteFreq(n.Note)
		if !ok {
			return 0, fmt.Errorf("unknown note name %q", n.Note)
		}
		return f, nil
	}
	if n.Freq == 0 {
		return 0, fmt.Errorf("note has neither name nor freq")
	}
	return n.Freq, nil
}

// Song is a named sequence of notes with broadcast pacing.
type Song struct {
	Name      string     `yaml:"name"`
	GapFactor float64    `yaml:"gap_factor,omitempty"`
	Notes     []SongNote `yaml:"notes"`
}

// Validate resolves every note and applies defaults.
func (s *Song) Validate() error {
	if len(s.Notes) == 0 {
		return fmt.Errorf("song %q has no notes", s.Name)
	}
	if s.GapFactor <= 0 {
		s.GapFactor = 1.1
	}
	for i := range s.Notes {
		if _, err := s.Notes[i].FreqHz(); err != nil {
			return fmt.Errorf("note %d: %w", i+1, err)
		}
		if s.Notes[i].Ms == 0 {
			s.Notes[i].Ms = types.DefaultToneMs
		}
		if s.Notes[i].Duty <= 0 {
			s.Notes[i].Duty = types.DefaultDuty
		}
	}
	return nil
}

// LoadSong reads a song from a YAML file.
func LoadSong(path string) (Song, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Song{}, err
	}
	var s Song
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return Song{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return Song{}, err
	}
	return s, nil
}

// Melody converts the song to the device's queued-melody payload.
func (s Song) Melody(gapMs uint32) types.MelodyRequest {
	req := types.MelodyRequest{GapMs: gapMs, Duty: types.DefaultDuty}
	for _, n := range s.Notes {
		f, err := n.FreqHz()
		if err != nil {
			continue
		}
		req.Notes = append(req.Notes, types.MelodyNote{FreqHz: f, Ms: n.Ms})
	}
	return req
}

// DefaultSong is "Twinkle, Twinkle, Little Star".
func DefaultSong() Song {
	names := []struct {
		note string
		ms   uint32
	}{
		{"C4", 400}, {"C4", 400}, {"G4", 400}, {"G4", 400},
		{"A4", 400}, {"A4", 400}, {"G4", 800},
		{"F4", 400}, {"F4", 400}, {"E4", 400}, {"E4", 400},
		{"D4", 400}, {"D4", 400}, {"C4", 800},
	}
	s := Song{Name: "Twinkle, Twinkle, Little Star"}
	for _, n := range names {
		s.Notes = append(s.Notes, SongNote{Note: n.note, Ms: n.ms})
	}
	_ = s.Validate()
	return s
}

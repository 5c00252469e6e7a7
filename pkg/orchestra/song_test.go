package orchestra

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const songYAML = `
name: test scale
gap_factor: 1.2
notes:
  - {note: C4, ms: 200}
  - {note: E4, ms: 200, duty: 0.8}
  - {freq: 392, ms: 400}
`

func writeTempSong(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "song.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadSong(t *testing.T) {
	s, err := LoadSong(writeTempSong(t, songYAML))
	require.NoError(t, err)

	assert.Equal(t, "test scale", s.Name)
	assert.InDelta(t, 1.2, s.GapFactor, 1e-9)
	require.Len(t, s.Notes, 3)

	f, err := s.Notes[0].FreqHz()
	require.NoError(t, err)
	assert.Equal(t, uint32(262), f)

	// Defaults applied by Validate.
	assert.InDelta(t, 0.5, s.Notes[0].Duty, 1e-9)
	assert.InDelta(t, 0.8, s.Notes[1].Duty, 1e-9)

	f, err = s.Notes[2].FreqHz()
	require.NoError(t, err)
	assert.Equal(t, uint32(392), f)
}

func TestLoadSong_Invalid(t *testing.T) {
	_, err := LoadSong(writeTempSong(t, "notes: []\n"))
	require.Error(t, err)

	_, err = LoadSong(writeTempSong(t, "notes:\n  - {note: H9, ms: 100}\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown note")

	_, err = LoadSong(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestSong_Melody(t *testing.T) {
	s := DefaultSong()
	require.Len(t, s.Notes, 14)

	req := s.Melody(20)
	require.Len(t, req.Notes, 14)
	assert.Equal(t, uint32(262), req.Notes[0].FreqHz)
	assert.Equal(t, uint32(400), req.Notes[0].Ms)
	assert.Equal(t, uint32(800), req.Notes[13].Ms)
	assert.Equal(t, uint32(20), req.GapMs)
}

func TestNoteFreq(t *testing.T) {
	for name, want := range map[string]uint32{
		"C4": 262, "D4": 294, "E4": 330, "F4": 349,
		"G4": 392, "A4": 440, "B4": 494, "C5": 523,
	} {
		got, ok := NoteFreq(name)
		require.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}
	_, ok := NoteFreq("Q7")
	assert.False(t, ok)
}

// services/player/adaptor_host.go
//go:build !rp2040 && !rp2350

package player

import "sync"

// NewBuzzer returns the host-side simulated output for the given pin.
func NewBuzzer(pin int) ToneOutput { return &SimBuzzer{pin: pin} }

// ToneState is one observed output transition. FreqHz 0 means silence.
type ToneState struct {
	FreqHz uint32
	Duty   float64
}

// SimBuzzer records every drive transition for host builds and tests.
type SimBuzzer struct {
	mu     sync.Mutex
	pin    int
	cur    ToneState
	states []ToneState
}

func (b *SimBuzzer) Configure() error { return nil }

func (b *SimBuzzer) SetTone(freqHz uint32, duty float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if freqHz == 0 {
		duty = 0
	}
	b.cur = ToneState{FreqHz: freqHz, Duty: duty}
	b.states = append(b.states, b.cur)
	return nil
}

func (b *SimBuzzer) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cur = ToneState{}
	b.states = append(b.states, b.cur)
}

// Current returns the present output state.
func (b *SimBuzzer) Current() ToneState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cur
}

// States returns a copy of all transitions since construction.
func (b *SimBuzzer) States() []ToneState {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]ToneState, len(b.states))
	copy(out, b.states)
	return out
}

// Tones returns only the audible transitions, in order.
func (b *SimBuzzer) Tones() []uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []uint32
	for _, st := range b.states {
		if st.FreqHz != 0 {
			out = append(out, st.FreqHz)
		}
	}
	return out
}

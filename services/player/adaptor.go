// services/player/adaptor.go
package player

// ToneOutput owns the buzzer output channel. Implementations must not touch
// the bus; the player service is the only caller.
type ToneOutput interface {
	// Configure claims the pin and prepares the PWM slice.
	Configure() error
	// SetTone drives the output at freqHz with the given duty in [0,1].
	// freqHz 0 silences the output.
	SetTone(freqHz uint32, duty float64) error
	// Stop silences the output without releasing the pin.
	Stop()
}

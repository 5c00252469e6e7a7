// services/player/adaptor_rp2.go
//go:build rp2040 || rp2350

package player

import (
	"machine"

	"lightorchestra-go/errcode"
	"lightorchestra-go/x/mathx"
	"lightorchestra-go/x/timex"
)

// pwmGroup is the slice of the RP2 PWM peripheral backing one pin pair.
// machine.PWM0..PWM7 satisfy it.
type pwmGroup interface {
	Configure(config machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	Top() uint32
	Set(channel uint8, value uint32)
	SetPeriod(period uint64) error
}

var pwmGroups = []pwmGroup{
	machine.PWM0, machine.PWM1, machine.PWM2, machine.PWM3,
	machine.PWM4, machine.PWM5, machine.PWM6, machine.PWM7,
}

// NewBuzzer returns the on-target output for a PWM-capable GPIO
// (the kit wires the piezo to GP16).
func NewBuzzer(pin int) ToneOutput {
	return &rp2Buzzer{pin: machine.Pin(pin)}
}

type rp2Buzzer struct {
	pin machine.Pin
	pwm pwmGroup
	ch  uint8
}

func (b *rp2Buzzer) Configure() error {
	slice, err := machine.PWMPeripheral(b.pin)
	if err != nil {
		return &errcode.E{C: errcode.PinUnavailable, Op: "player.configure", Err: err}
	}
	b.pwm = pwmGroups[slice]
	if err := b.pwm.Configure(machine.PWMConfig{Period: timex.PeriodFromHz(440)}); err != nil {
		return &errcode.E{C: errcode.PinUnavailable, Op: "player.configure", Err: err}
	}
	ch, err := b.pwm.Channel(b.pin)
	if err != nil {
		return &errcode.E{C: errcode.PinUnavailable, Op: "player.configure", Err: err}
	}
	b.ch = ch
	b.pwm.Set(b.ch, 0)
	return nil
}

func (b *rp2Buzzer) SetTone(freqHz uint32, duty float64) error {
	if freqHz == 0 {
		b.Stop()
		return nil
	}
	if err := b.pwm.SetPeriod(timex.PeriodFromHz(freqHz)); err != nil {
		return err
	}
	duty = mathx.Clamp(duty, 0, 1)
	b.pwm.Set(b.ch, uint32(duty*float64(b.pwm.Top())))
	return nil
}

func (b *rp2Buzzer) Stop() {
	if b.pwm != nil {
		b.pwm.Set(b.ch, 0)
	}
}

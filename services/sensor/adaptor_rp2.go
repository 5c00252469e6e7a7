// services/sensor/adaptor_rp2.go
//go:build rp2040 || rp2350

package sensor

import (
	"machine"
	"sync"
)

var adcInit sync.Once

// NewADC returns the on-target channel for an ADC-capable GPIO
// (GP26..GP29 on the RP2 family; the kit wires the divider to GP28).
func NewADC(pin int) ADC {
	return &rp2ADC{adc: machine.ADC{Pin: machine.Pin(pin)}}
}

type rp2ADC struct {
	adc machine.ADC
}

func (a *rp2ADC) Configure() error {
	adcInit.Do(machine.InitADC)
	a.adc.Configure(machine.ADCConfig{})
	return nil
}

func (a *rp2ADC) Read() (uint16, error) {
	// machine.ADC.Get is a 12-bit conversion left-scaled to 16 bits.
	return a.adc.Get(), nil
}

// services/sensor/adaptor_host.go
//go:build !rp2040 && !rp2350

package sensor

import "sync"

// NewADC returns the host-side simulated channel for the given pin. The pin
// number is recorded but otherwise unused off-target.
func NewADC(pin int) ADC { return &SimADC{pin: pin} }

// SimADC is a settable, scriptable analog input for host builds and tests.
type SimADC struct {
	mu     sync.Mutex
	pin    int
	level  uint16
	script []uint16
	errs   []error
	reads  int
}

func (a *SimADC) Configure() error { return nil }

// Set fixes the level returned once any scripted values are exhausted.
func (a *SimADC) Set(level uint16) {
	a.mu.Lock()
	a.level = level
	a.mu.Unlock()
}

// Script queues raw values returned by successive reads, ahead of the
// steady level.
func (a *SimADC) Script(levels ...uint16) {
	a.mu.Lock()
	a.script = append(a.script, levels...)
	a.mu.Unlock()
}

// FailNext queues read errors returned once any scripted values are
// exhausted, simulating a transient conversion fault.
func (a *SimADC) FailNext(errs ...error) {
	a.mu.Lock()
	a.errs = append(a.errs, errs...)
	a.mu.Unlock()
}

// Reads reports how many conversions were attempted.
func (a *SimADC) Reads() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.reads
}

func (a *SimADC) Read() (uint16, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reads++
	if len(a.script) > 0 {
		v := a.script[0]
		a.script = a.script[1:]
		return v, nil
	}
	if len(a.errs) > 0 {
		err := a.errs[0]
		a.errs = a.errs[1:]
		return 0, err
	}
	return a.level, nil
}

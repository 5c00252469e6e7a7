// services/sensor/adaptor.go
package sensor

// ADC owns one analog input channel. Implementations must not touch the bus
// or spawn goroutines; the service loop is the only caller.
type ADC interface {
	// Configure prepares the channel for sampling.
	Configure() error
	// Read performs one conversion and returns the 16-bit raw value.
	Read() (uint16, error)
}

package types

// ------------------------
// Light sensing
// ------------------------

// LuxPerNorm scales a normalised reading to a rough lux estimate. The
// photoresistor divider is not a calibrated lux meter; this is a classroom
// approximation.
const LuxPerNorm = 1000.0

// Calibration maps raw ADC counts onto the usable range of the divider.
// RawMin is the reading in darkness, RawMax under direct light.
type Calibration struct {
	RawMin uint16 `json:"raw_min"`
	RawMax uint16 `json:"raw_max"`
}

// DefaultCalibration carries the bench-measured bounds for the kit's
// photoresistor divider on a 16-bit ADC read.
func DefaultCalibration() Calibration {
	return Calibration{RawMin: 600, RawMax: 65338}
}

// Normalize converts a raw reading to [0,1], clamping out-of-range values to
// the nearest bound. A degenerate calibration (RawMax <= RawMin) yields 0.
func (c Calibration) Normalize(raw uint16) float64 {
	if c.RawMax <= c.RawMin {
		return 0
	}
	if raw < c.RawMin {
		raw = c.RawMin
	} else if raw > c.RawMax {
		raw = c.RawMax
	}
	return float64(raw-c.RawMin) / float64(c.RawMax-c.RawMin)
}

// EstimateLux is a rough lux estimate from a normalised value.
func EstimateLux(norm float64) float64 { return norm * LuxPerNorm }

// LightReading is one sampled light level. Overwritten every cycle; the
// retained bus slot holds only the latest.
type LightReading struct {
	Raw      uint16  `json:"raw"`
	Norm     float64 `json:"norm"`
	Lux      float64 `json:"lux"`
	Degraded bool    `json:"degraded,omitempty"` // read failed, zero substituted
	TSms     int64   `json:"ts_ms"`
}

// ReadingFrom builds a LightReading from a raw sample.
func ReadingFrom(raw uint16, cal Calibration, tsMs int64) LightReading {
	norm := cal.Normalize(raw)
	return LightReading{
		Raw:  raw,
		Norm: norm,
		Lux:  EstimateLux(norm),
		TSms: tsMs,
	}
}

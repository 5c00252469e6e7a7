package types

import "testing"

func TestCalibration_NormalizeBounds(t *testing.T) {
	cal := DefaultCalibration()

	if got := cal.Normalize(cal.RawMin); got != 0 {
		t.Errorf("Normalize(RawMin) = %v, want 0", got)
	}
	if got := cal.Normalize(cal.RawMax); got != 1 {
		t.Errorf("Normalize(RawMax) = %v, want 1", got)
	}
	// Out-of-range raw values clamp, never fail.
	if got := cal.Normalize(0); got != 0 {
		t.Errorf("Normalize(0) = %v, want 0 (clamped)", got)
	}
	if got := cal.Normalize(65535); got != 1 {
		t.Errorf("Normalize(65535) = %v, want 1 (clamped)", got)
	}
}

func TestCalibration_NormalizeMonotonic(t *testing.T) {
	cal := DefaultCalibration()
	prev := -1.0
	for raw := 0; raw <= 65535; raw += 1024 {
		n := cal.Normalize(uint16(raw))
		if n < prev {
			t.Fatalf("Normalize not monotonic at raw=%d: %v < %v", raw, n, prev)
		}
		if n < 0 || n > 1 {
			t.Fatalf("Normalize(%d) = %v out of [0,1]", raw, n)
		}
		prev = n
	}
}

func TestCalibration_Degenerate(t *testing.T) {
	cal := Calibration{RawMin: 100, RawMax: 100}
	if got := cal.Normalize(5000); got != 0 {
		t.Errorf("degenerate calibration should normalise to 0, got %v", got)
	}
}

func TestReadingFrom(t *testing.T) {
	cal := Calibration{RawMin: 0, RawMax: 1000}
	r := ReadingFrom(500, cal, 42)
	if r.Raw != 500 || r.TSms != 42 {
		t.Errorf("unexpected reading: %+v", r)
	}
	if r.Norm != 0.5 {
		t.Errorf("Norm = %v, want 0.5", r.Norm)
	}
	if r.Lux != 0.5*LuxPerNorm {
		t.Errorf("Lux = %v, want %v", r.Lux, 0.5*LuxPerNorm)
	}
}

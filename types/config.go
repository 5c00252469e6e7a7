package types

// ------------------------
// Device configuration
// ------------------------
//
// The embedded device config is one JSON object whose top-level keys are
// published as retained config/<section> messages. Each service decodes only
// its own section.

type SensorConfig struct {
	Pin        int    `json:"pin"`         // ADC-capable GPIO
	IntervalMs uint32 `json:"interval_ms"` // sample cadence
	RawMin     uint16 `json:"raw_min"`
	RawMax     uint16 `json:"raw_max"`
}

type PlayerConfig struct {
	Pin    int  `json:"pin"`    // PWM-capable GPIO driving the buzzer
	Follow bool `json:"follow"` // start in light-follow mode
}

type APIConfig struct {
	Addr string `json:"addr"` // listen address, e.g. ":80"
}

type NetConfig struct {
	SSID       string `json:"ssid"`
	Passphrase string `json:"passphrase"`
}

type SysInfoConfig struct {
	DeviceID   string `json:"device_id"`
	IntervalMs uint32 `json:"interval_ms"`
}

// HealthInfo mirrors the device /health payload.
type HealthInfo struct {
	DeviceID string        `json:"device_id"`
	UptimeMs int64         `json:"uptime_ms"`
	HeapFree uint64        `json:"heap_free"`
	Sensor   *LightReading `json:"sensor,omitempty"`
}

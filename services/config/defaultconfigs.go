package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Populate embeddedConfigs at build time (e.g. via code generation) or
// manually during development.
// Key: device ID (same value placed in ctx under CtxDeviceKey)
// Val: raw JSON bytes for that device
// -----------------------------------------------------------------------------

const cfgPico2W = `{
  "sensor": {
      "pin": 28,
      "interval_ms": 50,
      "raw_min": 600,
      "raw_max": 65338
  },
  "player": {
      "pin": 16,
      "follow": true
  },
  "api": {
      "addr": ":80"
  },
  "net": {
      "ssid": "",
      "passphrase": ""
  },
  "sysinfo": {
      "device_id": "pico-2w-dev",
      "interval_ms": 1000
  }
}`

var embeddedConfigs = map[string][]byte{
	"pico-2w": []byte(cfgPico2W),
}

package types

import "encoding/json"

// Decode coerces a bus payload into dst. Payloads cross the in-process bus
// as typed structs, raw JSON bytes (embedded config), or generic maps; a
// JSON round trip covers the latter two uniformly.
func Decode(payload any, dst any) error {
	switch v := payload.(type) {
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		return json.Unmarshal(b, dst)
	}
}

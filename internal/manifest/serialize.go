package manifest

import "encoding/json"

// Serialize renders the compact form used for uploads and signing.
func Serialize(m Manifest) ([]byte, error) {
	return json.Marshal(m)
}

// SerializePretty renders the indented form written to disk.
func SerializePretty(m Manifest) ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// Deserialize parses a manifest, tolerating unknown fields for forward
// compatibility.
func Deserialize(data []byte) (Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, err
	}
	if m.SchemaVersion == "" {
		m.SchemaVersion = SchemaVersion
	}
	return m, nil
}

// SigningPayload renders the canonical bytes to be signed: the compact
// serialization of m with signing stripped. Verification must reproduce
// these exact bytes by parsing, stripping signing, and re-serializing.
func SigningPayload(m Manifest) ([]byte, error) {
	unsigned := m
	unsigned.Signing = nil
	return Serialize(unsigned)
}

package buildinput

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
)

// HashVersion tags the canonical-JSON schema this hasher produces. Adding
// or removing an ABI field is a breaking change and requires bumping this
// tag, never silently changing the schema under "b1".
const HashVersion = "b1"

// CanonicalJSON renders the full per-target canonical JSON for inputs:
// fields sorted by name, each field rendered as an object with its own
// keys sorted, wrapped in a root object with its keys sorted too.
// encoding/json sorts map keys lexicographically, which is the canonical
// order the hash schema requires.
func CanonicalJSON(in Inputs) ([]byte, error) {
	return canonicalJSON(in.Fields())
}

// CanonicalJSONWithoutTarget is CanonicalJSON with rust.target_triple
// forced absent, used for the target-agnostic release id.
func CanonicalJSONWithoutTarget(in Inputs) ([]byte, error) {
	return canonicalJSON(in.FieldsWithoutTarget())
}

func canonicalJSON(fields []Field) ([]byte, error) {
	sorted := make([]Field, len(fields))
	copy(sorted, fields)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	values := make([]map[string]interface{}, len(sorted))
	for i, field := range sorted {
		var value interface{}
		if field.Value.present {
			value = field.Value.value
		} else {
			value = nil
		}
		values[i] = map[string]interface{}{
			"name":        field.Name,
			"affects_abi": field.AffectsAbi,
			"value":       value,
		}
	}

	root := map[string]interface{}{
		"version": HashVersion,
		"inputs":  values,
	}
	return json.Marshal(root)
}

// HashBuildInputs computes the per-target build id: "b1-<sha256 hex>"
// over the full canonical JSON, including the target triple.
func HashBuildInputs(in Inputs) (string, error) {
	data, err := CanonicalJSON(in)
	if err != nil {
		return "", err
	}
	return hashJSON(data), nil
}

// HashReleaseInputs computes the target-agnostic release id, shared by
// every target built from the same ABI-affecting inputs.
func HashReleaseInputs(in Inputs) (string, error) {
	data, err := CanonicalJSONWithoutTarget(in)
	if err != nil {
		return "", err
	}
	return hashJSON(data), nil
}

func hashJSON(data []byte) string {
	digest := sha256.Sum256(data)
	return fmt.Sprintf("%s-%s", HashVersion, hex.EncodeToString(digest[:]))
}

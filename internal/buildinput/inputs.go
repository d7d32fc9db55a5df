// Package buildinput models the ABI-affecting inputs that define a build
// identity and derives the content-addressed build id / release id from
// them. Excludes timestamps, absolute paths, environment variables, and
// CI metadata — anything that would make two functionally identical
// builds hash differently.
package buildinput

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/nuCode-Tech/lib-forge/internal/bindings"
)

// SchemaVersion is the literal manifest schema version this build of
// libforge stamps into every build identity. Changing it invalidates
// every previously computed build id.
const SchemaVersion = "libforge.manifest.v1"

// Value is the explicit presence marker for an ABI-affecting field: a
// value that is "not present" must be distinguishable in the canonical
// JSON from a field a newer schema version simply doesn't know about yet.
type Value struct {
	present bool
	value   string
}

// Present wraps a value that is known to be present.
func Present(value string) Value { return Value{present: true, value: value} }

// Absent is the explicit absence marker.
var Absent = Value{}

// Inputs is the full ABI-affecting record for one build. Every hashed
// field carries an explicit Present/Absent marker; only UniffiUDL and
// LibforgeYaml can be Absent here (FieldsWithoutTarget also marks the
// target triple Absent). Field-name ordering is imposed at hash time,
// not by struct layout.
type Inputs struct {
	CargoToml             string // ABI-affecting: Cargo manifest content, verbatim.
	CargoLock             string // ABI-affecting: Cargo lockfile content, verbatim.
	RustTargetTriple      string // ABI-affecting: compilation target triple.
	UniffiUDL             Value  // ABI-affecting: optional UniFFI UDL source.
	LibforgeYaml          Value  // ABI-affecting: optional libforge.yaml content.
	BindingMetadata       bindings.Set
	ManifestSchemaVersion string
}

// FromManifestDir reads Cargo.toml and Cargo.lock (required) and
// libforge.yaml (optional) from manifestDir and assembles Inputs. Callers
// supply the target triple, UDL input, and binding metadata separately
// since those come from the build plan, not the filesystem alone.
func FromManifestDir(manifestDir, rustTargetTriple string, udl Value, bindingSet bindings.Set) (Inputs, error) {
	cargoToml, err := os.ReadFile(filepath.Join(manifestDir, "Cargo.toml"))
	if err != nil {
		return Inputs{}, err
	}
	cargoLock, err := os.ReadFile(filepath.Join(manifestDir, "Cargo.lock"))
	if err != nil {
		return Inputs{}, err
	}
	libforgeYaml, err := readOptionalFile(filepath.Join(manifestDir, "libforge.yaml"))
	if err != nil {
		return Inputs{}, err
	}
	return Inputs{
		CargoToml:             string(cargoToml),
		CargoLock:             string(cargoLock),
		RustTargetTriple:      rustTargetTriple,
		UniffiUDL:             udl,
		LibforgeYaml:          libforgeYaml,
		BindingMetadata:       bindingSet,
		ManifestSchemaVersion: SchemaVersion,
	}, nil
}

func readOptionalFile(path string) (Value, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Absent, nil
		}
		return Value{}, err
	}
	return Present(string(contents)), nil
}

// Field is one entry of the closed, versioned ABI-input schema.
type Field struct {
	Name       string
	Value      Value
	AffectsAbi bool
}

// Fields enumerates every ABI-affecting field with explicit presence, in
// the closed schema order (sorted by name at hash time, not here).
func (in Inputs) Fields() []Field {
	return []Field{
		{Name: "cargo.toml", Value: Present(in.CargoToml), AffectsAbi: true},
		{Name: "cargo.lock", Value: Present(in.CargoLock), AffectsAbi: true},
		{Name: "rust.target_triple", Value: Present(in.RustTargetTriple), AffectsAbi: true},
		{Name: "uniffi.udl", Value: in.UniffiUDL, AffectsAbi: true},
		{Name: "libforge.yaml", Value: in.LibforgeYaml, AffectsAbi: true},
		{Name: "binding.metadata", Value: Present(in.BindingMetadata.CanonicalString()), AffectsAbi: true},
		{Name: "manifest.schema_version", Value: Present(in.ManifestSchemaVersion), AffectsAbi: true},
	}
}

// FieldsWithoutTarget is identical to Fields except rust.target_triple is
// forced to Absent, producing the target-agnostic field list a
// multi-target release shares across every platform.
func (in Inputs) FieldsWithoutTarget() []Field {
	fields := in.Fields()
	for i := range fields {
		if fields[i].Name == "rust.target_triple" {
			fields[i].Value = Absent
		}
	}
	return fields
}

package buildinput

import (
	"strings"
	"testing"

	"github.com/nuCode-Tech/lib-forge/internal/bindings"
)

func sampleInputs() Inputs {
	bindingSet := bindings.Set{Bindings: []bindings.Metadata{
		bindings.Dart{SDKConstraint: "3.0", FFIAbi: "1"},
		bindings.Kotlin{MinSDK: 21, JVMTarget: "1.8", NDKAbis: []string{"arm64-v8a", "x86_64"}},
		bindings.Python{AbiTag: "cp311", PlatformTag: "manylinux_2_28"},
		bindings.Swift{Toolchain: "5.9", DeploymentTarget: "13.0"},
	}}
	return Inputs{
		CargoToml:             "[package]\nname = \"demo\"\nversion = \"0.1.0\"\n",
		CargoLock:             "version = 3\n[[package]]\nname = \"demo\"\nversion = \"0.1.0\"\n",
		RustTargetTriple:      "aarch64-apple-darwin",
		UniffiUDL:             Present("namespace demo; interface Demo { string ping(); };"),
		LibforgeYaml:          Present("build:\n  targets:\n    - x86_64-unknown-linux-gnu\n"),
		BindingMetadata:       bindingSet,
		ManifestSchemaVersion: SchemaVersion,
	}
}

// TestHashBuildInputsIsStableAndWellFormed checks the b1- prefix over
// the full input set and that repeated hashing of the same inputs
// reproduces the same id.
func TestHashBuildInputsIsStableAndWellFormed(t *testing.T) {
	hash, err := HashBuildInputs(sampleInputs())
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(hash, "b1-") {
		t.Fatalf("hash %q missing b1- prefix", hash)
	}
	again, err := HashBuildInputs(sampleInputs())
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash != again {
		t.Fatalf("hash is not deterministic: %q != %q", hash, again)
	}
}

func TestHashStartsWithVersionTag(t *testing.T) {
	hash, err := HashBuildInputs(sampleInputs())
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(hash, "b1-") {
		t.Fatalf("hash %q missing b1- prefix", hash)
	}
	if len(hash) != len("b1-")+64 {
		t.Fatalf("hash %q has unexpected length %d", hash, len(hash))
	}
}

func TestAbsentFieldSerializesAsNull(t *testing.T) {
	in := sampleInputs()
	in.UniffiUDL = Absent
	data, err := CanonicalJSON(in)
	if err != nil {
		t.Fatalf("canonical json: %v", err)
	}
	if !strings.Contains(string(data), `"affects_abi":true,"name":"uniffi.udl","value":null`) {
		t.Fatalf("expected uniffi.udl field to serialize as null, got %s", data)
	}
}

func TestHashChangesWhenAbiInputChanges(t *testing.T) {
	original, err := HashBuildInputs(sampleInputs())
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	changed := sampleInputs()
	changed.LibforgeYaml = Present("build:\n  targets:\n    - windows\n")
	changedHash, err := HashBuildInputs(changed)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if original == changedHash {
		t.Fatalf("expected hash to change when an ABI field changes")
	}
}

func TestReleaseHashIgnoresTargetTriple(t *testing.T) {
	a := sampleInputs()
	b := sampleInputs()
	b.RustTargetTriple = "x86_64-unknown-linux-gnu"

	releaseA, err := HashReleaseInputs(a)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	releaseB, err := HashReleaseInputs(b)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if releaseA != releaseB {
		t.Fatalf("release hash should be target-agnostic: %q != %q", releaseA, releaseB)
	}

	buildA, _ := HashBuildInputs(a)
	buildB, _ := HashBuildInputs(b)
	if buildA == buildB {
		t.Fatalf("per-target build hash should differ across target triples")
	}
}

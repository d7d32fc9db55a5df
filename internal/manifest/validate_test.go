package manifest

import "testing"

func sampleManifest() Manifest {
	return Manifest{
		SchemaVersion: SchemaVersion,
		Package:       Package{Name: "libforge-sample", Version: "0.1.0"},
		Build: Build{
			ID: "b1-demo",
			Identity: BuildIdentity{
				Host:      "linux",
				Toolchain: "rustc 1.78.0",
				Profile:   "release",
				Features:  []string{"feature-a"},
			},
		},
		Artifacts: Artifacts{Naming: DefaultArtifactNaming()},
		Bindings: Bindings{
			Catalog: []BindingDescriptor{
				{Name: "dart", Version: "3.0.0", Platforms: []string{"x86_64-unknown-linux-gnu"}, Artifacts: []string{"bundle"}},
			},
		},
		Platforms: Platforms{
			Default: "x86_64-unknown-linux-gnu",
			Targets: []Platform{
				{
					Name:      "x86_64-unknown-linux-gnu",
					BuildID:   "b1-demo",
					Triples:   []string{"x86_64-unknown-linux-gnu"},
					Bindings:  []string{"dart"},
					Artifacts: []string{"bundle"},
				},
			},
		},
	}
}

func expectKind(t *testing.T, err error, kind string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error of kind %s, got nil", kind)
	}
	me, ok := err.(*ManifestError)
	if !ok {
		t.Fatalf("expected *ManifestError, got %T", err)
	}
	if me.Kind != kind {
		t.Fatalf("expected kind %s, got %s (%v)", kind, me.Kind, me)
	}
}

func TestValidateSampleManifest(t *testing.T) {
	if err := Validate(sampleManifest()); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestInvalidDefaultPlatform(t *testing.T) {
	m := sampleManifest()
	m.Platforms.Default = "ios-arm64"
	expectKind(t, Validate(m), "InvalidPlatformKey")
}

func TestInvalidDefaultPlatformNotInTargets(t *testing.T) {
	m := sampleManifest()
	m.Platforms.Default = "aarch64-apple-darwin"
	expectKind(t, Validate(m), "InvalidDefaultPlatform")
}

func TestInvalidPlatformKeyFails(t *testing.T) {
	m := sampleManifest()
	m.Platforms.Targets[0].Name = "linux"
	expectKind(t, Validate(m), "InvalidPlatformKey")
}

func TestBindingVersionMissingFails(t *testing.T) {
	m := sampleManifest()
	m.Bindings.Catalog[0].Version = " "
	expectKind(t, Validate(m), "BindingVersionMissing")
}

func TestDuplicateArtifactIdentifierFails(t *testing.T) {
	m := sampleManifest()
	m.Platforms.Targets = append(m.Platforms.Targets, Platform{
		Name:      "aarch64-linux-android",
		BuildID:   "b1-demo-android",
		Triples:   []string{"aarch64-linux-android"},
		Bindings:  []string{"dart"},
		Artifacts: []string{"bundle"},
	})
	expectKind(t, Validate(m), "DuplicateArtifactIdentifier")
}

func TestArtifactMissingPlatformFails(t *testing.T) {
	m := sampleManifest()
	m.Bindings.Catalog[0].Artifacts = []string{"missing"}
	expectKind(t, Validate(m), "ArtifactMissingPlatform")
}

func TestArtifactPlatformMismatchFails(t *testing.T) {
	m := sampleManifest()
	m.Platforms.Targets = append(m.Platforms.Targets, Platform{
		Name:     "aarch64-linux-android",
		BuildID:  "b1-demo-android",
		Triples:  []string{"aarch64-linux-android"},
		Bindings: []string{"dart"},
	})
	m.Bindings.Catalog[0].Platforms = []string{"aarch64-linux-android"}
	expectKind(t, Validate(m), "ArtifactPlatformMismatch")
}

func TestAbiFieldMissingFailsOnEmptyProfile(t *testing.T) {
	m := sampleManifest()
	m.Build.Identity.Profile = ""
	expectKind(t, Validate(m), "AbiFieldMissing")
}

func TestMissingPlatformBuildIdFails(t *testing.T) {
	m := sampleManifest()
	m.Platforms.Targets[0].BuildID = ""
	expectKind(t, Validate(m), "MissingPlatformBuildId")
}

func TestEmptyArtifactIdentifierFails(t *testing.T) {
	m := sampleManifest()
	m.Platforms.Targets[0].Artifacts = []string{" "}
	expectKind(t, Validate(m), "EmptyArtifactIdentifier")
}

func TestUnknownBindingPlatformFails(t *testing.T) {
	m := sampleManifest()
	m.Bindings.Catalog[0].Platforms = []string{"linux"}
	expectKind(t, Validate(m), "UnknownBindingPlatform")
}

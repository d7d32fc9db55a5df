package platform

import (
	"errors"
	"testing"
)

func TestParseRoundTripsEveryKey(t *testing.T) {
	for _, key := range All() {
		parsed, err := Parse(key.String())
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", key.String(), err)
		}
		if parsed != key {
			t.Fatalf("Parse(%q) = %v, want %v", key.String(), parsed, key)
		}
	}
}

func TestRegistryIsInjective(t *testing.T) {
	canonicals := make(map[string]Key)
	primaryTriples := make(map[string]Key)
	for _, key := range All() {
		if other, seen := canonicals[key.String()]; seen {
			t.Fatalf("keys %v and %v share canonical string %q", other, key, key.String())
		}
		canonicals[key.String()] = key

		triples := key.RustTargets()
		if len(triples) == 0 {
			continue
		}
		if other, seen := primaryTriples[triples[0]]; seen {
			t.Fatalf("keys %v and %v share primary triple %q", other, key, triples[0])
		}
		primaryTriples[triples[0]] = key
	}
}

func TestParseDistinguishesFormatFromUnknown(t *testing.T) {
	_, err := Parse("Has-Uppercase")
	var keyErr *KeyError
	if !errors.As(err, &keyErr) || !keyErr.InvalidFormat {
		t.Fatalf("Parse with uppercase: got %v, want InvalidFormat", err)
	}

	_, err = Parse("riscv64-unknown-linux-gnu")
	if !errors.As(err, &keyErr) || keyErr.InvalidFormat || keyErr.UnknownKey == "" {
		t.Fatalf("Parse with unregistered key: got %v, want UnknownKey", err)
	}

	_, err = Parse("nodash")
	if !errors.As(err, &keyErr) || !keyErr.InvalidFormat {
		t.Fatalf("Parse without hyphen: got %v, want InvalidFormat", err)
	}
}

func TestDefaultArchiveKindFollowsOSTable(t *testing.T) {
	for _, key := range All() {
		want := ArchiveTarGz
		switch key.OS() {
		case OSMacos, OSIos, OSWindows:
			want = ArchiveZip
		}
		if got := key.DefaultArchiveKind(); got != want {
			t.Errorf("%v.DefaultArchiveKind() = %v, want %v", key, got, want)
		}
	}
}

func TestLibraryFilenamePerOS(t *testing.T) {
	cases := []struct {
		key  Key
		want string
	}{
		{LinuxX86_64, "libDemo.so"},
		{AndroidArm64, "libDemo.so"},
		{WindowsX86_64Msvc, "Demo.dll"},
		{MacosArm64, "libDemo.dylib"},
		{IosArm64, "libDemo.dylib"},
	}
	for _, c := range cases {
		if got := LibraryFilename("Demo", c.key); got != c.want {
			t.Errorf("LibraryFilename(Demo, %v) = %q, want %q", c.key, got, c.want)
		}
	}
}

func TestFromRustTargetCardinality(t *testing.T) {
	if got := FromRustTarget("x86_64-unknown-linux-musl"); len(got) != 1 || got[0] != LinuxX86_64 {
		t.Fatalf("FromRustTarget(musl) = %v, want [LinuxX86_64]", got)
	}
	if got := FromRustTarget("wasm32-unknown-unknown"); len(got) != 0 {
		t.Fatalf("FromRustTarget(wasm32) = %v, want none", got)
	}
	if !IsSupportedRustTarget("aarch64-apple-ios") {
		t.Fatal("aarch64-apple-ios should be a supported target")
	}
}

func TestBindingSupport(t *testing.T) {
	if got := LinuxX86_64.BindingSupport("kotlin"); got != Supported {
		t.Fatalf("BindingSupport(kotlin) = %v, want Supported", got)
	}
	if got := LinuxX86_64.BindingSupport("cobol"); got != Unknown {
		t.Fatalf("BindingSupport(cobol) = %v, want Unknown", got)
	}
}

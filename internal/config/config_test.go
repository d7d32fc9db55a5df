package config

import (
	"strings"
	"testing"

	"github.com/nuCode-Tech/lib-forge/internal/platform"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
		check   func(*Config) bool
	}{
		{
			name: "empty document",
			yaml: ``,
			check: func(c *Config) bool {
				return len(c.Build.Targets) == 0 && c.Build.Toolchain.Channel == ""
			},
		},
		{
			name: "explicit targets by canonical name",
			yaml: "build:\n  targets:\n    - x86_64-unknown-linux-gnu\n    - aarch64-apple-darwin\n",
			check: func(c *Config) bool {
				return len(c.Build.Targets) == 2 && c.Build.Targets[0] == "x86_64-unknown-linux-gnu"
			},
		},
		{
			name: "targets by non-canonical rust triple",
			yaml: "build:\n  targets:\n    - x86_64-unknown-linux-musl\n",
			check: func(c *Config) bool {
				return len(c.Build.Targets) == 1 && c.Build.Targets[0] == "x86_64-unknown-linux-musl"
			},
		},
		{
			name: "toolchain channel",
			yaml: "build:\n  toolchain:\n    channel: stable\n",
			check: func(c *Config) bool {
				return c.Build.Toolchain.Channel == "stable"
			},
		},
		{
			name: "precompiled binaries",
			yaml: "precompiled_binaries:\n  repository: acme/demo\n  public_key: deadbeef\n",
			check: func(c *Config) bool {
				return c.PrecompiledBinaries.Repository == "acme/demo" &&
					c.PrecompiledBinaries.PublicKey == "deadbeef"
			},
		},
		{
			name:    "malformed yaml",
			yaml:    "build:\n  targets: [unterminated\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse(strings.NewReader(tt.yaml))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if tt.check != nil && !tt.check(cfg) {
				t.Fatalf("check failed for config %+v", cfg)
			}
		})
	}
}

func TestResolvedTargetsDefaultsToEveryPlatform(t *testing.T) {
	cfg := &Config{}
	keys, err := cfg.ResolvedTargets()
	if err != nil {
		t.Fatalf("ResolvedTargets() error = %v", err)
	}
	if len(keys) != len(platform.All()) {
		t.Fatalf("len(keys) = %d, want %d", len(keys), len(platform.All()))
	}
}

func TestResolvedTargetsByCanonicalName(t *testing.T) {
	cfg := &Config{Build: Build{Targets: []string{"x86_64-unknown-linux-gnu"}}}
	keys, err := cfg.ResolvedTargets()
	if err != nil {
		t.Fatalf("ResolvedTargets() error = %v", err)
	}
	if len(keys) != 1 || keys[0] != platform.LinuxX86_64 {
		t.Fatalf("ResolvedTargets() = %v, want [LinuxX86_64]", keys)
	}
}

func TestResolvedTargetsByRustTriple(t *testing.T) {
	cfg := &Config{Build: Build{Targets: []string{"x86_64-unknown-linux-musl"}}}
	keys, err := cfg.ResolvedTargets()
	if err != nil {
		t.Fatalf("ResolvedTargets() error = %v", err)
	}
	if len(keys) != 1 || keys[0] != platform.LinuxX86_64 {
		t.Fatalf("ResolvedTargets() = %v, want [LinuxX86_64]", keys)
	}
}

func TestResolvedTargetsRejectsUnknownEntry(t *testing.T) {
	cfg := &Config{Build: Build{Targets: []string{"not-a-real-target"}}}
	if _, err := cfg.ResolvedTargets(); err == nil {
		t.Fatal("expected error for unresolvable target")
	}
}

func TestValidateRequiresCompletePrecompiledBinaries(t *testing.T) {
	cfg := &Config{PrecompiledBinaries: PrecompiledBinaries{Repository: "acme/demo"}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for precompiled_binaries missing public_key")
	}

	cfg.PrecompiledBinaries.PublicKey = "deadbeef"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestResolvedURLPrefixDefaultsFromRepository(t *testing.T) {
	p := PrecompiledBinaries{Repository: "acme/demo"}
	want := "https://example.com/acme/demo/releases/download/"
	if got := p.ResolvedURLPrefix("example.com"); got != want {
		t.Fatalf("ResolvedURLPrefix() = %q, want %q", got, want)
	}
}

func TestResolvedURLPrefixHonorsExplicitValue(t *testing.T) {
	p := PrecompiledBinaries{Repository: "acme/demo", URLPrefix: "https://cdn.example.com/assets/"}
	if got := p.ResolvedURLPrefix("example.com"); got != p.URLPrefix {
		t.Fatalf("ResolvedURLPrefix() = %q, want %q", got, p.URLPrefix)
	}
}

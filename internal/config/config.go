// Package config reads and validates the declarative libforge.yaml
// configuration file: which targets to build, the toolchain channel to
// pin, and where precompiled binaries are published from.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nuCode-Tech/lib-forge/internal/platform"
)

// FileName is the conventional name of the configuration file at a
// workspace root.
const FileName = "libforge.yaml"

// Config is the parsed contents of libforge.yaml.
type Config struct {
	Build               Build               `yaml:"build,omitempty"`
	PrecompiledBinaries PrecompiledBinaries `yaml:"precompiled_binaries,omitempty"`

	// BaseDir is the directory containing the config file, used to
	// resolve paths relative to it. Not parsed from YAML; set by Load.
	BaseDir string `yaml:"-"`
}

// Build configures what gets compiled and with which toolchain.
type Build struct {
	// Targets lists compilation target triples; each must resolve to
	// exactly one PlatformKey. Empty means "every registered platform".
	Targets   []string  `yaml:"targets,omitempty"`
	Toolchain Toolchain `yaml:"toolchain,omitempty"`
}

// Toolchain pins the rustup channel used for every build invocation.
type Toolchain struct {
	Channel string `yaml:"channel,omitempty"`
}

// PrecompiledBinaries points consumers at where release archives are
// published, for fetching prebuilt libraries instead of compiling.
type PrecompiledBinaries struct {
	Repository string `yaml:"repository,omitempty"`
	URLPrefix  string `yaml:"url_prefix,omitempty"`
	PublicKey  string `yaml:"public_key,omitempty"`
}

// Error is the closed taxonomy of configuration failures.
type Error struct {
	Kind  string // "Io", "Parse", "MissingTargets", "InvalidTarget", "MissingPrecompiledField"
	Value string
	Err   error
}

func (e *Error) Error() string {
	switch e.Kind {
	case "Io":
		return fmt.Sprintf("config io error: %s", e.Err)
	case "Parse":
		return fmt.Sprintf("config parse error: %s", e.Err)
	case "MissingTargets":
		return "no targets resolved: build.targets is empty and the registry is empty"
	case "InvalidTarget":
		return fmt.Sprintf("build.targets entry %q does not resolve to exactly one platform", e.Value)
	case "MissingPrecompiledField":
		return fmt.Sprintf("precompiled_binaries.%s is required when precompiled_binaries is set", e.Value)
	default:
		return "config error"
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Load reads and parses a config file, resolving BaseDir from its path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &Error{Kind: "Io", Err: err}
	}
	defer f.Close()

	cfg, err := Parse(f)
	if err != nil {
		return nil, err
	}

	if absPath, err := filepath.Abs(path); err == nil {
		cfg.BaseDir = filepath.Dir(absPath)
	}
	return cfg, nil
}

// Parse decodes a config document from r.
func Parse(r io.Reader) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&cfg); err != nil {
		if err == io.EOF {
			return &cfg, nil
		}
		return nil, &Error{Kind: "Parse", Err: err}
	}
	return &cfg, nil
}

// ResolvedTargets returns the platform keys build.targets resolves to,
// defaulting to every registered platform when the list is empty.
// Each entry must resolve to exactly one PlatformKey, either as a
// canonical platform name or as a rust target triple unique to one
// platform.
func (c *Config) ResolvedTargets() ([]platform.Key, error) {
	if len(c.Build.Targets) == 0 {
		all := platform.All()
		if len(all) == 0 {
			return nil, &Error{Kind: "MissingTargets"}
		}
		return all, nil
	}

	keys := make([]platform.Key, 0, len(c.Build.Targets))
	for _, target := range c.Build.Targets {
		key, err := resolveTarget(target)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func resolveTarget(target string) (platform.Key, error) {
	if key, err := platform.Parse(target); err == nil {
		return key, nil
	}
	matches := platform.FromRustTarget(target)
	if len(matches) != 1 {
		return 0, &Error{Kind: "InvalidTarget", Value: target}
	}
	return matches[0], nil
}

// Validate checks internal consistency of the parsed config beyond what
// YAML decoding already enforces.
func (c *Config) Validate() error {
	if _, err := c.ResolvedTargets(); err != nil {
		return err
	}
	if c.PrecompiledBinaries.hasAnyField() {
		if c.PrecompiledBinaries.Repository == "" {
			return &Error{Kind: "MissingPrecompiledField", Value: "repository"}
		}
		if c.PrecompiledBinaries.PublicKey == "" {
			return &Error{Kind: "MissingPrecompiledField", Value: "public_key"}
		}
	}
	return nil
}

func (p PrecompiledBinaries) hasAnyField() bool {
	return p.Repository != "" || p.URLPrefix != "" || p.PublicKey != ""
}

// ResolvedURLPrefix returns url_prefix, defaulting to the standard
// release-asset download path under repository when unset.
func (p PrecompiledBinaries) ResolvedURLPrefix(forgeHost string) string {
	if p.URLPrefix != "" {
		return p.URLPrefix
	}
	if p.Repository == "" {
		return ""
	}
	return fmt.Sprintf("https://%s/%s/releases/download/", strings.TrimSuffix(forgeHost, "/"), p.Repository)
}

// Package platform holds the closed registry of supported compilation
// targets: the canonical PlatformKey enumeration and the static table
// mapping each key to its Rust target triples, OS/architecture family,
// default packaging format, and supported binding languages.
package platform

import (
	"fmt"
	"strings"

	"github.com/nuCode-Tech/lib-forge/internal/bindings"
)

// Key is the canonical, stable identifier of a supported (OS, architecture,
// ABI) triple. The zero value is not a valid key; use Parse or one of the
// named constants.
type Key int

const (
	LinuxX86_64 Key = iota + 1
	LinuxAarch64
	MacosArm64
	MacosX86_64
	MacosUniversal
	IosArm64
	IosSimulator
	AndroidArm64
	AndroidArmv7
	AndroidX86_64
	WindowsX86_64Msvc
	WindowsArm64Msvc
)

// Family groups platform keys by the toolchain and packaging conventions
// they share.
type Family int

const (
	FamilyLinux Family = iota
	FamilyWindows
	FamilyAndroid
	FamilyApple
)

func (f Family) String() string {
	switch f {
	case FamilyLinux:
		return "linux"
	case FamilyWindows:
		return "windows"
	case FamilyAndroid:
		return "android"
	case FamilyApple:
		return "apple"
	default:
		return "unknown"
	}
}

// OS is the operating system a platform key targets.
type OS int

const (
	OSLinux OS = iota
	OSWindows
	OSAndroid
	OSMacos
	OSIos
)

func (o OS) String() string {
	switch o {
	case OSLinux:
		return "linux"
	case OSWindows:
		return "windows"
	case OSAndroid:
		return "android"
	case OSMacos:
		return "macos"
	case OSIos:
		return "ios"
	default:
		return "unknown"
	}
}

// ArchiveKind is the container format a packer emits.
type ArchiveKind int

const (
	ArchiveTarGz ArchiveKind = iota
	ArchiveZip
)

func (a ArchiveKind) Extension() string {
	switch a {
	case ArchiveTarGz:
		return "tar.gz"
	case ArchiveZip:
		return "zip"
	default:
		return ""
	}
}

// descriptor is the immutable, process-wide registry entry for a platform
// key. The canonical key string is the platform's primary (first) Rust
// target triple, except MacosUniversal which has no single compiled
// target triple (it is produced by lipo-merging two builds) and keeps a
// literal string instead.
type descriptor struct {
	key          Key
	canonical    string
	family       Family
	os           OS
	rustTargets  []string
	archiveKind  ArchiveKind
	bindingsSupp []bindings.Language
}

var registry = []descriptor{
	{
		key:          LinuxX86_64,
		canonical:    "x86_64-unknown-linux-gnu",
		family:       FamilyLinux,
		os:           OSLinux,
		rustTargets:  []string{"x86_64-unknown-linux-gnu", "x86_64-unknown-linux-musl"},
		archiveKind:  ArchiveTarGz,
		bindingsSupp: allBindingLanguages,
	},
	{
		key:          LinuxAarch64,
		canonical:    "aarch64-unknown-linux-gnu",
		family:       FamilyLinux,
		os:           OSLinux,
		rustTargets:  []string{"aarch64-unknown-linux-gnu", "aarch64-unknown-linux-musl"},
		archiveKind:  ArchiveTarGz,
		bindingsSupp: allBindingLanguages,
	},
	{
		key:          MacosArm64,
		canonical:    "aarch64-apple-darwin",
		family:       FamilyApple,
		os:           OSMacos,
		rustTargets:  []string{"aarch64-apple-darwin"},
		archiveKind:  ArchiveZip,
		bindingsSupp: allBindingLanguages,
	},
	{
		key:          MacosX86_64,
		canonical:    "x86_64-apple-darwin",
		family:       FamilyApple,
		os:           OSMacos,
		rustTargets:  []string{"x86_64-apple-darwin"},
		archiveKind:  ArchiveZip,
		bindingsSupp: allBindingLanguages,
	},
	{
		key:          MacosUniversal,
		canonical:    "macos-universal",
		family:       FamilyApple,
		os:           OSMacos,
		rustTargets:  nil,
		archiveKind:  ArchiveZip,
		bindingsSupp: allBindingLanguages,
	},
	{
		key:          IosArm64,
		canonical:    "aarch64-apple-ios",
		family:       FamilyApple,
		os:           OSIos,
		rustTargets:  []string{"aarch64-apple-ios"},
		archiveKind:  ArchiveZip,
		bindingsSupp: allBindingLanguages,
	},
	{
		key:          IosSimulator,
		canonical:    "x86_64-apple-ios",
		family:       FamilyApple,
		os:           OSIos,
		rustTargets:  []string{"x86_64-apple-ios", "aarch64-apple-ios-sim"},
		archiveKind:  ArchiveZip,
		bindingsSupp: allBindingLanguages,
	},
	{
		key:          AndroidArm64,
		canonical:    "aarch64-linux-android",
		family:       FamilyAndroid,
		os:           OSAndroid,
		rustTargets:  []string{"aarch64-linux-android"},
		archiveKind:  ArchiveTarGz,
		bindingsSupp: allBindingLanguages,
	},
	{
		key:          AndroidArmv7,
		canonical:    "armv7-linux-androideabi",
		family:       FamilyAndroid,
		os:           OSAndroid,
		rustTargets:  []string{"armv7-linux-androideabi"},
		archiveKind:  ArchiveTarGz,
		bindingsSupp: allBindingLanguages,
	},
	{
		key:          AndroidX86_64,
		canonical:    "x86_64-linux-android",
		family:       FamilyAndroid,
		os:           OSAndroid,
		rustTargets:  []string{"x86_64-linux-android"},
		archiveKind:  ArchiveTarGz,
		bindingsSupp: allBindingLanguages,
	},
	{
		key:          WindowsX86_64Msvc,
		canonical:    "x86_64-pc-windows-msvc",
		family:       FamilyWindows,
		os:           OSWindows,
		rustTargets:  []string{"x86_64-pc-windows-msvc"},
		archiveKind:  ArchiveZip,
		bindingsSupp: allBindingLanguages,
	},
	{
		key:          WindowsArm64Msvc,
		canonical:    "aarch64-pc-windows-msvc",
		family:       FamilyWindows,
		os:           OSWindows,
		rustTargets:  []string{"aarch64-pc-windows-msvc"},
		archiveKind:  ArchiveZip,
		bindingsSupp: allBindingLanguages,
	},
}

var allBindingLanguages = []bindings.Language{
	bindings.LanguageDart,
	bindings.LanguageKotlin,
	bindings.LanguagePython,
	bindings.LanguageSwift,
}

func find(key Key) (descriptor, bool) {
	for _, entry := range registry {
		if entry.key == key {
			return entry, true
		}
	}
	return descriptor{}, false
}

func findByCanonical(s string) (descriptor, bool) {
	for _, entry := range registry {
		if entry.canonical == s {
			return entry, true
		}
	}
	return descriptor{}, false
}

// String renders the canonical PlatformKey string.
func (k Key) String() string {
	entry, ok := find(k)
	if !ok {
		return fmt.Sprintf("platform(%d)", int(k))
	}
	return entry.canonical
}

// Family returns the platform's toolchain/packaging family.
func (k Key) Family() Family {
	entry, _ := find(k)
	return entry.family
}

// OS returns the platform's operating system.
func (k Key) OS() OS {
	entry, _ := find(k)
	return entry.os
}

// RustTargets returns the acceptable compilation target triples; the
// first entry is canonical. May be empty (MacosUniversal).
func (k Key) RustTargets() []string {
	entry, _ := find(k)
	out := make([]string, len(entry.rustTargets))
	copy(out, entry.rustTargets)
	return out
}

// DefaultArchiveKind returns the packaging format this platform defaults to.
func (k Key) DefaultArchiveKind() ArchiveKind {
	entry, _ := find(k)
	return entry.archiveKind
}

// SupportStatus is the outcome of a capability lookup against the registry.
type SupportStatus int

const (
	Supported SupportStatus = iota
	Unsupported
	Unknown
)

// BindingSupport reports whether a platform supports a given binding
// language. Returns Unknown if lang does not parse as a binding language.
func (k Key) BindingSupport(lang string) SupportStatus {
	parsed, err := bindings.ParseLanguage(lang)
	if err != nil {
		return Unknown
	}
	entry, ok := find(k)
	if !ok {
		return Unknown
	}
	for _, supported := range entry.bindingsSupp {
		if supported == parsed {
			return Supported
		}
	}
	return Unsupported
}

// KeyError reports why a platform key string could not be resolved.
type KeyError struct {
	InvalidFormat bool
	UnknownKey    string
}

func (e *KeyError) Error() string {
	if e.InvalidFormat {
		return "platform key must be lowercase and hyphenated"
	}
	return fmt.Sprintf("unknown platform key %q", e.UnknownKey)
}

// Parse validates the lowercase/digit/hyphen/underscore format of a
// platform key string, then resolves it against the registry.
func Parse(s string) (Key, error) {
	if !isValidKeyFormat(s) {
		return 0, &KeyError{InvalidFormat: true}
	}
	entry, ok := findByCanonical(s)
	if !ok {
		return 0, &KeyError{UnknownKey: s}
	}
	return entry.key, nil
}

func isValidKeyFormat(s string) bool {
	if !strings.Contains(s, "-") {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_':
		default:
			return false
		}
	}
	return true
}

// FromRustTarget returns every platform key whose target-triple list
// contains triple. May return zero, one, or more than one key.
func FromRustTarget(triple string) []Key {
	var out []Key
	for _, entry := range registry {
		for _, t := range entry.rustTargets {
			if t == triple {
				out = append(out, entry.key)
				break
			}
		}
	}
	return out
}

// All returns every registered platform key, in registry declaration order.
func All() []Key {
	out := make([]Key, len(registry))
	for i, entry := range registry {
		out[i] = entry.key
	}
	return out
}

// IsSupportedRustTarget reports whether triple resolves to at least one
// registered platform key.
func IsSupportedRustTarget(triple string) bool {
	return len(FromRustTarget(triple)) > 0
}

// LibraryFilename derives the platform-appropriate shared-library filename
// for libName (case-preserving).
func LibraryFilename(libName string, key Key) string {
	switch key.OS() {
	case OSLinux, OSAndroid:
		return "lib" + libName + ".so"
	case OSWindows:
		return libName + ".dll"
	case OSMacos, OSIos:
		return "lib" + libName + ".dylib"
	default:
		return libName
	}
}

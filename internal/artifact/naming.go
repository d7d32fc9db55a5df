// Package artifact derives stable archive filenames and per-platform
// archive layouts from build identity and platform data, and renders the
// deterministic checksum manifest that accompanies every archive.
package artifact

import (
	"fmt"
	"strings"

	"github.com/nuCode-Tech/lib-forge/internal/platform"
)

// ChecksumKind identifies a checksum digest algorithm used to name a
// sidecar checksum file.
type ChecksumKind int

// Sha256 is the only supported checksum kind.
const Sha256 ChecksumKind = iota

func (c ChecksumKind) extension() string {
	switch c {
	case Sha256:
		return "sha256"
	default:
		return ""
	}
}

// NameError reports why an artifact or checksum name could not be formed.
type NameError struct {
	Field        string
	Value        string
	InvalidBuild bool
}

func (e *NameError) Error() string {
	if e.InvalidBuild {
		return fmt.Sprintf("build_id %q must include a version prefix", e.Value)
	}
	return fmt.Sprintf("invalid %s value %q", e.Field, e.Value)
}

// Name renders the canonical archive filename:
// "<package>-<build_id>-<platform_key>.<ext>".
func Name(libName, buildID string, key platform.Key, kind platform.ArchiveKind) (string, error) {
	if err := validateComponent("package", libName); err != nil {
		return "", err
	}
	if err := validateComponent("build_id", buildID); err != nil {
		return "", err
	}
	if !isVersionedBuildID(buildID) {
		return "", &NameError{Value: buildID, InvalidBuild: true}
	}
	return fmt.Sprintf("%s-%s-%s.%s", libName, buildID, key.String(), kind.Extension()), nil
}

// ChecksumName appends the checksum-kind extension to an artifact name.
func ChecksumName(artifactName string, kind ChecksumKind) string {
	return fmt.Sprintf("%s.%s", artifactName, kind.extension())
}

func validateComponent(field, value string) error {
	if value == "" || !isCanonicalComponent(value) {
		return &NameError{Field: field, Value: value}
	}
	return nil
}

func isCanonicalComponent(value string) bool {
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '-':
		default:
			return false
		}
	}
	return true
}

// isVersionedBuildID checks the "b<digits>-<component>" shape required of
// every build id and release id.
func isVersionedBuildID(value string) bool {
	if !strings.HasPrefix(value, "b") {
		return false
	}
	rest := value[1:]
	digitCount := 0
	i := 0
	for ; i < len(rest); i++ {
		ch := rest[i]
		if ch >= '0' && ch <= '9' {
			digitCount++
			continue
		}
		if ch == '-' {
			break
		}
		return false
	}
	if digitCount == 0 || i == len(rest) {
		return false
	}
	remainder := rest[i+1:]
	return remainder != "" && isCanonicalComponent(remainder)
}

package manifest

import (
	"fmt"
	"strings"

	"github.com/nuCode-Tech/lib-forge/internal/platform"
)

// ManifestError is the closed taxonomy of structural validation failures.
type ManifestError struct {
	Kind       string
	Platform   string
	Binding    string
	Artifact   string
	Field      string
	Identifier string
}

func (e *ManifestError) Error() string {
	switch e.Kind {
	case "InvalidPlatformKey":
		return fmt.Sprintf("platform %q is not a valid platform key", e.Platform)
	case "InvalidDefaultPlatform":
		return fmt.Sprintf("platforms.default %q must match a platforms.targets[].name value", e.Platform)
	case "UnknownBindingPlatform":
		return fmt.Sprintf("binding %q references unknown platform %q", e.Binding, e.Platform)
	case "BindingVersionMissing":
		return fmt.Sprintf("binding %q must declare a language version", e.Binding)
	case "DuplicateArtifactIdentifier":
		return fmt.Sprintf("artifact identifier %q must be unique across platforms", e.Identifier)
	case "ArtifactMissingPlatform":
		return fmt.Sprintf("binding %q references artifact %q that is not declared by any platform", e.Binding, e.Artifact)
	case "ArtifactPlatformMismatch":
		return fmt.Sprintf("binding %q references artifact %q which belongs to platform %q", e.Binding, e.Artifact, e.Platform)
	case "AbiFieldMissing":
		return fmt.Sprintf("ABI-affecting field %q must be declared", e.Field)
	case "EmptyArtifactIdentifier":
		return fmt.Sprintf("platform %q contains an empty artifact identifier", e.Platform)
	case "MissingPlatformBuildId":
		return fmt.Sprintf("platform %q missing build_id", e.Platform)
	default:
		return "manifest validation failed"
	}
}

// Validate runs the full set of structural checks against m, in a fixed
// order: platform keys and per-platform build ids, the default-platform
// reference, the ABI profile field, per-platform triples,
// artifact-identifier uniqueness, and binding/artifact cross-references.
// Returns the first failure.
func Validate(m Manifest) error {
	for _, p := range m.Platforms.Targets {
		if _, err := platform.Parse(p.Name); err != nil {
			return &ManifestError{Kind: "InvalidPlatformKey", Platform: p.Name}
		}
		if strings.TrimSpace(p.BuildID) == "" {
			return &ManifestError{Kind: "MissingPlatformBuildId", Platform: p.Name}
		}
	}

	if _, err := platform.Parse(m.Platforms.Default); err != nil {
		return &ManifestError{Kind: "InvalidPlatformKey", Platform: m.Platforms.Default}
	}

	platformNames := make(map[string]bool, len(m.Platforms.Targets))
	for _, p := range m.Platforms.Targets {
		platformNames[p.Name] = true
	}

	if !platformNames[m.Platforms.Default] {
		return &ManifestError{Kind: "InvalidDefaultPlatform", Platform: m.Platforms.Default}
	}

	if strings.TrimSpace(m.Build.Identity.Profile) == "" {
		return &ManifestError{Kind: "AbiFieldMissing", Field: "build.identity.profile"}
	}

	for _, p := range m.Platforms.Targets {
		if len(p.Triples) == 0 {
			return &ManifestError{Kind: "AbiFieldMissing", Field: fmt.Sprintf("platforms.targets[%s].triples", p.Name)}
		}
	}

	artifactPlatforms := make(map[string]string)
	for _, p := range m.Platforms.Targets {
		for _, artifact := range p.Artifacts {
			if strings.TrimSpace(artifact) == "" {
				return &ManifestError{Kind: "EmptyArtifactIdentifier", Platform: p.Name}
			}
			if _, exists := artifactPlatforms[artifact]; exists {
				return &ManifestError{Kind: "DuplicateArtifactIdentifier", Identifier: artifact}
			}
			artifactPlatforms[artifact] = p.Name
		}
	}

	for _, binding := range m.Bindings.Catalog {
		if strings.TrimSpace(binding.Version) == "" {
			return &ManifestError{Kind: "BindingVersionMissing", Binding: binding.Name}
		}

		for _, p := range binding.Platforms {
			if !platformNames[p] {
				return &ManifestError{Kind: "UnknownBindingPlatform", Binding: binding.Name, Platform: p}
			}
		}

		for _, artifact := range binding.Artifacts {
			owningPlatform, ok := artifactPlatforms[artifact]
			if !ok {
				return &ManifestError{Kind: "ArtifactMissingPlatform", Binding: binding.Name, Artifact: artifact}
			}
			if len(binding.Platforms) > 0 && !contains(binding.Platforms, owningPlatform) {
				return &ManifestError{
					Kind:     "ArtifactPlatformMismatch",
					Binding:  binding.Name,
					Artifact: artifact,
					Platform: owningPlatform,
				}
			}
		}
	}

	return nil
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

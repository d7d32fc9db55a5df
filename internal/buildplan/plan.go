// Package buildplan describes what to build (BuildPlan, BuildTargetPlan)
// and executes it by shelling out to the Rust toolchain (cargo, cross, or
// cargo-zigbuild), producing a BuiltArtifact per target.
package buildplan

import "github.com/nuCode-Tech/lib-forge/internal/platform"

// Toolchain is the rustup channel/targets/components pinned for a build.
type Toolchain struct {
	Channel    string
	Targets    []string
	Components []string
}

// BuildEnvVar is one environment variable injected into a build invocation.
type BuildEnvVar struct {
	Key   string
	Value string
}

// BuildProfile is the cargo invocation shape shared across every target
// in a plan: the profile name, pinned toolchain, extra cargo args,
// rustflags, and environment.
type BuildProfile struct {
	Name      string
	Toolchain Toolchain
	CargoArgs []string
	Rustflags []string
	Env       []BuildEnvVar
}

// BuiltArtifact is the output of compiling and packaging one target: the
// library file plus the metadata files staged alongside it before
// packing.
type BuiltArtifact struct {
	Platform     platform.Key
	BuildID      string
	ArchiveKind  platform.ArchiveKind
	ArtifactName string
	OutputDir    string
	LibraryPath  string
	IncludeDir   string // empty when the platform has no headers to bundle
	ManifestPath string
	BuildIDPath  string
}

// BuildTargetPlan is one platform's compilation request: where to invoke
// cargo, which target triple and cross image to use, and the artifact it
// is expected to produce.
type BuildTargetPlan struct {
	Platform          platform.Key
	RustTargetTriple  string
	WorkingDir        string
	CargoManifestPath string
	CargoArgs         []string
	CargoFeatures     []string
	CrossImage        string // empty when building with the host cargo directly
	Env               []BuildEnvVar
	Artifact          BuiltArtifact
}

// BuildPlan is the full set of per-target builds driven by one invocation
// of the tool for a single package and release id.
type BuildPlan struct {
	PackageName string
	BuildID     string
	Profile     BuildProfile
	Targets     []BuildTargetPlan
}

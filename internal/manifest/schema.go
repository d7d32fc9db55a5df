// Package manifest defines the libforge.manifest.v1 distribution contract:
// its typed schema, stable serialization, canonical signing payload, and
// structural validation rules.
package manifest

// SchemaVersion is the schema literal stamped into every manifest produced
// by this tool. It participates in the build identity: changing it
// invalidates every previously computed build id.
const SchemaVersion = "libforge.manifest.v1"

// Manifest is the canonical libforge.manifest.v1 contract: the full
// description of a release, its build provenance, its artifacts, its
// binding compatibility, and (once attached) its signature.
type Manifest struct {
	SchemaVersion string    `json:"schemaVersion"`
	Package       Package   `json:"package"`
	Build         Build     `json:"build"`
	Artifacts     Artifacts `json:"artifacts"`
	Bindings      Bindings  `json:"bindings"`
	Platforms     Platforms `json:"platforms"`
	Signing       *Signing  `json:"signing,omitempty"`
}

// Package identifies the distribution.
type Package struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description,omitempty"`
	License     string   `json:"license,omitempty"`
	Authors     []string `json:"authors,omitempty"`
	Repository  string   `json:"repository,omitempty"`
}

// Build records the identity of the invocation that produced the manifest.
type Build struct {
	ID        string        `json:"id"`
	Identity  BuildIdentity `json:"identity"`
	Timestamp string        `json:"timestamp,omitempty"`
	Engine    string        `json:"engine,omitempty"`
}

// BuildIdentity describes the host, toolchain, and configuration used for
// the build. Profile is ABI-affecting and required by validation.
type BuildIdentity struct {
	Host      string   `json:"host"`
	Toolchain string   `json:"toolchain"`
	Profile   string   `json:"profile,omitempty"`
	Features  []string `json:"features,omitempty"`
}

// Artifacts describes how artifacts are named and which checksum
// algorithms were recorded for them.
type Artifacts struct {
	Naming    ArtifactNaming `json:"naming"`
	Checksums []string       `json:"checksums,omitempty"`
}

// ArtifactNaming is the naming template every adapter must honor.
type ArtifactNaming struct {
	Template        string `json:"template"`
	Delimiter       string `json:"delimiter"`
	IncludePlatform bool   `json:"includePlatform"`
	IncludeBinding  bool   `json:"includeBinding"`
}

// DefaultArtifactNaming returns the naming block used when a caller does
// not supply one explicitly.
func DefaultArtifactNaming() ArtifactNaming {
	return ArtifactNaming{
		Template:        "{package.name}-{package.version}-{platform}",
		Delimiter:       "-",
		IncludePlatform: true,
		IncludeBinding:  true,
	}
}

// Bindings catalogs every binding language distributed alongside the
// release, with an optional highlighted primary binding.
type Bindings struct {
	Catalog []BindingDescriptor `json:"catalog"`
	Primary string              `json:"primary,omitempty"`
}

// BindingDescriptor documents one binding's name, version, and target
// compatibility.
type BindingDescriptor struct {
	Name      string   `json:"name"`
	Version   string   `json:"version"`
	Platforms []string `json:"platforms,omitempty"`
	Artifacts []string `json:"artifacts,omitempty"`
}

// Platforms enumerates every platform the manifest resolves and names the
// fallback default.
type Platforms struct {
	Default string     `json:"default"`
	Targets []Platform `json:"targets"`
}

// Platform is a single resolved platform target.
type Platform struct {
	Name        string   `json:"name"`
	BuildID     string   `json:"buildId"`
	Triples     []string `json:"triples,omitempty"`
	Bindings    []string `json:"bindings,omitempty"`
	Artifacts   []string `json:"artifacts,omitempty"`
	Description string   `json:"description,omitempty"`
}

// Signing holds the attached signature over the manifest's signing
// payload.
type Signing struct {
	Algorithm string `json:"algorithm"`
	PublicKey string `json:"publicKey"`
	Signature string `json:"signature"`
}

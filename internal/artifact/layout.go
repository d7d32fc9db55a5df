package artifact

import (
	"fmt"
	"strings"

	"github.com/nuCode-Tech/lib-forge/internal/platform"
)

const (
	ManifestFileName  = "manifest.json"
	ChecksumsFileName = "checksums.txt"
	BuildIDFileName   = "build_id.txt"
	metadataDirName   = "metadata"
	libDirName        = "lib"
)

// LayoutVariant is the archive internal-structure family a platform uses.
type LayoutVariant int

const (
	LayoutDesktop LayoutVariant = iota
	LayoutApple
	LayoutAndroid
)

// Layout is the per-platform set of archive-internal paths.
type Layout struct {
	Variant       LayoutVariant
	ManifestPath  string
	ChecksumsPath string
	BuildIDPath   string
	LibraryPath   string
	IncludePath   string // empty when unused
}

// IncludeDirName is the archive-internal root of the optional headers
// tree Apple layouts may carry.
const IncludeDirName = "include"

// For builds the archive layout for libName on the given platform.
// IncludePath is left empty; callers that actually bundle headers set it
// to IncludeDirName themselves.
func For(libName string, key platform.Key) Layout {
	return Layout{
		Variant:       layoutVariantOf(key),
		ManifestPath:  metadataPath(ManifestFileName),
		ChecksumsPath: metadataPath(ChecksumsFileName),
		BuildIDPath:   metadataPath(BuildIDFileName),
		LibraryPath:   fmt.Sprintf("%s/%s", libDirName, platform.LibraryFilename(libName, key)),
	}
}

func layoutVariantOf(key platform.Key) LayoutVariant {
	switch key.Family() {
	case platform.FamilyApple:
		return LayoutApple
	case platform.FamilyAndroid:
		return LayoutAndroid
	default:
		return LayoutDesktop
	}
}

// DefaultArchiveKind mirrors platform.Key.DefaultArchiveKind for callers
// that only import the artifact package.
func DefaultArchiveKind(key platform.Key) platform.ArchiveKind {
	return key.DefaultArchiveKind()
}

func metadataPath(fileName string) string {
	return fmt.Sprintf("%s/%s", metadataDirName, fileName)
}

// RequiredEntries lists every archive-internal path that must be present
// for layout to be considered complete. The checksums sidecar is written
// next to the archive, not inside it, so it is not a required entry.
func RequiredEntries(layout Layout) []string {
	entries := []string{layout.ManifestPath, layout.BuildIDPath, layout.LibraryPath}
	if layout.IncludePath != "" {
		entries = append(entries, layout.IncludePath)
	}
	return entries
}

// LayoutValidationError reports a required archive entry missing from a
// produced archive.
type LayoutValidationError struct {
	MissingEntry string
}

func (e *LayoutValidationError) Error() string {
	return fmt.Sprintf("archive missing required entry %q", e.MissingEntry)
}

// ValidateEntries checks that every required entry for layout is present
// in entries. The include path names a directory, so it is satisfied by
// any entry under it; every other requirement is an exact file path.
func ValidateEntries(layout Layout, entries []string) error {
	present := make(map[string]bool, len(entries))
	for _, e := range entries {
		present[e] = true
	}
	for _, required := range RequiredEntries(layout) {
		if present[required] {
			continue
		}
		if required == layout.IncludePath && anyUnder(entries, required) {
			continue
		}
		return &LayoutValidationError{MissingEntry: required}
	}
	return nil
}

func anyUnder(entries []string, dir string) bool {
	prefix := dir + "/"
	for _, e := range entries {
		if strings.HasPrefix(e, prefix) {
			return true
		}
	}
	return false
}

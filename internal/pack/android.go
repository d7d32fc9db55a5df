package pack

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nuCode-Tech/lib-forge/internal/buildplan"
	"github.com/nuCode-Tech/lib-forge/internal/platform"
)

// androidABI maps a platform key to the jniLibs directory name the
// Android Gradle plugin expects inside an AAR.
func androidABI(key platform.Key) (string, bool) {
	switch key {
	case platform.AndroidArm64:
		return "arm64-v8a", true
	case platform.AndroidArmv7:
		return "armeabi-v7a", true
	case platform.AndroidX86_64:
		return "x86_64", true
	default:
		return "", false
	}
}

// AARPacker assembles one or more per-ABI Android builds into a single
// .aar archive: an empty classes.jar, a minimal AndroidManifest.xml, one
// jni/<abi>/<library> entry per input, and the shared metadata files.
type AARPacker struct{}

func (AARPacker) Pack(request Request) (Result, error) {
	if request.Format != FormatAAR {
		return Result{}, invalidRequest("AAR packer only supports FormatAAR")
	}
	if len(request.Inputs) == 0 {
		return Result{}, invalidRequest("AAR packer expects at least one input")
	}

	first := request.Inputs[0]
	packageName, err := androidPackageName(first.Artifact)
	if err != nil {
		return Result{}, err
	}

	entries := []ArchiveEntry{
		contentEntry("classes.jar", emptyJarBytes()),
		contentEntry("AndroidManifest.xml", androidManifestXML(packageName)),
	}

	manifestEntry, err := fileEntry(first.Artifact.ManifestPath, first.Layout.ManifestPath)
	if err != nil {
		return Result{}, err
	}
	buildIDEntry, err := fileEntry(first.Artifact.BuildIDPath, first.Layout.BuildIDPath)
	if err != nil {
		return Result{}, err
	}
	entries = append(entries, manifestEntry, buildIDEntry)

	seenABIs := make(map[string]bool, len(request.Inputs))
	for _, input := range request.Inputs {
		abi, ok := androidABI(input.Artifact.Platform)
		if !ok {
			return Result{}, invalidRequest("platform %s is not a supported Android ABI", input.Artifact.Platform.String())
		}
		if seenABIs[abi] {
			return Result{}, invalidRequest("duplicate Android ABI %q across AAR inputs", abi)
		}
		seenABIs[abi] = true

		libName := filepath.Base(input.Artifact.LibraryPath)
		entry, err := fileEntry(input.Artifact.LibraryPath, fmt.Sprintf("jni/%s/%s", abi, libName))
		if err != nil {
			return Result{}, err
		}
		entries = append(entries, entry)
	}

	sortEntries(entries)

	if err := os.MkdirAll(request.OutputDir, 0o755); err != nil {
		return Result{}, ioError("%s", err)
	}
	outputPath := filepath.Join(request.OutputDir, replaceExtension(first.Artifact.ArtifactName, "aar"))
	if err := writeZip(outputPath, entries); err != nil {
		return Result{}, err
	}
	return Result{Format: FormatAAR, OutputPaths: []string{outputPath}}, nil
}

// emptyJarBytes returns the bytes of a valid, empty zip archive: the
// form classes.jar takes when a build carries no JVM-side classes of its
// own (the binding glue lives in the Kotlin package, not this archive).
func emptyJarBytes() []byte {
	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	_ = writer.Close()
	return buf.Bytes()
}

// androidManifestXML renders the minimal manifest an AAR must carry so
// the Android Gradle plugin can merge it into a consuming app.
func androidManifestXML(packageName string) []byte {
	doc := fmt.Sprintf(
		"<?xml version=\"1.0\" encoding=\"utf-8\"?>\n<manifest xmlns:android=\"http://schemas.android.com/apk/res/android\" package=\"%s\">\n</manifest>\n",
		packageName,
	)
	return []byte(doc)
}

// androidPackageName derives the AAR's manifest package attribute from
// the bare package name (the artifact name with its "-<build_id>-"
// infix, or a known archive extension, stripped), validated as a dotted
// Java-identifier path. A hyphenated package name is not representable
// as an Android package and is rejected rather than silently mangled.
func androidPackageName(a buildplan.BuiltArtifact) (string, error) {
	candidate := derivePackageName(a)
	if !isValidAndroidPackage(candidate) {
		return "", invalidRequest("invalid android package name %q derived from artifact name", candidate)
	}
	return candidate, nil
}

func isValidAndroidPackage(name string) bool {
	if name == "" {
		return false
	}
	for _, segment := range strings.Split(name, ".") {
		if !isValidJavaIdentifier(segment) {
			return false
		}
	}
	return true
}

func isValidJavaIdentifier(segment string) bool {
	if segment == "" {
		return false
	}
	for i, r := range segment {
		if i == 0 {
			if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_') {
				return false
			}
			continue
		}
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_') {
			return false
		}
	}
	return true
}

package pack

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nuCode-Tech/lib-forge/internal/artifact"
	"github.com/nuCode-Tech/lib-forge/internal/buildplan"
	"github.com/nuCode-Tech/lib-forge/internal/platform"
)

func appleInput(t *testing.T, dir string, key platform.Key) Input {
	t.Helper()
	manifestPath := filepath.Join(dir, key.String(), "manifest.json")
	buildIDPath := filepath.Join(dir, key.String(), "build_id.txt")
	libraryPath := filepath.Join(dir, key.String(), "libdemo.dylib")
	writeFile(t, manifestPath, `{"schemaVersion":"libforge.manifest.v1"}`)
	writeFile(t, buildIDPath, "b1-deadbeef")
	writeFile(t, libraryPath, "native bytes")

	return Input{
		Artifact: buildplan.BuiltArtifact{
			Platform:     key,
			BuildID:      "b1-deadbeef",
			ArtifactName: "demo-b1-deadbeef-ios.zip",
			LibraryPath:  libraryPath,
			ManifestPath: manifestPath,
			BuildIDPath:  buildIDPath,
		},
		Layout: artifact.For("demo", key),
	}
}

func TestXCFrameworkPackerInvokesXcodebuildAndStampsMetadata(t *testing.T) {
	dir := t.TempDir()
	input := appleInput(t, dir, platform.IosArm64)
	outDir := filepath.Join(dir, "out")

	var capturedArgs []string
	packer := &XCFrameworkPacker{
		Run: func(args []string) (string, error) {
			capturedArgs = args
			// xcodebuild creates the output bundle itself; simulate that.
			outputPath := args[len(args)-1]
			if err := os.MkdirAll(outputPath, 0o755); err != nil {
				return "", err
			}
			if err := os.WriteFile(filepath.Join(outputPath, "Info.plist"), []byte("<plist/>"), 0o644); err != nil {
				return "", err
			}
			return "", nil
		},
	}

	result, err := packer.Pack(Request{Format: FormatXCFramework, Inputs: []Input{input}, OutputDir: outDir})
	if err != nil {
		t.Fatalf("Pack() error = %v", err)
	}
	if len(result.OutputPaths) != 1 {
		t.Fatalf("len(OutputPaths) = %d, want 1", len(result.OutputPaths))
	}
	if capturedArgs[0] != "-create-xcframework" {
		t.Fatalf("args[0] = %q, want -create-xcframework", capturedArgs[0])
	}

	outputPath := result.OutputPaths[0]
	if filepath.Base(outputPath) != "demo.xcframework" {
		t.Fatalf("output name = %q, want demo.xcframework", filepath.Base(outputPath))
	}
	if _, err := os.Stat(filepath.Join(outputPath, "Info.plist")); err != nil {
		t.Fatalf("expected xcodebuild output preserved: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outputPath, input.Layout.ManifestPath)); err != nil {
		t.Fatalf("expected stamped manifest: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outputPath, input.Layout.BuildIDPath)); err != nil {
		t.Fatalf("expected stamped build id: %v", err)
	}
}

func TestXCFrameworkPackerPropagatesBackendFailure(t *testing.T) {
	dir := t.TempDir()
	input := appleInput(t, dir, platform.IosArm64)
	packer := &XCFrameworkPacker{
		Run: func(args []string) (string, error) {
			return "xcodebuild: error: no such library", errors.New("exit status 70")
		},
	}
	_, err := packer.Pack(Request{Format: FormatXCFramework, Inputs: []Input{input}, OutputDir: filepath.Join(dir, "out")})
	if err == nil {
		t.Fatal("expected error when xcodebuild fails")
	}
}

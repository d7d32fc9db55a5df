package pack

import (
	"archive/zip"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/nuCode-Tech/lib-forge/internal/artifact"
	"github.com/nuCode-Tech/lib-forge/internal/buildplan"
	"github.com/nuCode-Tech/lib-forge/internal/platform"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func androidInput(t *testing.T, dir string, key platform.Key) Input {
	t.Helper()
	manifestPath := filepath.Join(dir, key.String(), "manifest.json")
	buildIDPath := filepath.Join(dir, key.String(), "build_id.txt")
	libraryPath := filepath.Join(dir, key.String(), "libdemo.so")
	writeFile(t, manifestPath, `{"schemaVersion":"libforge.manifest.v1"}`)
	writeFile(t, buildIDPath, "b1-deadbeef")
	writeFile(t, libraryPath, "native bytes")

	return Input{
		Artifact: buildplan.BuiltArtifact{
			Platform:     key,
			BuildID:      "b1-deadbeef",
			ArtifactName: "demo-b1-deadbeef-android.aar",
			LibraryPath:  libraryPath,
			ManifestPath: manifestPath,
			BuildIDPath:  buildIDPath,
		},
		Layout: artifact.For("demo", key),
	}
}

func TestAARPackerAssemblesMultipleABIs(t *testing.T) {
	dir := t.TempDir()
	inputs := []Input{
		androidInput(t, dir, platform.AndroidArm64),
		androidInput(t, dir, platform.AndroidArmv7),
	}

	outDir := filepath.Join(dir, "out")
	result, err := AARPacker{}.Pack(Request{Format: FormatAAR, Inputs: inputs, OutputDir: outDir})
	if err != nil {
		t.Fatalf("Pack() error = %v", err)
	}
	if len(result.OutputPaths) != 1 {
		t.Fatalf("len(OutputPaths) = %d, want 1", len(result.OutputPaths))
	}

	reader, err := zip.OpenReader(result.OutputPaths[0])
	if err != nil {
		t.Fatalf("opening produced aar: %v", err)
	}
	defer reader.Close()

	var names []string
	for _, f := range reader.File {
		names = append(names, f.Name)
	}
	sort.Strings(names)

	want := []string{
		"AndroidManifest.xml",
		"classes.jar",
		"jni/arm64-v8a/libdemo.so",
		"jni/armeabi-v7a/libdemo.so",
		"metadata/build_id.txt",
		"metadata/manifest.json",
	}
	if len(names) != len(want) {
		t.Fatalf("archive entries = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("entry[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestAARPackerRejectsDuplicateABI(t *testing.T) {
	dir := t.TempDir()
	inputs := []Input{
		androidInput(t, dir, platform.AndroidArm64),
		androidInput(t, dir, platform.AndroidArm64),
	}
	_, err := AARPacker{}.Pack(Request{Format: FormatAAR, Inputs: inputs, OutputDir: filepath.Join(dir, "out")})
	if err == nil {
		t.Fatal("expected error for duplicate Android ABI")
	}
}

func TestAARPackerRejectsNonAndroidPlatform(t *testing.T) {
	dir := t.TempDir()
	inputs := []Input{androidInput(t, dir, platform.LinuxX86_64)}
	_, err := AARPacker{}.Pack(Request{Format: FormatAAR, Inputs: inputs, OutputDir: filepath.Join(dir, "out")})
	if err == nil {
		t.Fatal("expected error for non-Android platform")
	}
}

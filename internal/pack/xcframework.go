package pack

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
)

// XCFrameworkPacker delegates to `xcodebuild -create-xcframework` to
// merge one or more per-slice Apple builds into a single .xcframework
// bundle, then stamps the shared metadata files into it.
type XCFrameworkPacker struct {
	// Run invokes xcodebuild with args, returning combined stderr.
	// Exposed so tests can substitute a fake without shelling out.
	Run func(args []string) (stderr string, err error)
}

// NewXCFrameworkPacker returns a packer that shells out to the real
// xcodebuild binary.
func NewXCFrameworkPacker() *XCFrameworkPacker {
	return &XCFrameworkPacker{Run: runXcodebuild}
}

func runXcodebuild(args []string) (string, error) {
	cmd := exec.Command("xcodebuild", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.String(), err
}

func (p *XCFrameworkPacker) Pack(request Request) (Result, error) {
	if request.Format != FormatXCFramework {
		return Result{}, invalidRequest("xcframework packer only supports FormatXCFramework")
	}
	if len(request.Inputs) == 0 {
		return Result{}, invalidRequest("xcframework packer expects at least one input")
	}
	run := p.Run
	if run == nil {
		run = runXcodebuild
	}

	first := request.Inputs[0]
	if err := os.MkdirAll(request.OutputDir, 0o755); err != nil {
		return Result{}, ioError("%s", err)
	}
	outputName := derivePackageName(first.Artifact) + ".xcframework"
	outputPath := filepath.Join(request.OutputDir, outputName)
	if _, err := os.Stat(outputPath); err == nil {
		if err := os.RemoveAll(outputPath); err != nil {
			return Result{}, ioError("%s", err)
		}
	}

	args := []string{"-create-xcframework"}
	for _, input := range request.Inputs {
		args = append(args, "-library", input.Artifact.LibraryPath)
		if input.Artifact.IncludeDir != "" {
			args = append(args, "-headers", input.Artifact.IncludeDir)
		}
	}
	args = append(args, "-output", outputPath)

	stderr, err := run(args)
	if err != nil {
		return Result{}, ioError("xcodebuild failed: %s", firstNonEmpty(stderr, err.Error()))
	}

	if err := stampMetadata(outputPath, first); err != nil {
		return Result{}, err
	}

	entries, err := entriesFromDir(outputPath)
	if err != nil {
		return Result{}, err
	}
	if len(entries) == 0 {
		return Result{}, invalidRequest("xcframework output is empty")
	}

	return Result{Format: FormatXCFramework, OutputPaths: []string{outputPath}}, nil
}

// stampMetadata copies the manifest and build id files from the first
// input into the just-created xcframework bundle, at the paths its
// layout designates.
func stampMetadata(root string, input Input) error {
	if err := copyInto(filepath.Join(root, input.Layout.ManifestPath), input.Artifact.ManifestPath); err != nil {
		return err
	}
	return copyInto(filepath.Join(root, input.Layout.BuildIDPath), input.Artifact.BuildIDPath)
}

func copyInto(destPath, sourcePath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return ioError("%s", err)
	}
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return ioError("%s", err)
	}
	if err := os.WriteFile(destPath, data, 0o644); err != nil {
		return ioError("%s", err)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

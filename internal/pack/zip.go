package pack

import (
	"os"
	"path/filepath"
)

// ZipPacker packs a single input into a deterministic .zip archive.
type ZipPacker struct{}

func (ZipPacker) Pack(request Request) (Result, error) {
	if request.Format != FormatZip {
		return Result{}, invalidRequest("zip packer only supports FormatZip")
	}
	if len(request.Inputs) != 1 {
		return Result{}, invalidRequest("zip packer expects a single input")
	}

	input := request.Inputs[0]
	entries, err := buildArchiveEntries(input)
	if err != nil {
		return Result{}, err
	}
	if err := os.MkdirAll(request.OutputDir, 0o755); err != nil {
		return Result{}, ioError("%s", err)
	}
	outputPath := filepath.Join(request.OutputDir, replaceExtension(input.Artifact.ArtifactName, "zip"))
	if err := writeZip(outputPath, entries); err != nil {
		return Result{}, err
	}
	return Result{Format: FormatZip, OutputPaths: []string{outputPath}}, nil
}

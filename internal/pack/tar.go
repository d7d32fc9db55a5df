package pack

import (
	"os"
	"path/filepath"
)

// TarGzPacker packs a single input into a deterministic .tar.gz archive.
type TarGzPacker struct{}

func (TarGzPacker) Pack(request Request) (Result, error) {
	if request.Format != FormatTarGz {
		return Result{}, invalidRequest("tar.gz packer only supports FormatTarGz")
	}
	if len(request.Inputs) != 1 {
		return Result{}, invalidRequest("tar.gz packer expects a single input")
	}

	input := request.Inputs[0]
	entries, err := buildArchiveEntries(input)
	if err != nil {
		return Result{}, err
	}
	if err := os.MkdirAll(request.OutputDir, 0o755); err != nil {
		return Result{}, ioError("%s", err)
	}
	outputPath := filepath.Join(request.OutputDir, replaceExtension(input.Artifact.ArtifactName, "tar.gz"))
	if err := writeTarGz(outputPath, entries); err != nil {
		return Result{}, err
	}
	return Result{Format: FormatTarGz, OutputPaths: []string{outputPath}}, nil
}

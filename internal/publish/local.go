package publish

import (
	"io"
	"os"
	"path/filepath"
)

// LocalPublisher copies a release's assets into <outDir>/<tag>/<name>,
// for releasing to a plain directory instead of a remote host.
type LocalPublisher struct {
	OutDir string
}

// NewLocalPublisher creates the backend's output directory up front.
func NewLocalPublisher(outDir string) (*LocalPublisher, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, ioErr("failed to create local publish dir %q: %s", outDir, err)
	}
	return &LocalPublisher{OutDir: outDir}, nil
}

func (p *LocalPublisher) Publish(request Request) (Outcome, error) {
	releaseDir := filepath.Join(p.OutDir, request.Tag)
	if err := os.MkdirAll(releaseDir, 0o755); err != nil {
		return Outcome{}, ioErr("failed to create release dir %q: %s", releaseDir, err)
	}

	var uploaded, skipped []string
	for _, asset := range request.Assets {
		dest := filepath.Join(releaseDir, asset.Name)
		if _, err := os.Stat(dest); err == nil {
			skipped = append(skipped, asset.Name)
			continue
		}
		if err := copyFile(asset.Path, dest); err != nil {
			return Outcome{}, ioErr("failed to copy %q to %q: %s", asset.Path, dest, err)
		}
		uploaded = append(uploaded, asset.Name)
	}

	return Outcome{
		Uploaded:   uploaded,
		Skipped:    skipped,
		ReleaseURL: "file://" + releaseDir,
	}, nil
}

func copyFile(source, dest string) error {
	in, err := os.Open(source)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, in)
	return err
}

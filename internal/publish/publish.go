// Package publish drives release orchestration: validating a publish
// request, then handing it to a Publisher backend (a remote release API
// or a local directory) that uploads or copies the release's assets.
package publish

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nuCode-Tech/lib-forge/internal/signer"
)

// Asset is one file attached to a release.
type Asset struct {
	Path        string
	Name        string
	ContentType string
}

// Request describes one release to publish.
type Request struct {
	Repository   string
	Tag          string
	Name         string
	Body         string
	BuildID      string
	ManifestPath string
	Assets       []Asset
}

// Outcome reports what a publish call actually did.
type Outcome struct {
	Uploaded   []string
	Skipped    []string
	ReleaseURL string
}

// Error is the closed taxonomy of publish failures.
type Error struct {
	Kind    string // "InvalidRequest", "Io", "Backend"
	Message string
}

func (e *Error) Error() string {
	switch e.Kind {
	case "InvalidRequest":
		return fmt.Sprintf("invalid request: %s", e.Message)
	case "Io":
		return fmt.Sprintf("io error: %s", e.Message)
	default:
		return fmt.Sprintf("backend error: %s", e.Message)
	}
}

func invalidRequest(format string, args ...interface{}) error {
	return &Error{Kind: "InvalidRequest", Message: fmt.Sprintf(format, args...)}
}

func ioErr(format string, args ...interface{}) error {
	return &Error{Kind: "Io", Message: fmt.Sprintf(format, args...)}
}

// BackendError wraps an error surfaced by a Publisher implementation.
func BackendError(format string, args ...interface{}) error {
	return &Error{Kind: "Backend", Message: fmt.Sprintf(format, args...)}
}

// Publisher uploads or copies a release's assets to a destination.
type Publisher interface {
	Publish(request Request) (Outcome, error)
}

// Release validates request, then delegates to publisher. Validation is
// run here rather than inside each backend so every Publisher
// implementation enforces the same rules.
func Release(publisher Publisher, request Request) (Outcome, error) {
	if err := validateRequest(request); err != nil {
		return Outcome{}, err
	}
	return publisher.Publish(request)
}

func validateRequest(request Request) error {
	if request.Repository == "" {
		return invalidRequest("repository is required")
	}
	if request.Tag == "" {
		return invalidRequest("tag is required")
	}
	if request.BuildID == "" {
		return invalidRequest("build_id is required")
	}
	if _, err := os.Stat(request.ManifestPath); err != nil {
		return invalidRequest("manifest path %q does not exist", request.ManifestPath)
	}
	for _, asset := range request.Assets {
		if _, err := os.Stat(asset.Path); err != nil {
			return invalidRequest("asset %q does not exist", asset.Path)
		}
		if !signer.ValidAssetName(asset.Name, request.BuildID) {
			return invalidRequest("asset %q does not include build_id %q", asset.Name, request.BuildID)
		}
	}
	return nil
}

// AssetFromPath builds an Asset from a file path, inferring its content
// type from the extension.
func AssetFromPath(path string) (Asset, error) {
	name := filepath.Base(path)
	if name == "" || name == "." || name == string(filepath.Separator) {
		return Asset{}, invalidRequest("asset filename missing for %q", path)
	}
	return Asset{Path: path, Name: name, ContentType: contentTypeForPath(path)}, nil
}

func contentTypeForPath(path string) string {
	switch {
	case strings.HasSuffix(path, ".zip"):
		return "application/zip"
	case strings.HasSuffix(path, ".tar.gz"):
		return "application/gzip"
	case strings.HasSuffix(path, ".json"):
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

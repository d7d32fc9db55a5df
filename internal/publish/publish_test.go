package publish

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestAssetFromPathInfersContentType(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		name string
		want string
	}{
		{"demo-b1-abc-linux-x86_64.tar.gz", "application/gzip"},
		{"demo-b1-abc-windows-x86_64.zip", "application/zip"},
		{"libforge-manifest.json", "application/json"},
		{"demo-b1-abc-linux-x86_64.tar.gz.sig", "application/octet-stream"},
	}
	for _, c := range cases {
		path := writeTempFile(t, dir, c.name, "content")
		asset, err := AssetFromPath(path)
		if err != nil {
			t.Fatalf("AssetFromPath(%q) error = %v", c.name, err)
		}
		if asset.Name != c.name {
			t.Errorf("asset.Name = %q, want %q", asset.Name, c.name)
		}
		if asset.ContentType != c.want {
			t.Errorf("AssetFromPath(%q).ContentType = %q, want %q", c.name, asset.ContentType, c.want)
		}
	}
}

func TestReleaseValidatesRequest(t *testing.T) {
	dir := t.TempDir()
	manifestPath := writeTempFile(t, dir, "libforge-manifest.json", "{}")

	validRequest := Request{
		Repository:   "acme/demo",
		Tag:          "v1.0.0",
		BuildID:      "b1-abc123",
		ManifestPath: manifestPath,
	}

	if _, err := Release(&fakePublisher{}, Request{}); err == nil {
		t.Fatal("expected error for empty request")
	}

	missingManifest := validRequest
	missingManifest.ManifestPath = filepath.Join(dir, "does-not-exist.json")
	if _, err := Release(&fakePublisher{}, missingManifest); err == nil {
		t.Fatal("expected error for missing manifest path")
	}

	assetPath := writeTempFile(t, dir, "demo-linux-x86_64.tar.gz", "archive")
	badAssetName := validRequest
	badAssetName.Assets = []Asset{{Path: assetPath, Name: "demo-linux-x86_64.tar.gz"}}
	if _, err := Release(&fakePublisher{}, badAssetName); err == nil {
		t.Fatal("expected error for asset missing build id in name")
	}

	goodAssetPath := writeTempFile(t, dir, "demo-b1-abc123-linux-x86_64.tar.gz", "archive")
	goodRequest := validRequest
	goodRequest.Assets = []Asset{{Path: goodAssetPath, Name: "demo-b1-abc123-linux-x86_64.tar.gz"}}
	publisher := &fakePublisher{}
	if _, err := Release(publisher, goodRequest); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if !publisher.called {
		t.Fatal("expected publisher.Publish to be called after validation succeeds")
	}
}

type fakePublisher struct {
	called bool
}

func (f *fakePublisher) Publish(request Request) (Outcome, error) {
	f.called = true
	return Outcome{}, nil
}

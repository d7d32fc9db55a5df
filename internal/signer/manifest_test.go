package signer

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/nuCode-Tech/lib-forge/internal/manifest"
)

func writeTestManifest(t *testing.T, dir string) string {
	t.Helper()
	m := manifest.Manifest{
		SchemaVersion: manifest.SchemaVersion,
		Package: manifest.Package{
			Name:    "demo",
			Version: "1.0.0",
		},
		Build: manifest.Build{
			ID: "b1-deadbeef",
		},
	}
	data, err := manifest.Serialize(m)
	if err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}
	path := filepath.Join(dir, "manifest.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestSignManifestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	manifestPath := writeTestManifest(t, dir)

	priv, pub, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair() error = %v", err)
	}

	outDir := filepath.Join(dir, "out")
	result, err := SignManifest(Request{
		ManifestPath: manifestPath,
		PrivateKey:   hex.EncodeToString(priv),
		OutputDir:    outDir,
	})
	if err != nil {
		t.Fatalf("SignManifest() error = %v", err)
	}

	signedRaw, err := os.ReadFile(result.ManifestPath)
	if err != nil {
		t.Fatalf("reading signed manifest: %v", err)
	}
	signed, err := manifest.Deserialize(signedRaw)
	if err != nil {
		t.Fatalf("Deserialize() error = %v", err)
	}
	if signed.Signing == nil {
		t.Fatal("signed manifest has no Signing block")
	}
	if signed.Signing.Algorithm != Algorithm {
		t.Fatalf("Signing.Algorithm = %q, want %q", signed.Signing.Algorithm, Algorithm)
	}
	if signed.Signing.PublicKey != hex.EncodeToString(pub) {
		t.Fatalf("Signing.PublicKey = %q, want %q", signed.Signing.PublicKey, hex.EncodeToString(pub))
	}

	sig, err := os.ReadFile(result.SignaturePath)
	if err != nil {
		t.Fatalf("reading signature file: %v", err)
	}
	payload, err := manifest.SigningPayload(signed)
	if err != nil {
		t.Fatalf("SigningPayload() error = %v", err)
	}
	ok, err := Verify(pub, payload, sig)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if !ok {
		t.Fatal("detached signature does not verify against the signed manifest payload")
	}
}

func TestSignManifestSignsAssets(t *testing.T) {
	dir := t.TempDir()
	manifestPath := writeTestManifest(t, dir)

	priv, _, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair() error = %v", err)
	}

	assetsDir := filepath.Join(dir, "assets")
	if err := os.MkdirAll(assetsDir, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	assetPath := filepath.Join(assetsDir, "demo-b1-deadbeef-linux-x86_64.tar.gz")
	if err := os.WriteFile(assetPath, []byte("archive bytes"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	result, err := SignManifest(Request{
		ManifestPath: manifestPath,
		PrivateKey:   hex.EncodeToString(priv),
		AssetsDir:    assetsDir,
		OutputDir:    filepath.Join(dir, "out"),
	})
	if err != nil {
		t.Fatalf("SignManifest() error = %v", err)
	}
	if len(result.AssetSignatures) != 1 {
		t.Fatalf("len(AssetSignatures) = %d, want 1", len(result.AssetSignatures))
	}
	if _, err := os.Stat(assetPath + ".sig"); err != nil {
		t.Fatalf("expected sidecar signature file: %v", err)
	}
}

func TestSignManifestRejectsBadKey(t *testing.T) {
	dir := t.TempDir()
	manifestPath := writeTestManifest(t, dir)
	_, err := SignManifest(Request{
		ManifestPath: manifestPath,
		PrivateKey:   "not-hex",
		OutputDir:    filepath.Join(dir, "out"),
	})
	if err == nil {
		t.Fatal("expected error for invalid private key")
	}
}

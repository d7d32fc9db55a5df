package signer

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nuCode-Tech/lib-forge/internal/manifest"
)

// Result reports the files a SignManifest call wrote: the signed
// manifest and its detached signature, plus one detached signature per
// asset that was signed alongside it.
type Result struct {
	ManifestPath    string
	SignaturePath   string
	AssetSignatures []string
}

// Request describes one signing invocation.
type Request struct {
	ManifestPath string
	PrivateKey   string   // hex-encoded 64-byte key, as read from LIBFORGE_PRIVATE_KEY
	AssetsDir    string   // optional: non-recursive directory of sibling assets
	Assets       []string // optional: explicit additional asset paths
	OutputDir    string
}

// SignManifest runs the full signing flow: parse the manifest, derive
// the public key, compute and attach the signature, write the signed
// manifest and its .sig file, sign every discovered asset, then re-read
// and re-verify before returning.
func SignManifest(req Request) (Result, error) {
	priv, err := ParsePrivateKeyHex(req.PrivateKey)
	if err != nil {
		return Result{}, err
	}
	pub := PublicKeyFromPrivateKey(priv)

	raw, err := os.ReadFile(req.ManifestPath)
	if err != nil {
		return Result{}, err
	}
	m, err := manifest.Deserialize(raw)
	if err != nil {
		return Result{}, err
	}

	payload, err := manifest.SigningPayload(m)
	if err != nil {
		return Result{}, err
	}
	signature := Sign(priv, payload)
	m.Signing = &manifest.Signing{
		Algorithm: Algorithm,
		PublicKey: hex.EncodeToString(pub),
		Signature: hex.EncodeToString(signature),
	}

	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return Result{}, err
	}
	manifestOut := filepath.Join(req.OutputDir, ManifestFileName)
	pretty, err := manifest.SerializePretty(m)
	if err != nil {
		return Result{}, err
	}
	if err := os.WriteFile(manifestOut, pretty, 0o644); err != nil {
		return Result{}, err
	}
	sigOut := manifestOut + ".sig"
	if err := os.WriteFile(sigOut, signature, 0o644); err != nil {
		return Result{}, err
	}

	assetPaths, err := collectAssets(req.AssetsDir, req.Assets)
	if err != nil {
		return Result{}, err
	}
	var assetSigs []string
	for _, path := range assetPaths {
		sigPath, err := signAsset(priv, path)
		if err != nil {
			return Result{}, err
		}
		assetSigs = append(assetSigs, sigPath)
	}

	if err := verifyWritten(manifestOut, pub, signature); err != nil {
		return Result{}, err
	}

	return Result{ManifestPath: manifestOut, SignaturePath: sigOut, AssetSignatures: assetSigs}, nil
}

func signAsset(priv ed25519.PrivateKey, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	signature := Sign(priv, data)
	sigPath := path + ".sig"
	if err := os.WriteFile(sigPath, signature, 0o644); err != nil {
		return "", err
	}
	return sigPath, nil
}

// collectAssets enumerates files directly under assetsDir (non-recursive,
// excluding existing .sig sidecars) plus the explicit asset list.
func collectAssets(assetsDir string, explicit []string) ([]string, error) {
	var out []string
	if assetsDir != "" {
		entries, err := os.ReadDir(assetsDir)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if filepath.Ext(entry.Name()) == ".sig" {
				continue
			}
			out = append(out, filepath.Join(assetsDir, entry.Name()))
		}
	}
	out = append(out, explicit...)
	return out, nil
}

// verifyWritten re-reads the manifest just written, strips its signing
// block, re-serializes, and confirms the signature verifies against
// those exact bytes — catching any non-determinism in serialization
// before the signed manifest is handed back to a caller.
func verifyWritten(manifestPath string, pub, signature []byte) error {
	raw, err := os.ReadFile(manifestPath)
	if err != nil {
		return err
	}
	m, err := manifest.Deserialize(raw)
	if err != nil {
		return err
	}
	payload, err := manifest.SigningPayload(m)
	if err != nil {
		return err
	}
	ok, err := Verify(pub, payload, signature)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("signature verification failed after write: manifest does not match the payload it was signed over")
	}
	return nil
}

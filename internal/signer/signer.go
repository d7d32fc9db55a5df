// Package signer implements Ed25519 signing of the distribution manifest
// and its companion assets: key parsing, the manifest's canonical signing
// payload, detached-signature production, and round-trip verification
// before a signed manifest is handed back to a caller.
package signer

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// Algorithm is the literal stamped into manifest.Signing.Algorithm.
const Algorithm = "ed25519"

// ManifestFileName is the name of the signed manifest written to a
// release's output directory.
const ManifestFileName = "libforge-manifest.json"

// BuildIDFileName is the name of the release's plain-text build id file.
const BuildIDFileName = "build_id.txt"

// Error is the closed taxonomy of key-parsing and signing failures.
type Error struct {
	Kind string
	Len  int
}

func (e *Error) Error() string {
	switch e.Kind {
	case "InvalidHex":
		return "invalid hex string"
	case "InvalidPublicKeyLength":
		return fmt.Sprintf("public key must be 32 bytes, got %d", e.Len)
	case "InvalidPrivateKeyLength":
		return fmt.Sprintf("private key must be 64 bytes, got %d", e.Len)
	case "InvalidSignatureLength":
		return fmt.Sprintf("signature must be 64 bytes, got %d", e.Len)
	case "InvalidPublicKey":
		return "invalid public key"
	default:
		return "signing error"
	}
}

// ParsePublicKeyHex decodes a 32-byte hex-encoded public key.
func ParsePublicKeyHex(value string) ([]byte, error) {
	raw, err := hex.DecodeString(value)
	if err != nil {
		return nil, &Error{Kind: "InvalidHex"}
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, &Error{Kind: "InvalidPublicKeyLength", Len: len(raw)}
	}
	return raw, nil
}

// ParsePrivateKeyHex decodes a 64-byte hex-encoded private key: the raw
// concatenation of a 32-byte seed and its 32-byte derived public key,
// matching Go's native ed25519.PrivateKey layout exactly.
func ParsePrivateKeyHex(value string) (ed25519.PrivateKey, error) {
	raw, err := hex.DecodeString(value)
	if err != nil {
		return nil, &Error{Kind: "InvalidHex"}
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, &Error{Kind: "InvalidPrivateKeyLength", Len: len(raw)}
	}
	return ed25519.PrivateKey(raw), nil
}

// PublicKeyFromPrivateKey derives the 32-byte public key embedded in a
// 64-byte private key.
func PublicKeyFromPrivateKey(priv ed25519.PrivateKey) []byte {
	pub := priv.Public().(ed25519.PublicKey)
	out := make([]byte, len(pub))
	copy(out, pub)
	return out
}

// Sign produces a 64-byte Ed25519 signature over payload.
func Sign(priv ed25519.PrivateKey, payload []byte) []byte {
	return ed25519.Sign(priv, payload)
}

// Verify reports whether signature is a valid Ed25519 signature over
// payload under pub.
func Verify(pub, payload, signature []byte) (bool, error) {
	if len(pub) != ed25519.PublicKeySize {
		return false, &Error{Kind: "InvalidPublicKey"}
	}
	if len(signature) != ed25519.SignatureSize {
		return false, &Error{Kind: "InvalidSignatureLength", Len: len(signature)}
	}
	return ed25519.Verify(ed25519.PublicKey(pub), payload, signature), nil
}

// GenerateKeypair produces a fresh random Ed25519 keypair: a 64-byte
// private key (seed ‖ public) and its 32-byte public key, for the CLI's
// keygen command.
func GenerateKeypair() (priv ed25519.PrivateKey, pub ed25519.PublicKey, err error) {
	pub, priv, err = ed25519.GenerateKey(rand.Reader)
	return priv, pub, err
}

// ValidAssetName reports whether an asset's filename satisfies the
// build-id-in-name rule: the fixed manifest/build-id filenames and any
// ".sig" sidecar are exempt, every other asset must carry buildID as a
// substring so a downloaded artifact is traceable to its build.
func ValidAssetName(name, buildID string) bool {
	if name == ManifestFileName || name == BuildIDFileName {
		return true
	}
	if strings.HasSuffix(name, ".sig") {
		return true
	}
	return strings.Contains(name, buildID)
}

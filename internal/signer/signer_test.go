package signer

import (
	"encoding/hex"
	"testing"
)

func TestGenerateKeypairRoundTrip(t *testing.T) {
	priv, pub, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair() error = %v", err)
	}
	derived := PublicKeyFromPrivateKey(priv)
	if hex.EncodeToString(derived) != hex.EncodeToString(pub) {
		t.Fatalf("PublicKeyFromPrivateKey() = %x, want %x", derived, pub)
	}

	payload := []byte("signing payload")
	signature := Sign(priv, payload)
	ok, err := Verify(pub, payload, signature)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if !ok {
		t.Fatal("Verify() = false, want true")
	}
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	priv, pub, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair() error = %v", err)
	}
	signature := Sign(priv, []byte("original"))
	ok, err := Verify(pub, []byte("tampered"), signature)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if ok {
		t.Fatal("Verify() = true for tampered payload, want false")
	}
}

func TestParsePrivateKeyHexRejectsWrongLength(t *testing.T) {
	_, err := ParsePrivateKeyHex(hex.EncodeToString([]byte("too short")))
	if err == nil {
		t.Fatal("expected error for undersized private key")
	}
}

func TestParsePublicKeyHexRejectsInvalidHex(t *testing.T) {
	_, err := ParsePublicKeyHex("not-hex")
	if err == nil {
		t.Fatal("expected error for invalid hex")
	}
}

func TestValidAssetName(t *testing.T) {
	const buildID = "b1-abc123"
	cases := []struct {
		name string
		want bool
	}{
		{ManifestFileName, true},
		{BuildIDFileName, true},
		{"mylib-" + buildID + "-linux-x86_64.tar.gz.sig", true},
		{"mylib-" + buildID + "-linux-x86_64.tar.gz", true},
		{"mylib-linux-x86_64.tar.gz", false},
	}
	for _, c := range cases {
		if got := ValidAssetName(c.name, buildID); got != c.want {
			t.Errorf("ValidAssetName(%q, %q) = %v, want %v", c.name, buildID, got, c.want)
		}
	}
}

// Copyright (c) 2026 Keymaster Team
// Keymaster - SSH key management system
// This source code is licensed under the MIT license found in the LICENSE file.

package sshkey

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"math/big"
	"strings"
	"testing"

	"golang.org/x/crypto/ssh"
)

// testKey is an authorized_keys line together with the blob it encodes.
type testKey struct {
	text string
	blob []byte
	pub  ssh.PublicKey // nil for synthetic DSA keys
}

func authorizedLine(t *testing.T, pub crypto.PublicKey, comment string) testKey {
	t.Helper()
	sp, err := ssh.NewPublicKey(pub)
	if err != nil {
		t.Fatalf("ssh.NewPublicKey: %v", err)
	}
	line := strings.TrimSpace(string(ssh.MarshalAuthorizedKey(sp)))
	if comment != "" {
		line += " " + comment
	}
	return testKey{text: line, blob: sp.Marshal(), pub: sp}
}

func rsaKey(t *testing.T, bits int) testKey {
	t.Helper()
	k, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		t.Fatalf("rsa.GenerateKey(%d): %v", bits, err)
	}
	return authorizedLine(t, &k.PublicKey, "rsa@example.com")
}

func ecdsaKey(t *testing.T, curve elliptic.Curve) testKey {
	t.Helper()
	k, err := ecdsa.GenerateKey(curve, rand.Reader)
	if err != nil {
		t.Fatalf("ecdsa.GenerateKey: %v", err)
	}
	return authorizedLine(t, &k.PublicKey, "ecdsa@example.com")
}

func ed25519Key(t *testing.T) testKey {
	t.Helper()
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = byte(i)
	}
	priv := ed25519.NewKeyFromSeed(seed)
	return authorizedLine(t, priv.Public(), "ed25519@example.com")
}

// dsaKey builds an ssh-dss blob with a modulus of exactly pBits bits. The
// numbers are not a usable DSA group; only the wire structure matters here.
func dsaKey(t *testing.T, pBits int) testKey {
	t.Helper()
	p := new(big.Int).Lsh(big.NewInt(1), uint(pBits-1))
	p.Add(p, big.NewInt(1))
	q := new(big.Int).Lsh(big.NewInt(1), 255)
	q.Add(q, big.NewInt(7))
	blob := ssh.Marshal(struct {
		Name       string
		P, Q, G, Y *big.Int
	}{"ssh-dss", p, q, big.NewInt(2), big.NewInt(12345)})
	return testKey{
		text: "ssh-dss " + base64.StdEncoding.EncodeToString(blob) + " dsa@example.com",
		blob: blob,
	}
}

func insertAt(s string, i int, ins string) string {
	return s[:i] + ins + s[i:]
}

// Copyright (c) 2026 Keymaster Team
// Keymaster - SSH key management system
// This source code is licensed under the MIT license found in the LICENSE file.

package restrict

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"strings"
	"testing"

	"github.com/toeirei/keyprint/internal/i18n"
	"github.com/toeirei/keyprint/internal/sshkey"
	"golang.org/x/crypto/ssh"
)

func keyFor(t *testing.T, pub crypto.PublicKey) *sshkey.PublicKey {
	t.Helper()
	sp, err := ssh.NewPublicKey(pub)
	if err != nil {
		t.Fatalf("ssh.NewPublicKey: %v", err)
	}
	k := sshkey.New(string(ssh.MarshalAuthorizedKey(sp)))
	if !k.Valid() {
		t.Fatalf("generated key is not valid")
	}
	return k
}

func rsaPub(t *testing.T, bits int) *sshkey.PublicKey {
	t.Helper()
	k, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		t.Fatalf("rsa.GenerateKey: %v", err)
	}
	return keyFor(t, &k.PublicKey)
}

func TestNew_RejectsBadRestrictions(t *testing.T) {
	if _, err := New(map[string]int{"foo": 1024}, false); err == nil {
		t.Fatalf("expected error for unknown technology")
	}
	if _, err := New(map[string]int{"rsa": -3}, false); err == nil {
		t.Fatalf("expected error for invalid minimum")
	}
	if _, err := New(map[string]int{"RSA": 2048, "dsa": Forbidden}, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEvaluate(t *testing.T) {
	i18n.Init("en")

	ed := func() *sshkey.PublicKey {
		pub, _, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			t.Fatalf("ed25519.GenerateKey: %v", err)
		}
		return keyFor(t, pub)
	}()
	p256 := func() *sshkey.PublicKey {
		k, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		if err != nil {
			t.Fatalf("ecdsa.GenerateKey: %v", err)
		}
		return keyFor(t, &k.PublicKey)
	}()
	rsa1024 := rsaPub(t, 1024)
	rsa1536 := rsaPub(t, 1536)

	cases := []struct {
		name         string
		restrictions map[string]int
		strict       bool
		key          *sshkey.PublicKey
		want         Outcome
		msgContains  string
	}{
		{"invalid", nil, false, sshkey.New("this is not a key"), Invalid, "not a valid"},
		{"nil key", nil, false, nil, Invalid, "not a valid"},
		{"no policy", nil, false, rsa1024, Allowed, "allowed"},
		{"forbidden", map[string]int{"ed25519": Forbidden}, false, ed, ForbiddenType, "ed25519 keys are not allowed"},
		{"too small", map[string]int{"rsa": 2048}, false, rsa1024, TooSmall, "2048, 3072, 4096"},
		{"meets minimum", map[string]int{"ecdsa": 256}, false, p256, Allowed, ""},
		{"ecdsa too small", map[string]int{"ecdsa": 384}, false, p256, TooSmall, "at least 384 bits"},
		{"unsupported size lenient", nil, false, rsa1536, Allowed, ""},
		{"unsupported size strict", nil, true, rsa1536, UnsupportedSize, "1536-bit"},
		{"other type unaffected", map[string]int{"rsa": Forbidden}, false, ed, Allowed, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := New(tc.restrictions, tc.strict)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			v := p.Evaluate(tc.key)
			if v.Outcome != tc.want {
				t.Fatalf("Outcome = %s, want %s (%s)", v.Outcome, tc.want, v.Message)
			}
			if v.OK() != (tc.want == Allowed) {
				t.Fatalf("OK() = %v for %s", v.OK(), v.Outcome)
			}
			if !strings.Contains(strings.ToLower(v.Message), strings.ToLower(tc.msgContains)) {
				t.Fatalf("Message %q does not contain %q", v.Message, tc.msgContains)
			}
		})
	}
}

func TestNilPolicyAllowsValidKeys(t *testing.T) {
	var p *Policy
	k := rsaPub(t, 1024)
	if v := p.Evaluate(k); !v.OK() {
		t.Fatalf("nil policy rejected key: %+v", v)
	}
}

func TestDescribe(t *testing.T) {
	i18n.Init("en")
	p, err := New(map[string]int{"rsa": 3072, "dsa": Forbidden}, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := p.Describe(sshkey.RSA); got != "minimum 3072" {
		t.Fatalf("Describe(rsa) = %q", got)
	}
	if got := p.Describe(sshkey.DSA); got != "forbidden" {
		t.Fatalf("Describe(dsa) = %q", got)
	}
	if got := p.Describe(sshkey.ED25519); got != "any supported size" {
		t.Fatalf("Describe(ed25519) = %q", got)
	}
}

func TestOutcomeString(t *testing.T) {
	if ForbiddenType.String() != "forbidden" || Outcome(99).String() != "unknown" {
		t.Fatalf("unexpected Outcome strings")
	}
}

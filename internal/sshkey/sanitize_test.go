// Copyright (c) 2026 Keymaster Team
// Keymaster - SSH key management system
// This source code is licensed under the MIT license found in the LICENSE file.

package sshkey

import (
	"crypto/elliptic"
	"strings"
	"testing"
	"time"
	"unicode"
)

func TestSanitize_RemovesWhitespaceInsidePayload(t *testing.T) {
	content := rsaKey(t, 2048).text
	unsanitized := insertAt(content, 100, "\n")
	unsanitized = insertAt(unsanitized, 40, "\r\n")
	unsanitized = insertAt(unsanitized, 30, " ")

	sanitized := Sanitize(unsanitized)
	fields := strings.Fields(sanitized)

	if sanitized == unsanitized {
		t.Fatalf("expected sanitized content to differ from input")
	}
	if len(fields) < 2 || len(fields) > 3 {
		t.Fatalf("expected two or three fields, got %d: %q", len(fields), sanitized)
	}
	if strings.IndexFunc(fields[1], unicode.IsSpace) >= 0 {
		t.Fatalf("payload still contains whitespace: %q", fields[1])
	}
	if sanitized != content {
		t.Fatalf("Sanitize did not restore the clean key\n got: %q\nwant: %q", sanitized, content)
	}
}

func TestSanitize_CleanKeyUnchanged(t *testing.T) {
	keys := []testKey{
		rsaKey(t, 2048),
		dsaKey(t, 2048),
		ecdsaKey(t, elliptic.P256()),
		ed25519Key(t),
	}
	for _, k := range keys {
		if got := Sanitize(k.text); got != k.text {
			t.Fatalf("Sanitize modified clean key\n got: %q\nwant: %q", got, k.text)
		}
	}
}

func TestSanitize_UnrecognizedReturnedUnchanged(t *testing.T) {
	inputs := []string{
		"ssh-foo any content==",
		"this is not a key",
		"",
		"ssh-rsa",
		"  ssh-rsa   !!!garbage  ",
	}
	for _, in := range inputs {
		if got := Sanitize(in); got != in {
			t.Fatalf("Sanitize(%q) = %q, want input unchanged", in, got)
		}
	}
}

func TestSanitize_CommentIsPreserved(t *testing.T) {
	k := ed25519Key(t)
	fields := strings.Fields(k.text)
	payload := fields[1]
	messy := "  " + fields[0] + "\t" + payload[:20] + "\n" + payload[20:] + "   work   laptop  key \n"

	got := Sanitize(messy)
	want := fields[0] + " " + payload + " work   laptop  key"
	if got != want {
		t.Fatalf("Sanitize = %q, want %q", got, want)
	}
}

func TestSanitize_CommentWhitespaceKeptVerbatim(t *testing.T) {
	k := ed25519Key(t)
	fields := strings.Fields(k.text)
	for _, comment := range []string{"my   key", "a\tb  c", "x"} {
		in := fields[0] + " " + fields[1][:16] + "\n" + fields[1][16:] + " " + comment + "\n"
		want := fields[0] + " " + fields[1] + " " + comment
		if got := Sanitize(in); got != want {
			t.Fatalf("Sanitize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSanitize_LongManyTokenInputIsBounded(t *testing.T) {
	inputs := []string{
		"ssh-rsa " + strings.Repeat("AAAA ", 32000),
		"ssh-ed25519 " + strings.Repeat("QUFB", 8000) + " " + strings.Repeat("QUFB ", 1000),
		"ssh-dss " + strings.Repeat("A ", 50000),
	}
	start := time.Now()
	for _, in := range inputs {
		if got := Sanitize(in); got != in {
			t.Fatalf("expected oversized input to be returned unchanged (len %d)", len(in))
		}
		if New(in).Valid() {
			t.Fatalf("oversized garbage classified as valid")
		}
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("sanitizing long input took %s", elapsed)
	}
}

func TestSanitize_NoComment(t *testing.T) {
	k := ecdsaKey(t, elliptic.P384())
	fields := strings.Fields(k.text)
	in := fields[0] + " " + fields[1][:10] + " " + fields[1][10:]
	if got, want := Sanitize(in), fields[0]+" "+fields[1]; got != want {
		t.Fatalf("Sanitize = %q, want %q", got, want)
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	rsa := rsaKey(t, 2048).text
	inputs := []string{
		rsa,
		insertAt(rsa, 50, "\r\n"),
		insertAt(insertAt(rsa, 200, " \t "), 20, "\n"),
		rsa + "\n",
		"ssh-foo any content==",
		"ssh-rsa AAAA BBBB",
		"",
		"   ",
		"\x00\x01",
	}
	for _, in := range inputs {
		once := Sanitize(in)
		if twice := Sanitize(once); twice != once {
			t.Fatalf("Sanitize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func FuzzSanitize_Idempotent(f *testing.F) {
	f.Add("ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAIA comment")
	f.Add("ssh-foo any content==")
	f.Add("this is not a key")
	f.Add("")
	f.Fuzz(func(t *testing.T, in string) {
		once := Sanitize(in)
		if twice := Sanitize(once); twice != once {
			t.Fatalf("Sanitize not idempotent for %q", in)
		}
	})
}

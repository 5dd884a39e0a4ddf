// Copyright (c) 2026 Keymaster Team
// Keymaster - SSH key management system
// This source code is licensed under the MIT license found in the LICENSE file.

package sshkey

import (
	"slices"
	"strings"
	"testing"
)

func TestLookup_KnownNames(t *testing.T) {
	for _, name := range []Name{RSA, DSA, ECDSA, ED25519} {
		for _, variant := range []string{string(name), strings.ToUpper(string(name)), " " + string(name) + "\n"} {
			tech, ok := Lookup(variant)
			if !ok {
				t.Fatalf("Lookup(%q) not found", variant)
			}
			if tech.Name != name {
				t.Fatalf("Lookup(%q).Name = %q, want %q", variant, tech.Name, name)
			}
		}
	}
}

func TestLookup_Unknown(t *testing.T) {
	for _, name := range []string{"foo", "", "ssh-rsa", "rsa2"} {
		if tech, ok := Lookup(name); ok {
			t.Fatalf("Lookup(%q) = %+v, want absent", name, tech)
		}
	}
}

func TestSupportedSizes(t *testing.T) {
	cases := []struct {
		name string
		want []int
	}{
		{"rsa", []int{1024, 2048, 3072, 4096}},
		{"dsa", []int{1024, 2048, 3072}},
		{"ecdsa", []int{256, 384, 521}},
		{"ed25519", []int{256}},
		{"RSA", []int{1024, 2048, 3072, 4096}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SupportedSizes(tc.name); !slices.Equal(got, tc.want) {
				t.Fatalf("SupportedSizes(%q) = %v, want %v", tc.name, got, tc.want)
			}
		})
	}

	got := SupportedSizes("foo")
	if got == nil || len(got) != 0 {
		t.Fatalf("SupportedSizes(unknown) = %#v, want empty slice", got)
	}
}

func TestSupportedSizes_ReturnsCopy(t *testing.T) {
	sizes := SupportedSizes("rsa")
	sizes[0] = 1
	if SupportedSizes("rsa")[0] != 1024 {
		t.Fatalf("registry was modified through returned slice")
	}
}

func TestAll_IsRestartable(t *testing.T) {
	var first, second []Name
	for tech := range All() {
		first = append(first, tech.Name)
	}
	for tech := range All() {
		second = append(second, tech.Name)
	}
	want := []Name{RSA, DSA, ECDSA, ED25519}
	if !slices.Equal(first, want) || !slices.Equal(second, want) {
		t.Fatalf("All() yielded %v then %v, want %v twice", first, second, want)
	}

	// Early break must not panic.
	for range All() {
		break
	}
}

func TestForIdentifier(t *testing.T) {
	cases := map[string]Name{
		"ssh-rsa":             RSA,
		"ssh-dss":             DSA,
		"ecdsa-sha2-nistp256": ECDSA,
		"ecdsa-sha2-nistp384": ECDSA,
		"ecdsa-sha2-nistp521": ECDSA,
		"ssh-ed25519":         ED25519,
	}
	for token, want := range cases {
		tech, ok := ForIdentifier(token)
		if !ok || tech.Name != want {
			t.Fatalf("ForIdentifier(%q) = %v, %v; want %v", token, tech.Name, ok, want)
		}
	}
	for _, token := range []string{"ssh-foo", "SSH-RSA", "ssh-rsa-cert-v01@openssh.com", "ecdsa-sha2-nistp999"} {
		if _, ok := ForIdentifier(token); ok {
			t.Fatalf("ForIdentifier(%q) matched, want no match", token)
		}
	}
}

func TestTechnology_SupportsAndMinSize(t *testing.T) {
	tech, _ := Lookup("ecdsa")
	if !tech.Supports(384) || tech.Supports(512) {
		t.Fatalf("unexpected Supports results for ecdsa")
	}
	if tech.MinSize() != 256 {
		t.Fatalf("MinSize = %d, want 256", tech.MinSize())
	}
	if (Technology{}).MinSize() != 0 {
		t.Fatalf("zero Technology MinSize should be 0")
	}
}

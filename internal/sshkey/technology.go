// Copyright (c) 2026 Keymaster Team
// Keymaster - SSH key management system
// This source code is licensed under the MIT license found in the LICENSE file.

package sshkey

import (
	"iter"
	"slices"
	"strings"
)

// Name identifies one of the supported key algorithm families.
type Name string

const (
	RSA     Name = "rsa"
	DSA     Name = "dsa"
	ECDSA   Name = "ecdsa"
	ED25519 Name = "ed25519"
)

func (n Name) String() string { return string(n) }

// Technology describes an algorithm family: the bit sizes it is permitted
// to use and the OpenSSH algorithm tokens that announce it.
type Technology struct {
	Name           Name
	SupportedSizes []int
	// Prefix is the common part of the family's algorithm identifiers.
	Prefix string
	// Identifiers are the exact leading tokens accepted for the family.
	Identifiers []string

	decode decoder
}

// Supports reports whether bits is one of the family's permitted sizes.
func (t Technology) Supports(bits int) bool {
	return slices.Contains(t.SupportedSizes, bits)
}

// MinSize returns the smallest permitted size.
func (t Technology) MinSize() int {
	if len(t.SupportedSizes) == 0 {
		return 0
	}
	return t.SupportedSizes[0]
}

func (t Technology) identifies(token string) bool {
	return slices.Contains(t.Identifiers, token)
}

// registry is written once at package init and only read afterwards.
var registry = []Technology{
	{
		Name:           RSA,
		SupportedSizes: []int{1024, 2048, 3072, 4096},
		Prefix:         "ssh-rsa",
		Identifiers:    []string{"ssh-rsa"},
		decode:         decodeRSA,
	},
	{
		Name:           DSA,
		SupportedSizes: []int{1024, 2048, 3072},
		Prefix:         "ssh-dss",
		Identifiers:    []string{"ssh-dss"},
		decode:         decodeDSA,
	},
	{
		Name:           ECDSA,
		SupportedSizes: []int{256, 384, 521},
		Prefix:         "ecdsa-sha2-",
		Identifiers:    []string{"ecdsa-sha2-nistp256", "ecdsa-sha2-nistp384", "ecdsa-sha2-nistp521"},
		decode:         decodeECDSA,
	},
	{
		Name:           ED25519,
		SupportedSizes: []int{256},
		Prefix:         "ssh-ed25519",
		Identifiers:    []string{"ssh-ed25519"},
		decode:         decodeEd25519,
	},
}

// Lookup returns the technology with the given name. Casing and surrounding
// whitespace are ignored.
func Lookup(name string) (Technology, bool) {
	want := Name(strings.ToLower(strings.TrimSpace(name)))
	for _, t := range registry {
		if t.Name == want {
			return t.clone(), true
		}
	}
	return Technology{}, false
}

// SupportedSizes returns the ascending size list for name, or an empty
// slice when name is not a known technology.
func SupportedSizes(name string) []int {
	t, ok := Lookup(name)
	if !ok {
		return []int{}
	}
	return t.SupportedSizes
}

// All yields every known technology in registry order. The sequence can be
// ranged over any number of times.
func All() iter.Seq[Technology] {
	return func(yield func(Technology) bool) {
		for _, t := range registry {
			if !yield(t.clone()) {
				return
			}
		}
	}
}

// ForIdentifier returns the technology announced by an algorithm token such
// as "ssh-ed25519" or "ecdsa-sha2-nistp384".
func ForIdentifier(token string) (Technology, bool) {
	for t := range All() {
		if t.identifies(token) {
			return t, true
		}
	}
	return Technology{}, false
}

// clone hands out copies so callers cannot modify the registry slices.
func (t Technology) clone() Technology {
	t.SupportedSizes = slices.Clone(t.SupportedSizes)
	t.Identifiers = slices.Clone(t.Identifiers)
	return t
}

// Copyright (c) 2026 Keymaster Team
// Keymaster - SSH key management system
// This source code is licensed under the MIT license found in the LICENSE file.

package sshkey

import "github.com/toeirei/keyprint/internal/logging"

// PublicKey is the read-only view of a pasted public key. It is either valid,
// carrying a type, bit length and fingerprint, or invalid with none of them.
type PublicKey struct {
	raw               string
	parsed            ParsedKey
	fingerprint       string
	fingerprintSHA256 string
}

// New sanitizes and classifies raw. It accepts any input, including empty
// strings and binary garbage.
func New(raw string) *PublicKey {
	k := &PublicKey{raw: raw, parsed: ParseAndValidate(Sanitize(raw))}
	if !k.parsed.valid {
		logging.Debugf("sshkey: rejected key: %v", k.parsed.reason)
		return k
	}
	k.fingerprint = Fingerprint(k.parsed.blob)
	k.fingerprintSHA256 = FingerprintSHA256(k.parsed.blob)
	return k
}

// Valid reports whether the key decoded successfully.
func (k *PublicKey) Valid() bool { return k.parsed.valid }

// Type returns the technology name of a valid key.
func (k *PublicKey) Type() (Name, bool) {
	if !k.parsed.valid {
		return "", false
	}
	return k.parsed.tech.Name, true
}

// Technology returns the full technology record of a valid key.
func (k *PublicKey) Technology() (Technology, bool) { return k.parsed.Technology() }

func (k *PublicKey) Bits() (int, bool) { return k.parsed.Bits() }

// Fingerprint returns the colon separated MD5 fingerprint of a valid key.
func (k *PublicKey) Fingerprint() (string, bool) {
	return k.fingerprint, k.parsed.valid
}

func (k *PublicKey) FingerprintSHA256() (string, bool) {
	return k.fingerprintSHA256, k.parsed.valid
}

// Comment returns the trailing comment of a valid key.
func (k *PublicKey) Comment() string { return k.parsed.comment }

// KeyText returns the input exactly as it was given to New. Use Sanitize
// for the canonical form.
func (k *PublicKey) KeyText() string { return k.raw }

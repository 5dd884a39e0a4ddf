// Copyright (c) 2026 Keymaster Team
// Keymaster - SSH key management system
// This source code is licensed under the MIT license found in the LICENSE file.

// Package sshkey classifies, validates and fingerprints pasted OpenSSH public
// keys. It knows four algorithm families (rsa, dsa, ecdsa, ed25519) and never
// fails on malformed input: anything it cannot decode is simply invalid.
//
// The usual entry point is New, which sanitizes the raw text, decodes it and
// exposes the derived type, bit length and fingerprint.
package sshkey

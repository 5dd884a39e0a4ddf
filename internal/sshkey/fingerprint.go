// Copyright (c) 2026 Keymaster Team
// Keymaster - SSH key management system
// This source code is licensed under the MIT license found in the LICENSE file.

package sshkey

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"
)

// Fingerprint returns the legacy OpenSSH MD5 fingerprint of a decoded key
// blob: 16 lowercase hex octets separated by colons.
func Fingerprint(blob []byte) string {
	sum := md5.Sum(blob)
	hexed := hex.EncodeToString(sum[:])

	var b strings.Builder
	b.Grow(len(hexed) + len(sum) - 1)
	for i := 0; i < len(hexed); i += 2 {
		if i > 0 {
			b.WriteByte(':')
		}
		b.WriteString(hexed[i : i+2])
	}
	return b.String()
}

// FingerprintSHA256 returns the fingerprint in the format printed by
// current OpenSSH releases ("SHA256:" followed by unpadded base64).
func FingerprintSHA256(blob []byte) string {
	sum := sha256.Sum256(blob)
	return "SHA256:" + base64.RawStdEncoding.EncodeToString(sum[:])
}

// Copyright (c) 2026 Keymaster Team
// Keymaster - SSH key management system
// This source code is licensed under the MIT license found in the LICENSE file.

package sshkey

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/ssh"
)

// Diagnostic reasons recorded on invalid keys. They are never returned by
// the PublicKey facade; callers only see Valid() == false.
var (
	ErrEmpty             = errors.New("empty key text")
	ErrUnknownAlgorithm  = errors.New("unknown key algorithm")
	ErrMalformedPayload  = errors.New("malformed key payload")
	ErrAlgorithmMismatch = errors.New("key algorithm does not match payload")
)

// decoder decodes a wire-format public key blob and reports the algorithm
// tag embedded in it together with the key's structural size in bits.
type decoder func(blob []byte) (tag string, bits int, err error)

// ParsedKey is the immutable result of classifying one sanitized key text.
// The technology and bit length are only present on valid keys.
type ParsedKey struct {
	text    string
	tech    Technology
	bits    int
	valid   bool
	blob    []byte
	comment string
	reason  error
}

// Valid reports whether the text decoded as a supported public key.
func (p ParsedKey) Valid() bool { return p.valid }

// Technology returns the matched family of a valid key.
func (p ParsedKey) Technology() (Technology, bool) {
	if !p.valid {
		return Technology{}, false
	}
	return p.tech.clone(), true
}

// Bits returns the structural key size of a valid key.
func (p ParsedKey) Bits() (int, bool) {
	if !p.valid {
		return 0, false
	}
	return p.bits, true
}

// Text returns the text that was parsed.
func (p ParsedKey) Text() string { return p.text }

// Comment returns the trailing comment of a valid key, if any.
func (p ParsedKey) Comment() string { return p.comment }

// Blob returns a copy of the decoded wire-format key.
func (p ParsedKey) Blob() []byte {
	if !p.valid {
		return nil
	}
	return append([]byte(nil), p.blob...)
}

// Reason returns why the key was rejected, or nil for valid keys.
func (p ParsedKey) Reason() error { return p.reason }

// ParseAndValidate classifies sanitized key text. It never panics and never
// returns an error: every failure yields an invalid ParsedKey.
func ParseAndValidate(text string) (pk ParsedKey) {
	pk.text = text
	defer func() {
		if r := recover(); r != nil {
			pk = ParsedKey{text: text, reason: fmt.Errorf("%w: %v", ErrMalformedPayload, r)}
		}
	}()

	spans := fieldSpans(text)
	if len(spans) == 0 {
		pk.reason = ErrEmpty
		return pk
	}
	token := text[spans[0][0]:spans[0][1]]
	tech, ok := ForIdentifier(token)
	if !ok {
		pk.reason = fmt.Errorf("%w: %q", ErrUnknownAlgorithm, truncate(token, 32))
		return pk
	}
	if len(spans) < 2 {
		pk.reason = fmt.Errorf("%w: missing key data after %s", ErrMalformedPayload, token)
		return pk
	}

	payloadEnd := spans[1][1]
	blob, bits, err := decodePayload(tech, token, text[spans[1][0]:payloadEnd])
	if err != nil {
		pk.reason = err
		return pk
	}

	pk.tech = tech
	pk.bits = bits
	pk.blob = blob
	pk.comment = strings.TrimSpace(text[payloadEnd:])
	pk.valid = true
	return pk
}

// decodePayload base64-decodes payload and decodes the blob with the
// family's decoder. The tag embedded in the blob must equal token.
func decodePayload(tech Technology, token, payload string) ([]byte, int, error) {
	blob, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	tag, bits, err := tech.decode(blob)
	if err != nil {
		return nil, 0, err
	}
	if tag != token {
		return nil, 0, fmt.Errorf("%w: %s announced, %s encoded", ErrAlgorithmMismatch, token, truncate(tag, 32))
	}
	return blob, bits, nil
}

// parseCryptoKey decodes blob with the ssh package and unwraps the standard
// library key it carries.
func parseCryptoKey(blob []byte) (string, any, error) {
	pub, err := ssh.ParsePublicKey(blob)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	ck, ok := pub.(ssh.CryptoPublicKey)
	if !ok {
		return "", nil, fmt.Errorf("%w: %s is not a plain public key", ErrAlgorithmMismatch, pub.Type())
	}
	return pub.Type(), ck.CryptoPublicKey(), nil
}

func decodeRSA(blob []byte) (string, int, error) {
	tag, key, err := parseCryptoKey(blob)
	if err != nil {
		return "", 0, err
	}
	k, ok := key.(*rsa.PublicKey)
	if !ok {
		return "", 0, fmt.Errorf("%w: %s", ErrAlgorithmMismatch, tag)
	}
	return tag, k.N.BitLen(), nil
}

// decodeDSA reads the ssh-dss wire structure directly. ssh.ParsePublicKey
// only admits 1024-bit DSA keys.
func decodeDSA(blob []byte) (string, int, error) {
	var w struct {
		Name       string
		P, Q, G, Y *big.Int
		Rest       []byte `ssh:"rest"`
	}
	if err := ssh.Unmarshal(blob, &w); err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if len(w.Rest) > 0 {
		return "", 0, fmt.Errorf("%w: trailing data after dsa key", ErrMalformedPayload)
	}
	for _, n := range []*big.Int{w.P, w.Q, w.G, w.Y} {
		if n == nil || n.Sign() <= 0 {
			return "", 0, fmt.Errorf("%w: non-positive dsa parameter", ErrMalformedPayload)
		}
	}
	return w.Name, w.P.BitLen(), nil
}

func decodeECDSA(blob []byte) (string, int, error) {
	tag, key, err := parseCryptoKey(blob)
	if err != nil {
		return "", 0, err
	}
	k, ok := key.(*ecdsa.PublicKey)
	if !ok {
		return "", 0, fmt.Errorf("%w: %s", ErrAlgorithmMismatch, tag)
	}
	return tag, k.Curve.Params().BitSize, nil
}

func decodeEd25519(blob []byte) (string, int, error) {
	tag, key, err := parseCryptoKey(blob)
	if err != nil {
		return "", 0, err
	}
	if _, ok := key.(ed25519.PublicKey); !ok {
		return "", 0, fmt.Errorf("%w: %s", ErrAlgorithmMismatch, tag)
	}
	return tag, 256, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Copyright (c) 2026 Keymaster Team
// Keymaster - SSH key management system
// This source code is licensed under the MIT license found in the LICENSE file.

package sshkey

import (
	"strings"
	"unicode"
)

const (
	// maxPayloadLen bounds the base64 payload Sanitize will reassemble. The
	// largest supported keys encode to well under 2 KiB.
	maxPayloadLen = 16 * 1024
	// maxPayloadTokens bounds how many whitespace separated pieces the
	// payload may have been split into.
	maxPayloadTokens = 256
)

// Sanitize normalizes pasted key text into the canonical
// "<algorithm> <base64> [comment]" layout. Whitespace that crept into the
// base64 field (line wraps, stray spaces) is removed; the payload ends at the
// first run of tokens that decodes as a complete key. Everything after it is
// kept verbatim as the comment, only the separating whitespace is trimmed.
//
// Text that does not start with a known algorithm identifier, whose payload
// never decodes, or whose payload exceeds the size bounds is returned
// unchanged.
func Sanitize(text string) string {
	spans := fieldSpans(text)
	if len(spans) < 2 {
		return text
	}
	token := text[spans[0][0]:spans[0][1]]
	tech, ok := ForIdentifier(token)
	if !ok {
		return text
	}

	var payload strings.Builder
	for i, sp := range spans[1:] {
		if i >= maxPayloadTokens {
			return text
		}
		payload.WriteString(text[sp[0]:sp[1]])
		if payload.Len() > maxPayloadLen {
			return text
		}
		// Padded base64 always comes in groups of four.
		if payload.Len()%4 != 0 {
			continue
		}
		if _, _, err := decodePayload(tech, token, payload.String()); err != nil {
			continue
		}
		out := token + " " + payload.String()
		if comment := strings.TrimSpace(text[sp[1]:]); comment != "" {
			out += " " + comment
		}
		return out
	}
	return text
}

// fieldSpans returns the [start, end) byte offsets of the fields that
// strings.Fields would return for s.
func fieldSpans(s string) [][2]int {
	var spans [][2]int
	start := -1
	for i, r := range s {
		if unicode.IsSpace(r) {
			if start >= 0 {
				spans = append(spans, [2]int{start, i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		spans = append(spans, [2]int{start, len(s)})
	}
	return spans
}

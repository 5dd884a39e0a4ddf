// Copyright (c) 2026 Keymaster Team
// Keymaster - SSH key management system
// This source code is licensed under the MIT license found in the LICENSE file.

package sshkey

import "strings"

// StripOptions separates leading authorized_keys options (for example
// from="...",no-pty) from the key itself. When the line has no options, key
// is the line with surrounding whitespace trimmed. When no known algorithm
// identifier is present the whole line is returned as key.
func StripOptions(line string) (options, key string) {
	trimmed := strings.TrimSpace(line)
	for i, sp := range fieldSpans(trimmed) {
		if _, ok := ForIdentifier(trimmed[sp[0]:sp[1]]); !ok {
			continue
		}
		if i == 0 {
			return "", trimmed
		}
		return strings.TrimSpace(trimmed[:sp[0]]), trimmed[sp[0]:]
	}
	return "", trimmed
}

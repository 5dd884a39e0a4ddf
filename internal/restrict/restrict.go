// Copyright (c) 2026 Keymaster Team
// Keymaster - SSH key management system
// This source code is licensed under the MIT license found in the LICENSE file.

// Package restrict applies site policy (forbidden technologies, minimum key
// sizes) on top of the structural checks done by package sshkey, and renders
// the user-facing messages for rejected keys.
package restrict

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/toeirei/keyprint/internal/i18n"
	"github.com/toeirei/keyprint/internal/sshkey"
)

// Forbidden as a minimum size bans a technology.
const Forbidden = -1

// Outcome classifies a key against a Policy.
type Outcome int

const (
	Allowed Outcome = iota
	Invalid
	ForbiddenType
	TooSmall
	UnsupportedSize
)

func (o Outcome) String() string {
	switch o {
	case Allowed:
		return "allowed"
	case Invalid:
		return "invalid"
	case ForbiddenType:
		return "forbidden"
	case TooSmall:
		return "too_small"
	case UnsupportedSize:
		return "unsupported_size"
	default:
		return "unknown"
	}
}

// Verdict is the result of evaluating one key.
type Verdict struct {
	Outcome Outcome
	Message string
}

// OK reports whether the key may be accepted.
func (v Verdict) OK() bool { return v.Outcome == Allowed }

// Policy holds per-technology minimum sizes. The zero value allows every
// valid key. A Policy is read-only after New and safe for concurrent use.
type Policy struct {
	min    map[sshkey.Name]int
	strict bool
}

// New builds a policy from technology name to minimum size. Forbidden bans
// a technology; zero or a missing entry means no minimum. When strict is
// set, sizes outside a technology's supported list are rejected.
func New(restrictions map[string]int, strict bool) (*Policy, error) {
	p := &Policy{min: make(map[sshkey.Name]int, len(restrictions)), strict: strict}
	for name, min := range restrictions {
		tech, ok := sshkey.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("unknown key type %q in restrictions", name)
		}
		if min < Forbidden {
			return nil, fmt.Errorf("invalid restriction %d for %s", min, tech.Name)
		}
		p.min[tech.Name] = min
	}
	return p, nil
}

// MinSize returns the configured minimum for name and whether the
// technology is forbidden.
func (p *Policy) MinSize(name sshkey.Name) (min int, forbidden bool) {
	if p == nil {
		return 0, false
	}
	min = p.min[name]
	return min, min == Forbidden
}

// Evaluate checks k against the policy.
func (p *Policy) Evaluate(k *sshkey.PublicKey) Verdict {
	if k == nil || !k.Valid() {
		return Verdict{Outcome: Invalid, Message: i18n.T("key.invalid")}
	}
	tech, _ := k.Technology()
	bits, _ := k.Bits()

	min, forbidden := p.MinSize(tech.Name)
	if forbidden {
		return Verdict{
			Outcome: ForbiddenType,
			Message: i18n.Tf("restrict.forbidden", map[string]any{"Type": tech.Name}),
		}
	}
	if bits < min {
		msg := i18n.Tf("restrict.too_small", map[string]any{"Type": tech.Name, "Min": min})
		if sizes := sizesAtLeast(tech, min); sizes != "" {
			msg += " " + i18n.Tf("restrict.sizes_hint", map[string]any{"Sizes": sizes})
		}
		return Verdict{Outcome: TooSmall, Message: msg}
	}
	if p != nil && p.strict && !tech.Supports(bits) {
		return Verdict{
			Outcome: UnsupportedSize,
			Message: i18n.Tf("restrict.unsupported_size", map[string]any{
				"Type":  tech.Name,
				"Bits":  bits,
				"Sizes": sizesAtLeast(tech, min),
			}),
		}
	}
	return Verdict{Outcome: Allowed, Message: i18n.T("restrict.allowed")}
}

// Describe renders the restriction for a technology as shown in listings.
func (p *Policy) Describe(name sshkey.Name) string {
	min, forbidden := p.MinSize(name)
	switch {
	case forbidden:
		return i18n.T("technologies.forbidden")
	case min > 0:
		return i18n.Tf("technologies.minimum", map[string]any{"Min": min})
	default:
		return i18n.T("technologies.any_size")
	}
}

// sizesAtLeast lists the supported sizes of tech that satisfy min.
func sizesAtLeast(tech sshkey.Technology, min int) string {
	var parts []string
	for _, s := range tech.SupportedSizes {
		if s >= min {
			parts = append(parts, strconv.Itoa(s))
		}
	}
	return strings.Join(parts, ", ")
}

// Copyright (c) 2025 ToeiRei
// Keymaster - SSH key management system
// This source code is licensed under the MIT license found in the LICENSE file.

package store

import (
	"errors"
	"strings"
)

var (
	// ErrDuplicate is returned when the fingerprint is already registered.
	ErrDuplicate = errors.New("duplicate record")
	// ErrNotFound is returned when no record matches a fingerprint.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidKey is returned when registering a key that did not validate.
	ErrInvalidKey = errors.New("invalid public key")
)

// mapDBError maps driver specific constraint violations to ErrDuplicate.
// The mapping is string based so this file needs no driver imports.
func mapDBError(err error) error {
	if err == nil {
		return nil
	}
	le := strings.ToLower(err.Error())
	// MySQL duplicate entry, Postgres unique violation (23505), SQLite unique constraint
	if strings.Contains(le, "duplicate") || strings.Contains(le, "unique") || strings.Contains(le, "23505") || strings.Contains(le, "1062") {
		return ErrDuplicate
	}
	return err
}

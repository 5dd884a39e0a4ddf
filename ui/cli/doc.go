// Copyright (c) 2026 Keymaster Team
// Keymaster - SSH key management system
// This source code is licensed under the MIT license found in the LICENSE file.
//
// Package cli implements the keyprint command-line interface using Cobra.
// It loads configuration, sets up logging and translations, and delegates
// the work to the sshkey, batch, restrict and store packages. Commands stay
// thin and only handle input gathering and output formatting.
package cli

// Copyright (c) 2026 Keymaster Team
// Keymaster - SSH key management system
// This source code is licensed under the MIT license found in the LICENSE file.

// Command-line entrypoint for keyprint.
//
// Usage:
//
//	go run . [flags]
//	./keyprint check < ~/.ssh/authorized_keys
//
// See --help for all commands.
package main

import (
	"os"

	"github.com/toeirei/keyprint/internal/logging"
	"github.com/toeirei/keyprint/ui/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		logging.Errorf("%v", err)
		os.Exit(1)
	}
}

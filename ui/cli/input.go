// Copyright (c) 2026 Keymaster Team
// Keymaster - SSH key management system
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/toeirei/keyprint/internal/batch"
	"github.com/toeirei/keyprint/internal/i18n"
	"golang.org/x/term"
)

// addInputFlags registers the flags understood by readInputs.
func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("file", "f", "", "Read keys from a file in authorized_keys format (\"-\" for stdin)")
	cmd.Flags().Bool("clipboard", false, "Read keys from the system clipboard")
}

// readInputs collects key candidates from, in order of preference, the
// command arguments, --file, --clipboard or standard input.
func (a *app) readInputs(cmd *cobra.Command, args []string) ([]batch.Input, error) {
	if len(args) > 0 {
		return batch.FromStrings(args), nil
	}

	file, _ := cmd.Flags().GetString("file")
	fromClipboard, _ := cmd.Flags().GetBool("clipboard")

	var (
		inputs []batch.Input
		err    error
	)
	switch {
	case file != "" && file != "-":
		f, openErr := os.Open(file)
		if openErr != nil {
			return nil, fmt.Errorf("could not open key file: %w", openErr)
		}
		defer func() { _ = f.Close() }()
		inputs, err = batch.ReadLines(f)
	case fromClipboard:
		text, clipErr := a.readClipboard()
		if clipErr != nil {
			return nil, fmt.Errorf("could not read clipboard: %w", clipErr)
		}
		inputs, err = batch.ReadLines(strings.NewReader(text))
	default:
		in := cmd.InOrStdin()
		if isTerminal(in) {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), i18n.T("cli.stdin_hint"))
		}
		inputs, err = batch.ReadLines(in)
	}
	if err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, errors.New(i18n.T("cli.no_input"))
	}
	return inputs, nil
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

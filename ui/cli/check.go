// Copyright (c) 2026 Keymaster Team
// Keymaster - SSH key management system
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/toeirei/keyprint/internal/batch"
	"github.com/toeirei/keyprint/internal/i18n"
	"github.com/toeirei/keyprint/internal/logging"
	"github.com/toeirei/keyprint/internal/sshkey"
)

func newCheckCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [key...]",
		Short: "Validate public keys and print their fingerprints",
		Long: `Validates one or more SSH public keys and prints their type, size,
fingerprints and policy verdict. Keys are taken from the arguments,
from --file, from the clipboard with --clipboard, or from standard input.
Input in authorized_keys format, including options, is accepted.

The command exits non-zero when any key is invalid or refused by the
configured restrictions.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := a.readInputs(cmd, args)
			if err != nil {
				return err
			}
			results, err := batch.Check(cmd.Context(), inputs, a.policy, a.cfg.Workers)
			if err != nil {
				return err
			}

			reports := make([]keyReport, len(results))
			rejected := 0
			for i, r := range results {
				reports[i] = newKeyReport(r)
				if !r.Verdict.OK() {
					rejected++
					logging.Debugf("check: line %d rejected: %s", r.Line, r.Verdict.Outcome)
				}
			}
			if err := writeReports(cmd.OutOrStdout(), a.cfg.Output, reports); err != nil {
				return err
			}
			if rejected > 0 {
				return fmt.Errorf("%w: %s", errRejected, i18n.Tf("cli.rejected", map[string]any{"Count": rejected}))
			}
			return nil
		},
	}
	addInputFlags(cmd)
	return cmd
}

func newSanitizeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sanitize [key...]",
		Short: "Repair keys that were wrapped or split by copy and paste",
		Long: `Removes whitespace that was inserted into the base64 payload of a
public key, for example by line wrapping in a terminal or e-mail, and
prints the repaired key. Text that cannot be repaired is printed
unchanged.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var texts []string
			if len(args) > 0 {
				texts = args
			} else {
				inputs, err := a.readInputs(cmd, args)
				if err != nil {
					return err
				}
				for _, in := range inputs {
					texts = append(texts, in.Text)
				}
			}

			out := cmd.OutOrStdout()
			for _, text := range texts {
				options, key := sshkey.StripOptions(text)
				clean := sshkey.Sanitize(key)
				if options != "" {
					clean = options + " " + clean
				}
				if _, err := fmt.Fprintln(out, clean); err != nil {
					return err
				}
			}
			return nil
		},
	}
	addInputFlags(cmd)
	return cmd
}

// Copyright (c) 2026 Keymaster Team
// Keymaster - SSH key management system
// This source code is licensed under the MIT license found in the LICENSE file.

// ledger.go holds the commands that work on the fingerprint ledger.

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/toeirei/keyprint/internal/batch"
	"github.com/toeirei/keyprint/internal/i18n"
	"github.com/toeirei/keyprint/internal/logging"
	"github.com/toeirei/keyprint/internal/store"
)

// withStore opens the configured ledger for the duration of fn.
func (a *app) withStore(fn func(s *store.Store) error) error {
	s, err := a.openStore(a.cfg.Database.Type, a.cfg.Database.Dsn)
	if err != nil {
		return fmt.Errorf("could not open ledger: %w", err)
	}
	defer func() {
		if cerr := s.Close(); cerr != nil {
			logging.Warnf("closing ledger: %v", cerr)
		}
	}()
	return fn(s)
}

func newRegisterCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register [key...]",
		Short: "Record accepted keys in the fingerprint ledger",
		Long: `Checks the given keys like the check command and records every
accepted key in the fingerprint ledger. Keys that are invalid, refused by
the restrictions or already registered are reported and skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := a.readInputs(cmd, args)
			if err != nil {
				return err
			}
			results, err := batch.Check(cmd.Context(), inputs, a.policy, a.cfg.Workers)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			rejected := 0
			err = a.withStore(func(s *store.Store) error {
				for _, r := range results {
					if !r.Verdict.OK() {
						rejected++
						fmt.Fprintln(out, i18n.Tf("store.skipped", map[string]any{"Line": r.Line, "Reason": r.Verdict.Message}))
						continue
					}
					rec, err := s.Register(cmd.Context(), r.Key)
					fp, _ := r.Key.Fingerprint()
					switch {
					case errors.Is(err, store.ErrDuplicate):
						rejected++
						fmt.Fprintln(out, i18n.Tf("store.duplicate", map[string]any{"Fingerprint": fp}))
					case err != nil:
						return err
					default:
						fmt.Fprintln(out, i18n.Tf("store.registered", map[string]any{"Fingerprint": rec.Fingerprint}))
					}
				}
				return nil
			})
			if err != nil {
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

func newLookupCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <fingerprint>",
		Short: "Show the ledger record for a fingerprint",
		Long:  `Looks up a registered key by its MD5 fingerprint (aa:bb:...) or its SHA256 fingerprint (SHA256:...).`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(s *store.Store) error {
				rec, err := s.Get(cmd.Context(), args[0])
				if errors.Is(err, store.ErrNotFound) {
					return errors.New(i18n.Tf("store.not_found", map[string]any{"Fingerprint": args[0]}))
				}
				if err != nil {
					return err
				}
				return writeRecords(cmd.OutOrStdout(), a.cfg.Output, []store.KeyRecord{*rec})
			})
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all registered keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(s *store.Store) error {
				recs, err := s.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(recs) == 0 && a.cfg.Output == "text" {
					_, err = fmt.Fprintln(cmd.OutOrStdout(), i18n.T("store.empty"))
					return err
				}
				return writeRecords(cmd.OutOrStdout(), a.cfg.Output, recs)
			})
		},
	}
}

func newForgetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "forget <fingerprint>",
		Aliases: []string{"rm"},
		Short:   "Remove a key from the ledger",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(s *store.Store) error {
				err := s.Delete(cmd.Context(), args[0])
				if errors.Is(err, store.ErrNotFound) {
					return errors.New(i18n.Tf("store.not_found", map[string]any{"Fingerprint": args[0]}))
				}
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), i18n.Tf("store.forgotten", map[string]any{"Fingerprint": args[0]}))
				return err
			})
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Write the ledger to a zstd compressed JSON lines file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			return a.withStore(func(s *store.Store) error {
				f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
				if err != nil {
					return fmt.Errorf("could not create export file: %w", err)
				}
				n, err := s.Export(cmd.Context(), f)
				if cerr := f.Close(); err == nil {
					err = cerr
				}
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), i18n.Tf("store.exported", map[string]any{"Count": n, "Path": path}))
				return err
			})
		},
	}
}

func writeRecords(w io.Writer, format string, recs []store.KeyRecord) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(recs)
	case "yaml":
		data, err := yaml.Marshal(recs)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tBITS\tFINGERPRINT\tCOMMENT\tREGISTERED")
	for _, r := range recs {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\t%s\n", r.ID, r.Type, r.Bits, r.Fingerprint, r.Comment, r.CreatedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

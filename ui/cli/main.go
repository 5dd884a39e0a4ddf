// Copyright (c) 2026 Keymaster Team
// Keymaster - SSH key management system
// This source code is licensed under the MIT license found in the LICENSE file.

// main.go sets up the root command, the global flags and the configuration
// that every subcommand shares.

package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
	"github.com/toeirei/keyprint/buildvars"
	"github.com/toeirei/keyprint/internal/config"
	"github.com/toeirei/keyprint/internal/i18n"
	"github.com/toeirei/keyprint/internal/logging"
	"github.com/toeirei/keyprint/internal/restrict"
	"github.com/toeirei/keyprint/internal/store"
	"github.com/toeirei/keyprint/internal/tui"
)

var version = "dev"   // this will be set by the linker
var gitCommit = "dev" // set at build time with the short commit SHA
var buildDate = ""    // set at build time (RFC3339)

// errRejected is returned when at least one checked key was invalid or
// refused by the policy, so the process exits non-zero.
var errRejected = errors.New("keys rejected")

// app carries the resolved settings into the subcommands. The function
// fields are replaced in tests.
type app struct {
	cfg     config.Config
	policy  *restrict.Policy
	cfgFile string

	readClipboard func() (string, error)
	openStore     func(dbType, dsn string) (*store.Store, error)
	runInspector  func(policy *restrict.Policy) error
}

func newApp() *app {
	return &app{
		readClipboard: clipboard.ReadAll,
		openStore:     store.Open,
		runInspector:  tui.Run,
	}
}

// setup loads the configuration for cmd and initialises logging and i18n.
func (a *app) setup(cmd *cobra.Command) error {
	configPath, err := getConfigPathFromCli(cmd)
	if err != nil {
		return err
	}

	a.cfg, err = config.LoadConfig[config.Config](cmd, config.Defaults(), configPath)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logging.SetDebug(a.cfg.Verbose)
	i18n.Init(a.cfg.Language)

	a.policy, err = a.cfg.Policy()
	if err != nil {
		return err
	}
	logging.Debugf("config: output=%s workers=%d database=%s", a.cfg.Output, a.cfg.Workers, a.cfg.Database.Type)
	return nil
}

// Execute runs the CLI entrypoint. The main package calls this and handles
// the process exit.
func Execute() error {
	return NewRootCmd().Execute()
}

func getConfigPathFromCli(cmd *cobra.Command) (*string, error) {
	// Only proceed if the user has explicitly set the --config flag.
	if !cmd.Flags().Changed("config") {
		return nil, nil
	}
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("could not read --config flag: %w", err)
	}
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file specified via --config flag not found or is not accessible: %w", err)
	}
	return &path, nil
}

// NewRootCmd creates a fresh root command with all subcommands attached.
// Every call builds new command values so tests can run them in isolation.
func NewRootCmd() *cobra.Command {
	return newRootCmd(newApp())
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keyprint",
		Short: "keyprint validates SSH public keys and computes their fingerprints.",
		Long: `keyprint recognises OpenSSH public keys of the rsa, dsa, ecdsa and
ed25519 families, repairs keys that were mangled by copy and paste,
reports their size and MD5 and SHA256 fingerprints, and checks them
against a configurable size policy. Accepted keys can be recorded in a
small fingerprint ledger backed by SQLite, PostgreSQL or MySQL.

Running without a subcommand launches the interactive key inspector.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInspector(a.policy)
		},
	}
	cmd.Version = compositeVersion()

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file")
	pf.BoolP("verbose", "v", false, "Enable debug logging")
	pf.String("language", "en", `Message language ("en", "de")`)
	pf.StringP("output", "o", "text", `Output format ("text", "json", "yaml")`)
	pf.Int("workers", 0, "Number of keys checked in parallel (0 means one per CPU)")
	pf.Bool("strict-sizes", false, "Reject keys whose size is not a supported size of their type")
	pf.String("db-type", "sqlite", "Ledger database type (sqlite, postgres, mysql)")
	pf.String("db-dsn", "./keyprint.db", "Ledger database connection string (DSN)")

	cmd.AddCommand(
		newCheckCmd(a),
		newSanitizeCmd(a),
		newTechnologiesCmd(a),
		newRegisterCmd(a),
		newLookupCmd(a),
		newListCmd(a),
		newForgetCmd(a),
		newExportCmd(a),
		newInspectCmd(a),
		newConfigCmd(a),
	)
	return cmd
}

func compositeVersion() string {
	v, c, d := resolveBuildVersion(nil)
	out := v
	if c != "" && c != "dev" && c != v {
		out = out + " (" + c + ")"
	}
	if d != "" {
		out = out + " built: " + d
	}
	return out
}

// resolveBuildVersion prefers linker supplied values, then module and VCS
// information embedded by the Go toolchain.
func resolveBuildVersion(info *debug.BuildInfo) (versionOut, commitOut, dateOut string) {
	resolvedVersion := buildvars.VersionOrDefault(version)
	resolvedCommit := gitCommit
	resolvedDate := buildDate

	if info == nil {
		if local, found := debug.ReadBuildInfo(); found {
			info = local
		}
	}

	if info != nil {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			resolvedVersion = info.Main.Version
		}
		// Some build paths only record our module as a dependency.
		if (resolvedVersion == "dev" || resolvedVersion == "(devel)") && info.Deps != nil {
			for _, dep := range info.Deps {
				if dep.Path == "github.com/toeirei/keyprint" && dep.Version != "" {
					resolvedVersion = dep.Version
					break
				}
			}
		}

		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if s.Value != "" {
					resolvedCommit = s.Value
				}
			case "vcs.time":
				if s.Value != "" {
					resolvedDate = s.Value
				}
			}
		}
	}

	if resolvedVersion == "dev" && resolvedCommit != "" && resolvedCommit != "dev" {
		resolvedVersion = resolvedCommit
	}
	return resolvedVersion, resolvedCommit, resolvedDate
}

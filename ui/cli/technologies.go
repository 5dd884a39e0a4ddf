// Copyright (c) 2026 Keymaster Team
// Keymaster - SSH key management system
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/toeirei/keyprint/internal/sshkey"
)

type technologyReport struct {
	Name           string   `json:"name" yaml:"name"`
	Identifiers    []string `json:"identifiers" yaml:"identifiers"`
	SupportedSizes []int    `json:"supported_sizes" yaml:"supported_sizes"`
	Restriction    string   `json:"restriction" yaml:"restriction"`
}

func newTechnologiesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "technologies",
		Aliases: []string{"tech"},
		Short:   "List the supported key types and sizes",
		Long:    `Lists every supported key technology with its algorithm identifiers, supported sizes and the restriction the current configuration applies to it.`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var reports []technologyReport
			for tech := range sshkey.All() {
				reports = append(reports, technologyReport{
					Name:           tech.Name.String(),
					Identifiers:    tech.Identifiers,
					SupportedSizes: tech.SupportedSizes,
					Restriction:    a.policy.Describe(tech.Name),
				})
			}

			out := cmd.OutOrStdout()
			switch a.cfg.Output {
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(reports)
			case "yaml":
				data, err := yaml.Marshal(reports)
				if err != nil {
					return err
				}
				_, err = out.Write(data)
				return err
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tIDENTIFIERS\tSIZES\tRESTRICTION")
			for _, r := range reports {
				sizes := make([]string, len(r.SupportedSizes))
				for i, s := range r.SupportedSizes {
					sizes[i] = strconv.Itoa(s)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Name, strings.Join(r.Identifiers, ","), strings.Join(sizes, ","), r.Restriction)
			}
			return w.Flush()
		},
	}
}

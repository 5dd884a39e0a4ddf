// Copyright (c) 2026 Keymaster Team
// Keymaster - SSH key management system
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/goccy/go-yaml"
	"github.com/toeirei/keyprint/internal/batch"
	"github.com/toeirei/keyprint/internal/i18n"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("40"))
	badStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	lineStyle = lipgloss.NewStyle().Bold(true)
)

// keyReport is the serialised form of one checked key.
type keyReport struct {
	Line              int    `json:"line" yaml:"line"`
	Valid             bool   `json:"valid" yaml:"valid"`
	Accepted          bool   `json:"accepted" yaml:"accepted"`
	Type              string `json:"type,omitempty" yaml:"type,omitempty"`
	Bits              int    `json:"bits,omitempty" yaml:"bits,omitempty"`
	Fingerprint       string `json:"fingerprint,omitempty" yaml:"fingerprint,omitempty"`
	FingerprintSHA256 string `json:"fingerprint_sha256,omitempty" yaml:"fingerprint_sha256,omitempty"`
	Comment           string `json:"comment,omitempty" yaml:"comment,omitempty"`
	Options           string `json:"options,omitempty" yaml:"options,omitempty"`
	Status            string `json:"status" yaml:"status"`
	Message           string `json:"message" yaml:"message"`
}

func newKeyReport(r batch.Result) keyReport {
	rep := keyReport{
		Line:     r.Line,
		Valid:    r.Key.Valid(),
		Accepted: r.Verdict.OK(),
		Comment:  r.Key.Comment(),
		Options:  r.Options,
		Status:   r.Verdict.Outcome.String(),
		Message:  r.Verdict.Message,
	}
	if typ, ok := r.Key.Type(); ok {
		rep.Type = typ.String()
	}
	rep.Bits, _ = r.Key.Bits()
	rep.Fingerprint, _ = r.Key.Fingerprint()
	rep.FingerprintSHA256, _ = r.Key.FingerprintSHA256()
	return rep
}

// writeReports renders reports in the configured output format.
func writeReports(w io.Writer, format string, reports []keyReport) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	case "yaml":
		data, err := yaml.Marshal(reports)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	default:
		return writeReportsText(w, reports)
	}
}

func writeReportsText(w io.Writer, reports []keyReport) error {
	accepted := 0
	for _, rep := range reports {
		header := lineStyle.Render(i18n.Tf("cli.line", map[string]any{"Line": rep.Line}))
		state := badStyle.Render(i18n.T("key.invalid_short"))
		if rep.Valid {
			state = okStyle.Render(i18n.T("key.valid"))
		}
		if _, err := fmt.Fprintf(w, "%s: %s\n", header, state); err != nil {
			return err
		}

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		if rep.Valid {
			fmt.Fprintf(tw, "  %s\t%s\n", i18n.T("field.type"), rep.Type)
			fmt.Fprintf(tw, "  %s\t%s\n", i18n.T("field.bits"), strconv.Itoa(rep.Bits))
			fmt.Fprintf(tw, "  %s\t%s\n", i18n.T("field.fingerprint"), rep.Fingerprint)
			fmt.Fprintf(tw, "  %s\t%s\n", i18n.T("field.fingerprint_sha256"), rep.FingerprintSHA256)
			if rep.Comment != "" {
				fmt.Fprintf(tw, "  %s\t%s\n", i18n.T("field.comment"), rep.Comment)
			}
		}
		status := badStyle.Render(rep.Message)
		if rep.Accepted {
			accepted++
			status = okStyle.Render(rep.Message)
		}
		fmt.Fprintf(tw, "  %s\t%s\n", i18n.T("field.status"), status)
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	summary := i18n.Tf("cli.summary", map[string]any{"Accepted": accepted, "Total": len(reports)})
	_, err := fmt.Fprintln(w, strings.TrimSpace(summary))
	return err
}

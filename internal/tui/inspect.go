// Copyright (c) 2026 Keymaster Team
// Keymaster - SSH key management system
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/toeirei/keyprint/internal/i18n"
	"github.com/toeirei/keyprint/internal/restrict"
	"github.com/toeirei/keyprint/internal/sshkey"
)

// inspectModel lets the user paste a key and shows its classification live.
type inspectModel struct {
	input   textarea.Model
	policy  *restrict.Policy
	key     *sshkey.PublicKey // nil while the input is empty
	verdict restrict.Verdict
	width   int
}

// NewInspectModel returns the inspector model. policy may be nil.
func NewInspectModel(policy *restrict.Policy) tea.Model {
	ta := textarea.New()
	ta.Placeholder = i18n.T("tui.placeholder")
	ta.CharLimit = 16384
	ta.ShowLineNumbers = false
	ta.SetWidth(80)
	ta.SetHeight(6)
	ta.Focus()
	return inspectModel{input: ta, policy: policy}
}

// Run starts the inspector on the terminal.
func Run(policy *restrict.Policy) error {
	_, err := tea.NewProgram(NewInspectModel(policy), tea.WithAltScreen()).Run()
	return err
}

func (m inspectModel) Init() tea.Cmd {
	return textarea.Blink
}

func (m inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if w := msg.Width - 8; w > 20 {
			m.input.SetWidth(w)
		}
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "ctrl+c":
			return m, tea.Quit
		case "ctrl+u":
			m.input.Reset()
			m.evaluate()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.evaluate()
	return m, cmd
}

// evaluate re-classifies the current input.
func (m *inspectModel) evaluate() {
	text := m.input.Value()
	if strings.TrimSpace(text) == "" {
		m.key = nil
		m.verdict = restrict.Verdict{}
		return
	}
	m.key = sshkey.New(text)
	m.verdict = m.policy.Evaluate(m.key)
}

func (m inspectModel) View() string {
	title := titleStyle.Render(i18n.T("tui.title"))
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		m.input.View(),
		"",
		paneStyle.Render(m.details()),
		helpStyle.Render(i18n.T("tui.help")),
	))
}

func (m inspectModel) details() string {
	if m.key == nil {
		return helpStyle.Render(i18n.T("tui.empty"))
	}
	if !m.key.Valid() {
		return errorStyle.Render(m.verdict.Message)
	}

	typ, _ := m.key.Type()
	bits, _ := m.key.Bits()
	fp, _ := m.key.Fingerprint()
	sha, _ := m.key.FingerprintSHA256()

	row := func(label, value string) string {
		return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), value)
	}
	rows := []string{
		row(i18n.T("field.type"), typ.String()),
		row(i18n.T("field.bits"), strconv.Itoa(bits)),
		row(i18n.T("field.fingerprint"), fp),
		row(i18n.T("field.fingerprint_sha256"), sha),
	}
	if c := m.key.Comment(); c != "" {
		rows = append(rows, row(i18n.T("field.comment"), c))
	}
	status := successStyle.Render(m.verdict.Message)
	if !m.verdict.OK() {
		status = specialStyle.Render(m.verdict.Message)
	}
	rows = append(rows, "", status)
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

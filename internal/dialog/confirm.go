package dialog

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pavelanni/submitter/internal/model"
	"github.com/pavelanni/submitter/internal/submit"
)

// confirmModel shows a submission draft and lets the user pick a group.
type confirmModel struct {
	title    string
	number   string
	filesLbl string
	groupLbl string
	remLbl   string
	help     string

	files    []submit.ResolvedFile
	groups   []model.Group
	cursor   int
	remember bool
	done     bool
	chosen   bool
}

func newConfirmModel(draft *submit.Draft, text confirmText) confirmModel {
	m := confirmModel{
		title:    text.title,
		number:   text.number,
		filesLbl: text.files,
		groupLbl: text.group,
		remLbl:   text.remember,
		help:     text.help,
		files:    draft.Files(),
		groups:   draft.Groups(),
	}
	if def, ok := draft.DefaultGroup(); ok {
		for i, g := range m.groups {
			if g.ID == def.ID {
				m.cursor = i
			}
		}
		m.remember = true
	}
	return m
}

type confirmText struct {
	title, number, files, group, remember, help string
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(kmsg, keys.Cancel):
		m.done = true
		return m, tea.Quit
	case key.Matches(kmsg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(kmsg, keys.Down):
		if m.cursor < len(m.groups)-1 {
			m.cursor++
		}
	case key.Matches(kmsg, keys.Remember):
		m.remember = !m.remember
	case key.Matches(kmsg, keys.Confirm):
		m.done, m.chosen = true, true
		return m, tea.Quit
	}
	return m, nil
}

func (m confirmModel) View() string {
	if m.done {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title) + "\n")
	b.WriteString(m.number + "\n\n")

	b.WriteString(labelStyle.Render(m.filesLbl) + "\n")
	for _, f := range m.files {
		fmt.Fprintf(&b, "  %s  %s\n", f.Name, pathStyle.Render(f.Path))
	}

	b.WriteString("\n" + labelStyle.Render(m.groupLbl) + "\n")
	for i, g := range m.groups {
		b.WriteString(cursor(i == m.cursor) + g.Label() + "\n")
	}

	check := "[ ]"
	if m.remember {
		check = "[x]"
	}
	b.WriteString("\n" + check + " " + m.remLbl + "\n")
	b.WriteString(helpStyle.Render(m.help))
	return dialogPadding.Render(b.String())
}

func (m confirmModel) confirmation() (submit.Confirmation, bool) {
	if !m.chosen || len(m.groups) == 0 {
		return submit.Confirmation{}, false
	}
	return submit.Confirmation{Group: m.groups[m.cursor], RememberGroup: m.remember}, true
}

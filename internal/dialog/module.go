package dialog

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pavelanni/submitter/internal/model"
)

// moduleModel lets the user pick one module of a project.
type moduleModel struct {
	title   string
	count   string
	help    string
	modules []model.Module
	cursor  int
	done    bool
	chosen  bool
}

func (m moduleModel) Init() tea.Cmd {
	return nil
}

func (m moduleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
		if m.cursor < len(m.modules)-1 {
			m.cursor++
		}
	case key.Matches(kmsg, keys.Confirm):
		if len(m.modules) == 0 {
			return m, nil
		}
		m.done, m.chosen = true, true
		return m, tea.Quit
	}
	return m, nil
}

func (m moduleModel) View() string {
	if m.done {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title) + "\n")
	b.WriteString(labelStyle.Render(m.count) + "\n\n")
	for i, mod := range m.modules {
		b.WriteString(cursor(i == m.cursor) + mod.Name + "\n")
	}
	b.WriteString(helpStyle.Render(m.help))
	return dialogPadding.Render(b.String())
}

func (m moduleModel) selected() (model.Module, bool) {
	if !m.chosen || m.cursor >= len(m.modules) {
		return model.Module{}, false
	}
	return m.modules[m.cursor], true
}

package dialog

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#3498db"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#9b59b6")).Bold(true)
	labelStyle    = lipgloss.NewStyle().Faint(true)
	pathStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#27ae60"))
	helpStyle     = lipgloss.NewStyle().Faint(true).MarginTop(1)
	dialogPadding = lipgloss.NewStyle().Padding(0, 1)
)

func cursor(selected bool) string {
	if selected {
		return cursorStyle.Render("> ")
	}
	return "  "
}

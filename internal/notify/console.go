package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/pavelanni/submitter/internal/model"
)

var levelStyles = map[model.NotificationLevel]lipgloss.Style{
	model.LevelInfo:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2ecc71")),
	model.LevelWarning: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f1c40f")),
	model.LevelError:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#e74c3c")),
}

// Console prints notifications to a terminal. Safe for concurrent use.
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

func (c *Console) Notify(n model.Notification, _ model.Project) {
	style, ok := levelStyles[n.Level]
	if !ok {
		style = levelStyles[model.LevelInfo]
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "%s\n", style.Render(n.Title))
	if n.Content != "" {
		fmt.Fprintf(c.out, "  %s\n", n.Content)
	}
}

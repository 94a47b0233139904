package statusbar

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/macropower/chainview/pkg/ui/theme"
)

type KeyBindRenderer interface {
	Render(width int) string
}

// HelpRenderer draws the key binding help above the status bar.
type HelpRenderer struct {
	theme    *theme.Theme
	keyBinds KeyBindRenderer
}

func NewHelpRenderer(t *theme.Theme, keyBinds KeyBindRenderer) *HelpRenderer {
	return &HelpRenderer{theme: t, keyBinds: keyBinds}
}

func (r *HelpRenderer) Render(width int) string {
	content := lipgloss.NewStyle().
		Padding(1, 0).
		Width(max(width, 0)).
		Render(r.keyBinds.Render(width))

	return r.theme.HelpStyle.Render(content)
}

// Height returns the number of lines the help view takes.
func (r *HelpRenderer) Height(width int) int {
	return strings.Count(r.Render(width), "\n") + 1
}

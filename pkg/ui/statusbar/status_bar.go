// Package statusbar renders the bottom status line and the help view.
package statusbar

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"

	"github.com/macropower/chainview/pkg/ui/theme"
	"github.com/macropower/chainview/pkg/version"
)

const helpText = " ? Help "

type Style int

const (
	StyleNormal Style = iota
	StyleSuccess
	StyleError
)

// Renderer draws the status bar: the logo, a note, a position note and
// the help hint.
type Renderer struct {
	theme   *theme.Theme
	message string
	width   int
	style   Style
}

type Opt func(*Renderer)

// WithMessage replaces the note with message, drawn in style.
func WithMessage(message string, style Style) Opt {
	return func(r *Renderer) {
		r.message = message
		r.style = style
	}
}

func New(t *theme.Theme, width int, opts ...Opt) *Renderer {
	r := &Renderer{theme: t, width: max(width, 0)}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Render returns the status bar for note and position. The result is
// exactly as wide as the renderer unless the fixed parts do not fit.
func (r *Renderer) Render(note, position string) string {
	s := r.styles()

	logo := r.theme.LogoStyle.Render("chainview " + version.GetVersion())
	help := s.help.Render(helpText)

	pos := ""
	if position != "" {
		pos = s.pos.Render(" " + position + " ")
	}

	if r.message != "" {
		note = r.message
	}

	note = strings.TrimSpace(strings.ReplaceAll(note, "\n", " "))

	avail := max(r.width-width(logo)-width(pos)-width(help), 0)
	note = truncate.StringWithTail(" "+note+" ", uint(avail), r.theme.Ellipsis)

	fill := strings.Repeat(" ", max(avail-width(note), 0))

	return logo + s.note.Render(note+fill) + pos + help
}

type barStyles struct {
	note, pos, help lipgloss.Style
}

func (r *Renderer) styles() barStyles {
	t := r.theme

	switch r.style {
	case StyleSuccess:
		return barStyles{
			note: t.StatusBarMessageStyle,
			pos:  t.StatusBarMessagePosStyle,
			help: t.StatusBarMessageHelpStyle,
		}
	case StyleError:
		errStyle := t.StatusBarStyle.Foreground(t.ErrorTextStyle.GetForeground())

		return barStyles{
			note: errStyle,
			pos:  errStyle,
			help: t.StatusBarHelpStyle,
		}
	}

	return barStyles{
		note: t.StatusBarStyle,
		pos:  t.StatusBarPosStyle,
		help: t.StatusBarHelpStyle,
	}
}

func width(s string) int {
	return ansi.PrintableRuneWidth(s)
}

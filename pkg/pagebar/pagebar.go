// Package pagebar renders a page-selector bar from a [slots.Plan] and lets
// the user move a focus across its links.
package pagebar

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/macropower/chainview/pkg/slots"
	"github.com/macropower/chainview/pkg/ui/theme"
)

// Link is one page slot. The current page is rendered but cannot be
// selected.
type Link struct {
	Page    int
	Current bool
}

// Links returns one [Link] per page of plan, in order.
func Links(plan slots.Plan) []Link {
	links := make([]Link, 0, len(plan.Pages))
	for _, p := range plan.Pages {
		links = append(links, Link{Page: p, Current: p == plan.Current})
	}

	return links
}

// Model is the page bar. The zero value renders nothing.
type Model struct {
	theme *theme.Theme
	plan  slots.Plan
	links []Link
	focus int
	width int
}

// New creates an empty page bar styled with t.
func New(t *theme.Theme) Model {
	return Model{theme: t}
}

// SetPlan replaces the rendered links. Focus moves onto the current page.
func (m *Model) SetPlan(plan slots.Plan) {
	m.plan = plan
	m.links = Links(plan)
	m.focus = 0

	for i, l := range m.links {
		if l.Current {
			m.focus = i

			break
		}
	}
}

// Plan returns the plan last passed to SetPlan.
func (m Model) Plan() slots.Plan {
	return m.plan
}

// SetWidth truncates the rendered bar to width cells. Zero disables
// truncation.
func (m *Model) SetWidth(width int) {
	m.width = width
}

// Links returns the links currently rendered.
func (m Model) Links() []Link {
	return m.links
}

// FocusPrev moves the focus one link to the left.
func (m *Model) FocusPrev() {
	m.focus = max(m.focus-1, 0)
}

// FocusNext moves the focus one link to the right.
func (m *Model) FocusNext() {
	m.focus = min(m.focus+1, max(len(m.links)-1, 0))
}

// FocusFirst moves the focus onto the first page.
func (m *Model) FocusFirst() {
	m.focus = 0
}

// FocusLast moves the focus onto the last page.
func (m *Model) FocusLast() {
	m.focus = max(len(m.links)-1, 0)
}

// Selected returns the focused page. ok is false when the bar is empty or
// the focus is on the current page, which is not a link.
func (m Model) Selected() (page int, ok bool) {
	if m.focus < 0 || m.focus >= len(m.links) {
		return 0, false
	}

	l := m.links[m.focus]
	if l.Current {
		return l.Page, false
	}

	return l.Page, true
}

func (m Model) View() string {
	if len(m.links) == 0 {
		return ""
	}

	t := m.theme
	if t == nil {
		t = theme.Default
	}

	var sb strings.Builder

	prev := 0
	for i, l := range m.links {
		switch {
		case i == 0:
		case l.Page == prev+1:
			sb.WriteString(" ")
		default:
			sb.WriteString(t.PageGapStyle.Render(t.Ellipsis))
		}

		sb.WriteString(m.linkStyle(t, i, l).Render(strconv.Itoa(l.Page)))

		prev = l.Page
	}

	out := sb.String()
	if m.width > 0 && lipgloss.Width(out) > m.width {
		out = ansi.Truncate(out, m.width, t.Ellipsis)
	}

	return out
}

func (m Model) linkStyle(t *theme.Theme, i int, l Link) lipgloss.Style {
	switch {
	case l.Current:
		return t.PageCurrentStyle
	case i == m.focus:
		return t.PageFocusedStyle
	default:
		return t.PageLinkStyle
	}
}

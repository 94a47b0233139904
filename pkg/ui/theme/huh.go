package theme

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// HuhTheme styles the rows and address prompts like the explorer chrome:
// titles look like the active tab, the highlighted option like the focused
// page bar slot, and the cursor like the current page.
func HuhTheme(t *Theme) *huh.Theme {
	h := huh.ThemeBase()

	accent := t.TabActiveStyle.GetForeground()
	muted := t.PageLinkStyle.GetForeground()

	f := &h.Focused
	f.Base = f.Base.BorderForeground(accent)
	f.Card = f.Base
	f.Title = lipgloss.NewStyle().
		Foreground(accent).
		Bold(t.TabActiveStyle.GetBold())
	f.Description = f.Description.Foreground(muted)
	f.ErrorIndicator = f.ErrorIndicator.Foreground(t.ErrorTextStyle.GetForeground())
	f.ErrorMessage = f.ErrorMessage.Foreground(t.ErrorTextStyle.GetForeground())

	// Select: the page length list.
	f.SelectSelector = lipgloss.NewStyle().
		Foreground(t.PageCurrentStyle.GetBackground()).
		SetString("› ")
	f.Option = f.Option.Foreground(muted)
	f.SelectedOption = lipgloss.NewStyle().
		Foreground(t.PageFocusedStyle.GetForeground()).
		Underline(t.PageFocusedStyle.GetUnderline())
	f.NextIndicator = f.NextIndicator.Foreground(accent)
	f.PrevIndicator = f.PrevIndicator.Foreground(accent)

	// Input: the address prompt.
	f.TextInput.Prompt = f.TextInput.Prompt.Foreground(accent)
	f.TextInput.Cursor = f.TextInput.Cursor.Foreground(t.PageCurrentStyle.GetBackground())
	f.TextInput.Placeholder = f.TextInput.Placeholder.Foreground(t.PageGapStyle.GetForeground())
	f.TextInput.Text = f.TextInput.Text.Foreground(t.GenericTextStyle.GetForeground())

	h.Blurred = h.Focused
	h.Blurred.Base = h.Focused.Base.BorderStyle(lipgloss.HiddenBorder())
	h.Blurred.Card = h.Blurred.Base
	h.Blurred.Title = t.TabStyle.UnsetPadding().UnsetUnderline()

	h.Group.Title = h.Focused.Title
	h.Group.Description = h.Focused.Description

	return h
}

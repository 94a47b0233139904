package cli

import (
	"image/color"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/x/exp/charmtone"

	"github.com/macropower/chainview/pkg/config"
	"github.com/macropower/chainview/pkg/ui/theme"
)

// ColorSchemeFunc uses the configured theme, or the default theme when the
// configuration cannot be loaded.
func ColorSchemeFunc(c lipgloss.LightDarkFunc) fang.ColorScheme {
	l, err := config.NewLoaderFromFile(config.GetPath())
	if err != nil {
		return ThemeColorScheme(theme.Default, c)
	}

	cfg, err := l.Load()
	if err != nil {
		return ThemeColorScheme(theme.Default, c)
	}

	return ThemeColorScheme(cfg.UI.GetTheme(), c)
}

func ThemeColorScheme(t *theme.Theme, c lipgloss.LightDarkFunc) fang.ColorScheme {
	return fang.ColorScheme{
		Base:           t.GenericTextStyle.GetForeground(),
		Title:          t.LogoStyle.GetBackground(),
		Codeblock:      c(charmtone.Salt, lipgloss.Color("#2F2E36")),
		Program:        t.TabActiveStyle.GetForeground(),
		Command:        t.SelectedStyle.GetForeground(),
		DimmedArgument: t.SubtleStyle.GetForeground(),
		Comment:        t.SubtleStyle.GetForeground(),
		Flag:           t.PageLinkStyle.GetForeground(),
		Argument:       t.GenericTextStyle.GetForeground(),
		Description:    t.GenericTextStyle.GetForeground(),
		FlagDefault:    t.SelectedSubtleStyle.GetForeground(),
		QuotedString:   t.PageCurrentStyle.GetForeground(),
		ErrorHeader: [2]color.Color{
			t.LogoStyle.GetForeground(),
			t.ErrorTextStyle.GetForeground(),
		},
	}
}

package theme

import (
	"errors"
	"fmt"
	"os"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Icons.
const (
	Ellipsis = "…"
)

var (
	ErrInvalidName    = errors.New("invalid theme name")
	ErrRegisterStyles = errors.New("register styles")
)

var Default = New("github")

type Theme struct {
	ErrorTextStyle            lipgloss.Style
	GenericTextStyle          lipgloss.Style
	HelpStyle                 lipgloss.Style
	LogoStyle                 lipgloss.Style
	PageCurrentStyle          lipgloss.Style
	PageFocusedStyle          lipgloss.Style
	PageGapStyle              lipgloss.Style
	PageLinkStyle             lipgloss.Style
	SelectedStyle             lipgloss.Style
	SelectedSubtleStyle       lipgloss.Style
	SpinnerStyle              lipgloss.Style
	StatusBarHelpStyle        lipgloss.Style
	StatusBarMessageHelpStyle lipgloss.Style
	StatusBarMessagePosStyle  lipgloss.Style
	StatusBarMessageStyle     lipgloss.Style
	StatusBarPosStyle         lipgloss.Style
	StatusBarStyle            lipgloss.Style
	SubtleStyle               lipgloss.Style
	TabActiveStyle            lipgloss.Style
	TabStyle                  lipgloss.Style
	TableCellStyle            lipgloss.Style
	TableHeaderStyle          lipgloss.Style
	TableSelectedStyle        lipgloss.Style
	InsertedStyle             lipgloss.Style
	DeletedStyle              lipgloss.Style

	ChromaStyle *chroma.Style
	Ellipsis    string
}

func New(theme string) *Theme {
	style := newChromaStyle(theme)

	var (
		genericStyle = lipgloss.NewStyle().
				Foreground(style.lipglossFromToken(chroma.Background))

		logoStyle = lipgloss.NewStyle().
				Foreground(style.lipglossFromTokenBg(chroma.Background)).
				Background(style.lipglossFromToken(chroma.NameTag)).
				Bold(true).
				Padding(0, 1)

		selectedStyle = lipgloss.NewStyle().
				Foreground(style.lipglossFromToken(chroma.NameTag))

		selectedSubtleStyle = lipgloss.NewStyle().
					Foreground(style.lipglossFromTokenWithFactor(chroma.NameTag, 0.3))

		subtleStyle = lipgloss.NewStyle().
				Foreground(style.lipglossFromToken(chroma.Comment))

		helpStyle = lipgloss.NewStyle().
				Foreground(style.lipglossFromTokenWithFactor(chroma.Background, 0.2)).
				Background(style.lipglossFromTokenBgWithFactor(chroma.Background, 0.2))

		statusBarStyle = lipgloss.NewStyle().
				Foreground(style.lipglossFromToken(chroma.Background)).
				Background(style.lipglossFromTokenBgWithFactor(chroma.Background, 0.1))

		statusBarPosStyle = lipgloss.NewStyle().
					Foreground(style.lipglossFromToken(chroma.Background)).
					Background(style.lipglossFromTokenBgWithFactor(chroma.Background, 0.15))

		statusBarMessageStyle = lipgloss.NewStyle().
					Foreground(style.lipglossFromTokenBg(chroma.Background)).
					Background(style.lipglossFromTokenWithFactor(chroma.NameTag, 0.15))

		statusBarMessagePosStyle = lipgloss.NewStyle().
						Foreground(style.lipglossFromTokenBg(chroma.Background)).
						Background(style.lipglossFromTokenWithFactor(chroma.NameTag, 0.1))

		statusBarMessageHelpStyle = genericStyle.
						Foreground(style.lipglossFromTokenBg(chroma.Background)).
						Background(style.lipglossFromToken(chroma.NameTag))

		errorTextStyle = lipgloss.NewStyle().
				Foreground(style.lipglossFromToken(chroma.GenericDeleted))

		insertedStyle = lipgloss.NewStyle().
				Foreground(style.lipglossFromToken(chroma.GenericInserted))

		deletedStyle = errorTextStyle

		pageLinkStyle = subtleStyle.Padding(0, 1)

		pageCurrentStyle = logoStyle

		pageFocusedStyle = selectedStyle.
					Padding(0, 1).
					Underline(true)

		pageGapStyle = subtleStyle

		tabStyle = subtleStyle.Padding(0, 1)

		tabActiveStyle = selectedStyle.
				Bold(true).
				Padding(0, 1).
				Underline(true)

		tableHeaderStyle = lipgloss.NewStyle().
					Bold(true).
					Padding(0, 1).
					BorderStyle(lipgloss.NormalBorder()).
					BorderBottom(true).
					BorderForeground(style.lipglossFromToken(chroma.Comment))

		tableCellStyle = lipgloss.NewStyle().Padding(0, 1)

		tableSelectedStyle = lipgloss.NewStyle().
					Foreground(style.lipglossFromTokenBg(chroma.Background)).
					Background(style.lipglossFromTokenWithFactor(chroma.NameTag, 0.15))

		spinnerStyle = selectedStyle
	)

	return &Theme{
		DeletedStyle:              deletedStyle,
		ErrorTextStyle:            errorTextStyle,
		GenericTextStyle:          genericStyle,
		HelpStyle:                 helpStyle,
		InsertedStyle:             insertedStyle,
		LogoStyle:                 logoStyle,
		PageCurrentStyle:          pageCurrentStyle,
		PageFocusedStyle:          pageFocusedStyle,
		PageGapStyle:              pageGapStyle,
		PageLinkStyle:             pageLinkStyle,
		SelectedStyle:             selectedStyle,
		SelectedSubtleStyle:       selectedSubtleStyle,
		SpinnerStyle:              spinnerStyle,
		StatusBarHelpStyle:        helpStyle,
		StatusBarMessageHelpStyle: statusBarMessageHelpStyle,
		StatusBarMessagePosStyle:  statusBarMessagePosStyle,
		StatusBarMessageStyle:     statusBarMessageStyle,
		StatusBarPosStyle:         statusBarPosStyle,
		StatusBarStyle:            statusBarStyle,
		SubtleStyle:               subtleStyle,
		TabActiveStyle:            tabActiveStyle,
		TabStyle:                  tabStyle,
		TableCellStyle:            tableCellStyle,
		TableHeaderStyle:          tableHeaderStyle,
		TableSelectedStyle:        tableSelectedStyle,

		ChromaStyle: style.style,
		Ellipsis:    Ellipsis,
	}
}

// Register adds a chroma style that [New] can select by name.
func Register(name string, entries chroma.StyleEntries) error {
	if name == "" {
		return ErrInvalidName
	}

	customTheme, err := chroma.NewStyle(name, entries)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRegisterStyles, err)
	}

	styles.Register(customTheme)

	return nil
}

type chromaStyle struct {
	style *chroma.Style
}

func newChromaStyle(theme string) chromaStyle {
	s := styles.Get(getStyle(theme))
	if s == nil {
		// If the style is not found, fallback to the default style.
		s = styles.Fallback
	}

	return chromaStyle{
		style: s,
	}
}

func (cs chromaStyle) lipglossFromToken(c chroma.TokenType) lipgloss.Color {
	s := cs.style.Get(c)

	return lipgloss.Color(s.Colour.String()) // nolint:misspell // Chroma naming.
}

func (cs chromaStyle) lipglossFromTokenBg(c chroma.TokenType) lipgloss.Color {
	s := cs.style.Get(c)

	return lipgloss.Color(s.Background.String())
}

func (cs chromaStyle) lipglossFromTokenWithFactor(c chroma.TokenType, factor float64) lipgloss.Color {
	s := cs.style.Get(c)

	sc := s.Colour.BrightenOrDarken(factor) // nolint:misspell // Chroma naming.

	return lipgloss.Color(sc.String())
}

func (cs chromaStyle) lipglossFromTokenBgWithFactor(c chroma.TokenType, factor float64) lipgloss.Color {
	s := cs.style.Get(c)

	sc := s.Background.BrightenOrDarken(factor)

	return lipgloss.Color(sc.String())
}

func getStyle(style string) string {
	switch style {
	case "dark":
		return "github-dark"
	case "light":
		return "github"
	case "auto", "":
		return getDefaultStyle()
	default:
		return style
	}
}

func getDefaultStyle() string {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return "" // Fallback.
	}
	if termenv.HasDarkBackground() {
		return "github-dark"
	}

	return "github"
}

// Package prompt wraps single-field huh forms shown over the explorer.
package prompt

import (
	"errors"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/macropower/chainview/pkg/ui/theme"
)

var ErrEmptyAddress = errors.New("address is required")

type State int

const (
	StatePending State = iota
	StateSubmitted
	StateAborted
)

// Prompt asks for one value of type T.
type Prompt[T any] struct {
	form  *huh.Form
	value *T
}

func newPrompt[T any](t *theme.Theme, field huh.Field, value *T) *Prompt[T] {
	form := huh.NewForm(huh.NewGroup(field)).
		WithTheme(theme.HuhTheme(t)).
		WithShowHelp(false)

	return &Prompt[T]{form: form, value: value}
}

// Rows asks for a page length out of allowed, preselecting current.
func Rows(t *theme.Theme, allowed []int, current int) *Prompt[int] {
	v := current

	opts := make([]huh.Option[int], 0, len(allowed))
	for _, n := range allowed {
		opts = append(opts, huh.NewOption(strconv.Itoa(n), n).Selected(n == current))
	}

	field := huh.NewSelect[int]().
		Title("Rows per page").
		Options(opts...).
		Value(&v)

	return newPrompt(t, field, &v)
}

// Address asks for an address to open.
func Address(t *theme.Theme) *Prompt[string] {
	v := ""

	field := huh.NewInput().
		Title("Address").
		Placeholder("ecash:qq…").
		Validate(func(s string) error {
			if strings.TrimSpace(s) == "" {
				return ErrEmptyAddress
			}

			return nil
		}).
		Value(&v)

	return newPrompt(t, field, &v)
}

func (p *Prompt[T]) Init() tea.Cmd {
	return p.form.Init()
}

// Update forwards msg to the form. Escape aborts.
func (p *Prompt[T]) Update(msg tea.Msg) (State, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
		return StateAborted, nil
	}

	m, cmd := p.form.Update(msg)
	if f, ok := m.(*huh.Form); ok {
		p.form = f
	}

	switch p.form.State {
	case huh.StateCompleted:
		return StateSubmitted, cmd
	case huh.StateAborted:
		return StateAborted, cmd
	case huh.StateNormal:
	}

	return StatePending, cmd
}

func (p *Prompt[T]) View() string {
	return p.form.View()
}

// Value returns the entered value.
func (p *Prompt[T]) Value() T {
	return *p.value
}

// Package uitest provides helpers for testing Bubble Tea models with
// [teatest].
package uitest

import (
	"bytes"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/muesli/termenv"

	tea "github.com/charmbracelet/bubbletea"
)

// Size represents terminal dimensions.
type Size struct {
	Width  int
	Height int
}

var (
	Compact  = Size{Width: 80, Height: 24}
	Standard = Size{Width: 120, Height: 40}
)

// DefaultTimeout bounds every wait.
const DefaultTimeout = 3 * time.Second

// SetupColorProfile disables colors so output can be matched as text.
func SetupColorProfile() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// NewTestModel starts m in a virtual terminal of the given size.
func NewTestModel(tb testing.TB, m tea.Model, size Size) *teatest.TestModel {
	tb.Helper()

	return teatest.NewTestModel(tb, m, teatest.WithInitialTermSize(size.Width, size.Height))
}

// WaitForText waits until the plain output contains every text.
func WaitForText(tb testing.TB, tm *teatest.TestModel, texts ...string) {
	tb.Helper()

	teatest.WaitFor(tb, tm.Output(), func(b []byte) bool {
		plain := []byte(ansi.Strip(string(b)))
		for _, text := range texts {
			if !bytes.Contains(plain, []byte(text)) {
				return false
			}
		}

		return true
	}, teatest.WithDuration(DefaultTimeout), teatest.WithCheckInterval(10*time.Millisecond))
}

// Quit stops the program and waits for it to exit.
func Quit(tb testing.TB, tm *teatest.TestModel) {
	tb.Helper()

	if err := tm.Quit(); err != nil {
		tb.Fatal(err)
	}

	tm.WaitFinished(tb, teatest.WithFinalTimeout(DefaultTimeout))
}

// Package common holds state shared by the chainview UI components.
package common

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/macropower/chainview/pkg/keys"
	"github.com/macropower/chainview/pkg/ui/statusbar"
	"github.com/macropower/chainview/pkg/ui/theme"
)

// StatusMessageTimeout is how long status messages stay visible.
const StatusMessageTimeout = 3 * time.Second

type (
	StatusMessage struct {
		Message string
		Style   statusbar.Style
	}
	StatusMessageTimeoutMsg struct{}
)

type CommonModel struct {
	Theme              *theme.Theme
	KeyBinds           *KeyBinds
	StatusMessageTimer *time.Timer
	StatusMessage      StatusMessage
	Width              int
	Height             int
	ShowStatusMessage  bool
}

// StatusBar returns a renderer for the current width, showing the pending
// status message if there is one.
func (m *CommonModel) StatusBar() *statusbar.Renderer {
	if m.ShowStatusMessage && m.StatusMessage.Message != "" {
		return statusbar.New(m.Theme, m.Width,
			statusbar.WithMessage(m.StatusMessage.Message, m.StatusMessage.Style))
	}

	return statusbar.New(m.Theme, m.Width)
}

// SendStatusMessage shows msg until [StatusMessageTimeout] elapses.
func (m *CommonModel) SendStatusMessage(msg string, style statusbar.Style) tea.Cmd {
	m.ShowStatusMessage = true
	m.StatusMessage = StatusMessage{Message: msg, Style: style}

	if m.StatusMessageTimer != nil {
		m.StatusMessageTimer.Stop()
	}

	m.StatusMessageTimer = time.NewTimer(StatusMessageTimeout)

	return waitForTimer(m.StatusMessageTimer)
}

// ClearStatusMessage hides the status message.
func (m *CommonModel) ClearStatusMessage() {
	m.ShowStatusMessage = false
	m.StatusMessage = StatusMessage{}
}

func waitForTimer(t *time.Timer) tea.Cmd {
	return func() tea.Msg {
		<-t.C

		return StatusMessageTimeoutMsg{}
	}
}

type KeyBinds struct {
	Quit    *keys.KeyBind `json:"quit,omitempty"    jsonschema:"title=Quit"`
	Help    *keys.KeyBind `json:"help,omitempty"    jsonschema:"title=Toggle Help"`
	Refresh *keys.KeyBind `json:"refresh,omitempty" jsonschema:"title=Refresh"`
	Copy    *keys.KeyBind `json:"copy,omitempty"    jsonschema:"title=Copy Hash"`
	Rows    *keys.KeyBind `json:"rows,omitempty"    jsonschema:"title=Page Size"`
	Address *keys.KeyBind `json:"address,omitempty" jsonschema:"title=Open Address"`
	Blocks  *keys.KeyBind `json:"blocks,omitempty"  jsonschema:"title=Open Blocks"`
	Back    *keys.KeyBind `json:"back,omitempty"    jsonschema:"title=Back"`
	Forward *keys.KeyBind `json:"forward,omitempty" jsonschema:"title=Forward"`

	// Tabs.
	NextTab *keys.KeyBind `json:"nextTab,omitempty" jsonschema:"title=Next Tab"`
	PrevTab *keys.KeyBind `json:"prevTab,omitempty" jsonschema:"title=Previous Tab"`

	// Page bar.
	Left      *keys.KeyBind `json:"left,omitempty"      jsonschema:"title=Focus Previous Page"`
	Right     *keys.KeyBind `json:"right,omitempty"     jsonschema:"title=Focus Next Page"`
	Select    *keys.KeyBind `json:"select,omitempty"    jsonschema:"title=Open Focused Page"`
	NextPage  *keys.KeyBind `json:"nextPage,omitempty"  jsonschema:"title=Next Page"`
	PrevPage  *keys.KeyBind `json:"prevPage,omitempty"  jsonschema:"title=Previous Page"`
	FirstPage *keys.KeyBind `json:"firstPage,omitempty" jsonschema:"title=First Page"`
	LastPage  *keys.KeyBind `json:"lastPage,omitempty"  jsonschema:"title=Last Page"`
}

func (kb *KeyBinds) EnsureDefaults() {
	keys.SetDefault(&kb.Quit, keys.NewBind("quit", keys.New("q"), keys.New("ctrl+c", keys.Hidden())))
	keys.SetDefault(&kb.Help, keys.NewBind("toggle help", keys.New("?")))
	keys.SetDefault(&kb.Refresh, keys.NewBind("refresh", keys.New("r")))
	keys.SetDefault(&kb.Copy, keys.NewBind("copy hash", keys.New("y")))
	keys.SetDefault(&kb.Rows, keys.NewBind("page size", keys.New("s")))
	keys.SetDefault(&kb.Address, keys.NewBind("open address", keys.New("/")))
	keys.SetDefault(&kb.Blocks, keys.NewBind("open blocks", keys.New("b")))
	keys.SetDefault(&kb.Back, keys.NewBind("back", keys.New("backspace", keys.WithAlias("⌫")), keys.New("H")))
	keys.SetDefault(&kb.Forward, keys.NewBind("forward", keys.New("L")))

	keys.SetDefault(&kb.NextTab, keys.NewBind("next tab", keys.New("tab")))
	keys.SetDefault(&kb.PrevTab, keys.NewBind("previous tab", keys.New("shift+tab", keys.WithAlias("⇧+tab"))))

	keys.SetDefault(&kb.Left, keys.NewBind("focus left", keys.New("left", keys.WithAlias("←")), keys.New("h")))
	keys.SetDefault(&kb.Right, keys.NewBind("focus right", keys.New("right", keys.WithAlias("→")), keys.New("l")))
	keys.SetDefault(&kb.Select, keys.NewBind("open page", keys.New("enter", keys.WithAlias("↵"))))
	keys.SetDefault(&kb.NextPage, keys.NewBind("next page", keys.New("n"), keys.New("]", keys.Hidden())))
	keys.SetDefault(&kb.PrevPage, keys.NewBind("previous page", keys.New("p"), keys.New("[", keys.Hidden())))
	keys.SetDefault(&kb.FirstPage, keys.NewBind("first page", keys.New("g"), keys.New("home", keys.Hidden())))
	keys.SetDefault(&kb.LastPage, keys.NewBind("last page", keys.New("G"), keys.New("end", keys.Hidden())))
}

// General returns the bindings that are not about paging.
func (kb *KeyBinds) General() []*keys.KeyBind {
	return []*keys.KeyBind{kb.Quit, kb.Help, kb.Refresh, kb.Copy, kb.Rows, kb.Address, kb.Blocks, kb.Back, kb.Forward}
}

// Paging returns the tab and page bar bindings.
func (kb *KeyBinds) Paging() []*keys.KeyBind {
	return []*keys.KeyBind{
		kb.NextTab, kb.PrevTab,
		kb.Left, kb.Right, kb.Select,
		kb.NextPage, kb.PrevPage, kb.FirstPage, kb.LastPage,
	}
}

// Validate reports keys bound to more than one action.
func (kb *KeyBinds) Validate() error {
	return keys.Validate(append(kb.General(), kb.Paging()...)...) //nolint:wrapcheck // Joined key errors.
}

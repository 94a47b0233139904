package ui_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charmbracelet/bubbles/spinner"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/macropower/chainview/pkg/chain"
	"github.com/macropower/chainview/pkg/explorer"
	"github.com/macropower/chainview/pkg/params"
	"github.com/macropower/chainview/pkg/ui"
	"github.com/macropower/chainview/pkg/uitest"
)

func newModel(t *testing.T, location string, copyFn func(string) error) (*ui.Model, *params.MemoryHistory, *chain.Mock) {
	t.Helper()

	loc, err := params.ParseLocation(location)
	require.NoError(t, err)

	mock := chain.NewMock(1, 999)
	history := params.NewMemoryHistory(loc)

	m := ui.New(t.Context(), ui.Options{
		Router:  &explorer.Router{Source: mock},
		History: history,
		Copy:    copyFn,
	})

	return m, history, mock
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_BlocksPaging(t *testing.T) {
	t.Parallel()
	uitest.SetupColorProfile()

	m, history, _ := newModel(t, "/blocks", nil)
	tm := uitest.NewTestModel(t, m, uitest.Standard)

	uitest.WaitForText(t, tm, "Blocks 1,000", "page 1/10")

	tm.Send(keyRunes("n"))
	uitest.WaitForText(t, tm, "page 2/10")
	assert.Equal(t, "2", history.Location().Query().Get("page"))

	tm.Send(keyRunes("G"))
	uitest.WaitForText(t, tm, "page 10/10")
	assert.Equal(t, "10", history.Location().Query().Get("page"))

	tm.Send(keyRunes("g"))
	uitest.WaitForText(t, tm, "page 1/10")

	uitest.Quit(t, tm)
}

func TestModel_AddressTabs(t *testing.T) {
	t.Parallel()
	uitest.SetupColorProfile()

	m, history, _ := newModel(t, "/address/ecash:qqtest", nil)
	tm := uitest.NewTestModel(t, m, uitest.Standard)

	uitest.WaitForText(t, tm, "Transactions", "Outpoints", "ecash:qqtest")

	tm.Send(tea.KeyMsg{Type: tea.KeyTab})
	uitest.WaitForText(t, tm, "Outpoint")
	assert.Equal(t, explorer.TabOutpoints, history.Location().Query().Get("currentTab"))

	uitest.Quit(t, tm)
}

func TestModel_CopyAndNavigate(t *testing.T) {
	t.Parallel()
	uitest.SetupColorProfile()

	var (
		mu     sync.Mutex
		copied []string
	)

	m, _, mock := newModel(t, "/blocks", func(s string) error {
		mu.Lock()
		defer mu.Unlock()

		copied = append(copied, s)

		return nil
	})
	tm := uitest.NewTestModel(t, m, uitest.Standard)

	uitest.WaitForText(t, tm, "page 1/10")

	tm.Send(keyRunes("y"))
	uitest.WaitForText(t, tm, "copied")

	mu.Lock()
	assert.Equal(t, []string{mock.Block(999).Hash}, copied)
	mu.Unlock()

	uitest.Quit(t, tm)
}

// drive runs cmd and feeds every resulting message back into m until no
// commands are left. Commands that block, like status timers, are dropped.
func drive(m tea.Model, cmd tea.Cmd) {
	queue := []tea.Cmd{cmd}

	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]

		if c == nil {
			continue
		}

		switch msg := run(c).(type) {
		case nil, spinner.TickMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			_, next := m.Update(msg)
			queue = append(queue, next)
		}
	}
}

func run(cmd tea.Cmd) tea.Msg {
	ch := make(chan tea.Msg, 1)

	go func() { ch <- cmd() }()

	select {
	case msg := <-ch:
		return msg
	case <-time.After(200 * time.Millisecond):
		return nil
	}
}

func send(m tea.Model, msg tea.Msg) {
	_, cmd := m.Update(msg)
	drive(m, cmd)
}

func TestModel_History(t *testing.T) {
	t.Parallel()

	m, history, _ := newModel(t, "/blocks", nil)

	drive(m, m.Init())
	send(m, tea.WindowSizeMsg{Width: 120, Height: 40})
	require.NotNil(t, m.Controller())

	send(m, keyRunes("n"))
	assert.Equal(t, 1, m.Controller().Params().Page)

	send(m, keyRunes("b"))
	assert.Equal(t, 2, history.Len())
	assert.Equal(t, 0, m.Controller().Params().Page)

	send(m, keyRunes("H"))
	assert.Equal(t, "/blocks?page=2", history.Location().String())
	assert.Equal(t, 1, m.Controller().Params().Page)

	send(m, keyRunes("L"))
	assert.Equal(t, 0, m.Controller().Params().Page)
}

func TestModel_RowsPrompt(t *testing.T) {
	t.Parallel()

	m, history, _ := newModel(t, "/blocks?page=4", nil)

	drive(m, m.Init())
	send(m, tea.WindowSizeMsg{Width: 120, Height: 40})
	require.NotNil(t, m.Controller())
	assert.Equal(t, 3, m.Controller().Params().Page)

	send(m, keyRunes("s"))
	assert.Contains(t, m.View(), "Rows per page")

	send(m, tea.KeyMsg{Type: tea.KeyDown})
	send(m, tea.KeyMsg{Type: tea.KeyEnter})

	p := m.Controller().Params()
	assert.Equal(t, 200, p.Rows)
	assert.Equal(t, 0, p.Page)
	assert.Equal(t, "200", history.Location().Query().Get("rows"))
	assert.NotContains(t, m.View(), "Rows per page")
}

func TestModel_UnknownPath(t *testing.T) {
	t.Parallel()

	m, _, _ := newModel(t, "/nowhere", nil)

	drive(m, m.Init())
	send(m, tea.WindowSizeMsg{Width: 120, Height: 40})

	assert.Nil(t, m.Controller())
	assert.Contains(t, m.View(), "unknown path")

	// Navigating to the blocks list recovers.
	send(m, keyRunes("b"))
	require.NotNil(t, m.Controller())
	assert.Equal(t, explorer.TabBlocks, m.Controller().Active().ID)
}

func TestModel_RefreshFollowsNewTip(t *testing.T) {
	t.Parallel()

	m, history, mock := newModel(t, "/blocks", nil)

	drive(m, m.Init())
	send(m, tea.WindowSizeMsg{Width: 120, Height: 40})
	require.NotNil(t, m.Controller())

	b := m.Controller().Active().Binding
	assert.Equal(t, "999", b.SelectedRow()[1])

	mock.TipHeight = 1049

	send(m, keyRunes("r"))
	assert.Equal(t, 1050, m.Controller().Window().Start)
	assert.Equal(t, "1,049", b.SelectedRow()[1])
	assert.Empty(t, history.Location().Query().Get("end"))
}

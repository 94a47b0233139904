package explorer_test

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/chainview/pkg/explorer"
	"github.com/macropower/chainview/pkg/params"
	"github.com/macropower/chainview/pkg/slots"
	"github.com/macropower/chainview/pkg/table"
	"github.com/macropower/chainview/pkg/window"
)

// fakeBinding records loads and answers each with an empty page.
type fakeBinding struct {
	id         string
	loads      []table.Request
	seq        uint64
	pageLength int
	loading    bool
	total      int
}

func newFakeBinding(id string) *fakeBinding {
	return &fakeBinding{id: id, total: table.UnknownTotal}
}

func (b *fakeBinding) ID() string             { return b.id }
func (b *fakeBinding) SetPageLength(n int)    { b.pageLength = n }
func (b *fakeBinding) PageLength() int        { return b.pageLength }
func (b *fakeBinding) ShowLoading(v bool)     { b.loading = v }
func (b *fakeBinding) Loading() bool          { return b.loading }
func (b *fakeBinding) Update(tea.Msg) tea.Cmd { return nil }
func (b *fakeBinding) View() string           { return "" }
func (b *fakeBinding) SetSize(_, _ int)       {}
func (b *fakeBinding) SelectedRow() table.Row { return nil }
func (b *fakeBinding) Err() error             { return nil }

func (b *fakeBinding) Load(_ context.Context, req table.Request) tea.Cmd {
	b.loads = append(b.loads, req)
	b.loading = true
	b.seq++

	msg := table.LoadedMsg{BindingID: b.id, Seq: b.seq, Total: b.total}

	return func() tea.Msg { return msg }
}

func (b *fakeBinding) Apply(msg table.LoadedMsg) bool {
	if msg.BindingID != b.id || msg.Seq != b.seq {
		return false
	}

	b.loading = false

	return true
}

type fakeBar struct {
	plans []slots.Plan
}

func (b *fakeBar) SetPlan(p slots.Plan) {
	b.plans = append(b.plans, p)
}

func newController(t *testing.T, location string, tabs ...*explorer.Tab) (*explorer.Controller, *params.MemoryHistory, *fakeBar) {
	t.Helper()

	loc, err := params.ParseLocation(location)
	require.NoError(t, err)

	history := params.NewMemoryHistory(loc)
	bar := &fakeBar{}

	c, err := explorer.NewController(params.NewStore(history), slots.NewAllocator(nil), bar, tabs...)
	require.NoError(t, err)

	return c, history, bar
}

func blocksTab(b table.Binding) *explorer.Tab {
	return &explorer.Tab{
		ID:          explorer.TabBlocks,
		Binding:     b,
		Windowed:    true,
		DefaultRows: 100,
		AllowedRows: explorer.BlocksRows,
		Total:       1001,
	}
}

func addressTabs(txs, outs table.Binding) []*explorer.Tab {
	return []*explorer.Tab{
		{ID: explorer.TabTransactions, Binding: txs, DefaultRows: 100, AllowedRows: explorer.AddressRows, Total: 4000},
		{ID: explorer.TabOutpoints, Binding: outs, DefaultRows: 100, AllowedRows: explorer.AddressRows, Total: 120},
	}
}

func TestController_InitialLoad(t *testing.T) {
	t.Parallel()

	b := newFakeBinding(explorer.TabBlocks)
	c, _, bar := newController(t, "/blocks", blocksTab(b))

	c.HandleEvent(t.Context(), explorer.ViewportResized{Width: 80})
	cmd := c.HandleEvent(t.Context(), explorer.InitialLoad{})
	require.NotNil(t, cmd)

	require.Len(t, b.loads, 1)
	assert.Equal(t, window.Window{Start: 1001, End: 901}, b.loads[0].Window)
	assert.Equal(t, 100, b.PageLength())
	assert.True(t, b.Loading())

	require.NotEmpty(t, bar.plans)
	assert.Equal(t, slots.Plan{Current: 1, Pages: []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}}, c.Plan())
	assert.Equal(t, c.Plan(), bar.plans[len(bar.plans)-1])

	assert.True(t, c.Receive(cmd().(table.LoadedMsg)))
	assert.False(t, b.Loading())
}

func TestController_PageSelected(t *testing.T) {
	t.Parallel()

	b := newFakeBinding(explorer.TabBlocks)
	c, history, _ := newController(t, "/blocks?foo=bar", blocksTab(b))

	c.HandleEvent(t.Context(), explorer.InitialLoad{})
	c.HandleEvent(t.Context(), explorer.PageSelected{Page: 11})

	require.Len(t, b.loads, 2)
	assert.Equal(t, window.Window{Start: 1, End: 0}, b.loads[1].Window)
	assert.Equal(t, 10, b.loads[1].Params.Page)

	q := history.Location().Query()
	assert.Equal(t, "11", q.Get("page"))
	assert.Equal(t, "bar", q.Get("foo"))
	assert.Equal(t, 11, c.Plan().Current)
}

func TestController_PageSizeChanged(t *testing.T) {
	t.Parallel()

	b := newFakeBinding(explorer.TabBlocks)
	c, history, _ := newController(t, "/blocks?page=4", blocksTab(b))

	c.HandleEvent(t.Context(), explorer.PageSizeChanged{Rows: 50})

	require.Len(t, b.loads, 1)
	assert.Equal(t, 50, b.PageLength())
	assert.Equal(t, window.Window{Start: 1001, End: 951}, b.loads[0].Window)

	q := history.Location().Query()
	assert.Equal(t, "50", q.Get("rows"))
	assert.Equal(t, "1", q.Get("page"))
	assert.Equal(t, 21, c.LastPage())
}

func TestController_TabSwitchThenResizeDoesNotRefetch(t *testing.T) {
	t.Parallel()

	txs := newFakeBinding(explorer.TabTransactions)
	outs := newFakeBinding(explorer.TabOutpoints)
	c, history, bar := newController(t, "/address/x", addressTabs(txs, outs)...)

	c.HandleEvent(t.Context(), explorer.InitialLoad{})
	assert.Len(t, txs.loads, 1)
	assert.Empty(t, outs.loads)

	c.HandleEvent(t.Context(), explorer.TabSwitched{Tab: explorer.TabOutpoints})
	assert.Len(t, txs.loads, 1)
	assert.Len(t, outs.loads, 1)
	assert.Equal(t, explorer.TabOutpoints, c.Active().ID)
	assert.Equal(t, "outpoints", history.Location().Query().Get("currentTab"))

	plans := len(bar.plans)
	cmd := c.HandleEvent(t.Context(), explorer.ViewportResized{Width: 120})
	assert.Nil(t, cmd)
	assert.Len(t, txs.loads, 1)
	assert.Len(t, outs.loads, 1)
	assert.Len(t, bar.plans, plans+1)
	assert.Equal(t, 2, c.LastPage())
}

func TestController_ScopedParameters(t *testing.T) {
	t.Parallel()

	txs := newFakeBinding(explorer.TabTransactions)
	outs := newFakeBinding(explorer.TabOutpoints)
	c, history, _ := newController(t,
		"/address/x?currentTab=outpoints&outpoints-page=2&outpoints-rows=50&transactions-rows=250",
		addressTabs(txs, outs)...,
	)

	c.HandleEvent(t.Context(), explorer.InitialLoad{})
	assert.Empty(t, txs.loads)
	require.Len(t, outs.loads, 1)
	assert.Equal(t, 1, outs.loads[0].Params.Page)
	assert.Equal(t, 50, outs.loads[0].Params.Rows)

	c.HandleEvent(t.Context(), explorer.TabSwitched{Tab: explorer.TabTransactions})
	require.Len(t, txs.loads, 1)
	assert.Equal(t, 0, txs.loads[0].Params.Page)
	assert.Equal(t, 250, txs.loads[0].Params.Rows)

	c.HandleEvent(t.Context(), explorer.PageSelected{Page: 3})

	q := history.Location().Query()
	assert.Equal(t, "3", q.Get("transactions-page"))
	assert.Equal(t, "2", q.Get("outpoints-page"))
	assert.Empty(t, q.Get("page"))
}

func TestController_UnknownTabIsIgnored(t *testing.T) {
	t.Parallel()

	txs := newFakeBinding(explorer.TabTransactions)
	outs := newFakeBinding(explorer.TabOutpoints)
	c, history, _ := newController(t, "/address/x?currentTab=nope", addressTabs(txs, outs)...)

	c.HandleEvent(t.Context(), explorer.InitialLoad{})
	assert.Equal(t, explorer.TabTransactions, c.Active().ID)

	assert.Nil(t, c.HandleEvent(t.Context(), explorer.TabSwitched{Tab: "nope"}))
	assert.Len(t, txs.loads, 1)
	assert.Empty(t, outs.loads)
	assert.Equal(t, 0, history.Replaces())
}

func TestController_ReceiveDropsStaleResponses(t *testing.T) {
	t.Parallel()

	b := newFakeBinding(explorer.TabBlocks)
	c, _, _ := newController(t, "", blocksTab(b))

	first := c.HandleEvent(t.Context(), explorer.PageSelected{Page: 2})
	second := c.HandleEvent(t.Context(), explorer.PageSelected{Page: 3})

	assert.False(t, c.Receive(first().(table.LoadedMsg)))
	assert.True(t, b.Loading())
	assert.True(t, c.Receive(second().(table.LoadedMsg)))
	assert.False(t, b.Loading())

	assert.False(t, c.Receive(table.LoadedMsg{BindingID: "other"}))
}

func TestController_TotalChanged(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		location   string
		wantWindow window.Window
		wantLast   int
		wantReload bool
	}{
		"default end follows the new tip": {
			location:   "/blocks",
			wantReload: true,
			wantWindow: window.Window{Start: 2001, End: 1901},
			wantLast:   21,
		},
		"explicit end keeps its window": {
			location:   "/blocks?end=1001",
			wantWindow: window.Window{Start: 1001, End: 901},
			wantLast:   11,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			b := newFakeBinding(explorer.TabBlocks)
			c, _, _ := newController(t, tc.location, blocksTab(b))

			c.HandleEvent(t.Context(), explorer.ViewportResized{Width: 200})
			c.HandleEvent(t.Context(), explorer.InitialLoad{})
			assert.Equal(t, 11, c.LastPage())

			cmd := c.HandleEvent(t.Context(), explorer.TotalChanged{Tab: explorer.TabBlocks, Total: 2001})
			assert.Equal(t, tc.wantWindow, c.Window())
			assert.Equal(t, tc.wantLast, c.LastPage())

			if !tc.wantReload {
				assert.Nil(t, cmd)
				assert.Len(t, b.loads, 1)

				return
			}

			require.NotNil(t, cmd)
			require.Len(t, b.loads, 2)
			assert.Equal(t, tc.wantWindow, b.loads[1].Window)
			assert.True(t, c.Receive(cmd().(table.LoadedMsg)))
		})
	}
}

func TestController_TotalChangedInactiveTab(t *testing.T) {
	t.Parallel()

	txs := newFakeBinding(explorer.TabTransactions)
	outs := newFakeBinding(explorer.TabOutpoints)
	c, _, _ := newController(t, "/address/x", addressTabs(txs, outs)...)

	c.HandleEvent(t.Context(), explorer.InitialLoad{})

	assert.Nil(t, c.HandleEvent(t.Context(), explorer.TotalChanged{Tab: explorer.TabOutpoints, Total: 500}))
	assert.Nil(t, c.HandleEvent(t.Context(), explorer.TotalChanged{Tab: "nope", Total: 5}))
	assert.Len(t, txs.loads, 1)
	assert.Empty(t, outs.loads)
}

func TestController_Refreshed(t *testing.T) {
	t.Parallel()

	b := newFakeBinding(explorer.TabBlocks)
	c, history, _ := newController(t, "/blocks?page=2", blocksTab(b))

	c.HandleEvent(t.Context(), explorer.InitialLoad{})
	before := history.Location().String()

	cmd := c.HandleEvent(t.Context(), explorer.Refreshed{})
	require.NotNil(t, cmd)
	require.Len(t, b.loads, 2)

	assert.True(t, b.loads[1].Refresh)
	assert.False(t, b.loads[0].Refresh)
	assert.Equal(t, b.loads[0].Params, b.loads[1].Params)
	assert.Equal(t, b.loads[0].Window, b.loads[1].Window)
	assert.Equal(t, before, history.Location().String())
	assert.True(t, c.Receive(cmd().(table.LoadedMsg)))
}

func TestController_ReceiveUpdatesTotal(t *testing.T) {
	t.Parallel()

	txs := newFakeBinding(explorer.TabTransactions)
	outs := newFakeBinding(explorer.TabOutpoints)
	outs.total = 950

	tabs := addressTabs(txs, outs)
	c, _, _ := newController(t, "/address/x?currentTab=outpoints", tabs...)

	cmd := c.HandleEvent(t.Context(), explorer.InitialLoad{})
	require.True(t, c.Receive(cmd().(table.LoadedMsg)))

	assert.Equal(t, 950, c.Tab(explorer.TabOutpoints).Total)
	assert.Equal(t, 10, c.LastPage())
}

func TestController_UnknownTotal(t *testing.T) {
	t.Parallel()

	txs := newFakeBinding(explorer.TabTransactions)
	outs := newFakeBinding(explorer.TabOutpoints)

	tabs := addressTabs(txs, outs)
	tabs[0].Total = table.UnknownTotal

	c, _, _ := newController(t, "/address/x?transactions-page=5", tabs...)

	c.HandleEvent(t.Context(), explorer.InitialLoad{})
	assert.Equal(t, 5, c.Plan().Current)
	assert.Equal(t, 5, c.LastPage())
}

func TestController_Neighbor(t *testing.T) {
	t.Parallel()

	c, _, _ := newController(t, "", addressTabs(newFakeBinding("a"), newFakeBinding("b"))...)

	assert.Equal(t, explorer.TabOutpoints, c.Neighbor(1))
	assert.Equal(t, explorer.TabOutpoints, c.Neighbor(-1))
	assert.Equal(t, explorer.TabTransactions, c.Neighbor(2))
}

func TestNewController_Errors(t *testing.T) {
	t.Parallel()

	store := params.NewStore(params.NewMemoryHistory(nil))

	_, err := explorer.NewController(store, nil, nil)
	require.ErrorIs(t, err, explorer.ErrNoTabs)

	_, err = explorer.NewController(store, nil, nil,
		&explorer.Tab{ID: "a", Binding: newFakeBinding("a")},
		&explorer.Tab{ID: "a", Binding: newFakeBinding("a")},
	)
	require.ErrorIs(t, err, explorer.ErrDuplicateTab)
}

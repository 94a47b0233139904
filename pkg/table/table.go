// Package table binds paginated data sources to Bubble Tea table widgets.
//
// A [Binding] owns one table widget and its loading indicator. Loads are
// asynchronous: [Binding.Load] returns a command that produces a
// [LoadedMsg], which must be handed back to [Binding.Apply]. Every load is
// numbered uniquely within the process, and only the response to the
// latest load of a binding is applied.
package table

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/macropower/chainview/pkg/params"
	"github.com/macropower/chainview/pkg/ui/theme"
	"github.com/macropower/chainview/pkg/window"
)

// loadSeq numbers loads across every binding, so a response can never
// match a binding created after the load started.
var loadSeq atomic.Uint64

// UnknownTotal is reported by loads that cannot tell how many records
// exist.
const UnknownTotal = -1

type (
	Row    = table.Row
	Column = table.Column
)

// Request describes the page to load.
type Request struct {
	Params params.Parameters
	// Window is the position range backing the page. It is the zero value
	// for bindings that page by parameters only.
	Window window.Window
	// Refresh asks for data newer than any the binding has cached.
	Refresh bool
}

// LoadedMsg is the result of a load.
type LoadedMsg struct {
	Err       error
	BindingID string
	Rows      []Row
	Seq       uint64
	// Total is the number of records available, or [UnknownTotal].
	Total int
}

// Binding is a table widget backed by a data source.
type Binding interface {
	ID() string
	// SetPageLength sets how many records one page holds.
	SetPageLength(n int)
	PageLength() int
	ShowLoading(loading bool)
	Loading() bool
	// Load starts fetching the page described by req. Loading is shown
	// until the matching [LoadedMsg] is applied.
	Load(ctx context.Context, req Request) tea.Cmd
	// Apply stores the rows of msg. It reports false, changing nothing,
	// when msg belongs to another binding or to a superseded load.
	Apply(msg LoadedMsg) bool
	Update(msg tea.Msg) tea.Cmd
	View() string
	SetSize(width, height int)
	SelectedRow() Row
	// Err returns the error of the last applied load.
	Err() error
}

type Opt func(g *grid)

// WithTheme styles the table and spinner.
func WithTheme(t *theme.Theme) Opt {
	return func(g *grid) {
		g.theme = t
	}
}

// WithPageLength sets the initial page length.
func WithPageLength(n int) Opt {
	return func(g *grid) {
		g.pageLength = max(n, 1)
	}
}

// grid is the widget state shared by every binding.
type grid struct {
	err        error
	theme      *theme.Theme
	id         string
	columns    []Column
	table      table.Model
	spinner    spinner.Model
	seq        uint64
	pageLength int
	loading    bool
}

func newGrid(id string, columns []Column, opts ...Opt) *grid {
	g := &grid{
		id:         id,
		columns:    columns,
		theme:      theme.Default,
		pageLength: 100,
	}
	for _, opt := range opts {
		opt(g)
	}

	styles := table.DefaultStyles()
	styles.Header = g.theme.TableHeaderStyle
	styles.Cell = g.theme.TableCellStyle
	styles.Selected = g.theme.TableSelectedStyle

	g.table = table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithStyles(styles),
	)
	g.spinner = spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(g.theme.SpinnerStyle),
	)

	return g
}

func (g *grid) ID() string {
	return g.id
}

func (g *grid) SetPageLength(n int) {
	g.pageLength = max(n, 1)
}

func (g *grid) PageLength() int {
	return g.pageLength
}

func (g *grid) ShowLoading(loading bool) {
	g.loading = loading
}

func (g *grid) Loading() bool {
	return g.loading
}

func (g *grid) Err() error {
	return g.err
}

// begin numbers a new load and shows the loading indicator.
func (g *grid) begin() uint64 {
	g.seq = loadSeq.Add(1)
	g.loading = true

	return g.seq
}

func (g *grid) Apply(msg LoadedMsg) bool {
	if msg.BindingID != g.id {
		return false
	}

	if msg.Seq != g.seq {
		slog.Debug("discard stale response",
			slog.String("binding", g.id),
			slog.Uint64("seq", msg.Seq),
			slog.Uint64("latest", g.seq),
		)

		return false
	}

	g.loading = false

	if msg.Err != nil {
		// Keep the previous rows on screen.
		g.err = msg.Err

		return true
	}

	g.err = nil
	g.table.SetRows(msg.Rows)
	g.table.GotoTop()

	return true
}

func (g *grid) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !g.loading {
			return nil
		}

		g.spinner, cmd = g.spinner.Update(msg)
	case tea.KeyMsg:
		g.table, cmd = g.table.Update(msg)
	}

	return cmd
}

func (g *grid) SetSize(width, height int) {
	// One line for the loading indicator.
	g.table.SetHeight(max(height-1, 1))
	g.table.SetWidth(width)
	g.table.SetColumns(fitColumns(g.columns, width))
}

func (g *grid) SelectedRow() Row {
	return g.table.SelectedRow()
}

func (g *grid) View() string {
	var status string

	switch {
	case g.loading:
		status = g.spinner.View() + g.theme.SubtleStyle.Render(" loading")
	case g.err != nil:
		status = g.theme.ErrorTextStyle.Render(g.err.Error())
	case len(g.table.Rows()) == 0:
		status = g.theme.SubtleStyle.Render("no records")
	}

	return lipgloss.JoinVertical(lipgloss.Left, status, g.table.View())
}

// tick starts the spinner animation alongside cmd.
func (g *grid) tick(cmd tea.Cmd) tea.Cmd {
	return tea.Batch(g.spinner.Tick, cmd)
}

// fitColumns grows the first column so the columns fill width. Each cell
// has one cell of padding on both sides.
func fitColumns(columns []Column, width int) []Column {
	out := make([]Column, len(columns))
	copy(out, columns)

	if len(out) == 0 {
		return out
	}

	used := 0
	for _, c := range out {
		used += c.Width + 2
	}

	if extra := width - used; extra > 0 {
		out[0].Width += extra
	}

	return out
}

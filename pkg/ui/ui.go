// Package ui provides the chainview terminal UI.
package ui

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/macropower/chainview/pkg/explorer"
	"github.com/macropower/chainview/pkg/keys"
	"github.com/macropower/chainview/pkg/pagebar"
	"github.com/macropower/chainview/pkg/params"
	"github.com/macropower/chainview/pkg/slots"
	"github.com/macropower/chainview/pkg/table"
	"github.com/macropower/chainview/pkg/ui/common"
	"github.com/macropower/chainview/pkg/ui/prompt"
	"github.com/macropower/chainview/pkg/ui/statusbar"
	"github.com/macropower/chainview/pkg/ui/theme"
)

// chromeHeight is the number of lines around the table: the tab header,
// the page bar and the status bar.
const chromeHeight = 3

// Router resolves location paths into views.
type Router interface {
	Route(ctx context.Context, path string) (*explorer.Route, error)
}

// Options configure a [Model].
type Options struct {
	Router  Router
	History *params.MemoryHistory
	Config  *Config
	// Tiers estimate page bar slot widths; nil uses the defaults.
	Tiers []slots.Tier
	// Copy writes to the clipboard. Defaults to [clipboard.WriteAll].
	Copy func(string) error
}

// NewProgram returns a new Tea program.
func NewProgram(ctx context.Context, opts Options, progOpts ...tea.ProgramOption) *tea.Program {
	slog.Debug("starting chainview ui", slog.String("location", opts.History.Location().String()))

	return tea.NewProgram(New(ctx, opts), append([]tea.ProgramOption{tea.WithAltScreen()}, progOpts...)...)
}

type routedMsg struct {
	err   error
	route *explorer.Route
	path  string
	seq   uint64
}

// Model is the top-level Bubble Tea model.
type Model struct {
	ctx      context.Context
	err      error
	cm       *common.CommonModel
	router   Router
	history  *params.MemoryHistory
	store    *params.Store
	alloc    *slots.Allocator
	bar      *pagebar.Model
	ctrl     *explorer.Controller
	route    *explorer.Route
	help     *statusbar.HelpRenderer
	rows     *prompt.Prompt[int]
	address  *prompt.Prompt[string]
	copy     func(string) error
	routeSeq uint64
	showHelp bool
}

func New(ctx context.Context, opts Options) *Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}

	t := cfg.GetTheme()
	bar := pagebar.New(t)

	copyFn := opts.Copy
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}

	kbr := &keys.Renderer{}
	kbr.AddColumn(cfg.KeyBinds.General()...)
	kbr.AddColumn(cfg.KeyBinds.Paging()...)

	return &Model{
		ctx:     ctx,
		cm:      &common.CommonModel{Theme: t, KeyBinds: cfg.KeyBinds},
		router:  opts.Router,
		history: opts.History,
		store:   params.NewStore(opts.History),
		alloc:   slots.NewAllocator(opts.Tiers),
		bar:     &bar,
		help:    statusbar.NewHelpRenderer(t, kbr),
		copy:    copyFn,
	}
}

func (m *Model) Init() tea.Cmd {
	return m.navigate()
}

// navigate routes the current location.
func (m *Model) navigate() tea.Cmd {
	m.routeSeq++
	seq := m.routeSeq
	path := m.history.Location().Path

	return func() tea.Msg {
		r, err := m.router.Route(m.ctx, path)

		return routedMsg{seq: seq, path: path, route: r, err: err}
	}
}

// push opens path as a new history entry.
func (m *Model) push(path string) tea.Cmd {
	m.history.Push(&url.URL{Path: path})

	return m.navigate()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.cm.Width = msg.Width
		m.cm.Height = msg.Height
		m.bar.SetWidth(msg.Width)

		return m, m.resize()

	case routedMsg:
		return m, m.handleRoute(msg)

	case table.LoadedMsg:
		if m.ctrl == nil || !m.ctrl.Receive(msg) {
			return m, nil
		}

		if msg.Err != nil {
			return m, m.cm.SendStatusMessage(msg.Err.Error(), statusbar.StyleError)
		}

		return m, nil

	case explorer.TotalsMsg:
		return m, m.handleTotals(msg)

	case spinner.TickMsg:
		if m.ctrl == nil {
			return m, nil
		}

		cmds := []tea.Cmd{}
		for _, t := range m.ctrl.Tabs() {
			cmds = append(cmds, t.Binding.Update(msg))
		}

		return m, tea.Batch(cmds...)

	case common.StatusMessageTimeoutMsg:
		m.cm.ClearStatusMessage()

		return m, nil
	}

	if m.rows != nil || m.address != nil {
		return m, m.updatePrompt(msg)
	}

	if k, ok := msg.(tea.KeyMsg); ok {
		return m, m.handleKey(k)
	}

	return m, nil
}

func (m *Model) handleRoute(msg routedMsg) tea.Cmd {
	if msg.seq != m.routeSeq {
		return nil
	}

	if msg.err != nil {
		m.err = msg.err
		slog.Error("open location", slog.String("path", msg.path), slog.Any("err", msg.err))

		return m.cm.SendStatusMessage(msg.err.Error(), statusbar.StyleError)
	}

	ctrl, err := explorer.NewController(m.store, m.alloc, m.bar, msg.route.Tabs...)
	if err != nil {
		m.err = err

		return m.cm.SendStatusMessage(err.Error(), statusbar.StyleError)
	}

	m.err = nil
	m.ctrl = ctrl
	m.route = msg.route

	return tea.Batch(
		m.resize(),
		m.ctrl.HandleEvent(m.ctx, explorer.InitialLoad{}),
		m.route.Refresh(m.ctx),
	)
}

func (m *Model) handleTotals(msg explorer.TotalsMsg) tea.Cmd {
	if msg.Err != nil {
		return m.cm.SendStatusMessage(msg.Err.Error(), statusbar.StyleError)
	}

	if m.ctrl == nil {
		return nil
	}

	cmds := []tea.Cmd{}
	for _, ev := range msg.Events() {
		cmds = append(cmds, m.ctrl.HandleEvent(m.ctx, ev))
	}

	return tea.Batch(cmds...)
}

func (m *Model) resize() tea.Cmd {
	if m.ctrl == nil {
		return nil
	}

	height := m.cm.Height - chromeHeight
	if m.showHelp {
		height -= m.help.Height(m.cm.Width)
	}

	for _, t := range m.ctrl.Tabs() {
		t.Binding.SetSize(m.cm.Width, max(height, 2))
	}

	return m.ctrl.HandleEvent(m.ctx, explorer.ViewportResized{Width: m.cm.Width})
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	kb := m.cm.KeyBinds
	key := msg.String()

	switch {
	case kb.Quit.Match(key):
		return tea.Quit

	case kb.Help.Match(key):
		m.showHelp = !m.showHelp

		return m.resize()

	case kb.Address.Match(key):
		m.address = prompt.Address(m.cm.Theme)

		return m.address.Init()

	case kb.Blocks.Match(key):
		return m.push(explorer.PathBlocks)

	case kb.Back.Match(key):
		if m.history.Back() {
			return m.navigate()
		}

		return nil

	case kb.Forward.Match(key):
		if m.history.Forward() {
			return m.navigate()
		}

		return nil
	}

	if m.ctrl == nil {
		return nil
	}

	current := m.ctrl.Params().Page + 1

	switch {
	case kb.NextTab.Match(key):
		return m.ctrl.HandleEvent(m.ctx, explorer.TabSwitched{Tab: m.ctrl.Neighbor(1)})

	case kb.PrevTab.Match(key):
		return m.ctrl.HandleEvent(m.ctx, explorer.TabSwitched{Tab: m.ctrl.Neighbor(-1)})

	case kb.Left.Match(key):
		m.bar.FocusPrev()

	case kb.Right.Match(key):
		m.bar.FocusNext()

	case kb.Select.Match(key):
		if page, ok := m.bar.Selected(); ok {
			return m.selectPage(page)
		}

	case kb.NextPage.Match(key):
		if current < m.ctrl.LastPage() {
			return m.selectPage(current + 1)
		}

	case kb.PrevPage.Match(key):
		if current > 1 {
			return m.selectPage(current - 1)
		}

	case kb.FirstPage.Match(key):
		return m.selectPage(1)

	case kb.LastPage.Match(key):
		return m.selectPage(m.ctrl.LastPage())

	case kb.Rows.Match(key):
		t := m.ctrl.Active()
		m.rows = prompt.Rows(m.cm.Theme, t.AllowedRows, m.ctrl.Params().Rows)

		return m.rows.Init()

	case kb.Copy.Match(key):
		return m.copySelected()

	case kb.Refresh.Match(key):
		return tea.Batch(
			m.ctrl.HandleEvent(m.ctx, explorer.Refreshed{}),
			m.route.Refresh(m.ctx),
		)

	default:
		return m.ctrl.Active().Binding.Update(msg)
	}

	return nil
}

func (m *Model) selectPage(page int) tea.Cmd {
	if page == m.ctrl.Params().Page+1 {
		return nil
	}

	return m.ctrl.HandleEvent(m.ctx, explorer.PageSelected{Page: page})
}

func (m *Model) copySelected() tea.Cmd {
	row := m.ctrl.Active().Binding.SelectedRow()
	if len(row) == 0 {
		return nil
	}

	value := strings.TrimPrefix(row[0], "⛏ ")

	err := m.copy(value)
	if err != nil {
		return m.cm.SendStatusMessage(fmt.Sprintf("copy: %v", err), statusbar.StyleError)
	}

	return m.cm.SendStatusMessage("copied "+value, statusbar.StyleSuccess)
}

func (m *Model) updatePrompt(msg tea.Msg) tea.Cmd {
	if m.rows != nil {
		state, cmd := m.rows.Update(msg)

		switch state {
		case prompt.StateSubmitted:
			rows := m.rows.Value()
			m.rows = nil

			return tea.Batch(cmd, m.ctrl.HandleEvent(m.ctx, explorer.PageSizeChanged{Rows: rows}))
		case prompt.StateAborted:
			m.rows = nil
		case prompt.StatePending:
		}

		return cmd
	}

	state, cmd := m.address.Update(msg)

	switch state {
	case prompt.StateSubmitted:
		address := strings.TrimSpace(m.address.Value())
		m.address = nil

		return tea.Batch(cmd, m.push(explorer.AddressPath(address)))
	case prompt.StateAborted:
		m.address = nil
	case prompt.StatePending:
	}

	return cmd
}

func (m *Model) View() string {
	t := m.cm.Theme

	var body string

	switch {
	case m.rows != nil:
		body = m.rows.View()
	case m.address != nil:
		body = m.address.View()
	case m.ctrl != nil:
		body = m.ctrl.Active().Binding.View()
	case m.err != nil:
		body = t.ErrorTextStyle.Render(m.err.Error())
	default:
		body = t.SubtleStyle.Render("loading…")
	}

	parts := []string{m.header(), body, m.bar.View()}
	if m.showHelp {
		parts = append(parts, m.help.Render(m.cm.Width))
	}

	note, pos := "", ""
	if m.ctrl != nil {
		note = m.ctrl.Location()
		pos = m.position()
	}

	parts = append(parts, m.cm.StatusBar().Render(note, pos))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *Model) header() string {
	if m.ctrl == nil {
		return ""
	}

	t := m.cm.Theme
	active := m.ctrl.Active()

	tabs := make([]string, 0, len(m.ctrl.Tabs()))
	for _, tab := range m.ctrl.Tabs() {
		title := tab.Title
		if tab.Total >= 0 {
			title += " " + humanize.Comma(int64(tab.Total))
		}

		style := t.TabStyle
		if tab == active {
			style = t.TabActiveStyle
		}

		tabs = append(tabs, style.Render(title))
	}

	head := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	if m.route != nil && len(m.ctrl.Tabs()) > 1 {
		head += t.SubtleStyle.Render(" " + m.route.Title)
	}

	return head
}

func (m *Model) position() string {
	p := m.ctrl.Params()
	last := fmt.Sprintf("%d", m.ctrl.LastPage())

	if m.ctrl.Active().Total < 0 {
		last += "+"
	}

	return fmt.Sprintf("page %d/%s", p.Page+1, last)
}

// Theme returns the theme in use.
func (m *Model) Theme() *theme.Theme {
	return m.cm.Theme
}

// Controller returns the controller of the current view, or nil before the
// first view is routed.
func (m *Model) Controller() *explorer.Controller {
	return m.ctrl
}

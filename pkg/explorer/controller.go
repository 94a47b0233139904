// Package explorer coordinates the pagination state of an explorer view:
// the location, the tables of its tabs and the page bar.
package explorer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/macropower/chainview/pkg/params"
	"github.com/macropower/chainview/pkg/slots"
	"github.com/macropower/chainview/pkg/table"
	"github.com/macropower/chainview/pkg/window"
)

var (
	ErrNoTabs       = errors.New("no tabs")
	ErrDuplicateTab = errors.New("duplicate tab")
)

// Tab is one table of a view.
type Tab struct {
	Binding table.Binding
	ID      string
	Title   string
	// AllowedRows are the page lengths offered for the tab.
	AllowedRows []int
	DefaultRows int
	// Total is the number of records, or [table.UnknownTotal]. For windowed
	// tabs it is also the upper bound of the window.
	Total int
	// Windowed tabs receive the position window of the page with each
	// load.
	Windowed bool
}

// PageBar receives the page plan after every change.
type PageBar interface {
	SetPlan(plan slots.Plan)
}

// Controller owns the pagination state of one view. All events go through
// [Controller.HandleEvent]; it is not safe for concurrent use.
type Controller struct {
	store  *params.Store
	alloc  *slots.Allocator
	bar    PageBar
	tabs   []*Tab
	plan   slots.Plan
	active int
	width  int
	scoped bool
}

// NewController creates a [Controller] for tabs. With more than one tab,
// each tab stores its parameters under its own scoped keys.
func NewController(store *params.Store, alloc *slots.Allocator, bar PageBar, tabs ...*Tab) (*Controller, error) {
	if len(tabs) == 0 {
		return nil, ErrNoTabs
	}

	seen := map[string]bool{}
	for _, t := range tabs {
		if seen[t.ID] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateTab, t.ID)
		}

		seen[t.ID] = true
	}

	if alloc == nil {
		alloc = slots.NewAllocator(nil)
	}

	return &Controller{
		store:  store,
		alloc:  alloc,
		bar:    bar,
		tabs:   tabs,
		scoped: len(tabs) > 1,
	}, nil
}

// HandleEvent applies ev: it merges the new parameters into the location,
// loads the active tab and pushes a new page plan to the page bar. Resizes
// only recompute the plan. A total change reloads the active tab when it
// moves the tab's window, and otherwise only recomputes the plan. The
// returned command delivers the load result, which must be passed to
// [Controller.Receive].
func (c *Controller) HandleEvent(ctx context.Context, ev Event) tea.Cmd {
	switch ev := ev.(type) {
	case ViewportResized:
		c.width = max(ev.Width, 0)
		c.render()

		return nil

	case TotalChanged:
		t := c.Tab(ev.Tab)
		if t == nil {
			return nil
		}

		before := c.Window()
		t.Total = ev.Total

		if t == c.Active() && t.Windowed && c.Window() != before {
			slog.Debug("window moved with total",
				slog.String("tab", t.ID),
				slog.String("before", before.String()),
				slog.String("after", c.Window().String()),
			)

			return c.load(ctx, t, c.Params(), false)
		}

		c.render()

		return nil

	case Refreshed:
		return c.load(ctx, c.Active(), c.Params(), true)
	}

	var patch params.Patch

	switch ev := ev.(type) {
	case InitialLoad:
		if i := c.index(c.store.Get(params.Scope{}).CurrentTab); i >= 0 {
			c.active = i
		}

		p := c.store.Get(c.scope(c.Active()))

		return c.load(ctx, c.Active(), p, false)

	case PageSelected:
		patch.Page = params.Ptr(max(ev.Page, 1) - 1)

	case PageSizeChanged:
		patch.Rows = params.Ptr(ev.Rows)
		patch.Page = params.Ptr(0)

	case TabSwitched:
		i := c.index(ev.Tab)
		if i < 0 {
			slog.Debug("ignore switch to unknown tab", slog.String("tab", ev.Tab))

			return nil
		}

		c.active = i
		patch.CurrentTab = params.Ptr(ev.Tab)

	default:
		return nil
	}

	p := c.store.Update(c.scope(c.Active()), patch)

	return c.load(ctx, c.Active(), p, false)
}

// Receive hands a load result to the tab it belongs to. It reports whether
// the result was applied; results of superseded loads are dropped.
func (c *Controller) Receive(msg table.LoadedMsg) bool {
	for i, t := range c.tabs {
		if t.Binding.ID() != msg.BindingID {
			continue
		}

		if !t.Binding.Apply(msg) {
			return false
		}

		if msg.Err != nil {
			slog.Error("load failed", slog.String("tab", t.ID), slog.Any("err", msg.Err))
		}

		if msg.Total >= 0 && msg.Total != t.Total {
			t.Total = msg.Total
			if i == c.active {
				c.render()
			}
		}

		return true
	}

	return false
}

func (c *Controller) load(ctx context.Context, t *Tab, p params.Parameters, refresh bool) tea.Cmd {
	req := table.Request{Params: p, Refresh: refresh}
	if t.Windowed {
		req.Window = window.Compute(p, t.Total)
	}

	t.Binding.SetPageLength(p.Rows)
	cmd := t.Binding.Load(ctx, req)

	slog.Debug("load page",
		slog.String("tab", t.ID),
		slog.Int("page", p.Page+1),
		slog.Int("rows", p.Rows),
		slog.String("window", req.Window.String()),
		slog.Bool("refresh", refresh),
	)

	c.render()

	return cmd
}

func (c *Controller) render() {
	t := c.Active()
	p := c.Params()

	last := window.TotalPages(c.records(t, p), p.Rows)
	c.plan = c.alloc.Plan(p.Page+1, max(last, p.Page+1), c.width)

	if c.bar != nil {
		c.bar.SetPlan(c.plan)
	}
}

// records returns how many records the pages of t span.
func (c *Controller) records(t *Tab, p params.Parameters) int {
	if t.Total < 0 {
		return (p.Page + 1) * p.Rows
	}

	if !t.Windowed {
		return t.Total
	}

	return max(min(p.End, t.Total)-p.Start, 0)
}

func (c *Controller) scope(t *Tab) params.Scope {
	s := params.Scope{
		AllowedRows: t.AllowedRows,
		DefaultRows: t.DefaultRows,
		UpperBound:  max(t.Total, 0),
	}
	if c.scoped {
		s.Name = t.ID
	}

	return s
}

func (c *Controller) index(id string) int {
	for i, t := range c.tabs {
		if t.ID == id {
			return i
		}
	}

	return -1
}

// Active returns the active tab.
func (c *Controller) Active() *Tab {
	return c.tabs[c.active]
}

// Tab returns the tab with the given ID, or nil.
func (c *Controller) Tab(id string) *Tab {
	if i := c.index(id); i >= 0 {
		return c.tabs[i]
	}

	return nil
}

// Tabs returns every tab in display order.
func (c *Controller) Tabs() []*Tab {
	return c.tabs
}

// Params returns the parameters of the active tab.
func (c *Controller) Params() params.Parameters {
	return c.store.Get(c.scope(c.Active()))
}

// Window returns the position window of the active tab's current page.
// It is the zero value for tabs that are not windowed.
func (c *Controller) Window() window.Window {
	t := c.Active()
	if !t.Windowed {
		return window.Window{}
	}

	return window.Compute(c.Params(), t.Total)
}

// Plan returns the page plan last pushed to the page bar.
func (c *Controller) Plan() slots.Plan {
	return c.plan
}

// LastPage returns the last page of the active tab.
func (c *Controller) LastPage() int {
	return c.plan.Last()
}

// Location returns the current location.
func (c *Controller) Location() string {
	return c.store.Location()
}

// Neighbor returns the ID of the tab delta positions away from the active
// tab, wrapping around.
func (c *Controller) Neighbor(delta int) string {
	n := len(c.tabs)

	return c.tabs[((c.active+delta)%n+n)%n].ID
}

package table

import (
	"context"
	"fmt"
	"slices"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/macropower/chainview/pkg/params"
)

// FetchFunc loads the rows of one page. total is the number of records
// available, or [UnknownTotal].
type FetchFunc func(ctx context.Context, req Request) (rows []Row, total int, err error)

// ExplicitBinding loads pages through a caller supplied [FetchFunc], or
// pages records injected with [ExplicitBinding.SetRecords].
type ExplicitBinding struct {
	*grid

	fetch   FetchFunc
	records []Row
	local   bool
}

// NewExplicit creates an [ExplicitBinding]. A nil fetch pages the records
// set with SetRecords.
func NewExplicit(id string, columns []Column, fetch FetchFunc, opts ...Opt) *ExplicitBinding {
	return &ExplicitBinding{
		grid:  newGrid(id, columns, opts...),
		fetch: fetch,
		local: fetch == nil,
	}
}

// SetRecords replaces the records paged by the binding. Later loads page
// records instead of calling the fetch function.
func (b *ExplicitBinding) SetRecords(records []Row) {
	b.records = slices.Clone(records)
	b.local = true
}

// Records returns the number of injected records.
func (b *ExplicitBinding) Records() int {
	return len(b.records)
}

// Load implements [Binding].
func (b *ExplicitBinding) Load(ctx context.Context, req Request) tea.Cmd {
	b.SetPageLength(req.Params.Rows)

	seq := b.begin()
	id := b.id

	if b.local {
		rows := Page(b.records, req.Params)
		total := len(b.records)

		return func() tea.Msg {
			return LoadedMsg{BindingID: id, Seq: seq, Rows: rows, Total: total}
		}
	}

	fetch := b.fetch

	return b.tick(func() tea.Msg {
		rows, total, err := fetch(ctx, req)
		if err != nil {
			return LoadedMsg{BindingID: id, Seq: seq, Total: UnknownTotal, Err: fmt.Errorf("load %s: %w", id, err)}
		}

		return LoadedMsg{BindingID: id, Seq: seq, Rows: rows, Total: total}
	})
}

// Page returns the rows of page p.Page, p.Rows long, of records ordered
// newest first. Ascending order pages from the oldest record.
func Page[T any](records []T, p params.Parameters) []T {
	rows := max(p.Rows, 1)
	lo := max(p.Page, 0) * rows

	if lo >= len(records) {
		return nil
	}

	hi := min(lo+rows, len(records))

	if p.Order != params.OrderAsc {
		return slices.Clone(records[lo:hi])
	}

	out := make([]T, 0, hi-lo)
	for i := len(records) - 1 - lo; i >= len(records)-hi; i-- {
		out = append(out, records[i])
	}

	return out
}

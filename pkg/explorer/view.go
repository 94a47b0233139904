package explorer

import (
	"context"
	"fmt"
	"slices"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/text/language"

	"github.com/macropower/chainview/pkg/chain"
	"github.com/macropower/chainview/pkg/params"
	"github.com/macropower/chainview/pkg/table"
)

// Tab IDs.
const (
	TabBlocks       = "blocks"
	TabTransactions = "transactions"
	TabOutpoints    = "outpoints"
)

var (
	BlocksRows  = []int{50, 100, 200}
	AddressRows = []int{50, 100, 250, 500, 1000}
)

// Options configure the tabs of a view.
type Options struct {
	Format *Formatter
	Table  []table.Opt
	// AllowedRows replaces the page lengths offered by the view's tabs.
	AllowedRows []int
	DefaultRows int
}

func (o Options) allowedRows(def []int) []int {
	if len(o.AllowedRows) == 0 {
		return def
	}

	return o.AllowedRows
}

func (o Options) formatter() *Formatter {
	if o.Format == nil {
		return NewFormatter(language.English)
	}

	return o.Format
}

func (o Options) defaultRows(allowed []int) int {
	switch {
	case slices.Contains(allowed, o.DefaultRows):
		return o.DefaultRows
	case slices.Contains(allowed, 100):
		return 100
	}

	return allowed[0]
}

// BlocksView returns the single tab of the blocks list. tip is the height
// of the newest block; the tab windows heights [0, tip].
func BlocksView(src chain.Source, tip int, opts Options) []*Tab {
	f := opts.formatter()
	allowed := opts.allowedRows(BlocksRows)

	fetch := func(ctx context.Context, req table.Request) ([]table.Row, int, error) {
		lo, hi, ok := req.Window.Heights()
		if !ok {
			return nil, table.UnknownTotal, nil
		}

		blocks, err := src.Blocks(ctx, lo, hi)
		if err != nil {
			return nil, table.UnknownTotal, fmt.Errorf("blocks %d-%d: %w", lo, hi, err)
		}

		if req.Params.Order == params.OrderAsc {
			slices.Reverse(blocks)
		}

		rows := make([]table.Row, 0, len(blocks))
		for _, b := range blocks {
			rows = append(rows, f.Block(b))
		}

		return rows, table.UnknownTotal, nil
	}

	return []*Tab{{
		ID:          TabBlocks,
		Title:       "Blocks",
		Binding:     table.NewExplicit(TabBlocks, blockColumns, fetch, opts.Table...),
		Windowed:    true,
		DefaultRows: opts.defaultRows(allowed),
		AllowedRows: allowed,
		Total:       tip + 1,
	}}
}

// AddressView returns the transactions and outpoints tabs of an address.
// With a non-nil getter the transactions table is bound directly to the
// address history endpoint; otherwise it pages through src.
func AddressView(src chain.Source, getter table.Getter, address string, opts Options) []*Tab {
	f := opts.formatter()
	allowed := opts.allowedRows(AddressRows)
	rows := opts.defaultRows(allowed)

	var txs table.Binding
	if getter != nil {
		txs = table.NewEndpoint(TabTransactions, txColumns, getter,
			chain.AddressTxsPath(address), table.DecodeRows(f.Tx), opts.Table...)
	} else {
		txs = table.NewExplicit(TabTransactions, txColumns, func(ctx context.Context, req table.Request) ([]table.Row, int, error) {
			records, err := src.AddressTxs(ctx, address, req.Params.Page, req.Params.Rows)
			if err != nil {
				return nil, table.UnknownTotal, fmt.Errorf("address transactions: %w", err)
			}

			out := make([]table.Row, 0, len(records))
			for _, tx := range records {
				out = append(out, f.Tx(tx))
			}

			return out, table.UnknownTotal, nil
		}, opts.Table...)
	}

	utxos := &utxoCache{src: src, address: address}

	outpoints := table.NewExplicit(TabOutpoints, utxoColumns, func(ctx context.Context, req table.Request) ([]table.Row, int, error) {
		if req.Refresh {
			utxos.reset()
		}

		all, err := utxos.get(ctx)
		if err != nil {
			return nil, table.UnknownTotal, err
		}

		page := table.Page(all, req.Params)

		out := make([]table.Row, 0, len(page))
		for _, u := range page {
			out = append(out, f.Utxo(u))
		}

		return out, len(all), nil
	}, opts.Table...)

	return []*Tab{
		{
			ID:          TabTransactions,
			Title:       "Transactions",
			Binding:     txs,
			DefaultRows: rows,
			AllowedRows: allowed,
			Total:       table.UnknownTotal,
		},
		{
			ID:          TabOutpoints,
			Title:       "Outpoints",
			Binding:     outpoints,
			DefaultRows: rows,
			AllowedRows: allowed,
			Total:       table.UnknownTotal,
		},
	}
}

// utxoCache fetches the unspent outputs of an address once; they are
// paged locally.
type utxoCache struct {
	src     chain.Source
	address string
	utxos   []chain.Utxo
	mu      sync.Mutex
	loaded  bool
}

func (c *utxoCache) get(ctx context.Context) ([]chain.Utxo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded {
		return c.utxos, nil
	}

	utxos, err := c.src.AddressUtxos(ctx, c.address)
	if err != nil {
		return nil, fmt.Errorf("address outpoints: %w", err)
	}

	c.utxos = utxos
	c.loaded = true

	return utxos, nil
}

// reset drops the cached outputs; the next get fetches them again.
func (c *utxoCache) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.utxos = nil
	c.loaded = false
}

// TotalsMsg carries fresh record counts per tab.
type TotalsMsg struct {
	Err    error
	Totals map[string]int
}

// Events converts the totals into [TotalChanged] events.
func (m TotalsMsg) Events() []Event {
	ids := make([]string, 0, len(m.Totals))
	for id := range m.Totals {
		ids = append(ids, id)
	}

	slices.Sort(ids)

	events := make([]Event, 0, len(ids))
	for _, id := range ids {
		events = append(events, TotalChanged{Tab: id, Total: m.Totals[id]})
	}

	return events
}

// FetchTip returns a command reporting the record count of the blocks tab.
func FetchTip(ctx context.Context, src chain.Source) tea.Cmd {
	return func() tea.Msg {
		info, err := src.Info(ctx)
		if err != nil {
			return TotalsMsg{Err: fmt.Errorf("blockchain info: %w", err)}
		}

		return TotalsMsg{Totals: map[string]int{TabBlocks: info.TipHeight + 1}}
	}
}

// FetchAddressTotals returns a command reporting the record counts of the
// address tabs.
func FetchAddressTotals(ctx context.Context, src chain.Source, address string) tea.Cmd {
	return func() tea.Msg {
		a, err := src.AddressSummary(ctx, address)
		if err != nil {
			return TotalsMsg{Err: fmt.Errorf("address summary: %w", err)}
		}

		return TotalsMsg{Totals: map[string]int{
			TabTransactions: a.NumTxs,
			TabOutpoints:    a.NumUtxos,
		}}
	}
}

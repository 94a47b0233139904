package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/macropower/chainview/pkg/chain"
	"github.com/macropower/chainview/pkg/log"
	"github.com/macropower/chainview/pkg/params"
	"github.com/macropower/chainview/pkg/slots"
	"github.com/macropower/chainview/pkg/table"
	"github.com/macropower/chainview/pkg/window"
)

var ErrMissingAddress = errors.New("address is required")

// PageParams select one page of a list.
type PageParams struct {
	// Page is one-based. Zero or less is the first page.
	Page int `json:"page,omitempty" jsonschema:"the one-based page number"`
	Rows int `json:"rows,omitempty" jsonschema:"the number of rows per page"`
}

// AddressParams select one page of an address list.
type AddressParams struct {
	Address string `json:"address" jsonschema:"the address to read"`
	PageParams
}

// Page describes where a result sits in its list.
type Page struct {
	// Pages are the suggested page numbers, first and last included.
	Pages    []int `json:"pages"`
	Page     int   `json:"page"`
	Rows     int   `json:"rows"`
	LastPage int   `json:"lastPage"`
	// Total is the number of records, or -1 when unknown.
	Total   int  `json:"total"`
	HasMore bool `json:"hasMore"`
}

type BlocksResult struct {
	Message string        `json:"message"`
	Blocks  []chain.Block `json:"blocks"`
	Page
	TipHeight int `json:"tipHeight"`
}

type TransactionsResult struct {
	Address      string     `json:"address"`
	Message      string     `json:"message"`
	Transactions []chain.Tx `json:"transactions"`
	Page
}

type OutpointsResult struct {
	Address   string       `json:"address"`
	Message   string       `json:"message"`
	Outpoints []chain.Utxo `json:"outpoints"`
	Page
}

// resolve returns the zero-based page and the row count for p. Row counts
// outside allowed use 100 when allowed, else the first allowed count.
func resolve(p PageParams, allowed []int) (int, int) {
	rows := p.Rows
	if !slices.Contains(allowed, rows) {
		rows = allowed[0]
		if slices.Contains(allowed, 100) {
			rows = 100
		}
	}

	return max(p.Page, 1) - 1, rows
}

// newPage describes page of a list with total records. A negative total
// is unknown; hasMore then extends the last page by one.
func newPage(page, rows, total int, hasMore bool) Page {
	last := page + 1
	if hasMore {
		last++
	}
	if total >= 0 {
		last = window.TotalPages(total, rows)
		hasMore = page+1 < last
	}

	return Page{
		Pages:    slots.Build(page+1, last, pageSlots),
		Page:     page + 1,
		Rows:     rows,
		LastPage: last,
		Total:    total,
		HasMore:  hasMore,
	}
}

func textResult[T any](msg string, result T) *mcp.CallToolResultFor[T] {
	return &mcp.CallToolResultFor[T]{
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
		StructuredContent: result,
	}
}

func (s *Server) handleListBlocks(
	ctx context.Context,
	_ *mcp.ServerSession,
	req *mcp.CallToolParamsFor[PageParams],
) (*mcp.CallToolResultFor[BlocksResult], error) {
	page, rows := resolve(req.Arguments, s.blockRows)

	info, err := s.src.Info(ctx)
	if err != nil {
		return nil, fmt.Errorf("blockchain info: %w", err)
	}

	total := info.TipHeight + 1
	w := window.Compute(params.Parameters{Page: page, Rows: rows, End: total}, total)

	result := BlocksResult{
		TipHeight: info.TipHeight,
		Blocks:    []chain.Block{},
		Page:      newPage(page, rows, total, false),
	}

	lo, hi, ok := w.Heights()
	if !ok {
		result.Message = fmt.Sprintf("Page %d is past the last page (%s).",
			result.Page.Page, humanize.Comma(int64(result.LastPage)))

		return textResult(result.Message, result), nil
	}

	blocks, err := s.src.Blocks(ctx, lo, hi)
	if err != nil {
		return nil, fmt.Errorf("blocks %d-%d: %w", lo, hi, err)
	}

	result.Blocks = blocks
	result.Message = fmt.Sprintf("Blocks %s to %s, page %s of %s.",
		humanize.Comma(int64(hi)), humanize.Comma(int64(lo)),
		humanize.Comma(int64(result.Page.Page)), humanize.Comma(int64(result.LastPage)))

	return textResult(result.Message, result), nil
}

func (s *Server) handleListAddressTxs(
	ctx context.Context,
	_ *mcp.ServerSession,
	req *mcp.CallToolParamsFor[AddressParams],
) (*mcp.CallToolResultFor[TransactionsResult], error) {
	address := req.Arguments.Address
	if address == "" {
		return nil, ErrMissingAddress
	}

	page, rows := resolve(req.Arguments.PageParams, s.addressRows)

	txs, err := s.src.AddressTxs(ctx, address, page, rows)
	if err != nil {
		return nil, fmt.Errorf("address transactions: %w", err)
	}

	total := table.UnknownTotal

	summary, err := s.src.AddressSummary(ctx, address)
	if err != nil {
		log.WithContext(ctx).DebugContext(ctx, "address summary unavailable", slog.Any("err", err))
	} else {
		total = summary.NumTxs
	}

	result := TransactionsResult{
		Address:      address,
		Transactions: txs,
		Page:         newPage(page, rows, total, len(txs) == rows),
	}
	if result.Transactions == nil {
		result.Transactions = []chain.Tx{}
	}

	result.Message = fmt.Sprintf("Found %d transactions on page %d.", len(result.Transactions), result.Page.Page)

	return textResult(result.Message, result), nil
}

func (s *Server) handleListAddressOutpoints(
	ctx context.Context,
	_ *mcp.ServerSession,
	req *mcp.CallToolParamsFor[AddressParams],
) (*mcp.CallToolResultFor[OutpointsResult], error) {
	address := req.Arguments.Address
	if address == "" {
		return nil, ErrMissingAddress
	}

	page, rows := resolve(req.Arguments.PageParams, s.addressRows)

	all, err := s.src.AddressUtxos(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("address outpoints: %w", err)
	}

	result := OutpointsResult{
		Address:   address,
		Outpoints: table.Page(all, params.Parameters{Page: page, Rows: rows}),
		Page:      newPage(page, rows, len(all), false),
	}
	if result.Outpoints == nil {
		result.Outpoints = []chain.Utxo{}
	}

	result.Message = fmt.Sprintf("Found %s outpoints, showing page %d of %d.",
		humanize.Comma(int64(len(all))), result.Page.Page, result.LastPage)

	return textResult(result.Message, result), nil
}

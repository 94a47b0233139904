package table

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/macropower/chainview/pkg/chain"
)

// Getter fetches path and decodes its JSON body into out.
type Getter interface {
	Get(ctx context.Context, path string, q url.Values, out any) error
}

// RowDecoder turns the data array of a response into rows.
type RowDecoder func(data json.RawMessage) ([]Row, error)

// DecodeRows returns a [RowDecoder] for a data array of T.
func DecodeRows[T any](row func(T) Row) RowDecoder {
	return func(data json.RawMessage) ([]Row, error) {
		var records []T
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("decode rows: %w", err)
		}

		rows := make([]Row, 0, len(records))
		for _, r := range records {
			rows = append(rows, row(r))
		}

		return rows, nil
	}
}

// EndpointBinding loads pages from an API endpoint. The endpoint receives
// a [chain.PageQuery] of the zero-based page and the page length.
type EndpointBinding struct {
	*grid

	getter Getter
	decode RowDecoder
	path   string
}

// NewEndpoint creates an [EndpointBinding] for path.
func NewEndpoint(id string, columns []Column, getter Getter, path string, decode RowDecoder, opts ...Opt) *EndpointBinding {
	return &EndpointBinding{
		grid:   newGrid(id, columns, opts...),
		getter: getter,
		path:   path,
		decode: decode,
	}
}

// Path returns the bound endpoint path.
func (b *EndpointBinding) Path() string {
	return b.path
}

// Load implements [Binding]. The page length follows the request.
func (b *EndpointBinding) Load(ctx context.Context, req Request) tea.Cmd {
	b.SetPageLength(req.Params.Rows)

	seq := b.begin()
	id := b.id
	page := chain.PageQuery{Page: req.Params.Page, Take: b.pageLength}

	return b.tick(func() tea.Msg {
		msg := LoadedMsg{BindingID: id, Seq: seq, Total: UnknownTotal}

		q, err := page.Values()
		if err != nil {
			msg.Err = fmt.Errorf("load %s: %w", id, err)

			return msg
		}

		var env struct {
			Data json.RawMessage `json:"data"`
		}

		if err := b.getter.Get(ctx, b.path, q, &env); err != nil {
			msg.Err = fmt.Errorf("load %s: %w", id, err)

			return msg
		}

		rows, err := b.decode(env.Data)
		if err != nil {
			msg.Err = fmt.Errorf("load %s: %w", id, err)

			return msg
		}

		msg.Rows = rows

		return msg
	})
}

package explorer

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/macropower/chainview/pkg/chain"
	"github.com/macropower/chainview/pkg/table"
)

var ErrUnknownPath = errors.New("unknown path")

// Paths.
const (
	PathBlocks  = "/blocks"
	PathAddress = "/address/"
)

// AddressPath returns the location path of an address view.
func AddressPath(address string) string {
	return PathAddress + url.PathEscape(address)
}

// Route is the view shown for a location path.
type Route struct {
	// Refresh returns a command reporting fresh totals for the tabs.
	Refresh func(ctx context.Context) tea.Cmd
	Title   string
	Tabs    []*Tab
}

// Router builds the view for a location path.
type Router struct {
	Source chain.Source
	// Getter binds address transactions directly to the API; it may be nil.
	Getter  table.Getter
	Blocks  Options
	Address Options
}

// Route resolves path. The blocks view needs the chain tip, so Route may
// block on the source.
func (r *Router) Route(ctx context.Context, path string) (*Route, error) {
	switch {
	case path == "" || path == "/" || path == PathBlocks:
		info, err := r.Source.Info(ctx)
		if err != nil {
			return nil, fmt.Errorf("blockchain info: %w", err)
		}

		return &Route{
			Title: "Blocks",
			Tabs:  BlocksView(r.Source, info.TipHeight, r.Blocks),
			Refresh: func(ctx context.Context) tea.Cmd {
				return FetchTip(ctx, r.Source)
			},
		}, nil

	case strings.HasPrefix(path, PathAddress):
		address, err := url.PathUnescape(strings.TrimPrefix(path, PathAddress))
		if err != nil || address == "" || strings.Contains(address, "/") {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPath, path)
		}

		return &Route{
			Title: address,
			Tabs:  AddressView(r.Source, r.Getter, address, r.Address),
			Refresh: func(ctx context.Context) tea.Cmd {
				return FetchAddressTotals(ctx, r.Source, address)
			},
		}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownPath, path)
}

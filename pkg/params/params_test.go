package params_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/chainview/pkg/params"
)

func TestValidatePaginationInts(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		value    string
		fallback int
		want     int
	}{
		"valid integer":         {value: "7", fallback: 1, want: 7},
		"zero floors at one":    {value: "0", fallback: 5, want: 1},
		"negative floors":       {value: "-12", fallback: 5, want: 1},
		"empty uses fallback":   {value: "", fallback: 100, want: 100},
		"garbage uses fallback": {value: "abc", fallback: 100, want: 100},
		"float uses fallback":   {value: "1.5", fallback: 3, want: 3},
		"whitespace trimmed":    {value: " 42 ", fallback: 3, want: 42},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, params.ValidatePaginationInts(tc.value, tc.fallback))
		})
	}
}

func TestFromQuery(t *testing.T) {
	t.Parallel()

	scope := params.Scope{
		DefaultRows: 100,
		AllowedRows: []int{50, 100, 200},
		UpperBound:  1001,
	}

	tcs := map[string]struct {
		query string
		scope params.Scope
		want  params.Parameters
	}{
		"defaults": {
			query: "",
			scope: scope,
			want: params.Parameters{
				Page: 0, Rows: 100, Order: params.OrderDesc, Start: 0, End: 1001,
			},
		},
		"explicit values": {
			query: "page=3&rows=50&order=asc&start=10&end=500&currentTab=outpoints",
			scope: scope,
			want: params.Parameters{
				Page: 2, Rows: 50, Order: params.OrderAsc, Start: 10, End: 500,
				CurrentTab: "outpoints",
			},
		},
		"malformed values fall back": {
			query: "page=x&rows=-&order=sideways&start=y&end=z",
			scope: scope,
			want: params.Parameters{
				Page: 0, Rows: 100, Order: params.OrderDesc, Start: 0, End: 1001,
			},
		},
		"rows outside allowed set": {
			query: "rows=75",
			scope: scope,
			want: params.Parameters{
				Page: 0, Rows: 100, Order: params.OrderDesc, Start: 0, End: 1001,
			},
		},
		"any rows without allowed set": {
			query: "rows=75",
			scope: params.Scope{DefaultRows: 100},
			want: params.Parameters{
				Page: 0, Rows: 75, Order: params.OrderDesc,
			},
		},
		"inverted bounds are clamped": {
			query: "start=900&end=100",
			scope: scope,
			want: params.Parameters{
				Page: 0, Rows: 100, Order: params.OrderDesc, Start: 100, End: 100,
			},
		},
		"scoped keys": {
			query: "page=9&outpoints-page=2&outpoints-rows=200",
			scope: params.Scope{Name: "outpoints", DefaultRows: 100, AllowedRows: []int{100, 200}},
			want: params.Parameters{
				Page: 1, Rows: 200, Order: params.OrderDesc,
			},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			q, err := url.ParseQuery(tc.query)
			require.NoError(t, err)

			assert.Equal(t, tc.want, params.FromQuery(q, tc.scope))
		})
	}
}

func TestStore_GetIsIdempotent(t *testing.T) {
	t.Parallel()

	loc, err := params.ParseLocation("/blocks?page=4&rows=200")
	require.NoError(t, err)

	store := params.NewStore(params.NewMemoryHistory(loc))
	scope := params.Scope{DefaultRows: 100, UpperBound: 5000}

	assert.Equal(t, store.Get(scope), store.Get(scope))
}

func TestStore_UpdateMergeLaw(t *testing.T) {
	t.Parallel()

	scope := params.Scope{DefaultRows: 100, AllowedRows: []int{50, 100, 200}, UpperBound: 1001}

	tcs := map[string]struct {
		patch  params.Patch
		mutate func(p *params.Parameters)
	}{
		"page": {
			patch:  params.Patch{Page: params.Ptr(6)},
			mutate: func(p *params.Parameters) { p.Page = 6 },
		},
		"first page": {
			patch:  params.Patch{Page: params.Ptr(0)},
			mutate: func(p *params.Parameters) { p.Page = 0 },
		},
		"rows": {
			patch:  params.Patch{Rows: params.Ptr(200)},
			mutate: func(p *params.Parameters) { p.Rows = 200 },
		},
		"order": {
			patch:  params.Patch{Order: params.Ptr(params.OrderAsc)},
			mutate: func(p *params.Parameters) { p.Order = params.OrderAsc },
		},
		"start": {
			patch:  params.Patch{Start: params.Ptr(0)},
			mutate: func(p *params.Parameters) { p.Start = 0 },
		},
		"end": {
			patch:  params.Patch{End: params.Ptr(700)},
			mutate: func(p *params.Parameters) { p.End = 700 },
		},
		"current tab": {
			patch:  params.Patch{CurrentTab: params.Ptr("transactions")},
			mutate: func(p *params.Parameters) { p.CurrentTab = "transactions" },
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			loc, err := params.ParseLocation("/address/ecash:qq?page=2&rows=50&start=5&end=900&currentTab=outpoints&foo=bar")
			require.NoError(t, err)

			history := params.NewMemoryHistory(loc)
			store := params.NewStore(history)

			want := store.Get(scope)
			tc.mutate(&want)

			merged := store.Update(scope, tc.patch)
			assert.Equal(t, want, merged)
			assert.Equal(t, want, store.Get(scope))

			// Unrelated keys and the path survive the merge.
			got := history.Location()
			assert.Equal(t, "/address/ecash:qq", got.Path)
			assert.Equal(t, "bar", got.Query().Get("foo"))
			assert.Equal(t, 1, history.Replaces())
		})
	}
}

func TestStore_UpdatePreservesOtherScopes(t *testing.T) {
	t.Parallel()

	history := params.NewMemoryHistory(nil)
	store := params.NewStore(history)

	txs := params.Scope{Name: "transactions", DefaultRows: 100}
	outs := params.Scope{Name: "outpoints", DefaultRows: 100}

	store.Update(txs, params.Patch{Page: params.Ptr(3), Rows: params.Ptr(250)})
	store.Update(outs, params.Patch{Page: params.Ptr(1)})
	store.Update(params.Scope{}, params.Patch{CurrentTab: params.Ptr("outpoints")})

	gotTxs := store.Get(txs)
	assert.Equal(t, 3, gotTxs.Page)
	assert.Equal(t, 250, gotTxs.Rows)
	assert.Equal(t, "outpoints", gotTxs.CurrentTab)

	gotOuts := store.Get(outs)
	assert.Equal(t, 1, gotOuts.Page)
	assert.Equal(t, 100, gotOuts.Rows)

	q := history.Location().Query()
	assert.Equal(t, "4", q.Get("transactions-page"))
	assert.Equal(t, "2", q.Get("outpoints-page"))
	assert.Equal(t, "outpoints", q.Get("currentTab"))
}

func TestParseLocation(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		in        string
		wantPath  string
		wantQuery string
	}{
		"path and query": {in: "/blocks?page=2", wantPath: "/blocks", wantQuery: "page=2"},
		"bare query":     {in: "page=2&rows=50", wantPath: "", wantQuery: "page=2&rows=50"},
		"leading mark":   {in: "?rows=50", wantPath: "", wantQuery: "rows=50"},
		"empty":          {in: "", wantPath: "", wantQuery: ""},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			u, err := params.ParseLocation(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.wantPath, u.Path)
			assert.Equal(t, tc.wantQuery, u.RawQuery)
		})
	}
}

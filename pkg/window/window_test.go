package window_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/macropower/chainview/pkg/params"
	"github.com/macropower/chainview/pkg/window"
)

func TestCompute(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		p         params.Parameters
		upper     int
		want      window.Window
		wantEmpty bool
	}{
		"first page": {
			p:    params.Parameters{End: 1000, Start: 0, Rows: 100, Page: 0},
			want: window.Window{Start: 1000, End: 900},
		},
		"last full page": {
			p:    params.Parameters{End: 1000, Start: 0, Rows: 100, Page: 9},
			want: window.Window{Start: 100, End: 0},
		},
		"page beyond the data": {
			p:         params.Parameters{End: 1000, Start: 0, Rows: 100, Page: 15},
			want:      window.Window{Start: -500, End: 0},
			wantEmpty: true,
		},
		"clipped at lower bound": {
			p:    params.Parameters{End: 1000, Start: 950, Rows: 100, Page: 0},
			want: window.Window{Start: 1000, End: 950},
		},
		"upper bound caps end": {
			p:     params.Parameters{End: 5000, Start: 0, Rows: 50, Page: 1},
			upper: 1001,
			want:  window.Window{Start: 951, End: 901},
		},
		"ascending first page": {
			p:    params.Parameters{End: 1000, Start: 0, Rows: 100, Page: 0, Order: params.OrderAsc},
			want: window.Window{Start: 100, End: 0},
		},
		"ascending last partial page": {
			p:    params.Parameters{End: 1050, Start: 0, Rows: 100, Page: 10, Order: params.OrderAsc},
			want: window.Window{Start: 1050, End: 1000},
		},
		"ascending beyond the data": {
			p:         params.Parameters{End: 1000, Start: 0, Rows: 100, Page: 12, Order: params.OrderAsc},
			want:      window.Window{Start: 1000, End: 1200},
			wantEmpty: true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			upper := tc.upper
			if upper == 0 {
				upper = -1
			}

			got := window.Compute(tc.p, upper)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.wantEmpty, got.Empty())
		})
	}
}

func TestCompute_BoundsProperty(t *testing.T) {
	t.Parallel()

	for _, rows := range []int{1, 7, 50, 100, 250} {
		for _, start := range []int{0, 3, 120} {
			for _, end := range []int{start, start + 1, start + 99, start + 1000} {
				last := window.TotalPages(end-start, rows)
				for page := range last {
					p := params.Parameters{Page: page, Rows: rows, Start: start, End: end}
					w := window.Compute(p, -1)

					assert.LessOrEqual(t, w.End, w.Start, "%+v", p)
					assert.LessOrEqual(t, w.Start, end, "%+v", p)
					assert.GreaterOrEqual(t, w.End, start, "%+v", p)
					assert.LessOrEqual(t, w.Start-w.End, rows, "%+v", p)
				}

				beyond := window.Compute(params.Parameters{Page: last + 1, Rows: rows, Start: start, End: end}, -1)
				assert.Equal(t, 0, beyond.Len(), "rows=%d start=%d end=%d", rows, start, end)
			}
		}
	}
}

func TestWindow_Heights(t *testing.T) {
	t.Parallel()

	lo, hi, ok := window.Window{Start: 1000, End: 900}.Heights()
	assert.True(t, ok)
	assert.Equal(t, 900, lo)
	assert.Equal(t, 999, hi)

	_, _, ok = window.Window{Start: -500, End: 0}.Heights()
	assert.False(t, ok)

	w := window.Window{Start: 100, End: 0}
	assert.Equal(t, 100, w.Len())
	assert.True(t, w.Contains(0))
	assert.False(t, w.Contains(100))
	assert.Equal(t, "[0, 100)", w.String())
}

func TestTotalPages(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		total, rows, want int
	}{
		"exact":       {total: 1000, rows: 100, want: 10},
		"remainder":   {total: 1001, rows: 100, want: 11},
		"empty":       {total: 0, rows: 100, want: 1},
		"single":      {total: 1, rows: 50, want: 1},
		"bad rows":    {total: 10, rows: 0, want: 1},
		"one per row": {total: 3, rows: 1, want: 3},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, window.TotalPages(tc.total, tc.rows))
		})
	}
}

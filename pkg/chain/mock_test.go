package chain_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/chainview/pkg/chain"
)

func TestMock_Blocks(t *testing.T) {
	t.Parallel()

	m := chain.NewMock(7, 1000)

	tcs := map[string]struct {
		start, end int
		want       []int
	}{
		"newest first":  {start: 10, end: 12, want: []int{12, 11, 10}},
		"single":        {start: 5, end: 5, want: []int{5}},
		"capped at tip": {start: 999, end: 5000, want: []int{1000, 999}},
		"inverted":      {start: 12, end: 10, want: nil},
		"negative":      {start: -5, end: 1, want: []int{1, 0}},
		"above tip":     {start: 2000, end: 3000, want: nil},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			blocks, err := m.Blocks(t.Context(), tc.start, tc.end)
			require.NoError(t, err)

			var heights []int
			for _, b := range blocks {
				heights = append(heights, b.Height)
			}

			assert.Equal(t, tc.want, heights)
		})
	}
}

func TestMock_Deterministic(t *testing.T) {
	t.Parallel()

	a := chain.NewMock(42, 0)
	b := chain.NewMock(42, 0)
	other := chain.NewMock(43, 0)

	assert.Equal(t, chain.DefaultMockTip, a.TipHeight)
	assert.Equal(t, a.Block(100), b.Block(100))
	assert.NotEqual(t, a.Block(100).Hash, other.Block(100).Hash)
	assert.NotEqual(t, a.Block(100).Hash, a.Block(101).Hash)

	txsA, err := a.AddressTxs(t.Context(), "ecash:qq", 1, 25)
	require.NoError(t, err)

	txsB, err := b.AddressTxs(t.Context(), "ecash:qq", 1, 25)
	require.NoError(t, err)

	assert.Equal(t, txsA, txsB)
}

func TestMock_AddressPaging(t *testing.T) {
	t.Parallel()

	m := chain.NewMock(1, 10_000)
	ctx := t.Context()

	summary, err := m.AddressSummary(ctx, "ecash:qq")
	require.NoError(t, err)
	require.Positive(t, summary.NumTxs)

	var all []chain.Tx

	for page := 0; ; page++ {
		txs, err := m.AddressTxs(ctx, "ecash:qq", page, 500)
		require.NoError(t, err)

		if len(txs) == 0 {
			break
		}

		all = append(all, txs...)
	}

	assert.Len(t, all, summary.NumTxs)

	utxos, err := m.AddressUtxos(ctx, "ecash:qq")
	require.NoError(t, err)
	assert.Len(t, utxos, summary.NumUtxos)

	var balance int64
	for _, u := range utxos {
		balance += u.SatsAmount
	}

	assert.Equal(t, summary.BalanceSats, balance)

	_, err = m.AddressSummary(ctx, "")
	require.ErrorIs(t, err, chain.ErrNotFound)
}

func TestMock_DelayHonorsContext(t *testing.T) {
	t.Parallel()

	m := chain.NewMock(1, 10)
	m.Delay = time.Hour

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := m.Info(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

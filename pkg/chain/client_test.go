package chain_test

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/chainview/pkg/chain"
)

func fastRetries() chain.ClientOpt {
	return chain.WithBackOff(func() backoff.BackOff {
		return backoff.NewConstantBackOff(time.Millisecond)
	})
}

func TestClient_AgainstMockHandler(t *testing.T) {
	t.Parallel()

	mock := chain.NewMock(3, 2000)
	srv := httptest.NewServer(chain.NewMockHandler(mock))
	t.Cleanup(srv.Close)

	c, err := chain.NewClient(srv.URL, fastRetries())
	require.NoError(t, err)

	ctx := t.Context()

	info, err := c.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2000, info.TipHeight)
	assert.Equal(t, mock.Block(2000).Hash, info.TipHash)

	blocks, err := c.Blocks(ctx, 1900, 1999)
	require.NoError(t, err)
	require.Len(t, blocks, 100)
	assert.Equal(t, 1999, blocks[0].Height)
	assert.Equal(t, 1900, blocks[99].Height)
	assert.Equal(t, mock.Block(1950), blocks[49])

	blocks, err = c.Blocks(ctx, 10, 5)
	require.NoError(t, err)
	assert.Empty(t, blocks)

	const address = "ecash:qz2708636snqhsxu8wnlka78h6fdp77ar59jrf5035"

	want, err := mock.AddressTxs(ctx, address, 0, 50)
	require.NoError(t, err)

	got, err := c.AddressTxs(ctx, address, 0, 50)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	summary, err := c.AddressSummary(ctx, address)
	require.NoError(t, err)

	utxos, err := c.AddressUtxos(ctx, address)
	require.NoError(t, err)
	assert.Len(t, utxos, summary.NumUtxos)

	_, err = c.AddressSummary(ctx, "")
	require.Error(t, err)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)

			return
		}

		_, _ = w.Write([]byte(`{"data":{"tipHeight":12,"tipHash":"ab"}}`))
	}))
	t.Cleanup(srv.Close)

	c, err := chain.NewClient(srv.URL, fastRetries(), chain.WithRetries(3))
	require.NoError(t, err)

	info, err := c.Info(t.Context())
	require.NoError(t, err)
	assert.Equal(t, chain.Info{TipHeight: 12, TipHash: "ab"}, info)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		status int
		want   error
	}{
		"not found":   {status: http.StatusNotFound, want: chain.ErrNotFound},
		"bad request": {status: http.StatusBadRequest, want: chain.ErrBadStatus},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var calls atomic.Int32

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				calls.Add(1)
				w.WriteHeader(tc.status)
			}))
			t.Cleanup(srv.Close)

			c, err := chain.NewClient(srv.URL, fastRetries(), chain.WithRetries(5))
			require.NoError(t, err)

			_, err = c.Info(t.Context())
			require.ErrorIs(t, err, tc.want)
			assert.Equal(t, int32(1), calls.Load())
		})
	}
}

func TestClient_DecodeError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	t.Cleanup(srv.Close)

	c, err := chain.NewClient(srv.URL, fastRetries())
	require.NoError(t, err)

	_, err = c.Blocks(t.Context(), 0, 1)
	require.ErrorIs(t, err, chain.ErrDecode)
}

func TestClient_BreakerOpens(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	c, err := chain.NewClient(srv.URL,
		fastRetries(),
		chain.WithRetries(10),
		chain.WithBreakerSettings(gobreaker.Settings{
			Name:    "test",
			Timeout: time.Hour,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 2
			},
		}),
	)
	require.NoError(t, err)

	_, err = c.Info(t.Context())
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(2), calls.Load())
}

func TestNewClient_InvalidURL(t *testing.T) {
	t.Parallel()

	for _, u := range []string{"", "localhost", "://bad"} {
		_, err := chain.NewClient(u)
		require.ErrorIs(t, err, chain.ErrInvalidURL, u)
	}
}

func TestClient_TimeoutKeepsCallerClient(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}

		_, _ = w.Write([]byte(`{"data":{"tipHeight":1,"tipHash":"ab"}}`))
	}))
	t.Cleanup(srv.Close)

	own := &http.Client{}

	c, err := chain.NewClient(srv.URL,
		chain.WithHTTPClient(own),
		chain.WithTimeout(20*time.Millisecond),
		chain.WithRetries(0),
	)
	require.NoError(t, err)

	_, err = c.Info(t.Context())
	require.Error(t, err)
	assert.Zero(t, own.Timeout)
}

func TestPageQuery_Values(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		in   chain.PageQuery
		want string
	}{
		"as given":             {in: chain.PageQuery{Page: 3, Take: 50}, want: "page=3&take=50"},
		"negative page":        {in: chain.PageQuery{Page: -2, Take: 50}, want: "page=0&take=50"},
		"take is at least one": {in: chain.PageQuery{Page: 1}, want: "page=1&take=1"},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			v, err := tc.in.Values()
			require.NoError(t, err)
			assert.Equal(t, tc.want, v.Encode())
		})
	}
}

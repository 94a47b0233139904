package chain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/go-querystring/query"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const maxBodyBytes = 32 << 20

var ErrInvalidURL = errors.New("invalid api url")

// Client is a [Source] backed by the explorer HTTP API.
type Client struct {
	base       *url.URL
	http       *http.Client
	breaker    *gobreaker.CircuitBreaker
	tracer     trace.Tracer
	newBackOff func() backoff.BackOff
	retries    uint
	maxElapsed time.Duration
}

type ClientOpt func(c *Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(h *http.Client) ClientOpt {
	return func(c *Client) {
		c.http = h
	}
}

// WithTimeout sets the timeout of a single HTTP attempt. A client given
// with [WithHTTPClient] is copied, never modified.
func WithTimeout(d time.Duration) ClientOpt {
	return func(c *Client) {
		h := *c.http
		h.Timeout = d
		c.http = &h
	}
}

// WithRetries sets how many times a failed request is retried.
func WithRetries(n uint) ClientOpt {
	return func(c *Client) {
		c.retries = n
	}
}

// WithBackOff sets the retry schedule. newBackOff is called once per
// request.
func WithBackOff(newBackOff func() backoff.BackOff) ClientOpt {
	return func(c *Client) {
		c.newBackOff = newBackOff
	}
}

// WithMaxElapsedTime bounds the total time spent retrying one request.
func WithMaxElapsedTime(d time.Duration) ClientOpt {
	return func(c *Client) {
		c.maxElapsed = d
	}
}

// WithBreakerSettings replaces the circuit breaker settings.
func WithBreakerSettings(s gobreaker.Settings) ClientOpt {
	return func(c *Client) {
		if s.IsSuccessful == nil {
			s.IsSuccessful = isSuccessful
		}

		c.breaker = gobreaker.NewCircuitBreaker(s)
	}
}

// NewClient creates a [Client] for the API at baseURL.
func NewClient(baseURL string, opts ...ClientOpt) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, baseURL)
	}

	c := &Client{
		base:       u,
		http:       &http.Client{Timeout: 10 * time.Second},
		tracer:     otel.Tracer("chain-client"),
		newBackOff: func() backoff.BackOff { return backoff.NewExponentialBackOff() },
		retries:    3,
		maxElapsed: 30 * time.Second,
	}

	WithBreakerSettings(gobreaker.Settings{
		Name:        u.Host,
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     5 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed",
				slog.String("name", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})(c)

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Get fetches path with the given query and decodes the JSON body into
// out. Server errors and transport failures are retried with exponential
// backoff; client errors are not.
func (c *Client) Get(ctx context.Context, path string, q url.Values, out any) error {
	u := c.base.JoinPath(path)
	u.RawQuery = q.Encode()

	ctx, span := c.tracer.Start(ctx, "GET "+path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", http.MethodGet),
			attribute.String("url.full", u.String()),
		),
	)
	defer span.End()

	attempts := 0
	body, err := backoff.Retry(ctx, func() ([]byte, error) {
		attempts++

		return c.do(ctx, u)
	},
		backoff.WithBackOff(c.newBackOff()),
		backoff.WithMaxTries(c.retries+1),
		backoff.WithMaxElapsedTime(c.maxElapsed),
		backoff.WithNotify(func(err error, next time.Duration) {
			slog.DebugContext(ctx, "retrying request",
				slog.String("url", u.String()),
				slog.Duration("next", next),
				slog.Any("err", err),
			)
		}),
	)

	span.SetAttributes(attribute.Int("http.request.resend_count", max(attempts-1, 0)))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return fmt.Errorf("get %s: %w", u.Path, err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return fmt.Errorf("%w: %s: %w", ErrDecode, u.Path, err)
	}

	return nil
}

func (c *Client) do(ctx context.Context, u *url.URL) ([]byte, error) {
	res, err := c.breaker.Execute(func() (any, error) {
		return c.fetch(ctx, u)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, backoff.Permanent(err)
		}

		return nil, err
	}

	body, ok := res.([]byte)
	if !ok {
		return nil, backoff.Permanent(fmt.Errorf("%w: unexpected body type %T", ErrDecode, res))
	}

	return body, nil
}

func (c *Client) fetch(ctx context.Context, u *url.URL) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("create request: %w", err))
	}

	req.Header.Set("Accept", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(ctx.Err())
		}

		return nil, fmt.Errorf("send request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.DebugContext(ctx, "close response body", slog.Any("err", err))
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, backoff.Permanent(fmt.Errorf("%w: %s", ErrNotFound, u.Path))
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("%w: %s", ErrBadStatus, resp.Status)
	case resp.StatusCode >= http.StatusBadRequest:
		return nil, backoff.Permanent(fmt.Errorf("%w: %s", ErrBadStatus, resp.Status))
	}

	return body, nil
}

// isSuccessful keeps missing records from tripping the breaker.
func isSuccessful(err error) bool {
	return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled)
}

// Info implements [Source].
func (c *Client) Info(ctx context.Context) (Info, error) {
	var env Envelope[Info]
	if err := c.Get(ctx, "/api/blockchain-info", nil, &env); err != nil {
		return Info{}, err
	}

	return env.Data, nil
}

// Blocks implements [Source].
func (c *Client) Blocks(ctx context.Context, startHeight, endHeight int) ([]Block, error) {
	if endHeight < startHeight || endHeight < 0 {
		return nil, nil
	}

	var env Envelope[[]Block]

	path := fmt.Sprintf("/api/blocks/%d/%d", max(startHeight, 0), endHeight)
	if err := c.Get(ctx, path, nil, &env); err != nil {
		return nil, err
	}

	return env.Data, nil
}

// PageQuery is the paging query of paged endpoints such as the address
// history. Page is zero-based.
type PageQuery struct {
	Page int `url:"page"`
	Take int `url:"take"`
}

// Values encodes the query. Negative pages are sent as the first page and
// take is at least one.
func (p PageQuery) Values() (url.Values, error) {
	v, err := query.Values(PageQuery{Page: max(p.Page, 0), Take: max(p.Take, 1)})
	if err != nil {
		return nil, fmt.Errorf("encode page query: %w", err)
	}

	return v, nil
}

// AddressTxsPath returns the API path of the address history.
func AddressTxsPath(address string) string {
	return "/api/address/" + url.PathEscape(address) + "/transactions"
}

// AddressTxs implements [Source].
func (c *Client) AddressTxs(ctx context.Context, address string, page, take int) ([]Tx, error) {
	var env Envelope[[]Tx]

	q, err := PageQuery{Page: page, Take: take}.Values()
	if err != nil {
		return nil, err
	}

	if err := c.Get(ctx, AddressTxsPath(address), q, &env); err != nil {
		return nil, err
	}

	return env.Data, nil
}

// AddressUtxos implements [Source].
func (c *Client) AddressUtxos(ctx context.Context, address string) ([]Utxo, error) {
	var env Envelope[[]Utxo]
	if err := c.Get(ctx, "/api/address/"+url.PathEscape(address)+"/utxos", nil, &env); err != nil {
		return nil, err
	}

	return env.Data, nil
}

// AddressSummary implements [Source].
func (c *Client) AddressSummary(ctx context.Context, address string) (Address, error) {
	var env Envelope[Address]
	if err := c.Get(ctx, "/api/address/"+url.PathEscape(address), nil, &env); err != nil {
		return Address{}, err
	}

	return env.Data, nil
}

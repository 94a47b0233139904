package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/macropower/chainview/pkg/chain"
)

const shutdownTimeout = 5 * time.Second

type MockServerArgs struct {
	*RootArgs

	Listen string
	Seed   uint64
	Tip    int
	Delay  time.Duration
}

func NewMockServerArgs(rootArgs *RootArgs) *MockServerArgs {
	return &MockServerArgs{RootArgs: rootArgs}
}

func (ma *MockServerArgs) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&ma.Listen, "listen", "127.0.0.1:8080", "Address to serve the mock API on")
	cmd.Flags().Uint64Var(&ma.Seed, "seed", 1, "Seed of the mock chain")
	cmd.Flags().IntVar(&ma.Tip, "tip", chain.DefaultMockTip, "Tip height of the mock chain")
	cmd.Flags().DurationVar(&ma.Delay, "delay", 0, "Delay added to every response")
}

func NewMockServerCmd(ma *MockServerArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mock-server",
		Short: "Serve a deterministic mock of the explorer API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serveMock(cmd.Context(), ma)
		},
	}
	ma.AddFlags(cmd)

	bindEnvVars(cmd)

	return cmd
}

func serveMock(ctx context.Context, ma *MockServerArgs) error {
	if ctx == nil {
		ctx = context.Background()
	}

	shutdown, err := setupTracing(ctx, ma.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		err := shutdown(context.WithoutCancel(ctx))
		if err != nil {
			slog.Warn("shutdown tracing", slog.Any("err", err))
		}
	}()

	m := chain.NewMock(ma.Seed, ma.Tip)
	m.Delay = ma.Delay

	lis, err := net.Listen("tcp", ma.Listen)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	srv := &http.Server{
		Handler:           chain.NewMockHandler(m),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("serving mock explorer API",
			slog.String("addr", lis.Addr().String()),
			slog.Uint64("seed", m.Seed),
			slog.Int("tip", m.TipHeight),
		)

		errCh <- srv.Serve(lis)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("serve: %w", err)

	case <-ctx.Done():
		slog.Info("shutting down mock explorer API")

		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		err := srv.Shutdown(sctx)
		if err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}

		return nil
	}
}

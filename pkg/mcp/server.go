package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"slices"
	"time"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/macropower/chainview/pkg/chain"
	"github.com/macropower/chainview/pkg/explorer"
	"github.com/macropower/chainview/pkg/version"
)

// pageSlots is the number of page numbers suggested besides the first and
// last page.
const pageSlots = 8

// Server serves a [chain.Source] as MCP tools.
type Server struct {
	src         chain.Source
	server      *mcp.Server
	tracer      trace.Tracer
	address     string
	blockRows   []int
	addressRows []int
}

// Opt configures a [Server].
type Opt func(*Server)

// WithAllowedRows replaces the page lengths accepted by the block and
// address tools. Empty values keep the explorer defaults.
func WithAllowedRows(blocks, address []int) Opt {
	return func(s *Server) {
		if len(blocks) > 0 {
			s.blockRows = slices.Clone(blocks)
		}
		if len(address) > 0 {
			s.addressRows = slices.Clone(address)
		}
	}
}

// NewServer creates a new MCP server. An empty address serves over stdio.
func NewServer(address string, src chain.Source, opts ...Opt) *Server {
	impl := &mcp.Implementation{
		Name:    name,
		Version: version.GetVersion(),
	}

	s := &Server{
		src:         src,
		server:      mcp.NewServer(impl, &mcp.ServerOptions{Instructions: instructions}),
		tracer:      otel.Tracer("mcp-server"),
		address:     address,
		blockRows:   explorer.BlocksRows,
		addressRows: explorer.AddressRows,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.registerTools()

	return s
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_blocks",
		Description: "List one page of blocks, newest first. Page 1 ends at the chain tip.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: pageSchemas(s.blockRows),
		},
	}, WithTracing(s.tracer, s.handleListBlocks))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_address_transactions",
		Description: "List one page of the transaction history of an address, newest first.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: withAddress(pageSchemas(s.addressRows)),
			Required:   []string{"address"},
		},
	}, WithTracing(s.tracer, s.handleListAddressTxs))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_address_outpoints",
		Description: "List one page of the unspent outputs held by an address.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: withAddress(pageSchemas(s.addressRows)),
			Required:   []string{"address"},
		},
	}, WithTracing(s.tracer, s.handleListAddressOutpoints))
}

func (s *Server) Server() *mcp.Server {
	return s.server
}

// Serve starts the MCP server and blocks until ctx is done or serving
// fails.
func (s *Server) Serve(ctx context.Context) error {
	slog.InfoContext(ctx, "starting MCP server", slog.String("address", s.address))

	if s.address == "" {
		err := s.serveStdio(ctx)
		if err != nil {
			return fmt.Errorf("serve stdio: %w", err)
		}

		return nil
	}

	err := s.serveHTTP(ctx)
	if err != nil {
		return fmt.Errorf("serve HTTP: %w", err)
	}

	return nil
}

func (s *Server) serveHTTP(ctx context.Context) error {
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil)

	server := &http.Server{
		Addr:    s.address,
		Handler: handler,

		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()

		err := server.Shutdown(sctx)
		if err != nil {
			slog.Warn("shutdown MCP server", slog.Any("err", err))
		}
	}()

	err := server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("MCP server failed: %w", err)
	}

	return nil
}

func (s *Server) serveStdio(ctx context.Context) error {
	t := mcp.NewLoggingTransport(mcp.NewStdioTransport(), os.Stderr)

	err := s.server.Run(ctx, t)
	if err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}

	return nil
}

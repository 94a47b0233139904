package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/macropower/chainview/pkg/chain"
	"github.com/macropower/chainview/pkg/config"
	"github.com/macropower/chainview/pkg/explorer"
	"github.com/macropower/chainview/pkg/log"
	"github.com/macropower/chainview/pkg/mcp"
	"github.com/macropower/chainview/pkg/params"
	"github.com/macropower/chainview/pkg/table"
	"github.com/macropower/chainview/pkg/ui"
	"github.com/macropower/chainview/pkg/ui/theme"
)

const (
	cmdExamples = `  # Browse the latest blocks:
  chainview

  # Open the transactions and outpoints of an address:
  chainview --address ecash:qz2708636snqhsxu8wnlka78h6fdp77ar59jrf5035

  # Resume a location, e.g. the fourth page of 50 blocks:
  chainview --location "/blocks?page=3&rows=50"

  # Explore a deterministic local chain without network access:
  chainview --mock --mock-seed 7

  # Share the open explorer with an MCP client:
  chainview --serve-mcp localhost:8081

  # Serve the mock chain for other clients:
  chainview mock-server --listen :8080`
)

type RunArgs struct {
	*RootArgs

	ConfigPath  string
	APIURL      string
	Address     string
	Location    string
	ServeMCP    string
	MockSeed    uint64
	MockTip     int
	MockDelay   time.Duration
	Mock        bool
	WriteConfig bool
	ShowConfig  bool
}

func NewRunArgs(rootArgs *RootArgs) *RunArgs {
	return &RunArgs{
		RootArgs: rootArgs,
	}
}

func (ra *RunArgs) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&ra.ConfigPath, "config", "", "Path to the chainview configuration file")
	cmd.Flags().StringVar(&ra.APIURL, "api-url", "", "Explorer base URL, overrides the configured one")
	cmd.Flags().StringVarP(&ra.Address, "address", "a", "", "Open the view of this address")
	cmd.Flags().StringVarP(&ra.Location, "location", "l", "/blocks", "Initial location path and query")
	cmd.Flags().BoolVar(&ra.Mock, "mock", false, "Use a deterministic in-memory chain instead of the API")
	cmd.Flags().Uint64Var(&ra.MockSeed, "mock-seed", 1, "Seed of the mock chain")
	cmd.Flags().IntVar(&ra.MockTip, "mock-tip", chain.DefaultMockTip, "Tip height of the mock chain")
	cmd.Flags().DurationVar(&ra.MockDelay, "mock-delay", 0, "Delay added to every mock chain call")
	cmd.Flags().StringVar(&ra.ServeMCP, "serve-mcp", "", "Serve explorer pages over MCP at this address while the UI runs")
	cmd.Flags().BoolVar(&ra.WriteConfig, "write-config", false, "Write the default configuration files and exit")
	cmd.Flags().BoolVar(&ra.ShowConfig, "show-config", false, "Print the active configuration and exit")

	cmd.MarkFlagsMutuallyExclusive("address", "location")
	cmd.MarkFlagsMutuallyExclusive("mock", "api-url")

	err := cmd.MarkFlagFilename("config", "yaml", "yml")
	if err != nil {
		panic(fmt.Errorf("mark config flag: %w", err))
	}
}

func NewRunCmd(ra *RunArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "run",
		Short:   "Default command, open the explorer",
		Example: cmdExamples,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, ra)
		},
	}
	ra.AddFlags(cmd)

	bindEnvVars(cmd)

	return cmd
}

func run(cmd *cobra.Command, rc *RunArgs) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	configPath := rc.ConfigPath
	if configPath == "" {
		configPath = config.GetPath()
	}

	err := config.WriteDefault(configPath, rc.WriteConfig)
	if err != nil {
		slog.Error("write default config", slog.Any("err", err))
	}
	if rc.WriteConfig {
		// Errors are fatal when writing was requested.
		return err
	}

	cfg, err := loadConfig(configPath, isTerminal(os.Stderr))
	if err != nil {
		return err
	}

	if rc.APIURL != "" {
		cfg.API.URL = rc.APIURL
	}

	if rc.ShowConfig {
		slog.Info("active configuration", slog.String("path", configPath))

		return showConfig(cmd.OutOrStdout(), cfg)
	}

	shutdown, err := setupTracing(ctx, rc.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		err := shutdown(context.WithoutCancel(ctx))
		if err != nil {
			slog.Warn("shutdown tracing", slog.Any("err", err))
		}
	}()

	src, getter, err := newSource(cfg, rc)
	if err != nil {
		return err
	}

	location := rc.Location
	if rc.Address != "" {
		location = explorer.AddressPath(rc.Address)
	}

	u, err := params.ParseLocation(location)
	if err != nil {
		return fmt.Errorf("parse location %q: %w", location, err)
	}

	t := cfg.UI.GetTheme()
	router := &explorer.Router{
		Source:  src,
		Getter:  getter,
		Blocks:  viewOptions(cfg, cfg.Pagination.Blocks, t),
		Address: viewOptions(cfg, cfg.Pagination.Address, t),
	}

	// The TUI owns the terminal; logs are kept and written on exit.
	logBuf := log.NewCircularBuffer(log.DefaultBufferCapacity)
	logHandler, err := log.CreateHandlerWithStrings(logBuf, rc.LogLevel, rc.LogFormat)
	if err != nil {
		return fmt.Errorf("create log handler: %w", err)
	}

	slog.SetDefault(slog.New(logHandler))

	if rc.ServeMCP != "" {
		srv := mcp.NewServer(rc.ServeMCP, src, mcp.WithAllowedRows(
			cfg.Pagination.Blocks.Allowed,
			cfg.Pagination.Address.Allowed,
		))

		mctx, cancel := context.WithCancel(ctx)
		defer cancel()

		go func() {
			err := srv.Serve(mctx)
			if err != nil {
				slog.Error("MCP server failed", slog.Any("err", err))
			}
		}()
	}

	err = runUI(ctx, ui.Options{
		Router:  router,
		History: params.NewMemoryHistory(u),
		Config:  cfg.UI,
		Tiers:   cfg.Pagination.Tiers,
	})
	flushLogs(cmd.ErrOrStderr(), logBuf)

	if err != nil {
		return fmt.Errorf("ui program failure: %w", err)
	}

	return nil
}

// loadConfig reads the configuration at path. A missing or unreadable file
// falls back to the defaults; an invalid one is an error.
func loadConfig(path string, colored bool) (*config.Config, error) {
	l, err := config.NewLoaderFromFile(path, config.WithColor(colored))
	if err != nil {
		slog.Warn("could not read config, using defaults", slog.Any("err", err))

		return config.NewConfig(), nil
	}

	cfg, err := l.Load()
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", config.ErrInvalidConfig, path, err)
	}

	return cfg, nil
}

func showConfig(w io.Writer, cfg *config.Config) error {
	b, err := cfg.MarshalYAML()
	if err != nil {
		return fmt.Errorf("marshal config yaml: %w", err)
	}

	f, ok := w.(*os.File)
	if !ok || !isTerminal(f) {
		mustN(w.Write(b))

		return nil
	}

	it, err := lexers.Get("yaml").Tokenise(nil, string(b))
	if err != nil {
		mustN(w.Write(b))

		return fmt.Errorf("tokenise config: %w", err)
	}

	err = formatters.Get("terminal256").Format(w, cfg.UI.GetTheme().ChromaStyle, it)
	if err != nil {
		return fmt.Errorf("format config: %w", err)
	}

	return nil
}

// newSource returns the chain source and, for the live API, the getter the
// address transactions table is bound to.
func newSource(cfg *config.Config, rc *RunArgs) (chain.Source, table.Getter, error) {
	if rc.Mock {
		m := chain.NewMock(rc.MockSeed, rc.MockTip)
		m.Delay = rc.MockDelay

		slog.Debug("using mock chain",
			slog.Uint64("seed", m.Seed),
			slog.Int("tip", m.TipHeight),
		)

		return m, nil, nil
	}

	c, err := chain.NewClient(cfg.API.URL,
		chain.WithTimeout(cfg.API.Timeout.Duration),
		chain.WithRetries(uint(max(*cfg.API.Retries, 0))),
		chain.WithMaxElapsedTime(cfg.API.MaxElapsed.Duration),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("create chain client: %w", err)
	}

	return c, c, nil
}

func viewOptions(cfg *config.Config, rows *config.Rows, t *theme.Theme) explorer.Options {
	return explorer.Options{
		Format:      explorer.NewFormatter(cfg.UI.Tag()),
		Table:       []table.Opt{table.WithTheme(t)},
		AllowedRows: rows.Allowed,
		DefaultRows: rows.Default,
	}
}

func flushLogs(w io.Writer, buf *log.CircularBuffer) {
	slog.Debug("flush logs to console",
		slog.Int("count", buf.Size()),
		slog.Int("max", buf.Capacity()),
		slog.Int("dropped", buf.Dropped()),
	)

	_, err := buf.WriteTo(w)
	if err != nil {
		panic(err)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// runUI starts the UI program and blocks until it exits.
func runUI(ctx context.Context, opts ui.Options) error {
	p := ui.NewProgram(ctx, opts, tea.WithContext(ctx))

	_, err := p.Run()
	if err != nil {
		return fmt.Errorf("tea: %w", err)
	}

	return nil
}

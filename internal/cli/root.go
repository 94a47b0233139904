package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/macropower/chainview/pkg/log"
)

const (
	cmdName = "chainview"
	cmdDesc = `Paginated terminal explorer for blocks, transactions and outpoints.`
)

type RootArgs struct {
	LogLevel     string
	LogFormat    string
	OTLPEndpoint string
}

func NewRootArgs() *RootArgs {
	return &RootArgs{}
}

func (ra *RootArgs) AddFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVar(&ra.LogLevel, "log-level", "info", fmt.Sprintf("Log level, one of: %s", log.AllLevels))
	cmd.PersistentFlags().
		StringVar(&ra.LogFormat, "log-format", "text", fmt.Sprintf("Log format, one of: %s", log.AllFormats))
	cmd.PersistentFlags().
		StringVar(&ra.OTLPEndpoint, "otlp-endpoint", "", "Export traces to this OTLP gRPC endpoint")

	var err error

	err = cmd.RegisterFlagCompletionFunc("log-format",
		cobra.FixedCompletions(log.AllFormats, cobra.ShellCompDirectiveNoFileComp),
	)
	if err != nil {
		panic(err)
	}

	err = cmd.RegisterFlagCompletionFunc("log-level",
		cobra.FixedCompletions(log.AllLevels, cobra.ShellCompDirectiveNoFileComp),
	)
	if err != nil {
		panic(err)
	}
}

func NewRootCmd() *cobra.Command {
	args := NewRootArgs()
	runArgs := NewRunArgs(args)

	runCmd := NewRunCmd(runArgs)
	cmd := &cobra.Command{
		Use:               cmdName,
		Short:             cmdDesc,
		Example:           cmdExamples,
		PersistentPreRunE: setupLogging(args),
		Args:              runCmd.Args,
		RunE:              runCmd.RunE,
	}

	args.AddFlags(cmd)
	runArgs.AddFlags(cmd)
	cmd.AddCommand(runCmd)
	cmd.AddCommand(NewMockServerCmd(NewMockServerArgs(args)))

	bindEnvVars(cmd)

	return cmd
}

func setupLogging(rc *RootArgs) func(cmd *cobra.Command, _ []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		logHandler, err := log.CreateHandlerWithStrings(cmd.ErrOrStderr(), rc.LogLevel, rc.LogFormat)
		if err != nil {
			return fmt.Errorf("create log handler: %w", err)
		}

		slog.SetDefault(slog.New(logHandler))

		return nil
	}
}

package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// envPrefix starts the name of every environment variable read by the CLI.
var envPrefix = strings.ToUpper(cmdName) + "_"

// bindEnvVars lets every flag of cmd be set from a CHAINVIEW_<FLAG>
// variable, e.g. --mock-seed from CHAINVIEW_MOCK_SEED. Flags given on the
// command line win over the environment, which wins over the defaults.
// Usages are suffixed with the variable name.
func bindEnvVars(cmd *cobra.Command) {
	for _, fs := range []*pflag.FlagSet{cmd.Flags(), cmd.PersistentFlags()} {
		fs.VisitAll(bindFlagToEnv)
	}
}

func bindFlagToEnv(flag *pflag.Flag) {
	envName := flagToEnvName(flag.Name)

	if !strings.Contains(flag.Usage, envName) {
		flag.Usage = fmt.Sprintf("%s ($%s)", flag.Usage, envName)
	}

	if flag.Changed {
		return
	}

	envValue, ok := os.LookupEnv(envName)
	if !ok {
		return
	}

	err := flag.Value.Set(envValue)
	if err == nil {
		return
	}

	slog.Error("ignore invalid environment variable",
		slog.String("env", envName),
		slog.String("value", envValue),
		slog.Any("err", err),
	)

	// Numeric values are zeroed by a failed Set.
	err = flag.Value.Set(flag.DefValue)
	if err != nil {
		slog.Warn("restore flag default",
			slog.String("flag", flag.Name),
			slog.Any("err", err),
		)
	}
}

// flagToEnvName returns the variable bound to flagName, e.g.
// "log-level" -> "CHAINVIEW_LOG_LEVEL".
func flagToEnvName(flagName string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}

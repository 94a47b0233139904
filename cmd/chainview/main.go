package main

import (
	"context"
	"os"
	"syscall"

	"github.com/charmbracelet/fang"

	"github.com/macropower/chainview/internal/cli"
	"github.com/macropower/chainview/pkg/version"
)

func main() {
	err := fang.Execute(
		context.Background(),
		cli.NewRootCmd(),
		fang.WithVersion(version.GetVersion()),
		fang.WithCommit(version.Revision),
		fang.WithErrorHandler(cli.ErrorHandler),
		fang.WithColorSchemeFunc(cli.ColorSchemeFunc),
		fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM),
	)
	if err != nil {
		os.Exit(1)
	}
}

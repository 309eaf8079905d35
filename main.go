package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/PaulieB14/grc20-publisher/internal/cli"
	"github.com/PaulieB14/grc20-publisher/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		logger := logging.Console(os.Getenv("LOG_LEVEL"))
		logger.Error().Err(err).Msg("grc20 failed")
		os.Exit(1)
	}
}

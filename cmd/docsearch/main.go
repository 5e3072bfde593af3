package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/canonical/docsearch/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		logging.BuildLogger(logLevel).Error("command failed", "error", err)
		stop()
		os.Exit(1)
	}
}

// Package main is the entry point for the NLWeb query server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/nlweb-ai/nlweb-go/cmd/nlweb/app"
	"github.com/nlweb-ai/nlweb-go/pkg/logger"
)

func main() {
	logger.Initialize()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.NewRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

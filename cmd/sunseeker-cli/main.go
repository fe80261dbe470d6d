package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/itsbrianburton/sunseeker-bridge/cmd/sunseeker-cli/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.NewRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

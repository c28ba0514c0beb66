package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/Ngone6325/gofac/v2/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kondate-planner/internal/app"
	"kondate-planner/internal/infrastructure/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &cli{
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		loadConfig: config.LoadConfig,
		build: func(ctx context.Context, cfg *config.Config) (*app.Components, error) {
			return app.Build(ctx, cfg, app.Options{})
		},
		now: time.Now,
	}
	os.Exit(c.run(ctx, os.Args[1:]))
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/zeusync/physics/internal/config"
	"github.com/zeusync/physics/internal/core/observability/log"
	"github.com/zeusync/physics/internal/core/system"
	"github.com/zeusync/physics/internal/injector"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config; defaults are used when empty")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "physics server:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	app, err := injector.InitializeApp(cfg)
	if err != nil {
		return err
	}
	logger := app.Logger
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = app.Manager.InitializeAll(ctx, app.World); err != nil {
		return err
	}
	defer func() {
		if err := app.Manager.ShutdownAll(context.Background()); err != nil {
			logger.Error("shutdown systems", log.Error(err))
		}
	}()

	if err = system.LoadScene(app.World, &cfg.Scene); err != nil {
		return err
	}

	var publish system.AfterTick
	if app.Server != nil {
		publish = func(_ context.Context, w *system.World) error {
			_, err := app.Server.Publish(w.Tick(), w.Store())
			return err
		}
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return app.Manager.Run(ctx, app.World, cfg.Simulation.TickDuration(), publish)
	})
	if app.Server != nil {
		group.Go(func() error { return app.Server.Run(ctx) })
	}

	if err = group.Wait(); err != nil {
		logger.Error("simulation halted", log.Uint64("tick", app.World.Tick()), log.Error(err))
		return err
	}
	logger.Info("simulation stopped", log.Uint64("tick", app.World.Tick()))
	return nil
}

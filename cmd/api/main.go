package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"wings-inventory/internal/config"
	"wings-inventory/internal/server"
	"wings-inventory/internal/store"
	"wings-inventory/pkg/logger"
)

func main() {
	app := &cli.App{
		Name:  "wings-api",
		Usage: "Wings Cafe stock inventory server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "env-file", Value: ".env", Usage: "dotenv file loaded before reading the environment"},
			&cli.StringFlag{Name: "port", Usage: "override PORT"},
			&cli.StringFlag{Name: "store", Usage: "override STORE_DRIVER (memory, bolt, postgres, mysql, redis, surreal)"},
		},
		Action: serve,
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func serve(c *cli.Context) error {
	// 1. Load Env
	cfg, err := config.Load(c.String("env-file"))
	if err != nil {
		return err
	}
	if p := c.String("port"); p != "" {
		cfg.Port = p
	}
	if d := c.String("store"); d != "" {
		cfg.Store.Driver = d
	}

	flush, err := logger.Init(logger.Options{
		Production: cfg.IsProduction(),
		Level:      cfg.LogLevel,
		Filename:   cfg.LogFile,
	})
	if err != nil {
		return err
	}
	defer flush()

	// 2. Setup document store
	backend, err := store.Open(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.Close(); err != nil {
			zap.L().Warn("store close", zap.Error(err))
		}
	}()

	// 3. Wire and serve
	srv, err := server.New(cfg, backend)
	if err != nil {
		return err
	}
	defer srv.Close()

	// Wait for interrupt signal to gracefully shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		return err
	}
	zap.L().Info("Server exited")
	return nil
}

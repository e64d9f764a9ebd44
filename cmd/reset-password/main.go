package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"wings-inventory/internal/config"
	"wings-inventory/internal/repository"
	"wings-inventory/internal/service"
	"wings-inventory/internal/store"
	"wings-inventory/pkg/jwt"
	"wings-inventory/pkg/logger"
)

func main() {
	app := &cli.App{
		Name:  "reset-password",
		Usage: "set a new password for an account and revoke its sessions",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "env-file", Value: ".env"},
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"NEW_PASSWORD"}},
		},
		Action: reset,
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatalf("❌ %v", err)
	}
}

func reset(c *cli.Context) error {
	// 1. Load Env
	cfg, err := config.Load(c.String("env-file"))
	if err != nil {
		return err
	}
	flush, err := logger.Init(logger.Options{Level: "warn"})
	if err != nil {
		return err
	}
	defer flush()

	// 2. Setup document store
	backend, err := store.Open(cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	// 3. Reset
	auth := service.NewAuthService(
		repository.NewAccountRepo(backend),
		repository.NewMemberRepo(backend),
		jwt.NewSigner(cfg.JWTSecret, cfg.Backend.AuthDomain, cfg.SessionTTL),
	)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	email := c.String("email")
	if err := auth.ResetPassword(ctx, email, c.String("password")); err != nil {
		return err
	}
	log.Printf("✅ Password for %s has been reset; existing sessions are revoked.", email)
	return nil
}

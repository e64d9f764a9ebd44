package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"wings-inventory/internal/config"
	"wings-inventory/pkg/database"
)

// Open builds the backend selected by cfg.Store.Driver.
func Open(cfg config.Config) (Backend, error) {
	driver := cfg.Store.Driver
	zap.L().Info("opening document store", zap.String("driver", driver))

	switch driver {
	case "memory":
		return NewMemoryBackend(), nil

	case "bolt":
		if dir := filepath.Dir(cfg.Store.BoltPath); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, errors.Wrapf(ErrRemoteUnavailable, "create %s: %v", dir, err)
			}
		}
		return OpenBolt(cfg.Store.BoltPath)

	case "postgres", "mysql":
		db, err := database.Connect(database.Options{
			Driver:   driver,
			DSN:      cfg.Database.URL,
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			Name:     cfg.Database.Name,
		})
		if err != nil {
			return nil, errors.Wrap(ErrRemoteUnavailable, err.Error())
		}
		return NewGormBackend(db)

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Store.RedisAddr,
			Password: cfg.Store.RedisPassword,
			DB:       cfg.Store.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, errors.Wrapf(ErrRemoteUnavailable, "redis ping %s: %v", cfg.Store.RedisAddr, err)
		}
		return NewRedisBackend(client, cfg.Backend.ProjectID), nil

	case "surreal":
		return OpenSurreal(SurrealConfig{
			URL:       cfg.Store.SurrealURL,
			User:      cfg.Store.SurrealUser,
			Pass:      cfg.Store.SurrealPass,
			Namespace: cfg.Backend.ProjectID,
			Database:  cfg.Store.SurrealDB,
		})

	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

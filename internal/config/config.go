// Package config loads runtime configuration from the environment (optionally
// seeded from a .env file).
package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
)

// Backend is the static configuration block handed to clients at startup. None of
// these values carry business logic: ProjectID namespaces the store, AuthDomain is
// the token issuer and MessagingSenderID tags published events.
type Backend struct {
	APIKey            string `envconfig:"API_KEY" json:"apiKey"`
	AuthDomain        string `envconfig:"AUTH_DOMAIN" default:"wings-cafe.local" json:"authDomain"`
	ProjectID         string `envconfig:"PROJECT_ID" default:"wings-cafe" json:"projectId"`
	StorageBucket     string `envconfig:"STORAGE_BUCKET" json:"storageBucket"`
	MessagingSenderID string `envconfig:"MESSAGING_SENDER_ID" json:"messagingSenderId"`
	AppID             string `envconfig:"APP_ID" json:"appId"`
}

type Store struct {
	Driver string `envconfig:"DRIVER" default:"bolt"` // memory, bolt, postgres, mysql, redis, surreal

	BoltPath string `envconfig:"BOLT_PATH" default:"data/wings.db"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	SurrealURL  string `envconfig:"SURREAL_URL" default:"ws://localhost:8000/rpc"`
	SurrealUser string `envconfig:"SURREAL_USER"`
	SurrealPass string `envconfig:"SURREAL_PASS"`
	SurrealDB   string `envconfig:"SURREAL_DB" default:"inventory"`
}

type Database struct {
	URL      string `envconfig:"DATABASE_URL"`
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT"`
	User     string `envconfig:"DB_USER"`
	Password string `envconfig:"DB_PASSWORD"`
	Name     string `envconfig:"DB_NAME" default:"wings"`
}

type Config struct {
	Env      string `envconfig:"APP_ENV" default:"development"`
	Port     string `envconfig:"PORT" default:"3000"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	LogFile  string `envconfig:"LOG_FILE"`

	JWTSecret     string        `envconfig:"JWT_SECRET" default:"your-super-secret-key-change-in-production"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"24h"`
	SessionSweep  time.Duration `envconfig:"SESSION_SWEEP" default:"1m"`
	FlashTTL      time.Duration `envconfig:"FLASH_TTL" default:"3s"`
	LowStockLevel int           `envconfig:"LOW_STOCK_THRESHOLD" default:"10"`

	Theme     string `envconfig:"THEME" default:"classic"`
	ThemeFile string `envconfig:"THEME_FILE"`

	AMQPURL   string `envconfig:"AMQP_URL"`
	AMQPQueue string `envconfig:"AMQP_QUEUE" default:"inventory.events"`

	SeedAdminEmail    string `envconfig:"SEED_ADMIN_EMAIL"`
	SeedAdminPassword string `envconfig:"SEED_ADMIN_PASSWORD"`

	Backend  Backend  `envconfig:"BACKEND"`
	Store    Store    `envconfig:"STORE"`
	Database Database `envconfig:"DATABASE"`
}

// IsProduction reports whether logging and defaults should use production settings.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads envFile (if present) into the process environment and decodes the
// environment into a Config.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			zap.L().Warn(".env file not found, relying on system env", zap.String("file", envFile))
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Options describes a relational connection. DSN wins over the discrete fields.
type Options struct {
	Driver   string // postgres or mysql
	DSN      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

func (o Options) dsn() string {
	if o.DSN != "" {
		return o.DSN
	}
	if o.Driver == "mysql" {
		port := o.Port
		if port == "" {
			port = "3306"
		}
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			o.User, o.Password, o.Host, port, o.Name)
	}
	port := o.Port
	if port == "" {
		port = "5432"
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		o.Host, o.User, o.Password, o.Name, port,
	)
}

// Connect opens a pooled gorm connection for the configured driver.
func Connect(o Options) (*gorm.DB, error) {
	newLogger := logger.New(
		zap.NewStdLog(zap.L()),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	var dialector gorm.Dialector
	switch o.Driver {
	case "postgres":
		dialector = postgres.New(postgres.Config{
			DSN:                  o.dsn(),
			PreferSimpleProtocol: true, // Disables implicit prepared statements for Supabase Transaction Mode
		})
	case "mysql":
		dialector = mysql.Open(o.dsn())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", o.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newLogger,
		PrepareStmt:    false,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", o.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	zap.L().Info("Database connection established", zap.String("driver", o.Driver))
	return db, nil
}

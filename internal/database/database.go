package database

import (
	"fmt"
	"time"

	_ "github.com/godror/godror" // registers "godror"
	"github.com/jmoiron/sqlx"
	_ "github.com/sijms/go-ora/v2" // registers "oracle"
	"go.uber.org/zap"

	"quizmaster/internal/logger"
)

// NewSQLXOracleDB connects with the given driver ("oracle" for go-ora, "godror")
// and pings before returning.
func NewSQLXOracleDB(driver, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Oracle database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping Oracle database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	logger.Get().Info("Successfully connected to Oracle database", zap.String("driver", driver))
	return db, nil
}

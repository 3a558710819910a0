package database

import (
	"fmt"

	"guide-exam/internal/config"
	"guide-exam/internal/logger"

	_ "github.com/jackc/pgx/v5/stdlib" // Postgres driver, registers "pgx"
	"github.com/jmoiron/sqlx"
	_ "github.com/sijms/go-ora/v2" // Oracle driver, registers "oracle"
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // SQLite driver, registers "sqlite"
)

func init() {
	// sqlx does not know these driver names; repositories write queries with '?' and Rebind.
	sqlx.BindDriver(config.DriverOracle, sqlx.NAMED)
	sqlx.BindDriver(config.DriverSQLite, sqlx.QUESTION)
}

// NewSQLXDB connects to the configured database and verifies the connection.
func NewSQLXDB(cfg config.DBConfig, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", cfg.Driver, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", cfg.Driver, err)
	}

	if cfg.Driver == config.DriverSQLite {
		// SQLite allows a single writer
		db.SetMaxOpenConns(1)
	}

	logger.Get().Info("Connected to database", zap.String("driver", cfg.Driver))
	return db, nil
}

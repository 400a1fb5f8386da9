package repository

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/haircarelog/haircarelog-api/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
)

// OpenPostgres connects with the driver named in cfg ("pgx" or "postgres").
func OpenPostgres(cfg config.DBConfig) (*sqlx.DB, error) {
	switch cfg.Driver {
	case config.DriverPgx, config.DriverPostgres:
	default:
		return nil, fmt.Errorf("repository: driver %q is not a postgres driver", cfg.Driver)
	}

	db, err := sqlx.Connect(cfg.Driver, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("repository: connect %s: %w", cfg.Driver, err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

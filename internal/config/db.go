package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/imedia765/a-051853/internal/logger"
)

// Pool sizing for the member database. The dashboard is read-heavy and
// short-lived, so connections are recycled aggressively.
const (
	dbMaxOpen     = 20
	dbMaxIdle     = 10
	dbIdleTimeout = 5 * time.Minute
	dbLifetime    = time.Hour
	dbPingTimeout = 3 * time.Second
)

var errEmptyDSN = errors.New("config: DB_ADDR is empty")

// NewDB opens the pgx-backed pool and pings it once before handing it out.
func NewDB(dsn string, debug bool) (*sql.DB, error) {
	if dsn == "" {
		return nil, errEmptyDSN
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open member db: %w", err)
	}
	db.SetMaxOpenConns(dbMaxOpen)
	db.SetMaxIdleConns(dbMaxIdle)
	db.SetConnMaxIdleTime(dbIdleTimeout)
	db.SetConnMaxLifetime(dbLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), dbPingTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping member db: %w", err)
	}

	if debug {
		logConnection(ctx, db)
	}
	return db, nil
}

func logConnection(ctx context.Context, db *sql.DB) {
	var role, name, version string
	row := db.QueryRowContext(ctx, "SELECT current_user, current_database(), current_setting('server_version')")
	if err := row.Scan(&role, &name, &version); err != nil {
		logger.Logger.Debug().Err(err).Msg("member db connected; server info unavailable")
		return
	}
	logger.Logger.Debug().
		Str("db_role", role).
		Str("db_name", name).
		Str("pg_version", version).
		Msg("member db connected")
}

package dbx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Supported database/sql driver names.
const (
	DriverPostgres = "pgx"
	DriverMySQL    = "mysql"
)

var ErrUnsupportedDriver = errors.New("unsupported database driver")

// RetryConfig bounds the connectivity check done by Open.
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
}

// DefaultRetry gives a database that is still starting roughly ten seconds.
var DefaultRetry = RetryConfig{MaxAttempts: 5, InitialDelay: 500 * time.Millisecond}

// sqlOpen is a seam for tests.
var sqlOpen = sql.Open

// NormalizeDSN adjusts a DSN for the given driver. MySQL DSNs get
// parseTime=true so DATETIME columns scan into time.Time.
func NormalizeDSN(driver, dsn string) (string, error) {
	switch driver {
	case DriverPostgres:
		return dsn, nil
	case DriverMySQL:
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return "", fmt.Errorf("parse mysql dsn: %w", err)
		}
		cfg.ParseTime = true
		return cfg.FormatDSN(), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
}

// Open opens a pool for driver and pings it with exponential backoff until
// it answers or rc.MaxAttempts is exhausted.
func Open(ctx context.Context, driver, dsn string, rc RetryConfig) (*sql.DB, error) {
	dsn, err := NormalizeDSN(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := sqlOpen(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	r := retry.New[struct{}](retry.Config{
		MaxAttempts:   max(rc.MaxAttempts, 1),
		InitialDelay:  rc.InitialDelay,
		BackoffPolicy: retry.BackoffExponential,
		Multiplier:    2.0,
	})
	_, err = r.Do(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, db.PingContext(ctx)
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	return db, nil
}

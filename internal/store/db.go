// internal/store/db.go
package store

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Connect opens the catalog and pings it once. For SQLite, path is a file
// that must already exist and is opened read-only; for PostgreSQL it is a DSN.
func Connect(ctx context.Context, driver, path string, logger *slog.Logger) (*sqlx.DB, error) {
	dsn, err := catalogDSN(driver, path)
	if err != nil {
		return nil, err
	}
	logger.Info("Attempting to connect to catalog database", slog.String("driver", driver), slog.String("dsn", redactDSN(dsn)))

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := sqlx.ConnectContext(connectCtx, driver, dsn)
	if err != nil {
		logger.Error("Failed to connect to catalog database", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to connect to %s catalog: %w", driver, err)
	}
	if driver == DriverSQLite {
		// A single read-only file does not benefit from a wide pool.
		db.SetMaxOpenConns(4)
	}
	logger.Info("Successfully connected to catalog database.")
	return db, nil
}

func catalogDSN(driver, path string) (string, error) {
	switch driver {
	case DriverSQLite:
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("catalog file %s: %w", path, err)
		}
		return "file:" + path + "?mode=ro&_pragma=busy_timeout(5000)", nil
	case DriverPostgres:
		if path == "" {
			return "", fmt.Errorf("postgres catalog needs a DSN")
		}
		return path, nil
	default:
		return "", fmt.Errorf("unsupported catalog driver %q", driver)
	}
}

// redactDSN hides the password of URL-style DSNs before they are logged.
func redactDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return dsn
	}
	return u.Redacted()
}

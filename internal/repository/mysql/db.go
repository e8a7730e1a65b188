// internal/repository/mysql/db.go
package mysql

import (
	"context"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/haierht/sellthrough/internal/config"
	"github.com/haierht/sellthrough/pkg/logger"
)

// Connect opens a connection to one MySQL database. Callers own the handle
// and are expected to close it when their phase of work is done; the pipeline
// deliberately opens a fresh connection per logical step rather than holding
// one across the whole run.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	mc := mysql.NewConfig()
	mc.Net = "tcp"
	mc.Addr = fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.DBName = cfg.DBName
	mc.ParseTime = true
	mc.Timeout = time.Duration(cfg.ConnectTimeout) * time.Second
	mc.ReadTimeout = time.Duration(cfg.ReadTimeout) * time.Second
	mc.Params = map[string]string{"charset": cfg.Charset}

	db, err := sqlx.Open("mysql", mc.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", cfg.DBName, err)
	}

	// Single-threaded batch work: one connection is enough.
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.ConnectTimeout)*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database %s: %w", cfg.DBName, err)
	}

	logger.Log.Debug().Str("database", cfg.DBName).Str("host", cfg.Host).Msg("Database connection established")
	return db, nil
}

// FindTable returns the first table in the connected database whose name
// matches the given LIKE pattern, or an empty string when none does.
func FindTable(ctx context.Context, db *sqlx.DB, pattern string) (string, error) {
	var names []string
	err := db.SelectContext(ctx, &names, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = DATABASE() AND table_name LIKE ?
		ORDER BY table_name`, pattern)
	if err != nil {
		return "", fmt.Errorf("failed to list tables matching %q: %w", pattern, err)
	}
	if len(names) == 0 {
		return "", nil
	}
	return names[0], nil
}

// Columns returns the column names of a table in ordinal order.
func Columns(ctx context.Context, db *sqlx.DB, table string) ([]string, error) {
	var cols []string
	err := db.SelectContext(ctx, &cols, `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = DATABASE() AND table_name = ?
		ORDER BY ordinal_position`, table)
	if err != nil {
		return nil, fmt.Errorf("failed to describe table %s: %w", table, err)
	}
	return cols, nil
}

// HasColumn reports whether the table carries the named column.
func HasColumn(ctx context.Context, db *sqlx.DB, table, column string) (bool, error) {
	cols, err := Columns(ctx, db, table)
	if err != nil {
		return false, err
	}
	for _, c := range cols {
		if c == column {
			return true, nil
		}
	}
	return false, nil
}

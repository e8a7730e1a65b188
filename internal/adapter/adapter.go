// Package adapter fetches raw stock rows from the external warehouse tables.
// Each source table has its own shape and quirks; an adapter hides them
// behind a uniform key/quantity result.
package adapter

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/haierht/sellthrough/internal/config"
	"github.com/haierht/sellthrough/internal/domain"
	"github.com/haierht/sellthrough/internal/repository/mysql"
	"github.com/haierht/sellthrough/pkg/logger"
)

// Source fetches the usable rows of one warehouse table. keys is the set of
// native identifiers the mapping knows for this source; adapters only return
// rows for those keys, and only rows with a positive quantity.
type Source interface {
	Name() string
	Fetch(ctx context.Context, db *sqlx.DB, keys []string) ([]domain.RawStockRow, error)
}

// fallbackReporter is implemented by sources that can fall back to alternate
// column names when the expected schema is missing.
type fallbackReporter interface {
	SchemaFallbacks() []string
}

// Runner wraps a Source with its database and the per-call connection
// lifecycle: connect, fetch, close.
type Runner struct {
	cfg config.DatabaseConfig
	src Source
}

func NewRunner(cfg config.DatabaseConfig, src Source) *Runner {
	return &Runner{cfg: cfg, src: src}
}

func (r *Runner) Name() string { return r.src.Name() }

// Run opens a fresh connection for this source, fetches its rows and closes
// the connection again.
func (r *Runner) Run(ctx context.Context, keys []string) ([]domain.RawStockRow, error) {
	if len(keys) == 0 {
		logger.Log.Debug().Str("source", r.src.Name()).Msg("No mapped keys for source, skipping")
		return nil, nil
	}

	db, err := mysql.Connect(ctx, r.cfg)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", r.src.Name(), err)
	}
	defer db.Close()

	rows, err := r.src.Fetch(ctx, db, keys)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", r.src.Name(), err)
	}

	logger.Log.Info().Str("source", r.src.Name()).Int("rows", len(rows)).Msg("Fetched stock rows")
	return rows, nil
}

// SchemaFallbacks reports any column fallbacks the wrapped source used.
func (r *Runner) SchemaFallbacks() []string {
	if fr, ok := r.src.(fallbackReporter); ok {
		return fr.SchemaFallbacks()
	}
	return nil
}

// findTable resolves a pattern-named feed table, erroring when absent. The
// feed tables carry export-date suffixes, so discovery happens every run.
func findTable(ctx context.Context, db *sqlx.DB, pattern string) (string, error) {
	table, err := mysql.FindTable(ctx, db, pattern)
	if err != nil {
		return "", err
	}
	if table == "" {
		return "", fmt.Errorf("no table matching %q", pattern)
	}
	return table, nil
}

// scanRows drains a key/quantity result set, dropping unusable rows.
func scanRows(rows *sqlx.Rows) ([]domain.RawStockRow, error) {
	var out []domain.RawStockRow
	for rows.Next() {
		var (
			key []byte
			qty float64
		)
		if err := rows.Scan(&key, &qty); err != nil {
			return nil, fmt.Errorf("failed to scan stock row: %w", err)
		}
		if !usableRow(string(key), qty) {
			continue
		}
		out = append(out, domain.RawStockRow{SourceKey: string(key), Quantity: qty})
	}
	return out, rows.Err()
}

// usableRow is the adapter boundary: rows without a key or without a
// positive quantity never leave the adapter.
func usableRow(key string, qty float64) bool {
	return key != "" && qty > 0
}

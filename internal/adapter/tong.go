package adapter

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/haierht/sellthrough/internal/domain"
)

// tongSource reads the consolidated warehouse feed. The table is a raw
// spreadsheet import with anonymous column names and its header row stored as
// data, so the query filters out the embedded header literals.
type tongSource struct{}

func NewConsolidatedWarehouse() Source { return tongSource{} }

func (tongSource) Name() string { return domain.SourceConsolidated }

func (tongSource) Fetch(ctx context.Context, db *sqlx.DB, keys []string) ([]domain.RawStockRow, error) {
	table, err := findTable(ctx, db, "%tongstore%")
	if err != nil {
		return nil, err
	}

	query, args, err := sqlx.In(fmt.Sprintf(
		"SELECT `__EMPTY_1`, SUM(CAST(`__EMPTY_2` AS SIGNED)) FROM `%s`"+
			" WHERE `__EMPTY_1` IS NOT NULL AND `__EMPTY_1` NOT IN ('', '商品名称', '合计', '_EMPTY_7')"+
			" AND `__EMPTY_2` IS NOT NULL AND CAST(`__EMPTY_2` AS SIGNED) > 0"+
			" AND `__EMPTY_1` IN (?) GROUP BY `__EMPTY_1`",
		table), keys)
	if err != nil {
		return nil, fmt.Errorf("failed to expand key list: %w", err)
	}

	rows, err := db.QueryxContext(ctx, db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()
	return scanRows(rows)
}

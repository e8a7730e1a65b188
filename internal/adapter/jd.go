package adapter

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/haierht/sellthrough/internal/domain"
)

// jdSource reads the JD platform warehouse feed.
type jdSource struct{}

func NewJDWarehouse() Source { return jdSource{} }

func (jdSource) Name() string { return domain.SourceJD }

func (jdSource) Fetch(ctx context.Context, db *sqlx.DB, keys []string) ([]domain.RawStockRow, error) {
	table, err := findTable(ctx, db, "%jdstore%")
	if err != nil {
		return nil, err
	}

	query, args, err := sqlx.In(fmt.Sprintf(
		"SELECT `事业部商品编码`, SUM(CAST(`可用库存` AS SIGNED)) FROM `%s` WHERE CAST(`可用库存` AS SIGNED) > 0 AND `事业部商品编码` IN (?) GROUP BY `事业部商品编码`",
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

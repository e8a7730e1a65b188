package adapter

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/haierht/sellthrough/internal/domain"
)

// jinrongSource reads the finance leaseback warehouse feed. The usable
// quantity is the held quantity minus the portion already redeemed.
type jinrongSource struct{}

func NewFinanceWarehouse() Source { return jinrongSource{} }

func (jinrongSource) Name() string { return domain.SourceFinance }

func (jinrongSource) Fetch(ctx context.Context, db *sqlx.DB, keys []string) ([]domain.RawStockRow, error) {
	table, err := findTable(ctx, db, "%jinrongstore%")
	if err != nil {
		return nil, err
	}

	query, args, err := sqlx.In(fmt.Sprintf(
		"SELECT `型号`, SUM(`数量` - `已赎货`) FROM `%s` WHERE (`数量` - `已赎货`) > 0 AND `型号` IN (?) GROUP BY `型号`",
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

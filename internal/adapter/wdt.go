package adapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/haierht/sellthrough/internal/config"
	"github.com/haierht/sellthrough/internal/domain"
)

// wdtSource reads the in-house stock ledger. The ledger is keyed by the
// canonical spec name directly, so its keys are canonical ids rather than
// mapped identifiers. One instance serves the regular warehouse, another the
// express warehouses.
type wdtSource struct {
	name    string
	express bool
	cfg     config.SourcesConfig
}

// NewRegularWarehouse reads the regular warehouse rows of the stock ledger.
func NewRegularWarehouse(cfg config.SourcesConfig) Source {
	return &wdtSource{name: domain.SourceRegular, cfg: cfg}
}

// NewExpressWarehouse reads the express fulfillment warehouse rows.
func NewExpressWarehouse(cfg config.SourcesConfig) Source {
	return &wdtSource{name: domain.SourceExpress, express: true, cfg: cfg}
}

func (s *wdtSource) Name() string { return s.name }

func (s *wdtSource) Fetch(ctx context.Context, db *sqlx.DB, keys []string) ([]domain.RawStockRow, error) {
	var b strings.Builder
	args := make([]interface{}, 0, len(keys)+8)

	b.WriteString("SELECT spec_name, SUM(stock_num) FROM stock WHERE stock_num > 0")

	if s.express {
		b.WriteString(" AND warehouse_name LIKE ?")
		args = append(args, s.cfg.ExpressWarehousePattern)
	} else {
		inQuery, inArgs, err := sqlx.In(" AND warehouse_name IN (?)", s.cfg.RegularWarehouses)
		if err != nil {
			return nil, fmt.Errorf("failed to expand warehouse list: %w", err)
		}
		b.WriteString(inQuery)
		args = append(args, inArgs...)
	}

	for _, kw := range s.cfg.ExcludedNameKeywords {
		b.WriteString(" AND goods_name NOT LIKE ?")
		args = append(args, "%"+kw+"%")
	}

	inQuery, inArgs, err := sqlx.In(" AND spec_name IN (?)", keys)
	if err != nil {
		return nil, fmt.Errorf("failed to expand spec name list: %w", err)
	}
	b.WriteString(inQuery)
	args = append(args, inArgs...)

	b.WriteString(" GROUP BY spec_name")

	rows, err := db.QueryxContext(ctx, db.Rebind(b.String()), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock ledger: %w", err)
	}
	defer rows.Close()
	return scanRows(rows)
}

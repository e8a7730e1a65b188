// internal/repository/sales.go
package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/haierht/sellthrough/internal/config"
	"github.com/haierht/sellthrough/internal/domain"
	"github.com/haierht/sellthrough/internal/repository/mysql"
	"github.com/haierht/sellthrough/pkg/logger"
)

// Sales table columns.
const (
	colSaleTime   = "交易时间"
	colSaleQty    = "实发数量"
	colSaleAmount = "分摊后总价"
	colSaleSpec   = "规格名称"
	colSaleNote   = "客服备注"
)

// SalesFetcher sums shipped quantities per canonical product for one window.
type SalesFetcher interface {
	WindowSales(ctx context.Context, window domain.SalesWindow, ids []string) (map[string]float64, error)
}

type SalesRepository struct {
	db  config.DatabaseConfig
	cfg config.SalesConfig
}

func NewSalesRepository(db config.DatabaseConfig, cfg config.SalesConfig) *SalesRepository {
	return &SalesRepository{db: db, cfg: cfg}
}

// WindowSales runs one aggregate query per window over its own short-lived
// connection. Orders matching the note or status deny-lists are excluded
// before summing; products absent from the result simply had no sales.
func (r *SalesRepository) WindowSales(ctx context.Context, window domain.SalesWindow, ids []string) (map[string]float64, error) {
	if len(ids) == 0 {
		return map[string]float64{}, nil
	}

	db, err := mysql.Connect(ctx, r.db)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	query, args, err := r.buildQuery(window, ids)
	if err != nil {
		return nil, err
	}
	query = db.Rebind(query)

	rows, err := db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales for window %s: %w", window.Label, err)
	}
	defer rows.Close()

	sums := make(map[string]float64)
	for rows.Next() {
		var (
			id  string
			qty float64
		)
		if err := rows.Scan(&id, &qty); err != nil {
			return nil, fmt.Errorf("failed to scan sales row: %w", err)
		}
		sums[id] = qty
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading sales for window %s: %w", window.Label, err)
	}

	logger.Log.Debug().
		Str("window", window.Label).
		Int("products", len(sums)).
		Msg("Fetched window sales")
	return sums, nil
}

// buildQuery assembles the aggregate statement with the deny-list filters
// expanded into NOT LIKE / <> clauses.
func (r *SalesRepository) buildQuery(window domain.SalesWindow, ids []string) (string, []interface{}, error) {
	var b strings.Builder
	args := make([]interface{}, 0, len(ids)+8)

	fmt.Fprintf(&b,
		"SELECT `%s`, COALESCE(SUM(`%s`), 0) FROM `%s` WHERE `%s` >= ? AND `%s` < ?",
		colSaleSpec, colSaleQty, r.cfg.Table, colSaleTime, colSaleTime)
	args = append(args,
		window.Start.Format("2006-01-02"),
		window.End.Format("2006-01-02"))

	// Refunds and zero-amount placeholder lines do not count as sales.
	fmt.Fprintf(&b, " AND `%s` > 0 AND `%s` > 0", colSaleQty, colSaleAmount)

	for _, frag := range r.cfg.NoteDenySubstrings {
		fmt.Fprintf(&b, " AND COALESCE(`%s`, '') NOT LIKE ?", colSaleNote)
		args = append(args, "%"+frag+"%")
	}
	for _, exact := range r.cfg.NoteDenyExact {
		fmt.Fprintf(&b, " AND COALESCE(`%s`, '') <> ?", colSaleNote)
		args = append(args, exact)
	}
	for _, frag := range r.cfg.StatusDenySubstrings {
		fmt.Fprintf(&b, " AND COALESCE(`%s`, '') NOT LIKE ?", r.cfg.StatusColumn)
		args = append(args, "%"+frag+"%")
	}

	inQuery, inArgs, err := sqlx.In(fmt.Sprintf(" AND `%s` IN (?)", colSaleSpec), ids)
	if err != nil {
		return "", nil, fmt.Errorf("failed to expand product id list: %w", err)
	}
	b.WriteString(inQuery)
	args = append(args, inArgs...)

	fmt.Fprintf(&b, " GROUP BY `%s`", colSaleSpec)
	return b.String(), args, nil
}

package adapter

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/haierht/sellthrough/internal/domain"
	"github.com/haierht/sellthrough/internal/repository/mysql"
	"github.com/haierht/sellthrough/pkg/logger"
)

// rrsSource reads the cloud warehouse feed. Its exports have shipped with two
// different schemas over time, so both the key column and the quantity column
// have a fallback.
type rrsSource struct {
	fallbacks []string
}

func NewCloudWarehouse() Source { return &rrsSource{} }

func (s *rrsSource) Name() string { return domain.SourceCloud }

func (s *rrsSource) SchemaFallbacks() []string { return s.fallbacks }

func (s *rrsSource) Fetch(ctx context.Context, db *sqlx.DB, keys []string) ([]domain.RawStockRow, error) {
	table, err := findTable(ctx, db, "%rrsstore%")
	if err != nil {
		return nil, err
	}

	keyCol, err := s.resolveColumn(ctx, db, table, "商品编码", "社会化物料编码")
	if err != nil {
		return nil, err
	}
	qtyCol, err := s.resolveColumn(ctx, db, table, "可用库存数量", "可用库存")
	if err != nil {
		return nil, err
	}

	query, args, err := sqlx.In(fmt.Sprintf(
		"SELECT `%s`, SUM(CAST(`%s` AS SIGNED)) FROM `%s` WHERE CAST(`%s` AS SIGNED) > 0 AND `%s` IN (?) GROUP BY `%s`",
		keyCol, qtyCol, table, qtyCol, keyCol, keyCol), keys)
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

// resolveColumn prefers the primary column name and falls back to the
// alternate when the export used the older schema, recording the switch.
func (s *rrsSource) resolveColumn(ctx context.Context, db *sqlx.DB, table, primary, fallback string) (string, error) {
	ok, err := mysql.HasColumn(ctx, db, table, primary)
	if err != nil {
		return "", err
	}
	if ok {
		return primary, nil
	}
	ok, err = mysql.HasColumn(ctx, db, table, fallback)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("table %s has neither %q nor %q", table, primary, fallback)
	}
	note := fmt.Sprintf("%s: using %s instead of %s", table, fallback, primary)
	s.fallbacks = append(s.fallbacks, note)
	logger.Log.Warn().Str("source", s.Name()).Str("column", fallback).Msg("Falling back to alternate column")
	return fallback, nil
}

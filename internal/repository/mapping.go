// internal/repository/mapping.go
package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/haierht/sellthrough/internal/config"
	"github.com/haierht/sellthrough/internal/domain"
	"github.com/haierht/sellthrough/internal/repository/mysql"
	"github.com/haierht/sellthrough/pkg/logger"
)

// Mapping table schema. The table itself is discovered by pattern because its
// name carries an export date suffix that changes between uploads.
const (
	mappingTablePattern = "%matchstore%"

	colCanonicalID = "规格名称"
	colCategory    = "品类"
	colBrand       = "品牌"
)

// sourceKeyColumns maps each external source to its key column in the
// mapping table.
var sourceKeyColumns = map[string]string{
	domain.SourceFinance:      "jinrongstore",
	domain.SourceConsolidated: "tongstore",
	domain.SourceJD:           "jdstore",
	domain.SourceCloud:        "rrsstore",
}

// MappingLoader yields the canonical product mapping for a run.
type MappingLoader interface {
	Load(ctx context.Context) ([]domain.SourceMapping, error)
}

type MappingRepository struct {
	cfg config.DatabaseConfig
}

func NewMappingRepository(cfg config.DatabaseConfig) *MappingRepository {
	return &MappingRepository{cfg: cfg}
}

// Load opens a connection, reads the full mapping table and closes the
// connection again. Rows without a usable canonical id or without at least
// one source key are dropped. An unreachable database or a missing table
// degrades to an empty mapping: without it no reconciliation is possible, so
// the run produces an empty report instead of crashing.
func (r *MappingRepository) Load(ctx context.Context) ([]domain.SourceMapping, error) {
	db, err := mysql.Connect(ctx, r.cfg)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Mapping database unreachable, continuing with empty mapping")
		return nil, nil
	}
	defer db.Close()

	table, err := mysql.FindTable(ctx, db, mappingTablePattern)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Mapping table discovery failed, continuing with empty mapping")
		return nil, nil
	}
	if table == "" {
		logger.Log.Warn().Str("pattern", mappingTablePattern).Str("database", r.cfg.DBName).
			Msg("No mapping table found, continuing with empty mapping")
		return nil, nil
	}

	query := fmt.Sprintf(
		"SELECT `%s`, `%s`, `%s`, `jinrongstore`, `tongstore`, `jdstore`, `rrsstore` FROM `%s`",
		colCanonicalID, colCategory, colBrand, table)

	rows, err := db.QueryxContext(ctx, query)
	if err != nil {
		logger.Log.Warn().Err(err).Str("table", table).Msg("Mapping table unreadable, continuing with empty mapping")
		return nil, nil
	}
	defer rows.Close()

	var (
		mappings []domain.SourceMapping
		dropped  int
	)
	for rows.Next() {
		raw := make(map[string]interface{})
		if err := rows.MapScan(raw); err != nil {
			return nil, fmt.Errorf("failed to scan mapping row: %w", err)
		}
		m, ok := parseMappingRow(stringifyRow(raw))
		if !ok {
			dropped++
			continue
		}
		mappings = append(mappings, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading mapping table %s: %w", table, err)
	}

	logger.Log.Info().
		Str("table", table).
		Int("products", len(mappings)).
		Int("dropped", dropped).
		Msg("Loaded product mapping")
	return mappings, nil
}

// parseMappingRow builds a SourceMapping from one raw row. It returns false
// when the row has no canonical id or no usable source key.
func parseMappingRow(row map[string]string) (domain.SourceMapping, bool) {
	id := cleanCell(row[colCanonicalID], colCanonicalID)
	if id == "" {
		return domain.SourceMapping{}, false
	}

	category := cleanCell(row[colCategory], colCategory)
	if category == "" {
		category = domain.CategoryUnclassified
	}

	m := domain.SourceMapping{
		Product: domain.CanonicalProduct{
			ID:       id,
			Category: category,
			Brand:    cleanCell(row[colBrand], colBrand),
		},
		Keys: make(map[string]string),
	}
	for source, col := range sourceKeyColumns {
		if key := cleanCell(row[col], col); key != "" {
			m.Keys[source] = key
		}
	}
	if len(m.Keys) == 0 {
		return domain.SourceMapping{}, false
	}
	return m, true
}

// cleanCell trims a cell and rejects the placeholder values the upstream
// spreadsheet export produces: empty strings, pandas NaN artifacts and cells
// holding the column's own header text.
func cleanCell(value, column string) string {
	v := strings.TrimSpace(value)
	switch v {
	case "", "nan", "None", column:
		return ""
	}
	return v
}

// stringifyRow flattens a MapScan result into strings; the mapping table is
// an opaque spreadsheet import where every column is text.
func stringifyRow(raw map[string]interface{}) map[string]string {
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case nil:
			out[k] = ""
		case []byte:
			out[k] = string(val)
		case string:
			out[k] = val
		default:
			out[k] = fmt.Sprint(val)
		}
	}
	return out
}

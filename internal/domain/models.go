package domain

import (
	"sort"
	"time"
)

// Source identifiers for the warehouse tables feeding the report. The order
// returned by SourceNames is the column order in the aggregated output.
const (
	SourceRegular      = "regular_warehouse"
	SourceExpress      = "express_warehouse"
	SourceFinance      = "finance_leaseback"
	SourceCloud        = "cloud_warehouse"
	SourceConsolidated = "consolidated_warehouse"
	SourceJD           = "jd_warehouse"
)

// SourceNames returns every stock source in stable report order.
func SourceNames() []string {
	return []string{
		SourceRegular,
		SourceExpress,
		SourceFinance,
		SourceCloud,
		SourceConsolidated,
		SourceJD,
	}
}

// CategoryUnclassified is the catch-all bucket for products whose mapping
// row carries no category.
const CategoryUnclassified = "unclassified"

// CanonicalProduct is one row of the product identity mapping.
type CanonicalProduct struct {
	ID       string `db:"canonical_id" json:"canonical_id"`
	Category string `db:"category" json:"category"`
	Brand    string `db:"brand" json:"brand"`
}

// SourceMapping binds a canonical product to its native key in each external
// source that carries one. Sources whose rows are keyed by the canonical id
// itself (the stock ledger) do not appear in Keys.
type SourceMapping struct {
	Product CanonicalProduct
	// Keys maps source name -> the product's native key in that source.
	Keys map[string]string
}

// RawStockRow is one usable quantity row as fetched from a source table,
// keyed by whatever identifier that source uses natively.
type RawStockRow struct {
	SourceKey string
	Quantity  float64
}

// InventoryContribution is a raw row resolved to a canonical product.
type InventoryContribution struct {
	CanonicalID string
	Source      string
	Quantity    float64
}

// AggregatedRow accumulates per-source quantities for one canonical product.
type AggregatedRow struct {
	Product   CanonicalProduct
	PerSource map[string]float64
	Total     float64
}

// Add folds a contribution into the row and keeps Total consistent.
func (r *AggregatedRow) Add(source string, qty float64) {
	if r.PerSource == nil {
		r.PerSource = make(map[string]float64)
	}
	r.PerSource[source] += qty
	r.Total += qty
}

// SalesWindow is a half-open date range [Start, End) used for sales sums.
type SalesWindow struct {
	Label string    `json:"label"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Days returns the window length in whole days.
func (w SalesWindow) Days() int {
	return int(w.End.Sub(w.Start).Hours() / 24)
}

// RatioResult is the outcome of the sell-through computation for one product.
type RatioResult struct {
	DailyAvg float64
	Ratio    float64
	Status   StockStatus
}

// ReportRow is one finished line of the report.
type ReportRow struct {
	CanonicalID      string             `json:"canonical_id"`
	Category         string             `json:"category"`
	Brand            string             `json:"brand"`
	TotalQuantity    float64            `json:"total_quantity"`
	PerSourceQty     map[string]float64 `json:"per_source_quantity"`
	WindowSales      map[string]float64 `json:"window_sales"`
	DailyAvgSales    float64            `json:"daily_avg_sales"`
	Ratio            float64            `json:"ratio"`
	Status           string             `json:"status"`
}

// Diagnostics records what degraded during a run. The pipeline never aborts
// on a bad source or window; it reports the gap here instead.
type Diagnostics struct {
	MappingSize        int  `json:"mapping_size"`
	MappingUnavailable bool `json:"mapping_unavailable,omitempty"`
	Unmatched          map[string]int `json:"unmatched_keys_per_source,omitempty"`
	FailedSources      []string       `json:"failed_sources,omitempty"`
	FailedWindows      []string       `json:"failed_windows,omitempty"`
	SchemaFallbacks    []string       `json:"schema_fallbacks,omitempty"`
}

// Report is the full output of one pipeline run.
type Report struct {
	ReferenceDate time.Time     `json:"reference_date"`
	Windows       []SalesWindow `json:"windows"`
	Rows          []ReportRow   `json:"rows"`
	Diagnostics   Diagnostics   `json:"diagnostics"`
}

// KeyedByCanonicalID indexes mappings by canonical id. Later duplicates win,
// matching last-write semantics of the mapping table export.
func KeyedByCanonicalID(mappings []SourceMapping) map[string]SourceMapping {
	out := make(map[string]SourceMapping, len(mappings))
	for _, m := range mappings {
		out[m.Product.ID] = m
	}
	return out
}

// SortedIDs returns map keys in lexical order, for deterministic iteration.
func SortedIDs[V any](m map[string]V) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

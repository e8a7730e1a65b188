package pipeline

import (
	"sort"

	"github.com/haierht/sellthrough/internal/domain"
)

// Reconciler resolves source-native keys back to canonical products using
// exact string matches against the mapping. The stock ledger sources are
// keyed by the canonical id itself; the feed sources use their mapped keys.
type Reconciler struct {
	// bysource maps source name -> native key -> canonical id.
	bySource map[string]map[string]string
}

func NewReconciler(mappings []domain.SourceMapping) *Reconciler {
	r := &Reconciler{bySource: make(map[string]map[string]string)}
	for _, name := range domain.SourceNames() {
		r.bySource[name] = make(map[string]string)
	}
	for _, m := range mappings {
		id := m.Product.ID
		r.bySource[domain.SourceRegular][id] = id
		r.bySource[domain.SourceExpress][id] = id
		for source, key := range m.Keys {
			if idx, ok := r.bySource[source]; ok {
				idx[key] = id
			}
		}
	}
	return r
}

// Keys returns the native keys the mapping knows for one source, sorted for
// deterministic queries.
func (r *Reconciler) Keys(source string) []string {
	idx := r.bySource[source]
	keys := make([]string, 0, len(idx))
	for k := range idx {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Apply resolves raw rows from one source into canonical contributions.
// Rows whose key the mapping does not know are counted, not dropped silently.
func (r *Reconciler) Apply(source string, rows []domain.RawStockRow) ([]domain.InventoryContribution, int) {
	idx := r.bySource[source]
	var (
		out       []domain.InventoryContribution
		unmatched int
	)
	for _, row := range rows {
		id, ok := idx[row.SourceKey]
		if !ok {
			unmatched++
			continue
		}
		out = append(out, domain.InventoryContribution{
			CanonicalID: id,
			Source:      source,
			Quantity:    row.Quantity,
		})
	}
	return out, unmatched
}

// Aggregator folds contributions into one wide row per canonical product.
type Aggregator struct {
	products map[string]domain.CanonicalProduct
	rows     map[string]*domain.AggregatedRow
}

func NewAggregator(mappings []domain.SourceMapping) *Aggregator {
	products := make(map[string]domain.CanonicalProduct, len(mappings))
	for id, m := range domain.KeyedByCanonicalID(mappings) {
		products[id] = m.Product
	}
	return &Aggregator{
		products: products,
		rows:     make(map[string]*domain.AggregatedRow),
	}
}

func (a *Aggregator) Add(c domain.InventoryContribution) {
	row, ok := a.rows[c.CanonicalID]
	if !ok {
		row = &domain.AggregatedRow{Product: a.products[c.CanonicalID]}
		a.rows[c.CanonicalID] = row
	}
	row.Add(c.Source, c.Quantity)
}

// Rows returns the aggregated rows holding any stock, keyed by canonical id.
// Products with no stock anywhere stay out of the report.
func (a *Aggregator) Rows() map[string]*domain.AggregatedRow {
	out := make(map[string]*domain.AggregatedRow, len(a.rows))
	for id, row := range a.rows {
		if row.Total > 0 {
			out[id] = row
		}
	}
	return out
}

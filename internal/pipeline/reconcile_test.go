package pipeline

import (
	"reflect"
	"testing"

	"github.com/haierht/sellthrough/internal/domain"
)

func testMappings() []domain.SourceMapping {
	return []domain.SourceMapping{
		{
			Product: domain.CanonicalProduct{ID: "FRIDGE-500L", Category: "冰箱", Brand: "海尔"},
			Keys: map[string]string{
				domain.SourceFinance: "JR-FR500",
				domain.SourceCloud:   "RRS-001",
			},
		},
		{
			Product: domain.CanonicalProduct{ID: "WASHER-10KG", Category: "洗衣机", Brand: "海尔"},
			Keys: map[string]string{
				domain.SourceFinance: "JR-WA10",
				domain.SourceJD:      "JD-889",
			},
		},
	}
}

func TestReconcilerKeys(t *testing.T) {
	rec := NewReconciler(testMappings())

	tests := []struct {
		source string
		want   []string
	}{
		{domain.SourceRegular, []string{"FRIDGE-500L", "WASHER-10KG"}},
		{domain.SourceExpress, []string{"FRIDGE-500L", "WASHER-10KG"}},
		{domain.SourceFinance, []string{"JR-FR500", "JR-WA10"}},
		{domain.SourceCloud, []string{"RRS-001"}},
		{domain.SourceJD, []string{"JD-889"}},
		{domain.SourceConsolidated, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			got := rec.Keys(tt.source)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Keys(%s) = %v, want %v", tt.source, got, tt.want)
			}
		})
	}
}

func TestReconcilerApply(t *testing.T) {
	rec := NewReconciler(testMappings())

	rows := []domain.RawStockRow{
		{SourceKey: "JR-FR500", Quantity: 12},
		{SourceKey: "JR-WA10", Quantity: 3},
		{SourceKey: "JR-UNKNOWN", Quantity: 7},
		{SourceKey: "fridge-500l", Quantity: 5}, // case differs, no match
	}

	contributions, unmatched := rec.Apply(domain.SourceFinance, rows)

	if unmatched != 2 {
		t.Errorf("unmatched = %d, want 2", unmatched)
	}
	want := []domain.InventoryContribution{
		{CanonicalID: "FRIDGE-500L", Source: domain.SourceFinance, Quantity: 12},
		{CanonicalID: "WASHER-10KG", Source: domain.SourceFinance, Quantity: 3},
	}
	if !reflect.DeepEqual(contributions, want) {
		t.Errorf("contributions = %v, want %v", contributions, want)
	}
}

func TestAggregator(t *testing.T) {
	agg := NewAggregator(testMappings())

	agg.Add(domain.InventoryContribution{CanonicalID: "FRIDGE-500L", Source: domain.SourceRegular, Quantity: 4})
	agg.Add(domain.InventoryContribution{CanonicalID: "FRIDGE-500L", Source: domain.SourceRegular, Quantity: 6})
	agg.Add(domain.InventoryContribution{CanonicalID: "FRIDGE-500L", Source: domain.SourceCloud, Quantity: 2})

	rows := agg.Rows()
	row, ok := rows["FRIDGE-500L"]
	if !ok {
		t.Fatal("FRIDGE-500L missing from aggregated rows")
	}
	if row.Total != 12 {
		t.Errorf("Total = %v, want 12", row.Total)
	}
	if row.PerSource[domain.SourceRegular] != 10 {
		t.Errorf("regular quantity = %v, want 10", row.PerSource[domain.SourceRegular])
	}
	if row.PerSource[domain.SourceCloud] != 2 {
		t.Errorf("cloud quantity = %v, want 2", row.PerSource[domain.SourceCloud])
	}
	if row.Product.Category != "冰箱" {
		t.Errorf("category = %q, want 冰箱", row.Product.Category)
	}
	if _, ok := rows["WASHER-10KG"]; ok {
		t.Error("WASHER-10KG has no stock and should not appear")
	}
}

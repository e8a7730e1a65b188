package domain

import "testing"

func TestStockStatusString(t *testing.T) {
	tests := []struct {
		status StockStatus
		want   string
	}{
		{StatusSeverelyOverstocked, "severely overstocked"},
		{StatusOverstocked, "overstocked"},
		{StatusNormal, "normal"},
		{StatusFastMoving, "fast-moving"},
		{StatusStockoutRisk, "stockout risk"},
		{StatusNoSalesData, "no sales data"},
		{StatusComputeError, "computation error"},
		{StockStatus(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestAggregatedRowAdd(t *testing.T) {
	var r AggregatedRow
	r.Add(SourceRegular, 3)
	r.Add(SourceRegular, 2)
	r.Add(SourceJD, 1)

	if r.Total != 6 {
		t.Errorf("Total = %v, want 6", r.Total)
	}
	if r.PerSource[SourceRegular] != 5 {
		t.Errorf("regular = %v, want 5", r.PerSource[SourceRegular])
	}
}

func TestKeyedByCanonicalIDLastWins(t *testing.T) {
	mappings := []SourceMapping{
		{Product: CanonicalProduct{ID: "X", Category: "old"}},
		{Product: CanonicalProduct{ID: "X", Category: "new"}},
	}
	byID := KeyedByCanonicalID(mappings)
	if byID["X"].Product.Category != "new" {
		t.Errorf("category = %q, want the later row to win", byID["X"].Product.Category)
	}
}

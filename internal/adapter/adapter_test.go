package adapter

import (
	"context"
	"testing"

	"github.com/haierht/sellthrough/internal/config"
	"github.com/haierht/sellthrough/internal/domain"
)

func TestSourceNames(t *testing.T) {
	cfg := config.SourcesConfig{}
	tests := []struct {
		src  Source
		want string
	}{
		{NewRegularWarehouse(cfg), domain.SourceRegular},
		{NewExpressWarehouse(cfg), domain.SourceExpress},
		{NewFinanceWarehouse(), domain.SourceFinance},
		{NewCloudWarehouse(), domain.SourceCloud},
		{NewConsolidatedWarehouse(), domain.SourceConsolidated},
		{NewJDWarehouse(), domain.SourceJD},
	}
	for _, tt := range tests {
		if got := tt.src.Name(); got != tt.want {
			t.Errorf("Name() = %q, want %q", got, tt.want)
		}
	}
}

func TestRunnerSkipsWithoutKeys(t *testing.T) {
	// No keys means no query; the runner must not even dial the database.
	r := NewRunner(config.DatabaseConfig{Host: "no-such-host"}, NewJDWarehouse())
	rows, err := r.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if rows != nil {
		t.Errorf("rows = %v, want nil", rows)
	}
}

func TestUsableRow(t *testing.T) {
	tests := []struct {
		name string
		key  string
		qty  float64
		want bool
	}{
		{"positive quantity", "FRIDGE-500L", 12, true},
		{"fractional quantity", "FRIDGE-500L", 0.5, true},
		{"zero quantity", "FRIDGE-500L", 0, false},
		{"negative quantity", "FRIDGE-500L", -3, false},
		{"empty key", "", 12, false},
		{"empty key and no stock", "", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := usableRow(tt.key, tt.qty); got != tt.want {
				t.Errorf("usableRow(%q, %v) = %v, want %v", tt.key, tt.qty, got, tt.want)
			}
		})
	}
}

func TestRunnerFallbacks(t *testing.T) {
	if got := NewRunner(config.DatabaseConfig{}, NewJDWarehouse()).SchemaFallbacks(); got != nil {
		t.Errorf("jd fallbacks = %v, want nil", got)
	}
	if got := NewRunner(config.DatabaseConfig{}, NewCloudWarehouse()).SchemaFallbacks(); len(got) != 0 {
		t.Errorf("cloud fallbacks before any fetch = %v, want none", got)
	}
}

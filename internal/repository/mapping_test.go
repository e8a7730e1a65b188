package repository

import (
	"reflect"
	"testing"

	"github.com/haierht/sellthrough/internal/domain"
)

func TestParseMappingRow(t *testing.T) {
	tests := []struct {
		name    string
		row     map[string]string
		want    domain.SourceMapping
		wantOK  bool
	}{
		{
			name: "full row",
			row: map[string]string{
				"规格名称":         "FRIDGE-500L",
				"品类":           "冰箱",
				"品牌":           "海尔",
				"jinrongstore": "JR-FR500",
				"rrsstore":     "RRS-001",
				"tongstore":    "TONG-55",
				"jdstore":      "JD-889",
			},
			want: domain.SourceMapping{
				Product: domain.CanonicalProduct{ID: "FRIDGE-500L", Category: "冰箱", Brand: "海尔"},
				Keys: map[string]string{
					domain.SourceFinance:      "JR-FR500",
					domain.SourceCloud:        "RRS-001",
					domain.SourceConsolidated: "TONG-55",
					domain.SourceJD:           "JD-889",
				},
			},
			wantOK: true,
		},
		{
			name: "single source key is enough",
			row: map[string]string{
				"规格名称":    "WASHER-10KG",
				"jdstore": "JD-889",
			},
			want: domain.SourceMapping{
				Product: domain.CanonicalProduct{ID: "WASHER-10KG", Category: domain.CategoryUnclassified},
				Keys:    map[string]string{domain.SourceJD: "JD-889"},
			},
			wantOK: true,
		},
		{
			name: "nan category falls back to unclassified",
			row: map[string]string{
				"规格名称":    "WASHER-10KG",
				"品类":      "nan",
				"jdstore": "JD-889",
			},
			want: domain.SourceMapping{
				Product: domain.CanonicalProduct{ID: "WASHER-10KG", Category: domain.CategoryUnclassified},
				Keys:    map[string]string{domain.SourceJD: "JD-889"},
			},
			wantOK: true,
		},
		{
			name:   "missing canonical id",
			row:    map[string]string{"jdstore": "JD-889"},
			wantOK: false,
		},
		{
			name:   "nan canonical id",
			row:    map[string]string{"规格名称": "nan", "jdstore": "JD-889"},
			wantOK: false,
		},
		{
			name:   "no source keys",
			row:    map[string]string{"规格名称": "FRIDGE-500L", "品类": "冰箱"},
			wantOK: false,
		},
		{
			name: "placeholder keys are not keys",
			row: map[string]string{
				"规格名称":         "FRIDGE-500L",
				"jinrongstore": "None",
				"rrsstore":     "nan",
				"tongstore":    "tongstore",
				"jdstore":      "  ",
			},
			wantOK: false,
		},
		{
			name: "whitespace trimmed",
			row: map[string]string{
				"规格名称":    " FRIDGE-500L ",
				"jdstore": " JD-889 ",
			},
			want: domain.SourceMapping{
				Product: domain.CanonicalProduct{ID: "FRIDGE-500L", Category: domain.CategoryUnclassified},
				Keys:    map[string]string{domain.SourceJD: "JD-889"},
			},
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseMappingRow(tt.row)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseMappingRow() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCleanCell(t *testing.T) {
	tests := []struct {
		value  string
		column string
		want   string
	}{
		{"FRIDGE-500L", "规格名称", "FRIDGE-500L"},
		{"", "规格名称", ""},
		{"nan", "规格名称", ""},
		{"None", "jdstore", ""},
		{"jdstore", "jdstore", ""},       // column header leaked into data
		{"jdstore", "rrsstore", "jdstore"}, // same text under another column is real
		{"  spaced  ", "品类", "spaced"},
	}

	for _, tt := range tests {
		if got := cleanCell(tt.value, tt.column); got != tt.want {
			t.Errorf("cleanCell(%q, %q) = %q, want %q", tt.value, tt.column, got, tt.want)
		}
	}
}

func TestStringifyRow(t *testing.T) {
	raw := map[string]interface{}{
		"a": []byte("bytes"),
		"b": "text",
		"c": nil,
		"d": int64(7),
	}
	want := map[string]string{"a": "bytes", "b": "text", "c": "", "d": "7"}
	if got := stringifyRow(raw); !reflect.DeepEqual(got, want) {
		t.Errorf("stringifyRow() = %v, want %v", got, want)
	}
}

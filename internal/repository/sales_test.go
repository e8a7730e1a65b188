package repository

import (
	"strings"
	"testing"
	"time"

	"github.com/haierht/sellthrough/internal/config"
	"github.com/haierht/sellthrough/internal/domain"
)

func testSalesRepo() *SalesRepository {
	return NewSalesRepository(config.DatabaseConfig{}, config.SalesConfig{
		Table:                "Daysales",
		StatusColumn:         "订单状态",
		NoteDenySubstrings:   []string{"抽纸", "纸巾"},
		NoteDenyExact:        []string{"不发货"},
		StatusDenySubstrings: []string{"未付款", "已取消"},
	})
}

func testWindow() domain.SalesWindow {
	return domain.SalesWindow{
		Label: "week1",
		Start: time.Date(2025, time.August, 8, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, time.August, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestBuildQueryClauses(t *testing.T) {
	query, args, err := testSalesRepo().buildQuery(testWindow(), []string{"FRIDGE-500L", "WASHER-10KG"})
	if err != nil {
		t.Fatalf("buildQuery() error = %v", err)
	}

	for _, want := range []string{
		"FROM `Daysales`",
		"`交易时间` >= ?",
		"`交易时间` < ?",
		"SUM(`实发数量`)",
		"GROUP BY `规格名称`",
		"`实发数量` > 0",
		"`分摊后总价` > 0",
		"COALESCE(`客服备注`, '') NOT LIKE ?",
		"COALESCE(`客服备注`, '') <> ?",
		"COALESCE(`订单状态`, '') NOT LIKE ?",
		"`规格名称` IN (?, ?)",
	} {
		if !strings.Contains(query, want) {
			t.Errorf("query missing %q:\n%s", want, query)
		}
	}

	// 2 date bounds + 2 note substrings + 1 note exact + 2 status substrings + 2 ids
	if len(args) != 9 {
		t.Errorf("got %d args, want 9: %v", len(args), args)
	}
	if args[0] != "2025-08-08" || args[1] != "2025-08-15" {
		t.Errorf("date bounds = %v, %v", args[0], args[1])
	}
	if args[2] != "%抽纸%" {
		t.Errorf("first note filter = %v, want %%抽纸%%", args[2])
	}
}

func TestBuildQueryDenyListCount(t *testing.T) {
	query, _, err := testSalesRepo().buildQuery(testWindow(), []string{"X"})
	if err != nil {
		t.Fatalf("buildQuery() error = %v", err)
	}
	if got := strings.Count(query, "NOT LIKE"); got != 4 {
		t.Errorf("NOT LIKE clauses = %d, want 4", got)
	}
}

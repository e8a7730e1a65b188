// Package pipeline orchestrates one reconciliation run: load the mapping,
// pull stock from every source, sum sales per window and classify each
// product's sell-through. A failing source or window degrades the report; it
// never aborts the run.
package pipeline

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/haierht/sellthrough/internal/adapter"
	"github.com/haierht/sellthrough/internal/config"
	"github.com/haierht/sellthrough/internal/domain"
	"github.com/haierht/sellthrough/internal/repository"
	"github.com/haierht/sellthrough/pkg/logger"
)

// StockSource is one warehouse feed with its connection lifecycle attached.
// adapter.Runner is the production implementation.
type StockSource interface {
	Name() string
	Run(ctx context.Context, keys []string) ([]domain.RawStockRow, error)
	SchemaFallbacks() []string
}

type Pipeline struct {
	mapping repository.MappingLoader
	sources []StockSource
	sales   repository.SalesFetcher
	log     zerolog.Logger
}

func New(mapping repository.MappingLoader, sources []StockSource, sales repository.SalesFetcher) *Pipeline {
	return &Pipeline{
		mapping: mapping,
		sources: sources,
		sales:   sales,
		log:     logger.With("pipeline"),
	}
}

// Default wires the production pipeline from configuration: the stock ledger
// sources against the stock database and the feed sources against the feeds
// database, in report order.
func Default(cfg *config.Config) *Pipeline {
	sources := []StockSource{
		adapter.NewRunner(cfg.Stock, adapter.NewRegularWarehouse(cfg.Sources)),
		adapter.NewRunner(cfg.Stock, adapter.NewExpressWarehouse(cfg.Sources)),
		adapter.NewRunner(cfg.Feeds, adapter.NewFinanceWarehouse()),
		adapter.NewRunner(cfg.Feeds, adapter.NewCloudWarehouse()),
		adapter.NewRunner(cfg.Feeds, adapter.NewConsolidatedWarehouse()),
		adapter.NewRunner(cfg.Feeds, adapter.NewJDWarehouse()),
	}
	return New(
		repository.NewMappingRepository(cfg.Feeds),
		sources,
		repository.NewSalesRepository(cfg.Feeds, cfg.Sales),
	)
}

// Run executes one full reconciliation for the given reference date and
// returns the report. Nothing here is fatal: an unavailable mapping yields an
// empty report, and everything downstream degrades into diagnostics.
func (p *Pipeline) Run(ctx context.Context, runDate time.Time) (*domain.Report, error) {
	start := time.Now()

	mappings, err := p.mapping.Load(ctx)
	if err != nil {
		p.log.Warn().Err(err).Msg("Mapping unavailable, emitting empty report")
		mappings = nil
	}

	report := &domain.Report{
		ReferenceDate: runDate,
		Windows:       Windows(runDate),
		Rows:          []domain.ReportRow{},
		Diagnostics: domain.Diagnostics{
			MappingSize:        len(mappings),
			MappingUnavailable: err != nil,
			Unmatched:          make(map[string]int),
		},
	}
	if len(mappings) == 0 {
		if err == nil {
			p.log.Warn().Msg("Mapping is empty, emitting empty report")
		}
		return report, nil
	}

	rec := NewReconciler(mappings)
	agg := NewAggregator(mappings)
	p.collectStock(ctx, rec, agg, report)

	rows := agg.Rows()
	sales := p.collectSales(ctx, report, domain.SortedIDs(rows))

	for _, id := range domain.SortedIDs(rows) {
		report.Rows = append(report.Rows, buildRow(rows[id], sales[id], report.Windows))
	}
	sortRows(report.Rows)

	p.log.Info().
		Int("products", len(report.Rows)).
		Int("failed_sources", len(report.Diagnostics.FailedSources)).
		Int("failed_windows", len(report.Diagnostics.FailedWindows)).
		Dur("elapsed", time.Since(start)).
		Msg("Run complete")
	return report, nil
}

// collectStock pulls every source in order, folding rows into the aggregator
// and degradations into the diagnostics.
func (p *Pipeline) collectStock(ctx context.Context, rec *Reconciler, agg *Aggregator, report *domain.Report) {
	for _, src := range p.sources {
		rows, err := src.Run(ctx, rec.Keys(src.Name()))
		if err != nil {
			p.log.Error().Err(err).Str("source", src.Name()).Msg("Source failed, continuing without it")
			report.Diagnostics.FailedSources = append(report.Diagnostics.FailedSources, src.Name())
			continue
		}

		contributions, unmatched := rec.Apply(src.Name(), rows)
		if unmatched > 0 {
			report.Diagnostics.Unmatched[src.Name()] = unmatched
		}
		for _, c := range contributions {
			agg.Add(c)
		}
		report.Diagnostics.SchemaFallbacks = append(report.Diagnostics.SchemaFallbacks, src.SchemaFallbacks()...)
	}
}

// collectSales sums shipped quantities per product for every window. A failed
// window is recorded and contributes zero.
func (p *Pipeline) collectSales(ctx context.Context, report *domain.Report, ids []string) map[string]map[string]float64 {
	perProduct := make(map[string]map[string]float64, len(ids))
	for _, w := range report.Windows {
		sums, err := p.sales.WindowSales(ctx, w, ids)
		if err != nil {
			p.log.Error().Err(err).Str("window", w.Label).Msg("Sales window failed, treating as zero")
			report.Diagnostics.FailedWindows = append(report.Diagnostics.FailedWindows, w.Label)
			continue
		}
		for id, qty := range sums {
			if perProduct[id] == nil {
				perProduct[id] = make(map[string]float64)
			}
			perProduct[id][w.Label] = qty
		}
	}
	return perProduct
}

func buildRow(agg *domain.AggregatedRow, windowSales map[string]float64, windows []domain.SalesWindow) domain.ReportRow {
	// Every window appears in the row, zero when nothing sold, so the report
	// layer never has to distinguish absent from empty.
	normalized := make(map[string]float64, len(windows))
	for _, w := range windows {
		normalized[w.Label] = windowSales[w.Label]
	}
	windowSales = normalized

	result := ComputeRatio(agg.Total, DailyAverage(windowSales))
	return domain.ReportRow{
		CanonicalID:   agg.Product.ID,
		Category:      agg.Product.Category,
		Brand:         agg.Product.Brand,
		TotalQuantity: agg.Total,
		PerSourceQty:  agg.PerSource,
		WindowSales:   windowSales,
		DailyAvgSales: result.DailyAvg,
		Ratio:         result.Ratio,
		Status:        result.Status.String(),
	}
}

// sortRows orders the report by category weight: categories holding the most
// stock first, products within a category by their own totals, canonical id
// as the final tiebreak.
func sortRows(rows []domain.ReportRow) {
	categoryTotals := make(map[string]float64)
	for _, r := range rows {
		categoryTotals[r.Category] += r.TotalQuantity
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Category != b.Category {
			if categoryTotals[a.Category] != categoryTotals[b.Category] {
				return categoryTotals[a.Category] > categoryTotals[b.Category]
			}
			return a.Category < b.Category
		}
		if a.TotalQuantity != b.TotalQuantity {
			return a.TotalQuantity > b.TotalQuantity
		}
		return a.CanonicalID < b.CanonicalID
	})
}

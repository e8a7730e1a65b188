package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/haierht/sellthrough/internal/cache"
	"github.com/haierht/sellthrough/internal/config"
	"github.com/haierht/sellthrough/internal/domain"
	"github.com/haierht/sellthrough/internal/pipeline"
	"github.com/haierht/sellthrough/pkg/logger"
)

func main() {
	app := &cli.App{
		Name:  "sellthrough",
		Usage: "Reconcile warehouse inventory and compute sell-through ratios",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run the reconciliation and write the report",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "date",
						Usage: "Reference date (YYYY-MM-DD), defaults to today",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the JSON report to this file instead of stdout",
					},
					&cli.BoolFlag{
						Name:  "refresh",
						Usage: "Bypass the report cache and recompute",
					},
				},
				Action: runReport,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("Command failed")
	}
}

func runReport(c *cli.Context) error {
	cfg := config.Load()
	logger.SetLevel(cfg.LogLevel)

	runDate := time.Now()
	if raw := c.String("date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --date %q: %w", raw, err)
		}
		runDate = parsed
	}

	reportCache, err := cache.NewReportCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Cache unavailable, continuing without it")
		reportCache = cache.NewNoopReportCache()
	}

	report, err := loadOrCompute(c, cfg, reportCache, runDate)
	if err != nil {
		return err
	}

	return writeReport(c.String("output"), report)
}

func loadOrCompute(c *cli.Context, cfg *config.Config, reportCache cache.ReportCache, runDate time.Time) (*domain.Report, error) {
	ctx := c.Context

	if !c.Bool("refresh") {
		cached, ok, err := reportCache.Get(ctx, runDate)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("Cache read failed")
		}
		if ok {
			logger.Log.Info().Time("date", runDate).Msg("Serving cached report")
			return cached, nil
		}
	}

	report, err := pipeline.Default(cfg).Run(ctx, runDate)
	if err != nil {
		return nil, err
	}

	if err := reportCache.Set(ctx, runDate, report); err != nil {
		logger.Log.Warn().Err(err).Msg("Cache write failed")
	}
	return report, nil
}

func writeReport(path string, report *domain.Report) error {
	payload, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	payload = append(payload, '\n')

	if path == "" {
		_, err = os.Stdout.Write(payload)
		return err
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("failed to write report to %s: %w", path, err)
	}
	logger.Log.Info().Str("path", path).Int("rows", len(report.Rows)).Msg("Report written")
	return nil
}

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/haierht/sellthrough/internal/config"
	"github.com/haierht/sellthrough/internal/domain"
)

const reportKeyPrefix = "sellthrough:report"

// ReportCache stores finished reports keyed by reference date, so repeated
// runs for the same day can be served without touching the databases.
type ReportCache interface {
	Get(ctx context.Context, date time.Time) (*domain.Report, bool, error)
	Set(ctx context.Context, date time.Time, report *domain.Report) error
	Invalidate(ctx context.Context, date time.Time) error
}

type redisReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopReportCache struct{}

func NewReportCache(cfg config.CacheConfig) (ReportCache, error) {
	if !cfg.Enabled {
		return &noopReportCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisReportCache{client: client, ttl: ttl}, nil
}

func NewNoopReportCache() ReportCache {
	return &noopReportCache{}
}

func reportKey(date time.Time) string {
	return fmt.Sprintf("%s:%s", reportKeyPrefix, date.Format("2006-01-02"))
}

func (c *redisReportCache) Get(ctx context.Context, date time.Time) (*domain.Report, bool, error) {
	payload, err := c.client.Get(ctx, reportKey(date)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var report domain.Report
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, false, fmt.Errorf("decode report cache: %w", err)
	}
	return &report, true, nil
}

func (c *redisReportCache) Set(ctx context.Context, date time.Time, report *domain.Report) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report cache: %w", err)
	}
	if err := c.client.Set(ctx, reportKey(date), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisReportCache) Invalidate(ctx context.Context, date time.Time) error {
	if err := c.client.Del(ctx, reportKey(date)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (c *noopReportCache) Get(ctx context.Context, date time.Time) (*domain.Report, bool, error) {
	return nil, false, nil
}

func (c *noopReportCache) Set(ctx context.Context, date time.Time, report *domain.Report) error {
	return nil
}

func (c *noopReportCache) Invalidate(ctx context.Context, date time.Time) error {
	return nil
}

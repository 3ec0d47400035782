package service

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/coaching-admin-api/internal/models"
	"github.com/noah-isme/coaching-admin-api/pkg/database"
	appErrors "github.com/noah-isme/coaching-admin-api/pkg/errors"
)

// ReportOptions carries the collaborators shared by the report services.
type ReportOptions struct {
	Cache        *CacheService
	Metrics      *MetricsService
	Logger       *zap.Logger
	QueryTimeout time.Duration
	CacheTTL     time.Duration
	Now          func() time.Time
}

type reportGenerator struct {
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
	timeout time.Duration
	ttl     time.Duration
	now     func() time.Time
}

func newReportGenerator(opts ReportOptions) reportGenerator {
	g := reportGenerator{
		cache:   opts.Cache,
		metrics: opts.Metrics,
		logger:  opts.Logger,
		timeout: opts.QueryTimeout,
		ttl:     opts.CacheTTL,
		now:     opts.Now,
	}
	if g.logger == nil {
		g.logger = zap.NewNop()
	}
	if g.now == nil {
		g.now = time.Now
	}
	return g
}

// observeQuery times one data-layer fetch.
func (g reportGenerator) observeQuery(label string, start time.Time) {
	g.metrics.ObserveDBQuery(label, time.Since(start))
}

// generate runs the cache lookup, the bounded fetch-and-aggregate step and the cache store for one report.
// A fetch failure aborts the whole report and surfaces as a report failure.
func generate[T any](ctx context.Context, g reportGenerator, kind models.ReportType, scope models.ReportScope, build func(context.Context) (*T, error)) (*T, bool, error) {
	start := time.Now()
	key := ReportKey(kind, scope)

	var cached T
	if hit, err := g.cache.Get(ctx, key, &cached); err == nil && hit {
		g.metrics.ObserveReport(kind, ReportOutcomeCached, time.Since(start))
		return &cached, true, nil
	}

	fetchCtx, cancel := database.WithTimeout(ctx, g.timeout)
	defer cancel()

	report, err := build(fetchCtx)
	if err != nil {
		g.metrics.ObserveReport(kind, ReportOutcomeFailed, time.Since(start))
		g.logger.Error("report generation failed",
			zap.String("kind", string(kind)),
			zap.String("scope", scope.Key()),
			zap.Error(err),
		)
		return nil, false, appErrors.DataAccess(err)
	}

	_ = g.cache.Set(ctx, key, report, g.ttl)
	g.metrics.ObserveReport(kind, ReportOutcomeGenerated, time.Since(start))
	return report, false, nil
}

func percentage(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) * 100 / float64(total)))
}

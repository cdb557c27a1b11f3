package dashboard

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Service coordinates summary computation with the cache layer. Stateless per
// call; safe for unbounded concurrent use.
type Service struct {
	repo  Repository
	cache *Cache
}

// NewService wires a Repository with a Cache helper.
func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// Summarize computes the KPI summary for the predicate. now is an explicit
// input so overdue/upcoming classification is deterministic and testable.
func (s *Service) Summarize(ctx context.Context, predicate FilterPredicate, now time.Time) (KpiSummary, error) {
	loader := func(ctx context.Context) (interface{}, error) {
		return s.compute(ctx, predicate, now)
	}

	if s.cache == nil {
		value, err := loader(ctx)
		if err != nil {
			return KpiSummary{}, err
		}
		return value.(KpiSummary), nil
	}

	key, err := s.cache.BuildKey(ctx, keySummary(predicate, now)...)
	if err != nil {
		return KpiSummary{}, err
	}
	var summary KpiSummary
	if err := s.cache.FetchJSON(ctx, key, &summary, loader); err != nil {
		return KpiSummary{}, err
	}
	return summary, nil
}

// compute fans the three aggregation queries out concurrently and assembles
// the summary once all succeed. A failure is surfaced, never papered over
// with zero totals.
func (s *Service) compute(ctx context.Context, predicate FilterPredicate, now time.Time) (KpiSummary, error) {
	var (
		classes  ClassTotals
		overdue  BucketTotals
		upcoming BucketTotals
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		classes, err = s.repo.TransactionTotals(gctx, predicate)
		return err
	})
	g.Go(func() error {
		var err error
		overdue, err = s.repo.OverdueTotals(gctx, predicate, now)
		return err
	})
	g.Go(func() error {
		var err error
		upcoming, err = s.repo.UpcomingTotals(gctx, predicate, now)
		return err
	})
	if err := g.Wait(); err != nil {
		return KpiSummary{}, err
	}

	return KpiSummary{
		TotalRevenue: classes.Revenue,
		TotalExpense: classes.Expense,
		LiquidProfit: classes.Revenue.Sub(classes.Expense),
		Overdue: OverdueAccounts{
			Receivable: overdue.Receivable,
			Payable:    overdue.Payable,
			Total:      overdue.Receivable.Add(overdue.Payable),
		},
		Upcoming: UpcomingAccounts{
			Receivable: upcoming.Receivable,
			Payable:    upcoming.Payable,
		},
		Metadata: SummaryMetadata{Period: predicate.Range},
	}, nil
}

package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// MOCK REPOSITORY
// ============================================================================

type dims struct {
	category *int64
	product  *int64
	customer *int64
	region   string
}

type memTx struct {
	kind     string
	amount   decimal.Decimal
	occurred time.Time
	dims
}

type memAccount struct {
	kind    string
	amount  decimal.Decimal
	due     time.Time
	settled bool
	dims
}

type mockRepo struct {
	txs      []memTx
	accounts []memAccount

	txCalls       int
	overdueCalls  int
	upcomingCalls int
	err           error
}

func matches(p FilterPredicate, d dims) bool {
	if p.CategoryID != nil && (d.category == nil || *d.category != *p.CategoryID) {
		return false
	}
	if p.ProductID != nil && (d.product == nil || *d.product != *p.ProductID) {
		return false
	}
	if p.CustomerID != nil && (d.customer == nil || *d.customer != *p.CustomerID) {
		return false
	}
	if p.Region != "" && d.region != p.Region {
		return false
	}
	return true
}

func inRange(day time.Time, r DateRange) bool {
	return !day.Before(r.Start) && !day.After(r.End)
}

func (m *mockRepo) TransactionTotals(ctx context.Context, p FilterPredicate) (ClassTotals, error) {
	m.txCalls++
	if m.err != nil {
		return ClassTotals{}, m.err
	}
	var totals ClassTotals
	for _, tx := range m.txs {
		if !inRange(tx.occurred, p.Range) || !matches(p, tx.dims) {
			continue
		}
		switch tx.kind {
		case "REVENUE":
			totals.Revenue = totals.Revenue.Add(tx.amount)
		case "EXPENSE":
			totals.Expense = totals.Expense.Add(tx.amount)
		}
	}
	return totals, nil
}

func (m *mockRepo) OverdueTotals(ctx context.Context, p FilterPredicate, now time.Time) (BucketTotals, error) {
	m.overdueCalls++
	if m.err != nil {
		return BucketTotals{}, m.err
	}
	var totals BucketTotals
	for _, acc := range m.accounts {
		if acc.settled || !acc.due.Before(now) || !matches(p, acc.dims) {
			continue
		}
		totals = addBucket(totals, acc)
	}
	return totals, nil
}

func (m *mockRepo) UpcomingTotals(ctx context.Context, p FilterPredicate, now time.Time) (BucketTotals, error) {
	m.upcomingCalls++
	if m.err != nil {
		return BucketTotals{}, m.err
	}
	var totals BucketTotals
	for _, acc := range m.accounts {
		if acc.settled || acc.due.Before(now) || !inRange(acc.due, p.Range) || !matches(p, acc.dims) {
			continue
		}
		totals = addBucket(totals, acc)
	}
	return totals, nil
}

func addBucket(totals BucketTotals, acc memAccount) BucketTotals {
	switch acc.kind {
	case "RECEIVABLE":
		totals.Receivable = totals.Receivable.Add(acc.amount)
	case "PAYABLE":
		totals.Payable = totals.Payable.Add(acc.amount)
	}
	return totals
}

func money(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func int64p(v int64) *int64 { return &v }

func seededDashboardRepo() *mockRepo {
	return &mockRepo{
		txs: []memTx{
			{kind: "REVENUE", amount: money("1000.50"), occurred: date(2024, time.February, 10), dims: dims{category: int64p(4), region: "Sudeste"}},
			{kind: "REVENUE", amount: money("2499.50"), occurred: date(2024, time.May, 2), dims: dims{category: int64p(4), region: "Nordeste"}},
			{kind: "EXPENSE", amount: money("700.25"), occurred: date(2024, time.March, 15), dims: dims{category: int64p(1), region: "Sudeste"}},
			{kind: "EXPENSE", amount: money("120.00"), occurred: date(2023, time.December, 1), dims: dims{category: int64p(1), region: "Sudeste"}}, // outside window
		},
		accounts: []memAccount{
			{kind: "PAYABLE", amount: money("34853.00"), due: date(2023, time.June, 1), dims: dims{region: "Sudeste"}},
			{kind: "RECEIVABLE", amount: money("500.00"), due: date(2024, time.April, 1), settled: true, dims: dims{region: "Sudeste"}},
			{kind: "RECEIVABLE", amount: money("900.00"), due: date(2024, time.August, 20), dims: dims{region: "Nordeste"}},
			{kind: "PAYABLE", amount: money("150.75"), due: date(2024, time.July, 1), dims: dims{region: "Sudeste"}},
		},
	}
}

func yearRange(t *testing.T) FilterPredicate {
	t.Helper()
	predicate, err := ComposeFilter(RawFilter{
		Start: date(2024, time.January, 1),
		End:   date(2024, time.December, 31),
	})
	require.NoError(t, err)
	return predicate
}

// ============================================================================
// TESTS
// ============================================================================

func TestSummarizeComputesLiquidProfit(t *testing.T) {
	svc := NewService(seededDashboardRepo(), nil)
	now := date(2024, time.June, 1)

	summary, err := svc.Summarize(context.Background(), yearRange(t), now)
	require.NoError(t, err)

	assert.True(t, summary.TotalRevenue.Equal(money("3500.00")), "revenue %s", summary.TotalRevenue)
	assert.True(t, summary.TotalExpense.Equal(money("700.25")), "expense %s", summary.TotalExpense)
	assert.True(t, summary.LiquidProfit.Equal(summary.TotalRevenue.Sub(summary.TotalExpense)))
	assert.Equal(t, date(2024, time.January, 1), summary.Metadata.Period.Start)
}

func TestSummarizeOverdueIgnoresQueryWindow(t *testing.T) {
	svc := NewService(seededDashboardRepo(), nil)
	now := date(2024, time.June, 1)

	summary, err := svc.Summarize(context.Background(), yearRange(t), now)
	require.NoError(t, err)

	// Due 2023-06-01, outside the 2024 window, still overdue against now.
	assert.True(t, summary.Overdue.Payable.Equal(money("34853.00")), "overdue payable %s", summary.Overdue.Payable)
	assert.True(t, summary.Overdue.Receivable.IsZero())
	assert.True(t, summary.Overdue.Total.Equal(summary.Overdue.Receivable.Add(summary.Overdue.Payable)))
}

func TestSummarizeUpcomingStaysInsideWindow(t *testing.T) {
	svc := NewService(seededDashboardRepo(), nil)
	now := date(2024, time.June, 1)

	summary, err := svc.Summarize(context.Background(), yearRange(t), now)
	require.NoError(t, err)

	// Settled accounts never count; due dates before now belong to overdue.
	assert.True(t, summary.Upcoming.Receivable.Equal(money("900.00")), "upcoming receivable %s", summary.Upcoming.Receivable)
	assert.True(t, summary.Upcoming.Payable.Equal(money("150.75")), "upcoming payable %s", summary.Upcoming.Payable)
}

func TestSummarizeNarrowsMonotonically(t *testing.T) {
	repo := seededDashboardRepo()
	svc := NewService(repo, nil)
	now := date(2024, time.June, 1)
	ctx := context.Background()

	base, err := svc.Summarize(ctx, yearRange(t), now)
	require.NoError(t, err)

	narrowed := yearRange(t)
	narrowed.Region = "Sudeste"
	filtered, err := svc.Summarize(ctx, narrowed, now)
	require.NoError(t, err)

	assert.True(t, filtered.TotalRevenue.LessThanOrEqual(base.TotalRevenue))
	assert.True(t, filtered.TotalExpense.LessThanOrEqual(base.TotalExpense))
	assert.True(t, filtered.Overdue.Total.LessThanOrEqual(base.Overdue.Total))
	assert.True(t, filtered.LiquidProfit.Equal(filtered.TotalRevenue.Sub(filtered.TotalExpense)))

	// The region filter must narrow every figure, not just the sums.
	assert.True(t, filtered.Upcoming.Receivable.IsZero())
	assert.True(t, filtered.Upcoming.Payable.Equal(money("150.75")))
}

func TestSummarizeCaches(t *testing.T) {
	repo := seededDashboardRepo()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()

	svc := NewService(repo, NewCache(client, time.Minute))
	ctx := context.Background()
	now := date(2024, time.June, 1)

	summary, err := svc.Summarize(ctx, yearRange(t), now)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.txCalls)

	cached, err := svc.Summarize(ctx, yearRange(t), now)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.txCalls, "second call must hit the cache")
	assert.True(t, cached.LiquidProfit.Equal(summary.LiquidProfit))
	assert.True(t, cached.Overdue.Total.Equal(summary.Overdue.Total))

	// A different evaluation date is a different key: overdue depends on it.
	_, err = svc.Summarize(ctx, yearRange(t), date(2024, time.July, 2))
	require.NoError(t, err)
	assert.Equal(t, 2, repo.txCalls)

	// Bumping the version invalidates previous keys.
	require.NoError(t, svc.cache.Bump(ctx))
	_, err = svc.Summarize(ctx, yearRange(t), now)
	require.NoError(t, err)
	assert.Equal(t, 3, repo.txCalls)
}

func TestSummarizeSurfacesStoreFailures(t *testing.T) {
	repo := seededDashboardRepo()
	repo.err = errors.New("connection refused")
	svc := NewService(repo, nil)

	_, err := svc.Summarize(context.Background(), yearRange(t), date(2024, time.June, 1))
	require.Error(t, err)
	assert.Equal(t, 1, repo.txCalls)
}

package dashboard

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/meridian-fin/meridian/internal/platform/db"
)

// ClassTotals carries the revenue/expense partition sums.
type ClassTotals struct {
	Revenue decimal.Decimal
	Expense decimal.Decimal
}

// BucketTotals carries receivable/payable sums for one due-date bucket.
type BucketTotals struct {
	Receivable decimal.Decimal
	Payable    decimal.Decimal
}

// Repository provides the read-only aggregation queries.
type Repository interface {
	TransactionTotals(ctx context.Context, predicate FilterPredicate) (ClassTotals, error)
	OverdueTotals(ctx context.Context, predicate FilterPredicate, now time.Time) (BucketTotals, error)
	UpcomingTotals(ctx context.Context, predicate FilterPredicate, now time.Time) (BucketTotals, error)
}

type repository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewRepository constructs a PostgreSQL-backed repository.
func NewRepository(pool *pgxpool.Pool, logger *slog.Logger) Repository {
	return &repository{pool: pool, logger: logger}
}

// dimFilters appends the optional dimension predicates. Every query the
// summary issues goes through here so filtering narrows all figures alike.
func dimFilters(query string, args []any, p FilterPredicate) (string, []any) {
	if p.CategoryID != nil {
		args = append(args, *p.CategoryID)
		query += ` AND category_id = $` + strconv.Itoa(len(args))
	}
	if p.ProductID != nil {
		args = append(args, *p.ProductID)
		query += ` AND product_id = $` + strconv.Itoa(len(args))
	}
	if p.Region != "" {
		args = append(args, p.Region)
		query += ` AND region = $` + strconv.Itoa(len(args))
	}
	if p.CustomerID != nil {
		args = append(args, *p.CustomerID)
		query += ` AND customer_id = $` + strconv.Itoa(len(args))
	}
	return query, args
}

// TransactionTotals sums revenue and expense transactions inside the window.
// Sums travel as text to keep numeric precision out of float64.
func (r *repository) TransactionTotals(ctx context.Context, p FilterPredicate) (ClassTotals, error) {
	query := `
		SELECT kind, COALESCE(SUM(amount), 0)::text
		FROM transactions
		WHERE occurred_at BETWEEN $1 AND $2`
	args := []any{p.Range.Start, p.Range.End}
	query, args = dimFilters(query, args, p)
	query += ` GROUP BY kind`

	var totals ClassTotals
	err := db.WithRetry(ctx, r.logger, func(ctx context.Context) error {
		rows, err := r.pool.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		totals = ClassTotals{}
		for rows.Next() {
			var kind, sum string
			if err := rows.Scan(&kind, &sum); err != nil {
				return err
			}
			amount, err := decimal.NewFromString(sum)
			if err != nil {
				return err
			}
			switch kind {
			case "REVENUE":
				totals.Revenue = amount
			case "EXPENSE":
				totals.Expense = amount
			}
		}
		return rows.Err()
	})
	if err != nil {
		return ClassTotals{}, err
	}
	return totals, nil
}

// OverdueTotals sums unsettled accounts due strictly before now. Overdue
// status is evaluated against wall-clock time, not the query window, so the
// date range deliberately does not constrain this query.
func (r *repository) OverdueTotals(ctx context.Context, p FilterPredicate, now time.Time) (BucketTotals, error) {
	query := `
		SELECT kind, COALESCE(SUM(amount), 0)::text
		FROM accounts
		WHERE settled_at IS NULL AND due_at < $1`
	args := []any{now}
	query, args = dimFilters(query, args, p)
	query += ` GROUP BY kind`

	return r.bucket(ctx, query, args)
}

// UpcomingTotals sums unsettled accounts due on or after now and inside the
// query window.
func (r *repository) UpcomingTotals(ctx context.Context, p FilterPredicate, now time.Time) (BucketTotals, error) {
	query := `
		SELECT kind, COALESCE(SUM(amount), 0)::text
		FROM accounts
		WHERE settled_at IS NULL AND due_at >= $1 AND due_at BETWEEN $2 AND $3`
	args := []any{now, p.Range.Start, p.Range.End}
	query, args = dimFilters(query, args, p)
	query += ` GROUP BY kind`

	return r.bucket(ctx, query, args)
}

func (r *repository) bucket(ctx context.Context, query string, args []any) (BucketTotals, error) {
	var totals BucketTotals
	err := db.WithRetry(ctx, r.logger, func(ctx context.Context) error {
		rows, err := r.pool.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		totals = BucketTotals{}
		for rows.Next() {
			var kind, sum string
			if err := rows.Scan(&kind, &sum); err != nil {
				return err
			}
			amount, err := decimal.NewFromString(sum)
			if err != nil {
				return err
			}
			switch kind {
			case "RECEIVABLE":
				totals.Receivable = amount
			case "PAYABLE":
				totals.Payable = amount
			}
		}
		return rows.Err()
	})
	if err != nil {
		return BucketTotals{}, err
	}
	return totals, nil
}

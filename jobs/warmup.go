package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-fin/meridian/internal/dashboard"
)

// DashboardWarmupJob pre-populates the summary cache for active regions so
// the first dashboard load of the period is served warm.
type DashboardWarmupJob struct {
	Service *dashboard.Service
	Pool    *pgxpool.Pool
	Logger  *slog.Logger
	clock   func() time.Time
}

// NewDashboardWarmupJob wires dependencies for the warmup handler.
func NewDashboardWarmupJob(service *dashboard.Service, pool *pgxpool.Pool, logger *slog.Logger) *DashboardWarmupJob {
	return &DashboardWarmupJob{
		Service: service,
		Pool:    pool,
		Logger:  logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes dashboard warmup tasks.
func (j *DashboardWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Service == nil {
		return errors.New("dashboard warmup: handler not configured")
	}
	var payload DashboardWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Scope == "" {
		payload.Scope = "active"
	}

	logger := j.logger().With(slog.String("scope", payload.Scope))
	logger.Info("starting dashboard warmup")

	regions, err := j.fetchRegions(ctx)
	if err != nil {
		logger.Error("load warmup regions", slog.Any("error", err))
		return err
	}

	now := j.now()
	predicate, err := dashboard.ComposeFilter(dashboard.RawFilter{
		Start: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, -1),
	})
	if err != nil {
		return err
	}

	// Global summary first, then one per active region.
	if err := j.warmScope(ctx, predicate, now); err != nil {
		logger.Error("warm global scope", slog.Any("error", err))
		return err
	}
	warmed := 1
	for _, region := range regions {
		scoped := predicate
		scoped.Region = region
		if err := j.warmScope(ctx, scoped, now); err != nil {
			logger.Error("warm region", slog.String("region", region), slog.Any("error", err))
			return err
		}
		warmed++
	}

	logger.Info("completed dashboard warmup", slog.Int("scopes", warmed), slog.Duration("duration", time.Since(now)))
	return nil
}

func (j *DashboardWarmupJob) warmScope(ctx context.Context, predicate dashboard.FilterPredicate, now time.Time) error {
	// Tighten each scope execution to avoid long-running jobs.
	scopeCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	_, err := j.Service.Summarize(scopeCtx, predicate, now)
	return err
}

func (j *DashboardWarmupJob) fetchRegions(ctx context.Context) ([]string, error) {
	if j.Pool == nil {
		return nil, errors.New("dashboard warmup: pool not configured")
	}
	rows, err := j.Pool.Query(ctx, `SELECT DISTINCT region FROM customers WHERE region IS NOT NULL AND region <> '' ORDER BY region`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	regions := make([]string, 0)
	for rows.Next() {
		var region string
		if err := rows.Scan(&region); err != nil {
			return nil, err
		}
		regions = append(regions, region)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return regions, nil
}

func (j *DashboardWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskDashboardWarmup))
	}
	return slog.Default().With(slog.String("job", TaskDashboardWarmup))
}

func (j *DashboardWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}

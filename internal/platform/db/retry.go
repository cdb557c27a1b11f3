package db

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/meridian-fin/meridian/internal/shared"
)

const (
	maxAttempts    = 3
	initialBackoff = 50 * time.Millisecond
)

// WithRetry runs op, retrying transient store failures with doubling backoff.
// Exhausted retries surface as shared.ErrStoreUnavailable; deadline expiry
// surfaces as shared.ErrStoreTimeout. Deterministic errors pass through
// unchanged on the first attempt.
func WithRetry(ctx context.Context, logger *slog.Logger, op func(context.Context) error) error {
	backoff := initialBackoff
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = op(ctx)
		if err == nil {
			return nil
		}
		if deadlineExceeded(ctx, err) {
			return errors.Join(shared.ErrStoreTimeout, err)
		}
		if !transient(err) {
			return err
		}
		if attempt == maxAttempts {
			break
		}
		if logger != nil {
			logger.Warn("store retry", slog.Int("attempt", attempt), slog.Any("error", err))
		}
		select {
		case <-ctx.Done():
			return errors.Join(shared.ErrStoreTimeout, ctx.Err())
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return errors.Join(shared.ErrStoreUnavailable, err)
}

func deadlineExceeded(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return ctx.Err() != nil && errors.Is(ctx.Err(), context.DeadlineExceeded)
}

// transient reports whether the error class is worth another attempt:
// connection exceptions, resource exhaustion, and admin shutdowns on the
// PostgreSQL side, plus network-level timeouts.
func transient(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, "08"): // connection exception
			return true
		case strings.HasPrefix(pgErr.Code, "53"): // insufficient resources
			return true
		case strings.HasPrefix(pgErr.Code, "57"): // operator intervention
			return true
		}
		return false
	}
	if pgconn.SafeToRetry(err) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

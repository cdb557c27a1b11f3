package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-fin/meridian/internal/shared"
)

func TestWithRetrySucceedsAfterTransientFailure(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), nil, func(ctx context.Context) error {
		calls++
		if calls < 2 {
			return &pgconn.PgError{Code: "57P01"} // admin_shutdown
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestWithRetryExhaustsToStoreUnavailable(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), nil, func(ctx context.Context) error {
		calls++
		return &pgconn.PgError{Code: "08006"} // connection_failure
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrStoreUnavailable))
	assert.Equal(t, maxAttempts, calls)
}

func TestWithRetryDoesNotRetryDeterministicErrors(t *testing.T) {
	calls := 0
	sentinel := errors.New("syntax error")
	err := WithRetry(context.Background(), nil, func(ctx context.Context) error {
		calls++
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)
	assert.False(t, shared.Retryable(err))
	assert.Equal(t, 1, calls)
}

func TestWithRetryMapsDeadlineToStoreTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	<-ctx.Done()

	err := WithRetry(ctx, nil, func(ctx context.Context) error {
		return context.DeadlineExceeded
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrStoreTimeout))
	assert.True(t, shared.Retryable(err))
}

package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryN_TransientThenSuccess(t *testing.T) {
	attempts := 0
	op := func() error {
		attempts++
		if attempts < 3 {
			return errors.New("database is locked (SQLITE_BUSY)")
		}
		return nil
	}

	err := RetryN(context.Background(), 3, time.Millisecond, op)

	require.NoError(t, err)
	assert.Equal(t, 3, attempts, "should succeed on the third attempt")
}

func TestRetryN_NonRetryableFailsImmediately(t *testing.T) {
	attempts := 0
	op := func() error {
		attempts++
		return errors.New("duplicate key value violates unique constraint")
	}

	err := RetryN(context.Background(), 3, time.Millisecond, op)

	assert.Error(t, err)
	assert.Equal(t, 1, attempts, "non-retryable errors should not be retried")
}

func TestRetryN_ExhaustsAttempts(t *testing.T) {
	attempts := 0
	op := func() error {
		attempts++
		return errors.New("connection reset by peer")
	}

	err := RetryN(context.Background(), 3, time.Millisecond, op)

	assert.Error(t, err)
	assert.Equal(t, 3, attempts, "should stop after the configured attempt count")
}

func TestRetryN_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	op := func() error {
		attempts++
		return errors.New("i/o timeout")
	}

	err := RetryN(ctx, 3, 50*time.Millisecond, op)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts, "cancellation should stop further attempts")
}

func TestIsRetryable_PgErrorCodes(t *testing.T) {
	tests := []struct {
		name      string
		code      string
		retryable bool
	}{
		{"serialization failure", "40001", true},
		{"deadlock detected", "40P01", true},
		{"cannot connect now", "57P03", true},
		{"connection exception class", "08006", true},
		{"unique violation", "23505", false},
		{"syntax error", "42601", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &pgconn.PgError{Code: tt.code, Message: tt.name}
			assert.Equal(t, tt.retryable, IsRetryable(err))
		})
	}
}

func TestIsRetryable_MessageFallback(t *testing.T) {
	assert.True(t, IsRetryable(errors.New("dial tcp: connection refused")))
	assert.True(t, IsRetryable(errors.New("SQLITE_BUSY: database is locked")))
	assert.False(t, IsRetryable(errors.New("record not found")))
	assert.False(t, IsRetryable(nil))
}

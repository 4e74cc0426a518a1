package database

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	// DefaultAttempts is how many times Retry tries an operation in total.
	DefaultAttempts = 3
	// DefaultRetryDelay is the base delay; actual delay is delay * attempt.
	DefaultRetryDelay = 200 * time.Millisecond
)

// Transient postgres SQLSTATE codes: serialization failure, deadlock,
// cannot-connect-now. Class 08 (connection exceptions) is matched by prefix.
var retryableCodes = map[string]bool{
	"40001": true,
	"40P01": true,
	"57P03": true,
}

// Fallback for errors that never reach the postgres wire protocol (dial
// failures) and for the sqlite driver used in tests.
var retryableSubstrings = []string{
	"connection reset",
	"connection refused",
	"busy",
	"locked",
	"timeout",
}

// IsRetryable classifies an error as transient. Structured SQLSTATE codes
// are checked first; message matching is only a fallback.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if retryableCodes[pgErr.Code] {
			return true
		}
		return strings.HasPrefix(pgErr.Code, "08")
	}

	msg := strings.ToLower(err.Error())
	for _, s := range retryableSubstrings {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// Retry runs op with the default attempt count and delay.
func Retry(ctx context.Context, op func() error) error {
	return RetryN(ctx, DefaultAttempts, DefaultRetryDelay, op)
}

// RetryN runs op up to attempts times, sleeping delay * attempt between
// tries. Non-retryable errors are returned immediately; the last error is
// returned when attempts are exhausted.
func RetryN(ctx context.Context, attempts int, delay time.Duration, op func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !IsRetryable(lastErr) {
			return lastErr
		}
		if attempt == attempts {
			break
		}

		select {
		case <-time.After(delay * time.Duration(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return lastErr
}

package postgres

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/lib/pq"
)

const (
	retryMaxRetries      = 3
	retryInitialInterval = 50 * time.Millisecond
	retryMaxInterval     = time.Second
)

// SQLSTATE codes the repositories translate into domain errors.
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqInvalidTextRepr     = "22P02"
)

// withRetry runs a read, retrying transient connection failures with exponential backoff.
// Any other error, including every domain error, is returned after the first attempt.
func withRetry(ctx context.Context, op func() error) error {
	return retry(ctx, op, isTransient)
}

// withWriteRetry runs a write. A network error may arrive after the server committed and
// only the reply was lost, so the only retried failure is driver.ErrBadConn, which the
// driver returns before the statement reaches the server.
func withWriteRetry(ctx context.Context, op func() error) error {
	return retry(ctx, op, isUnsent)
}

func retry(ctx context.Context, op func() error, retryable func(error) bool) error {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = retryInitialInterval
	eb.MaxInterval = retryMaxInterval
	b := backoff.WithContext(backoff.WithMaxRetries(eb, retryMaxRetries), ctx)

	return backoff.Retry(func() error {
		err := op()
		if err == nil {
			return nil
		}
		if retryable(err) {
			return err
		}
		return backoff.Permanent(err)
	}, b)
}

// isUnsent reports whether err guarantees the statement never reached the server.
func isUnsent(err error) bool {
	return errors.Is(err, driver.ErrBadConn)
}

// isTransient reports whether err looks like a dropped or refused connection.
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "57P01", "57P02", "57P03":
			return true
		}
		return pqErr.Code.Class() == "08"
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// pqErrorCode returns the SQLSTATE of err, or "" when err is not a *pq.Error.
func pqErrorCode(err error) (code, constraint string) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), pqErr.Constraint
	}
	return "", ""
}

// limitArg maps an unset page size to NULL, which Postgres treats as LIMIT ALL.
func limitArg(limit int) any {
	if limit <= 0 {
		return nil
	}
	return limit
}

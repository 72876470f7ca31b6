package errors

import (
	"context"
	stderrs "errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATEs a mask_stats write can hit
const (
	sqlUniqueViolation  = "23505" // (run_id, seq) reused
	sqlNotNullViolation = "23502"
	sqlNumericRange     = "22003"

	sqlSerialization = "40001"
	sqlDeadlock      = "40P01"
	sqlLockNotAvail  = "55P03"

	sqlReadOnly     = "25006" // replica or read-only role
	sqlTooManyConns = "53300"
	sqlStartingUp   = "57P03"
)

// sqlState returns the SQLSTATE carried anywhere in err's chain
func sqlState(err error) (string, bool) {
	var pe *pgconn.PgError
	if stderrs.As(err, &pe) {
		return pe.Code, true
	}
	return "", false
}

// pgCode maps a Postgres failure to an ErrorCode; errors without a SQLSTATE are DB
func pgCode(err error) ErrorCode {
	state, ok := sqlState(err)
	if !ok {
		return ErrorCodeDB
	}
	switch state {
	case sqlUniqueViolation, sqlNotNullViolation:
		return ErrorCodeValidation
	case sqlNumericRange:
		return ErrorCodeInvalidArgument
	case sqlReadOnly, sqlTooManyConns, sqlStartingUp:
		return ErrorCodeUnavailable
	}
	return ErrorCodeDB
}

// FromPostgresf wraps a database failure under the code its SQLSTATE implies.
// A nil err stays nil.
func FromPostgresf(err error, format string, a ...any) error {
	if err == nil {
		return nil
	}
	return Wrap(err, pgCode(err), fmt.Sprintf(format, a...))
}

// IsRetryable reports whether rerunning the whole transaction may succeed:
// serialization failures, deadlocks and lock timeouts. pgx reports some of
// these only as text on commit, so the message is checked as well.
func IsRetryable(err error) bool {
	if err == nil || stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return false
	}
	if state, ok := sqlState(err); ok {
		return state == sqlSerialization || state == sqlDeadlock || state == sqlLockNotAvail
	}
	msg := strings.ToLower(Root(err).Error())
	for _, s := range []string{
		"commit unexpectedly resulted in rollback",
		"could not serialize access",
		"deadlock detected",
	} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

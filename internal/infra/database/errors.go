package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// isUniqueViolation understands both drivers' error types.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolation
	}
	return false
}

// wrapDBError keeps the driver's code, detail and constraint in the message so a
// single log line is enough to diagnose a failed write.
func wrapDBError(op string, err error) error {
	var parts []string

	var pgErr *pgconn.PgError
	var pqErr *pq.Error
	switch {
	case errors.As(err, &pgErr):
		parts = append(parts, "code="+pgErr.Code)
		if pgErr.Detail != "" {
			parts = append(parts, "detail="+pgErr.Detail)
		}
		if pgErr.ConstraintName != "" {
			parts = append(parts, "constraint="+pgErr.ConstraintName)
		}
	case errors.As(err, &pqErr):
		parts = append(parts, "code="+string(pqErr.Code))
		if pqErr.Detail != "" {
			parts = append(parts, "detail="+pqErr.Detail)
		}
		if pqErr.Constraint != "" {
			parts = append(parts, "constraint="+pqErr.Constraint)
		}
	}

	if len(parts) == 0 {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s [%s]: %w", op, strings.Join(parts, " "), err)
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

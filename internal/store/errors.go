package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrConflict   = errors.New("record already exists")
	ErrInvalidRef = errors.New("referenced record does not exist")
	ErrNoFields   = errors.New("no fields to update")
	ErrInvalidVal = errors.New("value rejected by column constraint")
)

// SQLSTATE codes we classify.
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqCheckViolation      = "23514"
	pqNumericOutOfRange   = "22003"
)

// translate maps driver errors onto the package sentinels, keeping the original in the chain.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return fmt.Errorf("%w: %s: %v", ErrConflict, pqErr.Constraint, err)
		case pqForeignKeyViolation:
			return fmt.Errorf("%w: %s: %v", ErrInvalidRef, pqErr.Constraint, err)
		case pqCheckViolation, pqNumericOutOfRange:
			return fmt.Errorf("%w: %v", ErrInvalidVal, err)
		}
	}
	return err
}

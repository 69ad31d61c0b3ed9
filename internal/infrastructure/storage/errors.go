package storage

import (
	"errors"
	"fmt"

	"github.com/lib/pq"

	"CampusFeed/internal/domain"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqCheckViolation      = "23514"
)

// translate maps driver constraint errors onto domain sentinels.
func translate(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return fmt.Errorf("%s: %w (%s)", op, domain.ErrConflict, pqErr.Constraint)
		case pqForeignKeyViolation:
			return fmt.Errorf("%s: %w (%s)", op, domain.ErrNotFound, pqErr.Constraint)
		case pqCheckViolation:
			return fmt.Errorf("%s: %w (%s)", op, domain.ErrValidation, pqErr.Constraint)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

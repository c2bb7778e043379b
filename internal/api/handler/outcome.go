package handler

import (
	"errors"

	"github.com/douradolabs/backoffice/internal/core/domain"
)

// passwordChangeOutcome buckets change-password failures for metrics.
func passwordChangeOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrWrongPassword):
		return "wrong_password"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	default:
		return "error"
	}
}

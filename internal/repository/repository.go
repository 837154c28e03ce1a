package repository

import (
	"errors"
	"fmt"

	"inkwell/internal/apperror"

	"gorm.io/gorm"
)

// notFoundOr maps a missing row to the NotFound kind and passes every other
// error through unchanged.
func notFoundOr(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %w", what, apperror.ErrNotFound)
	}
	return err
}

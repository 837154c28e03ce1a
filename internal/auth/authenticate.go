package auth

import (
	"context"
	"errors"

	"inkwell/internal/apperror"
	"inkwell/internal/models"
)

// UserSource is the subset of the user repository needed to authenticate.
type UserSource interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// Authenticate resolves the identifier as an email first, then as a username,
// and verifies the password. It returns ErrNotFound when no user matches
// either field and ErrUnauthenticated when the password does not verify.
func Authenticate(ctx context.Context, users UserSource, identifier, password string) (*models.User, error) {
	user, err := users.GetByEmail(ctx, identifier)
	if errors.Is(err, apperror.ErrNotFound) {
		user, err = users.GetByUsername(ctx, identifier)
	}
	if err != nil {
		return nil, err
	}

	if !CheckPasswordHash(password, user.Password) {
		return nil, apperror.ErrUnauthenticated
	}
	return user, nil
}

package auth

import (
	"inkwell/internal/apperror"
	"inkwell/internal/models"
)

// CanModify reports whether the actor owns the resource. Ownership is checked
// after loading the target and before any mutation; the owner field is
// immutable after creation, so there is no window for it to change in between.
func CanModify(actor *models.User, ownerID uint) bool {
	return actor != nil && actor.ID == ownerID
}

// RequireAdmin returns ErrForbidden unless the actor holds the admin role.
func RequireAdmin(actor *models.User) error {
	if actor == nil || !actor.IsAdmin() {
		return apperror.ErrForbidden
	}
	return nil
}

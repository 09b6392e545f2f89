package middleware

import (
	"github.com/iliyamo/store-rating/internal/apperror"
	"github.com/iliyamo/store-rating/internal/model"
)

// RequireRole is the role guard shared by the session middleware and any
// handler that needs an inline check. It returns a Forbidden error when
// allowed is non-empty and does not contain the user's role.
func RequireRole(u model.PublicUser, allowed model.RoleSet) error {
	if allowed.Allows(u.Role) {
		return nil
	}
	return apperror.Forbidden("Access denied: insufficient role")
}

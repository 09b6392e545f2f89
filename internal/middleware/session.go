package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/store-rating/internal/apperror"
	"github.com/iliyamo/store-rating/internal/model"
	"github.com/iliyamo/store-rating/internal/repository"
	"github.com/iliyamo/store-rating/internal/utils"
)

// TokenVerifier turns a raw session token into the user id it was
// issued for. *utils.TokenService satisfies it.
type TokenVerifier interface {
	Verify(raw string) (uint64, error)
}

// UserLookup loads a user by id. *repository.UserRepo satisfies it.
type UserLookup interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// SessionResolver authenticates a request from its session token and
// reloads the user so that role changes and deletions take effect on
// the next request.
type SessionResolver struct {
	Tokens    TokenVerifier
	Users     UserLookup
	DBTimeout time.Duration
}

// Resolve verifies raw, loads the user it names and checks the user's
// role against allowed. An empty allow-list admits any authenticated
// user. Failures are returned as *apperror.Error.
func (r SessionResolver) Resolve(ctx context.Context, raw string, allowed model.RoleSet) (model.PublicUser, error) {
	if raw == "" {
		return model.PublicUser{}, apperror.Unauthenticated("Unauthorized: no token provided")
	}
	id, err := r.Tokens.Verify(raw)
	if err != nil {
		if errors.Is(err, utils.ErrTokenExpired) {
			return model.PublicUser{}, apperror.Wrap(apperror.KindUnauthenticated, "Unauthorized: session expired", err)
		}
		return model.PublicUser{}, apperror.Wrap(apperror.KindUnauthenticated, "Unauthorized: invalid token", err)
	}

	if r.DBTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.DBTimeout)
		defer cancel()
	}
	u, err := r.Users.GetByID(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			return model.PublicUser{}, apperror.NotFound("User not found")
		case repository.IsUnavailable(err):
			return model.PublicUser{}, apperror.Unavailable(err)
		}
		return model.PublicUser{}, apperror.Internal(err)
	}

	pub := u.Public()
	if err := RequireRole(pub, allowed); err != nil {
		return model.PublicUser{}, err
	}
	return pub, nil
}

// TokenFromRequest reads the session token from the named cookie and
// falls back to an "Authorization: Bearer" header.
func TokenFromRequest(c echo.Context, cookieName string) string {
	if ck, err := c.Cookie(cookieName); err == nil && ck.Value != "" {
		return ck.Value
	}
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return ""
}

// Session returns an Echo middleware that resolves the caller and stores
// the public user under the "user" context key. Errors are handed to the
// HTTP error handler unchanged.
func Session(r SessionResolver, cookieName string, roles ...model.Role) echo.MiddlewareFunc {
	allowed := model.Roles(roles...)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, err := r.Resolve(c.Request().Context(), TokenFromRequest(c, cookieName), allowed)
			if err != nil {
				return err
			}
			c.Set(userKey, u)
			return next(c)
		}
	}
}

package middleware

// identity.go holds the context accessors for the authenticated user.
// Session stores the user under userKey; handlers read it back with
// CurrentUser and the request logger with userID.

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/store-rating/internal/model"
)

const userKey = "user"

// CurrentUser returns the user resolved by Session. ok is false on
// routes that are not behind Session.
func CurrentUser(c echo.Context) (model.PublicUser, bool) {
	u, ok := c.Get(userKey).(model.PublicUser)
	return u, ok
}

// userID returns the authenticated user id as a string, or "guest".
func userID(c echo.Context) string {
	if u, ok := CurrentUser(c); ok {
		return strconv.FormatUint(u.ID, 10)
	}
	return "guest"
}

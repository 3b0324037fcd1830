package handler

import (
	"github.com/labstack/echo/v4"

	apperrors "userhub/internal/errors"
	"userhub/internal/model"
)

// UserContextKey is where the JWT guard stores the resolved acting user.
const UserContextKey = "user"

// respondError translates a domain error into its HTTP status and
// standardized error body.
func respondError(c echo.Context, err error) error {
	he := apperrors.MapErrorToHTTP(err)
	return echo.NewHTTPError(he.StatusCode, he.ToErrorResponse())
}

// currentUser returns the acting user resolved by the JWT guard.
func currentUser(c echo.Context) (*model.User, bool) {
	user, ok := c.Get(UserContextKey).(*model.User)
	return user, ok
}

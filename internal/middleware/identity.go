package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// currentUserID renders the authenticated user's ID for use in Redis
// keys.  Unauthenticated requests share the "anon" bucket and are
// distinguished by IP instead.
func currentUserID(c echo.Context) string {
	if id, ok := c.Get("user_id").(uint64); ok {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}

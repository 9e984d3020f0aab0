package handlers

import "github.com/labstack/echo/v4"

// getUserIDFromContext returns the authenticated user's Firebase UID, or
// an empty string when the request is unauthenticated.
func getUserIDFromContext(c echo.Context) string {
	uid, _ := c.Get("firebaseUID").(string)
	return uid
}

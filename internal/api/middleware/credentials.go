package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/douradolabs/backoffice/internal/core/ports"
)

const credentialsKey = "credentials"

// Credentials extracts the bearer token into the request context. It never
// rejects the request itself: the authorization guard is the single place
// where missing or invalid credentials turn into errors, so that every
// operation re-evaluates them.
func Credentials() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			creds := ports.Credentials{}

			header := c.Request().Header.Get("Authorization")
			parts := strings.SplitN(header, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
				creds.Token = strings.TrimSpace(parts[1])
			}

			c.Set(credentialsKey, creds)
			return next(c)
		}
	}
}

// RequestCredentials returns the credentials extracted by the middleware.
// Absent middleware yields empty credentials, which the guard treats as
// unauthenticated.
func RequestCredentials(c echo.Context) ports.Credentials {
	creds, _ := c.Get(credentialsKey).(ports.Credentials)
	return creds
}

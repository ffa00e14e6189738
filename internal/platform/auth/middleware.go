package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

type contextKey string

const UsernameKey contextKey = "username"

// RequireUser returns middleware that rejects requests without a valid bearer
// token. The token subject is stored on the request context for handlers.
func RequireUser(issuer *TokenIssuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenStr, err := bearerToken(c)
			if err != nil {
				return err
			}

			claims, err := issuer.Parse(tokenStr)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}
			if claims.Type == TokenTypeRefresh {
				return echo.NewHTTPError(http.StatusUnauthorized, "refresh token not accepted here")
			}

			ctx := context.WithValue(c.Request().Context(), UsernameKey, claims.Subject)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// DevUsername is the identity DevAuthMiddleware assigns when a request
// carries no usable bearer token.
const DevUsername = "dev-user"

// DevAuthMiddleware is a permissive middleware for development. A valid
// access token keeps its real subject; anything else, including a missing
// or malformed Authorization header, falls back to the dev identity so
// that created_by is never left empty.
func DevAuthMiddleware(issuer *TokenIssuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			username := DevUsername
			if tokenStr, err := bearerToken(c); err == nil {
				if claims, err := issuer.Parse(tokenStr); err == nil && claims.Type != TokenTypeRefresh {
					username = claims.Subject
				}
			}
			ctx := context.WithValue(c.Request().Context(), UsernameKey, username)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// UsernameFromContext returns the authenticated username, or "" when the
// request was not authenticated.
func UsernameFromContext(ctx context.Context) string {
	u, _ := ctx.Value(UsernameKey).(string)
	return u
}

func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
	}
	return parts[1], nil
}

// BearerToken extracts the raw bearer token from the request, for handlers
// that need the token itself (e.g. /auth/me).
func BearerToken(c echo.Context) (string, error) {
	return bearerToken(c)
}

package middleware

import (
	"fmt"
	"strings"

	"go-departure-scheduler/core/config"
	"go-departure-scheduler/core/constants"
	"go-departure-scheduler/core/controller"
	"go-departure-scheduler/core/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type Middleware struct {
	secret []byte
}

func NewMiddleware(cfg config.AuthConfig) *Middleware {
	return &Middleware{secret: []byte(cfg.JWTSecret)}
}

// AuthMiddleware validates the bearer token and stores the user ID from the
// sub claim in the request context.
func (m *Middleware) AuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return controller.NewErrorResponse(401, errors.ErrMissingAuthorizationHeader, "missing authorization header")
			}

			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				return controller.NewErrorResponse(401, errors.ErrInvalidTokenFormat, "authorization header must be a bearer token")
			}

			token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
				}
				return m.secret, nil
			})
			if err != nil || !token.Valid {
				return controller.NewErrorResponse(401, errors.ErrUnauthorized, "invalid or expired token")
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return controller.NewErrorResponse(401, errors.ErrUnauthorized, "invalid token claims")
			}
			sub, err := claims.GetSubject()
			if err != nil || sub == "" {
				return controller.NewErrorResponse(401, errors.ErrUnauthorized, "token has no subject")
			}
			userID, err := uuid.Parse(sub)
			if err != nil {
				return controller.NewErrorResponse(401, errors.ErrUnauthorized, "token subject is not a valid user id")
			}

			c.Set(constants.ContextUserID, userID)
			return next(c)
		}
	}
}

package webserver

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

const userContextKey = "user"

var ErrNoUser = errors.New("no authenticated user")

// JWTAuth validates HS256 bearer tokens issued by the identity provider.
// The subject claim carries the user id.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(secret),
		SigningMethod: "HS256",
		ContextKey:    userContextKey,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(jwt.RegisteredClaims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusUnauthorized, map[string]interface{}{
				"error": "Authentication credentials were not provided or are invalid.",
				"code":  "UNAUTHORIZED",
			})
		},
	})
}

// CurrentUserID returns the user id of the authenticated request
func CurrentUserID(c echo.Context) (int64, error) {
	token, ok := c.Get(userContextKey).(*jwt.Token)
	if !ok || token == nil {
		return 0, ErrNoUser
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return 0, ErrNoUser
	}
	id, err := cast.ToInt64E(claims.Subject)
	if err != nil || id <= 0 {
		return 0, errors.Wrapf(ErrNoUser, "invalid subject %q", claims.Subject)
	}
	return id, nil
}

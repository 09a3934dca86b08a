// Package storeapi exposes the storefront over HTTP under /api/v1.
package storeapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/talkincode/storefront/internal/app"
	"github.com/talkincode/storefront/internal/webserver"
)

const appContextKey = "appctx"

// Init registers all storefront routes on the global web server
func Init(appCtx app.AppContext) {
	webserver.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(appContextKey, appCtx)
			return next(c)
		}
	})
	registerCatalogRoutes()
	registerCartRoutes()
	registerOrderRoutes()
	registerGeoRoutes()
	registerSystemRoutes()
}

func GetAppContext(c echo.Context) app.AppContext {
	return c.Get(appContextKey).(app.AppContext)
}

type errorResponse struct {
	Error   string      `json:"error"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, data)
}

func fail(c echo.Context, status int, code, msg string, details interface{}) error {
	return c.JSON(status, errorResponse{Error: msg, Code: code, Details: details})
}

func parseIDParam(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}

// handleValidationError reports each failed field with the rule it broke
func handleValidationError(c echo.Context, err error) error {
	verrs, isValidation := err.(validator.ValidationErrors)
	if !isValidation {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request", err.Error())
	}
	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			details[fe.Field()] = fe.Tag() + "=" + fe.Param()
		} else {
			details[fe.Field()] = fe.Tag()
		}
	}
	return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Request validation failed", details)
}

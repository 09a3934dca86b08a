package storeapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/talkincode/storefront/internal/geocoder"
	"github.com/talkincode/storefront/internal/webserver"
)

type coordinatesPayload struct {
	Address string `json:"address"`
}

func registerGeoRoutes() {
	webserver.ApiPOST("/get-coordinates", getCoordinates)
}

func getCoordinates(c echo.Context) error {
	var payload coordinatesPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse request", err.Error())
	}
	if strings.TrimSpace(payload.Address) == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", geocoder.ErrEmptyAddress.Error(), nil)
	}
	coords, err := GetAppContext(c).Geocoder().Geocode(c.Request().Context(), payload.Address)
	if err != nil {
		return fail(c, http.StatusBadRequest, "GEOCODING_FAILED", err.Error(), nil)
	}
	return ok(c, coords)
}

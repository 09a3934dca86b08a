package storeapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/talkincode/storefront/internal/catalog"
	"github.com/talkincode/storefront/internal/webserver"
)

type categoryFilterPayload struct {
	Category *int64 `json:"category"`
}

func registerCatalogRoutes() {
	webserver.ApiGET("/product", listProducts)
	webserver.ApiGET("/product/:id", getProduct)
	webserver.ApiPOST("/products", listProductsByCategory)
	webserver.ApiGET("/categories", listCategories)
	webserver.ApiGET("/categories/:id", getCategory)
}

// listProducts GET /product?category=&ordering=price|-price
func listProducts(c echo.Context) error {
	filter := catalog.ProductFilter{Ordering: c.QueryParam("ordering")}
	if s := strings.TrimSpace(c.QueryParam("category")); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid category", s)
		}
		filter.CategoryID = &id
	}
	products, err := GetAppContext(c).Catalog().ListProducts(c.Request().Context(), filter)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}
	return ok(c, products)
}

func getProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	p, err := GetAppContext(c).Catalog().GetProduct(c.Request().Context(), id)
	if errors.Is(err, catalog.ErrProductNotFound) {
		return fail(c, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query product", err.Error())
	}
	return ok(c, p)
}

// listProductsByCategory POST /products {"category": id}; no category lists everything
func listProductsByCategory(c echo.Context) error {
	var payload categoryFilterPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse request", err.Error())
	}
	filter := catalog.ProductFilter{}
	if payload.Category != nil && *payload.Category != 0 {
		filter.CategoryID = payload.Category
	}
	products, err := GetAppContext(c).Catalog().ListProducts(c.Request().Context(), filter)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}
	return ok(c, products)
}

func listCategories(c echo.Context) error {
	views, err := GetAppContext(c).Catalog().ListCategories(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query categories", err.Error())
	}
	return ok(c, views)
}

func getCategory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid category ID", nil)
	}
	view, err := GetAppContext(c).Catalog().GetCategory(c.Request().Context(), id)
	if errors.Is(err, catalog.ErrCategoryNotFound) {
		return fail(c, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query category", err.Error())
	}
	return ok(c, view)
}

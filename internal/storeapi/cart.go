package storeapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/talkincode/storefront/internal/catalog"
	"github.com/talkincode/storefront/internal/domain"
	"github.com/talkincode/storefront/internal/shop"
	"github.com/talkincode/storefront/internal/webserver"
)

type cartItemPayload struct {
	Product  int64 `json:"product" validate:"required"`
	Quantity int   `json:"quantity" validate:"required,min=1"`
}

type cartRemovePayload struct {
	Product int64 `json:"product"`
}

type cartItemView struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Quantity int    `json:"quantity"`
}

type cartView struct {
	Products   []cartItemView `json:"products"`
	TotalPrice string         `json:"total_price"`
}

func registerCartRoutes() {
	auth := webserver.Auth()
	webserver.ApiGET("/cart", getCart, auth)
	webserver.ApiPOST("/cart", addToCart, auth)
	webserver.ApiPATCH("/cart", updateCartItem, auth)
	webserver.ApiDELETE("/cart", removeFromCart, auth)
}

func newCartView(cart *domain.Cart) cartView {
	view := cartView{
		Products:   make([]cartItemView, 0, len(cart.Items)),
		TotalPrice: cart.TotalPrice.StringFixed(2),
	}
	for _, item := range cart.Items {
		v := cartItemView{ID: item.ProductID, Quantity: item.Quantity}
		if item.Product != nil {
			v.Name = item.Product.Name
			v.Price = item.Product.Price.StringFixed(2)
		}
		view.Products = append(view.Products, v)
	}
	return view
}

// currentCart loads the caller's cart, writing the 404 itself when absent
func currentCart(c echo.Context) (*domain.Cart, error) {
	userID, err := webserver.CurrentUserID(c)
	if err != nil {
		return nil, fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid user", nil)
	}
	cart, err := GetAppContext(c).CartService().GetUserCart(c.Request().Context(), userID)
	if errors.Is(err, shop.ErrCartNotFound) {
		return nil, fail(c, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	}
	if err != nil {
		return nil, fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load cart", err.Error())
	}
	return cart, nil
}

func getCart(c echo.Context) error {
	cart, err := currentCart(c)
	if cart == nil {
		return err
	}
	return ok(c, newCartView(cart))
}

// bindCartItem parses and validates the body, then resolves the product
func bindCartItem(c echo.Context) (*cartItemPayload, *domain.Product, error) {
	var payload cartItemPayload
	if err := c.Bind(&payload); err != nil {
		return nil, nil, fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse request", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return nil, nil, handleValidationError(c, err)
	}
	product, err := GetAppContext(c).Catalog().GetProduct(c.Request().Context(), payload.Product)
	if errors.Is(err, catalog.ErrProductNotFound) {
		return nil, nil, fail(c, http.StatusNotFound, "NOT_FOUND", err.Error(), map[string]int64{"product": payload.Product})
	}
	if err != nil {
		return nil, nil, fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load product", err.Error())
	}
	return &payload, product, nil
}

func addToCart(c echo.Context) error {
	userID, err := webserver.CurrentUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid user", nil)
	}
	payload, product, err := bindCartItem(c)
	if payload == nil {
		return err
	}

	ctx := c.Request().Context()
	carts := GetAppContext(c).CartService()
	cart, err := carts.GetOrCreateUserCart(ctx, userID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load cart", err.Error())
	}
	if err := carts.AddProductToCart(ctx, cart, product, payload.Quantity); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to add product", err.Error())
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"detail": "Product added to cart.",
		"cart":   newCartView(cart),
	})
}

func updateCartItem(c echo.Context) error {
	cart, err := currentCart(c)
	if cart == nil {
		return err
	}
	payload, product, err := bindCartItem(c)
	if payload == nil {
		return err
	}
	err = GetAppContext(c).CartService().UpdateCartItemQuantity(c.Request().Context(), cart, product, payload.Quantity)
	if errors.Is(err, shop.ErrCartItemNotFound) {
		return fail(c, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update cart", err.Error())
	}
	return ok(c, newCartView(cart))
}

// removeFromCart takes the product id from ?product_id= or a {"product": id} body
func removeFromCart(c echo.Context) error {
	cart, err := currentCart(c)
	if cart == nil {
		return err
	}

	var productID int64
	if raw := strings.TrimSpace(c.QueryParam("product_id")); raw != "" {
		productID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", raw)
		}
	} else {
		var payload cartRemovePayload
		if err := (&echo.DefaultBinder{}).BindBody(c, &payload); err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse request", err.Error())
		}
		productID = payload.Product
	}
	if productID == 0 {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Product ID is required.", nil)
	}

	err = GetAppContext(c).CartService().RemoveProductFromCart(c.Request().Context(), cart, productID)
	if errors.Is(err, shop.ErrCartItemNotFound) {
		return fail(c, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to remove product", err.Error())
	}
	return ok(c, newCartView(cart))
}

package shop

import "github.com/pkg/errors"

var (
	ErrCartNotFound      = errors.New("Cart not found.")
	ErrCartItemNotFound  = errors.New("Product not found in cart")
	ErrEmptyCart         = errors.New("Cart is empty.")
	ErrUserNotFound      = errors.New("User not found.")
	ErrNoConfirmationURL = errors.New("No confirmation URL in payment response.")
)

package payment

import (
	"context"

	"github.com/shopspring/decimal"
)

// Request describes a payment to be created on the gateway
type Request struct {
	Amount      decimal.Decimal
	Currency    string
	ReturnURL   string // where the gateway redirects the buyer after paying
	Capture     bool
	Description string
	Metadata    map[string]string
}

// Confirmation how the buyer confirms the payment
type Confirmation struct {
	Type            string `mapstructure:"type"`
	ConfirmationURL string `mapstructure:"confirmation_url"`
}

// Payment gateway side payment object
type Payment struct {
	ID           string       `mapstructure:"id"`
	Status       string       `mapstructure:"status"`
	Paid         bool         `mapstructure:"paid"`
	Description  string       `mapstructure:"description"`
	Confirmation Confirmation `mapstructure:"confirmation"`
}

// Gateway is the interface for payment providers
type Gateway interface {
	// CreatePayment registers a payment and returns it with its confirmation data
	CreatePayment(ctx context.Context, req *Request) (*Payment, error)
}

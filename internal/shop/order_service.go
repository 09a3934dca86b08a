package shop

import (
	"context"
	"fmt"
	"strconv"

	"github.com/talkincode/storefront/internal/domain"
	"github.com/talkincode/storefront/internal/notify"
	"github.com/talkincode/storefront/internal/payment"
	"github.com/talkincode/storefront/pkg/common"
	"go.uber.org/zap"
)

// OrderResult outcome of one order task run. Exactly one of Error or
// (OrderID, PaymentURL) is set.
type OrderResult struct {
	OrderID    int64  `json:"order_id,omitempty,string"`
	PaymentURL string `json:"payment_url,omitempty"`
	Error      string `json:"error,omitempty"`
}

func (r OrderResult) Failed() bool {
	return r.Error != ""
}

// OrderOptions payment parameters applied to every order
type OrderOptions struct {
	Currency  string
	ReturnURL string
}

// OrderProcessor turns a user's cart into an order, requests a payment and
// notifies the user.
type OrderProcessor struct {
	carts   CartRepository
	orders  OrderRepository
	users   UserRepository
	gateway payment.Gateway
	mailer  notify.Mailer
	opts    OrderOptions
}

func NewOrderProcessor(
	carts CartRepository,
	orders OrderRepository,
	users UserRepository,
	gateway payment.Gateway,
	mailer notify.Mailer,
	opts OrderOptions,
) *OrderProcessor {
	if opts.Currency == "" {
		opts.Currency = "RUB"
	}
	return &OrderProcessor{
		carts:   carts,
		orders:  orders,
		users:   users,
		gateway: gateway,
		mailer:  mailer,
		opts:    opts,
	}
}

// ProcessOrder runs the checkout for userID.
//
// The cart is cleared only after the gateway returned a confirmation URL, so a
// payment failure leaves the cart intact for another attempt. The order rows
// written before the payment call are kept and flagged payment_failed.
func (p *OrderProcessor) ProcessOrder(ctx context.Context, userID int64) OrderResult {
	log := zap.L().With(zap.String("namespace", "order"), zap.Int64("user_id", userID))

	cart, err := p.carts.GetByUser(ctx, userID)
	if err != nil {
		return p.fail(log, err)
	}
	items, err := p.carts.ListItems(ctx, cart.ID)
	if err != nil {
		return p.fail(log, err)
	}
	if len(items) == 0 {
		return p.fail(log, ErrEmptyCart)
	}
	user, err := p.users.GetByID(ctx, userID)
	if err != nil {
		return p.fail(log, err)
	}

	order := snapshotOrder(cart, items)
	if err := p.orders.Create(ctx, order); err != nil {
		return p.fail(log, err)
	}
	log = log.With(zap.Int64("order_id", order.ID))

	pay, err := p.gateway.CreatePayment(ctx, &payment.Request{
		Amount:      order.TotalPrice,
		Currency:    p.opts.Currency,
		ReturnURL:   p.opts.ReturnURL,
		Capture:     true,
		Description: fmt.Sprintf("Order #%d", order.ID),
		Metadata:    map[string]string{"order_id": strconv.FormatInt(order.ID, 10)},
	})
	if err == nil && pay.Confirmation.ConfirmationURL == "" {
		err = ErrNoConfirmationURL
	}
	if err != nil {
		if uerr := p.orders.UpdatePayment(ctx, order.ID, domain.OrderStatusPaymentFailed, "", ""); uerr != nil {
			log.Error("failed to flag order payment failure", zap.Error(uerr))
		}
		return p.fail(log, fmt.Errorf("Failed to create payment: %v", err))
	}
	paymentURL := pay.Confirmation.ConfirmationURL

	if err := p.orders.UpdatePayment(ctx, order.ID, domain.OrderStatusPendingPayment, pay.ID, paymentURL); err != nil {
		return p.fail(log, err)
	}
	order.PaymentID = pay.ID
	order.PaymentURL = paymentURL

	if err := p.carts.Clear(ctx, cart.ID); err != nil {
		return p.fail(log, err)
	}

	if err := p.mailer.SendOrderConfirmation(ctx, user, order); err != nil {
		return p.fail(log, err)
	}
	if err := p.mailer.SendPaymentLink(ctx, user, paymentURL); err != nil {
		return p.fail(log, err)
	}

	log.Info("order processed", zap.String("payment_url", paymentURL))
	return OrderResult{OrderID: order.ID, PaymentURL: paymentURL}
}

func (p *OrderProcessor) fail(log *zap.Logger, err error) OrderResult {
	log.Warn("order processing failed", zap.Error(err))
	return OrderResult{Error: err.Error()}
}

// snapshotOrder copies the cart total and every line (quantity, current unit
// price and name) by value.
func snapshotOrder(cart *domain.Cart, items []domain.CartItem) *domain.Order {
	order := &domain.Order{
		ID:         common.UUIDint64(),
		UserID:     cart.UserID,
		TotalPrice: cart.TotalPrice,
		Status:     domain.OrderStatusPendingPayment,
		Items:      make([]domain.OrderItem, 0, len(items)),
	}
	for _, item := range items {
		oi := domain.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
		if item.Product != nil {
			oi.ProductName = item.Product.Name
			oi.UnitPrice = item.Product.Price
		}
		order.Items = append(order.Items, oi)
	}
	return order
}

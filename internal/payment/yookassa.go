package payment

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/guonaihong/gout"
	"github.com/mitchellh/mapstructure"
	"github.com/talkincode/storefront/pkg/common"
	"go.uber.org/zap"
)

// YooKassaClient implements Gateway for the YooKassa REST API (v3)
type YooKassaClient struct {
	endpoint  string
	shopID    string
	secretKey string
	timeout   time.Duration
}

// NewYooKassaClient creates a client bound to one shop account.
// A zero timeout leaves requests unbounded.
func NewYooKassaClient(endpoint, shopID, secretKey string, timeout time.Duration) *YooKassaClient {
	return &YooKassaClient{
		endpoint:  strings.TrimRight(endpoint, "/"),
		shopID:    shopID,
		secretKey: secretKey,
		timeout:   timeout,
	}
}

// CreatePayment POST /payments with a fresh Idempotence-Key
func (c *YooKassaClient) CreatePayment(ctx context.Context, req *Request) (*Payment, error) {
	if req == nil {
		return nil, fmt.Errorf("payment request is nil")
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("payment amount must be positive, got %s", req.Amount.StringFixed(2))
	}

	body := gout.H{
		"amount": gout.H{
			"value":    req.Amount.StringFixed(2),
			"currency": req.Currency,
		},
		"confirmation": gout.H{
			"type":       "redirect",
			"return_url": req.ReturnURL,
		},
		"capture":     req.Capture,
		"description": req.Description,
	}
	if len(req.Metadata) > 0 {
		body["metadata"] = req.Metadata
	}

	var (
		resp map[string]interface{}
		code int
	)
	df := gout.POST(c.endpoint+"/payments").
		WithContext(ctx).
		SetBasicAuth(c.shopID, c.secretKey).
		SetHeader(gout.H{"Idempotence-Key": common.UUID()}).
		SetJSON(body).
		BindJSON(&resp).
		Code(&code)
	if c.timeout > 0 {
		df = df.SetTimeout(c.timeout)
	}

	if err := df.Do(); err != nil {
		zap.L().Error("payment gateway request failed",
			zap.String("namespace", "payment"),
			zap.String("endpoint", c.endpoint),
			zap.Error(err),
		)
		return nil, fmt.Errorf("payment gateway request failed: %w", err)
	}

	if code != http.StatusOK && code != http.StatusCreated {
		desc, _ := resp["description"].(string)
		if desc == "" {
			desc = http.StatusText(code)
		}
		return nil, fmt.Errorf("payment gateway error (%d): %s", code, desc)
	}

	var p Payment
	if err := mapstructure.Decode(resp, &p); err != nil {
		return nil, fmt.Errorf("failed to decode payment response: %w", err)
	}

	zap.L().Info("payment created",
		zap.String("namespace", "payment"),
		zap.String("payment_id", p.ID),
		zap.String("status", p.Status),
		zap.String("amount", req.Amount.StringFixed(2)),
	)
	return &p, nil
}

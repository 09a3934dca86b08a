package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePayment(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v3/payments", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "shop-1", user)
		assert.Equal(t, "secret", pass)
		assert.NotEmpty(t, r.Header.Get("Idempotence-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "2a3b-0001",
			"status": "pending",
			"paid": false,
			"amount": {"value": "25.00", "currency": "RUB"},
			"confirmation": {"type": "redirect", "confirmation_url": "https://pay.example/confirm/2a3b"}
		}`))
	}))
	defer srv.Close()

	client := NewYooKassaClient(srv.URL+"/v3/", "shop-1", "secret", 0)
	p, err := client.CreatePayment(context.Background(), &Request{
		Amount:      decimal.RequireFromString("25"),
		Currency:    "RUB",
		ReturnURL:   "https://shop.example/payment/success/",
		Capture:     true,
		Description: "Order #42",
	})
	require.NoError(t, err)
	assert.Equal(t, "2a3b-0001", p.ID)
	assert.Equal(t, "pending", p.Status)
	assert.Equal(t, "https://pay.example/confirm/2a3b", p.Confirmation.ConfirmationURL)

	amount := got["amount"].(map[string]interface{})
	assert.Equal(t, "25.00", amount["value"])
	assert.Equal(t, "RUB", amount["currency"])
	confirmation := got["confirmation"].(map[string]interface{})
	assert.Equal(t, "redirect", confirmation["type"])
	assert.Equal(t, "https://shop.example/payment/success/", confirmation["return_url"])
	assert.Equal(t, true, got["capture"])
	assert.Equal(t, "Order #42", got["description"])
}

func TestCreatePaymentGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"type":"error","code":"invalid_credentials","description":"Login has unknown format"}`))
	}))
	defer srv.Close()

	client := NewYooKassaClient(srv.URL, "bad", "bad", 0)
	_, err := client.CreatePayment(context.Background(), &Request{Amount: decimal.NewFromInt(5), Currency: "RUB"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Login has unknown format")
}

func TestCreatePaymentRejectsNonPositiveAmount(t *testing.T) {
	client := NewYooKassaClient("http://127.0.0.1:0", "shop", "secret", 0)
	_, err := client.CreatePayment(context.Background(), &Request{Amount: decimal.Zero})
	assert.Error(t, err)
	_, err = client.CreatePayment(context.Background(), nil)
	assert.Error(t, err)
}

func TestCreatePaymentUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewYooKassaClient(url, "shop", "secret", 0)
	_, err := client.CreatePayment(context.Background(), &Request{Amount: decimal.NewFromInt(1), Currency: "RUB"})
	assert.Error(t, err)
}

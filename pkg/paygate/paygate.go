// Package paygate provides a minimal HTTP client for the hosted payment
// gateway used for bill payments and token purchases.
package paygate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/medvault/medvault_backend/config"
)

var (
	ErrPaymentFailed      = errors.New("paygate: payment failed or cancelled by user")
	ErrValidation         = errors.New("paygate: validation error")
	ErrAmountMismatch     = errors.New("paygate: amount does not match original request")
	ErrInvalidAuthority   = errors.New("paygate: invalid authority")
	ErrAuthorityNotFound  = errors.New("paygate: authority not found")
	ErrUnexpectedResponse = errors.New("paygate: unexpected response from gateway")
)

// Client is a lightweight gateway HTTP client.
type Client struct {
	merchantID  string
	callbackURL string
	baseURL     string
	startPayURL string
	httpClient  *http.Client
}

// New creates a Client from config. Uses sandbox endpoints when cfg.Sandbox is true.
func New(cfg config.PayGateConfig) *Client {
	baseURL := "https://payment.zarinpal.com/pg/v4"
	startPayURL := "https://payment.zarinpal.com/pg/StartPay/"
	if cfg.Sandbox {
		baseURL = "https://sandbox.zarinpal.com/pg/v4"
		startPayURL = "https://sandbox.zarinpal.com/pg/StartPay/"
	}
	return &Client{
		merchantID:  cfg.MerchantID,
		callbackURL: cfg.CallbackURL,
		baseURL:     baseURL,
		startPayURL: startPayURL,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
}

// CallbackURL returns the configured return URL for the gateway.
func (c *Client) CallbackURL() string { return c.callbackURL }

// RequestPayment initiates a payment and returns (authority, paymentPageURL, error).
// amount is in the smallest unit of the given currency.
func (c *Client) RequestPayment(ctx context.Context, amount int64, currency, desc, callbackURL string) (authority string, payURL string, err error) {
	reqBody := map[string]any{
		"merchant_id":  c.merchantID,
		"amount":       amount,
		"currency":     currency,
		"description":  desc,
		"callback_url": callbackURL,
	}

	var resp struct {
		Data struct {
			Code      int    `json:"code"`
			Authority string `json:"authority"`
			Fee       int    `json:"fee"`
			Message   string `json:"message"`
		} `json:"data"`
		Errors any `json:"errors"`
	}

	if err := c.post(ctx, "/payment/request.json", reqBody, &resp); err != nil {
		return "", "", fmt.Errorf("paygate request: %w", err)
	}

	switch resp.Data.Code {
	case 100:
		// success
	case -9:
		return "", "", ErrValidation
	default:
		return "", "", fmt.Errorf("%w (code=%d, msg=%s)", ErrUnexpectedResponse, resp.Data.Code, resp.Data.Message)
	}

	if resp.Data.Authority == "" {
		return "", "", ErrUnexpectedResponse
	}

	return resp.Data.Authority, c.startPayURL + resp.Data.Authority, nil
}

// VerifyPayment verifies a payment after the user returns from the gateway.
// Returns (refID, cardPan, alreadyVerified, error).
// alreadyVerified=true means code 101, a repeat verify of a settled payment;
// callers treat it as success.
func (c *Client) VerifyPayment(ctx context.Context, authority string, amount int64) (refID int64, cardPan string, alreadyVerified bool, err error) {
	reqBody := map[string]any{
		"merchant_id": c.merchantID,
		"amount":      amount,
		"authority":   authority,
	}

	var resp struct {
		Data struct {
			Code     int    `json:"code"`
			RefID    int64  `json:"ref_id"`
			CardPan  string `json:"card_pan"`
			CardHash string `json:"card_hash"`
			Message  string `json:"message"`
		} `json:"data"`
		Errors any `json:"errors"`
	}

	if err := c.post(ctx, "/payment/verify.json", reqBody, &resp); err != nil {
		return 0, "", false, fmt.Errorf("paygate verify: %w", err)
	}

	switch resp.Data.Code {
	case 100:
		return resp.Data.RefID, resp.Data.CardPan, false, nil
	case 101:
		return resp.Data.RefID, resp.Data.CardPan, true, nil
	case -9:
		return 0, "", false, ErrValidation
	case -50:
		return 0, "", false, ErrAmountMismatch
	case -51:
		return 0, "", false, ErrPaymentFailed
	case -54:
		return 0, "", false, ErrInvalidAuthority
	case -55:
		return 0, "", false, ErrAuthorityNotFound
	default:
		return 0, "", false, fmt.Errorf("%w (code=%d, msg=%s)", ErrUnexpectedResponse, resp.Data.Code, resp.Data.Message)
	}
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer res.Body.Close()

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

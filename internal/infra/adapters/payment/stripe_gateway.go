package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"elearning-platform/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*StripeGateway)(nil)

// StripeGateway implements adapter.PaymentGateway against the hosted
// Checkout Session API. The platform stores only the session id; all
// card handling stays on Stripe's side.
type StripeGateway struct {
	secretKey  string
	successURL string
	cancelURL  string
	client     *http.Client
	endpoint   string
}

func NewStripeGateway(secretKey, successURL, cancelURL string) (*StripeGateway, error) {
	if secretKey == "" {
		return nil, errors.New("stripe secret key empty")
	}
	if _, err := url.Parse(successURL); err != nil {
		return nil, fmt.Errorf("invalid success url: %w", err)
	}
	if _, err := url.Parse(cancelURL); err != nil {
		return nil, fmt.Errorf("invalid cancel url: %w", err)
	}
	return &StripeGateway{
		secretKey:  secretKey,
		successURL: successURL,
		cancelURL:  cancelURL,
		client:     &http.Client{Timeout: 15 * time.Second},
		endpoint:   "https://api.stripe.com/v1",
	}, nil
}

func (s *StripeGateway) Name() string { return "stripe" }

type checkoutSessionResponse struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (s *StripeGateway) CreateCheckout(ctx context.Context, amountCents int64, currency, description string) (string, string, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", s.successURL)
	form.Set("cancel_url", s.cancelURL)
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", currency)
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(amountCents, 10))
	form.Set("line_items[0][price_data][product_data][name]", description)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint+"/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(s.secretKey, "")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("stripe: create checkout session: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", "", err
	}
	var out checkoutSessionResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", "", fmt.Errorf("stripe: decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || out.Error != nil {
		msg := "unknown error"
		if out.Error != nil {
			msg = out.Error.Message
		}
		return "", "", fmt.Errorf("stripe: checkout session failed (%d): %s", resp.StatusCode, msg)
	}
	return out.ID, out.URL, nil
}

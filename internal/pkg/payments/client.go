package payments

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

	"github.com/warrox1993/SalonCoiffure-sub001/internal/pkg/env"
)

const defaultStripeAPIBaseURL = "https://api.stripe.com/v1"

// StripeClient talks to the provider's REST API. The webhook pipeline uses it
// for the out-of-band session re-fetch; the booking flow uses it to create
// checkout sessions.
type StripeClient struct {
	SecretKey  string
	APIBaseURL string
	APIVersion string

	HTTPClient *http.Client
}

// CheckoutSession is the authoritative provider-side object for one payment
// attempt.
type CheckoutSession struct {
	ID              string            `json:"id"`
	PaymentIntentID string            `json:"payment_intent"`
	PaymentStatus   string            `json:"payment_status"`
	AmountTotal     int64             `json:"amount_total"`
	Currency        string            `json:"currency"`
	Metadata        map[string]string `json:"metadata"`
	URL             string            `json:"url"`
}

// CreateCheckoutSessionInput carries the booking-side parameters for an
// outbound session.
type CreateCheckoutSessionInput struct {
	BookingID   uint
	CustomerID  uint
	AmountCents int64
	Currency    string
	SuccessURL  string
	CancelURL   string
	ProductName string
}

func NewStripeClientFromEnv() *StripeClient {
	return &StripeClient{
		SecretKey:  strings.TrimSpace(env.GetEnv("STRIPE_SECRET_KEY", "")),
		APIBaseURL: strings.TrimRight(env.GetEnv("STRIPE_API_BASE_URL", defaultStripeAPIBaseURL), "/"),
		APIVersion: strings.TrimSpace(env.GetEnv("STRIPE_API_VERSION_CURRENT", "2023-10-16")),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// GetCheckoutSession re-fetches the authoritative session object by id.
func (c *StripeClient) GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	id := strings.TrimSpace(sessionID)
	if id == "" {
		return nil, errors.New("session id is required")
	}
	if strings.TrimSpace(c.SecretKey) == "" {
		return nil, errors.New("STRIPE_SECRET_KEY is not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.APIBaseURL+"/checkout/sessions/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("stripe session fetch failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var out CheckoutSession
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.ID) == "" {
		return nil, errors.New("stripe session response missing id")
	}
	return &out, nil
}

// CreateCheckoutSession opens a provider-hosted payment page for a booking.
func (c *StripeClient) CreateCheckoutSession(ctx context.Context, in CreateCheckoutSessionInput) (*CheckoutSession, error) {
	if strings.TrimSpace(c.SecretKey) == "" {
		return nil, errors.New("STRIPE_SECRET_KEY is not configured")
	}
	if in.BookingID == 0 || in.CustomerID == 0 {
		return nil, errors.New("booking_id and customer_id are required")
	}
	if in.AmountCents <= 0 {
		return nil, errors.New("amount must be positive")
	}

	currency := strings.ToLower(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = "eur"
	}
	name := strings.TrimSpace(in.ProductName)
	if name == "" {
		name = "Salon booking"
	}

	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", in.SuccessURL)
	form.Set("cancel_url", in.CancelURL)
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", currency)
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(in.AmountCents, 10))
	form.Set("line_items[0][price_data][product_data][name]", name)
	form.Set("metadata[booking_id]", strconv.FormatUint(uint64(in.BookingID), 10))
	form.Set("metadata[customer_id]", strconv.FormatUint(uint64(in.CustomerID), 10))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIBaseURL+"/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("stripe session create failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var out CheckoutSession
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.ID) == "" {
		return nil, errors.New("stripe session create returned empty id")
	}
	return &out, nil
}

func (c *StripeClient) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)
	req.Header.Set("Accept", "application/json")
	if c.APIVersion != "" {
		req.Header.Set("Stripe-Version", c.APIVersion)
	}
}

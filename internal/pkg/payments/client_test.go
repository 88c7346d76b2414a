package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(srv *httptest.Server) *StripeClient {
	return &StripeClient{
		SecretKey:  "sk_test_123",
		APIBaseURL: srv.URL,
		APIVersion: "2023-10-16",
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func TestStripeClient_GetCheckoutSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.URL.Path != "/checkout/sessions/cs_abc" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk_test_123" {
			t.Errorf("unexpected auth header %q", got)
		}
		if got := r.Header.Get("Stripe-Version"); got != "2023-10-16" {
			t.Errorf("unexpected version header %q", got)
		}
		json.NewEncoder(w).Encode(CheckoutSession{
			ID:              "cs_abc",
			PaymentIntentID: "pi_1",
			PaymentStatus:   "paid",
			AmountTotal:     4500,
			Currency:        "eur",
			Metadata:        map[string]string{"booking_id": "42", "customer_id": "7"},
		})
	}))
	defer srv.Close()

	session, err := newTestClient(srv).GetCheckoutSession(context.Background(), "cs_abc")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if session.ID != "cs_abc" || session.PaymentIntentID != "pi_1" || session.AmountTotal != 4500 {
		t.Fatalf("unexpected session: %+v", session)
	}
	if session.Metadata["booking_id"] != "42" {
		t.Fatalf("metadata not decoded: %+v", session.Metadata)
	}
}

func TestStripeClient_GetCheckoutSessionErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": {"message": "No such session"}}`))
	}))
	defer srv.Close()
	client := newTestClient(srv)

	if _, err := client.GetCheckoutSession(context.Background(), "cs_missing"); err == nil {
		t.Fatalf("expected error on 404")
	}
	if _, err := client.GetCheckoutSession(context.Background(), ""); err == nil {
		t.Fatalf("expected error on empty session id")
	}

	client.SecretKey = ""
	if _, err := client.GetCheckoutSession(context.Background(), "cs_abc"); err == nil {
		t.Fatalf("expected error when key is not configured")
	}
}

func TestStripeClient_CreateCheckoutSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/checkout/sessions" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Content-Type"); !strings.HasPrefix(got, "application/x-www-form-urlencoded") {
			t.Errorf("unexpected content type %q", got)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.PostFormValue("metadata[booking_id]") != "42" || r.PostFormValue("metadata[customer_id]") != "7" {
			t.Errorf("metadata not sent: %v", r.PostForm)
		}
		if r.PostFormValue("line_items[0][price_data][unit_amount]") != "4500" {
			t.Errorf("amount not sent: %v", r.PostForm)
		}
		if r.PostFormValue("mode") != "payment" {
			t.Errorf("mode not sent: %v", r.PostForm)
		}
		json.NewEncoder(w).Encode(CheckoutSession{
			ID:  "cs_new",
			URL: "https://checkout.example/session/cs_new",
		})
	}))
	defer srv.Close()

	session, err := newTestClient(srv).CreateCheckoutSession(context.Background(), CreateCheckoutSessionInput{
		BookingID:   42,
		CustomerID:  7,
		AmountCents: 4500,
		Currency:    "EUR",
		SuccessURL:  "https://salon.example/ok",
		CancelURL:   "https://salon.example/cancel",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if session.ID != "cs_new" || session.URL == "" {
		t.Fatalf("unexpected session: %+v", session)
	}
}

func TestStripeClient_CreateCheckoutSessionValidation(t *testing.T) {
	client := &StripeClient{SecretKey: "sk_test", APIBaseURL: "http://unreachable.invalid", HTTPClient: http.DefaultClient}

	cases := []CreateCheckoutSessionInput{
		{CustomerID: 7, AmountCents: 100},                // no booking
		{BookingID: 42, AmountCents: 100},                // no customer
		{BookingID: 42, CustomerID: 7},                   // no amount
		{BookingID: 42, CustomerID: 7, AmountCents: -50}, // negative amount
	}
	for i, in := range cases {
		if _, err := client.CreateCheckoutSession(context.Background(), in); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

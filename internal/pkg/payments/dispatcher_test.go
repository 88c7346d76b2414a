package payments

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/warrox1993/SalonCoiffure-sub001/app/models"
)

func TestDispatcher_UnknownTypeIsAcknowledged(t *testing.T) {
	d := NewDispatcher()
	d.Register("checkout.session.completed", func(ctx context.Context, ev Event) error {
		t.Fatalf("handler must not run for another type")
		return nil
	})

	ev := Event{ID: "evt_1", Type: "customer.subscription.updated"}
	if err := d.Dispatch(context.Background(), ev); err != nil {
		t.Fatalf("unknown type should be a no-op, got %v", err)
	}
	if d.Known(ev.Type) {
		t.Fatalf("type should not be known")
	}
}

func TestDispatcher_HandlerErrorCarriesEventContext(t *testing.T) {
	d := NewDispatcher()
	cause := errors.New("db unavailable")
	d.Register("checkout.session.completed", func(ctx context.Context, ev Event) error {
		return cause
	})

	err := d.Dispatch(context.Background(), Event{ID: "evt_1", Type: "checkout.session.completed"})
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
	if !strings.Contains(err.Error(), "evt_1") {
		t.Fatalf("error should name the event: %v", err)
	}
}

func TestDefaultDispatcher_EndToEnd(t *testing.T) {
	payments := newFakePaymentRepo()
	bookings := newFakeBookingRepo(42)
	seedPayment(t, payments, "cs_abc", 42)

	extractor := NewMetadataExtractor(nil)
	reconciler := NewStateReconciler(payments, bookings)
	d := NewDefaultDispatcher(extractor, reconciler)

	payload := []byte(`{
		"data": {"object": {
			"id": "cs_abc",
			"payment_intent": "pi_1",
			"metadata": {"booking_id": "42", "customer_id": "7"}
		}}
	}`)
	ev := Event{ID: "evt_1", Type: "checkout.session.completed", Payload: payload}
	if err := d.Dispatch(context.Background(), ev); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	p, _ := payments.GetByProviderSessionID("cs_abc")
	if p.Status != models.PaymentStatusSucceeded {
		t.Fatalf("expected SUCCEEDED, got %s", p.Status)
	}
	b, _ := bookings.GetByID(42)
	if b.Status != models.BookingStatusConfirmed {
		t.Fatalf("expected booking CONFIRMED, got %s", b.Status)
	}
}

func TestDefaultDispatcher_ExtractionFailureSurfaces(t *testing.T) {
	extractor := NewMetadataExtractor(nil)
	reconciler := NewStateReconciler(newFakePaymentRepo(), newFakeBookingRepo())
	d := NewDefaultDispatcher(extractor, reconciler)

	ev := Event{ID: "evt_1", Type: "checkout.session.completed", Payload: []byte(`{"data": {"object": {}}}`)}
	err := d.Dispatch(context.Background(), ev)
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed, got %v", err)
	}
}

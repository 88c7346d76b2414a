package payments

import (
	"context"
	"fmt"
	"log"
)

// HandlerFunc processes one claimed, version-approved event.
type HandlerFunc func(ctx context.Context, ev Event) error

// Dispatcher routes events by declared type. The provider sends many event
// types this system does not care about; unknown types are logged and count
// as successfully handled so the provider does not retry them forever.
type Dispatcher struct {
	handlers map[string]HandlerFunc
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string]HandlerFunc)}
}

// Register attaches a handler for an event type. Last registration wins.
func (d *Dispatcher) Register(eventType string, handler HandlerFunc) {
	d.handlers[eventType] = handler
}

// Known reports whether a handler is registered for the event type.
func (d *Dispatcher) Known(eventType string) bool {
	_, ok := d.handlers[eventType]
	return ok
}

// Dispatch runs the handler for the event's type. Handler errors are wrapped
// with the event context and returned to the caller, which records them
// against the claim.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) error {
	handler, ok := d.handlers[ev.Type]
	if !ok {
		log.Printf("webhook event %s: no handler for type %q, acknowledging as no-op", ev.ID, ev.Type)
		return nil
	}
	if err := handler(ctx, ev); err != nil {
		return fmt.Errorf("handler for %q failed on event %s: %w", ev.Type, ev.ID, err)
	}
	return nil
}

// NewDefaultDispatcher wires the payment event types onto the extraction and
// reconciliation pipeline.
func NewDefaultDispatcher(extractor *MetadataExtractor, reconciler *StateReconciler) *Dispatcher {
	d := NewDispatcher()

	reconcile := func(outcome Outcome, reason string) HandlerFunc {
		return func(ctx context.Context, ev Event) error {
			meta, err := extractor.Extract(ctx, ev.Payload)
			if err != nil {
				return err
			}
			return reconciler.Apply(ctx, meta, outcome, reason)
		}
	}

	d.Register("checkout.session.completed", reconcile(OutcomeSucceeded, ""))
	d.Register("payment_intent.succeeded", reconcile(OutcomeSucceeded, ""))
	d.Register("checkout.session.expired", reconcile(OutcomeExpired, "checkout session expired"))
	d.Register("payment_intent.payment_failed", reconcile(OutcomeFailed, "payment failed at provider"))

	return d
}

package payments

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/warrox1993/SalonCoiffure-sub001/app/models"
	"github.com/warrox1993/SalonCoiffure-sub001/app/repository"
	"gorm.io/gorm"
)

// StateReconciler applies extracted event outcomes to the Payment aggregate
// and requests the matching Booking status update. Every transition is
// idempotent: the same outcome applied twice leaves the same end state and
// fires no second booking update.
type StateReconciler struct {
	payments repository.PaymentRepository
	bookings repository.BookingRepository
}

func NewStateReconciler(payments repository.PaymentRepository, bookings repository.BookingRepository) *StateReconciler {
	return &StateReconciler{payments: payments, bookings: bookings}
}

// Apply finds the payment by provider reference and moves it to the status
// the outcome dictates.
func (r *StateReconciler) Apply(ctx context.Context, meta *Metadata, outcome Outcome, failureReason string) error {
	_ = ctx
	if meta == nil {
		return errors.New("metadata is required")
	}

	payment, err := r.locateOrBackfill(meta)
	if err != nil {
		return err
	}

	targetStatus, updates := transitionFor(outcome, meta, failureReason)
	if targetStatus == "" {
		return fmt.Errorf("unknown outcome %q", outcome)
	}

	// Status only moves toward a terminal state. A replay of a reached
	// terminal status falls through to the conditional update and no-ops; a
	// conflicting terminal status is dropped, not an error.
	if models.IsTerminalPaymentStatus(payment.Status) && payment.Status != targetStatus {
		log.Printf("payment %d already terminal (%s), dropping %s outcome for session %s",
			payment.ID, payment.Status, outcome, meta.SessionID)
		return nil
	}

	rows, err := r.payments.UpdateStatusIfNot(payment.ID, targetStatus, updates)
	if err != nil {
		return err
	}
	if rows == 0 {
		// Already at the target status: duplicate delivery or the same
		// logical effect via a second event type. Nothing else to do.
		return nil
	}

	return r.updateBooking(payment.BookingID, outcome)
}

func (r *StateReconciler) locateOrBackfill(meta *Metadata) (*models.Payment, error) {
	if meta.SessionID != "" {
		payment, err := r.payments.GetByProviderSessionID(meta.SessionID)
		if err == nil {
			return payment, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	if meta.ChargeID != "" {
		payment, err := r.payments.GetByProviderChargeID(meta.ChargeID)
		if err == nil {
			return payment, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	// Unknown session: the checkout flow did not record a payment (or runs
	// on another instance that lost the write). Backfill from the extracted
	// identifiers so the event is not lost.
	currency := strings.ToUpper(strings.TrimSpace(meta.Currency))
	if currency == "" {
		currency = "EUR"
	}
	payment := &models.Payment{
		BookingID:         meta.BookingID,
		CustomerID:        meta.CustomerID,
		AmountCents:       meta.AmountCents,
		Currency:          currency,
		Status:            models.PaymentStatusPending,
		ProviderSessionID: meta.SessionID,
		ProviderChargeID:  meta.ChargeID,
	}
	if err := r.payments.Create(payment); err != nil {
		// A concurrent claim holder may have backfilled first; fall back to
		// the stored row.
		if meta.SessionID != "" {
			if existing, lookupErr := r.payments.GetByProviderSessionID(meta.SessionID); lookupErr == nil {
				return existing, nil
			}
		}
		return nil, err
	}
	log.Printf("backfilled payment %d for session %s (booking %d)", payment.ID, meta.SessionID, meta.BookingID)
	return payment, nil
}

func transitionFor(outcome Outcome, meta *Metadata, failureReason string) (string, map[string]interface{}) {
	now := time.Now()
	switch outcome {
	case OutcomeSucceeded:
		updates := map[string]interface{}{
			"paid_at":        now,
			"failure_reason": "",
		}
		if meta.ChargeID != "" {
			updates["provider_charge_id"] = meta.ChargeID
		}
		return models.PaymentStatusSucceeded, updates
	case OutcomeFailed:
		return models.PaymentStatusFailed, map[string]interface{}{
			"failure_reason": failureReason,
		}
	case OutcomeExpired:
		return models.PaymentStatusCancelled, map[string]interface{}{
			"failure_reason": failureReason,
		}
	default:
		return "", nil
	}
}

func (r *StateReconciler) updateBooking(bookingID uint, outcome Outcome) error {
	var status string
	switch outcome {
	case OutcomeSucceeded:
		status = models.BookingStatusConfirmed
	case OutcomeExpired:
		status = models.BookingStatusCancelled
	case OutcomeFailed:
		// Booking stays PENDING_PAYMENT so the customer can retry.
		return nil
	default:
		return fmt.Errorf("unknown outcome %q", outcome)
	}

	if err := r.bookings.UpdateStatus(bookingID, status); err != nil {
		return fmt.Errorf("booking %d status update failed: %w", bookingID, err)
	}
	return nil
}

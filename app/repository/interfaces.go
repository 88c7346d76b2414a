package repository

import (
	"time"

	"github.com/warrox1993/SalonCoiffure-sub001/app/models"
	"gorm.io/gorm"
)

// WebhookEventRepository defines the database operations behind the
// idempotency store. Claim is a single atomic conditional write; a plain
// read-then-write here would reintroduce double processing under concurrent
// delivery.
type WebhookEventRepository interface {
	GetByEventID(provider, eventID string) (*models.WebhookEvent, error)
	// Claim atomically moves the record (creating it if absent) from UNSEEN
	// to PROCESSING under rec.ClaimToken. Returns false when another caller
	// holds a live claim or the event already completed.
	Claim(provider, eventID string, rec *models.WebhookEvent, staleBefore time.Time, reclaimFailed bool) (bool, error)
	// MarkCompleted and MarkFailed apply only while claimToken still holds
	// the PROCESSING claim. They report whether the write applied; a
	// superseded holder gets false, not an error.
	MarkCompleted(provider, eventID, claimToken string) (bool, error)
	MarkFailed(provider, eventID, claimToken, reason string) (bool, error)
	// Release is the administrative override back to UNSEEN.
	Release(provider, eventID string) error
	DeleteTerminalOlderThan(cutoff time.Time) (int64, error)
	CountByStatus() (map[string]int64, error)
	Count() (int64, error)
}

// PaymentRepository defines payment persistence used by the reconciler.
type PaymentRepository interface {
	Create(payment *models.Payment) error
	GetByProviderSessionID(sessionID string) (*models.Payment, error)
	GetByProviderChargeID(chargeID string) (*models.Payment, error)
	// UpdateStatusIfNot applies updates only while the current status differs
	// from the target, so replayed outcomes are absorbed as no-ops. Returns
	// the number of rows changed.
	UpdateStatusIfNot(paymentID uint, targetStatus string, updates map[string]interface{}) (int64, error)
}

// BookingRepository is the contract toward the booking module; the payment
// pipeline only requests status updates through it.
type BookingRepository interface {
	GetByID(id uint) (*models.Booking, error)
	UpdateStatus(id uint, status string) error
}

// Repositories struct holds all repository instances
type Repositories struct {
	WebhookEvent WebhookEventRepository
	Payment      PaymentRepository
	Booking      BookingRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		WebhookEvent: NewWebhookEventRepository(db),
		Payment:      NewPaymentRepository(db),
		Booking:      NewBookingRepository(db),
	}
}

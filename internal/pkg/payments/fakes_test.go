package payments

import (
	"context"
	"sync"
	"time"

	"github.com/warrox1993/SalonCoiffure-sub001/app/models"
	"gorm.io/gorm"
)

// fakeWebhookEventRepo reproduces the repository's compare-and-set semantics
// in memory so claim races can be exercised without a database.
type fakeWebhookEventRepo struct {
	mu     sync.Mutex
	events map[string]*models.WebhookEvent
	nextID uint
}

func newFakeWebhookEventRepo() *fakeWebhookEventRepo {
	return &fakeWebhookEventRepo{events: make(map[string]*models.WebhookEvent)}
}

func (f *fakeWebhookEventRepo) key(provider, eventID string) string {
	return provider + ":" + eventID
}

func (f *fakeWebhookEventRepo) GetByEventID(provider, eventID string) (*models.WebhookEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.events[f.key(provider, eventID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *rec
	return &clone, nil
}

func (f *fakeWebhookEventRepo) Claim(provider, eventID string, rec *models.WebhookEvent, staleBefore time.Time, reclaimFailed bool) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Now()
	existing, ok := f.events[f.key(provider, eventID)]
	if !ok {
		f.nextID++
		stored := &models.WebhookEvent{
			ID:          f.nextID,
			Provider:    provider,
			EventID:     eventID,
			EventType:   rec.EventType,
			APIVersion:  rec.APIVersion,
			PayloadJSON: rec.PayloadJSON,
			Status:      models.WebhookStatusProcessing,
			ClaimToken:  rec.ClaimToken,
			ClaimedAt:   &now,
			CreatedAt:   now,
		}
		f.events[f.key(provider, eventID)] = stored
		return true, nil
	}

	claimable := existing.Status == models.WebhookStatusUnseen ||
		(existing.Status == models.WebhookStatusProcessing && existing.ClaimedAt != nil && existing.ClaimedAt.Before(staleBefore)) ||
		(reclaimFailed && existing.Status == models.WebhookStatusFailed)
	if !claimable {
		return false, nil
	}
	existing.Status = models.WebhookStatusProcessing
	existing.ClaimToken = rec.ClaimToken
	existing.ClaimedAt = &now
	existing.FailureReason = ""
	return true, nil
}

func (f *fakeWebhookEventRepo) MarkCompleted(provider, eventID, claimToken string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.events[f.key(provider, eventID)]
	if !ok || rec.Status != models.WebhookStatusProcessing || rec.ClaimToken != claimToken {
		return false, nil
	}
	now := time.Now()
	rec.Status = models.WebhookStatusCompleted
	rec.CompletedAt = &now
	return true, nil
}

func (f *fakeWebhookEventRepo) MarkFailed(provider, eventID, claimToken, reason string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.events[f.key(provider, eventID)]
	if !ok || rec.Status != models.WebhookStatusProcessing || rec.ClaimToken != claimToken {
		return false, nil
	}
	now := time.Now()
	rec.Status = models.WebhookStatusFailed
	rec.CompletedAt = &now
	rec.FailureReason = reason
	return true, nil
}

func (f *fakeWebhookEventRepo) Release(provider, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.events[f.key(provider, eventID)]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	rec.Status = models.WebhookStatusUnseen
	rec.ClaimToken = ""
	rec.ClaimedAt = nil
	rec.CompletedAt = nil
	rec.FailureReason = ""
	return nil
}

func (f *fakeWebhookEventRepo) DeleteTerminalOlderThan(cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var deleted int64
	for key, rec := range f.events {
		if rec.IsTerminal() && rec.CompletedAt != nil && rec.CompletedAt.Before(cutoff) {
			delete(f.events, key)
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakeWebhookEventRepo) CountByStatus() (map[string]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[string]int64)
	for _, rec := range f.events {
		counts[rec.Status]++
	}
	return counts, nil
}

func (f *fakeWebhookEventRepo) Count() (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.events)), nil
}

// fakePaymentRepo mirrors the conditional-update behavior of the GORM
// implementation.
type fakePaymentRepo struct {
	mu       sync.Mutex
	payments map[uint]*models.Payment
	nextID   uint
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[uint]*models.Payment)}
}

func (f *fakePaymentRepo) Create(payment *models.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	payment.ID = f.nextID
	clone := *payment
	f.payments[payment.ID] = &clone
	return nil
}

func (f *fakePaymentRepo) GetByProviderSessionID(sessionID string) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.payments {
		if p.ProviderSessionID == sessionID {
			clone := *p
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePaymentRepo) GetByProviderChargeID(chargeID string) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.payments {
		if p.ProviderChargeID == chargeID && chargeID != "" {
			clone := *p
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePaymentRepo) UpdateStatusIfNot(paymentID uint, targetStatus string, updates map[string]interface{}) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[paymentID]
	if !ok || p.Status == targetStatus {
		return 0, nil
	}
	p.Status = targetStatus
	if v, ok := updates["failure_reason"].(string); ok {
		p.FailureReason = v
	}
	if v, ok := updates["provider_charge_id"].(string); ok {
		p.ProviderChargeID = v
	}
	if v, ok := updates["paid_at"].(time.Time); ok {
		p.PaidAt = &v
	}
	return 1, nil
}

// fakeBookingRepo records every status update so tests can assert exactly how
// often the booking collaborator was called.
type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[uint]*models.Booking
	updates  []string
}

func newFakeBookingRepo(ids ...uint) *fakeBookingRepo {
	f := &fakeBookingRepo{bookings: make(map[uint]*models.Booking)}
	for _, id := range ids {
		f.bookings[id] = &models.Booking{ID: id, Status: models.BookingStatusPendingPayment}
	}
	return f
}

func (f *fakeBookingRepo) GetByID(id uint) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *b
	return &clone, nil
}

func (f *fakeBookingRepo) UpdateStatus(id uint, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.bookings[id]; ok {
		b.Status = status
	}
	f.updates = append(f.updates, status)
	return nil
}

func (f *fakeBookingRepo) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updates)
}

// fakeSessionFetcher counts calls so tests can prove no out-of-band request
// happened.
type fakeSessionFetcher struct {
	mu      sync.Mutex
	session *CheckoutSession
	err     error
	calls   int
}

func (f *fakeSessionFetcher) GetCheckoutSession(_ context.Context, sessionID string) (*CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.session == nil {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *f.session
	clone.ID = sessionID
	return &clone, nil
}

func (f *fakeSessionFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

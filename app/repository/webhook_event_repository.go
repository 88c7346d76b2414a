package repository

import (
	"time"

	"github.com/warrox1993/SalonCoiffure-sub001/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// webhookEventRepository implements the WebhookEventRepository interface
type webhookEventRepository struct {
	db *gorm.DB
}

// NewWebhookEventRepository creates a new webhook event repository instance
func NewWebhookEventRepository(db *gorm.DB) WebhookEventRepository {
	return &webhookEventRepository{db: db}
}

// GetByEventID retrieves a webhook event by its provider-assigned id
func (r *webhookEventRepository) GetByEventID(provider, eventID string) (*models.WebhookEvent, error) {
	var event models.WebhookEvent
	err := r.db.Where("provider = ? AND event_id = ?", provider, eventID).First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// Claim wins either by inserting the record first (unique index on
// provider+event_id) or by a conditional UPDATE on the stored status. Both
// paths are single atomic writes; losers see RowsAffected == 0.
func (r *webhookEventRepository) Claim(provider, eventID string, rec *models.WebhookEvent, staleBefore time.Time, reclaimFailed bool) (bool, error) {
	now := time.Now()
	fresh := &models.WebhookEvent{
		Provider:    provider,
		EventID:     eventID,
		EventType:   rec.EventType,
		APIVersion:  rec.APIVersion,
		PayloadJSON: rec.PayloadJSON,
		Status:      models.WebhookStatusProcessing,
		ClaimToken:  rec.ClaimToken,
		ClaimedAt:   &now,
	}
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "event_id"},
		},
		DoNothing: true,
	}).Create(fresh)
	if tx.Error != nil {
		return false, tx.Error
	}
	if tx.RowsAffected > 0 {
		return true, nil
	}

	// Record already exists: take it over only from UNSEEN, from a stale
	// PROCESSING claim, or from FAILED when re-claiming is allowed.
	claimable := r.db.
		Where("status = ?", models.WebhookStatusUnseen).
		Or("status = ? AND claimed_at < ?", models.WebhookStatusProcessing, staleBefore)
	if reclaimFailed {
		claimable = claimable.Or("status = ?", models.WebhookStatusFailed)
	}

	res := r.db.Model(&models.WebhookEvent{}).
		Where("provider = ? AND event_id = ?", provider, eventID).
		Where(claimable).
		Updates(map[string]interface{}{
			"status":         models.WebhookStatusProcessing,
			"claim_token":    rec.ClaimToken,
			"claimed_at":     now,
			"failure_reason": "",
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// MarkCompleted moves a held claim to COMPLETED. The claim token pins the
// write to the holder: after a stale-claim takeover the superseded caller
// matches zero rows and cannot touch the live claim.
func (r *webhookEventRepository) MarkCompleted(provider, eventID, claimToken string) (bool, error) {
	now := time.Now()
	res := r.db.Model(&models.WebhookEvent{}).
		Where("provider = ? AND event_id = ? AND status = ? AND claim_token = ?",
			provider, eventID, models.WebhookStatusProcessing, claimToken).
		Updates(map[string]interface{}{
			"status":       models.WebhookStatusCompleted,
			"completed_at": now,
		})
	return res.RowsAffected > 0, res.Error
}

// MarkFailed moves a held claim to FAILED and records the reason
func (r *webhookEventRepository) MarkFailed(provider, eventID, claimToken, reason string) (bool, error) {
	now := time.Now()
	res := r.db.Model(&models.WebhookEvent{}).
		Where("provider = ? AND event_id = ? AND status = ? AND claim_token = ?",
			provider, eventID, models.WebhookStatusProcessing, claimToken).
		Updates(map[string]interface{}{
			"status":         models.WebhookStatusFailed,
			"completed_at":   now,
			"failure_reason": reason,
		})
	return res.RowsAffected > 0, res.Error
}

// Release resets a record to UNSEEN so it can be claimed again
func (r *webhookEventRepository) Release(provider, eventID string) error {
	res := r.db.Model(&models.WebhookEvent{}).
		Where("provider = ? AND event_id = ?", provider, eventID).
		Updates(map[string]interface{}{
			"status":         models.WebhookStatusUnseen,
			"claim_token":    "",
			"claimed_at":     nil,
			"completed_at":   nil,
			"failure_reason": "",
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteTerminalOlderThan removes terminal-state records past retention. The
// horizon is measured from completed_at, when the record reached its terminal
// state, so a record that was released and reprocessed late keeps a full
// retention window.
func (r *webhookEventRepository) DeleteTerminalOlderThan(cutoff time.Time) (int64, error) {
	res := r.db.
		Where("status IN ? AND completed_at < ?", []string{models.WebhookStatusCompleted, models.WebhookStatusFailed}, cutoff).
		Delete(&models.WebhookEvent{})
	return res.RowsAffected, res.Error
}

// CountByStatus returns event counts grouped by processing status
func (r *webhookEventRepository) CountByStatus() (map[string]int64, error) {
	type row struct {
		Status string
		Total  int64
	}
	var rows []row
	err := r.db.Model(&models.WebhookEvent{}).
		Select("status, COUNT(*) as total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, rw := range rows {
		counts[rw.Status] = rw.Total
	}
	return counts, nil
}

// Count returns the total number of webhook event records
func (r *webhookEventRepository) Count() (int64, error) {
	var total int64
	err := r.db.Model(&models.WebhookEvent{}).Count(&total).Error
	return total, err
}

package models

import "time"

// Payment provider constants used across payment-related models.
const (
	PaymentProviderStripe = "stripe"
)

// Processing states of a webhook event record. Exactly one caller may move a
// record from UNSEEN to PROCESSING; only the claim holder moves it on to a
// terminal state.
const (
	WebhookStatusUnseen     = "UNSEEN"
	WebhookStatusProcessing = "PROCESSING"
	WebhookStatusCompleted  = "COMPLETED"
	WebhookStatusFailed     = "FAILED"
)

// WebhookEvent stores provider webhook payloads with deduplication and claim
// metadata for idempotent processing across service instances.
type WebhookEvent struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Provider      string     `gorm:"type:varchar(20);not null;index:ux_webhook_events_provider_event,unique,priority:1;index" json:"provider"`
	EventID       string     `gorm:"type:varchar(191);not null;index:ux_webhook_events_provider_event,unique,priority:2" json:"event_id"`
	EventType     string     `gorm:"type:varchar(100);not null;index" json:"event_type"`
	APIVersion    string     `gorm:"type:varchar(32);default:''" json:"api_version"`
	Status        string     `gorm:"type:varchar(16);not null;default:'UNSEEN';index" json:"status"`
	PayloadJSON   string     `gorm:"type:longtext;not null" json:"payload_json"`
	ClaimToken    string     `gorm:"type:varchar(36);not null;default:''" json:"-"`
	ClaimedAt     *time.Time `gorm:"type:timestamp;default:null" json:"claimed_at,omitempty"`
	CompletedAt   *time.Time `gorm:"type:timestamp;default:null" json:"completed_at,omitempty"`
	FailureReason string     `gorm:"type:text" json:"failure_reason"`
	CreatedAt     time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsTerminal reports whether the record reached a final processing state.
func (e *WebhookEvent) IsTerminal() bool {
	return e.Status == WebhookStatusCompleted || e.Status == WebhookStatusFailed
}

package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PaymentStatusPending   = "PENDING"
	PaymentStatusSucceeded = "SUCCEEDED"
	PaymentStatusFailed    = "FAILED"
	PaymentStatusCancelled = "CANCELLED"
	PaymentStatusRefunded  = "REFUNDED"
)

// Payment is one payment attempt tied to exactly one booking. Status moves
// monotonically toward a terminal state for a given provider reference;
// re-applying a reached terminal status is a no-op.
type Payment struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	PublicID          string     `gorm:"type:varchar(36);not null;uniqueIndex" json:"public_id"`
	BookingID         uint       `gorm:"not null;index" json:"booking_id" validate:"required"`
	CustomerID        uint       `gorm:"not null;index" json:"customer_id" validate:"required"`
	AmountCents       int64      `gorm:"not null;default:0" json:"amount_cents" validate:"gte=0"`
	Currency          string     `gorm:"type:varchar(3);not null;default:'EUR'" json:"currency" validate:"required,len=3"`
	Status            string     `gorm:"type:varchar(16);not null;default:'PENDING';index" json:"status" validate:"oneof=PENDING SUCCEEDED FAILED CANCELLED REFUNDED"`
	ProviderSessionID string     `gorm:"type:varchar(191);default:'';uniqueIndex" json:"provider_session_id"`
	ProviderChargeID  string     `gorm:"type:varchar(191);default:'';index" json:"provider_charge_id"`
	FailureReason     string     `gorm:"type:text" json:"failure_reason"`
	PaidAt            *time.Time `gorm:"type:timestamp;default:null" json:"paid_at,omitempty"`
	RefundedAt        *time.Time `gorm:"type:timestamp;default:null" json:"refunded_at,omitempty"`
	CreatedAt         time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Payment) Validate() error {
	v := validator.New()

	return v.Struct(p)
}

// BeforeCreate assigns the public reference if the caller did not.
func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.PublicID == "" {
		p.PublicID = uuid.New().String()
	}
	return nil
}

// IsTerminalPaymentStatus reports whether a status admits no further
// transition except refund bookkeeping.
func IsTerminalPaymentStatus(status string) bool {
	switch status {
	case PaymentStatusSucceeded, PaymentStatusFailed, PaymentStatusCancelled, PaymentStatusRefunded:
		return true
	default:
		return false
	}
}

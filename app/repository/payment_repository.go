package repository

import (
	"github.com/warrox1993/SalonCoiffure-sub001/app/models"
	"gorm.io/gorm"
)

// paymentRepository implements the PaymentRepository interface
type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository instance
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

// Create creates a new payment in the database
func (r *paymentRepository) Create(payment *models.Payment) error {
	return r.db.Create(payment).Error
}

// GetByProviderSessionID retrieves a payment by its checkout session reference
func (r *paymentRepository) GetByProviderSessionID(sessionID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.Where("provider_session_id = ?", sessionID).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// GetByProviderChargeID retrieves a payment by its charge/payment-intent reference
func (r *paymentRepository) GetByProviderChargeID(chargeID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.Where("provider_charge_id = ?", chargeID).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// UpdateStatusIfNot conditionally transitions a payment; a payment already at
// the target status is left untouched so replays stay no-ops.
func (r *paymentRepository) UpdateStatusIfNot(paymentID uint, targetStatus string, updates map[string]interface{}) (int64, error) {
	updates["status"] = targetStatus
	res := r.db.Model(&models.Payment{}).
		Where("id = ? AND status <> ?", paymentID, targetStatus).
		Updates(updates)
	return res.RowsAffected, res.Error
}

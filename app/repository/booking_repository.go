package repository

import (
	"github.com/warrox1993/SalonCoiffure-sub001/app/models"
	"gorm.io/gorm"
)

// bookingRepository implements the BookingRepository interface
type bookingRepository struct {
	db *gorm.DB
}

// NewBookingRepository creates a new booking repository instance
func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

// GetByID retrieves a booking by its ID
func (r *bookingRepository) GetByID(id uint) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.First(&booking, id).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// UpdateStatus sets the booking status; writing the current status is a no-op
func (r *bookingRepository) UpdateStatus(id uint, status string) error {
	return r.db.Model(&models.Booking{}).
		Where("id = ? AND status <> ?", id, status).
		Update("status", status).Error
}

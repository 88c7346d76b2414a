package models

import "time"

const (
	BookingStatusPendingPayment = "PENDING_PAYMENT"
	BookingStatusConfirmed      = "CONFIRMED"
	BookingStatusCancelled      = "CANCELLED"
)

// Booking is owned by the booking module; the payment pipeline only reads it
// and requests status updates through BookingRepository.
type Booking struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SalonID    uint      `gorm:"not null;index" json:"salon_id"`
	CustomerID uint      `gorm:"not null;index" json:"customer_id"`
	ServiceID  uint      `gorm:"not null" json:"service_id"`
	Status     string    `gorm:"type:varchar(20);not null;default:'PENDING_PAYMENT';index" json:"status"`
	StartsAt   time.Time `gorm:"type:timestamp;not null" json:"starts_at"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

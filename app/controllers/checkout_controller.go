package controllers

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/warrox1993/SalonCoiffure-sub001/app/models"
	"github.com/warrox1993/SalonCoiffure-sub001/app/repository"
	"github.com/warrox1993/SalonCoiffure-sub001/internal/pkg/payments"
)

// CheckoutRequest is the booking-side input for opening a provider-hosted
// payment page.
type CheckoutRequest struct {
	BookingID   uint   `json:"booking_id" validate:"required"`
	CustomerID  uint   `json:"customer_id" validate:"required"`
	AmountCents int64  `json:"amount_cents" validate:"required,gt=0"`
	Currency    string `json:"currency" validate:"omitempty,len=3"`
	SuccessURL  string `json:"success_url" validate:"required,url"`
	CancelURL   string `json:"cancel_url" validate:"required,url"`
}

// HandleCreateCheckout creates a checkout session for a booking and records
// the pending payment it will settle.
func HandleCreateCheckout(c *fiber.Ctx) error {
	var req CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_body"})
	}
	if err := validator.New().Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_failed", "message": err.Error()})
	}

	repos := repository.GetGlobalRepositories()
	if _, err := repos.Booking.GetByID(req.BookingID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "booking_not_found"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	client := payments.NewStripeClientFromEnv()
	session, err := client.CreateCheckoutSession(ctx, payments.CreateCheckoutSessionInput{
		BookingID:   req.BookingID,
		CustomerID:  req.CustomerID,
		AmountCents: req.AmountCents,
		Currency:    req.Currency,
		SuccessURL:  req.SuccessURL,
		CancelURL:   req.CancelURL,
	})
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "checkout_session_failed"})
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "EUR"
	}
	payment := &models.Payment{
		BookingID:         req.BookingID,
		CustomerID:        req.CustomerID,
		AmountCents:       req.AmountCents,
		Currency:          currency,
		Status:            models.PaymentStatusPending,
		ProviderSessionID: session.ID,
	}
	if err := repos.Payment.Create(payment); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "payment_persist_failed"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"payment_id":   payment.PublicID,
		"session_id":   session.ID,
		"checkout_url": session.URL,
	})
}

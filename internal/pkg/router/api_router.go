package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/warrox1993/SalonCoiffure-sub001/app/controllers"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New(limiter.Config{
		// The provider retries on 429 like on any failure; keep the limit
		// high enough that webhook bursts never trip it.
		Max: 300,
	}))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	// API v1 routes
	v1 := api.Group("/v1")
	v1.Post("/payments/webhook", controllers.HandleStripeWebhook)
	v1.Post("/payments/checkout", controllers.HandleCreateCheckout)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}

package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/warrox1993/SalonCoiffure-sub001/app/controllers"
	"github.com/warrox1993/SalonCoiffure-sub001/internal/pkg/middleware"
)

type AdminRouter struct {
}

func (h AdminRouter) InstallRouter(app *fiber.App) {
	adminGroup := app.Group("/admin", middleware.AdminKeyMiddleware())

	// Webhook operations
	adminGroup.Get("/webhooks/migration-status", controllers.HandleWebhookMigrationStatus)
	adminGroup.Get("/webhooks/stats", controllers.HandleWebhookStats)
	adminGroup.Post("/webhooks/release/:event_id", controllers.HandleWebhookRelease)
	adminGroup.Post("/webhooks/sweep", controllers.HandleWebhookSweep)
}

func NewAdminRouter() *AdminRouter {
	return &AdminRouter{}
}

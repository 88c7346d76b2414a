package main

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/warrox1993/SalonCoiffure-sub001/app/controllers"
	"github.com/warrox1993/SalonCoiffure-sub001/app/repository"
	"github.com/warrox1993/SalonCoiffure-sub001/internal/pkg/cache"
	"github.com/warrox1993/SalonCoiffure-sub001/internal/pkg/database"
	"github.com/warrox1993/SalonCoiffure-sub001/internal/pkg/env"
	"github.com/warrox1993/SalonCoiffure-sub001/internal/pkg/jobqueue"
	"github.com/warrox1993/SalonCoiffure-sub001/internal/pkg/router"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()
	repository.InitializeFactory(database.GetDB())

	// Fails fast when the webhook secret is missing.
	controllers.SetupWebhookPipeline()

	// Background retention sweeps
	jobqueue.GetManager().Start()

	// init fiber app
	app := fiber.New(fiber.Config{
		BodyLimit: 1 << 20, // webhook payloads are small; 1 MiB is generous
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics
	app.Get("/metrics", basicauth.New(basicauth.Config{
		Users: map[string]string{
			"admin": env.GetEnv("METRICS_PASSWORD", "test"),
		},
	}), monitor.New())

	// ROUTER
	router.InstallRouter(app)

	return app
}

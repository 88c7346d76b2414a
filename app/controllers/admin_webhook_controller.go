package controllers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/warrox1993/SalonCoiffure-sub001/app/models"
	"github.com/warrox1993/SalonCoiffure-sub001/app/repository"
	"github.com/warrox1993/SalonCoiffure-sub001/internal/pkg/jobqueue"
	"github.com/warrox1993/SalonCoiffure-sub001/internal/pkg/payments"
	"github.com/warrox1993/SalonCoiffure-sub001/internal/pkg/statistics"
)

// HandleWebhookMigrationStatus reports the version cutover state.
func HandleWebhookMigrationStatus(c *fiber.Ctx) error {
	policy := payments.LoadMigrationPolicyFromEnv()
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"phase":           policy.Phase().String(),
		"migration_mode":  policy.MigrationMode,
		"process_legacy":  policy.ProcessLegacy,
		"process_current": policy.ProcessCurrent,
		"legacy_version":  policy.LegacyVersion,
		"current_version": policy.CurrentVersion,
		"default_version": policy.DefaultVersion,
	})
}

// HandleWebhookStats reports event totals and success/failure rates.
func HandleWebhookStats(c *fiber.Ctx) error {
	stats, err := statistics.GetWebhookStats(repository.GetGlobalFactory().GetWebhookEventRepository())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "stats_failed"})
	}
	return c.Status(fiber.StatusOK).JSON(stats)
}

// HandleWebhookRelease manually resets a stuck event record to UNSEEN.
func HandleWebhookRelease(c *fiber.Ctx) error {
	eventID := strings.TrimSpace(c.Params("event_id"))
	if eventID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "event_id_missing"})
	}

	store := payments.NewIdempotencyStore(
		repository.GetGlobalFactory().GetWebhookEventRepository(),
		models.PaymentProviderStripe,
	)
	if err := store.Release(eventID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "event_not_found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "release_failed"})
	}

	statistics.InvalidateWebhookStats()
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "event_id": eventID})
}

// HandleWebhookSweep enqueues a retention sweep. An optional retention_hours
// query overrides the configured horizon for this run.
func HandleWebhookSweep(c *fiber.Ctx) error {
	payload := map[string]interface{}{}
	if raw := strings.TrimSpace(c.Query("retention_hours")); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil || hours <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_retention_hours"})
		}
		payload["retention_hours"] = hours
	}

	job, err := jobqueue.GetManager().GetQueue().EnqueueJob(jobqueue.JobTypeWebhookSweep, payload)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "sweep_enqueue_failed"})
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"ok": true, "job_id": job.ID})
}

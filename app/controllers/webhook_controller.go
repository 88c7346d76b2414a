package controllers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/warrox1993/SalonCoiffure-sub001/app/models"
	"github.com/warrox1993/SalonCoiffure-sub001/app/repository"
	"github.com/warrox1993/SalonCoiffure-sub001/internal/pkg/env"
	"github.com/warrox1993/SalonCoiffure-sub001/internal/pkg/payments"
)

var (
	webhookVerifier  *payments.SignatureVerifier
	webhookProcessor *payments.Processor
)

// SetupWebhookPipeline wires the webhook processing chain once at startup. A
// missing webhook secret is fatal here, not per-request.
func SetupWebhookPipeline() {
	verifier, err := payments.NewSignatureVerifier(env.GetEnv("STRIPE_WEBHOOK_SECRET", ""))
	if err != nil {
		panic(err)
	}
	webhookVerifier = verifier

	repos := repository.GetGlobalRepositories()
	store := payments.NewIdempotencyStore(repos.WebhookEvent, models.PaymentProviderStripe)
	extractor := payments.NewMetadataExtractor(payments.NewStripeClientFromEnv())
	reconciler := payments.NewStateReconciler(repos.Payment, repos.Booking)
	dispatcher := payments.NewDefaultDispatcher(extractor, reconciler)
	webhookProcessor = payments.NewProcessor(store, payments.LoadMigrationPolicyFromEnv(), dispatcher)
}

// HandleStripeWebhook receives provider event notifications. The provider
// delivers at-least-once and concurrently; everything behind this handler is
// built to absorb duplicates.
func HandleStripeWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	signature := strings.TrimSpace(c.Get("Stripe-Signature"))

	if err := webhookVerifier.Verify(rawBody, signature); err != nil {
		// Attacker or config error, never transient. No claim is consumed.
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_signature"})
	}

	ev := parseEventEnvelope(rawBody)
	versionOverride := strings.TrimSpace(c.Query("api_version"))

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	disposition, err := webhookProcessor.Process(ctx, ev, versionOverride)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_persist_failed"})
	}
	return c.Status(statusForDisposition(disposition)).JSON(bodyForDisposition(disposition))
}

// parseEventEnvelope reads the event identity fields. A payload without an id
// gets a content hash so duplicates of it still deduplicate.
func parseEventEnvelope(rawBody []byte) payments.Event {
	var envelope struct {
		ID         string `json:"id"`
		Type       string `json:"type"`
		APIVersion string `json:"api_version"`
	}
	_ = json.Unmarshal(rawBody, &envelope)

	eventID := strings.TrimSpace(envelope.ID)
	if eventID == "" {
		sum := sha256.Sum256(rawBody)
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}

	return payments.Event{
		ID:         eventID,
		Type:       strings.TrimSpace(envelope.Type),
		APIVersion: strings.TrimSpace(envelope.APIVersion),
		Payload:    rawBody,
	}
}

func statusForDisposition(d payments.Disposition) int {
	switch d {
	case payments.DispositionProcessed, payments.DispositionDuplicate,
		payments.DispositionInProgress, payments.DispositionIgnored:
		return fiber.StatusOK
	case payments.DispositionRejectedLegacy, payments.DispositionUnsupported:
		return fiber.StatusBadRequest
	case payments.DispositionFailed:
		return fiber.StatusInternalServerError
	default:
		return fiber.StatusInternalServerError
	}
}

func bodyForDisposition(d payments.Disposition) fiber.Map {
	switch d {
	case payments.DispositionProcessed:
		return fiber.Map{"ok": true}
	case payments.DispositionDuplicate:
		return fiber.Map{"ok": true, "duplicate": true}
	case payments.DispositionInProgress:
		return fiber.Map{"ok": true, "in_progress": true}
	case payments.DispositionIgnored:
		return fiber.Map{"ok": true, "ignored": true}
	case payments.DispositionRejectedLegacy:
		return fiber.Map{"error": "legacy_version_disabled", "retry": "after_migration"}
	case payments.DispositionUnsupported:
		return fiber.Map{"error": "unsupported_api_version"}
	case payments.DispositionFailed:
		return fiber.Map{"error": "processing_failed"}
	default:
		return fiber.Map{"error": "internal_error"}
	}
}

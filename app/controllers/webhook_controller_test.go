package controllers

import (
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"github.com/warrox1993/SalonCoiffure-sub001/internal/pkg/payments"
)

func TestParseEventEnvelope(t *testing.T) {
	body := []byte(`{"id": "evt_1", "type": "checkout.session.completed", "api_version": "2023-10-16", "data": {}}`)
	ev := parseEventEnvelope(body)

	assert.Equal(t, "evt_1", ev.ID)
	assert.Equal(t, "checkout.session.completed", ev.Type)
	assert.Equal(t, "2023-10-16", ev.APIVersion)
	assert.Equal(t, body, ev.Payload)
}

func TestParseEventEnvelopeWithoutID(t *testing.T) {
	body := []byte(`{"type": "checkout.session.completed"}`)
	ev := parseEventEnvelope(body)

	// Missing id falls back to a content hash so redeliveries of the same
	// payload still map to one idempotency key.
	assert.True(t, strings.HasPrefix(ev.ID, "hash:"))
	assert.Len(t, ev.ID, len("hash:")+64)
	assert.Equal(t, ev.ID, parseEventEnvelope(body).ID)

	other := parseEventEnvelope([]byte(`{"type": "other"}`))
	assert.NotEqual(t, ev.ID, other.ID)
}

func TestParseEventEnvelopeInvalidJSON(t *testing.T) {
	ev := parseEventEnvelope([]byte(`not json at all`))

	assert.True(t, strings.HasPrefix(ev.ID, "hash:"))
	assert.Empty(t, ev.Type)
	assert.Empty(t, ev.APIVersion)
}

func TestStatusForDisposition(t *testing.T) {
	assert.Equal(t, fiber.StatusOK, statusForDisposition(payments.DispositionProcessed))
	assert.Equal(t, fiber.StatusOK, statusForDisposition(payments.DispositionDuplicate))
	assert.Equal(t, fiber.StatusOK, statusForDisposition(payments.DispositionInProgress))
	assert.Equal(t, fiber.StatusOK, statusForDisposition(payments.DispositionIgnored))
	assert.Equal(t, fiber.StatusBadRequest, statusForDisposition(payments.DispositionRejectedLegacy))
	assert.Equal(t, fiber.StatusBadRequest, statusForDisposition(payments.DispositionUnsupported))
	assert.Equal(t, fiber.StatusInternalServerError, statusForDisposition(payments.DispositionFailed))
}

func TestBodyForDisposition(t *testing.T) {
	assert.Equal(t, fiber.Map{"ok": true}, bodyForDisposition(payments.DispositionProcessed))
	assert.Equal(t, fiber.Map{"ok": true, "duplicate": true}, bodyForDisposition(payments.DispositionDuplicate))
	assert.Equal(t, fiber.Map{"ok": true, "in_progress": true}, bodyForDisposition(payments.DispositionInProgress))
	assert.Equal(t, fiber.Map{"ok": true, "ignored": true}, bodyForDisposition(payments.DispositionIgnored))

	rejected := bodyForDisposition(payments.DispositionRejectedLegacy)
	assert.Equal(t, "legacy_version_disabled", rejected["error"])

	assert.Equal(t, "unsupported_api_version", bodyForDisposition(payments.DispositionUnsupported)["error"])
	assert.Equal(t, "processing_failed", bodyForDisposition(payments.DispositionFailed)["error"])
}

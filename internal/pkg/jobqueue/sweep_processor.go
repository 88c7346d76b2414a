package jobqueue

import (
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/warrox1993/SalonCoiffure-sub001/app/models"
	"github.com/warrox1993/SalonCoiffure-sub001/app/repository"
	"github.com/warrox1993/SalonCoiffure-sub001/internal/pkg/payments"
	"github.com/warrox1993/SalonCoiffure-sub001/internal/pkg/statistics"
)

// processWebhookSweepJob deletes terminal webhook event records past the
// retention horizon.
func (q *Queue) processWebhookSweepJob(job *Job) error {
	age := payments.RetentionAge()
	if raw, ok := job.Payload["retention_hours"].(float64); ok && raw > 0 {
		age = time.Duration(raw) * time.Hour
	}

	store := payments.NewIdempotencyStore(
		repository.GetGlobalFactory().GetWebhookEventRepository(),
		models.PaymentProviderStripe,
	)
	deleted, err := store.SweepOlderThan(age)
	if err != nil {
		return err
	}

	log.Infof("[JobQueue] Webhook sweep removed %d terminal records older than %s", deleted, age)
	if deleted > 0 {
		statistics.InvalidateWebhookStats()
	}
	return nil
}

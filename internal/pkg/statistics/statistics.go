package statistics

import (
	"encoding/json"
	"log"
	"time"

	"github.com/warrox1993/SalonCoiffure-sub001/app/models"
	"github.com/warrox1993/SalonCoiffure-sub001/app/repository"
	"github.com/warrox1993/SalonCoiffure-sub001/internal/pkg/cache"
)

const (
	CacheKeyWebhookStats = "statistics:webhooks"
	CacheExpiration      = 30 * time.Second
)

// WebhookStats aggregates event processing counts for the ops endpoints.
type WebhookStats struct {
	TotalEvents int64   `json:"total_events"`
	Completed   int64   `json:"completed"`
	Failed      int64   `json:"failed"`
	Processing  int64   `json:"processing"`
	Unseen      int64   `json:"unseen"`
	SuccessRate float64 `json:"success_rate"`
	FailureRate float64 `json:"failure_rate"`
}

// ComputeStats derives totals and rates from per-status counts.
func ComputeStats(counts map[string]int64) WebhookStats {
	stats := WebhookStats{
		Completed:  counts[models.WebhookStatusCompleted],
		Failed:     counts[models.WebhookStatusFailed],
		Processing: counts[models.WebhookStatusProcessing],
		Unseen:     counts[models.WebhookStatusUnseen],
	}
	for _, n := range counts {
		stats.TotalEvents += n
	}

	terminal := stats.Completed + stats.Failed
	if terminal > 0 {
		stats.SuccessRate = float64(stats.Completed) / float64(terminal)
		stats.FailureRate = float64(stats.Failed) / float64(terminal)
	}
	return stats
}

// GetWebhookStats returns the current stats, served from the Redis cache for
// up to CacheExpiration.
func GetWebhookStats(repo repository.WebhookEventRepository) (*WebhookStats, error) {
	if raw, err := cache.Get(CacheKeyWebhookStats); err == nil && raw != "" {
		var cached WebhookStats
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return &cached, nil
		}
	}

	counts, err := repo.CountByStatus()
	if err != nil {
		return nil, err
	}
	stats := ComputeStats(counts)

	if encoded, err := json.Marshal(stats); err == nil {
		if err := cache.Set(CacheKeyWebhookStats, string(encoded), CacheExpiration); err != nil {
			log.Printf("could not cache webhook stats: %v", err)
		}
	}
	return &stats, nil
}

// InvalidateWebhookStats drops the cached snapshot, used after sweeps and
// manual releases so the ops view refreshes immediately.
func InvalidateWebhookStats() {
	if err := cache.Delete(CacheKeyWebhookStats); err != nil {
		log.Printf("could not invalidate webhook stats cache: %v", err)
	}
}

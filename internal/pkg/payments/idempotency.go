package payments

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/warrox1993/SalonCoiffure-sub001/app/models"
	"github.com/warrox1993/SalonCoiffure-sub001/app/repository"
	"github.com/warrox1993/SalonCoiffure-sub001/internal/pkg/cache"
	"github.com/warrox1993/SalonCoiffure-sub001/internal/pkg/env"
	"gorm.io/gorm"
)

const (
	// completedCacheTTL bounds the Redis fast path that short-circuits
	// duplicate deliveries of already-completed events. The database stays
	// authoritative; a cache miss just falls through to it.
	completedCacheTTL = 12 * time.Hour

	defaultClaimTTL      = 5 * time.Minute
	defaultRetentionDays = 90
)

// IdempotencyStore tracks per-event processing state across service
// instances. All state changes go through single conditional writes in the
// repository; the store itself holds no mutable state.
type IdempotencyStore struct {
	repo          repository.WebhookEventRepository
	provider      string
	claimTTL      time.Duration
	reclaimFailed bool
}

// NewIdempotencyStore builds the store from an injected repository.
func NewIdempotencyStore(repo repository.WebhookEventRepository, provider string) *IdempotencyStore {
	claimTTL := defaultClaimTTL
	if raw := env.GetEnv("WEBHOOK_CLAIM_TTL", ""); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
			claimTTL = parsed
		}
	}
	return &IdempotencyStore{
		repo:          repo,
		provider:      strings.ToLower(strings.TrimSpace(provider)),
		claimTTL:      claimTTL,
		reclaimFailed: env.GetBool("WEBHOOK_RECLAIM_FAILED", false),
	}
}

func (s *IdempotencyStore) completedCacheKey(eventID string) string {
	return fmt.Sprintf("webhook:completed:%s:%s", s.provider, eventID)
}

// HasBeenProcessed reports whether the event already reached COMPLETED.
func (s *IdempotencyStore) HasBeenProcessed(eventID string) (bool, error) {
	if val, err := cache.Get(s.completedCacheKey(eventID)); err == nil && val == "1" {
		return true, nil
	}

	rec, err := s.repo.GetByEventID(s.provider, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return rec.Status == models.WebhookStatusCompleted, nil
}

// Claim atomically takes ownership of processing one event id. Exactly one
// concurrent caller gets a token and true; losers do no work and report
// success upstream since the winner makes forward progress. The token is the
// holder's identity for the terminal writes: after a stale-claim takeover the
// superseded holder's token no longer matches anything.
func (s *IdempotencyStore) Claim(ev Event) (string, bool, error) {
	token := uuid.New().String()
	rec := &models.WebhookEvent{
		EventType:   ev.Type,
		APIVersion:  ev.APIVersion,
		PayloadJSON: string(ev.Payload),
		ClaimToken:  token,
	}
	staleBefore := time.Now().Add(-s.claimTTL)
	claimed, err := s.repo.Claim(s.provider, ev.ID, rec, staleBefore, s.reclaimFailed)
	if err != nil || !claimed {
		return "", claimed, err
	}
	return token, true, nil
}

// Complete moves the held claim to COMPLETED and primes the duplicate cache.
// A superseded holder matches nothing and must not prime the cache; the live
// holder owns the terminal state.
func (s *IdempotencyStore) Complete(eventID, claimToken string) error {
	applied, err := s.repo.MarkCompleted(s.provider, eventID, claimToken)
	if err != nil {
		return err
	}
	if !applied {
		log.Printf("webhook event %s: completion skipped, claim was taken over", eventID)
		return nil
	}
	// Best effort; duplicates fall back to the database when Redis is down.
	_ = cache.Set(s.completedCacheKey(eventID), "1", completedCacheTTL)
	return nil
}

// Fail moves the held claim to FAILED with the given reason.
func (s *IdempotencyStore) Fail(eventID, claimToken string, reason error) error {
	msg := ""
	if reason != nil {
		msg = reason.Error()
	}
	applied, err := s.repo.MarkFailed(s.provider, eventID, claimToken, msg)
	if err == nil && !applied {
		log.Printf("webhook event %s: failure mark skipped, claim was taken over", eventID)
	}
	return err
}

// Release is the manual override that unblocks a stuck claim. The cache key
// goes after the row reset so a completion racing with the release cannot
// leave a stale duplicate flag behind.
func (s *IdempotencyStore) Release(eventID string) error {
	if err := s.repo.Release(s.provider, eventID); err != nil {
		return err
	}
	_ = cache.Delete(s.completedCacheKey(eventID))
	return nil
}

// SweepOlderThan deletes terminal-state records past the retention age and
// returns how many were removed.
func (s *IdempotencyStore) SweepOlderThan(age time.Duration) (int64, error) {
	if age <= 0 {
		return 0, errors.New("retention age must be positive")
	}
	return s.repo.DeleteTerminalOlderThan(time.Now().Add(-age))
}

// RetentionAge reads the configured sweep horizon.
func RetentionAge() time.Duration {
	days := defaultRetentionDays
	if raw := env.GetEnv("WEBHOOK_RETENTION_DAYS", ""); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			days = n
		}
	}
	return time.Duration(days) * 24 * time.Hour
}

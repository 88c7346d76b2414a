package payments

import "errors"

var (
	// ErrInvalidSignature marks a payload that failed HMAC verification.
	// Never transient, never retried.
	ErrInvalidSignature = errors.New("invalid webhook signature")

	// ErrConfiguration marks a missing or unusable webhook secret. Checked at
	// startup, not per request.
	ErrConfiguration = errors.New("webhook secret is not configured")

	// ErrExtractionFailed means every extraction strategy was exhausted. This
	// indicates schema drift the code does not handle yet and must surface as
	// an operational alert.
	ErrExtractionFailed = errors.New("metadata extraction failed: all strategies exhausted")
)

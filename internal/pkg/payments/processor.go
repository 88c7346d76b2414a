package payments

import (
	"context"
	"log"
)

// Disposition is the endpoint-facing outcome of running one event through the
// pipeline.
type Disposition int

const (
	// DispositionProcessed: claimed, dispatched and completed.
	DispositionProcessed Disposition = iota
	// DispositionDuplicate: the event already completed earlier.
	DispositionDuplicate
	// DispositionInProgress: another caller holds the claim; no work done.
	DispositionInProgress
	// DispositionIgnored: deliberately acknowledged without side effects
	// (version preparation window).
	DispositionIgnored
	// DispositionRejectedLegacy: legacy schema disabled; provider should
	// retry once migration state allows.
	DispositionRejectedLegacy
	// DispositionUnsupported: version outside both known ranges.
	DispositionUnsupported
	// DispositionFailed: the handler failed; the claim was marked FAILED and
	// the provider should retry.
	DispositionFailed
)

func (d Disposition) String() string {
	switch d {
	case DispositionProcessed:
		return "processed"
	case DispositionDuplicate:
		return "duplicate"
	case DispositionInProgress:
		return "in_progress"
	case DispositionIgnored:
		return "ignored"
	case DispositionRejectedLegacy:
		return "rejected_legacy"
	case DispositionUnsupported:
		return "unsupported"
	case DispositionFailed:
		return "failed"
	default:
		return "invalid"
	}
}

// Processor runs a verified event through version routing, the idempotency
// claim and the dispatcher. Signature verification stays at the HTTP
// boundary so a badly signed request never consumes a claim slot.
type Processor struct {
	store      *IdempotencyStore
	policy     MigrationPolicy
	dispatcher *Dispatcher
}

func NewProcessor(store *IdempotencyStore, policy MigrationPolicy, dispatcher *Dispatcher) *Processor {
	return &Processor{store: store, policy: policy, dispatcher: dispatcher}
}

// Process returns the disposition plus a non-nil error only for transient
// infrastructure failures (persistence); handler failures are folded into
// DispositionFailed with the claim already marked.
func (p *Processor) Process(ctx context.Context, ev Event, versionOverride string) (Disposition, error) {
	done, err := p.store.HasBeenProcessed(ev.ID)
	if err != nil {
		return DispositionFailed, err
	}
	if done {
		return DispositionDuplicate, nil
	}

	switch p.policy.Decide(ev.APIVersion, versionOverride) {
	case ActionRejectLegacy:
		return DispositionRejectedLegacy, nil
	case ActionIgnoreNew:
		return DispositionIgnored, nil
	case ActionUnsupported:
		return DispositionUnsupported, nil
	case ActionProcess:
	}

	token, claimed, err := p.store.Claim(ev)
	if err != nil {
		return DispositionFailed, err
	}
	if !claimed {
		// The winner makes forward progress; losing a claim race is a
		// deliberate no-op reported as success.
		return DispositionInProgress, nil
	}

	if err := p.dispatcher.Dispatch(ctx, ev); err != nil {
		log.Printf("webhook event %s failed: %v", ev.ID, err)
		if failErr := p.store.Fail(ev.ID, token, err); failErr != nil {
			log.Printf("could not mark event %s failed: %v", ev.ID, failErr)
		}
		return DispositionFailed, nil
	}

	if err := p.store.Complete(ev.ID, token); err != nil {
		return DispositionFailed, err
	}
	return DispositionProcessed, nil
}

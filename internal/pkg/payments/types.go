package payments

// Event is one verified provider notification as received on the wire.
type Event struct {
	ID         string
	Type       string
	APIVersion string
	Payload    []byte
}

// Metadata is the business identifier triple recovered from an event payload,
// plus whatever extra fields the winning extraction strategy could supply.
// Strategies return either a complete triple or nothing, never a partial one.
type Metadata struct {
	SessionID  string
	BookingID  uint
	CustomerID uint

	// Optional enrichment, populated by the re-fetch strategy.
	ChargeID    string
	AmountCents int64
	Currency    string
}

// Outcome is the semantic result an event reports about a payment.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
	OutcomeExpired   Outcome = "expired"
)

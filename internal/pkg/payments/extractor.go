package payments

import (
	"context"
	"encoding/json"
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// SessionFetcher is the slice of the provider client the extractor needs for
// its out-of-band strategy.
type SessionFetcher interface {
	GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error)
}

// Strategy is one independent way to recover the identifier triple from a
// payload. It returns a complete Metadata or nothing; partial results are
// never surfaced.
type Strategy struct {
	Name    string
	Extract func(ctx context.Context, payload []byte) (*Metadata, bool)
}

// MetadataExtractor runs an ordered chain of strategies and stops at the
// first success. The order goes from the strictest reading of the expected
// schema down to an out-of-band re-fetch, so a deserializer/version mismatch
// in one layer does not lose the event.
type MetadataExtractor struct {
	strategies []Strategy
}

// NewMetadataExtractor builds the default five-strategy chain.
func NewMetadataExtractor(fetcher SessionFetcher) *MetadataExtractor {
	return &MetadataExtractor{
		strategies: []Strategy{
			{Name: "typed", Extract: extractTyped},
			{Name: "tree", Extract: extractTree},
			{Name: "raw-path", Extract: extractRawPath},
			{Name: "text-scan", Extract: extractTextScan},
			{Name: "refetch", Extract: makeRefetchStrategy(fetcher)},
		},
	}
}

// Extract tries each strategy in order. Exhausting the chain means the
// payload schema drifted past everything this code handles; that is logged
// loudly because it needs operator attention, and ErrExtractionFailed is
// returned so the event is marked FAILED.
func (e *MetadataExtractor) Extract(ctx context.Context, payload []byte) (*Metadata, error) {
	for _, s := range e.strategies {
		if meta, ok := s.Extract(ctx, payload); ok {
			log.Printf("webhook metadata extracted via %s strategy (booking=%d)", s.Name, meta.BookingID)
			return meta, nil
		}
	}
	log.Printf("ALERT: webhook metadata extraction exhausted all %d strategies", len(e.strategies))
	return nil, ErrExtractionFailed
}

// extractTyped deserializes the payload into the expected event shape and
// reads the typed metadata map. Any structural drift (expanded sub-objects,
// non-string metadata values) fails the whole decode.
func extractTyped(_ context.Context, payload []byte) (*Metadata, bool) {
	var raw struct {
		Data struct {
			Object struct {
				ID            string            `json:"id"`
				PaymentIntent string            `json:"payment_intent"`
				Metadata      map[string]string `json:"metadata"`
			} `json:"object"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, false
	}
	return buildMetadata(
		raw.Data.Object.ID,
		raw.Data.Object.Metadata["booking_id"],
		raw.Data.Object.Metadata["customer_id"],
		raw.Data.Object.PaymentIntent,
	)
}

// extractTree converts the payload into a generic key-value tree and walks it
// by key, so unexpected types outside the fields we need cannot break the
// decode.
func extractTree(_ context.Context, payload []byte) (*Metadata, bool) {
	var tree map[string]interface{}
	if err := json.Unmarshal(payload, &tree); err != nil {
		return nil, false
	}

	data, ok := tree["data"].(map[string]interface{})
	if !ok {
		return nil, false
	}
	object, ok := data["object"].(map[string]interface{})
	if !ok {
		return nil, false
	}
	meta, ok := object["metadata"].(map[string]interface{})
	if !ok {
		return nil, false
	}

	sessionID, _ := object["id"].(string)
	booking, _ := meta["booking_id"].(string)
	customer, _ := meta["customer_id"].(string)
	charge, _ := object["payment_intent"].(string)
	return buildMetadata(sessionID, booking, customer, charge)
}

// extractRawPath queries the raw JSON text by path, bypassing
// encoding/json entirely. gjson coerces scalar types, so it survives
// payloads where metadata ids arrive as numbers.
func extractRawPath(_ context.Context, payload []byte) (*Metadata, bool) {
	if !gjson.ValidBytes(payload) {
		return nil, false
	}

	sessionID := gjson.GetBytes(payload, "data.object.id").String()
	booking := gjson.GetBytes(payload, "data.object.metadata.booking_id")
	customer := gjson.GetBytes(payload, "data.object.metadata.customer_id")
	if !booking.Exists() || !customer.Exists() {
		return nil, false
	}
	charge := gjson.GetBytes(payload, "data.object.payment_intent").String()
	return buildMetadata(sessionID, booking.String(), customer.String(), charge)
}

var (
	bookingIDPattern  = regexp.MustCompile(`"booking_id"\s*:\s*"?(\d+)"?`)
	customerIDPattern = regexp.MustCompile(`"customer_id"\s*:\s*"?(\d+)"?`)
	sessionIDPattern  = regexp.MustCompile(`"(cs_[A-Za-z0-9_]+)"`)
)

// extractTextScan pattern-searches the raw text for the three expected keys.
// This is the last line of defense when the payload is not even valid JSON
// (truncation, double-encoding).
func extractTextScan(_ context.Context, payload []byte) (*Metadata, bool) {
	text := string(payload)

	booking := bookingIDPattern.FindStringSubmatch(text)
	customer := customerIDPattern.FindStringSubmatch(text)
	session := sessionIDPattern.FindStringSubmatch(text)
	if booking == nil || customer == nil || session == nil {
		return nil, false
	}
	return buildMetadata(session[1], booking[1], customer[1], "")
}

// makeRefetchStrategy recovers a session id from the payload and asks the
// provider for the authoritative object. Without a recoverable session id no
// network call is made.
func makeRefetchStrategy(fetcher SessionFetcher) func(context.Context, []byte) (*Metadata, bool) {
	return func(ctx context.Context, payload []byte) (*Metadata, bool) {
		if fetcher == nil {
			return nil, false
		}
		sessionID := recoverSessionID(payload)
		if sessionID == "" {
			return nil, false
		}

		session, err := fetcher.GetCheckoutSession(ctx, sessionID)
		if err != nil {
			log.Printf("webhook refetch strategy: session %s fetch failed: %v", sessionID, err)
			return nil, false
		}

		meta, ok := buildMetadata(
			session.ID,
			session.Metadata["booking_id"],
			session.Metadata["customer_id"],
			session.PaymentIntentID,
		)
		if !ok {
			return nil, false
		}
		meta.AmountCents = session.AmountTotal
		meta.Currency = strings.ToUpper(session.Currency)
		return meta, true
	}
}

func recoverSessionID(payload []byte) string {
	if gjson.ValidBytes(payload) {
		if id := gjson.GetBytes(payload, "data.object.id").String(); strings.HasPrefix(id, "cs_") {
			return id
		}
	}
	if m := sessionIDPattern.FindSubmatch(payload); m != nil {
		return string(m[1])
	}
	return ""
}

// buildMetadata validates the triple; anything short of all three fields is
// treated as no result.
func buildMetadata(sessionID, bookingRaw, customerRaw, chargeID string) (*Metadata, bool) {
	sessionID = strings.TrimSpace(sessionID)
	bookingID, okB := parseID(bookingRaw)
	customerID, okC := parseID(customerRaw)
	if sessionID == "" || !okB || !okC {
		return nil, false
	}
	return &Metadata{
		SessionID:  sessionID,
		BookingID:  bookingID,
		CustomerID: customerID,
		ChargeID:   strings.TrimSpace(chargeID),
	}, true
}

func parseID(raw string) (uint, bool) {
	n, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 32)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

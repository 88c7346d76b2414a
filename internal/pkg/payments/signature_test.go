package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"
	"time"
)

func signPayload(t *testing.T, payload []byte, secret string, ts time.Time) string {
	t.Helper()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", ts.Unix())
	mac.Write(payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func TestNewSignatureVerifier_EmptySecret(t *testing.T) {
	if _, err := NewSignatureVerifier(""); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration for empty secret, got %v", err)
	}
	if _, err := NewSignatureVerifier("   "); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration for blank secret, got %v", err)
	}
}

func TestSignatureVerifier_Verify(t *testing.T) {
	payload := []byte(`{"id":"evt_1"}`)
	secret := "whsec_test"

	v, err := NewSignatureVerifier(secret)
	if err != nil {
		t.Fatalf("unexpected verifier error: %v", err)
	}

	now := time.Now()
	if err := v.Verify(payload, signPayload(t, payload, secret, now)); err != nil {
		t.Fatalf("expected valid signature to verify, got %v", err)
	}

	// Wrong secret
	if err := v.Verify(payload, signPayload(t, payload, "whsec_other", now)); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature for wrong secret, got %v", err)
	}

	// Tampered payload
	if err := v.Verify([]byte(`{"id":"evt_2"}`), signPayload(t, payload, secret, now)); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature for tampered payload, got %v", err)
	}

	// Malformed headers
	for _, header := range []string{"", "v1=deadbeef", "t=notanumber,v1=deadbeef", "t=123"} {
		if err := v.Verify(payload, header); !errors.Is(err, ErrInvalidSignature) {
			t.Fatalf("expected ErrInvalidSignature for header %q, got %v", header, err)
		}
	}
}

func TestSignatureVerifier_ReplayTolerance(t *testing.T) {
	payload := []byte(`{"id":"evt_1"}`)
	secret := "whsec_test"

	v, err := NewSignatureVerifier(secret)
	if err != nil {
		t.Fatalf("unexpected verifier error: %v", err)
	}
	frozen := time.Now()
	v.now = func() time.Time { return frozen }

	// Just inside the tolerance window
	inWindow := frozen.Add(-DefaultSignatureTolerance + time.Minute)
	if err := v.Verify(payload, signPayload(t, payload, secret, inWindow)); err != nil {
		t.Fatalf("expected in-window signature to verify, got %v", err)
	}

	// Too old
	stale := frozen.Add(-DefaultSignatureTolerance - time.Minute)
	if err := v.Verify(payload, signPayload(t, payload, secret, stale)); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature for stale timestamp, got %v", err)
	}

	// From the future
	future := frozen.Add(DefaultSignatureTolerance + time.Minute)
	if err := v.Verify(payload, signPayload(t, payload, secret, future)); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature for future timestamp, got %v", err)
	}
}

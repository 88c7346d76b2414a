package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultSignatureTolerance bounds how old a signed timestamp may be before
// the signature is rejected as a replay.
const DefaultSignatureTolerance = 5 * time.Minute

// SignatureVerifier authenticates webhook payloads against the shared secret.
// Verification is pure CPU work; nothing here touches I/O.
type SignatureVerifier struct {
	secret    []byte
	tolerance time.Duration
	now       func() time.Time
}

// NewSignatureVerifier fails with ErrConfiguration when the secret is absent.
func NewSignatureVerifier(secret string) (*SignatureVerifier, error) {
	s := strings.TrimSpace(secret)
	if s == "" {
		return nil, ErrConfiguration
	}
	return &SignatureVerifier{
		secret:    []byte(s),
		tolerance: DefaultSignatureTolerance,
		now:       time.Now,
	}, nil
}

// Verify checks a "t=<unix>,v1=<hex>" signature header against the raw
// payload. The signed message is "<t>.<payload>"; comparison goes through
// hmac.Equal so no timing side-channel leaks.
func (v *SignatureVerifier) Verify(payload []byte, signatureHeader string) error {
	ts, candidates, err := parseSignatureHeader(signatureHeader)
	if err != nil {
		return ErrInvalidSignature
	}

	age := v.now().Sub(time.Unix(ts, 0))
	if age > v.tolerance || age < -v.tolerance {
		return ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, v.secret)
	fmt.Fprintf(mac, "%d.", ts)
	mac.Write(payload)
	expected := mac.Sum(nil)

	for _, sig := range candidates {
		if hmac.Equal(expected, sig) {
			return nil
		}
	}
	return ErrInvalidSignature
}

func parseSignatureHeader(header string) (int64, [][]byte, error) {
	var ts int64 = -1
	var sigs [][]byte

	for _, part := range strings.Split(strings.TrimSpace(header), ",") {
		k, val, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch k {
		case "t":
			parsed, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return 0, nil, err
			}
			ts = parsed
		case "v1":
			decoded, err := hex.DecodeString(strings.ToLower(val))
			if err != nil {
				continue
			}
			sigs = append(sigs, decoded)
		}
	}

	if ts < 0 {
		return 0, nil, fmt.Errorf("signature header missing timestamp")
	}
	if len(sigs) == 0 {
		return 0, nil, fmt.Errorf("signature header missing v1 signature")
	}
	return ts, sigs, nil
}

package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/doltservices/doltbook/internal/domain"
	"github.com/google/uuid"
)

var (
	ErrBadSignature     = errors.New("webhook signature verification failed")
	ErrStaleTimestamp   = errors.New("webhook timestamp outside tolerance")
	ErrMissingSignature = errors.New("webhook signature header missing")
)

// StripeGateway issues payment intents. Checkout itself happens on Stripe's
// side; the webhook receiver completes the loop.
type StripeGateway struct{}

func NewStripeGateway() *StripeGateway {
	return &StripeGateway{}
}

func (g *StripeGateway) Name() domain.PaymentGateway {
	return domain.GatewayStripe
}

func (g *StripeGateway) CreateIntent(_ context.Context, _ *domain.Booking) (*Intent, error) {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return &Intent{
		TransactionID: "pi_" + id,
		ClientSecret:  "pi_" + id + "_secret_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
	}, nil
}

// VerifyStripeSignature checks a Stripe-Signature header (t=<ts>,v1=<hmac>)
// against the raw request body. The signed payload is "<ts>.<body>" and the
// timestamp must be within tolerance of now.
func VerifyStripeSignature(secret string, body []byte, header string, tolerance time.Duration, now time.Time) error {
	if header == "" {
		return ErrMissingSignature
	}

	var timestamp int64
	var signatures []string
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			ts, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("%w: bad timestamp", ErrBadSignature)
			}
			timestamp = ts
		case "v1":
			signatures = append(signatures, value)
		}
	}
	if timestamp == 0 || len(signatures) == 0 {
		return ErrBadSignature
	}

	age := now.Sub(time.Unix(timestamp, 0))
	if age > tolerance || age < -tolerance {
		return ErrStaleTimestamp
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte("."))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, sig := range signatures {
		if hmac.Equal([]byte(expected), []byte(sig)) {
			return nil
		}
	}
	return ErrBadSignature
}

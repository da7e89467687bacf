package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/doltservices/doltbook/internal/domain"
	"github.com/google/uuid"
)

// MercadoPagoGateway issues checkout preferences; payment outcomes arrive on
// the webhook receiver.
type MercadoPagoGateway struct{}

func NewMercadoPagoGateway() *MercadoPagoGateway {
	return &MercadoPagoGateway{}
}

func (g *MercadoPagoGateway) Name() domain.PaymentGateway {
	return domain.GatewayMercadoPago
}

func (g *MercadoPagoGateway) CreateIntent(_ context.Context, _ *domain.Booking) (*Intent, error) {
	return &Intent{
		TransactionID: "mp_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
	}, nil
}

// VerifyMercadoPagoSignature checks an x-signature header (ts=<ts>,v1=<hmac>)
// against the manifest "id:<dataID>;request-id:<requestID>;ts:<ts>;".
func VerifyMercadoPagoSignature(secret, dataID, requestID, header string) error {
	if header == "" {
		return ErrMissingSignature
	}

	var ts, signature string
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "ts":
			ts = value
		case "v1":
			signature = value
		}
	}
	if ts == "" || signature == "" {
		return ErrBadSignature
	}

	manifest := fmt.Sprintf("id:%s;request-id:%s;ts:%s;", dataID, requestID, ts)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(manifest))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrBadSignature
	}
	return nil
}

package domain

import "time"

type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusSucceeded  PaymentStatus = "succeeded"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusRefunded   PaymentStatus = "refunded"
)

type PaymentGateway string

const (
	GatewayStripe      PaymentGateway = "stripe"
	GatewayMercadoPago PaymentGateway = "mercadopago"
	GatewayRazorpay    PaymentGateway = "razorpay"
	GatewayGPay        PaymentGateway = "gpay"
	GatewayPayPal      PaymentGateway = "paypal"
	GatewayCrypto      PaymentGateway = "crypto"
)

func ValidGateway(g PaymentGateway) bool {
	switch g {
	case GatewayStripe, GatewayMercadoPago, GatewayRazorpay, GatewayGPay, GatewayPayPal, GatewayCrypto:
		return true
	}
	return false
}

// Payment is one attempt to pay for a booking. A booking may accumulate
// several attempts; TransactionID is the gateway's correlation key and is
// unique within a gateway.
type Payment struct {
	ID            string
	BookingID     string
	Gateway       PaymentGateway
	TransactionID string
	AmountCents   int64
	Currency      string
	Status        PaymentStatus
	PaymentMethod string
	Metadata      map[string]string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

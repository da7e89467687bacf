package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/doltservices/doltbook/internal/domain"
)

var ErrUnsupportedGateway = errors.New("unsupported payment gateway")

// Intent is the gateway-side handle for a payment attempt. TransactionID is
// the correlation key webhooks reconcile against.
type Intent struct {
	TransactionID string
	ClientSecret  string
	ApprovalURL   string
}

// Gateway starts a checkout for a booking with one external processor.
type Gateway interface {
	Name() domain.PaymentGateway
	CreateIntent(ctx context.Context, booking *domain.Booking) (*Intent, error)
}

// Registry routes payment attempts to the adapter for the requested gateway.
type Registry struct {
	gateways map[domain.PaymentGateway]Gateway
}

func NewRegistry(gateways ...Gateway) *Registry {
	r := &Registry{gateways: make(map[domain.PaymentGateway]Gateway, len(gateways))}
	for _, g := range gateways {
		r.gateways[g.Name()] = g
	}
	return r
}

func (r *Registry) Get(name domain.PaymentGateway) (Gateway, error) {
	g, ok := r.gateways[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedGateway, name)
	}
	return g, nil
}

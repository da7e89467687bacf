package gateway

import (
	"context"
	"strings"
	"time"

	"github.com/doltservices/doltbook/internal/domain"
	"github.com/google/uuid"
)

// SimulatedGateway stands in for processors without a real integration
// (razorpay, gpay, crypto). It waits a fixed processing delay and hands back
// a transaction id; confirmation is driven by the client as with the others.
type SimulatedGateway struct {
	name  domain.PaymentGateway
	delay time.Duration
}

func NewSimulatedGateway(name domain.PaymentGateway, delay time.Duration) *SimulatedGateway {
	return &SimulatedGateway{name: name, delay: delay}
}

func (g *SimulatedGateway) Name() domain.PaymentGateway {
	return g.name
}

func (g *SimulatedGateway) CreateIntent(ctx context.Context, _ *domain.Booking) (*Intent, error) {
	if g.delay > 0 {
		select {
		case <-time.After(g.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return &Intent{
		TransactionID: string(g.name) + "_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
	}, nil
}

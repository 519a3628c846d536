package payment

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Error is an adapter-level failure (gateway rejected the attempt, or the
// requested gateway is missing/not ready).
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return "payment: " + e.Message
}

// Intent is the generic "pay this amount for this order" request the wizard
// hands to an adapter.
type Intent struct {
	OrderID     int
	GatewayID   int
	Amount      float64
	Description string
	Image       string
	PayerName   string
	PayerEmail  string
	PayerMobile string
	ThemeColor  string
}

// Result is the normalized outcome of a gateway attempt. The verify
// round-trip happens regardless; on failure the gateway references stay
// empty and FailureMessage carries the user-facing error.
type Result struct {
	RazorpayPaymentID string
	RazorpayOrderID   string
	PaypalPaymentID   string
	FailureMessage    string
}

// Failed reports whether the gateway attempt did not produce a payment.
func (r Result) Failed() bool {
	return r.FailureMessage != ""
}

// Gateway converts a generic payment intent into gateway-specific calls.
type Gateway interface {
	Brand() string
	Ready() bool
	Pay(ctx context.Context, intent Intent) Result
}

// Registry holds the configured adapters keyed by channel brand.
type Registry struct {
	gateways map[string]Gateway
	logger   *zap.Logger
}

func NewRegistry(logger *zap.Logger, gateways ...Gateway) *Registry {
	byBrand := make(map[string]Gateway, len(gateways))
	for _, g := range gateways {
		byBrand[g.Brand()] = g
	}
	return &Registry{gateways: byBrand, logger: logger}
}

// Recognized reports whether a channel brand has a configured adapter,
// ready or not. Unrecognized channels are never offered to the user.
func (r *Registry) Recognized(brand string) bool {
	_, ok := r.gateways[brand]
	return ok
}

// Gateway returns the adapter for a brand. An unrecognized or not-yet-ready
// gateway surfaces a clear "not available" error instead of doing nothing.
func (r *Registry) Gateway(brand string) (Gateway, error) {
	g, ok := r.gateways[brand]
	if !ok {
		return nil, &Error{Message: fmt.Sprintf("%s is not a supported payment method", brand)}
	}
	if !g.Ready() {
		return nil, &Error{Message: fmt.Sprintf("%s is not available right now, please try again", brand)}
	}
	return g, nil
}

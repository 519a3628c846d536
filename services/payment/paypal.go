package payment

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/plutov/paypal/v4"
	"go.uber.org/zap"

	"fitbuds/models"
)

// paypalOrderAPI is the slice of the PayPal SDK the adapter uses.
type paypalOrderAPI interface {
	GetAccessToken(ctx context.Context) (*paypal.TokenResponse, error)
	CreateOrder(ctx context.Context, intent string, purchaseUnits []paypal.PurchaseUnitRequest, payer *paypal.PaymentSource, appContext *paypal.ApplicationContext) (*paypal.Order, error)
	CaptureOrder(ctx context.Context, orderID string, captureOrderRequest paypal.CaptureOrderRequest) (*paypal.CaptureOrderResponse, error)
}

// PayPalGateway creates a PayPal order for the amount and captures it,
// the server-side half of the button-embed flow.
type PayPalGateway struct {
	api    paypalOrderAPI
	logger *zap.Logger
	ready  atomic.Bool
}

// NewPayPalGateway builds the adapter and performs the token handshake in
// the background; the gateway reports not-ready until it completes. The
// ctx cancels the handshake on teardown.
func NewPayPalGateway(ctx context.Context, clientID, secret string, live bool, logger *zap.Logger) *PayPalGateway {
	g := &PayPalGateway{logger: logger}
	if clientID == "" || secret == "" {
		logger.Warn("paypal credentials missing, gateway disabled")
		return g
	}

	base := paypal.APIBaseSandBox
	if live {
		base = paypal.APIBaseLive
	}
	client, err := paypal.NewClient(clientID, secret, base)
	if err != nil {
		logger.Warn("paypal client init failed", zap.Error(err))
		return g
	}
	g.api = client

	go func() {
		if _, err := client.GetAccessToken(ctx); err != nil {
			logger.Warn("paypal token handshake failed", zap.Error(err))
			return
		}
		g.ready.Store(true)
		logger.Info("paypal gateway ready")
	}()
	return g
}

func (g *PayPalGateway) Brand() string { return models.BrandPaypal }

func (g *PayPalGateway) Ready() bool { return g.ready.Load() }

func (g *PayPalGateway) Pay(ctx context.Context, intent Intent) Result {
	units := []paypal.PurchaseUnitRequest{{
		Amount: &paypal.PurchaseUnitAmount{
			Currency: "USD",
			Value:    fmt.Sprintf("%.2f", intent.Amount),
		},
		Description: intent.Description,
	}}

	order, err := g.api.CreateOrder(ctx, paypal.OrderIntentCapture, units, nil, nil)
	if err != nil {
		g.logger.Warn("paypal order create failed", zap.Error(err))
		return Result{FailureMessage: "PayPal payment failed. Please try again."}
	}

	capture, err := g.api.CaptureOrder(ctx, order.ID, paypal.CaptureOrderRequest{})
	if err != nil {
		g.logger.Warn("paypal capture failed", zap.String("order", order.ID), zap.Error(err))
		return Result{FailureMessage: "PayPal payment failed. Please try again."}
	}

	return Result{PaypalPaymentID: capture.ID}
}

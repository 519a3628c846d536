package payment

import (
	"context"
	"fmt"
	"math"

	razorpay "github.com/razorpay/razorpay-go"
	"go.uber.org/zap"

	"fitbuds/models"
)

// razorpayOrderAPI is the slice of the Razorpay SDK the adapter uses.
type razorpayOrderAPI interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
	Payments(orderID string, data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

// RazorpayGateway drives Razorpay's hosted checkout: it creates a
// gateway-side order carrying the amount in minor units plus the payer
// prefill and theme color, then reads back the payment made against it.
type RazorpayGateway struct {
	orders razorpayOrderAPI
	logger *zap.Logger
	ready  bool
}

// NewRazorpayGateway builds the adapter. Missing credentials leave the
// gateway configured but not ready, so paying with it reports a clear error.
func NewRazorpayGateway(keyID, keySecret string, logger *zap.Logger) *RazorpayGateway {
	if keyID == "" || keySecret == "" {
		logger.Warn("razorpay credentials missing, gateway disabled")
		return &RazorpayGateway{logger: logger}
	}
	client := razorpay.NewClient(keyID, keySecret)
	return &RazorpayGateway{orders: client.Order, logger: logger, ready: true}
}

func (g *RazorpayGateway) Brand() string { return models.BrandRazorpay }

func (g *RazorpayGateway) Ready() bool { return g.ready }

func (g *RazorpayGateway) Pay(ctx context.Context, intent Intent) Result {
	data := map[string]interface{}{
		"amount":   int(math.Round(intent.Amount * 100)),
		"currency": "INR",
		"receipt":  fmt.Sprintf("order_%d", intent.OrderID),
		"notes": map[string]interface{}{
			"description": intent.Description,
			"image":       intent.Image,
			"name":        intent.PayerName,
			"email":       intent.PayerEmail,
			"contact":     intent.PayerMobile,
			"theme_color": intent.ThemeColor,
		},
	}

	order, err := g.orders.Create(data, nil)
	if err != nil {
		g.logger.Warn("razorpay order create failed", zap.Error(err))
		return Result{FailureMessage: "Payment failed. Please try again."}
	}
	orderID, _ := order["id"].(string)

	paymentID, err := g.capturedPayment(orderID)
	if err != nil {
		g.logger.Warn("razorpay payment lookup failed",
			zap.String("order", orderID), zap.Error(err))
		// Keep the order reference so verification can still match it up.
		return Result{RazorpayOrderID: orderID, FailureMessage: "Payment failed. Please try again."}
	}

	return Result{RazorpayPaymentID: paymentID, RazorpayOrderID: orderID}
}

// capturedPayment returns the id of the payment completed against the order.
func (g *RazorpayGateway) capturedPayment(orderID string) (string, error) {
	payments, err := g.orders.Payments(orderID, nil, nil)
	if err != nil {
		return "", err
	}
	items, _ := payments["items"].([]interface{})
	for _, raw := range items {
		item, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		status, _ := item["status"].(string)
		if status == "captured" || status == "authorized" {
			id, _ := item["id"].(string)
			return id, nil
		}
	}
	return "", fmt.Errorf("no completed payment on order %s", orderID)
}

package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRazorpayOrders struct {
	createData   map[string]interface{}
	createResult map[string]interface{}
	createErr    error

	paymentsFor    string
	paymentsResult map[string]interface{}
	paymentsErr    error
}

func (f *fakeRazorpayOrders) Create(data map[string]interface{}, _ map[string]string) (map[string]interface{}, error) {
	f.createData = data
	return f.createResult, f.createErr
}

func (f *fakeRazorpayOrders) Payments(orderID string, _ map[string]interface{}, _ map[string]string) (map[string]interface{}, error) {
	f.paymentsFor = orderID
	return f.paymentsResult, f.paymentsErr
}

func razorpayWith(orders razorpayOrderAPI) *RazorpayGateway {
	return &RazorpayGateway{orders: orders, logger: zap.NewNop(), ready: true}
}

func TestRazorpayPayCreatesOrderInMinorUnits(t *testing.T) {
	fake := &fakeRazorpayOrders{
		createResult: map[string]interface{}{"id": "order_9"},
		paymentsResult: map[string]interface{}{
			"items": []interface{}{
				map[string]interface{}{"id": "pay_1", "status": "failed"},
				map[string]interface{}{"id": "pay_2", "status": "captured"},
			},
		},
	}
	g := razorpayWith(fake)

	result := g.Pay(context.Background(), Intent{
		OrderID:     77,
		Amount:      535.50,
		Description: "Appointment with Dr. P1",
		PayerName:   "Jane",
		PayerEmail:  "j@x.com",
		PayerMobile: "9000000000",
		ThemeColor:  "#2563eb",
	})

	require.False(t, result.Failed())
	assert.Equal(t, "pay_2", result.RazorpayPaymentID)
	assert.Equal(t, "order_9", result.RazorpayOrderID)
	assert.Equal(t, "order_9", fake.paymentsFor)

	assert.Equal(t, 53550, fake.createData["amount"])
	assert.Equal(t, "INR", fake.createData["currency"])
	assert.Equal(t, "order_77", fake.createData["receipt"])
	notes, ok := fake.createData["notes"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Jane", notes["name"])
	assert.Equal(t, "#2563eb", notes["theme_color"])
}

func TestRazorpayPayFailsWhenOrderCreateFails(t *testing.T) {
	fake := &fakeRazorpayOrders{createErr: errors.New("gateway down")}
	g := razorpayWith(fake)

	result := g.Pay(context.Background(), Intent{OrderID: 77, Amount: 100})
	assert.True(t, result.Failed())
	assert.Empty(t, result.RazorpayPaymentID)
	assert.Empty(t, result.RazorpayOrderID)
}

func TestRazorpayPayKeepsOrderIDWhenNoPaymentCompletes(t *testing.T) {
	fake := &fakeRazorpayOrders{
		createResult: map[string]interface{}{"id": "order_9"},
		paymentsResult: map[string]interface{}{
			"items": []interface{}{
				map[string]interface{}{"id": "pay_1", "status": "failed"},
			},
		},
	}
	g := razorpayWith(fake)

	result := g.Pay(context.Background(), Intent{OrderID: 77, Amount: 100})
	assert.True(t, result.Failed())
	assert.Empty(t, result.RazorpayPaymentID)
	assert.Equal(t, "order_9", result.RazorpayOrderID)
}

func TestRazorpayWithoutCredentialsIsNotReady(t *testing.T) {
	g := NewRazorpayGateway("", "", zap.NewNop())
	assert.False(t, g.Ready())
}

func TestRegistryGatewaySelection(t *testing.T) {
	ready := &stubRegistryGateway{brand: "Razorpay", ready: true}
	down := &stubRegistryGateway{brand: "Paypal", ready: false}
	reg := NewRegistry(zap.NewNop(), ready, down)

	assert.True(t, reg.Recognized("Razorpay"))
	assert.True(t, reg.Recognized("Paypal"))
	assert.False(t, reg.Recognized("Stripe"))

	g, err := reg.Gateway("Razorpay")
	require.NoError(t, err)
	assert.Equal(t, "Razorpay", g.Brand())

	_, err = reg.Gateway("Stripe")
	require.Error(t, err)
	var pErr *Error
	require.True(t, errors.As(err, &pErr))
	assert.Contains(t, pErr.Message, "not a supported payment method")

	_, err = reg.Gateway("Paypal")
	require.Error(t, err)
	require.True(t, errors.As(err, &pErr))
	assert.Contains(t, pErr.Message, "not available right now")
}

type stubRegistryGateway struct {
	brand string
	ready bool
}

func (g *stubRegistryGateway) Brand() string { return g.brand }
func (g *stubRegistryGateway) Ready() bool   { return g.ready }
func (g *stubRegistryGateway) Pay(context.Context, Intent) Result {
	return Result{}
}

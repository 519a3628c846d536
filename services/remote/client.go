package remote

import (
	"context"
	"fmt"

	"fitbuds/models"
)

// Client is the typed surface over the remote scheduling/commerce API.
// One method per remote operation; no state beyond credentials lives here.
type Client interface {
	// FetchCategories lists consultation categories, excluding any with an
	// empty provider list.
	FetchCategories(ctx context.Context) ([]models.Category, error)
	// FetchTimeslots loads a provider's meeting calendar for a fixed 30-day
	// horizon starting today.
	FetchTimeslots(ctx context.Context, providerID, authID int) ([]models.DayAvailability, error)
	// CheckUserExists reports whether a remote identity exists for the
	// mobile/country-code pair.
	CheckUserExists(ctx context.Context, countryCode, mobile, password string) (bool, error)
	// RegisterUser creates a new remote identity.
	RegisterUser(ctx context.Context, user models.UserData) error
	// LoginUser returns (nil, nil) when authentication is rejected so the
	// caller can fall back to registration; only transport-level failures
	// are returned as errors.
	LoginUser(ctx context.Context, username, password string) (*models.AuthData, error)
	// ReserveMeeting books the slot for the authenticated user.
	ReserveMeeting(ctx context.Context, token string, timeID int, date string) error
	FetchCart(ctx context.Context, authID int) (*models.Cart, error)
	ValidateCoupon(ctx context.Context, token, coupon string) (*models.CouponStatus, error)
	RemoveCartItem(ctx context.Context, itemID, authID int) error
	// CheckoutCart converts the cart into an order; coupon is sent only
	// when its last validation succeeded.
	CheckoutCart(ctx context.Context, authID int, coupon string) (*models.CheckoutData, error)
	RequestPayment(ctx context.Context, token string, authID, gatewayID, orderID int) error
	// VerifyPayment completes the payment round-trip and returns the remote
	// verdict. Gateway references may be empty when the gateway failed.
	VerifyPayment(ctx context.Context, req VerifyRequest) (bool, error)
}

// VerifyRequest carries everything the verify endpoint needs. Exactly one
// set of gateway references is used, keyed by Brand.
type VerifyRequest struct {
	Brand             string
	AuthID            int
	GatewayID         int
	OrderID           int
	RazorpayPaymentID string
	RazorpayOrderID   string
	PaypalPaymentID   string
}

// APIError is raised for any remote call that returns a falsy success flag,
// a non-2xx status or fails at the transport level.
type APIError struct {
	Op      string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("remote api: %s: status %d: %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("remote api: %s: %s", e.Op, e.Message)
}

func newAPIError(op string, status int, message string) *APIError {
	if message == "" {
		message = "request failed"
	}
	return &APIError{Op: op, Status: status, Message: message}
}

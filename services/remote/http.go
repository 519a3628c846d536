package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"fitbuds/models"
)

const availabilityHorizonDays = 30

// HTTPClient talks to the remote scheduling/commerce API. Every request
// carries the API key header; authenticated requests add a bearer token.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *zap.Logger

	// now is swapped in tests to pin the availability window.
	now func() time.Time
}

// NewHTTPClient builds the remote API client.
func NewHTTPClient(baseURL, apiKey string, logger *zap.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
		now:     time.Now,
	}
}

// envelope is the response wrapper every endpoint uses.
type envelope struct {
	Success bool            `json:"success"`
	Status  string          `json:"status,omitempty"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (c *HTTPClient) do(ctx context.Context, op, method, path, token string, body io.Reader, contentType string) (*envelope, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, newAPIError(op, 0, err.Error())
	}
	req.Header.Set("x-api-key", c.apiKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, newAPIError(op, 0, err.Error())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newAPIError(op, resp.StatusCode, err.Error())
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, newAPIError(op, resp.StatusCode, "malformed response")
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(op, resp.StatusCode, env.Message)
	}
	return &env, nil
}

func (c *HTTPClient) postJSON(ctx context.Context, op, path, token string, payload any) (*envelope, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, newAPIError(op, 0, err.Error())
	}
	return c.do(ctx, op, http.MethodPost, path, token, bytes.NewReader(body), "application/json")
}

// FetchCategories lists categories, dropping those with no providers.
func (c *HTTPClient) FetchCategories(ctx context.Context) ([]models.Category, error) {
	env, err := c.do(ctx, "fetchCategories", http.MethodGet, "/providers/consultationHome?search", "", nil, "")
	if err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, newAPIError("fetchCategories", 0, env.Message)
	}
	var all []models.Category
	if err := json.Unmarshal(env.Data, &all); err != nil {
		return nil, newAPIError("fetchCategories", 0, "malformed category payload")
	}
	categories := make([]models.Category, 0, len(all))
	for _, cat := range all {
		if len(cat.List) > 0 {
			categories = append(categories, cat)
		}
	}
	return categories, nil
}

// FetchTimeslots loads the provider's calendar for the next 30 days.
func (c *HTTPClient) FetchTimeslots(ctx context.Context, providerID, authID int) ([]models.DayAvailability, error) {
	if authID == 0 {
		authID = 1
	}
	start := c.now()
	end := start.AddDate(0, 0, availabilityHorizonDays)
	path := fmt.Sprintf("/users/%d/meetingCalendar?test_auth_id=%d&start_date=%s&end_date=%s",
		providerID, authID, start.Format("2006-01-02"), end.Format("2006-01-02"))

	env, err := c.do(ctx, "fetchTimeslots", http.MethodGet, path, "", nil, "")
	if err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, newAPIError("fetchTimeslots", 0, env.Message)
	}
	var data struct {
		Timeslots []models.DayAvailability `json:"timeslots"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, newAPIError("fetchTimeslots", 0, "malformed calendar payload")
	}
	return data.Timeslots, nil
}

// CheckUserExists asks the remote registry about a mobile/country-code pair.
func (c *HTTPClient) CheckUserExists(ctx context.Context, countryCode, mobile, password string) (bool, error) {
	payload := map[string]string{
		"country_code": countryCode,
		"mobile":       mobile,
		"password":     password,
	}
	env, err := c.postJSON(ctx, "checkUserExists", "/user/is_registered", "", payload)
	if err != nil {
		return false, err
	}
	switch env.Status {
	case "retrieved":
		return true, nil
	case "not_found":
		return false, nil
	}
	return false, newAPIError("checkUserExists", 0, "unexpected status "+env.Status)
}

// RegisterUser creates a remote identity via one-step registration.
func (c *HTTPClient) RegisterUser(ctx context.Context, user models.UserData) error {
	form := url.Values{}
	form.Set("country_code", user.CountryCode)
	form.Set("mobile", user.Mobile)
	form.Set("full_name", user.FullName)
	if user.ReferralCode != "" {
		form.Set("referral_code", user.ReferralCode)
	}
	env, err := c.do(ctx, "registerUser", http.MethodPost, "/oneStepRegistration", "",
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return err
	}
	if !env.Success {
		return newAPIError("registerUser", 0, env.Message)
	}
	return nil
}

// LoginUser authenticates against the remote API. A rejected login returns
// (nil, nil) so the caller can fall back to registration.
func (c *HTTPClient) LoginUser(ctx context.Context, username, password string) (*models.AuthData, error) {
	payload := map[string]string{"username": username, "password": password}
	env, err := c.postJSON(ctx, "loginUser", "/login", "", payload)
	if err != nil {
		return nil, err
	}
	if !env.Success {
		c.logger.Debug("remote login rejected", zap.String("username", username))
		return nil, nil
	}
	var auth models.AuthData
	if err := json.Unmarshal(env.Data, &auth); err != nil {
		return nil, newAPIError("loginUser", 0, "malformed login payload")
	}
	return &auth, nil
}

// ReserveMeeting books the slot. Requires a remote auth token.
func (c *HTTPClient) ReserveMeeting(ctx context.Context, token string, timeID int, date string) error {
	payload := map[string]any{
		"time_id":      timeID,
		"date":         date,
		"meeting_type": "in_person",
	}
	env, err := c.postJSON(ctx, "reserveMeeting", "/meetings/reserve", token, payload)
	if err != nil {
		return err
	}
	if !env.Success {
		return newAPIError("reserveMeeting", 0, env.Message)
	}
	return nil
}

// FetchCart reads the current server-side cart.
func (c *HTTPClient) FetchCart(ctx context.Context, authID int) (*models.Cart, error) {
	if authID == 0 {
		authID = 1
	}
	path := fmt.Sprintf("/panel/cart/list?test_auth_id=%d", authID)
	env, err := c.do(ctx, "fetchCart", http.MethodGet, path, "", nil, "")
	if err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, newAPIError("fetchCart", 0, env.Message)
	}
	var data struct {
		Cart models.Cart `json:"cart"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, newAPIError("fetchCart", 0, "malformed cart payload")
	}
	return &data.Cart, nil
}

// ValidateCoupon returns the remote verdict verbatim; an unsuccessful
// validation is a result, not an error.
func (c *HTTPClient) ValidateCoupon(ctx context.Context, token, coupon string) (*models.CouponStatus, error) {
	env, err := c.postJSON(ctx, "validateCoupon", "/panel/cart/coupon/validate", token, map[string]string{"coupon": coupon})
	if err != nil {
		return nil, err
	}
	return &models.CouponStatus{Success: env.Success, Message: env.Message}, nil
}

// RemoveCartItem deletes one cart row.
func (c *HTTPClient) RemoveCartItem(ctx context.Context, itemID, authID int) error {
	body, _ := json.Marshal(map[string]int{"test_auth_id": authID})
	path := fmt.Sprintf("/panel/cart/%d", itemID)
	env, err := c.do(ctx, "removeCartItem", http.MethodDelete, path, "", bytes.NewReader(body), "application/json")
	if err != nil {
		return err
	}
	if !env.Success {
		return newAPIError("removeCartItem", 0, env.Message)
	}
	return nil
}

// CheckoutCart converts the cart into an order.
func (c *HTTPClient) CheckoutCart(ctx context.Context, authID int, coupon string) (*models.CheckoutData, error) {
	payload := map[string]any{
		"test_auth_id": authID,
		"coupon":       coupon,
	}
	env, err := c.postJSON(ctx, "checkoutCart", "/panel/cart/checkout", "", payload)
	if err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, newAPIError("checkoutCart", 0, env.Message)
	}
	var data models.CheckoutData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, newAPIError("checkoutCart", 0, "malformed checkout payload")
	}
	return &data, nil
}

// RequestPayment opens a payment attempt for the order.
func (c *HTTPClient) RequestPayment(ctx context.Context, token string, authID, gatewayID, orderID int) error {
	payload := map[string]any{
		"test_auth_id": authID,
		"gateway_id":   gatewayID,
		"order_id":     orderID,
	}
	env, err := c.postJSON(ctx, "requestPayment", "/panel/payments/request", token, payload)
	if err != nil {
		return err
	}
	if !env.Success {
		return newAPIError("requestPayment", 0, env.Message)
	}
	return nil
}

// VerifyPayment reports the gateway result back and returns the verdict.
func (c *HTTPClient) VerifyPayment(ctx context.Context, req VerifyRequest) (bool, error) {
	payload := map[string]any{
		"test_auth_id": req.AuthID,
		"gateway_id":   req.GatewayID,
		"order_id":     req.OrderID,
	}
	if req.Brand == models.BrandRazorpay {
		payload["razorpay_payment_id"] = req.RazorpayPaymentID
		payload["razorpay_order_id"] = req.RazorpayOrderID
	} else {
		payload["paypal_payment_id"] = req.PaypalPaymentID
	}
	env, err := c.postJSON(ctx, "verifyPayment", "/panel/payments/verify/"+req.Brand, "", payload)
	if err != nil {
		return false, err
	}
	return env.Success, nil
}

package wizard

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fitbuds/models"
	"fitbuds/services/identity"
)

// Start creates a session seeded with the host platform's knowledge of the
// visitor and loads the category catalog. The wizard sits at the category
// screen; a failed catalog load leaves the banner set with no categories.
func (s *DefaultWizardService) Start(ctx context.Context, seed SessionSeed) (*models.WizardSession, error) {
	countryCode := seed.CountryCode
	if countryCode == "" {
		countryCode = s.Cfg.DefaultCountryCode
	}

	sess := &models.WizardSession{
		SessionID: uuid.New().String(),
		Step:      models.StepCategories,
		User: models.UserData{
			CountryCode: countryCode,
			Mobile:      seed.Mobile,
			FullName:    seed.FullName,
			Email:       seed.Email,
			Password:    s.Cfg.RemotePassword,
		},
		IsLoggedIn:   seed.IsLoggedIn,
		RemoteUserID: seed.RemoteUserID,
		RemoteToken:  seed.RemoteToken,
		CreatedAt:    time.Now(),
	}

	categories, err := s.Remote.FetchCategories(ctx)
	if err != nil {
		s.Logger.Warn("failed to load categories", zap.Error(err))
		return s.fail(ctx, sess, err, "Error loading categories.")
	}
	sess.Categories = categories

	if err := s.Store.Save(ctx, sess); err != nil {
		return nil, err
	}
	s.Logger.Info("wizard session started", zap.String("sessionId", sess.SessionID))
	return sess, nil
}

// Get returns the current session state.
func (s *DefaultWizardService) Get(ctx context.Context, sessionID string) (*models.WizardSession, error) {
	return s.Store.Get(ctx, sessionID)
}

// Cancel drops the session.
func (s *DefaultWizardService) Cancel(ctx context.Context, sessionID string) error {
	return s.Store.Delete(ctx, sessionID)
}

// SelectCategory moves to the provider list of the chosen category.
// Categories with no providers are never offered, so the guard only has to
// match the name.
func (s *DefaultWizardService) SelectCategory(ctx context.Context, sessionID, categoryName string) (*models.WizardSession, error) {
	sess, err := s.Store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Step != models.StepCategories {
		return s.fail(ctx, sess, &StepError{Message: "please pick a category first"}, "")
	}

	for i := range sess.Categories {
		if sess.Categories[i].CategoryName == categoryName && len(sess.Categories[i].List) > 0 {
			sess.SelectedCategory = &sess.Categories[i]
			sess.Providers = sess.Categories[i].List
			sess.Step = models.StepProviders
			return s.ok(ctx, sess)
		}
	}
	return s.fail(ctx, sess, &identity.ValidationError{Field: "category", Message: "that category is not available"}, "")
}

// SelectProvider records the choice and fetches the provider's 30-day
// calendar. The selection is saved before the fetch; the result is only
// applied if the session still points at the same provider when it lands.
func (s *DefaultWizardService) SelectProvider(ctx context.Context, sessionID string, providerID int) (*models.WizardSession, error) {
	sess, err := s.Store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Step != models.StepProviders {
		return s.fail(ctx, sess, &StepError{Message: "please pick a specialist first"}, "")
	}

	var selected *models.Provider
	for i := range sess.Providers {
		if sess.Providers[i].ID == providerID {
			selected = &sess.Providers[i]
			break
		}
	}
	if selected == nil {
		return s.fail(ctx, sess, &identity.ValidationError{Field: "provider", Message: "that specialist is not available"}, "")
	}

	sess.SelectedProvider = selected
	sess.Timeslots = nil
	sess.Step = models.StepDates
	sess.LastError = ""
	if err := s.Store.Save(ctx, sess); err != nil {
		return nil, err
	}

	timeslots, err := s.Remote.FetchTimeslots(ctx, providerID, sess.RemoteUserID)
	if err != nil {
		return s.fail(ctx, sess, err, "Error fetching timeslots.")
	}

	// Guard against a late response: only apply the calendar if the session
	// is still waiting on this provider's availability.
	current, err := s.Store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if current.Step != models.StepDates || current.SelectedProvider == nil || current.SelectedProvider.ID != providerID {
		s.Logger.Debug("discarding stale availability response",
			zap.String("sessionId", sessionID), zap.Int("providerId", providerID))
		return current, nil
	}
	current.Timeslots = timeslots
	return s.ok(ctx, current)
}

// SelectDate moves to the slot list for a selectable day. Picking a day
// with no availability entry or no open slots is a no-op, mirroring a
// disabled calendar tile.
func (s *DefaultWizardService) SelectDate(ctx context.Context, sessionID, date string) (*models.WizardSession, error) {
	sess, err := s.Store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Step != models.StepDates {
		return s.fail(ctx, sess, &StepError{Message: "please pick a date first"}, "")
	}

	day, ok := sess.Day(date)
	if !ok || !day.Selectable() {
		return sess, nil
	}

	sess.SelectedDate = date
	sess.SelectedSlot = nil
	sess.Step = models.StepTimeSlots
	return s.ok(ctx, sess)
}

// SelectSlot records the slot and branches on authentication: a session
// that already carries a remote token goes straight to confirmation, a
// bound-or-host-authenticated visitor is resolved silently, anyone else is
// sent to registration.
func (s *DefaultWizardService) SelectSlot(ctx context.Context, sessionID string, slotID int) (*models.WizardSession, error) {
	sess, err := s.Store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Step != models.StepTimeSlots {
		return s.fail(ctx, sess, &StepError{Message: "please pick a time slot first"}, "")
	}

	day, ok := sess.Day(sess.SelectedDate)
	if !ok {
		return s.fail(ctx, sess, &identity.ValidationError{Field: "date", Message: "please pick a date first"}, "")
	}
	var slot *models.TimeSlot
	for _, open := range day.OpenSlots() {
		if open.ID == slotID {
			chosen := open
			slot = &chosen
			break
		}
	}
	if slot == nil {
		return s.fail(ctx, sess, &identity.ValidationError{Field: "slot", Message: "that time slot is no longer available"}, "")
	}
	sess.SelectedSlot = slot

	switch {
	case sess.Authenticated():
		sess.Step = models.StepConfirm
	case sess.IsLoggedIn || sess.RemoteUserID != 0:
		// Known visitor: try to resolve the remote identity without a form.
		// Falling through to registration keeps the flow alive if that fails.
		if err := s.Resolver.Resolve(ctx, sess); err != nil {
			s.Logger.Info("silent identity resolution failed, routing to registration", zap.Error(err))
			sess.Step = models.StepRegister
		} else {
			sess.Step = models.StepConfirm
		}
	default:
		sess.Step = models.StepRegister
	}
	return s.ok(ctx, sess)
}

// SubmitRegistration runs the registration form through identity
// resolution and, on success, moves to confirmation.
func (s *DefaultWizardService) SubmitRegistration(ctx context.Context, sessionID string, form RegistrationForm) (*models.WizardSession, error) {
	sess, err := s.Store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Step != models.StepRegister {
		return s.fail(ctx, sess, &StepError{Message: "registration is not open"}, "")
	}

	sess.User.FullName = form.FullName
	sess.User.Mobile = form.Mobile
	sess.User.Email = form.Email
	sess.User.ReferralCode = form.ReferralCode
	if form.CountryCode != "" {
		sess.User.CountryCode = form.CountryCode
	}

	if err := s.Resolver.Resolve(ctx, sess); err != nil {
		return s.fail(ctx, sess, err, "Failed to authenticate. Please try again.")
	}

	sess.Step = models.StepConfirm
	return s.ok(ctx, sess)
}

// ConfirmReservation reserves the chosen slot and loads the cart. A failed
// reservation leaves the cart untouched.
func (s *DefaultWizardService) ConfirmReservation(ctx context.Context, sessionID string) (*models.WizardSession, error) {
	sess, err := s.Store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Step != models.StepConfirm {
		return s.fail(ctx, sess, &StepError{Message: "nothing to confirm yet"}, "")
	}
	if !sess.Authenticated() {
		return s.fail(ctx, sess, &identity.AuthenticationError{Message: "user not authenticated, please register or log in"}, "")
	}
	if sess.SelectedSlot == nil || sess.SelectedDate == "" {
		return s.fail(ctx, sess, &identity.ValidationError{Field: "slot", Message: "please pick a time slot first"}, "")
	}

	if err := s.Remote.ReserveMeeting(ctx, sess.RemoteToken, sess.SelectedSlot.ID, sess.SelectedDate); err != nil {
		return s.fail(ctx, sess, err, "Error reserving meeting.")
	}

	sess.Step = models.StepCart
	cart, err := s.Remote.FetchCart(ctx, sess.RemoteUserID)
	if err != nil {
		return s.fail(ctx, sess, err, "Error fetching cart.")
	}
	sess.Cart = cart
	return s.ok(ctx, sess)
}

// SetCoupon records the coupon text. Editing the code always clears the
// previous validation result, re-locking checkout until it validates again.
func (s *DefaultWizardService) SetCoupon(ctx context.Context, sessionID, code string) (*models.WizardSession, error) {
	sess, err := s.Store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Step != models.StepCart {
		return s.fail(ctx, sess, &StepError{Message: "the cart is not open"}, "")
	}
	sess.CouponCode = code
	sess.CouponStatus = nil
	return s.ok(ctx, sess)
}

// ValidateCoupon asks the remote API for a verdict on the entered code.
func (s *DefaultWizardService) ValidateCoupon(ctx context.Context, sessionID string) (*models.WizardSession, error) {
	sess, err := s.Store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Step != models.StepCart {
		return s.fail(ctx, sess, &StepError{Message: "the cart is not open"}, "")
	}
	if sess.CouponCode == "" {
		return s.fail(ctx, sess, &identity.ValidationError{Field: "coupon", Message: "please enter a coupon code"}, "")
	}

	status, err := s.Remote.ValidateCoupon(ctx, sess.RemoteToken, sess.CouponCode)
	if err != nil {
		return s.fail(ctx, sess, err, "Error validating coupon.")
	}
	sess.CouponStatus = status
	if !status.Success {
		sess.LastError = status.Message
		if err := s.Store.Save(ctx, sess); err != nil {
			return nil, err
		}
		return sess, nil
	}
	return s.ok(ctx, sess)
}

// RemoveCartItem deletes the item remotely and refetches the whole cart;
// amounts are never recomputed locally.
func (s *DefaultWizardService) RemoveCartItem(ctx context.Context, sessionID string, itemID int) (*models.WizardSession, error) {
	sess, err := s.Store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Step != models.StepCart {
		return s.fail(ctx, sess, &StepError{Message: "the cart is not open"}, "")
	}

	if err := s.Remote.RemoveCartItem(ctx, itemID, sess.RemoteUserID); err != nil {
		return s.fail(ctx, sess, err, "Error removing cart item.")
	}
	cart, err := s.Remote.FetchCart(ctx, sess.RemoteUserID)
	if err != nil {
		return s.fail(ctx, sess, err, "Error refreshing cart.")
	}
	sess.Cart = cart
	return s.ok(ctx, sess)
}

// Checkout converts the cart into an order. It is refused while a non-empty
// coupon code lacks a successful validation, and only a validated coupon is
// sent along. Channels whose brand has no adapter are dropped from the offer.
func (s *DefaultWizardService) Checkout(ctx context.Context, sessionID string) (*models.WizardSession, error) {
	sess, err := s.Store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Step != models.StepCart {
		return s.fail(ctx, sess, &StepError{Message: "the cart is not open"}, "")
	}
	if sess.CheckoutLocked() {
		return s.fail(ctx, sess, &identity.ValidationError{Field: "coupon", Message: "please validate or clear the coupon code"}, "")
	}

	coupon := ""
	if sess.CouponStatus != nil && sess.CouponStatus.Success {
		coupon = sess.CouponCode
	}
	data, err := s.Remote.CheckoutCart(ctx, sess.RemoteUserID, coupon)
	if err != nil {
		return s.fail(ctx, sess, err, "Error during checkout.")
	}

	offerable := make([]models.PaymentChannel, 0, len(data.PaymentChannels))
	for _, ch := range data.PaymentChannels {
		if s.Gateways.Recognized(ch.ClassName) {
			offerable = append(offerable, ch)
		}
	}
	data.PaymentChannels = offerable

	sess.CheckoutData = data
	sess.Step = models.StepPaymentSelect
	return s.ok(ctx, sess)
}

// Back returns to the immediate predecessor, clearing exactly the state the
// abandoned step owns. Terminal and initial steps have no back action.
func (s *DefaultWizardService) Back(ctx context.Context, sessionID string) (*models.WizardSession, error) {
	sess, err := s.Store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	prev, ok := sess.Step.Prev()
	if !ok {
		return sess, nil
	}

	switch sess.Step {
	case models.StepProviders:
		sess.SelectedCategory = nil
		sess.Providers = nil
	case models.StepDates:
		sess.SelectedProvider = nil
		sess.Timeslots = nil
	case models.StepTimeSlots:
		sess.SelectedDate = ""
		sess.SelectedSlot = nil
	case models.StepRegister:
		// Form inputs stay; the user may come back to them.
	case models.StepConfirm:
		sess.SelectedSlot = nil
	case models.StepCart:
		sess.Cart = nil
		sess.CouponCode = ""
		sess.CouponStatus = nil
	case models.StepPaymentSelect:
		sess.CheckoutData = nil
	case models.StepPaymentFailed:
		// Checkout data survives so the user can retry the payment.
	}

	sess.Step = prev
	return s.ok(ctx, sess)
}

// DismissError clears the banner.
func (s *DefaultWizardService) DismissError(ctx context.Context, sessionID string) (*models.WizardSession, error) {
	sess, err := s.Store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.ok(ctx, sess)
}

// ok clears the banner and saves; every successful action funnels through it.
func (s *DefaultWizardService) ok(ctx context.Context, sess *models.WizardSession) (*models.WizardSession, error) {
	sess.LastError = ""
	if err := s.Store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// fail converts an action failure into the banner message, keeps the step
// where it was, and hands the typed error back to the caller.
func (s *DefaultWizardService) fail(ctx context.Context, sess *models.WizardSession, err error, fallback string) (*models.WizardSession, error) {
	sess.LastError = userMessage(err, fallback)
	if saveErr := s.Store.Save(ctx, sess); saveErr != nil {
		s.Logger.Error("failed to save session after error",
			zap.String("sessionId", sess.SessionID), zap.Error(saveErr))
	}
	return sess, err
}

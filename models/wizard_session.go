package models

import "time"

// Step is the single source of truth for which wizard screen is visible.
type Step string

const (
	StepCategories    Step = "categories"
	StepProviders     Step = "providers"
	StepDates         Step = "dates"
	StepTimeSlots     Step = "timeslots"
	StepRegister      Step = "register"
	StepConfirm       Step = "confirm"
	StepCart          Step = "cart"
	StepPaymentSelect Step = "payment_select"
	StepDone          Step = "done"
	StepPaymentFailed Step = "payment_failed"
)

// prevSteps maps each step to its immediate predecessor for back navigation.
// StepCategories and StepDone have none; a failed payment goes back to the
// channel selection so the user can retry.
var prevSteps = map[Step]Step{
	StepProviders:     StepCategories,
	StepDates:         StepProviders,
	StepTimeSlots:     StepDates,
	StepRegister:      StepTimeSlots,
	StepConfirm:       StepTimeSlots,
	StepCart:          StepConfirm,
	StepPaymentSelect: StepCart,
	StepPaymentFailed: StepPaymentSelect,
}

// Prev returns the step back navigation lands on, if any.
func (s Step) Prev() (Step, bool) {
	p, ok := prevSteps[s]
	return p, ok
}

// WizardSession holds the whole state of one booking flow. It is stored as a
// JSON blob in Redis with a TTL and owned exclusively by the wizard service.
type WizardSession struct {
	SessionID string `json:"sessionId"`
	Step      Step   `json:"step"`

	// Catalog and availability, read-only fetch results.
	Categories []Category        `json:"categories,omitempty"`
	Providers  []Provider        `json:"providers,omitempty"`
	Timeslots  []DayAvailability `json:"timeslots,omitempty"`

	// The user's current path through the wizard. Each field is only set
	// after its predecessor; clearing a predecessor clears all dependents.
	SelectedCategory *Category `json:"selectedCategory,omitempty"`
	SelectedProvider *Provider `json:"selectedProvider,omitempty"`
	SelectedDate     string    `json:"selectedDate,omitempty"`
	SelectedSlot     *TimeSlot `json:"selectedSlot,omitempty"`

	Cart         *Cart         `json:"cart,omitempty"`
	CouponCode   string        `json:"couponCode,omitempty"`
	CouponStatus *CouponStatus `json:"couponStatus,omitempty"`
	CheckoutData *CheckoutData `json:"checkoutData,omitempty"`

	// Identity state. RemoteToken must be present before any priced
	// operation is attempted.
	User         UserData `json:"user"`
	IsLoggedIn   bool     `json:"isLoggedIn"`
	RemoteUserID int      `json:"remoteUserId,omitempty"`
	RemoteToken  string   `json:"remoteToken,omitempty"`

	// LastError is the single dismissible banner message; a new error
	// replaces it, a successful action clears it.
	LastError string `json:"lastError,omitempty"`

	CreatedAt     time.Time `json:"createdAt"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
}

// Authenticated reports whether the session already carries a remote token.
func (s *WizardSession) Authenticated() bool {
	return s.RemoteToken != ""
}

// Day returns the availability entry for the given date, if fetched.
func (s *WizardSession) Day(date string) (DayAvailability, bool) {
	for _, d := range s.Timeslots {
		if d.Date == date {
			return d, true
		}
	}
	return DayAvailability{}, false
}

// CheckoutLocked reports whether "proceed to checkout" must stay disabled:
// a coupon code has been entered but its last validation did not succeed.
func (s *WizardSession) CheckoutLocked() bool {
	if s.CouponCode == "" {
		return false
	}
	return s.CouponStatus == nil || !s.CouponStatus.Success
}

package wizard

import (
	"errors"

	"fitbuds/services/identity"
	"fitbuds/services/payment"
)

// StepError flags an action that is illegal at the session's current step.
type StepError struct {
	Message string
}

func (e *StepError) Error() string {
	return "wizard: " + e.Message
}

// userMessage converts an action failure into the single banner message.
// Validation, authentication and payment errors carry their own wording;
// remote API failures collapse to the action's generic message, the same
// way the widget presents them.
func userMessage(err error, fallback string) string {
	var vErr *identity.ValidationError
	if errors.As(err, &vErr) {
		return vErr.Message
	}
	var aErr *identity.AuthenticationError
	if errors.As(err, &aErr) {
		return aErr.Message
	}
	var pErr *payment.Error
	if errors.As(err, &pErr) {
		return pErr.Message
	}
	var sErr *StepError
	if errors.As(err, &sErr) {
		return sErr.Message
	}
	return fallback
}

package identity

import "fmt"

// ValidationError flags missing wizard input before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

// AuthenticationError means the login/register fallback chain was exhausted.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	return "authentication: " + e.Message
}

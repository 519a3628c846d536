package models

import "strings"

// UserData is the profile the wizard collects for remote registration.
// Password is the fixed placeholder credential the remote API requires;
// it is never a user secret.
type UserData struct {
	CountryCode  string `json:"country_code"`
	Mobile       string `json:"mobile"`
	FullName     string `json:"full_name"`
	Email        string `json:"email"`
	ReferralCode string `json:"referral_code,omitempty"`
	Password     string `json:"password"`
}

// Username is the remote login identifier: country code plus mobile with
// the leading plus stripped.
func (u UserData) Username() string {
	return strings.ReplaceAll(u.CountryCode+u.Mobile, "+", "")
}

// AuthData is a successful remote login result.
type AuthData struct {
	UserID int    `json:"user_id"`
	Token  string `json:"token"`
}

package domain

import "time"

// AuthRequest is the OAuth callback payload.
type AuthRequest struct {
	Code  string `json:"code"`
	State string `json:"state,omitempty"`
}

// AuthResponse carries the signed credential back to the caller.
type AuthResponse struct {
	AccessToken string   `json:"access_token"`
	Scopes      []string `json:"scopes"`
}

// TokenStatus reports whether a credential is still valid and when it
// expires.
type TokenStatus struct {
	Valid               bool       `json:"valid"`
	ExpiresAt           *time.Time `json:"expires_at,omitempty"`
	TimeToExpiryMinutes *int       `json:"time_to_expiry_minutes,omitempty"`
	Message             string     `json:"message,omitempty"`
}

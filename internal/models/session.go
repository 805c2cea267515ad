package models

import "time"

// PhoneSession ties a browser session to the phone number that started the
// ride-service authorization flow.
type PhoneSession struct {
	ID        string    `json:"id"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// IsExpired checks if session has expired
func (s *PhoneSession) IsExpired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

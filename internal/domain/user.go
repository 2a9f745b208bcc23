package domain

import "time"

// User is a registered shopper. Phone number is the login identifier.
type User struct {
	ID           string    `json:"id"`
	PhoneNumber  string    `json:"phoneNumber"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"firstName,omitempty"`
	LastName     string    `json:"lastName,omitempty"`
	Email        string    `json:"email,omitempty"`
	IsStaff      bool      `json:"isStaff"`
	Points       int       `json:"points"`
	Tier         Tier      `json:"tier"`
	CreatedAt    time.Time `json:"createdAt"`
}

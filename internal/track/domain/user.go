package domain

import "time"

// User is a local profile for a subject authenticated by the external
// identity provider. Subject is the provider's stable identifier; Email is
// the address the provider verified and is what invitations bind against.
type User struct {
	ID        string
	Subject   string
	Email     string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

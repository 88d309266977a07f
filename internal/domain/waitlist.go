package domain

import "time"

// WaitingCustomer is an email address registered for launch updates.
type WaitingCustomer struct {
	ID        string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
	Notified  bool
}

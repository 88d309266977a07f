package domain

import "errors"

// Caller errors.
var (
	ErrInvalidSessionID   = errors.New("invalid stripe session id")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrEmailRequired      = errors.New("email required")
	ErrFullNameRequired   = errors.New("full name required")
	ErrCustomerIDRequired = errors.New("customer id required")
	ErrTokenRequired      = errors.New("download token required")
)

// Missing or gone resources.
var (
	ErrSessionNotFound  = errors.New("stripe session not found")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrLinkNotFound     = errors.New("download link not found")
	ErrAssetNotFound    = errors.New("download file not found")
	ErrLinkExpired      = errors.New("download link expired")
	ErrLinkAlreadyUsed  = errors.New("download link already used")
)

// Precondition and uniqueness failures.
var (
	ErrCustomerNotPaid = errors.New("payment not completed")
	ErrDuplicateEmail  = errors.New("email already registered")
	ErrTokenCollision  = errors.New("download token collision")
)

// Dependency and operator-side failures.
var (
	ErrPaymentUpstream     = errors.New("payment provider error")
	ErrPersistence         = errors.New("persistence error")
	ErrNotConfigured       = errors.New("server configuration error")
	ErrWaitlistUnavailable = errors.New("waiting list table not found")
)

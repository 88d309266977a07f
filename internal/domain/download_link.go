package domain

import "time"

// DefaultLinkTTL is how long a freshly issued download link stays redeemable.
const DefaultLinkTTL = 7 * 24 * time.Hour

// DownloadLink binds an opaque token to a customer's product for a limited time.
type DownloadLink struct {
	ID          string
	CustomerID  string
	Token       string
	ProductName string
	ExpiresAt   time.Time
	CreatedAt   time.Time
	IsUsed      bool
}

// Expired reports whether the link can no longer be redeemed at now.
func (l DownloadLink) Expired(now time.Time) bool {
	return !now.Before(l.ExpiresAt)
}

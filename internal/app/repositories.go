package app

import (
	"context"

	"github.com/nuxtz/storefront/internal/domain"
)

type CustomerRepository interface {
	CreateCustomer(ctx context.Context, customer domain.Customer) error
	GetCustomer(ctx context.Context, id string) (domain.Customer, error)
	MarkCustomerPaid(ctx context.Context, id string) error
}

type DownloadLinkRepository interface {
	CreateLink(ctx context.Context, link domain.DownloadLink) error
	GetLinkByToken(ctx context.Context, token string) (domain.DownloadLink, error)
	MarkLinkUsed(ctx context.Context, id string) error
	// ClaimLink flips is_used from false to true and reports whether this
	// call performed the transition.
	ClaimLink(ctx context.Context, id string) (bool, error)
}

type WaitlistRepository interface {
	AddWaitingCustomer(ctx context.Context, wc domain.WaitingCustomer) error
	CountWaitingCustomers(ctx context.Context) (int, error)
}

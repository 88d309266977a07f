package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/nuxtz/storefront/internal/domain"
)

type CustomerService struct {
	repo   CustomerRepository
	logger zerolog.Logger
}

func NewCustomerService(repo CustomerRepository, logger zerolog.Logger) *CustomerService {
	return &CustomerService{
		repo:   repo,
		logger: logger,
	}
}

type CreateCustomerInput struct {
	FullName    string
	Email       string
	CompanyName string
	PhoneNumber string
	ProductName string
}

// CreateCustomer records a pending customer ahead of checkout. The returned
// ID is what the checkout session carries as its client reference.
func (s *CustomerService) CreateCustomer(ctx context.Context, in CreateCustomerInput) (domain.Customer, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.TrimSpace(in.Email)
	if in.Email == "" {
		return domain.Customer{}, domain.ErrEmailRequired
	}
	if in.FullName == "" {
		return domain.Customer{}, domain.ErrFullNameRequired
	}

	customer := domain.Customer{
		ID:            newID(),
		FullName:      in.FullName,
		Email:         in.Email,
		CompanyName:   strings.TrimSpace(in.CompanyName),
		PhoneNumber:   strings.TrimSpace(in.PhoneNumber),
		ProductName:   strings.TrimSpace(in.ProductName),
		PaymentStatus: domain.PaymentStatusPending,
	}

	if err := s.repo.CreateCustomer(ctx, customer); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return domain.Customer{}, err
		}
		s.logger.Error().Err(err).Msg("create customer")
		return domain.Customer{}, fmt.Errorf("%w: create customer: %v", domain.ErrPersistence, err)
	}

	s.logger.Info().Str("customer_id", customer.ID).Msg("customer created")
	return customer, nil
}

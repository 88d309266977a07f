package app

import (
	"context"
	"errors"

	"github.com/nuxtz/storefront/internal/domain"
)

type HealthService struct {
	waitlist WaitlistRepository
}

func NewHealthService(waitlist WaitlistRepository) *HealthService {
	return &HealthService{waitlist: waitlist}
}

// DBStatus reports whether the waiting list table is reachable.
type DBStatus struct {
	Success     bool
	TableExists bool
	RowCount    int
	Error       string
}

// CheckDatabase probes the waiting list table. A missing table is reported
// in the status; any other failure is returned as an error.
func (s *HealthService) CheckDatabase(ctx context.Context) (DBStatus, error) {
	count, err := s.waitlist.CountWaitingCustomers(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrWaitlistUnavailable) {
			return DBStatus{
				Error: "The waiting_customers table doesn't exist. Run migrations to create it.",
			}, nil
		}
		return DBStatus{}, err
	}
	return DBStatus{Success: true, TableExists: true, RowCount: count}, nil
}

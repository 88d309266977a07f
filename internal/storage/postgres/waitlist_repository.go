package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nuxtz/storefront/internal/domain"
)

type WaitlistRepository struct {
	q querier
}

func NewWaitlistRepository(pool *pgxpool.Pool) *WaitlistRepository {
	return &WaitlistRepository{q: querier{pool: pool}}
}

func (r *WaitlistRepository) AddWaitingCustomer(ctx context.Context, wc domain.WaitingCustomer) error {
	const stmt = `
INSERT INTO waiting_customers (id, email, notified, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5)`

	_, err := r.q.exec(ctx, stmt, wc.ID, wc.Email, wc.Notified, wc.CreatedAt, wc.UpdatedAt)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return domain.ErrDuplicateEmail
		case isUndefinedTable(err):
			return fmt.Errorf("%w: %v", domain.ErrWaitlistUnavailable, err)
		}
		return fmt.Errorf("add waiting customer: %w", err)
	}
	return nil
}

func (r *WaitlistRepository) CountWaitingCustomers(ctx context.Context) (int, error) {
	var n int
	if err := r.q.queryRow(ctx, `SELECT COUNT(*) FROM waiting_customers`).Scan(&n); err != nil {
		if isUndefinedTable(err) {
			return 0, fmt.Errorf("%w: %v", domain.ErrWaitlistUnavailable, err)
		}
		return 0, fmt.Errorf("count waiting customers: %w", err)
	}
	return n, nil
}

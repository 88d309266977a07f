package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nuxtz/storefront/internal/domain"
)

type CustomerRepository struct {
	q querier
}

func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{q: querier{pool: pool}}
}

func (r *CustomerRepository) CreateCustomer(ctx context.Context, c domain.Customer) error {
	const stmt = `
INSERT INTO customers (id, full_name, email, company_name, phone_number, product_name, payment_status)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.q.exec(ctx, stmt, c.ID, c.FullName, c.Email, c.CompanyName, c.PhoneNumber, c.ProductName, string(c.PaymentStatus))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("create customer: %w", err)
	}
	return nil
}

func (r *CustomerRepository) GetCustomer(ctx context.Context, id string) (domain.Customer, error) {
	const query = `
SELECT id, full_name, email, company_name, phone_number, product_name, payment_status
FROM customers
WHERE id = $1`

	var c domain.Customer
	var status string
	err := r.q.queryRow(ctx, query, id).
		Scan(&c.ID, &c.FullName, &c.Email, &c.CompanyName, &c.PhoneNumber, &c.ProductName, &status)
	if err != nil {
		if isInvalidUUID(err) || errors.Is(err, pgx.ErrNoRows) {
			return domain.Customer{}, domain.ErrCustomerNotFound
		}
		return domain.Customer{}, fmt.Errorf("get customer: %w", err)
	}
	c.PaymentStatus = domain.PaymentStatus(status)
	return c, nil
}

// MarkCustomerPaid sets payment_status to paid. Repeating it is a no-op.
func (r *CustomerRepository) MarkCustomerPaid(ctx context.Context, id string) error {
	const stmt = `UPDATE customers SET payment_status = 'paid', updated_at = NOW() WHERE id = $1`

	tag, err := r.q.exec(ctx, stmt, id)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrCustomerNotFound
		}
		return fmt.Errorf("mark customer paid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/nuxtz/storefront/internal/domain"
	"github.com/nuxtz/storefront/internal/testutil"
)

func TestWaitlistRepository(t *testing.T) {
	pool := testutil.NewTestPool(t)
	repo := NewWaitlistRepository(pool)
	testutil.ApplyMigrations(t, context.Background(), pool)

	entry := func(email string) domain.WaitingCustomer {
		now := time.Now().UTC()
		return domain.WaitingCustomer{ID: uuid.NewString(), Email: email, CreatedAt: now, UpdatedAt: now}
	}

	t.Run("AddWaitingCustomer rejects duplicates and counts rows", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		if err := repo.AddWaitingCustomer(ctx, entry("a@b.com")); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if err := repo.AddWaitingCustomer(ctx, entry("a@b.com")); !errors.Is(err, domain.ErrDuplicateEmail) {
			t.Fatalf("expected ErrDuplicateEmail, got %v", err)
		}
		if err := repo.AddWaitingCustomer(ctx, entry("c@d.com")); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		n, err := repo.CountWaitingCustomers(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if n != 2 {
			t.Fatalf("expected 2 rows, got %d", n)
		}
	})

	t.Run("missing table is reported as unavailable", func(t *testing.T) {
		ctx := context.Background()

		// Run inside a transaction that drops the table and roll it back.
		err := withTx(ctx, pool, func(txCtx context.Context) error {
			if _, err := txFromContext(txCtx).Exec(txCtx, `DROP TABLE waiting_customers`); err != nil {
				t.Fatalf("drop table: %v", err)
			}
			if _, err := repo.CountWaitingCustomers(txCtx); !errors.Is(err, domain.ErrWaitlistUnavailable) {
				t.Fatalf("expected ErrWaitlistUnavailable from count, got %v", err)
			}
			return errors.New("rollback")
		})
		if err == nil {
			t.Fatalf("expected rollback error")
		}
	})
}

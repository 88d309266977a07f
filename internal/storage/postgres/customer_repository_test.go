package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/nuxtz/storefront/internal/domain"
	"github.com/nuxtz/storefront/internal/testutil"
)

func TestCustomerRepository(t *testing.T) {
	pool := testutil.NewTestPool(t)
	repo := NewCustomerRepository(pool)
	testutil.ApplyMigrations(t, context.Background(), pool)

	t.Run("CreateCustomer persists and GetCustomer returns it", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		c := domain.Customer{
			ID:            uuid.NewString(),
			FullName:      "Ada Lovelace",
			Email:         "ada@example.com",
			CompanyName:   "Engines Ltd",
			ProductName:   "Minimal Boilerplate",
			PaymentStatus: domain.PaymentStatusPending,
		}
		if err := repo.CreateCustomer(ctx, c); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		got, err := repo.GetCustomer(ctx, c.ID)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got != c {
			t.Fatalf("unexpected customer: %+v", got)
		}
	})

	t.Run("same email may register twice", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		for i := 0; i < 2; i++ {
			c := domain.Customer{ID: uuid.NewString(), FullName: "Ada", Email: "ada@example.com", PaymentStatus: domain.PaymentStatusPending}
			if err := repo.CreateCustomer(ctx, c); err != nil {
				t.Fatalf("attempt %d: expected no error, got %v", i, err)
			}
		}
	})

	t.Run("GetCustomer maps missing and malformed ids to not found", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		for _, id := range []string{uuid.NewString(), "not-a-uuid"} {
			if _, err := repo.GetCustomer(ctx, id); !errors.Is(err, domain.ErrCustomerNotFound) {
				t.Fatalf("id %q: expected ErrCustomerNotFound, got %v", id, err)
			}
		}
	})

	t.Run("MarkCustomerPaid is idempotent", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		id := testutil.InsertCustomer(t, ctx, pool, domain.Customer{})

		for i := 0; i < 2; i++ {
			if err := repo.MarkCustomerPaid(ctx, id); err != nil {
				t.Fatalf("attempt %d: expected no error, got %v", i, err)
			}
		}
		got, err := repo.GetCustomer(ctx, id)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !got.Paid() {
			t.Fatalf("expected paid, got %s", got.PaymentStatus)
		}

		if err := repo.MarkCustomerPaid(ctx, uuid.NewString()); !errors.Is(err, domain.ErrCustomerNotFound) {
			t.Fatalf("expected ErrCustomerNotFound, got %v", err)
		}
		if err := repo.MarkCustomerPaid(ctx, "bogus"); !errors.Is(err, domain.ErrCustomerNotFound) {
			t.Fatalf("expected ErrCustomerNotFound for malformed id, got %v", err)
		}
	})

	t.Run("statements join the transaction in context", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		c := domain.Customer{ID: uuid.NewString(), FullName: "Ada", Email: "ada@example.com", PaymentStatus: domain.PaymentStatusPending}

		boom := errors.New("boom")
		err := withTx(ctx, pool, func(txCtx context.Context) error {
			if err := repo.CreateCustomer(txCtx, c); err != nil {
				return err
			}
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}
		if _, err := repo.GetCustomer(ctx, c.ID); !errors.Is(err, domain.ErrCustomerNotFound) {
			t.Fatalf("expected rollback, got %v", err)
		}
	})
}

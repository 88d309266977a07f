package payment

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v74"

	"github.com/nuxtz/storefront/internal/domain"
)

type stubSessions struct {
	session *stripe.CheckoutSession
	err     error
	gotID   string
	gotCtx  context.Context
}

func (s *stubSessions) Get(id string, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	s.gotID = id
	if params != nil {
		s.gotCtx = params.Context
	}
	return s.session, s.err
}

func TestStripeVerifier_VerifySession(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		session    *stripe.CheckoutSession
		err        error
		wantPaid   bool
		wantStatus string
		wantErr    error
	}{
		{
			name: "paid with reference",
			session: &stripe.CheckoutSession{
				ID:                "cs_test_1",
				PaymentStatus:     stripe.CheckoutSessionPaymentStatusPaid,
				ClientReferenceID: "cust-1",
			},
			wantPaid:   true,
			wantStatus: "paid",
		},
		{
			name: "paid without reference is not confirmed",
			session: &stripe.CheckoutSession{
				ID:            "cs_test_2",
				PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid,
			},
			wantStatus: "paid",
		},
		{
			name: "unpaid",
			session: &stripe.CheckoutSession{
				ID:                "cs_test_3",
				PaymentStatus:     stripe.CheckoutSessionPaymentStatusUnpaid,
				ClientReferenceID: "cust-1",
			},
			wantStatus: "unpaid",
		},
		{
			name:    "missing session",
			err:     &stripe.Error{Type: stripe.ErrorTypeInvalidRequest, Code: stripe.ErrorCodeResourceMissing, HTTPStatusCode: http.StatusNotFound},
			wantErr: domain.ErrSessionNotFound,
		},
		{
			name:    "provider outage",
			err:     &stripe.Error{Type: stripe.ErrorTypeAPI, HTTPStatusCode: http.StatusInternalServerError},
			wantErr: domain.ErrPaymentUpstream,
		},
		{
			name:    "transport failure",
			err:     errors.New("connection reset"),
			wantErr: domain.ErrPaymentUpstream,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			stub := &stubSessions{session: tt.session, err: tt.err}
			v := NewStripeVerifierWithSessions(stub)

			res, err := v.VerifySession(context.Background(), "cs_test_x")
			assert.Equal(t, "cs_test_x", stub.gotID)
			assert.NotNil(t, stub.gotCtx)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPaid, res.Paid)
			assert.Equal(t, tt.wantStatus, res.PaymentStatus)
		})
	}
}

func TestUnconfigured(t *testing.T) {
	_, err := Unconfigured{}.VerifySession(context.Background(), "cs_test")
	require.ErrorIs(t, err, domain.ErrNotConfigured)
}

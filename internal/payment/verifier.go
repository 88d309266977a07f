// Package payment confirms checkout sessions with the payment provider.
package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/client"

	"github.com/nuxtz/storefront/internal/domain"
)

// paidStatus is the only payment_status Stripe reports for a settled session.
const paidStatus = string(stripe.CheckoutSessionPaymentStatusPaid)

// Verification is the provider's view of a checkout session.
type Verification struct {
	SessionID     string
	PaymentStatus string
	ReferenceID   string
	Paid          bool
}

// SessionGetter is the slice of the Stripe client used to read sessions.
type SessionGetter interface {
	Get(id string, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

type StripeVerifier struct {
	sessions SessionGetter
}

// NewStripeVerifier builds a verifier around a process-wide Stripe client.
func NewStripeVerifier(secretKey string) *StripeVerifier {
	var sc client.API
	sc.Init(secretKey, nil)
	return &StripeVerifier{sessions: sc.CheckoutSessions}
}

// NewStripeVerifierWithSessions is used by tests to swap the Stripe backend.
func NewStripeVerifierWithSessions(sessions SessionGetter) *StripeVerifier {
	return &StripeVerifier{sessions: sessions}
}

// VerifySession retrieves the session and decides whether it is paid.
// An unpaid or unreferenced session is a negative result, not an error.
func (v *StripeVerifier) VerifySession(ctx context.Context, sessionID string) (Verification, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := v.sessions.Get(sessionID, params)
	if err != nil {
		if isMissingSession(err) {
			return Verification{}, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
		}
		return Verification{}, fmt.Errorf("%w: retrieve session %s: %v", domain.ErrPaymentUpstream, sessionID, err)
	}
	if sess == nil {
		return Verification{}, fmt.Errorf("%w: empty session %s", domain.ErrPaymentUpstream, sessionID)
	}

	res := Verification{
		SessionID:     sess.ID,
		PaymentStatus: string(sess.PaymentStatus),
		ReferenceID:   sess.ClientReferenceID,
	}
	if res.SessionID == "" {
		res.SessionID = sessionID
	}
	res.Paid = res.PaymentStatus == paidStatus && res.ReferenceID != ""
	return res, nil
}

func isMissingSession(err error) bool {
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		return false
	}
	return stripeErr.Type == stripe.ErrorTypeInvalidRequest ||
		stripeErr.Code == stripe.ErrorCodeResourceMissing ||
		stripeErr.HTTPStatusCode == http.StatusNotFound
}

// Unconfigured stands in for the verifier when no Stripe key is set, so the
// service can boot and report a configuration error per request.
type Unconfigured struct{}

func (Unconfigured) VerifySession(context.Context, string) (Verification, error) {
	return Verification{}, fmt.Errorf("%w: STRIPE_SECRET_KEY is not set", domain.ErrNotConfigured)
}

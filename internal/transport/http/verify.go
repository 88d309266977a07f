package http

import (
	"context"
	"net/http"

	"github.com/nuxtz/storefront/internal/app"
)

const paymentNotConfirmedMessage = "Payment not confirmed by Stripe."

// SessionVerifier is the minimal interface needed to verify a checkout.
type SessionVerifier interface {
	VerifySession(ctx context.Context, sessionID string) (app.VerifyResult, error)
}

// HandleVerifySession returns an HTTP handler that confirms a checkout
// session and triggers fulfillment. An unpaid session is a 200 with
// status "failed" so the client can offer a retry.
func HandleVerifySession(svc SessionVerifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req verifySessionRequest
		if !decodeAndValidate(w, r, &req, nil) {
			return
		}

		res, err := svc.VerifySession(r.Context(), req.SessionID)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		if res.Outcome != app.OutcomeSuccess {
			writeJSON(w, http.StatusOK, verifyFailedResponse{
				Status:  "failed",
				Message: paymentNotConfirmedMessage,
				Details: res.ObservedStatus,
			})
			return
		}

		writeJSON(w, http.StatusOK, verifySuccessResponse{
			Status:              "success",
			DownloadLinkCreated: res.DownloadLinkCreated,
			EmailSent:           res.EmailSent,
		})
	}
}

type verifySessionRequest struct {
	SessionID string `json:"sessionId"`
}

type verifySuccessResponse struct {
	Status              string `json:"status"`
	DownloadLinkCreated bool   `json:"downloadLinkCreated"`
	EmailSent           bool   `json:"emailSent"`
}

type verifyFailedResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Details string `json:"details"`
}

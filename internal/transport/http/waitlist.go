package http

import (
	"context"
	"net/http"

	"github.com/nuxtz/storefront/internal/app"
)

// WaitlistJoiner is the minimal interface needed to join the waiting list.
type WaitlistJoiner interface {
	Join(ctx context.Context, email string) (app.JoinWaitlistResult, error)
}

var waitlistFieldCodes = map[string]fieldCode{
	"Email.required": {codeEmailRequired, "Missing required field: email."},
	"Email.email":    {codeInvalidEmail, "Invalid email format."},
}

// HandleJoinWaitlist returns an HTTP handler for waiting list sign-ups.
func HandleJoinWaitlist(svc WaitlistJoiner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req joinWaitlistRequest
		if !decodeAndValidate(w, r, &req, waitlistFieldCodes) {
			return
		}

		if _, err := svc.Join(r.Context(), req.Email); err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, messageResponse{Message: "Successfully added to the waiting list."})
	}
}

type joinWaitlistRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type messageResponse struct {
	Message string `json:"message"`
}

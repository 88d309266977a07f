package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nuxtz/storefront/internal/domain"
)

const (
	codeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	codeNotFound           = "NOT_FOUND"
	codeInvalidRequestBody = "INVALID_REQUEST_BODY"
	codeEmailRequired      = "EMAIL_REQUIRED"
	codeInvalidEmail       = "INVALID_EMAIL"
	codeFullNameRequired   = "FULL_NAME_REQUIRED"
	codeCustomerIDRequired = "CUSTOMER_ID_REQUIRED"
	codeInvalidSessionID   = "INVALID_SESSION_ID"
	codeTokenRequired      = "TOKEN_REQUIRED"
	codeSessionNotFound    = "SESSION_NOT_FOUND"
	codeCustomerNotFound   = "CUSTOMER_NOT_FOUND"
	codeLinkNotFound       = "LINK_NOT_FOUND"
	codeFileNotFound       = "FILE_NOT_FOUND"
	codeLinkExpired        = "LINK_EXPIRED"
	codeLinkAlreadyUsed    = "LINK_ALREADY_USED"
	codePaymentNotComplete = "PAYMENT_NOT_COMPLETED"
	codeDuplicateEmail     = "DUPLICATE_EMAIL"
	codeTableNotFound      = "TABLE_NOT_FOUND"
	codePaymentUpstream    = "PAYMENT_PROVIDER_ERROR"
	codePersistence        = "PERSISTENCE_ERROR"
	codeNotConfigured      = "CONFIGURATION_ERROR"
	codeForbidden          = "FORBIDDEN"
	codeInternalError      = "INTERNAL_ERROR"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"INTERNAL_ERROR"}`))
		return
	}
	_, _ = w.Write(payload)
}

type errorMapping struct {
	err    error
	status int
	code   string
}

// Order matters only for errors that wrap more than one sentinel.
var errorMappings = []errorMapping{
	{domain.ErrInvalidSessionID, http.StatusBadRequest, codeInvalidSessionID},
	{domain.ErrInvalidEmail, http.StatusBadRequest, codeInvalidEmail},
	{domain.ErrEmailRequired, http.StatusBadRequest, codeEmailRequired},
	{domain.ErrFullNameRequired, http.StatusBadRequest, codeFullNameRequired},
	{domain.ErrCustomerIDRequired, http.StatusBadRequest, codeCustomerIDRequired},
	{domain.ErrTokenRequired, http.StatusBadRequest, codeTokenRequired},
	{domain.ErrSessionNotFound, http.StatusNotFound, codeSessionNotFound},
	{domain.ErrCustomerNotFound, http.StatusNotFound, codeCustomerNotFound},
	{domain.ErrLinkNotFound, http.StatusNotFound, codeLinkNotFound},
	{domain.ErrAssetNotFound, http.StatusNotFound, codeFileNotFound},
	{domain.ErrLinkExpired, http.StatusGone, codeLinkExpired},
	{domain.ErrLinkAlreadyUsed, http.StatusGone, codeLinkAlreadyUsed},
	{domain.ErrCustomerNotPaid, http.StatusForbidden, codePaymentNotComplete},
	{domain.ErrDuplicateEmail, http.StatusConflict, codeDuplicateEmail},
	{domain.ErrWaitlistUnavailable, http.StatusInternalServerError, codeTableNotFound},
	{domain.ErrPaymentUpstream, http.StatusInternalServerError, codePaymentUpstream},
	{domain.ErrNotConfigured, http.StatusInternalServerError, codeNotConfigured},
	{domain.ErrPersistence, http.StatusInternalServerError, codePersistence},
}

// writeDomainError maps err onto the response taxonomy. Only the sentinel's
// message reaches the client; wrapped detail stays in the logs.
func writeDomainError(w http.ResponseWriter, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			writeError(w, m.status, m.code, m.err.Error())
			return
		}
	}
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

package http

import (
	"context"
	"net/http"

	"github.com/nuxtz/storefront/internal/app"
	"github.com/nuxtz/storefront/internal/domain"
)

// CustomerCreator is the minimal interface needed to create a customer.
type CustomerCreator interface {
	CreateCustomer(ctx context.Context, in app.CreateCustomerInput) (domain.Customer, error)
}

var customerFieldCodes = map[string]fieldCode{
	"FullName.required": {codeFullNameRequired, "Missing required customer information (email, full_name)."},
	"Email.required":    {codeEmailRequired, "Missing required customer information (email, full_name)."},
}

// HandleCreateCustomer returns an HTTP handler that records a pending
// customer ahead of checkout.
func HandleCreateCustomer(svc CustomerCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createCustomerRequest
		if !decodeAndValidate(w, r, &req, customerFieldCodes) {
			return
		}

		customer, err := svc.CreateCustomer(r.Context(), app.CreateCustomerInput{
			FullName:    req.FullName,
			Email:       req.Email,
			CompanyName: req.CompanyName,
			PhoneNumber: req.PhoneNumber,
			ProductName: req.ProductName,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, createCustomerResponse{CustomerID: customer.ID})
	}
}

type createCustomerRequest struct {
	FullName    string `json:"full_name" validate:"required"`
	Email       string `json:"email" validate:"required"`
	CompanyName string `json:"company_name,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	ProductName string `json:"product_name,omitempty"`
}

type createCustomerResponse struct {
	CustomerID string `json:"customerId"`
}

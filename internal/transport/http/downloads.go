package http

import (
	"context"
	"mime"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/nuxtz/storefront/internal/app"
	"github.com/nuxtz/storefront/internal/assets"
	"github.com/nuxtz/storefront/internal/domain"
)

// DownloadInfoReader is the minimal interface needed to describe a link.
type DownloadInfoReader interface {
	DownloadInfo(ctx context.Context, token string) (domain.DownloadLink, error)
}

// DownloadOpener is the minimal interface needed to serve an archive.
type DownloadOpener interface {
	OpenDownload(ctx context.Context, token string) (app.Download, error)
}

// DownloadLinkIssuer is the minimal interface needed to re-issue a link.
type DownloadLinkIssuer interface {
	IssueDownloadLink(ctx context.Context, customerID, productName string) (app.IssuedLink, error)
}

// HandleDownloadInfo returns an HTTP handler that describes a redeemable
// link without consuming it.
func HandleDownloadInfo(svc DownloadInfoReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		link, err := svc.DownloadInfo(r.Context(), mux.Vars(r)["token"])
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, downloadInfoResponse{
			ProductName: link.ProductName,
			ExpiresAt:   link.ExpiresAt,
			IsUsed:      link.IsUsed,
		})
	}
}

// HandleDownload returns an HTTP handler that streams the archive behind a
// link as an attachment.
func HandleDownload(svc DownloadOpener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dl, err := svc.OpenDownload(r.Context(), mux.Vars(r)["token"])
		if err != nil {
			writeDomainError(w, err)
			return
		}
		defer dl.Asset.Content.Close()

		h := w.Header()
		h.Set("Content-Type", assets.ContentType)
		h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": dl.Asset.FileName}))
		http.ServeContent(w, r, dl.Asset.FileName, dl.Asset.ModTime, dl.Asset.Content)
	}
}

var issueLinkFieldCodes = map[string]fieldCode{
	"CustomerID.required": {codeCustomerIDRequired, "Missing required field: customerId"},
}

// HandleGenerateDownloadURL returns an HTTP handler that mints a fresh link
// for a customer who has already paid.
func HandleGenerateDownloadURL(svc DownloadLinkIssuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req generateDownloadURLRequest
		if !decodeAndValidate(w, r, &req, issueLinkFieldCodes) {
			return
		}

		issued, err := svc.IssueDownloadLink(r.Context(), req.CustomerID, req.ProductName)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, generateDownloadURLResponse{
			URL:       issued.URL,
			ExpiresAt: issued.Link.ExpiresAt,
		})
	}
}

type downloadInfoResponse struct {
	ProductName string    `json:"productName"`
	ExpiresAt   time.Time `json:"expiresAt"`
	IsUsed      bool      `json:"isUsed"`
}

type generateDownloadURLRequest struct {
	CustomerID  string `json:"customerId" validate:"required"`
	ProductName string `json:"productName,omitempty"`
}

type generateDownloadURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

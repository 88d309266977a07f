package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// Services bundles the handlers' dependencies. Nil fields leave the
// corresponding routes unregistered.
type Services struct {
	Waitlist    WaitlistJoiner
	Customers   CustomerCreator
	Fulfillment FulfillmentAPI
	Health      DatabaseChecker
}

// FulfillmentAPI is everything the checkout and download routes need.
type FulfillmentAPI interface {
	SessionVerifier
	DownloadInfoReader
	DownloadOpener
	DownloadLinkIssuer
}

type RouterConfig struct {
	CORSOrigins []string
	Logger      zerolog.Logger
	// Metrics serves /metrics when set.
	Metrics http.Handler
}

// NewRouter wires every route plus the CORS, logging and metrics
// middleware.
func NewRouter(svc Services, cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	r.Use(RequestMetrics)
	r.NotFoundHandler = NotFoundHandler()
	r.MethodNotAllowedHandler = MethodNotAllowedHandler()

	r.HandleFunc("/health", HealthHandler).Methods(http.MethodGet)
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api").Subrouter()
	if svc.Waitlist != nil {
		api.Handle("/add-to-waitlist", HandleJoinWaitlist(svc.Waitlist)).Methods(http.MethodPost)
	}
	if svc.Customers != nil {
		api.Handle("/create-customer", HandleCreateCustomer(svc.Customers)).Methods(http.MethodPost)
	}
	if svc.Fulfillment != nil {
		api.Handle("/verify-stripe-session", HandleVerifySession(svc.Fulfillment)).Methods(http.MethodPost)
		api.Handle("/download-info/{token}", HandleDownloadInfo(svc.Fulfillment)).Methods(http.MethodGet)
		api.Handle("/download/{token}", HandleDownload(svc.Fulfillment)).Methods(http.MethodGet)
		api.Handle("/generate-download-url", HandleGenerateDownloadURL(svc.Fulfillment)).Methods(http.MethodPost)
	}
	if svc.Health != nil {
		api.Handle("/db-check", HandleDBCheck(svc.Health)).Methods(http.MethodGet)
	}

	return RequestLogger(CORS(cfg.CORSOrigins, r), cfg.Logger)
}

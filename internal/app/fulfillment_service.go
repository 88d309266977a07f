package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/nuxtz/storefront/internal/assets"
	"github.com/nuxtz/storefront/internal/clock"
	"github.com/nuxtz/storefront/internal/domain"
	"github.com/nuxtz/storefront/internal/events"
	"github.com/nuxtz/storefront/internal/metrics"
	"github.com/nuxtz/storefront/internal/notify"
	"github.com/nuxtz/storefront/internal/payment"
	"github.com/nuxtz/storefront/internal/token"
)

const (
	sessionIDPrefix    = "cs_"
	maxTokenAttempts   = 3
	downloadPathPrefix = "/download/"
	publishTimeout     = 2 * time.Second
)

type PaymentVerifier interface {
	VerifySession(ctx context.Context, sessionID string) (payment.Verification, error)
}

type AssetStore interface {
	Open(productName string) (assets.Asset, error)
}

// FulfillmentDeps are the collaborators every fulfillment call needs.
type FulfillmentDeps struct {
	Customers CustomerRepository
	Links     DownloadLinkRepository
	Verifier  PaymentVerifier
	Notifier  notify.Notifier
	Assets    AssetStore
	Clock     clock.Clock
	// BaseURL is the public site origin used to build download URLs.
	BaseURL string
}

type FulfillmentService struct {
	customers CustomerRepository
	links     DownloadLinkRepository
	verifier  PaymentVerifier
	notifier  notify.Notifier
	assets    AssetStore
	clock     clock.Clock
	baseURL   string

	publisher        events.Publisher
	logger           zerolog.Logger
	linkTTL          time.Duration
	strictSingleUse  bool
	emailWithoutLink bool
	newToken         func() (string, error)
}

type FulfillmentOption func(*FulfillmentService)

// WithLinkTTL overrides how long issued links stay redeemable.
func WithLinkTTL(d time.Duration) FulfillmentOption {
	return func(s *FulfillmentService) {
		if d > 0 {
			s.linkTTL = d
		}
	}
}

// WithStrictSingleUse makes the used flag gate downloads: a link serves at
// most one download and concurrent fetches race on a conditional update.
func WithStrictSingleUse(strict bool) FulfillmentOption {
	return func(s *FulfillmentService) {
		s.strictSingleUse = strict
	}
}

// WithEmailWithoutLink controls whether the purchase email still goes out
// when no download link could be issued.
func WithEmailWithoutLink(send bool) FulfillmentOption {
	return func(s *FulfillmentService) {
		s.emailWithoutLink = send
	}
}

func WithPublisher(p events.Publisher) FulfillmentOption {
	return func(s *FulfillmentService) {
		if p != nil {
			s.publisher = p
		}
	}
}

func WithLogger(l zerolog.Logger) FulfillmentOption {
	return func(s *FulfillmentService) {
		s.logger = l
	}
}

// WithTokenSource replaces the token generator.
func WithTokenSource(fn func() (string, error)) FulfillmentOption {
	return func(s *FulfillmentService) {
		if fn != nil {
			s.newToken = fn
		}
	}
}

func NewFulfillmentService(deps FulfillmentDeps, opts ...FulfillmentOption) *FulfillmentService {
	svc := &FulfillmentService{
		customers:        deps.Customers,
		links:            deps.Links,
		verifier:         deps.Verifier,
		notifier:         deps.Notifier,
		assets:           deps.Assets,
		clock:            deps.Clock,
		baseURL:          strings.TrimRight(deps.BaseURL, "/"),
		publisher:        events.Nop{},
		logger:           zerolog.Nop(),
		linkTTL:          domain.DefaultLinkTTL,
		emailWithoutLink: true,
		newToken:         token.Generate,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type VerifyOutcome string

const (
	OutcomeSuccess      VerifyOutcome = "success"
	OutcomeNotConfirmed VerifyOutcome = "not_confirmed"
)

// VerifyResult describes a verification that did not fail outright. On
// success the flags report which best-effort steps completed.
type VerifyResult struct {
	Outcome             VerifyOutcome
	CustomerID          string
	ProductName         string
	ObservedStatus      string
	DownloadLinkCreated bool
	EmailSent           bool
}

// VerifySession confirms a checkout session and fulfills the purchase.
//
// Only the payment-status write is authoritative. Reading the customer,
// issuing the link and sending the email each degrade to a false flag
// instead of failing the call, since the charge has already happened.
func (s *FulfillmentService) VerifySession(ctx context.Context, sessionID string) (VerifyResult, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" || !strings.HasPrefix(sessionID, sessionIDPrefix) {
		metrics.VerificationsTotal.WithLabelValues("invalid").Inc()
		return VerifyResult{}, domain.ErrInvalidSessionID
	}

	log := s.logger.With().Str("session_id", sessionID).Logger()

	v, err := s.verifier.VerifySession(ctx, sessionID)
	if err != nil {
		metrics.VerificationsTotal.WithLabelValues("error").Inc()
		log.Error().Err(err).Msg("verify checkout session")
		return VerifyResult{}, err
	}

	if !v.Paid {
		metrics.VerificationsTotal.WithLabelValues(string(OutcomeNotConfirmed)).Inc()
		log.Warn().
			Str("payment_status", v.PaymentStatus).
			Bool("has_reference", v.ReferenceID != "").
			Msg("session not paid or missing client reference")
		return VerifyResult{
			Outcome:        OutcomeNotConfirmed,
			ObservedStatus: v.PaymentStatus,
		}, nil
	}

	customerID := v.ReferenceID
	log = log.With().Str("customer_id", customerID).Logger()

	switch err := s.customers.MarkCustomerPaid(ctx, customerID); {
	case errors.Is(err, domain.ErrCustomerNotFound):
		// Not fatal: the customer read below fails and degrades the result.
		log.Error().Err(err).Msg("paid session references no customer")
	case err != nil:
		metrics.VerificationsTotal.WithLabelValues("error").Inc()
		log.Error().Err(err).Msg("mark customer paid")
		return VerifyResult{}, fmt.Errorf("%w: mark customer %s paid: %v", domain.ErrPersistence, customerID, err)
	default:
		log.Info().Msg("payment verified, customer marked paid")
	}

	res := VerifyResult{Outcome: OutcomeSuccess, CustomerID: customerID}
	defer func() {
		metrics.VerificationsTotal.WithLabelValues(string(OutcomeSuccess)).Inc()
		s.publishConfirmed(ctx, sessionID, res, log)
	}()

	customer, err := s.customers.GetCustomer(ctx, customerID)
	if err != nil {
		log.Error().Err(err).Msg("load customer after payment, skipping link and email")
		return res, nil
	}

	product := customer.ProductName
	if product == "" {
		product = domain.DefaultProductName
	}
	res.ProductName = product

	var downloadURL string
	link, err := s.issueLink(ctx, customer.ID, product, "verify")
	if err != nil {
		log.Error().Err(err).Msg("issue download link")
	} else {
		res.DownloadLinkCreated = true
		downloadURL = s.DownloadURL(link.Token)
	}

	if res.DownloadLinkCreated || s.emailWithoutLink {
		res.EmailSent = s.notifier.Send(ctx, notify.KindPurchaseConfirmation, notify.Recipient{
			Email:       customer.Email,
			Name:        customer.FullName,
			ProductName: product,
			DownloadURL: downloadURL,
		})
		if !res.EmailSent {
			log.Warn().Msg("purchase confirmation email not sent")
		}
	}

	return res, nil
}

func (s *FulfillmentService) publishConfirmed(ctx context.Context, sessionID string, res VerifyResult, log zerolog.Logger) {
	ev := events.NewPurchaseConfirmed(res.CustomerID, sessionID, s.clock.Now())
	ev.ProductName = res.ProductName
	ev.DownloadLinkCreated = res.DownloadLinkCreated
	ev.EmailSent = res.EmailSent

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	err := events.PublishPurchaseConfirmed(pubCtx, s.publisher, ev)
	metrics.EventsPublishedTotal.WithLabelValues(metrics.StatusLabel(err == nil)).Inc()
	if err != nil {
		log.Warn().Err(err).Msg("publish purchase event")
	}
}

// issueLink mints a token and stores the link, regenerating the token when
// it collides with an existing one.
func (s *FulfillmentService) issueLink(ctx context.Context, customerID, product, source string) (domain.DownloadLink, error) {
	now := s.clock.Now()
	var lastErr error
	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		tok, err := s.newToken()
		if err != nil {
			lastErr = fmt.Errorf("generate token: %w", err)
			break
		}

		link := domain.DownloadLink{
			ID:          newID(),
			CustomerID:  customerID,
			Token:       tok,
			ProductName: product,
			ExpiresAt:   now.Add(s.linkTTL),
			CreatedAt:   now,
		}
		err = s.links.CreateLink(ctx, link)
		if err == nil {
			metrics.DownloadLinksIssuedTotal.WithLabelValues(source, metrics.StatusSuccess).Inc()
			s.logger.Info().
				Str("customer_id", customerID).
				Str("token", token.Short(tok)).
				Time("expires_at", link.ExpiresAt).
				Msg("download link issued")
			return link, nil
		}
		lastErr = err
		if !errors.Is(err, domain.ErrTokenCollision) {
			break
		}
	}
	metrics.DownloadLinksIssuedTotal.WithLabelValues(source, metrics.StatusFailure).Inc()
	return domain.DownloadLink{}, lastErr
}

// DownloadURL is the public page a customer opens to fetch their archive.
func (s *FulfillmentService) DownloadURL(tok string) string {
	return s.baseURL + downloadPathPrefix + tok
}

// DownloadInfo returns the link behind tok if it is still redeemable.
func (s *FulfillmentService) DownloadInfo(ctx context.Context, tok string) (domain.DownloadLink, error) {
	link, err := s.lookup(ctx, tok)
	if err != nil {
		return domain.DownloadLink{}, err
	}
	if link.Expired(s.clock.Now()) {
		return domain.DownloadLink{}, domain.ErrLinkExpired
	}
	return link, nil
}

// Download is an asset cleared for streaming. The caller closes
// Asset.Content.
type Download struct {
	Link  domain.DownloadLink
	Asset assets.Asset
}

// OpenDownload validates tok, resolves its archive and records the use.
//
// By default the used flag is informational: it is set before streaming,
// a failed update is only logged, and used links are served again. With
// strict single use the flag is claimed with a conditional update and a
// link that was already claimed yields domain.ErrLinkAlreadyUsed.
func (s *FulfillmentService) OpenDownload(ctx context.Context, tok string) (Download, error) {
	link, err := s.lookup(ctx, tok)
	if err != nil {
		metrics.DownloadsTotal.WithLabelValues(downloadOutcome(err)).Inc()
		return Download{}, err
	}

	log := s.logger.With().Str("link_id", link.ID).Str("customer_id", link.CustomerID).Logger()

	if link.Expired(s.clock.Now()) {
		metrics.DownloadsTotal.WithLabelValues("expired").Inc()
		log.Warn().Time("expires_at", link.ExpiresAt).Msg("download link expired")
		return Download{}, domain.ErrLinkExpired
	}
	if s.strictSingleUse && link.IsUsed {
		metrics.DownloadsTotal.WithLabelValues("used").Inc()
		return Download{}, domain.ErrLinkAlreadyUsed
	}

	asset, err := s.assets.Open(link.ProductName)
	if err != nil {
		metrics.DownloadsTotal.WithLabelValues("asset_missing").Inc()
		log.Error().Err(err).Str("product", link.ProductName).Msg("open download asset")
		return Download{}, err
	}

	if s.strictSingleUse {
		claimed, err := s.links.ClaimLink(ctx, link.ID)
		if err != nil {
			_ = asset.Content.Close()
			metrics.DownloadsTotal.WithLabelValues("error").Inc()
			return Download{}, fmt.Errorf("%w: claim link %s: %v", domain.ErrPersistence, link.ID, err)
		}
		if !claimed {
			_ = asset.Content.Close()
			metrics.DownloadsTotal.WithLabelValues("used").Inc()
			return Download{}, domain.ErrLinkAlreadyUsed
		}
	} else if err := s.links.MarkLinkUsed(ctx, link.ID); err != nil {
		log.Warn().Err(err).Msg("mark download link used")
	}
	link.IsUsed = true

	metrics.DownloadsTotal.WithLabelValues("served").Inc()
	log.Info().Str("file", asset.FileName).Msg("serving download")
	return Download{Link: link, Asset: asset}, nil
}

func (s *FulfillmentService) lookup(ctx context.Context, tok string) (domain.DownloadLink, error) {
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return domain.DownloadLink{}, domain.ErrTokenRequired
	}
	link, err := s.links.GetLinkByToken(ctx, tok)
	if err != nil {
		if !errors.Is(err, domain.ErrLinkNotFound) {
			s.logger.Error().Err(err).Str("token", token.Short(tok)).Msg("look up download link")
		}
		return domain.DownloadLink{}, err
	}
	return link, nil
}

func downloadOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrTokenRequired):
		return "invalid"
	case errors.Is(err, domain.ErrLinkNotFound):
		return "not_found"
	default:
		return "error"
	}
}

// IssuedLink is a freshly minted link plus the URL to share with the customer.
type IssuedLink struct {
	Link domain.DownloadLink
	URL  string
}

// IssueDownloadLink re-issues a link for a paid customer. The stored
// product wins over the requested one, which wins over the default.
func (s *FulfillmentService) IssueDownloadLink(ctx context.Context, customerID, productName string) (IssuedLink, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return IssuedLink{}, domain.ErrCustomerIDRequired
	}

	customer, err := s.customers.GetCustomer(ctx, customerID)
	if err != nil {
		return IssuedLink{}, err
	}
	if !customer.Paid() {
		s.logger.Warn().Str("customer_id", customerID).Msg("download link requested for unpaid customer")
		return IssuedLink{}, domain.ErrCustomerNotPaid
	}

	product := customer.ProductName
	if product == "" {
		product = strings.TrimSpace(productName)
	}
	if product == "" {
		product = domain.DefaultProductName
	}

	link, err := s.issueLink(ctx, customer.ID, product, "manual")
	if err != nil {
		return IssuedLink{}, fmt.Errorf("%w: issue link for %s: %v", domain.ErrPersistence, customer.ID, err)
	}
	return IssuedLink{Link: link, URL: s.DownloadURL(link.Token)}, nil
}

// Package notify sends transactional email. Sends are best-effort: every
// failure is logged and reported as false, never returned as an error.
package notify

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/sendgrid/rest"
	sendgrid "github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/nuxtz/storefront/internal/metrics"
)

type Kind string

const (
	KindWaitlistConfirmation Kind = "waitlist_confirmation"
	KindPurchaseConfirmation Kind = "purchase_confirmation"
)

// Recipient carries the fields interpolated into a message. Only Email is
// used for waitlist confirmations.
type Recipient struct {
	Email       string
	Name        string
	ProductName string
	DownloadURL string
}

// Notifier is what the rest of the service depends on.
type Notifier interface {
	Send(ctx context.Context, kind Kind, to Recipient) bool
}

// Sender is the slice of the SendGrid client used to deliver mail.
type Sender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

type Config struct {
	APIKey   string
	FromAddr string
	FromName string
}

type SendGridNotifier struct {
	sender Sender
	from   *mail.Email
	logger zerolog.Logger
}

// NewSendGridNotifier builds the process-wide notifier. With an empty API
// key the notifier is still usable but every send reports false.
func NewSendGridNotifier(cfg Config, logger zerolog.Logger) *SendGridNotifier {
	var sender Sender
	if cfg.APIKey != "" {
		sender = sendgrid.NewSendClient(cfg.APIKey)
	}
	return NewWithSender(sender, cfg, logger)
}

// NewWithSender wires an explicit transport, mainly for tests.
func NewWithSender(sender Sender, cfg Config, logger zerolog.Logger) *SendGridNotifier {
	return &SendGridNotifier{
		sender: sender,
		from:   mail.NewEmail(cfg.FromName, cfg.FromAddr),
		logger: logger.With().Str("component", "notify").Logger(),
	}
}

func (n *SendGridNotifier) Send(ctx context.Context, kind Kind, to Recipient) (ok bool) {
	log := n.logger.With().Str("kind", string(kind)).Str("to", to.Email).Logger()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("email send panicked")
			ok = false
		}
		metrics.EmailsTotal.WithLabelValues(string(kind), metrics.StatusLabel(ok)).Inc()
	}()

	if n.sender == nil {
		log.Warn().Msg("email provider not configured, skipping send")
		return false
	}
	if to.Email == "" {
		log.Warn().Msg("no recipient address, skipping send")
		return false
	}

	msg, err := render(kind, to)
	if err != nil {
		log.Error().Err(err).Msg("render email")
		return false
	}

	email := mail.NewSingleEmail(n.from, msg.Subject, mail.NewEmail(to.Name, to.Email), msg.Text, msg.HTML)

	log.Info().Msg("sending email")
	resp, err := n.sender.SendWithContext(ctx, email)
	if err != nil {
		log.Error().Err(err).Msg("send email")
		return false
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		log.Error().Int("status", resp.StatusCode).Str("body", resp.Body).Msg("email provider rejected message")
		return false
	}

	log.Info().Int("status", resp.StatusCode).Msg("email sent")
	return true
}

func render(kind Kind, to Recipient) (message, error) {
	switch kind {
	case KindWaitlistConfirmation:
		return waitlistConfirmation(to.Email), nil
	case KindPurchaseConfirmation:
		return purchaseConfirmation(to.Name, to.ProductName, to.DownloadURL), nil
	default:
		return message{}, fmt.Errorf("unknown email kind %q", kind)
	}
}

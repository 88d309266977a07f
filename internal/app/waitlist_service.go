package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/nuxtz/storefront/internal/clock"
	"github.com/nuxtz/storefront/internal/domain"
	"github.com/nuxtz/storefront/internal/notify"
)

type WaitlistService struct {
	repo     WaitlistRepository
	notifier notify.Notifier
	clock    clock.Clock
	logger   zerolog.Logger
}

func NewWaitlistService(repo WaitlistRepository, notifier notify.Notifier, clk clock.Clock, logger zerolog.Logger) *WaitlistService {
	return &WaitlistService{
		repo:     repo,
		notifier: notifier,
		clock:    clk,
		logger:   logger,
	}
}

type JoinWaitlistResult struct {
	Entry     domain.WaitingCustomer
	EmailSent bool
}

// Join registers email on the waiting list and sends a confirmation. The
// email is best-effort; the registration stands even if it fails.
func (s *WaitlistService) Join(ctx context.Context, email string) (JoinWaitlistResult, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return JoinWaitlistResult{}, domain.ErrEmailRequired
	}

	now := s.clock.Now()
	entry := domain.WaitingCustomer{
		ID:        newID(),
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.AddWaitingCustomer(ctx, entry); err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateEmail):
			return JoinWaitlistResult{}, err
		case errors.Is(err, domain.ErrWaitlistUnavailable):
			s.logger.Error().Err(err).Msg("waiting list table missing")
			return JoinWaitlistResult{}, err
		default:
			s.logger.Error().Err(err).Msg("add to waiting list")
			return JoinWaitlistResult{}, fmt.Errorf("%w: add to waiting list: %v", domain.ErrPersistence, err)
		}
	}

	sent := s.notifier.Send(ctx, notify.KindWaitlistConfirmation, notify.Recipient{Email: email})
	if !sent {
		s.logger.Warn().Str("waitlist_id", entry.ID).Msg("waitlist confirmation email not sent")
	}

	return JoinWaitlistResult{Entry: entry, EmailSent: sent}, nil
}

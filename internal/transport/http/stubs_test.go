package http

import (
	"context"
	"io"
	"strings"

	"github.com/nuxtz/storefront/internal/app"
	"github.com/nuxtz/storefront/internal/assets"
	"github.com/nuxtz/storefront/internal/domain"
)

type stubWaitlist struct {
	err   error
	email string
}

func (s *stubWaitlist) Join(_ context.Context, email string) (app.JoinWaitlistResult, error) {
	s.email = email
	if s.err != nil {
		return app.JoinWaitlistResult{}, s.err
	}
	return app.JoinWaitlistResult{Entry: domain.WaitingCustomer{ID: "w1", Email: email}, EmailSent: true}, nil
}

type stubCustomers struct {
	err error
	in  app.CreateCustomerInput
}

func (s *stubCustomers) CreateCustomer(_ context.Context, in app.CreateCustomerInput) (domain.Customer, error) {
	s.in = in
	if s.err != nil {
		return domain.Customer{}, s.err
	}
	return domain.Customer{ID: "cust-123", Email: in.Email, FullName: in.FullName}, nil
}

type stubFulfillment struct {
	verifyRes app.VerifyResult
	verifyErr error

	link    domain.DownloadLink
	linkErr error

	content  string
	openErr  error
	closed   bool
	openedAs string

	issued   app.IssuedLink
	issueErr error
}

func (s *stubFulfillment) VerifySession(_ context.Context, _ string) (app.VerifyResult, error) {
	return s.verifyRes, s.verifyErr
}

func (s *stubFulfillment) DownloadInfo(_ context.Context, _ string) (domain.DownloadLink, error) {
	return s.link, s.linkErr
}

func (s *stubFulfillment) OpenDownload(_ context.Context, token string) (app.Download, error) {
	s.openedAs = token
	if s.openErr != nil {
		return app.Download{}, s.openErr
	}
	return app.Download{
		Link: s.link,
		Asset: assets.Asset{
			FileName: assets.FileFor(s.link.ProductName),
			Size:     int64(len(s.content)),
			Content:  closeTracker{Reader: strings.NewReader(s.content), owner: s},
		},
	}, nil
}

func (s *stubFulfillment) IssueDownloadLink(_ context.Context, _, _ string) (app.IssuedLink, error) {
	return s.issued, s.issueErr
}

type closeTracker struct {
	*strings.Reader
	owner *stubFulfillment
}

func (c closeTracker) Close() error {
	c.owner.closed = true
	return nil
}

var _ io.ReadSeekCloser = closeTracker{}

type stubHealth struct {
	status app.DBStatus
	err    error
}

func (s stubHealth) CheckDatabase(context.Context) (app.DBStatus, error) {
	return s.status, s.err
}

package app

import (
	"context"
	"strings"
	"time"

	"github.com/nuxtz/storefront/internal/assets"
	"github.com/nuxtz/storefront/internal/domain"
	"github.com/nuxtz/storefront/internal/notify"
	"github.com/nuxtz/storefront/internal/payment"
)

type fakeCustomerRepo struct {
	customers map[string]domain.Customer
	createErr error
	getErr    error
	markErr   error
	markCalls int
}

func newFakeCustomerRepo(customers ...domain.Customer) *fakeCustomerRepo {
	repo := &fakeCustomerRepo{customers: make(map[string]domain.Customer)}
	for _, c := range customers {
		repo.customers[c.ID] = c
	}
	return repo
}

func (f *fakeCustomerRepo) CreateCustomer(_ context.Context, customer domain.Customer) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.customers[customer.ID] = customer
	return nil
}

func (f *fakeCustomerRepo) GetCustomer(_ context.Context, id string) (domain.Customer, error) {
	if f.getErr != nil {
		return domain.Customer{}, f.getErr
	}
	c, ok := f.customers[id]
	if !ok {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}
	return c, nil
}

func (f *fakeCustomerRepo) MarkCustomerPaid(_ context.Context, id string) error {
	f.markCalls++
	if f.markErr != nil {
		return f.markErr
	}
	c, ok := f.customers[id]
	if !ok {
		return domain.ErrCustomerNotFound
	}
	c.PaymentStatus = domain.PaymentStatusPaid
	f.customers[id] = c
	return nil
}

type fakeLinkRepo struct {
	links       map[string]domain.DownloadLink // by token
	createErrs  []error
	createCalls int
	markErr     error
	markCalls   int
	claimResult *bool
	claimErr    error
}

func newFakeLinkRepo(links ...domain.DownloadLink) *fakeLinkRepo {
	repo := &fakeLinkRepo{links: make(map[string]domain.DownloadLink)}
	for _, l := range links {
		repo.links[l.Token] = l
	}
	return repo
}

func (f *fakeLinkRepo) CreateLink(_ context.Context, link domain.DownloadLink) error {
	f.createCalls++
	if len(f.createErrs) > 0 {
		err := f.createErrs[0]
		f.createErrs = f.createErrs[1:]
		if err != nil {
			return err
		}
	}
	if _, exists := f.links[link.Token]; exists {
		return domain.ErrTokenCollision
	}
	f.links[link.Token] = link
	return nil
}

func (f *fakeLinkRepo) GetLinkByToken(_ context.Context, tok string) (domain.DownloadLink, error) {
	l, ok := f.links[tok]
	if !ok {
		return domain.DownloadLink{}, domain.ErrLinkNotFound
	}
	return l, nil
}

func (f *fakeLinkRepo) MarkLinkUsed(_ context.Context, id string) error {
	f.markCalls++
	if f.markErr != nil {
		return f.markErr
	}
	for tok, l := range f.links {
		if l.ID == id {
			l.IsUsed = true
			f.links[tok] = l
			return nil
		}
	}
	return domain.ErrLinkNotFound
}

func (f *fakeLinkRepo) ClaimLink(_ context.Context, id string) (bool, error) {
	if f.claimErr != nil {
		return false, f.claimErr
	}
	if f.claimResult != nil {
		return *f.claimResult, nil
	}
	for tok, l := range f.links {
		if l.ID == id {
			if l.IsUsed {
				return false, nil
			}
			l.IsUsed = true
			f.links[tok] = l
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeLinkRepo) linksFor(customerID string) []domain.DownloadLink {
	var out []domain.DownloadLink
	for _, l := range f.links {
		if l.CustomerID == customerID {
			out = append(out, l)
		}
	}
	return out
}

type fakeVerifier struct {
	result payment.Verification
	err    error
	calls  int
}

func (f *fakeVerifier) VerifySession(_ context.Context, sessionID string) (payment.Verification, error) {
	f.calls++
	if f.err != nil {
		return payment.Verification{}, f.err
	}
	res := f.result
	res.SessionID = sessionID
	return res, nil
}

type fakeNotifier struct {
	ok    bool
	sent  []notify.Recipient
	kinds []notify.Kind
}

func (f *fakeNotifier) Send(_ context.Context, kind notify.Kind, to notify.Recipient) bool {
	f.kinds = append(f.kinds, kind)
	f.sent = append(f.sent, to)
	return f.ok
}

type trackedContent struct {
	*strings.Reader
	closed bool
}

func (c *trackedContent) Close() error {
	c.closed = true
	return nil
}

type fakeAssets struct {
	err       error
	opened    []string
	lastAsset *trackedContent
}

func (f *fakeAssets) Open(productName string) (assets.Asset, error) {
	f.opened = append(f.opened, productName)
	if f.err != nil {
		return assets.Asset{}, f.err
	}
	content := &trackedContent{Reader: strings.NewReader("PK")}
	f.lastAsset = content
	return assets.Asset{
		FileName: assets.FileFor(productName),
		Size:     2,
		Content:  content,
	}, nil
}

type fakePublisher struct {
	topics    []string
	err       error
	deadlines []time.Time
	ctxErrs   []error
}

func (f *fakePublisher) Publish(ctx context.Context, _ string, topic string, _ []byte) error {
	f.topics = append(f.topics, topic)
	deadline, _ := ctx.Deadline()
	f.deadlines = append(f.deadlines, deadline)
	f.ctxErrs = append(f.ctxErrs, ctx.Err())
	return f.err
}

func boolPtr(b bool) *bool {
	return &b
}

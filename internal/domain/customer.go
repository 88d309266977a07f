package domain

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// Customer is a buyer created at checkout start and marked paid once the
// payment provider confirms the session.
type Customer struct {
	ID            string
	FullName      string
	Email         string
	CompanyName   string
	PhoneNumber   string
	ProductName   string
	PaymentStatus PaymentStatus
}

func (c Customer) Paid() bool {
	return c.PaymentStatus == PaymentStatusPaid
}

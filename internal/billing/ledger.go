package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/jmehdipour/wifi-billing/internal/model"
	"github.com/shopspring/decimal"
)

// PaymentInput is what a caller supplies when registering a payment.
type PaymentInput struct {
	Date       time.Time
	Amount     decimal.Decimal
	MonthLabel string // defaults to MonthLabel(billing date) when empty
}

// Validate checks the input before anything is derived from it.
func (in PaymentInput) Validate() error {
	if !in.Amount.IsPositive() {
		return fmt.Errorf("amount %s: %w", in.Amount.String(), ErrInvalidAmount)
	}
	if in.Date.IsZero() {
		return fmt.Errorf("payment date: %w", ErrInvalidDate)
	}
	return nil
}

// RecordPayment returns a copy of c with the payment appended, status set to
// paid and the billing date moved forward by one cycle. c itself is left
// untouched so no half-applied customer is ever observable.
func RecordPayment(c model.Customer, in PaymentInput, paymentID string) (model.Customer, model.PaymentRecord, error) {
	if c.ID == "" {
		return model.Customer{}, model.PaymentRecord{}, ErrCustomerNotFound
	}
	if err := in.Validate(); err != nil {
		return model.Customer{}, model.PaymentRecord{}, err
	}
	if c.BillingDate.IsZero() {
		return model.Customer{}, model.PaymentRecord{}, fmt.Errorf("billing date: %w", ErrInvalidDate)
	}

	label := strings.TrimSpace(in.MonthLabel)
	if label == "" {
		label = MonthLabel(c.BillingDate)
	}

	rec := model.PaymentRecord{
		ID:         paymentID,
		CustomerID: c.ID,
		Date:       StartOfDay(in.Date),
		Amount:     in.Amount,
		MonthLabel: label,
	}

	out := c
	out.PaymentHistory = make([]model.PaymentRecord, 0, len(c.PaymentHistory)+1)
	out.PaymentHistory = append(out.PaymentHistory, c.PaymentHistory...)
	out.PaymentHistory = append(out.PaymentHistory, rec)
	out.CurrentPaymentStatus = model.PaymentPaid
	out.BillingDate = NextBillingDate(c.BillingDate)

	return out, rec, nil
}

// DeletePayment returns a copy of c without the given payment. Billing date and
// stored status are not reverted.
//
// TODO: decide whether removing the latest payment should roll the cycle back.
func DeletePayment(c model.Customer, paymentID string) (model.Customer, error) {
	if c.ID == "" {
		return model.Customer{}, ErrCustomerNotFound
	}

	idx := -1
	for i, p := range c.PaymentHistory {
		if p.ID == paymentID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return model.Customer{}, fmt.Errorf("payment %q: %w", paymentID, ErrPaymentNotFound)
	}

	out := c
	out.PaymentHistory = make([]model.PaymentRecord, 0, len(c.PaymentHistory)-1)
	out.PaymentHistory = append(out.PaymentHistory, c.PaymentHistory[:idx]...)
	out.PaymentHistory = append(out.PaymentHistory, c.PaymentHistory[idx+1:]...)
	return out, nil
}

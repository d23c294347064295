package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/jmehdipour/wifi-billing/internal/model"
)

// Period is the inclusive date range an invoice bills for.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ComputeInvoicePeriod returns [billingDate, NextBillingDate(billingDate) - 1 day].
func ComputeInvoicePeriod(billingDate time.Time) (Period, error) {
	if billingDate.IsZero() {
		return Period{}, fmt.Errorf("billing date: %w", ErrInvalidDate)
	}
	start := StartOfDay(billingDate)
	return Period{
		Start: start,
		End:   NextBillingDate(start).AddDate(0, 0, -1),
	}, nil
}

// GenerateInvoiceID builds INV-<first 4 chars of customerID, upper-cased>-<YYYYMMDD>.
// Identical inputs always give the same id.
func GenerateInvoiceID(customerID string, issueDate time.Time) string {
	prefix := []rune(customerID)
	if len(prefix) > 4 {
		prefix = prefix[:4]
	}
	return fmt.Sprintf("INV-%s-%s", strings.ToUpper(string(prefix)), issueDate.Format("20060102"))
}

// NewSavedInvoice snapshots the customer as of issueDate. id is the storage key
// of the snapshot.
func NewSavedInvoice(c model.Customer, issueDate time.Time, id string) (model.SavedInvoice, error) {
	if c.ID == "" {
		return model.SavedInvoice{}, ErrCustomerNotFound
	}
	if issueDate.IsZero() {
		return model.SavedInvoice{}, fmt.Errorf("issue date: %w", ErrInvalidDate)
	}
	p, err := ComputeInvoicePeriod(c.BillingDate)
	if err != nil {
		return model.SavedInvoice{}, err
	}

	return model.SavedInvoice{
		ID:                  id,
		Number:              GenerateInvoiceID(c.ID, issueDate),
		CustomerID:          c.ID,
		CustomerName:        c.FullName,
		IssueDate:           StartOfDay(issueDate),
		ServiceType:         c.ServiceType,
		ClientTimeType:      c.ClientTimeType,
		PeriodStart:         p.Start,
		PeriodEnd:           p.End,
		Amount:              c.MonthlyPrice,
		OriginalBillingDate: c.BillingDate,
	}, nil
}

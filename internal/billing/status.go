package billing

import (
	"fmt"
	"time"

	"github.com/jmehdipour/wifi-billing/internal/model"
)

// DisplayStatus is the user facing payment state. It is computed on every read
// from the billing date and the stored model.PaymentStatus and must never be
// written back to storage.
type DisplayStatus string

const (
	DisplayPaid    DisplayStatus = "paid"
	DisplayPending DisplayStatus = "pending"
	DisplayOverdue DisplayStatus = "overdue"
	DisplayDueSoon DisplayStatus = "due_soon"
)

// DueSoonWindowDays is how many days ahead of the billing date a customer is
// surfaced as due soon. The billing day itself counts.
const DueSoonWindowDays = 3

func (s DisplayStatus) String() string { return string(s) }

// Label is the human readable form used by search.
func (s DisplayStatus) Label() string {
	switch s {
	case DisplayPaid:
		return "Paid"
	case DisplayPending:
		return "Pending"
	case DisplayOverdue:
		return "Overdue"
	case DisplayDueSoon:
		return "Due soon"
	default:
		return string(s)
	}
}

func (s DisplayStatus) Valid() bool {
	return s == DisplayPaid || s == DisplayPending || s == DisplayOverdue || s == DisplayDueSoon
}

// DeriveStatus classifies a customer for display. Rules, first match wins:
//  1. billing date within [today, today+3] days => due soon, whatever is stored
//  2. stored paid => paid
//  3. stored overdue => overdue
//  4. stored pending => overdue when the billing date has passed, else pending
//  5. anything else => pending
func DeriveStatus(billingDate time.Time, current model.PaymentStatus, today time.Time) DisplayStatus {
	days := DaysBetween(today, billingDate)

	if days >= 0 && days <= DueSoonWindowDays {
		return DisplayDueSoon
	}

	switch current {
	case model.PaymentPaid:
		return DisplayPaid
	case model.PaymentOverdue:
		return DisplayOverdue
	case model.PaymentPending:
		if days < 0 {
			return DisplayOverdue
		}
		return DisplayPending
	default:
		return DisplayPending
	}
}

// ValidateStatusInput rejects records the classifier cannot reason about.
func ValidateStatusInput(billingDate time.Time, current model.PaymentStatus) error {
	if billingDate.IsZero() {
		return fmt.Errorf("billing date: %w", ErrInvalidDate)
	}
	if !current.Valid() {
		return fmt.Errorf("%q: %w", current, ErrInvalidStatus)
	}
	return nil
}

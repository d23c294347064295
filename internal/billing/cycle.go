package billing

import (
	"time"

	"github.com/jmehdipour/wifi-billing/internal/model"
)

// NextBillingDate moves a billing date forward by exactly one cycle (one
// calendar month, clamped at month end).
func NextBillingDate(current time.Time) time.Time {
	return AddMonths(StartOfDay(current), 1)
}

// OpeningBillingDate is the billing date stored for a newly created customer.
// A customer registered as already paid starts on the following cycle.
func OpeningBillingDate(status model.PaymentStatus, billingDate time.Time) time.Time {
	if status == model.PaymentPaid {
		return NextBillingDate(billingDate)
	}
	return StartOfDay(billingDate)
}

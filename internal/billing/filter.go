package billing

import (
	"strings"
	"time"

	"github.com/jmehdipour/wifi-billing/internal/model"
)

// Profile filter values with a special meaning. Profiles cannot use these names.
const (
	ProfileAll  = "all"
	ProfileNone = "none"
)

// Filter narrows a customer list. Zero values match everything.
type Filter struct {
	Status  DisplayStatus // empty => any
	Search  string        // name, billing month or status label
	Profile string        // empty or ProfileAll => any, ProfileNone => untagged only
}

// MatchesFilter reports whether c passes f on the given day.
func MatchesFilter(c model.Customer, f Filter, today time.Time) bool {
	status := DeriveStatus(c.BillingDate, c.CurrentPaymentStatus, today)

	if f.Status != "" && status != f.Status {
		return false
	}
	switch f.Profile {
	case "", ProfileAll:
	case ProfileNone:
		if c.ProfileName != nil {
			return false
		}
	default:
		if c.ProfileName == nil || *c.ProfileName != f.Profile {
			return false
		}
	}

	term := strings.ToLower(strings.TrimSpace(f.Search))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(c.FullName), term) ||
		strings.Contains(strings.ToLower(c.BillingDate.Month().String()), term) ||
		strings.Contains(strings.ToLower(status.Label()), term)
}

// FilterCustomers keeps the customers matching f, preserving order.
func FilterCustomers(customers []model.Customer, f Filter, today time.Time) []model.Customer {
	out := make([]model.Customer, 0, len(customers))
	for _, c := range customers {
		if MatchesFilter(c, f, today) {
			out = append(out, c)
		}
	}
	return out
}

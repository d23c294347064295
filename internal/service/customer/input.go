package customer

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jmehdipour/wifi-billing/internal/billing"
	"github.com/jmehdipour/wifi-billing/internal/model"
	"github.com/jmehdipour/wifi-billing/internal/util"
	"github.com/shopspring/decimal"
)

// Input carries the editable customer fields for Create and Update.
type Input struct {
	FullName             string
	ServiceType          model.ServiceType
	ClientTimeType       model.ClientTimeType
	PhoneNumber          string
	ServiceStartDate     time.Time
	BillingDate          time.Time
	MonthlyPrice         decimal.Decimal
	CurrentPaymentStatus model.PaymentStatus
	Observations         string
	PlanSpeed            string
	ProfileName          *string
}

// normalize trims free text, normalizes the phone number and maps a blank
// profile to "no profile".
func (in Input) normalize() Input {
	in.FullName = strings.TrimSpace(in.FullName)
	in.PhoneNumber = util.NormalizePhone(in.PhoneNumber)
	in.Observations = strings.TrimSpace(in.Observations)
	in.PlanSpeed = strings.TrimSpace(in.PlanSpeed)
	if in.ProfileName != nil {
		p := strings.TrimSpace(*in.ProfileName)
		if p == "" {
			in.ProfileName = nil
		} else {
			in.ProfileName = &p
		}
	}
	return in
}

func (in Input) validate() error {
	if utf8.RuneCountInString(in.FullName) < 3 {
		return fmt.Errorf("full name must have at least 3 characters: %w", ErrInvalidCustomer)
	}
	if !in.ServiceType.Valid() {
		return fmt.Errorf("service type %q: %w", in.ServiceType, ErrInvalidCustomer)
	}
	if !in.ClientTimeType.Valid() {
		return fmt.Errorf("client time type %q: %w", in.ClientTimeType, ErrInvalidCustomer)
	}
	if !util.ValidPhone(in.PhoneNumber) {
		return fmt.Errorf("phone number %q: %w", in.PhoneNumber, ErrInvalidCustomer)
	}
	if !in.MonthlyPrice.IsPositive() {
		return fmt.Errorf("monthly price %s: %w", in.MonthlyPrice.String(), billing.ErrInvalidAmount)
	}
	if in.ServiceStartDate.IsZero() {
		return fmt.Errorf("service start date: %w", billing.ErrInvalidDate)
	}
	return billing.ValidateStatusInput(in.BillingDate, in.CurrentPaymentStatus)
}

// apply copies the input onto c. The billing date is taken verbatim.
func (in Input) apply(c model.Customer) model.Customer {
	c.FullName = in.FullName
	c.ServiceType = in.ServiceType
	c.ClientTimeType = in.ClientTimeType
	c.PhoneNumber = in.PhoneNumber
	c.ServiceStartDate = billing.StartOfDay(in.ServiceStartDate)
	c.BillingDate = billing.StartOfDay(in.BillingDate)
	c.MonthlyPrice = in.MonthlyPrice
	c.CurrentPaymentStatus = in.CurrentPaymentStatus
	c.Observations = in.Observations
	c.PlanSpeed = in.PlanSpeed
	c.ProfileName = in.ProfileName
	return c
}

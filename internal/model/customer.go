package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the stored, manually settable payment flag of a customer.
// The display status shown to users is derived from it (see billing.DeriveStatus)
// and is never persisted.
type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "paid"
	PaymentPending PaymentStatus = "pending"
	PaymentOverdue PaymentStatus = "overdue"
)

func (s PaymentStatus) String() string { return string(s) }

func (s PaymentStatus) Valid() bool {
	return s == PaymentPaid || s == PaymentPending || s == PaymentOverdue
}

// ParsePaymentStatus normalizes input; empty => pending.
func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "pending":
		return PaymentPending, true
	case "paid":
		return PaymentPaid, true
	case "overdue":
		return PaymentOverdue, true
	default:
		return PaymentPending, false
	}
}

type ServiceType string

const (
	ServiceRouter ServiceType = "ROUTER"
	ServiceEAP    ServiceType = "EAP"
)

func (t ServiceType) String() string { return string(t) }

func (t ServiceType) Valid() bool { return t == ServiceRouter || t == ServiceEAP }

// ClientTimeType only labels how the customer is presented; the billing cycle
// is always one month regardless of it.
type ClientTimeType string

const (
	TimeHourly  ClientTimeType = "hourly"
	TimeWeekly  ClientTimeType = "weekly"
	TimeMonthly ClientTimeType = "monthly"
)

func (t ClientTimeType) String() string { return string(t) }

func (t ClientTimeType) Valid() bool {
	return t == TimeHourly || t == TimeWeekly || t == TimeMonthly
}

// Customer is the DB entity persisted in customers table. PaymentHistory is
// loaded separately from the payments table.
type Customer struct {
	ID                   string          `db:"id" json:"id"`
	FullName             string          `db:"full_name" json:"full_name"`
	ServiceType          ServiceType     `db:"service_type" json:"service_type"`
	ClientTimeType       ClientTimeType  `db:"client_time_type" json:"client_time_type"`
	PhoneNumber          string          `db:"phone_number" json:"phone_number"`
	ServiceStartDate     time.Time       `db:"service_start_date" json:"service_start_date"`
	BillingDate          time.Time       `db:"billing_date" json:"billing_date"` // next unpaid due date
	MonthlyPrice         decimal.Decimal `db:"monthly_price" json:"monthly_price"`
	CurrentPaymentStatus PaymentStatus   `db:"current_payment_status" json:"current_payment_status"`
	Observations         string          `db:"observations" json:"observations,omitempty"`
	PlanSpeed            string          `db:"plan_speed" json:"plan_speed,omitempty"`
	ProfileName          *string         `db:"profile_name" json:"profile_name"` // nullable
	PaymentHistory       []PaymentRecord `db:"-" json:"payment_history"`
	CreatedAt            time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time       `db:"updated_at" json:"updated_at"`
}

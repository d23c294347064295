package http

import (
	"fmt"
	"strings"
	"time"

	"github.com/jmehdipour/wifi-billing/internal/billing"
	"github.com/jmehdipour/wifi-billing/internal/model"
	"github.com/jmehdipour/wifi-billing/internal/service/customer"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type customerReq struct {
	FullName             string          `json:"full_name" validate:"required,min=3,max=120"`
	ServiceType          string          `json:"service_type" validate:"required,oneof=ROUTER EAP"`
	ClientTimeType       string          `json:"client_time_type" validate:"required,oneof=hourly weekly monthly"`
	PhoneNumber          string          `json:"phone_number" validate:"required,max=32"`
	ServiceStartDate     string          `json:"service_start_date" validate:"required,datetime=2006-01-02"`
	BillingDate          string          `json:"billing_date" validate:"required,datetime=2006-01-02"`
	MonthlyPrice         decimal.Decimal `json:"monthly_price"`
	CurrentPaymentStatus string          `json:"current_payment_status" validate:"omitempty,oneof=paid pending overdue"`
	Observations         string          `json:"observations" validate:"max=1000"`
	PlanSpeed            string          `json:"plan_speed" validate:"max=64"`
	ProfileName          *string         `json:"profile_name" validate:"omitempty,max=64"`
}

type paymentReq struct {
	Date       string          `json:"date" validate:"required,datetime=2006-01-02"`
	Amount     decimal.Decimal `json:"amount"`
	MonthLabel string          `json:"month_label" validate:"max=32"`
}

type profileReq struct {
	Name string `json:"name" validate:"required,max=64"`
}

// parseDate reads a YYYY-MM-DD civil date as midnight UTC.
func parseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q: %w", s, billing.ErrInvalidDate)
	}
	return t, nil
}

func (r customerReq) toInput() (customer.Input, error) {
	start, err := parseDate(r.ServiceStartDate)
	if err != nil {
		return customer.Input{}, err
	}
	due, err := parseDate(r.BillingDate)
	if err != nil {
		return customer.Input{}, err
	}
	status, ok := model.ParsePaymentStatus(r.CurrentPaymentStatus)
	if !ok {
		return customer.Input{}, fmt.Errorf("%q: %w", r.CurrentPaymentStatus, billing.ErrInvalidStatus)
	}

	return customer.Input{
		FullName:             r.FullName,
		ServiceType:          model.ServiceType(r.ServiceType),
		ClientTimeType:       model.ClientTimeType(r.ClientTimeType),
		PhoneNumber:          r.PhoneNumber,
		ServiceStartDate:     start,
		BillingDate:          due,
		MonthlyPrice:         r.MonthlyPrice,
		CurrentPaymentStatus: status,
		Observations:         r.Observations,
		PlanSpeed:            r.PlanSpeed,
		ProfileName:          r.ProfileName,
	}, nil
}

func (r paymentReq) toInput() (billing.PaymentInput, error) {
	d, err := parseDate(r.Date)
	if err != nil {
		return billing.PaymentInput{}, err
	}
	return billing.PaymentInput{Date: d, Amount: r.Amount, MonthLabel: r.MonthLabel}, nil
}

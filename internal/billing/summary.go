package billing

import (
	"time"

	"github.com/jmehdipour/wifi-billing/internal/model"
	"github.com/shopspring/decimal"
)

// Summary is the dashboard view over the whole customer base.
type Summary struct {
	TotalCustomers         int                       `json:"total_customers"`
	ByServiceType          map[model.ServiceType]int `json:"by_service_type"`
	ByStatus               map[DisplayStatus]int     `json:"by_status"`
	PotentialMonthlyIncome decimal.Decimal           `json:"potential_monthly_income"`
}

func Summarize(customers []model.Customer, today time.Time) Summary {
	s := Summary{
		TotalCustomers: len(customers),
		ByServiceType: map[model.ServiceType]int{
			model.ServiceRouter: 0,
			model.ServiceEAP:    0,
		},
		ByStatus: map[DisplayStatus]int{
			DisplayPaid:    0,
			DisplayPending: 0,
			DisplayOverdue: 0,
			DisplayDueSoon: 0,
		},
		PotentialMonthlyIncome: decimal.Zero,
	}

	for _, c := range customers {
		s.ByServiceType[c.ServiceType]++
		s.ByStatus[DeriveStatus(c.BillingDate, c.CurrentPaymentStatus, today)]++
		s.PotentialMonthlyIncome = s.PotentialMonthlyIncome.Add(c.MonthlyPrice)
	}
	return s
}

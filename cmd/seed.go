package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/jmehdipour/wifi-billing/internal/billing"
	"github.com/jmehdipour/wifi-billing/internal/db"
	"github.com/jmehdipour/wifi-billing/internal/logger"
	"github.com/jmehdipour/wifi-billing/internal/model"
	"github.com/jmehdipour/wifi-billing/internal/repository"
	"github.com/jmehdipour/wifi-billing/internal/util"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with demo customers",
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1) load config
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		loc, err := cfg.Billing.Location()
		if err != nil {
			return err
		}

		// 2) connect MySQL
		sqlDB, err := db.NewMySQLConnection(cfg.MySQL.DSN, db.PoolOptsFrom(cfg.MySQL))
		if err != nil {
			return fmt.Errorf("mysql connect: %w", err)
		}
		defer sqlDB.Close()

		today := billing.StartOfDay(billing.SystemClock{Location: loc}.Now())
		n, err := seedCustomers(cmd.Context(), sqlDB, today)
		if err != nil {
			return err
		}

		logger.Log.Info("seed completed", zap.Int("customers", n))
		return nil
	},
}

type seedPayment struct {
	date  time.Time
	label string
}

type seedCustomer struct {
	c        model.Customer
	payments []seedPayment
}

// demoCustomers covers every display status relative to today.
func demoCustomers(today time.Time) []seedCustomer {
	mk := func(name string, st model.ServiceType, tt model.ClientTimeType, phone string, start, due time.Time,
		price string, status model.PaymentStatus, speed, notes string) model.Customer {
		return model.Customer{
			ID:                   util.NewUUID(),
			FullName:             name,
			ServiceType:          st,
			ClientTimeType:       tt,
			PhoneNumber:          util.NormalizePhone(phone),
			ServiceStartDate:     start,
			BillingDate:          due,
			MonthlyPrice:         decimal.RequireFromString(price),
			CurrentPaymentStatus: status,
			PlanSpeed:            speed,
			Observations:         notes,
		}
	}
	prev := func(t time.Time) seedPayment {
		p := billing.AddMonths(t, -1)
		return seedPayment{date: p, label: billing.MonthLabel(p)}
	}

	sofiaPaid := today.AddDate(0, 0, -2)

	return []seedCustomer{
		{c: mk("Ana García López", model.ServiceRouter, model.TimeMonthly, "+54 9 11 23456789",
			billing.AddMonths(today, -5), today, "25.50", model.PaymentPaid, "50 MB", "Founding customer. Stable link."),
			payments: []seedPayment{prev(today)}},
		{c: mk("Carlos Rodríguez Martínez", model.ServiceEAP, model.TimeMonthly, "+52 1 55 98765432",
			billing.AddMonths(today, -2), today.AddDate(0, 0, -5), "30.00", model.PaymentPending, "100 MB", "Asked for a plan change last month.")},
		{c: mk("Sofía Hernández Pérez", model.ServiceRouter, model.TimeWeekly, "+34 600 123 456",
			billing.AddMonths(today, -10), billing.AddMonths(sofiaPaid, 1), "20.00", model.PaymentPaid, "Fast", ""),
			payments: []seedPayment{prev(sofiaPaid), {date: sofiaPaid, label: billing.MonthLabel(sofiaPaid)}}},
		{c: mk("Luis González Sánchez", model.ServiceRouter, model.TimeMonthly, "+44 20 7224 3688",
			billing.AddMonths(today, -1), today.AddDate(0, 0, -10), "35.75", model.PaymentPending, "75 MB", "New customer, recent install.")},
		{c: mk("Isabel Fernández Romero", model.ServiceEAP, model.TimeHourly, "+1 202 555 0149",
			today, billing.AddMonths(today, 1), "28.00", model.PaymentPaid, "", ""),
			payments: []seedPayment{{date: today, label: billing.MonthLabel(today)}}},
		{c: mk("Miguel Torres Jiménez", model.ServiceRouter, model.TimeMonthly, "+54 9 351 7654321",
			billing.AddMonths(today, -7), today.AddDate(0, 0, 2), "22.99", model.PaymentPending, "Basic 20 MB", ""),
			payments: []seedPayment{prev(today)}},
	}
}

// seedCustomers inserts the demo customers with their histories in one
// transaction. It is a no-op when customers already exist.
func seedCustomers(ctx context.Context, dbx *sqlx.DB, today time.Time) (int, error) {
	customersRepo := repository.NewCustomersRepository(dbx)
	paymentsRepo := repository.NewPaymentsRepository(dbx)

	existing, err := customersRepo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list customers: %w", err)
	}
	if len(existing) > 0 {
		logger.Log.Info("seed skipped: customers already present", zap.Int("customers", len(existing)))
		return 0, nil
	}

	tx, err := dbx.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	demo := demoCustomers(today)
	for _, s := range demo {
		if err := customersRepo.Insert(ctx, tx, s.c); err != nil {
			return 0, fmt.Errorf("insert customer %q: %w", s.c.FullName, err)
		}
		for _, p := range s.payments {
			rec := model.PaymentRecord{
				ID:         util.NewULID(),
				CustomerID: s.c.ID,
				Date:       p.date,
				Amount:     s.c.MonthlyPrice,
				MonthLabel: p.label,
			}
			if err := paymentsRepo.Insert(ctx, tx, rec); err != nil {
				return 0, fmt.Errorf("insert payment for %q: %w", s.c.FullName, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit customers: %w", err)
	}
	return len(demo), nil
}

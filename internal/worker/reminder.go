package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jmehdipour/wifi-billing/internal/billing"
	"github.com/jmehdipour/wifi-billing/internal/logger"
	"github.com/jmehdipour/wifi-billing/internal/metrics"
	"github.com/jmehdipour/wifi-billing/internal/model"
	"github.com/jmehdipour/wifi-billing/internal/repository"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Notifier delivers one reminder. *dispatcher.Dispatcher implements it.
type Notifier interface {
	Send(ctx context.Context, r model.Reminder) error
}

// Reminders scans the customer base on a cron schedule and notifies the
// customers that are due soon or overdue.
type Reminders struct {
	// Dependencies
	Customers repository.CustomersRepository
	Notifier  Notifier
	Clock     billing.Clock

	// Behavior
	Schedule string         // cron spec, evaluated in Location
	Location *time.Location // billing timezone
	Workers  int            // concurrent deliveries
}

func NewReminders(customers repository.CustomersRepository, n Notifier, clock billing.Clock, schedule string, loc *time.Location) *Reminders {
	if loc == nil {
		loc = time.UTC
	}
	return &Reminders{
		Customers: customers,
		Notifier:  n,
		Clock:     clock,
		Schedule:  schedule,
		Location:  loc,
		Workers:   8,
	}
}

// reminderFor builds the notification for c, or ok=false when c needs none today.
func reminderFor(c model.Customer, today time.Time) (model.Reminder, bool) {
	due := c.BillingDate.Format("2006-01-02")
	amount := c.MonthlyPrice.StringFixed(2)

	switch billing.DeriveStatus(c.BillingDate, c.CurrentPaymentStatus, today) {
	case billing.DisplayDueSoon:
		days := billing.DaysBetween(today, c.BillingDate)
		when := fmt.Sprintf("in %d days", days)
		switch days {
		case 0:
			when = "today"
		case 1:
			when = "tomorrow"
		}
		return model.Reminder{
			CustomerID: c.ID,
			Phone:      c.PhoneNumber,
			Kind:       model.ReminderDueSoon,
			Text:       fmt.Sprintf("Hi %s, your internet service payment of %s is due %s (%s).", c.FullName, amount, when, due),
		}, true
	case billing.DisplayOverdue:
		return model.Reminder{
			CustomerID: c.ID,
			Phone:      c.PhoneNumber,
			Kind:       model.ReminderOverdue,
			Text:       fmt.Sprintf("Hi %s, your internet service payment of %s was due on %s and is overdue.", c.FullName, amount, due),
		}, true
	default:
		return model.Reminder{}, false
	}
}

// RunOnce performs one scan and returns how many reminders were delivered and
// how many failed.
func (w *Reminders) RunOnce(ctx context.Context) (sent, failed int, err error) {
	customers, err := w.Customers.List(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("list customers: %w", err)
	}

	today := billing.StartOfDay(w.Clock.Now().In(w.Location))

	jobs := make(chan model.Reminder)
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	workers := w.Workers
	if workers <= 0 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := range jobs {
				derr := w.Notifier.Send(ctx, r)

				mu.Lock()
				if derr == nil {
					sent++
				} else {
					failed++
				}
				mu.Unlock()

				if derr == nil {
					metrics.RemindersTotal.WithLabelValues("sent", r.Kind.String()).Inc()
					continue
				}
				metrics.RemindersTotal.WithLabelValues("failed", r.Kind.String()).Inc()
				logger.Log.Warn("reminder: delivery failed",
					zap.String("customer_id", r.CustomerID),
					zap.String("kind", r.Kind.String()),
					zap.Error(derr),
				)
			}
		}()
	}

	for _, c := range customers {
		r, ok := reminderFor(c, today)
		if !ok {
			continue
		}
		select {
		case jobs <- r:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(jobs)
	wg.Wait()

	logger.Log.Info("reminder: scan finished",
		zap.Time("today", today),
		zap.Int("customers", len(customers)),
		zap.Int("sent", sent),
		zap.Int("failed", failed),
	)
	return sent, failed, ctx.Err()
}

// Run schedules RunOnce and blocks until ctx is cancelled. A running scan is
// allowed to finish.
func (w *Reminders) Run(ctx context.Context) error {
	c := cron.New(
		cron.WithLocation(w.Location),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	if _, err := c.AddFunc(w.Schedule, func() {
		if _, _, err := w.RunOnce(ctx); err != nil && ctx.Err() == nil {
			logger.Log.Error("reminder: scan failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("schedule %q: %w", w.Schedule, err)
	}

	c.Start()
	logger.Log.Info("reminder: scheduled", zap.String("schedule", w.Schedule), zap.String("timezone", w.Location.String()))

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

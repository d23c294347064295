package customer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmehdipour/wifi-billing/internal/billing"
	"github.com/jmehdipour/wifi-billing/internal/cache"
	"github.com/jmehdipour/wifi-billing/internal/logger"
	"github.com/jmehdipour/wifi-billing/internal/metrics"
	"github.com/jmehdipour/wifi-billing/internal/model"
	"github.com/jmehdipour/wifi-billing/internal/repository"
	"github.com/jmehdipour/wifi-billing/internal/util"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

var (
	ErrInvalidCustomer = errors.New("invalid customer")
	ErrUnknownProfile  = errors.New("unknown profile")
	ErrInvalidProfile  = errors.New("invalid profile name")
	ErrProfileExists   = errors.New("profile already exists")
	ErrProfileNotFound = errors.New("profile not found")
)

var reservedProfiles = map[string]struct{}{billing.ProfileAll: {}, billing.ProfileNone: {}}

// View is a customer as presented to callers: the stored record plus the
// display status derived for today.
type View struct {
	model.Customer
	Status billing.DisplayStatus `json:"status"`
}

// Service owns the customer collection: CRUD, the payment ledger and the dashboard.
type Service struct {
	db        *sqlx.DB
	customers repository.CustomersRepository
	payments  repository.PaymentsRepository
	profiles  repository.ProfilesRepository
	outbox    repository.OutboxRepository
	dashboard cache.Dashboard
	clock     billing.Clock
}

// New constructs the customer service.
func New(
	db *sqlx.DB,
	customersRepo repository.CustomersRepository,
	paymentsRepo repository.PaymentsRepository,
	profilesRepo repository.ProfilesRepository,
	outboxRepo repository.OutboxRepository,
	dashboard cache.Dashboard,
	clock billing.Clock,
) *Service {
	if dashboard == nil {
		dashboard = cache.Nop{}
	}
	return &Service{
		db:        db,
		customers: customersRepo,
		payments:  paymentsRepo,
		profiles:  profilesRepo,
		outbox:    outboxRepo,
		dashboard: dashboard,
		clock:     clock,
	}
}

func (s *Service) today() time.Time {
	return billing.StartOfDay(s.clock.Now())
}

func (s *Service) view(c model.Customer, today time.Time) View {
	return View{Customer: c, Status: billing.DeriveStatus(c.BillingDate, c.CurrentPaymentStatus, today)}
}

// Create registers a customer. One created as already paid starts on the next cycle.
func (s *Service) Create(ctx context.Context, in Input) (View, error) {
	in = in.normalize()
	if err := in.validate(); err != nil {
		return View{}, err
	}

	c := in.apply(model.Customer{ID: util.NewUUID(), PaymentHistory: []model.PaymentRecord{}})
	c.BillingDate = billing.OpeningBillingDate(c.CurrentPaymentStatus, c.BillingDate)

	if err := s.customers.Insert(ctx, nil, c); err != nil {
		if errors.Is(err, repository.ErrUnknownReference) {
			return View{}, ErrUnknownProfile
		}
		return View{}, fmt.Errorf("insert customer: %w", err)
	}
	s.dashboard.Invalidate(ctx)

	logger.Log.Info("customer created", zap.String("customer_id", c.ID), zap.Time("billing_date", c.BillingDate))
	return s.view(c, s.today()), nil
}

// Update overwrites the editable fields of an existing customer. The payment
// history is kept.
func (s *Service) Update(ctx context.Context, id string, in Input) (View, error) {
	in = in.normalize()
	if err := in.validate(); err != nil {
		return View{}, err
	}

	cur, err := s.customers.Get(ctx, id)
	if err != nil {
		return View{}, fmt.Errorf("get customer: %w", err)
	}
	if cur == nil {
		return View{}, billing.ErrCustomerNotFound
	}

	c := in.apply(*cur)
	found, err := s.customers.Update(ctx, nil, c)
	if err != nil {
		if errors.Is(err, repository.ErrUnknownReference) {
			return View{}, ErrUnknownProfile
		}
		return View{}, fmt.Errorf("update customer: %w", err)
	}
	if !found {
		return View{}, billing.ErrCustomerNotFound
	}
	s.dashboard.Invalidate(ctx)

	return s.view(c, s.today()), nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	found, err := s.customers.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	if !found {
		return billing.ErrCustomerNotFound
	}
	s.dashboard.Invalidate(ctx)

	logger.Log.Info("customer deleted", zap.String("customer_id", id))
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (View, error) {
	c, err := s.customers.Get(ctx, id)
	if err != nil {
		return View{}, fmt.Errorf("get customer: %w", err)
	}
	if c == nil {
		return View{}, billing.ErrCustomerNotFound
	}
	return s.view(*c, s.today()), nil
}

// List returns the customers matching f, newest first.
func (s *Service) List(ctx context.Context, f billing.Filter) ([]View, error) {
	all, err := s.customers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}

	today := s.today()
	matched := billing.FilterCustomers(all, f, today)
	out := make([]View, 0, len(matched))
	for _, c := range matched {
		out = append(out, s.view(c, today))
	}
	return out, nil
}

// Payments returns a customer's payment history in entry order.
func (s *Service) Payments(ctx context.Context, customerID string) ([]model.PaymentRecord, error) {
	hist, err := s.payments.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	if len(hist) == 0 {
		c, err := s.customers.Get(ctx, customerID)
		if err != nil {
			return nil, fmt.Errorf("get customer: %w", err)
		}
		if c == nil {
			return nil, billing.ErrCustomerNotFound
		}
	}
	return hist, nil
}

// RecordPayment appends a payment, marks the customer paid and advances the
// billing date by one cycle. Row lock, payment insert, customer update and
// outbox event share one transaction.
func (s *Service) RecordPayment(ctx context.Context, customerID string, in billing.PaymentInput) (View, model.PaymentRecord, error) {
	if err := in.Validate(); err != nil {
		return View{}, model.PaymentRecord{}, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return View{}, model.PaymentRecord{}, err
	}
	defer func() { _ = tx.Rollback() }()

	cur, err := s.customers.GetForUpdate(ctx, tx, customerID)
	if err != nil {
		return View{}, model.PaymentRecord{}, fmt.Errorf("lock customer: %w", err)
	}
	if cur == nil {
		return View{}, model.PaymentRecord{}, billing.ErrCustomerNotFound
	}

	updated, rec, err := billing.RecordPayment(*cur, in, util.NewULID())
	if err != nil {
		return View{}, model.PaymentRecord{}, err
	}

	if err := s.payments.Insert(ctx, tx, rec); err != nil {
		return View{}, model.PaymentRecord{}, fmt.Errorf("insert payment: %w", err)
	}
	if err := s.customers.UpdateBilling(ctx, tx, updated.ID, updated.BillingDate, updated.CurrentPaymentStatus); err != nil {
		return View{}, model.PaymentRecord{}, fmt.Errorf("advance billing date: %w", err)
	}

	env := model.Envelope{
		ID:         util.NewULID(),
		Type:       model.EventPaymentRecorded,
		CustomerID: updated.ID,
		OccurredAt: s.clock.Now(),
		Payment:    &rec,
	}
	if err := s.outbox.InsertEnvelope(ctx, tx, "customer", updated.ID, model.EventsTopic, env); err != nil {
		return View{}, model.PaymentRecord{}, fmt.Errorf("insert outbox: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return View{}, model.PaymentRecord{}, err
	}
	s.dashboard.Invalidate(ctx)
	metrics.PaymentsTotal.WithLabelValues("recorded").Inc()

	logger.Log.Info("payment recorded",
		zap.String("customer_id", updated.ID),
		zap.String("payment_id", rec.ID),
		zap.String("amount", rec.Amount.String()),
		zap.Time("next_billing_date", updated.BillingDate),
	)
	return s.view(updated, s.today()), rec, nil
}

// DeletePayment removes one history entry. The billing date and stored status
// stay as they are.
func (s *Service) DeletePayment(ctx context.Context, customerID, paymentID string) (View, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return View{}, err
	}
	defer func() { _ = tx.Rollback() }()

	cur, err := s.customers.GetForUpdate(ctx, tx, customerID)
	if err != nil {
		return View{}, fmt.Errorf("lock customer: %w", err)
	}
	if cur == nil {
		return View{}, billing.ErrCustomerNotFound
	}

	var removed model.PaymentRecord
	for _, p := range cur.PaymentHistory {
		if p.ID == paymentID {
			removed = p
			break
		}
	}

	updated, err := billing.DeletePayment(*cur, paymentID)
	if err != nil {
		return View{}, err
	}

	found, err := s.payments.Delete(ctx, tx, customerID, paymentID)
	if err != nil {
		return View{}, fmt.Errorf("delete payment: %w", err)
	}
	if !found {
		return View{}, billing.ErrPaymentNotFound
	}

	env := model.Envelope{
		ID:         util.NewULID(),
		Type:       model.EventPaymentDeleted,
		CustomerID: customerID,
		OccurredAt: s.clock.Now(),
		Payment:    &removed,
	}
	if err := s.outbox.InsertEnvelope(ctx, tx, "customer", customerID, model.EventsTopic, env); err != nil {
		return View{}, fmt.Errorf("insert outbox: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return View{}, err
	}
	metrics.PaymentsTotal.WithLabelValues("deleted").Inc()

	logger.Log.Info("payment deleted", zap.String("customer_id", customerID), zap.String("payment_id", paymentID))
	return s.view(updated, s.today()), nil
}

// Dashboard summarizes the whole customer base for today, served from cache
// when possible.
func (s *Service) Dashboard(ctx context.Context) (billing.Summary, error) {
	today := s.today()
	if sum, ok := s.dashboard.Get(ctx, today); ok {
		return sum, nil
	}

	all, err := s.customers.List(ctx)
	if err != nil {
		return billing.Summary{}, fmt.Errorf("list customers: %w", err)
	}
	sum := billing.Summarize(all, today)

	for st, n := range sum.ByStatus {
		metrics.CustomersByStatus.WithLabelValues(st.String()).Set(float64(n))
	}
	s.dashboard.Set(ctx, today, sum)
	return sum, nil
}

func (s *Service) ListProfiles(ctx context.Context) ([]model.Profile, error) {
	return s.profiles.List(ctx)
}

// AddProfile registers a trimmed, unique, non-reserved profile name.
func (s *Service) AddProfile(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 64 {
		return "", ErrInvalidProfile
	}
	if _, ok := reservedProfiles[strings.ToLower(name)]; ok {
		return "", fmt.Errorf("%q is reserved: %w", name, ErrInvalidProfile)
	}

	if err := s.profiles.Insert(ctx, name); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return "", ErrProfileExists
		}
		return "", fmt.Errorf("insert profile: %w", err)
	}
	return name, nil
}

// DeleteProfile removes a profile; customers tagged with it keep no profile.
func (s *Service) DeleteProfile(ctx context.Context, name string) error {
	found, err := s.profiles.Delete(ctx, strings.TrimSpace(name))
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	if !found {
		return ErrProfileNotFound
	}
	return nil
}

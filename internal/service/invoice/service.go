package invoice

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmehdipour/wifi-billing/internal/billing"
	"github.com/jmehdipour/wifi-billing/internal/logger"
	"github.com/jmehdipour/wifi-billing/internal/metrics"
	"github.com/jmehdipour/wifi-billing/internal/model"
	"github.com/jmehdipour/wifi-billing/internal/repository"
	"github.com/jmehdipour/wifi-billing/internal/util"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

var ErrInvoiceNotFound = errors.New("invoice not found")

// Service previews and archives invoice snapshots.
type Service struct {
	db        *sqlx.DB
	customers repository.CustomersRepository
	invoices  repository.InvoicesRepository
	outbox    repository.OutboxRepository
	clock     billing.Clock
}

func New(
	db *sqlx.DB,
	customersRepo repository.CustomersRepository,
	invoicesRepo repository.InvoicesRepository,
	outboxRepo repository.OutboxRepository,
	clock billing.Clock,
) *Service {
	return &Service{
		db:        db,
		customers: customersRepo,
		invoices:  invoicesRepo,
		outbox:    outboxRepo,
		clock:     clock,
	}
}

// Preview builds the invoice for the customer's current cycle without storing it.
func (s *Service) Preview(ctx context.Context, customerID string) (model.SavedInvoice, error) {
	c, err := s.customers.Get(ctx, customerID)
	if err != nil {
		return model.SavedInvoice{}, fmt.Errorf("get customer: %w", err)
	}
	if c == nil {
		return model.SavedInvoice{}, billing.ErrCustomerNotFound
	}
	return billing.NewSavedInvoice(*c, billing.StartOfDay(s.clock.Now()), util.NewUUID())
}

// Save snapshots the current invoice. Later edits to the customer do not touch
// the stored copy.
func (s *Service) Save(ctx context.Context, customerID string) (model.SavedInvoice, error) {
	inv, err := s.Preview(ctx, customerID)
	if err != nil {
		return model.SavedInvoice{}, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.SavedInvoice{}, err
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.invoices.Insert(ctx, tx, inv); err != nil {
		return model.SavedInvoice{}, fmt.Errorf("insert invoice: %w", err)
	}
	env := model.Envelope{
		ID:         util.NewULID(),
		Type:       model.EventInvoiceSaved,
		CustomerID: inv.CustomerID,
		OccurredAt: s.clock.Now(),
		Invoice:    &inv,
	}
	if err := s.outbox.InsertEnvelope(ctx, tx, "invoice", inv.ID, model.EventsTopic, env); err != nil {
		return model.SavedInvoice{}, fmt.Errorf("insert outbox: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return model.SavedInvoice{}, err
	}
	metrics.InvoicesTotal.WithLabelValues("saved").Inc()

	logger.Log.Info("invoice saved",
		zap.String("invoice_id", inv.ID),
		zap.String("number", inv.Number),
		zap.String("customer_id", inv.CustomerID),
	)
	return inv, nil
}

// List returns saved invoices, optionally narrowed to one customer.
func (s *Service) List(ctx context.Context, customerID string) ([]model.SavedInvoice, error) {
	return s.invoices.List(ctx, customerID)
}

func (s *Service) Get(ctx context.Context, id string) (model.SavedInvoice, error) {
	inv, err := s.invoices.Get(ctx, id)
	if err != nil {
		return model.SavedInvoice{}, fmt.Errorf("get invoice: %w", err)
	}
	if inv == nil {
		return model.SavedInvoice{}, ErrInvoiceNotFound
	}
	return *inv, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	inv, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	found, err := s.invoices.Delete(ctx, tx, id)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	if !found {
		return ErrInvoiceNotFound
	}
	env := model.Envelope{
		ID:         util.NewULID(),
		Type:       model.EventInvoiceDeleted,
		CustomerID: inv.CustomerID,
		OccurredAt: s.clock.Now(),
		Invoice:    &inv,
	}
	if err := s.outbox.InsertEnvelope(ctx, tx, "invoice", id, model.EventsTopic, env); err != nil {
		return fmt.Errorf("insert outbox: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	metrics.InvoicesTotal.WithLabelValues("deleted").Inc()
	return nil
}

package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jmehdipour/wifi-billing/internal/billing"
	"github.com/jmehdipour/wifi-billing/internal/logger"
	"github.com/jmehdipour/wifi-billing/internal/model"
	"github.com/jmehdipour/wifi-billing/internal/repository"
	"github.com/jmehdipour/wifi-billing/internal/service/customer"
	"github.com/jmehdipour/wifi-billing/internal/service/invoice"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CustomerService is what the handlers need from customer.Service.
type CustomerService interface {
	Create(ctx context.Context, in customer.Input) (customer.View, error)
	Update(ctx context.Context, id string, in customer.Input) (customer.View, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (customer.View, error)
	List(ctx context.Context, f billing.Filter) ([]customer.View, error)
	Payments(ctx context.Context, customerID string) ([]model.PaymentRecord, error)
	RecordPayment(ctx context.Context, customerID string, in billing.PaymentInput) (customer.View, model.PaymentRecord, error)
	DeletePayment(ctx context.Context, customerID, paymentID string) (customer.View, error)
	Dashboard(ctx context.Context) (billing.Summary, error)
	ListProfiles(ctx context.Context) ([]model.Profile, error)
	AddProfile(ctx context.Context, name string) (string, error)
	DeleteProfile(ctx context.Context, name string) error
}

// InvoiceService is what the handlers need from invoice.Service.
type InvoiceService interface {
	Preview(ctx context.Context, customerID string) (model.SavedInvoice, error)
	Save(ctx context.Context, customerID string) (model.SavedInvoice, error)
	List(ctx context.Context, customerID string) ([]model.SavedInvoice, error)
	Get(ctx context.Context, id string) (model.SavedInvoice, error)
	Delete(ctx context.Context, id string) error
}

var (
	_ CustomerService = (*customer.Service)(nil)
	_ InvoiceService  = (*invoice.Service)(nil)
)

// API holds the handler dependencies. Clock reads "now" in the billing
// timezone; wire dates are civil and parsed in UTC.
type API struct {
	Customers CustomerService
	Invoices  InvoiceService
	Revenue   repository.CHPaymentsRepository
	Clock     billing.Clock
}

func (a *API) register(v1 *echo.Group) {
	v1.GET("/customers", a.listCustomers)
	v1.POST("/customers", a.createCustomer)
	v1.GET("/customers/:id", a.getCustomer)
	v1.PUT("/customers/:id", a.updateCustomer)
	v1.DELETE("/customers/:id", a.deleteCustomer)

	v1.GET("/customers/:id/payments", a.listPayments)
	v1.POST("/customers/:id/payments", a.recordPayment)
	v1.DELETE("/customers/:id/payments/:paymentID", a.deletePayment)

	v1.GET("/customers/:id/invoice", a.previewInvoice)
	v1.POST("/customers/:id/invoice", a.saveInvoice)
	v1.GET("/invoices", a.listInvoices)
	v1.GET("/invoices/:id", a.getInvoice)
	v1.DELETE("/invoices/:id", a.deleteInvoice)

	v1.GET("/profiles", a.listProfiles)
	v1.POST("/profiles", a.addProfile)
	v1.DELETE("/profiles/:name", a.deleteProfile)

	v1.GET("/dashboard", a.dashboard)
	v1.GET("/reports/revenue", a.revenueReport)
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": msg})
}

// writeError maps domain errors onto status codes. Anything unknown is logged
// and reported as 500 without details.
func writeError(c echo.Context, err error) error {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		return badRequest(c, verrs.Error())
	case errors.Is(err, billing.ErrInvalidAmount),
		errors.Is(err, billing.ErrInvalidDate),
		errors.Is(err, billing.ErrInvalidStatus),
		errors.Is(err, customer.ErrInvalidCustomer),
		errors.Is(err, customer.ErrInvalidProfile),
		errors.Is(err, customer.ErrUnknownProfile):
		return badRequest(c, err.Error())
	case errors.Is(err, billing.ErrCustomerNotFound),
		errors.Is(err, billing.ErrPaymentNotFound),
		errors.Is(err, invoice.ErrInvoiceNotFound),
		errors.Is(err, customer.ErrProfileNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, customer.ErrProfileExists):
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	}

	logger.Log.Error("request failed",
		zap.String("method", c.Request().Method),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (a *API) listPayments(c echo.Context) error {
	id := c.Param("id")
	hist, err := a.Customers.Payments(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"customer_id": id,
		"count":       len(hist),
		"results":     hist,
	})
}

// recordPayment appends a payment and advances the billing cycle.
func (a *API) recordPayment(c echo.Context) error {
	var req paymentReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "bad request")
	}
	if err := c.Validate(&req); err != nil {
		return writeError(c, err)
	}
	in, err := req.toInput()
	if err != nil {
		return writeError(c, err)
	}

	v, rec, err := a.Customers.RecordPayment(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"payment":  rec,
		"customer": v,
	})
}

func (a *API) deletePayment(c echo.Context) error {
	v, err := a.Customers.DeletePayment(c.Request().Context(), c.Param("id"), c.Param("paymentID"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

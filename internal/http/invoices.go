package http

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// previewInvoice computes the current cycle's invoice without storing it.
func (a *API) previewInvoice(c echo.Context) error {
	inv, err := a.Invoices.Preview(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, inv)
}

func (a *API) saveInvoice(c echo.Context) error {
	inv, err := a.Invoices.Save(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, inv)
}

func (a *API) listInvoices(c echo.Context) error {
	list, err := a.Invoices.List(c.Request().Context(), strings.TrimSpace(c.QueryParam("customer_id")))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"count":   len(list),
		"results": list,
	})
}

func (a *API) getInvoice(c echo.Context) error {
	inv, err := a.Invoices.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, inv)
}

func (a *API) deleteInvoice(c echo.Context) error {
	if err := a.Invoices.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

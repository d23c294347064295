package http

import (
	"net/http"
	"strings"

	"github.com/jmehdipour/wifi-billing/internal/billing"
	"github.com/labstack/echo/v4"
)

func (a *API) listCustomers(c echo.Context) error {
	f := billing.Filter{
		Search:  strings.TrimSpace(c.QueryParam("q")),
		Profile: strings.TrimSpace(c.QueryParam("profile")),
	}
	if raw := strings.TrimSpace(c.QueryParam("status")); raw != "" && raw != "all" {
		st := billing.DisplayStatus(raw)
		if !st.Valid() {
			return badRequest(c, "invalid status")
		}
		f.Status = st
	}

	list, err := a.Customers.List(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"count":   len(list),
		"results": list,
	})
}

func (a *API) getCustomer(c echo.Context) error {
	v, err := a.Customers.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

func (a *API) createCustomer(c echo.Context) error {
	var req customerReq
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

	v, err := a.Customers.Create(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, v)
}

func (a *API) updateCustomer(c echo.Context) error {
	var req customerReq
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

	v, err := a.Customers.Update(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

func (a *API) deleteCustomer(c echo.Context) error {
	if err := a.Customers.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

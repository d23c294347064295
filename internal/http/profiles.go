package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (a *API) listProfiles(c echo.Context) error {
	list, err := a.Customers.ListProfiles(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"results": list})
}

func (a *API) addProfile(c echo.Context) error {
	var req profileReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "bad request")
	}
	if err := c.Validate(&req); err != nil {
		return writeError(c, err)
	}

	name, err := a.Customers.AddProfile(c.Request().Context(), req.Name)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]string{"name": name})
}

func (a *API) deleteProfile(c echo.Context) error {
	if err := a.Customers.DeleteProfile(c.Request().Context(), c.Param("name")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

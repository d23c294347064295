package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/jmehdipour/wifi-billing/internal/billing"
	echo "github.com/labstack/echo/v4"
)

const monthLayout = "2006-01"

func (a *API) dashboard(c echo.Context) error {
	sum, err := a.Customers.Dashboard(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, sum)
}

// revenueReport returns net collected revenue per month from the ClickHouse
// projection. from/to are YYYY-MM and default to the last 12 months.
func (a *API) revenueReport(c echo.Context) error {
	if a.Revenue == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "reports unavailable"})
	}

	now := a.Clock.Now()
	thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	from := billing.AddMonths(thisMonth, -11)
	to := thisMonth

	if v := strings.TrimSpace(c.QueryParam("from")); v != "" {
		t, err := time.ParseInLocation(monthLayout, v, time.UTC)
		if err != nil {
			return badRequest(c, "invalid from")
		}
		from = t
	}
	if v := strings.TrimSpace(c.QueryParam("to")); v != "" {
		t, err := time.ParseInLocation(monthLayout, v, time.UTC)
		if err != nil {
			return badRequest(c, "invalid to")
		}
		to = t
	}
	if to.Before(from) {
		return badRequest(c, "to before from")
	}

	// inclusive upper bound: last instant of the "to" month
	end := billing.AddMonths(to, 1).Add(-time.Nanosecond)

	rows, err := a.Revenue.MonthlyRevenue(c.Request().Context(), from, end)
	if err != nil {
		c.Logger().Errorf("clickhouse revenue failed: %v", err)

		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "query failed"})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"from":    from.Format(monthLayout),
		"to":      to.Format(monthLayout),
		"count":   len(rows),
		"results": rows,
	})
}

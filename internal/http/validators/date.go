package validators

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// ParseDay reads a YYYY-MM-DD query value in local time; empty means today.
func ParseDay(raw string, now time.Time) (time.Time, error) {
	if raw == "" {
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()), nil
	}

	day, err := time.ParseInLocation("2006-01-02", raw, now.Location())
	if err != nil {
		return time.Time{}, echo.NewHTTPError(http.StatusBadRequest, "date must use the YYYY-MM-DD format")
	}
	return day, nil
}

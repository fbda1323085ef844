package validators

import (
	"net/http"

	"github.com/labstack/echo/v4"

	model "github.com/Oumaima1mal/task-pilot-front/pkg/models"
)

func ValidateCreateTaskRequest(r *model.CreateTaskInput) error {
	if err := r.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if r.Reminder != nil && r.DueDate == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "a reminder requires a due date")
	}
	return nil
}

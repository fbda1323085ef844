package validators

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Oumaima1mal/task-pilot-front/pkg/constants"
	model "github.com/Oumaima1mal/task-pilot-front/pkg/models"
)

func ValidateTaskPatch(p *model.TaskPatch) error {
	if p.Title == nil && p.Description == nil && p.Priority == nil && p.Category == nil &&
		p.Completed == nil && p.DueDate == nil && p.Reminder == nil && p.GroupID == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "no fields to update")
	}
	if err := p.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

type MemberStatusRequest struct {
	Status constants.MemberStatus `json:"status"`
}

func ValidateMemberStatusRequest(r *MemberStatusRequest) error {
	if r.Status == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "status is required")
	}
	if !r.Status.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "status must be one of pending, in-progress, completed, cancelled")
	}
	return nil
}

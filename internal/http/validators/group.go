package validators

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	model "github.com/Oumaima1mal/task-pilot-front/pkg/models"
)

func ValidateCreateGroupRequest(r *model.CreateGroupInput) error {
	if err := r.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func ValidateGroupPatch(p *model.GroupPatch) error {
	if p.Name == nil && p.Description == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "no fields to update")
	}
	if err := p.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

type AddMemberRequest struct {
	UserID string `json:"userId"`
}

func ValidateAddMemberRequest(r *AddMemberRequest) error {
	if strings.TrimSpace(r.UserID) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "userId is required")
	}
	return nil
}

package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Oumaima1mal/task-pilot-front/internal/exceptions"
	"github.com/Oumaima1mal/task-pilot-front/internal/http/validators"
	model "github.com/Oumaima1mal/task-pilot-front/pkg/models"
)

func (h *Handler) ListGroups(c echo.Context) error {
	groups := h.groups.Groups()
	return c.JSON(http.StatusOK, echo.Map{
		"count":  len(groups),
		"groups": groups,
		"error":  h.groups.Err(),
	})
}

func (h *Handler) GetGroup(c echo.Context) error {
	group, ok := h.groups.GroupByID(c.Param("id"))
	if !ok {
		return httpError(exceptions.ErrGroupNotFound)
	}
	return c.JSON(http.StatusOK, group)
}

func (h *Handler) CreateGroup(c echo.Context) error {
	var req model.CreateGroupInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, exceptions.ErrInvalidJSON.Message)
	}
	if err := validators.ValidateCreateGroupRequest(&req); err != nil {
		return err
	}

	group, err := h.groups.AddGroup(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, group)
}

func (h *Handler) UpdateGroup(c echo.Context) error {
	var req model.GroupPatch
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, exceptions.ErrInvalidJSON.Message)
	}
	if err := validators.ValidateGroupPatch(&req); err != nil {
		return err
	}

	group, err := h.groups.UpdateGroup(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, group)
}

func (h *Handler) DeleteGroup(c echo.Context) error {
	if err := h.groups.DeleteGroup(c.Request().Context(), c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GroupMembers serves the cache and loads it on first access.
func (h *Handler) GroupMembers(c echo.Context) error {
	id := c.Param("id")
	if members, ok := h.groups.Members(id); ok && c.QueryParam("reload") == "" {
		return c.JSON(http.StatusOK, members)
	}

	members, err := h.groups.FetchGroupMembers(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, members)
}

func (h *Handler) AddGroupMember(c echo.Context) error {
	var req validators.AddMemberRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, exceptions.ErrInvalidJSON.Message)
	}
	if err := validators.ValidateAddMemberRequest(&req); err != nil {
		return err
	}

	id := c.Param("id")
	if err := h.groups.AddUserToGroup(c.Request().Context(), id, req.UserID); err != nil {
		return httpError(err)
	}

	group, _ := h.groups.GroupByID(id)
	return c.JSON(http.StatusOK, group)
}

func (h *Handler) RemoveGroupMember(c echo.Context) error {
	if err := h.groups.RemoveUserFromGroup(c.Request().Context(), c.Param("id"), c.Param("userId")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) GroupTasks(c echo.Context) error {
	tasks, err := h.tasks.FetchGroupTasks(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"count": len(tasks),
		"tasks": tasks,
	})
}

func (h *Handler) ListUsers(c echo.Context) error {
	return c.JSON(http.StatusOK, h.groups.Users())
}

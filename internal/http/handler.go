package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Oumaima1mal/task-pilot-front/internal/exceptions"
	"github.com/Oumaima1mal/task-pilot-front/internal/http/validators"
	"github.com/Oumaima1mal/task-pilot-front/internal/services"
	"github.com/Oumaima1mal/task-pilot-front/pkg/constants"
	model "github.com/Oumaima1mal/task-pilot-front/pkg/models"
)

type Handler struct {
	tasks         *services.TaskService
	groups        *services.GroupService
	notifications *services.NotificationService
	now           func() time.Time
}

func NewHandler(
	tasks *services.TaskService,
	groups *services.GroupService,
	notifications *services.NotificationService,
) *Handler {
	return &Handler{
		tasks:         tasks,
		groups:        groups,
		notifications: notifications,
		now:           time.Now,
	}
}

// httpError maps a manager failure onto the response status.
func httpError(err error) error {
	switch exceptions.KindOf(err) {
	case exceptions.Validation:
		return echo.NewHTTPError(exceptions.StatusCode(err), err.Error())
	case exceptions.Unauthenticated:
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	case exceptions.NotFoundEmpty:
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
}

func (h *Handler) ListTasks(c echo.Context) error {
	var tasks []model.Task

	switch {
	case c.QueryParam("filter") == "overdue":
		tasks = h.tasks.OverdueTasks()
	case c.QueryParam("filter") == "today":
		tasks = h.tasks.TodayTasks()
	case c.QueryParam("category") != "":
		tasks = h.tasks.TasksByCategory(constants.Category(c.QueryParam("category")))
	case c.QueryParam("priority") != "":
		tasks = h.tasks.TasksByPriority(constants.Priority(c.QueryParam("priority")))
	case c.QueryParam("group") != "":
		tasks = h.tasks.GroupTasks(c.QueryParam("group"))
	default:
		tasks = h.tasks.Tasks()
	}

	return c.JSON(http.StatusOK, echo.Map{
		"count": len(tasks),
		"tasks": tasks,
		"error": h.tasks.Err(),
	})
}

func (h *Handler) GetTask(c echo.Context) error {
	task, ok := h.tasks.TaskByID(c.Param("id"))
	if !ok {
		return httpError(exceptions.ErrTaskNotFound)
	}
	return c.JSON(http.StatusOK, task)
}

func (h *Handler) CreateTask(c echo.Context) error {
	var req model.CreateTaskInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, exceptions.ErrInvalidJSON.Message)
	}
	if err := validators.ValidateCreateTaskRequest(&req); err != nil {
		return err
	}

	task, err := h.tasks.AddTask(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, task)
}

func (h *Handler) UpdateTask(c echo.Context) error {
	var req model.TaskPatch
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, exceptions.ErrInvalidJSON.Message)
	}
	if err := validators.ValidateTaskPatch(&req); err != nil {
		return err
	}

	task, err := h.tasks.UpdateTask(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, task)
}

func (h *Handler) DeleteTask(c echo.Context) error {
	if err := h.tasks.DeleteTask(c.Request().Context(), c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ToggleTask(c echo.Context) error {
	id := c.Param("id")
	if _, ok := h.tasks.TaskByID(id); !ok {
		return httpError(exceptions.ErrTaskNotFound)
	}

	if err := h.tasks.ToggleTaskCompletion(c.Request().Context(), id); err != nil {
		return httpError(err)
	}

	task, _ := h.tasks.TaskByID(id)
	return c.JSON(http.StatusOK, task)
}

func (h *Handler) UpdateMemberStatus(c echo.Context) error {
	var req validators.MemberStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, exceptions.ErrInvalidJSON.Message)
	}
	if err := validators.ValidateMemberStatusRequest(&req); err != nil {
		return err
	}

	id := c.Param("id")
	if err := h.tasks.UpdateMemberTaskStatus(id, c.Param("userId"), req.Status); err != nil {
		return httpError(err)
	}

	task, _ := h.tasks.TaskByID(id)
	return c.JSON(http.StatusOK, task)
}

func (h *Handler) MemberStatuses(c echo.Context) error {
	states, err := h.tasks.FetchMemberStatuses(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, states)
}

func (h *Handler) Calendar(c echo.Context) error {
	day, err := validators.ParseDay(c.QueryParam("date"), h.now())
	if err != nil {
		return err
	}

	tasks, err := h.tasks.ScheduledTasks(c.Request().Context(), day)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"date":  day.Format("2006-01-02"),
		"count": len(tasks),
		"tasks": tasks,
	})
}

func (h *Handler) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	h.tasks.Refresh(ctx)
	h.groups.Refresh(ctx)
	return h.Status(c)
}

func (h *Handler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"tasks": echo.Map{
			"phase": h.tasks.Phase().String(),
			"error": h.tasks.Err(),
		},
		"groups": echo.Map{
			"phase": h.groups.Phase().String(),
			"error": h.groups.Err(),
		},
		"notifications": echo.Map{
			"connection": h.notifications.ConnectionState().String(),
			"unread":     h.notifications.UnreadCount(),
		},
	})
}

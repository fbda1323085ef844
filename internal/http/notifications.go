package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Oumaima1mal/task-pilot-front/internal/services"
)

func (h *Handler) ListNotifications(c echo.Context) error {
	unread := h.notifications.UnreadCount()
	return c.JSON(http.StatusOK, echo.Map{
		"notifications": h.notifications.Notifications(),
		"unread":        unread,
		"title":         services.BadgeTitle(unread),
	})
}

func (h *Handler) Badge(c echo.Context) error {
	unread := h.notifications.UnreadCount()
	return c.JSON(http.StatusOK, echo.Map{
		"unread": unread,
		"title":  services.BadgeTitle(unread),
	})
}

func (h *Handler) MarkNotificationRead(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "notification id must be numeric")
	}

	if err := h.notifications.MarkAsRead(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return h.Badge(c)
}

func (h *Handler) MarkAllNotificationsRead(c echo.Context) error {
	if err := h.notifications.MarkAllAsRead(c.Request().Context()); err != nil {
		return httpError(err)
	}
	return h.Badge(c)
}

package http

import (
	"time"

	"github.com/labstack/echo/v4"

	middleware "github.com/Oumaima1mal/task-pilot-front/internal/http/middlewares"
)

func Register(e *echo.Echo, h *Handler, rateLimitPerMinute int) {
	e.Use(middleware.RateLimiter(rateLimitPerMinute, time.Minute))

	e.GET("/status", h.Status)
	e.POST("/refresh", h.Refresh)

	e.GET("/tasks", h.ListTasks)
	e.POST("/tasks", h.CreateTask)
	e.GET("/tasks/:id", h.GetTask)
	e.PATCH("/tasks/:id", h.UpdateTask)
	e.DELETE("/tasks/:id", h.DeleteTask)
	e.POST("/tasks/:id/toggle", h.ToggleTask)
	e.GET("/tasks/:id/members", h.MemberStatuses)
	e.PUT("/tasks/:id/members/:userId", h.UpdateMemberStatus)
	e.GET("/calendar", h.Calendar)

	e.GET("/groups", h.ListGroups)
	e.POST("/groups", h.CreateGroup)
	e.GET("/groups/:id", h.GetGroup)
	e.PATCH("/groups/:id", h.UpdateGroup)
	e.DELETE("/groups/:id", h.DeleteGroup)
	e.GET("/groups/:id/members", h.GroupMembers)
	e.POST("/groups/:id/members", h.AddGroupMember)
	e.DELETE("/groups/:id/members/:userId", h.RemoveGroupMember)
	e.GET("/groups/:id/tasks", h.GroupTasks)
	e.GET("/users", h.ListUsers)

	e.GET("/notifications", h.ListNotifications)
	e.GET("/notifications/badge", h.Badge)
	e.POST("/notifications/read-all", h.MarkAllNotificationsRead)
	e.POST("/notifications/:id/read", h.MarkNotificationRead)
}

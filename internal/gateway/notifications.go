package gateway

import (
	"context"
	"net/http"
	"strconv"
	"time"

	model "github.com/Oumaima1mal/task-pilot-front/pkg/models"
)

type NotificationGateway struct {
	client *Client
}

func NewNotificationGateway(client *Client) *NotificationGateway {
	return &NotificationGateway{client: client}
}

func (g *NotificationGateway) List(ctx context.Context) ([]model.Notification, error) {
	var items []notificationDTO
	if err := g.client.do(ctx, request{method: http.MethodGet, path: "/notifications/", out: &items}); err != nil {
		return nil, err
	}

	now := time.Now()
	out := make([]model.Notification, 0, len(items))
	for _, d := range items {
		out = append(out, d.toModel(now))
	}
	return out, nil
}

func (g *NotificationGateway) MarkRead(ctx context.Context, id int64) error {
	return g.client.do(ctx, request{
		method: http.MethodPut,
		path:   "/notifications/" + strconv.FormatInt(id, 10) + "/read",
	})
}

func (g *NotificationGateway) MarkAllRead(ctx context.Context) error {
	return g.client.do(ctx, request{method: http.MethodPut, path: "/notifications/read-all"})
}

package gateway

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/Oumaima1mal/task-pilot-front/internal/exceptions"
	"github.com/Oumaima1mal/task-pilot-front/internal/logging"
	"github.com/Oumaima1mal/task-pilot-front/pkg/constants"
	model "github.com/Oumaima1mal/task-pilot-front/pkg/models"
)

type TaskGateway struct {
	client *Client
	now    func() time.Time
}

func NewTaskGateway(client *Client) *TaskGateway {
	return &TaskGateway{client: client, now: time.Now}
}

func (g *TaskGateway) ListActive(ctx context.Context) ([]model.Task, error) {
	return g.list(ctx, "/taches/")
}

func (g *TaskGateway) ListCompleted(ctx context.Context) ([]model.Task, error) {
	return g.list(ctx, "/taches/terminees/")
}

func (g *TaskGateway) ListByGroup(ctx context.Context, groupID string) ([]model.Task, error) {
	return g.list(ctx, "/groupes/"+url.PathEscape(groupID)+"/taches")
}

func (g *TaskGateway) list(ctx context.Context, path string) ([]model.Task, error) {
	var items []taskDTO
	if err := g.client.do(ctx, request{method: http.MethodGet, path: path, out: &items}); err != nil {
		return nil, err
	}
	return tasksToModel(items, g.now()), nil
}

// Create posts both individual and group tasks; group membership travels in groupe_id.
func (g *TaskGateway) Create(ctx context.Context, in model.CreateTaskInput) (model.Task, error) {
	var out taskDTO
	err := g.client.do(ctx, request{
		method: http.MethodPost,
		path:   "/taches/",
		body:   newCreateTaskRequest(in),
		out:    &out,
	})
	if err != nil {
		return model.Task{}, err
	}
	return out.toModel(g.now()), nil
}

func (g *TaskGateway) Update(ctx context.Context, id string, patch model.TaskPatch) (model.Task, error) {
	return g.put(ctx, "/taches/"+url.PathEscape(id), patchBody(patch))
}

// UpdateStatus uses the status-only endpoint and falls back to the general
// update when the backend does not expose it.
func (g *TaskGateway) UpdateStatus(ctx context.Context, id string, completed bool) (model.Task, error) {
	body := map[string]any{"statut": constants.Statut(completed)}

	task, err := g.put(ctx, "/taches/"+url.PathEscape(id)+"/statut", body)
	if exceptions.IsKind(err, exceptions.NotFoundEmpty) {
		logging.Logger.WithField("task", id).Debug("status endpoint missing, using general update")
		return g.put(ctx, "/taches/"+url.PathEscape(id), body)
	}
	return task, err
}

func (g *TaskGateway) put(ctx context.Context, path string, body any) (model.Task, error) {
	var out taskDTO
	if err := g.client.do(ctx, request{method: http.MethodPut, path: path, body: body, out: &out}); err != nil {
		return model.Task{}, err
	}
	return out.toModel(g.now()), nil
}

func (g *TaskGateway) Delete(ctx context.Context, id string) error {
	return g.client.do(ctx, request{method: http.MethodDelete, path: "/taches/" + url.PathEscape(id)})
}

// MemberStates reads per-member progress; the backend keys it by group and task title.
func (g *TaskGateway) MemberStates(ctx context.Context, groupID, title string) ([]model.MemberTaskState, error) {
	var items []memberStateDTO
	err := g.client.do(ctx, request{
		method: http.MethodGet,
		path:   "/groupe/" + url.PathEscape(groupID) + "/tache/etat",
		query:  url.Values{"titre": []string{title}},
		out:    &items,
	})
	if err != nil {
		return nil, err
	}

	out := make([]model.MemberTaskState, 0, len(items))
	for _, d := range items {
		out = append(out, d.toModel())
	}
	return out, nil
}

func (g *TaskGateway) Scheduled(ctx context.Context, day time.Time) ([]model.Task, error) {
	var items []scheduledTaskDTO
	err := g.client.do(ctx, request{
		method: http.MethodGet,
		path:   "/taches_planifiees/jour/",
		query:  url.Values{"date": []string{day.Format("2006-01-02")}},
		out:    &items,
	})
	if err != nil {
		return nil, err
	}

	now := g.now()
	out := make([]model.Task, 0, len(items))
	for _, d := range items {
		out = append(out, d.toModel(now))
	}
	return out, nil
}

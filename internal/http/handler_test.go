package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Oumaima1mal/task-pilot-front/internal/channel"
	"github.com/Oumaima1mal/task-pilot-front/internal/exceptions"
	"github.com/Oumaima1mal/task-pilot-front/internal/services"
	"github.com/Oumaima1mal/task-pilot-front/pkg/constants"
	model "github.com/Oumaima1mal/task-pilot-front/pkg/models"
)

var errBackend = exceptions.New(exceptions.Transient, http.StatusInternalServerError, "backend down", nil)

type stubSession struct{}

func (stubSession) Token() string { return "tok" }
func (stubSession) OnPublicRoute() bool { return false }

type stubReminders struct{}

func (stubReminders) Schedule(context.Context, model.Task) bool { return false }
func (stubReminders) Cancel(context.Context, string) {}

type stubTaskAPI struct {
	mu        sync.Mutex
	tasks     []model.Task
	creates   int
	statusErr error
	deleteErr error
}

func (a *stubTaskAPI) ListActive(context.Context) ([]model.Task, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]model.Task(nil), a.tasks...), nil
}

func (a *stubTaskAPI) ListCompleted(context.Context) ([]model.Task, error) { return nil, nil }

func (a *stubTaskAPI) ListByGroup(_ context.Context, groupID string) ([]model.Task, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []model.Task
	for _, t := range a.tasks {
		if t.GroupID == groupID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (a *stubTaskAPI) Create(_ context.Context, in model.CreateTaskInput) (model.Task, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.creates++
	task := model.Task{ID: "new", Title: in.Title, Priority: in.Priority, Category: in.Category}
	a.tasks = append(a.tasks, task)
	return task, nil
}

func (a *stubTaskAPI) Update(_ context.Context, id string, patch model.TaskPatch) (model.Task, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.tasks {
		if a.tasks[i].ID == id {
			if patch.Title != nil {
				a.tasks[i].Title = *patch.Title
			}
			return a.tasks[i], nil
		}
	}
	return model.Task{}, exceptions.New(exceptions.NotFoundEmpty, http.StatusNotFound, "missing", nil)
}

func (a *stubTaskAPI) UpdateStatus(_ context.Context, id string, completed bool) (model.Task, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.statusErr != nil {
		return model.Task{}, a.statusErr
	}
	for i := range a.tasks {
		if a.tasks[i].ID == id {
			a.tasks[i].Completed = completed
			return a.tasks[i], nil
		}
	}
	return model.Task{}, nil
}

func (a *stubTaskAPI) Delete(context.Context, string) error { return a.deleteErr }

func (a *stubTaskAPI) MemberStates(context.Context, string, string) ([]model.MemberTaskState, error) {
	return nil, nil
}

func (a *stubTaskAPI) Scheduled(context.Context, time.Time) ([]model.Task, error) {
	return []model.Task{{ID: "s1", Title: "Standup"}}, nil
}

type stubGroupAPI struct {
	groups []model.Group
	users  []model.User
	added  []string
}

func (a *stubGroupAPI) List(context.Context) ([]model.Group, error) { return a.groups, nil }

func (a *stubGroupAPI) Create(_ context.Context, in model.CreateGroupInput) (model.Group, error) {
	return model.Group{ID: "g-new", Name: in.Name}, nil
}

func (a *stubGroupAPI) Update(_ context.Context, id string, patch model.GroupPatch) (model.Group, error) {
	return model.Group{ID: id, Name: *patch.Name}, nil
}

func (a *stubGroupAPI) Delete(context.Context, string) error { return nil }

func (a *stubGroupAPI) AddMember(_ context.Context, _, userID string) error {
	a.added = append(a.added, userID)
	return nil
}

func (a *stubGroupAPI) RemoveMember(context.Context, string, string) error { return nil }

func (a *stubGroupAPI) ListUsers(context.Context) ([]model.User, error) { return a.users, nil }

func (a *stubGroupAPI) Members(context.Context, string) ([]model.GroupMember, error) {
	return []model.GroupMember{{ID: "u1", FirstName: "Ana", LastName: "Diaz"}}, nil
}

type stubNotificationAPI struct {
	feed []model.Notification
}

func (a *stubNotificationAPI) List(context.Context) ([]model.Notification, error) { return a.feed, nil }

func (a *stubNotificationAPI) MarkRead(context.Context, int64) error { return nil }

func (a *stubNotificationAPI) MarkAllRead(context.Context) error {
	for i := range a.feed {
		a.feed[i].EstLue = true
	}
	return nil
}

type idleSource struct{}

func (idleSource) Events() <-chan channel.Event { return nil }
func (idleSource) State() channel.State { return channel.Disconnected }

type fixture struct {
	echo     *echo.Echo
	taskAPI  *stubTaskAPI
	groupAPI *stubGroupAPI
}

func newFixture(t *testing.T, rateLimit int) *fixture {
	t.Helper()

	taskAPI := &stubTaskAPI{tasks: []model.Task{
		{ID: "1", Title: "Rapport", Priority: constants.PriorityHigh, Category: constants.CategoryWork},
		{ID: "2", Title: "Courses", Priority: constants.PriorityLow, Category: constants.CategoryShopping, GroupID: "g1"},
	}}
	groupAPI := &stubGroupAPI{
		groups: []model.Group{{ID: "g1", Name: "Equipe"}},
		users:  []model.User{{ID: "u2", Name: "Bob Martin"}},
	}
	notificationAPI := &stubNotificationAPI{feed: []model.Notification{
		{ID: 1, Contenu: "a", DateEnvoi: time.Now()},
		{ID: 2, Contenu: "b", DateEnvoi: time.Now().Add(-time.Hour)},
	}}

	tasks := services.NewTaskService(taskAPI, stubSession{}, stubReminders{}, nil)
	groups := services.NewGroupService(groupAPI, stubSession{}, nil)
	notifications := services.NewNotificationService(notificationAPI, stubSession{}, idleSource{}, nil)

	ctx := context.Background()
	tasks.Refresh(ctx)
	groups.Refresh(ctx)
	require.NoError(t, notifications.FetchAll(ctx))

	e := echo.New()
	Register(e, NewHandler(tasks, groups, notifications), rateLimit)

	return &fixture{echo: e, taskAPI: taskAPI, groupAPI: groupAPI}
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	f.echo.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestListTasks_FiltersByCategory(t *testing.T) {
	f := newFixture(t, 100)

	rec := f.do(http.MethodGet, "/tasks?category=shopping", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.EqualValues(t, 1, body["count"])
}

func TestGetTask_UnknownIs404(t *testing.T) {
	f := newFixture(t, 100)

	rec := f.do(http.MethodGet, "/tasks/404", "")

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestCreateTask_ValidatesBeforeCallingBackend(t *testing.T) {
	f := newFixture(t, 100)

	rec := f.do(http.MethodPost, "/tasks", `{"title":"  ","priority":"high","category":"work"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, f.taskAPI.creates)
}

func TestCreateTask_RejectsReminderWithoutDueDate(t *testing.T) {
	f := newFixture(t, 100)

	rec := f.do(http.MethodPost, "/tasks",
		`{"title":"Rappel","priority":"high","category":"work","reminder":"2030-01-01T09:00:00Z"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, f.taskAPI.creates)
}

func TestCreateTask_Created(t *testing.T) {
	f := newFixture(t, 100)

	rec := f.do(http.MethodPost, "/tasks", `{"title":"Nouveau","priority":"medium","category":"other"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Nouveau", decode(t, rec)["title"])

	list := decode(t, f.do(http.MethodGet, "/tasks", ""))
	assert.EqualValues(t, 3, list["count"])
}

func TestUpdateTask_EmptyPatchRejected(t *testing.T) {
	f := newFixture(t, 100)

	rec := f.do(http.MethodPatch, "/tasks/1", `{}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestToggleTask_BackendFailureRollsBack(t *testing.T) {
	f := newFixture(t, 100)
	f.taskAPI.statusErr = errBackend

	rec := f.do(http.MethodPost, "/tasks/1/toggle", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	task := decode(t, f.do(http.MethodGet, "/tasks/1", ""))
	assert.Equal(t, false, task["completed"])
}

func TestToggleTask_Success(t *testing.T) {
	f := newFixture(t, 100)

	rec := f.do(http.MethodPost, "/tasks/1/toggle", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["completed"])
}

func TestDeleteTask_UnauthenticatedIs401(t *testing.T) {
	f := newFixture(t, 100)
	f.taskAPI.deleteErr = exceptions.New(exceptions.Unauthenticated, http.StatusUnauthorized, "expired", nil)

	rec := f.do(http.MethodDelete, "/tasks/1", "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdateMemberStatus(t *testing.T) {
	f := newFixture(t, 100)

	bad := f.do(http.MethodPut, "/tasks/2/members/u1", `{"status":"done"}`)
	assert.Equal(t, http.StatusBadRequest, bad.Code)

	ok := f.do(http.MethodPut, "/tasks/2/members/u1", `{"status":"in-progress"}`)
	require.Equal(t, http.StatusOK, ok.Code)
	statuses, _ := decode(t, ok)["memberStatuses"].([]any)
	assert.Len(t, statuses, 1)

	missing := f.do(http.MethodPut, "/tasks/nope/members/u1", `{"status":"pending"}`)
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestCalendar(t *testing.T) {
	f := newFixture(t, 100)

	bad := f.do(http.MethodGet, "/calendar?date=15/10/2026", "")
	assert.Equal(t, http.StatusBadRequest, bad.Code)

	rec := f.do(http.MethodGet, "/calendar?date=2026-10-15", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "2026-10-15", body["date"])
	assert.EqualValues(t, 1, body["count"])
}

func TestGroups_CreateValidatesName(t *testing.T) {
	f := newFixture(t, 100)

	rec := f.do(http.MethodPost, "/groups", `{"name":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPost, "/groups", `{"name":"Projet"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestGroups_AddMember(t *testing.T) {
	f := newFixture(t, 100)

	rec := f.do(http.MethodPost, "/groups/g1/members", `{"userId":"u2"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"u2"}, f.groupAPI.added)
	members, _ := decode(t, rec)["members"].([]any)
	assert.Len(t, members, 1)
}

func TestGroups_MembersAndTasks(t *testing.T) {
	f := newFixture(t, 100)

	members := f.do(http.MethodGet, "/groups/g1/members", "")
	require.Equal(t, http.StatusOK, members.Code)
	assert.Contains(t, members.Body.String(), "Diaz")

	tasks := decode(t, f.do(http.MethodGet, "/groups/g1/tasks", ""))
	assert.EqualValues(t, 1, tasks["count"])
}

func TestNotifications_BadgeAndReadAll(t *testing.T) {
	f := newFixture(t, 100)

	badge := decode(t, f.do(http.MethodGet, "/notifications/badge", ""))
	assert.EqualValues(t, 2, badge["unread"])
	assert.Equal(t, "(2) Gestionnaire de Tâches", badge["title"])

	rec := f.do(http.MethodPost, "/notifications/read-all", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, decode(t, rec)["unread"])
}

func TestNotifications_MarkReadNeedsNumericID(t *testing.T) {
	f := newFixture(t, 100)

	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/notifications/abc/read", "").Code)

	rec := f.do(http.MethodPost, "/notifications/1/read", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode(t, rec)["unread"])
}

func TestStatus(t *testing.T) {
	f := newFixture(t, 100)

	body := decode(t, f.do(http.MethodGet, "/status", ""))

	tasks, _ := body["tasks"].(map[string]any)
	assert.Equal(t, "ready", tasks["phase"])
	notifications, _ := body["notifications"].(map[string]any)
	assert.Equal(t, "disconnected", notifications["connection"])
}

func TestRateLimiter_Blocks(t *testing.T) {
	f := newFixture(t, 2)

	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/status", "").Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/status", "").Code)

	rec := f.do(http.MethodGet, "/status", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestHTTPError_Mapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{exceptions.ErrTaskNotFound, http.StatusNotFound},
		{exceptions.ErrTitleRequired, http.StatusBadRequest},
		{exceptions.New(exceptions.Unauthenticated, 401, "x", nil), http.StatusUnauthorized},
		{exceptions.New(exceptions.NotFoundEmpty, 404, "x", nil), http.StatusNotFound},
		{errors.New("boom"), http.StatusBadGateway},
	}

	for _, tc := range cases {
		var he *echo.HTTPError
		require.True(t, errors.As(httpError(tc.err), &he))
		assert.Equal(t, tc.code, he.Code, tc.err.Error())
	}
}

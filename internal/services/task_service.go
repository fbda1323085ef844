package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Oumaima1mal/task-pilot-front/internal/exceptions"
	"github.com/Oumaima1mal/task-pilot-front/internal/logging"
	"github.com/Oumaima1mal/task-pilot-front/internal/snapshot"
	"github.com/Oumaima1mal/task-pilot-front/pkg/constants"
	model "github.com/Oumaima1mal/task-pilot-front/pkg/models"
)

const errLoadTasks = "Impossible de charger les tâches. Veuillez réessayer plus tard."

type TaskState struct {
	Phase Phase
	Err   string
	Tasks []model.Task
}

// TaskService owns the canonical task collection.
type TaskService struct {
	api       TaskAPI
	session   Session
	reminders ReminderScheduler
	store     *snapshot.Advisory
	now       func() time.Time

	mu    sync.RWMutex
	tasks []model.Task
	phase Phase
	err   string

	refreshing atomic.Bool
	closed     atomic.Bool
	subs       listeners[[]model.Task]
}

func NewTaskService(
	api TaskAPI,
	session Session,
	reminders ReminderScheduler,
	store *snapshot.Advisory,
) *TaskService {
	return &TaskService{
		api:       api,
		session:   session,
		reminders: reminders,
		store:     store,
		now:       time.Now,
	}
}

func (s *TaskService) log() *logrus.Entry {
	return logging.Logger.WithField("manager", "tasks")
}

// Refresh reloads active and completed tasks. A call made while another
// refresh is in flight returns immediately.
func (s *TaskService) Refresh(ctx context.Context) {
	if !s.refreshing.CompareAndSwap(false, true) {
		s.log().Debug("refresh already running, skipped")
		return
	}
	defer s.refreshing.Store(false)

	if !hasSession(s.session) {
		s.commit([]model.Task{}, "")
		return
	}

	s.setLoading()

	active, err := s.api.ListActive(ctx)
	if err != nil {
		s.refreshFailed(ctx, err)
		return
	}

	completed, err := s.api.ListCompleted(ctx)
	if err != nil {
		s.log().Warnf("completed tasks unavailable: %v", err)
		completed = nil
	}

	merged := mergeTasks(active, completed)
	s.log().Infof("%d tasks loaded", len(merged))
	if s.commit(merged, "") {
		s.store.Save(ctx, snapshot.KeyTasks, merged)
	}
}

func (s *TaskService) refreshFailed(ctx context.Context, err error) {
	switch exceptions.KindOf(err) {
	case exceptions.Unauthenticated:
		s.commit([]model.Task{}, "")
	case exceptions.NotFoundEmpty:
		s.log().Info("no tasks yet")
		s.commit([]model.Task{}, "")
	default:
		s.log().Errorf("refresh failed: %v", err)

		var cached []model.Task
		if s.store.Load(ctx, snapshot.KeyTasks, &cached) {
			s.log().Infof("using %d cached tasks", len(cached))
			s.commit(cached, errLoadTasks)
			return
		}
		s.commitError(errLoadTasks)
	}
}

// mergeTasks concatenates both sets without duplicate ids; active entries win.
func mergeTasks(active, completed []model.Task) []model.Task {
	seen := make(map[string]struct{}, len(active)+len(completed))
	out := make([]model.Task, 0, len(active)+len(completed))

	for _, set := range [][]model.Task{active, completed} {
		for _, t := range set {
			if _, dup := seen[t.ID]; dup {
				continue
			}
			seen[t.ID] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}

func (s *TaskService) AddTask(ctx context.Context, in model.CreateTaskInput) (*model.Task, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	if in.GroupID != "" {
		s.log().WithField("group", in.GroupID).Info("creating group task")
	}

	task, err := s.api.Create(ctx, in)
	if err != nil {
		s.log().Errorf("create failed: %v", err)
		return nil, err
	}

	s.mutate(func(tasks []model.Task) []model.Task {
		if i := indexOf(tasks, task.ID); i >= 0 {
			tasks[i] = task
			return tasks
		}
		return append(tasks, task)
	})

	if task.Reminder != nil && !task.Completed && !s.closed.Load() {
		s.reminders.Schedule(ctx, task)
	}
	return &task, nil
}

func (s *TaskService) UpdateTask(ctx context.Context, id string, patch model.TaskPatch) (*model.Task, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	current, known := s.TaskByID(id)

	updated, err := s.api.Update(ctx, id, patch)
	if err != nil {
		s.log().WithField("task", id).Errorf("update failed: %v", err)
		return nil, err
	}

	s.mutate(func(tasks []model.Task) []model.Task {
		if i := indexOf(tasks, id); i >= 0 {
			tasks[i] = updated
		}
		return tasks
	})

	if patch.ReminderChanged(current.Reminder) && !s.closed.Load() {
		if known {
			s.reminders.Cancel(ctx, current.Title)
		}
		if !updated.Completed {
			s.reminders.Schedule(ctx, updated)
		}
	}
	return &updated, nil
}

// DeleteTask removes the task locally only once the backend confirmed it.
func (s *TaskService) DeleteTask(ctx context.Context, id string) error {
	if err := s.api.Delete(ctx, id); err != nil {
		s.log().WithField("task", id).Errorf("delete failed: %v", err)
		return err
	}

	if task, ok := s.TaskByID(id); ok {
		s.reminders.Cancel(ctx, task.Title)
	}

	s.mutate(func(tasks []model.Task) []model.Task {
		if i := indexOf(tasks, id); i >= 0 {
			return append(tasks[:i], tasks[i+1:]...)
		}
		return tasks
	})
	return nil
}

// ToggleTaskCompletion flips the flag before the backend answers and
// restores it if the backend rejects the change.
func (s *TaskService) ToggleTaskCompletion(ctx context.Context, id string) error {
	if s.closed.Load() {
		return nil
	}

	s.mu.Lock()
	i := indexOf(s.tasks, id)
	if i < 0 {
		s.mu.Unlock()
		return nil
	}
	target := !s.tasks[i].Completed
	s.tasks[i].Completed = target
	view := cloneTasks(s.tasks)
	s.mu.Unlock()

	s.subs.notify(view)

	if _, err := s.api.UpdateStatus(ctx, id, target); err != nil {
		s.log().WithField("task", id).Errorf("status update failed, reverting: %v", err)
		s.mutate(func(tasks []model.Task) []model.Task {
			if i := indexOf(tasks, id); i >= 0 && tasks[i].Completed == target {
				tasks[i].Completed = !target
			}
			return tasks
		})
		return err
	}

	s.Refresh(ctx)
	return nil
}

// UpdateMemberTaskStatus records a member's progress locally.
func (s *TaskService) UpdateMemberTaskStatus(taskID, userID string, status constants.MemberStatus) error {
	if !status.Valid() {
		return exceptions.ErrInvalidMemberStatus
	}
	if !s.has(taskID) {
		return exceptions.ErrTaskNotFound
	}

	entry := model.TaskMemberStatus{UserID: userID, Status: string(status), UpdatedAt: s.now()}
	s.mutate(func(tasks []model.Task) []model.Task {
		if i := indexOf(tasks, taskID); i >= 0 {
			tasks[i].UpsertMemberStatus(entry)
		}
		return tasks
	})
	return nil
}

// FetchMemberStatuses reads every member's progress on a group task and merges
// the entries that carry a user id into the task's member statuses.
func (s *TaskService) FetchMemberStatuses(ctx context.Context, taskID string) ([]model.MemberTaskState, error) {
	task, ok := s.TaskByID(taskID)
	if !ok {
		return nil, exceptions.ErrTaskNotFound
	}
	if task.GroupID == "" {
		return []model.MemberTaskState{}, nil
	}

	states, err := s.api.MemberStates(ctx, task.GroupID, task.Title)
	if exceptions.IsKind(err, exceptions.NotFoundEmpty) {
		return []model.MemberTaskState{}, nil
	}
	if err != nil {
		return nil, err
	}

	s.mutate(func(tasks []model.Task) []model.Task {
		i := indexOf(tasks, taskID)
		if i < 0 {
			return tasks
		}
		for _, st := range states {
			if st.UserID == "" {
				continue
			}
			tasks[i].UpsertMemberStatus(model.TaskMemberStatus{
				UserID:    st.UserID,
				Status:    st.Status,
				UpdatedAt: st.UpdatedAt,
			})
		}
		return tasks
	})
	return states, nil
}

func (s *TaskService) ScheduledTasks(ctx context.Context, day time.Time) ([]model.Task, error) {
	if !hasSession(s.session) {
		return []model.Task{}, nil
	}

	tasks, err := s.api.Scheduled(ctx, day)
	if exceptions.IsKind(err, exceptions.NotFoundEmpty) {
		return []model.Task{}, nil
	}
	return tasks, err
}

func (s *TaskService) FetchGroupTasks(ctx context.Context, groupID string) ([]model.Task, error) {
	if !hasSession(s.session) {
		return []model.Task{}, nil
	}

	tasks, err := s.api.ListByGroup(ctx, groupID)
	if exceptions.IsKind(err, exceptions.NotFoundEmpty) {
		return []model.Task{}, nil
	}
	return tasks, err
}

func (s *TaskService) Tasks() []model.Task {
	return s.filter(func(model.Task) bool { return true })
}

func (s *TaskService) TaskByID(id string) (model.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := indexOf(s.tasks, id); i >= 0 {
		return s.tasks[i].Clone(), true
	}
	return model.Task{}, false
}

func (s *TaskService) TasksByCategory(c constants.Category) []model.Task {
	return s.filter(func(t model.Task) bool { return t.Category == c })
}

func (s *TaskService) TasksByPriority(p constants.Priority) []model.Task {
	return s.filter(func(t model.Task) bool { return t.Priority == p })
}

// OverdueTasks are incomplete tasks due strictly before now.
func (s *TaskService) OverdueTasks() []model.Task {
	now := s.now()
	return s.filter(func(t model.Task) bool {
		return !t.Completed && t.DueDate != nil && t.DueDate.Before(now)
	})
}

// TodayTasks are tasks due in [midnight today, midnight tomorrow).
func (s *TaskService) TodayTasks() []model.Task {
	now := s.now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 0, 1)

	return s.filter(func(t model.Task) bool {
		return t.DueDate != nil && !t.DueDate.Before(start) && t.DueDate.Before(end)
	})
}

func (s *TaskService) GroupTasks(groupID string) []model.Task {
	return s.filter(func(t model.Task) bool { return t.GroupID == groupID })
}

func (s *TaskService) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

func (s *TaskService) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *TaskService) State() TaskState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return TaskState{Phase: s.phase, Err: s.err, Tasks: cloneTasks(s.tasks)}
}

func (s *TaskService) Subscribe(fn func([]model.Task)) func() {
	return s.subs.add(fn)
}

// Close stops every in-flight operation from writing state once it completes.
func (s *TaskService) Close() {
	s.closed.Store(true)
}

func (s *TaskService) filter(keep func(model.Task) bool) []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Task, 0)
	for _, t := range s.tasks {
		if keep(t) {
			out = append(out, t.Clone())
		}
	}
	return out
}

func (s *TaskService) has(id string) bool {
	_, ok := s.TaskByID(id)
	return ok
}

func (s *TaskService) setLoading() {
	if s.closed.Load() {
		return
	}
	s.mu.Lock()
	s.phase = PhaseLoading
	s.mu.Unlock()
}

// commit replaces the collection and marks the manager ready. It reports
// false when the manager was closed in the meantime.
func (s *TaskService) commit(tasks []model.Task, errMsg string) bool {
	if s.closed.Load() {
		return false
	}

	s.mu.Lock()
	s.tasks = cloneTasks(tasks)
	s.err = errMsg
	s.phase = PhaseReady
	view := cloneTasks(s.tasks)
	s.mu.Unlock()

	s.subs.notify(view)
	return true
}

func (s *TaskService) commitError(errMsg string) {
	if s.closed.Load() {
		return
	}

	s.mu.Lock()
	s.err = errMsg
	s.phase = PhaseReady
	view := cloneTasks(s.tasks)
	s.mu.Unlock()

	s.subs.notify(view)
}

func (s *TaskService) mutate(fn func([]model.Task) []model.Task) bool {
	if s.closed.Load() {
		return false
	}

	s.mu.Lock()
	s.tasks = fn(s.tasks)
	view := cloneTasks(s.tasks)
	s.mu.Unlock()

	s.subs.notify(view)
	return true
}

func indexOf(tasks []model.Task, id string) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneTasks(tasks []model.Task) []model.Task {
	out := make([]model.Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}

package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Oumaima1mal/task-pilot-front/internal/exceptions"
	"github.com/Oumaima1mal/task-pilot-front/internal/snapshot"
	model "github.com/Oumaima1mal/task-pilot-front/pkg/models"
)

type fakeGroupAPI struct {
	mu      sync.Mutex
	groups  []model.Group
	users   []model.User
	members map[string][]model.GroupMember

	listErr   error
	usersErr  error
	mutateErr error
	addCalls  int
}

func (f *fakeGroupAPI) List(context.Context) ([]model.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return cloneGroups(f.groups), nil
}

func (f *fakeGroupAPI) Create(_ context.Context, in model.CreateGroupInput) (model.Group, error) {
	if f.mutateErr != nil {
		return model.Group{}, f.mutateErr
	}
	return model.Group{ID: "new", Name: in.Name, Description: in.Description, Members: []model.User{}}, nil
}

func (f *fakeGroupAPI) Update(_ context.Context, id string, p model.GroupPatch) (model.Group, error) {
	if f.mutateErr != nil {
		return model.Group{}, f.mutateErr
	}
	g := model.Group{ID: id, Members: []model.User{}}
	if p.Name != nil {
		g.Name = *p.Name
	}
	return g, nil
}

func (f *fakeGroupAPI) Delete(context.Context, string) error {
	return f.mutateErr
}

func (f *fakeGroupAPI) AddMember(context.Context, string, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addCalls++
	return f.mutateErr
}

func (f *fakeGroupAPI) RemoveMember(context.Context, string, string) error {
	return f.mutateErr
}

func (f *fakeGroupAPI) ListUsers(context.Context) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.usersErr != nil {
		return nil, f.usersErr
	}
	return append([]model.User{}, f.users...), nil
}

func (f *fakeGroupAPI) Members(_ context.Context, groupID string) ([]model.GroupMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.members[groupID]
	if !ok {
		return nil, errMissing
	}
	return append([]model.GroupMember{}, m...), nil
}

func newGroupFixture() *fakeGroupAPI {
	return &fakeGroupAPI{
		groups: []model.Group{{ID: "g1", Name: "Famille", Members: []model.User{{ID: "u1", Name: "Léa Durand"}}}},
		users: []model.User{
			{ID: "u1", Name: "Léa Durand"},
			{ID: "u2", Name: "Karim Benali", Email: "karim@example.com"},
		},
		members: map[string][]model.GroupMember{
			"g1": {{ID: "u1", FirstName: "Léa", LastName: "Durand", Role: "Admin"}},
		},
	}
}

func TestGroupService_AddAndRemoveMember(t *testing.T) {
	api := newGroupFixture()
	svc := NewGroupService(api, &fakeSession{token: "tok"}, setupTestStore(t))
	ctx := context.Background()

	svc.Refresh(ctx)
	_, err := svc.FetchGroupMembers(ctx, "g1")
	require.NoError(t, err)

	require.NoError(t, svc.AddUserToGroup(ctx, "g1", "u2"))
	require.NoError(t, svc.AddUserToGroup(ctx, "g1", "u2"))

	group, ok := svc.GroupByID("g1")
	require.True(t, ok)
	count := 0
	for _, m := range group.Members {
		if m.ID == "u2" {
			count++
		}
	}
	assert.Equal(t, 1, count)

	cached, _ := svc.Members("g1")
	require.Len(t, cached, 2)
	assert.Equal(t, "Karim", cached[1].FirstName)
	assert.Equal(t, "Benali", cached[1].LastName)
	assert.Equal(t, "Membre", cached[1].Role)

	require.NoError(t, svc.RemoveUserFromGroup(ctx, "g1", "u2"))

	group, _ = svc.GroupByID("g1")
	assert.False(t, group.HasMember("u2"))
	cached, _ = svc.Members("g1")
	require.Len(t, cached, 1)
	assert.Equal(t, "u1", cached[0].ID)
}

func TestGroupService_MemberChangeFailureLeavesState(t *testing.T) {
	api := newGroupFixture()
	svc := NewGroupService(api, &fakeSession{token: "tok"}, setupTestStore(t))
	ctx := context.Background()
	svc.Refresh(ctx)

	api.mutateErr = errBackend
	assert.Error(t, svc.AddUserToGroup(ctx, "g1", "u2"))

	group, _ := svc.GroupByID("g1")
	assert.False(t, group.HasMember("u2"))
}

func TestGroupService_RefreshFallsBackToSnapshot(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	first := NewGroupService(newGroupFixture(), &fakeSession{token: "tok"}, store)
	first.Refresh(ctx)
	require.Len(t, first.Groups(), 1)

	failing := newGroupFixture()
	failing.usersErr = errBackend
	second := NewGroupService(failing, &fakeSession{token: "tok"}, store)
	second.Refresh(ctx)

	assert.Equal(t, errLoadGroups, second.Err())
	assert.Equal(t, PhaseReady, second.Phase())
	require.Len(t, second.Groups(), 1)
	assert.Equal(t, "Famille", second.Groups()[0].Name)
	assert.Len(t, second.Users(), 2)
}

func TestGroupService_RefreshErrorKinds(t *testing.T) {
	for name, err := range map[string]error{"unauthenticated": errAuth, "not found": errMissing} {
		t.Run(name, func(t *testing.T) {
			api := newGroupFixture()
			svc := NewGroupService(api, &fakeSession{token: "tok"}, setupTestStore(t))
			svc.Refresh(context.Background())

			api.listErr = err
			svc.Refresh(context.Background())

			assert.Empty(t, svc.Groups())
			assert.Empty(t, svc.Err())
		})
	}
}

func TestGroupService_RefreshWithoutToken(t *testing.T) {
	api := newGroupFixture()
	svc := NewGroupService(api, &fakeSession{}, nil)

	svc.Refresh(context.Background())

	assert.Empty(t, svc.Groups())
	assert.Equal(t, PhaseReady, svc.Phase())
}

func TestGroupService_CRUD(t *testing.T) {
	api := newGroupFixture()
	svc := NewGroupService(api, &fakeSession{token: "tok"}, setupTestStore(t))
	ctx := context.Background()
	svc.Refresh(ctx)

	_, err := svc.AddGroup(ctx, model.CreateGroupInput{Name: ""})
	assert.ErrorIs(t, err, exceptions.ErrGroupNameRequired)

	created, err := svc.AddGroup(ctx, model.CreateGroupInput{Name: "Projet"})
	require.NoError(t, err)
	assert.Len(t, svc.Groups(), 2)

	name := "Projet X"
	_, err = svc.UpdateGroup(ctx, created.ID, model.GroupPatch{Name: &name})
	require.NoError(t, err)
	updated, _ := svc.GroupByID(created.ID)
	assert.Equal(t, "Projet X", updated.Name)

	api.mutateErr = errBackend
	assert.Error(t, svc.DeleteGroup(ctx, created.ID))
	assert.Len(t, svc.Groups(), 2)

	api.mutateErr = nil
	require.NoError(t, svc.DeleteGroup(ctx, created.ID))
	_, ok := svc.GroupByID(created.ID)
	assert.False(t, ok)
}

func TestGroupService_FetchGroupMembersNotFoundIsEmpty(t *testing.T) {
	api := newGroupFixture()
	svc := NewGroupService(api, &fakeSession{token: "tok"}, nil)

	members, err := svc.FetchGroupMembers(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Empty(t, members)

	_, loaded := svc.Members("unknown")
	assert.True(t, loaded)
}

// slowStore keeps encoding the groups snapshot for a while so that member
// changes can land in the middle of a save.
type slowStore struct {
	started chan struct{}
	once    sync.Once

	mu    sync.Mutex
	saved []byte
}

func (s *slowStore) Save(_ context.Context, key string, value any) error {
	if key != snapshot.KeyGroups {
		return nil
	}
	s.once.Do(func() { close(s.started) })

	var last []byte
	deadline := time.Now().Add(50 * time.Millisecond)
	for time.Now().Before(deadline) {
		b, err := json.Marshal(value)
		if err != nil {
			return err
		}
		last = b
	}

	s.mu.Lock()
	s.saved = last
	s.mu.Unlock()
	return nil
}

func (s *slowStore) Load(context.Context, string, any) (bool, error) { return false, nil }

func (s *slowStore) Delete(context.Context, string) error { return nil }

func TestGroupService_SnapshotUnaffectedByConcurrentMemberChange(t *testing.T) {
	store := &slowStore{started: make(chan struct{})}
	svc := NewGroupService(newGroupFixture(), &fakeSession{token: "tok"}, snapshot.NewAdvisory(store))
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		defer close(done)
		svc.Refresh(ctx)
	}()

	<-store.started
	require.NoError(t, svc.RemoveUserFromGroup(ctx, "g1", "u1"))
	require.NoError(t, svc.AddUserToGroup(ctx, "g1", "u2"))
	<-done

	var saved []model.Group
	store.mu.Lock()
	require.NoError(t, json.Unmarshal(store.saved, &saved))
	store.mu.Unlock()

	require.Len(t, saved, 1)
	if !saved[0].HasMember("u1") || saved[0].HasMember("u2") {
		t.Errorf("snapshot should hold the refreshed members, got %+v", saved[0].Members)
	}

	group, _ := svc.GroupByID("g1")
	assert.False(t, group.HasMember("u1"))
	assert.True(t, group.HasMember("u2"))
}

package services

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/Oumaima1mal/task-pilot-front/internal/exceptions"
	"github.com/Oumaima1mal/task-pilot-front/internal/logging"
	"github.com/Oumaima1mal/task-pilot-front/internal/snapshot"
	"github.com/Oumaima1mal/task-pilot-front/pkg/constants"
	model "github.com/Oumaima1mal/task-pilot-front/pkg/models"
)

const (
	errLoadGroups  = "Impossible de charger les groupes. Veuillez réessayer plus tard."
	errLoadMembers = "Impossible de charger les membres du groupe."
)

type GroupState struct {
	Phase  Phase
	Err    string
	Groups []model.Group
	Users  []model.User
}

// GroupService owns groups, users and the per-group member cache.
// Mutations wait for the backend before touching local state.
type GroupService struct {
	api     GroupAPI
	session Session
	store   *snapshot.Advisory

	mu      sync.RWMutex
	groups  []model.Group
	users   []model.User
	members map[string][]model.GroupMember
	phase   Phase
	err     string

	refreshing atomic.Bool
	closed     atomic.Bool
	subs       listeners[GroupState]
}

func NewGroupService(api GroupAPI, session Session, store *snapshot.Advisory) *GroupService {
	return &GroupService{
		api:     api,
		session: session,
		store:   store,
		members: make(map[string][]model.GroupMember),
	}
}

func (s *GroupService) log() *logrus.Entry {
	return logging.Logger.WithField("manager", "groups")
}

// Refresh loads groups and users in parallel. On failure it falls back to the
// last snapshot that was saved.
func (s *GroupService) Refresh(ctx context.Context) {
	if !s.refreshing.CompareAndSwap(false, true) {
		s.log().Debug("refresh already running, skipped")
		return
	}
	defer s.refreshing.Store(false)

	if !hasSession(s.session) {
		s.commit(func() {
			s.groups = []model.Group{}
			s.users = []model.User{}
			s.err = ""
		})
		return
	}

	if !s.closed.Load() {
		s.mu.Lock()
		s.phase = PhaseLoading
		s.mu.Unlock()
	}

	var groups []model.Group
	var users []model.User

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		groups, err = s.api.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		users, err = s.api.ListUsers(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		s.refreshFailed(ctx, err)
		return
	}

	s.log().Infof("%d groups and %d users loaded", len(groups), len(users))
	ok := s.commit(func() {
		s.groups = cloneGroups(groups)
		s.users = append([]model.User{}, users...)
		s.err = ""
	})
	if ok {
		s.store.Save(ctx, snapshot.KeyGroups, groups)
		s.store.Save(ctx, snapshot.KeyUsers, users)
	}
}

func (s *GroupService) refreshFailed(ctx context.Context, err error) {
	switch exceptions.KindOf(err) {
	case exceptions.Unauthenticated, exceptions.NotFoundEmpty:
		s.commit(func() {
			s.groups = []model.Group{}
			s.users = []model.User{}
			s.err = ""
		})
		return
	}

	s.log().Errorf("refresh failed: %v", err)

	var groups []model.Group
	var users []model.User
	hydrated := s.store.Load(ctx, snapshot.KeyGroups, &groups) && s.store.Load(ctx, snapshot.KeyUsers, &users)
	if hydrated {
		s.log().Info("using locally saved groups")
	}

	s.commit(func() {
		if hydrated {
			s.groups = groups
			s.users = users
		}
		s.err = errLoadGroups
	})
}

func (s *GroupService) AddGroup(ctx context.Context, in model.CreateGroupInput) (*model.Group, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	group, err := s.api.Create(ctx, in)
	if err != nil {
		s.log().Errorf("create failed: %v", err)
		return nil, err
	}

	s.commit(func() {
		s.groups = append(s.groups, group)
	})
	return &group, nil
}

func (s *GroupService) UpdateGroup(ctx context.Context, id string, patch model.GroupPatch) (*model.Group, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	group, err := s.api.Update(ctx, id, patch)
	if err != nil {
		s.log().WithField("group", id).Errorf("update failed: %v", err)
		return nil, err
	}

	s.commit(func() {
		if i := groupIndex(s.groups, id); i >= 0 {
			s.groups[i] = group
		}
	})
	return &group, nil
}

func (s *GroupService) DeleteGroup(ctx context.Context, id string) error {
	if err := s.api.Delete(ctx, id); err != nil {
		s.log().WithField("group", id).Errorf("delete failed: %v", err)
		return err
	}

	s.commit(func() {
		if i := groupIndex(s.groups, id); i >= 0 {
			s.groups = append(s.groups[:i], s.groups[i+1:]...)
		}
		delete(s.members, id)
	})
	return nil
}

// AddUserToGroup registers the membership and mirrors it locally, at most once per user.
func (s *GroupService) AddUserToGroup(ctx context.Context, groupID, userID string) error {
	if err := s.api.AddMember(ctx, groupID, userID); err != nil {
		s.log().WithFields(logrus.Fields{"group": groupID, "user": userID}).Errorf("add member failed: %v", err)
		return err
	}

	s.commit(func() {
		user, ok := userByID(s.users, userID)
		if !ok {
			return
		}

		if i := groupIndex(s.groups, groupID); i >= 0 && !s.groups[i].HasMember(userID) {
			s.groups[i].Members = append(s.groups[i].Members, user)
		}

		cached, loaded := s.members[groupID]
		if loaded && !hasGroupMember(cached, userID) {
			s.members[groupID] = append(cached, memberFromUser(user))
		}
	})
	return nil
}

func (s *GroupService) RemoveUserFromGroup(ctx context.Context, groupID, userID string) error {
	if err := s.api.RemoveMember(ctx, groupID, userID); err != nil {
		s.log().WithFields(logrus.Fields{"group": groupID, "user": userID}).Errorf("remove member failed: %v", err)
		return err
	}

	s.commit(func() {
		if i := groupIndex(s.groups, groupID); i >= 0 {
			kept := make([]model.User, 0, len(s.groups[i].Members))
			for _, m := range s.groups[i].Members {
				if m.ID != userID {
					kept = append(kept, m)
				}
			}
			s.groups[i].Members = kept
		}

		cached, loaded := s.members[groupID]
		if !loaded {
			return
		}
		kept := make([]model.GroupMember, 0, len(cached))
		for _, m := range cached {
			if m.ID != userID {
				kept = append(kept, m)
			}
		}
		s.members[groupID] = kept
	})
	return nil
}

// FetchGroupMembers loads the role-annotated members of one group into the cache.
func (s *GroupService) FetchGroupMembers(ctx context.Context, groupID string) ([]model.GroupMember, error) {
	members, err := s.api.Members(ctx, groupID)
	if exceptions.IsKind(err, exceptions.NotFoundEmpty) {
		members, err = []model.GroupMember{}, nil
	}
	if err != nil {
		s.log().WithField("group", groupID).Errorf("members unavailable: %v", err)
		s.commit(func() { s.err = errLoadMembers })
		return nil, err
	}

	s.commit(func() {
		s.members[groupID] = members
	})
	return append([]model.GroupMember(nil), members...), nil
}

func (s *GroupService) GroupByID(id string) (model.Group, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := groupIndex(s.groups, id); i >= 0 {
		return s.groups[i].Clone(), true
	}
	return model.Group{}, false
}

func (s *GroupService) Groups() []model.Group {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneGroups(s.groups)
}

func (s *GroupService) Users() []model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.User{}, s.users...)
}

// Members returns the cached member details and whether the group was loaded.
func (s *GroupService) Members(groupID string) ([]model.GroupMember, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.members[groupID]
	return append([]model.GroupMember{}, m...), ok
}

func (s *GroupService) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

func (s *GroupService) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *GroupService) State() GroupState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stateLocked()
}

func (s *GroupService) Subscribe(fn func(GroupState)) func() {
	return s.subs.add(fn)
}

func (s *GroupService) Close() {
	s.closed.Store(true)
}

func (s *GroupService) stateLocked() GroupState {
	return GroupState{
		Phase:  s.phase,
		Err:    s.err,
		Groups: cloneGroups(s.groups),
		Users:  append([]model.User{}, s.users...),
	}
}

// commit applies fn under the lock, marks the manager ready and notifies subscribers.
func (s *GroupService) commit(fn func()) bool {
	if s.closed.Load() {
		return false
	}

	s.mu.Lock()
	fn()
	s.phase = PhaseReady
	view := s.stateLocked()
	s.mu.Unlock()

	s.subs.notify(view)
	return true
}

func groupIndex(groups []model.Group, id string) int {
	for i := range groups {
		if groups[i].ID == id {
			return i
		}
	}
	return -1
}

func userByID(users []model.User, id string) (model.User, bool) {
	for _, u := range users {
		if u.ID == id {
			return u, true
		}
	}
	return model.User{}, false
}

func hasGroupMember(members []model.GroupMember, id string) bool {
	for _, m := range members {
		if m.ID == id {
			return true
		}
	}
	return false
}

// memberFromUser builds a cache entry for a freshly added member until the next fetch.
func memberFromUser(u model.User) model.GroupMember {
	first, last, _ := strings.Cut(u.Name, " ")
	return model.GroupMember{
		ID:        u.ID,
		FirstName: first,
		LastName:  last,
		Email:     u.Email,
		Role:      constants.DefaultMemberRole,
	}
}

func cloneGroups(groups []model.Group) []model.Group {
	out := make([]model.Group, len(groups))
	for i, g := range groups {
		out[i] = g.Clone()
	}
	return out
}

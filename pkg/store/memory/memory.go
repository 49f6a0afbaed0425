// Package memory provides an in-memory implementation of
// [github.com/planboard/planboard/pkg/store.Store] for unit tests.
//
// It keeps every entity in process memory behind a mutex and supports
// per-operation fault injection so tests can exercise the error paths of
// the board core and the HTTP handlers without a live database.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/planboard/planboard/pkg/models"
	"github.com/planboard/planboard/pkg/store"
)

// Store is an in-memory store.Store. The zero value is not usable; call New.
type Store struct {
	mu sync.Mutex

	projects      map[models.ProjectID]*models.Project
	members       map[models.MemberID]*models.ProjectMember
	statuses      map[models.StatusID]*models.TaskStatus
	tasks         map[models.TaskID]*models.Task
	users         map[models.UserID]*models.User
	notifications map[models.NotificationID]*models.Notification

	failures map[string]error
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		projects:      make(map[models.ProjectID]*models.Project),
		members:       make(map[models.MemberID]*models.ProjectMember),
		statuses:      make(map[models.StatusID]*models.TaskStatus),
		tasks:         make(map[models.TaskID]*models.Task),
		users:         make(map[models.UserID]*models.User),
		notifications: make(map[models.NotificationID]*models.Notification),
		failures:      make(map[string]error),
	}
}

// FailWith makes every operation whose name contains op return err until
// ClearFailures is called. Operation names match the Op field of the
// StoreError the real backends produce, e.g. "update task".
func (s *Store) FailWith(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

// ClearFailures removes all injected faults.
func (s *Store) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = make(map[string]error)
}

// checkFail must be called with the lock held.
func (s *Store) checkFail(op string) error {
	for k, err := range s.failures {
		if strings.Contains(op, k) {
			return store.NewStoreError(op, "", err)
		}
	}
	return nil
}

// Project operations

func (s *Store) CreateProject(ctx context.Context, project *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkFail("create project"); err != nil {
		return err
	}
	if project.ID.IsZero() {
		project.ID = models.NewProjectID()
	}
	now := time.Now()
	if project.CreatedAt.IsZero() {
		project.CreatedAt = now
	}
	project.UpdatedAt = now
	cp := *project
	s.projects[project.ID] = &cp
	return nil
}

func (s *Store) GetProject(ctx context.Context, id models.ProjectID) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkFail("get project"); err != nil {
		return nil, err
	}
	p, ok := s.projects[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (s *Store) UpdateProject(ctx context.Context, project *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkFail("update project"); err != nil {
		return err
	}
	if _, ok := s.projects[project.ID]; !ok {
		return store.ErrNotFound
	}
	project.UpdatedAt = time.Now()
	cp := *project
	s.projects[project.ID] = &cp
	return nil
}

func (s *Store) DeleteProject(ctx context.Context, id models.ProjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkFail("delete project"); err != nil {
		return err
	}
	if _, ok := s.projects[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.projects, id)
	for tid, t := range s.tasks {
		if t.ProjectID == id {
			delete(s.tasks, tid)
		}
	}
	for sid, st := range s.statuses {
		if st.ProjectID == id {
			delete(s.statuses, sid)
		}
	}
	for mid, m := range s.members {
		if m.ProjectID == id {
			delete(s.members, mid)
		}
	}
	return nil
}

func (s *Store) ListProjects(ctx context.Context, ownerID models.UserID) ([]*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkFail("list projects"); err != nil {
		return nil, err
	}
	out := []*models.Project{}
	for _, p := range s.projects {
		if p.OwnerID == ownerID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Membership operations

func (s *Store) AddMember(ctx context.Context, member *models.ProjectMember) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkFail("add member"); err != nil {
		return err
	}
	if member.ID.IsZero() {
		member.ID = models.NewMemberID()
	}
	if member.CreatedAt.IsZero() {
		member.CreatedAt = time.Now()
	}
	if member.Role == "" {
		member.Role = models.RoleMember
	}
	cp := *member
	s.members[member.ID] = &cp
	return nil
}

func (s *Store) RemoveMember(ctx context.Context, id models.MemberID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkFail("remove member"); err != nil {
		return err
	}
	if _, ok := s.members[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.members, id)
	return nil
}

func (s *Store) ListMembers(ctx context.Context, projectID models.ProjectID) ([]*models.ProjectMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkFail("list members"); err != nil {
		return nil, err
	}
	out := []*models.ProjectMember{}
	for _, m := range s.members {
		if m.ProjectID == projectID {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) IsMember(ctx context.Context, projectID models.ProjectID, userID models.UserID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkFail("check membership"); err != nil {
		return false, err
	}
	for _, m := range s.members {
		if m.ProjectID == projectID && m.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

// Status operations

func (s *Store) CreateStatus(ctx context.Context, status *models.TaskStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkFail("create status"); err != nil {
		return err
	}
	if status.ID.IsZero() {
		status.ID = models.NewStatusID()
	}
	if status.CreatedAt.IsZero() {
		status.CreatedAt = time.Now()
	}
	cp := *status
	s.statuses[status.ID] = &cp
	return nil
}

func (s *Store) GetStatus(ctx context.Context, id models.StatusID) (*models.TaskStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkFail("get status"); err != nil {
		return nil, err
	}
	st, ok := s.statuses[id]
	if !ok {
		return nil, nil
	}
	cp := *st
	return &cp, nil
}

func (s *Store) UpdateStatus(ctx context.Context, status *models.TaskStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkFail("update status"); err != nil {
		return err
	}
	if _, ok := s.statuses[status.ID]; !ok {
		return store.ErrNotFound
	}
	cp := *status
	s.statuses[status.ID] = &cp
	return nil
}

func (s *Store) DeleteStatus(ctx context.Context, id models.StatusID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkFail("delete status"); err != nil {
		return err
	}
	if _, ok := s.statuses[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.statuses, id)
	return nil
}

func (s *Store) ListStatuses(ctx context.Context, projectID models.ProjectID) ([]*models.TaskStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkFail("list statuses"); err != nil {
		return nil, err
	}
	out := []*models.TaskStatus{}
	for _, st := range s.statuses {
		if st.ProjectID == projectID {
			cp := *st
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

// Task operations

func (s *Store) CreateTask(ctx context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkFail("create task"); err != nil {
		return err
	}
	if task.ID.IsZero() {
		task.ID = models.NewTaskID()
	}
	now := time.Now()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	task.UpdatedAt = now
	cp := *task
	s.tasks[task.ID] = &cp
	return nil
}

func (s *Store) GetTask(ctx context.Context, id models.TaskID) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkFail("get task"); err != nil {
		return nil, err
	}
	t, ok := s.tasks[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (s *Store) UpdateTask(ctx context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkFail("update task"); err != nil {
		return err
	}
	if _, ok := s.tasks[task.ID]; !ok {
		return store.ErrNotFound
	}
	task.UpdatedAt = time.Now()
	cp := *task
	s.tasks[task.ID] = &cp
	return nil
}

func (s *Store) DeleteTask(ctx context.Context, id models.TaskID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkFail("delete task"); err != nil {
		return err
	}
	if _, ok := s.tasks[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *Store) ListTasks(ctx context.Context, projectID models.ProjectID) ([]*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkFail("list tasks"); err != nil {
		return nil, err
	}
	out := []*models.Task{}
	for _, t := range s.tasks {
		if t.ProjectID == projectID {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (s *Store) ListScheduledTasks(ctx context.Context, projectID models.ProjectID) ([]*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkFail("list scheduled tasks"); err != nil {
		return nil, err
	}
	out := []*models.Task{}
	for _, t := range s.tasks {
		if t.ProjectID == projectID && t.DueDate != nil {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(*out[j].DueDate) })
	return out, nil
}

func (s *Store) ListTasksDueBetween(ctx context.Context, from, until time.Time) ([]*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkFail("list due tasks"); err != nil {
		return nil, err
	}
	out := []*models.Task{}
	for _, t := range s.tasks {
		if t.DueDate != nil && !t.DueDate.Before(from) && !t.DueDate.After(until) {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(*out[j].DueDate) })
	return out, nil
}

// User operations

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkFail("create user"); err != nil {
		return err
	}
	if user.ID.IsZero() {
		user.ID = models.NewUserID()
	}
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *Store) GetUser(ctx context.Context, id models.UserID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkFail("get user"); err != nil {
		return nil, err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkFail("get user by email"); err != nil {
		return nil, err
	}
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Store) UpdateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkFail("update user"); err != nil {
		return err
	}
	if _, ok := s.users[user.ID]; !ok {
		return store.ErrNotFound
	}
	user.UpdatedAt = time.Now()
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, id models.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkFail("delete user"); err != nil {
		return err
	}
	if _, ok := s.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

// Notification operations

func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkFail("create notification"); err != nil {
		return err
	}
	if n.ID.IsZero() {
		n.ID = models.NewNotificationID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	cp := *n
	s.notifications[n.ID] = &cp
	return nil
}

func (s *Store) ListNotifications(ctx context.Context, userID models.UserID) ([]*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkFail("list notifications"); err != nil {
		return nil, err
	}
	out := []*models.Notification{}
	for _, n := range s.notifications {
		if n.UserID == userID {
			cp := *n
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) MarkNotificationRead(ctx context.Context, id models.NotificationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkFail("mark notification read"); err != nil {
		return err
	}
	n, ok := s.notifications[id]
	if !ok {
		return store.ErrNotFound
	}
	n.Read = true
	return nil
}

// Migrate is a no-op for the in-memory store.
func (s *Store) Migrate(ctx context.Context) error { return nil }

// Close is a no-op for the in-memory store.
func (s *Store) Close() error { return nil }

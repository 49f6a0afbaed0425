package store

import (
	"context"

	"github.com/planboard/planboard/pkg/models"
)

// ReadOnlyStore wraps a Store and rejects write operations while the
// application is in read-only mode, e.g. during maintenance windows.
//
// The read-only state is determined dynamically by the isReadOnly function,
// so the mode can be toggled at runtime without recreating the store. Read
// operations always pass through untouched.
type ReadOnlyStore struct {
	Store
	isReadOnly func() bool
}

// NewReadOnlyStore creates a read-only wrapper around store.
func NewReadOnlyStore(store Store, isReadOnly func() bool) Store {
	return &ReadOnlyStore{
		Store:      store,
		isReadOnly: isReadOnly,
	}
}

// Unwrap returns the underlying store
func (r *ReadOnlyStore) Unwrap() Store {
	return r.Store
}

func (r *ReadOnlyStore) checkReadOnly() error {
	if r.isReadOnly() {
		return ErrReadOnly
	}
	return nil
}

// Write operations - check read-only mode first

func (r *ReadOnlyStore) CreateProject(ctx context.Context, project *models.Project) error {
	if err := r.checkReadOnly(); err != nil {
		return err
	}
	return r.Store.CreateProject(ctx, project)
}

func (r *ReadOnlyStore) UpdateProject(ctx context.Context, project *models.Project) error {
	if err := r.checkReadOnly(); err != nil {
		return err
	}
	return r.Store.UpdateProject(ctx, project)
}

func (r *ReadOnlyStore) DeleteProject(ctx context.Context, id models.ProjectID) error {
	if err := r.checkReadOnly(); err != nil {
		return err
	}
	return r.Store.DeleteProject(ctx, id)
}

func (r *ReadOnlyStore) AddMember(ctx context.Context, member *models.ProjectMember) error {
	if err := r.checkReadOnly(); err != nil {
		return err
	}
	return r.Store.AddMember(ctx, member)
}

func (r *ReadOnlyStore) RemoveMember(ctx context.Context, id models.MemberID) error {
	if err := r.checkReadOnly(); err != nil {
		return err
	}
	return r.Store.RemoveMember(ctx, id)
}

func (r *ReadOnlyStore) CreateStatus(ctx context.Context, status *models.TaskStatus) error {
	if err := r.checkReadOnly(); err != nil {
		return err
	}
	return r.Store.CreateStatus(ctx, status)
}

func (r *ReadOnlyStore) UpdateStatus(ctx context.Context, status *models.TaskStatus) error {
	if err := r.checkReadOnly(); err != nil {
		return err
	}
	return r.Store.UpdateStatus(ctx, status)
}

func (r *ReadOnlyStore) DeleteStatus(ctx context.Context, id models.StatusID) error {
	if err := r.checkReadOnly(); err != nil {
		return err
	}
	return r.Store.DeleteStatus(ctx, id)
}

func (r *ReadOnlyStore) CreateTask(ctx context.Context, task *models.Task) error {
	if err := r.checkReadOnly(); err != nil {
		return err
	}
	return r.Store.CreateTask(ctx, task)
}

func (r *ReadOnlyStore) UpdateTask(ctx context.Context, task *models.Task) error {
	if err := r.checkReadOnly(); err != nil {
		return err
	}
	return r.Store.UpdateTask(ctx, task)
}

func (r *ReadOnlyStore) DeleteTask(ctx context.Context, id models.TaskID) error {
	if err := r.checkReadOnly(); err != nil {
		return err
	}
	return r.Store.DeleteTask(ctx, id)
}

func (r *ReadOnlyStore) CreateUser(ctx context.Context, user *models.User) error {
	if err := r.checkReadOnly(); err != nil {
		return err
	}
	return r.Store.CreateUser(ctx, user)
}

func (r *ReadOnlyStore) UpdateUser(ctx context.Context, user *models.User) error {
	if err := r.checkReadOnly(); err != nil {
		return err
	}
	return r.Store.UpdateUser(ctx, user)
}

func (r *ReadOnlyStore) DeleteUser(ctx context.Context, id models.UserID) error {
	if err := r.checkReadOnly(); err != nil {
		return err
	}
	return r.Store.DeleteUser(ctx, id)
}

func (r *ReadOnlyStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	if err := r.checkReadOnly(); err != nil {
		return err
	}
	return r.Store.CreateNotification(ctx, n)
}

func (r *ReadOnlyStore) MarkNotificationRead(ctx context.Context, id models.NotificationID) error {
	if err := r.checkReadOnly(); err != nil {
		return err
	}
	return r.Store.MarkNotificationRead(ctx, id)
}

// Package store defines the persistence gateway abstraction for the
// planboard application.
//
// The [Store] interface is the four-operation CRUD contract
// (list/create/update/delete) over the remote table-oriented store, one
// method group per entity. Two production backends implement it:
//
//   - [github.com/planboard/planboard/pkg/store/surrealdb.SurrealStore]:
//     the hosted SurrealDB backend using native SurrealQL with the
//     surrealcbor codec
//   - [github.com/planboard/planboard/pkg/store/postgres.PostgresStore]:
//     PostgreSQL through GORM with AutoMigrate
//
// plus [github.com/planboard/planboard/pkg/store/memory.Store] for tests.
//
// Conventions shared by all implementations:
//
//   - Every method takes a context and respects its cancellation.
//   - Get methods return nil without error for missing records.
//   - List methods filter by project (or user) equality, return results in
//     stable order, and return empty slices rather than nil.
//   - Create methods generate IDs and timestamps when unset.
//   - Update methods replace the full entity and return [ErrNotFound] when
//     the target does not exist.
//   - Failures are wrapped in [StoreError]; the gateway never retries.
package store

import (
	"context"
	"time"

	"github.com/planboard/planboard/pkg/models"
)

// Store is the persistence gateway for all planboard entities.
type Store interface {
	// Project operations

	CreateProject(ctx context.Context, project *models.Project) error
	GetProject(ctx context.Context, id models.ProjectID) (*models.Project, error)
	UpdateProject(ctx context.Context, project *models.Project) error
	// DeleteProject removes a project together with its statuses, tasks,
	// and memberships.
	DeleteProject(ctx context.Context, id models.ProjectID) error
	ListProjects(ctx context.Context, ownerID models.UserID) ([]*models.Project, error)

	// Membership operations. Membership is the binary authorization
	// concept: IsMember is the only check the application performs.

	AddMember(ctx context.Context, member *models.ProjectMember) error
	RemoveMember(ctx context.Context, id models.MemberID) error
	ListMembers(ctx context.Context, projectID models.ProjectID) ([]*models.ProjectMember, error)
	IsMember(ctx context.Context, projectID models.ProjectID, userID models.UserID) (bool, error)

	// Status (board column) operations. ListStatuses returns columns
	// ordered by order_index ascending.

	CreateStatus(ctx context.Context, status *models.TaskStatus) error
	GetStatus(ctx context.Context, id models.StatusID) (*models.TaskStatus, error)
	UpdateStatus(ctx context.Context, status *models.TaskStatus) error
	DeleteStatus(ctx context.Context, id models.StatusID) error
	ListStatuses(ctx context.Context, projectID models.ProjectID) ([]*models.TaskStatus, error)

	// Task operations. ListTasks returns tasks ordered by order_index
	// ascending. ListScheduledTasks restricts to tasks with a non-null
	// due date (calendar view). ListTasksDueBetween spans all projects
	// and feeds the deadline reminder sweep.

	CreateTask(ctx context.Context, task *models.Task) error
	GetTask(ctx context.Context, id models.TaskID) (*models.Task, error)
	UpdateTask(ctx context.Context, task *models.Task) error
	DeleteTask(ctx context.Context, id models.TaskID) error
	ListTasks(ctx context.Context, projectID models.ProjectID) ([]*models.Task, error)
	ListScheduledTasks(ctx context.Context, projectID models.ProjectID) ([]*models.Task, error)
	ListTasksDueBetween(ctx context.Context, from, until time.Time) ([]*models.Task, error)

	// User operations

	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id models.UserID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id models.UserID) error

	// Notification operations

	CreateNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, userID models.UserID) ([]*models.Notification, error)
	MarkNotificationRead(ctx context.Context, id models.NotificationID) error

	// Migrate initializes the backend schema. Idempotent.
	Migrate(ctx context.Context) error

	// Close releases the backend connection.
	Close() error
}

// Package surrealdb provides the SurrealDB implementation of
// [github.com/planboard/planboard/pkg/store.Store] using native SurrealQL.
//
// This is the hosted database-as-a-service backend. The implementation uses
// the surrealcbor codec rather than default Go marshaling: SurrealDB speaks
// CBOR internally, and the codec gives full control over how time.Time and
// the typed IDs serialize. Typed IDs marshal straight to RecordIDs (CBOR tag
// 8), so queries never build identifiers by string concatenation — every
// user-provided value goes through a $param.
//
// SurrealDB creates tables implicitly on first insert, so Migrate is limited
// to declaring the indexes the list queries rely on.
package surrealdb

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/pkg/connection"
	"github.com/surrealdb/surrealdb.go/pkg/connection/gorillaws"
	"github.com/surrealdb/surrealdb.go/surrealcbor"

	"github.com/planboard/planboard/pkg/models"
	"github.com/planboard/planboard/pkg/store"
)

// SurrealStore implements store.Store on a SurrealDB connection.
type SurrealStore struct {
	db       *surrealdb.DB
	ns       string
	database string
}

// New connects to SurrealDB at wsURL and returns a store bound to the given
// namespace and database. The connection is configured with the surrealcbor
// codec; without it time.Time values marshal in a format SurrealDB rejects.
func New(wsURL, namespace, database, username, password string) (store.Store, error) {
	ctx := context.Background()

	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	conf := connection.NewConfig(u)
	codec := surrealcbor.New()
	conf.Marshaler = codec
	conf.Unmarshaler = codec

	conn := gorillaws.New(conf)

	db, err := surrealdb.FromConnection(ctx, conn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if username != "" && password != "" {
		if _, err := db.SignIn(ctx, map[string]any{
			"user": username,
			"pass": password,
		}); err != nil {
			return nil, fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	if err := db.Use(ctx, namespace, database); err != nil {
		return nil, fmt.Errorf("failed to use namespace/database: %w", err)
	}

	return &SurrealStore{db: db, ns: namespace, database: database}, nil
}

// Migrate declares the indexes used by the project-scoped list queries.
// Tables themselves are created implicitly on first insert.
func (s *SurrealStore) Migrate(ctx context.Context) error {
	schema := `
		DEFINE INDEX IF NOT EXISTS status_project ON TABLE task_statuses COLUMNS project_id;
		DEFINE INDEX IF NOT EXISTS task_project ON TABLE tasks COLUMNS project_id;
		DEFINE INDEX IF NOT EXISTS member_project ON TABLE project_members COLUMNS project_id;
		DEFINE INDEX IF NOT EXISTS notification_user ON TABLE notifications COLUMNS user_id;
	`
	if _, err := surrealdb.Query[any](ctx, s.db, schema, nil); err != nil {
		return store.NewStoreError("migrate", "schema", err)
	}
	return nil
}

// Close closes the database connection
func (s *SurrealStore) Close() error {
	return s.db.Close(context.Background())
}

// handleNotFound maps the SDK's "no result" errors to a nil record.
func handleNotFound(err error) error {
	if err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "Expected a single or multiple results but got 0") ||
			strings.Contains(errStr, "cannot unmarshal array into Go value") {
			return nil
		}
	}
	return err
}

// queryList runs a SELECT returning a list of T and unwraps the first
// statement's result set.
func queryList[T any](ctx context.Context, s *SurrealStore, query string, params map[string]any) ([]T, error) {
	result, err := surrealdb.Query[[]T](ctx, s.db, query, params)
	if err != nil {
		return nil, err
	}
	if result == nil || len(*result) == 0 {
		return []T{}, nil
	}
	out := (*result)[0].Result
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// Project operations

func (s *SurrealStore) CreateProject(ctx context.Context, project *models.Project) error {
	if project.ID.IsZero() {
		project.ID = models.NewProjectID()
	}
	now := time.Now()
	if project.CreatedAt.IsZero() {
		project.CreatedAt = now
	}
	if project.UpdatedAt.IsZero() {
		project.UpdatedAt = now
	}

	// Typed IDs marshal to RecordIDs, so OwnerID is stored as a record link.
	if _, err := surrealdb.Create[models.Project](ctx, s.db, "projects", project); err != nil {
		return store.NewStoreError("create project", "project", err)
	}
	return nil
}

func (s *SurrealStore) GetProject(ctx context.Context, id models.ProjectID) (*models.Project, error) {
	project, err := surrealdb.Select[models.Project](ctx, s.db, id.RecordID())
	if err != nil {
		if handleNotFound(err) == nil {
			return nil, nil
		}
		return nil, store.NewStoreError("get project", "project", err)
	}
	return project, nil
}

func (s *SurrealStore) UpdateProject(ctx context.Context, project *models.Project) error {
	project.UpdatedAt = time.Now()
	if _, err := surrealdb.Update[models.Project](ctx, s.db, project.ID.RecordID(), project); err != nil {
		return store.NewStoreError("update project", "project", err)
	}
	return nil
}

func (s *SurrealStore) DeleteProject(ctx context.Context, id models.ProjectID) error {
	// Children first, then the project record, in one transaction.
	query := `
		BEGIN TRANSACTION;
		DELETE tasks WHERE project_id = $project;
		DELETE task_statuses WHERE project_id = $project;
		DELETE project_members WHERE project_id = $project;
		DELETE $project;
		COMMIT TRANSACTION;
	`
	params := map[string]any{"project": id.RecordID()}
	if _, err := surrealdb.Query[any](ctx, s.db, query, params); err != nil {
		return store.NewStoreError("delete project", "project", err)
	}
	return nil
}

func (s *SurrealStore) ListProjects(ctx context.Context, ownerID models.UserID) ([]*models.Project, error) {
	query := "SELECT * FROM projects WHERE owner_id = $owner ORDER BY created_at ASC"
	params := map[string]any{"owner": ownerID.RecordID()}
	projects, err := queryList[*models.Project](ctx, s, query, params)
	if err != nil {
		return nil, store.NewStoreError("list projects", "project", err)
	}
	return projects, nil
}

// Membership operations

func (s *SurrealStore) AddMember(ctx context.Context, member *models.ProjectMember) error {
	if member.ID.IsZero() {
		member.ID = models.NewMemberID()
	}
	if member.CreatedAt.IsZero() {
		member.CreatedAt = time.Now()
	}
	if member.Role == "" {
		member.Role = models.RoleMember
	}
	if _, err := surrealdb.Create[models.ProjectMember](ctx, s.db, "project_members", member); err != nil {
		return store.NewStoreError("add member", "member", err)
	}
	return nil
}

func (s *SurrealStore) RemoveMember(ctx context.Context, id models.MemberID) error {
	if _, err := surrealdb.Delete[models.ProjectMember](ctx, s.db, id.RecordID()); err != nil {
		return store.NewStoreError("remove member", "member", err)
	}
	return nil
}

func (s *SurrealStore) ListMembers(ctx context.Context, projectID models.ProjectID) ([]*models.ProjectMember, error) {
	query := "SELECT * FROM project_members WHERE project_id = $project ORDER BY created_at ASC"
	params := map[string]any{"project": projectID.RecordID()}
	members, err := queryList[*models.ProjectMember](ctx, s, query, params)
	if err != nil {
		return nil, store.NewStoreError("list members", "member", err)
	}
	return members, nil
}

func (s *SurrealStore) IsMember(ctx context.Context, projectID models.ProjectID, userID models.UserID) (bool, error) {
	query := "SELECT count() AS n FROM project_members WHERE project_id = $project AND user_id = $user GROUP ALL"
	params := map[string]any{
		"project": projectID.RecordID(),
		"user":    userID.RecordID(),
	}
	type countRow struct {
		N int `json:"n"`
	}
	rows, err := queryList[countRow](ctx, s, query, params)
	if err != nil {
		return false, store.NewStoreError("check membership", "member", err)
	}
	return len(rows) > 0 && rows[0].N > 0, nil
}

// Status operations

func (s *SurrealStore) CreateStatus(ctx context.Context, status *models.TaskStatus) error {
	if status.ID.IsZero() {
		status.ID = models.NewStatusID()
	}
	if status.CreatedAt.IsZero() {
		status.CreatedAt = time.Now()
	}
	if _, err := surrealdb.Create[models.TaskStatus](ctx, s.db, "task_statuses", status); err != nil {
		return store.NewStoreError("create status", "status", err)
	}
	return nil
}

func (s *SurrealStore) GetStatus(ctx context.Context, id models.StatusID) (*models.TaskStatus, error) {
	status, err := surrealdb.Select[models.TaskStatus](ctx, s.db, id.RecordID())
	if err != nil {
		if handleNotFound(err) == nil {
			return nil, nil
		}
		return nil, store.NewStoreError("get status", "status", err)
	}
	return status, nil
}

func (s *SurrealStore) UpdateStatus(ctx context.Context, status *models.TaskStatus) error {
	if _, err := surrealdb.Update[models.TaskStatus](ctx, s.db, status.ID.RecordID(), status); err != nil {
		return store.NewStoreError("update status", "status", err)
	}
	return nil
}

func (s *SurrealStore) DeleteStatus(ctx context.Context, id models.StatusID) error {
	// Tasks in the deleted column keep a dangling status_id; the board
	// groups them as unassigned.
	if _, err := surrealdb.Delete[models.TaskStatus](ctx, s.db, id.RecordID()); err != nil {
		return store.NewStoreError("delete status", "status", err)
	}
	return nil
}

func (s *SurrealStore) ListStatuses(ctx context.Context, projectID models.ProjectID) ([]*models.TaskStatus, error) {
	query := "SELECT * FROM task_statuses WHERE project_id = $project ORDER BY order_index ASC"
	params := map[string]any{"project": projectID.RecordID()}
	statuses, err := queryList[*models.TaskStatus](ctx, s, query, params)
	if err != nil {
		return nil, store.NewStoreError("list statuses", "status", err)
	}
	return statuses, nil
}

// Task operations

func (s *SurrealStore) CreateTask(ctx context.Context, task *models.Task) error {
	if task.ID.IsZero() {
		task.ID = models.NewTaskID()
	}
	now := time.Now()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	if task.UpdatedAt.IsZero() {
		task.UpdatedAt = now
	}
	if _, err := surrealdb.Create[models.Task](ctx, s.db, "tasks", task); err != nil {
		return store.NewStoreError("create task", "task", err)
	}
	return nil
}

func (s *SurrealStore) GetTask(ctx context.Context, id models.TaskID) (*models.Task, error) {
	task, err := surrealdb.Select[models.Task](ctx, s.db, id.RecordID())
	if err != nil {
		if handleNotFound(err) == nil {
			return nil, nil
		}
		return nil, store.NewStoreError("get task", "task", err)
	}
	return task, nil
}

func (s *SurrealStore) UpdateTask(ctx context.Context, task *models.Task) error {
	task.UpdatedAt = time.Now()
	if _, err := surrealdb.Update[models.Task](ctx, s.db, task.ID.RecordID(), task); err != nil {
		return store.NewStoreError("update task", "task", err)
	}
	return nil
}

func (s *SurrealStore) DeleteTask(ctx context.Context, id models.TaskID) error {
	if _, err := surrealdb.Delete[models.Task](ctx, s.db, id.RecordID()); err != nil {
		return store.NewStoreError("delete task", "task", err)
	}
	return nil
}

func (s *SurrealStore) ListTasks(ctx context.Context, projectID models.ProjectID) ([]*models.Task, error) {
	query := "SELECT * FROM tasks WHERE project_id = $project ORDER BY order_index ASC"
	params := map[string]any{"project": projectID.RecordID()}
	tasks, err := queryList[*models.Task](ctx, s, query, params)
	if err != nil {
		return nil, store.NewStoreError("list tasks", "task", err)
	}
	return tasks, nil
}

func (s *SurrealStore) ListScheduledTasks(ctx context.Context, projectID models.ProjectID) ([]*models.Task, error) {
	query := "SELECT * FROM tasks WHERE project_id = $project AND due_date != NONE ORDER BY due_date ASC"
	params := map[string]any{"project": projectID.RecordID()}
	tasks, err := queryList[*models.Task](ctx, s, query, params)
	if err != nil {
		return nil, store.NewStoreError("list scheduled tasks", "task", err)
	}
	return tasks, nil
}

func (s *SurrealStore) ListTasksDueBetween(ctx context.Context, from, until time.Time) ([]*models.Task, error) {
	query := "SELECT * FROM tasks WHERE due_date != NONE AND due_date >= $from AND due_date <= $until ORDER BY due_date ASC"
	params := map[string]any{"from": from, "until": until}
	tasks, err := queryList[*models.Task](ctx, s, query, params)
	if err != nil {
		return nil, store.NewStoreError("list due tasks", "task", err)
	}
	return tasks, nil
}

// User operations

func (s *SurrealStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = models.NewUserID()
	}
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}
	if _, err := surrealdb.Create[models.User](ctx, s.db, "users", user); err != nil {
		return store.NewStoreError("create user", "user", err)
	}
	return nil
}

func (s *SurrealStore) GetUser(ctx context.Context, id models.UserID) (*models.User, error) {
	user, err := surrealdb.Select[models.User](ctx, s.db, id.RecordID())
	if err != nil {
		if handleNotFound(err) == nil {
			return nil, nil
		}
		return nil, store.NewStoreError("get user", "user", err)
	}
	return user, nil
}

func (s *SurrealStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := "SELECT * FROM users WHERE email = $email LIMIT 1"
	params := map[string]any{"email": email}
	users, err := queryList[*models.User](ctx, s, query, params)
	if err != nil {
		return nil, store.NewStoreError("get user by email", "user", err)
	}
	if len(users) == 0 {
		return nil, nil
	}
	return users[0], nil
}

func (s *SurrealStore) UpdateUser(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()
	if _, err := surrealdb.Update[models.User](ctx, s.db, user.ID.RecordID(), user); err != nil {
		return store.NewStoreError("update user", "user", err)
	}
	return nil
}

func (s *SurrealStore) DeleteUser(ctx context.Context, id models.UserID) error {
	if _, err := surrealdb.Delete[models.User](ctx, s.db, id.RecordID()); err != nil {
		return store.NewStoreError("delete user", "user", err)
	}
	return nil
}

// Notification operations

func (s *SurrealStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	if n.ID.IsZero() {
		n.ID = models.NewNotificationID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	if _, err := surrealdb.Create[models.Notification](ctx, s.db, "notifications", n); err != nil {
		return store.NewStoreError("create notification", "notification", err)
	}
	return nil
}

func (s *SurrealStore) ListNotifications(ctx context.Context, userID models.UserID) ([]*models.Notification, error) {
	query := "SELECT * FROM notifications WHERE user_id = $user ORDER BY created_at DESC"
	params := map[string]any{"user": userID.RecordID()}
	notifications, err := queryList[*models.Notification](ctx, s, query, params)
	if err != nil {
		return nil, store.NewStoreError("list notifications", "notification", err)
	}
	return notifications, nil
}

func (s *SurrealStore) MarkNotificationRead(ctx context.Context, id models.NotificationID) error {
	query := "UPDATE $notification SET read = true"
	params := map[string]any{"notification": id.RecordID()}
	if _, err := surrealdb.Query[any](ctx, s.db, query, params); err != nil {
		return store.NewStoreError("mark notification read", "notification", err)
	}
	return nil
}

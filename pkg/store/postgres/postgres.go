// Package postgres provides the PostgreSQL implementation of
// [github.com/planboard/planboard/pkg/store.Store] using GORM.
//
// It is the self-hosted alternative to the SurrealDB backend. GORM handles
// SQL generation, connection pooling, and schema migration via AutoMigrate;
// the typed IDs in [github.com/planboard/planboard/pkg/models] implement
// driver.Valuer/sql.Scanner so they map to uuid columns transparently.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/planboard/planboard/pkg/models"
	"github.com/planboard/planboard/pkg/store"
)

// PostgresStore implements store.Store on a GORM connection.
type PostgresStore struct {
	db *gorm.DB
}

// New opens a PostgreSQL connection for the given DSN.
func New(dsn string) (store.Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Migrate creates or updates the schema for all entities. AutoMigrate only
// adds missing tables, columns, and indexes; it never drops data.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	err := s.db.WithContext(ctx).AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectMember{},
		&models.TaskStatus{},
		&models.Task{},
		&models.Notification{},
	)
	return store.NewStoreError("migrate", "schema", err)
}

// Close closes the underlying connection pool.
func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Project operations

func (s *PostgresStore) CreateProject(ctx context.Context, project *models.Project) error {
	return store.NewStoreError("create project", "project",
		s.db.WithContext(ctx).Create(project).Error)
}

func (s *PostgresStore) GetProject(ctx context.Context, id models.ProjectID) (*models.Project, error) {
	var project models.Project
	err := s.db.WithContext(ctx).First(&project, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, store.NewStoreError("get project", "project", err)
	}
	return &project, nil
}

func (s *PostgresStore) UpdateProject(ctx context.Context, project *models.Project) error {
	res := s.db.WithContext(ctx).Model(&models.Project{}).
		Where("id = ?", project.ID).
		Updates(map[string]any{
			"name":        project.Name,
			"description": project.Description,
			"updated_at":  time.Now(),
		})
	if res.Error != nil {
		return store.NewStoreError("update project", "project", res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteProject(ctx context.Context, id models.ProjectID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Task{}, "project_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.TaskStatus{}, "project_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.ProjectMember{}, "project_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Project{}, "id = ?", id).Error
	})
	return store.NewStoreError("delete project", "project", err)
}

func (s *PostgresStore) ListProjects(ctx context.Context, ownerID models.UserID) ([]*models.Project, error) {
	projects := []*models.Project{}
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC").
		Find(&projects).Error
	if err != nil {
		return nil, store.NewStoreError("list projects", "project", err)
	}
	return projects, nil
}

// Membership operations

func (s *PostgresStore) AddMember(ctx context.Context, member *models.ProjectMember) error {
	if member.Role == "" {
		member.Role = models.RoleMember
	}
	return store.NewStoreError("add member", "member",
		s.db.WithContext(ctx).Create(member).Error)
}

func (s *PostgresStore) RemoveMember(ctx context.Context, id models.MemberID) error {
	res := s.db.WithContext(ctx).Delete(&models.ProjectMember{}, "id = ?", id)
	if res.Error != nil {
		return store.NewStoreError("remove member", "member", res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListMembers(ctx context.Context, projectID models.ProjectID) ([]*models.ProjectMember, error) {
	members := []*models.ProjectMember{}
	err := s.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, store.NewStoreError("list members", "member", err)
	}
	return members, nil
}

func (s *PostgresStore) IsMember(ctx context.Context, projectID models.ProjectID, userID models.UserID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&count).Error
	if err != nil {
		return false, store.NewStoreError("check membership", "member", err)
	}
	return count > 0, nil
}

// Status operations

func (s *PostgresStore) CreateStatus(ctx context.Context, status *models.TaskStatus) error {
	return store.NewStoreError("create status", "status",
		s.db.WithContext(ctx).Create(status).Error)
}

func (s *PostgresStore) GetStatus(ctx context.Context, id models.StatusID) (*models.TaskStatus, error) {
	var status models.TaskStatus
	err := s.db.WithContext(ctx).First(&status, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, store.NewStoreError("get status", "status", err)
	}
	return &status, nil
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, status *models.TaskStatus) error {
	res := s.db.WithContext(ctx).Model(&models.TaskStatus{}).
		Where("id = ?", status.ID).
		Updates(map[string]any{
			"name":        status.Name,
			"color":       status.Color,
			"order_index": status.OrderIndex,
		})
	if res.Error != nil {
		return store.NewStoreError("update status", "status", res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteStatus(ctx context.Context, id models.StatusID) error {
	res := s.db.WithContext(ctx).Delete(&models.TaskStatus{}, "id = ?", id)
	if res.Error != nil {
		return store.NewStoreError("delete status", "status", res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListStatuses(ctx context.Context, projectID models.ProjectID) ([]*models.TaskStatus, error) {
	statuses := []*models.TaskStatus{}
	err := s.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("order_index ASC").
		Find(&statuses).Error
	if err != nil {
		return nil, store.NewStoreError("list statuses", "status", err)
	}
	return statuses, nil
}

// Task operations

func (s *PostgresStore) CreateTask(ctx context.Context, task *models.Task) error {
	return store.NewStoreError("create task", "task",
		s.db.WithContext(ctx).Create(task).Error)
}

func (s *PostgresStore) GetTask(ctx context.Context, id models.TaskID) (*models.Task, error) {
	var task models.Task
	err := s.db.WithContext(ctx).First(&task, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, store.NewStoreError("get task", "task", err)
	}
	return &task, nil
}

func (s *PostgresStore) UpdateTask(ctx context.Context, task *models.Task) error {
	task.UpdatedAt = time.Now()
	res := s.db.WithContext(ctx).Model(&models.Task{}).
		Where("id = ?", task.ID).
		Select("status_id", "title", "description", "priority", "assignee_id",
			"due_date", "estimated_hours", "tags", "is_blocking", "order_index", "updated_at").
		Updates(task)
	if res.Error != nil {
		return store.NewStoreError("update task", "task", res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteTask(ctx context.Context, id models.TaskID) error {
	res := s.db.WithContext(ctx).Delete(&models.Task{}, "id = ?", id)
	if res.Error != nil {
		return store.NewStoreError("delete task", "task", res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListTasks(ctx context.Context, projectID models.ProjectID) ([]*models.Task, error) {
	tasks := []*models.Task{}
	err := s.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("order_index ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, store.NewStoreError("list tasks", "task", err)
	}
	return tasks, nil
}

func (s *PostgresStore) ListScheduledTasks(ctx context.Context, projectID models.ProjectID) ([]*models.Task, error) {
	tasks := []*models.Task{}
	err := s.db.WithContext(ctx).
		Where("project_id = ? AND due_date IS NOT NULL", projectID).
		Order("due_date ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, store.NewStoreError("list scheduled tasks", "task", err)
	}
	return tasks, nil
}

func (s *PostgresStore) ListTasksDueBetween(ctx context.Context, from, until time.Time) ([]*models.Task, error) {
	tasks := []*models.Task{}
	err := s.db.WithContext(ctx).
		Where("due_date IS NOT NULL AND due_date >= ? AND due_date <= ?", from, until).
		Order("due_date ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, store.NewStoreError("list due tasks", "task", err)
	}
	return tasks, nil
}

// User operations

func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	return store.NewStoreError("create user", "user",
		s.db.WithContext(ctx).Create(user).Error)
}

func (s *PostgresStore) GetUser(ctx context.Context, id models.UserID) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, store.NewStoreError("get user", "user", err)
	}
	return &user, nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, store.NewStoreError("get user by email", "user", err)
	}
	return &user, nil
}

func (s *PostgresStore) UpdateUser(ctx context.Context, user *models.User) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{
			"email":      user.Email,
			"name":       user.Name,
			"avatar_url": user.AvatarURL,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return store.NewStoreError("update user", "user", res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteUser(ctx context.Context, id models.UserID) error {
	res := s.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if res.Error != nil {
		return store.NewStoreError("delete user", "user", res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Notification operations

func (s *PostgresStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	return store.NewStoreError("create notification", "notification",
		s.db.WithContext(ctx).Create(n).Error)
}

func (s *PostgresStore) ListNotifications(ctx context.Context, userID models.UserID) ([]*models.Notification, error) {
	notifications := []*models.Notification{}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&notifications).Error
	if err != nil {
		return nil, store.NewStoreError("list notifications", "notification", err)
	}
	return notifications, nil
}

func (s *PostgresStore) MarkNotificationRead(ctx context.Context, id models.NotificationID) error {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ?", id).
		Update("read", true)
	if res.Error != nil {
		return store.NewStoreError("mark notification read", "notification", res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Package models defines the task-tracking domain entities shared by every
// store backend and by the board core.
//
// All entities use typed IDs (see typed_ids.go) so that a TaskID can never be
// passed where a StatusID is expected. JSON field names follow the wire
// format of the HTTP API; GORM tags describe the PostgreSQL schema; CBOR
// marshaling of the IDs produces SurrealDB RecordIDs.
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Priority is the urgency level of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// ParsePriority validates a priority string.
func ParsePriority(s string) (Priority, error) {
	switch p := Priority(s); p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return p, nil
	}
	return "", fmt.Errorf("invalid priority %q", s)
}

// Valid reports whether p is one of the four known priorities.
func (p Priority) Valid() bool {
	_, err := ParsePriority(string(p))
	return err == nil
}

// MemberRole is the role of a user within a project.
type MemberRole string

const (
	RoleOwner  MemberRole = "owner"
	RoleAdmin  MemberRole = "admin"
	RoleMember MemberRole = "member"
)

// NotificationKind is the closed set of user-facing notification types.
// The original duck-typed payloads are replaced by this enum plus the
// structured Title/Message fields.
type NotificationKind string

const (
	NotifyTaskAssigned        NotificationKind = "task_assigned"
	NotifyTaskCompleted       NotificationKind = "task_completed"
	NotifyDeadlineApproaching NotificationKind = "deadline_approaching"
	NotifyMention             NotificationKind = "mention"
	NotifyComment             NotificationKind = "comment"
)

// Tags is an ordered list of task labels. Stored as JSONB in PostgreSQL and
// as a native array in SurrealDB.
type Tags []string

// Value implements driver.Valuer for database storage
func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		return nil, nil
	}
	return json.Marshal(t)
}

// Scan implements sql.Scanner for database retrieval
func (t *Tags) Scan(value any) error {
	if value == nil {
		*t = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		bytes = []byte(value.(string))
	}
	return json.Unmarshal(bytes, t)
}

// Project is the top-level container owning statuses and tasks.
type Project struct {
	ID          ProjectID      `gorm:"type:uuid;primary_key" json:"id"`
	Name        string         `gorm:"not null" json:"name"`
	Description string         `json:"description"`
	OwnerID     UserID         `gorm:"type:uuid;not null" json:"owner_id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// BeforeCreate hook to generate ID if not set
func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID.IsZero() {
		p.ID = NewProjectID()
	}
	return nil
}

// ProjectMember records that a user belongs to a project. Membership is the
/// only authorization concept in the system: a user either is or is not a
// member.
type ProjectMember struct {
	ID        MemberID   `gorm:"type:uuid;primary_key" json:"id"`
	ProjectID ProjectID  `gorm:"type:uuid;not null;index" json:"project_id"`
	UserID    UserID     `gorm:"type:uuid;not null;index" json:"user_id"`
	Role      MemberRole `gorm:"not null;default:member" json:"role"`
	CreatedAt time.Time  `json:"created_at"`
}

// BeforeCreate hook to generate ID if not set
func (m *ProjectMember) BeforeCreate(tx *gorm.DB) error {
	if m.ID.IsZero() {
		m.ID = NewMemberID()
	}
	return nil
}

// TaskStatus is one board column. Columns are ordered by OrderIndex
// ascending within a project; uniqueness of OrderIndex is a store-side
// concern and is not enforced here.
type TaskStatus struct {
	ID         StatusID  `gorm:"type:uuid;primary_key" json:"id"`
	ProjectID  ProjectID `gorm:"type:uuid;not null;index" json:"project_id"`
	Name       string    `gorm:"not null" json:"name"`
	Color      string    `json:"color"`
	OrderIndex int       `gorm:"not null" json:"order_index"`
	CreatedAt  time.Time `json:"created_at"`
}

// BeforeCreate hook to generate ID if not set
func (s *TaskStatus) BeforeCreate(tx *gorm.DB) error {
	if s.ID.IsZero() {
		s.ID = NewStatusID()
	}
	return nil
}

// Task is a single card on the board. StatusID is nil for tasks that have no
// column; a StatusID referencing a column of a different project is treated
// as dangling by the board and grouped with the unassigned tasks.
type Task struct {
	ID             TaskID     `gorm:"type:uuid;primary_key" json:"id"`
	ProjectID      ProjectID  `gorm:"type:uuid;not null;index" json:"project_id"`
	StatusID       *StatusID  `gorm:"type:uuid;index" json:"status_id"`
	Title          string     `gorm:"not null" json:"title"`
	Description    string     `json:"description"`
	Priority       Priority   `gorm:"not null;default:medium" json:"priority"`
	AssigneeID     *UserID    `gorm:"type:uuid" json:"assignee_id"`
	CreatorID      UserID     `gorm:"type:uuid;not null" json:"creator_id"`
	DueDate        *time.Time `json:"due_date"`
	EstimatedHours *int       `json:"estimated_hours"`
	Tags           Tags       `gorm:"type:jsonb" json:"tags"`
	IsBlocking     bool       `json:"is_blocking"`
	OrderIndex     int        `gorm:"not null" json:"order_index"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// BeforeCreate hook to generate ID if not set
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID.IsZero() {
		t.ID = NewTaskID()
	}
	return nil
}

// InStatus reports whether the task currently sits in the given column.
func (t *Task) InStatus(id StatusID) bool {
	return t.StatusID != nil && *t.StatusID == id
}

// Overdue reports whether the task has a due date in the past.
func (t *Task) Overdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now)
}

// User is a minimal account entity referenced by projects and tasks.
type User struct {
	ID        UserID    `gorm:"type:uuid;primary_key" json:"id"`
	Email     string    `gorm:"unique;not null" json:"email"`
	Name      string    `gorm:"not null" json:"name"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate hook to generate ID if not set
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID.IsZero() {
		u.ID = NewUserID()
	}
	return nil
}

// Notification is a persisted user-facing event, surfaced by the
// notifications list in the UI.
type Notification struct {
	ID        NotificationID   `gorm:"type:uuid;primary_key" json:"id"`
	UserID    UserID           `gorm:"type:uuid;not null;index" json:"user_id"`
	Kind      NotificationKind `gorm:"not null" json:"kind"`
	Title     string           `gorm:"not null" json:"title"`
	Message   string           `json:"message"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"created_at"`
}

// BeforeCreate hook to generate ID if not set
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID.IsZero() {
		n.ID = NewNotificationID()
	}
	return nil
}

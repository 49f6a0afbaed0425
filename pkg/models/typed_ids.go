package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	surrealdb_models "github.com/surrealdb/surrealdb.go/pkg/models"
)

// Typed IDs prevent mixing identifiers of different entities at compile time.
// Each type knows its SurrealDB table so it can marshal to a RecordID (CBOR
// tag 8) for the SurrealDB backend, to a plain string for JSON, and to a
// uuid column for the PostgreSQL backend.

// ProjectID is a typed ID for projects
type ProjectID struct {
	uuid uuid.UUID
}

func NewProjectID() ProjectID {
	return ProjectID{uuid: uuid.New()}
}

func NewProjectIDFromUUID(id uuid.UUID) ProjectID {
	return ProjectID{uuid: id}
}

func ParseProjectID(s string) (ProjectID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return ProjectID{}, fmt.Errorf("invalid project ID: %w", err)
	}
	return ProjectID{uuid: id}, nil
}

func (p ProjectID) UUID() uuid.UUID { return p.uuid }
func (p ProjectID) String() string  { return p.uuid.String() }
func (p ProjectID) IsZero() bool    { return p.uuid == uuid.Nil }

func (p ProjectID) RecordID() surrealdb_models.RecordID {
	return surrealdb_models.RecordID{Table: "projects", ID: p.uuid.String()}
}

func (p ProjectID) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.uuid.String())
}

func (p *ProjectID) UnmarshalJSON(data []byte) error {
	return unmarshalJSONID(data, &p.uuid)
}

func (p ProjectID) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(cbor.Tag{
		Number:  8,
		Content: []any{"projects", p.uuid.String()},
	})
}

func (p *ProjectID) UnmarshalCBOR(data []byte) error {
	return unmarshalCBORID(data, "projects", &p.uuid)
}

func (p ProjectID) Value() (driver.Value, error) {
	if p.IsZero() {
		return nil, nil
	}
	return p.uuid.String(), nil
}

func (p *ProjectID) Scan(value any) error {
	return scanUUID(value, &p.uuid)
}

func (ProjectID) GormDataType() string { return "uuid" }

// StatusID is a typed ID for task statuses (board columns)
type StatusID struct {
	uuid uuid.UUID
}

func NewStatusID() StatusID {
	return StatusID{uuid: uuid.New()}
}

func NewStatusIDFromUUID(id uuid.UUID) StatusID {
	return StatusID{uuid: id}
}

func ParseStatusID(s string) (StatusID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return StatusID{}, fmt.Errorf("invalid status ID: %w", err)
	}
	return StatusID{uuid: id}, nil
}

func (s StatusID) UUID() uuid.UUID { return s.uuid }
func (s StatusID) String() string  { return s.uuid.String() }
func (s StatusID) IsZero() bool    { return s.uuid == uuid.Nil }

func (s StatusID) RecordID() surrealdb_models.RecordID {
	return surrealdb_models.RecordID{Table: "task_statuses", ID: s.uuid.String()}
}

func (s StatusID) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.uuid.String())
}

func (s *StatusID) UnmarshalJSON(data []byte) error {
	return unmarshalJSONID(data, &s.uuid)
}

func (s StatusID) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(cbor.Tag{
		Number:  8,
		Content: []any{"task_statuses", s.uuid.String()},
	})
}

func (s *StatusID) UnmarshalCBOR(data []byte) error {
	return unmarshalCBORID(data, "task_statuses", &s.uuid)
}

func (s StatusID) Value() (driver.Value, error) {
	if s.IsZero() {
		return nil, nil
	}
	return s.uuid.String(), nil
}

func (s *StatusID) Scan(value any) error {
	return scanUUID(value, &s.uuid)
}

func (StatusID) GormDataType() string { return "uuid" }

// TaskID is a typed ID for tasks
type TaskID struct {
	uuid uuid.UUID
}

func NewTaskID() TaskID {
	return TaskID{uuid: uuid.New()}
}

func NewTaskIDFromUUID(id uuid.UUID) TaskID {
	return TaskID{uuid: id}
}

func ParseTaskID(s string) (TaskID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return TaskID{}, fmt.Errorf("invalid task ID: %w", err)
	}
	return TaskID{uuid: id}, nil
}

func (t TaskID) UUID() uuid.UUID { return t.uuid }
func (t TaskID) String() string  { return t.uuid.String() }
func (t TaskID) IsZero() bool    { return t.uuid == uuid.Nil }

func (t TaskID) RecordID() surrealdb_models.RecordID {
	return surrealdb_models.RecordID{Table: "tasks", ID: t.uuid.String()}
}

func (t TaskID) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.uuid.String())
}

func (t *TaskID) UnmarshalJSON(data []byte) error {
	return unmarshalJSONID(data, &t.uuid)
}

func (t TaskID) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(cbor.Tag{
		Number:  8,
		Content: []any{"tasks", t.uuid.String()},
	})
}

func (t *TaskID) UnmarshalCBOR(data []byte) error {
	return unmarshalCBORID(data, "tasks", &t.uuid)
}

func (t TaskID) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	return t.uuid.String(), nil
}

func (t *TaskID) Scan(value any) error {
	return scanUUID(value, &t.uuid)
}

func (TaskID) GormDataType() string { return "uuid" }

// UserID is a typed ID for users
type UserID struct {
	uuid uuid.UUID
}

func NewUserID() UserID {
	return UserID{uuid: uuid.New()}
}

func NewUserIDFromUUID(id uuid.UUID) UserID {
	return UserID{uuid: id}
}

func ParseUserID(s string) (UserID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return UserID{}, fmt.Errorf("invalid user ID: %w", err)
	}
	return UserID{uuid: id}, nil
}

func (u UserID) UUID() uuid.UUID { return u.uuid }
func (u UserID) String() string  { return u.uuid.String() }
func (u UserID) IsZero() bool    { return u.uuid == uuid.Nil }

func (u UserID) RecordID() surrealdb_models.RecordID {
	return surrealdb_models.RecordID{Table: "users", ID: u.uuid.String()}
}

func (u UserID) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.uuid.String())
}

func (u *UserID) UnmarshalJSON(data []byte) error {
	return unmarshalJSONID(data, &u.uuid)
}

func (u UserID) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(cbor.Tag{
		Number:  8,
		Content: []any{"users", u.uuid.String()},
	})
}

func (u *UserID) UnmarshalCBOR(data []byte) error {
	return unmarshalCBORID(data, "users", &u.uuid)
}

func (u UserID) Value() (driver.Value, error) {
	if u.IsZero() {
		return nil, nil
	}
	return u.uuid.String(), nil
}

func (u *UserID) Scan(value any) error {
	return scanUUID(value, &u.uuid)
}

func (UserID) GormDataType() string { return "uuid" }

// MemberID is a typed ID for project memberships
type MemberID struct {
	uuid uuid.UUID
}

func NewMemberID() MemberID {
	return MemberID{uuid: uuid.New()}
}

func ParseMemberID(s string) (MemberID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return MemberID{}, fmt.Errorf("invalid member ID: %w", err)
	}
	return MemberID{uuid: id}, nil
}

func (m MemberID) UUID() uuid.UUID { return m.uuid }
func (m MemberID) String() string  { return m.uuid.String() }
func (m MemberID) IsZero() bool    { return m.uuid == uuid.Nil }

func (m MemberID) RecordID() surrealdb_models.RecordID {
	return surrealdb_models.RecordID{Table: "project_members", ID: m.uuid.String()}
}

func (m MemberID) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.uuid.String())
}

func (m *MemberID) UnmarshalJSON(data []byte) error {
	return unmarshalJSONID(data, &m.uuid)
}

func (m MemberID) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(cbor.Tag{
		Number:  8,
		Content: []any{"project_members", m.uuid.String()},
	})
}

func (m *MemberID) UnmarshalCBOR(data []byte) error {
	return unmarshalCBORID(data, "project_members", &m.uuid)
}

func (m MemberID) Value() (driver.Value, error) {
	if m.IsZero() {
		return nil, nil
	}
	return m.uuid.String(), nil
}

func (m *MemberID) Scan(value any) error {
	return scanUUID(value, &m.uuid)
}

func (MemberID) GormDataType() string { return "uuid" }

// NotificationID is a typed ID for notifications
type NotificationID struct {
	uuid uuid.UUID
}

func NewNotificationID() NotificationID {
	return NotificationID{uuid: uuid.New()}
}

func ParseNotificationID(s string) (NotificationID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return NotificationID{}, fmt.Errorf("invalid notification ID: %w", err)
	}
	return NotificationID{uuid: id}, nil
}

func (n NotificationID) UUID() uuid.UUID { return n.uuid }
func (n NotificationID) String() string  { return n.uuid.String() }
func (n NotificationID) IsZero() bool    { return n.uuid == uuid.Nil }

func (n NotificationID) RecordID() surrealdb_models.RecordID {
	return surrealdb_models.RecordID{Table: "notifications", ID: n.uuid.String()}
}

func (n NotificationID) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.uuid.String())
}

func (n *NotificationID) UnmarshalJSON(data []byte) error {
	return unmarshalJSONID(data, &n.uuid)
}

func (n NotificationID) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(cbor.Tag{
		Number:  8,
		Content: []any{"notifications", n.uuid.String()},
	})
}

func (n *NotificationID) UnmarshalCBOR(data []byte) error {
	return unmarshalCBORID(data, "notifications", &n.uuid)
}

func (n NotificationID) Value() (driver.Value, error) {
	if n.IsZero() {
		return nil, nil
	}
	return n.uuid.String(), nil
}

func (n *NotificationID) Scan(value any) error {
	return scanUUID(value, &n.uuid)
}

func (NotificationID) GormDataType() string { return "uuid" }

// Helper functions

// unmarshalJSONID parses a JSON string into a UUID.
func unmarshalJSONID(data []byte, target *uuid.UUID) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return err
	}
	*target = id
	return nil
}

// scanUUID is a helper for implementing sql.Scanner for PostgreSQL/GORM
func scanUUID(value any, target *uuid.UUID) error {
	if value == nil {
		*target = uuid.Nil
		return nil
	}

	switch v := value.(type) {
	case string:
		id, err := uuid.Parse(v)
		if err != nil {
			return err
		}
		*target = id
	case []byte:
		id, err := uuid.ParseBytes(v)
		if err != nil {
			return err
		}
		*target = id
	default:
		return fmt.Errorf("cannot scan type %T into UUID", value)
	}
	return nil
}

// unmarshalCBORID is a helper for unmarshaling SurrealDB RecordID from CBOR.
// SurrealDB uses CBOR tag 8 to identify RecordID types in its binary protocol.
// The RecordID is encoded as [table_name, id_string] within the tag.
func unmarshalCBORID(data []byte, expectedTable string, target *uuid.UUID) error {
	if len(data) == 0 {
		return fmt.Errorf("empty CBOR data")
	}

	// Check if this is a CBOR tag (major type 6)
	majorType := data[0] >> 5
	if majorType != 6 {
		return fmt.Errorf("expected CBOR tag for RecordID, got major type %d", majorType)
	}

	var tag cbor.Tag
	if err := cbor.Unmarshal(data, &tag); err != nil {
		return fmt.Errorf("failed to unmarshal CBOR tag: %w", err)
	}

	// SurrealDB uses tag 8 for RecordID
	if tag.Number != 8 {
		return fmt.Errorf("expected RecordID tag (8), got %d", tag.Number)
	}

	arr, ok := tag.Content.([]any)
	if !ok || len(arr) != 2 {
		return fmt.Errorf("invalid RecordID format: expected [table, id] array")
	}

	table, ok := arr[0].(string)
	if !ok {
		return fmt.Errorf("invalid RecordID format: table name must be string")
	}

	if table != expectedTable {
		return fmt.Errorf("expected table %s, got %s", expectedTable, table)
	}

	idStr, ok := arr[1].(string)
	if !ok {
		return fmt.Errorf("invalid RecordID format: ID must be string")
	}

	parsedUUID, err := uuid.Parse(idStr)
	if err != nil {
		return fmt.Errorf("invalid UUID in RecordID: %w", err)
	}

	*target = parsedUUID
	return nil
}

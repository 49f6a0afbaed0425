package planboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planboard/planboard/pkg/models"
	"github.com/planboard/planboard/pkg/store/memory"
)

func newTestApp(t *testing.T) (*App, *memory.Store) {
	t.Helper()
	mem := memory.New()
	app := NewWithStore(&Config{ServerPort: "0"}, mem, zerolog.Nop())
	t.Cleanup(func() { _ = app.Close() })
	return app, mem
}

func doRequest(t *testing.T, app *App, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func createTestUser(t *testing.T, app *App, name, email string) models.User {
	t.Helper()
	rec := doRequest(t, app, "POST", "/api/users", models.User{Name: name, Email: email})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[models.User](t, rec)
}

func createTestProject(t *testing.T, app *App, owner models.User) (models.Project, []models.TaskStatus) {
	t.Helper()
	rec := doRequest(t, app, "POST", "/api/projects", models.Project{Name: "Launch", OwnerID: owner.ID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	project := decode[models.Project](t, rec)

	rec = doRequest(t, app, "GET", fmt.Sprintf("/api/projects/%s/statuses", project.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	statuses := decode[[]models.TaskStatus](t, rec)
	return project, statuses
}

func TestHealth(t *testing.T) {
	app, _ := newTestApp(t)
	rec := doRequest(t, app, "GET", "/api/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateProjectSeedsDefaults(t *testing.T) {
	app, _ := newTestApp(t)
	owner := createTestUser(t, app, "Alice", "alice@example.com")
	project, statuses := createTestProject(t, app, owner)

	require.Len(t, statuses, 4)
	names := []string{statuses[0].Name, statuses[1].Name, statuses[2].Name, statuses[3].Name}
	assert.Equal(t, []string{"To Do", "In Progress", "Review", "Done"}, names)

	rec := doRequest(t, app, "GET", fmt.Sprintf("/api/projects/%s/members", project.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	members := decode[[]models.ProjectMember](t, rec)
	require.Len(t, members, 1)
	assert.Equal(t, owner.ID, members[0].UserID)
	assert.Equal(t, models.RoleOwner, members[0].Role)
}

func TestCreateProjectValidation(t *testing.T) {
	app, _ := newTestApp(t)
	owner := createTestUser(t, app, "Alice", "alice@example.com")

	rec := doRequest(t, app, "POST", "/api/projects", models.Project{Name: "  ", OwnerID: owner.ID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, app, "POST", "/api/projects", models.Project{Name: "No owner"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteProjectCascades(t *testing.T) {
	app, _ := newTestApp(t)
	owner := createTestUser(t, app, "Alice", "alice@example.com")
	project, _ := createTestProject(t, app, owner)

	rec := doRequest(t, app, "POST", "/api/tasks", models.Task{
		ProjectID: project.ID, Title: "doomed", CreatorID: owner.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	task := decode[models.Task](t, rec)

	rec = doRequest(t, app, "DELETE", fmt.Sprintf("/api/projects/%s", project.ID), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, app, "GET", fmt.Sprintf("/api/tasks/%s", task.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = doRequest(t, app, "GET", fmt.Sprintf("/api/projects/%s/statuses", project.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]models.TaskStatus](t, rec))
}

func TestCreateTaskValidationNeverReachesStore(t *testing.T) {
	app, _ := newTestApp(t)
	owner := createTestUser(t, app, "Alice", "alice@example.com")
	project, _ := createTestProject(t, app, owner)

	rec := doRequest(t, app, "POST", "/api/tasks", models.Task{ProjectID: project.ID, Title: "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, app, "GET", fmt.Sprintf("/api/projects/%s/tasks", project.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]models.Task](t, rec), "rejected create must not persist anything")

	// Updates are validated the same way.
	rec = doRequest(t, app, "POST", "/api/tasks", models.Task{ProjectID: project.ID, Title: "Real task"})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[models.Task](t, rec)

	rec = doRequest(t, app, "PUT", fmt.Sprintf("/api/tasks/%s", created.ID), models.Task{Title: "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, app, "GET", fmt.Sprintf("/api/tasks/%s", created.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Real task", decode[models.Task](t, rec).Title)
}

func TestCreateTaskDefaults(t *testing.T) {
	app, _ := newTestApp(t)
	owner := createTestUser(t, app, "Alice", "alice@example.com")
	project, statuses := createTestProject(t, app, owner)

	rec := doRequest(t, app, "POST", "/api/tasks", models.Task{
		ProjectID: project.ID, Title: "first", CreatorID: owner.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	task := decode[models.Task](t, rec)

	require.NotNil(t, task.StatusID)
	assert.Equal(t, statuses[0].ID, *task.StatusID, "new tasks land in the first column")
	assert.Equal(t, models.PriorityMedium, task.Priority)

	rec = doRequest(t, app, "POST", "/api/tasks", models.Task{
		ProjectID: project.ID, Title: "second", CreatorID: owner.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	second := decode[models.Task](t, rec)
	assert.Greater(t, second.OrderIndex, task.OrderIndex)
}

func TestCreateTaskInvalidPriority(t *testing.T) {
	app, _ := newTestApp(t)
	owner := createTestUser(t, app, "Alice", "alice@example.com")
	project, _ := createTestProject(t, app, owner)

	rec := doRequest(t, app, "POST", "/api/tasks", models.Task{
		ProjectID: project.ID, Title: "t", Priority: models.Priority("asap"),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTaskAssignmentNotifies(t *testing.T) {
	app, _ := newTestApp(t)
	owner := createTestUser(t, app, "Alice", "alice@example.com")
	assignee := createTestUser(t, app, "Bob", "bob@example.com")
	project, _ := createTestProject(t, app, owner)

	rec := doRequest(t, app, "POST", "/api/tasks", models.Task{
		ProjectID: project.ID, Title: "review PR", CreatorID: owner.ID, AssigneeID: &assignee.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, app, "GET", fmt.Sprintf("/api/users/%s/notifications", assignee.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	notifications := decode[[]models.Notification](t, rec)
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotifyTaskAssigned, notifications[0].Kind)
	assert.False(t, notifications[0].Read)

	rec = doRequest(t, app, "PUT", fmt.Sprintf("/api/notifications/%s/read", notifications[0].ID), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = doRequest(t, app, "GET", fmt.Sprintf("/api/users/%s/notifications", assignee.ID), nil)
	notifications = decode[[]models.Notification](t, rec)
	require.Len(t, notifications, 1)
	assert.True(t, notifications[0].Read)
}

func TestMoveTaskEndpoint(t *testing.T) {
	app, _ := newTestApp(t)
	owner := createTestUser(t, app, "Alice", "alice@example.com")
	assignee := createTestUser(t, app, "Bob", "bob@example.com")
	project, statuses := createTestProject(t, app, owner)
	done := statuses[3]

	rec := doRequest(t, app, "POST", "/api/tasks", models.Task{
		ProjectID: project.ID, Title: "ship it", CreatorID: owner.ID, AssigneeID: &assignee.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	task := decode[models.Task](t, rec)

	rec = doRequest(t, app, "POST", fmt.Sprintf("/api/tasks/%s/move", task.ID),
		moveTaskRequest{StatusID: done.ID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	moved := decode[models.Task](t, rec)
	require.NotNil(t, moved.StatusID)
	assert.Equal(t, done.ID, *moved.StatusID)

	// Moving into a done column notifies the assignee.
	rec = doRequest(t, app, "GET", fmt.Sprintf("/api/users/%s/notifications", assignee.ID), nil)
	notifications := decode[[]models.Notification](t, rec)
	var kinds []models.NotificationKind
	for _, n := range notifications {
		kinds = append(kinds, n.Kind)
	}
	assert.Contains(t, kinds, models.NotifyTaskCompleted)
}

func TestMoveTaskRejectsForeignColumn(t *testing.T) {
	app, _ := newTestApp(t)
	owner := createTestUser(t, app, "Alice", "alice@example.com")
	project, _ := createTestProject(t, app, owner)
	_, otherStatuses := createTestProject(t, app, owner)

	rec := doRequest(t, app, "POST", "/api/tasks", models.Task{
		ProjectID: project.ID, Title: "stay home", CreatorID: owner.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	task := decode[models.Task](t, rec)

	rec = doRequest(t, app, "POST", fmt.Sprintf("/api/tasks/%s/move", task.ID),
		moveTaskRequest{StatusID: otherStatuses[0].ID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListTasksWithFilters(t *testing.T) {
	app, _ := newTestApp(t)
	owner := createTestUser(t, app, "Alice", "alice@example.com")
	project, _ := createTestProject(t, app, owner)

	for _, spec := range []struct {
		title    string
		priority models.Priority
	}{
		{"fix login bug", models.PriorityUrgent},
		{"update docs", models.PriorityLow},
		{"fix signup bug", models.PriorityHigh},
	} {
		rec := doRequest(t, app, "POST", "/api/tasks", models.Task{
			ProjectID: project.ID, Title: spec.title, Priority: spec.priority, CreatorID: owner.ID,
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doRequest(t, app, "GET", fmt.Sprintf("/api/projects/%s/tasks?q=fix", project.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Task](t, rec), 2)

	rec = doRequest(t, app, "GET", fmt.Sprintf("/api/projects/%s/tasks?priority=urgent,high", project.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Task](t, rec), 2)

	rec = doRequest(t, app, "GET", fmt.Sprintf("/api/projects/%s/tasks?q=fix&priority=urgent", project.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Task](t, rec), 1)

	rec = doRequest(t, app, "GET", fmt.Sprintf("/api/projects/%s/tasks?priority=asap", project.ID), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCalendarWindow(t *testing.T) {
	app, _ := newTestApp(t)
	owner := createTestUser(t, app, "Alice", "alice@example.com")
	project, _ := createTestProject(t, app, owner)

	now := time.Now().UTC().Truncate(time.Second)
	nearDue := now.Add(24 * time.Hour)
	farDue := now.Add(30 * 24 * time.Hour)
	for _, spec := range []struct {
		title string
		due   *time.Time
	}{
		{"due soon", &nearDue},
		{"due far", &farDue},
		{"unscheduled", nil},
	} {
		rec := doRequest(t, app, "POST", "/api/tasks", models.Task{
			ProjectID: project.ID, Title: spec.title, CreatorID: owner.ID, DueDate: spec.due,
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doRequest(t, app, "GET", fmt.Sprintf("/api/projects/%s/calendar", project.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Task](t, rec), 2, "only scheduled tasks appear on the calendar")

	path := fmt.Sprintf("/api/projects/%s/calendar?from=%s&until=%s",
		project.ID,
		now.Format(time.RFC3339),
		now.Add(7*24*time.Hour).Format(time.RFC3339))
	rec = doRequest(t, app, "GET", path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	window := decode[[]models.Task](t, rec)
	require.Len(t, window, 1)
	assert.Equal(t, "due soon", window[0].Title)
}

func TestReports(t *testing.T) {
	app, _ := newTestApp(t)
	owner := createTestUser(t, app, "Alice", "alice@example.com")
	assignee := createTestUser(t, app, "Bob", "bob@example.com")
	project, statuses := createTestProject(t, app, owner)
	done := statuses[3]

	past := time.Now().Add(-72 * time.Hour)
	create := func(task models.Task) models.Task {
		task.ProjectID = project.ID
		task.CreatorID = owner.ID
		rec := doRequest(t, app, "POST", "/api/tasks", task)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		return decode[models.Task](t, rec)
	}
	create(models.Task{Title: "overdue one", Priority: models.PriorityUrgent, DueDate: &past})
	create(models.Task{Title: "assigned", Priority: models.PriorityLow, AssigneeID: &assignee.ID})
	shipped := create(models.Task{Title: "shipped", Priority: models.PriorityMedium})

	rec := doRequest(t, app, "POST", fmt.Sprintf("/api/tasks/%s/move", shipped.ID),
		moveTaskRequest{StatusID: done.ID})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, app, "GET", fmt.Sprintf("/api/projects/%s/reports", project.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	report := decode[ProjectReport](t, rec)

	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 1, report.Completed)
	assert.Equal(t, 1, report.Overdue)
	assert.Equal(t, 2, report.Unassigned)
	assert.Equal(t, 1, report.ByStatus["Done"])
	assert.Equal(t, 2, report.ByStatus["To Do"])
	assert.Equal(t, 1, report.ByPriority[models.PriorityUrgent])
	assert.Equal(t, 1, report.ByAssignee[assignee.ID.String()])
}

func TestReadOnlyModeRejectsWrites(t *testing.T) {
	mem := memory.New()
	app := NewWithStore(&Config{ServerPort: "0", ReadOnly: true}, mem, zerolog.Nop())
	t.Cleanup(func() { _ = app.Close() })

	rec := doRequest(t, app, "POST", "/api/users", models.User{Name: "Alice", Email: "alice@example.com"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Reads still work.
	rec = doRequest(t, app, "GET", "/api/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Toggling read-only back on the running app re-enables writes.
	app.SetReadOnly(false)
	rec = doRequest(t, app, "POST", "/api/users", models.User{Name: "Alice", Email: "alice@example.com"})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestStoreFailureSurfacesAsServerError(t *testing.T) {
	app, mem := newTestApp(t)
	owner := createTestUser(t, app, "Alice", "alice@example.com")

	mem.FailWith("create project", fmt.Errorf("disk full"))
	rec := doRequest(t, app, "POST", "/api/projects", models.Project{Name: "Launch", OwnerID: owner.ID})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	mem.ClearFailures()
	rec = doRequest(t, app, "POST", "/api/projects", models.Project{Name: "Launch", OwnerID: owner.ID})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestMemberLifecycle(t *testing.T) {
	app, _ := newTestApp(t)
	owner := createTestUser(t, app, "Alice", "alice@example.com")
	member := createTestUser(t, app, "Bob", "bob@example.com")
	project, _ := createTestProject(t, app, owner)

	rec := doRequest(t, app, "POST", fmt.Sprintf("/api/projects/%s/members", project.ID),
		models.ProjectMember{UserID: member.ID})
	require.Equal(t, http.StatusCreated, rec.Code)
	added := decode[models.ProjectMember](t, rec)
	assert.Equal(t, models.RoleMember, added.Role)

	// Adding the same user twice conflicts.
	rec = doRequest(t, app, "POST", fmt.Sprintf("/api/projects/%s/members", project.ID),
		models.ProjectMember{UserID: member.ID})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doRequest(t, app, "DELETE", fmt.Sprintf("/api/projects/%s/members/%s", project.ID, member.ID), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, app, "GET", fmt.Sprintf("/api/projects/%s/members", project.ID), nil)
	members := decode[[]models.ProjectMember](t, rec)
	require.Len(t, members, 1)
	assert.Equal(t, owner.ID, members[0].UserID)
}

func TestSweepDeadlines(t *testing.T) {
	app, _ := newTestApp(t)
	owner := createTestUser(t, app, "Alice", "alice@example.com")
	assignee := createTestUser(t, app, "Bob", "bob@example.com")
	project, _ := createTestProject(t, app, owner)

	now := time.Now()
	soon := now.Add(6 * time.Hour)
	far := now.Add(72 * time.Hour)
	for _, spec := range []struct {
		title    string
		due      *time.Time
		assignee *models.UserID
	}{
		{"due soon assigned", &soon, &assignee.ID},
		{"due soon unassigned", &soon, nil},
		{"due far assigned", &far, &assignee.ID},
	} {
		rec := doRequest(t, app, "POST", "/api/tasks", models.Task{
			ProjectID: project.ID, Title: spec.title, CreatorID: owner.ID,
			DueDate: spec.due, AssigneeID: spec.assignee,
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	require.NoError(t, app.sweepDeadlines(context.Background(), now))

	rec := doRequest(t, app, "GET", fmt.Sprintf("/api/users/%s/notifications", assignee.ID), nil)
	notifications := decode[[]models.Notification](t, rec)
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotifyDeadlineApproaching, notifications[0].Kind)
	assert.Contains(t, notifications[0].Message, "due soon assigned")
}

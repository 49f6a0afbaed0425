package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planboard/planboard/pkg/models"
	"github.com/planboard/planboard/pkg/store"
	"github.com/planboard/planboard/pkg/store/memory"
)

func seedProject(t *testing.T, s *memory.Store) (models.User, models.Project) {
	t.Helper()
	ctx := context.Background()
	owner := models.User{Name: "Alice", Email: "alice@example.com"}
	require.NoError(t, s.CreateUser(ctx, &owner))
	project := models.Project{Name: "Launch", OwnerID: owner.ID}
	require.NoError(t, s.CreateProject(ctx, &project))
	return owner, project
}

func TestProjectCRUD(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	owner, project := seedProject(t, s)

	got, err := s.GetProject(ctx, project.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Launch", got.Name)

	got.Name = "Relaunch"
	require.NoError(t, s.UpdateProject(ctx, got))
	got, err = s.GetProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "Relaunch", got.Name)

	missing, err := s.GetProject(ctx, models.NewProjectID())
	require.NoError(t, err)
	assert.Nil(t, missing, "missing records read as nil, not as an error")

	assert.ErrorIs(t, s.UpdateProject(ctx, &models.Project{ID: models.NewProjectID(), Name: "x", OwnerID: owner.ID}), store.ErrNotFound)

	projects, err := s.ListProjects(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, projects, 1)
}

func TestDeleteProjectCascades(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	owner, project := seedProject(t, s)

	status := models.TaskStatus{ProjectID: project.ID, Name: "To Do"}
	require.NoError(t, s.CreateStatus(ctx, &status))
	task := models.Task{ProjectID: project.ID, StatusID: &status.ID, Title: "t", CreatorID: owner.ID}
	require.NoError(t, s.CreateTask(ctx, &task))
	member := models.ProjectMember{ProjectID: project.ID, UserID: owner.ID, Role: models.RoleOwner}
	require.NoError(t, s.AddMember(ctx, &member))

	require.NoError(t, s.DeleteProject(ctx, project.ID))

	gotTask, err := s.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Nil(t, gotTask)
	gotStatus, err := s.GetStatus(ctx, status.ID)
	require.NoError(t, err)
	assert.Nil(t, gotStatus)
	members, err := s.ListMembers(ctx, project.ID)
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestListStatusesOrdered(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	_, project := seedProject(t, s)

	for i, name := range []string{"Done", "To Do", "In Progress"} {
		// Insert out of order on purpose.
		order := []int{2, 0, 1}[i]
		require.NoError(t, s.CreateStatus(ctx, &models.TaskStatus{
			ProjectID: project.ID, Name: name, OrderIndex: order,
		}))
	}

	statuses, err := s.ListStatuses(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, statuses, 3)
	assert.Equal(t, "To Do", statuses[0].Name)
	assert.Equal(t, "In Progress", statuses[1].Name)
	assert.Equal(t, "Done", statuses[2].Name)
}

func TestScheduledAndDueBetween(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	owner, project := seedProject(t, s)

	now := time.Now()
	soon := now.Add(2 * time.Hour)
	later := now.Add(48 * time.Hour)
	for _, spec := range []struct {
		title string
		due   *time.Time
	}{
		{"soon", &soon},
		{"later", &later},
		{"never", nil},
	} {
		require.NoError(t, s.CreateTask(ctx, &models.Task{
			ProjectID: project.ID, Title: spec.title, CreatorID: owner.ID, DueDate: spec.due,
		}))
	}

	scheduled, err := s.ListScheduledTasks(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, scheduled, 2)
	assert.Equal(t, "soon", scheduled[0].Title, "scheduled tasks come back due-date ascending")

	due, err := s.ListTasksDueBetween(ctx, now, now.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "soon", due[0].Title)
}

func TestIsMember(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	owner, project := seedProject(t, s)

	ok, err := s.IsMember(ctx, project.ID, owner.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.AddMember(ctx, &models.ProjectMember{ProjectID: project.ID, UserID: owner.ID}))
	ok, err = s.IsMember(ctx, project.ID, owner.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGetUserByEmail(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	owner, _ := seedProject(t, s)

	got, err := s.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, owner.ID, got.ID)

	got, err = s.GetUserByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFaultInjection(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	owner, project := seedProject(t, s)

	boom := errors.New("boom")
	s.FailWith("create task", boom)
	err := s.CreateTask(ctx, &models.Task{ProjectID: project.ID, Title: "t", CreatorID: owner.ID})
	assert.ErrorIs(t, err, boom)

	s.ClearFailures()
	assert.NoError(t, s.CreateTask(ctx, &models.Task{ProjectID: project.ID, Title: "t", CreatorID: owner.ID}))
}

func TestReadOnlyWrapper(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	owner, project := seedProject(t, s)

	readOnly := true
	wrapped := store.NewReadOnlyStore(s, func() bool { return readOnly })

	err := wrapped.CreateTask(ctx, &models.Task{ProjectID: project.ID, Title: "t", CreatorID: owner.ID})
	assert.ErrorIs(t, err, store.ErrReadOnly)

	got, err := wrapped.GetProject(ctx, project.ID)
	require.NoError(t, err)
	assert.NotNil(t, got, "reads pass through in read-only mode")

	readOnly = false
	assert.NoError(t, wrapped.CreateTask(ctx, &models.Task{ProjectID: project.ID, Title: "t", CreatorID: owner.ID}))
}

package board

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planboard/planboard/pkg/models"
)

var errStore = errors.New("store unavailable")

// fakeGateway is an in-memory Gateway with injectable failures and an
// optional per-update hook for ordering races in tests.
type fakeGateway struct {
	mu        sync.Mutex
	statuses  []*models.TaskStatus
	tasks     []*models.Task
	statusErr error
	taskErr   error

	updateHook func(*models.Task) error
	updates    []models.Task
}

func (g *fakeGateway) ListStatuses(ctx context.Context, projectID models.ProjectID) ([]*models.TaskStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.statusErr != nil {
		return nil, g.statusErr
	}
	out := make([]*models.TaskStatus, len(g.statuses))
	for i, s := range g.statuses {
		cp := *s
		out[i] = &cp
	}
	return out, nil
}

func (g *fakeGateway) ListTasks(ctx context.Context, projectID models.ProjectID) ([]*models.Task, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.taskErr != nil {
		return nil, g.taskErr
	}
	out := make([]*models.Task, len(g.tasks))
	for i, t := range g.tasks {
		cp := *t
		out[i] = &cp
	}
	return out, nil
}

func (g *fakeGateway) UpdateTask(ctx context.Context, task *models.Task) error {
	g.mu.Lock()
	hook := g.updateHook
	g.mu.Unlock()
	if hook != nil {
		if err := hook(task); err != nil {
			return err
		}
	}
	g.mu.Lock()
	g.updates = append(g.updates, *task)
	g.mu.Unlock()
	return nil
}

func (g *fakeGateway) updateCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.updates)
}

// recorder collects events for assertions.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Notify(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) all() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func statusPtr(id models.StatusID) *models.StatusID { return &id }

func newTestBoard(t *testing.T) (*Board, *fakeGateway, *recorder, models.ProjectID, []models.TaskStatus, []models.Task) {
	t.Helper()
	projectID := models.NewProjectID()
	todo := models.TaskStatus{ID: models.NewStatusID(), ProjectID: projectID, Name: "To Do", OrderIndex: 0}
	doing := models.TaskStatus{ID: models.NewStatusID(), ProjectID: projectID, Name: "In Progress", OrderIndex: 1}
	done := models.TaskStatus{ID: models.NewStatusID(), ProjectID: projectID, Name: "Done", OrderIndex: 2}

	t1 := models.Task{ID: models.NewTaskID(), ProjectID: projectID, StatusID: statusPtr(todo.ID), Title: "write proposal", Priority: models.PriorityHigh}
	t2 := models.Task{ID: models.NewTaskID(), ProjectID: projectID, StatusID: statusPtr(doing.ID), Title: "review designs", Priority: models.PriorityMedium}
	t3 := models.Task{ID: models.NewTaskID(), ProjectID: projectID, StatusID: nil, Title: "triage inbox", Priority: models.PriorityLow}

	gw := &fakeGateway{
		statuses: []*models.TaskStatus{&todo, &doing, &done},
		tasks:    []*models.Task{&t1, &t2, &t3},
	}
	rec := &recorder{}
	b := New(gw, rec)
	require.NoError(t, b.Load(context.Background(), projectID))
	return b, gw, rec, projectID, []models.TaskStatus{todo, doing, done}, []models.Task{t1, t2, t3}
}

func TestBoardLoad(t *testing.T) {
	b, _, _, projectID, statuses, tasks := newTestBoard(t)

	assert.True(t, b.Loaded())
	assert.Equal(t, projectID, b.ProjectID())
	assert.Len(t, b.Statuses(), len(statuses))
	assert.Len(t, b.Tasks(), len(tasks))
}

func TestBoardLoadFailureClearsBoard(t *testing.T) {
	b, gw, rec, projectID, _, _ := newTestBoard(t)
	require.True(t, b.Loaded())

	gw.mu.Lock()
	gw.taskErr = errStore
	gw.mu.Unlock()

	err := b.Load(context.Background(), projectID)
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, projectID, loadErr.ProjectID)
	assert.ErrorIs(t, err, errStore)

	assert.False(t, b.Loaded())
	assert.Empty(t, b.Tasks())
	assert.Empty(t, b.Statuses())

	events := rec.all()
	require.Len(t, events, 1)
	failed, ok := events[0].(BoardLoadFailed)
	require.True(t, ok)
	assert.Equal(t, projectID, failed.ProjectID)
}

func TestBoardLoadReplacesPriorProject(t *testing.T) {
	b, gw, _, _, _, _ := newTestBoard(t)

	other := models.NewProjectID()
	col := models.TaskStatus{ID: models.NewStatusID(), ProjectID: other, Name: "Backlog"}
	task := models.Task{ID: models.NewTaskID(), ProjectID: other, StatusID: statusPtr(col.ID), Title: "only task"}
	gw.mu.Lock()
	gw.statuses = []*models.TaskStatus{&col}
	gw.tasks = []*models.Task{&task}
	gw.mu.Unlock()

	require.NoError(t, b.Load(context.Background(), other))
	assert.Equal(t, other, b.ProjectID())
	require.Len(t, b.Tasks(), 1)
	assert.Equal(t, task.ID, b.Tasks()[0].ID)
}

func TestGroupsPartitionTasks(t *testing.T) {
	b, _, _, _, statuses, tasks := newTestBoard(t)

	groups := b.Groups(FilterSpec{}, time.Now())
	require.Len(t, groups, len(statuses)+1)

	total := 0
	seen := map[models.TaskID]int{}
	for _, g := range groups {
		total += len(g.Tasks)
		for _, task := range g.Tasks {
			seen[task.ID]++
		}
	}
	assert.Equal(t, len(tasks), total)
	for _, task := range tasks {
		assert.Equal(t, 1, seen[task.ID], "task %s must appear exactly once", task.ID)
	}

	// The status-less task lands in the trailing unassigned group.
	unassigned := groups[len(groups)-1]
	assert.Nil(t, unassigned.Status)
	require.Len(t, unassigned.Tasks, 1)
	assert.Equal(t, tasks[2].ID, unassigned.Tasks[0].ID)
}

func TestGroupsDanglingStatusTreatedAsUnassigned(t *testing.T) {
	b, _, _, _, _, _ := newTestBoard(t)

	stray := models.Task{
		ID:        models.NewTaskID(),
		ProjectID: b.ProjectID(),
		StatusID:  statusPtr(models.NewStatusID()),
		Title:     "points at a deleted column",
	}
	b.UpsertTask(stray)

	unassigned := b.UnassignedTasks(FilterSpec{}, time.Now())
	ids := make([]models.TaskID, 0, len(unassigned))
	for _, task := range unassigned {
		ids = append(ids, task.ID)
	}
	assert.Contains(t, ids, stray.ID)
}

func TestMoveTaskSuccess(t *testing.T) {
	b, gw, rec, _, statuses, tasks := newTestBoard(t)
	target := statuses[2] // Done

	move, err := b.MoveTask(context.Background(), tasks[0].ID, target.ID)
	require.NoError(t, err)

	// Optimistic: the board reflects the move before reconciliation ends.
	got, ok := b.Task(tasks[0].ID)
	require.True(t, ok)
	require.NotNil(t, got.StatusID)
	assert.Equal(t, target.ID, *got.StatusID)

	<-move.Done()
	require.NoError(t, move.Err())
	assert.False(t, move.Compensated())
	assert.Equal(t, 1, gw.updateCount())

	events := rec.all()
	require.Len(t, events, 1)
	moved, ok := events[0].(TaskMoved)
	require.True(t, ok)
	assert.Equal(t, tasks[0].ID, moved.Task.ID)
	assert.Equal(t, target.ID, moved.Status.ID)
	assert.Equal(t, target.Name, moved.Status.Name)
}

func TestMoveTaskFailureCompensates(t *testing.T) {
	b, gw, rec, _, statuses, tasks := newTestBoard(t)
	gw.mu.Lock()
	gw.updateHook = func(*models.Task) error { return errStore }
	gw.mu.Unlock()

	move, err := b.MoveTask(context.Background(), tasks[0].ID, statuses[2].ID)
	require.NoError(t, err)
	<-move.Done()

	assert.ErrorIs(t, move.Err(), errStore)
	assert.True(t, move.Compensated())

	got, ok := b.Task(tasks[0].ID)
	require.True(t, ok)
	require.NotNil(t, got.StatusID)
	assert.Equal(t, statuses[0].ID, *got.StatusID, "task must snap back to its previous column")

	events := rec.all()
	require.Len(t, events, 1)
	failed, ok := events[0].(TaskMoveFailed)
	require.True(t, ok)
	assert.Equal(t, tasks[0].ID, failed.Task.ID)
	assert.Equal(t, statuses[2].ID, failed.To)
	require.NotNil(t, failed.From)
	assert.Equal(t, statuses[0].ID, *failed.From)
	assert.ErrorIs(t, failed.Err, errStore)
}

func TestMoveTaskNoopSameColumn(t *testing.T) {
	b, gw, rec, _, statuses, tasks := newTestBoard(t)

	move, err := b.MoveTask(context.Background(), tasks[0].ID, statuses[0].ID)
	require.NoError(t, err)
	<-move.Done()

	assert.True(t, move.Noop())
	assert.NoError(t, move.Err())
	assert.Equal(t, 0, gw.updateCount(), "no-op drop must not call the store")
	assert.Empty(t, rec.all())
}

func TestMoveTaskUnknownTaskOrStatus(t *testing.T) {
	b, _, _, _, statuses, tasks := newTestBoard(t)

	_, err := b.MoveTask(context.Background(), models.NewTaskID(), statuses[0].ID)
	assert.Error(t, err)

	_, err = b.MoveTask(context.Background(), tasks[0].ID, models.NewStatusID())
	assert.Error(t, err)
}

func TestStaleCompensationSuppressed(t *testing.T) {
	b, gw, _, _, statuses, tasks := newTestBoard(t)
	taskID := tasks[0].ID
	first, second := statuses[1], statuses[2]

	release := make(chan struct{})
	gw.mu.Lock()
	gw.updateHook = func(task *models.Task) error {
		if task.StatusID != nil && *task.StatusID == first.ID {
			<-release
			return errStore
		}
		return nil
	}
	gw.mu.Unlock()

	// First drag: optimistic move to In Progress, store update stalls.
	move1, err := b.MoveTask(context.Background(), taskID, first.ID)
	require.NoError(t, err)

	// Second drag of the same task while the first is still in flight.
	move2, err := b.MoveTask(context.Background(), taskID, second.ID)
	require.NoError(t, err)
	<-move2.Done()
	require.NoError(t, move2.Err())

	// Now the first update fails. Its compensation must not fire: the
	// column no longer holds the value it set.
	close(release)
	<-move1.Done()
	assert.ErrorIs(t, move1.Err(), errStore)
	assert.False(t, move1.Compensated())

	got, ok := b.Task(taskID)
	require.True(t, ok)
	require.NotNil(t, got.StatusID)
	assert.Equal(t, second.ID, *got.StatusID, "failed first move must not undo the successful second one")
}

func TestReloadInvalidatesInFlightCompensation(t *testing.T) {
	b, gw, _, projectID, statuses, tasks := newTestBoard(t)

	release := make(chan struct{})
	gw.mu.Lock()
	gw.updateHook = func(*models.Task) error {
		<-release
		return errStore
	}
	gw.mu.Unlock()

	move, err := b.MoveTask(context.Background(), tasks[0].ID, statuses[2].ID)
	require.NoError(t, err)

	gw.mu.Lock()
	gw.updateHook = nil
	gw.mu.Unlock()
	require.NoError(t, b.Load(context.Background(), projectID))

	close(release)
	<-move.Done()
	assert.False(t, move.Compensated(), "a reload supersedes compensation from the prior snapshot")

	got, ok := b.Task(tasks[0].ID)
	require.True(t, ok)
	require.NotNil(t, got.StatusID)
	assert.Equal(t, statuses[0].ID, *got.StatusID, "fresh snapshot reflects the store, not the failed optimistic move")
}

func TestUpsertAndRemoveTask(t *testing.T) {
	b, _, _, projectID, statuses, tasks := newTestBoard(t)

	extra := models.Task{ID: models.NewTaskID(), ProjectID: projectID, StatusID: statusPtr(statuses[0].ID), Title: "new card"}
	b.UpsertTask(extra)
	assert.Len(t, b.Tasks(), len(tasks)+1)

	extra.Title = "renamed card"
	b.UpsertTask(extra)
	got, ok := b.Task(extra.ID)
	require.True(t, ok)
	assert.Equal(t, "renamed card", got.Title)
	assert.Len(t, b.Tasks(), len(tasks)+1)

	foreign := models.Task{ID: models.NewTaskID(), ProjectID: models.NewProjectID(), Title: "other project"}
	b.UpsertTask(foreign)
	_, ok = b.Task(foreign.ID)
	assert.False(t, ok, "tasks of other projects are ignored")

	b.RemoveTask(extra.ID)
	_, ok = b.Task(extra.ID)
	assert.False(t, ok)
	assert.Len(t, b.Tasks(), len(tasks))
}

func TestStats(t *testing.T) {
	b, _, _, projectID, statuses, _ := newTestBoard(t)
	now := time.Now()

	past := now.Add(-48 * time.Hour)
	b.UpsertTask(models.Task{
		ID: models.NewTaskID(), ProjectID: projectID,
		StatusID: statusPtr(statuses[0].ID), Title: "late",
		Priority: models.PriorityUrgent, DueDate: &past,
	})
	b.UpsertTask(models.Task{
		ID: models.NewTaskID(), ProjectID: projectID,
		StatusID: statusPtr(statuses[2].ID), Title: "shipped",
		Priority: models.PriorityMedium,
	})

	st := b.Stats(now)
	assert.Equal(t, 5, st.Total)
	assert.Equal(t, 1, st.Completed)
	assert.Equal(t, 1, st.Overdue)
	assert.Equal(t, 1, st.Urgent)
}

func TestGroupsAppliesFilter(t *testing.T) {
	b, _, _, _, statuses, tasks := newTestBoard(t)

	groups := b.Groups(FilterSpec{Priorities: []models.Priority{models.PriorityHigh}}, time.Now())
	var matched []models.Task
	for _, g := range groups {
		matched = append(matched, g.Tasks...)
	}
	require.Len(t, matched, 1)
	assert.Equal(t, tasks[0].ID, matched[0].ID)

	byColumn := b.TasksByStatus(statuses[0].ID, FilterSpec{Search: "proposal"}, time.Now())
	require.Len(t, byColumn, 1)
	assert.Equal(t, tasks[0].ID, byColumn[0].ID)
}

// Package board implements the in-memory board state for one active
// project: the status columns, the task set, filtered grouped views, and
// the optimistic drag-and-drop move protocol with compensation.
//
// The [Board] exclusively owns its task and status collections. Every
// mutation flows through its public operations; views read consistent
// snapshots. The board is replaced wholesale when the user switches
// projects ([Board.Load]) and is never partially merged across projects.
//
// Moves are optimistic: [Board.MoveTask] reassigns the task locally before
// the store confirms, then reconciles in the background. On store failure
// the move is compensated — the task snaps back to its previous column —
// unless a later drag of the same task has already changed the column, in
// which case compensation is skipped so a failed first move can never
// clobber a successful second one.
package board

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/planboard/planboard/pkg/models"
)

// Gateway is the slice of the persistence gateway the board consumes.
// store.Store satisfies it.
type Gateway interface {
	ListStatuses(ctx context.Context, projectID models.ProjectID) ([]*models.TaskStatus, error)
	ListTasks(ctx context.Context, projectID models.ProjectID) ([]*models.Task, error)
	UpdateTask(ctx context.Context, task *models.Task) error
}

// LoadError reports that loading a project's board failed. The board is
// left empty: a half-loaded mix of statuses from one fetch and tasks from
// another is never presented.
type LoadError struct {
	ProjectID models.ProjectID
	Err       error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load board for project %s: %v", e.ProjectID, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Board holds the authoritative in-memory snapshot of statuses and tasks
// for one project.
type Board struct {
	gateway Gateway
	notify  Notifier

	mu        sync.Mutex
	gen       uint64 // bumped on Load/Clear; stale reconciliations check it
	projectID models.ProjectID
	loaded    bool
	statuses  []models.TaskStatus
	tasks     map[models.TaskID]*models.Task
	order     []models.TaskID // store order, preserved for deterministic views

	wg sync.WaitGroup
}

// New creates an empty board over the given gateway. A nil notifier
// defaults to NopNotifier.
func New(gateway Gateway, notify Notifier) *Board {
	if notify == nil {
		notify = NopNotifier{}
	}
	return &Board{
		gateway: gateway,
		notify:  notify,
		tasks:   make(map[models.TaskID]*models.Task),
	}
}

// Load replaces the board with a fresh snapshot of the given project.
// Statuses and tasks are fetched in parallel; if either fetch fails the
// board is cleared and a *LoadError is returned. Repeated calls always
// produce a fresh consistent snapshot — there is no merging with prior
// state. Loading also invalidates any in-flight reconciliations from the
// previous snapshot: their callbacks will find the generation changed and
// leave the new snapshot untouched.
func (b *Board) Load(ctx context.Context, projectID models.ProjectID) error {
	var (
		statuses []*models.TaskStatus
		tasks    []*models.Task
		serr     error
		terr     error
		wg       sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		statuses, serr = b.gateway.ListStatuses(ctx, projectID)
	}()
	go func() {
		defer wg.Done()
		tasks, terr = b.gateway.ListTasks(ctx, projectID)
	}()
	wg.Wait()

	b.mu.Lock()
	b.gen++
	if serr != nil || terr != nil {
		b.resetLocked()
		b.mu.Unlock()
		err := &LoadError{ProjectID: projectID, Err: errors.Join(serr, terr)}
		b.notify.Notify(BoardLoadFailed{ProjectID: projectID, Err: err})
		return err
	}

	b.resetLocked()
	b.projectID = projectID
	b.loaded = true
	b.statuses = make([]models.TaskStatus, 0, len(statuses))
	for _, s := range statuses {
		b.statuses = append(b.statuses, *s)
	}
	for _, t := range tasks {
		cp := *t
		b.tasks[cp.ID] = &cp
		b.order = append(b.order, cp.ID)
	}
	b.mu.Unlock()
	return nil
}

// Clear empties the board and invalidates in-flight reconciliations, e.g.
// when the project view is torn down.
func (b *Board) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gen++
	b.resetLocked()
}

func (b *Board) resetLocked() {
	b.projectID = models.ProjectID{}
	b.loaded = false
	b.statuses = nil
	b.tasks = make(map[models.TaskID]*models.Task)
	b.order = nil
}

// Loaded reports whether the board currently holds a project snapshot.
func (b *Board) Loaded() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loaded
}

// ProjectID returns the ID of the loaded project (zero when empty).
func (b *Board) ProjectID() models.ProjectID {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.projectID
}

// Statuses returns the board columns ordered by order_index.
func (b *Board) Statuses() []models.TaskStatus {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.TaskStatus, len(b.statuses))
	copy(out, b.statuses)
	return out
}

// Tasks returns the full task set in store order.
func (b *Board) Tasks() []models.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tasksLocked()
}

func (b *Board) tasksLocked() []models.Task {
	out := make([]models.Task, 0, len(b.order))
	for _, id := range b.order {
		if t, ok := b.tasks[id]; ok {
			out = append(out, *t)
		}
	}
	return out
}

// Task returns a copy of the task with the given ID.
func (b *Board) Task(id models.TaskID) (models.Task, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.tasks[id]
	if !ok {
		return models.Task{}, false
	}
	return *t, true
}

// UpsertTask inserts or replaces a task after the store confirmed a create
// or edit that did not go through drag-and-drop. Tasks of other projects
// are ignored.
func (b *Board) UpsertTask(task models.Task) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.loaded || task.ProjectID != b.projectID {
		return
	}
	if _, ok := b.tasks[task.ID]; !ok {
		b.order = append(b.order, task.ID)
	}
	cp := task
	b.tasks[task.ID] = &cp
}

// RemoveTask drops a task after the store confirmed its deletion.
func (b *Board) RemoveTask(id models.TaskID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.tasks[id]; !ok {
		return
	}
	delete(b.tasks, id)
	for i, tid := range b.order {
		if tid == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}

// Move tracks one in-flight reconciliation started by MoveTask.
type Move struct {
	done        chan struct{}
	err         error
	compensated bool
	noop        bool
}

// Done is closed when the reconciliation resolved, successfully or not.
// A no-op move is resolved immediately.
func (m *Move) Done() <-chan struct{} { return m.done }

// Err returns the store error after Done is closed, or nil on success.
func (m *Move) Err() error { return m.err }

// Compensated reports whether the optimistic update was reverted. False
// for successful moves and for failed moves superseded by a later drag.
func (m *Move) Compensated() bool { return m.compensated }

// Noop reports whether the drop was a no-op (same column); no store call
// was issued.
func (m *Move) Noop() bool { return m.noop }

func resolvedMove(noop bool) *Move {
	m := &Move{done: make(chan struct{}), noop: noop}
	close(m.done)
	return m
}

// MoveTask performs the drop protocol for a drag of taskID onto the target
// column:
//
//  1. Dropping a task onto its current column is a no-op; no store call is
//     issued and nothing changes.
//  2. Otherwise the task's status is reassigned immediately (optimistic
//     update) and an asynchronous store update is started.
//  3. On success the state already reflects the move; a TaskMoved event is
//     emitted naming the task and the destination column.
//  4. On failure the move is compensated: the task's status reverts to its
//     pre-drag value and a TaskMoveFailed event is emitted. Compensation
//     is skipped when the task's current status no longer equals the value
//     this reconciliation set — a later drag owns the column now — or when
//     the board was reloaded or cleared in the meantime.
//
// Store failures are always recovered locally; MoveTask never leaves the
// board inconsistent.
func (b *Board) MoveTask(ctx context.Context, taskID models.TaskID, target models.StatusID) (*Move, error) {
	b.mu.Lock()
	task, ok := b.tasks[taskID]
	if !ok {
		b.mu.Unlock()
		return nil, fmt.Errorf("move task: unknown task %s", taskID)
	}
	status, ok := b.statusLocked(target)
	if !ok {
		b.mu.Unlock()
		return nil, fmt.Errorf("move task: unknown status %s", target)
	}
	if task.InStatus(target) {
		b.mu.Unlock()
		return resolvedMove(true), nil
	}

	prev := task.StatusID
	t := target
	task.StatusID = &t

	gen := b.gen
	taskCopy := *task
	b.mu.Unlock()

	m := &Move{done: make(chan struct{})}
	b.wg.Add(1)
	go b.reconcile(ctx, m, gen, taskCopy, prev, target, status)
	return m, nil
}

func (b *Board) reconcile(ctx context.Context, m *Move, gen uint64, task models.Task, prev *models.StatusID, target models.StatusID, status models.TaskStatus) {
	defer b.wg.Done()
	defer close(m.done)

	err := b.gateway.UpdateTask(ctx, &task)
	if err == nil {
		b.notify.Notify(TaskMoved{Task: task, Status: status})
		return
	}

	m.err = err
	b.mu.Lock()
	if b.gen == gen {
		// Revert only if this reconciliation's value is still in place.
		if cur, ok := b.tasks[task.ID]; ok && cur.InStatus(target) {
			cur.StatusID = prev
			m.compensated = true
		}
	}
	b.mu.Unlock()
	b.notify.Notify(TaskMoveFailed{Task: task, From: prev, To: target, Err: err})
}

// Wait blocks until all in-flight reconciliations have resolved. Intended
// for teardown and tests.
func (b *Board) Wait() {
	b.wg.Wait()
}

func (b *Board) statusLocked(id models.StatusID) (models.TaskStatus, bool) {
	for _, s := range b.statuses {
		if s.ID == id {
			return s, true
		}
	}
	return models.TaskStatus{}, false
}

// Group is one column of the board view: a status and the filtered tasks
// currently in it. The unassigned group has a nil Status and collects
// tasks with no column or a dangling status reference.
type Group struct {
	Status *models.TaskStatus
	Tasks  []models.Task
}

// Groups partitions the filtered task set into per-column groups plus the
// trailing unassigned group. Every filtered task appears in exactly one
// group and the union of all groups equals the filtered set.
func (b *Board) Groups(spec FilterSpec, now time.Time) []Group {
	b.mu.Lock()
	statuses := make([]models.TaskStatus, len(b.statuses))
	copy(statuses, b.statuses)
	tasks := b.tasksLocked()
	b.mu.Unlock()

	filtered := spec.Apply(tasks, now)

	known := make(map[models.StatusID]int, len(statuses))
	groups := make([]Group, len(statuses)+1)
	for i := range statuses {
		s := statuses[i]
		known[s.ID] = i
		groups[i] = Group{Status: &s, Tasks: []models.Task{}}
	}
	unassigned := len(statuses)
	groups[unassigned] = Group{Tasks: []models.Task{}}

	for _, t := range filtered {
		idx := unassigned
		if t.StatusID != nil {
			if i, ok := known[*t.StatusID]; ok {
				idx = i
			}
		}
		groups[idx].Tasks = append(groups[idx].Tasks, t)
	}
	return groups
}

// TasksByStatus returns the filtered tasks in the given column.
func (b *Board) TasksByStatus(id models.StatusID, spec FilterSpec, now time.Time) []models.Task {
	for _, g := range b.Groups(spec, now) {
		if g.Status != nil && g.Status.ID == id {
			return g.Tasks
		}
	}
	return []models.Task{}
}

// UnassignedTasks returns the filtered tasks with no column or a dangling
// status reference.
func (b *Board) UnassignedTasks(spec FilterSpec, now time.Time) []models.Task {
	groups := b.Groups(spec, now)
	return groups[len(groups)-1].Tasks
}

// Stats summarizes the unfiltered board for the header widgets.
type Stats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Overdue   int `json:"overdue"`
	Urgent    int `json:"urgent"`
}

// Stats counts the board's tasks: completed tasks are those sitting in a
// column whose name contains "done".
func (b *Board) Stats(now time.Time) Stats {
	b.mu.Lock()
	defer b.mu.Unlock()

	done := make(map[models.StatusID]bool)
	for _, s := range b.statuses {
		if strings.Contains(strings.ToLower(s.Name), "done") {
			done[s.ID] = true
		}
	}

	var st Stats
	for _, t := range b.tasks {
		st.Total++
		if t.StatusID != nil && done[*t.StatusID] {
			st.Completed++
		}
		if t.Overdue(now) {
			st.Overdue++
		}
		if t.Priority == models.PriorityUrgent {
			st.Urgent++
		}
	}
	return st
}

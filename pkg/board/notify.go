package board

import (
	"github.com/rs/zerolog"

	"github.com/planboard/planboard/pkg/models"
)

// Event is the closed set of user-facing notifications the board emits.
// Consumers switch on the concrete type; the set is sealed by the
// unexported event method.
type Event interface {
	event()
}

// TaskMoved reports a drag-and-drop move confirmed by the store. Status is
// the destination column, captured at drop time so the notification can
// name it even if the column is renamed meanwhile.
type TaskMoved struct {
	Task   models.Task
	Status models.TaskStatus
}

// TaskMoveFailed reports a move rejected by the store after the optimistic
// update. The board has already compensated (or skipped compensation if a
// later drag superseded this one) by the time the event fires.
type TaskMoveFailed struct {
	Task models.Task
	From *models.StatusID
	To   models.StatusID
	Err  error
}

// BoardLoadFailed reports that loading a project's board failed and the
// board was left empty.
type BoardLoadFailed struct {
	ProjectID models.ProjectID
	Err       error
}

func (TaskMoved) event()       {}
func (TaskMoveFailed) event()  {}
func (BoardLoadFailed) event() {}

// Notifier receives board events. Implementations must not block: events
// are emitted from reconciliation goroutines.
type Notifier interface {
	Notify(Event)
}

// NopNotifier discards all events.
type NopNotifier struct{}

func (NopNotifier) Notify(Event) {}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(Event)

func (f NotifierFunc) Notify(e Event) { f(e) }

// LogNotifier writes board events to a zerolog logger.
type LogNotifier struct {
	Log zerolog.Logger
}

func (n LogNotifier) Notify(e Event) {
	switch ev := e.(type) {
	case TaskMoved:
		n.Log.Info().
			Str("task_id", ev.Task.ID.String()).
			Str("status", ev.Status.Name).
			Msg("task moved")
	case TaskMoveFailed:
		n.Log.Warn().
			Err(ev.Err).
			Str("task_id", ev.Task.ID.String()).
			Str("to", ev.To.String()).
			Msg("task move failed")
	case BoardLoadFailed:
		n.Log.Error().
			Err(ev.Err).
			Str("project_id", ev.ProjectID.String()).
			Msg("board load failed")
	}
}

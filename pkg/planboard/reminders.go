package planboard

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/planboard/planboard/pkg/models"
)

// reminderWindow is how far ahead the sweep looks for approaching
// deadlines.
const reminderWindow = 24 * time.Hour

// startReminders schedules the periodic deadline sweep. Returns nil when
// the schedule is empty.
func (a *App) startReminders(ctx context.Context) (*cron.Cron, error) {
	if a.config.ReminderSchedule == "" {
		return nil, nil
	}
	c := cron.New()
	_, err := c.AddFunc(a.config.ReminderSchedule, func() {
		if err := a.sweepDeadlines(ctx, time.Now()); err != nil {
			a.log.Error().Err(err).Msg("deadline sweep failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule reminders %q: %w", a.config.ReminderSchedule, err)
	}
	c.Start()
	a.log.Info().Str("schedule", a.config.ReminderSchedule).Msg("deadline reminders scheduled")
	return c, nil
}

// sweepDeadlines notifies assignees of tasks due within the reminder
// window. Individual failures are logged and do not stop the sweep.
func (a *App) sweepDeadlines(ctx context.Context, now time.Time) error {
	tasks, err := a.store.ListTasksDueBetween(ctx, now, now.Add(reminderWindow))
	if err != nil {
		return fmt.Errorf("list tasks due soon: %w", err)
	}

	var notified int
	for _, task := range tasks {
		if task.AssigneeID == nil {
			continue
		}
		n := &models.Notification{
			UserID:  *task.AssigneeID,
			Kind:    models.NotifyDeadlineApproaching,
			Title:   "Deadline approaching",
			Message: fmt.Sprintf("%q is due %s", task.Title, task.DueDate.Format("Mon Jan 2 15:04")),
		}
		if err := a.store.CreateNotification(ctx, n); err != nil {
			a.log.Warn().Err(err).Stringer("task", task.ID).Msg("deadline notification failed")
			continue
		}
		notified++
	}
	a.log.Debug().Int("tasks", len(tasks)).Int("notified", notified).Msg("deadline sweep complete")
	return nil
}

package board

import (
	"strings"
	"time"

	"github.com/planboard/planboard/pkg/models"
)

// DueFilter selects a due-date window.
type DueFilter string

const (
	// DueAny disables due-date filtering.
	DueAny DueFilter = ""
	// DueOverdue matches tasks whose due date is in the past.
	DueOverdue DueFilter = "overdue"
	// DueToday matches tasks due on the current calendar day.
	DueToday DueFilter = "today"
	// DueTomorrow matches tasks due on the next calendar day.
	DueTomorrow DueFilter = "tomorrow"
	// DueWeek matches tasks due within the next seven days.
	DueWeek DueFilter = "week"
)

// ParseDueFilter validates a due-date filter string. The empty string is
// DueAny.
func ParseDueFilter(s string) (DueFilter, bool) {
	switch f := DueFilter(s); f {
	case DueAny, DueOverdue, DueToday, DueTomorrow, DueWeek:
		return f, true
	}
	return DueAny, false
}

// FilterSpec describes a task filter. All active criteria must match
// (conjunction); zero-valued criteria match everything.
type FilterSpec struct {
	// Search is matched case-insensitively as a substring of the task
	// title or description. Empty matches all.
	Search string
	// Priorities restricts to the given set when non-empty.
	Priorities []models.Priority
	// Assignees restricts to the given set when non-empty. A task with no
	// assignee never matches a non-empty set.
	Assignees []models.UserID
	// Due restricts to a due-date window. A task with no due date never
	// matches a window other than DueAny.
	Due DueFilter
}

// IsZero reports whether the spec has no active criteria.
func (s FilterSpec) IsZero() bool {
	return s.Search == "" && len(s.Priorities) == 0 && len(s.Assignees) == 0 && s.Due == DueAny
}

// Match reports whether the task satisfies every active criterion. now
// anchors the due-date windows; passing it in keeps the filter
// deterministic.
func (s FilterSpec) Match(t *models.Task, now time.Time) bool {
	if s.Search != "" {
		needle := strings.ToLower(s.Search)
		if !strings.Contains(strings.ToLower(t.Title), needle) &&
			!strings.Contains(strings.ToLower(t.Description), needle) {
			return false
		}
	}

	if len(s.Priorities) > 0 && !containsPriority(s.Priorities, t.Priority) {
		return false
	}

	if len(s.Assignees) > 0 {
		if t.AssigneeID == nil || !containsUser(s.Assignees, *t.AssigneeID) {
			return false
		}
	}

	if s.Due != DueAny {
		if t.DueDate == nil {
			return false
		}
		due := *t.DueDate
		switch s.Due {
		case DueOverdue:
			if !due.Before(now) {
				return false
			}
		case DueToday:
			if !sameDay(due, now) {
				return false
			}
		case DueTomorrow:
			if !sameDay(due, now.AddDate(0, 0, 1)) {
				return false
			}
		case DueWeek:
			if due.Before(now) || due.After(now.AddDate(0, 0, 7)) {
				return false
			}
		}
	}

	return true
}

// Apply returns the tasks matching the spec. The result preserves input
// order and never aliases the input slice, so filtering is idempotent and
// side-effect-free.
func (s FilterSpec) Apply(tasks []models.Task, now time.Time) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for i := range tasks {
		if s.Match(&tasks[i], now) {
			out = append(out, tasks[i])
		}
	}
	return out
}

func containsPriority(set []models.Priority, p models.Priority) bool {
	for _, v := range set {
		if v == p {
			return true
		}
	}
	return false
}

func containsUser(set []models.UserID, id models.UserID) bool {
	for _, v := range set {
		if v == id {
			return true
		}
	}
	return false
}

// sameDay reports whether a and b fall on the same calendar day in b's
// location.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.In(b.Location()).Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

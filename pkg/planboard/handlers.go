package planboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/planboard/planboard/pkg/board"
	"github.com/planboard/planboard/pkg/models"
	"github.com/planboard/planboard/pkg/store"
)

// defaultStatuses are the columns seeded into every new project.
var defaultStatuses = []models.TaskStatus{
	{Name: "To Do", Color: "#6b7280", OrderIndex: 0},
	{Name: "In Progress", Color: "#3b82f6", OrderIndex: 1},
	{Name: "Review", Color: "#f59e0b", OrderIndex: 2},
	{Name: "Done", Color: "#10b981", OrderIndex: 3},
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Validation runs before any store call: a rejected payload never reaches
// the backend.

func validateUser(u *models.User) error {
	if strings.TrimSpace(u.Name) == "" {
		return &store.ValidationError{Field: "name", Reason: "required"}
	}
	if strings.TrimSpace(u.Email) == "" {
		return &store.ValidationError{Field: "email", Reason: "required"}
	}
	return nil
}

func validateProject(p *models.Project) error {
	if strings.TrimSpace(p.Name) == "" {
		return &store.ValidationError{Field: "name", Reason: "required"}
	}
	if p.OwnerID.IsZero() {
		return &store.ValidationError{Field: "owner_id", Reason: "required"}
	}
	return nil
}

func validateStatus(s *models.TaskStatus) error {
	if strings.TrimSpace(s.Name) == "" {
		return &store.ValidationError{Field: "name", Reason: "required"}
	}
	if s.ProjectID.IsZero() {
		return &store.ValidationError{Field: "project_id", Reason: "required"}
	}
	return nil
}

func validateTask(t *models.Task) error {
	if strings.TrimSpace(t.Title) == "" {
		return &store.ValidationError{Field: "title", Reason: "required"}
	}
	if t.ProjectID.IsZero() {
		return &store.ValidationError{Field: "project_id", Reason: "required"}
	}
	if t.Priority != "" && !t.Priority.Valid() {
		return &store.ValidationError{Field: "priority", Reason: fmt.Sprintf("unknown priority %q", t.Priority)}
	}
	return nil
}

// User handlers

func (a *App) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var user models.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := validateUser(&user); err != nil {
		a.respondStoreError(w, err)
		return
	}

	ctx := r.Context()
	if err := a.store.CreateUser(ctx, &user); err != nil {
		a.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, user)
}

func (a *App) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := models.ParseUserID(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	ctx := r.Context()
	user, err := a.store.GetUser(ctx, id)
	if err != nil {
		a.respondStoreError(w, err)
		return
	}
	if user == nil {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}

	respondJSON(w, http.StatusOK, user)
}

func (a *App) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := models.ParseUserID(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var user models.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	user.ID = id

	ctx := r.Context()
	if err := a.store.UpdateUser(ctx, &user); err != nil {
		a.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

func (a *App) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := models.ParseUserID(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	ctx := r.Context()
	if err := a.store.DeleteUser(ctx, id); err != nil {
		a.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// Project handlers

func (a *App) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var project models.Project
	if err := json.NewDecoder(r.Body).Decode(&project); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := validateProject(&project); err != nil {
		a.respondStoreError(w, err)
		return
	}

	ctx := r.Context()
	if err := a.store.CreateProject(ctx, &project); err != nil {
		a.respondStoreError(w, err)
		return
	}

	// The owner is always a member; new boards start with the standard
	// columns.
	owner := models.ProjectMember{
		ProjectID: project.ID,
		UserID:    project.OwnerID,
		Role:      models.RoleOwner,
	}
	if err := a.store.AddMember(ctx, &owner); err != nil {
		a.respondStoreError(w, err)
		return
	}
	for _, s := range defaultStatuses {
		col := s
		col.ProjectID = project.ID
		if err := a.store.CreateStatus(ctx, &col); err != nil {
			a.respondStoreError(w, err)
			return
		}
	}

	respondJSON(w, http.StatusCreated, project)
}

func (a *App) handleGetProject(w http.ResponseWriter, r *http.Request) {
	id, err := models.ParseProjectID(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	ctx := r.Context()
	project, err := a.store.GetProject(ctx, id)
	if err != nil {
		a.respondStoreError(w, err)
		return
	}
	if project == nil {
		respondError(w, http.StatusNotFound, "Project not found")
		return
	}

	respondJSON(w, http.StatusOK, project)
}

func (a *App) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	id, err := models.ParseProjectID(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	var project models.Project
	if err := json.NewDecoder(r.Body).Decode(&project); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if strings.TrimSpace(project.Name) == "" {
		a.respondStoreError(w, &store.ValidationError{Field: "name", Reason: "required"})
		return
	}
	project.ID = id

	ctx := r.Context()
	if err := a.store.UpdateProject(ctx, &project); err != nil {
		a.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, project)
}

func (a *App) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id, err := models.ParseProjectID(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	ctx := r.Context()
	if err := a.store.DeleteProject(ctx, id); err != nil {
		a.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

func (a *App) handleListProjects(w http.ResponseWriter, r *http.Request) {
	ownerID, err := models.ParseUserID(mux.Vars(r)["userId"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	ctx := r.Context()
	projects, err := a.store.ListProjects(ctx, ownerID)
	if err != nil {
		a.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, projects)
}

// Member handlers

func (a *App) handleAddMember(w http.ResponseWriter, r *http.Request) {
	projectID, err := models.ParseProjectID(mux.Vars(r)["projectId"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	var member models.ProjectMember
	if err := json.NewDecoder(r.Body).Decode(&member); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if member.UserID.IsZero() {
		respondError(w, http.StatusBadRequest, "Member user ID is required")
		return
	}
	member.ProjectID = projectID
	if member.Role == "" {
		member.Role = models.RoleMember
	}

	ctx := r.Context()
	exists, err := a.store.IsMember(ctx, projectID, member.UserID)
	if err != nil {
		a.respondStoreError(w, err)
		return
	}
	if exists {
		respondError(w, http.StatusConflict, "User is already a member")
		return
	}
	if err := a.store.AddMember(ctx, &member); err != nil {
		a.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, member)
}

func (a *App) handleListMembers(w http.ResponseWriter, r *http.Request) {
	projectID, err := models.ParseProjectID(mux.Vars(r)["projectId"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	ctx := r.Context()
	members, err := a.store.ListMembers(ctx, projectID)
	if err != nil {
		a.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, members)
}

func (a *App) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	projectID, err := models.ParseProjectID(vars["projectId"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}
	userID, err := models.ParseUserID(vars["userId"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	ctx := r.Context()
	members, err := a.store.ListMembers(ctx, projectID)
	if err != nil {
		a.respondStoreError(w, err)
		return
	}
	for _, m := range members {
		if m.UserID == userID {
			if err := a.store.RemoveMember(ctx, m.ID); err != nil {
				a.respondStoreError(w, err)
				return
			}
			respondJSON(w, http.StatusNoContent, nil)
			return
		}
	}
	respondError(w, http.StatusNotFound, "Member not found")
}

// Status handlers

func (a *App) handleCreateStatus(w http.ResponseWriter, r *http.Request) {
	var status models.TaskStatus
	if err := json.NewDecoder(r.Body).Decode(&status); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := validateStatus(&status); err != nil {
		a.respondStoreError(w, err)
		return
	}

	ctx := r.Context()
	if err := a.store.CreateStatus(ctx, &status); err != nil {
		a.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, status)
}

func (a *App) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := models.ParseStatusID(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid status ID")
		return
	}

	ctx := r.Context()
	status, err := a.store.GetStatus(ctx, id)
	if err != nil {
		a.respondStoreError(w, err)
		return
	}
	if status == nil {
		respondError(w, http.StatusNotFound, "Status not found")
		return
	}

	respondJSON(w, http.StatusOK, status)
}

func (a *App) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := models.ParseStatusID(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid status ID")
		return
	}

	var status models.TaskStatus
	if err := json.NewDecoder(r.Body).Decode(&status); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if strings.TrimSpace(status.Name) == "" {
		a.respondStoreError(w, &store.ValidationError{Field: "name", Reason: "required"})
		return
	}
	status.ID = id

	ctx := r.Context()
	if err := a.store.UpdateStatus(ctx, &status); err != nil {
		a.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, status)
}

func (a *App) handleDeleteStatus(w http.ResponseWriter, r *http.Request) {
	id, err := models.ParseStatusID(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid status ID")
		return
	}

	ctx := r.Context()
	if err := a.store.DeleteStatus(ctx, id); err != nil {
		a.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

func (a *App) handleListStatuses(w http.ResponseWriter, r *http.Request) {
	projectID, err := models.ParseProjectID(mux.Vars(r)["projectId"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	ctx := r.Context()
	statuses, err := a.store.ListStatuses(ctx, projectID)
	if err != nil {
		a.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, statuses)
}

// Task handlers

func (a *App) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var task models.Task
	if err := json.NewDecoder(r.Body).Decode(&task); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := validateTask(&task); err != nil {
		a.respondStoreError(w, err)
		return
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}

	ctx := r.Context()
	if task.StatusID == nil {
		// New cards land in the first column.
		statuses, err := a.store.ListStatuses(ctx, task.ProjectID)
		if err != nil {
			a.respondStoreError(w, err)
			return
		}
		if len(statuses) > 0 {
			task.StatusID = &statuses[0].ID
		}
	}
	if task.OrderIndex == 0 {
		siblings, err := a.store.ListTasks(ctx, task.ProjectID)
		if err != nil {
			a.respondStoreError(w, err)
			return
		}
		for _, s := range siblings {
			if s.OrderIndex >= task.OrderIndex {
				task.OrderIndex = s.OrderIndex + 1
			}
		}
	}

	if err := a.store.CreateTask(ctx, &task); err != nil {
		a.respondStoreError(w, err)
		return
	}

	if task.AssigneeID != nil {
		a.notifyUser(ctx, *task.AssigneeID, models.NotifyTaskAssigned,
			"New task assigned", fmt.Sprintf("You were assigned %q", task.Title))
	}

	respondJSON(w, http.StatusCreated, task)
}

func (a *App) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id, err := models.ParseTaskID(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid task ID")
		return
	}

	ctx := r.Context()
	task, err := a.store.GetTask(ctx, id)
	if err != nil {
		a.respondStoreError(w, err)
		return
	}
	if task == nil {
		respondError(w, http.StatusNotFound, "Task not found")
		return
	}

	respondJSON(w, http.StatusOK, task)
}

func (a *App) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := models.ParseTaskID(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid task ID")
		return
	}

	var task models.Task
	if err := json.NewDecoder(r.Body).Decode(&task); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	task.ID = id

	ctx := r.Context()
	prev, err := a.store.GetTask(ctx, id)
	if err != nil {
		a.respondStoreError(w, err)
		return
	}
	if prev == nil {
		respondError(w, http.StatusNotFound, "Task not found")
		return
	}
	if task.ProjectID.IsZero() {
		task.ProjectID = prev.ProjectID
	}
	if err := validateTask(&task); err != nil {
		a.respondStoreError(w, err)
		return
	}

	if err := a.store.UpdateTask(ctx, &task); err != nil {
		a.respondStoreError(w, err)
		return
	}

	// Assignment changes notify the new assignee.
	if task.AssigneeID != nil && (prev.AssigneeID == nil || *prev.AssigneeID != *task.AssigneeID) {
		a.notifyUser(ctx, *task.AssigneeID, models.NotifyTaskAssigned,
			"New task assigned", fmt.Sprintf("You were assigned %q", task.Title))
	}

	respondJSON(w, http.StatusOK, task)
}

func (a *App) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := models.ParseTaskID(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid task ID")
		return
	}

	ctx := r.Context()
	if err := a.store.DeleteTask(ctx, id); err != nil {
		a.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

func (a *App) handleListTasks(w http.ResponseWriter, r *http.Request) {
	projectID, err := models.ParseProjectID(mux.Vars(r)["projectId"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}
	spec, err := parseFilterSpec(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	tasks, err := a.store.ListTasks(ctx, projectID)
	if err != nil {
		a.respondStoreError(w, err)
		return
	}

	flat := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		flat = append(flat, *t)
	}
	respondJSON(w, http.StatusOK, spec.Apply(flat, time.Now()))
}

// parseFilterSpec builds a task filter from query parameters: q (substring
// search), priority and assignee (comma-separated), due (overdue, today,
// tomorrow, week).
func parseFilterSpec(r *http.Request) (board.FilterSpec, error) {
	q := r.URL.Query()
	spec := board.FilterSpec{Search: q.Get("q")}

	if raw := q.Get("priority"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			p, err := models.ParsePriority(s)
			if err != nil {
				return board.FilterSpec{}, fmt.Errorf("invalid priority %q", s)
			}
			spec.Priorities = append(spec.Priorities, p)
		}
	}
	if raw := q.Get("assignee"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			id, err := models.ParseUserID(s)
			if err != nil {
				return board.FilterSpec{}, fmt.Errorf("invalid assignee %q", s)
			}
			spec.Assignees = append(spec.Assignees, id)
		}
	}
	if raw := q.Get("due"); raw != "" {
		due, ok := board.ParseDueFilter(raw)
		if !ok {
			return board.FilterSpec{}, fmt.Errorf("invalid due filter %q", raw)
		}
		spec.Due = due
	}
	return spec, nil
}

// moveTaskRequest is the body of POST /api/tasks/{id}/move.
type moveTaskRequest struct {
	StatusID models.StatusID `json:"status_id"`
}

func (a *App) handleMoveTask(w http.ResponseWriter, r *http.Request) {
	id, err := models.ParseTaskID(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid task ID")
		return
	}

	var req moveTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if req.StatusID.IsZero() {
		respondError(w, http.StatusBadRequest, "Destination status ID is required")
		return
	}

	ctx := r.Context()
	task, err := a.store.GetTask(ctx, id)
	if err != nil {
		a.respondStoreError(w, err)
		return
	}
	if task == nil {
		respondError(w, http.StatusNotFound, "Task not found")
		return
	}
	status, err := a.store.GetStatus(ctx, req.StatusID)
	if err != nil {
		a.respondStoreError(w, err)
		return
	}
	if status == nil || status.ProjectID != task.ProjectID {
		respondError(w, http.StatusBadRequest, "Destination status does not belong to the task's project")
		return
	}

	if task.InStatus(req.StatusID) {
		respondJSON(w, http.StatusOK, task)
		return
	}

	task.StatusID = &req.StatusID
	if err := a.store.UpdateTask(ctx, task); err != nil {
		a.respondStoreError(w, err)
		return
	}

	if task.AssigneeID != nil && strings.Contains(strings.ToLower(status.Name), "done") {
		a.notifyUser(ctx, *task.AssigneeID, models.NotifyTaskCompleted,
			"Task completed", fmt.Sprintf("%q was moved to %s", task.Title, status.Name))
	}

	respondJSON(w, http.StatusOK, task)
}

// Calendar and reports

func (a *App) handleCalendar(w http.ResponseWriter, r *http.Request) {
	projectID, err := models.ParseProjectID(mux.Vars(r)["projectId"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	var from, until time.Time
	q := r.URL.Query()
	if raw := q.Get("from"); raw != "" {
		if from, err = time.Parse(time.RFC3339, raw); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid from time, want RFC3339")
			return
		}
	}
	if raw := q.Get("until"); raw != "" {
		if until, err = time.Parse(time.RFC3339, raw); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid until time, want RFC3339")
			return
		}
	}

	ctx := r.Context()
	tasks, err := a.store.ListScheduledTasks(ctx, projectID)
	if err != nil {
		a.respondStoreError(w, err)
		return
	}

	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if !from.IsZero() && t.DueDate.Before(from) {
			continue
		}
		if !until.IsZero() && t.DueDate.After(until) {
			continue
		}
		out = append(out, *t)
	}
	respondJSON(w, http.StatusOK, out)
}

// ProjectReport aggregates a project's tasks for the reports view.
type ProjectReport struct {
	ProjectID  models.ProjectID        `json:"project_id"`
	Total      int                     `json:"total"`
	Completed  int                     `json:"completed"`
	Overdue    int                     `json:"overdue"`
	Unassigned int                     `json:"unassigned"`
	ByStatus   map[string]int          `json:"by_status"`
	ByPriority map[models.Priority]int `json:"by_priority"`
	ByAssignee map[string]int          `json:"by_assignee"`
}

func (a *App) handleReports(w http.ResponseWriter, r *http.Request) {
	projectID, err := models.ParseProjectID(mux.Vars(r)["projectId"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	ctx := r.Context()
	statuses, err := a.store.ListStatuses(ctx, projectID)
	if err != nil {
		a.respondStoreError(w, err)
		return
	}
	tasks, err := a.store.ListTasks(ctx, projectID)
	if err != nil {
		a.respondStoreError(w, err)
		return
	}

	names := make(map[models.StatusID]string, len(statuses))
	doneColumns := make(map[models.StatusID]bool)
	report := ProjectReport{
		ProjectID:  projectID,
		ByStatus:   make(map[string]int),
		ByPriority: make(map[models.Priority]int),
		ByAssignee: make(map[string]int),
	}
	for _, s := range statuses {
		names[s.ID] = s.Name
		report.ByStatus[s.Name] = 0
		if strings.Contains(strings.ToLower(s.Name), "done") {
			doneColumns[s.ID] = true
		}
	}

	now := time.Now()
	for _, t := range tasks {
		report.Total++
		report.ByPriority[t.Priority]++
		if t.StatusID != nil {
			if name, ok := names[*t.StatusID]; ok {
				report.ByStatus[name]++
			}
			if doneColumns[*t.StatusID] {
				report.Completed++
			}
		}
		if t.Overdue(now) {
			report.Overdue++
		}
		if t.AssigneeID == nil {
			report.Unassigned++
		} else {
			report.ByAssignee[t.AssigneeID.String()]++
		}
	}

	respondJSON(w, http.StatusOK, report)
}

// Notification handlers

func (a *App) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	userID, err := models.ParseUserID(mux.Vars(r)["userId"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	ctx := r.Context()
	notifications, err := a.store.ListNotifications(ctx, userID)
	if err != nil {
		a.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, notifications)
}

func (a *App) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, err := models.ParseNotificationID(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid notification ID")
		return
	}

	ctx := r.Context()
	if err := a.store.MarkNotificationRead(ctx, id); err != nil {
		a.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// notifyUser persists a notification, logging instead of failing the
// request when the write is rejected.
func (a *App) notifyUser(ctx context.Context, userID models.UserID, kind models.NotificationKind, title, message string) {
	n := &models.Notification{UserID: userID, Kind: kind, Title: title, Message: message}
	if err := a.store.CreateNotification(ctx, n); err != nil {
		a.log.Warn().Err(err).Str("kind", string(kind)).Msg("notification write failed")
	}
}

// respondStoreError maps store errors to HTTP status codes.
func (a *App) respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrReadOnly):
		respondError(w, http.StatusForbidden, "Service is in read-only mode")
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case store.IsValidation(err):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		a.log.Error().Err(err).Msg("store operation failed")
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_, _ = w.Write(response)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

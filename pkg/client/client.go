// Package client is a Go HTTP client for the planboard API.
//
// It mirrors the server's endpoint structure with strongly-typed methods
// over the same [github.com/planboard/planboard/pkg/models] entities:
// users, projects, members, board columns, tasks (including the move
// operation used by drag-and-drop), the calendar, reports, and
// notifications. Requests and responses are JSON; typed IDs serialize as
// UUID strings.
//
// Client instances are safe for concurrent use by multiple goroutines.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/planboard/planboard/pkg/board"
	"github.com/planboard/planboard/pkg/models"
)

// Client is a planboard API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the given base URL, e.g.
// "http://localhost:8080". No trailing slash, no API path prefix.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// doRequest performs an HTTP request with proper headers
func (c *Client) doRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.httpClient.Do(req)
}

// decodeResponse decodes the JSON response into the target struct
func decodeResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error: status=%d, body=%s", resp.StatusCode, string(body))
	}

	if target != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// Health checks the health status of the server
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return nil, err
	}

	var result map[string]any
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// User management

// CreateUser creates a new user
func (c *Client) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/users", user)
	if err != nil {
		return nil, err
	}

	var result models.User
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetUser retrieves a user by ID
func (c *Client) GetUser(ctx context.Context, id models.UserID) (*models.User, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/api/users/%s", id), nil)
	if err != nil {
		return nil, err
	}

	var result models.User
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateUser updates a user's details
func (c *Client) UpdateUser(ctx context.Context, user *models.User) (*models.User, error) {
	resp, err := c.doRequest(ctx, http.MethodPut, fmt.Sprintf("/api/users/%s", user.ID), user)
	if err != nil {
		return nil, err
	}

	var result models.User
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteUser deletes a user account
func (c *Client) DeleteUser(ctx context.Context, id models.UserID) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/api/users/%s", id), nil)
	if err != nil {
		return err
	}
	return decodeResponse(resp, nil)
}

// Project management

// CreateProject creates a project; the server seeds the default columns
// and registers the owner as a member.
func (c *Client) CreateProject(ctx context.Context, project *models.Project) (*models.Project, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/projects", project)
	if err != nil {
		return nil, err
	}

	var result models.Project
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetProject retrieves a project by ID
func (c *Client) GetProject(ctx context.Context, id models.ProjectID) (*models.Project, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/api/projects/%s", id), nil)
	if err != nil {
		return nil, err
	}

	var result models.Project
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateProject updates a project's details
func (c *Client) UpdateProject(ctx context.Context, project *models.Project) (*models.Project, error) {
	resp, err := c.doRequest(ctx, http.MethodPut, fmt.Sprintf("/api/projects/%s", project.ID), project)
	if err != nil {
		return nil, err
	}

	var result models.Project
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteProject deletes a project and everything under it
func (c *Client) DeleteProject(ctx context.Context, id models.ProjectID) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/api/projects/%s", id), nil)
	if err != nil {
		return err
	}
	return decodeResponse(resp, nil)
}

// ListProjects lists the projects owned by a user
func (c *Client) ListProjects(ctx context.Context, ownerID models.UserID) ([]*models.Project, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/api/users/%s/projects", ownerID), nil)
	if err != nil {
		return nil, err
	}

	var result []*models.Project
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Members

// AddMember adds a user to a project
func (c *Client) AddMember(ctx context.Context, projectID models.ProjectID, userID models.UserID, role models.MemberRole) (*models.ProjectMember, error) {
	member := models.ProjectMember{UserID: userID, Role: role}
	resp, err := c.doRequest(ctx, http.MethodPost, fmt.Sprintf("/api/projects/%s/members", projectID), member)
	if err != nil {
		return nil, err
	}

	var result models.ProjectMember
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListMembers lists a project's members
func (c *Client) ListMembers(ctx context.Context, projectID models.ProjectID) ([]*models.ProjectMember, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/api/projects/%s/members", projectID), nil)
	if err != nil {
		return nil, err
	}

	var result []*models.ProjectMember
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// RemoveMember removes a user from a project
func (c *Client) RemoveMember(ctx context.Context, projectID models.ProjectID, userID models.UserID) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/api/projects/%s/members/%s", projectID, userID), nil)
	if err != nil {
		return err
	}
	return decodeResponse(resp, nil)
}

// Board columns

// CreateStatus creates a board column
func (c *Client) CreateStatus(ctx context.Context, status *models.TaskStatus) (*models.TaskStatus, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/statuses", status)
	if err != nil {
		return nil, err
	}

	var result models.TaskStatus
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetStatus retrieves a board column by ID
func (c *Client) GetStatus(ctx context.Context, id models.StatusID) (*models.TaskStatus, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/api/statuses/%s", id), nil)
	if err != nil {
		return nil, err
	}

	var result models.TaskStatus
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateStatus updates a board column
func (c *Client) UpdateStatus(ctx context.Context, status *models.TaskStatus) (*models.TaskStatus, error) {
	resp, err := c.doRequest(ctx, http.MethodPut, fmt.Sprintf("/api/statuses/%s", status.ID), status)
	if err != nil {
		return nil, err
	}

	var result models.TaskStatus
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteStatus deletes a board column
func (c *Client) DeleteStatus(ctx context.Context, id models.StatusID) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/api/statuses/%s", id), nil)
	if err != nil {
		return err
	}
	return decodeResponse(resp, nil)
}

// ListStatuses lists a project's board columns ordered by position
func (c *Client) ListStatuses(ctx context.Context, projectID models.ProjectID) ([]*models.TaskStatus, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/api/projects/%s/statuses", projectID), nil)
	if err != nil {
		return nil, err
	}

	var result []*models.TaskStatus
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Tasks

// CreateTask creates a task. The server fills defaults: first column,
// medium priority, next order index.
func (c *Client) CreateTask(ctx context.Context, task *models.Task) (*models.Task, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/tasks", task)
	if err != nil {
		return nil, err
	}

	var result models.Task
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetTask retrieves a task by ID
func (c *Client) GetTask(ctx context.Context, id models.TaskID) (*models.Task, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/api/tasks/%s", id), nil)
	if err != nil {
		return nil, err
	}

	var result models.Task
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateTask updates a task
func (c *Client) UpdateTask(ctx context.Context, task *models.Task) (*models.Task, error) {
	resp, err := c.doRequest(ctx, http.MethodPut, fmt.Sprintf("/api/tasks/%s", task.ID), task)
	if err != nil {
		return nil, err
	}

	var result models.Task
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteTask deletes a task
func (c *Client) DeleteTask(ctx context.Context, id models.TaskID) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/api/tasks/%s", id), nil)
	if err != nil {
		return err
	}
	return decodeResponse(resp, nil)
}

// MoveTask reassigns a task to another column. This is the server-side
// half of the board's drag-and-drop protocol.
func (c *Client) MoveTask(ctx context.Context, id models.TaskID, statusID models.StatusID) (*models.Task, error) {
	body := map[string]models.StatusID{"status_id": statusID}
	resp, err := c.doRequest(ctx, http.MethodPost, fmt.Sprintf("/api/tasks/%s/move", id), body)
	if err != nil {
		return nil, err
	}

	var result models.Task
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListTasks lists a project's tasks, optionally filtered. A zero spec
// returns everything.
func (c *Client) ListTasks(ctx context.Context, projectID models.ProjectID, spec board.FilterSpec) ([]*models.Task, error) {
	path := fmt.Sprintf("/api/projects/%s/tasks", projectID)
	if q := filterQuery(spec); q != "" {
		path += "?" + q
	}
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var result []*models.Task
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// filterQuery encodes a filter spec as the task list query parameters.
func filterQuery(spec board.FilterSpec) string {
	q := url.Values{}
	if spec.Search != "" {
		q.Set("q", spec.Search)
	}
	if len(spec.Priorities) > 0 {
		parts := make([]string, len(spec.Priorities))
		for i, p := range spec.Priorities {
			parts[i] = string(p)
		}
		q.Set("priority", strings.Join(parts, ","))
	}
	if len(spec.Assignees) > 0 {
		parts := make([]string, len(spec.Assignees))
		for i, id := range spec.Assignees {
			parts[i] = id.String()
		}
		q.Set("assignee", strings.Join(parts, ","))
	}
	if spec.Due != board.DueAny {
		q.Set("due", string(spec.Due))
	}
	return q.Encode()
}

// Calendar and reports

// Calendar lists a project's scheduled tasks, optionally clamped to a
// time window. Zero times leave the corresponding bound open.
func (c *Client) Calendar(ctx context.Context, projectID models.ProjectID, from, until time.Time) ([]*models.Task, error) {
	q := url.Values{}
	if !from.IsZero() {
		q.Set("from", from.Format(time.RFC3339))
	}
	if !until.IsZero() {
		q.Set("until", until.Format(time.RFC3339))
	}
	path := fmt.Sprintf("/api/projects/%s/calendar", projectID)
	if enc := q.Encode(); enc != "" {
		path += "?" + enc
	}
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var result []*models.Task
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Report retrieves a project's task aggregation.
func (c *Client) Report(ctx context.Context, projectID models.ProjectID) (map[string]any, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/api/projects/%s/reports", projectID), nil)
	if err != nil {
		return nil, err
	}

	var result map[string]any
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Notifications

// ListNotifications lists a user's notifications, newest first
func (c *Client) ListNotifications(ctx context.Context, userID models.UserID) ([]*models.Notification, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/api/users/%s/notifications", userID), nil)
	if err != nil {
		return nil, err
	}

	var result []*models.Notification
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// MarkNotificationRead marks a notification as read
func (c *Client) MarkNotificationRead(ctx context.Context, id models.NotificationID) error {
	resp, err := c.doRequest(ctx, http.MethodPut, fmt.Sprintf("/api/notifications/%s/read", id), nil)
	if err != nil {
		return err
	}
	return decodeResponse(resp, nil)
}

package planboard

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// Run starts the HTTP server and the deadline reminder sweep, and blocks
// until the context is cancelled or a fatal server error occurs. On
// shutdown, in-flight requests get five seconds to complete.
//
// # API Endpoints
//
// Health:
//
//	GET    /api/health
//
// Users:
//
//	POST   /api/users
//	GET    /api/users/{id}
//	PUT    /api/users/{id}
//	DELETE /api/users/{id}
//	GET    /api/users/{userId}/projects
//	GET    /api/users/{userId}/notifications
//
// Projects:
//
//	POST   /api/projects                          - creates the default columns too
//	GET    /api/projects/{id}
//	PUT    /api/projects/{id}
//	DELETE /api/projects/{id}                     - cascades to columns, tasks, members
//	GET    /api/projects/{projectId}/statuses
//	GET    /api/projects/{projectId}/tasks        - supports q, priority, assignee, due filters
//	GET    /api/projects/{projectId}/calendar     - tasks with due dates, optional from/until
//	GET    /api/projects/{projectId}/reports
//
// Members:
//
//	POST   /api/projects/{projectId}/members
//	GET    /api/projects/{projectId}/members
//	DELETE /api/projects/{projectId}/members/{userId}
//
// Statuses:
//
//	POST   /api/statuses
//	GET    /api/statuses/{id}
//	PUT    /api/statuses/{id}
//	DELETE /api/statuses/{id}
//
// Tasks:
//
//	POST   /api/tasks
//	GET    /api/tasks/{id}
//	PUT    /api/tasks/{id}
//	DELETE /api/tasks/{id}
//	POST   /api/tasks/{id}/move                   - status reassignment used by the board
//
// Notifications:
//
//	PUT    /api/notifications/{id}/read
func (a *App) Run(ctx context.Context, cmd *RunCommand) error {
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", a.config.ServerPort),
		Handler: a.Router(),
	}

	reminders, err := a.startReminders(ctx)
	if err != nil {
		return err
	}

	a.log.Info().Str("addr", server.Addr).Msg("starting planboard server")

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info().Msg("shutting down server")
		if reminders != nil {
			<-reminders.Stop().Done()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-serverErr:
		if reminders != nil {
			<-reminders.Stop().Done()
		}
		return err
	}
}

// Router builds the HTTP routing table. Exposed so tests can drive the
// API through httptest without binding a port.
func (a *App) Router() *mux.Router {
	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", a.handleHealth).Methods("GET")

	// User routes
	api.HandleFunc("/users", a.handleCreateUser).Methods("POST")
	api.HandleFunc("/users/{id}", a.handleGetUser).Methods("GET")
	api.HandleFunc("/users/{id}", a.handleUpdateUser).Methods("PUT")
	api.HandleFunc("/users/{id}", a.handleDeleteUser).Methods("DELETE")
	api.HandleFunc("/users/{userId}/projects", a.handleListProjects).Methods("GET")
	api.HandleFunc("/users/{userId}/notifications", a.handleListNotifications).Methods("GET")

	// Project routes
	api.HandleFunc("/projects", a.handleCreateProject).Methods("POST")
	api.HandleFunc("/projects/{id}", a.handleGetProject).Methods("GET")
	api.HandleFunc("/projects/{id}", a.handleUpdateProject).Methods("PUT")
	api.HandleFunc("/projects/{id}", a.handleDeleteProject).Methods("DELETE")
	api.HandleFunc("/projects/{projectId}/statuses", a.handleListStatuses).Methods("GET")
	api.HandleFunc("/projects/{projectId}/tasks", a.handleListTasks).Methods("GET")
	api.HandleFunc("/projects/{projectId}/calendar", a.handleCalendar).Methods("GET")
	api.HandleFunc("/projects/{projectId}/reports", a.handleReports).Methods("GET")

	// Member routes
	api.HandleFunc("/projects/{projectId}/members", a.handleAddMember).Methods("POST")
	api.HandleFunc("/projects/{projectId}/members", a.handleListMembers).Methods("GET")
	api.HandleFunc("/projects/{projectId}/members/{userId}", a.handleRemoveMember).Methods("DELETE")

	// Status routes
	api.HandleFunc("/statuses", a.handleCreateStatus).Methods("POST")
	api.HandleFunc("/statuses/{id}", a.handleGetStatus).Methods("GET")
	api.HandleFunc("/statuses/{id}", a.handleUpdateStatus).Methods("PUT")
	api.HandleFunc("/statuses/{id}", a.handleDeleteStatus).Methods("DELETE")

	// Task routes
	api.HandleFunc("/tasks", a.handleCreateTask).Methods("POST")
	api.HandleFunc("/tasks/{id}", a.handleGetTask).Methods("GET")
	api.HandleFunc("/tasks/{id}", a.handleUpdateTask).Methods("PUT")
	api.HandleFunc("/tasks/{id}", a.handleDeleteTask).Methods("DELETE")
	api.HandleFunc("/tasks/{id}/move", a.handleMoveTask).Methods("POST")

	// Notification routes
	api.HandleFunc("/notifications/{id}/read", a.handleMarkNotificationRead).Methods("PUT")

	// Health check route (outside of /api prefix)
	router.HandleFunc("/health", a.handleHealth).Methods("GET")

	return router
}

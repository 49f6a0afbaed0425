package client

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/planboard/planboard/pkg/board"
	"github.com/planboard/planboard/pkg/models"
)

// BoardGateway adapts the client to the board's gateway interface so a
// [board.Board] can run against a remote planboard server.
func (c *Client) BoardGateway() board.Gateway {
	return &boardGateway{c: c}
}

// NewBoard builds a board backed by this client, logging board events
// through the given logger.
func (c *Client) NewBoard(log zerolog.Logger) *board.Board {
	return board.New(c.BoardGateway(), board.LogNotifier{Log: log})
}

type boardGateway struct {
	c *Client
}

func (g *boardGateway) ListStatuses(ctx context.Context, projectID models.ProjectID) ([]*models.TaskStatus, error) {
	return g.c.ListStatuses(ctx, projectID)
}

func (g *boardGateway) ListTasks(ctx context.Context, projectID models.ProjectID) ([]*models.Task, error) {
	return g.c.ListTasks(ctx, projectID, board.FilterSpec{})
}

func (g *boardGateway) UpdateTask(ctx context.Context, task *models.Task) error {
	if task.StatusID != nil {
		_, err := g.c.MoveTask(ctx, task.ID, *task.StatusID)
		return err
	}
	_, err := g.c.UpdateTask(ctx, task)
	return err
}

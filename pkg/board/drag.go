package board

import (
	"context"
	"fmt"
	"sync"

	"github.com/planboard/planboard/pkg/models"
)

// DragState is the drag-and-drop controller's lifecycle state.
type DragState int

const (
	// DragIdle means no drag is in progress.
	DragIdle DragState = iota
	// Dragging means a task has been picked up and follows the pointer.
	Dragging
	// Reconciling means the task was dropped on a new column and the
	// store update is in flight.
	Reconciling
)

func (s DragState) String() string {
	switch s {
	case DragIdle:
		return "idle"
	case Dragging:
		return "dragging"
	case Reconciling:
		return "reconciling"
	default:
		return fmt.Sprintf("DragState(%d)", int(s))
	}
}

// DragController drives a single drag interaction over a Board. Hovering
// is purely visual: board state changes only at drop time, through the
// board's move protocol. At most one drag is active at a time.
type DragController struct {
	board *Board

	mu     sync.Mutex
	state  DragState
	taskID models.TaskID
	hover  *models.StatusID
	move   *Move
}

// NewDragController creates an idle controller over the board.
func NewDragController(b *Board) *DragController {
	return &DragController{board: b}
}

// State returns the controller's current state.
func (c *DragController) State() DragState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// DraggedTask returns the ID of the task being dragged, if any.
func (c *DragController) DraggedTask() (models.TaskID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == DragIdle {
		return models.TaskID{}, false
	}
	return c.taskID, true
}

// HoverTarget returns the column currently hovered over, if any.
func (c *DragController) HoverTarget() (models.StatusID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hover == nil {
		return models.StatusID{}, false
	}
	return *c.hover, true
}

// PickUp starts dragging the given task. It fails when another drag is
// active or the task is not on the board.
func (c *DragController) PickUp(taskID models.TaskID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != DragIdle {
		return fmt.Errorf("pick up task: drag already in progress (%s)", c.state)
	}
	if _, ok := c.board.Task(taskID); !ok {
		return fmt.Errorf("pick up task: unknown task %s", taskID)
	}
	c.state = Dragging
	c.taskID = taskID
	c.hover = nil
	return nil
}

// Hover records the column the dragged task is over. Passing nil means the
// pointer left all columns. Hovering never mutates the board.
func (c *DragController) Hover(target *models.StatusID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Dragging {
		return
	}
	c.hover = target
}

// Cancel abandons the drag without moving anything.
func (c *DragController) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Dragging {
		return
	}
	c.reset()
}

// Drop releases the task on the current hover target. Dropping outside any
// column, or on the task's current column, ends the drag with no store
// call. Otherwise the board applies the optimistic move and the controller
// stays in Reconciling until the store update resolves; the returned Move
// reports the outcome.
func (c *DragController) Drop(ctx context.Context) (*Move, error) {
	c.mu.Lock()
	if c.state != Dragging {
		c.mu.Unlock()
		return nil, fmt.Errorf("drop: no drag in progress")
	}
	taskID := c.taskID
	hover := c.hover
	c.mu.Unlock()

	if hover == nil {
		c.mu.Lock()
		c.reset()
		c.mu.Unlock()
		return resolvedMove(true), nil
	}

	move, err := c.board.MoveTask(ctx, taskID, *hover)
	if err != nil {
		c.mu.Lock()
		c.reset()
		c.mu.Unlock()
		return nil, err
	}

	c.mu.Lock()
	if move.Noop() {
		c.reset()
		c.mu.Unlock()
		return move, nil
	}
	c.state = Reconciling
	c.move = move
	c.mu.Unlock()

	go func() {
		<-move.Done()
		c.mu.Lock()
		if c.move == move {
			c.reset()
		}
		c.mu.Unlock()
	}()
	return move, nil
}

func (c *DragController) reset() {
	c.state = DragIdle
	c.taskID = models.TaskID{}
	c.hover = nil
	c.move = nil
}

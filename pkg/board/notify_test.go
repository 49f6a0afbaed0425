package board

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/planboard/planboard/pkg/models"
)

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := LogNotifier{Log: zerolog.New(&buf)}

	task := models.Task{ID: models.NewTaskID(), Title: "Ship it"}
	status := models.TaskStatus{ID: models.NewStatusID(), Name: "Done"}

	n.Notify(TaskMoved{Task: task, Status: status})
	assert.Contains(t, buf.String(), "task moved")
	assert.Contains(t, buf.String(), task.ID.String())

	buf.Reset()
	n.Notify(TaskMoveFailed{Task: task, To: status.ID, Err: errors.New("boom")})
	assert.Contains(t, buf.String(), "task move failed")
	assert.Contains(t, buf.String(), "boom")

	buf.Reset()
	n.Notify(BoardLoadFailed{ProjectID: models.NewProjectID(), Err: errors.New("down")})
	assert.Contains(t, buf.String(), "board load failed")
}

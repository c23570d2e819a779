package services

import (
	"context"
	"errors"
	"time"

	"github.com/adanyl0v/go-todo-web/internal/models"
)

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrInvalidTask  = errors.New("invalid task")
)

type TaskService interface {
	// CreateTask stores a new task with a fresh ID, position 0 and
	// both timestamps set to the current time.
	//
	// It returns ErrInvalidTask if the title is blank or doesn't
	// fit the title column.
	CreateTask(ctx context.Context, params CreateTaskParams) (*models.Task, error)

	// GetTask returns ErrTaskNotFound if the task with
	// the given ID doesn't exist.
	GetTask(ctx context.Context, id string) (*models.Task, error)

	// UpdateTask applies the non-nil fields of the given params
	// and refreshes the update timestamp.
	//
	// It returns ErrTaskNotFound if the task with the given ID
	// doesn't exist or ErrInvalidTask if the new title is blank.
	UpdateTask(ctx context.Context, params UpdateTaskParams) (*models.Task, error)

	// ToggleTaskDone flips the done flag of the task in a single
	// write and refreshes the update timestamp.
	ToggleTaskDone(ctx context.Context, id string) (*models.Task, error)

	// DeleteTask returns ErrTaskNotFound if the task with
	// the given ID doesn't exist.
	DeleteTask(ctx context.Context, id string) error

	// BulkUpdatePositions sets the position of every task referenced by
	// the given updates within one transaction and returns the number of
	// updates applied. Updates referencing unknown IDs are skipped.
	//
	// The update timestamp of the touched tasks is left as is.
	BulkUpdatePositions(ctx context.Context, updates []PositionUpdate) (int, error)

	// ListTasks returns every task. The result has no display order,
	// see package ordering for that.
	ListTasks(ctx context.Context) ([]*models.Task, error)

	// Ping reports whether the underlying storage is reachable.
	Ping(ctx context.Context) error
}

type CreateTaskParams struct {
	Title       string
	Description string
	IsDone      bool
	DueDate     *time.Time
}

type UpdateTaskParams struct {
	ID          string
	Title       *string
	Description *string
	IsDone      *bool
	// DueDate replaces the due date when set. ClearDueDate removes it
	// and takes precedence over DueDate.
	DueDate      *time.Time
	ClearDueDate bool
	Position     *int
}

type PositionUpdate struct {
	ID       string
	Position int
}

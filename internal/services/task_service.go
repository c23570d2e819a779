package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-todo-web/internal/models"
)

type taskServiceImpl struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
	now    func() time.Time
}

func NewTaskService(
	logger zerolog.Logger,
	pgPool *pgxpool.Pool,
) TaskService {
	return &taskServiceImpl{
		logger: logger,
		pgPool: pgPool,
		now:    time.Now,
	}
}

// EnsureTaskSchema creates the tasks table and its ordering index
// if they don't exist yet.
func EnsureTaskSchema(ctx context.Context, pgPool *pgxpool.Pool) error {
	statements := []string{
		`
CREATE TABLE IF NOT EXISTS tasks (
    id          BIGSERIAL PRIMARY KEY,
    title       VARCHAR(255) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    is_done     BOOLEAN NOT NULL DEFAULT FALSE,
    due_date    DATE,
    position    INTEGER NOT NULL DEFAULT 0,
    created_at  TIMESTAMPTZ NOT NULL,
    updated_at  TIMESTAMPTZ NOT NULL
)
`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_is_done_position ON tasks (is_done, position)`,
	}

	for _, stmt := range statements {
		_, err := pgPool.Exec(ctx, stmt)
		if err != nil {
			return err
		}
	}
	return nil
}

const taskColumns = `id,
       title,
       description,
       is_done,
       due_date,
       position,
       created_at,
       updated_at`

func scanTask(row pgx.Row) (*models.Task, error) {
	var (
		id   int64
		task models.Task
	)
	err := row.Scan(
		&id,
		&task.Title,
		&task.Description,
		&task.IsDone,
		&task.DueDate,
		&task.Position,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.ID = strconv.FormatInt(id, 10)
	return &task, nil
}

func isInvalidTaskError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.StringDataRightTruncationDataException ||
			pgErr.Code == pgerrcode.NotNullViolation
	}
	return false
}

func (s *taskServiceImpl) CreateTask(ctx context.Context, params CreateTaskParams) (*models.Task, error) {
	err := validateTitle(params.Title)
	if err != nil {
		s.logger.Error().
			Str("title", params.Title).
			Msg("invalid task title")
		return nil, err
	}

	// Postgres keeps microseconds, truncate so the returned task matches
	// what a later read gives back.
	now := s.now().UTC().Truncate(time.Microsecond)
	task := &models.Task{
		Title:       params.Title,
		Description: params.Description,
		IsDone:      params.IsDone,
		DueDate:     normalizeDueDate(params.DueDate),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	const insertTaskQuery = `
INSERT INTO tasks (title,
                   description,
                   is_done,
                   due_date,
                   position,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id
`
	var taskID int64
	err = s.pgPool.QueryRow(
		ctx,
		insertTaskQuery,
		task.Title,
		task.Description,
		task.IsDone,
		task.DueDate,
		task.Position,
		task.CreatedAt,
		task.UpdatedAt,
	).Scan(&taskID)
	if err != nil {
		if isInvalidTaskError(err) {
			s.logger.Error().
				Err(err).
				Msg("task rejected by schema")
			return nil, ErrInvalidTask
		}

		s.logger.Error().
			Err(err).
			Msg("failed to insert task")
		return nil, err
	}

	task.ID = strconv.FormatInt(taskID, 10)
	s.logger.Info().
		Str("task_id", task.ID).
		Msg("created task")
	return task, nil
}

func (s *taskServiceImpl) GetTask(ctx context.Context, id string) (*models.Task, error) {
	taskID, ok := parseTaskID(id)
	if !ok {
		s.logger.Error().
			Str("task_id", id).
			Msg("malformed task id")
		return nil, ErrTaskNotFound
	}

	const selectTaskByIDQuery = `
SELECT ` + taskColumns + `
FROM tasks
WHERE id = $1
`
	task, err := scanTask(s.pgPool.QueryRow(ctx, selectTaskByIDQuery, taskID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Error().
				Str("task_id", id).
				Msg("task not found")
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to select task by id")
		return nil, err
	}
	s.logger.Debug().
		Str("task_id", task.ID).
		Msg("selected task by id")

	return task, nil
}

func (s *taskServiceImpl) UpdateTask(ctx context.Context, params UpdateTaskParams) (*models.Task, error) {
	taskID, ok := parseTaskID(params.ID)
	if !ok {
		s.logger.Error().
			Str("task_id", params.ID).
			Msg("malformed task id")
		return nil, ErrTaskNotFound
	}

	if params.Title != nil {
		err := validateTitle(*params.Title)
		if err != nil {
			s.logger.Error().
				Str("task_id", params.ID).
				Msg("invalid task title")
			return nil, err
		}
	}

	const updateTaskQuery = `
UPDATE tasks
SET title = COALESCE($1, title),
    description = COALESCE($2, description),
    is_done = COALESCE($3, is_done),
    due_date = CASE WHEN $4::boolean THEN NULL ELSE COALESCE($5, due_date) END,
    position = COALESCE($6, position),
    updated_at = GREATEST($7, updated_at + INTERVAL '1 microsecond')
WHERE id = $8
RETURNING ` + taskColumns + `
`
	task, err := scanTask(s.pgPool.QueryRow(
		ctx,
		updateTaskQuery,
		params.Title,
		params.Description,
		params.IsDone,
		params.ClearDueDate,
		normalizeDueDate(params.DueDate),
		params.Position,
		s.now(),
		taskID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Error().
				Str("task_id", params.ID).
				Msg("task not found")
			return nil, ErrTaskNotFound
		}
		if isInvalidTaskError(err) {
			s.logger.Error().
				Err(err).
				Str("task_id", params.ID).
				Msg("task rejected by schema")
			return nil, ErrInvalidTask
		}

		s.logger.Error().
			Err(err).
			Str("task_id", params.ID).
			Msg("failed to update task")
		return nil, err
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Msg("updated task")
	return task, nil
}

func (s *taskServiceImpl) ToggleTaskDone(ctx context.Context, id string) (*models.Task, error) {
	taskID, ok := parseTaskID(id)
	if !ok {
		s.logger.Error().
			Str("task_id", id).
			Msg("malformed task id")
		return nil, ErrTaskNotFound
	}

	const toggleTaskDoneQuery = `
UPDATE tasks
SET is_done = NOT is_done,
    updated_at = GREATEST($1, updated_at + INTERVAL '1 microsecond')
WHERE id = $2
RETURNING ` + taskColumns + `
`
	task, err := scanTask(s.pgPool.QueryRow(ctx, toggleTaskDoneQuery, s.now(), taskID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Error().
				Str("task_id", id).
				Msg("task not found")
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to toggle task")
		return nil, err
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Bool("is_done", task.IsDone).
		Msg("toggled task")
	return task, nil
}

func (s *taskServiceImpl) DeleteTask(ctx context.Context, id string) error {
	taskID, ok := parseTaskID(id)
	if !ok {
		s.logger.Error().
			Str("task_id", id).
			Msg("malformed task id")
		return ErrTaskNotFound
	}

	const deleteTaskQuery = `
DELETE FROM tasks
WHERE id = $1
`
	tag, err := s.pgPool.Exec(ctx, deleteTaskQuery, taskID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to delete task")
		return err
	}
	if tag.RowsAffected() == 0 {
		s.logger.Error().
			Str("task_id", id).
			Msg("task not found")
		return ErrTaskNotFound
	}

	s.logger.Info().
		Str("task_id", id).
		Msg("deleted task")
	return nil
}

func (s *taskServiceImpl) BulkUpdatePositions(ctx context.Context, updates []PositionUpdate) (int, error) {
	const updatePositionQuery = `
UPDATE tasks
SET position = $1
WHERE id = $2
`
	batch := &pgx.Batch{}
	for _, u := range updates {
		taskID, ok := parseTaskID(u.ID)
		if !ok {
			s.logger.Debug().
				Str("task_id", u.ID).
				Msg("skipped malformed task id")
			continue
		}
		batch.Queue(updatePositionQuery, u.Position, taskID)
	}
	if batch.Len() == 0 {
		return 0, nil
	}

	tx, err := s.pgPool.Begin(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to begin transaction")
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	results := tx.SendBatch(ctx, batch)
	applied := 0
	for i := 0; i < batch.Len(); i++ {
		tag, err := results.Exec()
		if err != nil {
			_ = results.Close()
			s.logger.Error().
				Err(err).
				Msg("failed to update task position")
			return 0, err
		}
		applied += int(tag.RowsAffected())
	}

	err = results.Close()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to close batch results")
		return 0, err
	}

	err = tx.Commit(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to commit transaction")
		return 0, err
	}

	s.logger.Info().
		Int("requested", len(updates)).
		Int("applied", applied).
		Msg("updated task positions")
	return applied, nil
}

func (s *taskServiceImpl) ListTasks(ctx context.Context) ([]*models.Task, error) {
	const selectTasksQuery = `
SELECT ` + taskColumns + `
FROM tasks
ORDER BY id
`
	rows, err := s.pgPool.Query(ctx, selectTasksQuery)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select tasks")
		return nil, err
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan task")
			return nil, err
		}
		tasks = append(tasks, task)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}
	s.logger.Debug().
		Int("count", len(tasks)).
		Msg("selected tasks")

	return tasks, nil
}

func (s *taskServiceImpl) Ping(ctx context.Context) error {
	return s.pgPool.Ping(ctx)
}

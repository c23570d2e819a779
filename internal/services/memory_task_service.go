package services

import (
	"context"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-todo-web/internal/models"
)

type memoryTaskServiceImpl struct {
	logger zerolog.Logger
	now    func() time.Time

	mu     sync.RWMutex
	nextID int64
	tasks  map[int64]models.Task
}

// NewMemoryTaskService returns a TaskService that keeps tasks in process
// memory. Nothing survives a restart.
func NewMemoryTaskService(logger zerolog.Logger) TaskService {
	return newMemoryTaskService(logger, time.Now)
}

func newMemoryTaskService(logger zerolog.Logger, now func() time.Time) *memoryTaskServiceImpl {
	return &memoryTaskServiceImpl{
		logger: logger,
		now:    now,
		nextID: 1,
		tasks:  make(map[int64]models.Task),
	}
}

func (s *memoryTaskServiceImpl) CreateTask(_ context.Context, params CreateTaskParams) (*models.Task, error) {
	err := validateTitle(params.Title)
	if err != nil {
		s.logger.Error().
			Str("title", params.Title).
			Msg("invalid task title")
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	taskID := s.nextID
	s.nextID++

	task := models.Task{
		ID:          strconv.FormatInt(taskID, 10),
		Title:       params.Title,
		Description: params.Description,
		IsDone:      params.IsDone,
		DueDate:     normalizeDueDate(params.DueDate),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.tasks[taskID] = task

	s.logger.Info().
		Str("task_id", task.ID).
		Msg("created task")
	return cloneTask(task), nil
}

func (s *memoryTaskServiceImpl) GetTask(_ context.Context, id string) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.lookup(id)
	if !ok {
		s.logger.Error().
			Str("task_id", id).
			Msg("task not found")
		return nil, ErrTaskNotFound
	}
	return cloneTask(task), nil
}

func (s *memoryTaskServiceImpl) UpdateTask(_ context.Context, params UpdateTaskParams) (*models.Task, error) {
	if params.Title != nil {
		err := validateTitle(*params.Title)
		if err != nil {
			s.logger.Error().
				Str("task_id", params.ID).
				Msg("invalid task title")
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.lookup(params.ID)
	if !ok {
		s.logger.Error().
			Str("task_id", params.ID).
			Msg("task not found")
		return nil, ErrTaskNotFound
	}

	if params.Title != nil {
		task.Title = *params.Title
	}
	if params.Description != nil {
		task.Description = *params.Description
	}
	if params.IsDone != nil {
		task.IsDone = *params.IsDone
	}
	switch {
	case params.ClearDueDate:
		task.DueDate = nil
	case params.DueDate != nil:
		task.DueDate = normalizeDueDate(params.DueDate)
	}
	if params.Position != nil {
		task.Position = *params.Position
	}
	task.UpdatedAt = nextUpdatedAt(s.now(), task.UpdatedAt)
	s.store(task)

	s.logger.Info().
		Str("task_id", task.ID).
		Msg("updated task")
	return cloneTask(task), nil
}

func (s *memoryTaskServiceImpl) ToggleTaskDone(_ context.Context, id string) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.lookup(id)
	if !ok {
		s.logger.Error().
			Str("task_id", id).
			Msg("task not found")
		return nil, ErrTaskNotFound
	}

	task.IsDone = !task.IsDone
	task.UpdatedAt = nextUpdatedAt(s.now(), task.UpdatedAt)
	s.store(task)

	s.logger.Info().
		Str("task_id", task.ID).
		Bool("is_done", task.IsDone).
		Msg("toggled task")
	return cloneTask(task), nil
}

func (s *memoryTaskServiceImpl) DeleteTask(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	taskID, ok := parseTaskID(id)
	if !ok {
		return ErrTaskNotFound
	}
	if _, exists := s.tasks[taskID]; !exists {
		s.logger.Error().
			Str("task_id", id).
			Msg("task not found")
		return ErrTaskNotFound
	}
	delete(s.tasks, taskID)

	s.logger.Info().
		Str("task_id", id).
		Msg("deleted task")
	return nil
}

func (s *memoryTaskServiceImpl) BulkUpdatePositions(_ context.Context, updates []PositionUpdate) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	applied := 0
	for _, u := range updates {
		task, ok := s.lookup(u.ID)
		if !ok {
			s.logger.Debug().
				Str("task_id", u.ID).
				Msg("skipped unknown task")
			continue
		}
		task.Position = u.Position
		s.store(task)
		applied++
	}

	s.logger.Info().
		Int("requested", len(updates)).
		Int("applied", applied).
		Msg("updated task positions")
	return applied, nil
}

func (s *memoryTaskServiceImpl) ListTasks(context.Context) ([]*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0, len(s.tasks))
	for id := range s.tasks {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	tasks := make([]*models.Task, 0, len(ids))
	for _, id := range ids {
		tasks = append(tasks, cloneTask(s.tasks[id]))
	}
	s.logger.Debug().
		Int("count", len(tasks)).
		Msg("selected tasks")

	return tasks, nil
}

func (s *memoryTaskServiceImpl) Ping(context.Context) error {
	return nil
}

// lookup must be called with s.mu held.
func (s *memoryTaskServiceImpl) lookup(id string) (models.Task, bool) {
	taskID, ok := parseTaskID(id)
	if !ok {
		return models.Task{}, false
	}
	task, ok := s.tasks[taskID]
	return task, ok
}

// store must be called with s.mu held for writing.
func (s *memoryTaskServiceImpl) store(task models.Task) {
	taskID, _ := parseTaskID(task.ID)
	s.tasks[taskID] = task
}

func cloneTask(task models.Task) *models.Task {
	if task.DueDate != nil {
		d := *task.DueDate
		task.DueDate = &d
	}
	return &task
}

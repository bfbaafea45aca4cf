package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/taskdeck/taskdeck-api/internal/domain"
	"github.com/taskdeck/taskdeck-api/internal/platform/logger"
	"github.com/taskdeck/taskdeck-api/internal/store"
)

// TaskRepository defines the repository interface the service layer needs.
// It is aligned with store.TaskStore to ensure proper separation of concerns.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	GetForOwner(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error)
	List(ctx context.Context, ownerID uuid.UUID, query store.TaskQuery) ([]*domain.Task, error)
	Count(ctx context.Context, ownerID uuid.UUID, query store.TaskQuery) (int, error)
	Update(ctx context.Context, task *domain.Task) error
	DeleteForOwner(ctx context.Context, ownerID, taskID uuid.UUID) error
	CountByStatus(ctx context.Context, ownerID uuid.UUID) (map[domain.TaskStatus]int, error)
	CountByPriority(ctx context.Context, ownerID uuid.UUID) (map[domain.TaskPriority]int, error)
}

// Pagination describes the window of a task list response.
// Total counts all tasks matching the predicate before pagination;
// Pages is ceil(Total/Limit).
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// TaskPage is one page of a task list plus its pagination metadata.
type TaskPage struct {
	Tasks      []*domain.Task `json:"tasks"`
	Pagination Pagination     `json:"pagination"`
}

// TaskStats holds per-status and per-priority task counts for one owner.
// Enumeration values with no tasks are absent from the maps.
type TaskStats struct {
	StatusCounts   map[domain.TaskStatus]int   `json:"status_breakdown"`
	PriorityCounts map[domain.TaskPriority]int `json:"priority_breakdown"`
}

// CreateTaskInput carries the client-supplied fields for task creation.
// There is no owner field: the owner is always the authenticated caller.
type CreateTaskInput struct {
	Title       string
	Description string
	Status      string
	Priority    string
	DueDate     *time.Time
	Tags        []string
}

// UpdateTaskInput carries the client-supplied fields for a partial task
// update. Nil pointers mean "field not supplied, leave unchanged"; this
// is an explicit whitelist, so fields like owner, ID, and timestamps can
// never be injected through the update path.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	DueDate     *time.Time
	Tags        []string
}

// Empty reports whether the update supplies no fields at all.
func (in UpdateTaskInput) Empty() bool {
	return in.Title == nil &&
		in.Description == nil &&
		in.Status == nil &&
		in.Priority == nil &&
		in.DueDate == nil &&
		in.Tags == nil
}

// TaskService provides owner-scoped task operations. Every method takes
// the authenticated caller's ID and confines its effect to that owner's
// tasks.
type TaskService interface {
	// ListTasks returns one page of the owner's tasks matching the filter,
	// plus pagination metadata. An empty result is not an error.
	ListTasks(ctx context.Context, ownerID uuid.UUID, filter TaskListFilter) (*TaskPage, error)

	// GetTask returns the task only if it exists and is owned by the caller;
	// otherwise ErrTaskNotFound.
	GetTask(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error)

	// CreateTask validates the input, binds the owner to the caller, and
	// persists the new task. Returns the created record with its
	// store-assigned ID and timestamps.
	CreateTask(ctx context.Context, ownerID uuid.UUID, input CreateTaskInput) (*domain.Task, error)

	// UpdateTask applies the supplied fields to the owner's task and
	// refreshes the last-modified timestamp. Returns the updated record.
	UpdateTask(ctx context.Context, ownerID, taskID uuid.UUID, input UpdateTaskInput) (*domain.Task, error)

	// DeleteTask permanently removes the owner's task.
	DeleteTask(ctx context.Context, ownerID, taskID uuid.UUID) error

	// TaskStats computes the owner's per-status and per-priority task
	// counts, fresh on every call.
	TaskStats(ctx context.Context, ownerID uuid.UUID) (*TaskStats, error)
}

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	taskRepo TaskRepository
	logger   *slog.Logger
}

// Ensure taskServiceImpl implements TaskService
var _ TaskService = (*taskServiceImpl)(nil)

// NewTaskService creates a new TaskService with the given repository.
// If logger is nil, a default logger will be used.
func NewTaskService(taskRepo TaskRepository, logger *slog.Logger) (TaskService, error) {
	if taskRepo == nil {
		return nil, domain.NewValidationError("taskRepo", "cannot be nil", domain.ErrValidation)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		taskRepo: taskRepo,
		logger:   logger.With(slog.String("component", "task_service")),
	}, nil
}

// ListTasks implements TaskService.ListTasks
func (s *taskServiceImpl) ListTasks(
	ctx context.Context,
	ownerID uuid.UUID,
	filter TaskListFilter,
) (*TaskPage, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query, page, limit, err := filter.buildQuery()
	if err != nil {
		log.Debug("rejected task list filter",
			slog.String("error", err.Error()),
			slog.String("user_id", ownerID.String()))
		return nil, err
	}

	tasks, err := s.taskRepo.List(ctx, ownerID, query)
	if err != nil {
		return nil, NewTaskServiceError("list_tasks", "failed to list tasks", err)
	}

	total, err := s.taskRepo.Count(ctx, ownerID, query)
	if err != nil {
		return nil, NewTaskServiceError("list_tasks", "failed to count tasks", err)
	}

	return &TaskPage{
		Tasks: tasks,
		Pagination: Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: (total + limit - 1) / limit,
		},
	}, nil
}

// GetTask implements TaskService.GetTask
func (s *taskServiceImpl) GetTask(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.taskRepo.GetForOwner(ctx, ownerID, taskID)
	if err != nil {
		return nil, NewTaskServiceError("get_task", "failed to get task", err)
	}
	return task, nil
}

// CreateTask implements TaskService.CreateTask
func (s *taskServiceImpl) CreateTask(
	ctx context.Context,
	ownerID uuid.UUID,
	input CreateTaskInput,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	status, priority, err := parseEnums(input.Status, input.Priority)
	if err != nil {
		return nil, err
	}

	task, err := domain.NewTask(
		ownerID,
		input.Title,
		input.Description,
		status,
		priority,
		input.DueDate,
		input.Tags,
	)
	if err != nil {
		log.Debug("invalid task creation input",
			slog.String("error", err.Error()),
			slog.String("user_id", ownerID.String()))
		return nil, err
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, NewTaskServiceError("create_task", "failed to create task", err)
	}

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("user_id", ownerID.String()))
	return task, nil
}

// UpdateTask implements TaskService.UpdateTask
// Only the supplied fields are overwritten, each validated with the same
// rules as creation. Omitted fields keep their stored values. The write
// is last-write-wins: there is no optimistic concurrency token.
func (s *taskServiceImpl) UpdateTask(
	ctx context.Context,
	ownerID, taskID uuid.UUID,
	input UpdateTaskInput,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.taskRepo.GetForOwner(ctx, ownerID, taskID)
	if err != nil {
		return nil, NewTaskServiceError("update_task", "failed to get task", err)
	}

	// An update that supplies no fields changes nothing; return the
	// stored task without touching timestamps or issuing a write.
	if input.Empty() {
		return task, nil
	}

	if err := applyTaskUpdate(task, input); err != nil {
		log.Debug("invalid task update input",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, err
	}

	task.Touch()

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, NewTaskServiceError("update_task", "failed to update task", err)
	}

	log.Info("task updated",
		slog.String("task_id", task.ID.String()),
		slog.String("user_id", ownerID.String()))
	return task, nil
}

// DeleteTask implements TaskService.DeleteTask
func (s *taskServiceImpl) DeleteTask(ctx context.Context, ownerID, taskID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.taskRepo.DeleteForOwner(ctx, ownerID, taskID); err != nil {
		return NewTaskServiceError("delete_task", "failed to delete task", err)
	}

	log.Info("task deleted",
		slog.String("task_id", taskID.String()),
		slog.String("user_id", ownerID.String()))
	return nil
}

// TaskStats implements TaskService.TaskStats
func (s *taskServiceImpl) TaskStats(ctx context.Context, ownerID uuid.UUID) (*TaskStats, error) {
	statusCounts, err := s.taskRepo.CountByStatus(ctx, ownerID)
	if err != nil {
		return nil, NewTaskServiceError("task_stats", "failed to count tasks by status", err)
	}

	priorityCounts, err := s.taskRepo.CountByPriority(ctx, ownerID)
	if err != nil {
		return nil, NewTaskServiceError("task_stats", "failed to count tasks by priority", err)
	}

	return &TaskStats{
		StatusCounts:   statusCounts,
		PriorityCounts: priorityCounts,
	}, nil
}

// parseEnums validates the optional status and priority strings from a
// creation request. Empty strings mean "use the default", resolved by
// domain.NewTask.
func parseEnums(statusStr, priorityStr string) (domain.TaskStatus, domain.TaskPriority, error) {
	var status domain.TaskStatus
	if statusStr != "" {
		status = domain.TaskStatus(statusStr)
		if !status.IsValid() {
			return "", "", domain.NewValidationError(
				"status", "must be one of: pending, in-progress, completed, cancelled",
				domain.ErrValidation)
		}
	}

	var priority domain.TaskPriority
	if priorityStr != "" {
		priority = domain.TaskPriority(priorityStr)
		if !priority.IsValid() {
			return "", "", domain.NewValidationError(
				"priority", "must be one of: low, medium, high, urgent",
				domain.ErrValidation)
		}
	}

	return status, priority, nil
}

// applyTaskUpdate overwrites the task's fields from the supplied input
// and validates the result. Each field is applied only when present.
func applyTaskUpdate(task *domain.Task, input UpdateTaskInput) error {
	if input.Title != nil {
		task.Title = strings.TrimSpace(*input.Title)
	}

	if input.Description != nil {
		task.Description = strings.TrimSpace(*input.Description)
	}

	if input.Status != nil {
		status := domain.TaskStatus(*input.Status)
		if !status.IsValid() {
			return domain.NewValidationError(
				"status", "must be one of: pending, in-progress, completed, cancelled",
				domain.ErrValidation)
		}
		task.Status = status
	}

	if input.Priority != nil {
		priority := domain.TaskPriority(*input.Priority)
		if !priority.IsValid() {
			return domain.NewValidationError(
				"priority", "must be one of: low, medium, high, urgent",
				domain.ErrValidation)
		}
		task.Priority = priority
	}

	if input.DueDate != nil {
		task.DueDate = input.DueDate
	}

	if input.Tags != nil {
		task.Tags = input.Tags
	}

	return task.Validate()
}

package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/taskdeck/taskdeck-api/internal/domain"
)

// TaskQuery describes the optional filter predicate and pagination window
// for a task list query. The owner scope is NOT part of the query: stores
// take the owner ID as a separate mandatory argument and conjunct it
// first, so client-supplied filters can never widen the result set to
// another user's tasks.
type TaskQuery struct {
	// Status, if non-empty, restricts results to tasks with this status.
	Status domain.TaskStatus

	// Priority, if non-empty, restricts results to tasks with this priority.
	Priority domain.TaskPriority

	// Search, if non-empty, restricts results to tasks whose title or
	// description contains the term as a case-insensitive substring.
	Search string

	// Limit and Offset define the pagination window. Results are sorted by
	// creation time descending, tie-broken by ID, before the window applies.
	Limit  int
	Offset int
}

// TaskStore defines the interface for task data persistence.
// Every method that targets existing tasks is owner-scoped: a task that
// exists but belongs to another user behaves exactly like a task that
// does not exist (ErrTaskNotFound).
type TaskStore interface {
	// Create saves a new task to the store.
	// It handles domain validation internally.
	// Returns validation errors from the domain Task if data is invalid.
	Create(ctx context.Context, task *domain.Task) error

	// GetForOwner retrieves a task by ID, scoped to the given owner.
	// Returns ErrTaskNotFound if the task does not exist or is foreign.
	GetForOwner(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error)

	// List retrieves the owner's tasks matching the query, sorted by
	// creation time descending (ties broken by ID for determinism) with
	// the query's pagination window applied.
	// Returns an empty slice if no tasks match.
	List(ctx context.Context, ownerID uuid.UUID, query TaskQuery) ([]*domain.Task, error)

	// Count returns the total number of the owner's tasks matching the
	// query's predicate, ignoring its pagination window.
	Count(ctx context.Context, ownerID uuid.UUID, query TaskQuery) (int, error)

	// Update saves changes to an existing task, scoped to the task's owner.
	// Returns ErrTaskNotFound if the task does not exist or is foreign.
	// Returns validation errors if the task data is invalid.
	Update(ctx context.Context, task *domain.Task) error

	// DeleteForOwner permanently removes a task, scoped to the given owner.
	// Returns ErrTaskNotFound if the task does not exist or is foreign.
	DeleteForOwner(ctx context.Context, ownerID, taskID uuid.UUID) error

	// CountByStatus returns the number of the owner's tasks per status.
	// Statuses with no tasks are absent from the map.
	CountByStatus(ctx context.Context, ownerID uuid.UUID) (map[domain.TaskStatus]int, error)

	// CountByPriority returns the number of the owner's tasks per priority.
	// Priorities with no tasks are absent from the map.
	CountByPriority(ctx context.Context, ownerID uuid.UUID) (map[domain.TaskPriority]int, error)

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	// The transaction should be created and managed by the caller.
	WithTx(tx *sql.Tx) TaskStore
}

package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/taskdeck/taskdeck-api/internal/domain"
	"github.com/taskdeck/taskdeck-api/internal/platform/logger"
	"github.com/taskdeck/taskdeck-api/internal/store"
)

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// taskColumns is the column list shared by every SELECT in this file.
const taskColumns = "id, user_id, title, description, status, priority, due_date, tags, created_at, updated_at"

// buildTaskPredicate renders the WHERE clause for a task list query.
// The owner clause is always conjuncted first and is not derived from
// client input, so no combination of filters can escape the owner scope.
// Returns the clause and its ordered arguments.
func buildTaskPredicate(ownerID uuid.UUID, query store.TaskQuery) (string, []any) {
	clauses := []string{"user_id = $1"}
	args := []any{ownerID}

	if query.Status != "" {
		args = append(args, query.Status)
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}

	if query.Priority != "" {
		args = append(args, query.Priority)
		clauses = append(clauses, fmt.Sprintf("priority = $%d", len(args)))
	}

	if query.Search != "" {
		args = append(args, escapeLikePattern(query.Search))
		n := len(args)
		clauses = append(clauses, fmt.Sprintf(
			"(title ILIKE '%%' || $%d || '%%' OR description ILIKE '%%' || $%d || '%%')", n, n))
	}

	return strings.Join(clauses, " AND "), args
}

// escapeLikePattern escapes LIKE metacharacters so the search term is
// matched as a literal substring rather than a pattern.
func escapeLikePattern(term string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(term)
}

// Create implements store.TaskStore.Create
// It saves a new task to the database, handling domain validation.
// Returns validation errors from the domain Task if data is invalid.
// Returns store.ErrInvalidEntity if the owner doesn't exist (foreign key violation).
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	tagsJSON, err := marshalTags(task.Tags)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO tasks (id, user_id, title, description, status, priority, due_date, tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.UserID,
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		task.DueDate,
		tagsJSON,
		task.CreatedAt,
		task.UpdatedAt,
	)

	if err != nil {
		mapped := mapError(err)
		if errors.Is(mapped, store.ErrInvalidEntity) {
			log.Warn("foreign key violation during task creation",
				slog.String("task_id", task.ID.String()),
				slog.String("user_id", task.UserID.String()))
			return fmt.Errorf("%w: user with ID %s not found",
				store.ErrInvalidEntity, task.UserID)
		}

		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()),
			slog.String("user_id", task.UserID.String()))
		return mapped
	}

	log.Info("task created successfully",
		slog.String("task_id", task.ID.String()),
		slog.String("user_id", task.UserID.String()),
		slog.String("status", string(task.Status)))
	return nil
}

// GetForOwner implements store.TaskStore.GetForOwner
// It retrieves a task by ID, scoped to the given owner.
// Returns store.ErrTaskNotFound if the task does not exist or belongs to
// another user; the two cases are indistinguishable to the caller.
func (s *PostgresTaskStore) GetForOwner(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := fmt.Sprintf(`
		SELECT %s
		FROM tasks
		WHERE id = $1 AND user_id = $2
	`, taskColumns)

	task, err := scanTask(s.db.QueryRowContext(ctx, query, taskID, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found",
				slog.String("task_id", taskID.String()),
				slog.String("user_id", ownerID.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, mapError(err)
	}

	return task, nil
}

// List implements store.TaskStore.List
// Results are sorted by creation time descending; ties on identical
// timestamps break by ID so repeated queries over unchanged data return
// a stable order.
// Returns an empty slice if no tasks match.
func (s *PostgresTaskStore) List(ctx context.Context, ownerID uuid.UUID, taskQuery store.TaskQuery) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	predicate, args := buildTaskPredicate(ownerID, taskQuery)

	args = append(args, taskQuery.Limit)
	limitArg := len(args)
	args = append(args, taskQuery.Offset)
	offsetArg := len(args)

	query := fmt.Sprintf(`
		SELECT %s
		FROM tasks
		WHERE %s
		ORDER BY created_at DESC, id ASC
		LIMIT $%d OFFSET $%d
	`, taskColumns, predicate, limitArg, offsetArg)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query tasks",
			slog.String("error", err.Error()),
			slog.String("user_id", ownerID.String()))
		return nil, mapError(err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Error("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	tasks := []*domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			log.Error("failed to scan task row",
				slog.String("error", err.Error()))
			return nil, mapError(err)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, mapError(err)
	}

	log.Debug("listed tasks",
		slog.String("user_id", ownerID.String()),
		slog.Int("count", len(tasks)))
	return tasks, nil
}

// Count implements store.TaskStore.Count
// It returns the total number of tasks matching the query's predicate,
// ignoring its pagination window.
func (s *PostgresTaskStore) Count(ctx context.Context, ownerID uuid.UUID, taskQuery store.TaskQuery) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	predicate, args := buildTaskPredicate(ownerID, taskQuery)

	query := fmt.Sprintf(`SELECT COUNT(*) FROM tasks WHERE %s`, predicate)

	var total int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		log.Error("failed to count tasks",
			slog.String("error", err.Error()),
			slog.String("user_id", ownerID.String()))
		return 0, mapError(err)
	}

	return total, nil
}

// Update implements store.TaskStore.Update
// It overwrites the task row scoped by id and owner.
// Returns store.ErrTaskNotFound if the task does not exist or is foreign.
// Returns validation errors if the task data is invalid.
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	tagsJSON, err := marshalTags(task.Tags)
	if err != nil {
		return err
	}

	query := `
		UPDATE tasks
		SET title = $1, description = $2, status = $3, priority = $4,
			due_date = $5, tags = $6, updated_at = $7
		WHERE id = $8 AND user_id = $9
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		task.DueDate,
		tagsJSON,
		task.UpdatedAt,
		task.ID,
		task.UserID,
	)

	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return mapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return mapError(err)
	}

	if rowsAffected == 0 {
		log.Debug("task not found for update",
			slog.String("task_id", task.ID.String()),
			slog.String("user_id", task.UserID.String()))
		return store.ErrTaskNotFound
	}

	log.Info("task updated successfully",
		slog.String("task_id", task.ID.String()),
		slog.String("status", string(task.Status)))
	return nil
}

// DeleteForOwner implements store.TaskStore.DeleteForOwner
// It permanently removes a task scoped by id and owner; there is no
// soft-delete or tombstone state.
// Returns store.ErrTaskNotFound if the task does not exist or is foreign.
func (s *PostgresTaskStore) DeleteForOwner(ctx context.Context, ownerID, taskID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM tasks WHERE id = $1 AND user_id = $2`

	result, err := s.db.ExecContext(ctx, query, taskID, ownerID)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return mapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return mapError(err)
	}

	if rowsAffected == 0 {
		log.Debug("task not found for delete",
			slog.String("task_id", taskID.String()),
			slog.String("user_id", ownerID.String()))
		return store.ErrTaskNotFound
	}

	log.Info("task deleted successfully",
		slog.String("task_id", taskID.String()),
		slog.String("user_id", ownerID.String()))
	return nil
}

// CountByStatus implements store.TaskStore.CountByStatus
// Statuses with no tasks are absent from the returned map.
func (s *PostgresTaskStore) CountByStatus(ctx context.Context, ownerID uuid.UUID) (map[domain.TaskStatus]int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT status, COUNT(*)
		FROM tasks
		WHERE user_id = $1
		GROUP BY status
	`

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		log.Error("failed to count tasks by status",
			slog.String("error", err.Error()),
			slog.String("user_id", ownerID.String()))
		return nil, mapError(err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Error("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	counts := make(map[domain.TaskStatus]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			log.Error("failed to scan status count row",
				slog.String("error", err.Error()))
			return nil, mapError(err)
		}
		counts[domain.TaskStatus(status)] = count
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, mapError(err)
	}

	return counts, nil
}

// CountByPriority implements store.TaskStore.CountByPriority
// Priorities with no tasks are absent from the returned map.
func (s *PostgresTaskStore) CountByPriority(ctx context.Context, ownerID uuid.UUID) (map[domain.TaskPriority]int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT priority, COUNT(*)
		FROM tasks
		WHERE user_id = $1
		GROUP BY priority
	`

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		log.Error("failed to count tasks by priority",
			slog.String("error", err.Error()),
			slog.String("user_id", ownerID.String()))
		return nil, mapError(err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Error("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	counts := make(map[domain.TaskPriority]int)
	for rows.Next() {
		var priority string
		var count int
		if err := rows.Scan(&priority, &count); err != nil {
			log.Error("failed to scan priority count row",
				slog.String("error", err.Error()))
			return nil, mapError(err)
		}
		counts[domain.TaskPriority(priority)] = count
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, mapError(err)
	}

	return counts, nil
}

// WithTx implements store.TaskStore.WithTx
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{
		db:     tx,
		logger: s.logger,
	}
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanTask.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTask reads one task row. Tags are stored as a JSONB array and the
// due date is nullable, so both need an intermediate representation.
func scanTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task
	var status, priority string
	var dueDate sql.NullTime
	var tagsJSON []byte

	err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.Description,
		&status,
		&priority,
		&dueDate,
		&tagsJSON,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Status = domain.TaskStatus(status)
	task.Priority = domain.TaskPriority(priority)

	if dueDate.Valid {
		due := dueDate.Time
		task.DueDate = &due
	}

	if len(tagsJSON) > 0 {
		if err := json.Unmarshal(tagsJSON, &task.Tags); err != nil {
			return nil, fmt.Errorf("failed to decode task tags: %w", err)
		}
	}

	return &task, nil
}

// marshalTags encodes the tags slice for the JSONB column.
// nil tags map to SQL NULL so the absence of tags round-trips.
func marshalTags(tags []string) (any, error) {
	if tags == nil {
		return nil, nil
	}

	encoded, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("failed to encode task tags: %w", err)
	}
	return encoded, nil
}

package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// TaskStatus represents the lifecycle state of a task.
// The set of valid values is closed; anything else is rejected
// before persistence.
type TaskStatus string

// Valid task statuses.
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// IsValid reports whether the status is a member of the closed enumeration.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusCancelled:
		return true
	}
	return false
}

// TaskPriority represents the urgency of a task.
type TaskPriority string

// Valid task priorities.
const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

// IsValid reports whether the priority is a member of the closed enumeration.
func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
		return true
	}
	return false
}

// Field length limits for task attributes.
const (
	TaskTitleMaxLength       = 200
	TaskDescriptionMaxLength = 1000
)

// Task-specific validation errors. They wrap ErrValidation so callers
// can classify them with errors.Is.
var (
	ErrTaskIDEmpty = fmt.Errorf("%w: task ID cannot be empty", ErrValidation)

	ErrTaskUserIDEmpty = fmt.Errorf("%w: task user ID cannot be empty", ErrValidation)

	ErrTaskTitleEmpty = fmt.Errorf("%w: task title cannot be empty", ErrValidation)

	ErrTaskTitleTooLong = fmt.Errorf(
		"%w: task title cannot exceed %d characters",
		ErrValidation, TaskTitleMaxLength)

	ErrTaskDescriptionTooLong = fmt.Errorf(
		"%w: task description cannot exceed %d characters",
		ErrValidation, TaskDescriptionMaxLength)

	ErrTaskStatusInvalid = fmt.Errorf("%w: task status is not a valid value", ErrValidation)

	ErrTaskPriorityInvalid = fmt.Errorf("%w: task priority is not a valid value", ErrValidation)
)

// Task represents a single to-do item owned by exactly one user.
// The owner association is immutable: every store operation on a task
// is scoped to its UserID.
type Task struct {
	ID          uuid.UUID    `json:"id"`
	UserID      uuid.UUID    `json:"user_id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	Tags        []string     `json:"tags,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// NewTask creates a new Task bound to the given owner. It trims the title
// and description, applies the default status (pending) and priority (medium) when the
// corresponding argument is empty, generates a new UUID, and sets the
// creation/update timestamps. Returns an error if validation fails.
func NewTask(
	userID uuid.UUID,
	title, description string,
	status TaskStatus,
	priority TaskPriority,
	dueDate *time.Time,
	tags []string,
) (*Task, error) {
	if status == "" {
		status = TaskStatusPending
	}
	if priority == "" {
		priority = TaskPriorityMedium
	}

	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Status:      status,
		Priority:    priority,
		DueDate:     dueDate,
		Tags:        tags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrTaskIDEmpty
	}

	if t.UserID == uuid.Nil {
		return ErrTaskUserIDEmpty
	}

	if strings.TrimSpace(t.Title) == "" {
		return ErrTaskTitleEmpty
	}

	// Length caps count characters, not bytes, so multi-byte titles are
	// not penalized.
	if utf8.RuneCountInString(t.Title) > TaskTitleMaxLength {
		return ErrTaskTitleTooLong
	}

	if utf8.RuneCountInString(t.Description) > TaskDescriptionMaxLength {
		return ErrTaskDescriptionTooLong
	}

	if !t.Status.IsValid() {
		return ErrTaskStatusInvalid
	}

	if !t.Priority.IsValid() {
		return ErrTaskPriorityInvalid
	}

	return nil
}

// Touch refreshes the last-modified timestamp. The store persists the
// value set here; clients can never set timestamps directly.
func (t *Task) Touch() {
	t.UpdatedAt = time.Now().UTC()
}

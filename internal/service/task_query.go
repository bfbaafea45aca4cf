package service

import (
	"strconv"

	"github.com/taskdeck/taskdeck-api/internal/domain"
	"github.com/taskdeck/taskdeck-api/internal/store"
)

// Pagination defaults and bounds for task list queries.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// TaskListFilter carries the client-supplied filter parameters for a
// task list query, before validation. All fields are the raw query
// string values; empty string means "not supplied". An explicit "0" is
// therefore distinguishable from an absent parameter, and is rejected.
// The owner is deliberately absent: it comes from the authenticated
// identity and is injected by the service, never from client input.
type TaskListFilter struct {
	Status   string
	Priority string
	Search   string
	Page     string
	Limit    string
}

// buildQuery validates the filter and produces the concrete store query
// plus the effective page and limit. Validation failures wrap
// domain.ErrInvalidFilter with field-level detail.
func (f TaskListFilter) buildQuery() (store.TaskQuery, int, int, error) {
	var query store.TaskQuery

	if f.Status != "" {
		status := domain.TaskStatus(f.Status)
		if !status.IsValid() {
			return query, 0, 0, domain.NewValidationError(
				"status", "must be one of: pending, in-progress, completed, cancelled",
				domain.ErrInvalidFilter)
		}
		query.Status = status
	}

	if f.Priority != "" {
		priority := domain.TaskPriority(f.Priority)
		if !priority.IsValid() {
			return query, 0, 0, domain.NewValidationError(
				"priority", "must be one of: low, medium, high, urgent",
				domain.ErrInvalidFilter)
		}
		query.Priority = priority
	}

	query.Search = f.Search

	page := DefaultPage
	if f.Page != "" {
		parsed, err := strconv.Atoi(f.Page)
		if err != nil || parsed < 1 {
			return query, 0, 0, domain.NewValidationError(
				"page", "must be a positive integer", domain.ErrInvalidFilter)
		}
		page = parsed
	}

	limit := DefaultLimit
	if f.Limit != "" {
		parsed, err := strconv.Atoi(f.Limit)
		if err != nil || parsed < 1 || parsed > MaxLimit {
			return query, 0, 0, domain.NewValidationError(
				"limit", "must be between 1 and 100", domain.ErrInvalidFilter)
		}
		limit = parsed
	}

	query.Limit = limit
	query.Offset = (page - 1) * limit

	return query, page, limit, nil
}

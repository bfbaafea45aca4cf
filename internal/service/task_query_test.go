package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskdeck/taskdeck-api/internal/domain"
)

func TestTaskListFilterBuildQuery(t *testing.T) {
	t.Parallel()

	t.Run("defaults when unsupplied", func(t *testing.T) {
		t.Parallel()

		query, page, limit, err := TaskListFilter{}.buildQuery()
		require.NoError(t, err)

		assert.Equal(t, DefaultPage, page)
		assert.Equal(t, DefaultLimit, limit)
		assert.Equal(t, DefaultLimit, query.Limit)
		assert.Equal(t, 0, query.Offset)
		assert.Empty(t, query.Status)
		assert.Empty(t, query.Priority)
		assert.Empty(t, query.Search)
	})

	t.Run("offset math", func(t *testing.T) {
		t.Parallel()

		query, page, limit, err := TaskListFilter{Page: "3", Limit: "25"}.buildQuery()
		require.NoError(t, err)

		assert.Equal(t, 3, page)
		assert.Equal(t, 25, limit)
		assert.Equal(t, 50, query.Offset)
	})

	t.Run("valid filters pass through", func(t *testing.T) {
		t.Parallel()

		query, _, _, err := TaskListFilter{
			Status:   "in-progress",
			Priority: "urgent",
			Search:   "milk",
		}.buildQuery()
		require.NoError(t, err)

		assert.Equal(t, domain.TaskStatusInProgress, query.Status)
		assert.Equal(t, domain.TaskPriorityUrgent, query.Priority)
		assert.Equal(t, "milk", query.Search)
	})

	t.Run("invalid status rejected", func(t *testing.T) {
		t.Parallel()

		_, _, _, err := TaskListFilter{Status: "done"}.buildQuery()
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidFilter)

		var validationErr *domain.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "status", validationErr.Field)
	})

	t.Run("invalid priority rejected", func(t *testing.T) {
		t.Parallel()

		_, _, _, err := TaskListFilter{Priority: "critical"}.buildQuery()
		assert.ErrorIs(t, err, domain.ErrInvalidFilter)
	})

	t.Run("explicit zero page rejected", func(t *testing.T) {
		t.Parallel()

		// "0" was supplied by the client, which is different from the
		// parameter being absent. It must not coerce to the default.
		_, _, _, err := TaskListFilter{Page: "0"}.buildQuery()
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidFilter)

		var validationErr *domain.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "page", validationErr.Field)
	})

	t.Run("explicit zero limit rejected", func(t *testing.T) {
		t.Parallel()

		_, _, _, err := TaskListFilter{Limit: "0"}.buildQuery()
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidFilter)

		var validationErr *domain.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "limit", validationErr.Field)
	})

	t.Run("non-numeric page and limit rejected", func(t *testing.T) {
		t.Parallel()

		_, _, _, err := TaskListFilter{Page: "abc"}.buildQuery()
		assert.ErrorIs(t, err, domain.ErrInvalidFilter)

		_, _, _, err = TaskListFilter{Limit: "ten"}.buildQuery()
		assert.ErrorIs(t, err, domain.ErrInvalidFilter)
	})

	t.Run("negative page rejected", func(t *testing.T) {
		t.Parallel()

		_, _, _, err := TaskListFilter{Page: "-1"}.buildQuery()
		assert.ErrorIs(t, err, domain.ErrInvalidFilter)
	})

	t.Run("limit bounds enforced", func(t *testing.T) {
		t.Parallel()

		_, _, _, err := TaskListFilter{Limit: "101"}.buildQuery()
		assert.ErrorIs(t, err, domain.ErrInvalidFilter)

		_, _, _, err = TaskListFilter{Limit: "-5"}.buildQuery()
		assert.ErrorIs(t, err, domain.ErrInvalidFilter)

		_, _, limit, err := TaskListFilter{Limit: "100"}.buildQuery()
		require.NoError(t, err)
		assert.Equal(t, MaxLimit, limit)
	})
}

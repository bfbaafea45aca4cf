package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/taskdeck/taskdeck-api/internal/api/shared"
	"github.com/taskdeck/taskdeck-api/internal/domain"
	"github.com/taskdeck/taskdeck-api/internal/service"
)

// MockTaskService is a testify mock of service.TaskService.
type MockTaskService struct {
	mock.Mock
}

var _ service.TaskService = (*MockTaskService)(nil)

func (m *MockTaskService) ListTasks(
	ctx context.Context,
	ownerID uuid.UUID,
	filter service.TaskListFilter,
) (*service.TaskPage, error) {
	args := m.Called(ctx, ownerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TaskPage), args.Error(1)
}

func (m *MockTaskService) GetTask(
	ctx context.Context,
	ownerID, taskID uuid.UUID,
) (*domain.Task, error) {
	args := m.Called(ctx, ownerID, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskService) CreateTask(
	ctx context.Context,
	ownerID uuid.UUID,
	input service.CreateTaskInput,
) (*domain.Task, error) {
	args := m.Called(ctx, ownerID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskService) UpdateTask(
	ctx context.Context,
	ownerID, taskID uuid.UUID,
	input service.UpdateTaskInput,
) (*domain.Task, error) {
	args := m.Called(ctx, ownerID, taskID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskService) DeleteTask(ctx context.Context, ownerID, taskID uuid.UUID) error {
	args := m.Called(ctx, ownerID, taskID)
	return args.Error(0)
}

func (m *MockTaskService) TaskStats(
	ctx context.Context,
	ownerID uuid.UUID,
) (*service.TaskStats, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TaskStats), args.Error(1)
}

// newTaskRouter mounts the handler on a chi router so that URL parameters
// resolve the same way they do in production.
func newTaskRouter(h *TaskHandler) http.Handler {
	r := chi.NewRouter()
	r.Get("/api/tasks", h.List)
	r.Post("/api/tasks", h.Create)
	r.Get("/api/tasks/stats/summary", h.Stats)
	r.Get("/api/tasks/{id}", h.Get)
	r.Put("/api/tasks/{id}", h.Update)
	r.Delete("/api/tasks/{id}", h.Delete)
	return r
}

// authedRequest builds a request whose context carries the given user ID,
// as the auth middleware would have set it.
func authedRequest(t *testing.T, method, target string, body any, userID uuid.UUID) *http.Request {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	ctx := context.WithValue(req.Context(), shared.UserIDContextKey, userID)
	return req.WithContext(ctx)
}

func newTestTask(userID uuid.UUID) *domain.Task {
	now := time.Now().UTC()
	return &domain.Task{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     "Buy milk",
		Status:    domain.TaskStatusPending,
		Priority:  domain.TaskPriorityMedium,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestTaskHandlerList(t *testing.T) {
	userID := uuid.New()

	t.Run("returns page with filters applied", func(t *testing.T) {
		mockService := new(MockTaskService)
		task := newTestTask(userID)
		mockService.On("ListTasks", mock.Anything, userID, service.TaskListFilter{
			Status: "pending",
			Search: "milk",
			Page:   "2",
			Limit:  "5",
		}).Return(&service.TaskPage{
			Tasks: []*domain.Task{task},
			Pagination: service.Pagination{
				Page: 2, Limit: 5, Total: 6, Pages: 2,
			},
		}, nil)

		handler := NewTaskHandler(mockService, nil)
		req := authedRequest(t, http.MethodGet,
			"/api/tasks?status=pending&search=milk&page=2&limit=5", nil, userID)
		w := httptest.NewRecorder()

		newTaskRouter(handler).ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var page service.TaskPage
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
		assert.Len(t, page.Tasks, 1)
		assert.Equal(t, 6, page.Pagination.Total)
		assert.Equal(t, 2, page.Pagination.Pages)
		mockService.AssertExpectations(t)
	})

	t.Run("passes raw page and limit to service", func(t *testing.T) {
		mockService := new(MockTaskService)
		mockService.On("ListTasks", mock.Anything, userID,
			service.TaskListFilter{Page: "0", Limit: "abc"}).
			Return(nil, domain.NewValidationError(
				"page", "must be a positive integer", domain.ErrInvalidFilter))

		handler := NewTaskHandler(mockService, nil)
		req := authedRequest(t, http.MethodGet, "/api/tasks?page=0&limit=abc", nil, userID)
		w := httptest.NewRecorder()

		newTaskRouter(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "page")
		mockService.AssertExpectations(t)
	})

	t.Run("invalid filter from service maps to 400", func(t *testing.T) {
		mockService := new(MockTaskService)
		mockService.On("ListTasks", mock.Anything, userID, mock.Anything).
			Return(nil, domain.NewValidationError(
				"status", "must be one of: pending, in-progress, completed, cancelled",
				domain.ErrInvalidFilter))

		handler := NewTaskHandler(mockService, nil)
		req := authedRequest(t, http.MethodGet, "/api/tasks?status=bogus", nil, userID)
		w := httptest.NewRecorder()

		newTaskRouter(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "status")
	})

	t.Run("missing user in context yields 401", func(t *testing.T) {
		mockService := new(MockTaskService)
		handler := NewTaskHandler(mockService, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
		w := httptest.NewRecorder()

		newTaskRouter(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		mockService.AssertNotCalled(t, "ListTasks")
	})
}

func TestTaskHandlerGet(t *testing.T) {
	userID := uuid.New()

	t.Run("returns task", func(t *testing.T) {
		mockService := new(MockTaskService)
		task := newTestTask(userID)
		mockService.On("GetTask", mock.Anything, userID, task.ID).Return(task, nil)

		handler := NewTaskHandler(mockService, nil)
		req := authedRequest(t, http.MethodGet, "/api/tasks/"+task.ID.String(), nil, userID)
		w := httptest.NewRecorder()

		newTaskRouter(handler).ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var got domain.Task
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, task.ID, got.ID)
		assert.Equal(t, "Buy milk", got.Title)
	})

	t.Run("not found maps to 404", func(t *testing.T) {
		mockService := new(MockTaskService)
		taskID := uuid.New()
		mockService.On("GetTask", mock.Anything, userID, taskID).
			Return(nil, service.ErrTaskNotFound)

		handler := NewTaskHandler(mockService, nil)
		req := authedRequest(t, http.MethodGet, "/api/tasks/"+taskID.String(), nil, userID)
		w := httptest.NewRecorder()

		newTaskRouter(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "Task not found")
	})

	t.Run("malformed id yields 400 without service call", func(t *testing.T) {
		mockService := new(MockTaskService)
		handler := NewTaskHandler(mockService, nil)

		req := authedRequest(t, http.MethodGet, "/api/tasks/not-a-uuid", nil, userID)
		w := httptest.NewRecorder()

		newTaskRouter(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "GetTask")
	})
}

func TestTaskHandlerCreate(t *testing.T) {
	userID := uuid.New()

	t.Run("creates task with parsed due date", func(t *testing.T) {
		mockService := new(MockTaskService)
		dueDate := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
		task := newTestTask(userID)
		task.DueDate = &dueDate

		mockService.On("CreateTask", mock.Anything, userID, service.CreateTaskInput{
			Title:   "Buy milk",
			Status:  "pending",
			DueDate: &dueDate,
			Tags:    []string{"errand"},
		}).Return(task, nil)

		handler := NewTaskHandler(mockService, nil)
		req := authedRequest(t, http.MethodPost, "/api/tasks", CreateTaskRequest{
			Title:   "Buy milk",
			Status:  "pending",
			DueDate: "2026-09-15",
			Tags:    []string{"errand"},
		}, userID)
		w := httptest.NewRecorder()

		newTaskRouter(handler).ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("missing title yields 400", func(t *testing.T) {
		mockService := new(MockTaskService)
		handler := NewTaskHandler(mockService, nil)

		req := authedRequest(t, http.MethodPost, "/api/tasks",
			CreateTaskRequest{Description: "no title"}, userID)
		w := httptest.NewRecorder()

		newTaskRouter(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "CreateTask")
	})

	t.Run("bad due date yields 400", func(t *testing.T) {
		mockService := new(MockTaskService)
		handler := NewTaskHandler(mockService, nil)

		req := authedRequest(t, http.MethodPost, "/api/tasks", CreateTaskRequest{
			Title:   "Buy milk",
			DueDate: "next tuesday",
		}, userID)
		w := httptest.NewRecorder()

		newTaskRouter(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "due_date")
		mockService.AssertNotCalled(t, "CreateTask")
	})

	t.Run("malformed json yields 400", func(t *testing.T) {
		mockService := new(MockTaskService)
		handler := NewTaskHandler(mockService, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/tasks",
			bytes.NewReader([]byte("{not json")))
		ctx := context.WithValue(req.Context(), shared.UserIDContextKey, userID)
		w := httptest.NewRecorder()

		newTaskRouter(handler).ServeHTTP(w, req.WithContext(ctx))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestTaskHandlerUpdate(t *testing.T) {
	userID := uuid.New()

	t.Run("passes only supplied fields", func(t *testing.T) {
		mockService := new(MockTaskService)
		task := newTestTask(userID)
		task.Status = domain.TaskStatusCompleted

		newStatus := "completed"
		mockService.On("UpdateTask", mock.Anything, userID, task.ID, service.UpdateTaskInput{
			Status: &newStatus,
		}).Return(task, nil)

		handler := NewTaskHandler(mockService, nil)
		req := authedRequest(t, http.MethodPut, "/api/tasks/"+task.ID.String(),
			UpdateTaskRequest{Status: &newStatus}, userID)
		w := httptest.NewRecorder()

		newTaskRouter(handler).ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var got domain.Task
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, domain.TaskStatusCompleted, got.Status)
		mockService.AssertExpectations(t)
	})

	t.Run("update of foreign task maps to 404", func(t *testing.T) {
		mockService := new(MockTaskService)
		taskID := uuid.New()
		title := "hijack"
		mockService.On("UpdateTask", mock.Anything, userID, taskID, mock.Anything).
			Return(nil, service.ErrTaskNotFound)

		handler := NewTaskHandler(mockService, nil)
		req := authedRequest(t, http.MethodPut, "/api/tasks/"+taskID.String(),
			UpdateTaskRequest{Title: &title}, userID)
		w := httptest.NewRecorder()

		newTaskRouter(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestTaskHandlerDelete(t *testing.T) {
	userID := uuid.New()

	t.Run("returns confirmation", func(t *testing.T) {
		mockService := new(MockTaskService)
		taskID := uuid.New()
		mockService.On("DeleteTask", mock.Anything, userID, taskID).Return(nil)

		handler := NewTaskHandler(mockService, nil)
		req := authedRequest(t, http.MethodDelete, "/api/tasks/"+taskID.String(), nil, userID)
		w := httptest.NewRecorder()

		newTaskRouter(handler).ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Task deleted successfully")
	})

	t.Run("absent task maps to 404", func(t *testing.T) {
		mockService := new(MockTaskService)
		taskID := uuid.New()
		mockService.On("DeleteTask", mock.Anything, userID, taskID).
			Return(service.ErrTaskNotFound)

		handler := NewTaskHandler(mockService, nil)
		req := authedRequest(t, http.MethodDelete, "/api/tasks/"+taskID.String(), nil, userID)
		w := httptest.NewRecorder()

		newTaskRouter(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestTaskHandlerStats(t *testing.T) {
	userID := uuid.New()

	mockService := new(MockTaskService)
	mockService.On("TaskStats", mock.Anything, userID).Return(&service.TaskStats{
		StatusCounts: map[domain.TaskStatus]int{
			domain.TaskStatusPending:   3,
			domain.TaskStatusCompleted: 2,
		},
		PriorityCounts: map[domain.TaskPriority]int{
			domain.TaskPriorityHigh: 1,
		},
	}, nil)

	handler := NewTaskHandler(mockService, nil)
	req := authedRequest(t, http.MethodGet, "/api/tasks/stats/summary", nil, userID)
	w := httptest.NewRecorder()

	newTaskRouter(handler).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var stats service.TaskStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 3, stats.StatusCounts[domain.TaskStatusPending])
	assert.Equal(t, 2, stats.StatusCounts[domain.TaskStatusCompleted])
	assert.NotContains(t, stats.StatusCounts, domain.TaskStatusCancelled)
}

package shared

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondWithJSON(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	RespondWithJSON(w, req, http.StatusOK, map[string]interface{}{
		"message": "success",
		"count":   3,
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "success", response["message"])
	assert.Equal(t, float64(3), response["count"])
}

func TestRespondWithError(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "/test", nil)
	req = req.WithContext(SetTraceID(req.Context()))
	w := httptest.NewRecorder()

	RespondWithError(w, req, http.StatusNotFound, "Task not found")

	assert.Equal(t, http.StatusNotFound, w.Code)

	var response ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "Task not found", response.Error)
	assert.Len(t, response.TraceID, TraceIDLength*2)
}

func TestRespondWithErrorAndLogDoesNotLeakError(t *testing.T) {
	req, _ := http.NewRequest(http.MethodPost, "/test", nil)
	w := httptest.NewRecorder()

	internalErr := errors.New("pq: connection to postgres://admin:hunter22@db failed")
	RespondWithErrorAndLog(w, req, http.StatusInternalServerError, "Internal server error", internalErr)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "hunter22")
	assert.NotContains(t, w.Body.String(), "postgres://")

	var response ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "Internal server error", response.Error)
}

func TestTraceIDRoundTrip(t *testing.T) {
	ctx := SetTraceID(context.Background())
	traceID := GetTraceID(ctx)

	assert.Len(t, traceID, TraceIDLength*2)
	assert.Equal(t, "", GetTraceID(context.Background()))

	// Successive IDs must differ.
	other := GetTraceID(SetTraceID(context.Background()))
	assert.NotEqual(t, traceID, other)
}

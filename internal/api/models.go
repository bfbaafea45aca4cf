package api

import (
	"github.com/google/uuid"
)

// Request and response payloads shared across handlers.

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	UserID uuid.UUID `json:"user_id"`
	Token  string    `json:"token"`
}

// CreateTaskRequest defines the payload for creating a task. Status and
// priority are optional and default server-side; due_date accepts RFC 3339
// or a plain YYYY-MM-DD date.
type CreateTaskRequest struct {
	Title       string   `json:"title"                 validate:"required,max=200"`
	Description string   `json:"description,omitempty" validate:"max=1000"`
	Status      string   `json:"status,omitempty"      validate:"omitempty,oneof=pending in-progress completed cancelled"`
	Priority    string   `json:"priority,omitempty"    validate:"omitempty,oneof=low medium high urgent"`
	DueDate     string   `json:"due_date,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// UpdateTaskRequest defines the payload for partially updating a task.
// Only fields present in the request body are applied; absent fields keep
// their stored values.
type UpdateTaskRequest struct {
	Title       *string  `json:"title,omitempty"       validate:"omitempty,max=200"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=1000"`
	Status      *string  `json:"status,omitempty"      validate:"omitempty,oneof=pending in-progress completed cancelled"`
	Priority    *string  `json:"priority,omitempty"    validate:"omitempty,oneof=low medium high urgent"`
	DueDate     *string  `json:"due_date,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// DeleteTaskResponse confirms a successful deletion.
type DeleteTaskResponse struct {
	Message string `json:"message"`
}

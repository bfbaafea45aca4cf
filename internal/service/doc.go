// Package service contains the orchestration layer between the HTTP
// handlers and the stores. The task service enforces validation and the
// owner scope on every operation; handlers never talk to stores directly.
package service

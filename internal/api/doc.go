// Package api handles incoming HTTP requests, request validation, and
// response formatting. It adapts HTTP concerns onto the task and auth
// services and maps internal errors to safe status codes and messages.
package api

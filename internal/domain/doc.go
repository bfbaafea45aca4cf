// Package domain contains the core business entities of the task
// tracker (users and tasks), their closed enumerations, and the
// validation rules enforced before any persistence.
package domain

package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

const (
	TaskStatusPending  TaskStatus = "pending"
	TaskStatusActive   TaskStatus = "active"
	TaskStatusDone     TaskStatus = "done"
	TaskStatusArchived TaskStatus = "archived"
)

// String returns the string representation of TaskStatus.
func (s TaskStatus) String() string {
	return string(s)
}

// IsValid checks if the task status is a recognized value.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusActive, TaskStatusDone, TaskStatusArchived:
		return true
	default:
		return false
	}
}

// ID is a type-safe UUID wrapper for task identifiers.
type ID string

// NewID generates a new UUID v4 and returns it as an ID.
func NewID() ID {
	return ID(uuid.New().String())
}

// ParseID parses and validates a string as a UUID, returning an ID.
func ParseID(s string) (ID, error) {
	if s == "" {
		return "", fmt.Errorf("ID cannot be empty")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid UUID format: %w", err)
	}
	return ID(parsed.String()), nil
}

// String returns the string representation of the ID.
func (id ID) String() string {
	return string(id)
}

// IsZero checks if the ID is empty.
func (id ID) IsZero() bool {
	return id == ""
}

// Task is the core task entity, shared by the remote and local stores.
type Task struct {
	ID          ID         `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      TaskStatus `json:"status"`
	Priority    int        `json:"priority"`
	Tags        []string   `json:"tags,omitempty"`
	Project     string     `json:"project,omitempty"`
	AssignedTo  string     `json:"assigned_to,omitempty"`
	CreatedAt   time.Time  `json:"created"`
	UpdatedAt   time.Time  `json:"updated"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// Validate checks the task for required fields and value ranges.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return NewError(TASK_INVALID, "task title is required")
	}
	if t.Priority < 1 || t.Priority > 10 {
		return NewError(TASK_INVALID, fmt.Sprintf("task priority must be between 1 and 10 (got %d)", t.Priority))
	}
	if t.Status != "" && !t.Status.IsValid() {
		return NewError(TASK_INVALID, fmt.Sprintf("unknown task status %q", t.Status))
	}
	return nil
}

// QueryFields is the whitelist of fields accepted by the task filter DSL.
var QueryFields = []string{
	"id", "title", "description", "status", "priority", "tags",
	"created", "updated", "due_date", "assigned_to", "project",
}

// QueryAliases maps shorthand field names to their canonical spellings.
var QueryAliases = map[string]string{
	"desc": "description",
	"prio": "priority",
	"due":  "due_date",
}

// Package store provides the record stores that consume predicate documents
// produced by the query package: a remote REST-backed store and a local
// sqlite-backed store with the same interface.
package store

import (
	"context"

	"github.com/cloudtask/cloudtask/internal/query"
	"github.com/cloudtask/cloudtask/internal/types"
)

// SearchRequest describes one search against a record store: the predicate
// document plus ordering and a result cap.
type SearchRequest struct {
	Filter     query.Query
	OrderBy    string
	Descending bool
	Limit      int
}

// TaskUpdate holds the fields a batch update may change. Nil fields are left
// untouched.
type TaskUpdate struct {
	Status   *types.TaskStatus
	Priority *int
}

// IsEmpty reports whether the update changes nothing.
func (u TaskUpdate) IsEmpty() bool {
	return u.Status == nil && u.Priority == nil
}

// Store is the record store consumed by the CLI commands. Both the remote
// API-backed store and the local sqlite store implement it.
type Store interface {
	Create(ctx context.Context, task *types.Task) (*types.Task, error)
	Get(ctx context.Context, id types.ID) (*types.Task, error)
	Update(ctx context.Context, id types.ID, update TaskUpdate) (*types.Task, error)
	Delete(ctx context.Context, id types.ID) error
	Search(ctx context.Context, req SearchRequest) ([]types.Task, error)
}

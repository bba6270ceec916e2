package store

import (
	"context"

	"github.com/cloudtask/cloudtask/internal/api"
	"github.com/cloudtask/cloudtask/internal/types"
)

// RemoteStore is the REST-backed record store. The predicate document is
// sent as-is to the search endpoint; ordering and the result cap travel in
// the same body under the reserved "order" and "limit" keys.
type RemoteStore struct {
	client *api.Client
}

// NewRemoteStore creates a RemoteStore on top of an API client.
func NewRemoteStore(client *api.Client) *RemoteStore {
	return &RemoteStore{client: client}
}

// Create creates a task via POST /tasks.
func (s *RemoteStore) Create(ctx context.Context, task *types.Task) (*types.Task, error) {
	if err := task.Validate(); err != nil {
		return nil, err
	}
	var created types.Task
	if err := s.client.Post(ctx, "/tasks", task, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Get fetches a task by ID.
func (s *RemoteStore) Get(ctx context.Context, id types.ID) (*types.Task, error) {
	var task types.Task
	if err := s.client.Get(ctx, "/tasks/"+id.String(), &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// Update applies a partial update via PUT /tasks/{id}.
func (s *RemoteStore) Update(ctx context.Context, id types.ID, update TaskUpdate) (*types.Task, error) {
	body := map[string]any{}
	if update.Status != nil {
		body["status"] = *update.Status
	}
	if update.Priority != nil {
		body["priority"] = *update.Priority
	}

	var updated types.Task
	if err := s.client.Put(ctx, "/tasks/"+id.String(), body, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a task by ID.
func (s *RemoteStore) Delete(ctx context.Context, id types.ID) error {
	return s.client.Delete(ctx, "/tasks/"+id.String(), nil)
}

// SearchBody builds the wire payload for a search request.
func SearchBody(req SearchRequest) map[string]any {
	body := make(map[string]any, len(req.Filter)+2)
	for field, cond := range req.Filter {
		body[field] = cond
	}
	if req.OrderBy != "" {
		dir := "asc"
		if req.Descending {
			dir = "desc"
		}
		body["order"] = [][]string{{req.OrderBy, dir}}
	}
	if req.Limit > 0 {
		body["limit"] = req.Limit
	}
	return body
}

// Search runs a predicate search via POST /tasks/search.
func (s *RemoteStore) Search(ctx context.Context, req SearchRequest) ([]types.Task, error) {
	var out struct {
		Tasks []types.Task `json:"tasks"`
	}
	if err := s.client.Post(ctx, "/tasks/search", SearchBody(req), &out); err != nil {
		return nil, types.WrapError(types.STORE_QUERY_FAILED, "search failed", err)
	}
	return out.Tasks, nil
}

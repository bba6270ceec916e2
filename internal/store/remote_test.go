package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudtask/cloudtask/internal/api"
	"github.com/cloudtask/cloudtask/internal/query"
	"github.com/cloudtask/cloudtask/internal/types"
)

func TestSearchBody(t *testing.T) {
	filter, err := query.Parse("priority >= 5 tags in [work,urgent]", query.Schema{}, nil)
	require.NoError(t, err)

	body := SearchBody(SearchRequest{
		Filter:     filter,
		OrderBy:    "priority",
		Descending: true,
		Limit:      50,
	})

	data, err := json.Marshal(body)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"priority": {"gte": "5"},
		"tags": {"in": ["work", "urgent"]},
		"order": [["priority", "desc"]],
		"limit": 50
	}`, string(data))
}

func TestSearchBody_NoOrderNoLimit(t *testing.T) {
	body := SearchBody(SearchRequest{Filter: query.Query{}})
	assert.NotContains(t, body, "order")
	assert.NotContains(t, body, "limit")
}

func TestRemoteStore_Search(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/tasks/search", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(map[string]any{
			"tasks": []map[string]any{
				{"id": "a81bc81b-dead-4e5d-abff-90865d1e13b1", "title": "ship release", "status": "active", "priority": 8},
			},
		})
	}))
	defer srv.Close()

	s := NewRemoteStore(api.New(srv.URL, "test-key"))
	filter, err := query.Parse("status == active", query.Schema{}, nil)
	require.NoError(t, err)

	tasks, err := s.Search(context.Background(), SearchRequest{Filter: filter, Limit: 10})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "ship release", tasks[0].Title)

	assert.Equal(t, map[string]any{"eq": "active"}, gotBody["status"])
	assert.Equal(t, float64(10), gotBody["limit"])
}

func TestRemoteStore_CRUD(t *testing.T) {
	id := types.NewID()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/tasks":
			var task types.Task
			require.NoError(t, json.NewDecoder(r.Body).Decode(&task))
			task.ID = id
			json.NewEncoder(w).Encode(task)
		case r.Method == http.MethodGet && r.URL.Path == "/tasks/"+id.String():
			json.NewEncoder(w).Encode(types.Task{ID: id, Title: "fetched", Status: types.TaskStatusPending, Priority: 5})
		case r.Method == http.MethodPut && r.URL.Path == "/tasks/"+id.String():
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "done", body["status"])
			json.NewEncoder(w).Encode(types.Task{ID: id, Title: "fetched", Status: types.TaskStatusDone, Priority: 5})
		case r.Method == http.MethodDelete && r.URL.Path == "/tasks/"+id.String():
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	s := NewRemoteStore(api.New(srv.URL, "test-key"))
	ctx := context.Background()

	created, err := s.Create(ctx, &types.Task{Title: "new task", Priority: 5})
	require.NoError(t, err)
	assert.Equal(t, id, created.ID)

	fetched, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "fetched", fetched.Title)

	status := types.TaskStatusDone
	updated, err := s.Update(ctx, id, TaskUpdate{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, types.TaskStatusDone, updated.Status)

	require.NoError(t, s.Delete(ctx, id))
}

func TestRemoteStore_CreateValidates(t *testing.T) {
	s := NewRemoteStore(api.New("http://unused.invalid", ""))
	_, err := s.Create(context.Background(), &types.Task{Title: ""})
	assert.ErrorIs(t, err, types.NewError(types.TASK_INVALID, ""))
}

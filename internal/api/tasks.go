package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"taskdeck/internal/task"
)

// ListTasks fetches all tasks owned by the current user. The endpoint has
// returned both a bare array and a {"tasks": [...]} wrapper across backend
// versions; both shapes are accepted.
func (c *Client) ListTasks(ctx context.Context) ([]task.Task, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/v1/tasks", nil, &raw); err != nil {
		return nil, err
	}

	var tasks []task.Task
	if err := json.Unmarshal(raw, &tasks); err == nil {
		return tasks, nil
	}
	var wrapped struct {
		Tasks []task.Task `json:"tasks"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("decode task list: %w", err)
	}
	return wrapped.Tasks, nil
}

// CreateTask posts a new task and returns the server's copy with its
// assigned id and timestamps.
func (c *Client) CreateTask(ctx context.Context, draft task.Draft) (task.Task, error) {
	var created task.Task
	if err := c.do(ctx, http.MethodPost, "/api/v1/tasks", draft, &created); err != nil {
		return task.Task{}, err
	}
	return created, nil
}

// UpdateTask puts the full edited representation.
func (c *Client) UpdateTask(ctx context.Context, id string, draft task.Draft) (task.Task, error) {
	var updated task.Task
	if err := c.do(ctx, http.MethodPut, "/api/v1/tasks/"+id, draft, &updated); err != nil {
		return task.Task{}, err
	}
	return updated, nil
}

// ToggleTask patches only the complete flag and returns the server's copy,
// so server-side effects (updated_at) land in local state too.
func (c *Client) ToggleTask(ctx context.Context, id string, complete bool) (task.Task, error) {
	payload := struct {
		Complete bool `json:"complete"`
	}{Complete: complete}

	var updated task.Task
	if err := c.do(ctx, http.MethodPatch, "/api/v1/tasks/"+id, payload, &updated); err != nil {
		return task.Task{}, err
	}
	return updated, nil
}

// DeleteTask removes a task on the server.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/tasks/"+id, nil, nil)
}

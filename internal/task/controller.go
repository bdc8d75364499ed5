package task

import (
	"context"
	"strings"

	"taskdeck/internal/logging"
)

// ValidationError is a client-side pre-flight rejection; no request was
// sent. Surfaced inline next to the offending form field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// API is the slice of the gateway client the controller needs.
type API interface {
	ListTasks(ctx context.Context) ([]Task, error)
	CreateTask(ctx context.Context, draft Draft) (Task, error)
	UpdateTask(ctx context.Context, id string, draft Draft) (Task, error)
	ToggleTask(ctx context.Context, id string, complete bool) (Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// Controller owns the cached task list and reconciles it with API
// responses. There is exactly one list; the dashboard filter and the
// statistics are derived views over it, never separate state.
type Controller struct {
	api   API
	tasks []Task
	log   logging.Logger
}

func NewController(api API, log logging.Logger) *Controller {
	if log == nil {
		log = logging.Nop()
	}
	return &Controller{api: api, log: log}
}

// Tasks 返回当前缓存的任务列表 / Tasks returns the cached list
func (c *Controller) Tasks() []Task {
	return c.tasks
}

// Load 拉取当前用户的全部任务并替换本地缓存
// Load fetches the user's tasks and replaces the local cache
func (c *Controller) Load(ctx context.Context) error {
	tasks, err := c.api.ListTasks(ctx)
	if err != nil {
		return err
	}
	c.tasks = tasks
	c.log.Info(ctx, "tasks loaded", "count", len(tasks))
	return nil
}

// Create validates the draft locally, posts it, and appends the server's
// copy. An empty title never reaches the network.
func (c *Controller) Create(ctx context.Context, draft Draft) (Task, error) {
	if strings.TrimSpace(draft.Title) == "" {
		return Task{}, &ValidationError{Field: "title", Message: "title is required"}
	}
	created, err := c.api.CreateTask(ctx, draft)
	if err != nil {
		return Task{}, err
	}
	c.tasks = append(c.tasks, created)
	return created, nil
}

// Update puts the full edited representation and replaces the matching
// cached task.
func (c *Controller) Update(ctx context.Context, id string, draft Draft) (Task, error) {
	if strings.TrimSpace(draft.Title) == "" {
		return Task{}, &ValidationError{Field: "title", Message: "title is required"}
	}
	updated, err := c.api.UpdateTask(ctx, id, draft)
	if err != nil {
		return Task{}, err
	}
	c.replace(updated)
	return updated, nil
}

// ToggleComplete patches the complete flag to its negation and adopts the
// server's returned record wholesale rather than flipping the local flag.
func (c *Controller) ToggleComplete(ctx context.Context, t Task) (Task, error) {
	updated, err := c.api.ToggleTask(ctx, t.ID, !t.Complete)
	if err != nil {
		return Task{}, err
	}
	c.replace(updated)
	return updated, nil
}

// Delete removes the task on the server first; the cached copy goes only
// after the server acknowledges, so a failed call leaves no drift.
func (c *Controller) Delete(ctx context.Context, id string) error {
	if err := c.api.DeleteTask(ctx, id); err != nil {
		return err
	}
	kept := c.tasks[:0]
	for _, t := range c.tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	c.tasks = kept
	return nil
}

// Filtered 返回匹配过滤器的任务视图 / Filtered returns the filtered view
func (c *Controller) Filtered(f Filter) []Task {
	return f.Apply(c.tasks)
}

// Stats 返回当前列表的统计 / Stats summarizes the current list
func (c *Controller) Stats() Stats {
	return Summarize(c.tasks)
}

func (c *Controller) replace(updated Task) {
	for i, t := range c.tasks {
		if t.ID == updated.ID {
			c.tasks[i] = updated
			return
		}
	}
	c.tasks = append(c.tasks, updated)
}

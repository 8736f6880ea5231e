package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/hay-kot/taskdeck/internal/core/jsonx"
	"github.com/hay-kot/taskdeck/internal/core/task"
)

// TaskPage is one normalized page of tasks.
type TaskPage struct {
	Tasks      []task.Task
	Pagination task.Pagination
}

func taskPath(id jsonx.ID) string {
	return "/tasks/" + url.PathEscape(id.String())
}

// ListTasks fetches the tasks matching f.
func (c *Client) ListTasks(ctx context.Context, f task.Filter) (TaskPage, error) {
	var page Page[task.Task]
	err := c.do(ctx, request{method: http.MethodGet, path: "/tasks", query: f.Query()}, func(b []byte) error {
		var err error
		page, err = decodeList[task.Task](b)
		return err
	})
	if err != nil {
		return TaskPage{}, err
	}

	tasks := make([]task.Task, len(page.Items))
	for i, t := range page.Items {
		tasks[i] = t.WithDefaults()
	}

	if !page.Paged {
		return TaskPage{Tasks: tasks, Pagination: task.Unpaged(len(tasks))}, nil
	}

	return TaskPage{
		Tasks: tasks,
		Pagination: task.Pagination{
			CurrentPage: page.Number,
			TotalPages:  page.TotalPages,
			TotalItems:  page.TotalElements,
			PageSize:    page.Size,
			Enabled:     true,
		}.Clamp(),
	}, nil
}

// GetTask fetches a single task.
func (c *Client) GetTask(ctx context.Context, id jsonx.ID) (task.Task, error) {
	var t task.Task
	err := c.do(ctx, request{method: http.MethodGet, path: taskPath(id)}, func(b []byte) error {
		return decodeObject(b, &t)
	})
	if err != nil {
		return task.Task{}, err
	}
	return t.WithDefaults(), nil
}

// CreateTask stores a new task and returns it as saved.
func (c *Client) CreateTask(ctx context.Context, d task.Draft) (task.Task, error) {
	var t task.Task
	err := c.do(ctx, request{method: http.MethodPost, path: "/tasks", body: d}, func(b []byte) error {
		return decodeObject(b, &t)
	})
	if err != nil {
		return task.Task{}, err
	}
	return t.WithDefaults(), nil
}

// UpdateTask replaces the task with the given id.
func (c *Client) UpdateTask(ctx context.Context, id jsonx.ID, d task.Draft) (task.Task, error) {
	var t task.Task
	err := c.do(ctx, request{method: http.MethodPut, path: taskPath(id), body: d}, func(b []byte) error {
		return decodeObject(b, &t)
	})
	if err != nil {
		return task.Task{}, err
	}
	if t.ID == "" {
		t.ID = id
	}
	return t.WithDefaults(), nil
}

// DeleteTask removes the task with the given id.
func (c *Client) DeleteTask(ctx context.Context, id jsonx.ID) error {
	return c.do(ctx, request{method: http.MethodDelete, path: taskPath(id)}, nil)
}

package rest

import (
	"context"
	"net/http"
	"net/url"

	"kanban/internal/service"
)

// ListTasks returns the tasks on a board.
func (c *Client) ListTasks(ctx context.Context, boardID string) ([]service.Task, error) {
	var tasks []service.Task
	if err := c.doJSON(ctx, http.MethodGet, "/tasks/?board_id="+url.QueryEscape(boardID), nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetTask returns one task.
func (c *Client) GetTask(ctx context.Context, taskID string) (service.Task, error) {
	var task service.Task
	if err := c.doJSON(ctx, http.MethodGet, "/tasks/"+pathID(taskID), nil, &task); err != nil {
		return service.Task{}, err
	}
	return task, nil
}

// CreateTask adds a task to a column.
func (c *Client) CreateTask(ctx context.Context, in service.TaskCreate) (service.Task, error) {
	var task service.Task
	if err := c.doJSON(ctx, http.MethodPost, "/tasks/", in, &task); err != nil {
		return service.Task{}, err
	}
	return task, nil
}

// UpdateTask changes a task, including moving it to another column.
func (c *Client) UpdateTask(ctx context.Context, taskID string, in service.TaskUpdate) (service.Task, error) {
	var task service.Task
	if err := c.doJSON(ctx, http.MethodPut, "/tasks/"+pathID(taskID), in, &task); err != nil {
		return service.Task{}, err
	}
	return task, nil
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, taskID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/tasks/"+pathID(taskID), nil, nil)
}

// SearchTasks searches task titles and descriptions. board_id is only sent
// when boardID is non-empty.
func (c *Client) SearchTasks(ctx context.Context, query, boardID string) ([]service.Task, error) {
	var tasks []service.Task
	if err := c.doJSON(ctx, http.MethodGet, searchPath(query, boardID), nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// searchPath keeps q before board_id; url.Values would sort them.
func searchPath(query, boardID string) string {
	path := "/tasks/search?q=" + url.QueryEscape(query)
	if boardID != "" {
		path += "&board_id=" + url.QueryEscape(boardID)
	}
	return path
}

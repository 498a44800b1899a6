package rest

import (
	"context"
	"net/http"

	"kanban/internal/service"
)

// ListComments returns a task's comments.
func (c *Client) ListComments(ctx context.Context, taskID string) ([]service.Comment, error) {
	var comments []service.Comment
	if err := c.doJSON(ctx, http.MethodGet, "/comments/task/"+pathID(taskID), nil, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// GetComment returns one comment.
func (c *Client) GetComment(ctx context.Context, commentID string) (service.Comment, error) {
	var comment service.Comment
	if err := c.doJSON(ctx, http.MethodGet, "/comments/"+pathID(commentID), nil, &comment); err != nil {
		return service.Comment{}, err
	}
	return comment, nil
}

// CreateComment adds a comment to a task.
func (c *Client) CreateComment(ctx context.Context, in service.CommentCreate) (service.Comment, error) {
	var comment service.Comment
	if err := c.doJSON(ctx, http.MethodPost, "/comments/", in, &comment); err != nil {
		return service.Comment{}, err
	}
	return comment, nil
}

// UpdateComment edits a comment.
func (c *Client) UpdateComment(ctx context.Context, commentID string, in service.CommentUpdate) (service.Comment, error) {
	var comment service.Comment
	if err := c.doJSON(ctx, http.MethodPut, "/comments/"+pathID(commentID), in, &comment); err != nil {
		return service.Comment{}, err
	}
	return comment, nil
}

// DeleteComment deletes a comment.
func (c *Client) DeleteComment(ctx context.Context, commentID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/comments/"+pathID(commentID), nil, nil)
}

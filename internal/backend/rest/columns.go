package rest

import (
	"context"
	"net/http"

	"kanban/internal/service"
)

// ListColumns returns a board's columns.
func (c *Client) ListColumns(ctx context.Context, boardID string) ([]service.Column, error) {
	var columns []service.Column
	if err := c.doJSON(ctx, http.MethodGet, "/columns/board/"+pathID(boardID), nil, &columns); err != nil {
		return nil, err
	}
	return columns, nil
}

// GetColumn returns one column.
func (c *Client) GetColumn(ctx context.Context, columnID string) (service.Column, error) {
	var column service.Column
	if err := c.doJSON(ctx, http.MethodGet, "/columns/"+pathID(columnID), nil, &column); err != nil {
		return service.Column{}, err
	}
	return column, nil
}

// CreateColumn adds a column to a board.
func (c *Client) CreateColumn(ctx context.Context, in service.ColumnCreate) (service.Column, error) {
	var column service.Column
	if err := c.doJSON(ctx, http.MethodPost, "/columns/", in, &column); err != nil {
		return service.Column{}, err
	}
	return column, nil
}

// UpdateColumn changes a column.
func (c *Client) UpdateColumn(ctx context.Context, columnID string, in service.ColumnUpdate) (service.Column, error) {
	var column service.Column
	if err := c.doJSON(ctx, http.MethodPut, "/columns/"+pathID(columnID), in, &column); err != nil {
		return service.Column{}, err
	}
	return column, nil
}

// DeleteColumn deletes a column.
func (c *Client) DeleteColumn(ctx context.Context, columnID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/columns/"+pathID(columnID), nil, nil)
}

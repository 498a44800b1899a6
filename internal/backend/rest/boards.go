package rest

import (
	"context"
	"net/http"

	"kanban/internal/service"
)

// ListBoards returns the boards visible to the current user.
func (c *Client) ListBoards(ctx context.Context) ([]service.Board, error) {
	var boards []service.Board
	if err := c.doJSON(ctx, http.MethodGet, "/boards/", nil, &boards); err != nil {
		return nil, err
	}
	return boards, nil
}

// GetBoard returns one board.
func (c *Client) GetBoard(ctx context.Context, boardID string) (service.Board, error) {
	var board service.Board
	if err := c.doJSON(ctx, http.MethodGet, "/boards/"+pathID(boardID), nil, &board); err != nil {
		return service.Board{}, err
	}
	return board, nil
}

// CreateBoard creates a board owned by the current user.
func (c *Client) CreateBoard(ctx context.Context, in service.BoardCreate) (service.Board, error) {
	var board service.Board
	if err := c.doJSON(ctx, http.MethodPost, "/boards/", in, &board); err != nil {
		return service.Board{}, err
	}
	return board, nil
}

// UpdateBoard changes a board.
func (c *Client) UpdateBoard(ctx context.Context, boardID string, in service.BoardUpdate) (service.Board, error) {
	var board service.Board
	if err := c.doJSON(ctx, http.MethodPut, "/boards/"+pathID(boardID), in, &board); err != nil {
		return service.Board{}, err
	}
	return board, nil
}

// DeleteBoard deletes a board with its columns and tasks.
func (c *Client) DeleteBoard(ctx context.Context, boardID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/boards/"+pathID(boardID), nil, nil)
}

// ListBoardMembers returns who a board is shared with.
func (c *Client) ListBoardMembers(ctx context.Context, boardID string) ([]service.BoardMember, error) {
	var members []service.BoardMember
	if err := c.doJSON(ctx, http.MethodGet, "/boards/"+pathID(boardID)+"/members", nil, &members); err != nil {
		return nil, err
	}
	return members, nil
}

// AddBoardMember shares a board with another user.
func (c *Client) AddBoardMember(ctx context.Context, boardID string, in service.BoardMemberCreate) (service.BoardMember, error) {
	var member service.BoardMember
	if err := c.doJSON(ctx, http.MethodPost, "/boards/"+pathID(boardID)+"/members", in, &member); err != nil {
		return service.BoardMember{}, err
	}
	return member, nil
}

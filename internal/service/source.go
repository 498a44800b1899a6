package service

import (
	"context"
	"time"
)

// ExternalList is a task list in another task manager.
type ExternalList struct {
	ID    string
	Title string
}

// ExternalTask is an open task read from an ExternalList.
type ExternalTask struct {
	Title string
	Notes string
	Due   *time.Time
}

// TaskSource reads task lists from another task manager so they can be
// copied into a board.
type TaskSource interface {
	// ListLists returns every list in source order.
	ListLists(ctx context.Context) ([]ExternalList, error)

	// ResolveList finds a list by name (case-insensitive, trimmed).
	// Returns ErrNotFound or ErrAmbiguous.
	ResolveList(ctx context.Context, name string) (ExternalList, error)

	// ListOpenTasks returns every open task of a list, across all pages.
	ListOpenTasks(ctx context.Context, listID string) ([]ExternalTask, error)
}

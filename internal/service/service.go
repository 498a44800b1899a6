package service

import (
	"context"
	"io"
)

// Service defines the interface for kanban backend operations.
// All REST calls go through this interface; commands never build HTTP
// requests themselves.
type Service interface {
	// Register creates a new account.
	Register(ctx context.Context, in UserCreate) (User, error)

	// Login exchanges credentials for a session and persists it.
	Login(ctx context.Context, username, password string) error

	// Logout drops the session locally without contacting the server.
	Logout()

	// LoggedIn reports whether a session token is held.
	LoggedIn() bool

	CurrentUser(ctx context.Context) (User, error)
	UpdateCurrentUser(ctx context.Context, in UserUpdate) (User, error)

	ListBoards(ctx context.Context) ([]Board, error)
	GetBoard(ctx context.Context, boardID string) (Board, error)
	CreateBoard(ctx context.Context, in BoardCreate) (Board, error)
	UpdateBoard(ctx context.Context, boardID string, in BoardUpdate) (Board, error)
	DeleteBoard(ctx context.Context, boardID string) error
	ListBoardMembers(ctx context.Context, boardID string) ([]BoardMember, error)
	AddBoardMember(ctx context.Context, boardID string, in BoardMemberCreate) (BoardMember, error)

	// ListColumns returns a board's columns in server order.
	ListColumns(ctx context.Context, boardID string) ([]Column, error)
	GetColumn(ctx context.Context, columnID string) (Column, error)
	CreateColumn(ctx context.Context, in ColumnCreate) (Column, error)
	UpdateColumn(ctx context.Context, columnID string, in ColumnUpdate) (Column, error)
	DeleteColumn(ctx context.Context, columnID string) error

	// ListTasks returns a board's tasks in server order.
	ListTasks(ctx context.Context, boardID string) ([]Task, error)
	GetTask(ctx context.Context, taskID string) (Task, error)
	CreateTask(ctx context.Context, in TaskCreate) (Task, error)
	UpdateTask(ctx context.Context, taskID string, in TaskUpdate) (Task, error)
	DeleteTask(ctx context.Context, taskID string) error

	// SearchTasks matches query against titles and descriptions.
	// An empty boardID searches every board the user can see.
	SearchTasks(ctx context.Context, query, boardID string) ([]Task, error)

	ListComments(ctx context.Context, taskID string) ([]Comment, error)
	GetComment(ctx context.Context, commentID string) (Comment, error)
	CreateComment(ctx context.Context, in CommentCreate) (Comment, error)
	UpdateComment(ctx context.Context, commentID string, in CommentUpdate) (Comment, error)
	DeleteComment(ctx context.Context, commentID string) error

	ListAttachments(ctx context.Context, taskID string) ([]Attachment, error)

	// UploadAttachment stores content under filename on a task.
	UploadAttachment(ctx context.Context, taskID, filename string, content io.Reader) (Attachment, error)

	// DownloadAttachment writes an attachment's content to w.
	DownloadAttachment(ctx context.Context, attachmentID string, w io.Writer) (int64, error)

	DeleteAttachment(ctx context.Context, attachmentID string) error
}

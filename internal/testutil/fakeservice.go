// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"kanban/internal/service"
)

// FakeTime is the timestamp FakeService puts on everything it creates.
var FakeTime = service.At(time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC))

// StatusError is a backend error carrying an HTTP status, like the REST
// client's RequestError.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string { return e.Message }

// StatusCode returns the HTTP status.
func (e *StatusError) StatusCode() int { return e.Status }

func notFound(what string) error {
	return &StatusError{Status: 404, Message: what + " not found"}
}

// FakeService is an in-memory implementation of service.Service for testing.
// IDs are assigned sequentially per kind: b1, c1, t1, m1, a1, u1.
type FakeService struct {
	mu          sync.RWMutex
	seq         map[string]int
	users       []service.User
	passwords   map[string]string // username -> password
	current     string            // current user ID
	loggedIn    bool
	boards      []service.Board
	members     []service.BoardMember
	columns     []service.Column
	tasks       []service.Task
	comments    []service.Comment
	attachments []service.Attachment
	contents    map[string][]byte // attachment ID -> content

	// Errs injects an error into the method of the same name, for example
	// Errs["ListBoards"]. Injecting service.ErrUnauthenticated also drops
	// the session, as the REST client does.
	Errs map[string]error

	LoginCalls  int
	LogoutCalls int
}

// NewFakeService creates a FakeService with one user, alice, who is logged in.
func NewFakeService() *FakeService {
	f := &FakeService{
		seq:       make(map[string]int),
		passwords: make(map[string]string),
		contents:  make(map[string][]byte),
		Errs:      make(map[string]error),
	}
	u := f.AddUser("alice", "secret")
	f.current = u.ID
	f.loggedIn = true
	return f
}

func (f *FakeService) nextID(prefix string) string {
	f.seq[prefix]++
	return fmt.Sprintf("%s%d", prefix, f.seq[prefix])
}

// fail returns the injected error for op, if any.
func (f *FakeService) fail(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	err := f.Errs[op]
	if errors.Is(err, service.ErrUnauthenticated) {
		f.loggedIn = false
	}
	return err
}

// SetLoggedIn sets the session state.
func (f *FakeService) SetLoggedIn(loggedIn bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loggedIn = loggedIn
}

// AddUser adds an account.
func (f *FakeService) AddUser(username, password string) service.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addUserLocked(service.UserCreate{Username: username, Email: username + "@example.com", Password: password})
}

func (f *FakeService) addUserLocked(in service.UserCreate) service.User {
	u := service.User{
		ID:        f.nextID("u"),
		Username:  in.Username,
		Email:     in.Email,
		FullName:  in.FullName,
		IsActive:  true,
		CreatedAt: FakeTime,
		UpdatedAt: FakeTime,
	}
	f.users = append(f.users, u)
	f.passwords[in.Username] = in.Password
	return u
}

// AddBoard adds a board owned by the current user.
func (f *FakeService) AddBoard(name string) service.Board {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addBoardLocked(service.BoardCreate{Name: name})
}

func (f *FakeService) addBoardLocked(in service.BoardCreate) service.Board {
	b := service.Board{
		ID:          f.nextID("b"),
		Name:        in.Name,
		Description: in.Description,
		IsPublic:    in.IsPublic,
		OwnerID:     f.current,
		CreatedAt:   FakeTime,
		UpdatedAt:   FakeTime,
	}
	f.boards = append(f.boards, b)
	return b
}

// AddColumn adds a column to a board.
func (f *FakeService) AddColumn(boardID, name string, position int) service.Column {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addColumnLocked(service.ColumnCreate{BoardID: boardID, Name: name, Position: position})
}

func (f *FakeService) addColumnLocked(in service.ColumnCreate) service.Column {
	c := service.Column{
		ID:        f.nextID("c"),
		BoardID:   in.BoardID,
		Name:      in.Name,
		Position:  in.Position,
		Color:     in.Color,
		CreatedAt: FakeTime,
		UpdatedAt: FakeTime,
	}
	f.columns = append(f.columns, c)
	return c
}

// AddTask adds a task at the end of a column.
func (f *FakeService) AddTask(boardID, columnID, title string) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	pos := 0
	for _, t := range f.tasks {
		if t.ColumnID == columnID {
			pos++
		}
	}
	return f.addTaskLocked(service.TaskCreate{BoardID: boardID, ColumnID: columnID, Title: title, Position: pos})
}

func (f *FakeService) addTaskLocked(in service.TaskCreate) service.Task {
	t := service.Task{
		ID:           f.nextID("t"),
		BoardID:      in.BoardID,
		ColumnID:     in.ColumnID,
		CreatorID:    f.current,
		AssignedToID: in.AssignedToID,
		Title:        in.Title,
		Description:  in.Description,
		Priority:     in.Priority,
		Status:       in.Status,
		Position:     in.Position,
		Tags:         in.Tags,
		DueDate:      in.DueDate,
		CreatedAt:    FakeTime,
		UpdatedAt:    FakeTime,
	}
	if t.Priority == "" {
		t.Priority = service.PriorityMedium
	}
	if t.Status == "" {
		t.Status = service.StatusTodo
	}
	f.tasks = append(f.tasks, t)
	return t
}

// AddComment adds a comment by the current user.
func (f *FakeService) AddComment(taskID, content string) service.Comment {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addCommentLocked(service.CommentCreate{TaskID: taskID, Content: content})
}

func (f *FakeService) addCommentLocked(in service.CommentCreate) service.Comment {
	c := service.Comment{
		ID:        f.nextID("m"),
		TaskID:    in.TaskID,
		UserID:    f.current,
		Content:   in.Content,
		CreatedAt: FakeTime,
		UpdatedAt: FakeTime,
	}
	f.comments = append(f.comments, c)
	return c
}

// AddAttachment adds attachment metadata to a task.
func (f *FakeService) AddAttachment(taskID, filename string, size int64) service.Attachment {
	f.mu.Lock()
	defer f.mu.Unlock()
	a := service.Attachment{
		ID:         f.nextID("a"),
		TaskID:     taskID,
		Filename:   filename,
		FilePath:   "uploads/" + filename,
		FileSize:   size,
		UploadedBy: f.current,
		CreatedAt:  FakeTime,
	}
	f.attachments = append(f.attachments, a)
	return a
}

// Tasks returns a snapshot of every task.
func (f *FakeService) Tasks() []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]service.Task, len(f.tasks))
	copy(out, f.tasks)
	return out
}

// Boards returns a snapshot of every board.
func (f *FakeService) Boards() []service.Board {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]service.Board, len(f.boards))
	copy(out, f.boards)
	return out
}

// Columns returns a snapshot of every column.
func (f *FakeService) Columns() []service.Column {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]service.Column, len(f.columns))
	copy(out, f.columns)
	return out
}

// Comments returns a snapshot of every comment.
func (f *FakeService) Comments() []service.Comment {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]service.Comment, len(f.comments))
	copy(out, f.comments)
	return out
}

// Register implements service.Service.
func (f *FakeService) Register(ctx context.Context, in service.UserCreate) (service.User, error) {
	if err := f.fail("Register"); err != nil {
		return service.User{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.passwords[in.Username]; exists {
		return service.User{}, &StatusError{Status: 400, Message: "Username already registered"}
	}
	return f.addUserLocked(in), nil
}

// Login implements service.Service.
func (f *FakeService) Login(ctx context.Context, username, password string) error {
	if err := f.fail("Login"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LoginCalls++
	want, ok := f.passwords[username]
	if !ok || want != password {
		return &StatusError{Status: 401, Message: "Incorrect username or password"}
	}
	for _, u := range f.users {
		if u.Username == username {
			f.current = u.ID
		}
	}
	f.loggedIn = true
	return nil
}

// Logout implements service.Service.
func (f *FakeService) Logout() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LogoutCalls++
	f.loggedIn = false
}

// LoggedIn implements service.Service.
func (f *FakeService) LoggedIn() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.loggedIn
}

// CurrentUser implements service.Service.
func (f *FakeService) CurrentUser(ctx context.Context) (service.User, error) {
	if err := f.fail("CurrentUser"); err != nil {
		return service.User{}, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	if !f.loggedIn {
		return service.User{}, service.ErrUnauthenticated
	}
	for _, u := range f.users {
		if u.ID == f.current {
			return u, nil
		}
	}
	return service.User{}, notFound("User")
}

// UpdateCurrentUser implements service.Service.
func (f *FakeService) UpdateCurrentUser(ctx context.Context, in service.UserUpdate) (service.User, error) {
	if err := f.fail("UpdateCurrentUser"); err != nil {
		return service.User{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.users {
		u := &f.users[i]
		if u.ID != f.current {
			continue
		}
		if in.Email != nil {
			u.Email = *in.Email
		}
		if in.FullName != nil {
			u.FullName = *in.FullName
		}
		if in.Password != nil {
			f.passwords[u.Username] = *in.Password
		}
		return *u, nil
	}
	return service.User{}, notFound("User")
}

// ListBoards implements service.Service.
func (f *FakeService) ListBoards(ctx context.Context) ([]service.Board, error) {
	if err := f.fail("ListBoards"); err != nil {
		return nil, err
	}
	return f.Boards(), nil
}

// GetBoard implements service.Service.
func (f *FakeService) GetBoard(ctx context.Context, boardID string) (service.Board, error) {
	if err := f.fail("GetBoard"); err != nil {
		return service.Board{}, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, b := range f.boards {
		if b.ID == boardID {
			return b, nil
		}
	}
	return service.Board{}, notFound("Board")
}

// CreateBoard implements service.Service.
func (f *FakeService) CreateBoard(ctx context.Context, in service.BoardCreate) (service.Board, error) {
	if err := f.fail("CreateBoard"); err != nil {
		return service.Board{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addBoardLocked(in), nil
}

// UpdateBoard implements service.Service.
func (f *FakeService) UpdateBoard(ctx context.Context, boardID string, in service.BoardUpdate) (service.Board, error) {
	if err := f.fail("UpdateBoard"); err != nil {
		return service.Board{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.boards {
		b := &f.boards[i]
		if b.ID != boardID {
			continue
		}
		if in.Name != nil {
			b.Name = *in.Name
		}
		if in.Description != nil {
			b.Description = *in.Description
		}
		if in.IsPublic != nil {
			b.IsPublic = *in.IsPublic
		}
		return *b, nil
	}
	return service.Board{}, notFound("Board")
}

// DeleteBoard implements service.Service.
func (f *FakeService) DeleteBoard(ctx context.Context, boardID string) error {
	if err := f.fail("DeleteBoard"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, b := range f.boards {
		if b.ID == boardID {
			f.boards = append(f.boards[:i], f.boards[i+1:]...)
			var tasks []service.Task
			for _, t := range f.tasks {
				if t.BoardID != boardID {
					tasks = append(tasks, t)
				}
			}
			f.tasks = tasks
			var columns []service.Column
			for _, c := range f.columns {
				if c.BoardID != boardID {
					columns = append(columns, c)
				}
			}
			f.columns = columns
			return nil
		}
	}
	return notFound("Board")
}

// ListBoardMembers implements service.Service.
func (f *FakeService) ListBoardMembers(ctx context.Context, boardID string) ([]service.BoardMember, error) {
	if err := f.fail("ListBoardMembers"); err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	var members []service.BoardMember
	for _, m := range f.members {
		if m.BoardID == boardID {
			members = append(members, m)
		}
	}
	return members, nil
}

// AddBoardMember implements service.Service.
func (f *FakeService) AddBoardMember(ctx context.Context, boardID string, in service.BoardMemberCreate) (service.BoardMember, error) {
	if err := f.fail("AddBoardMember"); err != nil {
		return service.BoardMember{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	role := in.Role
	if role == "" {
		role = service.RoleMember
	}
	m := service.BoardMember{
		ID:       f.nextID("bm"),
		BoardID:  boardID,
		UserID:   in.UserID,
		Role:     role,
		JoinedAt: FakeTime,
	}
	f.members = append(f.members, m)
	return m, nil
}

// ListColumns implements service.Service.
func (f *FakeService) ListColumns(ctx context.Context, boardID string) ([]service.Column, error) {
	if err := f.fail("ListColumns"); err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	var columns []service.Column
	for _, c := range f.columns {
		if c.BoardID == boardID {
			columns = append(columns, c)
		}
	}
	return columns, nil
}

// GetColumn implements service.Service.
func (f *FakeService) GetColumn(ctx context.Context, columnID string) (service.Column, error) {
	if err := f.fail("GetColumn"); err != nil {
		return service.Column{}, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, c := range f.columns {
		if c.ID == columnID {
			return c, nil
		}
	}
	return service.Column{}, notFound("Column")
}

// CreateColumn implements service.Service.
func (f *FakeService) CreateColumn(ctx context.Context, in service.ColumnCreate) (service.Column, error) {
	if err := f.fail("CreateColumn"); err != nil {
		return service.Column{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addColumnLocked(in), nil
}

// UpdateColumn implements service.Service.
func (f *FakeService) UpdateColumn(ctx context.Context, columnID string, in service.ColumnUpdate) (service.Column, error) {
	if err := f.fail("UpdateColumn"); err != nil {
		return service.Column{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.columns {
		c := &f.columns[i]
		if c.ID != columnID {
			continue
		}
		if in.Name != nil {
			c.Name = *in.Name
		}
		if in.Position != nil {
			c.Position = *in.Position
		}
		if in.Color != nil {
			c.Color = *in.Color
		}
		return *c, nil
	}
	return service.Column{}, notFound("Column")
}

// DeleteColumn implements service.Service.
func (f *FakeService) DeleteColumn(ctx context.Context, columnID string) error {
	if err := f.fail("DeleteColumn"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, c := range f.columns {
		if c.ID == columnID {
			f.columns = append(f.columns[:i], f.columns[i+1:]...)
			var tasks []service.Task
			for _, t := range f.tasks {
				if t.ColumnID != columnID {
					tasks = append(tasks, t)
				}
			}
			f.tasks = tasks
			return nil
		}
	}
	return notFound("Column")
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context, boardID string) ([]service.Task, error) {
	if err := f.fail("ListTasks"); err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	var tasks []service.Task
	for _, t := range f.tasks {
		if t.BoardID == boardID {
			tasks = append(tasks, t)
		}
	}
	return tasks, nil
}

// GetTask implements service.Service.
func (f *FakeService) GetTask(ctx context.Context, taskID string) (service.Task, error) {
	if err := f.fail("GetTask"); err != nil {
		return service.Task{}, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, t := range f.tasks {
		if t.ID == taskID {
			return t, nil
		}
	}
	return service.Task{}, notFound("Task")
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, in service.TaskCreate) (service.Task, error) {
	if err := f.fail("CreateTask"); err != nil {
		return service.Task{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addTaskLocked(in), nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, taskID string, in service.TaskUpdate) (service.Task, error) {
	if err := f.fail("UpdateTask"); err != nil {
		return service.Task{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID == taskID {
			ApplyTaskUpdate(&f.tasks[i], in)
			return f.tasks[i], nil
		}
	}
	return service.Task{}, notFound("Task")
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, taskID string) error {
	if err := f.fail("DeleteTask"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks {
		if t.ID == taskID {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return notFound("Task")
}

// SearchTasks implements service.Service.
func (f *FakeService) SearchTasks(ctx context.Context, query, boardID string) ([]service.Task, error) {
	if err := f.fail("SearchTasks"); err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	q := strings.ToLower(query)
	var tasks []service.Task
	for _, t := range f.tasks {
		if boardID != "" && t.BoardID != boardID {
			continue
		}
		if strings.Contains(strings.ToLower(t.Title), q) || strings.Contains(strings.ToLower(t.Description), q) {
			tasks = append(tasks, t)
		}
	}
	return tasks, nil
}

// ListComments implements service.Service.
func (f *FakeService) ListComments(ctx context.Context, taskID string) ([]service.Comment, error) {
	if err := f.fail("ListComments"); err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	var comments []service.Comment
	for _, c := range f.comments {
		if c.TaskID == taskID {
			comments = append(comments, c)
		}
	}
	return comments, nil
}

// GetComment implements service.Service.
func (f *FakeService) GetComment(ctx context.Context, commentID string) (service.Comment, error) {
	if err := f.fail("GetComment"); err != nil {
		return service.Comment{}, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, c := range f.comments {
		if c.ID == commentID {
			return c, nil
		}
	}
	return service.Comment{}, notFound("Comment")
}

// CreateComment implements service.Service.
func (f *FakeService) CreateComment(ctx context.Context, in service.CommentCreate) (service.Comment, error) {
	if err := f.fail("CreateComment"); err != nil {
		return service.Comment{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addCommentLocked(in), nil
}

// UpdateComment implements service.Service.
func (f *FakeService) UpdateComment(ctx context.Context, commentID string, in service.CommentUpdate) (service.Comment, error) {
	if err := f.fail("UpdateComment"); err != nil {
		return service.Comment{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.comments {
		if f.comments[i].ID == commentID {
			if in.Content != nil {
				f.comments[i].Content = *in.Content
			}
			return f.comments[i], nil
		}
	}
	return service.Comment{}, notFound("Comment")
}

// DeleteComment implements service.Service.
func (f *FakeService) DeleteComment(ctx context.Context, commentID string) error {
	if err := f.fail("DeleteComment"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, c := range f.comments {
		if c.ID == commentID {
			f.comments = append(f.comments[:i], f.comments[i+1:]...)
			return nil
		}
	}
	return notFound("Comment")
}

// ListAttachments implements service.Service.
func (f *FakeService) ListAttachments(ctx context.Context, taskID string) ([]service.Attachment, error) {
	if err := f.fail("ListAttachments"); err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	var attachments []service.Attachment
	for _, a := range f.attachments {
		if a.TaskID == taskID {
			attachments = append(attachments, a)
		}
	}
	return attachments, nil
}

// UploadAttachment implements service.Service.
func (f *FakeService) UploadAttachment(ctx context.Context, taskID, filename string, content io.Reader) (service.Attachment, error) {
	if err := f.fail("UploadAttachment"); err != nil {
		return service.Attachment{}, err
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return service.Attachment{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	found := false
	for _, t := range f.tasks {
		if t.ID == taskID {
			found = true
			break
		}
	}
	if !found {
		return service.Attachment{}, notFound("Task")
	}
	a := service.Attachment{
		ID:         f.nextID("a"),
		TaskID:     taskID,
		Filename:   filename,
		FilePath:   "uploads/" + filename,
		FileSize:   int64(len(data)),
		UploadedBy: f.current,
		CreatedAt:  FakeTime,
	}
	f.attachments = append(f.attachments, a)
	f.contents[a.ID] = data
	return a, nil
}

// DownloadAttachment implements service.Service.
func (f *FakeService) DownloadAttachment(ctx context.Context, attachmentID string, w io.Writer) (int64, error) {
	if err := f.fail("DownloadAttachment"); err != nil {
		return 0, err
	}
	f.mu.RLock()
	data, ok := f.contents[attachmentID]
	f.mu.RUnlock()
	if !ok {
		return 0, notFound("Attachment")
	}
	n, err := w.Write(data)
	return int64(n), err
}

// DeleteAttachment implements service.Service.
func (f *FakeService) DeleteAttachment(ctx context.Context, attachmentID string) error {
	if err := f.fail("DeleteAttachment"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, a := range f.attachments {
		if a.ID == attachmentID {
			f.attachments = append(f.attachments[:i], f.attachments[i+1:]...)
			delete(f.contents, attachmentID)
			return nil
		}
	}
	return notFound("Attachment")
}

var _ service.Service = (*FakeService)(nil)

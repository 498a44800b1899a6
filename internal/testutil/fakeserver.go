package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"kanban/internal/service"
)

// APIPrefix is the route prefix FakeServer serves under.
const APIPrefix = "/api/v1"

// RecordedRequest is a request as FakeServer received it.
type RecordedRequest struct {
	Method string
	URI    string // path and raw query, as sent
	Header http.Header
	Body   string
}

type fakeUser struct {
	user     service.User
	password string
}

// FakeServer is an in-memory kanban API on an httptest server. It implements
// enough of the real server's behavior (bearer auth, 404 details, 204
// deletes) to exercise the REST client end to end.
type FakeServer struct {
	*httptest.Server

	mu          sync.Mutex
	users       map[string]*fakeUser // username -> user
	tokens      map[string]string    // access token -> user ID
	boards      []service.Board
	members     []service.BoardMember
	columns     []service.Column
	tasks       []service.Task
	comments    []service.Comment
	attachments []service.Attachment
	contents    map[string][]byte // attachment ID -> uploaded bytes
	requests    []RecordedRequest
}

// NewFakeServer starts a FakeServer. Callers must Close it.
func NewFakeServer() *FakeServer {
	f := &FakeServer{
		users:    make(map[string]*fakeUser),
		tokens:   make(map[string]string),
		contents: make(map[string][]byte),
	}

	r := mux.NewRouter()
	r.Use(f.record)
	api := r.PathPrefix(APIPrefix).Subrouter()

	api.HandleFunc("/auth/register", f.register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", f.login).Methods(http.MethodPost)

	authed := api.NewRoute().Subrouter()
	authed.Use(f.authenticate)

	authed.HandleFunc("/users/me", f.getMe).Methods(http.MethodGet)
	authed.HandleFunc("/users/me", f.updateMe).Methods(http.MethodPut)

	authed.HandleFunc("/boards/", f.listBoards).Methods(http.MethodGet)
	authed.HandleFunc("/boards/", f.createBoard).Methods(http.MethodPost)
	authed.HandleFunc("/boards/{id}", f.getBoard).Methods(http.MethodGet)
	authed.HandleFunc("/boards/{id}", f.updateBoard).Methods(http.MethodPut)
	authed.HandleFunc("/boards/{id}", f.deleteBoard).Methods(http.MethodDelete)
	authed.HandleFunc("/boards/{id}/members", f.listMembers).Methods(http.MethodGet)
	authed.HandleFunc("/boards/{id}/members", f.addMember).Methods(http.MethodPost)

	authed.HandleFunc("/columns/board/{id}", f.listColumns).Methods(http.MethodGet)
	authed.HandleFunc("/columns/", f.createColumn).Methods(http.MethodPost)
	authed.HandleFunc("/columns/{id}", f.getColumn).Methods(http.MethodGet)
	authed.HandleFunc("/columns/{id}", f.updateColumn).Methods(http.MethodPut)
	authed.HandleFunc("/columns/{id}", f.deleteColumn).Methods(http.MethodDelete)

	authed.HandleFunc("/tasks/", f.listTasks).Methods(http.MethodGet)
	authed.HandleFunc("/tasks/", f.createTask).Methods(http.MethodPost)
	authed.HandleFunc("/tasks/search", f.searchTasks).Methods(http.MethodGet)
	authed.HandleFunc("/tasks/{id}", f.getTask).Methods(http.MethodGet)
	authed.HandleFunc("/tasks/{id}", f.updateTask).Methods(http.MethodPut)
	authed.HandleFunc("/tasks/{id}", f.deleteTask).Methods(http.MethodDelete)

	authed.HandleFunc("/comments/task/{id}", f.listComments).Methods(http.MethodGet)
	authed.HandleFunc("/comments/", f.createComment).Methods(http.MethodPost)
	authed.HandleFunc("/comments/{id}", f.getComment).Methods(http.MethodGet)
	authed.HandleFunc("/comments/{id}", f.updateComment).Methods(http.MethodPut)
	authed.HandleFunc("/comments/{id}", f.deleteComment).Methods(http.MethodDelete)

	authed.HandleFunc("/attachments/task/{id}", f.listAttachments).Methods(http.MethodGet)
	authed.HandleFunc("/attachments/", f.uploadAttachment).Methods(http.MethodPost)
	authed.HandleFunc("/attachments/{id}", f.downloadAttachment).Methods(http.MethodGet)
	authed.HandleFunc("/attachments/{id}", f.deleteAttachment).Methods(http.MethodDelete)

	f.Server = httptest.NewServer(r)
	return f
}

// BaseURL returns the URL the REST client should be pointed at.
func (f *FakeServer) BaseURL() string {
	return f.URL + APIPrefix
}

// AddUser registers an account directly.
func (f *FakeServer) AddUser(username, password string) service.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addUserLocked(service.UserCreate{Username: username, Email: username + "@example.com", Password: password})
}

// IssueToken returns a valid access token for username, which must exist.
func (f *FakeServer) IssueToken(username string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	token := uuid.NewString()
	f.tokens[token] = f.users[username].user.ID
	return token
}

// RevokeTokens invalidates every issued access token.
func (f *FakeServer) RevokeTokens() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = make(map[string]string)
}

// AddAttachment stores attachment metadata on a task.
func (f *FakeServer) AddAttachment(taskID, filename string) service.Attachment {
	f.mu.Lock()
	defer f.mu.Unlock()
	a := service.Attachment{
		ID:        uuid.NewString(),
		TaskID:    taskID,
		Filename:  filename,
		FilePath:  "uploads/" + filename,
		CreatedAt: now(),
	}
	f.attachments = append(f.attachments, a)
	return a
}

// Requests returns every request received so far.
func (f *FakeServer) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]RecordedRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

// LastRequest returns the most recent request.
func (f *FakeServer) LastRequest() RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return RecordedRequest{}
	}
	return f.requests[len(f.requests)-1]
}

// now is the server clock, with the microsecond precision the real server
// writes.
func now() service.Time {
	return service.At(time.Now().Truncate(time.Microsecond))
}

func (f *FakeServer) addUserLocked(in service.UserCreate) service.User {
	u := service.User{
		ID:        uuid.NewString(),
		Username:  in.Username,
		Email:     in.Email,
		FullName:  in.FullName,
		IsActive:  true,
		CreatedAt: now(),
		UpdatedAt: now(),
	}
	f.users[in.Username] = &fakeUser{user: u, password: in.Password}
	return u
}

// record stores a copy of each request before routing.
func (f *FakeServer) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))
		f.mu.Lock()
		f.requests = append(f.requests, RecordedRequest{
			Method: r.Method,
			URI:    strings.TrimPrefix(r.RequestURI, APIPrefix),
			Header: r.Header.Clone(),
			Body:   string(body),
		})
		f.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

type userIDKey struct{}

// authenticate rejects requests without a known bearer token.
func (f *FakeServer) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		f.mu.Lock()
		userID, ok := f.tokens[token]
		f.mu.Unlock()
		if !ok {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		r.Header.Set("X-Fake-User", userID)
		next.ServeHTTP(w, r)
	})
}

func currentUserID(r *http.Request) string {
	return r.Header.Get("X-Fake-User")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid request body")
		return false
	}
	return true
}

func (f *FakeServer) register(w http.ResponseWriter, r *http.Request) {
	var in service.UserCreate
	if !decodeBody(w, r, &in) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.users[in.Username]; exists {
		writeDetail(w, http.StatusBadRequest, "Username already registered")
		return
	}
	writeJSON(w, http.StatusCreated, f.addUserLocked(in))
}

func (f *FakeServer) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid form")
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[r.PostForm.Get("username")]
	if !ok || u.password != r.PostForm.Get("password") {
		writeDetail(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}
	access := uuid.NewString()
	f.tokens[access] = u.user.ID
	writeJSON(w, http.StatusOK, map[string]string{
		"access_token":  access,
		"refresh_token": uuid.NewString(),
		"token_type":    "bearer",
	})
}

func (f *FakeServer) userByIDLocked(id string) *fakeUser {
	for _, u := range f.users {
		if u.user.ID == id {
			return u
		}
	}
	return nil
}

func (f *FakeServer) getMe(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.userByIDLocked(currentUserID(r))
	if u == nil {
		writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, u.user)
}

func (f *FakeServer) updateMe(w http.ResponseWriter, r *http.Request) {
	var in service.UserUpdate
	if !decodeBody(w, r, &in) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.userByIDLocked(currentUserID(r))
	if u == nil {
		writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	if in.Email != nil {
		u.user.Email = *in.Email
	}
	if in.FullName != nil {
		u.user.FullName = *in.FullName
	}
	if in.Password != nil {
		u.password = *in.Password
	}
	u.user.UpdatedAt = now()
	writeJSON(w, http.StatusOK, u.user)
}

func (f *FakeServer) boardIndexLocked(id string) int {
	for i, b := range f.boards {
		if b.ID == id {
			return i
		}
	}
	return -1
}

func (f *FakeServer) canSeeBoardLocked(b service.Board, userID string) bool {
	if b.OwnerID == userID || b.IsPublic {
		return true
	}
	for _, m := range f.members {
		if m.BoardID == b.ID && m.UserID == userID {
			return true
		}
	}
	return false
}

func (f *FakeServer) listBoards(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	boards := []service.Board{}
	for _, b := range f.boards {
		if f.canSeeBoardLocked(b, currentUserID(r)) {
			boards = append(boards, b)
		}
	}
	writeJSON(w, http.StatusOK, boards)
}

func (f *FakeServer) createBoard(w http.ResponseWriter, r *http.Request) {
	var in service.BoardCreate
	if !decodeBody(w, r, &in) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	b := service.Board{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		IsPublic:    in.IsPublic,
		OwnerID:     currentUserID(r),
		CreatedAt:   now(),
		UpdatedAt:   now(),
	}
	f.boards = append(f.boards, b)
	writeJSON(w, http.StatusCreated, b)
}

func (f *FakeServer) getBoard(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.boardIndexLocked(mux.Vars(r)["id"])
	if i < 0 {
		writeDetail(w, http.StatusNotFound, "Board not found")
		return
	}
	if !f.canSeeBoardLocked(f.boards[i], currentUserID(r)) {
		writeDetail(w, http.StatusForbidden, "Not enough permissions")
		return
	}
	writeJSON(w, http.StatusOK, f.boards[i])
}

func (f *FakeServer) updateBoard(w http.ResponseWriter, r *http.Request) {
	var in service.BoardUpdate
	if !decodeBody(w, r, &in) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.boardIndexLocked(mux.Vars(r)["id"])
	if i < 0 {
		writeDetail(w, http.StatusNotFound, "Board not found")
		return
	}
	if f.boards[i].OwnerID != currentUserID(r) {
		writeDetail(w, http.StatusForbidden, "Not enough permissions")
		return
	}
	b := &f.boards[i]
	if in.Name != nil {
		b.Name = *in.Name
	}
	if in.Description != nil {
		b.Description = *in.Description
	}
	if in.IsPublic != nil {
		b.IsPublic = *in.IsPublic
	}
	b.UpdatedAt = now()
	writeJSON(w, http.StatusOK, *b)
}

func (f *FakeServer) deleteBoard(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := mux.Vars(r)["id"]
	i := f.boardIndexLocked(id)
	if i < 0 {
		writeDetail(w, http.StatusNotFound, "Board not found")
		return
	}
	if f.boards[i].OwnerID != currentUserID(r) {
		writeDetail(w, http.StatusForbidden, "Not enough permissions")
		return
	}
	f.boards = append(f.boards[:i], f.boards[i+1:]...)

	columns := f.columns[:0]
	for _, c := range f.columns {
		if c.BoardID != id {
			columns = append(columns, c)
		}
	}
	f.columns = columns
	tasks := f.tasks[:0]
	for _, t := range f.tasks {
		if t.BoardID != id {
			tasks = append(tasks, t)
		}
	}
	f.tasks = tasks
	w.WriteHeader(http.StatusNoContent)
}

func (f *FakeServer) listMembers(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := mux.Vars(r)["id"]
	if f.boardIndexLocked(id) < 0 {
		writeDetail(w, http.StatusNotFound, "Board not found")
		return
	}
	members := []service.BoardMember{}
	for _, m := range f.members {
		if m.BoardID == id {
			members = append(members, m)
		}
	}
	writeJSON(w, http.StatusOK, members)
}

func (f *FakeServer) addMember(w http.ResponseWriter, r *http.Request) {
	var in service.BoardMemberCreate
	if !decodeBody(w, r, &in) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	id := mux.Vars(r)["id"]
	if f.boardIndexLocked(id) < 0 {
		writeDetail(w, http.StatusNotFound, "Board not found")
		return
	}
	if f.userByIDLocked(in.UserID) == nil {
		writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	role := in.Role
	if role == "" {
		role = service.RoleMember
	}
	m := service.BoardMember{ID: uuid.NewString(), BoardID: id, UserID: in.UserID, Role: role, JoinedAt: now()}
	f.members = append(f.members, m)
	writeJSON(w, http.StatusCreated, m)
}

func (f *FakeServer) columnIndexLocked(id string) int {
	for i, c := range f.columns {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (f *FakeServer) listColumns(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := mux.Vars(r)["id"]
	if f.boardIndexLocked(id) < 0 {
		writeDetail(w, http.StatusNotFound, "Board not found")
		return
	}
	columns := []service.Column{}
	for _, c := range f.columns {
		if c.BoardID == id {
			columns = append(columns, c)
		}
	}
	sort.SliceStable(columns, func(i, j int) bool { return columns[i].Position < columns[j].Position })
	writeJSON(w, http.StatusOK, columns)
}

func (f *FakeServer) createColumn(w http.ResponseWriter, r *http.Request) {
	var in service.ColumnCreate
	if !decodeBody(w, r, &in) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.boardIndexLocked(in.BoardID) < 0 {
		writeDetail(w, http.StatusNotFound, "Board not found")
		return
	}
	c := service.Column{
		ID:        uuid.NewString(),
		BoardID:   in.BoardID,
		Name:      in.Name,
		Position:  in.Position,
		Color:     in.Color,
		CreatedAt: now(),
		UpdatedAt: now(),
	}
	f.columns = append(f.columns, c)
	writeJSON(w, http.StatusCreated, c)
}

func (f *FakeServer) getColumn(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.columnIndexLocked(mux.Vars(r)["id"])
	if i < 0 {
		writeDetail(w, http.StatusNotFound, "Column not found")
		return
	}
	writeJSON(w, http.StatusOK, f.columns[i])
}

func (f *FakeServer) updateColumn(w http.ResponseWriter, r *http.Request) {
	var in service.ColumnUpdate
	if !decodeBody(w, r, &in) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.columnIndexLocked(mux.Vars(r)["id"])
	if i < 0 {
		writeDetail(w, http.StatusNotFound, "Column not found")
		return
	}
	c := &f.columns[i]
	if in.Name != nil {
		c.Name = *in.Name
	}
	if in.Position != nil {
		c.Position = *in.Position
	}
	if in.Color != nil {
		c.Color = *in.Color
	}
	c.UpdatedAt = now()
	writeJSON(w, http.StatusOK, *c)
}

func (f *FakeServer) deleteColumn(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := mux.Vars(r)["id"]
	i := f.columnIndexLocked(id)
	if i < 0 {
		writeDetail(w, http.StatusNotFound, "Column not found")
		return
	}
	f.columns = append(f.columns[:i], f.columns[i+1:]...)
	tasks := f.tasks[:0]
	for _, t := range f.tasks {
		if t.ColumnID != id {
			tasks = append(tasks, t)
		}
	}
	f.tasks = tasks
	w.WriteHeader(http.StatusNoContent)
}

func (f *FakeServer) taskIndexLocked(id string) int {
	for i, t := range f.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (f *FakeServer) listTasks(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	boardID := r.URL.Query().Get("board_id")
	tasks := []service.Task{}
	for _, t := range f.tasks {
		if boardID == "" && t.CreatorID == currentUserID(r) || boardID != "" && t.BoardID == boardID {
			tasks = append(tasks, t)
		}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (f *FakeServer) searchTasks(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(r.URL.Query().Get("q"))
	if q == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "Query must not be empty")
		return
	}
	boardID := r.URL.Query().Get("board_id")
	f.mu.Lock()
	defer f.mu.Unlock()
	tasks := []service.Task{}
	for _, t := range f.tasks {
		if boardID != "" && t.BoardID != boardID {
			continue
		}
		if strings.Contains(strings.ToLower(t.Title), q) || strings.Contains(strings.ToLower(t.Description), q) {
			tasks = append(tasks, t)
		}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (f *FakeServer) createTask(w http.ResponseWriter, r *http.Request) {
	var in service.TaskCreate
	if !decodeBody(w, r, &in) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.boardIndexLocked(in.BoardID) < 0 {
		writeDetail(w, http.StatusNotFound, "Board not found")
		return
	}
	priority := in.Priority
	if priority == "" {
		priority = service.PriorityMedium
	}
	status := in.Status
	if status == "" {
		status = service.StatusTodo
	}
	t := service.Task{
		ID:           uuid.NewString(),
		BoardID:      in.BoardID,
		ColumnID:     in.ColumnID,
		CreatorID:    currentUserID(r),
		AssignedToID: in.AssignedToID,
		Title:        in.Title,
		Description:  in.Description,
		Priority:     priority,
		Status:       status,
		Position:     in.Position,
		Tags:         in.Tags,
		DueDate:      in.DueDate,
		CreatedAt:    now(),
		UpdatedAt:    now(),
	}
	f.tasks = append(f.tasks, t)
	writeJSON(w, http.StatusCreated, t)
}

func (f *FakeServer) getTask(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.taskIndexLocked(mux.Vars(r)["id"])
	if i < 0 {
		writeDetail(w, http.StatusNotFound, "Task not found")
		return
	}
	writeJSON(w, http.StatusOK, f.tasks[i])
}

func (f *FakeServer) updateTask(w http.ResponseWriter, r *http.Request) {
	var in service.TaskUpdate
	if !decodeBody(w, r, &in) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.taskIndexLocked(mux.Vars(r)["id"])
	if i < 0 {
		writeDetail(w, http.StatusNotFound, "Task not found")
		return
	}
	ApplyTaskUpdate(&f.tasks[i], in)
	f.tasks[i].UpdatedAt = now()
	writeJSON(w, http.StatusOK, f.tasks[i])
}

func (f *FakeServer) deleteTask(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.taskIndexLocked(mux.Vars(r)["id"])
	if i < 0 {
		writeDetail(w, http.StatusNotFound, "Task not found")
		return
	}
	f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
	w.WriteHeader(http.StatusNoContent)
}

func (f *FakeServer) commentIndexLocked(id string) int {
	for i, c := range f.comments {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (f *FakeServer) listComments(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	taskID := mux.Vars(r)["id"]
	if f.taskIndexLocked(taskID) < 0 {
		writeDetail(w, http.StatusNotFound, "Task not found")
		return
	}
	comments := []service.Comment{}
	for _, c := range f.comments {
		if c.TaskID == taskID {
			comments = append(comments, c)
		}
	}
	writeJSON(w, http.StatusOK, comments)
}

func (f *FakeServer) createComment(w http.ResponseWriter, r *http.Request) {
	var in service.CommentCreate
	if !decodeBody(w, r, &in) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.taskIndexLocked(in.TaskID) < 0 {
		writeDetail(w, http.StatusNotFound, "Task not found")
		return
	}
	c := service.Comment{
		ID:        uuid.NewString(),
		TaskID:    in.TaskID,
		UserID:    currentUserID(r),
		Content:   in.Content,
		CreatedAt: now(),
		UpdatedAt: now(),
	}
	f.comments = append(f.comments, c)
	writeJSON(w, http.StatusCreated, c)
}

func (f *FakeServer) getComment(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.commentIndexLocked(mux.Vars(r)["id"])
	if i < 0 {
		writeDetail(w, http.StatusNotFound, "Comment not found")
		return
	}
	writeJSON(w, http.StatusOK, f.comments[i])
}

func (f *FakeServer) updateComment(w http.ResponseWriter, r *http.Request) {
	var in service.CommentUpdate
	if !decodeBody(w, r, &in) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.commentIndexLocked(mux.Vars(r)["id"])
	if i < 0 {
		writeDetail(w, http.StatusNotFound, "Comment not found")
		return
	}
	if f.comments[i].UserID != currentUserID(r) {
		writeDetail(w, http.StatusForbidden, "Not enough permissions")
		return
	}
	if in.Content != nil {
		f.comments[i].Content = *in.Content
	}
	f.comments[i].UpdatedAt = now()
	writeJSON(w, http.StatusOK, f.comments[i])
}

func (f *FakeServer) deleteComment(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.commentIndexLocked(mux.Vars(r)["id"])
	if i < 0 {
		writeDetail(w, http.StatusNotFound, "Comment not found")
		return
	}
	f.comments = append(f.comments[:i], f.comments[i+1:]...)
	w.WriteHeader(http.StatusNoContent)
}

func (f *FakeServer) listAttachments(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	taskID := mux.Vars(r)["id"]
	attachments := []service.Attachment{}
	for _, a := range f.attachments {
		if a.TaskID == taskID {
			attachments = append(attachments, a)
		}
	}
	writeJSON(w, http.StatusOK, attachments)
}

func (f *FakeServer) uploadAttachment(w http.ResponseWriter, r *http.Request) {
	taskID := r.URL.Query().Get("task_id")
	file, header, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Field required")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid upload")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.taskIndexLocked(taskID) < 0 {
		writeDetail(w, http.StatusNotFound, "Task not found")
		return
	}
	a := service.Attachment{
		ID:         uuid.NewString(),
		TaskID:     taskID,
		Filename:   header.Filename,
		FilePath:   "uploads/" + uuid.NewString(),
		FileSize:   int64(len(data)),
		MimeType:   header.Header.Get("Content-Type"),
		UploadedBy: currentUserID(r),
		CreatedAt:  now(),
	}
	f.attachments = append(f.attachments, a)
	f.contents[a.ID] = data
	writeJSON(w, http.StatusCreated, a)
}

func (f *FakeServer) downloadAttachment(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := mux.Vars(r)["id"]
	for _, a := range f.attachments {
		if a.ID == id {
			if a.MimeType != "" {
				w.Header().Set("Content-Type", a.MimeType)
			}
			w.Header().Set("Content-Disposition", `attachment; filename="`+a.Filename+`"`)
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(f.contents[a.ID])
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "Attachment not found")
}

func (f *FakeServer) deleteAttachment(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := mux.Vars(r)["id"]
	for i, a := range f.attachments {
		if a.ID == id {
			f.attachments = append(f.attachments[:i], f.attachments[i+1:]...)
			delete(f.contents, id)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "Attachment not found")
}

// ApplyTaskUpdate applies the non-nil fields of in to t.
func ApplyTaskUpdate(t *service.Task, in service.TaskUpdate) {
	if in.Title != nil {
		t.Title = *in.Title
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.ColumnID != nil {
		t.ColumnID = *in.ColumnID
	}
	if in.AssignedToID != nil {
		t.AssignedToID = *in.AssignedToID
	}
	if in.Position != nil {
		t.Position = *in.Position
	}
	if in.Priority != nil {
		t.Priority = *in.Priority
	}
	if in.Status != nil {
		t.Status = *in.Status
	}
	if in.DueDate != nil {
		t.DueDate = in.DueDate
	}
	if in.CompletedAt != nil {
		t.CompletedAt = in.CompletedAt
	}
	if in.Tags != nil {
		t.Tags = *in.Tags
	}
}

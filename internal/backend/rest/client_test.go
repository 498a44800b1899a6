package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"kanban/internal/backend/rest"
	"kanban/internal/service"
	"kanban/internal/session"
)

// captured is what a test server saw of one request.
type captured struct {
	Method string
	URI    string
	Header http.Header
	Body   string
}

// recorder is an httptest server that stores every request and answers with
// a fixed status and body.
type recorder struct {
	*httptest.Server

	mu       sync.Mutex
	requests []captured
}

func newRecorder(t *testing.T, status int, body string) *recorder {
	t.Helper()
	rec := &recorder{}
	rec.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		rec.mu.Lock()
		rec.requests = append(rec.requests, captured{
			Method: r.Method,
			URI:    r.RequestURI,
			Header: r.Header.Clone(),
			Body:   string(data),
		})
		rec.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(rec.Close)
	return rec
}

func (r *recorder) last(t *testing.T) captured {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.requests, "no request was made")
	return r.requests[len(r.requests)-1]
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.requests)
}

func newClient(t *testing.T, baseURL string, store session.Storage, onSignedOut func()) *rest.Client {
	t.Helper()
	c, err := rest.New(baseURL, store, rest.Options{OnSignedOut: onSignedOut})
	require.NoError(t, err)
	return c
}

// newObservedClient is newClient with a logger whose entries the test can
// inspect.
func newObservedClient(t *testing.T, baseURL string, store session.Storage) (*rest.Client, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	c, err := rest.New(baseURL, store, rest.Options{Logger: zap.New(core)})
	require.NoError(t, err)
	return c, logs
}

// requireFailureLogged checks for exactly one error entry naming the call.
func requireFailureLogged(t *testing.T, logs *observer.ObservedLogs, method, endpoint string) {
	t.Helper()
	entries := logs.FilterLevelExact(zapcore.ErrorLevel).All()
	require.Len(t, entries, 1)
	assert.Equal(t, "API request failed", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.Equal(t, method, fields["method"])
	assert.Equal(t, endpoint, fields["endpoint"])
	assert.Contains(t, fields, "error")
}

func loggedInStorage() *session.MemoryStorage {
	store := session.NewMemoryStorage()
	_ = store.Set(session.AccessTokenKey, "T")
	_ = store.Set(session.RefreshTokenKey, "R")
	return store
}

func TestNew_Validation(t *testing.T) {
	_, err := rest.New("", session.NewMemoryStorage(), rest.Options{})
	assert.Error(t, err)

	_, err = rest.New("http://localhost:8000/api/v1", nil, rest.Options{})
	assert.Error(t, err)
}

func TestDo_SendsBearerFromStorage(t *testing.T) {
	srv := newRecorder(t, http.StatusOK, `{"ok":true}`)
	c := newClient(t, srv.URL, loggedInStorage(), nil)

	raw, err := c.Do(context.Background(), "/boards/", rest.RequestOptions{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(raw))

	req := srv.last(t)
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/boards/", req.URI)
	assert.Equal(t, "Bearer T", req.Header.Get("Authorization"))
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
}

func TestDo_NoAuthorizationWithoutToken(t *testing.T) {
	srv := newRecorder(t, http.StatusOK, `[]`)
	c := newClient(t, srv.URL, session.NewMemoryStorage(), nil)

	_, err := c.Do(context.Background(), "/boards/", rest.RequestOptions{})
	require.NoError(t, err)

	_, present := srv.last(t).Header["Authorization"]
	assert.False(t, present, "Authorization header should be absent")
	assert.False(t, c.LoggedIn())
}

func TestDo_TokenReadOnceAtConstruction(t *testing.T) {
	srv := newRecorder(t, http.StatusOK, `[]`)
	store := session.NewMemoryStorage()
	c := newClient(t, srv.URL, store, nil)

	require.NoError(t, store.Set(session.AccessTokenKey, "LATE"))

	_, err := c.Do(context.Background(), "/boards/", rest.RequestOptions{})
	require.NoError(t, err)
	assert.Empty(t, srv.last(t).Header.Get("Authorization"))
}

func TestDo_BaseURLTrailingSlash(t *testing.T) {
	srv := newRecorder(t, http.StatusOK, `[]`)
	c := newClient(t, srv.URL+"/api/v1/", session.NewMemoryStorage(), nil)

	_, err := c.Do(context.Background(), "/boards/", rest.RequestOptions{})
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/boards/", srv.last(t).URI)
}

func TestDo_MethodAndBody(t *testing.T) {
	srv := newRecorder(t, http.StatusCreated, `{"id":"1"}`)
	c := newClient(t, srv.URL, session.NewMemoryStorage(), nil)

	_, err := c.Do(context.Background(), "/boards/", rest.RequestOptions{
		Method: http.MethodPost,
		Body:   strings.NewReader(`{"name":"Work"}`),
	})
	require.NoError(t, err)

	req := srv.last(t)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, `{"name":"Work"}`, req.Body)
}

func TestDo_HeaderOverride(t *testing.T) {
	srv := newRecorder(t, http.StatusOK, `{}`)
	c := newClient(t, srv.URL, loggedInStorage(), nil)

	_, err := c.Do(context.Background(), "/boards/", rest.RequestOptions{
		Header: http.Header{
			"Content-Type":  []string{"text/plain"},
			"Authorization": []string{"Token other"},
			"X-Request-Id":  []string{"abc"},
		},
	})
	require.NoError(t, err)

	req := srv.last(t)
	assert.Equal(t, []string{"text/plain"}, req.Header.Values("Content-Type"))
	assert.Equal(t, []string{"Token other"}, req.Header.Values("Authorization"))
	assert.Equal(t, "abc", req.Header.Get("X-Request-Id"))
}

func TestDo_NoContent(t *testing.T) {
	srv := newRecorder(t, http.StatusNoContent, "")
	c := newClient(t, srv.URL, loggedInStorage(), nil)

	raw, err := c.Do(context.Background(), "/boards/1", rest.RequestOptions{Method: http.MethodDelete})
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestDo_UnauthorizedClearsSession(t *testing.T) {
	srv := newRecorder(t, http.StatusUnauthorized, `{"detail":"Could not validate credentials"}`)
	store := loggedInStorage()
	signedOut := 0
	c := newClient(t, srv.URL, store, func() { signedOut++ })

	raw, err := c.Do(context.Background(), "/boards/", rest.RequestOptions{})
	assert.Nil(t, raw)
	assert.ErrorIs(t, err, rest.ErrUnauthenticated)
	assert.Equal(t, http.StatusUnauthorized, rest.StatusCode(err))

	_, ok := store.Get(session.AccessTokenKey)
	assert.False(t, ok, "access_token should be removed")
	_, ok = store.Get(session.RefreshTokenKey)
	assert.False(t, ok, "refresh_token should be removed")
	assert.False(t, c.LoggedIn())
	assert.Equal(t, 1, signedOut)

	// The next call goes out without a token.
	_, _ = c.Do(context.Background(), "/boards/", rest.RequestOptions{})
	assert.Empty(t, srv.last(t).Header.Get("Authorization"))
}

func TestDo_ErrorDetail(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
		detail  string
	}{
		{"detail string", http.StatusNotFound, `{"detail":"Board not found"}`, "Board not found", "Board not found"},
		{"unparseable body", http.StatusInternalServerError, `<html>oops</html>`, "Request failed", ""},
		{"empty body", http.StatusBadGateway, ``, "Request failed", ""},
		{"no detail field", http.StatusBadRequest, `{"error":"bad"}`, "Request failed", ""},
		{"detail not a string", http.StatusUnprocessableEntity, `{"detail":[{"msg":"field required"}]}`, "Request failed", ""},
		{"empty detail", http.StatusConflict, `{"detail":""}`, "Request failed", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newRecorder(t, tt.status, tt.body)
			signedOut := false
			c := newClient(t, srv.URL, loggedInStorage(), func() { signedOut = true })

			raw, err := c.Do(context.Background(), "/boards/1", rest.RequestOptions{})
			assert.Nil(t, raw)
			require.Error(t, err)
			assert.Equal(t, tt.message, err.Error())

			var reqErr *rest.RequestError
			require.True(t, errors.As(err, &reqErr))
			assert.Equal(t, tt.status, reqErr.Status)
			assert.Equal(t, tt.detail, reqErr.Detail)
			assert.False(t, signedOut, "only 401 signs out")
			assert.True(t, c.LoggedIn())
		})
	}
}

func TestIsNotFound(t *testing.T) {
	srv := newRecorder(t, http.StatusNotFound, `{"detail":"Task not found"}`)
	c := newClient(t, srv.URL, loggedInStorage(), nil)

	_, err := c.GetTask(context.Background(), "42")
	assert.True(t, rest.IsNotFound(err))
	assert.False(t, rest.IsNotFound(errors.New("other")))
	assert.Equal(t, 0, rest.StatusCode(errors.New("other")))
}

func TestDo_InvalidJSONReturnedUnmodified(t *testing.T) {
	srv := newRecorder(t, http.StatusOK, `not json`)
	c, logs := newObservedClient(t, srv.URL, loggedInStorage())

	_, err := c.Do(context.Background(), "/boards/", rest.RequestOptions{})
	require.Error(t, err)

	var syntaxErr *json.SyntaxError
	assert.True(t, errors.As(err, &syntaxErr), "want *json.SyntaxError, got %T", err)
	requireFailureLogged(t, logs, http.MethodGet, "/boards/")
}

func TestDo_ErrorStatusNotLoggedAsFailure(t *testing.T) {
	srv := newRecorder(t, http.StatusNotFound, `{"detail":"Board not found"}`)
	c, logs := newObservedClient(t, srv.URL, loggedInStorage())

	_, err := c.Do(context.Background(), "/boards/b1", rest.RequestOptions{})
	require.Error(t, err)
	assert.Zero(t, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
	assert.Equal(t, 1, logs.FilterMessage("API response").Len())
}

func TestDo_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, logs := newObservedClient(t, url, loggedInStorage())
	_, err := c.Do(context.Background(), "/boards/", rest.RequestOptions{Method: http.MethodPost})
	require.Error(t, err)

	var reqErr *rest.RequestError
	assert.False(t, errors.As(err, &reqErr))
	assert.True(t, c.LoggedIn(), "transport errors keep the session")
	requireFailureLogged(t, logs, http.MethodPost, "/boards/")
}

func TestLogin_TransportErrorLogged(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, logs := newObservedClient(t, url, session.NewMemoryStorage())
	require.Error(t, c.Login(context.Background(), "alice", "secret"))
	requireFailureLogged(t, logs, http.MethodPost, "/auth/login")
}

func TestLogin(t *testing.T) {
	srv := newRecorder(t, http.StatusOK, `{"access_token":"A","refresh_token":"R","token_type":"bearer"}`)
	store := session.NewMemoryStorage()
	c := newClient(t, srv.URL, store, nil)

	require.NoError(t, c.Login(context.Background(), "alice", "secret"))

	req := srv.last(t)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/auth/login", req.URI)
	assert.Equal(t, "application/x-www-form-urlencoded", req.Header.Get("Content-Type"))
	assert.Equal(t, "username=alice&password=secret", req.Body)

	access, _ := store.Get(session.AccessTokenKey)
	refresh, _ := store.Get(session.RefreshTokenKey)
	assert.Equal(t, "A", access)
	assert.Equal(t, "R", refresh)
	assert.True(t, c.LoggedIn())

	_, err := c.ListBoards(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer A", srv.last(t).Header.Get("Authorization"))
}

func TestLogin_EscapesCredentials(t *testing.T) {
	srv := newRecorder(t, http.StatusOK, `{"access_token":"A","refresh_token":"R"}`)
	c := newClient(t, srv.URL, session.NewMemoryStorage(), nil)

	require.NoError(t, c.Login(context.Background(), "a&b", "p w=1"))
	assert.Equal(t, "username=a%26b&password=p+w%3D1", srv.last(t).Body)
}

func TestLogin_Failure(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"wrong password", http.StatusUnauthorized, `{"detail":"Incorrect username or password"}`, "Incorrect username or password"},
		{"no detail", http.StatusBadRequest, `nope`, "Login failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newRecorder(t, tt.status, tt.body)
			store := session.NewMemoryStorage()
			signedOut := false
			c := newClient(t, srv.URL, store, func() { signedOut = true })

			err := c.Login(context.Background(), "alice", "wrong")
			require.Error(t, err)
			assert.Equal(t, tt.message, err.Error())
			assert.Equal(t, tt.status, rest.StatusCode(err))
			assert.False(t, signedOut)
			assert.False(t, c.LoggedIn())

			_, ok := store.Get(session.AccessTokenKey)
			assert.False(t, ok)
		})
	}
}

func TestLogin_MissingAccessToken(t *testing.T) {
	srv := newRecorder(t, http.StatusOK, `{"token_type":"bearer"}`)
	c := newClient(t, srv.URL, session.NewMemoryStorage(), nil)

	assert.Error(t, c.Login(context.Background(), "alice", "secret"))
	assert.False(t, c.LoggedIn())
}

func TestLogout(t *testing.T) {
	srv := newRecorder(t, http.StatusOK, `{}`)
	store := loggedInStorage()
	signedOut := 0
	c := newClient(t, srv.URL, store, func() { signedOut++ })

	c.Logout()

	assert.Equal(t, 0, srv.count(), "logout must not contact the server")
	assert.Equal(t, 1, signedOut)
	assert.False(t, c.LoggedIn())
	_, ok := store.Get(session.AccessTokenKey)
	assert.False(t, ok)
	_, ok = store.Get(session.RefreshTokenKey)
	assert.False(t, ok)
}

func TestSearchTasks_QueryString(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		boardID string
		want    string
	}{
		{"with board", "foo", "7", "/tasks/search?q=foo&board_id=7"},
		{"without board", "foo", "", "/tasks/search?q=foo"},
		{"escaped", "a b&c", "x/y", "/tasks/search?q=a+b%26c&board_id=x%2Fy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newRecorder(t, http.StatusOK, `[]`)
			c := newClient(t, srv.URL, loggedInStorage(), nil)

			tasks, err := c.SearchTasks(context.Background(), tt.query, tt.boardID)
			require.NoError(t, err)
			assert.Empty(t, tasks)
			assert.Equal(t, tt.want, srv.last(t).URI)
		})
	}
}

func TestAccessors_Routes(t *testing.T) {
	name := "Renamed"
	tests := []struct {
		name   string
		call   func(ctx context.Context, c *rest.Client) error
		method string
		uri    string
		body   string
	}{
		{"register", func(ctx context.Context, c *rest.Client) error {
			_, err := c.Register(ctx, service.UserCreate{Username: "bob", Email: "bob@example.com", Password: "pw"})
			return err
		}, http.MethodPost, "/auth/register", `{"username":"bob","email":"bob@example.com","password":"pw"}`},
		{"current user", func(ctx context.Context, c *rest.Client) error {
			_, err := c.CurrentUser(ctx)
			return err
		}, http.MethodGet, "/users/me", ""},
		{"update current user", func(ctx context.Context, c *rest.Client) error {
			_, err := c.UpdateCurrentUser(ctx, service.UserUpdate{FullName: &name})
			return err
		}, http.MethodPut, "/users/me", `{"full_name":"Renamed"}`},
		{"list boards", func(ctx context.Context, c *rest.Client) error {
			_, err := c.ListBoards(ctx)
			return err
		}, http.MethodGet, "/boards/", ""},
		{"get board", func(ctx context.Context, c *rest.Client) error {
			_, err := c.GetBoard(ctx, "b1")
			return err
		}, http.MethodGet, "/boards/b1", ""},
		{"create board", func(ctx context.Context, c *rest.Client) error {
			_, err := c.CreateBoard(ctx, service.BoardCreate{Name: "Work"})
			return err
		}, http.MethodPost, "/boards/", `{"name":"Work","is_public":false}`},
		{"update board", func(ctx context.Context, c *rest.Client) error {
			_, err := c.UpdateBoard(ctx, "b1", service.BoardUpdate{Name: &name})
			return err
		}, http.MethodPut, "/boards/b1", `{"name":"Renamed"}`},
		{"delete board", func(ctx context.Context, c *rest.Client) error {
			return c.DeleteBoard(ctx, "b1")
		}, http.MethodDelete, "/boards/b1", ""},
		{"list members", func(ctx context.Context, c *rest.Client) error {
			_, err := c.ListBoardMembers(ctx, "b1")
			return err
		}, http.MethodGet, "/boards/b1/members", ""},
		{"add member", func(ctx context.Context, c *rest.Client) error {
			_, err := c.AddBoardMember(ctx, "b1", service.BoardMemberCreate{UserID: "u2"})
			return err
		}, http.MethodPost, "/boards/b1/members", `{"user_id":"u2"}`},
		{"list columns", func(ctx context.Context, c *rest.Client) error {
			_, err := c.ListColumns(ctx, "b1")
			return err
		}, http.MethodGet, "/columns/board/b1", ""},
		{"get column", func(ctx context.Context, c *rest.Client) error {
			_, err := c.GetColumn(ctx, "c1")
			return err
		}, http.MethodGet, "/columns/c1", ""},
		{"create column", func(ctx context.Context, c *rest.Client) error {
			_, err := c.CreateColumn(ctx, service.ColumnCreate{BoardID: "b1", Name: "Todo"})
			return err
		}, http.MethodPost, "/columns/", `{"board_id":"b1","name":"Todo","position":0}`},
		{"update column", func(ctx context.Context, c *rest.Client) error {
			_, err := c.UpdateColumn(ctx, "c1", service.ColumnUpdate{Name: &name})
			return err
		}, http.MethodPut, "/columns/c1", `{"name":"Renamed"}`},
		{"delete column", func(ctx context.Context, c *rest.Client) error {
			return c.DeleteColumn(ctx, "c1")
		}, http.MethodDelete, "/columns/c1", ""},
		{"list tasks", func(ctx context.Context, c *rest.Client) error {
			_, err := c.ListTasks(ctx, "b1")
			return err
		}, http.MethodGet, "/tasks/?board_id=b1", ""},
		{"get task", func(ctx context.Context, c *rest.Client) error {
			_, err := c.GetTask(ctx, "t1")
			return err
		}, http.MethodGet, "/tasks/t1", ""},
		{"create task", func(ctx context.Context, c *rest.Client) error {
			_, err := c.CreateTask(ctx, service.TaskCreate{BoardID: "b1", ColumnID: "c1", Title: "Write"})
			return err
		}, http.MethodPost, "/tasks/", `{"board_id":"b1","column_id":"c1","title":"Write","position":0}`},
		{"update task", func(ctx context.Context, c *rest.Client) error {
			_, err := c.UpdateTask(ctx, "t1", service.TaskUpdate{Title: &name})
			return err
		}, http.MethodPut, "/tasks/t1", `{"title":"Renamed"}`},
		{"clear task tags", func(ctx context.Context, c *rest.Client) error {
			_, err := c.UpdateTask(ctx, "t1", service.TaskUpdate{Tags: &[]string{}})
			return err
		}, http.MethodPut, "/tasks/t1", `{"tags":[]}`},
		{"task due date", func(ctx context.Context, c *rest.Client) error {
			due := service.TimeRef(time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC))
			_, err := c.UpdateTask(ctx, "t1", service.TaskUpdate{DueDate: due})
			return err
		}, http.MethodPut, "/tasks/t1", `{"due_date":"2026-03-05T00:00:00"}`},
		{"delete task", func(ctx context.Context, c *rest.Client) error {
			return c.DeleteTask(ctx, "t1")
		}, http.MethodDelete, "/tasks/t1", ""},
		{"list comments", func(ctx context.Context, c *rest.Client) error {
			_, err := c.ListComments(ctx, "t1")
			return err
		}, http.MethodGet, "/comments/task/t1", ""},
		{"get comment", func(ctx context.Context, c *rest.Client) error {
			_, err := c.GetComment(ctx, "m1")
			return err
		}, http.MethodGet, "/comments/m1", ""},
		{"create comment", func(ctx context.Context, c *rest.Client) error {
			_, err := c.CreateComment(ctx, service.CommentCreate{TaskID: "t1", Content: "hi"})
			return err
		}, http.MethodPost, "/comments/", `{"task_id":"t1","content":"hi"}`},
		{"update comment", func(ctx context.Context, c *rest.Client) error {
			_, err := c.UpdateComment(ctx, "m1", service.CommentUpdate{Content: &name})
			return err
		}, http.MethodPut, "/comments/m1", `{"content":"Renamed"}`},
		{"delete comment", func(ctx context.Context, c *rest.Client) error {
			return c.DeleteComment(ctx, "m1")
		}, http.MethodDelete, "/comments/m1", ""},
		{"list attachments", func(ctx context.Context, c *rest.Client) error {
			_, err := c.ListAttachments(ctx, "t1")
			return err
		}, http.MethodGet, "/attachments/task/t1", ""},
		{"download attachment", func(ctx context.Context, c *rest.Client) error {
			_, err := c.DownloadAttachment(ctx, "a1", io.Discard)
			return err
		}, http.MethodGet, "/attachments/a1", ""},
		{"delete attachment", func(ctx context.Context, c *rest.Client) error {
			return c.DeleteAttachment(ctx, "a1")
		}, http.MethodDelete, "/attachments/a1", ""},
		{"path escaping", func(ctx context.Context, c *rest.Client) error {
			_, err := c.GetBoard(ctx, "a/b c")
			return err
		}, http.MethodGet, "/boards/a%2Fb%20c", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// "null" decodes into both slices and structs.
			srv := newRecorder(t, http.StatusOK, `null`)
			c := newClient(t, srv.URL, loggedInStorage(), nil)

			require.NoError(t, tt.call(context.Background(), c))

			req := srv.last(t)
			assert.Equal(t, tt.method, req.Method)
			assert.Equal(t, tt.uri, req.URI)
			if tt.body == "" {
				assert.Empty(t, req.Body)
			} else {
				assert.JSONEq(t, tt.body, req.Body)
			}
		})
	}
}

// A board, task and user exactly as the server serializes them: timestamps
// are naive UTC with microseconds.
const (
	backendBoard = `{"id":"b1","name":"Work","description":null,"is_public":false,"owner_id":"u1",` +
		`"created_at":"2024-01-15T10:30:00.123456","updated_at":"2024-01-15T10:30:00.123456"}`
	backendTask = `[{"id":"t1","board_id":"b1","column_id":"c1","creator_id":"u1","assigned_to_id":null,` +
		`"title":"Write","description":null,"priority":"high","status":"done","position":0,"tags":["q1"],` +
		`"due_date":"2024-02-01T00:00:00","completed_at":"2024-01-20T08:00:00.5",` +
		`"created_at":"2024-01-15T10:30:00","updated_at":"2024-01-15T10:30:00.123456"}]`
	backendUser = `{"id":"u1","username":"alice","email":"alice@example.com","full_name":null,"is_active":true,` +
		`"created_at":"2024-01-15T10:30:00.123456","updated_at":"2024-01-15T10:30:00.123456Z"}`
)

func TestAccessors_DecodeBackendTimestamps(t *testing.T) {
	ctx := context.Background()
	want := time.Date(2024, 1, 15, 10, 30, 0, 123456000, time.UTC)

	srv := newRecorder(t, http.StatusOK, backendBoard)
	board, err := newClient(t, srv.URL, loggedInStorage(), nil).GetBoard(ctx, "b1")
	require.NoError(t, err)
	assert.True(t, board.CreatedAt.Equal(want), "created_at: %v", board.CreatedAt)
	assert.Equal(t, "Work", board.Name)

	srv = newRecorder(t, http.StatusOK, backendTask)
	tasks, err := newClient(t, srv.URL, loggedInStorage(), nil).ListTasks(ctx, "b1")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.NotNil(t, tasks[0].DueDate)
	require.NotNil(t, tasks[0].CompletedAt)
	assert.Equal(t, "2024-02-01", tasks[0].DueDate.Format(time.DateOnly))
	assert.True(t, tasks[0].CompletedAt.Equal(time.Date(2024, 1, 20, 8, 0, 0, 500000000, time.UTC)))
	assert.True(t, tasks[0].UpdatedAt.Equal(want))

	srv = newRecorder(t, http.StatusOK, backendUser)
	user, err := newClient(t, srv.URL, loggedInStorage(), nil).CurrentUser(ctx)
	require.NoError(t, err)
	assert.True(t, user.CreatedAt.Equal(want))
	assert.True(t, user.UpdatedAt.Equal(want))
}

func TestUploadAttachment(t *testing.T) {
	srv := newRecorder(t, http.StatusCreated, `{"id":"a1","task_id":"t 1","filename":"notes.txt","file_path":"uploads/x.txt",`+
		`"file_size":5,"mime_type":"text/plain","uploaded_by":"u1","created_at":"2024-01-15T10:30:00.123456"}`)
	c := newClient(t, srv.URL, loggedInStorage(), nil)

	a, err := c.UploadAttachment(context.Background(), "t 1", "notes.txt", strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, "a1", a.ID)
	assert.Equal(t, int64(5), a.FileSize)

	req := srv.last(t)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/attachments/?task_id=t+1", req.URI)
	assert.Equal(t, "Bearer T", req.Header.Get("Authorization"))

	mediaType, params, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/form-data", mediaType, "upload overrides the JSON content type")

	part, err := multipart.NewReader(strings.NewReader(req.Body), params["boundary"]).NextPart()
	require.NoError(t, err)
	assert.Equal(t, "file", part.FormName())
	assert.Equal(t, "notes.txt", part.FileName())
	assert.True(t, strings.HasPrefix(part.Header.Get("Content-Type"), "text/plain"), "part type %q", part.Header.Get("Content-Type"))
	data, err := io.ReadAll(part)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestDownloadAttachment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write([]byte{0x00, 0xff, 'x'})
	}))
	t.Cleanup(srv.Close)
	c := newClient(t, srv.URL, loggedInStorage(), nil)

	var buf bytes.Buffer
	n, err := c.DownloadAttachment(context.Background(), "a1", &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, []byte{0x00, 0xff, 'x'}, buf.Bytes())
}

func TestDownloadAttachment_NotFound(t *testing.T) {
	srv := newRecorder(t, http.StatusNotFound, `{"detail":"Attachment not found"}`)
	c := newClient(t, srv.URL, loggedInStorage(), nil)

	var buf bytes.Buffer
	_, err := c.DownloadAttachment(context.Background(), "a1", &buf)
	assert.True(t, rest.IsNotFound(err))
	assert.Equal(t, "Attachment not found", err.Error())
	assert.Zero(t, buf.Len(), "error bodies are not written out")
}

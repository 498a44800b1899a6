package commands_test

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"io"
	"strings"
	"testing"

	"kanban/internal/commands"
	"kanban/internal/config"
	"kanban/internal/exitcode"
	"kanban/internal/service"
	"kanban/internal/testutil"
)

// runCommand is a helper to run a command with FakeService.
func runCommand(t *testing.T, cmd commands.Command, svc *testutil.FakeService, args []string, quiet bool) (stdout, stderr string, code int) {
	t.Helper()

	var outBuf, errBuf bytes.Buffer

	cfg := &config.Config{
		Dir:   t.TempDir(),
		Quiet: quiet,
	}

	ctx := context.Background()
	code = cmd.Run(ctx, cfg, svc, args, &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

// runWithFlags registers the command's flags, parses argv and runs it.
func runWithFlags(t *testing.T, cmd commands.Command, svc *testutil.FakeService, argv ...string) (stdout, stderr string, code int) {
	t.Helper()

	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cmd.RegisterFlags(fs)
	if err := fs.Parse(argv); err != nil {
		t.Fatalf("failed to parse flags %v: %v", argv, err)
	}
	return runCommand(t, cmd, svc, fs.Args(), false)
}

// newBoardFixture returns a service with board Work (b1): column Todo (c1)
// holding "Write report" (t1) and "Review" (t2), and column Doing (c2)
// holding "Deploy" (t3).
func newBoardFixture() *testutil.FakeService {
	svc := testutil.NewFakeService()
	b := svc.AddBoard("Work")
	todo := svc.AddColumn(b.ID, "Todo", 0)
	doing := svc.AddColumn(b.ID, "Doing", 1)
	svc.AddTask(b.ID, todo.ID, "Write report")
	svc.AddTask(b.ID, todo.ID, "Review")
	svc.AddTask(b.ID, doing.ID, "Deploy")
	return svc
}

func expectSuccess(t *testing.T, stdout, stderr string, code int, wantOut string) {
	t.Helper()
	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != wantOut {
		t.Errorf("expected stdout %q, got %q", wantOut, stdout)
	}
}

func expectFailure(t *testing.T, stdout, stderr string, code, wantCode int, wantErr string) {
	t.Helper()
	if code != wantCode {
		t.Errorf("expected exit code %d, got %d", wantCode, code)
	}
	if stdout != "" {
		t.Errorf("expected no stdout, got %q", stdout)
	}
	if stderr != wantErr {
		t.Errorf("expected stderr %q, got %q", wantErr, stderr)
	}
}

// Tests for version command
func TestVersionCommand(t *testing.T) {
	cmd := &commands.VersionCmd{}

	stdout, stderr, code := runCommand(t, cmd, nil, nil, false)
	expectSuccess(t, stdout, stderr, code, "kanban 0.1.0\n")
}

// Tests for help command
func TestHelpCommand(t *testing.T) {
	cmd := &commands.HelpCmd{}

	stdout, stderr, code := runCommand(t, cmd, nil, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	for _, want := range []string{"Usage:", "kanban board <board>", "--api <url>"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("help output should contain %q", want)
		}
	}
}

func TestHelpCommand_SingleCommand(t *testing.T) {
	cmd := &commands.HelpCmd{}

	stdout, stderr, code := runCommand(t, cmd, nil, []string{"board"}, false)

	expected := "board - Print a board with its columns and tasks\n\nUsage:\n  kanban board [common flags] <board>\n\nAliases: show-board\n"
	expectSuccess(t, stdout, stderr, code, expected)
}

func TestHelpCommand_UnknownSuggests(t *testing.T) {
	cmd := &commands.HelpCmd{}

	stdout, stderr, code := runCommand(t, cmd, nil, []string{"bord"}, false)
	expectFailure(t, stdout, stderr, code, exitcode.UserError, "error: unknown command: bord (did you mean board?)\n")
}

func TestHelpListsEveryCommand(t *testing.T) {
	for _, cmd := range commands.DefaultRegistry.All() {
		if !strings.Contains(helpOutput(t), "kanban "+cmd.Name()) {
			t.Errorf("help text does not mention %s", cmd.Name())
		}
	}
}

func helpOutput(t *testing.T) string {
	t.Helper()
	stdout, _, _ := runCommand(t, &commands.HelpCmd{}, nil, nil, false)
	return stdout
}

// Tests for boards command
func TestBoardsCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddBoard("Work")
	if _, err := svc.CreateBoard(context.Background(), service.BoardCreate{Name: "Home", IsPublic: true}); err != nil {
		t.Fatal(err)
	}

	stdout, stderr, code := runCommand(t, &commands.BoardsCmd{}, svc, nil, false)
	expectSuccess(t, stdout, stderr, code, "b1  Work\nb2  Home [public]\n")
}

func TestBoardsCommand_Empty(t *testing.T) {
	svc := testutil.NewFakeService()

	stdout, stderr, code := runCommand(t, &commands.BoardsCmd{}, svc, nil, false)
	expectSuccess(t, stdout, stderr, code, "no boards found\n")

	stdout, stderr, code = runCommand(t, &commands.BoardsCmd{}, svc, nil, true)
	expectSuccess(t, stdout, stderr, code, "")
}

func TestBoardsCommand_Errors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  string
	}{
		{"session rejected", service.ErrUnauthenticated, exitcode.AuthError, "error: not logged in (run: kanban login)\n"},
		{"transport", errors.New("dial tcp: connection refused"), exitcode.BackendError, "error: backend error: dial tcp: connection refused\n"},
		{"timeout", context.DeadlineExceeded, exitcode.BackendError, "error: backend error: request timed out\n"},
		{"forbidden", &testutil.StatusError{Status: 403, Message: "Not enough permissions"}, exitcode.UserError, "error: Not enough permissions\n"},
		{"server", &testutil.StatusError{Status: 500, Message: "Request failed"}, exitcode.BackendError, "error: backend error: Request failed\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := testutil.NewFakeService()
			svc.Errs["ListBoards"] = tt.err

			stdout, stderr, code := runCommand(t, &commands.BoardsCmd{}, svc, nil, false)
			expectFailure(t, stdout, stderr, code, tt.wantCode, tt.wantErr)
		})
	}
}

func TestBoardsCommand_UnauthenticatedDropsSession(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.Errs["ListBoards"] = service.ErrUnauthenticated

	runCommand(t, &commands.BoardsCmd{}, svc, nil, false)
	if svc.LoggedIn() {
		t.Error("expected session to be dropped")
	}
}

// Tests for board command
func TestBoardCommand(t *testing.T) {
	svc := newBoardFixture()

	stdout, stderr, code := runCommand(t, &commands.BoardCmd{}, svc, []string{"work"}, false)

	expected := "Work\n" +
		"------------\nTodo\n------------\n" +
		"       1  Write report\n" +
		"       2  Review\n" +
		"------------\nDoing\n------------\n" +
		"       3  Deploy\n"
	expectSuccess(t, stdout, stderr, code, expected)
}

func TestBoardCommand_ColumnOrderFollowsPosition(t *testing.T) {
	svc := testutil.NewFakeService()
	b := svc.AddBoard("Work")
	done := svc.AddColumn(b.ID, "Done", 2)
	todo := svc.AddColumn(b.ID, "Todo", 0)
	svc.AddTask(b.ID, done.ID, "Shipped")
	svc.AddTask(b.ID, todo.ID, "Next")

	stdout, stderr, code := runCommand(t, &commands.BoardCmd{}, svc, []string{"b1"}, false)

	expected := "Work\n" +
		"------------\nTodo\n------------\n" +
		"       1  Next\n" +
		"------------\nDone\n------------\n" +
		"       2  Shipped\n"
	expectSuccess(t, stdout, stderr, code, expected)
}

func TestBoardCommand_OrphanTasks(t *testing.T) {
	svc := testutil.NewFakeService()
	b := svc.AddBoard("Work")
	todo := svc.AddColumn(b.ID, "Todo", 0)
	svc.AddTask(b.ID, todo.ID, "Kept")
	svc.AddTask(b.ID, "c99", "Lost")

	stdout, stderr, code := runCommand(t, &commands.BoardCmd{}, svc, []string{"Work"}, false)

	expected := "Work\n" +
		"------------\nTodo\n------------\n" +
		"       1  Kept\n" +
		"------------\n(no column)\n------------\n" +
		"       2  Lost\n"
	expectSuccess(t, stdout, stderr, code, expected)
}

func TestBoardCommand_NoColumns(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddBoard("Side Project")

	stdout, stderr, code := runCommand(t, &commands.BoardCmd{}, svc, []string{"Side", "Project"}, false)
	expectSuccess(t, stdout, stderr, code, "Side Project\nno columns (run: kanban mkcol 'Side Project' <name>)\n")
}

func TestBoardCommand_Lookup(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddBoard("Work")
	svc.AddBoard("work")

	stdout, stderr, code := runCommand(t, &commands.BoardCmd{}, svc, []string{"WORK"}, false)
	expectFailure(t, stdout, stderr, code, exitcode.UserError, "error: ambiguous board name: WORK\n")

	stdout, stderr, code = runCommand(t, &commands.BoardCmd{}, svc, []string{"Home"}, false)
	expectFailure(t, stdout, stderr, code, exitcode.UserError, "error: board not found: Home\n")

	stdout, stderr, code = runCommand(t, &commands.BoardCmd{}, svc, nil, false)
	expectFailure(t, stdout, stderr, code, exitcode.UserError, "error: board required\n")
}

func TestBoardCommand_IDWinsOverName(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddBoard("b2")
	svc.AddBoard("Work")

	stdout, _, code := runCommand(t, &commands.BoardCmd{}, svc, []string{"b2"}, false)
	if code != exitcode.Success {
		t.Fatalf("expected success, got %d", code)
	}
	if !strings.HasPrefix(stdout, "Work\n") {
		t.Errorf("expected board b2 (Work), got %q", stdout)
	}
}

// Tests for mkboard command
func TestMkBoardCommand(t *testing.T) {
	svc := testutil.NewFakeService()

	stdout, stderr, code := runWithFlags(t, &commands.MkBoardCmd{}, svc, "--description", "day job", "--public", "Work", "Stuff")
	expectSuccess(t, stdout, stderr, code, "ok\n")

	boards := svc.Boards()
	if len(boards) != 1 {
		t.Fatalf("expected 1 board, got %d", len(boards))
	}
	if boards[0].Name != "Work Stuff" || boards[0].Description != "day job" || !boards[0].IsPublic {
		t.Errorf("unexpected board: %+v", boards[0])
	}
}

func TestMkBoardCommand_Duplicate(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddBoard("Work")

	stdout, stderr, code := runCommand(t, &commands.MkBoardCmd{}, svc, []string{"work"}, false)
	expectFailure(t, stdout, stderr, code, exitcode.UserError, "error: board already exists: work\n")
	if len(svc.Boards()) != 1 {
		t.Errorf("expected no new board")
	}
}

func TestMkBoardCommand_NoName(t *testing.T) {
	svc := testutil.NewFakeService()

	stdout, stderr, code := runCommand(t, &commands.MkBoardCmd{}, svc, []string{"  "}, false)
	expectFailure(t, stdout, stderr, code, exitcode.UserError, "error: board name required\n")
}

// Tests for editboard command
func TestEditBoardCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddBoard("Work")

	stdout, stderr, code := runWithFlags(t, &commands.EditBoardCmd{}, svc, "--name", "Job", "--public", "Work")
	expectSuccess(t, stdout, stderr, code, "ok\n")

	b := svc.Boards()[0]
	if b.Name != "Job" || !b.IsPublic {
		t.Errorf("unexpected board: %+v", b)
	}
}

func TestEditBoardCommand_ClearDescription(t *testing.T) {
	svc := testutil.NewFakeService()
	if _, err := svc.CreateBoard(context.Background(), service.BoardCreate{Name: "Work", Description: "old"}); err != nil {
		t.Fatal(err)
	}

	stdout, stderr, code := runWithFlags(t, &commands.EditBoardCmd{}, svc, "--description", "", "Work")
	expectSuccess(t, stdout, stderr, code, "ok\n")
	if d := svc.Boards()[0].Description; d != "" {
		t.Errorf("expected description cleared, got %q", d)
	}
}

func TestEditBoardCommand_NothingToUpdate(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddBoard("Work")

	stdout, stderr, code := runWithFlags(t, &commands.EditBoardCmd{}, svc, "Work")
	expectFailure(t, stdout, stderr, code, exitcode.UserError, "error: nothing to update\n")
}

// Tests for rmboard command
func TestRmBoardCommand_NonEmptyNoForce(t *testing.T) {
	svc := newBoardFixture()

	stdout, stderr, code := runCommand(t, &commands.RmBoardCmd{}, svc, []string{"Work"}, false)
	expectFailure(t, stdout, stderr, code, exitcode.UserError, "error: board not empty (use --force)\n")
	if len(svc.Boards()) != 1 {
		t.Error("expected board to survive")
	}
}

func TestRmBoardCommand_NonEmptyWithForce(t *testing.T) {
	svc := newBoardFixture()

	cmd := &commands.RmBoardCmd{}
	cmd.SetForce(true)
	stdout, stderr, code := runCommand(t, cmd, svc, []string{"Work"}, false)
	expectSuccess(t, stdout, stderr, code, "ok\n")
	if len(svc.Boards()) != 0 {
		t.Error("expected board to be deleted")
	}
}

func TestRmBoardCommand_Empty(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddBoard("Work")

	stdout, stderr, code := runCommand(t, &commands.RmBoardCmd{}, svc, []string{"Work"}, true)
	expectSuccess(t, stdout, stderr, code, "")
	if len(svc.Boards()) != 0 {
		t.Error("expected board to be deleted")
	}
}

// Tests for members and addmember commands
func TestMembersCommands(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddBoard("Work")

	stdout, stderr, code := runCommand(t, &commands.MembersCmd{}, svc, []string{"Work"}, false)
	expectSuccess(t, stdout, stderr, code, "no members\n")

	stdout, stderr, code = runWithFlags(t, &commands.AddMemberCmd{}, svc, "Work", "u7")
	expectSuccess(t, stdout, stderr, code, "ok\n")

	stdout, stderr, code = runWithFlags(t, &commands.AddMemberCmd{}, svc, "--role", "Owner", "Work", "u8")
	expectSuccess(t, stdout, stderr, code, "ok\n")

	stdout, stderr, code = runCommand(t, &commands.MembersCmd{}, svc, []string{"Work"}, false)
	expectSuccess(t, stdout, stderr, code, "u7  member\nu8  owner\n")
}

func TestAddMemberCommand_Invalid(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddBoard("Work")

	stdout, stderr, code := runWithFlags(t, &commands.AddMemberCmd{}, svc, "Work")
	expectFailure(t, stdout, stderr, code, exitcode.UserError, "error: board and user ID required\n")

	stdout, stderr, code = runWithFlags(t, &commands.AddMemberCmd{}, svc, "--role", "admin", "Work", "u7")
	expectFailure(t, stdout, stderr, code, exitcode.UserError, "error: invalid role: admin (want member or owner)\n")
}

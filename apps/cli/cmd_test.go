package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo/core"
	"github.com/trezcool/masomo/core/cache"
	"github.com/trezcool/masomo/core/project"
	"github.com/trezcool/masomo/core/task"
	"github.com/trezcool/masomo/core/user"
	"github.com/trezcool/masomo/services/backend"
	testutil "github.com/trezcool/masomo/tests"
	inmemdb "github.com/trezcool/masomo/storage/database/inmem"
)

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	wantStatus int
	wantOut    string
	extra      interface{}
}

func setup(t *testing.T, usr ...user.User) (*commandLine, *testutil.Backend, *bytes.Buffer) {
	t.Helper()

	b := testutil.StartBackend(t)
	out := new(bytes.Buffer)
	cli := &commandLine{
		client:    b.NewClient(t, usr...),
		tokenFile: filepath.Join(t.TempDir(), "masomo", "token"),
		in:        bufio.NewReader(strings.NewReader("")),
		out:       out,
	}
	return cli, b, out
}

func runTests(t *testing.T, cli *commandLine, out *bytes.Buffer, tests []cliTest) {
	t.Helper()

	for _, tt := range tests {
		args := append([]string{"masomo"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			err := cli.run(context.Background(), args)
			switch {
			case tt.wantErr != nil:
				assert.Equal(t, tt.wantErr, err)
			case tt.wantErrStr != "":
				require.Error(t, err)
				assert.Equal(t, tt.wantErrStr, err.Error())
			case tt.wantStatus != 0:
				apiErr, ok := backend.AsAPIError(err)
				require.True(t, ok, "want an API error, got %v", err)
				assert.Equal(t, tt.wantStatus, apiErr.HTTPStatus)
			default:
				require.NoError(t, err)
			}
			if tt.wantOut != "" {
				assert.Contains(t, out.String(), tt.wantOut)
			}
		})
	}
}

func Test_commandLine_run_usage(t *testing.T) {
	cli, _, out := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp, wantOut: "Usage:"},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no subcommand", args: []string{"projects"}, wantErr: errHelp, wantOut: "Usage: projects create|list|show"},
		{name: "unknown subcommand", args: []string{"tasks", "lol"}, wantErr: errHelp, wantOut: "create|grade|list|mine|status"},
		{name: "help flag", args: []string{"projects", "list", "-h"}, wantErr: errHelp},
		{name: "missing required flag", args: []string{"tasks", "list"}, wantErr: errHelp},
		{name: "missing positional arg", args: []string{"sessions", "join"}, wantErr: errHelp, wantOut: "missing session ID"},
		{name: "unknown flag", args: []string{"projects", "list", "-lol"}, wantErrStr: "flag provided but not defined: -lol"},
	}
	runTests(t, cli, out, tests)
}

func Test_commandLine_login(t *testing.T) {
	cli, b, out := setup(t)
	usr := testutil.CreateUser(t, b.DB, "Awe", "awe@test.cd", "secret123", nil, true)

	defer func(fn func() bool) { isTerminalFunc = fn }(isTerminalFunc)
	isTerminalFunc = func() bool { return true }

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no email", args: []string{"login"}, wantErr: errHelp},
		{name: "no password", args: []string{"login", "-email", usr.Email}, wantErr: errHelp},
		{name: "wrong password", args: []string{"login", "-email", usr.Email}, extra: extra{pwd: "lol"}, wantStatus: http.StatusUnauthorized},
		{name: "logged in", args: []string{"login", "-email", usr.Email}, extra: extra{pwd: "secret123"}, wantOut: "Logged in as Awe <awe@test.cd>"},
	}
	for i := range tests {
		tt := tests[i]
		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}
		runTests(t, cli, out, []cliTest{tt})
	}

	require.NotEmpty(t, cli.client.Token())
	data, err := os.ReadFile(cli.tokenFile)
	require.NoError(t, err)
	assert.Equal(t, cli.client.Token(), strings.TrimSpace(string(data)))

	runTests(t, cli, out, []cliTest{
		{name: "me", args: []string{"me"}, wantOut: usr.ID},
		{name: "logout", args: []string{"logout"}, wantOut: "Logged out"},
		{name: "me after logout", args: []string{"me"}, wantStatus: http.StatusUnauthorized},
	})
	_, err = os.Stat(cli.tokenFile)
	assert.True(t, os.IsNotExist(err))
}

func Test_commandLine_login_stdin(t *testing.T) {
	cli, b, out := setup(t)
	testutil.CreateUser(t, b.DB, "Awe", "awe@test.cd", "secret123", nil, true)

	defer func(fn func() bool) { isTerminalFunc = fn }(isTerminalFunc)
	isTerminalFunc = func() bool { return false }
	cli.in = bufio.NewReader(strings.NewReader("secret123\n"))

	runTests(t, cli, out, []cliTest{
		{name: "password piped", args: []string{"login", "-email", "awe@test.cd"}, wantOut: "Logged in as Awe"},
	})

	// a new command line reads the saved token
	other := &commandLine{client: b.NewClient(t), tokenFile: cli.tokenFile, out: out}
	require.NoError(t, other.loadToken())
	assert.Equal(t, cli.client.Token(), other.client.Token())
}

func createProject(t *testing.T, db *inmemdb.DB, owner user.User, memberIDs ...string) project.Project {
	t.Helper()

	now := time.Now().UTC()
	p := project.Project{
		ID:         inmemdb.NewID(),
		Name:       "Weather station",
		Category:   "iot",
		Level:      project.LevelBeginner,
		StartDate:  now,
		Visibility: project.VisibilityPublic,
		OwnerID:    owner.ID,
		MemberIDs:  memberIDs,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	db.Projects.Insert(p.ID, p)
	return p
}

func Test_commandLine_tasks(t *testing.T) {
	b := testutil.StartBackend(t)
	mentor := testutil.CreateUser(t, b.DB, "Mentor", "mentor@test.cd", "", []string{user.RoleMentor}, true)
	student := testutil.CreateUser(t, b.DB, "Student", "student@test.cd", "", nil, true)
	p := createProject(t, b.DB, mentor, student.ID)

	out := new(bytes.Buffer)
	cli := &commandLine{client: b.NewClient(t, mentor), out: out}

	runTests(t, cli, out, []cliTest{
		{name: "create", args: []string{"tasks", "create", "-project", p.ID, "-title", "Wire the sensor"}, wantOut: "Created task Wire the sensor"},
		{name: "create assigned", args: []string{"tasks", "create", "-project", p.ID, "-title", "Calibrate", "-assignee", student.ID, "-priority", "high"}},
		{name: "create: assignee not a member", args: []string{"tasks", "create", "-project", p.ID, "-title", "Calibrate", "-assignee", "lol"}, wantStatus: http.StatusBadRequest},
	})

	t.Run("create: invalid priority", func(t *testing.T) {
		err := cli.run(context.Background(), []string{"masomo", "tasks", "create", "-project", p.ID, "-title", "Calibrate", "-priority", "lol"})
		require.Error(t, err)
		assert.True(t, core.IsValidationError(err), "want a validation error, got %v", err)
		_, isAPIErr := backend.AsAPIError(err)
		assert.False(t, isAPIErr, "invalid input must not reach the backend")
	})

	var assigned task.Task
	for _, tk := range b.DB.Tasks.Filter(func(tk task.Task) bool { return tk.AssigneeID.Valid }) {
		assigned = tk
	}
	require.NotEmpty(t, assigned.ID)

	runTests(t, cli, out, []cliTest{
		{name: "list", args: []string{"tasks", "list", "-project", p.ID}, wantOut: "2 of 2"},
		{name: "list unassigned", args: []string{"tasks", "list", "-project", p.ID, "-assignee", "null"}, wantOut: "Wire the sensor"},
		{name: "list of assignee", args: []string{"tasks", "list", "-project", p.ID, "-assignee", student.ID}, wantOut: "Calibrate"},
		{name: "status", args: []string{"tasks", "status", "-project", p.ID, "-id", assigned.ID, "-status", task.StatusInProgress}, wantOut: "is now in_progress"},
		{name: "status: unknown task", args: []string{"tasks", "status", "-project", p.ID, "-id", "lol", "-status", task.StatusDone}, wantStatus: http.StatusNotFound},
		{name: "grade: nothing submitted", args: []string{"tasks", "grade", "-project", p.ID, "-id", assigned.ID, "-score", "80"}, wantStatus: http.StatusConflict},
	})

	got, err := b.DB.Tasks.Get(assigned.ID)
	require.NoError(t, err)
	assert.Equal(t, task.StatusInProgress, got.Status)

	// the list above was cached; the status change invalidated it
	out.Reset()
	require.NoError(t, cli.run(context.Background(), []string{"masomo", "tasks", "list", "-project", p.ID, "-assignee", student.ID}))
	assert.Contains(t, out.String(), task.StatusInProgress)

	studentCLI := &commandLine{client: b.NewClient(t, student), out: out}
	runTests(t, studentCLI, out, []cliTest{
		{name: "mine", args: []string{"tasks", "mine"}, wantOut: "Calibrate"},
	})
}

func Test_commandLine_watchTasks(t *testing.T) {
	b := testutil.StartBackend(t)
	owner := testutil.CreateUser(t, b.DB, "Owner", "owner@test.cd", "", []string{user.RoleMentor}, true)
	p := createProject(t, b.DB, owner)

	out := new(bytes.Buffer)
	cli := &commandLine{client: b.NewClient(t, owner), out: out}
	_, err := cli.client.CreateTask(context.Background(), p.ID, task.NewTask{Title: "Solder the board"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, cli.run(ctx, []string{"masomo", "watch", "tasks", "-project", p.ID, "-poll", "0", "-n", "1"}))
	assert.Contains(t, out.String(), "Solder the board")
	assert.Contains(t, out.String(), "1 tasks")
}

func Test_commandLine_render(t *testing.T) {
	tasks := core.List[task.Task]{Items: []task.Task{{ID: "t1", Title: "Solder the board"}}, Total: 1}
	tests := []struct {
		name     string
		view     backend.View[core.List[task.Task]]
		wantDone bool
		wantOut  string
	}{
		{name: "first load", view: backend.View[core.List[task.Task]]{Status: cache.StatusPending, Fetching: true}, wantOut: "loading..."},
		{name: "refreshing", view: backend.View[core.List[task.Task]]{Status: cache.StatusFulfilled, Data: tasks, Fetching: true}, wantOut: "1 tasks (refreshing)"},
		{name: "loaded", view: backend.View[core.List[task.Task]]{Status: cache.StatusFulfilled, Data: tasks}, wantDone: true, wantOut: "Solder the board"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := new(bytes.Buffer)
			cli := &commandLine{out: out}
			done, err := cli.render(tt.view)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDone, done)
			assert.Contains(t, out.String(), tt.wantOut)
		})
	}
}

func Test_printError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []string
	}{
		{
			name: "api error",
			err:  backend.NewAPIError(http.StatusNotFound, "project not found"),
			want: []string{"error: project not found", "status: fail, statusCode: 404, isOperational: true"},
		},
		{
			name: "validation error",
			err:  core.NewValidationError(nil, core.FieldError{Field: "title", Error: "title is a required field"}),
			want: []string{"error: invalid input", "title: title is a required field"},
		},
		{
			name: "other error",
			err:  errors.New("connection refused"),
			want: []string{"error: connection refused"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printError(&buf, tt.err)
			for _, want := range tt.want {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

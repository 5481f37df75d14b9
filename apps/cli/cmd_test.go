package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Frictionalfor/codeFORGE-sub002/core"
	"github.com/Frictionalfor/codeFORGE-sub002/core/classroom"
	appfs "github.com/Frictionalfor/codeFORGE-sub002/fs"
	emailsvc "github.com/Frictionalfor/codeFORGE-sub002/services/email"
	"github.com/Frictionalfor/codeFORGE-sub002/tests"
)

const day = 24 * time.Hour

type env struct {
	cli     *commandLine
	repo    *testutil.FakeRepository
	out     *bytes.Buffer
	mailSvc *emailsvc.ConsoleService
}

func setup(t *testing.T, input ...string) env {
	t.Helper()
	testutil.FreezeTime(t)

	repo := testutil.NewFakeRepository()
	repo.Classes = []classroom.EnrolledClass{testutil.Class("c1", "Algorithms"), testutil.Class("c2", "Web")}
	repo.Assignments["c1"] = []classroom.Assignment{
		testutil.Assignment("a1", "Two Sum", testutil.DueIn(3*day), true),
		testutil.Assignment("a2", "Graphs", testutil.DueIn(-2*day), true),
	}
	repo.Assignments["c2"] = []classroom.Assignment{
		testutil.Assignment("b1", "Forms", testutil.DueIn(-2*day+time.Hour), true),
	}
	repo.Statuses["b1"] = testutil.Submitted(testutil.Now.Add(-3 * day))

	logger := testutil.NewLogger()
	conf := &core.Config{
		Env:             "TEST",
		AppName:         "codeFORGE",
		TestMode:        true,
		FrontendBaseURL: "http://localhost:3000",
		Platform:        core.PlatformConfig{BaseURL: "http://localhost:5000/api", Timeout: time.Second, MaxConcurrentRequests: 4},
	}
	core.ParseEmailTemplates(appfs.FS, appfs.EmailTemplatesDir, true, logger)
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)

	out := new(bytes.Buffer)
	return env{
		cli: &commandLine{
			conf:    conf,
			logger:  logger,
			svc:     classroom.NewService(repo, logger, classroom.Options{MaxConcurrentRequests: 4}),
			mailSvc: mailSvc,
			in:      strings.NewReader(strings.Join(input, "\n")),
			out:     out,
		},
		repo:    repo,
		out:     out,
		mailSvc: mailSvc,
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	wantOut    []string
	notOut     []string
}

func runCLITests(t *testing.T, tests []cliTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := setup(t)
			err := e.cli.run(context.Background(), append([]string{"cli"}, tt.args...))
			switch {
			case tt.wantErr != nil:
				assert.Equal(t, tt.wantErr, err)
			case tt.wantErrStr != "":
				if assert.Error(t, err) {
					assert.Contains(t, err.Error(), tt.wantErrStr)
				}
			default:
				assert.NoError(t, err)
			}
			for _, s := range tt.wantOut {
				assert.Contains(t, e.out.String(), s)
			}
			for _, s := range tt.notOut {
				assert.NotContains(t, e.out.String(), s)
			}
		})
	}
}

func Test_commandLine_run(t *testing.T) {
	runCLITests(t, []cliTest{
		{name: "no command", args: nil, wantErr: errHelp, wantOut: []string{"Usage:"}},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "classes", args: []string{"classes"}, wantOut: []string{"Algorithms", "Web"}},
		{name: "summary", args: []string{"summary"}, wantOut: []string{"all        3", "upcoming   1", "overdue    1", "completed  1"}},
	})
}

func Test_commandLine_assignments(t *testing.T) {
	runCLITests(t, []cliTest{
		{
			name:    "all",
			args:    []string{"assignments"},
			wantOut: []string{"Graphs", "Forms", "Two Sum", "Overdue by 2 days", "Due in 3 days", "Submitted"},
		},
		{
			name:    "overdue",
			args:    []string{"assignments", "-view", "overdue"},
			wantOut: []string{"Graphs"},
			notOut:  []string{"Two Sum", "Forms"},
		},
		{name: "unknown view", args: []string{"assignments", "-view", "late"}, wantErr: errHelp},
		{
			name:    "class by typo",
			args:    []string{"assignments", "-class", "Algoritms"},
			wantOut: []string{"Graphs", "Two Sum"},
			notOut:  []string{"Forms"},
		},
		{
			name:    "class by partial name",
			args:    []string{"assignments", "-class", "algo"},
			wantOut: []string{"Two Sum"},
			notOut:  []string{"Forms"},
		},
		{name: "class by id", args: []string{"assignments", "-class", "c2"}, wantOut: []string{"Forms"}, notOut: []string{"Graphs"}},
		{name: "no such class", args: []string{"assignments", "-class", "zzz"}, wantErrStr: `no class matches "zzz"`},
	})
}

func Test_commandLine_failures(t *testing.T) {
	e := setup(t)
	e.repo.ClassesErr = testutil.FetchErr(classroom.KindNetwork, 0)

	err := e.cli.run(context.Background(), []string{"cli", "assignments"})
	assert.NoError(t, err)
	assert.Contains(t, e.out.String(), "Unable to reach the server. Check your connection.")
	assert.Contains(t, e.out.String(), "No assignments.")
}

func Test_commandLine_digest(t *testing.T) {
	runCLITests(t, []cliTest{
		{name: "no recipient", args: []string{"digest"}, wantErr: errHelp},
		{name: "invalid recipient", args: []string{"digest", "-to", "nope"}, wantErrStr: `invalid email "nope"`},
	})

	e := setup(t)
	err := e.cli.run(context.Background(), []string{"cli", "digest", "-to", "ada@example.com", "-name", "Ada"})
	require.NoError(t, err)
	assert.Contains(t, e.out.String(), `Digest sent to "Ada" <ada@example.com>.`)

	sent := e.mailSvc.Sent()
	require.Len(t, sent, 1)
	msg := sent[0]
	assert.Equal(t, "ada@example.com", msg.To[0].Address)
	assert.Contains(t, msg.TextContent, "Hi Ada,")
	assert.Contains(t, msg.TextContent, "You have 1 upcoming and 1 overdue assignment(s).")
	assert.Contains(t, msg.TextContent, "- Graphs (Algorithms): Overdue by 2 days")
	assert.Contains(t, msg.TextContent, "- Two Sum (Algorithms): Due in 3 days")
	assert.NotContains(t, msg.TextContent, "Forms")
	assert.Contains(t, msg.HTMLContent, "<li>Graphs (Algorithms): Overdue by 2 days</li>")
}

func Test_commandLine_digestUnrendered(t *testing.T) {
	e := setup(t)
	core.ParseEmailTemplates(fstest.MapFS{}, appfs.EmailTemplatesDir, true, e.cli.logger)
	defer core.ParseEmailTemplates(appfs.FS, appfs.EmailTemplatesDir, true, e.cli.logger)

	err := e.cli.run(context.Background(), []string{"cli", "digest", "-to", "ada@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "renders nothing")
	assert.NotContains(t, e.out.String(), "Digest sent")
	assert.Empty(t, e.mailSvc.Sent())
}

func Test_commandLine_digestNothingDue(t *testing.T) {
	e := setup(t)
	e.repo.Assignments["c1"] = nil

	err := e.cli.run(context.Background(), []string{"cli", "digest", "-to", "ada@example.com"})
	require.NoError(t, err)
	assert.Contains(t, e.out.String(), "no digest sent")
	assert.Empty(t, e.mailSvc.Sent())
}

func Test_commandLine_shell(t *testing.T) {
	e := setup(t,
		"open 1", // not from the classes view
		"classes",
		"open 1",
		"edit 3", // out of range
		"edit 2",
		"submit solution.py",
		"back",
		"back",
		"schedule",
		"settings",
		"back",
		"quit",
	)
	defer func(orig func(string) ([]byte, error)) { readFileFunc = orig }(readFileFunc)
	readFileFunc = func(name string) ([]byte, error) {
		assert.Equal(t, "solution.py", name)
		return []byte("print(sum([1, 2]))"), nil
	}

	err := e.cli.run(context.Background(), []string{"cli", "shell"})
	require.NoError(t, err)
	out := e.out.String()

	for _, want := range []string{
		"Classes: 2  Assignments: 3  Completed: 1  Upcoming: 1  Overdue: 1  (33% done)",
		"Next due: Two Sum (Algorithms) - Due in 3 days",
		"error: open a class from the `classes` view",
		"classes> ",
		"assignments> ",
		"error: no assignment #3",
		"Two Sum (python) - Due in 3 days",
		"Points: 100",
		"Solve Two Sum",
		"editor> ",
		"Submitted (pending).",
		"schedule> ",
		"  Graphs (Algorithms) - Overdue",
		"Platform: http://localhost:5000/api",
	} {
		assert.Contains(t, out, want)
	}
	assert.Equal(t, 1, e.repo.CallCount("submit:c1/a1"))
	assert.GreaterOrEqual(t, e.repo.CallCount("classes"), 2, "home loads on start and on returning home")
}

func Test_promptCredential(t *testing.T) {
	defer func(orig func(int) ([]byte, error)) { readPasswordFunc = orig }(readPasswordFunc)

	readPasswordFunc = func(int) ([]byte, error) { return []byte("s3cret"), nil }
	token, err := promptCredential()
	require.NoError(t, err)
	assert.Equal(t, "s3cret", token)

	readPasswordFunc = func(int) ([]byte, error) { return nil, nil }
	_, err = promptCredential()
	assert.Error(t, err)
}

func Test_matchClass(t *testing.T) {
	classes := []classroom.EnrolledClass{
		testutil.Class("c1", "Data Structures"),
		testutil.Class("c2", "Databases"),
		testutil.Class("c3", "Web Development"),
	}
	tests := []struct {
		query   string
		wantID  string
		wantErr bool
	}{
		{query: "c2", wantID: "c2"},
		{query: "web development", wantID: "c3"},
		{query: "Data structure", wantID: "c1"},
		{query: "databse", wantID: "c2"},
		{query: "webdev", wantID: "c3"},
		{query: "xyz", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := matchClass(tt.query, classes)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, got.ID)
		})
	}
}

package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Frictionalfor/codeFORGE-sub002/core"
	"github.com/Frictionalfor/codeFORGE-sub002/core/classroom"
)

// Now is the frozen instant tests run at.
var Now = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

// FreezeTime pins classroom.NowFunc to Now for the duration of the test.
func FreezeTime(t *testing.T) time.Time {
	t.Helper()
	classroom.NowFunc = func() time.Time { return Now }
	t.Cleanup(func() { classroom.NowFunc = time.Now })
	return Now
}

func TimePtr(t time.Time) *time.Time { return &t }
func IntPtr(i int) *int              { return &i }
func FloatPtr(f float64) *float64    { return &f }

// DueIn returns Now + d.
func DueIn(d time.Duration) *time.Time { return TimePtr(Now.Add(d)) }

func Class(id, name string) classroom.EnrolledClass {
	return classroom.EnrolledClass{
		ID:              id,
		Name:            name,
		Description:     name + " description",
		AssignmentCount: 1,
		CurrentStudents: 30,
		CreatedAt:       Now.Add(-90 * 24 * time.Hour),
	}
}

func Assignment(id, title string, due *time.Time, published bool) classroom.Assignment {
	return classroom.Assignment{
		ID:                 id,
		Title:              title,
		ProblemDescription: "Solve " + title,
		Language:           "python",
		IsPublished:        published,
		DueDate:            due,
		TotalPoints:        IntPtr(100),
	}
}

func Submitted(at time.Time) classroom.SubmissionStatus {
	return classroom.SubmissionStatus{HasSubmission: true, SubmittedAt: TimePtr(at)}
}

func FetchErr(kind classroom.Kind, status int) error {
	return classroom.NewFetchError(kind, status, "fake", fmt.Errorf("fake %s failure", kind))
}

// FakeRepository is an in-memory classroom.Repository.
type FakeRepository struct {
	mu sync.Mutex

	Classes        []classroom.EnrolledClass
	ClassesErr     error
	Assignments    map[string][]classroom.Assignment    // by class ID
	AssignmentsErr map[string]error                     // by class ID
	Statuses       map[string]classroom.SubmissionStatus // by assignment ID
	StatusErrs     map[string]error                     // by assignment ID
	Submissions    map[string]classroom.Submission      // by "classID/assignmentID"
	StatusDelay    time.Duration

	Calls []string
}

var _ classroom.Repository = (*FakeRepository)(nil) // interface compliance check

func NewFakeRepository() *FakeRepository {
	return &FakeRepository{
		Assignments:    make(map[string][]classroom.Assignment),
		AssignmentsErr: make(map[string]error),
		Statuses:       make(map[string]classroom.SubmissionStatus),
		StatusErrs:     make(map[string]error),
		Submissions:    make(map[string]classroom.Submission),
	}
}

func (repo *FakeRepository) record(call string) {
	repo.mu.Lock()
	repo.Calls = append(repo.Calls, call)
	repo.mu.Unlock()
}

// CallCount counts the recorded calls starting with prefix.
func (repo *FakeRepository) CallCount(prefix string) int {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	var n int
	for _, c := range repo.Calls {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

func (repo *FakeRepository) ListEnrolledClasses(_ context.Context) ([]classroom.EnrolledClass, error) {
	repo.record("classes")
	if repo.ClassesErr != nil {
		return nil, repo.ClassesErr
	}
	return append([]classroom.EnrolledClass(nil), repo.Classes...), nil
}

func (repo *FakeRepository) ListClassAssignments(_ context.Context, classID string) ([]classroom.Assignment, error) {
	repo.record("assignments:" + classID)
	if err := repo.AssignmentsErr[classID]; err != nil {
		return nil, err
	}
	return append([]classroom.Assignment(nil), repo.Assignments[classID]...), nil
}

func (repo *FakeRepository) GetSubmissionStatus(_ context.Context, assignmentID, classID string) (classroom.SubmissionStatus, error) {
	repo.record("status:" + classID + "/" + assignmentID)
	if repo.StatusDelay > 0 {
		time.Sleep(repo.StatusDelay)
	}
	if err := repo.StatusErrs[assignmentID]; err != nil {
		return classroom.SubmissionStatus{}, err
	}
	if st, ok := repo.Statuses[assignmentID]; ok {
		return st, nil
	}
	return classroom.SubmissionStatus{}, classroom.NewFetchError(classroom.KindNotFound, 404, "getting submission status", nil)
}

func (repo *FakeRepository) GetSubmission(_ context.Context, classID, assignmentID string) (*classroom.Submission, error) {
	repo.record("submission:" + classID + "/" + assignmentID)
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if sub, ok := repo.Submissions[classID+"/"+assignmentID]; ok {
		return &sub, nil
	}
	return nil, nil
}

func (repo *FakeRepository) SubmitAssignment(_ context.Context, classID, assignmentID, code string) (classroom.Submission, error) {
	repo.record("submit:" + classID + "/" + assignmentID)
	repo.mu.Lock()
	defer repo.mu.Unlock()
	sub := classroom.Submission{
		ID:           fmt.Sprintf("sub-%d", len(repo.Submissions)+1),
		AssignmentID: assignmentID,
		ClassID:      classID,
		Code:         code,
		Status:       "pending",
		SubmittedAt:  TimePtr(Now),
	}
	repo.Submissions[classID+"/"+assignmentID] = sub
	return sub, nil
}

// LogEntry is one call recorded by Logger.
type LogEntry struct {
	Level string
	Msg   string
	Args  []interface{}
}

// Logger records entries instead of printing them.
type Logger struct {
	mu      sync.Mutex
	Entries []LogEntry
}

var _ core.Logger = (*Logger)(nil)

func NewLogger() *Logger { return &Logger{} }

func (l *Logger) log(level, msg string, args []interface{}) {
	l.mu.Lock()
	l.Entries = append(l.Entries, LogEntry{Level: level, Msg: msg, Args: args})
	l.mu.Unlock()
}

// Count returns how many entries were logged at level.
func (l *Logger) Count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	var n int
	for _, e := range l.Entries {
		if e.Level == level {
			n++
		}
	}
	return n
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.log("debug", msg, args) }
func (l *Logger) Info(msg string, args ...interface{})  { l.log("info", msg, args) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.log("warn", msg, args) }
func (l *Logger) Error(msg string, args ...interface{}) { l.log("error", msg, args) }
func (l *Logger) Fatal(msg string, args ...interface{}) { l.log("fatal", msg, args) }

package platform

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Frictionalfor/codeFORGE-sub002/core/classroom"
)

type recordedRequest struct {
	method string
	path   string
	query  string
	header http.Header
	body   []byte
}

func setup(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*Client, *[]recordedRequest) {
	t.Helper()
	var reqs []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := ioutil.ReadAll(r.Body)
		reqs = append(reqs, recordedRequest{
			method: r.Method,
			path:   r.URL.EscapedPath(),
			query:  r.URL.RawQuery,
			header: r.Header.Clone(),
			body:   body,
		})
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(Options{BaseURL: srv.URL + "/api/", Token: "static-token", Timeout: time.Second}, nil)
	require.NoError(t, err)
	return client, &reqs
}

func writeJSON(w http.ResponseWriter, code int, v string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(v))
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{name: "valid", opts: Options{BaseURL: "http://localhost:5000/api", Timeout: time.Second}},
		{name: "missing base url", opts: Options{Timeout: time.Second}, wantErr: true},
		{name: "invalid base url", opts: Options{BaseURL: "not a url", Timeout: time.Second}, wantErr: true},
		{name: "zero timeout", opts: Options{BaseURL: "http://localhost:5000/api"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.opts, nil)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestClient_ListEnrolledClasses(t *testing.T) {
	client, reqs := setup(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"classes": [
			{"id": "c1", "name": "Algorithms", "description": "desc", "assignmentCount": 3, "currentStudents": 12, "createdAt": "2026-01-10T08:00:00Z"}
		]}`)
	})

	ctx := WithCredential(context.Background(), "student-token")
	classes, err := client.ListEnrolledClasses(ctx)
	require.NoError(t, err)
	require.Len(t, classes, 1)
	assert.Equal(t, "c1", classes[0].ID)
	assert.Equal(t, "Algorithms", classes[0].Name)
	assert.Equal(t, 3, classes[0].AssignmentCount)
	assert.Equal(t, 12, classes[0].CurrentStudents)
	assert.Equal(t, time.Date(2026, time.January, 10, 8, 0, 0, 0, time.UTC), classes[0].CreatedAt.UTC())

	require.Len(t, *reqs, 1)
	req := (*reqs)[0]
	assert.Equal(t, http.MethodGet, req.method)
	assert.Equal(t, "/api/classes", req.path)
	assert.Equal(t, "Bearer student-token", req.header.Get("Authorization"))
	assert.Equal(t, "application/json", req.header.Get("Accept"))
	assert.NotEmpty(t, req.header.Get("X-Request-ID"))
}

func TestClient_credentials(t *testing.T) {
	client, reqs := setup(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"classes": []}`)
	})

	classes, err := client.ListEnrolledClasses(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, classes)
	assert.Empty(t, classes)
	assert.Equal(t, "Bearer static-token", (*reqs)[0].header.Get("Authorization"))

	client.token = ""
	_, err = client.ListEnrolledClasses(context.Background())
	assert.Equal(t, classroom.KindAuth, classroom.KindOf(err))
	assert.Len(t, *reqs, 1, "no request is sent without a credential")
}

func TestClient_ListClassAssignments(t *testing.T) {
	client, reqs := setup(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"assignments": [
			{"id": "a1", "title": "Two Sum", "problemDescription": "...", "language": "python", "isPublished": true,
			 "dueDate": "2026-03-13T12:00:00Z", "totalPoints": 100, "allowLateSubmission": true, "latePenaltyPerDay": 10},
			{"id": "a2", "title": "Draft", "isPublished": false}
		]}`)
	})

	assignments, err := client.ListClassAssignments(context.Background(), "class 1/x")
	require.NoError(t, err)
	require.Len(t, assignments, 2)
	assert.Equal(t, "/api/classes/class%201%2Fx/assignments", (*reqs)[0].path)

	a1 := assignments[0]
	require.NotNil(t, a1.DueDate)
	assert.Equal(t, time.Date(2026, time.March, 13, 12, 0, 0, 0, time.UTC), a1.DueDate.UTC())
	assert.True(t, a1.IsPublished)
	require.NotNil(t, a1.TotalPoints)
	assert.Equal(t, 100, *a1.TotalPoints)
	require.NotNil(t, a1.LatePenaltyPerDay)
	assert.Equal(t, 10.0, *a1.LatePenaltyPerDay)

	a2 := assignments[1]
	assert.False(t, a2.IsPublished)
	assert.Nil(t, a2.DueDate)
	assert.Nil(t, a2.TotalPoints)
}

func TestClient_GetSubmissionStatus(t *testing.T) {
	tests := []struct {
		name string
		body string
		want classroom.SubmissionStatus
	}{
		{name: "none", body: `{"hasSubmission": false}`, want: classroom.SubmissionStatus{}},
		{
			name: "submitted",
			body: `{"hasSubmission": true, "submission": {"submittedAt": "2026-03-09T10:00:00Z"}}`,
			want: classroom.SubmissionStatus{HasSubmission: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, reqs := setup(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, tt.body)
			})
			got, err := client.GetSubmissionStatus(context.Background(), "a1", "c1")
			require.NoError(t, err)
			assert.Equal(t, "/api/classes/assignments/a1/submission-status", (*reqs)[0].path)
			assert.Equal(t, "classId=c1", (*reqs)[0].query)
			assert.Equal(t, tt.want.HasSubmission, got.HasSubmission)
			if tt.want.HasSubmission {
				require.NotNil(t, got.SubmittedAt)
				assert.Equal(t, time.Date(2026, time.March, 9, 10, 0, 0, 0, time.UTC), got.SubmittedAt.UTC())
			} else {
				assert.Nil(t, got.SubmittedAt)
			}
		})
	}
}

func TestClient_errorKinds(t *testing.T) {
	tests := []struct {
		name       string
		code       int
		body       string
		wantKind   classroom.Kind
		wantNotice string
	}{
		{name: "unauthorized", code: http.StatusUnauthorized, body: `{"message": "token expired"}`, wantKind: classroom.KindAuth, wantNotice: "Your session has expired. Please log in again."},
		{name: "forbidden", code: http.StatusForbidden, wantKind: classroom.KindAuth, wantNotice: "You do not have permission to view these classes."},
		{name: "not found", code: http.StatusNotFound, wantKind: classroom.KindNotFound, wantNotice: "No classes were found for your account."},
		{name: "server error", code: http.StatusInternalServerError, body: `{"error": "boom"}`, wantKind: classroom.KindUnexpected, wantNotice: "Failed to load classes. Please try again later."},
		{name: "bad gateway", code: http.StatusBadGateway, body: `<html></html>`, wantKind: classroom.KindUnexpected, wantNotice: "Failed to load classes. Please try again later."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := setup(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.code, tt.body)
			})
			_, err := client.ListEnrolledClasses(context.Background())
			require.Error(t, err)
			fe, ok := classroom.AsFetchError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantKind, fe.Kind)
			assert.Equal(t, tt.code, fe.StatusCode)
			assert.Equal(t, tt.wantNotice, classroom.Notice(err))
		})
	}
}

func TestClient_malformedBody(t *testing.T) {
	client, _ := setup(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"classes": [`)
	})
	_, err := client.ListEnrolledClasses(context.Background())
	assert.Equal(t, classroom.KindUnexpected, classroom.KindOf(err))
}

func TestClient_networkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close() // nothing listens anymore

	client, err := NewClient(Options{BaseURL: baseURL, Token: "t", Timeout: time.Second}, nil)
	require.NoError(t, err)

	_, err = client.ListEnrolledClasses(context.Background())
	require.Error(t, err)
	assert.Equal(t, classroom.KindNetwork, classroom.KindOf(err))
	assert.Equal(t, "Unable to reach the server. Check your connection.", classroom.Notice(err))
}

func TestClient_timeout(t *testing.T) {
	client, _ := setup(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := client.ListEnrolledClasses(ctx)
	assert.Equal(t, classroom.KindNetwork, classroom.KindOf(err))
	assert.Less(t, int64(time.Since(start)), int64(500*time.Millisecond), "the caller's deadline ends the request, not the client timeout")
}

func TestClient_GetSubmission(t *testing.T) {
	t.Run("none yet", func(t *testing.T) {
		client, _ := setup(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusNotFound, `{"message": "no submission"}`)
		})
		sub, err := client.GetSubmission(context.Background(), "c1", "a1")
		assert.NoError(t, err)
		assert.Nil(t, sub)
	})

	for name, body := range map[string]string{
		"wrapped": `{"submission": {"id": "s1", "assignmentId": "a1", "classId": "c1", "code": "print(1)", "status": "graded", "score": 90}}`,
		"bare":    `{"id": "s1", "assignmentId": "a1", "classId": "c1", "code": "print(1)", "status": "graded", "score": 90}`,
	} {
		body := body
		t.Run(name, func(t *testing.T) {
			client, reqs := setup(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, body)
			})
			sub, err := client.GetSubmission(context.Background(), "c1", "a1")
			require.NoError(t, err)
			require.NotNil(t, sub)
			assert.Equal(t, "/api/classes/c1/assignments/a1/submission", (*reqs)[0].path)
			assert.Equal(t, "s1", sub.ID)
			assert.Equal(t, "print(1)", sub.Code)
			require.NotNil(t, sub.Score)
			assert.Equal(t, 90.0, *sub.Score)
		})
	}

	t.Run("forbidden", func(t *testing.T) {
		client, _ := setup(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusForbidden, ``)
		})
		sub, err := client.GetSubmission(context.Background(), "c1", "a1")
		assert.Nil(t, sub)
		assert.Equal(t, classroom.KindAuth, classroom.KindOf(err))
	})
}

func TestClient_SubmitAssignment(t *testing.T) {
	client, reqs := setup(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, `{"submission": {"id": "s9", "assignmentId": "a1", "classId": "c1", "code": "x = 1", "status": "pending", "submittedAt": "2026-03-10T12:00:00Z"}}`)
	})

	sub, err := client.SubmitAssignment(context.Background(), "c1", "a1", "x = 1")
	require.NoError(t, err)
	assert.Equal(t, "s9", sub.ID)
	assert.Equal(t, "pending", sub.Status)

	req := (*reqs)[0]
	assert.Equal(t, http.MethodPost, req.method)
	assert.Equal(t, "/api/classes/c1/assignments/a1/submit", req.path)
	assert.Equal(t, "application/json", req.header.Get("Content-Type"))
	var payload map[string]string
	require.NoError(t, json.Unmarshal(req.body, &payload))
	assert.Equal(t, map[string]string{"code": "x = 1"}, payload)
}

package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"

	. "github.com/Frictionalfor/codeFORGE-sub002/apps/api/echo"
	"github.com/Frictionalfor/codeFORGE-sub002/core"
	"github.com/Frictionalfor/codeFORGE-sub002/core/classroom"
	"github.com/Frictionalfor/codeFORGE-sub002/storage/inmem"
	"github.com/Frictionalfor/codeFORGE-sub002/tests"
)

const day = 24 * time.Hour

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type env struct {
	app    Server
	repo   *testutil.FakeRepository
	store  *inmem.Store
	logger *testutil.Logger
}

// setup serves a student enrolled in Algorithms (a1 due in 3 days, a2 2 days late, a3 unpublished)
// and Web (b1 2 days late but submitted).
func setup(t *testing.T) env {
	t.Helper()
	testutil.FreezeTime(t)

	repo := testutil.NewFakeRepository()
	repo.Classes = []classroom.EnrolledClass{testutil.Class("c1", "Algorithms"), testutil.Class("c2", "Web")}
	repo.Assignments["c1"] = []classroom.Assignment{
		testutil.Assignment("a1", "Two Sum", testutil.DueIn(3*day), true),
		testutil.Assignment("a2", "Graphs", testutil.DueIn(-2*day), true),
		testutil.Assignment("a3", "Draft", testutil.DueIn(day), false),
	}
	repo.Assignments["c2"] = []classroom.Assignment{
		testutil.Assignment("b1", "Forms", testutil.DueIn(-2*day+time.Hour), true),
	}
	repo.Statuses["b1"] = testutil.Submitted(testutil.Now.Add(-3 * day))

	logger := testutil.NewLogger()
	store := inmem.NewStore(0)
	translator := core.NewTranslator()
	conf := &core.Config{Env: "TEST", AppName: "codeFORGE", TestMode: true}

	app := NewServer(ServerDeps{
		Conf:           conf,
		Logger:         logger,
		ClassroomSvc:   classroom.NewService(repo, logger, classroom.Options{MaxConcurrentRequests: 4}),
		Store:          store,
		Validate:       core.NewValidator(translator),
		Translator:     translator,
		DisableReqLogs: true,
	})
	return env{app: app, repo: repo, store: store, logger: logger}
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

// getToken signs a platform-like token; the API never verifies it.
func getToken(t *testing.T, studentID string) string {
	return signToken(t, studentID, "platform-secret")
}

// signToken signs the claims of studentID with key; the platform is the only party that knows the real one.
func signToken(t *testing.T, studentID, key string) string {
	claims := Claims{
		StandardClaims: jwt.StandardClaims{Subject: studentID, ExpiresAt: testutil.Now.Add(time.Hour).Unix()},
		Username:       "student-" + studentID,
		Email:          studentID + "@example.com",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	if err != nil {
		t.Fatalf("signToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decoding %q failed: %v", rec.Body.String(), err)
	}
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func ids(items []AssignmentItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

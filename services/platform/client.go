// Package platform is the REST data access layer of the coding platform API.
package platform

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/Frictionalfor/codeFORGE-sub002/core"
	"github.com/Frictionalfor/codeFORGE-sub002/core/classroom"
)

var (
	ErrNoCredential = errors.New("no bearer credential")

	requestIDHeader = "X-Request-ID"
)

type credentialKey struct{}

// WithCredential attaches the caller's bearer credential to ctx. It is passed through untouched.
func WithCredential(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, credentialKey{}, token)
}

func CredentialFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(credentialKey{}).(string)
	return token, ok && token != ""
}

type Options struct {
	BaseURL string        `validate:"required,url"`
	Token   string        // used when the context carries no credential
	Timeout time.Duration `validate:"gt=0"`
	// HTTPClient overrides the default client (tests); its Timeout is left untouched.
	HTTPClient *http.Client `validate:"-"`
}

// Client implements classroom.Repository over the platform's REST API.
type Client struct {
	baseURL string
	token   string
	rest    *rest.Client
	logger  core.Logger
}

var _ classroom.Repository = (*Client)(nil) // interface compliance check

func NewClient(opts Options, logger core.Logger) (*Client, error) {
	opts.BaseURL = strings.TrimRight(core.CleanString(opts.BaseURL), "/")
	if err := validator.New().Struct(opts); err != nil {
		return nil, errors.Wrap(err, "validating platform options")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{
		baseURL: opts.BaseURL,
		token:   opts.Token,
		rest:    &rest.Client{HTTPClient: httpClient},
		logger:  logger,
	}, nil
}

// NewClientFromConfig builds a Client out of the platform section of conf.
func NewClientFromConfig(conf *core.Config, logger core.Logger) (*Client, error) {
	return NewClient(Options{
		BaseURL: conf.Platform.BaseURL,
		Token:   conf.Platform.Token,
		Timeout: conf.Platform.Timeout,
	}, logger)
}

func (c *Client) endpoint(segments ...string) string {
	var b strings.Builder
	b.WriteString(c.baseURL)
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

func (c *Client) credential(ctx context.Context) (string, error) {
	if token, ok := CredentialFromContext(ctx); ok {
		return token, nil
	}
	if c.token != "" {
		return c.token, nil
	}
	return "", ErrNoCredential
}

// do sends the request and decodes a 2xx JSON body into out (when not nil).
// Every failure is returned as a *classroom.FetchError.
func (c *Client) do(ctx context.Context, op string, method rest.Method, endpoint string, body interface{}, out interface{}) error {
	token, err := c.credential(ctx)
	if err != nil {
		return classroom.NewFetchError(classroom.KindAuth, 0, op, err)
	}

	req := rest.Request{
		Method:  method,
		BaseURL: endpoint,
		Headers: map[string]string{
			"Authorization": "Bearer " + token,
			"Accept":        "application/json",
			requestIDHeader: uuid.New().String(),
		},
	}
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return classroom.NewFetchError(classroom.KindUnexpected, 0, op, errors.Wrap(err, "encoding request body"))
		}
		req.Headers["Content-Type"] = "application/json"
		req.Body = data
	}

	httpReq, err := rest.BuildRequestObject(req)
	if err != nil {
		return classroom.NewFetchError(classroom.KindUnexpected, 0, op, errors.Wrap(err, "building request"))
	}
	httpRes, err := c.rest.MakeRequest(httpReq.WithContext(ctx))
	if err != nil {
		return classroom.NewFetchError(transportKind(err), 0, op, err)
	}
	res, err := rest.BuildResponse(httpRes)
	if err != nil {
		return classroom.NewFetchError(transportKind(err), httpRes.StatusCode, op, errors.Wrap(err, "reading response body"))
	}
	if c.logger != nil {
		c.logger.Debug(op, map[string]interface{}{
			"method":    string(method),
			"url":       endpoint,
			"status":    res.StatusCode,
			"requestId": req.Headers[requestIDHeader],
		})
	}
	if kind, ok := statusKind(res.StatusCode); !ok {
		return classroom.NewFetchError(kind, res.StatusCode, op, errors.New(apiMessage(res)))
	}
	if out == nil || strings.TrimSpace(res.Body) == "" {
		return nil
	}
	if err = json.Unmarshal([]byte(res.Body), out); err != nil {
		return classroom.NewFetchError(classroom.KindUnexpected, res.StatusCode, op, errors.Wrap(err, "decoding response body"))
	}
	return nil
}

// statusKind classifies a response status; ok is true for 2xx.
func statusKind(code int) (kind classroom.Kind, ok bool) {
	switch {
	case code >= 200 && code < 300:
		return classroom.KindUnexpected, true
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return classroom.KindAuth, false
	case code == http.StatusNotFound:
		return classroom.KindNotFound, false
	default:
		return classroom.KindUnexpected, false
	}
}

// transportKind tells network failures apart from everything else that can go wrong before a response.
func transportKind(err error) classroom.Kind {
	if errors.Is(err, context.DeadlineExceeded) {
		return classroom.KindNetwork
	}
	cause := err
	if uErr, ok := errors.Cause(err).(*url.Error); ok {
		if uErr.Timeout() {
			return classroom.KindNetwork
		}
		cause = uErr.Err
	}
	var netErr net.Error
	if errors.As(cause, &netErr) {
		return classroom.KindNetwork
	}
	return classroom.KindUnexpected
}

// apiMessage extracts `{"message": ...}` or `{"error": ...}` from an error response.
func apiMessage(res *rest.Response) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal([]byte(res.Body), &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	if text := http.StatusText(res.StatusCode); text != "" {
		return text
	}
	return "unexpected status"
}

type (
	classesResponse struct {
		Classes []classroom.EnrolledClass `json:"classes"`
	}

	assignmentsResponse struct {
		Assignments []classroom.Assignment `json:"assignments"`
	}

	submissionStatusResponse struct {
		HasSubmission bool `json:"hasSubmission"`
		Submission    *struct {
			SubmittedAt *time.Time `json:"submittedAt"`
		} `json:"submission,omitempty"`
	}

	submitRequest struct {
		Code string `json:"code"`
	}

	submissionResponse struct {
		Submission *classroom.Submission `json:"submission"`
	}
)

// ListEnrolledClasses calls GET /classes.
func (c *Client) ListEnrolledClasses(ctx context.Context) ([]classroom.EnrolledClass, error) {
	var res classesResponse
	if err := c.do(ctx, "listing classes", rest.Get, c.endpoint("classes"), nil, &res); err != nil {
		return nil, err
	}
	if res.Classes == nil {
		res.Classes = []classroom.EnrolledClass{}
	}
	return res.Classes, nil
}

// ListClassAssignments calls GET /classes/{classId}/assignments.
func (c *Client) ListClassAssignments(ctx context.Context, classID string) ([]classroom.Assignment, error) {
	var res assignmentsResponse
	if err := c.do(ctx, "listing class assignments", rest.Get, c.endpoint("classes", classID, "assignments"), nil, &res); err != nil {
		return nil, err
	}
	if res.Assignments == nil {
		res.Assignments = []classroom.Assignment{}
	}
	return res.Assignments, nil
}

// GetSubmissionStatus calls GET /classes/assignments/{assignmentId}/submission-status.
// The class is sent as the `classId` query parameter.
func (c *Client) GetSubmissionStatus(ctx context.Context, assignmentID, classID string) (classroom.SubmissionStatus, error) {
	endpoint := rest.AddQueryParameters(
		c.endpoint("classes", "assignments", assignmentID, "submission-status"),
		map[string]string{"classId": classID},
	)
	var res submissionStatusResponse
	if err := c.do(ctx, "getting submission status", rest.Get, endpoint, nil, &res); err != nil {
		return classroom.SubmissionStatus{}, err
	}
	st := classroom.SubmissionStatus{HasSubmission: res.HasSubmission}
	if res.Submission != nil {
		st.SubmittedAt = res.Submission.SubmittedAt
	}
	return st, nil
}

// GetSubmission calls GET /classes/{classId}/assignments/{assignmentId}/submission; a 404 means none yet.
func (c *Client) GetSubmission(ctx context.Context, classID, assignmentID string) (*classroom.Submission, error) {
	var raw json.RawMessage
	err := c.do(ctx, "getting submission", rest.Get, c.endpoint("classes", classID, "assignments", assignmentID, "submission"), nil, &raw)
	if err != nil {
		if classroom.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return decodeSubmission(raw)
}

// SubmitAssignment calls POST /classes/{classId}/assignments/{assignmentId}/submit with {code}.
func (c *Client) SubmitAssignment(ctx context.Context, classID, assignmentID, code string) (classroom.Submission, error) {
	var raw json.RawMessage
	endpoint := c.endpoint("classes", classID, "assignments", assignmentID, "submit")
	if err := c.do(ctx, "submitting assignment", rest.Post, endpoint, submitRequest{Code: code}, &raw); err != nil {
		return classroom.Submission{}, err
	}
	sub, err := decodeSubmission(raw)
	if err != nil {
		return classroom.Submission{}, err
	}
	if sub == nil {
		return classroom.Submission{}, classroom.NewFetchError(classroom.KindUnexpected, 0, "submitting assignment", errors.New("empty response"))
	}
	return *sub, nil
}

// decodeSubmission accepts both a bare Submission and one wrapped as {"submission": ...}.
func decodeSubmission(raw json.RawMessage) (*classroom.Submission, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var wrapped submissionResponse
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Submission != nil {
		return wrapped.Submission, nil
	}
	var sub classroom.Submission
	if err := json.Unmarshal(raw, &sub); err != nil {
		return nil, classroom.NewFetchError(classroom.KindUnexpected, 0, "decoding submission", err)
	}
	return &sub, nil
}

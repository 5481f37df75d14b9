package classroom

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies why a platform call failed.
type Kind int

const (
	KindUnexpected Kind = iota
	KindAuth            // 401, 403
	KindNotFound        // 404; benign for "no submission yet"
	KindNetwork         // server unreachable, timeouts
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	case KindNetwork:
		return "network"
	default:
		return "unexpected"
	}
}

// FetchError is the error every Repository call fails with.
type FetchError struct {
	Kind       Kind
	StatusCode int    // 0 when no response was received
	Op         string // eg. "listing classes"
	Err        error
}

func NewFetchError(kind Kind, statusCode int, op string, err error) *FetchError {
	return &FetchError{Kind: kind, StatusCode: statusCode, Op: op, Err: err}
}

func (e *FetchError) Error() string {
	msg := e.Op + ": " + e.Kind.String()
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Cause lets errors.Cause keep unwrapping to the transport error.
func (e *FetchError) Cause() error { return e.Err }
func (e *FetchError) Unwrap() error { return e.Err }

// AsFetchError finds the FetchError in err's chain, whether wrapped with pkg/errors or fmt.
func AsFetchError(err error) (*FetchError, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// KindOf returns the Kind of err. Errors that are not FetchErrors are KindUnexpected.
func KindOf(err error) Kind {
	if fe, ok := AsFetchError(err); ok {
		return fe.Kind
	}
	return KindUnexpected
}

func IsNotFound(err error) bool { return err != nil && KindOf(err) == KindNotFound }

// Notice is the single user-facing message shown when listing classes fails.
func Notice(err error) string {
	if err == nil {
		return ""
	}
	fe, ok := AsFetchError(err)
	if !ok {
		return "Failed to load classes. Please try again later."
	}
	switch {
	case fe.Kind == KindAuth && fe.StatusCode == 403:
		return "You do not have permission to view these classes."
	case fe.Kind == KindAuth:
		return "Your session has expired. Please log in again."
	case fe.Kind == KindNotFound:
		return "No classes were found for your account."
	case fe.Kind == KindNetwork:
		return "Unable to reach the server. Check your connection."
	default:
		return "Failed to load classes. Please try again later."
	}
}

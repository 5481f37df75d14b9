package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Frictionalfor/codeFORGE-sub002/core"
	"github.com/Frictionalfor/codeFORGE-sub002/core/classroom"
)

var (
	errNoSubmission     = echo.NewHTTPError(http.StatusNotFound, "no submission yet")
	errClassNotEnrolled = echo.NewHTTPError(http.StatusNotFound, "class not found")
)

// fetchErrorCode maps a platform failure to the status the API answers with.
func fetchErrorCode(fe *classroom.FetchError) int {
	switch fe.Kind {
	case classroom.KindAuth:
		if fe.StatusCode == http.StatusForbidden {
			return http.StatusForbidden
		}
		return http.StatusUnauthorized
	case classroom.KindNotFound:
		return http.StatusNotFound
	case classroom.KindNetwork:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		if fe, ok := classroom.AsFetchError(err); ok {
			code = fetchErrorCode(fe)
			message = http.StatusText(code)
			if fe.Kind != classroom.KindUnexpected {
				message = classroom.Notice(fe)
			}
			if code >= http.StatusInternalServerError {
				logger.Error(fe.Op, errors.Wrap(err, http.StatusText(code)), getContextStudent(ctx))
			}
		} else {
			switch origErr := errors.Cause(err).(type) {
			case *echo.HTTPError:
				if origErr.Internal != nil {
					if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
						origErr = herr
					}
				}
				code = origErr.Code
				message = origErr.Message
			case validator.ValidationErrors:
				code = http.StatusBadRequest
				message = core.TranslateErrors(origErr, translator)
			case core.ValidationError:
				code = http.StatusBadRequest
				message = validationMessage(origErr)
			case *core.ValidationError:
				code = http.StatusBadRequest
				message = validationMessage(*origErr)
			default: // any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				message = msg
				logger.Error(msg, errors.Wrap(err, msg), getContextStudent(ctx))

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		if ctx.Echo().Debug && code >= http.StatusInternalServerError {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

func validationMessage(err core.ValidationError) interface{} {
	if len(err.Fields) > 0 {
		return err.FieldMap()
	}
	return err.Error()
}

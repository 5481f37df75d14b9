package echoapi

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"

	"github.com/Frictionalfor/codeFORGE-sub002/core"
	"github.com/Frictionalfor/codeFORGE-sub002/services/platform"
)

var (
	errMissingToken = echo.NewHTTPError(http.StatusUnauthorized, "missing or malformed jwt")

	contextTokenKey   = "bearerToken"
	contextStudentKey = "student"
)

// Claims are the bits of the platform's token used to attribute log entries.
// The token is never verified here; the platform does that on every call.
type Claims struct {
	jwt.StandardClaims
	UserID   string `json:"userId,omitempty"`
	Username string `json:"username,omitempty"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
}

func (c Claims) Student() core.Student {
	s := core.Student{ID: c.UserID, Username: c.Username, Email: c.Email}
	if s.ID == "" {
		s.ID = c.Subject
	}
	if s.Username == "" {
		s.Username = c.Name
	}
	return s
}

// parseStudent reads the unverified claims of token; malformed tokens yield a zero Student.
func parseStudent(token string) core.Student {
	var claims Claims
	if _, _, err := new(jwt.Parser).ParseUnverified(token, &claims); err != nil {
		return core.Student{}
	}
	return claims.Student()
}

// bearerMiddleware requires `Authorization: Bearer <token>` and passes the token through to the platform.
func bearerMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			auth := ctx.Request().Header.Get(echo.HeaderAuthorization)
			const prefix = "Bearer "
			if len(auth) <= len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
				return errMissingToken
			}
			token := strings.TrimSpace(auth[len(prefix):])
			if token == "" {
				return errMissingToken
			}

			req := ctx.Request()
			ctx.SetRequest(req.WithContext(platform.WithCredential(req.Context(), token)))
			ctx.Set(contextTokenKey, token)
			ctx.Set(contextStudentKey, parseStudent(token))
			return next(ctx)
		}
	}
}

func getContextStudent(ctx echo.Context) core.Student {
	s, _ := ctx.Get(contextStudentKey).(core.Student)
	return s
}

// storeKey identifies the caller in the dashboard store by the bearer token itself.
// Claims are unverified, so they only serve log attribution.
func storeKey(ctx echo.Context) string {
	token, _ := ctx.Get(contextTokenKey).(string)
	sum := sha256.Sum256([]byte(token))
	return "token:" + hex.EncodeToString(sum[:])
}

package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/troop127/portal/internal/errdef"
	"github.com/troop127/portal/pkg/model"
)

// SessionCookieName is the cookie carrying the opaque session token.
const SessionCookieName = "session_token"

func NewAuthentication(sessionService sessionService, signInService signInService) AuthenticationMiddleware {
	return AuthenticationMiddleware{
		sessionService: sessionService,
		signInService:  signInService,
	}
}

type sessionService interface {
	FindUserByToken(ctx context.Context, token string) (*model.User, error)
}

type signInService interface {
	SignIn(ctx context.Context, email string, password string) (*model.User, error)
}

type AuthenticationMiddleware struct {
	sessionService sessionService
	signInService  signInService
}

// SessionAuthentication resolves the session cookie to a known user. Requests
// without a valid, unexpired session are rejected with 401.
func (m AuthenticationMiddleware) SessionAuthentication(c *gin.Context) {
	token, err := c.Cookie(SessionCookieName)
	if err != nil || token == "" {
		m.handleError(c, errdef.NewUnauthorized("authentication required"))
		return
	}

	user, err := m.sessionService.FindUserByToken(c.Request.Context(), token)
	if err != nil {
		m.handleError(c, errdef.NewUnauthorized("authentication required"))
		return
	}

	// Extra precaution to ensure that no errors has occurred, and it's safe to call c.Next()
	if len(c.Errors.Errors()) > 0 {
		c.Abort()
	} else {
		c.Set("user", user)
		c.Request = c.Request.WithContext(model.NewContextWithUser(c.Request.Context(), user))
		c.Next()
	}
}

// BasicAuthentication backs the password sign-in fallback for the bootstrap
// administrator.
func (m AuthenticationMiddleware) BasicAuthentication(c *gin.Context) {
	email, password, ok := c.Request.BasicAuth()
	if !ok {
		m.handleError(c, errors.New("invalid Authorization header format"))
		return
	}

	user, err := m.signInService.SignIn(c.Request.Context(), email, password)
	if err != nil {
		m.handleError(c, err)
		return
	}

	c.Set("user", user)
	c.Request = c.Request.WithContext(model.NewContextWithUser(c.Request.Context(), user))
	c.Next()
}

func (m AuthenticationMiddleware) handleError(c *gin.Context, e error) {
	_ = c.AbortWithError(http.StatusUnauthorized, e)
}

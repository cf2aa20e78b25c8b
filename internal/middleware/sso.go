package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/markbates/goth/gothic"
	"github.com/troop127/portal/pkg/model"
)

type SSOMiddleware struct {
	logger                *slog.Logger
	userService           ssoUserService
	sessionService        ssoSessionService
	hostname              string
	secureCookies         bool
	sessionExpirationSecs int
}

type ssoUserService interface {
	FindOrCreate(ctx context.Context, email, name, imageURL string) (*model.User, error)
}

type ssoSessionService interface {
	Create(ctx context.Context, user *model.User) (*model.Session, error)
	DeleteByToken(ctx context.Context, token string) error
	RecordAccount(ctx context.Context, userID uint, provider, providerAccountID string) error
}

func NewSSOMiddleware(logger *slog.Logger, userService ssoUserService, sessionService ssoSessionService, hostname string, secureCookies bool, sessionExpirationSecs int) SSOMiddleware {
	return SSOMiddleware{
		logger:                logger,
		userService:           userService,
		sessionService:        sessionService,
		hostname:              hostname,
		secureCookies:         secureCookies,
		sessionExpirationSecs: sessionExpirationSecs,
	}
}

// SSOAuthentication handles the OAuth callback: the external identity is
// resolved to a portal user, a session is created and the session cookie set.
func (m SSOMiddleware) SSOAuthentication(c *gin.Context) {
	ssoUser, err := gothic.CompleteUserAuth(c.Writer, c.Request)
	if err != nil {
		c.Redirect(http.StatusTemporaryRedirect, "/portal/login")
		return
	}

	ctx := c.Request.Context()
	user, err := m.userService.FindOrCreate(ctx, ssoUser.Email, ssoUser.Name, ssoUser.AvatarURL)
	if err != nil {
		_ = c.AbortWithError(http.StatusUnauthorized, err)
		return
	}

	if err := m.sessionService.RecordAccount(ctx, user.ID, ssoUser.Provider, ssoUser.UserID); err != nil {
		m.logger.WarnContext(ctx, "Failed to record external account", "user", user.ID, "error", err)
	}

	session, err := m.sessionService.Create(ctx, user)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, session.Token, m.sessionExpirationSecs, "/", m.hostname, m.secureCookies, true)
	c.Redirect(http.StatusTemporaryRedirect, "/portal")
}

// BeginAuthHandler initiates SSO authentication
func (m SSOMiddleware) BeginAuthHandler(c *gin.Context) {
	provider := c.Param("provider")
	q := c.Request.URL.Query()
	q.Add("provider", provider)
	c.Request.URL.RawQuery = q.Encode()
	gothic.BeginAuthHandler(c.Writer, c.Request)
}

// LogoutHandler revokes the current session and clears the cookie.
func (m SSOMiddleware) LogoutHandler(c *gin.Context) {
	if token, err := c.Cookie(SessionCookieName); err == nil && token != "" {
		if err := m.sessionService.DeleteByToken(c.Request.Context(), token); err != nil {
			m.logger.WarnContext(c.Request.Context(), "Failed to delete session", "error", err)
		}
	}

	if err := gothic.Logout(c.Writer, c.Request); err != nil {
		m.logger.WarnContext(c.Request.Context(), "Failed to clear SSO session", "error", err)
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", m.hostname, m.secureCookies, true)
	c.Redirect(http.StatusTemporaryRedirect, "/")
}

package user

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/troop127/portal/internal/handler"
	"github.com/troop127/portal/internal/middleware"
	"github.com/troop127/portal/pkg/config"
	"github.com/troop127/portal/pkg/model"
)

func NewHandler(config config.Config, userService userService, sessionService sessionService) Handler {
	return Handler{
		config:         config,
		userService:    userService,
		sessionService: sessionService,
	}
}

type Handler struct {
	config         config.Config
	userService    userService
	sessionService sessionService
}

type userService interface {
	FindById(ctx context.Context, id uint) (*model.User, error)
	FindAll(ctx context.Context) ([]*model.User, error)
	UpdateRole(ctx context.Context, id uint, role string) (*model.User, error)
	UpdateAnnotation(ctx context.Context, id uint, annotation string) (*model.User, error)
}

type sessionService interface {
	Create(ctx context.Context, user *model.User) (*model.Session, error)
	FindAll(ctx context.Context) ([]*model.Session, error)
	RevokeAllForUser(ctx context.Context, userID uint) (int64, error)
	ListAccounts(ctx context.Context) ([]*model.Account, error)
}

// SignIn completes the password fallback sign-in. The user has already been
// authenticated by the basic-auth middleware; all that is left is minting the
// session and setting the cookie.
func (h Handler) SignIn(c *gin.Context) {
	user, err := handler.GetUserFromContext(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	session, err := h.sessionService.Create(c.Request.Context(), user)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, session.Token, h.config.SessionExpirationSeconds, "/", h.config.Hostname, h.config.SecureCookies, true)
	c.JSON(http.StatusCreated, user)
}

// Me returns the current user's details.
func (h Handler) Me(c *gin.Context) {
	user, err := handler.GetUserFromContext(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	u, err := h.userService.FindById(c.Request.Context(), user.ID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, u)
}

// FindAll returns the user-management view: all users plus the login sessions
// and external accounts backing them.
func (h Handler) FindAll(c *gin.Context) {
	ctx := c.Request.Context()

	users, err := h.userService.FindAll(ctx)
	if err != nil {
		_ = c.Error(err)
		return
	}

	sessions, err := h.sessionService.FindAll(ctx)
	if err != nil {
		_ = c.Error(err)
		return
	}

	accounts, err := h.sessionService.ListAccounts(ctx)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users":    users,
		"sessions": sessions,
		"accounts": accounts,
	})
}

type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,oneOf=UNASSIGNED SCOUT ADULT ADMIN"`
}

// UpdateRole changes a user's role.
func (h Handler) UpdateRole(c *gin.Context) {
	id, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	var request UpdateRoleRequest
	if err := handler.DataBinder(c, &request); err != nil {
		_ = c.Error(err)
		return
	}

	user, err := h.userService.UpdateRole(c.Request.Context(), id, request.Role)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, user)
}

type UpdateAnnotationRequest struct {
	// Annotation may be empty which clears the note.
	Annotation string `json:"annotation"`
}

// UpdateAnnotation sets or clears the admin note on a user.
func (h Handler) UpdateAnnotation(c *gin.Context) {
	id, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	var request UpdateAnnotationRequest
	if err := handler.DataBinder(c, &request); err != nil {
		_ = c.Error(err)
		return
	}

	user, err := h.userService.UpdateAnnotation(c.Request.Context(), id, request.Annotation)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// RevokeSessions revokes every session of the given user.
func (h Handler) RevokeSessions(c *gin.Context) {
	id, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	if _, err := h.userService.FindById(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}

	count, err := h.sessionService.RevokeAllForUser(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "deletedCount": count})
}

// RevokeOwnSessions signs the current user out everywhere.
func (h Handler) RevokeOwnSessions(c *gin.Context) {
	user, err := handler.GetUserFromContext(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	count, err := h.sessionService.RevokeAllForUser(c.Request.Context(), user.ID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", h.config.Hostname, h.config.SecureCookies, true)
	c.JSON(http.StatusOK, gin.H{"success": true, "deletedCount": count})
}

package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/troop127/portal/internal/errdef"
	"github.com/troop127/portal/internal/handler"
	"github.com/troop127/portal/pkg/model"
)

func NewAuthorization(logger *slog.Logger, userService userService) AuthorizationMiddleware {
	return AuthorizationMiddleware{
		logger:      logger,
		userService: userService,
	}
}

type AuthorizationMiddleware struct {
	logger      *slog.Logger
	userService userService
}

type userService interface {
	FindById(ctx context.Context, id uint) (*model.User, error)
}

// RequireAdministrator rejects requests whose user does not hold the ADMIN
// role. The role is re-read from the user service so a role change takes
// effect without waiting for the session to expire.
func (m AuthorizationMiddleware) RequireAdministrator(c *gin.Context) {
	u, err := handler.GetUserFromContext(c)
	if err != nil {
		_ = c.AbortWithError(http.StatusUnauthorized, err)
		return
	}

	user, err := m.userService.FindById(c.Request.Context(), u.ID)
	if err != nil {
		if errdef.IsNotFound(err) {
			_ = c.AbortWithError(http.StatusUnauthorized, err)
		} else {
			_ = c.Error(err)
			c.Abort()
		}
		return
	}

	if !user.IsAdministrator() {
		m.logger.ErrorContext(c, "User tried to access administrator restricted endpoint", "user", u.ID)
		_ = c.AbortWithError(http.StatusForbidden, errdef.NewForbidden("administrator access denied"))
		return
	}

	// Extra precaution to ensure that no errors has occurred, and it's safe to call c.Next()
	if len(c.Errors.Errors()) > 0 {
		c.Abort()
	} else {
		c.Next()
	}
}

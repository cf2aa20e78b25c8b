package server

import (
	"log/slog"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	sloggin "github.com/samber/slog-gin"
	"github.com/troop127/portal/internal/middleware"
	"github.com/troop127/portal/pkg/event"
	"github.com/troop127/portal/pkg/health"
	"github.com/troop127/portal/pkg/image"
	"github.com/troop127/portal/pkg/user"
)

func NewEngine(
	logger *slog.Logger,
	eventHandler event.Handler,
	imageHandler image.Handler,
	userHandler user.Handler,
	authenticationMiddleware middleware.AuthenticationMiddleware,
	authorizationMiddleware middleware.AuthorizationMiddleware,
	ssoMiddleware middleware.SSOMiddleware,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowCredentials = false
	r.Use(cors.New(corsConfig))

	r.Use(sloggin.New(logger))
	r.Use(middleware.CorrelationID())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.ErrorHandler())

	r.GET("/health", health.Health)

	// Public read paths. Drafts never leave these handlers.
	r.GET("/trips-events", eventHandler.ListPublished)
	r.GET("/trips-events/:id", eventHandler.FindPublished)
	r.GET("/images/:id", imageHandler.Download)

	// OAuth handshake.
	r.GET("/auth/:provider", ssoMiddleware.BeginAuthHandler)
	r.GET("/auth/:provider/callback", ssoMiddleware.SSOAuthentication)
	r.GET("/auth/logout", ssoMiddleware.LogoutHandler)

	// Password fallback sign-in for the bootstrap administrator.
	basicAuthenticationRouter := r.Group("")
	basicAuthenticationRouter.Use(authenticationMiddleware.BasicAuthentication)
	basicAuthenticationRouter.POST("/portal/sign-in", userHandler.SignIn)

	sessionAuthenticationRouter := r.Group("")
	sessionAuthenticationRouter.Use(authenticationMiddleware.SessionAuthentication)
	sessionAuthenticationRouter.GET("/me", userHandler.Me)
	sessionAuthenticationRouter.POST("/auth/revoke-all-sessions", userHandler.RevokeOwnSessions)

	administratorRouter := sessionAuthenticationRouter.Group("")
	administratorRouter.Use(authorizationMiddleware.RequireAdministrator)

	administratorRouter.POST("/portal/create-event", eventHandler.CreateEvent)
	administratorRouter.POST("/portal/upload-event", eventHandler.UploadEvent)
	administratorRouter.GET("/portal/edit-events", eventHandler.ListAll)
	administratorRouter.GET("/portal/edit-events/:id", eventHandler.FindWithImages)
	administratorRouter.POST("/portal/edit-events/:id", eventHandler.UpdateEvent)
	administratorRouter.DELETE("/portal/edit-events/:id", eventHandler.DeleteEvent)
	administratorRouter.POST("/portal/edit-events/:id/upload-image", eventHandler.UploadImage)
	administratorRouter.DELETE("/portal/edit-events/:id/delete-image", eventHandler.DeleteImage)

	administratorRouter.GET("/users", userHandler.FindAll)
	administratorRouter.PUT("/users/:id/role", userHandler.UpdateRole)
	administratorRouter.PUT("/users/:id/annotation", userHandler.UpdateAnnotation)
	administratorRouter.DELETE("/users/:id/sessions", userHandler.RevokeSessions)

	return r
}

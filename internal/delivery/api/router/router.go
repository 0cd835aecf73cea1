// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"net/http"

	"authgate/internal/delivery/api/middleware"
	"authgate/internal/delivery/api/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// recoveryMethods are accepted by the routes that recover or confirm an
// identity; existing clients call them with either verb.
var recoveryMethods = []string{http.MethodGet, http.MethodPost}

type RouterParams struct {
	fx.In

	AuthHandler    *handler.AuthHandler
	AuthMiddleware *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler    *handler.AuthHandler
	authMiddleware *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:    params.AuthHandler,
		authMiddleware: params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	apiV1 := e.Group("/api/v1")
	{
		apiV1.POST("/login", r.authHandler.Login)
		apiV1.POST("/refresh_mah_token", r.authHandler.RefreshToken)
		apiV1.POST("/register", r.authHandler.Register)
		apiV1.Match(recoveryMethods, "/confirm_email", r.authHandler.ConfirmEmail)
		apiV1.Match(recoveryMethods, "/request_password_reset", r.authHandler.RequestPasswordReset)
		apiV1.Match(recoveryMethods, "/reset_password", r.authHandler.ResetPassword)

		// Gated
		apiV1.GET("/is_authenticated", r.authHandler.IsAuthenticated, r.authMiddleware.Authenticate)
		apiV1.POST("/request_email_confirmation", r.authHandler.RequestEmailConfirmation, r.authMiddleware.Authenticate)
	}
}

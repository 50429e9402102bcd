// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"energyfit/internal/delivery/api/middleware"
	"energyfit/internal/delivery/api/router/handler"
	"energyfit/internal/domain/entity"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// APIPrefix is the mount point of the JSON API.
const APIPrefix = "/api/v1"

type RouterParams struct {
	fx.In

	AuthHandler       *handler.AuthHandler
	ProductHandler    *handler.ProductHandler
	DashboardHandler  *handler.DashboardHandler
	SessionMiddleware *middleware.SessionMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler       *handler.AuthHandler
	productHandler    *handler.ProductHandler
	dashboardHandler  *handler.DashboardHandler
	sessionMiddleware *middleware.SessionMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:       params.AuthHandler,
		productHandler:    params.ProductHandler,
		dashboardHandler:  params.DashboardHandler,
		sessionMiddleware: params.SessionMiddleware,
	}
}

// RegisterRoutes sets up all the routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.HealthCheck)

	sessions := r.sessionMiddleware
	managers := []entity.PrincipalKind{entity.PrincipalKindAdmin, entity.PrincipalKindSeller}

	api := e.Group(APIPrefix, sessions.LoadSession)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/cadastro", r.authHandler.Register)
		authGroup.POST("/login", r.authHandler.Login)
		authGroup.GET("/logout", r.authHandler.Logout)
		authGroup.GET("/sessao", r.authHandler.Session, sessions.RequireAuthenticated)
		authGroup.POST("/recuperar-senha", r.authHandler.IssueRecovery)
		authGroup.POST("/alterar-senha", r.authHandler.ResetPassword)
	}

	productsGroup := api.Group("/produtos")
	{
		productsGroup.GET("", r.productHandler.List)
		productsGroup.GET("/:id", r.productHandler.Get)

		manage := []echo.MiddlewareFunc{sessions.RequireAuthenticated, sessions.RequireKind(managers...)}
		productsGroup.POST("", r.productHandler.Create, manage...)
		productsGroup.PUT("/:id", r.productHandler.Update, manage...)
		productsGroup.DELETE("/:id", r.productHandler.Delete, manage...)
	}

	// Browser panels: anonymous visitors are sent to the login page.
	sellerOnly := []echo.MiddlewareFunc{sessions.LoadSession, sessions.RequireAuthenticatedWeb, sessions.RequireKind(entity.PrincipalKindSeller)}
	adminOnly := []echo.MiddlewareFunc{sessions.LoadSession, sessions.RequireAuthenticatedWeb, sessions.RequireKind(entity.PrincipalKindAdmin)}
	e.GET("/vendedor", r.dashboardHandler.Seller, sellerOnly...)
	e.GET("/visualizar-vendas", r.dashboardHandler.Sales, sellerOnly...)
	e.GET("/relatorio-faturamento", r.dashboardHandler.Revenue, sellerOnly...)
	e.GET("/adm", r.dashboardHandler.Admin, adminOnly...)
}

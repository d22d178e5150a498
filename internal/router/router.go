package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/taskhive/backend/api/handler"
)

type Handlers struct {
	Auth     *apiHandler.AuthHandler
	Task     *apiHandler.TaskHandler
	Category *apiHandler.CategoryHandler
	Health   *apiHandler.HealthHandler
}

type Middleware func(fasthttp.RequestHandler) fasthttp.RequestHandler

func New(handlers Handlers, auth Middleware, loginLimit Middleware) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Auth
	r.POST("/api/auth/register", handlers.Auth.Register)
	r.POST("/api/auth/login", loginLimit(handlers.Auth.Login))
	r.GET("/api/auth/me", auth(handlers.Auth.Me))
	r.POST("/api/auth/logout", auth(handlers.Auth.Logout))

	// Tasks
	r.GET("/api/tasks", auth(handlers.Task.List))
	r.POST("/api/tasks", auth(handlers.Task.Create))
	r.GET("/api/tasks/shared", auth(handlers.Task.Shared))
	r.GET("/api/tasks/{id}", auth(handlers.Task.Get))
	r.PUT("/api/tasks/{id}", auth(handlers.Task.Update))
	r.DELETE("/api/tasks/{id}", auth(handlers.Task.Delete))
	r.PUT("/api/tasks/{id}/status", auth(handlers.Task.UpdateStatus))
	r.PUT("/api/tasks/{id}/priority", auth(handlers.Task.UpdatePriority))
	r.POST("/api/tasks/{id}/share", auth(handlers.Task.Share))

	// Categories
	r.GET("/api/categories", auth(handlers.Category.List))
	r.POST("/api/categories", auth(handlers.Category.Create))
	r.DELETE("/api/categories/{id}", auth(handlers.Category.Delete))

	return r
}

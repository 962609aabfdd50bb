package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/taskhub/internal/config"
	"github.com/geocoder89/taskhub/internal/http/handlers"
	"github.com/geocoder89/taskhub/internal/http/middlewares"
	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/geocoder89/taskhub/internal/service"
	"github.com/geocoder89/taskhub/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Deps is everything the API router wires into handlers.
type Deps struct {
	Config   config.Config
	Log      *slog.Logger
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer

	Auth        *middlewares.AuthMiddleware
	AuthService *service.AuthService
	Workspaces  *service.WorkspaceService
	Members     *service.MembershipService
	Boards      *service.BoardService
	Tasks       *service.TaskService

	// Ping backs the readiness probe.
	Ping func(ctx context.Context) error
}

func NewRouter(d Deps) (*gin.Engine, error) {
	if d.Config.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := validation.Register(); err != nil {
		return nil, err
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true

	// middleware
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger())
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	r.Use(otelgin.Middleware("taskhub-api"))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(d.Config.CORSAllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(d.Config.MaxBodyBytes))
	r.Use(middlewares.RequireJSON())

	r.NoRoute(func(ctx *gin.Context) {
		handlers.RespondNotFound(ctx, "Route not found")
	})
	r.NoMethod(func(ctx *gin.Context) {
		handlers.RespondError(ctx, http.StatusMethodNotAllowed, "method_not_allowed",
			"Method "+ctx.Request.Method+" not allowed", nil)
	})

	// health
	h := handlers.NewHealthHandler(d.Ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	r.GET("/docs", handlers.SwaggerUI)
	r.GET("/docs/openapi.yaml", handlers.OpenAPISpec)

	// auth
	loginLimiter := middlewares.NewRateLimiter(d.Config.LoginRateLimit, time.Minute)
	limitByIP := loginLimiter.RateLimiterMiddleware(middlewares.KeyByIP)

	authHandler := handlers.NewAuthHandler(d.AuthService, d.Prom)
	r.POST("/auth/register", limitByIP, authHandler.Register)
	r.POST("/auth/login", limitByIP, authHandler.Login)

	protected := r.Group("/")
	protected.Use(d.Auth.RequireAuth())

	protected.GET("/auth/me", authHandler.Me)
	protected.POST("/auth/logout", authHandler.Logout)

	// workspaces
	wh := handlers.NewWorkspacesHandler(d.Workspaces, d.Members, d.Prom)
	protected.GET("/workspaces", wh.List)
	protected.POST("/workspaces", wh.Create)
	protected.GET("/me/workspaces", wh.ListMine)
	protected.GET("/workspaces/:id", wh.Get)
	protected.PUT("/workspaces/:id", wh.Update)
	protected.DELETE("/workspaces/:id", wh.Delete)
	protected.GET("/workspaces/:id/boards", wh.Boards)
	protected.GET("/workspaces/:id/members", wh.Members)
	protected.POST("/workspaces/:id/members", wh.AddMember)
	protected.DELETE("/workspaces/:id/members/:userId", wh.RemoveMember)

	// boards
	bh := handlers.NewBoardsHandler(d.Boards, d.Prom)
	protected.POST("/boards", bh.Create)
	protected.GET("/boards/:id", bh.Get)
	protected.PUT("/boards/:id", bh.Update)
	protected.DELETE("/boards/:id", bh.Delete)

	// tasks
	th := handlers.NewTasksHandler(d.Tasks, d.Prom)
	protected.POST("/boards/:id/tasks", th.Create)
	protected.GET("/boards/:id/tasks/:taskId", th.Get)
	protected.PUT("/boards/:id/tasks/:taskId", th.Update)
	protected.DELETE("/boards/:id/tasks/:taskId", th.Delete)
	protected.PUT("/boards/:id/tasks/:taskId/status", th.SetStatus)
	protected.PUT("/boards/:id/tasks/:taskId/assignee", th.SetAssignee)
	protected.PUT("/tasks/:taskId/board", th.Move)

	return r, nil
}

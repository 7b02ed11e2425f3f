package http

import (
	"context"
	"log/slog"

	"github.com/geocoder89/socialapp/internal/config"
	"github.com/geocoder89/socialapp/internal/http/handlers"
	"github.com/geocoder89/socialapp/internal/http/middlewares"
	"github.com/geocoder89/socialapp/internal/observability"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Deps is everything the router needs, built once in main.
type Deps struct {
	Users handlers.UserService
	Posts handlers.PostService

	// Ready backs /readyz; nil means always ready
	Ready func(ctx context.Context) error

	// optional
	Prom    *observability.Prom
	Tracing bool
}

func NewRouter(log *slog.Logger, cfg config.Config, deps Deps) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())

	if deps.Tracing {
		r.Use(otelgin.Middleware(observability.ServiceName))
	}

	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}

	r.Use(middlewares.RequestLogger())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	r.Use(middlewares.RequestTimeout(cfg.RequestTimeout))
	r.Use(middlewares.MaxBodyBytes(cfg.MaxUploadBytes))

	// health
	h := handlers.NewHealthHandler(deps.Ready)
	r.GET("/", h.Root)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if deps.Prom != nil {
		r.GET("/metrics", gin.WrapH(deps.Prom.Handler()))
	}

	// wire up handlers
	usersHandler := handlers.NewUsersHandler(deps.Users)
	postsHandler := handlers.NewPostsHandler(deps.Posts)

	signupLimiter := middlewares.NewRateLimiter(cfg.SignupRateLimit, cfg.SignupRateWindow)

	r.POST("/users",
		signupLimiter.Middleware(middlewares.KeyByIP),
		middlewares.RequireJSON(),
		usersHandler.SignUp,
	)
	r.GET("/users", usersHandler.GetUser)

	r.POST("/posts", postsHandler.CreatePost)
	r.GET("/posts", postsHandler.ListPosts)

	log.Debug("routes registered", "routes", len(r.Routes()))

	return r
}

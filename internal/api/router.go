package api

import (
	"fmt"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/fpa-intel/fpa-api/docs"
	"github.com/fpa-intel/fpa-api/internal/api/handler"
	"github.com/fpa-intel/fpa-api/internal/api/middleware"
	"github.com/fpa-intel/fpa-api/internal/core/domain"
	"github.com/fpa-intel/fpa-api/internal/core/ports"
)

// Services are the use cases the router exposes.
type Services struct {
	Auth      ports.AuthService
	Users     ports.UserService
	Analyses  ports.AnalysisService
	Questions ports.QuestionService
	Files     ports.FileService
}

// RateLimits are the per-minute budgets of the public auth endpoints. Burst
// is added to each of them.
type RateLimits struct {
	Register int
	Login    int
	Refresh  int
	Burst    int
}

// Options tune the HTTP layer.
type Options struct {
	Env            string
	AllowedOrigins []string
	MaxBodyBytes   int64
	Swagger        bool

	RateLimits RateLimits
	// RateLimitCache shares auth rate-limit counters between replicas. Nil
	// keeps them in process.
	RateLimitCache ports.Cache

	// Registry receives the HTTP metrics and backs GET /metrics. Nil uses the
	// Prometheus default registry, which also holds the domain counters.
	Registry *prometheus.Registry

	Dependencies []handler.Dependency
	Logger       zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(svc Services, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(opts.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(opts.Logger))
	e.Use(cors(opts.AllowedOrigins))
	e.Use(echomiddleware.GzipWithConfig(echomiddleware.GzipConfig{MinLength: 1000}))
	if opts.MaxBodyBytes > 0 {
		e.Use(echomiddleware.BodyLimit(fmt.Sprintf("%dK", opts.MaxBodyBytes/1024+1)))
	}
	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if opts.Registry != nil {
		registerer, gatherer = opts.Registry, opts.Registry
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "fpa",
		Registerer: registerer,
	}))

	// --- Unauthenticated routes ---
	health := handler.NewHealthHandler(opts.Env, opts.Swagger, opts.Dependencies...)
	e.GET("/", health.Root)
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	if opts.Swagger {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	v1 := e.Group("/api/v1")
	authenticated := []echo.MiddlewareFunc{middleware.Authenticate(svc.Auth), middleware.RequireActive()}

	// --- Auth ---
	authHandler := handler.NewAuthHandler(svc.Auth)
	limit := func(route string, perMinute int) echo.MiddlewareFunc {
		return middleware.RateLimit(route, perMinute, opts.RateLimits.Burst, opts.RateLimitCache, opts.Logger)
	}
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register, limit("register", opts.RateLimits.Register))
	auth.POST("/login", authHandler.Login, limit("login", opts.RateLimits.Login))
	auth.POST("/refresh", authHandler.Refresh, limit("refresh", opts.RateLimits.Refresh))
	auth.POST("/change-password", authHandler.ChangePassword, authenticated...)
	auth.GET("/me", authHandler.Me, authenticated...)

	// --- Analyses ---
	analysisHandler := handler.NewAnalysisHandler(svc.Analyses)
	analyses := v1.Group("/analyses", authenticated...)
	analyses.GET("", analysisHandler.List)
	analyses.POST("", analysisHandler.Create)
	analyses.POST("/bulk-delete", analysisHandler.BulkDelete)
	analyses.GET("/:id", analysisHandler.Get)
	analyses.PUT("/:id", analysisHandler.Update)
	analyses.DELETE("/:id", analysisHandler.Delete)
	analyses.GET("/:id/dashboard", analysisHandler.Dashboard)
	analyses.POST("/:id/generate", analysisHandler.Generate)

	// --- Market research ---
	questionHandler := handler.NewQuestionHandler(svc.Questions)
	research := v1.Group("/market-research", authenticated...)
	research.GET("/questions", questionHandler.List)
	research.POST("/questions", questionHandler.Create)
	research.POST("/questions/bulk-action", questionHandler.BulkAction)
	research.GET("/questions/:id", questionHandler.Get)
	research.PUT("/questions/:id", questionHandler.Update)
	research.DELETE("/questions/:id", questionHandler.Delete)
	research.POST("/questions/:id/responses", questionHandler.AddResponse)
	research.GET("/metrics", questionHandler.Metrics)

	// --- Files ---
	fileHandler := handler.NewFileHandler(svc.Files)
	files := v1.Group("/files", authenticated...)
	files.POST("/upload", fileHandler.Upload)
	files.GET("", fileHandler.List)
	files.GET("/:id", fileHandler.Download)
	files.GET("/:id/info", fileHandler.Info)
	files.DELETE("/:id", fileHandler.Delete)

	// --- Users (admin) ---
	userHandler := handler.NewUserHandler(svc.Users)
	users := v1.Group("/users", append(authenticated, middleware.RequireRole(domain.RoleAdmin))...)
	users.GET("", userHandler.List)
	users.GET("/:id", userHandler.Get)
	users.PUT("/:id", userHandler.Update)
	users.DELETE("/:id", userHandler.Delete)

	return e
}

// requestLogger writes one zerolog entry per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil || v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}

func cors(origins []string) echo.MiddlewareFunc {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	wildcard := false
	for _, o := range origins {
		if o == "*" {
			wildcard = true
		}
	}
	return echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     origins,
		AllowCredentials: !wildcard,
		MaxAge:           int((12 * time.Hour).Seconds()),
	})
}

package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	serviceName    = "FP&A Intelligence API"
	serviceVersion = "1.0.0"
)

// Dependency is a backend the readiness probe checks. A nil Pinger marks the
// dependency as disabled.
type Dependency struct {
	Name   string
	Mode   string
	Pinger interface {
		Ping(ctx context.Context) error
	}
}

// HealthHandler serves the banner, liveness and readiness routes.
type HealthHandler struct {
	env          string
	swagger      bool
	dependencies []Dependency
	now          func() time.Time
}

func NewHealthHandler(env string, swagger bool, deps ...Dependency) *HealthHandler {
	return &HealthHandler{env: env, swagger: swagger, dependencies: deps, now: time.Now}
}

type rootResponse struct {
	Message     string            `json:"message"`
	Version     string            `json:"version"`
	Status      string            `json:"status"`
	Docs        string            `json:"docs"`
	Environment string            `json:"environment"`
	Backends    map[string]string `json:"backends"`
}

type livenessResponse struct {
	Status      string            `json:"status"`
	Environment string            `json:"environment"`
	Timestamp   time.Time         `json:"timestamp"`
	Backends    map[string]string `json:"backends"`
}

type dependencyStatus struct {
	Status string `json:"status"`
	Mode   string `json:"mode"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

// Root handles GET /.
//
// @Summary      Service banner
// @Tags         health
// @Produce      json
// @Success      200  {object}  rootResponse
// @Router       / [get]
func (h *HealthHandler) Root(c echo.Context) error {
	docs := "disabled"
	if h.swagger {
		docs = "/swagger/index.html"
	}
	return c.JSON(http.StatusOK, rootResponse{
		Message:     serviceName,
		Version:     serviceVersion,
		Status:      "running",
		Docs:        docs,
		Environment: h.env,
		Backends:    h.modes(),
	})
}

// Liveness handles GET /health. It never touches a dependency.
//
// @Summary      Liveness probe
// @Tags         health
// @Produce      json
// @Success      200  {object}  livenessResponse
// @Router       /health [get]
func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, livenessResponse{
		Status:      "healthy",
		Environment: h.env,
		Timestamp:   h.now().UTC(),
		Backends:    h.modes(),
	})
}

// Readiness handles GET /health/ready and pings every enabled dependency.
//
// @Summary      Readiness probe
// @Tags         health
// @Produce      json
// @Success      200  {object}  readinessResponse
// @Failure      503  {object}  readinessResponse
// @Router       /health/ready [get]
func (h *HealthHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	deps := make(map[string]dependencyStatus, len(h.dependencies))
	healthy := true
	for _, d := range h.dependencies {
		if d.Pinger == nil {
			deps[d.Name] = dependencyStatus{Status: "disabled", Mode: d.Mode}
			continue
		}
		if err := d.Pinger.Ping(ctx); err != nil {
			deps[d.Name] = dependencyStatus{Status: "unhealthy", Mode: d.Mode, Error: err.Error()}
			healthy = false
			continue
		}
		deps[d.Name] = dependencyStatus{Status: "ok", Mode: d.Mode}
	}

	status := "ok"
	httpStatus := http.StatusOK
	if !healthy {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	return c.JSON(httpStatus, readinessResponse{
		Status:       status,
		Dependencies: deps,
	})
}

func (h *HealthHandler) modes() map[string]string {
	out := make(map[string]string, len(h.dependencies))
	for _, d := range h.dependencies {
		out[d.Name] = d.Mode
	}
	return out
}

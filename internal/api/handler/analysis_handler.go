package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fpa-intel/fpa-api/internal/api/metrics"
	"github.com/fpa-intel/fpa-api/internal/core/domain"
	"github.com/fpa-intel/fpa-api/internal/core/ports"
)

// AnalysisHandler handles HTTP requests for analysis operations. Every route
// is scoped to the authenticated caller.
type AnalysisHandler struct {
	service ports.AnalysisService
}

func NewAnalysisHandler(service ports.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{service: service}
}

// List handles GET /analyses.
//
// @Summary      List analyses
// @Tags         analyses
// @Produce      json
// @Security     BearerAuth
// @Param        page        query     int     false  "Page number"  minimum(1)
// @Param        size        query     int     false  "Page size"    minimum(1)  maximum(100)
// @Param        status      query     string  false  "Status filter"  Enums(draft, in-progress, completed, failed)
// @Param        search      query     string  false  "Match name, description or period"
// @Param        sort_by     query     string  false  "Sort field"     Enums(created_at, name, status, updated_at)
// @Param        sort_order  query     string  false  "Sort order"     Enums(asc, desc)
// @Success      200         {object}  analysisListResponse
// @Failure      400         {object}  errorResponse
// @Router       /analyses [get]
func (h *AnalysisHandler) List(c echo.Context) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	var q listAnalysesQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}

	res, err := h.service.List(c.Request().Context(), ports.ListAnalysesInput{
		UserID:    user.ID,
		Status:    q.Status,
		Search:    q.Search,
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
		Page:      q.Page,
		Size:      q.Size,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, analysisListResponse{Analyses: res.Items, listMeta: toListMeta(res.Total, res.Page, res.Size, res.Pages)})
}

// Create handles POST /analyses.
//
// @Summary      Create an analysis
// @Tags         analyses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createAnalysisRequest  true  "Analysis details"
// @Success      201   {object}  domain.Analysis
// @Failure      400   {object}  errorResponse
// @Router       /analyses [post]
func (h *AnalysisHandler) Create(c echo.Context) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	var req createAnalysisRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	a, err := h.service.Create(c.Request().Context(), user.ID, ports.CreateAnalysisInput{
		Name:        req.Name,
		Description: req.Description,
		Period:      req.Period,
		Competitors: req.Competitors,
		Status:      domain.AnalysisStatus(req.Status),
	})
	if err != nil {
		return err
	}

	metrics.AnalysesCreatedTotal.Inc()
	return c.JSON(http.StatusCreated, a)
}

// Get handles GET /analyses/:id.
//
// @Summary      Get an analysis
// @Tags         analyses
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Analysis id"
// @Success      200  {object}  domain.Analysis
// @Failure      404  {object}  errorResponse
// @Router       /analyses/{id} [get]
func (h *AnalysisHandler) Get(c echo.Context) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	a, err := h.service.Get(c.Request().Context(), c.Param("id"), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

// Update handles PUT /analyses/:id.
//
// @Summary      Update an analysis
// @Tags         analyses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "Analysis id"
// @Param        body  body      updateAnalysisRequest  true  "Fields to change"
// @Success      200   {object}  domain.Analysis
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /analyses/{id} [put]
func (h *AnalysisHandler) Update(c echo.Context) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	var req updateAnalysisRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	in := ports.UpdateAnalysisInput{
		Name:        req.Name,
		Description: req.Description,
		Period:      req.Period,
		Competitors: req.Competitors,
	}
	if req.Status != nil {
		st := domain.AnalysisStatus(*req.Status)
		in.Status = &st
	}

	a, err := h.service.Update(c.Request().Context(), c.Param("id"), user.ID, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

// Delete handles DELETE /analyses/:id.
//
// @Summary      Delete an analysis
// @Description  Also deletes the questions attached to the analysis.
// @Tags         analyses
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Analysis id"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  errorResponse
// @Router       /analyses/{id} [delete]
func (h *AnalysisHandler) Delete(c echo.Context) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), c.Param("id"), user.ID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Analysis deleted successfully"})
}

// BulkDelete handles POST /analyses/bulk-delete.
//
// @Summary      Delete several analyses
// @Description  Nothing is deleted unless every id belongs to the caller.
// @Tags         analyses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      bulkDeleteRequest  true  "Analysis ids"
// @Success      200   {object}  bulkDeleteResponse
// @Failure      400   {object}  errorResponse
// @Router       /analyses/bulk-delete [post]
func (h *AnalysisHandler) BulkDelete(c echo.Context) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	var req bulkDeleteRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	n, err := h.service.BulkDelete(c.Request().Context(), req.AnalysisIDs, user.ID)
	if err != nil {
		return err
	}

	metrics.BulkActionsTotal.WithLabelValues("delete_analyses").Inc()
	return c.JSON(http.StatusOK, bulkDeleteResponse{
		Message: fmt.Sprintf("Successfully deleted %d analyses", n),
		Deleted: n,
	})
}

// Dashboard handles GET /analyses/:id/dashboard.
//
// @Summary      Dashboard snapshot
// @Tags         analyses
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Analysis id"
// @Success      200  {object}  domain.DashboardData
// @Failure      404  {object}  errorResponse
// @Router       /analyses/{id}/dashboard [get]
func (h *AnalysisHandler) Dashboard(c echo.Context) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	d, err := h.service.Dashboard(c.Request().Context(), c.Param("id"), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

// Generate handles POST /analyses/:id/generate.
//
// @Summary      Run analysis generation
// @Tags         analyses
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Analysis id"
// @Success      200  {object}  generateResponse
// @Failure      404  {object}  errorResponse
// @Router       /analyses/{id}/generate [post]
func (h *AnalysisHandler) Generate(c echo.Context) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	a, err := h.service.Generate(c.Request().Context(), c.Param("id"), user.ID)
	if err != nil {
		return err
	}

	metrics.AnalysesGeneratedTotal.Inc()
	return c.JSON(http.StatusOK, generateResponse{Message: "Analysis generation completed", Status: a.Status})
}

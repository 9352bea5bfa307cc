package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fpa-intel/fpa-api/internal/api/metrics"
	"github.com/fpa-intel/fpa-api/internal/core/domain"
	"github.com/fpa-intel/fpa-api/internal/core/ports"
)

var bulkActionVerbs = map[string]string{
	domain.BulkActionDelete: "deleted",
	domain.BulkActionClose:  "closed",
	domain.BulkActionReopen: "reopened",
}

// QuestionHandler serves the market research routes.
type QuestionHandler struct {
	service ports.QuestionService
}

func NewQuestionHandler(service ports.QuestionService) *QuestionHandler {
	return &QuestionHandler{service: service}
}

// List handles GET /market-research/questions.
//
// @Summary      List questions
// @Tags         market-research
// @Produce      json
// @Security     BearerAuth
// @Param        page         query     int     false  "Page number"  minimum(1)
// @Param        size         query     int     false  "Page size"    minimum(1)  maximum(100)
// @Param        analysis_id  query     string  false  "Analysis filter"
// @Param        status       query     string  false  "Status filter"  Enums(pending, answered, closed)
// @Param        search       query     string  false  "Match question, dashboard or report"
// @Param        sort_by      query     string  false  "Sort field"     Enums(created_at, status, analysis_id, user_id)
// @Param        sort_order   query     string  false  "Sort order"     Enums(asc, desc)
// @Success      200          {object}  questionListResponse
// @Failure      400          {object}  errorResponse
// @Router       /market-research/questions [get]
func (h *QuestionHandler) List(c echo.Context) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	var q listQuestionsQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}

	res, err := h.service.List(c.Request().Context(), user, ports.ListQuestionsInput{
		AnalysisID: q.AnalysisID,
		Status:     q.Status,
		Search:     q.Search,
		SortBy:     q.SortBy,
		SortOrder:  q.SortOrder,
		Page:       q.Page,
		Size:       q.Size,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, questionListResponse{Questions: res.Items, listMeta: toListMeta(res.Total, res.Page, res.Size, res.Pages)})
}

// Create handles POST /market-research/questions.
//
// @Summary      Create a question
// @Tags         market-research
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createQuestionRequest  true  "Question details"
// @Success      201   {object}  domain.EnrichedQuestion
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /market-research/questions [post]
func (h *QuestionHandler) Create(c echo.Context) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	var req createQuestionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	q, err := h.service.Create(c.Request().Context(), user, ports.CreateQuestionInput{
		AnalysisID: req.AnalysisID,
		Dashboard:  req.Dashboard,
		Report:     req.Report,
		Question:   req.Question,
		Status:     domain.QuestionStatus(req.Status),
		Priority:   req.Priority,
		Tags:       req.Tags,
	})
	if err != nil {
		return err
	}

	metrics.QuestionsCreatedTotal.Inc()
	return c.JSON(http.StatusCreated, q)
}

// Get handles GET /market-research/questions/:id.
//
// @Summary      Get a question
// @Tags         market-research
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Question id"
// @Success      200  {object}  domain.EnrichedQuestion
// @Failure      404  {object}  errorResponse
// @Router       /market-research/questions/{id} [get]
func (h *QuestionHandler) Get(c echo.Context) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	q, err := h.service.Get(c.Request().Context(), user, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, q)
}

// Update handles PUT /market-research/questions/:id.
//
// @Summary      Update a question
// @Tags         market-research
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "Question id"
// @Param        body  body      updateQuestionRequest  true  "Fields to change"
// @Success      200   {object}  domain.EnrichedQuestion
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /market-research/questions/{id} [put]
func (h *QuestionHandler) Update(c echo.Context) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	var req updateQuestionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	in := ports.UpdateQuestionInput{
		Dashboard: req.Dashboard,
		Report:    req.Report,
		Question:  req.Question,
		Priority:  req.Priority,
		Tags:      req.Tags,
	}
	if req.Status != nil {
		st := domain.QuestionStatus(*req.Status)
		in.Status = &st
	}

	q, err := h.service.Update(c.Request().Context(), user, c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, q)
}

// Delete handles DELETE /market-research/questions/:id.
//
// @Summary      Delete a question
// @Tags         market-research
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Question id"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  errorResponse
// @Router       /market-research/questions/{id} [delete]
func (h *QuestionHandler) Delete(c echo.Context) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), user, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Question deleted successfully"})
}

// AddResponse handles POST /market-research/questions/:id/responses.
//
// @Summary      Add an analyst response
// @Description  The timestamp is set by the server. A pending question becomes answered.
// @Tags         market-research
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Question id"
// @Param        body  body      addResponseRequest  true  "Response"
// @Success      200   {object}  domain.EnrichedQuestion
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /market-research/questions/{id}/responses [post]
func (h *QuestionHandler) AddResponse(c echo.Context) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	var req addResponseRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	q, err := h.service.AddResponse(c.Request().Context(), user, c.Param("id"), ports.AddResponseInput{
		Analyst:         req.Analyst,
		Response:        req.Response,
		Attachments:     req.Attachments,
		ConfidenceScore: req.ConfidenceScore,
	})
	if err != nil {
		return err
	}

	metrics.ResponsesAddedTotal.Inc()
	return c.JSON(http.StatusOK, q)
}

// BulkAction handles POST /market-research/questions/bulk-action.
//
// @Summary      Apply an action to several questions
// @Description  Nothing changes unless every id belongs to the caller.
// @Tags         market-research
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      bulkActionRequest  true  "Question ids and action (delete, close, reopen)"
// @Success      200   {object}  bulkActionResponse
// @Failure      400   {object}  errorResponse
// @Router       /market-research/questions/bulk-action [post]
func (h *QuestionHandler) BulkAction(c echo.Context) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	var req bulkActionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.service.BulkAction(c.Request().Context(), user, req.QuestionIDs, req.Action)
	if err != nil {
		return err
	}

	metrics.BulkActionsTotal.WithLabelValues(res.Action).Inc()
	return c.JSON(http.StatusOK, bulkActionResponse{
		Message:  fmt.Sprintf("Successfully %s %d questions", bulkActionVerbs[res.Action], res.Affected),
		Action:   res.Action,
		Affected: res.Affected,
	})
}

// Metrics handles GET /market-research/metrics.
//
// @Summary      Research metrics
// @Tags         market-research
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.ResearchMetrics
// @Router       /market-research/metrics [get]
func (h *QuestionHandler) Metrics(c echo.Context) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	m, err := h.service.Metrics(c.Request().Context(), user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

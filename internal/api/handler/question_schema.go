package handler

import "github.com/fpa-intel/fpa-api/internal/core/domain"

type listQuestionsQuery struct {
	Pagination
	AnalysisID string `query:"analysis_id"`
	Status     string `query:"status"     validate:"omitempty,oneof=pending answered closed"`
	Search     string `query:"search"`
	SortBy     string `query:"sort_by"    validate:"omitempty,oneof=created_at status analysis_id user_id"`
	SortOrder  string `query:"sort_order" validate:"omitempty,oneof=asc desc"`
}

type createQuestionRequest struct {
	AnalysisID string   `json:"analysis_id" validate:"required"`
	Dashboard  string   `json:"dashboard"   validate:"required,min=1,max=100"`
	Report     string   `json:"report"      validate:"required,min=1,max=100"`
	Question   string   `json:"question"    validate:"required,min=10,max=2000"`
	Status     string   `json:"status"      validate:"omitempty,oneof=pending answered closed"`
	Priority   int      `json:"priority"`
	Tags       []string `json:"tags"`
}

type updateQuestionRequest struct {
	Dashboard *string  `json:"dashboard" validate:"omitempty,min=1,max=100"`
	Report    *string  `json:"report"    validate:"omitempty,min=1,max=100"`
	Question  *string  `json:"question"  validate:"omitempty,min=10,max=2000"`
	Status    *string  `json:"status"    validate:"omitempty,oneof=pending answered closed"`
	Priority  *int     `json:"priority"`
	Tags      []string `json:"tags"`
}

type addResponseRequest struct {
	Analyst         string   `json:"analyst"          validate:"required,min=1,max=100"`
	Response        string   `json:"response"         validate:"required,min=10,max=5000"`
	Attachments     []string `json:"attachments"`
	ConfidenceScore *float64 `json:"confidence_score" validate:"omitempty,gte=0,lte=1"`
}

type bulkActionRequest struct {
	QuestionIDs []string `json:"question_ids" validate:"required,min=1,dive,required"`
	Action      string   `json:"action"       validate:"required"`
}

type questionListResponse struct {
	Questions []*domain.EnrichedQuestion `json:"questions"`
	listMeta
}

type bulkActionResponse struct {
	Message  string `json:"message"`
	Action   string `json:"action"`
	Affected int64  `json:"affected"`
}

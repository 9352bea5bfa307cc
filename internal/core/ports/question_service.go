package ports

import (
	"context"

	"github.com/fpa-intel/fpa-api/internal/core/domain"
)

// CreateQuestionInput carries the fields of a new question.
type CreateQuestionInput struct {
	AnalysisID string
	Dashboard  string
	Report     string
	Question   string
	Status     domain.QuestionStatus
	Priority   int
	Tags       []string
}

// UpdateQuestionInput is a partial update; nil fields are left unchanged.
type UpdateQuestionInput struct {
	Dashboard *string
	Report    *string
	Question  *string
	Status    *domain.QuestionStatus
	Priority  *int
	Tags      []string
}

// AddResponseInput carries an analyst response. The timestamp is assigned by
// the service.
type AddResponseInput struct {
	Analyst         string
	Response        string
	Attachments     []string
	ConfidenceScore *float64
}

// ListQuestionsInput carries the question listing query.
type ListQuestionsInput struct {
	AnalysisID string
	Status     string
	Search     string
	SortBy     string // created_at | status | analysis_id | user_id
	SortOrder  string // asc | desc
	Page       int
	Size       int
}

// BulkActionResult reports how many questions an action touched.
type BulkActionResult struct {
	Action   string
	Affected int64
}

// QuestionService operates on the caller's questions. Every returned question
// is enriched with the analysis name and the caller's display name.
type QuestionService interface {
	Create(ctx context.Context, caller *domain.User, in CreateQuestionInput) (*domain.EnrichedQuestion, error)
	List(ctx context.Context, caller *domain.User, in ListQuestionsInput) (*PageResult[*domain.EnrichedQuestion], error)
	Get(ctx context.Context, caller *domain.User, id string) (*domain.EnrichedQuestion, error)
	Update(ctx context.Context, caller *domain.User, id string, in UpdateQuestionInput) (*domain.EnrichedQuestion, error)
	Delete(ctx context.Context, caller *domain.User, id string) error
	AddResponse(ctx context.Context, caller *domain.User, id string, in AddResponseInput) (*domain.EnrichedQuestion, error)
	BulkAction(ctx context.Context, caller *domain.User, ids []string, action string) (*BulkActionResult, error)
	Metrics(ctx context.Context, caller *domain.User) (*domain.ResearchMetrics, error)
}

package ports

import (
	"context"

	"github.com/fpa-intel/fpa-api/internal/core/domain"
)

// CreateAnalysisInput carries the fields of a new analysis.
type CreateAnalysisInput struct {
	Name        string
	Description string
	Period      string
	Competitors []string
	Status      domain.AnalysisStatus
}

// UpdateAnalysisInput is a partial update. Nil pointers and a nil
// Competitors slice leave the stored value unchanged.
type UpdateAnalysisInput struct {
	Name        *string
	Description *string
	Period      *string
	Competitors []string
	Status      *domain.AnalysisStatus
}

// ListAnalysesInput carries the analysis listing query. UserID is always
// enforced by the service.
type ListAnalysesInput struct {
	UserID    string
	Status    string
	Search    string
	SortBy    string // created_at | name | status | updated_at
	SortOrder string // asc | desc
	Page      int
	Size      int
}

type AnalysisService interface {
	Create(ctx context.Context, userID string, in CreateAnalysisInput) (*domain.Analysis, error)
	List(ctx context.Context, in ListAnalysesInput) (*PageResult[*domain.Analysis], error)
	Get(ctx context.Context, id, userID string) (*domain.Analysis, error)
	Update(ctx context.Context, id, userID string, in UpdateAnalysisInput) (*domain.Analysis, error)
	Delete(ctx context.Context, id, userID string) error
	BulkDelete(ctx context.Context, ids []string, userID string) (int64, error)
	Dashboard(ctx context.Context, id, userID string) (*domain.DashboardData, error)
	Generate(ctx context.Context, id, userID string) (*domain.Analysis, error)
}

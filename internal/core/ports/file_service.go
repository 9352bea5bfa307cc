package ports

import (
	"context"

	"github.com/fpa-intel/fpa-api/internal/core/domain"
)

// UploadInput carries an uploaded file and its declared attributes.
type UploadInput struct {
	Content     []byte
	Filename    string
	ContentType string
	UserID      string
	AnalysisID  string // optional
}

// FileContent is a downloaded file.
type FileContent struct {
	Data        []byte
	Filename    string
	ContentType string
}

type FileService interface {
	Upload(ctx context.Context, in UploadInput) (*domain.FileRecord, error)
	List(ctx context.Context, userID, analysisID string) ([]*domain.FileRecord, error)
	Get(ctx context.Context, id, userID string) (*domain.FileRecord, error)
	Content(ctx context.Context, id, userID string) (*FileContent, error)
	Delete(ctx context.Context, id, userID string) error
}

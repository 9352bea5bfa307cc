package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fpa-intel/fpa-api/internal/core/domain"
	"github.com/fpa-intel/fpa-api/internal/core/ports"
)

// FileLimits bounds what Upload accepts.
type FileLimits struct {
	MaxSize      int64
	AllowedTypes []string
}

// FileService pairs file metadata in the store with content in a
// ContentStorage backend.
type FileService struct {
	store   ports.Store
	content ports.ContentStorage
	limits  FileLimits
	logger  zerolog.Logger
	now     func() time.Time
}

func NewFileService(store ports.Store, content ports.ContentStorage, limits FileLimits, logger zerolog.Logger) *FileService {
	return &FileService{store: store, content: content, limits: limits, logger: logger, now: time.Now}
}

func (s *FileService) Upload(ctx context.Context, in ports.UploadInput) (*domain.FileRecord, error) {
	if !s.allowed(in.ContentType) {
		return nil, fmt.Errorf("%w: %s", domain.ErrFileTypeNotAllowed, in.ContentType)
	}
	if int64(len(in.Content)) > s.limits.MaxSize {
		return nil, fmt.Errorf("%w: maximum size is %d bytes", domain.ErrFileTooLarge, s.limits.MaxSize)
	}
	if strings.TrimSpace(in.Filename) == "" {
		return nil, domain.NewValidationError("file", "filename is required")
	}

	if in.AnalysisID != "" {
		if _, err := s.store.Analyses().FindOne(ctx, ports.Owned(in.AnalysisID, in.UserID)); err != nil {
			if errors.Is(err, ports.ErrNoDocument) {
				return nil, domain.ErrAnalysisNotFound
			}
			return nil, fmt.Errorf("find analysis: %w", err)
		}
	}

	id := uuid.NewString()
	name := id + filepath.Ext(filepath.Base(in.Filename))
	if err := s.content.Write(ctx, name, in.ContentType, in.Content); err != nil {
		return nil, fmt.Errorf("store content: %w", err)
	}

	record := &domain.FileRecord{
		ID:             id,
		Filename:       in.Filename,
		UniqueFilename: name,
		ContentType:    in.ContentType,
		Size:           int64(len(in.Content)),
		UserID:         in.UserID,
		AnalysisID:     in.AnalysisID,
		UploadDate:     s.now().UTC(),
		StoragePath:    s.content.Locate(name),
	}
	if _, err := s.store.Files().Insert(ctx, record); err != nil {
		s.discard(ctx, name)
		return nil, fmt.Errorf("insert file record: %w", err)
	}

	if in.AnalysisID != "" {
		patch := ports.Patch{Push: map[string]any{"file_ids": id}}
		if err := s.store.Analyses().UpdateOne(ctx, ports.Owned(in.AnalysisID, in.UserID), patch); err != nil {
			s.discard(ctx, name)
			if derr := s.store.Files().DeleteOne(ctx, ports.ByID(id)); derr != nil {
				s.logger.Warn().Err(derr).Str("file_id", id).Msg("file record cleanup failed")
			}
			if errors.Is(err, ports.ErrNoDocument) {
				return nil, domain.ErrAnalysisNotFound
			}
			return nil, fmt.Errorf("attach file to analysis: %w", err)
		}
	}

	s.logger.Info().Str("file_id", id).Int64("size", record.Size).Str("content_type", record.ContentType).Msg("file uploaded")
	return record, nil
}

func (s *FileService) List(ctx context.Context, userID, analysisID string) ([]*domain.FileRecord, error) {
	filter := ports.Filter{Equals: map[string]any{"user_id": userID}}
	if analysisID != "" {
		filter.Equals["analysis_id"] = analysisID
	}
	files, err := s.store.Files().FindMany(ctx, filter, &ports.Sort{Field: "upload_date", Desc: true}, ports.Page{})
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return files, nil
}

func (s *FileService) Get(ctx context.Context, id, userID string) (*domain.FileRecord, error) {
	record, err := s.store.Files().FindOne(ctx, ports.Owned(id, userID))
	if err != nil {
		if errors.Is(err, ports.ErrNoDocument) {
			return nil, domain.ErrFileNotFound
		}
		return nil, fmt.Errorf("find file: %w", err)
	}
	return record, nil
}

// Content returns the stored bytes. Metadata without content is reported as
// not found.
func (s *FileService) Content(ctx context.Context, id, userID string) (*ports.FileContent, error) {
	record, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	data, err := s.content.Read(ctx, record.UniqueFilename)
	if err != nil {
		if errors.Is(err, ports.ErrContentMissing) {
			s.logger.Warn().Str("file_id", id).Msg("file content missing from storage")
			return nil, domain.ErrFileNotFound
		}
		return nil, fmt.Errorf("read content: %w", err)
	}
	return &ports.FileContent{Data: data, Filename: record.Filename, ContentType: record.ContentType}, nil
}

// Delete removes the content best-effort, detaches the file from its analysis
// and deletes the metadata.
func (s *FileService) Delete(ctx context.Context, id, userID string) error {
	record, err := s.Get(ctx, id, userID)
	if err != nil {
		return err
	}

	s.discard(ctx, record.UniqueFilename)

	if record.AnalysisID != "" {
		patch := ports.Patch{Pull: map[string]any{"file_ids": id}}
		err := s.store.Analyses().UpdateOne(ctx, ports.Owned(record.AnalysisID, userID), patch)
		if err != nil && !errors.Is(err, ports.ErrNoDocument) {
			return fmt.Errorf("detach file from analysis: %w", err)
		}
	}

	if err := s.store.Files().DeleteOne(ctx, ports.Owned(id, userID)); err != nil {
		if errors.Is(err, ports.ErrNoDocument) {
			return domain.ErrFileNotFound
		}
		return fmt.Errorf("delete file record: %w", err)
	}
	s.logger.Info().Str("file_id", id).Msg("file deleted")
	return nil
}

func (s *FileService) discard(ctx context.Context, name string) {
	if err := s.content.Delete(ctx, name); err != nil && !errors.Is(err, ports.ErrContentMissing) {
		s.logger.Warn().Err(err).Str("name", name).Msg("content delete failed")
	}
}

func (s *FileService) allowed(contentType string) bool {
	for _, t := range s.limits.AllowedTypes {
		if strings.EqualFold(t, contentType) {
			return true
		}
	}
	return false
}

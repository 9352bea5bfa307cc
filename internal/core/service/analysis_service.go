package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fpa-intel/fpa-api/internal/core/domain"
	"github.com/fpa-intel/fpa-api/internal/core/ports"
)

var analysisSortFields = []string{"created_at", "name", "status", "updated_at"}

// AnalysisService manages a user's analyses. Every read and write is scoped to
// the owner; another user's analysis is reported as not found.
type AnalysisService struct {
	store       ports.Store
	cache       ports.Cache
	cacheTTL    time.Duration
	maxPageSize int
	logger      zerolog.Logger
	now         func() time.Time
}

func NewAnalysisService(store ports.Store, cache ports.Cache, cacheTTL time.Duration, maxPageSize int, logger zerolog.Logger) *AnalysisService {
	if cache == nil {
		cache = ports.NopCache{}
	}
	return &AnalysisService{
		store:       store,
		cache:       cache,
		cacheTTL:    cacheTTL,
		maxPageSize: maxPageSize,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *AnalysisService) Create(ctx context.Context, userID string, in ports.CreateAnalysisInput) (*domain.Analysis, error) {
	if in.Status == "" {
		in.Status = domain.AnalysisDraft
	}
	verr := &domain.ValidationError{Fields: map[string]string{}}
	checkText(verr, "name", in.Name, 1, 200)
	checkText(verr, "description", in.Description, 1, 1000)
	checkText(verr, "period", in.Period, 1, 50)
	if !in.Status.Valid() {
		verr.Fields["status"] = "must be one of: draft, in-progress, completed, failed"
	}
	if len(verr.Fields) > 0 {
		return nil, verr
	}

	competitors := in.Competitors
	if competitors == nil {
		competitors = []string{}
	}

	now := s.now().UTC()
	analysis := &domain.Analysis{
		ID:             uuid.NewString(),
		Name:           in.Name,
		Description:    in.Description,
		Period:         in.Period,
		Competitors:    competitors,
		Status:         in.Status,
		UserID:         userID,
		CreatedAt:      now,
		UpdatedAt:      now,
		CompetitorData: []domain.CompetitorData{},
		FinancialData:  map[string]any{},
		AIInsights:     map[string]any{},
		FileIDs:        []string{},
	}
	if _, err := s.store.Analyses().Insert(ctx, analysis); err != nil {
		return nil, fmt.Errorf("insert analysis: %w", err)
	}

	s.logger.Info().Str("analysis_id", analysis.ID).Str("user_id", userID).Msg("analysis created")
	return analysis, nil
}

func (s *AnalysisService) List(ctx context.Context, in ports.ListAnalysesInput) (*ports.PageResult[*domain.Analysis], error) {
	page, pageNo, size, err := pageWindow(in.Page, in.Size, s.maxPageSize)
	if err != nil {
		return nil, err
	}
	order, err := sortSpec(in.SortBy, in.SortOrder, analysisSortFields)
	if err != nil {
		return nil, err
	}
	switch order.Field {
	case "name":
		order.Fold = true
	case "status":
		order.Rank = domain.AnalysisStatusRank
	}

	filter := ports.Filter{Equals: map[string]any{"user_id": in.UserID}}
	if in.Status != "" {
		if !domain.AnalysisStatus(in.Status).Valid() {
			return nil, domain.NewValidationError("status", "must be one of: draft, in-progress, completed, failed")
		}
		filter.Equals["status"] = in.Status
	}
	if term := strings.TrimSpace(in.Search); term != "" {
		filter.Search = &ports.Search{Term: term, Fields: []string{"name", "description", "period"}}
	}

	total, err := s.store.Analyses().Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count analyses: %w", err)
	}
	items, err := s.store.Analyses().FindMany(ctx, filter, order, page)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	return &ports.PageResult[*domain.Analysis]{
		Items: items,
		Total: total,
		Page:  pageNo,
		Size:  size,
		Pages: pageCount(total, size),
	}, nil
}

func (s *AnalysisService) Get(ctx context.Context, id, userID string) (*domain.Analysis, error) {
	analysis, err := s.store.Analyses().FindOne(ctx, ports.Owned(id, userID))
	if err != nil {
		if errors.Is(err, ports.ErrNoDocument) {
			return nil, domain.ErrAnalysisNotFound
		}
		return nil, fmt.Errorf("find analysis: %w", err)
	}
	return analysis, nil
}

// Update applies the non-nil fields of in and bumps updated_at.
func (s *AnalysisService) Update(ctx context.Context, id, userID string, in ports.UpdateAnalysisInput) (*domain.Analysis, error) {
	if _, err := s.Get(ctx, id, userID); err != nil {
		return nil, err
	}

	verr := &domain.ValidationError{Fields: map[string]string{}}
	set := map[string]any{}
	if in.Name != nil {
		checkText(verr, "name", *in.Name, 1, 200)
		set["name"] = *in.Name
	}
	if in.Description != nil {
		checkText(verr, "description", *in.Description, 1, 1000)
		set["description"] = *in.Description
	}
	if in.Period != nil {
		checkText(verr, "period", *in.Period, 1, 50)
		set["period"] = *in.Period
	}
	if in.Competitors != nil {
		set["competitors"] = in.Competitors
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			verr.Fields["status"] = "must be one of: draft, in-progress, completed, failed"
		}
		set["status"] = string(*in.Status)
	}
	if len(verr.Fields) > 0 {
		return nil, verr
	}

	set["updated_at"] = s.now().UTC()
	if err := s.store.Analyses().UpdateOne(ctx, ports.Owned(id, userID), ports.Patch{Set: set}); err != nil {
		if errors.Is(err, ports.ErrNoDocument) {
			return nil, domain.ErrAnalysisNotFound
		}
		return nil, fmt.Errorf("update analysis: %w", err)
	}
	s.forgetDashboard(ctx, id)
	return s.Get(ctx, id, userID)
}

// Delete removes the analysis and every question that references it.
func (s *AnalysisService) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.Get(ctx, id, userID); err != nil {
		return err
	}

	if err := s.store.Analyses().DeleteOne(ctx, ports.Owned(id, userID)); err != nil {
		if errors.Is(err, ports.ErrNoDocument) {
			return domain.ErrAnalysisNotFound
		}
		return fmt.Errorf("delete analysis: %w", err)
	}
	removed, err := s.store.Questions().DeleteMany(ctx, ports.Filter{Equals: map[string]any{"analysis_id": id}})
	if err != nil {
		return fmt.Errorf("delete analysis questions: %w", err)
	}
	s.forgetDashboard(ctx, id)

	s.logger.Info().Str("analysis_id", id).Int64("questions", removed).Msg("analysis deleted")
	return nil
}

// BulkDelete deletes every listed analysis and their questions. Nothing is
// deleted unless the caller owns all of them.
func (s *AnalysisService) BulkDelete(ctx context.Context, ids []string, userID string) (int64, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return 0, domain.NewValidationError("analysis_ids", "must contain at least one id")
	}

	owned, err := s.store.Analyses().Count(ctx, ports.Filter{
		Equals: map[string]any{"user_id": userID},
		In:     map[string][]string{"_id": ids},
	})
	if err != nil {
		return 0, fmt.Errorf("count analyses: %w", err)
	}
	if owned != int64(len(ids)) {
		return 0, domain.ErrAnalysesNotOwned
	}

	deleted, err := s.store.Analyses().DeleteMany(ctx, ports.Filter{
		Equals: map[string]any{"user_id": userID},
		In:     map[string][]string{"_id": ids},
	})
	if err != nil {
		return 0, fmt.Errorf("delete analyses: %w", err)
	}
	if _, err := s.store.Questions().DeleteMany(ctx, ports.Filter{In: map[string][]string{"analysis_id": ids}}); err != nil {
		return deleted, fmt.Errorf("delete analysis questions: %w", err)
	}
	for _, id := range ids {
		s.forgetDashboard(ctx, id)
	}

	s.logger.Info().Str("user_id", userID).Int64("deleted", deleted).Msg("analyses bulk deleted")
	return deleted, nil
}

// Dashboard returns the dashboard sections stored in the analysis' financial
// data. Snapshots are cached best-effort.
func (s *AnalysisService) Dashboard(ctx context.Context, id, userID string) (*domain.DashboardData, error) {
	analysis, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	key := dashboardKey(id)
	if raw, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("dashboard cache read failed")
	} else if ok {
		var cached domain.DashboardData
		if err := json.Unmarshal(raw, &cached); err == nil {
			return &cached, nil
		}
	}

	data := &domain.DashboardData{
		IncomeStatement: section(analysis.FinancialData, "income_statement"),
		BalanceSheet:    section(analysis.FinancialData, "balance_sheet"),
		CashFlow:        section(analysis.FinancialData, "cash_flow"),
		KPIs:            section(analysis.FinancialData, "kpis"),
		MDA:             section(analysis.FinancialData, "mda"),
	}

	if raw, err := json.Marshal(data); err == nil {
		if err := s.cache.Set(ctx, key, raw, s.cacheTTL); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("dashboard cache write failed")
		}
	}
	return data, nil
}

// Generate runs insight generation synchronously: the analysis passes through
// in-progress and ends completed with a placeholder insight summary.
func (s *AnalysisService) Generate(ctx context.Context, id, userID string) (*domain.Analysis, error) {
	analysis, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	filter := ports.Owned(id, userID)
	started := ports.Patch{Set: map[string]any{
		"status":     string(domain.AnalysisInProgress),
		"updated_at": s.now().UTC(),
	}}
	if err := s.store.Analyses().UpdateOne(ctx, filter, started); err != nil {
		return nil, fmt.Errorf("start generation: %w", err)
	}

	insights := map[string]any{
		"summary":         "Analysis completed successfully",
		"competitors":     len(analysis.Competitors),
		"key_findings":    []string{"Strong revenue growth", "Improving efficiency ratios"},
		"recommendations": []string{"Focus on digital channels", "Optimize cost structure"},
		"generated_at":    s.now().UTC(),
	}
	completed := ports.Patch{Set: map[string]any{
		"status":      string(domain.AnalysisCompleted),
		"ai_insights": insights,
		"updated_at":  s.now().UTC(),
	}}
	if err := s.store.Analyses().UpdateOne(ctx, filter, completed); err != nil {
		return nil, fmt.Errorf("complete generation: %w", err)
	}
	s.forgetDashboard(ctx, id)

	s.logger.Info().Str("analysis_id", id).Msg("analysis generated")
	return s.Get(ctx, id, userID)
}

func (s *AnalysisService) forgetDashboard(ctx context.Context, id string) {
	if err := s.cache.Delete(ctx, dashboardKey(id)); err != nil {
		s.logger.Warn().Err(err).Str("analysis_id", id).Msg("dashboard cache delete failed")
	}
}

func dashboardKey(id string) string {
	return "dashboard:" + id
}

// section returns data[key] as a string-keyed map, or an empty map.
func section(data map[string]any, key string) map[string]any {
	out := map[string]any{}
	rv := reflect.ValueOf(data[key])
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return out
	}
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out
}

func checkText(verr *domain.ValidationError, field, value string, lo, hi int) {
	if l := len(strings.TrimSpace(value)); l < lo || len(value) > hi {
		verr.Fields[field] = fmt.Sprintf("must be between %d and %d characters", lo, hi)
	}
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

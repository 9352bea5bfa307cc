package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fpa-intel/fpa-api/internal/core/domain"
	"github.com/fpa-intel/fpa-api/internal/core/ports"
)

const (
	unknownAnalysisName = "Unknown"
	metricsTopN         = 5
)

var questionSortFields = []string{"created_at", "status", "analysis_id", "user_id"}

// QuestionService manages market research questions and their responses.
type QuestionService struct {
	store       ports.Store
	maxPageSize int
	logger      zerolog.Logger
	now         func() time.Time
}

func NewQuestionService(store ports.Store, maxPageSize int, logger zerolog.Logger) *QuestionService {
	return &QuestionService{store: store, maxPageSize: maxPageSize, logger: logger, now: time.Now}
}

func (s *QuestionService) Create(ctx context.Context, caller *domain.User, in ports.CreateQuestionInput) (*domain.EnrichedQuestion, error) {
	if in.Status == "" {
		in.Status = domain.QuestionPending
	}
	verr := &domain.ValidationError{Fields: map[string]string{}}
	if in.AnalysisID == "" {
		verr.Fields["analysis_id"] = "is required"
	}
	checkText(verr, "dashboard", in.Dashboard, 1, 100)
	checkText(verr, "report", in.Report, 1, 100)
	checkText(verr, "question", in.Question, 10, 2000)
	if !in.Status.Valid() {
		verr.Fields["status"] = "must be one of: pending, answered, closed"
	}
	if len(verr.Fields) > 0 {
		return nil, verr
	}

	if _, err := s.store.Analyses().FindOne(ctx, ports.Owned(in.AnalysisID, caller.ID)); err != nil {
		if errors.Is(err, ports.ErrNoDocument) {
			return nil, domain.ErrAnalysisNotFound
		}
		return nil, fmt.Errorf("find analysis: %w", err)
	}

	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	now := s.now().UTC()
	q := &domain.Question{
		ID:         uuid.NewString(),
		AnalysisID: in.AnalysisID,
		Dashboard:  in.Dashboard,
		Report:     in.Report,
		Question:   in.Question,
		Status:     in.Status,
		UserID:     caller.ID,
		CreatedAt:  now,
		UpdatedAt:  now,
		Responses:  []domain.Response{},
		Priority:   in.Priority,
		Tags:       tags,
	}
	if _, err := s.store.Questions().Insert(ctx, q); err != nil {
		return nil, fmt.Errorf("insert question: %w", err)
	}

	s.logger.Info().Str("question_id", q.ID).Str("analysis_id", q.AnalysisID).Msg("question created")
	return s.enrichOne(ctx, caller, q)
}

func (s *QuestionService) List(ctx context.Context, caller *domain.User, in ports.ListQuestionsInput) (*ports.PageResult[*domain.EnrichedQuestion], error) {
	page, pageNo, size, err := pageWindow(in.Page, in.Size, s.maxPageSize)
	if err != nil {
		return nil, err
	}
	order, err := sortSpec(in.SortBy, in.SortOrder, questionSortFields)
	if err != nil {
		return nil, err
	}
	if order.Field == "status" {
		order.Rank = domain.QuestionStatusRank
	}

	filter := ports.Filter{Equals: map[string]any{"user_id": caller.ID}}
	if in.AnalysisID != "" {
		filter.Equals["analysis_id"] = in.AnalysisID
	}
	if in.Status != "" {
		if !domain.QuestionStatus(in.Status).Valid() {
			return nil, domain.NewValidationError("status", "must be one of: pending, answered, closed")
		}
		filter.Equals["status"] = in.Status
	}
	if term := strings.TrimSpace(in.Search); term != "" {
		filter.Search = &ports.Search{Term: term, Fields: []string{"question", "dashboard", "report"}}
	}

	total, err := s.store.Questions().Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count questions: %w", err)
	}
	questions, err := s.store.Questions().FindMany(ctx, filter, order, page)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	items, err := s.enrich(ctx, caller, questions)
	if err != nil {
		return nil, err
	}
	return &ports.PageResult[*domain.EnrichedQuestion]{
		Items: items,
		Total: total,
		Page:  pageNo,
		Size:  size,
		Pages: pageCount(total, size),
	}, nil
}

func (s *QuestionService) Get(ctx context.Context, caller *domain.User, id string) (*domain.EnrichedQuestion, error) {
	q, err := s.find(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	return s.enrichOne(ctx, caller, q)
}

func (s *QuestionService) Update(ctx context.Context, caller *domain.User, id string, in ports.UpdateQuestionInput) (*domain.EnrichedQuestion, error) {
	if _, err := s.find(ctx, caller, id); err != nil {
		return nil, err
	}

	verr := &domain.ValidationError{Fields: map[string]string{}}
	set := map[string]any{}
	if in.Dashboard != nil {
		checkText(verr, "dashboard", *in.Dashboard, 1, 100)
		set["dashboard"] = *in.Dashboard
	}
	if in.Report != nil {
		checkText(verr, "report", *in.Report, 1, 100)
		set["report"] = *in.Report
	}
	if in.Question != nil {
		checkText(verr, "question", *in.Question, 10, 2000)
		set["question"] = *in.Question
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			verr.Fields["status"] = "must be one of: pending, answered, closed"
		}
		set["status"] = string(*in.Status)
	}
	if in.Priority != nil {
		set["priority"] = *in.Priority
	}
	if in.Tags != nil {
		set["tags"] = in.Tags
	}
	if len(verr.Fields) > 0 {
		return nil, verr
	}

	set["updated_at"] = s.now().UTC()
	if err := s.store.Questions().UpdateOne(ctx, ports.Owned(id, caller.ID), ports.Patch{Set: set}); err != nil {
		if errors.Is(err, ports.ErrNoDocument) {
			return nil, domain.ErrQuestionNotFound
		}
		return nil, fmt.Errorf("update question: %w", err)
	}
	return s.Get(ctx, caller, id)
}

func (s *QuestionService) Delete(ctx context.Context, caller *domain.User, id string) error {
	if err := s.store.Questions().DeleteOne(ctx, ports.Owned(id, caller.ID)); err != nil {
		if errors.Is(err, ports.ErrNoDocument) {
			return domain.ErrQuestionNotFound
		}
		return fmt.Errorf("delete question: %w", err)
	}
	s.logger.Info().Str("question_id", id).Msg("question deleted")
	return nil
}

// AddResponse appends a response stamped with the server clock. A pending
// question becomes answered; any other status is kept.
func (s *QuestionService) AddResponse(ctx context.Context, caller *domain.User, id string, in ports.AddResponseInput) (*domain.EnrichedQuestion, error) {
	verr := &domain.ValidationError{Fields: map[string]string{}}
	checkText(verr, "analyst", in.Analyst, 1, 100)
	checkText(verr, "response", in.Response, 10, 5000)
	if in.ConfidenceScore != nil && (*in.ConfidenceScore < 0 || *in.ConfidenceScore > 1) {
		verr.Fields["confidence_score"] = "must be between 0 and 1"
	}
	if len(verr.Fields) > 0 {
		return nil, verr
	}

	q, err := s.find(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	attachments := in.Attachments
	if attachments == nil {
		attachments = []string{}
	}
	now := s.now().UTC()
	patch := ports.Patch{
		Push: map[string]any{"responses": domain.Response{
			Analyst:         in.Analyst,
			Response:        in.Response,
			Timestamp:       now,
			Attachments:     attachments,
			ConfidenceScore: in.ConfidenceScore,
		}},
		Set: map[string]any{"updated_at": now},
	}
	if q.Status == domain.QuestionPending {
		patch.Set["status"] = string(domain.QuestionAnswered)
	}

	if err := s.store.Questions().UpdateOne(ctx, ports.Owned(id, caller.ID), patch); err != nil {
		if errors.Is(err, ports.ErrNoDocument) {
			return nil, domain.ErrQuestionNotFound
		}
		return nil, fmt.Errorf("append response: %w", err)
	}
	return s.Get(ctx, caller, id)
}

// BulkAction applies delete, close or reopen to every listed question. The
// batch is rejected before any change unless the caller owns every id.
func (s *QuestionService) BulkAction(ctx context.Context, caller *domain.User, ids []string, action string) (*ports.BulkActionResult, error) {
	switch action {
	case domain.BulkActionDelete, domain.BulkActionClose, domain.BulkActionReopen:
	default:
		return nil, domain.ErrInvalidAction
	}
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil, domain.NewValidationError("question_ids", "must contain at least one id")
	}

	filter := ports.Filter{
		Equals: map[string]any{"user_id": caller.ID},
		In:     map[string][]string{"_id": ids},
	}
	owned, err := s.store.Questions().Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count questions: %w", err)
	}
	if owned != int64(len(ids)) {
		return nil, domain.ErrQuestionsNotOwned
	}

	var affected int64
	switch action {
	case domain.BulkActionDelete:
		affected, err = s.store.Questions().DeleteMany(ctx, filter)
	case domain.BulkActionClose:
		affected, err = s.setStatus(ctx, filter, domain.QuestionClosed)
	case domain.BulkActionReopen:
		affected, err = s.setStatus(ctx, filter, domain.QuestionPending)
	}
	if err != nil {
		return nil, fmt.Errorf("bulk %s: %w", action, err)
	}

	s.logger.Info().Str("action", action).Int64("affected", affected).Str("user_id", caller.ID).Msg("questions bulk action")
	return &ports.BulkActionResult{Action: action, Affected: affected}, nil
}

// Metrics aggregates the caller's questions: counts per status, the mean
// delay to the first response, and the most active analysts and topics.
func (s *QuestionService) Metrics(ctx context.Context, caller *domain.User) (*domain.ResearchMetrics, error) {
	questions, err := s.store.Questions().FindMany(ctx, ports.Filter{Equals: map[string]any{"user_id": caller.ID}}, nil, ports.Page{})
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}

	m := &domain.ResearchMetrics{
		TotalQuestions: len(questions),
		TopAnalysts:    []domain.AnalystStat{},
		PopularTopics:  []domain.TopicStat{},
	}

	type analystAcc struct {
		responses int
		scored    int
		scoreSum  float64
	}
	analysts := map[string]*analystAcc{}
	topics := map[string]int{}
	var latencySum float64
	var answered int

	for _, q := range questions {
		switch q.Status {
		case domain.QuestionPending:
			m.PendingQuestions++
		case domain.QuestionAnswered:
			m.AnsweredQuestions++
		case domain.QuestionClosed:
			m.ClosedQuestions++
		}

		if len(q.Responses) > 0 {
			first := q.Responses[0].Timestamp
			for _, r := range q.Responses[1:] {
				if r.Timestamp.Before(first) {
					first = r.Timestamp
				}
			}
			if d := first.Sub(q.CreatedAt); d > 0 {
				latencySum += d.Hours()
			}
			answered++
		}

		for _, r := range q.Responses {
			acc := analysts[r.Analyst]
			if acc == nil {
				acc = &analystAcc{}
				analysts[r.Analyst] = acc
			}
			acc.responses++
			if r.ConfidenceScore != nil {
				acc.scored++
				acc.scoreSum += *r.ConfidenceScore
			}
		}

		seen := map[string]bool{}
		for _, t := range questionTopics(q) {
			if !seen[t] {
				seen[t] = true
				topics[t]++
			}
		}
	}

	if answered > 0 {
		m.AvgResponseTimeHours = round2(latencySum / float64(answered))
	}

	for name, acc := range analysts {
		stat := domain.AnalystStat{Name: name, Responses: acc.responses}
		if acc.scored > 0 {
			stat.AvgScore = round2(acc.scoreSum / float64(acc.scored))
		}
		m.TopAnalysts = append(m.TopAnalysts, stat)
	}
	sort.Slice(m.TopAnalysts, func(i, j int) bool {
		a, b := m.TopAnalysts[i], m.TopAnalysts[j]
		if a.Responses != b.Responses {
			return a.Responses > b.Responses
		}
		return a.Name < b.Name
	})
	if len(m.TopAnalysts) > metricsTopN {
		m.TopAnalysts = m.TopAnalysts[:metricsTopN]
	}

	for topic, count := range topics {
		m.PopularTopics = append(m.PopularTopics, domain.TopicStat{Topic: topic, Count: count})
	}
	sort.Slice(m.PopularTopics, func(i, j int) bool {
		a, b := m.PopularTopics[i], m.PopularTopics[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Topic < b.Topic
	})
	if len(m.PopularTopics) > metricsTopN {
		m.PopularTopics = m.PopularTopics[:metricsTopN]
	}

	return m, nil
}

func (s *QuestionService) setStatus(ctx context.Context, filter ports.Filter, status domain.QuestionStatus) (int64, error) {
	return s.store.Questions().UpdateMany(ctx, filter, ports.Patch{Set: map[string]any{
		"status":     string(status),
		"updated_at": s.now().UTC(),
	}})
}

func (s *QuestionService) find(ctx context.Context, caller *domain.User, id string) (*domain.Question, error) {
	q, err := s.store.Questions().FindOne(ctx, ports.Owned(id, caller.ID))
	if err != nil {
		if errors.Is(err, ports.ErrNoDocument) {
			return nil, domain.ErrQuestionNotFound
		}
		return nil, fmt.Errorf("find question: %w", err)
	}
	return q, nil
}

func (s *QuestionService) enrichOne(ctx context.Context, caller *domain.User, q *domain.Question) (*domain.EnrichedQuestion, error) {
	out, err := s.enrich(ctx, caller, []*domain.Question{q})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// enrich joins each question with its analysis name and the caller's display
// name. Missing analyses are reported as "Unknown".
func (s *QuestionService) enrich(ctx context.Context, caller *domain.User, questions []*domain.Question) ([]*domain.EnrichedQuestion, error) {
	ids := make([]string, 0, len(questions))
	for _, q := range questions {
		ids = append(ids, q.AnalysisID)
	}
	ids = uniqueIDs(ids)

	names := make(map[string]string, len(ids))
	if len(ids) > 0 {
		analyses, err := s.store.Analyses().FindMany(ctx, ports.Filter{In: map[string][]string{"_id": ids}}, nil, ports.Page{})
		if err != nil {
			return nil, fmt.Errorf("load analysis names: %w", err)
		}
		for _, a := range analyses {
			names[a.ID] = a.Name
		}
	}

	userName := caller.FullName
	if userName == "" {
		userName = caller.Username
	}

	out := make([]*domain.EnrichedQuestion, 0, len(questions))
	for _, q := range questions {
		name, ok := names[q.AnalysisID]
		if !ok {
			name = unknownAnalysisName
		}
		out = append(out, &domain.EnrichedQuestion{Question: *q, AnalysisName: name, UserName: userName})
	}
	return out, nil
}

// questionTopics returns the question's tags, or its dashboard when untagged.
func questionTopics(q *domain.Question) []string {
	if len(q.Tags) > 0 {
		return q.Tags
	}
	if q.Dashboard != "" {
		return []string{q.Dashboard}
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/fpa-intel/fpa-api/internal/core/domain"
	"github.com/fpa-intel/fpa-api/internal/core/ports"
)

type stubQuestionService struct {
	ports.QuestionService
	addResponseFn func(caller *domain.User, id string, in ports.AddResponseInput) (*domain.EnrichedQuestion, error)
	bulkFn        func(caller *domain.User, ids []string, action string) (*ports.BulkActionResult, error)
	lastList      ports.ListQuestionsInput
}

func (s *stubQuestionService) AddResponse(_ context.Context, caller *domain.User, id string, in ports.AddResponseInput) (*domain.EnrichedQuestion, error) {
	return s.addResponseFn(caller, id, in)
}

func (s *stubQuestionService) BulkAction(_ context.Context, caller *domain.User, ids []string, action string) (*ports.BulkActionResult, error) {
	return s.bulkFn(caller, ids, action)
}

func (s *stubQuestionService) List(_ context.Context, _ *domain.User, in ports.ListQuestionsInput) (*ports.PageResult[*domain.EnrichedQuestion], error) {
	s.lastList = in
	return &ports.PageResult[*domain.EnrichedQuestion]{Items: []*domain.EnrichedQuestion{}, Page: 1, Size: 10}, nil
}

func TestQuestionHandler_List(t *testing.T) {
	stub := &stubQuestionService{}
	handler := NewQuestionHandler(stub)

	c, rec := newTestContext(http.MethodGet, "/api/v1/market-research/questions?analysis_id=a1&status=pending&sort_by=status", "")
	if err := handler.List(asCaller(c, testCaller)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if stub.lastList.AnalysisID != "a1" || stub.lastList.Status != "pending" || stub.lastList.SortBy != "status" {
		t.Fatalf("unexpected list input: %+v", stub.lastList)
	}
	resp := decodeBody(t, rec)
	if items, ok := resp["questions"].([]any); !ok || len(items) != 0 {
		t.Fatalf("expected empty questions array, got %+v", resp["questions"])
	}

	c, _ = newTestContext(http.MethodGet, "/api/v1/market-research/questions?sort_order=up", "")
	requireFields(t, handler.List(asCaller(c, testCaller)), "sort_order")
}

func TestQuestionHandler_AddResponse(t *testing.T) {
	stub := &stubQuestionService{
		addResponseFn: func(caller *domain.User, id string, in ports.AddResponseInput) (*domain.EnrichedQuestion, error) {
			if id != "q1" || in.Analyst != "Sarah" || in.ConfidenceScore == nil || *in.ConfidenceScore != 0.8 {
				t.Fatalf("unexpected response input: %s %+v", id, in)
			}
			q := &domain.EnrichedQuestion{AnalysisName: "Q1 review", UserName: caller.FullName}
			q.ID = id
			q.Status = domain.QuestionAnswered
			return q, nil
		},
	}
	handler := NewQuestionHandler(stub)

	c, rec := newTestContext(http.MethodPost, "/api/v1/market-research/questions/q1/responses",
		`{"analyst":"Sarah","response":"Fee income rose on higher card volumes.","confidence_score":0.8}`)
	c.SetParamNames("id")
	c.SetParamValues("q1")
	if err := handler.AddResponse(asCaller(c, testCaller)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	resp := decodeBody(t, rec)
	if resp["status"] != string(domain.QuestionAnswered) || resp["analysis_name"] != "Q1 review" {
		t.Fatalf("unexpected question: %+v", resp)
	}
}

func TestQuestionHandler_AddResponse_Validation(t *testing.T) {
	handler := NewQuestionHandler(&stubQuestionService{})

	c, _ := newTestContext(http.MethodPost, "/api/v1/market-research/questions/q1/responses",
		`{"analyst":"","response":"short","confidence_score":1.5}`)
	c.SetParamNames("id")
	c.SetParamValues("q1")
	requireFields(t, handler.AddResponse(asCaller(c, testCaller)), "analyst", "response", "confidence_score")
}

func TestQuestionHandler_BulkAction(t *testing.T) {
	tests := []struct {
		action  string
		message string
	}{
		{action: domain.BulkActionClose, message: "Successfully closed 2 questions"},
		{action: domain.BulkActionReopen, message: "Successfully reopened 2 questions"},
		{action: domain.BulkActionDelete, message: "Successfully deleted 2 questions"},
	}
	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			stub := &stubQuestionService{
				bulkFn: func(caller *domain.User, ids []string, action string) (*ports.BulkActionResult, error) {
					return &ports.BulkActionResult{Action: action, Affected: int64(len(ids))}, nil
				},
			}
			handler := NewQuestionHandler(stub)

			c, rec := newTestContext(http.MethodPost, "/api/v1/market-research/questions/bulk-action",
				`{"question_ids":["q1","q2"],"action":"`+tt.action+`"}`)
			if err := handler.BulkAction(asCaller(c, testCaller)); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			resp := decodeBody(t, rec)
			if resp["message"] != tt.message || resp["action"] != tt.action || resp["affected"] != float64(2) {
				t.Fatalf("unexpected response: %+v", resp)
			}
		})
	}
}

func TestQuestionHandler_BulkAction_EmptyIDs(t *testing.T) {
	handler := NewQuestionHandler(&stubQuestionService{})

	c, _ := newTestContext(http.MethodPost, "/api/v1/market-research/questions/bulk-action", `{"question_ids":[""],"action":"close"}`)
	requireFields(t, handler.BulkAction(asCaller(c, testCaller)), "question_ids[0]")
}

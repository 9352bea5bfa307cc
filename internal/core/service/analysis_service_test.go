package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/fpa-intel/fpa-api/internal/core/domain"
	"github.com/fpa-intel/fpa-api/internal/core/ports"
	"github.com/fpa-intel/fpa-api/internal/infrastructure/db/memory"
)

func createAnalysis(t *testing.T, svc *AnalysisService, userID, name string) *domain.Analysis {
	t.Helper()
	a, err := svc.Create(context.Background(), userID, ports.CreateAnalysisInput{
		Name:        name,
		Description: "desc",
		Period:      "Q1 2025",
	})
	if err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	return a
}

func TestAnalysisService_CreateUpdateScenario(t *testing.T) {
	store := memory.New()
	clock := newTestClock()
	svc := newAnalysisService(store, clock)
	ctx := context.Background()

	created, err := svc.Create(ctx, "u1", ports.CreateAnalysisInput{
		Name:        "Q1 Review",
		Description: "desc",
		Period:      "Q1 2025",
		Competitors: []string{"Bank X"},
		Status:      domain.AnalysisDraft,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.Status != domain.AnalysisDraft {
		t.Fatalf("unexpected created analysis: %+v", created)
	}
	if len(created.CompetitorData) != 0 || len(created.FinancialData) != 0 || len(created.AIInsights) != 0 {
		t.Fatalf("expected empty payloads, got %+v", created)
	}

	clock.advance(time.Minute)
	status := domain.AnalysisCompleted
	if _, err := svc.Update(ctx, created.ID, "u1", ports.UpdateAnalysisInput{Status: &status}); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := svc.Get(ctx, created.ID, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.AnalysisCompleted {
		t.Fatalf("expected completed, got %s", got.Status)
	}
	if !got.UpdatedAt.After(created.UpdatedAt) {
		t.Fatalf("expected updated_at %v after %v", got.UpdatedAt, created.UpdatedAt)
	}
	if got.Name != "Q1 Review" || len(got.Competitors) != 1 {
		t.Fatalf("partial update must keep other fields, got %+v", got)
	}
}

func TestAnalysisService_Create_Validation(t *testing.T) {
	svc := newAnalysisService(memory.New(), newTestClock())

	_, err := svc.Create(context.Background(), "u1", ports.CreateAnalysisInput{Name: "", Description: "d", Period: "p"})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Fields["name"] == "" {
		t.Fatalf("expected name validation error, got %v", err)
	}

	_, err = svc.Create(context.Background(), "u1", ports.CreateAnalysisInput{Name: "n", Description: "d", Period: "p", Status: "archived"})
	if !errors.As(err, &verr) || verr.Fields["status"] == "" {
		t.Fatalf("expected status validation error, got %v", err)
	}
}

func TestAnalysisService_OwnershipIsNotFound(t *testing.T) {
	store := memory.New()
	svc := newAnalysisService(store, newTestClock())
	ctx := context.Background()
	a := createAnalysis(t, svc, "owner", "Private")

	if _, err := svc.Get(ctx, a.ID, "intruder"); !errors.Is(err, domain.ErrAnalysisNotFound) {
		t.Fatalf("expected not found on get, got %v", err)
	}
	name := "Hijacked"
	if _, err := svc.Update(ctx, a.ID, "intruder", ports.UpdateAnalysisInput{Name: &name}); !errors.Is(err, domain.ErrAnalysisNotFound) {
		t.Fatalf("expected not found on update, got %v", err)
	}
	if err := svc.Delete(ctx, a.ID, "intruder"); !errors.Is(err, domain.ErrAnalysisNotFound) {
		t.Fatalf("expected not found on delete, got %v", err)
	}
	if _, err := svc.Get(ctx, a.ID, "owner"); err != nil {
		t.Fatalf("owner lost access: %v", err)
	}
}

func TestAnalysisService_ListPagination(t *testing.T) {
	store := memory.New()
	clock := newTestClock()
	svc := newAnalysisService(store, clock)
	ctx := context.Background()

	for i := 0; i < 23; i++ {
		createAnalysis(t, svc, "u1", fmt.Sprintf("Analysis %02d", i))
		if i%3 == 0 {
			clock.advance(time.Second)
		}
	}
	createAnalysis(t, svc, "u2", "Someone else")

	seen := map[string]bool{}
	var ordered []string
	for page := 1; ; page++ {
		res, err := svc.List(ctx, ports.ListAnalysesInput{UserID: "u1", Page: page, Size: 5, SortBy: "created_at", SortOrder: "desc"})
		if err != nil {
			t.Fatalf("list page %d: %v", page, err)
		}
		if res.Total != 23 || res.Pages != 5 {
			t.Fatalf("expected total 23 in 5 pages, got %d in %d", res.Total, res.Pages)
		}
		if len(res.Items) == 0 {
			break
		}
		for _, a := range res.Items {
			if seen[a.ID] {
				t.Fatalf("analysis %s returned twice", a.ID)
			}
			seen[a.ID] = true
			ordered = append(ordered, a.ID)
		}
	}
	if len(ordered) != 23 {
		t.Fatalf("expected 23 analyses across pages, got %d", len(ordered))
	}

	full, _ := svc.List(ctx, ports.ListAnalysesInput{UserID: "u1", Page: 1, Size: 100})
	for i, a := range full.Items {
		if ordered[i] != a.ID {
			t.Fatalf("position %d: pages disagree with full listing", i)
		}
	}
}

func TestAnalysisService_ListSortAndFilter(t *testing.T) {
	store := memory.New()
	svc := newAnalysisService(store, newTestClock())
	ctx := context.Background()

	for _, in := range []ports.CreateAnalysisInput{
		{Name: "zeta", Description: "retail", Period: "Q1", Status: domain.AnalysisDraft},
		{Name: "Alpha", Description: "corporate", Period: "Q2", Status: domain.AnalysisCompleted},
		{Name: "beta", Description: "Retail banking", Period: "Q3", Status: domain.AnalysisInProgress},
		{Name: "Gamma", Description: "other", Period: "Q4", Status: domain.AnalysisFailed},
	} {
		if _, err := svc.Create(ctx, "u1", in); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	byName, _ := svc.List(ctx, ports.ListAnalysesInput{UserID: "u1", SortBy: "name", SortOrder: "asc"})
	names := []string{"Alpha", "beta", "Gamma", "zeta"}
	for i, a := range byName.Items {
		if a.Name != names[i] {
			t.Fatalf("name sort position %d: expected %s, got %s", i, names[i], a.Name)
		}
	}

	byStatus, _ := svc.List(ctx, ports.ListAnalysesInput{UserID: "u1", SortBy: "status", SortOrder: "asc"})
	statuses := []domain.AnalysisStatus{domain.AnalysisCompleted, domain.AnalysisInProgress, domain.AnalysisDraft, domain.AnalysisFailed}
	for i, a := range byStatus.Items {
		if a.Status != statuses[i] {
			t.Fatalf("status sort position %d: expected %s, got %s", i, statuses[i], a.Status)
		}
	}

	search, _ := svc.List(ctx, ports.ListAnalysesInput{UserID: "u1", Search: "retail"})
	if search.Total != 2 {
		t.Fatalf("expected 2 search hits, got %d", search.Total)
	}

	filtered, _ := svc.List(ctx, ports.ListAnalysesInput{UserID: "u1", Status: "draft"})
	if filtered.Total != 1 || filtered.Items[0].Name != "zeta" {
		t.Fatalf("unexpected status filter result: %+v", filtered.Items)
	}

	var verr *domain.ValidationError
	if _, err := svc.List(ctx, ports.ListAnalysesInput{UserID: "u1", SortBy: "description"}); !errors.As(err, &verr) {
		t.Fatalf("expected sort_by validation error, got %v", err)
	}
	if _, err := svc.List(ctx, ports.ListAnalysesInput{UserID: "u1", Size: 101}); !errors.As(err, &verr) {
		t.Fatalf("expected size validation error, got %v", err)
	}
	if _, err := svc.List(ctx, ports.ListAnalysesInput{UserID: "u1", Page: -1}); !errors.As(err, &verr) {
		t.Fatalf("expected page validation error, got %v", err)
	}
	if _, err := svc.List(ctx, ports.ListAnalysesInput{UserID: "u1", Page: math.MaxInt, Size: 100}); !errors.As(err, &verr) || verr.Fields["page"] == "" {
		t.Fatalf("expected page overflow to be rejected, got %v", err)
	}
}

func TestAnalysisService_DeleteCascadesQuestions(t *testing.T) {
	store := memory.New()
	clock := newTestClock()
	svc := newAnalysisService(store, clock)
	questions := newQuestionService(store, clock)
	ctx := context.Background()
	caller := insertUser(t, store, "u1", "alice", domain.RoleAnalyst)

	target := createAnalysis(t, svc, caller.ID, "Target")
	keep := createAnalysis(t, svc, caller.ID, "Keep")
	for _, a := range []*domain.Analysis{target, target, target, keep} {
		_, err := questions.Create(ctx, caller, ports.CreateQuestionInput{
			AnalysisID: a.ID, Dashboard: "d", Report: "r", Question: "What happened this quarter?",
		})
		if err != nil {
			t.Fatalf("create question: %v", err)
		}
	}

	if err := svc.Delete(ctx, target.ID, caller.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	n, _ := store.Questions().Count(ctx, ports.Filter{Equals: map[string]any{"analysis_id": target.ID}})
	if n != 0 {
		t.Fatalf("expected no questions for deleted analysis, got %d", n)
	}
	n, _ = store.Questions().Count(ctx, ports.Filter{Equals: map[string]any{"analysis_id": keep.ID}})
	if n != 1 {
		t.Fatalf("expected other analysis questions kept, got %d", n)
	}
}

func TestAnalysisService_BulkDeleteIsAllOrNothing(t *testing.T) {
	store := memory.New()
	svc := newAnalysisService(store, newTestClock())
	ctx := context.Background()

	a := createAnalysis(t, svc, "u1", "A")
	b := createAnalysis(t, svc, "u1", "B")
	c := createAnalysis(t, svc, "u2", "C")

	if _, err := svc.BulkDelete(ctx, []string{a.ID, b.ID, c.ID}, "u1"); !errors.Is(err, domain.ErrAnalysesNotOwned) {
		t.Fatalf("expected ErrAnalysesNotOwned, got %v", err)
	}
	n, _ := store.Analyses().Count(ctx, ports.Filter{})
	if n != 3 {
		t.Fatalf("expected nothing deleted, %d analyses left", n)
	}

	deleted, err := svc.BulkDelete(ctx, []string{a.ID, b.ID, a.ID}, "u1")
	if err != nil {
		t.Fatalf("bulk delete: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("expected 2 deleted, got %d", deleted)
	}
	if _, err := svc.Get(ctx, c.ID, "u2"); err != nil {
		t.Fatalf("other user's analysis affected: %v", err)
	}
}

type recordingCache struct {
	ports.NopCache
	data    map[string][]byte
	deleted []string
}

func (c *recordingCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	b, ok := c.data[key]
	return b, ok, nil
}

func (c *recordingCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.data[key] = value
	return nil
}

func (c *recordingCache) Delete(_ context.Context, key string) error {
	delete(c.data, key)
	c.deleted = append(c.deleted, key)
	return nil
}

func TestAnalysisService_DashboardAndGenerate(t *testing.T) {
	store := memory.New()
	clock := newTestClock()
	cache := &recordingCache{data: map[string][]byte{}}
	svc := NewAnalysisService(store, cache, time.Hour, 100, zerolog.Nop())
	svc.now = clock.now
	ctx := context.Background()

	a := createAnalysis(t, svc, "u1", "Dash")
	err := store.Analyses().UpdateOne(ctx, ports.ByID(a.ID), ports.Patch{Set: map[string]any{
		"financial_data": map[string]any{"kpis": map[string]any{"lcr": 132}},
	}})
	if err != nil {
		t.Fatalf("seed financial data: %v", err)
	}

	dash, err := svc.Dashboard(ctx, a.ID, "u1")
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if dash.KPIs["lcr"] == nil {
		t.Fatalf("expected kpis section, got %+v", dash.KPIs)
	}
	if dash.IncomeStatement == nil || len(dash.IncomeStatement) != 0 {
		t.Fatalf("expected empty income statement, got %v", dash.IncomeStatement)
	}
	if _, ok := cache.data[dashboardKey(a.ID)]; !ok {
		t.Fatalf("expected dashboard to be cached")
	}

	if _, err := svc.Dashboard(ctx, a.ID, "u2"); !errors.Is(err, domain.ErrAnalysisNotFound) {
		t.Fatalf("expected not found for other user, got %v", err)
	}

	clock.advance(time.Minute)
	generated, err := svc.Generate(ctx, a.ID, "u1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if generated.Status != domain.AnalysisCompleted {
		t.Fatalf("expected completed, got %s", generated.Status)
	}
	if generated.AIInsights["summary"] == nil {
		t.Fatalf("expected insight summary, got %v", generated.AIInsights)
	}
	if _, ok := cache.data[dashboardKey(a.ID)]; ok {
		t.Fatalf("expected cached dashboard to be dropped after generate")
	}
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fpa-intel/fpa-api/internal/core/domain"
	"github.com/fpa-intel/fpa-api/internal/core/ports"
)

// Demo account created by SeedFixtures.
const (
	FixtureUsername = "devuser"
	FixtureEmail    = "dev@example.com"
	FixturePassword = "password123"
)

// SeedFixtures loads a demo admin with sample analyses and questions. It does
// nothing when the demo account already exists.
func SeedFixtures(ctx context.Context, store ports.Store, now time.Time) (bool, error) {
	n, err := store.Users().Count(ctx, ports.Filter{Equals: map[string]any{"email": FixtureEmail}})
	if err != nil {
		return false, fmt.Errorf("check fixtures: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	hash, err := HashPassword(FixturePassword)
	if err != nil {
		return false, fmt.Errorf("hash fixture password: %w", err)
	}
	now = now.UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     FixtureUsername,
		Email:        FixtureEmail,
		FullName:     "Development User",
		Role:         domain.RoleAdmin,
		IsActive:     true,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := store.Users().Insert(ctx, user); err != nil {
		return false, fmt.Errorf("insert fixture user: %w", err)
	}

	analyses := fixtureAnalyses(user.ID, now)
	for _, a := range analyses {
		if _, err := store.Analyses().Insert(ctx, a); err != nil {
			return false, fmt.Errorf("insert fixture analysis: %w", err)
		}
	}
	for _, q := range fixtureQuestions(user.ID, analyses, now) {
		if _, err := store.Questions().Insert(ctx, q); err != nil {
			return false, fmt.Errorf("insert fixture question: %w", err)
		}
	}
	return true, nil
}

func fixtureAnalyses(userID string, now time.Time) []*domain.Analysis {
	type seed struct {
		name, description, period string
		competitors               []string
		status                    domain.AnalysisStatus
		age                       time.Duration
	}
	seeds := []seed{
		{"Q4 2024 Banking Performance Analysis", "Comprehensive quarterly analysis of banking sector performance with competitive benchmarking", "Q4 2024", []string{"Bank of America", "Wells Fargo", "JPMorgan Chase"}, domain.AnalysisCompleted, 30 * 24 * time.Hour},
		{"Digital Banking Transformation Study", "Analysis of digital banking trends and competitive positioning in the fintech space", "Q1 2024", []string{"Citibank", "Goldman Sachs", "Morgan Stanley"}, domain.AnalysisInProgress, 14 * 24 * time.Hour},
		{"Risk Management Assessment", "Credit risk and operational risk analysis across major banking institutions", "Q3 2024", []string{"US Bank", "PNC Bank", "Capital One"}, domain.AnalysisDraft, 40 * 24 * time.Hour},
		{"Market Share Analysis 2024", "Regional market share analysis and growth opportunities identification", "Full Year 2024", []string{"Chase", "Bank of America", "Wells Fargo"}, domain.AnalysisCompleted, 20 * 24 * time.Hour},
	}

	out := make([]*domain.Analysis, 0, len(seeds))
	for i, s := range seeds {
		created := now.Add(-s.age)
		a := &domain.Analysis{
			ID:             uuid.NewString(),
			Name:           s.name,
			Description:    s.description,
			Period:         s.period,
			Competitors:    s.competitors,
			Status:         s.status,
			UserID:         userID,
			CreatedAt:      created,
			UpdatedAt:      created.Add(5 * 24 * time.Hour),
			CompetitorData: []domain.CompetitorData{},
			FinancialData:  map[string]any{},
			AIInsights:     map[string]any{},
			FileIDs:        []string{},
		}
		if i == 0 {
			a.FinancialData = fixtureDashboard()
		}
		out = append(out, a)
	}
	return out
}

func fixtureDashboard() map[string]any {
	return map[string]any{
		"income_statement": map[string]any{
			"revenue_growth": []map[string]any{
				{"quarter": "Q1 2023", "our_bank": 4.2, "bank_of_america": 4.8, "wells_fargo": 4.1},
				{"quarter": "Q2 2023", "our_bank": 4.5, "bank_of_america": 4.9, "wells_fargo": 4.3},
				{"quarter": "Q3 2023", "our_bank": 4.8, "bank_of_america": 5.1, "wells_fargo": 4.5},
				{"quarter": "Q4 2023", "our_bank": 5.1, "bank_of_america": 5.3, "wells_fargo": 4.7},
			},
			"net_interest_margin": 5.6,
			"efficiency_ratio":    62,
		},
		"balance_sheet": map[string]any{
			"asset_growth":    8.2,
			"capital_ratio":   14.8,
			"loan_to_deposit": 78,
			"deposit_growth":  5.4,
		},
		"cash_flow": map[string]any{
			"operating_cash_flow":  1250.5,
			"investment_cash_flow": -320.8,
			"financing_cash_flow":  -180.2,
		},
		"kpis": map[string]any{
			"npl_ratio":                 0.7,
			"customer_acquisition_cost": 225,
			"lcr":                       132,
			"customer_growth":           7.8,
		},
		"mda": map[string]any{
			"strategic_priorities": []string{"Digital transformation", "Market expansion", "Risk management"},
			"risk_factors":         []string{"Credit risk", "Interest rate risk", "Regulatory compliance"},
			"outlook":              "Positive growth expected in Q1 2025",
		},
	}
}

func fixtureQuestions(userID string, analyses []*domain.Analysis, now time.Time) []*domain.Question {
	score := func(v float64) *float64 { return &v }
	type seed struct {
		analysis          int
		dashboard, report string
		question          string
		priority          int
		tags              []string
		response          *domain.Response
	}
	seeds := []seed{
		{0, "Financial Performance", "Income Statement", "What are the key revenue drivers for our competitors in Q4 2024?", 1, []string{"revenue", "Q4", "competitors"},
			&domain.Response{Analyst: "Sarah Johnson", Response: "Key revenue drivers include digital banking fees, loan origination volumes and wealth management services. Investment banking revenues declined due to market volatility.", ConfidenceScore: score(0.85)}},
		{1, "Risk Management", "Credit Risk Assessment", "How do competitor credit loss provisions compare to industry benchmarks?", 2, []string{"credit-risk", "provisions", "benchmarks"}, nil},
		{0, "Market Trends", "Competitive Analysis", "What digital banking initiatives are our competitors prioritizing?", 1, []string{"digital", "AI", "mobile", "crypto"},
			&domain.Response{Analyst: "Mike Analytics", Response: "Major competitors are focusing on AI-powered customer service, mobile-first account opening and cryptocurrency trading platforms.", ConfidenceScore: score(0.78)}},
		{2, "Operational Metrics", "Efficiency Analysis", "How do operational efficiency ratios compare across major banks?", 0, []string{"efficiency", "operations", "ratios"}, nil},
		{3, "Market Share", "Regional Analysis", "Which regions show the highest growth potential for banking services?", 1, []string{"regions", "growth", "millennials"},
			&domain.Response{Analyst: "Emma Insights", Response: "Southeast and Southwest regions show the strongest growth potential, driven by urban millennial adoption of digital banking.", ConfidenceScore: score(0.92)}},
	}

	out := make([]*domain.Question, 0, len(seeds))
	for i, s := range seeds {
		created := now.Add(-time.Duration(10-i) * 24 * time.Hour)
		q := &domain.Question{
			ID:         uuid.NewString(),
			AnalysisID: analyses[s.analysis].ID,
			Dashboard:  s.dashboard,
			Report:     s.report,
			Question:   s.question,
			Status:     domain.QuestionPending,
			UserID:     userID,
			CreatedAt:  created,
			UpdatedAt:  created,
			Responses:  []domain.Response{},
			Priority:   s.priority,
			Tags:       s.tags,
		}
		if s.response != nil {
			r := *s.response
			r.Timestamp = created.Add(18 * time.Hour)
			r.Attachments = []string{}
			q.Responses = append(q.Responses, r)
			q.Status = domain.QuestionAnswered
			q.UpdatedAt = r.Timestamp
		}
		out = append(out, q)
	}
	return out
}

package domain

import "time"

// AnalysisStatus represents the lifecycle state of an analysis.
type AnalysisStatus string

const (
	AnalysisDraft      AnalysisStatus = "draft"
	AnalysisInProgress AnalysisStatus = "in-progress"
	AnalysisCompleted  AnalysisStatus = "completed"
	AnalysisFailed     AnalysisStatus = "failed"
)

// AnalysisStatusRank is the ascending sort order for analysis status.
// Values not listed sort after every listed one.
var AnalysisStatusRank = []string{
	string(AnalysisCompleted),
	string(AnalysisInProgress),
	string(AnalysisDraft),
}

// Valid reports whether s is a known analysis status.
func (s AnalysisStatus) Valid() bool {
	switch s {
	case AnalysisDraft, AnalysisInProgress, AnalysisCompleted, AnalysisFailed:
		return true
	}
	return false
}

// CompetitorData holds computed figures for one competitor.
type CompetitorData struct {
	Name   string         `json:"name" bson:"name"`
	Ticker string         `json:"ticker,omitempty" bson:"ticker,omitempty"`
	Data   map[string]any `json:"data" bson:"data"`
}

// Analysis is a competitive banking research project owned by one user.
//
// FinancialData and AIInsights are open maps: the service stores and returns
// them but never interprets their contents.
type Analysis struct {
	ID             string           `json:"id" bson:"_id"`
	Name           string           `json:"name" bson:"name"`
	Description    string           `json:"description" bson:"description"`
	Period         string           `json:"period" bson:"period"`
	Competitors    []string         `json:"competitors" bson:"competitors"`
	Status         AnalysisStatus   `json:"status" bson:"status"`
	UserID         string           `json:"user_id" bson:"user_id"`
	CreatedAt      time.Time        `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at" bson:"updated_at"`
	CompetitorData []CompetitorData `json:"competitor_data" bson:"competitor_data"`
	FinancialData  map[string]any   `json:"financial_data" bson:"financial_data"`
	AIInsights     map[string]any   `json:"ai_insights" bson:"ai_insights"`
	FileIDs        []string         `json:"file_ids" bson:"file_ids"`
}

// DashboardData is the per-analysis dashboard snapshot.
type DashboardData struct {
	IncomeStatement map[string]any `json:"income_statement"`
	BalanceSheet    map[string]any `json:"balance_sheet"`
	CashFlow        map[string]any `json:"cash_flow"`
	KPIs            map[string]any `json:"kpis"`
	MDA             map[string]any `json:"mda"`
}

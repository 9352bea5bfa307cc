package domain

import "time"

// QuestionStatus represents the lifecycle state of a market research question.
type QuestionStatus string

const (
	QuestionPending  QuestionStatus = "pending"
	QuestionAnswered QuestionStatus = "answered"
	QuestionClosed   QuestionStatus = "closed"
)

// QuestionStatusRank is the ascending sort order for question status.
var QuestionStatusRank = []string{
	string(QuestionPending),
	string(QuestionAnswered),
	string(QuestionClosed),
}

// Valid reports whether s is a known question status.
func (s QuestionStatus) Valid() bool {
	switch s {
	case QuestionPending, QuestionAnswered, QuestionClosed:
		return true
	}
	return false
}

// Bulk actions accepted on a set of questions.
const (
	BulkActionDelete = "delete"
	BulkActionClose  = "close"
	BulkActionReopen = "reopen"
)

// Response is an analyst answer embedded in a question. Responses are
// append-only.
type Response struct {
	Analyst         string    `json:"analyst" bson:"analyst"`
	Response        string    `json:"response" bson:"response"`
	Timestamp       time.Time `json:"timestamp" bson:"timestamp"`
	Attachments     []string  `json:"attachments" bson:"attachments"`
	ConfidenceScore *float64  `json:"confidence_score,omitempty" bson:"confidence_score,omitempty"`
}

// Question is a market research question attached to one analysis.
type Question struct {
	ID         string         `json:"id" bson:"_id"`
	AnalysisID string         `json:"analysis_id" bson:"analysis_id"`
	Dashboard  string         `json:"dashboard" bson:"dashboard"`
	Report     string         `json:"report" bson:"report"`
	Question   string         `json:"question" bson:"question"`
	Status     QuestionStatus `json:"status" bson:"status"`
	UserID     string         `json:"user_id" bson:"user_id"`
	CreatedAt  time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at" bson:"updated_at"`
	Responses  []Response     `json:"responses" bson:"responses"`
	AISummary  *string        `json:"ai_summary,omitempty" bson:"ai_summary,omitempty"`
	Priority   int            `json:"priority" bson:"priority"`
	Tags       []string       `json:"tags" bson:"tags"`
}

// EnrichedQuestion is a question joined at read time with display names.
// The extra fields are never persisted.
type EnrichedQuestion struct {
	Question
	AnalysisName string `json:"analysis_name"`
	UserName     string `json:"user_name"`
}

// AnalystStat summarises the responses written under one analyst name.
type AnalystStat struct {
	Name      string  `json:"name"`
	Responses int     `json:"responses"`
	AvgScore  float64 `json:"avg_score"`
}

// TopicStat counts how many questions carry a topic.
type TopicStat struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

// ResearchMetrics aggregates a user's questions.
type ResearchMetrics struct {
	TotalQuestions       int           `json:"total_questions"`
	PendingQuestions     int           `json:"pending_questions"`
	AnsweredQuestions    int           `json:"answered_questions"`
	ClosedQuestions      int           `json:"closed_questions"`
	AvgResponseTimeHours float64       `json:"avg_response_time_hours"`
	TopAnalysts          []AnalystStat `json:"top_analysts"`
	PopularTopics        []TopicStat   `json:"popular_topics"`
}

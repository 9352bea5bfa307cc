package ports

import (
	"context"
	"errors"
)

// Collection names shared by every store backend.
const (
	CollectionUsers     = "users"
	CollectionAnalyses  = "analyses"
	CollectionQuestions = "market_questions"
	CollectionFiles     = "files"
)

var (
	// ErrNoDocument is returned by FindOne/UpdateOne/DeleteOne when nothing matches.
	ErrNoDocument = errors.New("store: no document matches filter")
	// ErrDuplicate is returned when a write violates a unique field.
	ErrDuplicate = errors.New("store: duplicate key")
)

// Search is a case-insensitive substring match of Term against any of Fields.
type Search struct {
	Term   string
	Fields []string
}

// Filter selects documents. All populated clauses are combined with AND;
// Search fields are combined with OR among themselves.
type Filter struct {
	Equals   map[string]any
	In       map[string][]string
	NotEqual map[string]any
	Search   *Search
}

// ByID is shorthand for an _id equality filter.
func ByID(id string) Filter {
	return Filter{Equals: map[string]any{"_id": id}}
}

// Owned matches id AND user_id, the standard ownership filter.
func Owned(id, userID string) Filter {
	return Filter{Equals: map[string]any{"_id": id, "user_id": userID}}
}

// Sort orders results by one field. When Rank is set, values are ordered by
// their index in Rank and unlisted values sort last. Fold compares strings
// case-insensitively. Ties always break on _id ascending.
type Sort struct {
	Field string
	Desc  bool
	Rank  []string
	Fold  bool
}

// Page bounds a FindMany result. Limit 0 means no limit.
type Page struct {
	Skip  int64
	Limit int64
}

// Patch updates top-level fields. Push appends one value to an array field,
// Pull removes every element equal to the value.
type Patch struct {
	Set  map[string]any
	Push map[string]any
	Pull map[string]any
}

// Collection is the persistence contract services depend on. T is a bson
// tagged domain type whose _id is a string.
type Collection[T any] interface {
	Insert(ctx context.Context, doc *T) (string, error)
	FindOne(ctx context.Context, filter Filter) (*T, error)
	FindMany(ctx context.Context, filter Filter, sort *Sort, page Page) ([]*T, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	UpdateOne(ctx context.Context, filter Filter, patch Patch) error
	UpdateMany(ctx context.Context, filter Filter, patch Patch) (int64, error)
	DeleteOne(ctx context.Context, filter Filter) error
	DeleteMany(ctx context.Context, filter Filter) (int64, error)
}

// Package memory is the in-process fixture backend of the resource store.
//
// Documents are kept as BSON maps produced by a marshal round-trip of the
// domain types, so field names, value types and ordering follow the same rules
// as the MongoDB backend.
package memory

import (
	"context"

	"github.com/fpa-intel/fpa-api/internal/core/domain"
	"github.com/fpa-intel/fpa-api/internal/core/ports"
)

// Mode is reported by Store.Mode.
const Mode = "fixture"

// Store holds every collection in memory for the lifetime of the process.
type Store struct {
	users     *collection[domain.User]
	analyses  *collection[domain.Analysis]
	questions *collection[domain.Question]
	files     *collection[domain.FileRecord]
}

var _ ports.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		users:     newCollection[domain.User](ports.CollectionUsers, "email", "username"),
		analyses:  newCollection[domain.Analysis](ports.CollectionAnalyses),
		questions: newCollection[domain.Question](ports.CollectionQuestions),
		files:     newCollection[domain.FileRecord](ports.CollectionFiles),
	}
}

func (s *Store) Users() ports.Collection[domain.User] { return s.users }
func (s *Store) Analyses() ports.Collection[domain.Analysis] { return s.analyses }
func (s *Store) Questions() ports.Collection[domain.Question] { return s.questions }
func (s *Store) Files() ports.Collection[domain.FileRecord] { return s.files }
func (s *Store) Mode() string { return Mode }
func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close(context.Context) error { return nil }

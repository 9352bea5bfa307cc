package ports

import (
	"context"

	"github.com/fpa-intel/fpa-api/internal/core/domain"
)

// Store bundles the collections of one backend. Exactly one implementation is
// selected at process start.
type Store interface {
	Users() Collection[domain.User]
	Analyses() Collection[domain.Analysis]
	Questions() Collection[domain.Question]
	Files() Collection[domain.FileRecord]

	// Mode names the backend for health and banner output.
	Mode() string
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

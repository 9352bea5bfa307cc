package ports

import (
	"context"
	"errors"
)

// ErrContentMissing is returned by ContentStorage.Read when nothing is stored
// under the name.
var ErrContentMissing = errors.New("content missing")

// ContentStorage persists uploaded bytes keyed by a server-generated name.
type ContentStorage interface {
	Write(ctx context.Context, name, contentType string, data []byte) error
	Read(ctx context.Context, name string) ([]byte, error)
	Delete(ctx context.Context, name string) error
	// Locate returns the backend-specific location recorded on the file
	// metadata. It is never shown to clients.
	Locate(name string) string
	Ping(ctx context.Context) error
}

package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/fpa-intel/fpa-api/internal/core/ports"
)

func TestLocalStore_WriteReadDelete(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocal(filepath.Join(dir, "uploads"))
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	ctx := context.Background()

	if err := s.Write(ctx, "a.csv", "text/csv", []byte("x,y\n1,2\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := s.Read(ctx, "a.csv")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "x,y\n1,2\n" {
		t.Fatalf("unexpected content %q", data)
	}
	if got := s.Locate("a.csv"); got != filepath.Join(dir, "uploads", "a.csv") {
		t.Fatalf("unexpected location %s", got)
	}

	if err := s.Delete(ctx, "a.csv"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Read(ctx, "a.csv"); !errors.Is(err, ports.ErrContentMissing) {
		t.Fatalf("expected ErrContentMissing after delete, got %v", err)
	}
	if err := s.Delete(ctx, "a.csv"); !errors.Is(err, ports.ErrContentMissing) {
		t.Fatalf("expected ErrContentMissing on second delete, got %v", err)
	}
}

func TestLocalStore_RejectsPathNames(t *testing.T) {
	s, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	for _, name := range []string{"", "..", "../escape", "nested/file"} {
		if err := s.Write(context.Background(), name, "text/csv", []byte("x")); err == nil {
			t.Fatalf("expected %q to be rejected", name)
		}
	}
}

func TestLocalStore_Ping(t *testing.T) {
	s, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

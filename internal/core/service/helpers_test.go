package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/fpa-intel/fpa-api/internal/core/domain"
	"github.com/fpa-intel/fpa-api/internal/infrastructure/db/memory"
)

type testClock struct {
	t time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) now() time.Time { return c.t }

func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

// insertUser stores a user directly, bypassing registration rules.
func insertUser(t *testing.T, store *memory.Store, id, username, role string) *domain.User {
	t.Helper()
	u := &domain.User{
		ID:       id,
		Username: username,
		Email:    username + "@example.com",
		FullName: "User " + username,
		Role:     role,
		IsActive: true,
	}
	if _, err := store.Users().Insert(context.Background(), u); err != nil {
		t.Fatalf("insert user %s: %v", id, err)
	}
	return u
}

func newAnalysisService(store *memory.Store, clock *testClock) *AnalysisService {
	svc := NewAnalysisService(store, nil, time.Hour, 100, zerolog.Nop())
	svc.now = clock.now
	return svc
}

func newQuestionService(store *memory.Store, clock *testClock) *QuestionService {
	svc := NewQuestionService(store, 100, zerolog.Nop())
	svc.now = clock.now
	return svc
}

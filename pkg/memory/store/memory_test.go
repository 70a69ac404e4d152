package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/easyops/agentmem-go/pkg/core/message"
	"github.com/easyops/agentmem-go/pkg/memory/store"
)

func mustTurn(t *testing.T, role message.Role, content string) message.Turn {
	t.Helper()
	turn, err := message.NewTurn(role, content)
	if err != nil {
		t.Fatalf("failed to create turn: %v", err)
	}
	return turn
}

func TestMemoryStore_AppendAndReadTurns(t *testing.T) {
	s := store.NewMemoryTranscriptStore()
	ctx := context.Background()

	a := mustTurn(t, message.RoleUser, "first")
	b := mustTurn(t, message.RoleAssistant, "second")

	if err := s.AppendTurn(ctx, "s1", a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.AppendTurn(ctx, "s1", b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	turns, err := s.ReadTurns(ctx, "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[0].ID != a.ID || turns[1].ID != b.ID {
		t.Fatal("expected turns in append order")
	}
}

func TestMemoryStore_SessionsIsolated(t *testing.T) {
	s := store.NewMemoryTranscriptStore()
	ctx := context.Background()

	_ = s.AppendTurn(ctx, "s1", mustTurn(t, message.RoleUser, "one"))
	_ = s.AppendTurn(ctx, "s2", mustTurn(t, message.RoleUser, "two"))

	turns, _ := s.ReadTurns(ctx, "s1")
	if len(turns) != 1 || turns[0].Content != "one" {
		t.Fatalf("expected only session s1 turns, got %+v", turns)
	}
}

func TestMemoryStore_AppendEmptySessionID(t *testing.T) {
	s := store.NewMemoryTranscriptStore()
	ctx := context.Background()

	err := s.AppendTurn(ctx, "", mustTurn(t, message.RoleUser, "x"))
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestMemoryStore_AppendCompaction(t *testing.T) {
	s := store.NewMemoryTranscriptStore()
	ctx := context.Background()

	event := store.CompactionEvent{
		ID:             "evt-1",
		Turns:          []message.Turn{mustTurn(t, message.RoleUser, "folded")},
		NewSummary:     "summary",
		SummaryVersion: 1,
	}
	if err := s.AppendCompaction(ctx, "s1", event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	events, err := s.ReadCompactions(ctx, "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 || events[0].ID != "evt-1" {
		t.Fatalf("expected the archived event, got %+v", events)
	}
}

func TestMemoryStore_Search(t *testing.T) {
	s := store.NewMemoryTranscriptStore()
	ctx := context.Background()

	_ = s.AppendTurn(ctx, "s1", mustTurn(t, message.RoleUser, "the wall is load-bearing"))
	_ = s.AppendTurn(ctx, "s1", mustTurn(t, message.RoleAssistant, "keep the wall, wall stays"))
	_ = s.AppendTurn(ctx, "s1", mustTurn(t, message.RoleUser, "budget is 20k"))

	hits, err := s.Search(ctx, "s1", "wall", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	// 出现两次的轮次应排在前面
	if hits[0].Score <= hits[1].Score {
		t.Fatalf("expected descending scores, got %v then %v", hits[0].Score, hits[1].Score)
	}
}

func TestMemoryStore_SearchTopKCut(t *testing.T) {
	s := store.NewMemoryTranscriptStore()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_ = s.AppendTurn(ctx, "s1", mustTurn(t, message.RoleUser, "kitchen plans"))
	}

	hits, err := s.Search(ctx, "s1", "kitchen", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected topK=2 hits, got %d", len(hits))
	}
}

func TestMemoryStore_SearchNoMatch(t *testing.T) {
	s := store.NewMemoryTranscriptStore()
	ctx := context.Background()

	_ = s.AppendTurn(ctx, "s1", mustTurn(t, message.RoleUser, "hello"))

	hits, err := s.Search(ctx, "s1", "zebra", 5)
	if err != nil {
		t.Fatalf("expected no error on miss, got %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("expected no hits, got %d", len(hits))
	}
}

func TestMemoryStore_SearchMissingSession(t *testing.T) {
	s := store.NewMemoryTranscriptStore()

	hits, err := s.Search(context.Background(), "nope", "anything", 5)
	if err != nil {
		t.Fatalf("expected no error on missing session, got %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("expected no hits, got %d", len(hits))
	}
}

func TestMemoryStore_SearchEmptyQueryOrZeroTopK(t *testing.T) {
	s := store.NewMemoryTranscriptStore()
	ctx := context.Background()
	_ = s.AppendTurn(ctx, "s1", mustTurn(t, message.RoleUser, "hello"))

	if hits, _ := s.Search(ctx, "s1", "", 5); len(hits) != 0 {
		t.Fatalf("expected no hits for empty query, got %d", len(hits))
	}
	if hits, _ := s.Search(ctx, "s1", "hello", 0); len(hits) != 0 {
		t.Fatalf("expected no hits for topK=0, got %d", len(hits))
	}
}

func TestMemoryStore_Closed(t *testing.T) {
	s := store.NewMemoryTranscriptStore()
	ctx := context.Background()

	if err := s.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := s.AppendTurn(ctx, "s1", mustTurn(t, message.RoleUser, "late"))
	if !errors.Is(err, store.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

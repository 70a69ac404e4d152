package memory_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/easyops/agentmem-go/pkg/core/message"
	"github.com/easyops/agentmem-go/pkg/memory"
)

func newBuffer(t *testing.T, opts ...memory.Option) *memory.ContextBuffer {
	t.Helper()
	cfg := memory.DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("invalid test config: %v", err)
	}
	return memory.NewContextBuffer("test-session", cfg)
}

func TestContextBuffer_AddTurnPreservesOrder(t *testing.T) {
	b := newBuffer(t)

	contents := []string{"one", "two", "three"}
	for _, c := range contents {
		if _, err := b.AddTurn(message.RoleUser, c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	turns := b.ActiveTurns()
	if len(turns) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(turns))
	}
	for i, c := range contents {
		if turns[i].Content != c {
			t.Fatalf("expected turn %d content %q, got %q", i, c, turns[i].Content)
		}
	}
}

func TestContextBuffer_AddTurnInvalidRole(t *testing.T) {
	b := newBuffer(t)

	_, err := b.AddTurn("narrator", "content")
	if !errors.Is(err, memory.ErrInvalidTurn) {
		t.Fatalf("expected ErrInvalidTurn, got %v", err)
	}
	if !errors.Is(err, message.ErrInvalidRole) {
		t.Fatalf("expected cause ErrInvalidRole, got %v", err)
	}
	if b.TurnCount() != 0 {
		t.Fatal("expected buffer unchanged after rejected turn")
	}
}

func TestContextBuffer_AddTurnEmptyContent(t *testing.T) {
	b := newBuffer(t)

	_, err := b.AddTurn(message.RoleUser, "   ")
	if !errors.Is(err, memory.ErrInvalidTurn) {
		t.Fatalf("expected ErrInvalidTurn, got %v", err)
	}
	if b.TurnCount() != 0 {
		t.Fatal("expected buffer unchanged after rejected turn")
	}
}

func TestContextBuffer_NeedsCompactionTurnBoundary(t *testing.T) {
	b := newBuffer(t, memory.WithMaxTurns(2), memory.WithMaxTokens(100000))

	_, _ = b.AddTurn(message.RoleUser, "a")
	_, _ = b.AddTurn(message.RoleAssistant, "b")
	if b.NeedsCompaction() {
		t.Fatal("expected no compaction at exactly max_turns")
	}

	_, _ = b.AddTurn(message.RoleUser, "c")
	if !b.NeedsCompaction() {
		t.Fatal("expected compaction at max_turns + 1")
	}
}

func TestContextBuffer_NeedsCompactionTokenThreshold(t *testing.T) {
	b := newBuffer(t, memory.WithMaxTurns(100), memory.WithMaxTokens(10))

	// 40 字符 ≈ 10 token，恰好处于上限
	_, _ = b.AddTurn(message.RoleUser, strings.Repeat("x", 40))
	if b.NeedsCompaction() {
		t.Fatal("expected no compaction at exactly max_tokens")
	}

	_, _ = b.AddTurn(message.RoleUser, "y")
	if !b.NeedsCompaction() {
		t.Fatal("expected compaction above max_tokens")
	}
}

func TestContextBuffer_EstimatedTokens(t *testing.T) {
	b := newBuffer(t)

	if b.EstimatedTokens() != 0 {
		t.Fatalf("expected 0 tokens for empty buffer, got %d", b.EstimatedTokens())
	}

	turn, _ := b.AddTurn(message.RoleUser, "abcdefgh")
	if b.EstimatedTokens() != turn.TokenEstimate {
		t.Fatalf("expected %d tokens, got %d", turn.TokenEstimate, b.EstimatedTokens())
	}
}

func TestContextBuffer_ActiveTurnsReturnsCopy(t *testing.T) {
	b := newBuffer(t)
	_, _ = b.AddTurn(message.RoleUser, "original")

	turns := b.ActiveTurns()
	turns[0].Content = "mutated"

	if b.ActiveTurns()[0].Content != "original" {
		t.Fatal("expected internal state unaffected by mutating the returned slice")
	}
}

func TestContextBuffer_InitialState(t *testing.T) {
	b := newBuffer(t)

	if b.SessionID() != "test-session" {
		t.Fatalf("expected session id preserved, got %q", b.SessionID())
	}
	if b.RollingSummary() != "" {
		t.Fatalf("expected empty initial summary, got %q", b.RollingSummary())
	}
	if b.SummaryVersion() != 0 {
		t.Fatalf("expected initial summary version 0, got %d", b.SummaryVersion())
	}
}

func TestConfig_Validate(t *testing.T) {
	cases := []struct {
		name string
		cfg  memory.Config
		want error
	}{
		{"zero max turns", memory.Config{MaxTurns: 0, MaxTokens: 1}, memory.ErrInvalidMaxTurns},
		{"zero max tokens", memory.Config{MaxTurns: 1, MaxTokens: 0}, memory.ErrInvalidMaxTokens},
		{"negative top k", memory.Config{MaxTurns: 1, MaxTokens: 1, SearchTopK: -1}, memory.ErrInvalidSearchTopK},
		{"negative summary cap", memory.Config{MaxTurns: 1, MaxTokens: 1, SummaryMaxChars: -1}, memory.ErrInvalidSummaryMaxChars},
	}

	for _, c := range cases {
		if err := c.cfg.Validate(); !errors.Is(err, c.want) {
			t.Fatalf("%s: expected %v, got %v", c.name, c.want, err)
		}
	}

	if err := memory.DefaultConfig().Validate(); err != nil {
		t.Fatalf("expected default config to be valid, got %v", err)
	}
}

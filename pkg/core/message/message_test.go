package message_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/easyops/agentmem-go/pkg/core/message"
)

func TestRole_IsValid(t *testing.T) {
	valid := []message.Role{message.RoleSystem, message.RoleUser, message.RoleAssistant}
	for _, r := range valid {
		if !r.IsValid() {
			t.Fatalf("expected role %q to be valid", r)
		}
	}

	invalid := []message.Role{"", "tool", "USER", "narrator"}
	for _, r := range invalid {
		if r.IsValid() {
			t.Fatalf("expected role %q to be invalid", r)
		}
	}
}

func TestNewTurn(t *testing.T) {
	turn, err := message.NewTurn(message.RoleUser, "hello world")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if turn.ID == "" {
		t.Fatal("expected non-empty turn ID")
	}
	if turn.Role != message.RoleUser {
		t.Fatalf("expected role user, got %q", turn.Role)
	}
	if turn.Content != "hello world" {
		t.Fatalf("expected content preserved, got %q", turn.Content)
	}
	if turn.TokenEstimate != message.EstimateTokens("hello world") {
		t.Fatalf("expected token estimate %d, got %d",
			message.EstimateTokens("hello world"), turn.TokenEstimate)
	}
	if turn.Timestamp.IsZero() {
		t.Fatal("expected non-zero timestamp")
	}
}

func TestNewTurn_InvalidRole(t *testing.T) {
	_, err := message.NewTurn("narrator", "content")
	if !errors.Is(err, message.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestNewTurn_EmptyContent(t *testing.T) {
	for _, content := range []string{"", "   ", "\n\t"} {
		_, err := message.NewTurn(message.RoleUser, content)
		if !errors.Is(err, message.ErrEmptyContent) {
			t.Fatalf("expected ErrEmptyContent for %q, got %v", content, err)
		}
	}
}

func TestNewTurn_UniqueIDs(t *testing.T) {
	a, _ := message.NewTurn(message.RoleUser, "same content")
	b, _ := message.NewTurn(message.RoleUser, "same content")
	if a.ID == b.ID {
		t.Fatal("expected distinct IDs for distinct turns")
	}
}

func TestMessageConstructors(t *testing.T) {
	if m := message.NewSystemMessage("s"); m.Role != message.RoleSystem || m.Content != "s" {
		t.Fatalf("unexpected system message: %+v", m)
	}
	if m := message.NewUserMessage("u"); m.Role != message.RoleUser || m.Content != "u" {
		t.Fatalf("unexpected user message: %+v", m)
	}
	if m := message.NewAssistantMessage("a"); m.Role != message.RoleAssistant || m.Content != "a" {
		t.Fatalf("unexpected assistant message: %+v", m)
	}
}

func TestRenderTranscript(t *testing.T) {
	u, _ := message.NewTurn(message.RoleUser, "question?")
	a, _ := message.NewTurn(message.RoleAssistant, "answer.")

	got := message.RenderTranscript([]message.Turn{u, a})
	want := "user: question?\nassistant: answer."
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestRenderTranscript_Empty(t *testing.T) {
	if got := message.RenderTranscript(nil); got != "" {
		t.Fatalf("expected empty transcript, got %q", got)
	}
}

func TestRenderTranscript_TrimsContent(t *testing.T) {
	u, _ := message.NewTurn(message.RoleUser, "  padded  ")
	got := message.RenderTranscript([]message.Turn{u})
	if strings.Contains(got, "  padded") {
		t.Fatalf("expected trimmed content, got %q", got)
	}
	if got != "user: padded" {
		t.Fatalf("expected %q, got %q", "user: padded", got)
	}
}

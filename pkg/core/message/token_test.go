package message_test

import (
	"testing"

	"github.com/easyops/agentmem-go/pkg/core/message"
)

func TestEstimateTokens(t *testing.T) {
	cases := []struct {
		text string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"abcd", 1},
		{"abcde", 2},
		{"abcdefgh", 2},
		{"abcdefghi", 3},
	}

	for _, c := range cases {
		if got := message.EstimateTokens(c.text); got != c.want {
			t.Fatalf("EstimateTokens(%q): expected %d, got %d", c.text, c.want, got)
		}
	}
}

func TestEstimateTurns(t *testing.T) {
	a, _ := message.NewTurn(message.RoleUser, "abcd")     // 1
	b, _ := message.NewTurn(message.RoleAssistant, "abcde") // 2

	if got := message.EstimateTurns([]message.Turn{a, b}); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
	if got := message.EstimateTurns(nil); got != 0 {
		t.Fatalf("expected 0 for empty slice, got %d", got)
	}
}

func TestEstimatedCounter_Count(t *testing.T) {
	counter := message.NewEstimatedCounter()
	if got := counter.Count("abcdefgh"); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
}

func TestEstimatedCounter_CountMessages(t *testing.T) {
	counter := message.NewEstimatedCounter()
	msgs := []message.Message{
		message.NewUserMessage("abcd"),
	}

	// 4 开销 + 1 角色 ("user") + 1 内容
	if got := counter.CountMessages(msgs); got != 6 {
		t.Fatalf("expected 6, got %d", got)
	}
	if got := counter.CountMessages(nil); got != 0 {
		t.Fatalf("expected 0 for no messages, got %d", got)
	}
}

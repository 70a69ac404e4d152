// Package summarizer 提供滚动摘要生成的统一契约
//
// 摘要器是一个纯粹的输入输出契约：给定先前摘要和待折叠的轮次，
// 产出一份新的状态摘要，或返回错误。相同输入可安全重复调用
// （效果幂等，输出不保证逐字一致）。
package summarizer

import (
	"context"
	"strings"

	"github.com/easyops/agentmem-go/pkg/core/message"
)

// Summarizer 摘要器接口
type Summarizer interface {
	// Summarize 将先前摘要与轮次折叠为一份新摘要
	//
	// 返回的摘要应保留决策、事实与待决问题，可省略寒暄。
	// 空白输出视为不可用，由调用方按失败处理。
	Summarize(ctx context.Context, priorSummary string, turns []message.Turn) (string, error)

	// Name 返回摘要器标识（用于压缩事件归因，可为空）
	Name() string
}

// SummarizeFunc 将普通函数适配为 Summarizer
type SummarizeFunc func(ctx context.Context, priorSummary string, turns []message.Turn) (string, error)

// Summarize 调用底层函数
func (f SummarizeFunc) Summarize(ctx context.Context, priorSummary string, turns []message.Turn) (string, error) {
	return f(ctx, priorSummary, turns)
}

// Name 返回摘要器标识
func (f SummarizeFunc) Name() string {
	return "func"
}

// stateLogSystemPrompt 状态日志式摘要的系统提示词
const stateLogSystemPrompt = `You summarize agent conversations into a compact state log.
Rules:
- Keep only stable facts, decisions, failures, and next steps.
- Do NOT include fluff.
- Do NOT copy the whole transcript.
- Write in plain text.
- Output format:
  Goal:
  Key facts:
  Decisions:
  What we tried:
  Failures / risks:
  Next step:
`

// renderUserPrompt 组装摘要请求的用户提示词
func renderUserPrompt(priorSummary string, turns []message.Turn) string {
	var b strings.Builder
	b.WriteString("Previous state summary (may be empty):\n")
	b.WriteString(strings.TrimSpace(priorSummary))
	b.WriteString("\n\nRecent turns:\n")
	b.WriteString(message.RenderTranscript(turns))
	b.WriteString("\n\nUpdate the state summary now.")
	return b.String()
}

// 编译时接口检查
var _ Summarizer = (SummarizeFunc)(nil)

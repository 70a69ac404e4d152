package memory

import (
	"github.com/easyops/agentmem-go/pkg/core/message"
	"github.com/easyops/agentmem-go/pkg/memory/store"
)

// PromptLedger 一次提示词组装的审计回执
//
// 记录进入本次模型调用上下文的内容构成，供宿主应用记录与审计。
// 具体序列化方式由宿主决定，字段带 JSON 标签以便直接落盘。
type PromptLedger struct {
	// SessionID 会话标识
	SessionID string `json:"session_id"`
	// TokenEstimate 组装完成后整组消息的 Token 估算值
	TokenEstimate int `json:"token_estimate"`
	// IncludedSummary 是否注入了滚动摘要
	IncludedSummary bool `json:"included_summary"`
	// SummaryVersion 注入摘要的版本号（未注入时为当前版本）
	SummaryVersion int `json:"summary_version"`
	// IncludedActiveTurns 注入的活跃轮次数
	IncludedActiveTurns int `json:"included_active_turns"`
	// HistoryQuery 档案检索查询（未检索时为空）
	HistoryQuery string `json:"history_query,omitempty"`
	// RetrievedSnippets 实际注入的检索片段
	RetrievedSnippets []store.Snippet `json:"retrieved_snippets,omitempty"`
	// MessageRoles 最终消息列表的角色序列（保持顺序）
	MessageRoles []message.Role `json:"message_roles"`
	// Notes 降级与异常备注（如检索失败、归档失败）
	Notes map[string]string `json:"notes,omitempty"`
}

// addNote 追加一条备注，惰性初始化 Notes
func (l *PromptLedger) addNote(key, value string) {
	if l.Notes == nil {
		l.Notes = make(map[string]string)
	}
	l.Notes[key] = value
}

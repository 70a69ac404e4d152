package memory

import (
	"fmt"

	"github.com/easyops/agentmem-go/pkg/core/message"
)

// ContextBuffer 有界上下文缓冲区
//
// 持有单个会话的活跃轮次与滚动摘要。纯内存结构，不做任何 I/O。
// 不含内部锁：一个逻辑会话由单一调用方独占，跨会话无共享状态。
type ContextBuffer struct {
	sessionID      string
	config         Config
	activeTurns    []message.Turn
	rollingSummary string
	summaryVersion int
}

// NewContextBuffer 创建上下文缓冲区
func NewContextBuffer(sessionID string, cfg Config) *ContextBuffer {
	return &ContextBuffer{
		sessionID:   sessionID,
		config:      cfg,
		activeTurns: make([]message.Turn, 0),
	}
}

// SessionID 返回会话标识
func (b *ContextBuffer) SessionID() string {
	return b.sessionID
}

// AddTurn 追加一条新轮次
//
// role 无效或 content 为空白时返回 ErrInvalidTurn，缓冲区不变。
// 对有效输入永不失败，也不触发压缩。
func (b *ContextBuffer) AddTurn(role message.Role, content string) (message.Turn, error) {
	turn, err := message.NewTurn(role, content)
	if err != nil {
		return message.Turn{}, fmt.Errorf("%w: %w", ErrInvalidTurn, err)
	}

	b.activeTurns = append(b.activeTurns, turn)
	return turn, nil
}

// addExisting 追加一条已构造的轮次
//
// 由同包组装器在预先校验后使用，跳过重复构造。
func (b *ContextBuffer) addExisting(turn message.Turn) {
	b.activeTurns = append(b.activeTurns, turn)
}

// NeedsCompaction 判断是否需要压缩
//
// 两个阈值均为严格大于：恰好处于上限的缓冲区不触发，下一次追加才触发。
func (b *ContextBuffer) NeedsCompaction() bool {
	return len(b.activeTurns) > b.config.MaxTurns ||
		b.EstimatedTokens() > b.config.MaxTokens
}

// EstimatedTokens 返回缓冲区的 Token 估算值
//
// 活跃轮次的估算值之和，加上滚动摘要自身的估算值。
func (b *ContextBuffer) EstimatedTokens() int {
	return message.EstimateTurns(b.activeTurns) + message.EstimateTokens(b.rollingSummary)
}

// ActiveTurns 返回活跃轮次的副本（按追加顺序）
func (b *ContextBuffer) ActiveTurns() []message.Turn {
	turns := make([]message.Turn, len(b.activeTurns))
	copy(turns, b.activeTurns)
	return turns
}

// TurnCount 返回活跃轮次数
func (b *ContextBuffer) TurnCount() int {
	return len(b.activeTurns)
}

// RollingSummary 返回当前滚动摘要
func (b *ContextBuffer) RollingSummary() string {
	return b.rollingSummary
}

// SummaryVersion 返回当前摘要版本号
//
// 从 0 开始，每次成功压缩递增 1。
func (b *ContextBuffer) SummaryVersion() int {
	return b.summaryVersion
}

// applySummary 应用一次成功压缩的结果
//
// 替换摘要、递增版本、清空活跃轮次。仅在压缩成功后调用。
func (b *ContextBuffer) applySummary(newSummary string) {
	b.rollingSummary = newSummary
	b.summaryVersion++
	b.activeTurns = b.activeTurns[:0]
}

// Package store provides transcript archive backends for the memory system.
//
// The archive is the durable, append-only record of every conversation turn,
// independent of the bounded in-memory buffer. It is never injected into the
// model context wholesale; it exists for audit and for optional keyword
// retrieval. Backends: in-memory (tests, ephemeral sessions), JSONL files
// (one file per session) and SQLite.
package store

import (
	"context"
	"time"

	"github.com/easyops/agentmem-go/pkg/core/message"
)

// TranscriptStore 转录档案存储接口
//
// 按会话 ID 记录轮次与压缩事件，保持追加顺序，支持关键词检索。
// 排序方式由各实现自定；无匹配返回空切片而非错误。
type TranscriptStore interface {
	// AppendTurn 持久化一条轮次；只追加，不覆盖，不重排
	AppendTurn(ctx context.Context, sessionID string, turn message.Turn) error

	// AppendCompaction 持久化一次压缩事件
	AppendCompaction(ctx context.Context, sessionID string, event CompactionEvent) error

	// Search 返回与 query 相关度最高的至多 topK 条片段
	//
	// 会话不存在或无匹配时返回空切片；topK <= 0 时返回空切片。
	Search(ctx context.Context, sessionID, query string, topK int) ([]Snippet, error)

	// Close 关闭存储
	Close() error
}

// Snippet 检索片段
//
// 来自档案的关键词命中，按相关度排序返回。
type Snippet struct {
	// Turn 命中的轮次
	Turn message.Turn `json:"turn"`
	// Score 相关度分数（实现自定，越大越相关）
	Score float64 `json:"score"`
}

// CompactionEvent 一次压缩的不可变档案记录
//
// 由压缩引擎创建，经 TranscriptStore 持久化，之后不再修改。
type CompactionEvent struct {
	// ID 事件唯一标识
	ID string `json:"id"`
	// Turns 被折叠进摘要的轮次快照
	Turns []message.Turn `json:"turns"`
	// PriorSummary 压缩前的滚动摘要
	PriorSummary string `json:"prior_summary"`
	// NewSummary 压缩后的滚动摘要
	NewSummary string `json:"new_summary"`
	// SummaryVersion 压缩后的摘要版本号
	SummaryVersion int `json:"summary_version"`
	// Summarizer 摘要器标识（可为空）
	Summarizer string `json:"summarizer,omitempty"`
	// Timestamp 事件时间
	Timestamp time.Time `json:"timestamp"`
}

// StoreType 存储类型
type StoreType string

const (
	// StoreTypeMemory 内存存储
	StoreTypeMemory StoreType = "memory"
	// StoreTypeJSONL JSONL 文件存储（每会话一个文件）
	StoreTypeJSONL StoreType = "jsonl"
	// StoreTypeSQLite SQLite 存储
	StoreTypeSQLite StoreType = "sqlite"
)

// Config 存储配置
type Config struct {
	// Type 存储类型
	Type StoreType `json:"type"`

	// Path JSONL 根目录或 SQLite 数据库路径
	Path string `json:"path,omitempty"`
}

// DefaultConfig 返回默认配置（内存存储）
func DefaultConfig() *Config {
	return &Config{
		Type: StoreTypeMemory,
	}
}

// Package message 定义对话轮次与出站消息相关的类型
package message

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role 表示发言的角色类型
type Role string

const (
	// RoleSystem 系统消息
	RoleSystem Role = "system"
	// RoleUser 用户消息
	RoleUser Role = "user"
	// RoleAssistant AI 助手消息
	RoleAssistant Role = "assistant"
)

// IsValid 检查 Role 是否为有效值
func (r Role) IsValid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	default:
		return false
	}
}

// Turn 表示会话中的一条原始发言
//
// 创建后不可变：所有字段在 NewTurn 中一次性填充，之后只读。
// TokenEstimate 由内容长度按固定近似计算（见 EstimateTokens）。
type Turn struct {
	// ID 轮次唯一标识
	ID string `json:"id"`
	// Role 发言角色
	Role Role `json:"role"`
	// Content 发言内容
	Content string `json:"content"`
	// TokenEstimate 粗略 Token 估算值
	TokenEstimate int `json:"token_estimate"`
	// Timestamp 创建时间
	Timestamp time.Time `json:"timestamp"`
}

// NewTurn 创建新轮次
//
// role 必须是有效角色，content 不能为空白，否则返回验证错误。
func NewTurn(role Role, content string) (Turn, error) {
	if !role.IsValid() {
		return Turn{}, ErrInvalidRole
	}
	if strings.TrimSpace(content) == "" {
		return Turn{}, ErrEmptyContent
	}
	return Turn{
		ID:            uuid.New().String(),
		Role:          role,
		Content:       content,
		TokenEstimate: EstimateTokens(content),
		Timestamp:     time.Now(),
	}, nil
}

// Message 表示发送给模型的一条角色标注消息
type Message struct {
	// Role 消息角色
	Role Role `json:"role"`
	// Content 消息内容
	Content string `json:"content"`
}

// NewSystemMessage 创建系统消息
func NewSystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// NewUserMessage 创建用户消息
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage 创建助手消息
func NewAssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// RenderTranscript 将轮次序列渲染为角色标注的纯文本
//
// 每行形如 "role: content"，按输入顺序排列，供摘要调用使用。
func RenderTranscript(turns []Turn) string {
	var b strings.Builder
	for i, t := range turns {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(string(t.Role))
		b.WriteString(": ")
		b.WriteString(strings.TrimSpace(t.Content))
	}
	return b.String()
}

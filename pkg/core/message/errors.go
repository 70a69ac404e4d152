package message

import "errors"

// 轮次验证相关错误
var (
	// ErrInvalidRole 无效的角色类型
	ErrInvalidRole = errors.New("invalid turn role")
	// ErrEmptyContent 发言内容为空
	ErrEmptyContent = errors.New("turn content cannot be empty")
)

package store

import "errors"

// Store errors
var (
	// ErrInvalidInput 无效输入
	ErrInvalidInput = errors.New("invalid input")
	// ErrClosed 存储已关闭
	ErrClosed = errors.New("store is closed")
	// ErrConnectionFailed 连接失败
	ErrConnectionFailed = errors.New("connection failed")
	// ErrUnsupportedType 不支持的存储类型
	ErrUnsupportedType = errors.New("unsupported store type")
)

package config

import "errors"

// 配置验证相关错误
var (
	// ErrInvalidMaxTurns 活跃轮次上限无效
	ErrInvalidMaxTurns = errors.New("max turns must be positive")
	// ErrInvalidMaxTokens Token 上限无效
	ErrInvalidMaxTokens = errors.New("max tokens must be positive")
	// ErrInvalidSearchTopK 检索数量无效
	ErrInvalidSearchTopK = errors.New("search top k must not be negative")
	// ErrInvalidSummaryMaxChars 摘要长度上限无效
	ErrInvalidSummaryMaxChars = errors.New("summary max chars must be positive")
	// ErrInvalidMaxRetries 重试次数无效
	ErrInvalidMaxRetries = errors.New("max retries must not be negative")
	// ErrInvalidSampleRate 采样率无效
	ErrInvalidSampleRate = errors.New("sample rate must be between 0 and 1")
)

package summarizer

import "errors"

// 摘要器相关错误
var (
	// ErrMissingAPIKey API 密钥缺失
	ErrMissingAPIKey = errors.New("api key is required")
	// ErrEmptySummary 摘要输出为空
	ErrEmptySummary = errors.New("summarizer returned empty output")
)

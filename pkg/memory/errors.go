package memory

import "errors"

// 记忆系统相关错误
var (
	// ErrInvalidTurn 轮次无效（角色不识别或内容为空白）
	ErrInvalidTurn = errors.New("invalid turn")
	// ErrCompactionFailed 压缩失败（摘要调用出错或输出不可用）
	ErrCompactionFailed = errors.New("compaction failed")
	// ErrStoreFailed 档案存储操作失败
	ErrStoreFailed = errors.New("transcript store operation failed")
	// ErrNilStore 存储不能为空
	ErrNilStore = errors.New("transcript store is required")
	// ErrNilSummarizer 摘要器不能为空
	ErrNilSummarizer = errors.New("summarizer is required")
	// ErrInvalidMaxTurns 活跃轮次上限无效
	ErrInvalidMaxTurns = errors.New("max turns must be positive")
	// ErrInvalidMaxTokens Token 上限无效
	ErrInvalidMaxTokens = errors.New("max tokens must be positive")
	// ErrInvalidSearchTopK 检索数量无效
	ErrInvalidSearchTopK = errors.New("search top k must not be negative")
	// ErrInvalidSummaryMaxChars 摘要长度上限无效
	ErrInvalidSummaryMaxChars = errors.New("summary max chars must not be negative")
)

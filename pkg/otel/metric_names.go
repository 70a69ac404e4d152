package otel

// 预定义的指标名称
// 遵循 OpenTelemetry 语义约定
const (
	// 压缩指标
	MetricCompactions        = "memory.compactions"         // 计数器: 成功压缩次数
	MetricCompactionFailures = "memory.compaction.failures" // 计数器: 压缩失败次数
	MetricCompactionDuration = "memory.compaction.duration" // 直方图: 压缩耗时(ms)
	MetricFoldedTurns        = "memory.compaction.turns"    // 直方图: 单次折叠的轮次数

	// 档案指标
	MetricTurnsArchived   = "memory.turns.archived"   // 计数器: 归档轮次数
	MetricArchiveFailures = "memory.archive.failures" // 计数器: 归档失败次数

	// 检索指标
	MetricSearchQueries  = "memory.search.queries"  // 计数器: 档案检索次数
	MetricSearchFailures = "memory.search.failures" // 计数器: 检索失败次数（已降级）

	// 提示词组装指标
	MetricPromptBuilds   = "prompt.builds"          // 计数器: 组装次数
	MetricPromptTokens   = "prompt.token_estimate"  // 直方图: 组装后的 Token 估算值
	MetricBufferTokens   = "memory.buffer.tokens"   // 仪表: 缓冲区 Token 估算值
	MetricBufferTurns    = "memory.buffer.turns"    // 仪表: 缓冲区活跃轮次数
	MetricSummaryVersion = "memory.summary.version" // 仪表: 当前摘要版本号
)

// 预定义的语义属性键
const (
	// AttrSessionID 会话标识
	AttrSessionID = "session.id"
	// AttrSummarizer 摘要器标识
	AttrSummarizer = "summarizer.name"
	// AttrStoreType 存储类型
	AttrStoreType = "store.type"
)

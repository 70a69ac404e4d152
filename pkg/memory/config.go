package memory

// Config 上下文记忆配置
type Config struct {
	// MaxTurns 活跃轮次上限，严格大于该值时触发压缩
	MaxTurns int
	// MaxTokens Token 估算值上限，严格大于该值时触发压缩
	MaxTokens int
	// SearchTopK 档案检索返回的最大片段数，0 表示禁用检索
	SearchTopK int
	// SummaryMaxChars 滚动摘要的最大字符数，0 表示不限制
	SummaryMaxChars int
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		MaxTurns:        5,
		MaxTokens:       2500,
		SearchTopK:      5,
		SummaryMaxChars: 1400,
	}
}

// Option 配置选项
type Option func(*Config)

// WithMaxTurns 设置活跃轮次上限
func WithMaxTurns(n int) Option {
	return func(c *Config) {
		c.MaxTurns = n
	}
}

// WithMaxTokens 设置 Token 估算值上限
func WithMaxTokens(n int) Option {
	return func(c *Config) {
		c.MaxTokens = n
	}
}

// WithSearchTopK 设置检索片段数上限
func WithSearchTopK(n int) Option {
	return func(c *Config) {
		c.SearchTopK = n
	}
}

// WithSummaryMaxChars 设置摘要字符数上限
func WithSummaryMaxChars(n int) Option {
	return func(c *Config) {
		c.SummaryMaxChars = n
	}
}

// Validate 验证配置
func (c Config) Validate() error {
	if c.MaxTurns < 1 {
		return ErrInvalidMaxTurns
	}
	if c.MaxTokens < 1 {
		return ErrInvalidMaxTokens
	}
	if c.SearchTopK < 0 {
		return ErrInvalidSearchTopK
	}
	if c.SummaryMaxChars < 0 {
		return ErrInvalidSummaryMaxChars
	}
	return nil
}

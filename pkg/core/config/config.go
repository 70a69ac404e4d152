// Package config 提供配置加载和管理功能
package config

import (
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config 全局配置结构
type Config struct {
	// Memory 上下文记忆配置
	Memory MemoryConfig `koanf:"memory"`
	// Store 转录存储配置
	Store StoreConfig `koanf:"store"`
	// Summarizer 摘要器配置
	Summarizer SummarizerConfig `koanf:"summarizer"`
	// Observability 可观测性配置
	Observability ObservabilityConfig `koanf:"observability"`
}

// MemoryConfig 上下文记忆配置
type MemoryConfig struct {
	// MaxTurns 活跃轮次上限，超过即触发压缩
	MaxTurns int `koanf:"max_turns"`
	// MaxTokens Token 估算值上限，超过即触发压缩
	MaxTokens int `koanf:"max_tokens"`
	// SearchTopK 档案检索返回的最大片段数，0 表示禁用检索
	SearchTopK int `koanf:"search_top_k"`
	// SummaryMaxChars 滚动摘要的最大字符数
	SummaryMaxChars int `koanf:"summary_max_chars"`
}

// StoreConfig 转录存储配置
type StoreConfig struct {
	// Type 存储类型 (memory, jsonl, sqlite)
	Type string `koanf:"type"`
	// Path 存储路径（jsonl 为目录，sqlite 为文件）
	Path string `koanf:"path"`
}

// SummarizerConfig 摘要器配置
type SummarizerConfig struct {
	// Model 模型名称
	Model string `koanf:"model"`
	// APIKey API 密钥
	APIKey string `koanf:"api_key"`
	// BaseURL API 基础 URL（可选，用于兼容 API）
	BaseURL string `koanf:"base_url"`
	// Timeout 单次摘要调用超时
	Timeout time.Duration `koanf:"timeout"`
	// MaxRetries 最大重试次数
	MaxRetries int `koanf:"max_retries"`
}

// ObservabilityConfig 可观测性配置
type ObservabilityConfig struct {
	// Enabled 是否启用
	Enabled bool `koanf:"enabled"`
	// ServiceName 服务名称
	ServiceName string `koanf:"service_name"`
	// TracerEndpoint 追踪端点
	TracerEndpoint string `koanf:"tracer_endpoint"`
	// MetricsEndpoint 指标端点
	MetricsEndpoint string `koanf:"metrics_endpoint"`
	// SampleRate 采样率 [0, 1]
	SampleRate float64 `koanf:"sample_rate"`
	// LogLevel 日志级别 (debug, info, warn, error)
	LogLevel string `koanf:"log_level"`
}

// Loader 配置加载器
type Loader struct {
	k *koanf.Koanf
}

// NewLoader 创建配置加载器
func NewLoader() *Loader {
	return &Loader{
		k: koanf.New("."),
	}
}

// LoadEnv 从环境变量加载配置
func (l *Loader) LoadEnv(prefix string) error {
	return l.k.Load(env.Provider(prefix, ".", func(s string) string {
		// 转换环境变量名: AGENTMEM_MEMORY__MAX_TURNS -> memory.max_turns
		// 双下划线作为层级分隔符，单下划线保留在键名中
		s = strings.TrimPrefix(s, prefix)
		s = strings.ToLower(s)
		s = strings.ReplaceAll(s, "__", ".")
		return s
	}), nil)
}

// Unmarshal 解析配置到结构体
func (l *Loader) Unmarshal(cfg *Config) error {
	return l.k.Unmarshal("", cfg)
}

// Get 获取配置值
func (l *Loader) Get(key string) interface{} {
	return l.k.Get(key)
}

// Exists 判断配置键是否存在
func (l *Loader) Exists(key string) bool {
	return l.k.Exists(key)
}

// GetString 获取字符串配置值
func (l *Loader) GetString(key string) string {
	return l.k.String(key)
}

// GetInt 获取整数配置值
func (l *Loader) GetInt(key string) int {
	return l.k.Int(key)
}

// GetBool 获取布尔配置值
func (l *Loader) GetBool(key string) bool {
	return l.k.Bool(key)
}

// GetDuration 获取时间间隔配置值
func (l *Loader) GetDuration(key string) time.Duration {
	return l.k.Duration(key)
}

// Load 从环境变量加载完整配置
func Load() (*Config, error) {
	loader := NewLoader()

	if err := loader.LoadEnv("AGENTMEM_"); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := loader.Unmarshal(cfg); err != nil {
		return nil, err
	}

	applyDefaults(cfg, loader)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults 应用默认配置值
//
// search_top_k 的零值是合法配置（禁用检索），仅在键未显式设置时应用默认值。
func applyDefaults(cfg *Config, loader *Loader) {
	// Memory 默认值
	if cfg.Memory.MaxTurns == 0 {
		cfg.Memory.MaxTurns = 5
	}
	if cfg.Memory.MaxTokens == 0 {
		cfg.Memory.MaxTokens = 2500
	}
	if cfg.Memory.SearchTopK == 0 && !loader.Exists("memory.search_top_k") {
		cfg.Memory.SearchTopK = 5
	}
	if cfg.Memory.SummaryMaxChars == 0 {
		cfg.Memory.SummaryMaxChars = 1400
	}

	// Store 默认值
	if cfg.Store.Type == "" {
		cfg.Store.Type = "memory"
	}

	// Summarizer 默认值
	if cfg.Summarizer.Model == "" {
		cfg.Summarizer.Model = "gpt-4o-mini"
	}
	if cfg.Summarizer.Timeout == 0 {
		cfg.Summarizer.Timeout = 30 * time.Second
	}
	if cfg.Summarizer.MaxRetries == 0 {
		cfg.Summarizer.MaxRetries = 2
	}

	// Observability 默认值
	if cfg.Observability.ServiceName == "" {
		cfg.Observability.ServiceName = "agentmem"
	}
	if cfg.Observability.SampleRate == 0 {
		cfg.Observability.SampleRate = 1.0
	}
	if cfg.Observability.LogLevel == "" {
		cfg.Observability.LogLevel = "info"
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.Memory.MaxTurns < 1 {
		return ErrInvalidMaxTurns
	}
	if c.Memory.MaxTokens < 1 {
		return ErrInvalidMaxTokens
	}
	if c.Memory.SearchTopK < 0 {
		return ErrInvalidSearchTopK
	}
	if c.Memory.SummaryMaxChars < 1 {
		return ErrInvalidSummaryMaxChars
	}
	if c.Summarizer.MaxRetries < 0 {
		return ErrInvalidMaxRetries
	}
	if c.Observability.SampleRate < 0 || c.Observability.SampleRate > 1 {
		return ErrInvalidSampleRate
	}
	return nil
}

package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/easyops/agentmem-go/pkg/core/message"
)

// OpenAISummarizer 基于 OpenAI 兼容接口的摘要器
//
// 通过 base URL 也可指向 DeepSeek、vLLM 等兼容服务。
type OpenAISummarizer struct {
	client  *openai.Client
	options *Options
}

// Options OpenAI 摘要器配置
type Options struct {
	// Model 模型名称
	Model string
	// BaseURL 服务地址（为空使用官方端点）
	BaseURL string
	// Temperature 温度参数
	Temperature float32
	// MaxTokens 摘要最大输出 token
	MaxTokens int
	// MaxSummaryChars 摘要字符安全上限（0 表示不截断）
	MaxSummaryChars int
	// MaxRetries 瞬时失败的最大重试次数
	MaxRetries int
	// RetryDelay 重试间隔
	RetryDelay time.Duration
}

// DefaultOptions 返回默认配置
func DefaultOptions() *Options {
	return &Options{
		Model:           "gpt-4o-mini",
		Temperature:     0.2,
		MaxTokens:       512,
		MaxSummaryChars: 1400,
		MaxRetries:      2,
		RetryDelay:      time.Second,
	}
}

// Option 配置选项函数
type Option func(*Options)

// WithSummaryModel 设置模型名称
func WithSummaryModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// WithBaseURL 设置服务地址
func WithBaseURL(baseURL string) Option {
	return func(o *Options) {
		o.BaseURL = baseURL
	}
}

// WithTemperature 设置温度参数
func WithTemperature(t float32) Option {
	return func(o *Options) {
		o.Temperature = t
	}
}

// WithMaxTokens 设置摘要最大输出 token
func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

// WithMaxSummaryChars 设置摘要字符上限
func WithMaxSummaryChars(n int) Option {
	return func(o *Options) {
		o.MaxSummaryChars = n
	}
}

// WithMaxRetries 设置最大重试次数
func WithMaxRetries(n int) Option {
	return func(o *Options) {
		o.MaxRetries = n
	}
}

// WithRetryDelay 设置重试间隔
func WithRetryDelay(d time.Duration) Option {
	return func(o *Options) {
		o.RetryDelay = d
	}
}

// NewOpenAISummarizer 创建 OpenAI 摘要器
func NewOpenAISummarizer(apiKey string, opts ...Option) (*OpenAISummarizer, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	options := DefaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	config := openai.DefaultConfig(apiKey)
	if options.BaseURL != "" {
		config.BaseURL = options.BaseURL
	}

	return &OpenAISummarizer{
		client:  openai.NewClientWithConfig(config),
		options: options,
	}, nil
}

// Name 返回摘要器标识
func (s *OpenAISummarizer) Name() string {
	return "openai/" + s.options.Model
}

// Summarize 调用模型生成新的状态摘要
func (s *OpenAISummarizer) Summarize(ctx context.Context, priorSummary string, turns []message.Turn) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       s.options.Model,
		Temperature: s.options.Temperature,
		MaxTokens:   s.options.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: stateLogSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: renderUserPrompt(priorSummary, turns)},
		},
	}

	var resp openai.ChatCompletionResponse
	err := retry(ctx, s.options.MaxRetries, s.options.RetryDelay, func() error {
		var callErr error
		resp, callErr = s.client.CreateChatCompletion(ctx, req)
		return callErr
	})
	if err != nil {
		return "", fmt.Errorf("summarize call failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptySummary
	}

	summary := strings.TrimSpace(resp.Choices[0].Message.Content)
	if summary == "" {
		return "", ErrEmptySummary
	}

	if s.options.MaxSummaryChars > 0 && len(summary) > s.options.MaxSummaryChars {
		summary = strings.TrimSpace(summary[:s.options.MaxSummaryChars])
	}

	return summary, nil
}

// retry 带固定间隔的简单重试
//
// 上下文取消立即返回，不再重试。
func retry(ctx context.Context, maxRetries int, delay time.Duration, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return errors.Join(ctx.Err(), lastErr)
			case <-time.After(delay):
			}
		}

		if err := fn(); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}

// 编译时接口检查
var _ Summarizer = (*OpenAISummarizer)(nil)

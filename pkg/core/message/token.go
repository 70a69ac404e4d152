package message

import (
	"github.com/pkoukk/tiktoken-go"
)

// estimateCharsPerToken 固定近似：平均每 4 个字符约等于 1 个 token。
const estimateCharsPerToken = 4

// EstimateTokens 按固定近似估算文本的 Token 数量
//
// 计算方式为字符数除以 4 向上取整。这是一个刻意的近似值，
// 不等同于任何具体模型分词器的精确计数，仅用于阈值判断等
// 护栏场景。需要更精确的计数时使用 TiktokenCounter。
func EstimateTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	return (len(text) + estimateCharsPerToken - 1) / estimateCharsPerToken
}

// EstimateTurns 估算轮次序列的总 Token 数量
func EstimateTurns(turns []Turn) int {
	total := 0
	for _, t := range turns {
		total += t.TokenEstimate
	}
	return total
}

// TokenCounter 定义 Token 计数接口
//
// 用于 PromptLedger 中最终提示词的 Token 上报。
type TokenCounter interface {
	// Count 返回给定文本的 Token 数量
	Count(text string) int

	// CountMessages 返回消息列表的总 Token 数量，
	// 包括角色前缀和消息分隔开销
	CountMessages(messages []Message) int
}

// EstimatedCounter 使用字符近似实现 Token 计数
//
// 与 EstimateTokens 使用同一近似，是默认计数器。
type EstimatedCounter struct{}

// NewEstimatedCounter 创建 EstimatedCounter
func NewEstimatedCounter() *EstimatedCounter {
	return &EstimatedCounter{}
}

// Count 返回估算的 Token 数量
func (c *EstimatedCounter) Count(text string) int {
	return EstimateTokens(text)
}

// CountMessages 返回消息列表的估算 Token 数量
func (c *EstimatedCounter) CountMessages(messages []Message) int {
	tokensPerMessage := 4 // 每条消息的格式开销

	total := 0
	for _, msg := range messages {
		total += tokensPerMessage
		total += c.Count(string(msg.Role))
		total += c.Count(msg.Content)
	}
	return total
}

// TiktokenCounter 使用 tiktoken 实现精确的 Token 计数
type TiktokenCounter struct {
	encoding *tiktoken.Tiktoken
	model    string
}

// TiktokenOption 配置 TiktokenCounter
type TiktokenOption func(*TiktokenCounter)

// WithModel 设置 Token 编码使用的模型
func WithModel(model string) TiktokenOption {
	return func(c *TiktokenCounter) {
		c.model = model
	}
}

// NewTiktokenCounter 创建 TiktokenCounter
//
// 默认使用 gpt-4o 对应的编码；模型未知时降级到 cl100k_base。
func NewTiktokenCounter(opts ...TiktokenOption) (*TiktokenCounter, error) {
	c := &TiktokenCounter{
		model: "gpt-4o",
	}

	for _, opt := range opts {
		opt(c)
	}

	encoding, err := tiktoken.EncodingForModel(c.model)
	if err != nil {
		encoding, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, err
		}
	}

	c.encoding = encoding
	return c, nil
}

// Count 返回给定文本的 Token 数量
func (c *TiktokenCounter) Count(text string) int {
	if c.encoding == nil {
		return EstimateTokens(text)
	}
	return len(c.encoding.Encode(text, nil, nil))
}

// CountMessages 返回消息列表的总 Token 数量
//
// 按 OpenAI 的消息格式开销计入每条消息的起止标记。
func (c *TiktokenCounter) CountMessages(messages []Message) int {
	tokensPerMessage := 3 // <|start|>{role}\n{content}<|end|>\n

	total := 0
	for _, msg := range messages {
		total += tokensPerMessage
		total += c.Count(string(msg.Role))
		total += c.Count(msg.Content)
	}
	total += 3 // 回复以 <|start|>assistant<|message|> 开头

	return total
}

// DefaultTokenCounter 返回一个 TokenCounter，
// 优先使用 TiktokenCounter，不可用时降级到 EstimatedCounter。
func DefaultTokenCounter() TokenCounter {
	counter, err := NewTiktokenCounter()
	if err != nil {
		return NewEstimatedCounter()
	}
	return counter
}

// 编译时接口检查
var _ TokenCounter = (*EstimatedCounter)(nil)
var _ TokenCounter = (*TiktokenCounter)(nil)

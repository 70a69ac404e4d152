package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/easyops/agentmem-go/pkg/memory/store"
	"github.com/easyops/agentmem-go/pkg/otel"
	"github.com/easyops/agentmem-go/pkg/summarizer"
)

// State 压缩引擎状态
type State int

const (
	// StateStable 缓冲区处于阈值之内，无压缩进行中
	StateStable State = iota
	// StateCompacting 一次压缩正在进行
	StateCompacting
)

// String 返回状态的字符串表示
func (s State) String() string {
	switch s {
	case StateCompacting:
		return "compacting"
	default:
		return "stable"
	}
}

// Compactor 压缩引擎
//
// 将缓冲区的全部活跃轮次折叠进滚动摘要。折叠总是整体进行，
// 不支持部分压缩。失败时缓冲区与摘要保持原样，下次调用重试。
type Compactor struct {
	summarizer      summarizer.Summarizer
	store           store.TranscriptStore
	logger          otel.Logger
	metrics         otel.Metrics
	summaryMaxChars int
	state           State
}

// NewCompactor 创建压缩引擎
func NewCompactor(s summarizer.Summarizer, ts store.TranscriptStore, summaryMaxChars int, logger otel.Logger, metrics otel.Metrics) *Compactor {
	if logger == nil {
		logger = otel.NewNoopLogger()
	}
	if metrics == nil {
		metrics = otel.NewNoopMetrics()
	}
	return &Compactor{
		summarizer:      s,
		store:           ts,
		logger:          logger,
		metrics:         metrics,
		summaryMaxChars: summaryMaxChars,
		state:           StateStable,
	}
}

// State 返回当前状态
func (c *Compactor) State() State {
	return c.state
}

// CompactIfNeeded 在缓冲区超过阈值时执行压缩
func (c *Compactor) CompactIfNeeded(ctx context.Context, buffer *ContextBuffer) error {
	if !buffer.NeedsCompaction() {
		return nil
	}
	return c.Compact(ctx, buffer)
}

// Compact 执行一次压缩
//
// 快照全部活跃轮次与当前摘要，调用摘要器产出新摘要，成功后替换
// 摘要、递增版本、清空缓冲区，并归档一条压缩事件。摘要器出错或
// 返回空白输出时放弃本次压缩，缓冲区与摘要不变，返回包装了原因
// 的 ErrCompactionFailed。事件归档失败不回滚已成功的压缩（原始
// 轮次在追加时已归档），仅记录日志与指标。
func (c *Compactor) Compact(ctx context.Context, buffer *ContextBuffer) error {
	if buffer.TurnCount() == 0 {
		return nil
	}

	ctx, span := otel.GetTracer().Start(ctx, "memory.compact")
	defer span.End()

	c.state = StateCompacting
	defer func() { c.state = StateStable }()

	snapshot := buffer.ActiveTurns()
	priorSummary := buffer.RollingSummary()
	started := time.Now()

	newSummary, err := c.summarizer.Summarize(ctx, priorSummary, snapshot)
	if err == nil && strings.TrimSpace(newSummary) == "" {
		err = summarizer.ErrEmptySummary
	}
	if err != nil {
		c.metrics.Counter(otel.MetricCompactionFailures).Add(ctx, 1,
			otel.NewAttr(otel.AttrSessionID, buffer.SessionID()),
			otel.NewAttr(otel.AttrSummarizer, c.summarizer.Name()),
		)
		span.RecordError(err)
		span.SetStatus(otel.StatusError, "compaction failed")
		c.logger.WithContext(ctx).Warn("compaction abandoned, buffer retained",
			"session_id", buffer.SessionID(),
			"turns", len(snapshot),
			"error", err,
		)
		return fmt.Errorf("%w: %w", ErrCompactionFailed, err)
	}

	newSummary = capSummary(newSummary, c.summaryMaxChars)
	buffer.applySummary(newSummary)

	event := store.CompactionEvent{
		ID:             uuid.New().String(),
		Turns:          snapshot,
		PriorSummary:   priorSummary,
		NewSummary:     newSummary,
		SummaryVersion: buffer.SummaryVersion(),
		Summarizer:     c.summarizer.Name(),
		Timestamp:      time.Now(),
	}
	if err := c.store.AppendCompaction(ctx, buffer.SessionID(), event); err != nil {
		c.metrics.Counter(otel.MetricArchiveFailures).Add(ctx, 1,
			otel.NewAttr(otel.AttrSessionID, buffer.SessionID()),
		)
		c.logger.WithContext(ctx).Error("compaction event archive failed",
			"session_id", buffer.SessionID(),
			"summary_version", event.SummaryVersion,
			"error", err,
		)
	}

	elapsed := time.Since(started)
	c.metrics.Counter(otel.MetricCompactions).Add(ctx, 1,
		otel.NewAttr(otel.AttrSessionID, buffer.SessionID()),
		otel.NewAttr(otel.AttrSummarizer, c.summarizer.Name()),
	)
	c.metrics.Histogram(otel.MetricCompactionDuration).Record(ctx, float64(elapsed.Milliseconds()))
	c.metrics.Histogram(otel.MetricFoldedTurns).Record(ctx, float64(len(snapshot)))
	c.metrics.Gauge(otel.MetricSummaryVersion).Set(ctx, float64(buffer.SummaryVersion()),
		otel.NewAttr(otel.AttrSessionID, buffer.SessionID()),
	)

	c.logger.WithContext(ctx).Info("compaction complete",
		"session_id", buffer.SessionID(),
		"folded_turns", len(snapshot),
		"summary_version", buffer.SummaryVersion(),
		"summary_chars", len(newSummary),
		"duration_ms", elapsed.Milliseconds(),
	)

	return nil
}

// capSummary 将摘要截断到最大字符数
//
// maxChars <= 0 表示不限制。按 rune 截断，避免切开多字节字符。
func capSummary(summary string, maxChars int) string {
	if maxChars <= 0 {
		return summary
	}
	runes := []rune(summary)
	if len(runes) <= maxChars {
		return summary
	}
	return string(runes[:maxChars])
}

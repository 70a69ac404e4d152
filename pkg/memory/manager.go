package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/easyops/agentmem-go/pkg/core/message"
	"github.com/easyops/agentmem-go/pkg/memory/store"
	"github.com/easyops/agentmem-go/pkg/otel"
	"github.com/easyops/agentmem-go/pkg/summarizer"
)

// summaryPreamble 注入滚动摘要时的标注，说明其为背景上下文而非字面轮次
const summaryPreamble = "Rolling summary of earlier conversation (background context, not a literal prior turn):"

// retrievalPreamble 注入检索片段时的标注
const retrievalPreamble = "Retrieved from archived history (relevance-ranked, possibly stale):"

// Manager 会话记忆管理器
//
// 将缓冲区、压缩引擎、档案存储与摘要器组合为单个会话的完整
// 记忆面。一个 Manager 实例对应一个会话，由调用方串行使用。
type Manager struct {
	buffer    *ContextBuffer
	compactor *Compactor
	store     store.TranscriptStore
	config    Config
	logger    otel.Logger
	metrics   otel.Metrics
	counter   message.TokenCounter
}

// ManagerOption Manager 配置选项
type ManagerOption func(*Manager)

// WithLogger 设置日志器
func WithLogger(logger otel.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithMetrics 设置指标收集器
func WithMetrics(metrics otel.Metrics) ManagerOption {
	return func(m *Manager) {
		if metrics != nil {
			m.metrics = metrics
		}
	}
}

// WithTokenCounter 设置回执上报用的 Token 计数器
func WithTokenCounter(counter message.TokenCounter) ManagerOption {
	return func(m *Manager) {
		if counter != nil {
			m.counter = counter
		}
	}
}

// NewManager 创建会话记忆管理器
func NewManager(sessionID string, cfg Config, ts store.TranscriptStore, s summarizer.Summarizer, opts ...ManagerOption) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if ts == nil {
		return nil, ErrNilStore
	}
	if s == nil {
		return nil, ErrNilSummarizer
	}

	m := &Manager{
		buffer:  NewContextBuffer(sessionID, cfg),
		store:   ts,
		config:  cfg,
		logger:  otel.GetLogger(),
		metrics: otel.GetMetrics(),
		counter: message.NewEstimatedCounter(),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.compactor = NewCompactor(s, ts, cfg.SummaryMaxChars, m.logger, m.metrics)

	return m, nil
}

// Buffer 返回底层缓冲区
func (m *Manager) Buffer() *ContextBuffer {
	return m.buffer
}

// State 返回压缩引擎当前状态
func (m *Manager) State() State {
	return m.compactor.State()
}

// RecordTurn 追加一条轮次并归档
//
// 缓冲区追加总是先行完成；归档失败时轮次保留在缓冲区中，
// 返回包装了原因的 ErrStoreFailed，会话可降级继续。
func (m *Manager) RecordTurn(ctx context.Context, role message.Role, content string) (message.Turn, error) {
	turn, err := m.buffer.AddTurn(role, content)
	if err != nil {
		return message.Turn{}, err
	}

	m.recordBufferGauges(ctx)

	if err := m.archiveTurn(ctx, turn); err != nil {
		return turn, err
	}
	return turn, nil
}

// RecordUserTurn 追加一条用户轮次并归档
func (m *Manager) RecordUserTurn(ctx context.Context, content string) (message.Turn, error) {
	return m.RecordTurn(ctx, message.RoleUser, content)
}

// RecordAssistantTurn 追加一条助手轮次并归档
func (m *Manager) RecordAssistantTurn(ctx context.Context, content string) (message.Turn, error) {
	return m.RecordTurn(ctx, message.RoleAssistant, content)
}

// archiveTurn 归档一条轮次
func (m *Manager) archiveTurn(ctx context.Context, turn message.Turn) error {
	if err := m.store.AppendTurn(ctx, m.buffer.SessionID(), turn); err != nil {
		m.metrics.Counter(otel.MetricArchiveFailures).Add(ctx, 1,
			otel.NewAttr(otel.AttrSessionID, m.buffer.SessionID()),
		)
		m.logger.WithContext(ctx).Error("turn archive failed, buffer retains the turn",
			"session_id", m.buffer.SessionID(),
			"turn_id", turn.ID,
			"error", err,
		)
		return fmt.Errorf("%w: %w", ErrStoreFailed, err)
	}

	m.metrics.Counter(otel.MetricTurnsArchived).Add(ctx, 1,
		otel.NewAttr(otel.AttrSessionID, m.buffer.SessionID()),
	)
	return nil
}

// BuildOption 消息组装选项
type BuildOption func(*buildConfig)

type buildConfig struct {
	historyQuery string
}

// WithHistoryQuery 设置档案检索查询
//
// 非空时在组装期间检索档案并注入命中片段。检索失败或无命中时
// 静默降级为不注入。
func WithHistoryQuery(query string) BuildOption {
	return func(cfg *buildConfig) {
		cfg.historyQuery = query
	}
}

// BuildMessages 组装一次模型调用的消息列表
//
// 顺序固定：系统消息（非空摘要注入其中）、活跃轮次、可选的检索
// 片段消息、新用户消息。组装前先评估并执行压缩，组装结果总是
// 反映压缩后的状态。新用户轮次在组装后进入缓冲区并归档，成为
// 下一次调用的历史。
//
// 检索失败从不让本调用失败；可能返回的错误仅有 ErrInvalidTurn
// （用户消息无效，无状态变更）与 ErrCompactionFailed（压缩失败，
// 缓冲区保留）。用户轮次归档失败仅记录在回执 Notes 中。
func (m *Manager) BuildMessages(ctx context.Context, systemPrompt, userMessage string, opts ...BuildOption) ([]message.Message, *PromptLedger, error) {
	bc := &buildConfig{}
	for _, opt := range opts {
		opt(bc)
	}

	ctx, span := otel.GetTracer().Start(ctx, "memory.build_messages")
	defer span.End()

	// 先校验用户输入，任何状态变更之前拒绝无效轮次
	userTurn, err := message.NewTurn(message.RoleUser, userMessage)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidTurn, err)
	}

	// 组装前评估压缩，失败即向上传播，缓冲区保持原样
	if err := m.compactor.CompactIfNeeded(ctx, m.buffer); err != nil {
		span.RecordError(err)
		return nil, nil, err
	}

	ledger := &PromptLedger{
		SessionID:      m.buffer.SessionID(),
		SummaryVersion: m.buffer.SummaryVersion(),
		HistoryQuery:   bc.historyQuery,
	}

	msgs := make([]message.Message, 0, m.buffer.TurnCount()+3)

	// 系统消息：非空摘要作为背景上下文并入，不伪装成历史轮次
	systemContent := systemPrompt
	if summary := m.buffer.RollingSummary(); summary != "" {
		systemContent = systemPrompt + "\n\n" + summaryPreamble + "\n" + summary
		ledger.IncludedSummary = true
	}
	msgs = append(msgs, message.NewSystemMessage(systemContent))

	// 活跃轮次按时间顺序逐条注入
	activeTurns := m.buffer.ActiveTurns()
	for _, t := range activeTurns {
		msgs = append(msgs, message.Message{Role: t.Role, Content: t.Content})
	}
	ledger.IncludedActiveTurns = len(activeTurns)

	// 档案检索：尽力而为，失败降级为零片段
	if bc.historyQuery != "" && m.config.SearchTopK > 0 {
		snippets := m.searchArchive(ctx, bc.historyQuery, ledger)
		if len(snippets) > 0 {
			msgs = append(msgs, message.NewSystemMessage(renderSnippets(snippets)))
			ledger.RetrievedSnippets = snippets
		}
	}

	msgs = append(msgs, message.NewUserMessage(userMessage))

	// 新用户轮次进入缓冲区并归档；归档失败不阻塞本次组装
	m.buffer.addExisting(userTurn)
	if err := m.archiveTurn(ctx, userTurn); err != nil {
		ledger.addNote("archive", err.Error())
	}

	ledger.TokenEstimate = m.counter.CountMessages(msgs)
	ledger.MessageRoles = messageRoles(msgs)

	m.metrics.Counter(otel.MetricPromptBuilds).Add(ctx, 1,
		otel.NewAttr(otel.AttrSessionID, m.buffer.SessionID()),
	)
	m.metrics.Histogram(otel.MetricPromptTokens).Record(ctx, float64(ledger.TokenEstimate))
	m.recordBufferGauges(ctx)

	m.logger.WithContext(ctx).Debug("prompt assembled",
		"session_id", m.buffer.SessionID(),
		"messages", len(msgs),
		"token_estimate", ledger.TokenEstimate,
		"summary_version", ledger.SummaryVersion,
		"snippets", len(ledger.RetrievedSnippets),
	)

	return msgs, ledger, nil
}

// searchArchive 检索档案，失败时降级为零片段并记录回执备注
func (m *Manager) searchArchive(ctx context.Context, query string, ledger *PromptLedger) []store.Snippet {
	m.metrics.Counter(otel.MetricSearchQueries).Add(ctx, 1,
		otel.NewAttr(otel.AttrSessionID, m.buffer.SessionID()),
	)

	snippets, err := m.store.Search(ctx, m.buffer.SessionID(), query, m.config.SearchTopK)
	if err != nil {
		m.metrics.Counter(otel.MetricSearchFailures).Add(ctx, 1,
			otel.NewAttr(otel.AttrSessionID, m.buffer.SessionID()),
		)
		m.logger.WithContext(ctx).Warn("archive search failed, continuing without snippets",
			"session_id", m.buffer.SessionID(),
			"error", err,
		)
		ledger.addNote("search", err.Error())
		return nil
	}
	return snippets
}

// renderSnippets 将检索片段渲染为单条标注消息的内容
func renderSnippets(snippets []store.Snippet) string {
	var b strings.Builder
	b.WriteString(retrievalPreamble)
	for _, s := range snippets {
		b.WriteString("\n\n")
		fmt.Fprintf(&b, "[score=%g] %s: %s", s.Score, s.Turn.Role, s.Turn.Content)
	}
	return b.String()
}

// messageRoles 提取消息列表的角色序列
func messageRoles(msgs []message.Message) []message.Role {
	roles := make([]message.Role, len(msgs))
	for i, msg := range msgs {
		roles[i] = msg.Role
	}
	return roles
}

// recordBufferGauges 上报缓冲区规模指标
func (m *Manager) recordBufferGauges(ctx context.Context) {
	attr := otel.NewAttr(otel.AttrSessionID, m.buffer.SessionID())
	m.metrics.Gauge(otel.MetricBufferTokens).Set(ctx, float64(m.buffer.EstimatedTokens()), attr)
	m.metrics.Gauge(otel.MetricBufferTurns).Set(ctx, float64(m.buffer.TurnCount()), attr)
}

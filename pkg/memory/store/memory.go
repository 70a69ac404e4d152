package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/easyops/agentmem-go/pkg/core/message"
)

// MemoryTranscriptStore 内存转录档案
//
// 基于内存的实现，适用于测试和不需要持久化的会话。
// 存储可被多个会话共享，因此内部加锁。
type MemoryTranscriptStore struct {
	turns       map[string][]message.Turn
	compactions map[string][]CompactionEvent
	closed      bool
	mu          sync.RWMutex
}

// NewMemoryTranscriptStore 创建内存转录档案
func NewMemoryTranscriptStore() *MemoryTranscriptStore {
	return &MemoryTranscriptStore{
		turns:       make(map[string][]message.Turn),
		compactions: make(map[string][]CompactionEvent),
	}
}

// AppendTurn 追加一条轮次
func (s *MemoryTranscriptStore) AppendTurn(ctx context.Context, sessionID string, turn message.Turn) error {
	if sessionID == "" {
		return ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	s.turns[sessionID] = append(s.turns[sessionID], turn)
	return nil
}

// AppendCompaction 追加一次压缩事件
func (s *MemoryTranscriptStore) AppendCompaction(ctx context.Context, sessionID string, event CompactionEvent) error {
	if sessionID == "" {
		return ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	s.compactions[sessionID] = append(s.compactions[sessionID], event)
	return nil
}

// Search 关键词检索
//
// 对查询词做分词，按各词在轮次内容中出现次数之和计分，
// 分数相同时保持追加顺序。
func (s *MemoryTranscriptStore) Search(ctx context.Context, sessionID, query string, topK int) ([]Snippet, error) {
	terms := tokenize(query)
	if len(terms) == 0 || topK <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}

	var hits []Snippet
	for _, turn := range s.turns[sessionID] {
		content := strings.ToLower(turn.Content)
		score := 0.0
		for _, term := range terms {
			score += float64(strings.Count(content, term))
		}
		if score > 0 {
			hits = append(hits, Snippet{Turn: turn, Score: score})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// ReadTurns 返回某会话的全部轮次（追加顺序）
func (s *MemoryTranscriptStore) ReadTurns(ctx context.Context, sessionID string) ([]message.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}

	turns := s.turns[sessionID]
	result := make([]message.Turn, len(turns))
	copy(result, turns)
	return result, nil
}

// ReadCompactions 返回某会话的全部压缩事件（追加顺序）
func (s *MemoryTranscriptStore) ReadCompactions(ctx context.Context, sessionID string) ([]CompactionEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}

	events := s.compactions[sessionID]
	result := make([]CompactionEvent, len(events))
	copy(result, events)
	return result, nil
}

// Close 关闭存储
func (s *MemoryTranscriptStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// tokenize 分词
//
// 支持英文按字母数字分词和中文按单字分词。
func tokenize(text string) []string {
	text = strings.ToLower(text)
	var tokens []string
	var currentWord strings.Builder

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			// 中文字符单独成词
			if unicode.Is(unicode.Han, r) {
				if currentWord.Len() > 0 {
					tokens = append(tokens, currentWord.String())
					currentWord.Reset()
				}
				tokens = append(tokens, string(r))
			} else {
				currentWord.WriteRune(r)
			}
		} else {
			if currentWord.Len() > 0 {
				tokens = append(tokens, currentWord.String())
				currentWord.Reset()
			}
		}
	}

	if currentWord.Len() > 0 {
		tokens = append(tokens, currentWord.String())
	}

	return tokens
}

// 编译时接口检查
var _ TranscriptStore = (*MemoryTranscriptStore)(nil)

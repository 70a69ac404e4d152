package store

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/easyops/agentmem-go/pkg/core/message"
)

// JSONLTranscriptStore JSONL 文件转录档案
//
// 每个会话对应根目录下的一个 <session>.jsonl 文件，每行一条轮次；
// 压缩事件记录在 <session>.compactions.jsonl 中。文件按追加方式
// 写入，天然保持调用顺序。
type JSONLTranscriptStore struct {
	root string
}

// NewJSONLTranscriptStore 创建 JSONL 转录档案
//
// rootDir 不存在时自动创建。
func NewJSONLTranscriptStore(rootDir string) (*JSONLTranscriptStore, error) {
	if rootDir == "" {
		rootDir = ".agent_history"
	}
	if err := os.MkdirAll(rootDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create archive root: %w", err)
	}
	return &JSONLTranscriptStore{root: rootDir}, nil
}

// turnsPath 返回会话轮次文件路径
func (s *JSONLTranscriptStore) turnsPath(sessionID string) string {
	return filepath.Join(s.root, sessionID+".jsonl")
}

// compactionsPath 返回会话压缩事件文件路径
func (s *JSONLTranscriptStore) compactionsPath(sessionID string) string {
	return filepath.Join(s.root, sessionID+".compactions.jsonl")
}

// AppendTurn 追加一条轮次
func (s *JSONLTranscriptStore) AppendTurn(ctx context.Context, sessionID string, turn message.Turn) error {
	if sessionID == "" {
		return ErrInvalidInput
	}
	return appendJSONLine(s.turnsPath(sessionID), turn)
}

// AppendCompaction 追加一次压缩事件
func (s *JSONLTranscriptStore) AppendCompaction(ctx context.Context, sessionID string, event CompactionEvent) error {
	if sessionID == "" {
		return ErrInvalidInput
	}
	return appendJSONLine(s.compactionsPath(sessionID), event)
}

// Search 关键词检索
//
// 以整个查询串的小写出现次数计分（与原始 JSONL 档案一致的
// 基线实现），分数相同时保持追加顺序。
func (s *JSONLTranscriptStore) Search(ctx context.Context, sessionID, query string, topK int) ([]Snippet, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || topK <= 0 {
		return nil, nil
	}

	turns, err := s.ReadTurns(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var hits []Snippet
	for _, turn := range turns {
		score := float64(strings.Count(strings.ToLower(turn.Content), q))
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
//
// 会话文件不存在时返回空切片。
func (s *JSONLTranscriptStore) ReadTurns(ctx context.Context, sessionID string) ([]message.Turn, error) {
	f, err := os.Open(s.turnsPath(sessionID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	var turns []message.Turn
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var turn message.Turn
		if err := json.Unmarshal([]byte(line), &turn); err != nil {
			return nil, fmt.Errorf("failed to decode archive line: %w", err)
		}
		turns = append(turns, turn)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan archive: %w", err)
	}
	return turns, nil
}

// ReadCompactions 返回某会话的全部压缩事件（追加顺序）
func (s *JSONLTranscriptStore) ReadCompactions(ctx context.Context, sessionID string) ([]CompactionEvent, error) {
	f, err := os.Open(s.compactionsPath(sessionID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open compaction archive: %w", err)
	}
	defer f.Close()

	var events []CompactionEvent
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var event CompactionEvent
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			return nil, fmt.Errorf("failed to decode compaction line: %w", err)
		}
		events = append(events, event)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan compaction archive: %w", err)
	}
	return events, nil
}

// Close 关闭存储
//
// 文件按调用打开和关闭，这里无持有资源。
func (s *JSONLTranscriptStore) Close() error {
	return nil
}

// appendJSONLine 将值序列化为一行 JSON 追加到文件末尾
func appendJSONLine(path string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open archive for append: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to append record: %w", err)
	}
	return nil
}

// 编译时接口检查
var _ TranscriptStore = (*JSONLTranscriptStore)(nil)

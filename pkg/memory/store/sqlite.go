package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/easyops/agentmem-go/pkg/core/message"
)

// SQLiteTranscriptStore SQLite 转录档案
//
// 基于 SQLite 的持久化实现，适用于生产环境。追加顺序由
// 自增 seq 列保证。
type SQLiteTranscriptStore struct {
	db *sql.DB
}

// NewSQLiteTranscriptStore 创建 SQLite 转录档案
func NewSQLiteTranscriptStore(dbPath string) (*SQLiteTranscriptStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	store := &SQLiteTranscriptStore{db: db}

	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return store, nil
}

// initSchema 初始化表结构
func (s *SQLiteTranscriptStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS turns (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		id TEXT NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		token_estimate INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_turns_session ON turns(session_id, seq);

	CREATE TABLE IF NOT EXISTS compactions (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		id TEXT NOT NULL,
		prior_summary TEXT NOT NULL,
		new_summary TEXT NOT NULL,
		summary_version INTEGER NOT NULL,
		summarizer TEXT,
		turns TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_compactions_session ON compactions(session_id, seq);
	`

	_, err := s.db.Exec(query)
	return err
}

// AppendTurn 追加一条轮次
func (s *SQLiteTranscriptStore) AppendTurn(ctx context.Context, sessionID string, turn message.Turn) error {
	if sessionID == "" {
		return ErrInvalidInput
	}

	query := `
	INSERT INTO turns (session_id, id, role, content, token_estimate, created_at)
	VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		sessionID, turn.ID, string(turn.Role), turn.Content, turn.TokenEstimate, turn.Timestamp.UnixMilli())
	return err
}

// AppendCompaction 追加一次压缩事件
func (s *SQLiteTranscriptStore) AppendCompaction(ctx context.Context, sessionID string, event CompactionEvent) error {
	if sessionID == "" {
		return ErrInvalidInput
	}

	turns, err := json.Marshal(event.Turns)
	if err != nil {
		return fmt.Errorf("failed to marshal folded turns: %w", err)
	}

	query := `
	INSERT INTO compactions (session_id, id, prior_summary, new_summary, summary_version, summarizer, turns, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		sessionID, event.ID, event.PriorSummary, event.NewSummary,
		event.SummaryVersion, event.Summarizer, string(turns), event.Timestamp.UnixMilli())
	return err
}

// Search 关键词检索
//
// 先用 LIKE 做候选过滤，再在 Go 侧按出现次数计分排序。
func (s *SQLiteTranscriptStore) Search(ctx context.Context, sessionID, query string, topK int) ([]Snippet, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || topK <= 0 {
		return nil, nil
	}

	pattern := "%" + escapeLike(q) + "%"
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, role, content, token_estimate, created_at
	FROM turns
	WHERE session_id = ? AND lower(content) LIKE ? ESCAPE '\'
	ORDER BY seq ASC
	`, sessionID, pattern)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []Snippet
	for rows.Next() {
		turn, err := scanTurn(rows)
		if err != nil {
			return nil, err
		}
		score := float64(strings.Count(strings.ToLower(turn.Content), q))
		if score > 0 {
			hits = append(hits, Snippet{Turn: turn, Score: score})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
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
func (s *SQLiteTranscriptStore) ReadTurns(ctx context.Context, sessionID string) ([]message.Turn, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, role, content, token_estimate, created_at
	FROM turns
	WHERE session_id = ?
	ORDER BY seq ASC
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var turns []message.Turn
	for rows.Next() {
		turn, err := scanTurn(rows)
		if err != nil {
			return nil, err
		}
		turns = append(turns, turn)
	}
	return turns, rows.Err()
}

// ReadCompactions 返回某会话的全部压缩事件（追加顺序）
func (s *SQLiteTranscriptStore) ReadCompactions(ctx context.Context, sessionID string) ([]CompactionEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, prior_summary, new_summary, summary_version, summarizer, turns, created_at
	FROM compactions
	WHERE session_id = ?
	ORDER BY seq ASC
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []CompactionEvent
	for rows.Next() {
		var event CompactionEvent
		var turnsJSON string
		var createdAt int64
		if err := rows.Scan(&event.ID, &event.PriorSummary, &event.NewSummary,
			&event.SummaryVersion, &event.Summarizer, &turnsJSON, &createdAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(turnsJSON), &event.Turns); err != nil {
			return nil, fmt.Errorf("failed to unmarshal folded turns: %w", err)
		}
		event.Timestamp = time.UnixMilli(createdAt)
		events = append(events, event)
	}
	return events, rows.Err()
}

// Close 关闭数据库连接
func (s *SQLiteTranscriptStore) Close() error {
	return s.db.Close()
}

// scanTurn 从结果行读取一条轮次
func scanTurn(rows *sql.Rows) (message.Turn, error) {
	var turn message.Turn
	var role string
	var createdAt int64
	if err := rows.Scan(&turn.ID, &role, &turn.Content, &turn.TokenEstimate, &createdAt); err != nil {
		return message.Turn{}, err
	}
	turn.Role = message.Role(role)
	turn.Timestamp = time.UnixMilli(createdAt)
	return turn, nil
}

// escapeLike 转义 LIKE 模式中的特殊字符
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// 编译时接口检查
var _ TranscriptStore = (*SQLiteTranscriptStore)(nil)

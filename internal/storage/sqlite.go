package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"taskdeck/internal/chat"

	_ "modernc.org/sqlite"
)

// SQLiteStore 基于 SQLite (WAL 模式) 的会话持久化实现
// SQLiteStore implements Store using SQLite with WAL mode
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore 创建并初始化 SQLite 数据库
// NewSQLiteStore creates and initializes a SQLite database
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		return nil, fmt.Errorf("sqlite db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// 启用 WAL 模式和优化 PRAGMA / Enable WAL and performance PRAGMAs
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("exec %q: %w", p, err)
		}
	}

	store := &SQLiteStore{db: db, path: dbPath}
	if err := store.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) ensureSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS conversations (
		id         TEXT PRIMARY KEY,
		title      TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS messages (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		conversation_id TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
		seq             INTEGER NOT NULL,
		msg_id          TEXT NOT NULL DEFAULT '',
		role            TEXT NOT NULL,
		content         TEXT NOT NULL DEFAULT '',
		is_error        INTEGER NOT NULL DEFAULT 0,
		created_at      TEXT NOT NULL,
		UNIQUE(conversation_id, seq)
	);

	CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, seq);
	CREATE INDEX IF NOT EXISTS idx_conversations_updated ON conversations(updated_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close 关闭数据库连接 / Close the database connection
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// --- Conversation Operations ---

func (s *SQLiteStore) CreateConversation(meta ConversationMeta) error {
	now := nowUTC()
	if strings.TrimSpace(meta.CreatedAt) == "" {
		meta.CreatedAt = now
	}
	if strings.TrimSpace(meta.UpdatedAt) == "" {
		meta.UpdatedAt = now
	}
	_, err := s.db.Exec(`
		INSERT INTO conversations (id, title, created_at, updated_at)
		VALUES (?, ?, ?, ?)`,
		meta.ID, meta.Title, meta.CreatedAt, meta.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert conversation: %w", err)
	}
	return nil
}

func (s *SQLiteStore) SaveConversation(meta ConversationMeta) error {
	meta.UpdatedAt = nowUTC()
	_, err := s.db.Exec(`
		UPDATE conversations SET title=?, updated_at=? WHERE id=?`,
		meta.Title, meta.UpdatedAt, meta.ID,
	)
	if err != nil {
		return fmt.Errorf("update conversation: %w", err)
	}
	return nil
}

func (s *SQLiteStore) LoadConversation(id string) (ConversationMeta, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return ConversationMeta{}, fmt.Errorf("conversation id is empty")
	}
	row := s.db.QueryRow(`
		SELECT id, title, created_at, updated_at
		FROM conversations WHERE id=?`, id)

	var meta ConversationMeta
	err := row.Scan(&meta.ID, &meta.Title, &meta.CreatedAt, &meta.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ConversationMeta{}, fmt.Errorf("conversation not found: %s", id)
		}
		return ConversationMeta{}, fmt.Errorf("load conversation: %w", err)
	}
	return meta, nil
}

func (s *SQLiteStore) ListConversations() ([]ConversationMeta, error) {
	rows, err := s.db.Query(`
		SELECT id, title, created_at, updated_at
		FROM conversations ORDER BY updated_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var metas []ConversationMeta
	for rows.Next() {
		var meta ConversationMeta
		if err := rows.Scan(&meta.ID, &meta.Title, &meta.CreatedAt, &meta.UpdatedAt); err != nil {
			continue
		}
		metas = append(metas, meta)
	}
	return metas, rows.Err()
}

func (s *SQLiteStore) DeleteConversation(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("conversation id is empty")
	}
	if _, err := s.db.Exec("DELETE FROM conversations WHERE id=?", id); err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	return nil
}

// --- Message Operations ---

func (s *SQLiteStore) SaveMessages(conversationID string, messages []chat.Message) error {
	return s.SaveMessagesAt(conversationID, messages, nowUTC())
}

// SaveMessagesAt 以指定的 updated_at 落库，供迁移保留旧时间戳使用
// SaveMessagesAt stamps the conversation with the given updated_at instead
// of the current time. The legacy import uses it to keep imported threads at
// their original position in the recency ordering.
func (s *SQLiteStore) SaveMessagesAt(conversationID string, messages []chat.Message, updatedAt string) error {
	if strings.TrimSpace(updatedAt) == "" {
		updatedAt = nowUTC()
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// 清除旧消息 / Clear old messages
	if _, err := tx.Exec("DELETE FROM messages WHERE conversation_id=?", conversationID); err != nil {
		return fmt.Errorf("delete old messages: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO messages (conversation_id, seq, msg_id, role, content, is_error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, msg := range messages {
		ts := msg.Timestamp
		if ts.IsZero() {
			ts = time.Now().UTC()
		}
		if _, err := stmt.Exec(conversationID, i, msg.ID, string(msg.Role), msg.Content,
			boolToInt(msg.IsError), ts.UTC().Format(time.RFC3339)); err != nil {
			return fmt.Errorf("insert message %d: %w", i, err)
		}
	}

	// 更新会话时间戳 / Update conversation timestamp
	if _, err := tx.Exec("UPDATE conversations SET updated_at=? WHERE id=?", updatedAt, conversationID); err != nil {
		return fmt.Errorf("update conversation timestamp: %w", err)
	}

	return tx.Commit()
}

func (s *SQLiteStore) LoadMessages(conversationID string) ([]chat.Message, error) {
	rows, err := s.db.Query(`
		SELECT msg_id, role, content, is_error, created_at
		FROM messages WHERE conversation_id=? ORDER BY seq`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var messages []chat.Message
	for rows.Next() {
		var msg chat.Message
		var role string
		var isError int
		var createdAt string
		if err := rows.Scan(&msg.ID, &role, &msg.Content, &isError, &createdAt); err != nil {
			continue
		}
		msg.Role = chat.Role(role)
		msg.IsError = isError != 0
		if ts, parseErr := time.Parse(time.RFC3339, createdAt); parseErr == nil {
			msg.Timestamp = ts
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// --- Retention ---

func (s *SQLiteStore) Prune(keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}
	res, err := s.db.Exec(`
		DELETE FROM conversations WHERE id NOT IN (
			SELECT id FROM conversations ORDER BY updated_at DESC, id DESC LIMIT ?
		)`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune conversations: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return int(n), nil
}

// --- Helpers ---

func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

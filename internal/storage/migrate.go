package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"taskdeck/internal/chat"
)

// legacyConversation 旧版单文件 JSON 集合中的会话形状
// legacyConversation is the conversation shape in the legacy single-file
// JSON collection (one array holding every conversation with its messages)
type legacyConversation struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	CreatedAt string          `json:"createdAt"`
	UpdatedAt string          `json:"updatedAt"`
	Messages  []legacyMessage `json:"messages"`
}

type legacyMessage struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
	IsError   bool   `json:"isError,omitempty"`
}

// MigrateFromJSON 将旧版 conversations.json 集合迁移到 SQLite
// MigrateFromJSON migrates a legacy conversations.json collection into SQLite
func MigrateFromJSON(jsonPath string, store *SQLiteStore) (int, error) {
	jsonPath = strings.TrimSpace(jsonPath)
	if jsonPath == "" {
		return 0, nil
	}

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read legacy collection: %w", err)
	}

	var legacy []legacyConversation
	if err := json.Unmarshal(data, &legacy); err != nil {
		return 0, fmt.Errorf("parse legacy collection: %w", err)
	}

	migrated := 0
	for _, conv := range legacy {
		if strings.TrimSpace(conv.ID) == "" {
			continue
		}

		// 检查是否已存在 / Check if already migrated
		if _, loadErr := store.LoadConversation(conv.ID); loadErr == nil {
			continue
		}

		meta := ConversationMeta{
			ID:        conv.ID,
			Title:     conv.Title,
			CreatedAt: normalizeLegacyTime(conv.CreatedAt),
			UpdatedAt: normalizeLegacyTime(conv.UpdatedAt),
		}
		if err := store.CreateConversation(meta); err != nil {
			fmt.Fprintf(os.Stderr, "migrate conversation %s failed: %v\n", conv.ID, err)
			continue
		}

		if len(conv.Messages) > 0 {
			messages := make([]chat.Message, 0, len(conv.Messages))
			for _, m := range conv.Messages {
				msg := chat.Message{
					ID:      m.ID,
					Role:    chat.Role(m.Role),
					Content: m.Content,
					IsError: m.IsError,
				}
				if ts, parseErr := parseLegacyTime(m.Timestamp); parseErr == nil {
					msg.Timestamp = ts
				}
				messages = append(messages, msg)
			}
			// 保留旧集合的 updated_at，避免导入时间覆盖原有排序
			// Keep the legacy updated_at so import time never overwrites
			// the thread's position in the recency ordering
			if err := store.SaveMessagesAt(conv.ID, messages, meta.UpdatedAt); err != nil {
				fmt.Fprintf(os.Stderr, "migrate messages %s failed: %v\n", conv.ID, err)
				continue
			}
		}
		migrated++
	}
	return migrated, nil
}

// parseLegacyTime 兼容旧集合中的 RFC3339 和毫秒两种时间格式
// parseLegacyTime accepts both RFC3339 and millisecond timestamps
// found in legacy collections
func parseLegacyTime(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if ts, err := time.Parse(time.RFC3339, v); err == nil {
		return ts, nil
	}
	return time.Parse("2006-01-02T15:04:05.000Z", v)
}

func normalizeLegacyTime(v string) string {
	if ts, err := parseLegacyTime(v); err == nil {
		return ts.UTC().Format(time.RFC3339)
	}
	return ""
}

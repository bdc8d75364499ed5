package chat

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role 消息角色 / Role of a transcript message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single transcript entry. Messages are append-only: once added
// to a conversation they are never edited, and insertion order is transcript
// order.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	IsError   bool      `json:"is_error,omitempty"`
}

// NewMessage 构造一条带 ID 和时间戳的消息
// NewMessage builds a message with a fresh ID and timestamp
func NewMessage(role Role, content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}

// NewErrorMessage 构造一条标记为错误的 assistant 消息
// NewErrorMessage builds an assistant message flagged as an error
func NewErrorMessage(content string) Message {
	m := NewMessage(RoleAssistant, content)
	m.IsError = true
	return m
}

// HistoryEntry is the wire shape of one transcript message as sent to the
// chat endpoint. Only role and content cross the wire.
type HistoryEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// History 将消息列表映射为发送给后端的历史记录，错误占位消息不随请求上送
// History maps messages to the history payload for the chat endpoint.
// Error placeholders are local UI state and never cross the wire.
func History(messages []Message) []HistoryEntry {
	entries := make([]HistoryEntry, 0, len(messages))
	for _, m := range messages {
		if m.IsError {
			continue
		}
		entries = append(entries, HistoryEntry{Role: string(m.Role), Content: m.Content})
	}
	return entries
}

// maxTitleLen 会话标题从首条用户消息截断的最大长度
const maxTitleLen = 30

// DeriveTitle 从首条用户消息派生会话标题，超长截断并加省略号
// DeriveTitle derives a conversation title from the first user message,
// truncating to maxTitleLen runes with an ellipsis
func DeriveTitle(firstMessage string) string {
	trimmed := strings.TrimSpace(firstMessage)
	runes := []rune(trimmed)
	if len(runes) <= maxTitleLen {
		return trimmed
	}
	return string(runes[:maxTitleLen]) + "..."
}

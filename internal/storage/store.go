package storage

import "taskdeck/internal/chat"

// Store 会话持久化接口 / Store is the conversation persistence interface
type Store interface {
	// Conversation 操作 / Conversation operations
	CreateConversation(meta ConversationMeta) error
	SaveConversation(meta ConversationMeta) error
	LoadConversation(id string) (ConversationMeta, error)
	ListConversations() ([]ConversationMeta, error)
	DeleteConversation(id string) error

	// Message 操作 / Message operations
	SaveMessages(conversationID string, messages []chat.Message) error
	LoadMessages(conversationID string) ([]chat.Message, error)

	// Prune 按更新时间保留最新的 keep 个会话，返回删除数量
	// Prune keeps the keep most recently updated conversations and
	// returns how many were removed
	Prune(keep int) (int, error)

	// 生命周期 / Lifecycle
	Close() error
}

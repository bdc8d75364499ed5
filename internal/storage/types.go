package storage

// ConversationMeta 会话元数据
// ConversationMeta holds conversation metadata
type ConversationMeta struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

package config

const (
	DefaultServerTimeoutMS = 30000

	DefaultMaxConversations = 50
)

// Package conversation keeps the chat widget's threads: one current
// conversation, its transcript, and the persisted collection behind them.
// Threads live entirely client-side; the backend only answers messages.
package conversation

import (
	"context"
	"errors"
	"strings"
	"sync"

	"taskdeck/internal/api"
	"taskdeck/internal/chat"
	"taskdeck/internal/logging"
	"taskdeck/internal/storage"
)

// PlaceholderTitle 新会话的占位标题
// PlaceholderTitle names a conversation before its first exchange
const PlaceholderTitle = "New Conversation"

// apologyText 助手调用失败时追加到会话记录的固定致歉文案
// apologyText is appended to the transcript when the assistant call fails
const apologyText = "Sorry, I encountered an error processing your request. Please try again."

var (
	ErrEmptyMessage     = errors.New("message is empty")
	ErrNotAuthenticated = errors.New("not signed in")

	// ErrBusy means a send is already in flight. The widget disables its
	// send control while busy, so hitting this is a double-submission.
	ErrBusy = errors.New("a message is already in flight")
)

// ChatClient is the slice of the gateway client the manager needs.
type ChatClient interface {
	SendChat(ctx context.Context, req api.ChatRequest) (api.ChatResponse, error)
}

// Authenticator reports whether a session token is present.
type Authenticator interface {
	Authenticated() bool
}

// Manager owns the current conversation and serializes sends: at most one
// request is in flight per widget instance, so transcript appends are
// strictly sequential.
type Manager struct {
	mu       sync.Mutex
	store    storage.Store
	chat     ChatClient
	session  Authenticator
	log      logging.Logger
	maxKept  int
	current  *storage.ConversationMeta
	messages []chat.Message
	inFlight bool
}

func NewManager(store storage.Store, chatClient ChatClient, session Authenticator, maxKept int, log logging.Logger) *Manager {
	if log == nil {
		log = logging.Nop()
	}
	return &Manager{
		store:   store,
		chat:    chatClient,
		session: session,
		log:     log,
		maxKept: maxKept,
	}
}

// Conversations 返回持久化的会话集合，按更新时间倒序
// Conversations lists the persisted collection, most recently updated first
func (m *Manager) Conversations() ([]storage.ConversationMeta, error) {
	return m.store.ListConversations()
}

// Current returns the active conversation's metadata, nil in the empty state.
func (m *Manager) Current() *storage.ConversationMeta {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil
	}
	cp := *m.current
	return &cp
}

// Messages returns a copy of the visible transcript.
func (m *Manager) Messages() []chat.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]chat.Message, len(m.messages))
	copy(out, m.messages)
	return out
}

// Busy reports whether a send is in flight.
func (m *Manager) Busy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inFlight
}

// StartNew creates an empty conversation with the placeholder title, makes
// it current, and clears the visible transcript.
func (m *Manager) StartNew() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.inFlight {
		return ErrBusy
	}
	meta := storage.ConversationMeta{
		ID:    storage.NewConversationID(),
		Title: PlaceholderTitle,
	}
	if err := m.store.CreateConversation(meta); err != nil {
		return err
	}
	loaded, err := m.store.LoadConversation(meta.ID)
	if err != nil {
		return err
	}
	m.current = &loaded
	m.messages = nil
	return nil
}

// SwitchTo makes the given conversation current and loads its transcript.
// An unknown id is a no-op.
func (m *Manager) SwitchTo(conversationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.inFlight {
		return ErrBusy
	}
	meta, err := m.store.LoadConversation(conversationID)
	if err != nil {
		return nil
	}
	messages, err := m.store.LoadMessages(conversationID)
	if err != nil {
		return err
	}
	m.current = &meta
	m.messages = messages
	return nil
}

// Delete removes a conversation from the collection. When the active one
// goes, the most recently updated remaining conversation takes over, or
// the widget falls back to the empty state.
func (m *Manager) Delete(conversationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.inFlight {
		return ErrBusy
	}
	if err := m.store.DeleteConversation(conversationID); err != nil {
		return err
	}
	if m.current == nil || m.current.ID != conversationID {
		return nil
	}

	remaining, err := m.store.ListConversations()
	if err != nil {
		return err
	}
	if len(remaining) == 0 {
		m.current = nil
		m.messages = nil
		return nil
	}
	next := remaining[0]
	messages, err := m.store.LoadMessages(next.ID)
	if err != nil {
		return err
	}
	m.current = &next
	m.messages = messages
	return nil
}

// Send appends the user's message optimistically, posts the full transcript
// to the chat endpoint, and appends the reply. A failed call appends an
// error-flagged apology instead; the user's message is never rolled back.
// Only one send may be in flight at a time.
func (m *Manager) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}
	if m.session != nil && !m.session.Authenticated() {
		return ErrNotAuthenticated
	}

	m.mu.Lock()
	if m.inFlight {
		m.mu.Unlock()
		return ErrBusy
	}
	m.inFlight = true

	if m.current == nil {
		meta := storage.ConversationMeta{ID: storage.NewConversationID(), Title: PlaceholderTitle}
		if err := m.store.CreateConversation(meta); err != nil {
			m.inFlight = false
			m.mu.Unlock()
			return err
		}
		loaded, err := m.store.LoadConversation(meta.ID)
		if err != nil {
			m.inFlight = false
			m.mu.Unlock()
			return err
		}
		m.current = &loaded
		m.messages = nil
	}

	userMsg := chat.NewMessage(chat.RoleUser, text)
	m.messages = append(m.messages, userMsg)
	convID := m.current.ID
	history := chat.History(m.messages)
	// 乐观持久化用户消息 / Persist the user message optimistically
	if err := m.store.SaveMessages(convID, m.messages); err != nil {
		m.log.Warn(ctx, "persist transcript failed", "conversation", convID, "err", err)
	}
	m.mu.Unlock()

	resp, err := m.chat.SendChat(ctx, api.ChatRequest{
		Message:             text,
		ConversationID:      convID,
		ConversationHistory: history,
	})

	m.mu.Lock()
	defer m.mu.Unlock()
	m.inFlight = false

	if err != nil {
		m.log.Error(ctx, "assistant call failed", "conversation", convID, "err", err)
		m.messages = append(m.messages, chat.NewErrorMessage(apologyText))
		if saveErr := m.store.SaveMessages(convID, m.messages); saveErr != nil {
			m.log.Warn(ctx, "persist transcript failed", "conversation", convID, "err", saveErr)
		}
		return err
	}

	m.messages = append(m.messages, chat.NewMessage(chat.RoleAssistant, resp.Response))

	// 首次成功交流后用首条用户消息命名会话
	// Name the conversation from its first user message after the first
	// successful exchange
	if m.current.Title == PlaceholderTitle && len(m.messages) > 0 {
		m.current.Title = chat.DeriveTitle(firstUserContent(m.messages, text))
		if err := m.store.SaveConversation(*m.current); err != nil {
			m.log.Warn(ctx, "persist title failed", "conversation", convID, "err", err)
		}
	}

	if err := m.store.SaveMessages(convID, m.messages); err != nil {
		m.log.Warn(ctx, "persist transcript failed", "conversation", convID, "err", err)
	}
	if m.maxKept > 0 {
		if removed, pruneErr := m.store.Prune(m.maxKept); pruneErr == nil && removed > 0 {
			m.log.Info(ctx, "pruned old conversations", "removed", removed)
		}
	}
	return nil
}

func firstUserContent(messages []chat.Message, fallback string) string {
	for _, msg := range messages {
		if msg.Role == chat.RoleUser {
			return msg.Content
		}
	}
	return fallback
}

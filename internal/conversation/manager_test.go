package conversation

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"taskdeck/internal/api"
	"taskdeck/internal/chat"
	"taskdeck/internal/storage"
)

type fakeChat struct {
	mu     sync.Mutex
	calls  int
	reply  string
	err    error
	block  chan struct{}
	gotReq api.ChatRequest
}

func (f *fakeChat) SendChat(_ context.Context, req api.ChatRequest) (api.ChatResponse, error) {
	f.mu.Lock()
	f.calls++
	f.gotReq = req
	block := f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	if f.err != nil {
		return api.ChatResponse{}, f.err
	}
	return api.ChatResponse{ConversationID: req.ConversationID, Response: f.reply}, nil
}

func (f *fakeChat) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type alwaysAuthed struct{}

func (alwaysAuthed) Authenticated() bool { return true }

type neverAuthed struct{}

func (neverAuthed) Authenticated() bool { return false }

func newTestManager(t *testing.T, client *fakeChat, maxKept int) (*Manager, *storage.SQLiteStore) {
	t.Helper()
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "conversations.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewManager(store, client, alwaysAuthed{}, maxKept, nil), store
}

func TestSend_FirstExchangeNamesConversation(t *testing.T) {
	client := &fakeChat{reply: "sure, here is the plan"}
	mgr, store := newTestManager(t, client, 0)

	text := strings.Repeat("план", 10) // 40 runes, forces truncation
	if err := mgr.Send(context.Background(), text); err != nil {
		t.Fatalf("Send: %v", err)
	}

	cur := mgr.Current()
	if cur == nil {
		t.Fatal("no current conversation after first send")
	}
	wantTitle := string([]rune(text)[:30]) + "..."
	if cur.Title != wantTitle {
		t.Fatalf("title=%q, want %q", cur.Title, wantTitle)
	}

	msgs := mgr.Messages()
	if len(msgs) != 2 {
		t.Fatalf("transcript length=%d, want 2", len(msgs))
	}
	if msgs[0].Role != chat.RoleUser || msgs[1].Role != chat.RoleAssistant {
		t.Fatalf("unexpected roles: %s, %s", msgs[0].Role, msgs[1].Role)
	}
	if msgs[1].Content != "sure, here is the plan" {
		t.Fatalf("assistant content=%q", msgs[1].Content)
	}

	// 重启后应能从存储恢复 / Transcript and title survive the store round trip
	persisted, err := store.LoadMessages(cur.ID)
	if err != nil {
		t.Fatalf("LoadMessages: %v", err)
	}
	if len(persisted) != 2 {
		t.Fatalf("persisted length=%d, want 2", len(persisted))
	}
	meta, err := store.LoadConversation(cur.ID)
	if err != nil {
		t.Fatalf("LoadConversation: %v", err)
	}
	if meta.Title != wantTitle {
		t.Fatalf("persisted title=%q, want %q", meta.Title, wantTitle)
	}
}

func TestSend_FailureAppendsApologyAndKeepsUserMessage(t *testing.T) {
	client := &fakeChat{err: errors.New("gateway down")}
	mgr, store := newTestManager(t, client, 0)

	if err := mgr.Send(context.Background(), "hello?"); err == nil {
		t.Fatal("expected error from failed send")
	}

	msgs := mgr.Messages()
	if len(msgs) != 2 {
		t.Fatalf("transcript length=%d, want 2", len(msgs))
	}
	if msgs[0].Role != chat.RoleUser || msgs[0].Content != "hello?" {
		t.Fatalf("user message not preserved: %+v", msgs[0])
	}
	if !msgs[1].IsError || msgs[1].Role != chat.RoleAssistant {
		t.Fatalf("expected error-flagged assistant message, got %+v", msgs[1])
	}
	if msgs[1].Content != apologyText {
		t.Fatalf("apology=%q", msgs[1].Content)
	}

	cur := mgr.Current()
	if cur.Title != PlaceholderTitle {
		t.Fatalf("title changed on failure: %q", cur.Title)
	}
	persisted, _ := store.LoadMessages(cur.ID)
	if len(persisted) != 2 || !persisted[1].IsError {
		t.Fatalf("error message not persisted: %+v", persisted)
	}
}

func TestSend_SingleFlight(t *testing.T) {
	client := &fakeChat{reply: "ok", block: make(chan struct{})}
	mgr, _ := newTestManager(t, client, 0)

	done := make(chan error, 1)
	go func() { done <- mgr.Send(context.Background(), "first") }()

	// 等待首次请求进入 in-flight 状态 / Wait for the first send to be in flight
	deadline := time.After(2 * time.Second)
	for !mgr.Busy() {
		select {
		case <-deadline:
			t.Fatal("first send never became busy")
		case <-time.After(time.Millisecond):
		}
	}

	if err := mgr.Send(context.Background(), "second"); !errors.Is(err, ErrBusy) {
		t.Fatalf("second send: %v, want ErrBusy", err)
	}

	close(client.block)
	if err := <-done; err != nil {
		t.Fatalf("first send: %v", err)
	}
	if client.callCount() != 1 {
		t.Fatalf("calls=%d, want exactly 1", client.callCount())
	}
	msgs := mgr.Messages()
	if len(msgs) != 2 {
		t.Fatalf("transcript length=%d, want 2 (duplicate send leaked through)", len(msgs))
	}
}

func TestSend_Guards(t *testing.T) {
	client := &fakeChat{reply: "ok"}
	mgr, _ := newTestManager(t, client, 0)

	if err := mgr.Send(context.Background(), "   "); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("blank message: %v, want ErrEmptyMessage", err)
	}

	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "c.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	anon := NewManager(store, client, neverAuthed{}, 0, nil)
	if err := anon.Send(context.Background(), "hi"); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("unauthenticated: %v, want ErrNotAuthenticated", err)
	}

	if client.callCount() != 0 {
		t.Fatalf("guards must not reach the network, calls=%d", client.callCount())
	}
}

func TestDelete_FallsToMostRecentRemaining(t *testing.T) {
	client := &fakeChat{reply: "ok"}
	mgr, store := newTestManager(t, client, 0)

	old := time.Now().UTC().Add(-2 * time.Hour).Format(time.RFC3339)
	recent := time.Now().UTC().Add(-time.Hour).Format(time.RFC3339)
	mustCreate(t, store, storage.ConversationMeta{ID: "conv_old", Title: "old", CreatedAt: old, UpdatedAt: old})
	mustCreate(t, store, storage.ConversationMeta{ID: "conv_recent", Title: "recent", CreatedAt: recent, UpdatedAt: recent})

	if err := mgr.SwitchTo("conv_recent"); err != nil {
		t.Fatalf("SwitchTo: %v", err)
	}
	if err := mgr.Delete("conv_recent"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	cur := mgr.Current()
	if cur == nil || cur.ID != "conv_old" {
		t.Fatalf("current=%+v, want conv_old", cur)
	}

	if err := mgr.Delete("conv_old"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if mgr.Current() != nil {
		t.Fatal("expected empty state after deleting the last conversation")
	}
	if len(mgr.Messages()) != 0 {
		t.Fatal("transcript not cleared in empty state")
	}
}

func TestDelete_NonCurrentKeepsCurrent(t *testing.T) {
	client := &fakeChat{reply: "ok"}
	mgr, store := newTestManager(t, client, 0)

	ts := time.Now().UTC().Format(time.RFC3339)
	mustCreate(t, store, storage.ConversationMeta{ID: "conv_keep", Title: "keep", CreatedAt: ts, UpdatedAt: ts})
	mustCreate(t, store, storage.ConversationMeta{ID: "conv_drop", Title: "drop", CreatedAt: ts, UpdatedAt: ts})

	if err := mgr.SwitchTo("conv_keep"); err != nil {
		t.Fatalf("SwitchTo: %v", err)
	}
	if err := mgr.Delete("conv_drop"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if cur := mgr.Current(); cur == nil || cur.ID != "conv_keep" {
		t.Fatalf("current=%+v, want conv_keep", cur)
	}
}

func TestSwitchTo_UnknownIsNoop(t *testing.T) {
	client := &fakeChat{reply: "ok"}
	mgr, _ := newTestManager(t, client, 0)

	if err := mgr.StartNew(); err != nil {
		t.Fatalf("StartNew: %v", err)
	}
	before := mgr.Current()

	if err := mgr.SwitchTo("conv_missing"); err != nil {
		t.Fatalf("SwitchTo unknown id: %v", err)
	}
	after := mgr.Current()
	if after == nil || after.ID != before.ID {
		t.Fatalf("current changed on unknown id: %+v", after)
	}
}

func TestSend_PostsFullHistoryWithoutErrorMessages(t *testing.T) {
	client := &fakeChat{err: errors.New("boom")}
	mgr, _ := newTestManager(t, client, 0)
	_ = mgr.Send(context.Background(), "first try")

	client.err = nil
	client.reply = "done"
	if err := mgr.Send(context.Background(), "second try"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	hist := client.gotReq.ConversationHistory
	for _, entry := range hist {
		if entry.Content == apologyText {
			t.Fatal("error message leaked into posted history")
		}
	}
	if len(hist) != 2 || hist[0].Content != "first try" || hist[1].Content != "second try" {
		t.Fatalf("history=%+v", hist)
	}
	if client.gotReq.Message != "second try" {
		t.Fatalf("message=%q", client.gotReq.Message)
	}
}

func TestSend_PrunesCollectionToCap(t *testing.T) {
	client := &fakeChat{reply: "ok"}
	mgr, store := newTestManager(t, client, 2)

	base := time.Now().UTC().Add(-time.Hour)
	for i, id := range []string{"conv_a", "conv_b"} {
		ts := base.Add(time.Duration(i) * time.Minute).Format(time.RFC3339)
		mustCreate(t, store, storage.ConversationMeta{ID: id, Title: id, CreatedAt: ts, UpdatedAt: ts})
	}

	if err := mgr.Send(context.Background(), "new thread"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	metas, err := store.ListConversations()
	if err != nil {
		t.Fatalf("ListConversations: %v", err)
	}
	if len(metas) != 2 {
		t.Fatalf("collection size=%d, want 2 after prune", len(metas))
	}
	if metas[0].ID != mgr.Current().ID {
		t.Fatalf("newest conversation pruned away: %+v", metas)
	}
}

func mustCreate(t *testing.T, store *storage.SQLiteStore, meta storage.ConversationMeta) {
	t.Helper()
	if err := store.CreateConversation(meta); err != nil {
		t.Fatalf("CreateConversation(%s): %v", meta.ID, err)
	}
}

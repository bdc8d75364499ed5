package tui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"taskdeck/internal/api"
	"taskdeck/internal/conversation"
	"taskdeck/internal/i18n"
	"taskdeck/internal/session"
	"taskdeck/internal/storage"
	"taskdeck/internal/task"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type fakeSession struct {
	authed bool
	user   *session.Identity
}

func (f *fakeSession) Authenticated() bool     { return f.authed }
func (f *fakeSession) User() *session.Identity { return f.user }

type fakeAuth struct {
	sess    *fakeSession
	err     error
	calls   int
	logouts int
}

func (f *fakeAuth) Login(_ context.Context, email, _ string) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.sess.authed = true
	f.sess.user = &session.Identity{ID: "u1", Email: email}
	return nil
}

func (f *fakeAuth) Signup(ctx context.Context, email, password string) error {
	return f.Login(ctx, email, password)
}

func (f *fakeAuth) Logout() {
	f.logouts++
	f.sess.authed = false
	f.sess.user = nil
}

type fakeTaskAPI struct {
	tasks []task.Task
	err   error
	next  int
}

func (f *fakeTaskAPI) ListTasks(context.Context) ([]task.Task, error) {
	return f.tasks, f.err
}

func (f *fakeTaskAPI) CreateTask(_ context.Context, draft task.Draft) (task.Task, error) {
	if f.err != nil {
		return task.Task{}, f.err
	}
	f.next++
	t := task.Task{ID: string(rune('0' + f.next)), Title: draft.Title, Description: draft.Description}
	f.tasks = append(f.tasks, t)
	return t, nil
}

func (f *fakeTaskAPI) UpdateTask(_ context.Context, id string, draft task.Draft) (task.Task, error) {
	if f.err != nil {
		return task.Task{}, f.err
	}
	return task.Task{ID: id, Title: draft.Title, Description: draft.Description, Complete: draft.Complete}, nil
}

func (f *fakeTaskAPI) ToggleTask(_ context.Context, id string, complete bool) (task.Task, error) {
	if f.err != nil {
		return task.Task{}, f.err
	}
	for _, t := range f.tasks {
		if t.ID == id {
			t.Complete = complete
			return t, nil
		}
	}
	return task.Task{ID: id, Complete: complete}, nil
}

func (f *fakeTaskAPI) DeleteTask(context.Context, string) error { return f.err }

type stubChat struct{}

func (stubChat) SendChat(_ context.Context, req api.ChatRequest) (api.ChatResponse, error) {
	return api.ChatResponse{ConversationID: req.ConversationID, Response: "ok"}, nil
}

func newTestApp(t *testing.T, sess *fakeSession, auth *fakeAuth, taskAPI *fakeTaskAPI) App {
	t.Helper()
	i18n.Init("en")
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "conv.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	conv := conversation.NewManager(store, stubChat{}, sess, 0, nil)
	ctrl := task.NewController(taskAPI, nil)
	app := NewApp(sess, auth, ctrl, conv, "http://localhost:8000", nil)
	app.width, app.height = 100, 30
	app.relayout()
	// 测试直接灌数据，跳过启动加载态 / Tests seed data directly, skip the
	// startup loading state
	app.tasksView.loading = false
	return app
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestApp_LandingViewFollowsSession(t *testing.T) {
	sess := &fakeSession{}
	out := newTestApp(t, sess, &fakeAuth{sess: sess}, &fakeTaskAPI{})
	if out.view != ViewSignIn {
		t.Fatalf("signed-out landing=%v, want sign-in", out.view)
	}

	authed := &fakeSession{authed: true, user: &session.Identity{ID: "u1", Email: "a@b.c"}}
	in := newTestApp(t, authed, &fakeAuth{sess: authed}, &fakeTaskAPI{})
	if in.view != ViewTasks {
		t.Fatalf("signed-in landing=%v, want dashboard", in.view)
	}
}

func TestApp_SigninSuccessRoutesToDashboard(t *testing.T) {
	sess := &fakeSession{}
	auth := &fakeAuth{sess: sess}
	app := newTestApp(t, sess, auth, &fakeTaskAPI{})

	app.authView.email.SetValue("a@b.c")
	app.authView.password.SetValue("secret")

	m, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	app = m.(App)
	if !app.authView.busy {
		t.Fatal("expected busy while credentials are in flight")
	}
	if cmd == nil {
		t.Fatal("expected a login command")
	}

	// 同步执行命令 / Run the command synchronously
	msg := cmd()
	m, cmd = app.Update(msg)
	app = m.(App)
	if app.view != ViewTasks {
		t.Fatalf("view=%v after successful sign-in, want dashboard", app.view)
	}
	if cmd == nil {
		t.Fatal("expected the dashboard to start loading tasks")
	}
	if auth.calls != 1 {
		t.Fatalf("auth calls=%d, want 1", auth.calls)
	}
}

func TestApp_SigninRejectionStaysInline(t *testing.T) {
	sess := &fakeSession{}
	auth := &fakeAuth{sess: sess, err: &api.AuthError{Status: 401, Message: "Invalid credentials"}}
	app := newTestApp(t, sess, auth, &fakeTaskAPI{})

	app.authView.email.SetValue("a@b.c")
	app.authView.password.SetValue("wrong")

	m, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	app = m.(App)
	m, _ = app.Update(cmd())
	app = m.(App)

	if app.view != ViewSignIn {
		t.Fatalf("view=%v after rejection, want sign-in", app.view)
	}
	if app.authView.errMsg != "Invalid credentials" {
		t.Fatalf("errMsg=%q", app.authView.errMsg)
	}
	if sess.authed {
		t.Fatal("rejection must not establish a session")
	}
}

func TestApp_SignupPasswordMismatchNeverReachesNetwork(t *testing.T) {
	sess := &fakeSession{}
	auth := &fakeAuth{sess: sess}
	app := newTestApp(t, sess, auth, &fakeTaskAPI{})
	app.view = ViewSignUp

	app.authView.email.SetValue("a@b.c")
	app.authView.password.SetValue("one")
	app.authView.confirm.SetValue("two")

	m, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	app = m.(App)
	if cmd != nil {
		t.Fatal("mismatched passwords must not produce a network command")
	}
	if app.authView.errMsg == "" {
		t.Fatal("expected an inline mismatch error")
	}
	if auth.calls != 0 {
		t.Fatalf("auth calls=%d, want 0", auth.calls)
	}
}

func TestApp_SessionExpiryReturnsToSignIn(t *testing.T) {
	sess := &fakeSession{authed: true, user: &session.Identity{ID: "u1", Email: "a@b.c"}}
	auth := &fakeAuth{sess: sess}
	app := newTestApp(t, sess, auth, &fakeTaskAPI{})

	// 网关客户端在返回 ErrUnauthorized 前已清除本地令牌
	// The gateway client clears the token before surfacing ErrUnauthorized
	sess.authed = false
	sess.user = nil

	m, _ := app.Update(tasksLoadedMsg{err: api.ErrUnauthorized})
	app = m.(App)
	if app.view != ViewSignIn {
		t.Fatalf("view=%v after expiry, want sign-in", app.view)
	}
	if app.notice == "" {
		t.Fatal("expected an expiry notice for the status bar")
	}
}

func TestApp_FilterCycles(t *testing.T) {
	sess := &fakeSession{authed: true, user: &session.Identity{ID: "u1", Email: "a@b.c"}}
	taskAPI := &fakeTaskAPI{tasks: []task.Task{
		{ID: "1", Title: "open one"},
		{ID: "2", Title: "done one", Complete: true},
	}}
	app := newTestApp(t, sess, &fakeAuth{sess: sess}, taskAPI)
	if err := app.tasks.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	m, _ := app.Update(keyRune('f'))
	app = m.(App)
	if app.tasksView.filter != task.FilterActive {
		t.Fatalf("filter=%v, want active", app.tasksView.filter)
	}
	if got := len(app.visibleTasks()); got != 1 {
		t.Fatalf("visible=%d under active filter, want 1", got)
	}

	m, _ = app.Update(keyRune('f'))
	app = m.(App)
	if app.tasksView.filter != task.FilterCompleted {
		t.Fatalf("filter=%v, want completed", app.tasksView.filter)
	}
	m, _ = app.Update(keyRune('f'))
	app = m.(App)
	if app.tasksView.filter != task.FilterAll {
		t.Fatalf("filter=%v, want all", app.tasksView.filter)
	}
}

func TestApp_DeleteNeedsConfirmation(t *testing.T) {
	sess := &fakeSession{authed: true, user: &session.Identity{ID: "u1", Email: "a@b.c"}}
	taskAPI := &fakeTaskAPI{tasks: []task.Task{{ID: "1", Title: "doomed"}}}
	app := newTestApp(t, sess, &fakeAuth{sess: sess}, taskAPI)
	if err := app.tasks.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	m, _ := app.Update(keyRune('d'))
	app = m.(App)
	if app.tasksView.mode != taskModeConfirm {
		t.Fatalf("mode=%v, want confirm", app.tasksView.mode)
	}

	// esc 取消 / esc cancels
	m, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	app = m.(App)
	if app.tasksView.mode != taskModeList || cmd != nil {
		t.Fatal("cancel must return to the list without a command")
	}
	if len(app.tasks.Tasks()) != 1 {
		t.Fatal("cancel must not delete")
	}

	// y 确认 / y confirms
	m, _ = app.Update(keyRune('d'))
	app = m.(App)
	m, cmd = app.Update(keyRune('y'))
	app = m.(App)
	if cmd == nil {
		t.Fatal("expected a delete command")
	}
	m, _ = app.Update(cmd())
	app = m.(App)
	if len(app.tasks.Tasks()) != 0 {
		t.Fatalf("tasks=%d after confirmed delete, want 0", len(app.tasks.Tasks()))
	}
}

func TestApp_LogoutClearsAndRoutes(t *testing.T) {
	sess := &fakeSession{authed: true, user: &session.Identity{ID: "u1", Email: "a@b.c"}}
	auth := &fakeAuth{sess: sess}
	app := newTestApp(t, sess, auth, &fakeTaskAPI{})

	m, _ := app.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	app = m.(App)
	if app.view != ViewSignIn {
		t.Fatalf("view=%v after logout, want sign-in", app.view)
	}
	if auth.logouts != 1 {
		t.Fatalf("logouts=%d, want 1", auth.logouts)
	}
}

func TestApp_ChatPaneToggles(t *testing.T) {
	sess := &fakeSession{authed: true, user: &session.Identity{ID: "u1", Email: "a@b.c"}}
	app := newTestApp(t, sess, &fakeAuth{sess: sess}, &fakeTaskAPI{})

	m, _ := app.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	app = m.(App)
	if !app.chatView.open {
		t.Fatal("ctrl+t should open the chat pane")
	}
	if !strings.Contains(app.View(), "Assistant") {
		t.Fatal("open pane should render in the view")
	}

	m, _ = app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	app = m.(App)
	if app.chatView.open {
		t.Fatal("esc should close the chat pane")
	}
}

func TestApp_ChatSendRoundTrip(t *testing.T) {
	sess := &fakeSession{authed: true, user: &session.Identity{ID: "u1", Email: "a@b.c"}}
	app := newTestApp(t, sess, &fakeAuth{sess: sess}, &fakeTaskAPI{})

	m, _ := app.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	app = m.(App)
	app.chatView.input.SetValue("hello")

	m, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	app = m.(App)
	if cmd == nil {
		t.Fatal("expected a send command")
	}
	msgs := collectMsgs(cmd())
	for _, msg := range msgs {
		m, _ = app.Update(msg)
		app = m.(App)
	}

	transcript := app.conv.Messages()
	if len(transcript) != 2 {
		t.Fatalf("transcript=%d messages, want 2", len(transcript))
	}
	if transcript[1].Content != "ok" {
		t.Fatalf("assistant reply=%q", transcript[1].Content)
	}
}

// collectMsgs 展开 tea.Batch 的结果 / collectMsgs flattens a possible batch
func collectMsgs(msg tea.Msg) []tea.Msg {
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			if c == nil {
				continue
			}
			out = append(out, collectMsgs(c())...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// 改绑快捷键后，派发与提示必须同时跟随绑定
// Remapping a binding must move both dispatch and the on-screen hint.
func TestApp_RemappedBindingMovesDispatchAndHint(t *testing.T) {
	sess := &fakeSession{authed: true, user: &session.Identity{ID: "u1", Email: "a@b.c"}}
	taskAPI := &fakeTaskAPI{tasks: []task.Task{{ID: "1", Title: "open one"}}}
	app := newTestApp(t, sess, &fakeAuth{sess: sess}, taskAPI)
	if err := app.tasks.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	app.keys.Filter = key.NewBinding(
		key.WithKeys("g"),
		key.WithHelp("g", "cycle filter"),
	)

	// 旧按键失效 / The old key no longer cycles
	m, _ := app.Update(keyRune('f'))
	app = m.(App)
	if app.tasksView.filter != task.FilterAll {
		t.Fatalf("filter=%v after unbound key, want all", app.tasksView.filter)
	}

	m, _ = app.Update(keyRune('g'))
	app = m.(App)
	if app.tasksView.filter != task.FilterActive {
		t.Fatalf("filter=%v after remapped key, want active", app.tasksView.filter)
	}

	view := app.View()
	if !strings.Contains(view, "g filter") {
		t.Fatalf("hint should follow the remapped binding, got:\n%s", view)
	}
	if strings.Contains(view, "f filter") {
		t.Fatalf("stale hint for the unbound key, got:\n%s", view)
	}
}

func TestApp_HintsRenderBindingKeys(t *testing.T) {
	sess := &fakeSession{authed: true, user: &session.Identity{ID: "u1", Email: "a@b.c"}}
	app := newTestApp(t, sess, &fakeAuth{sess: sess}, &fakeTaskAPI{})

	view := app.View()
	for _, b := range []key.Binding{
		app.keys.NewTask, app.keys.EditTask, app.keys.DeleteTask,
		app.keys.ToggleDone, app.keys.Filter, app.keys.Quit,
		app.keys.ToggleChat, app.keys.Logout,
	} {
		if !strings.Contains(view, b.Help().Key) {
			t.Fatalf("dashboard hints missing %q", b.Help().Key)
		}
	}
}

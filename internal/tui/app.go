// Package tui renders the client: sign-in and sign-up screens, the task
// dashboard, and the assistant chat pane, all driven by one Bubble Tea
// model. Navigation between views goes through Resolve so a view can never
// be shown to a session that is not allowed to see it.
package tui

import (
	"context"
	"errors"
	"time"

	"taskdeck/internal/api"
	"taskdeck/internal/conversation"
	"taskdeck/internal/i18n"
	"taskdeck/internal/logging"
	"taskdeck/internal/session"
	"taskdeck/internal/task"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SessionState is the read side of the session the app renders from.
type SessionState interface {
	Authenticated() bool
	User() *session.Identity
}

// AuthService performs the credential flows.
type AuthService interface {
	Login(ctx context.Context, email, password string) error
	Signup(ctx context.Context, email, password string) error
	Logout()
}

// --- Tea Messages ---

// authResultMsg 认证调用结束 / authResultMsg ends a credential flow
type authResultMsg struct {
	signup bool
	err    error
}

// tasksLoadedMsg 任务列表刷新完成 / tasksLoadedMsg ends a dashboard reload
type tasksLoadedMsg struct{ err error }

// taskMutatedMsg 任务写操作完成 / taskMutatedMsg ends a create/update/toggle/delete
type taskMutatedMsg struct{ err error }

// chatDoneMsg 助手请求完成 / chatDoneMsg ends an assistant round trip
type chatDoneMsg struct{ err error }

// chatRefreshMsg 在请求进行中定期刷新转录 / chatRefreshMsg repaints the
// transcript while a send is in flight
type chatRefreshMsg struct{}

// App Bubble Tea 主 Model
// App is the main Bubble Tea model
type App struct {
	// 布局 / Layout
	width  int
	height int

	// 当前视图 / Current view
	view   View
	notice string

	// 服务 / Services
	session SessionState
	auth    AuthService
	tasks   *task.Controller
	conv    *conversation.Manager

	// 子视图 / Sub-views
	authView  authView
	tasksView tasksView
	chatView  chatView

	// 配置 / Config
	serverURL string
	theme     Theme
	keys      KeyMap
	locale    *i18n.I18n
	log       logging.Logger
}

// NewApp 创建 TUI 应用 / NewApp creates the TUI application
func NewApp(sess SessionState, auth AuthService, tasks *task.Controller, conv *conversation.Manager, serverURL string, log logging.Logger) App {
	if log == nil {
		log = logging.Nop()
	}
	locale := i18n.Global()
	av := newAuthView(locale)
	av.email.Focus()
	tv := newTasksView(locale)

	view := Home(sess.Authenticated())
	if view == ViewTasks {
		tv.loading = true
	}

	return App{
		view:      view,
		session:   sess,
		auth:      auth,
		tasks:     tasks,
		conv:      conv,
		authView:  av,
		tasksView: tv,
		chatView:  newChatView(locale),
		serverURL: serverURL,
		theme:     DarkTheme(),
		keys:      DefaultKeyMap(),
		locale:    locale,
		log:       log,
	}
}

func (a App) Init() tea.Cmd {
	if a.view == ViewTasks {
		return tea.Batch(a.loadTasksCmd(), textinput.Blink)
	}
	return textinput.Blink
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, a.keys.Quit) {
			return a, tea.Quit
		}
		return a.updateKey(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.relayout()
		return a, nil

	case authResultMsg:
		return a.onAuthResult(msg)

	case tasksLoadedMsg:
		if expired, next := a.checkExpired(msg.err); expired {
			return next, nil
		}
		a.tasksView.loading = false
		if msg.err != nil {
			a.tasksView.errMsg = a.locale.T("error.network", msg.err.Error())
		} else {
			a.tasksView.errMsg = ""
			a.tasksView.clampCursor(len(a.visibleTasks()))
		}
		return a, nil

	case taskMutatedMsg:
		if expired, next := a.checkExpired(msg.err); expired {
			return next, nil
		}
		a.tasksView.busy = false
		if msg.err != nil {
			a.tasksView.errMsg = a.describeTaskError(msg.err)
			return a, nil
		}
		a.tasksView.errMsg = ""
		a.tasksView.mode = taskModeList
		a.tasksView.clampCursor(len(a.visibleTasks()))
		return a, nil

	case chatDoneMsg:
		if expired, next := a.checkExpired(msg.err); expired {
			return next, nil
		}
		a.refreshChat()
		return a, nil

	case chatRefreshMsg:
		a.refreshChat()
		if a.conv.Busy() {
			return a, chatRefreshTick()
		}
		return a, nil
	}

	return a.updateFocusedInput(msg)
}

// updateKey 按当前视图分发按键 / updateKey routes a key to the focused view
func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// 聊天面板打开时优先接收输入 / The chat pane grabs keys while open
	if a.chatView.open && a.view == ViewTasks {
		return a.updateChatKey(msg)
	}

	switch a.view {
	case ViewSignIn, ViewSignUp:
		return a.updateAuthKey(msg)
	case ViewTasks:
		return a.updateTasksKey(msg)
	}
	return a, nil
}

// updateFocusedInput 把非按键消息交给获得焦点的输入组件
// updateFocusedInput forwards non-key messages to the focused input widget
func (a App) updateFocusedInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case a.chatView.open && a.view == ViewTasks:
		a.chatView.input, cmd = a.chatView.input.Update(msg)
	case a.view == ViewSignIn || a.view == ViewSignUp:
		a.authView, cmd = a.authView.updateInputs(msg)
	case a.tasksView.mode == taskModeForm:
		a.tasksView, cmd = a.tasksView.updateFormInputs(msg)
	}
	return a, cmd
}

// onAuthResult 处理登录/注册结果 / onAuthResult handles a credential outcome
func (a App) onAuthResult(msg authResultMsg) (tea.Model, tea.Cmd) {
	a.authView.busy = false
	if msg.err != nil {
		var authErr *api.AuthError
		if errors.As(msg.err, &authErr) {
			a.authView.errMsg = authErr.Message
		} else {
			a.authView.errMsg = a.locale.T("error.network", msg.err.Error())
		}
		return a, nil
	}

	a.notice = ""
	a.authView = newAuthView(a.locale)
	a.view = Resolve(ViewTasks, a.session.Authenticated())
	if a.view == ViewTasks {
		a.tasksView.loading = true
		return a, a.loadTasksCmd()
	}
	return a, nil
}

// checkExpired 集中处理 401：清空视图并回到登录页
// checkExpired handles the expired-session signal: back to sign-in with a
// notice. The API client has already cleared the stored token.
func (a App) checkExpired(err error) (bool, tea.Model) {
	if err == nil || !errors.Is(err, api.ErrUnauthorized) {
		return false, a
	}
	a.log.Warn(context.Background(), "session expired, returning to sign-in")
	a.view = Resolve(ViewTasks, a.session.Authenticated())
	a.notice = a.locale.T("status.session_expired")
	a.authView = newAuthView(a.locale)
	a.tasksView = newTasksView(a.locale)
	a.chatView.open = false
	return true, a
}

func (a *App) logout() {
	a.auth.Logout()
	a.view = Resolve(ViewTasks, a.session.Authenticated())
	a.notice = a.locale.T("status.signed_out")
	a.authView = newAuthView(a.locale)
	a.tasksView = newTasksView(a.locale)
	a.chatView.open = false
}

func (a *App) relayout() {
	a.authView.setWidth(a.width)
	a.tasksView.setWidth(a.width)
	a.chatView.setSize(a.chatPaneWidth(), a.contentHeight())
	a.refreshChat()
}

func (a App) chatPaneWidth() int {
	w := a.width * 2 / 5
	if w < 30 {
		w = 30
	}
	if w > 60 {
		w = 60
	}
	return w
}

func (a App) contentHeight() int {
	h := a.height - 2 // status bar + title
	if h < 3 {
		h = 3
	}
	return h
}

func (a App) visibleTasks() []task.Task {
	return a.tasks.Filtered(a.tasksView.filter)
}

func (a App) describeTaskError(err error) string {
	var v *task.ValidationError
	if errors.As(err, &v) {
		return v.Message
	}
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return a.locale.T("error.network", err.Error())
}

// --- Commands ---

func (a App) loadTasksCmd() tea.Cmd {
	ctrl := a.tasks
	return func() tea.Msg {
		return tasksLoadedMsg{err: ctrl.Load(context.Background())}
	}
}

func (a App) loginCmd(email, password string, signup bool) tea.Cmd {
	auth := a.auth
	return func() tea.Msg {
		var err error
		if signup {
			err = auth.Signup(context.Background(), email, password)
		} else {
			err = auth.Login(context.Background(), email, password)
		}
		return authResultMsg{signup: signup, err: err}
	}
}

func (a App) saveTaskCmd(editingID string, draft task.Draft) tea.Cmd {
	ctrl := a.tasks
	return func() tea.Msg {
		var err error
		if editingID == "" {
			_, err = ctrl.Create(context.Background(), draft)
		} else {
			_, err = ctrl.Update(context.Background(), editingID, draft)
		}
		return taskMutatedMsg{err: err}
	}
}

func (a App) toggleTaskCmd(t task.Task) tea.Cmd {
	ctrl := a.tasks
	return func() tea.Msg {
		_, err := ctrl.ToggleComplete(context.Background(), t)
		return taskMutatedMsg{err: err}
	}
}

func (a App) deleteTaskCmd(id string) tea.Cmd {
	ctrl := a.tasks
	return func() tea.Msg {
		return taskMutatedMsg{err: ctrl.Delete(context.Background(), id)}
	}
}

func (a App) sendChatCmd(text string) tea.Cmd {
	mgr := a.conv
	return func() tea.Msg {
		return chatDoneMsg{err: mgr.Send(context.Background(), text)}
	}
}

func chatRefreshTick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg {
		return chatRefreshMsg{}
	})
}

// --- View ---

func (a App) View() string {
	if a.width == 0 || a.height == 0 {
		return "Initializing..."
	}

	var body string
	switch a.view {
	case ViewSignIn, ViewSignUp:
		body = a.renderAuth()
	case ViewTasks:
		body = a.renderTasks()
	}

	if a.chatView.open && a.view == ViewTasks {
		pane := a.renderChatPane()
		mainWidth := a.width - a.chatPaneWidth() - 1
		if mainWidth < 20 {
			body = pane
		} else {
			main := lipgloss.NewStyle().Width(mainWidth).Height(a.contentHeight()).Render(body)
			body = lipgloss.JoinHorizontal(lipgloss.Top, main, pane)
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, body, a.renderStatusBar())
}

func (a App) renderStatusBar() string {
	left := " " + a.locale.T("status.ready")
	if a.notice != "" {
		left = " " + a.notice
	} else if user := a.session.User(); user != nil {
		left = " " + a.locale.T("tasks.signed_in_as", user.Email)
	}

	hints := a.hint(a.keys.Quit, "keys.quit")
	if a.view == ViewTasks {
		hints = a.hint(a.keys.ToggleChat, "keys.chat") + " · " +
			a.hint(a.keys.Logout, "keys.logout") + " · " + hints
	}
	right := hints + " "

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	bar := left + spaces(gap) + right
	return a.theme.StatusBarStyle.Width(a.width).Render(bar)
}

// hint 由绑定本身拼出提示，按键变更时提示自动跟随
// hint renders "key label" from the binding itself, so remapping a key
// updates the on-screen hint with it.
func (a App) hint(b key.Binding, labelKey string) string {
	return b.Help().Key + " " + a.locale.T(labelKey)
}

func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}

// Run 启动 Bubble Tea TUI / Run starts the TUI event loop
func Run(sess SessionState, auth AuthService, tasks *task.Controller, conv *conversation.Manager, serverURL string, log logging.Logger) error {
	app := NewApp(sess, auth, tasks, conv, serverURL, log)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

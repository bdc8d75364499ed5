package tui

import (
	"strings"

	"taskdeck/internal/chat"
	"taskdeck/internal/i18n"
	"taskdeck/internal/storage"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// chatMode 聊天面板内部状态机 / chatMode is the chat pane's inner state machine
type chatMode int

const (
	chatModeInput chatMode = iota
	chatModeHistory
	chatModeConfirm
)

// chatView 聊天面板状态 / chatView holds the chat pane state
type chatView struct {
	open       bool
	mode       chatMode
	input      textinput.Model
	transcript viewport.Model
	history    []storage.ConversationMeta
	histCursor int
	errMsg     string
	width      int
	height     int
}

func newChatView(locale *i18n.I18n) chatView {
	input := textinput.New()
	input.Placeholder = locale.T("chat.placeholder")
	input.CharLimit = 4000
	input.Width = 40

	return chatView{
		input:      input,
		transcript: viewport.New(40, 10),
	}
}

func (v *chatView) setSize(width, height int) {
	v.width = width
	v.height = height
	inner := width - 4
	if inner < 10 {
		inner = 10
	}
	v.input.Width = inner
	tall := height - 6
	if tall < 3 {
		tall = 3
	}
	v.transcript = viewport.New(inner, tall)
}

// refreshChat 重建转录视图内容 / refreshChat rebuilds the transcript viewport
func (a *App) refreshChat() {
	if a.conv == nil {
		return
	}
	width := a.chatView.transcript.Width
	var b strings.Builder
	for _, msg := range a.conv.Messages() {
		switch {
		case msg.Role == chat.RoleUser:
			b.WriteString(a.theme.UserMsgStyle.Render("▸ " + msg.Content))
			b.WriteString("\n")
		case msg.IsError:
			b.WriteString(a.theme.ErrorStyle.Render(msg.Content))
			b.WriteString("\n")
		default:
			b.WriteString(RenderMarkdown(msg.Content, width))
			b.WriteString("\n")
		}
	}
	if a.conv.Busy() {
		b.WriteString(a.theme.MutedStyle.Render(a.locale.T("chat.thinking")))
		b.WriteString("\n")
	}
	if b.Len() == 0 {
		b.WriteString(a.theme.MutedStyle.Render(a.locale.T("chat.empty")))
	}
	a.chatView.transcript.SetContent(b.String())
	a.chatView.transcript.GotoBottom()
}

// updateChatKey 处理聊天面板按键 / updateChatKey handles chat-pane keys
func (a App) updateChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.chatView.mode {
	case chatModeHistory:
		return a.updateChatHistoryKey(msg)
	case chatModeConfirm:
		return a.updateChatConfirmKey(msg)
	}

	switch {
	case key.Matches(msg, a.keys.Cancel), key.Matches(msg, a.keys.ToggleChat):
		a.chatView.open = false
		a.chatView.input.Blur()
		return a, nil

	case key.Matches(msg, a.keys.NewConversation):
		if err := a.conv.StartNew(); err != nil {
			a.chatView.errMsg = err.Error()
			return a, nil
		}
		a.chatView.errMsg = ""
		a.refreshChat()
		return a, nil

	case key.Matches(msg, a.keys.History):
		metas, err := a.conv.Conversations()
		if err != nil {
			a.chatView.errMsg = err.Error()
			return a, nil
		}
		a.chatView.mode = chatModeHistory
		a.chatView.history = metas
		a.chatView.histCursor = 0
		return a, nil

	// 方向键滚动转录；j/k 要留给输入框，不能走 Up/Down 绑定
	// Arrow keys scroll the transcript; j/k must stay typable in the
	// input, so the Up/Down bindings do not apply here
	case msg.String() == "up", msg.String() == "down",
		msg.String() == "pgup", msg.String() == "pgdown":
		var cmd tea.Cmd
		a.chatView.transcript, cmd = a.chatView.transcript.Update(msg)
		return a, cmd

	case key.Matches(msg, a.keys.Submit):
		text := strings.TrimSpace(a.chatView.input.Value())
		if text == "" || a.conv.Busy() {
			return a, nil
		}
		a.chatView.input.SetValue("")
		a.chatView.errMsg = ""
		// 发送请求的同时开始刷新转录，让用户消息立即可见
		// Kick off the send and a repaint tick so the optimistic user
		// message shows up right away
		return a, tea.Batch(a.sendChatCmd(text), chatRefreshTick())
	}

	var cmd tea.Cmd
	a.chatView.input, cmd = a.chatView.input.Update(msg)
	return a, cmd
}

func (a App) updateChatHistoryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Cancel), key.Matches(msg, a.keys.History):
		a.chatView.mode = chatModeInput
		return a, nil

	case key.Matches(msg, a.keys.Up):
		if a.chatView.histCursor > 0 {
			a.chatView.histCursor--
		}
		return a, nil
	case key.Matches(msg, a.keys.Down):
		if a.chatView.histCursor < len(a.chatView.history)-1 {
			a.chatView.histCursor++
		}
		return a, nil

	case key.Matches(msg, a.keys.DeleteTask):
		if len(a.chatView.history) == 0 {
			return a, nil
		}
		a.chatView.mode = chatModeConfirm
		return a, nil

	case key.Matches(msg, a.keys.Submit):
		if len(a.chatView.history) == 0 {
			return a, nil
		}
		id := a.chatView.history[a.chatView.histCursor].ID
		if err := a.conv.SwitchTo(id); err != nil {
			a.chatView.errMsg = err.Error()
			return a, nil
		}
		a.chatView.mode = chatModeInput
		a.refreshChat()
		return a, nil
	}
	return a, nil
}

func (a App) updateChatConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		id := a.chatView.history[a.chatView.histCursor].ID
		if err := a.conv.Delete(id); err != nil {
			a.chatView.errMsg = err.Error()
			a.chatView.mode = chatModeHistory
			return a, nil
		}
		metas, _ := a.conv.Conversations()
		a.chatView.history = metas
		if a.chatView.histCursor >= len(metas) {
			a.chatView.histCursor = len(metas) - 1
		}
		if a.chatView.histCursor < 0 {
			a.chatView.histCursor = 0
		}
		a.chatView.mode = chatModeHistory
		a.refreshChat()
		return a, nil
	default:
		a.chatView.mode = chatModeHistory
		return a, nil
	}
}

// renderChatPane 渲染右侧聊天面板 / renderChatPane renders the right-hand pane
func (a App) renderChatPane() string {
	var parts []string
	title := a.locale.T("chat.title")
	if cur := a.conv.Current(); cur != nil {
		title += " · " + truncate(cur.Title, a.chatView.width-12)
	}
	parts = append(parts, a.theme.TitleStyle.Render(" "+title))
	parts = append(parts, "")

	switch a.chatView.mode {
	case chatModeHistory, chatModeConfirm:
		parts = append(parts, a.renderChatHistory()...)
	default:
		parts = append(parts, a.chatView.transcript.View())
		parts = append(parts, "")
		parts = append(parts, " "+a.chatView.input.View())
	}

	if a.chatView.errMsg != "" {
		parts = append(parts, " "+a.theme.ErrorStyle.Render(a.chatView.errMsg))
	}

	hint := strings.Join([]string{
		a.hint(a.keys.ToggleChat, "keys.chat"),
		a.hint(a.keys.NewConversation, "keys.new_chat"),
		a.hint(a.keys.History, "keys.history"),
	}, " · ")
	parts = append(parts, " "+a.theme.MutedStyle.Render(hint))

	body := strings.Join(parts, "\n")
	return a.theme.ChatPaneStyle.
		Width(a.chatView.width).
		Height(a.chatView.height).
		Render(body)
}

func (a App) renderChatHistory() []string {
	var parts []string
	parts = append(parts, " "+a.theme.LabelStyle.Render(a.locale.T("chat.history")))
	if len(a.chatView.history) == 0 {
		parts = append(parts, "  "+a.theme.MutedStyle.Render(a.locale.T("chat.empty")))
	}
	for i, meta := range a.chatView.history {
		line := "  " + truncate(meta.Title, a.chatView.width-6)
		if i == a.chatView.histCursor {
			line = a.theme.SelectedStyle.Render(line)
		}
		parts = append(parts, line)
	}
	if a.chatView.mode == chatModeConfirm {
		parts = append(parts, "")
		parts = append(parts, " "+a.theme.DangerStyle.Render(a.locale.T("chat.confirm_delete")))
	}
	return parts
}

package tui

import (
	"strings"

	"taskdeck/internal/i18n"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// authView 登录/注册表单状态
// authView holds the sign-in / sign-up form state
type authView struct {
	email    textinput.Model
	password textinput.Model
	confirm  textinput.Model
	focus    int
	busy     bool
	errMsg   string
	width    int
}

func newAuthView(locale *i18n.I18n) authView {
	email := textinput.New()
	email.Placeholder = locale.T("auth.email")
	email.CharLimit = 254
	email.Width = 40

	password := textinput.New()
	password.Placeholder = locale.T("auth.password")
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 128
	password.Width = 40

	confirm := textinput.New()
	confirm.Placeholder = locale.T("auth.confirm")
	confirm.EchoMode = textinput.EchoPassword
	confirm.EchoCharacter = '•'
	confirm.CharLimit = 128
	confirm.Width = 40

	return authView{
		email:    email,
		password: password,
		confirm:  confirm,
	}
}

func (v *authView) setWidth(width int) {
	v.width = width
}

// fieldCount 注册页多一个确认密码输入框
// fieldCount: the sign-up screen adds the confirm-password field
func (v authView) fieldCount(view View) int {
	if view == ViewSignUp {
		return 3
	}
	return 2
}

// updateAuthKey 处理认证页按键 / updateAuthKey handles auth-screen keys
func (a App) updateAuthKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.authView.busy {
		return a, nil
	}

	switch {
	case msg.String() == "tab", msg.String() == "shift+tab",
		msg.String() == "down", msg.String() == "up":
		n := a.authView.fieldCount(a.view)
		if msg.String() == "shift+tab" || msg.String() == "up" {
			a.authView.focus = (a.authView.focus + n - 1) % n
		} else {
			a.authView.focus = (a.authView.focus + 1) % n
		}
		return a, a.focusAuthField()

	case key.Matches(msg, a.keys.SwitchAuth):
		if a.view == ViewSignIn {
			a.view = ViewSignUp
		} else {
			a.view = ViewSignIn
		}
		a.authView.errMsg = ""
		a.authView.focus = 0
		return a, a.focusAuthField()

	case key.Matches(msg, a.keys.Submit):
		return a.submitAuth()
	}

	var cmd tea.Cmd
	a.authView, cmd = a.authView.updateInputs(msg)
	return a, cmd
}

func (a *App) focusAuthField() tea.Cmd {
	var cmd tea.Cmd
	inputs := []*textinput.Model{&a.authView.email, &a.authView.password, &a.authView.confirm}
	for i, in := range inputs {
		if i == a.authView.focus {
			cmd = in.Focus()
		} else {
			in.Blur()
		}
	}
	return cmd
}

func (a App) submitAuth() (tea.Model, tea.Cmd) {
	email := strings.TrimSpace(a.authView.email.Value())
	password := a.authView.password.Value()

	if email == "" || password == "" {
		a.authView.errMsg = a.locale.T("auth.missing_fields")
		return a, nil
	}
	if a.view == ViewSignUp && password != a.authView.confirm.Value() {
		a.authView.errMsg = a.locale.T("auth.password_mismatch")
		return a, nil
	}

	a.authView.errMsg = ""
	a.authView.busy = true
	return a, a.loginCmd(email, password, a.view == ViewSignUp)
}

func (v authView) updateInputs(msg tea.Msg) (authView, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	v.email, cmd = v.email.Update(msg)
	cmds = append(cmds, cmd)
	v.password, cmd = v.password.Update(msg)
	cmds = append(cmds, cmd)
	v.confirm, cmd = v.confirm.Update(msg)
	cmds = append(cmds, cmd)
	return v, tea.Batch(cmds...)
}

// renderAuth 渲染登录/注册页 / renderAuth renders the auth screen
func (a App) renderAuth() string {
	title := a.locale.T("auth.signin_title")
	submit := a.locale.T("auth.submit_signin")
	switchHint := a.locale.T("auth.to_signup")
	if a.view == ViewSignUp {
		title = a.locale.T("auth.signup_title")
		submit = a.locale.T("auth.submit_signup")
		switchHint = a.locale.T("auth.to_signin")
	}

	var parts []string
	parts = append(parts, a.theme.TitleStyle.Render(" taskdeck · "+title))
	parts = append(parts, "  "+a.theme.MutedStyle.Render(a.serverURL))
	parts = append(parts, "")
	parts = append(parts, "  "+a.theme.LabelStyle.Render(a.locale.T("auth.email")))
	parts = append(parts, "  "+a.authView.email.View())
	parts = append(parts, "")
	parts = append(parts, "  "+a.theme.LabelStyle.Render(a.locale.T("auth.password")))
	parts = append(parts, "  "+a.authView.password.View())
	if a.view == ViewSignUp {
		parts = append(parts, "")
		parts = append(parts, "  "+a.theme.LabelStyle.Render(a.locale.T("auth.confirm")))
		parts = append(parts, "  "+a.authView.confirm.View())
	}
	parts = append(parts, "")

	if a.authView.busy {
		status := a.locale.T("auth.signing_in")
		if a.view == ViewSignUp {
			status = a.locale.T("auth.creating_account")
		}
		parts = append(parts, "  "+a.theme.MutedStyle.Render(status))
	} else {
		parts = append(parts, "  "+a.theme.SuccessStyle.Render("⏎ "+submit))
	}

	if a.authView.errMsg != "" {
		parts = append(parts, "")
		parts = append(parts, "  "+a.theme.ErrorStyle.Render(a.authView.errMsg))
	}

	parts = append(parts, "")
	parts = append(parts, "  "+a.theme.MutedStyle.Render(switchHint))

	body := strings.Join(parts, "\n")
	return lipgloss.NewStyle().
		Width(a.width).
		Height(a.contentHeight()).
		Render(body)
}

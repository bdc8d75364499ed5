package tui

// View 标识一个全屏视图 / View identifies a full-screen view
type View int

const (
	ViewSignIn View = iota
	ViewSignUp
	ViewTasks
)

func (v View) String() string {
	switch v {
	case ViewSignUp:
		return "signup"
	case ViewTasks:
		return "tasks"
	default:
		return "signin"
	}
}

// Resolve 根据登录态决定实际展示的视图，纯函数
// Resolve applies the navigation rules to a requested view; pure function.
// The dashboard needs a session, and the auth screens bounce a signed-in
// user straight to the dashboard.
func Resolve(requested View, authenticated bool) View {
	if authenticated {
		if requested == ViewSignIn || requested == ViewSignUp {
			return ViewTasks
		}
		return requested
	}
	if requested == ViewTasks {
		return ViewSignIn
	}
	return requested
}

// Home 返回启动时的落地视图 / Home picks the landing view at startup
func Home(authenticated bool) View {
	return Resolve(ViewTasks, authenticated)
}

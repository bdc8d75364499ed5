package i18n

// EnMessages English message catalog
var EnMessages = map[string]string{
	// Auth screens
	"auth.signin_title":     "Sign In",
	"auth.signup_title":     "Create Account",
	"auth.email":            "Email",
	"auth.password":         "Password",
	"auth.confirm":          "Confirm Password",
	"auth.submit_signin":    "Sign in",
	"auth.submit_signup":    "Sign up",
	"auth.signing_in":       "Signing in...",
	"auth.creating_account": "Creating account...",
	"auth.to_signup":        "No account yet? ctrl+s to sign up",
	"auth.to_signin":        "Already registered? ctrl+s to sign in",
	"auth.missing_fields":   "Email and password are required",
	"auth.password_mismatch": "Passwords do not match",

	// Tasks dashboard
	"tasks.title":          "My Tasks",
	"tasks.loading":        "Loading tasks...",
	"tasks.empty":          "No tasks yet. Press n to add one.",
	"tasks.empty_filtered": "No %s tasks.",
	"tasks.stats":          "%d total · %d active · %d completed",
	"tasks.signed_in_as":   "Signed in as %s",
	"tasks.form_new":       "New Task",
	"tasks.form_edit":      "Edit Task",
	"tasks.field_title":    "Title",
	"tasks.field_desc":     "Description",
	"tasks.title_required": "Title is required",
	"tasks.confirm_delete": "Delete %q? [y/N]",
	"tasks.saving":         "Saving...",

	// Filters
	"filter.all":       "All",
	"filter.active":    "Active",
	"filter.completed": "Completed",

	// Chat widget
	"chat.title":          "Assistant",
	"chat.empty":          "Ask anything about your tasks.",
	"chat.placeholder":    "Type a message... (enter to send)",
	"chat.thinking":       "Thinking...",
	"chat.new":            "New conversation",
	"chat.history":        "Conversations",
	"chat.confirm_delete": "Delete this conversation? [y/N]",

	// Status bar
	"status.ready":           "Ready",
	"status.session_expired": "Session expired. Please sign in again.",
	"status.signed_out":      "Signed out",

	// Errors
	"error.network": "Network error: %s",
	"error.auth":    "Authentication failed: %s",

	// Keybinding hint labels; the key itself renders from the binding
	"keys.quit":     "quit",
	"keys.chat":     "assistant",
	"keys.new":      "new",
	"keys.edit":     "edit",
	"keys.delete":   "delete",
	"keys.toggle":   "toggle",
	"keys.filter":   "filter",
	"keys.logout":   "sign out",
	"keys.save":     "save",
	"keys.field":    "field",
	"keys.cancel":   "cancel",
	"keys.new_chat": "new",
	"keys.history":  "history",

	// Startup
	"startup.welcome": "taskdeck connected to %s",
}

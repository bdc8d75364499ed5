package session

import "context"

// AuthClient is the slice of the API gateway the manager needs.
type AuthClient interface {
	Signin(ctx context.Context, email, password string) (string, error)
	Signup(ctx context.Context, email, password string) (string, error)
}

// Manager 将远端认证调用与本地会话状态绑定
// Manager binds the remote auth endpoints to the local session store
type Manager struct {
	store  *Store
	client AuthClient
}

func NewManager(store *Store, client AuthClient) *Manager {
	return &Manager{store: store, client: client}
}

// Login authenticates and persists the returned token. Errors from the
// API client (including *api.AuthError) pass through for inline display.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	token, err := m.client.Signin(ctx, email, password)
	if err != nil {
		return err
	}
	return m.store.SetToken(ctx, token, email)
}

// Signup registers a new account; same contract as Login.
func (m *Manager) Signup(ctx context.Context, email, password string) error {
	token, err := m.client.Signup(ctx, email, password)
	if err != nil {
		return err
	}
	return m.store.SetToken(ctx, token, email)
}

// Logout clears local state unconditionally. No network call is involved;
// the server keeps no session to tear down.
func (m *Manager) Logout() {
	m.store.Clear()
}

package api

import (
	"context"
	"net/http"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// Signin exchanges credentials for a bearer token. A non-2xx response comes
// back as *AuthError carrying the server's message when it sent one.
func (c *Client) Signin(ctx context.Context, email, password string) (string, error) {
	return c.authRequest(ctx, "/api/v1/auth/signin", email, password)
}

// Signup registers a new account; same contract as Signin.
func (c *Client) Signup(ctx context.Context, email, password string) (string, error) {
	return c.authRequest(ctx, "/api/v1/auth/signup", email, password)
}

// authRequest bypasses the central 401 handling: a rejected sign-in is the
// caller's inline error to render, not a session expiry.
func (c *Client) authRequest(ctx context.Context, path, email, password string) (string, error) {
	resp, err := c.send(ctx, http.MethodPost, path, credentials{Email: email, Password: password}, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &AuthError{Status: resp.StatusCode, Message: readDetail(resp.Body)}
	}

	var body tokenResponse
	if err := decodeJSON(resp.Body, &body); err != nil {
		return "", err
	}
	if body.AccessToken == "" {
		return "", &AuthError{Status: resp.StatusCode, Message: "server returned no access token"}
	}
	return body.AccessToken, nil
}

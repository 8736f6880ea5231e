package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/hay-kot/taskdeck/internal/core/auth"
	"github.com/hay-kot/taskdeck/internal/core/jsonx"
)

// AuthResult is the backend's answer to login and registration.
type AuthResult struct {
	Token    string
	Identity auth.Identity
	Message  string
}

type authResponse struct {
	ID       jsonx.ID  `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Role     auth.Role `json:"role"`
	Message  string    `json:"message"`
	Token    string    `json:"token"`
}

func (r authResponse) result() AuthResult {
	role := r.Role
	if role == "" {
		role = auth.RoleUser
	}
	return AuthResult{
		Token:   r.Token,
		Message: r.Message,
		Identity: auth.Identity{
			ID:       r.ID,
			Username: r.Username,
			Email:    r.Email,
			Role:     role,
		},
	}
}

func decodeAuth(out *authResponse) func([]byte) error {
	return func(b []byte) error { return decodeObject(b, out) }
}

// Login exchanges credentials for a token and identity.
func (c *Client) Login(ctx context.Context, creds auth.Credentials) (AuthResult, error) {
	var resp authResponse
	err := c.do(ctx, request{method: http.MethodPost, path: "/auth/login", body: creds, public: true}, decodeAuth(&resp))
	if err != nil {
		return AuthResult{}, err
	}
	if resp.Token == "" {
		return AuthResult{}, &Error{Status: http.StatusUnauthorized, Message: firstNonEmpty(resp.Message, "Login failed")}
	}
	return resp.result(), nil
}

// Register creates an account. The backend may or may not return a token.
func (c *Client) Register(ctx context.Context, u auth.NewUser) (AuthResult, error) {
	var resp authResponse
	err := c.do(ctx, request{method: http.MethodPost, path: "/auth/register", body: u, public: true}, decodeAuth(&resp))
	if err != nil {
		return AuthResult{}, err
	}
	return resp.result(), nil
}

// Logout tells the backend to forget token. The token is passed explicitly
// because the session has usually been cleared locally by the time the
// request is sent.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, request{method: http.MethodPost, path: "/auth/logout", public: true, bearer: token}, nil)
}

// Me returns the identity the current token belongs to.
func (c *Client) Me(ctx context.Context) (auth.Identity, error) {
	var resp authResponse
	if err := c.do(ctx, request{method: http.MethodGet, path: "/auth/me"}, decodeAuth(&resp)); err != nil {
		return auth.Identity{}, err
	}
	if resp.Username == "" {
		return auth.Identity{}, &Error{Status: http.StatusUnauthorized, Message: firstNonEmpty(resp.Message, "Not authenticated")}
	}
	return resp.result().Identity, nil
}

// UsernameAvailable reports whether username is free to register.
func (c *Client) UsernameAvailable(ctx context.Context, username string) (bool, string, error) {
	var resp struct {
		Available bool   `json:"available"`
		Message   string `json:"message"`
	}
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/auth/check-username/" + url.PathEscape(username),
		public: true,
	}, func(b []byte) error { return json.Unmarshal(b, &resp) })
	if err != nil {
		return false, "", err
	}
	return resp.Available, resp.Message, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

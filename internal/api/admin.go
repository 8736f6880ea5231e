package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/hay-kot/taskdeck/internal/core/jsonx"
	"github.com/hay-kot/taskdeck/internal/core/user"
)

func userPath(id jsonx.ID) string {
	return "/admin/users/" + url.PathEscape(id.String())
}

// userPayload adds the username the backend keys accounts on. The admin
// forms only collect a display name, which doubles as the username.
type userPayload struct {
	Username string `json:"username"`
	user.NewUser
}

type userUpdatePayload struct {
	Username string `json:"username"`
	user.Update
}

// ListUsers returns every account. Only administrators may call it.
func (c *Client) ListUsers(ctx context.Context) ([]user.User, error) {
	var page Page[user.User]
	err := c.do(ctx, request{method: http.MethodGet, path: "/admin/users"}, func(b []byte) error {
		var err error
		page, err = decodeList[user.User](b)
		return err
	})
	if err != nil {
		return nil, err
	}

	users := make([]user.User, len(page.Items))
	for i, u := range page.Items {
		users[i] = u.WithDefaults()
	}
	return users, nil
}

// CreateUser adds an account.
func (c *Client) CreateUser(ctx context.Context, n user.NewUser) (user.User, error) {
	var u user.User
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/admin/users",
		body:   userPayload{Username: n.Name, NewUser: n},
	}, func(b []byte) error { return decodeObject(b, &u) })
	if err != nil {
		return user.User{}, err
	}
	return u.WithDefaults(), nil
}

// UpdateUser replaces the editable fields of an account.
func (c *Client) UpdateUser(ctx context.Context, id jsonx.ID, upd user.Update) (user.User, error) {
	var u user.User
	err := c.do(ctx, request{
		method: http.MethodPut,
		path:   userPath(id),
		body:   userUpdatePayload{Username: upd.Name, Update: upd},
	}, func(b []byte) error { return decodeObject(b, &u) })
	if err != nil {
		return user.User{}, err
	}
	if u.ID == "" {
		u.ID = id
	}
	return u.WithDefaults(), nil
}

// DeleteUser removes an account.
func (c *Client) DeleteUser(ctx context.Context, id jsonx.ID) error {
	return c.do(ctx, request{method: http.MethodDelete, path: userPath(id)}, nil)
}

// AdminStats returns the system wide dashboard figures.
func (c *Client) AdminStats(ctx context.Context) (user.AdminStats, error) {
	var s user.AdminStats
	err := c.do(ctx, request{method: http.MethodGet, path: "/admin/stats"}, func(b []byte) error {
		return decodeObject(b, &s)
	})
	return s, err
}

// DownloadReport streams the CSV task report into w.
func (c *Client) DownloadReport(ctx context.Context, w io.Writer) (int64, error) {
	resp, err := c.send(ctx, request{method: http.MethodGet, path: "/admin/download-report"})
	if err != nil {
		return 0, err
	}
	defer c.closeBody(resp)

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("download report: %w", err)
	}
	return n, nil
}
